package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
)

// Error is returned for responses with an unexpected status code. Message is the response body,
// which the server fills with a message fit for users.
type Error struct {
	Operation string
	Code      int
	Message   string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Operation, http.StatusText(e.Code))
	}
	return e.Message
}

// IsNotFound reports whether err is an [Error] with status 404.
func IsNotFound(err error) bool {
	var clientErr *Error
	return errors.As(err, &clientErr) && clientErr.Code == http.StatusNotFound
}

type remoteClusterClient struct {
	transport *httptransport.Runtime
	auth      runtime.ClientAuthInfoWriter
}

// New returns a client of the remote cluster API served at host and basePath. Host is either
// host:port or a URL carrying the scheme. Every request is authenticated with the bearer token.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func New(host, basePath, token string) *remoteClusterClient {
	scheme := "http"
	if u, err := url.Parse(host); err == nil && u.Scheme != "" && u.Host != "" {
		scheme = u.Scheme
		host = u.Host
		if basePath == "" {
			basePath = u.Path
		}
	}

	transport := httptransport.New(host, basePath, []string{scheme})
	return &remoteClusterClient{
		transport: transport,
		auth:      httptransport.BearerToken(token),
	}
}

func (c remoteClusterClient) ListRemoteClusters(ctx context.Context) ([]model.RemoteCluster, error) {
	return submit[[]model.RemoteCluster](ctx, c, "findAllRemoteClusters", http.MethodGet, "/remoteclusters", nil, http.StatusOK)
}

func (c remoteClusterClient) FindRemoteCluster(ctx context.Context, name string) (model.RemoteCluster, error) {
	return submit[model.RemoteCluster](ctx, c, "findRemoteCluster", http.MethodGet, "/remoteclusters/{name}", withName(name), http.StatusOK)
}

func (c remoteClusterClient) ListServices(ctx context.Context) ([]model.ViewService, error) {
	return submit[[]model.ViewService](ctx, c, "findAllViewServices", http.MethodGet, "/viewservices", nil, http.StatusOK)
}

func (c remoteClusterClient) ListViews(ctx context.Context) ([]model.View, error) {
	return submit[[]model.View](ctx, c, "findAllViews", http.MethodGet, "/views", nil, http.StatusOK)
}

// SaveRemoteCluster creates the remote cluster or, if update is true, replaces the services of the
// existing one.
func (c remoteClusterClient) SaveRemoteCluster(ctx context.Context, cluster model.RemoteCluster, update bool) (model.RemoteCluster, error) {
	body := saveRequest{Name: cluster.Name, Services: cluster.Services}
	if update {
		return submit[model.RemoteCluster](ctx, c, "updateRemoteCluster", http.MethodPut, "/remoteclusters/{name}", withBody(cluster.Name, body), http.StatusOK)
	}
	return submit[model.RemoteCluster](ctx, c, "createRemoteCluster", http.MethodPost, "/remoteclusters", withBody("", body), http.StatusCreated)
}

func (c remoteClusterClient) DeleteRemoteCluster(ctx context.Context, name string) error {
	_, err := submit[struct{}](ctx, c, "deleteRemoteCluster", http.MethodDelete, "/remoteclusters/{name}", withName(name), http.StatusAccepted)
	return err
}

type saveRequest struct {
	Name     string                       `json:"name"`
	Services []model.RemoteClusterService `json:"services"`
}

func withName(name string) runtime.ClientRequestWriterFunc {
	return func(request runtime.ClientRequest, _ strfmt.Registry) error {
		return request.SetPathParam("name", name)
	}
}

func withBody(name string, body any) runtime.ClientRequestWriterFunc {
	return func(request runtime.ClientRequest, _ strfmt.Registry) error {
		if name != "" {
			if err := request.SetPathParam("name", name); err != nil {
				return err
			}
		}
		return request.SetBodyParam(body)
	}
}

func noParams(runtime.ClientRequest, strfmt.Registry) error {
	return nil
}

func submit[T any](ctx context.Context, c remoteClusterClient, id, method, path string, params runtime.ClientRequestWriterFunc, expected int) (T, error) {
	var zero T
	if params == nil {
		params = noParams
	}

	result, err := c.transport.Submit(&runtime.ClientOperation{
		ID:                 id,
		Method:             method,
		PathPattern:        path,
		ProducesMediaTypes: []string{runtime.JSONMime},
		ConsumesMediaTypes: []string{runtime.JSONMime},
		Params:             params,
		Reader:             reader[T](id, expected),
		AuthInfo:           c.auth,
		Context:            ctx,
	})
	if err != nil {
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", id, result)
	}
	return value, nil
}

func reader[T any](id string, expected int) runtime.ClientResponseReaderFunc {
	return func(response runtime.ClientResponse, consumer runtime.Consumer) (any, error) {
		if response.Code() != expected {
			body, err := io.ReadAll(response.Body())
			if err != nil {
				return nil, fmt.Errorf("%s: failed to read response body: %v", id, err)
			}
			return nil, &Error{Operation: id, Code: response.Code(), Message: strings.TrimSpace(string(body))}
		}

		var value T
		if response.Code() == http.StatusAccepted {
			return value, nil
		}
		if err := consumer.Consume(response.Body(), &value); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: failed to decode response: %v", id, err)
		}
		return value, nil
	}
}
