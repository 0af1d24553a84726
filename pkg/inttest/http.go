package inttest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dhis2-sre/im-remote-cluster/internal/handler"
	"github.com/dhis2-sre/im-remote-cluster/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var registerValidation sync.Once

// SetupHTTPServer starts the engine the service runs with on an httptest server. Routes are
// registered by f on the root group.
func SetupHTTPServer(t *testing.T, f func(router *gin.RouterGroup)) *HTTPClient {
	t.Helper()

	var err error
	registerValidation.Do(func() {
		err = handler.RegisterValidation()
	})
	require.NoError(t, err, "failed to register validation")
	gin.SetMode(gin.TestMode)

	engine := server.GetEngine(discardLogger(), "")
	f(&engine.RouterGroup)

	srv := httptest.NewServer(engine.Handler())
	client := srv.Client()
	t.Cleanup(func() {
		client.CloseIdleConnections()
		srv.Close()
	})

	return &HTTPClient{Client: client, ServerURL: srv.URL}
}

// HTTPClient sends requests to the server started by SetupHTTPServer and fails the test on
// unexpected responses.
type HTTPClient struct {
	Client    *http.Client
	ServerURL string
}

// RequestOption modifies the headers of a request.
type RequestOption func(http.Header)

// WithHeader adds a header with the given key and value to the request.
func WithHeader(key string, value string) RequestOption {
	return func(header http.Header) {
		header.Add(key, value)
	}
}

// WithAuthToken authenticates the request using the given bearer token.
func WithAuthToken(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

var jsonContent = WithHeader("Content-Type", "application/json")

// Delete deletes the resource at path expecting 202 Accepted.
func (hc *HTTPClient) Delete(t *testing.T, path string, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodDelete, path, nil, http.StatusAccepted, options...)
}

// GetJSON decodes the response of a GET to path into responseBody expecting 200 OK.
func (hc *HTTPClient) GetJSON(t *testing.T, path string, responseBody any, options ...RequestOption) {
	t.Helper()
	hc.doJSON(t, http.MethodGet, path, nil, http.StatusOK, responseBody, options...)
}

// PostJSON posts the JSON requestBody to path and decodes the response into responseBody expecting
// 201 Created.
func (hc *HTTPClient) PostJSON(t *testing.T, path string, requestBody io.Reader, responseBody any, options ...RequestOption) {
	t.Helper()
	hc.doJSON(t, http.MethodPost, path, requestBody, http.StatusCreated, responseBody, append(options, jsonContent)...)
}

// PutJSON puts the JSON requestBody to path and decodes the response into responseBody expecting
// 200 OK.
func (hc *HTTPClient) PutJSON(t *testing.T, path string, requestBody io.Reader, responseBody any, options ...RequestOption) {
	t.Helper()
	hc.doJSON(t, http.MethodPut, path, requestBody, http.StatusOK, responseBody, append(options, jsonContent)...)
}

func (hc *HTTPClient) doJSON(t *testing.T, method, path string, requestBody io.Reader, expectedStatus int, responseBody any, options ...RequestOption) {
	t.Helper()

	body := hc.Do(t, method, path, requestBody, expectedStatus, options...)
	require.NoError(t, json.Unmarshal(body, responseBody), errMessage(method, path)+": failed to unmarshal response body")
}

// Do sends a request and returns the response body after asserting the status is expectedStatus.
func (hc *HTTPClient) Do(t *testing.T, method, path string, requestBody io.Reader, expectedStatus int, options ...RequestOption) []byte {
	t.Helper()
	msg := errMessage(method, path)

	req, err := http.NewRequest(method, hc.ServerURL+path, requestBody)
	require.NoError(t, err, msg+": failed to create request")
	for _, option := range options {
		option(req.Header)
	}

	res, err := hc.Client.Do(req)
	require.NoError(t, err, msg+": HTTP request failed")
	defer func() {
		require.NoError(t, res.Body.Close(), msg+": failed to close HTTP response body")
	}()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err, msg+": failed to read HTTP response body")
	require.Equal(t, expectedStatus, res.StatusCode, "%s: HTTP status mismatch, body %q", msg, body)
	return body
}

func errMessage(method, path string) string {
	return fmt.Sprintf("failed %s %q", method, path)
}
