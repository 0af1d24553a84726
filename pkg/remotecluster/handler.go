package remotecluster

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/dhis2-sre/im-remote-cluster/internal/handler"
	ctxlog "github.com/dhis2-sre/im-remote-cluster/internal/log"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/gin-gonic/gin"
)

func NewHandler(service remoteClusterService) Handler {
	return Handler{service}
}

type remoteClusterService interface {
	Find(ctx context.Context, name string) (model.RemoteCluster, error)
	FindAll(ctx context.Context) ([]model.RemoteCluster, error)
	Create(ctx context.Context, name string, services []model.RemoteClusterService) (model.RemoteCluster, error)
	Update(ctx context.Context, name string, services []model.RemoteClusterService) (model.RemoteCluster, error)
	Delete(ctx context.Context, name string) error
}

type Handler struct {
	service remoteClusterService
}

type ServiceRequest struct {
	Name       string            `json:"name" binding:"required"`
	Properties map[string]string `json:"properties"`
}

type CreateRemoteClusterRequest struct {
	Name     string           `json:"name" binding:"clusterName"`
	Services []ServiceRequest `json:"services" binding:"dive"`
}

// Create remote cluster
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /remoteclusters createRemoteCluster
	//
	// Create remote cluster
	//
	// Create a remote cluster binding view services to parameter values
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: RemoteCluster
	//   400: Error
	//   401: Error
	//   403: Error
	//   409: Error
	//   415: Error
	var request CreateRemoteClusterRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	ctx := ctxlog.NewContextWithRemoteCluster(c.Request.Context(), strings.TrimSpace(request.Name))
	c.Request = c.Request.WithContext(ctx)

	cluster, err := h.service.Create(ctx, request.Name, toServices(request.Services))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, cluster)
}

type UpdateRemoteClusterRequest struct {
	// Name is optional. If given it has to match the name in the path as remote clusters cannot be
	// renamed.
	Name     string           `json:"name"`
	Services []ServiceRequest `json:"services" binding:"dive"`
}

// Update remote cluster
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /remoteclusters/{name} updateRemoteCluster
	//
	// Update remote cluster
	//
	// Replace the services of a remote cluster
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: RemoteCluster
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	//   415: Error
	name, ok := nameParameter(c)
	if !ok {
		return
	}

	var request UpdateRemoteClusterRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	if bodyName := strings.TrimSpace(request.Name); bodyName != "" && bodyName != name {
		_ = c.Error(errdef.NewBadRequest("remote cluster %q cannot be renamed to %q", name, bodyName))
		return
	}

	cluster, err := h.service.Update(c.Request.Context(), name, toServices(request.Services))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cluster)
}

// Delete remote cluster
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /remoteclusters/{name} deleteRemoteCluster
	//
	// Delete remote cluster
	//
	// Delete a remote cluster by its name
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   202:
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	name, ok := nameParameter(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Find remote cluster
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /remoteclusters/{name} findRemoteCluster
	//
	// Find remote cluster
	//
	// Find a remote cluster by its name
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: RemoteCluster
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	name, ok := nameParameter(c)
	if !ok {
		return
	}

	cluster, err := h.service.Find(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cluster)
}

// FindAll remote clusters
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /remoteclusters findAllRemoteClusters
	//
	// Find all remote clusters
	//
	// Find all remote clusters sorted by name
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: RemoteClusters
	//   401: Error
	//   403: Error
	clusters, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, clusters)
}

// nameParameter returns the name of the remote cluster from the path and adds it to the request
// context for logging.
func nameParameter(c *gin.Context) (string, bool) {
	name, ok := handler.GetNameParameter(c, "name")
	if !ok {
		return "", false
	}
	c.Request = c.Request.WithContext(ctxlog.NewContextWithRemoteCluster(c.Request.Context(), name))
	return name, true
}

func toServices(requests []ServiceRequest) []model.RemoteClusterService {
	services := make([]model.RemoteClusterService, 0, len(requests))
	for _, request := range requests {
		services = append(services, model.RemoteClusterService{
			Name:       request.Name,
			Properties: request.Properties,
		})
	}
	return services
}
