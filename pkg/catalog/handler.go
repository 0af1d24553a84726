package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dhis2-sre/im-remote-cluster/internal/handler"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/gin-gonic/gin"
)

func NewHandler(service catalogService) Handler {
	return Handler{service}
}

type catalogService interface {
	FindService(ctx context.Context, name string) (model.ViewService, error)
	FindAllServices(ctx context.Context) ([]model.ViewService, error)
	FindView(ctx context.Context, name string) (model.View, error)
	FindAllViews(ctx context.Context) ([]model.View, error)
}

type Handler struct {
	service catalogService
}

// FindAllServices view services
func (h Handler) FindAllServices(c *gin.Context) {
	// swagger:route GET /viewservices findAllViewServices
	//
	// Find all view services
	//
	// Find all view services sorted by name. Every version of a service is listed separately.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []ViewService
	//   401: Error
	//   403: Error
	services, err := h.service.FindAllServices(c.Request.Context())
	if err != nil {
		_ = c.Error(fmt.Errorf("error loading view services: %w", err))
		return
	}

	c.JSON(http.StatusOK, services)
}

// FindService view service
func (h Handler) FindService(c *gin.Context) {
	// swagger:route GET /viewservices/{name} findViewService
	//
	// Find view service
	//
	// Find view service by its name, for example HDFS{2.7.0}
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: ViewService
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	name, ok := handler.GetNameParameter(c, "name")
	if !ok {
		return
	}

	service, err := h.service.FindService(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// FindAllViews views
func (h Handler) FindAllViews(c *gin.Context) {
	// swagger:route GET /views findAllViews
	//
	// Find all views
	//
	// Find all views sorted by name
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: []View
	//   401: Error
	//   403: Error
	views, err := h.service.FindAllViews(c.Request.Context())
	if err != nil {
		_ = c.Error(fmt.Errorf("error loading views: %w", err))
		return
	}

	c.JSON(http.StatusOK, views)
}

// FindView view
func (h Handler) FindView(c *gin.Context) {
	// swagger:route GET /views/{name} findView
	//
	// Find view
	//
	// Find view by its name
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: View
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	name, ok := handler.GetNameParameter(c, "name")
	if !ok {
		return
	}

	view, err := h.service.FindView(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, view)
}
