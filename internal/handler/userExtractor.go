package handler

import (
	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/gin-gonic/gin"
)

// GetUserFromContext returns the user the authentication middleware stored in the request context.
// Handlers behind authentication can rely on it being present, an error means the route was
// registered without authentication.
func GetUserFromContext(c *gin.Context) (*model.User, error) {
	user, ok := model.GetUserFromContext(c.Request.Context())
	if !ok || user == nil {
		return nil, errdef.NewUnauthorized("user not found on context")
	}
	return user, nil
}
