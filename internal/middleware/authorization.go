package middleware

import (
	"log/slog"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/dhis2-sre/im-remote-cluster/internal/handler"
	"github.com/gin-gonic/gin"
)

func NewAuthorization(logger *slog.Logger) AuthorizationMiddleware {
	return AuthorizationMiddleware{
		logger: logger,
	}
}

type AuthorizationMiddleware struct {
	logger *slog.Logger
}

// RequireAdministrator lets members of the administrators group through. It has to run after
// authentication.
func (m AuthorizationMiddleware) RequireAdministrator(c *gin.Context) {
	u, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	if !u.IsAdministrator() {
		m.logger.WarnContext(c.Request.Context(), "User tried to access administrator restricted endpoint", "user", u.ID)
		_ = c.Error(errdef.NewForbidden("administrator access denied"))
		c.Abort()
		return
	}

	c.Next()
}
