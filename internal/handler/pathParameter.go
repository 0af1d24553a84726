package handler

import (
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/gin-gonic/gin"
)

// GetNameParameter returns the trimmed path parameter of the given name. A missing or blank
// parameter is added as a bad request error to the gin context.
func GetNameParameter(c *gin.Context, parameter string) (string, bool) {
	name := strings.TrimSpace(c.Param(parameter))
	if name == "" {
		_ = c.Error(errdef.NewBadRequest("%s missing", parameter))
		return "", false
	}
	return name, true
}
