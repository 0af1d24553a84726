package handler

import (
	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/gin-gonic/gin"
)

// DataBinder binds the JSON body of the request to req and validates it. Validation failures are
// returned as bad request errors with one message per invalid field.
func DataBinder(c *gin.Context, req any) error {
	if c.ContentType() != gin.MIMEJSON {
		return errdef.NewUnsupportedMediaType("%s only accepts content of type %s", c.FullPath(), gin.MIMEJSON)
	}

	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	if message, ok := validationMessage(err); ok {
		return errdef.NewBadRequest("%s", message)
	}
	return errdef.NewBadRequest("error binding data: %v", err)
}
