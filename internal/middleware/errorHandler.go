package middleware

import (
	"fmt"
	"net/http"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/gin-gonic/gin"
)

// ErrorHandler writes the last error added to the gin context as plain text using the status code
// of its errdef class. The console shows that text to the user as is. Unclassified errors are not
// exposed, the response refers to the correlation id instead.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}
		// a handler wrote the status already
		if c.Writer.Status() != http.StatusOK {
			_, _ = c.Writer.WriteString(err.Error())
			return
		}

		status := errdef.StatusCode(err.Err)
		if status == http.StatusInternalServerError {
			id, _ := GetCorrelationID(c.Request.Context())
			c.String(status, fmt.Sprintf("something went wrong. We'll look into it if you send us the id %q :)", id))
			return
		}
		c.String(status, err.Error())
	}
}
