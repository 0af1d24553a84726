package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := map[string]struct {
		err        error
		wantStatus int
		wantBody   string
	}{
		"BadRequest":           {errdef.NewBadRequest("invalid view service name %q", "X"), http.StatusBadRequest, `invalid view service name "X"`},
		"Forbidden":            {errdef.NewForbidden("no"), http.StatusForbidden, "no"},
		"Duplicated":           {errdef.NewDuplicated("remote cluster %q already exists", "a"), http.StatusConflict, `remote cluster "a" already exists`},
		"NotFound":             {errdef.NewNotFound("gone"), http.StatusNotFound, "gone"},
		"Unauthorized":         {errdef.NewUnauthorized("token not valid"), http.StatusUnauthorized, "token not valid"},
		"Conflict":             {errdef.NewConflict("conflict"), http.StatusConflict, "conflict"},
		"UnsupportedMediaType": {errdef.NewUnsupportedMediaType("json only"), http.StatusUnsupportedMediaType, "json only"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/", func(c *gin.Context) {
				_ = c.Error(test.err)
			})

			w := httptest.NewRecorder()
			req, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			r.ServeHTTP(w, req)

			assert.Equal(t, test.wantStatus, w.Code)
			assert.Equal(t, test.wantBody, w.Body.String())
		})
	}

	t.Run("InternalServerErrorHidesCause", func(t *testing.T) {
		r := gin.New()
		r.Use(CorrelationID(), ErrorHandler())
		r.GET("/", func(c *gin.Context) {
			_ = c.Error(errors.New("database password is wrong"))
		})

		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, err)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Contains(t, w.Body.String(), w.Header().Get("X-Correlation-ID"))
	})
}
