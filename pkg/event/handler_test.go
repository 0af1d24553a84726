package event

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	broker := NewBroker()
	r := gin.New()
	Routes(&r.RouterGroup, fakeAuthentication{user: &model.User{ID: 1, Email: "admin@dhis2.org"}}, NewHandler(logger, broker))
	server := httptest.NewServer(r)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	require.NoError(t, err)
	res, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, func() bool {
		return broker.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, broker.Publish(ctx, Event{Type: RemoteClusterUpdate, Action: "created", Name: "cluster1"}))

	var gotEvent, gotData string
	sc := bufio.NewScanner(res.Body)
	for sc.Scan() {
		line := sc.Text()
		if value, ok := strings.CutPrefix(line, "event:"); ok {
			gotEvent = value
		}
		if value, ok := strings.CutPrefix(line, "data:"); ok {
			gotData = value
			break
		}
	}

	assert.Equal(t, RemoteClusterUpdate, gotEvent)
	var event Event
	require.NoError(t, json.Unmarshal([]byte(gotData), &event))
	assert.Equal(t, Event{Type: RemoteClusterUpdate, Action: "created", Name: "cluster1"}, event)

	cancel()
	assert.Eventually(t, func() bool {
		return broker.Len() == 0
	}, 2*time.Second, 10*time.Millisecond, "subscriber should be removed once the client is gone")
}

func TestHandler_Stream_NoUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewBroker())

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	req, err := http.NewRequest(http.MethodGet, "/events", nil)
	require.NoError(t, err)
	c.Request = req

	handler.Stream(c)

	require.Len(t, c.Errors, 1)
	assert.ErrorContains(t, c.Errors.Last(), "user not found on context")
}

type fakeAuthentication struct {
	user *model.User
}

func (f fakeAuthentication) TokenAuthentication(c *gin.Context) {
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), f.user))
	c.Next()
}
