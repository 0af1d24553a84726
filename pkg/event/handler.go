package event

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhis2-sre/im-remote-cluster/internal/handler"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const keepAliveInterval = 15 * time.Second

func NewHandler(logger *slog.Logger, broker broker) Handler {
	return Handler{
		logger: logger,
		broker: broker,
	}
}

type Handler struct {
	logger *slog.Logger
	broker broker
}

type broker interface {
	Subscribe() (uuid.UUID, <-chan Event)
	Unsubscribe(id uuid.UUID)
	Len() int
}

// Stream events
func (h Handler) Stream(c *gin.Context) {
	// swagger:route GET /events streamEvents
	//
	// Stream events
	//
	// Stream remoteclusterUpdate events as server-sent events
	//
	// responses:
	//   200: Stream
	//   401: Error
	//
	// security:
	//   oauth2:
	_, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	id, events := h.broker.Subscribe()
	h.logger.InfoContext(ctx, "Subscribed to events", "subscriber", id, "subscribers", h.broker.Len())
	defer func() {
		h.broker.Unsubscribe(id)
		h.logger.InfoContext(ctx, "Unsubscribed from events", "subscriber", id, "subscribers", h.broker.Len())
	}()

	c.Writer.Header().Set("Content-Type", sse.ContentType)
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	// send the headers right away as there might not be an event for a while
	c.Status(http.StatusOK)
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-keepAlive.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{
				Id:    uuid.NewString(),
				Event: event.Type,
				Data:  event,
			})
			return true
		}
	})
}
