package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestLoggerKeyCorrelationID = "correlationId"
	RequestLoggerKeyUser          = "user"
	correlationIDHeader           = "X-Correlation-ID"
)

type ctxKey int

var correlationIDKey ctxKey

// CorrelationID is a Gin middleware that adds a correlation ID to the [http.Request.Context]. An ID
// sent by the client in the X-Correlation-ID header is reused, otherwise one is generated. The ID is
// echoed back in the response header.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		ctx := NewContextWithCorrelationID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(correlationIDHeader, id)

		c.Next()
	}
}

// NewContextWithCorrelationID returns a new [context.Context] that carries value correlationID.
func NewContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// GetCorrelationID returns the correlation ID stored in the ctx, if any. It had to have been set by
// the [CorrelationID] middleware before.
func GetCorrelationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey).(string)
	return id, ok
}

// RequestLogger logs one record per request once it has been handled. Client errors are logged as
// warnings and server errors as errors, both with the errors the handlers added to the gin context.
// Successful health checks are only logged at debug level as they would drown everything else.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []slog.Attr{
			requestAttr(c, start),
			slog.Group("response",
				slog.Time("time", start.Add(latency)),
				slog.Duration("latency", latency),
				slog.Int("status", status),
				slog.Int("size", c.Writer.Size()),
			),
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case strings.HasSuffix(c.FullPath(), "/health"):
			level = slog.LevelDebug
		}
		if level >= slog.LevelWarn {
			attrs = append([]slog.Attr{slog.String("error", c.Errors.String())}, attrs...)
		}

		logger.LogAttrs(c.Request.Context(), level, "Processed HTTP request", attrs...)
	}
}

func requestAttr(c *gin.Context, start time.Time) slog.Attr {
	params := make(map[string]string, len(c.Params))
	for _, param := range c.Params {
		params[param.Key] = param.Value
	}

	return slog.Group("request",
		slog.Time("time", start),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("route", c.FullPath()),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Any("params", params),
		slog.String("host", c.Request.Host),
		slog.String("userAgent", c.Request.UserAgent()),
		slog.String("ip", c.ClientIP()),
	)
}
