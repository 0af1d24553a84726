// Package log provides slog handlers.
package log

import (
	"context"
	"log/slog"

	"github.com/dhis2-sre/im-remote-cluster/internal/middleware"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
)

// KeyRemoteCluster is the attribute holding the name of the remote cluster a request is about.
const KeyRemoteCluster = "remoteCluster"

type ctxKey int

var remoteClusterKey ctxKey

// NewContextWithRemoteCluster returns a new [context.Context] that carries the name of the remote
// cluster being worked on. Records logged with it carry the name as [KeyRemoteCluster].
func NewContextWithRemoteCluster(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, remoteClusterKey, name)
}

// ContextHandler enriches records with the request scoped values found in the [context.Context]:
// the correlation id and the user set by the middlewares and the remote cluster set by handlers. The
// attribute keys match the ones of [middleware.RequestLogger]. Any of them may be missing, for
// example when logging during startup or on public routes.
type ContextHandler struct {
	slog.Handler
}

func New(handler slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: handler}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(attrsFromContext(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func attrsFromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id, ok := middleware.GetCorrelationID(ctx); ok {
		attrs = append(attrs, slog.String(middleware.RequestLoggerKeyCorrelationID, id))
	}
	if user, ok := model.GetUserFromContext(ctx); ok {
		attrs = append(attrs, slog.Uint64(middleware.RequestLoggerKeyUser, uint64(user.ID)))
	}
	if name, ok := ctx.Value(remoteClusterKey).(string); ok {
		attrs = append(attrs, slog.String(KeyRemoteCluster, name))
	}
	return attrs
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return New(h.Handler.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return New(h.Handler.WithGroup(name))
}
