package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

type PrettyJSONHandlerOptions struct {
	slog.HandlerOptions
	// PrettyPrint indents every record. Meant for local development only.
	PrettyPrint bool
}

// NewPrettyJSONHandler returns a [slog.JSONHandler] writing to w, or one whose records are indented
// if opts.PrettyPrint is set.
func NewPrettyJSONHandler(w io.Writer, opts *PrettyJSONHandlerOptions) slog.Handler {
	if opts == nil {
		opts = &PrettyJSONHandlerOptions{}
	}

	if !opts.PrettyPrint {
		return slog.NewJSONHandler(w, &opts.HandlerOptions)
	}

	buf := &bytes.Buffer{}
	return &prettyJSONHandler{
		json:   slog.NewJSONHandler(buf, &opts.HandlerOptions),
		buf:    buf,
		mu:     &sync.Mutex{},
		writer: w,
	}
}

// prettyJSONHandler lets the JSON handler render into a buffer shared by all handlers derived via
// WithAttrs or WithGroup. mu guards buf and writer.
type prettyJSONHandler struct {
	json   slog.Handler
	buf    *bytes.Buffer
	mu     *sync.Mutex
	writer io.Writer
}

func (h *prettyJSONHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.json.Enabled(ctx, level)
}

func (h *prettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.json.Handle(ctx, r); err != nil {
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, h.buf.Bytes(), "", "  "); err != nil {
		return err
	}

	_, err := h.writer.Write(indented.Bytes())
	return err
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{json: h.json.WithAttrs(attrs), buf: h.buf, mu: h.mu, writer: h.writer}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{json: h.json.WithGroup(name), buf: h.buf, mu: h.mu, writer: h.writer}
}
