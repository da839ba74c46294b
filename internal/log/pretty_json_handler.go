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
	PrettyPrint bool
}

// NewPrettyJSONHandler returns a JSON handler which indents every record when PrettyPrint is set.
// Handlers derived through WithAttrs and WithGroup keep indenting.
func NewPrettyJSONHandler(w io.Writer, opts *PrettyJSONHandlerOptions) slog.Handler {
	if opts == nil {
		opts = &PrettyJSONHandlerOptions{}
	}

	if !opts.PrettyPrint {
		return slog.NewJSONHandler(w, &opts.HandlerOptions)
	}

	buf := &bytes.Buffer{}
	return &prettyHandler{
		json:   slog.NewJSONHandler(buf, &opts.HandlerOptions),
		buf:    buf,
		lock:   &sync.Mutex{},
		writer: w,
	}
}

// prettyHandler renders records into a shared buffer and indents them before writing. Derived
// handlers share the buffer and its lock.
type prettyHandler struct {
	json   slog.Handler
	buf    *bytes.Buffer
	lock   *sync.Mutex
	writer io.Writer
}

func (h *prettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.json.Enabled(ctx, level)
}

func (h *prettyHandler) Handle(ctx context.Context, r slog.Record) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.buf.Reset()
	if err := h.json.Handle(ctx, r); err != nil {
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, h.buf.Bytes(), "", "  "); err != nil {
		// write the record as is rather than dropping it
		_, err := h.writer.Write(h.buf.Bytes())
		return err
	}

	_, err := h.writer.Write(indented.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.json = h.json.WithAttrs(attrs)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.json = h.json.WithGroup(name)
	return &clone
}
