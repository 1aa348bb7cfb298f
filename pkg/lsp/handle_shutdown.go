package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	h.files = make(map[DocumentURI]*File)
	return nil, nil
}

func (h *Handler) handleExit(ctx context.Context, req *jrpc2.Request) (any, error) {
	slog.InfoContext(ctx, "exit requested")
	if h.srv != nil {
		// Stop waits for pending handlers, this one included
		go h.srv.Stop()
	}
	return nil, nil
}
