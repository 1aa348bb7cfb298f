package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleWorkspaceDidChangeWorkspaceFolders(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidChangeWorkspaceFoldersParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, folder := range params.Event.Removed {
		if path, err := fromURI(folder.URI); err == nil {
			h.removeFolder(path)
		}
	}
	for _, folder := range params.Event.Added {
		if path, err := fromURI(folder.URI); err == nil {
			h.addFolder(path)
		}
	}

	return nil, nil
}
