package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDefinition(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentDefinitionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok || f.Program == nil {
		return nil, nil
	}

	name := symbolAtPosition(f.Text, params.Position)
	if name == "" {
		return nil, nil
	}

	loc := definition(f.Program, params.Position.Line, name)
	if loc == nil {
		return nil, nil
	}

	return &Location{
		URI:   params.TextDocument.URI,
		Range: nameRange(loc, name),
	}, nil
}
