package lsp

import (
	"context"
	"log/slog"
	"unicode"

	"github.com/creachadair/jrpc2"

	"github.com/vito/muru/pkg/muru"
)

func (h *Handler) handleTextDocumentRename(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params RenameParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	if !validName(params.NewName) {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "invalid name: %q", params.NewName)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok || f.Program == nil {
		slog.WarnContext(ctx, "no program for rename", "uri", params.TextDocument.URI)
		return nil, nil
	}

	name := symbolAtPosition(f.Text, params.Position)
	if name == "" {
		return nil, nil
	}

	slog.InfoContext(ctx, "renaming symbol", "symbol", name, "newName", params.NewName)

	edits := []TextEdit{}
	for _, loc := range references(f.Program, params.Position.Line, name) {
		edits = append(edits, TextEdit{
			Range:   nameRange(loc, name),
			NewText: params.NewName,
		})
	}

	return &WorkspaceEdit{
		Changes: map[DocumentURI][]TextEdit{
			params.TextDocument.URI: edits,
		},
	}, nil
}

// validName reports whether name can be written as an identifier.
func validName(name string) bool {
	if name == "" || name == "true" || name == "false" {
		return false
	}
	if _, isType := muru.ParseVariableType(name); isType {
		return false
	}
	for i, r := range name {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
