package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/creachadair/jrpc2"

	"github.com/vito/muru/pkg/muru"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok || f.Program == nil || f.Signatures == nil {
		return nil, nil
	}

	name := symbolAtPosition(f.Text, params.Position)
	if name == "" {
		return nil, nil
	}

	slog.DebugContext(ctx, "hover request", "uri", params.TextDocument.URI, "position", params.Position, "symbol", name)

	var typeInfo string
	if clause := clauseAt(f.Program, params.Position.Line); clause != nil {
		if _, i := boundParam(clause, name); i >= 0 {
			if sig, ok := f.Signatures[clause.Name]; ok && i < len(sig.Args) {
				typeInfo = fmt.Sprintf("%s :: %s", name, sig.Args[i])
			}
		}
	}
	if typeInfo == "" {
		sig, ok := f.Signatures[name]
		if !ok {
			return nil, nil
		}
		typeInfo = muru.FormatSignature(sig)
	}

	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: fmt.Sprintf("```%s\n%s\n```", languageID, typeInfo),
		},
	}, nil
}
