package lsp

import (
	"context"
	"maps"
	"slices"

	"github.com/creachadair/jrpc2"

	"github.com/vito/muru/pkg/muru"
)

func (h *Handler) handleTextDocumentCompletion(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params CompletionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok {
		return CompletionList{Items: []CompletionItem{}}, nil
	}

	var items []CompletionItem

	// parameters of the clause being edited come first
	if f.Program != nil {
		if clause := clauseAt(f.Program, params.Position.Line); clause != nil {
			for _, p := range clause.Params {
				if bound, ok := p.(*muru.BoundParam); ok {
					items = append(items, CompletionItem{
						Label: bound.Name,
						Kind:  VariableCompletion,
					})
				}
			}
		}
	}

	if f.Signatures != nil {
		for _, name := range slices.Sorted(maps.Keys(f.Signatures)) {
			items = append(items, CompletionItem{
				Label:  name,
				Kind:   FunctionCompletion,
				Detail: muru.FormatSignature(f.Signatures[name]),
			})
		}
	} else if f.Program != nil {
		for _, name := range f.Program.FunctionNames() {
			items = append(items, CompletionItem{
				Label: name,
				Kind:  FunctionCompletion,
			})
		}
	}

	for _, kw := range []string{"true", "false"} {
		items = append(items, CompletionItem{Label: kw, Kind: KeywordCompletion})
	}

	return CompletionList{Items: items}, nil
}
