package lsp

import (
	"context"
	"strings"
	"unicode/utf16"

	"github.com/creachadair/jrpc2"

	"github.com/vito/muru/pkg/muru"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	if f == nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	h.mu.Lock()
	text := f.Text
	h.mu.Unlock()

	formatted, err := muru.FormatSource(string(params.TextDocument.URI), []byte(text))
	if err != nil {
		// The parse error will already be shown as a diagnostic
		return []TextEdit{}, nil
	}

	if formatted == text {
		return []TextEdit{}, nil
	}

	// Return a single edit that replaces the entire document
	return []TextEdit{
		{
			Range:   Range{End: endOfText(text)},
			NewText: formatted,
		},
	}, nil
}

// endOfText is the position just past the last character, in UTF-16 units.
func endOfText(text string) Position {
	lines := strings.Split(text, "\n")
	last := lines[len(lines)-1]
	return Position{
		Line:      len(lines) - 1,
		Character: len(utf16.Encode([]rune(last))),
	}
}
