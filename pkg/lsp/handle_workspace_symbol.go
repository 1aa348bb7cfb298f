package lsp

import (
	"context"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleWorkspaceSymbol(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params WorkspaceSymbolParams
	if req.HasParams() {
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	symbols := []SymbolInformation{}

	// Search all open files for functions matching the query
	query := strings.ToLower(params.Query)
	for _, uri := range slices.Sorted(maps.Keys(h.files)) {
		f := h.files[uri]
		if f.Program == nil {
			continue
		}

		container := filepath.Base(string(uri))
		seen := map[string]bool{}
		for _, line := range f.Program.Lines {
			name := line.LineName()
			if seen[name] {
				continue
			}
			seen[name] = true
			if query != "" && !strings.Contains(strings.ToLower(name), query) {
				continue
			}
			symbols = append(symbols, SymbolInformation{
				Name: name,
				Kind: FunctionSymbol,
				Location: Location{
					URI:   uri,
					Range: nameRange(line.GetSourceLocation(), name),
				},
				ContainerName: container,
			})
		}
	}

	slog.DebugContext(ctx, "workspace symbol results", "query", params.Query, "total", len(symbols))

	return symbols, nil
}
