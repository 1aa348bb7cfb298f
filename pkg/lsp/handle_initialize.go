package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleInitialize(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params InitializeParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	if params.RootURI != "" {
		rootPath, err := fromURI(params.RootURI)
		if err != nil {
			h.mu.Unlock()
			return nil, err
		}
		h.rootPath = rootPath
		h.addFolder(rootPath)
	}
	for _, folder := range params.WorkspaceFolders {
		if path, err := fromURI(folder.URI); err == nil {
			h.addFolder(path)
		}
	}
	h.mu.Unlock()

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:           TDSKFull,
			CompletionProvider:         &CompletionProvider{},
			DefinitionProvider:         true,
			HoverProvider:              true,
			RenameProvider:             true,
			DocumentFormattingProvider: true,
			WorkspaceSymbolProvider:    true,
			Workspace: &ServerCapabilitiesWorkspace{
				WorkspaceFolders: WorkspaceFoldersServerCapabilities{
					Supported:           true,
					ChangeNotifications: true,
				},
			},
		},
		ServerInfo: &ServerInfo{Name: languageID},
	}, nil
}

func (h *Handler) handleInitialized(ctx context.Context, req *jrpc2.Request) (any, error) {
	return nil, nil
}
