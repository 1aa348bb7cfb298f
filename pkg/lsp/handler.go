package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/vito/muru/pkg/muru"
)

const languageID = "muru"

// Handler serves the language server methods. It implements jrpc2.Assigner.
type Handler struct {
	methods handler.Map
	srv     *jrpc2.Server

	mu       sync.Mutex
	files    map[DocumentURI]*File
	rootPath string
	folders  []string
	shutdown bool
}

// File is an open document.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic

	// Program is the last successful parse. It survives later syntax errors
	// so navigation keeps working while the user types.
	Program *muru.Program

	// Signatures are from the last successful compile.
	Signatures map[string]*muru.FunctionSignature
}

// NewHandler create JSON-RPC handler for this language server.
func NewHandler(ctx context.Context) *Handler {
	h := &Handler{
		files: make(map[DocumentURI]*File),
	}
	h.methods = handler.Map{
		"initialize":                          h.handleInitialize,
		"initialized":                         h.handleInitialized,
		"shutdown":                            h.handleShutdown,
		"exit":                                h.handleExit,
		"textDocument/didOpen":                h.handleTextDocumentDidOpen,
		"textDocument/didChange":              h.handleTextDocumentDidChange,
		"textDocument/didSave":                h.handleTextDocumentDidSave,
		"textDocument/didClose":               h.handleTextDocumentDidClose,
		"textDocument/completion":             h.handleTextDocumentCompletion,
		"textDocument/definition":             h.handleTextDocumentDefinition,
		"textDocument/hover":                  h.handleTextDocumentHover,
		"textDocument/rename":                 h.handleTextDocumentRename,
		"textDocument/formatting":             h.handleTextDocumentFormatting,
		"workspace/symbol":                    h.handleWorkspaceSymbol,
		"workspace/workspaceFolders":          h.handleWorkspaceWorkspaceFolders,
		"workspace/didChangeWorkspaceFolders": h.handleWorkspaceDidChangeWorkspaceFolders,
	}
	return h
}

// SetServer gives the handler a server to push notifications through.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.srv = srv
}

// Assign implements jrpc2.Assigner. Once shut down, only exit is served.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "handle", "method", method)

	h.mu.Lock()
	shutdown := h.shutdown
	h.mu.Unlock()
	if shutdown && method != "exit" {
		return func(context.Context, *jrpc2.Request) (any, error) {
			return nil, jrpc2.Errorf(jrpc2.InvalidRequest, "server is shutting down")
		}
	}

	return h.methods.Assign(ctx, method)
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

func (h *Handler) logMessage(ctx context.Context, typ MessageType, message string) {
	if h.srv == nil {
		return
	}
	if err := h.srv.Notify(ctx, "window/logMessage", &LogMessageParams{
		Type:    typ,
		Message: message,
	}); err != nil {
		slog.WarnContext(ctx, "failed to log message to client", "error", err)
	}
}

func (h *Handler) file(uri DocumentURI) *File {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.files[uri]
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
}

func (h *Handler) closeFile(ctx context.Context, uri DocumentURI) {
	h.mu.Lock()
	delete(h.files, uri)
	h.mu.Unlock()

	// clear whatever the client still shows for it
	h.publishDiagnostics(ctx, &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
}

// updateFile replaces a document's text, recompiles it from scratch and
// publishes the resulting diagnostics.
func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("document not found: %v", uri)
	}
	if version != nil {
		if *version < f.Version {
			h.mu.Unlock()
			slog.DebugContext(ctx, "ignoring stale update", "uri", uri, "version", *version)
			return nil
		}
		f.Version = *version
	}
	f.Text = text
	h.check(ctx, uri, f)
	params := &PublishDiagnosticsParams{
		URI:         uri,
		Version:     f.Version,
		Diagnostics: f.Diagnostics,
	}
	h.mu.Unlock()

	h.publishDiagnostics(ctx, params)
	return nil
}

func (h *Handler) check(ctx context.Context, uri DocumentURI, f *File) {
	fp, err := fromURI(uri)
	if err != nil {
		slog.WarnContext(ctx, "file path from URI", "uri", uri, "error", err)
		fp = string(uri)
	}

	slog.InfoContext(ctx, "file updated", "path", fp)

	f.Diagnostics = []Diagnostic{}

	prog, err := muru.Parse(fp, f.Text)
	if err != nil {
		f.Diagnostics = append(f.Diagnostics, errorToDiagnostic(err))
		return
	}
	f.Program = prog

	res, err := muru.Compile(ctx, prog, h.optionsFor(ctx, fp))
	if err != nil {
		f.Diagnostics = append(f.Diagnostics, errorToDiagnostic(err))
		return
	}
	f.Signatures = res.Signatures

	for _, d := range res.Diagnostics {
		f.Diagnostics = append(f.Diagnostics, warningToDiagnostic(d))
	}
}

// optionsFor honors the muru.toml governing the file, if any.
func (h *Handler) optionsFor(ctx context.Context, path string) muru.Options {
	_, config, err := muru.FindProjectConfig(ctx, filepath.Dir(path))
	if err != nil {
		slog.WarnContext(ctx, "failed to load project config", "path", path, "error", err)
		h.logMessage(ctx, MessageWarning, err.Error())
	}
	return config.Options()
}

func (h *Handler) publishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) {
	if h.srv == nil {
		return
	}
	if params.Diagnostics == nil {
		params.Diagnostics = []Diagnostic{}
	}
	if err := h.srv.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

// errorToDiagnostic converts a compile error to an LSP Diagnostic
func errorToDiagnostic(err error) Diagnostic {
	message := err.Error()
	var sourceErr *muru.SourceError
	if errors.As(err, &sourceErr) {
		message = sourceErr.Inner.Error()
	}
	var parseErr *muru.ParseError
	if errors.As(err, &parseErr) {
		message = parseErr.Message
	}

	return Diagnostic{
		Range:    locationRange(muru.ErrorLocation(err)),
		Severity: SeverityError,
		Code:     muru.ErrorCode(err),
		Source:   languageID,
		Message:  ansi.Strip(message),
	}
}

func warningToDiagnostic(d muru.Diagnostic) Diagnostic {
	severity := SeverityWarning
	if d.Severity == muru.SeverityError {
		severity = SeverityError
	}
	return Diagnostic{
		Range:    locationRange(d.Location),
		Severity: severity,
		Code:     d.Code,
		Source:   languageID,
		Message:  d.Message,
	}
}

// locationRange converts a 1-based source location to an LSP range. A
// missing location points at the start of the file.
func locationRange(loc *muru.SourceLocation) Range {
	if loc == nil {
		return Range{End: Position{Character: 1}}
	}
	length := loc.Length
	if length == 0 {
		length = 1
	}
	start := Position{Line: loc.Line - 1, Character: loc.Column - 1}
	return Range{
		Start: start,
		End:   Position{Line: start.Line, Character: start.Character + length},
	}
}

// nameRange covers just a name starting at loc.
func nameRange(loc *muru.SourceLocation, name string) Range {
	start := Position{Line: loc.Line - 1, Character: loc.Column - 1}
	return Range{
		Start: start,
		End:   Position{Line: start.Line, Character: start.Character + len([]rune(name))},
	}
}

func (h *Handler) addFolder(folder string) {
	folder = filepath.Clean(folder)
	for _, cur := range h.folders {
		if cur == folder {
			return
		}
	}
	h.folders = append(h.folders, folder)
}

func (h *Handler) removeFolder(folder string) {
	folder = filepath.Clean(folder)
	for i, cur := range h.folders {
		if cur == folder {
			h.folders = append(h.folders[:i], h.folders[i+1:]...)
			return
		}
	}
}
