package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/muru/pkg/muru"
)

type session struct {
	t           *testing.T
	cli         *jrpc2.Client
	diagnostics chan PublishDiagnosticsParams
	dir         string
}

func newSession(t *testing.T) *session {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	cch, sch := channel.Direct()
	h := NewHandler(context.Background())
	srv := jrpc2.NewServer(h, &jrpc2.ServerOptions{AllowPush: true})
	h.SetServer(srv)
	srv.Start(sch)

	s := &session{
		t:           t,
		diagnostics: make(chan PublishDiagnosticsParams, 16),
		dir:         dir,
	}
	s.cli = jrpc2.NewClient(cch, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			if req.Method() != "textDocument/publishDiagnostics" {
				return
			}
			var params PublishDiagnosticsParams
			if err := req.UnmarshalParams(&params); err == nil {
				s.diagnostics <- params
			}
		},
	})
	t.Cleanup(func() {
		s.cli.Close() //nolint:errcheck
		srv.Stop()
	})

	var res InitializeResult
	require.NoError(t, s.cli.CallResult(context.Background(), "initialize", InitializeParams{
		RootURI: toURI(dir),
	}, &res))
	require.NoError(t, s.cli.Notify(context.Background(), "initialized", struct{}{}))

	return s
}

func (s *session) uri(name string) DocumentURI {
	return toURI(filepath.Join(s.dir, name))
}

// open sends didOpen and waits for the diagnostics it produces.
func (s *session) open(name, text string) (DocumentURI, []Diagnostic) {
	s.t.Helper()
	uri := s.uri(name)
	require.NoError(s.t, s.cli.Notify(context.Background(), "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	}))
	return uri, s.await(uri)
}

func (s *session) change(uri DocumentURI, version int, text string) []Diagnostic {
	s.t.Helper()
	require.NoError(s.t, s.cli.Notify(context.Background(), "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	}))
	return s.await(uri)
}

func (s *session) await(uri DocumentURI) []Diagnostic {
	s.t.Helper()
	select {
	case params := <-s.diagnostics:
		require.Equal(s.t, uri, params.URI)
		return params.Diagnostics
	case <-time.After(5 * time.Second):
		s.t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

func (s *session) call(method string, params, result any) {
	s.t.Helper()
	require.NoError(s.t, s.cli.CallResult(context.Background(), method, params, result))
}

func at(uri DocumentURI, line, character int) TextDocumentPositionParams {
	return TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: character},
	}
}

func TestInitialize(t *testing.T) {
	s := newSession(t)

	var res InitializeResult
	s.call("initialize", InitializeParams{RootURI: toURI(s.dir)}, &res)
	assert.Equal(t, TDSKFull, res.Capabilities.TextDocumentSync)
	assert.True(t, res.Capabilities.DefinitionProvider)
	assert.True(t, res.Capabilities.DocumentFormattingProvider)
	assert.Equal(t, languageID, res.ServerInfo.Name)

	var folders []WorkspaceFolder
	s.call("workspace/workspaceFolders", nil, &folders)
	require.Len(t, folders, 1)
	assert.Equal(t, toURI(s.dir), folders[0].URI)
}

func TestDiagnostics(t *testing.T) {
	s := newSession(t)

	uri, diags := s.open("test.muru", "main = 1 + 2.0\n")
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "type_mismatch", diags[0].Code)
	assert.Equal(t, languageID, diags[0].Source)
	assert.NotContains(t, diags[0].Message, "\x1b[")
	assert.Equal(t, 0, diags[0].Range.Start.Line)

	diags = s.change(uri, 2, "main = = 1\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "parse", diags[0].Code)
	assert.Equal(t, Range{
		Start: Position{Line: 0, Character: 7},
		End:   Position{Line: 0, Character: 8},
	}, diags[0].Range)

	diags = s.change(uri, 3, "helper = 1\nmain = 2\n")
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, muru.CodeUnusedFunction, diags[0].Code)
	assert.Equal(t, Range{
		Start: Position{Line: 0, Character: 0},
		End:   Position{Line: 0, Character: len("helper")},
	}, diags[0].Range)

	diags = s.change(uri, 4, "main = 2\n")
	assert.Empty(t, diags)

	require.NoError(t, s.cli.Notify(context.Background(), "textDocument/didClose", DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, s.await(uri))
}

func TestDiagnosticsUseProjectConfig(t *testing.T) {
	s := newSession(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, muru.ProjectFile), []byte("entry = \"start\"\n"), 0644))

	_, diags := s.open("test.muru", "main = 1\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "function_not_found", diags[0].Code)
	assert.Contains(t, diags[0].Message, "start")
}

func TestFormatting(t *testing.T) {
	s := newSession(t)
	uri, _ := s.open("test.muru", "main=1+3")

	var edits []TextEdit
	s.call("textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	}, &edits)
	require.Len(t, edits, 1)
	assert.Equal(t, "main = 1 + 3\n", edits[0].NewText)
	assert.Equal(t, Position{Line: 0, Character: len("main=1+3")}, edits[0].Range.End)

	s.change(uri, 2, "main = 1 + 3\n")
	s.call("textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	}, &edits)
	assert.Empty(t, edits)
}

const navigationSource = `fib :: int int
fib 0 = 0
fib 1 = 1
fib n = fib(n - 1) + fib(n - 2)
main = fib(10)
`

func TestDefinition(t *testing.T) {
	s := newSession(t)
	uri, diags := s.open("fib.muru", navigationSource)
	require.Empty(t, diags)

	var loc Location
	s.call("textDocument/definition", DocumentDefinitionParams{at(uri, 4, 8)}, &loc)
	assert.Equal(t, uri, loc.URI)
	assert.Equal(t, Range{
		Start: Position{Line: 0, Character: 0},
		End:   Position{Line: 0, Character: 3},
	}, loc.Range)

	// n in the body of the catch-all resolves to the parameter
	s.call("textDocument/definition", DocumentDefinitionParams{at(uri, 3, 12)}, &loc)
	assert.Equal(t, Range{
		Start: Position{Line: 3, Character: 4},
		End:   Position{Line: 3, Character: 5},
	}, loc.Range)
}

func TestHover(t *testing.T) {
	s := newSession(t)
	uri, _ := s.open("fib.muru", navigationSource)

	var hover Hover
	s.call("textDocument/hover", HoverParams{at(uri, 4, 9)}, &hover)
	assert.Equal(t, "markdown", hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "fib :: int int")

	s.call("textDocument/hover", HoverParams{at(uri, 3, 4)}, &hover)
	assert.Contains(t, hover.Contents.Value, "n :: int")

	s.call("textDocument/hover", HoverParams{at(uri, 4, 0)}, &hover)
	assert.Contains(t, hover.Contents.Value, "main :: int")
}

func TestCompletion(t *testing.T) {
	s := newSession(t)
	uri, _ := s.open("fib.muru", navigationSource)

	var list CompletionList
	s.call("textDocument/completion", CompletionParams{at(uri, 3, 10)}, &list)

	labels := map[string]CompletionItemKind{}
	for _, item := range list.Items {
		labels[item.Label] = item.Kind
	}
	assert.Equal(t, VariableCompletion, labels["n"])
	assert.Equal(t, FunctionCompletion, labels["fib"])
	assert.Equal(t, FunctionCompletion, labels["printi"])
	assert.Equal(t, KeywordCompletion, labels["true"])
	assert.Equal(t, "n", list.Items[0].Label)
}

func TestRename(t *testing.T) {
	s := newSession(t)
	uri, _ := s.open("fib.muru", navigationSource)

	var edit WorkspaceEdit
	s.call("textDocument/rename", RenameParams{
		TextDocumentPositionParams: at(uri, 4, 8),
		NewName:                    "fibonacci",
	}, &edit)

	edits := edit.Changes[uri]
	// signature, three clauses, two recursive calls and the call in main
	require.Len(t, edits, 7)
	for _, e := range edits {
		assert.Equal(t, "fibonacci", e.NewText)
		assert.Equal(t, 3, e.Range.End.Character-e.Range.Start.Character)
	}
	assert.Equal(t, Position{Line: 3, Character: 8}, edits[4].Range.Start)

	s.call("textDocument/rename", RenameParams{
		TextDocumentPositionParams: at(uri, 3, 4),
		NewName:                    "k",
	}, &edit)
	require.Len(t, edit.Changes[uri], 3)

	err := s.cli.CallResult(context.Background(), "textDocument/rename", RenameParams{
		TextDocumentPositionParams: at(uri, 4, 8),
		NewName:                    "int",
	}, &edit)
	require.Error(t, err)
}

func TestWorkspaceSymbol(t *testing.T) {
	s := newSession(t)
	s.open("fib.muru", navigationSource)
	s.open("other.muru", "fibble = 1\nmain = fibble\n")

	var symbols []SymbolInformation
	s.call("workspace/symbol", WorkspaceSymbolParams{Query: "FIB"}, &symbols)

	var names []string
	for _, sym := range symbols {
		names = append(names, sym.Name)
		assert.Equal(t, FunctionSymbol, sym.Kind)
	}
	assert.Equal(t, []string{"fib", "fibble"}, names)
}

func TestShutdown(t *testing.T) {
	s := newSession(t)
	_, err := s.cli.Call(context.Background(), "shutdown", nil)
	require.NoError(t, err)

	_, err = s.cli.Call(context.Background(), "textDocument/hover", HoverParams{at(s.uri("x.muru"), 0, 0)})
	require.Error(t, err)
}

func TestErrorToDiagnostic(t *testing.T) {
	src := "main = 1 +\n"
	_, err := muru.CompileSource(context.Background(), "test.muru", src, muru.DefaultOptions())
	require.Error(t, err)

	diag := errorToDiagnostic(err)
	assert.Equal(t, SeverityError, diag.Severity)
	assert.Equal(t, "parse", diag.Code)
	assert.Equal(t, "unexpected newline, expected expression", diag.Message)
	assert.Equal(t, Position{Line: 0, Character: 10}, diag.Range.Start)

	t.Run("without location", func(t *testing.T) {
		diag := errorToDiagnostic(assert.AnError)
		assert.Equal(t, Range{End: Position{Character: 1}}, diag.Range)
		assert.Equal(t, assert.AnError.Error(), diag.Message)
	})
}

func TestSymbolAtPosition(t *testing.T) {
	text := "fib n = fib(n - 1)\n"
	assert.Equal(t, "fib", symbolAtPosition(text, Position{Line: 0, Character: 0}))
	assert.Equal(t, "fib", symbolAtPosition(text, Position{Line: 0, Character: 3}))
	assert.Equal(t, "n", symbolAtPosition(text, Position{Line: 0, Character: 12}))
	assert.Equal(t, "", symbolAtPosition(text, Position{Line: 0, Character: 16}))
	assert.Equal(t, "", symbolAtPosition(text, Position{Line: 5, Character: 0}))
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a b.muru")
	got, err := fromURI(toURI(path))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(path), got)

	_, err = fromURI("https://example.com/x.muru")
	require.Error(t, err)
}
