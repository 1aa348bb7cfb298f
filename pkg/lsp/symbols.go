package lsp

import (
	"strings"

	"github.com/vito/muru/pkg/muru"
)

func isIdentifierChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func symbolAtPosition(text string, pos Position) string {
	lines := strings.Split(text, "\n")
	if pos.Line >= len(lines) {
		return ""
	}

	line := []rune(lines[pos.Line])
	if pos.Character > len(line) {
		return ""
	}

	// Find word boundaries around the cursor
	start := pos.Character
	for start > 0 && isIdentifierChar(line[start-1]) {
		start--
	}

	end := pos.Character
	for end < len(line) && isIdentifierChar(line[end]) {
		end++
	}

	if start == end {
		return ""
	}

	name := string(line[start:end])
	if name[0] >= '0' && name[0] <= '9' {
		return ""
	}
	return name
}

// clauseAt returns the clause defined on the 0-based line, if any.
func clauseAt(prog *muru.Program, line int) *muru.FunctionClause {
	for _, clause := range prog.Clauses() {
		if clause.Loc.Line-1 == line {
			return clause
		}
	}
	return nil
}

// boundParam returns the parameter of clause binding name, if any.
func boundParam(clause *muru.FunctionClause, name string) (*muru.BoundParam, int) {
	for i, p := range clause.Params {
		if bound, ok := p.(*muru.BoundParam); ok && bound.Name == name {
			return bound, i
		}
	}
	return nil, -1
}

// walkCalls visits every call in expr in source order.
func walkCalls(expr muru.Expression, fn func(*muru.Call)) {
	switch e := expr.(type) {
	case *muru.Call:
		fn(e)
		for _, arg := range e.Args {
			walkCalls(arg, fn)
		}
	case *muru.Binary:
		walkCalls(e.Left, fn)
		walkCalls(e.Right, fn)
	case *muru.Ternary:
		walkCalls(e.Cond, fn)
		walkCalls(e.Then, fn)
		walkCalls(e.Else, fn)
	}
}

// references locates every occurrence of name as seen from the 0-based line.
// A parameter of the clause on that line shadows the global function.
func references(prog *muru.Program, line int, name string) []*muru.SourceLocation {
	if clause := clauseAt(prog, line); clause != nil {
		if param, _ := boundParam(clause, name); param != nil {
			locs := []*muru.SourceLocation{param.Loc}
			walkCalls(clause.Body, func(c *muru.Call) {
				if c.Name == name && len(c.Args) == 0 {
					locs = append(locs, c.Loc)
				}
			})
			return locs
		}
	}

	var locs []*muru.SourceLocation
	for _, l := range prog.Lines {
		if l.LineName() == name {
			locs = append(locs, l.GetSourceLocation())
		}
		clause, ok := l.(*muru.FunctionClause)
		if !ok {
			continue
		}
		shadow, _ := boundParam(clause, name)
		walkCalls(clause.Body, func(c *muru.Call) {
			if c.Name != name {
				return
			}
			if shadow != nil && len(c.Args) == 0 {
				return
			}
			locs = append(locs, c.Loc)
		})
	}
	return locs
}

// definition finds where name is introduced: the parameter binding it on the
// given line, else its signature, else its first clause.
func definition(prog *muru.Program, line int, name string) *muru.SourceLocation {
	if clause := clauseAt(prog, line); clause != nil {
		if param, _ := boundParam(clause, name); param != nil {
			return param.Loc
		}
	}
	for _, sig := range prog.Signatures() {
		if sig.Name == name {
			return sig.Loc
		}
	}
	for _, clause := range prog.Clauses() {
		if clause.Name == name {
			return clause.Loc
		}
	}
	return nil
}
