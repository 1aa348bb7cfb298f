package muru

import (
	"github.com/vito/muru/pkg/ir"
)

// Slots maps the bound parameters of a clause to their argument positions.
type Slots map[string]int

// ClauseSlots binds each named parameter of the clause to its position.
// Literal parameters keep their position but are not addressable.
func ClauseSlots(clause *FunctionClause) Slots {
	slots := Slots{}
	for i, param := range clause.Params {
		if p, ok := param.(*BoundParam); ok {
			slots[p.Name] = i
		}
	}
	return slots
}

// Lower translates a validated expression into instructions. It relies on the
// types the Checker recorded on each node.
func Lower(expr Expression, slots Slots) ir.Node {
	switch e := expr.(type) {
	case *Literal:
		return lowerLiteral(e)
	case *Call:
		if i, ok := slots[e.Name]; ok && len(e.Args) == 0 {
			return ir.Instr("local.get", i)
		}
		call := ir.Instr("call", ir.Dollar(e.Name))
		for _, arg := range e.Args {
			call = ir.Extend(call, Lower(arg, slots))
		}
		return call
	case *Binary:
		return ir.Instr(e.GetInferredType().Tag()+"."+e.Op.Mnemonic(),
			Lower(e.Left, slots),
			Lower(e.Right, slots))
	case *Ternary:
		return ir.Instr("if",
			ir.Instr("result", e.GetInferredType().Tag()),
			Lower(e.Cond, slots),
			ir.Instr("then", Lower(e.Then, slots)),
			ir.Instr("else", Lower(e.Else, slots)))
	}
	panic("unhandled expression")
}

func lowerLiteral(lit *Literal) ir.Node {
	return ir.Instr(lit.Type.Tag()+".const", lit.Immediate())
}
