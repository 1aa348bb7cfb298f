package muru

import (
	"github.com/vito/muru/pkg/ir"
)

// RuntimeFunc is a hand-written function linked into every module. Its
// signature is registered before user code is validated.
type RuntimeFunc struct {
	Signature *FunctionSignature
	Func      ir.Node
}

// Runtime returns the runtime library: printc writes a single byte to
// stdout, printi writes a non-negative integer in decimal.
func Runtime() []RuntimeFunc {
	return []RuntimeFunc{
		{
			Signature: &FunctionSignature{Name: "printc", Return: Int},
			Func:      printcFunc(),
		},
		{
			Signature: &FunctionSignature{Name: "printi", Return: Int},
			Func:      printiFunc(),
		},
	}
}

// printcFunc builds an iovec at address 0 pointing at the byte stored at
// address 8, and hands it to fd_write on fd 1.
func printcFunc() ir.Node {
	return ir.Instr("func",
		ir.Dollar("printc"),
		ir.Instr("param", ir.Dollar("char"), "i32"),
		ir.Instr("i32.store", ir.Instr("i32.const", 0), ir.Instr("i32.const", 8)),
		ir.Instr("i32.store", ir.Instr("i32.const", 4), ir.Instr("i32.const", 1)),
		ir.Instr("i32.store",
			ir.Instr("i32.const", 8),
			ir.Instr("local.get", ir.Dollar("char"))),
		ir.Instr("call",
			ir.Dollar("fd_write"),
			ir.Instr("i32.const", 1),
			ir.Instr("i32.const", 0),
			ir.Instr("i32.const", 1),
			ir.Instr("i32.const", 20)),
		ir.Instr("drop"),
	)
}

// printiFunc recurses on num/10 before printing the last digit.
func printiFunc() ir.Node {
	return ir.Instr("func",
		ir.Dollar("printi"),
		ir.Instr("param", ir.Dollar("num"), "i32"),
		ir.Instr("if",
			ir.Instr("i32.ne",
				ir.Instr("i32.const", 0),
				ir.Instr("local.get", ir.Dollar("num"))),
			ir.Instr("then",
				ir.Instr("call",
					ir.Dollar("printi"),
					ir.Instr("i32.div_u",
						ir.Instr("local.get", ir.Dollar("num")),
						ir.Instr("i32.const", 10))),
				ir.Instr("call",
					ir.Dollar("printc"),
					ir.Instr("i32.add",
						ir.Instr("i32.const", 48),
						ir.Instr("i32.rem_u",
							ir.Instr("local.get", ir.Dollar("num")),
							ir.Instr("i32.const", 10)))),
			),
		),
	)
}
