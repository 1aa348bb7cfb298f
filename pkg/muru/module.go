package muru

import (
	"github.com/vito/muru/pkg/ir"
)

// DefaultImportModule is the WASI namespace fd_write is imported from.
const DefaultImportModule = "wasi_unstable"

// Module assembles the complete module: the fd_write import, one import per
// external declaration, the exported memory, the start routine, the user
// functions and finally the runtime library. The start routine is left out
// when entry is empty.
func Module(importModule, entry string, externs []*FunctionSignature, funcs []ir.Node, lib []RuntimeFunc) ir.Node {
	if importModule == "" {
		importModule = DefaultImportModule
	}

	module := ir.Instr("module",
		ir.Instr("import",
			ir.Quote(importModule),
			ir.Quote("fd_write"),
			ir.Instr("func",
				ir.Dollar("fd_write"),
				ir.Instr("param", "i32", "i32", "i32", "i32"),
				ir.Instr("result", "i32"))),
	)

	for _, sig := range externs {
		module = ir.Extend(module, importFunc(importModule, sig))
	}

	module = ir.Extend(module, ir.Instr("export", ir.Quote("memory"), ir.Instr("memory", 0)))
	module = ir.Extend(module, ir.Instr("memory", 1))

	if entry != "" {
		module = ir.Extend(module, startFunc(entry))
	}

	for _, fn := range funcs {
		module = ir.Extend(module, fn)
	}

	for _, fn := range lib {
		module = ir.Extend(module, fn.Func)
	}

	return module
}

// importFunc declares a host function with the types of its signature:
//
//	(import "env" "ticks" (func $ticks (result i32)))
func importFunc(importModule string, sig *FunctionSignature) ir.Node {
	return ir.Instr("import", ir.Quote(importModule), ir.Quote(sig.Name), funcHeader(sig.Name, sig))
}

// funcHeader starts a function form. The param list is left out for
// functions without arguments.
func funcHeader(name string, sig *FunctionSignature) ir.Node {
	fun := ir.Instr("func", ir.Dollar(name))
	if len(sig.Args) > 0 {
		param := ir.Instr("param")
		for _, arg := range sig.Args {
			param = ir.Extend(param, ir.Atom(arg.Tag()))
		}
		fun = ir.Extend(fun, param)
	}
	return ir.Extend(fun, ir.Instr("result", sig.Return.Tag()))
}

// startFunc prints the entry point's result followed by a newline.
func startFunc(entry string) ir.Node {
	return ir.Instr("func",
		ir.Dollar("_start"),
		ir.Instr("export", ir.Quote("_start")),
		ir.Instr("call",
			ir.Dollar("printi"),
			ir.Instr("call", ir.Dollar(entry))),
		ir.Instr("call", ir.Dollar("printc"), ir.Instr("i32.const", 10)))
}
