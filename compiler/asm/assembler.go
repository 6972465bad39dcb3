// Package asm is a fluent bytecode assembler for constructing
// bytecode.CompiledFunction values directly, used by tests and the CLI
// demo in place of the lexer/parser/compiler pipeline this engine does
// not implement. Grounded on the declarative, per-opcode registration
// style of vm/instruction_factory.go InstructionFactory,
// the same "named entries feeding one table" shape, here building an
// instruction stream instead of a dispatch table. It never reads source
// text: every instruction is emitted by an explicit method call.
package asm

import "github.com/holovm/enginevm/bytecode"

// Assembler accumulates instructions, a constant pool, and named labels
// for one function body.
type Assembler struct {
	name           string
	parameterCount int
	localSlots     int
	instructions   []bytecode.Instruction
	constants      []bytecode.ConstValue
	spans          []bytecode.SourceSpan
	labels         map[string]int
	fixups         []fixup
}

type fixup struct {
	ip      int
	operand int // 1 or 2
	label   string
}

// New starts assembling a function named name.
func New(name string) *Assembler {
	return &Assembler{name: name, labels: make(map[string]int)}
}

// Params sets the function's declared parameter count.
func (a *Assembler) Params(n int) *Assembler {
	a.parameterCount = n
	return a
}

// Locals sets the function's total local slot count (parameters plus
// working locals); must be at least Params().
func (a *Assembler) Locals(n int) *Assembler {
	a.localSlots = n
	return a
}

// Const appends c to the constant pool and returns its index.
func (a *Assembler) Const(c bytecode.ConstValue) uint16 {
	idx := uint16(len(a.constants))
	a.constants = append(a.constants, c)
	return idx
}

// ConstInt is a shorthand for Const(bytecode.ConstIntValue(v)).
func (a *Assembler) ConstInt(v int64) uint16 { return a.Const(bytecode.ConstIntValue(v)) }

// ConstFloat is a shorthand for Const(bytecode.ConstFloatValue(v)).
func (a *Assembler) ConstFloat(v float64) uint16 { return a.Const(bytecode.ConstFloatValue(v)) }

// ConstString is a shorthand for Const(bytecode.ConstStringValue(v)).
func (a *Assembler) ConstString(v string) uint16 { return a.Const(bytecode.ConstStringValue(v)) }

// Label marks the current instruction index under name, for a later Jmp
// to target before or after it is defined.
func (a *Assembler) Label(name string) *Assembler {
	a.labels[name] = len(a.instructions)
	return a
}

// Emit appends a zero-operand instruction.
func (a *Assembler) Emit(op bytecode.Opcode) *Assembler {
	a.instructions = append(a.instructions, bytecode.NewInstruction(op))
	return a
}

// Emit1 appends a single-operand instruction.
func (a *Assembler) Emit1(op bytecode.Opcode, operand uint16) *Assembler {
	a.instructions = append(a.instructions, bytecode.NewInstruction1(op, operand))
	return a
}

// Emit2 appends a two-operand instruction.
func (a *Assembler) Emit2(op bytecode.Opcode, a1, a2 uint16) *Assembler {
	a.instructions = append(a.instructions, bytecode.NewInstruction2(op, a1, a2))
	return a
}

// Jmp emits a branch instruction whose first operand resolves to label's
// instruction index once Build runs, even if the label is defined later
// in the program.
func (a *Assembler) Jmp(op bytecode.Opcode, label string) *Assembler {
	ip := len(a.instructions)
	a.instructions = append(a.instructions, bytecode.NewInstruction(op))
	a.fixups = append(a.fixups, fixup{ip: ip, operand: 1, label: label})
	return a
}

// Line records a source line marker at the current instruction index, for
// CompiledFunction.LineForIP.
func (a *Assembler) Line(line int) *Assembler {
	a.spans = append(a.spans, bytecode.SourceSpan{StartIP: len(a.instructions), Line: line})
	return a
}

// Build resolves every pending label fixup and returns the finished
// function. Panics (at assembly time, not execution time) if a Jmp
// referenced a label that Label never defined, a programming error in
// the caller, not a runtime condition.
func (a *Assembler) Build() *bytecode.CompiledFunction {
	for _, fx := range a.fixups {
		target, ok := a.labels[fx.label]
		if !ok {
			panic("asm: undefined label " + fx.label)
		}
		inst := a.instructions[fx.ip]
		inst.Operand1 = uint16(target)
		a.instructions[fx.ip] = inst
	}
	locals := a.localSlots
	if locals < a.parameterCount {
		locals = a.parameterCount
	}
	return &bytecode.CompiledFunction{
		Name:           a.name,
		Bytecode:       a.instructions,
		Constants:      a.constants,
		ParameterCount: a.parameterCount,
		LocalSlotCount: locals,
		SourceSpans:    a.spans,
	}
}
