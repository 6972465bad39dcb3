package vm

import "github.com/holovm/enginevm/bytecode"

// Handler executes one instruction. It returns advance=true when the main
// loop should move to the next instruction (frame.IP++); control-flow
// handlers (jmp, call, ret, ...) manage frame.IP themselves and return
// advance=false.
type Handler func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (advance bool, err error)

// dispatchTable is a plain [256]Handler array indexed by opcode: a
// computed-dispatch table in place of a big opcode switch or a
// map-based instruction factory. Declaratively populated by
// registerHandlers, one category at a time, but as a real array so
// dispatch is an indexed jump rather than a map probe or a chain of
// switch comparisons.
type dispatchTable [bytecode.OpcodeCount]Handler

func buildDispatchTable() *dispatchTable {
	var t dispatchTable
	registerStackHandlers(&t)
	registerArithmeticHandlers(&t)
	registerComparisonHandlers(&t)
	registerLogicHandlers(&t)
	registerControlHandlers(&t)
	registerGuardHandlers(&t)
	registerHeapHandlers(&t)
	registerStructHandlers(&t)
	registerConversionHandlers(&t)
	registerStringHandlers(&t)
	registerArgPassingHandlers(&t)
	registerReturnHandlers(&t)
	registerDebugHandlers(&t)
	return &t
}
