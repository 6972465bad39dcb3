package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

// registerReturnHandlers wires ret_move and ret_cow, the two return forms
// that read their result out of local slot i (Operand1) instead of the
// operand stack: ret_move transfers ownership of the local to the caller
// without a retain, ret_cow retains it first, so the returned value is a
// shared view that still leaves the local's own reference intact.
func registerReturnHandlers(t *dispatchTable) {
	t[bytecode.OpRetMove] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		retVal := ctx.Local(frame, int(inst.Operand1))
		return false, finishReturn(ctx, frame, retVal)
	}
	t[bytecode.OpRetCow] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		retVal := ctx.Local(frame, int(inst.Operand1))
		values.Retain(retVal)
		return false, finishReturn(ctx, frame, retVal)
	}
}
