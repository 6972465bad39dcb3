package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/feedback"
	"github.com/holovm/enginevm/values"
)

// registerGuardHandlers wires the guard_<T> family: each peeks the top of
// the operand stack and routes the result through the type-feedback
// collector. A match falls through to the next instruction; a miss jumps
// to the deopt address in Operand1 when one is set, leaving the value on
// the stack for the deopt path to re-dispatch on its actual type. A miss
// with no deopt address (Operand1 == 0) still records the event but
// simply falls through, since there is nowhere else to send control.
func registerGuardHandlers(t *dispatchTable) {
	t[bytecode.OpGuardNull] = guardHandler(values.TypeNull)
	t[bytecode.OpGuardBool] = guardHandler(values.TypeBool)
	t[bytecode.OpGuardInt] = guardHandler(values.TypeInt)
	t[bytecode.OpGuardFloat] = guardHandler(values.TypeFloat)
	t[bytecode.OpGuardString] = guardHandler(values.TypeString)
	t[bytecode.OpGuardArray] = guardHandler(values.TypeArray)
	t[bytecode.OpGuardObject] = guardHandler(values.TypeObject)
}

func guardHandler(expected values.ValueType) Handler {
	return func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Peek()
		if err != nil {
			return true, err
		}
		site := feedback.EncodeSiteID(frame.IP, feedback.CategoryTypeGuard)
		matched := m.feedback.CheckTypeGuard(site, v, expected)
		if matched || inst.Operand1 == 0 {
			frame.IP++
			return false, nil
		}
		frame.IP = int(inst.Operand1)
		return false, nil
	}
}
