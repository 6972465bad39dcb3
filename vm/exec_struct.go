package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

// registerStructHandlers wires the fixed-layout struct family: unlike
// objects, field access is by dense index rather than by name, so these
// handlers never touch a string constant.
func registerStructHandlers(t *dispatchTable) {
	t[bytecode.OpNewStruct] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		name := frame.Function.Constants[inst.Operand1].StrVal
		fieldCount := int(inst.Operand2)
		return true, ctx.Push(values.NewStruct(name, fieldCount))
	}
	t[bytecode.OpStructGet] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		s, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !s.IsStruct() {
			return true, NewEngineError(ErrTypeMismatch, "struct_get on a non-struct value")
		}
		return true, ctx.Push(s.StructGet(int(inst.Operand1)))
	}
	t[bytecode.OpStructSet] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		val, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		s, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !s.IsStruct() {
			return true, NewEngineError(ErrTypeMismatch, "struct_set on a non-struct value")
		}
		s.StructSet(int(inst.Operand1), val)
		return true, ctx.Push(s)
	}
}
