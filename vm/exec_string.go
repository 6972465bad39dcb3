package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

func registerStringHandlers(t *dispatchTable) {
	t[bytecode.OpConcat] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(a.Concat(b))
	}
	t[bytecode.OpStrlen] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewInt(int64(len(v.ToString()))))
	}
}
