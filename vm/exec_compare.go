package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

func registerComparisonHandlers(t *dispatchTable) {
	t[bytecode.OpEq] = compareHandler(func(a, b *values.Value) bool { return a.Equal(b) })
	t[bytecode.OpNeq] = compareHandler(func(a, b *values.Value) bool { return !a.Equal(b) })
	t[bytecode.OpLtInt] = compareHandler(func(a, b *values.Value) bool { return a.ToInt() < b.ToInt() })
	t[bytecode.OpGtInt] = compareHandler(func(a, b *values.Value) bool { return a.ToInt() > b.ToInt() })
	t[bytecode.OpLtFloat] = compareHandler(func(a, b *values.Value) bool { return a.ToFloat() < b.ToFloat() })
	t[bytecode.OpGtFloat] = compareHandler(func(a, b *values.Value) bool { return a.ToFloat() > b.ToFloat() })
}

func compareHandler(f func(a, b *values.Value) bool) Handler {
	return func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewBool(f(a, b)))
	}
}

func registerLogicHandlers(t *dispatchTable) {
	t[bytecode.OpLogicAnd] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewBool(a.ToBool() && b.ToBool()))
	}
	t[bytecode.OpLogicOr] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewBool(a.ToBool() || b.ToBool()))
	}
	t[bytecode.OpLogicNot] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewBool(!a.ToBool()))
	}
}
