package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

func registerStackHandlers(t *dispatchTable) {
	t[bytecode.OpNop] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		return true, nil
	}
	t[bytecode.OpPushConst] = execPushConst
	t[bytecode.OpPushLocal] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v := ctx.Local(frame, int(inst.Operand1))
		return true, ctx.Push(v)
	}
	t[bytecode.OpPushGlobal] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		name := frame.Function.Constants[inst.Operand1].StrVal
		v, ok := ctx.GetGlobal(name)
		if !ok {
			v = values.NewNull()
		}
		return true, ctx.Push(v)
	}
	t[bytecode.OpPop] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		_, err := ctx.Pop()
		return true, err
	}
	t[bytecode.OpDup] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Peek()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(v)
	}
	t[bytecode.OpSwap] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if err := ctx.Push(b); err != nil {
			return true, err
		}
		return true, ctx.Push(a)
	}
	t[bytecode.OpPushNull] = pushConstHandler(values.NewNull())
	t[bytecode.OpPushTrue] = pushConstHandler(values.NewBool(true))
	t[bytecode.OpPushFalse] = pushConstHandler(values.NewBool(false))
	t[bytecode.OpPushInt0] = pushConstHandler(values.NewInt(0))
	t[bytecode.OpPushInt1] = pushConstHandler(values.NewInt(1))
	t[bytecode.OpStoreLocal] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		ctx.SetLocal(frame, int(inst.Operand1), v)
		return true, nil
	}
	t[bytecode.OpStoreGlobal] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		name := frame.Function.Constants[inst.Operand1].StrVal
		ctx.SetGlobal(name, v)
		return true, nil
	}
}

func pushConstHandler(v *values.Value) Handler {
	return func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		return true, ctx.Push(v)
	}
}

func execPushConst(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
	c := frame.Function.Constants[inst.Operand1]
	return true, ctx.Push(constToValue(c))
}

func constToValue(c bytecode.ConstValue) *values.Value {
	switch c.Kind {
	case bytecode.ConstNull:
		return values.NewNull()
	case bytecode.ConstBool:
		return values.NewBool(c.BoolVal)
	case bytecode.ConstInt:
		return values.NewInt(c.IntVal)
	case bytecode.ConstFloat:
		return values.NewFloat(c.FloatVal)
	case bytecode.ConstString:
		return values.NewString(c.StrVal)
	default:
		return values.NewNull()
	}
}
