package vm

import (
	"math"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

func binaryIntOp(f func(a, b int64) (int64, error)) Handler {
	return func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		result, err := f(a.ToInt(), b.ToInt())
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewInt(result))
	}
}

func binaryFloatOp(f func(a, b float64) (float64, error)) Handler {
	return func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		b, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		result, err := f(a.ToFloat(), b.ToFloat())
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewFloat(result))
	}
}

func registerArithmeticHandlers(t *dispatchTable) {
	t[bytecode.OpAddInt] = binaryIntOp(func(a, b int64) (int64, error) { return a + b, nil })
	t[bytecode.OpSubInt] = binaryIntOp(func(a, b int64) (int64, error) { return a - b, nil })
	t[bytecode.OpMulInt] = binaryIntOp(func(a, b int64) (int64, error) { return a * b, nil })
	t[bytecode.OpDivInt] = binaryIntOp(func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, NewEngineError(ErrDivisionByZero, "division by zero")
		}
		return a / b, nil
	})
	t[bytecode.OpModInt] = binaryIntOp(func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, NewEngineError(ErrDivisionByZero, "modulo by zero")
		}
		return a % b, nil
	})
	t[bytecode.OpAndInt] = binaryIntOp(func(a, b int64) (int64, error) { return a & b, nil })
	t[bytecode.OpOrInt] = binaryIntOp(func(a, b int64) (int64, error) { return a | b, nil })
	t[bytecode.OpXorInt] = binaryIntOp(func(a, b int64) (int64, error) { return a ^ b, nil })
	t[bytecode.OpShlInt] = binaryIntOp(func(a, b int64) (int64, error) { return a << clampShift(b), nil })
	t[bytecode.OpShrInt] = binaryIntOp(func(a, b int64) (int64, error) { return a >> clampShift(b), nil })

	t[bytecode.OpNegInt] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewInt(-a.ToInt()))
	}
	t[bytecode.OpNotInt] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewInt(^a.ToInt()))
	}
	t[bytecode.OpIncInt] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		slot := int(inst.Operand1)
		cur := ctx.Local(frame, slot)
		ctx.SetLocal(frame, slot, values.NewInt(cur.ToInt()+1))
		return true, nil
	}
	t[bytecode.OpDecInt] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		slot := int(inst.Operand1)
		cur := ctx.Local(frame, slot)
		ctx.SetLocal(frame, slot, values.NewInt(cur.ToInt()-1))
		return true, nil
	}

	t[bytecode.OpAddFloat] = binaryFloatOp(func(a, b float64) (float64, error) { return a + b, nil })
	t[bytecode.OpSubFloat] = binaryFloatOp(func(a, b float64) (float64, error) { return a - b, nil })
	t[bytecode.OpMulFloat] = binaryFloatOp(func(a, b float64) (float64, error) { return a * b, nil })
	t[bytecode.OpDivFloat] = binaryFloatOp(func(a, b float64) (float64, error) {
		if b == 0.0 {
			return 0, NewEngineError(ErrDivisionByZero, "float division by zero")
		}
		return a / b, nil
	})
	t[bytecode.OpNegFloat] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewFloat(-a.ToFloat()))
	}
	t[bytecode.OpSqrtFloat] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		a, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(values.NewFloat(math.Sqrt(a.ToFloat())))
	}
}

// clampShift bounds a shift count to [0, 63] so shl(a, 100) behaves as
// shl(a, 63) instead of Go's own shift-count-too-large panic.
func clampShift(n int64) uint {
	if n < 0 {
		return 0
	}
	if n > 63 {
		return 63
	}
	return uint(n)
}
