package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

// registerArgPassingHandlers wires the four argument-passing conventions,
// each of which pops the top-of-stack and places it into local slot i
// (Operand1) with the named semantics, plus the cow_check/cow_copy pair
// that defers an array/object copy until the first write actually
// happens: cow_check i reports whether slot i is currently shared,
// cow_copy i performs the deep copy a true miss requires.
func registerArgPassingHandlers(t *dispatchTable) {
	t[bytecode.OpPassByValue] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if v.IsHeapAllocated() {
			v = v.Clone()
		}
		ctx.SetLocal(frame, int(inst.Operand1), v)
		return true, nil
	}
	t[bytecode.OpPassByRef] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		ctx.SetLocal(frame, int(inst.Operand1), v)
		return true, nil
	}
	t[bytecode.OpPassByCow] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		ctx.SetLocal(frame, int(inst.Operand1), v)
		return true, nil
	}
	t[bytecode.OpPassByMove] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		setLocalNoRetain(ctx, frame, int(inst.Operand1), v)
		return true, nil
	}
	t[bytecode.OpCowCheck] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v := ctx.Local(frame, int(inst.Operand1))
		return true, ctx.Push(values.NewBool(v.IsShared()))
	}
	t[bytecode.OpCowCopy] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		slot := int(inst.Operand1)
		v := ctx.Local(frame, slot)
		if v.IsShared() {
			clone := v.Clone()
			values.Release(v)
			setLocalNoRetain(ctx, frame, slot, clone)
		}
		return true, nil
	}
}

// setLocalNoRetain stores v into frame-relative local slot i without
// retaining it, releasing whatever was there before: the slot takes over
// the caller's existing reference instead of adding one of its own. Used
// by pass_by_move (ownership transfer) and cow_copy (the fresh clone
// already starts at ref count 1).
func setLocalNoRetain(ctx *ExecutionContext, frame *CallFrame, i int, v *values.Value) {
	idx := frame.BasePointer + i
	if old := ctx.operandStack[idx]; old != nil {
		values.Release(old)
	}
	ctx.operandStack[idx] = v
}
