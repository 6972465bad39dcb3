package vm

import (
	"errors"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/values"
)

func registerControlHandlers(t *dispatchTable) {
	t[bytecode.OpJmp] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		frame.IP = int(inst.Operand1)
		return false, nil
	}
	t[bytecode.OpJz] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !v.ToBool() {
			frame.IP = int(inst.Operand1)
		} else {
			frame.IP++
		}
		return false, nil
	}
	t[bytecode.OpJnz] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if v.ToBool() {
			frame.IP = int(inst.Operand1)
		} else {
			frame.IP++
		}
		return false, nil
	}
	t[bytecode.OpCall] = execCall
	t[bytecode.OpCallMethod] = execCallMethod
	t[bytecode.OpCallBuiltin] = execCallBuiltin
	t[bytecode.OpRet] = execRet
	t[bytecode.OpRetVoid] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		return false, finishReturn(ctx, frame, values.NewNull())
	}
	t[bytecode.OpHalt] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		ctx.Halted = true
		return false, nil
	}
	// loop_start/loop_end are hot-spot markers: semantics equal nop. The
	// profiler's per-ip counts (recorded by the run loop before dispatch)
	// are what a future tier would read to find them.
	t[bytecode.OpLoopStart] = nopHandler
	t[bytecode.OpLoopEnd] = nopHandler
}

func nopHandler(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
	return true, nil
}

// allocateFrameLocals grows the operand stack so [basePointer,
// basePointer+localSlotCount) is addressable, zero-filling any slots
// beyond what the caller already pushed as arguments.
func allocateFrameLocals(ctx *ExecutionContext, basePointer, localSlotCount int) error {
	newTop := basePointer + localSlotCount
	if newTop > OperandStackCapacity {
		return NewEngineError(ErrStackOverflow, "operand stack exceeded capacity %d", OperandStackCapacity)
	}
	for i := ctx.stackTop; i < newTop; i++ {
		ctx.operandStack[i] = values.NewNull()
	}
	ctx.stackTop = newTop
	return nil
}

func execCall(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
	funcID := inst.Operand1
	argc := int(inst.Operand2)
	fn, ok := m.registry.LookupFunctionByID(funcID)
	if !ok {
		return true, NewEngineError(ErrUndefinedFunction, "undefined function id %d", funcID)
	}
	basePointer := ctx.stackTop - argc
	if basePointer < 0 {
		return true, NewEngineError(ErrStackUnderflow, "call: fewer than %d arguments on the operand stack", argc)
	}
	if err := allocateFrameLocals(ctx, basePointer, fn.LocalSlotCount); err != nil {
		return true, err
	}
	newFrame := newCallFrame(fn, basePointer, frame.IP+1)
	if err := ctx.pushFrame(newFrame); err != nil {
		return true, err
	}
	return false, nil
}

func execCallMethod(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
	methodName := frame.Function.Constants[inst.Operand1].StrVal
	argc := int(inst.Operand2)
	receiverIdx := ctx.stackTop - argc - 1
	if receiverIdx < 0 {
		return true, NewEngineError(ErrStackUnderflow, "call_method: missing receiver on the operand stack")
	}
	receiver := ctx.operandStack[receiverIdx]
	if receiver == nil || receiver.Type != values.TypeObject {
		return true, NewEngineError(ErrTypeMismatch, "call_method %q on a non-object receiver", methodName)
	}
	className := receiver.ClassName()
	cls, ok := m.classes.ByName(className)
	if !ok {
		return true, NewEngineError(ErrUndefinedFunction, "undefined class %q", className)
	}

	var fn *bytecode.CompiledFunction
	if ref, ok := m.methodCache.Lookup(methodName, cls.ID); ok {
		fn = ref.(*bytecode.CompiledFunction)
	} else {
		fn, ok = cls.ResolveMethod(methodName)
		if !ok {
			return true, NewEngineError(ErrUndefinedFunction, "undefined method %s::%s", className, methodName)
		}
		m.methodCache.Populate(methodName, cls.ID, fn)
	}

	basePointer := receiverIdx
	if err := allocateFrameLocals(ctx, basePointer, fn.LocalSlotCount); err != nil {
		return true, err
	}
	newFrame := newCallFrame(fn, basePointer, frame.IP+1)
	if err := ctx.pushFrame(newFrame); err != nil {
		return true, err
	}
	return false, nil
}

func execCallBuiltin(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
	name := frame.Function.Constants[inst.Operand1].StrVal
	argc := int(inst.Operand2)
	start := ctx.stackTop - argc
	if start < 0 {
		return true, NewEngineError(ErrStackUnderflow, "call_builtin %q: missing arguments", name)
	}
	args := make([]*values.Value, argc)
	copy(args, ctx.operandStack[start:ctx.stackTop])
	ctx.stackTop = start

	result, err := m.registry.Invoke(ctx, name, args)
	if err != nil {
		var arity *registry.ArgumentCountMismatchError
		if errors.As(err, &arity) {
			return true, NewEngineError(ErrArgumentCountMismatch, "%s", arity.Error())
		}
		if _, ok := m.registry.LookupNative(name); !ok {
			return true, NewEngineError(ErrUndefinedFunction, "%s", err.Error())
		}
		var ee *EngineError
		if !errors.As(err, &ee) {
			return true, &EngineError{Kind: ErrUncaughtException, Message: err.Error(), wrapped: err}
		}
		return true, err
	}
	return true, ctx.Push(result)
}

func execRet(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
	retVal, err := ctx.Pop()
	if err != nil {
		return true, err
	}
	return false, finishReturn(ctx, frame, retVal)
}

// finishReturn implements the shared tail of ret/ret_void/ret_move/
// ret_cow: restore stack_top to the frame's base pointer, pop the frame,
// and either halt (no caller) or resume the caller with retVal pushed.
func finishReturn(ctx *ExecutionContext, frame *CallFrame, retVal *values.Value) error {
	ctx.stackTop = frame.BasePointer
	ctx.popFrame()
	caller := ctx.currentFrame()
	if caller == nil {
		ctx.Halted = true
		return ctx.Push(retVal)
	}
	if err := ctx.Push(retVal); err != nil {
		return err
	}
	caller.IP = frame.ReturnIP
	return nil
}
