package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

// registerHeapHandlers wires the array and object instruction family.
// Mutating operations (array_set/push/unset, set_prop) leave the
// container back on top of the stack so a following store_local can
// persist the (possibly newly-cloned, per cow_check) reference.
func registerHeapHandlers(t *dispatchTable) {
	t[bytecode.OpNewArray] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		n := int(inst.Operand1)
		if ctx.StackTop() < n {
			return true, NewEngineError(ErrStackUnderflow, "new_array %d: fewer than %d elements on the operand stack", n, n)
		}
		elems := make([]*values.Value, n)
		for i := n - 1; i >= 0; i-- {
			v, err := ctx.Pop()
			if err != nil {
				return true, err
			}
			elems[i] = v
		}
		arr := values.NewArray()
		for _, v := range elems {
			arr.ArrayPush(v)
		}
		return true, ctx.Push(arr)
	}
	t[bytecode.OpArrayGet] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		key, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_get on a non-array value")
		}
		return true, ctx.Push(arr.ArrayGet(key))
	}
	t[bytecode.OpArraySet] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		val, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		key, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_set on a non-array value")
		}
		arr.ArraySet(key, val)
		return true, ctx.Push(arr)
	}
	t[bytecode.OpArrayPush] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		val, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_push on a non-array value")
		}
		arr.ArrayPush(val)
		return true, ctx.Push(arr)
	}
	t[bytecode.OpArrayPop] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_pop on a non-array value")
		}
		popped := arr.ArrayPop()
		if err := ctx.Push(arr); err != nil {
			return true, err
		}
		return true, ctx.Push(popped)
	}
	t[bytecode.OpArrayLen] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_len on a non-array value")
		}
		return true, ctx.Push(values.NewInt(int64(arr.ArrayCount())))
	}
	t[bytecode.OpArrayExists] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		key, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_exists on a non-array value")
		}
		return true, ctx.Push(values.NewBool(arr.ArrayExists(key)))
	}
	t[bytecode.OpArrayUnset] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		key, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		arr, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !arr.IsArray() {
			return true, NewEngineError(ErrTypeMismatch, "array_unset on a non-array value")
		}
		arr.ArrayUnset(key)
		return true, ctx.Push(arr)
	}

	t[bytecode.OpNewObject] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		cls, ok := m.classes.ByID(uint32(inst.Operand1))
		if !ok {
			return true, NewEngineError(ErrUndefinedFunction, "undefined class id %d", inst.Operand1)
		}
		return true, ctx.Push(values.NewObject(cls.Name))
	}
	t[bytecode.OpGetProp] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		name := frame.Function.Constants[inst.Operand1].StrVal
		obj, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !obj.IsObject() {
			return true, NewEngineError(ErrNullAccess, "get_prop %q on a non-object value", name)
		}
		return true, ctx.Push(obj.ObjectGet(name))
	}
	t[bytecode.OpSetProp] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		name := frame.Function.Constants[inst.Operand1].StrVal
		val, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		obj, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !obj.IsObject() {
			return true, NewEngineError(ErrNullAccess, "set_prop %q on a non-object value", name)
		}
		obj.ObjectSet(name, val)
		return true, ctx.Push(obj)
	}
	t[bytecode.OpInstanceof] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		target, ok := m.classes.ByID(uint32(inst.Operand1))
		if !ok {
			return true, NewEngineError(ErrUndefinedFunction, "undefined class id %d", inst.Operand1)
		}
		obj, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		if !obj.IsObject() {
			return true, ctx.Push(values.NewBool(false))
		}
		cls, ok := m.classes.ByName(obj.ClassName())
		if !ok {
			return true, ctx.Push(values.NewBool(false))
		}
		return true, ctx.Push(values.NewBool(cls.IsSubclassOf(target)))
	}
	t[bytecode.OpClone] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(v.Clone())
	}
}
