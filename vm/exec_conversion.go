package vm

import (
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

func registerConversionHandlers(t *dispatchTable) {
	t[bytecode.OpToInt] = unaryConvert(func(v *values.Value) *values.Value { return values.NewInt(v.ToInt()) })
	t[bytecode.OpToFloat] = unaryConvert(func(v *values.Value) *values.Value { return values.NewFloat(v.ToFloat()) })
	t[bytecode.OpToBool] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.ToBool()) })
	t[bytecode.OpToString] = unaryConvert(func(v *values.Value) *values.Value { return values.NewString(v.ToString()) })

	t[bytecode.OpIsNull] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.IsNull()) })
	t[bytecode.OpIsInt] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.IsInt()) })
	t[bytecode.OpIsFloat] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.IsFloat()) })
	t[bytecode.OpIsString] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.IsString()) })
	t[bytecode.OpIsArray] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.IsArray()) })
	t[bytecode.OpIsObject] = unaryConvert(func(v *values.Value) *values.Value { return values.NewBool(v.IsObject()) })
}

func unaryConvert(f func(v *values.Value) *values.Value) Handler {
	return func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		v, err := ctx.Pop()
		if err != nil {
			return true, err
		}
		return true, ctx.Push(f(v))
	}
}
