package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/values"
	"github.com/holovm/enginevm/vm"
)

func TestAssembleAndRunSumToN(t *testing.T) {
	a := New("sum_to_n").Params(1).Locals(3)
	const n, sum, i = 0, 1, 2

	fn := a.
		Emit(bytecode.OpPushInt0).
		Emit1(bytecode.OpStoreLocal, sum).
		Emit(bytecode.OpPushInt1).
		Emit1(bytecode.OpStoreLocal, i).
		Label("loop").
		Emit1(bytecode.OpPushLocal, i).
		Emit1(bytecode.OpPushLocal, n).
		Emit(bytecode.OpGtInt).
		Jmp(bytecode.OpJnz, "end").
		Emit1(bytecode.OpPushLocal, sum).
		Emit1(bytecode.OpPushLocal, i).
		Emit(bytecode.OpAddInt).
		Emit1(bytecode.OpStoreLocal, sum).
		Emit1(bytecode.OpPushLocal, i).
		Emit(bytecode.OpPushInt1).
		Emit(bytecode.OpAddInt).
		Emit1(bytecode.OpStoreLocal, i).
		Jmp(bytecode.OpJmp, "loop").
		Label("end").
		Emit1(bytecode.OpPushLocal, sum).
		Emit(bytecode.OpRet).
		Build()

	m := vm.NewVirtualMachine(registry.NewRegistry())
	ctx := vm.NewExecutionContext(nil)
	require.NoError(t, ctx.Push(values.NewInt(9)))

	result, err := m.Execute(ctx, fn)
	require.NoError(t, err)
	assert.Equal(t, int64(45), result.ToInt())
}

func TestBuildPanicsOnUndefinedLabel(t *testing.T) {
	defer func() {
		r := recover()
		assert.NotNil(t, r)
	}()
	New("broken").Jmp(bytecode.OpJmp, "nowhere").Build()
}
