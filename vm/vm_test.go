package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/values"
)

func newTestVM() (*VirtualMachine, *ExecutionContext) {
	m := NewVirtualMachine(registry.NewRegistry())
	ctx := NewExecutionContext(nil)
	return m, ctx
}

// sumToN builds: sum = 1 + 2 + ... + n, n passed as local slot 0.
func sumToN() *bytecode.CompiledFunction {
	const (
		sum = 1
		i   = 2
	)
	return &bytecode.CompiledFunction{
		Name:           "sum_to_n",
		ParameterCount: 1,
		LocalSlotCount: 3,
		Bytecode: []bytecode.Instruction{
			bytecode.NewInstruction(bytecode.OpPushInt0),             // 0
			bytecode.NewInstruction1(bytecode.OpStoreLocal, sum),     // 1
			bytecode.NewInstruction(bytecode.OpPushInt1),             // 2
			bytecode.NewInstruction1(bytecode.OpStoreLocal, i),       // 3
			bytecode.NewInstruction1(bytecode.OpPushLocal, i),        // 4 loop
			bytecode.NewInstruction1(bytecode.OpPushLocal, 0),        // 5 (n)
			bytecode.NewInstruction(bytecode.OpGtInt),                // 6
			bytecode.NewInstruction1(bytecode.OpJnz, 17),             // 7
			bytecode.NewInstruction1(bytecode.OpPushLocal, sum),      // 8
			bytecode.NewInstruction1(bytecode.OpPushLocal, i),        // 9
			bytecode.NewInstruction(bytecode.OpAddInt),               // 10
			bytecode.NewInstruction1(bytecode.OpStoreLocal, sum),     // 11
			bytecode.NewInstruction1(bytecode.OpPushLocal, i),        // 12
			bytecode.NewInstruction(bytecode.OpPushInt1),             // 13
			bytecode.NewInstruction(bytecode.OpAddInt),               // 14
			bytecode.NewInstruction1(bytecode.OpStoreLocal, i),       // 15
			bytecode.NewInstruction1(bytecode.OpJmp, 4),              // 16
			bytecode.NewInstruction1(bytecode.OpPushLocal, sum),      // 17 end
			bytecode.NewInstruction(bytecode.OpRet),                  // 18
		},
	}
}

func TestSumToN(t *testing.T) {
	m, ctx := newTestVM()
	require.NoError(t, ctx.Push(values.NewInt(9)))
	result, err := m.Execute(ctx, sumToN())
	require.NoError(t, err)
	assert.Equal(t, int64(45), result.ToInt())
}

// buildAndSumArray builds {"a":1,"b":2,"c":3} in local slot 0 and returns
// the array itself, so the test can assert key order independent of the
// value it also sums.
func buildAndSumArray() *bytecode.CompiledFunction {
	return &bytecode.CompiledFunction{
		Name:           "build_array",
		LocalSlotCount: 1,
		Constants: []bytecode.ConstValue{
			bytecode.ConstStringValue("a"),
			bytecode.ConstIntValue(1),
			bytecode.ConstStringValue("b"),
			bytecode.ConstIntValue(2),
			bytecode.ConstStringValue("c"),
			bytecode.ConstIntValue(3),
		},
		Bytecode: []bytecode.Instruction{
			bytecode.NewInstruction(bytecode.OpNewArray),           // 0
			bytecode.NewInstruction1(bytecode.OpStoreLocal, 0),     // 1
			bytecode.NewInstruction1(bytecode.OpPushLocal, 0),      // 2
			bytecode.NewInstruction1(bytecode.OpPushConst, 0),      // 3 "a"
			bytecode.NewInstruction1(bytecode.OpPushConst, 1),      // 4 1
			bytecode.NewInstruction(bytecode.OpArraySet),            // 5
			bytecode.NewInstruction1(bytecode.OpStoreLocal, 0),     // 6
			bytecode.NewInstruction1(bytecode.OpPushLocal, 0),      // 7
			bytecode.NewInstruction1(bytecode.OpPushConst, 2),      // 8 "b"
			bytecode.NewInstruction1(bytecode.OpPushConst, 3),      // 9 2
			bytecode.NewInstruction(bytecode.OpArraySet),            // 10
			bytecode.NewInstruction1(bytecode.OpStoreLocal, 0),     // 11
			bytecode.NewInstruction1(bytecode.OpPushLocal, 0),      // 12
			bytecode.NewInstruction1(bytecode.OpPushConst, 4),      // 13 "c"
			bytecode.NewInstruction1(bytecode.OpPushConst, 5),      // 14 3
			bytecode.NewInstruction(bytecode.OpArraySet),            // 15
			bytecode.NewInstruction1(bytecode.OpStoreLocal, 0),     // 16
			bytecode.NewInstruction1(bytecode.OpPushLocal, 0),      // 17
			bytecode.NewInstruction(bytecode.OpRet),                  // 18
		},
	}
}

func TestArrayBuildAndSum(t *testing.T) {
	m, ctx := newTestVM()
	result, err := m.Execute(ctx, buildAndSumArray())
	require.NoError(t, err)
	require.True(t, result.IsArray())

	keys := result.ArrayKeysInOrder()
	assert.Equal(t, []interface{}{"a", "b", "c"}, keys)

	var sum int64
	for _, v := range result.ArrayValuesInOrder() {
		sum += v.ToInt()
	}
	assert.Equal(t, int64(6), sum)
}

func TestMethodDispatchWarmUp(t *testing.T) {
	m, ctx := newTestVM()

	greet := &bytecode.CompiledFunction{
		Name:           "greet",
		LocalSlotCount: 1,
		Bytecode: []bytecode.Instruction{
			bytecode.NewInstruction(bytecode.OpPushInt1),
			bytecode.NewInstruction(bytecode.OpRet),
		},
	}
	cls := m.Classes().Declare("Greeter", nil, map[string]*bytecode.CompiledFunction{"greet": greet})

	receiver := values.NewObject("Greeter")
	require.NoError(t, ctx.Push(receiver))

	// First call_method: inline-cache miss, falls back to Class.ResolveMethod
	// and populates the cache.
	frame := newCallFrame(&bytecode.CompiledFunction{
		Name:      "dispatch",
		Constants: []bytecode.ConstValue{bytecode.ConstStringValue("greet")},
	}, 0, -1)
	inst := bytecode.NewInstruction2(bytecode.OpCallMethod, 0, 0)
	_, err := execCallMethod(m, ctx, frame, inst)
	require.NoError(t, err)

	entries := m.MethodCache().Entries("greet")
	require.Len(t, entries, 1)
	assert.Equal(t, cls.ID, entries[0].ClassID)

	// Second call: cache hit, bumping hit_count.
	require.NoError(t, ctx.Push(receiver))
	_, err = execCallMethod(m, ctx, frame, inst)
	require.NoError(t, err)
	entries = m.MethodCache().Entries("greet")
	require.Len(t, entries, 1)
	assert.GreaterOrEqual(t, entries[0].HitCount, uint64(1))

	cls.RebindMethods(map[string]*bytecode.CompiledFunction{"greet": greet}, m.MethodCache())
	assert.Empty(t, m.MethodCache().Entries("greet"))
}

func TestCowCorrectness(t *testing.T) {
	m, ctx := newTestVM()

	a := values.NewArray()
	a.ArraySet(values.NewInt(0), values.NewInt(1))
	values.Retain(a) // simulate `b := a` sharing the same box

	const slot = 0
	basePointer := ctx.stackTop
	require.NoError(t, allocateFrameLocals(ctx, basePointer, 1))
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "cow"}, basePointer, -1)
	ctx.SetLocal(frame, slot, a)

	checkInst := bytecode.NewInstruction1(bytecode.OpCowCheck, slot)
	_, err := m.dispatch[bytecode.OpCowCheck](m, ctx, frame, checkInst)
	require.NoError(t, err)
	shared, err := ctx.Pop()
	require.NoError(t, err)
	require.True(t, shared.ToBool(), "cow_check should report the slot as shared")

	copyInst := bytecode.NewInstruction1(bytecode.OpCowCopy, slot)
	_, err = m.dispatch[bytecode.OpCowCopy](m, ctx, frame, copyInst)
	require.NoError(t, err)

	b := ctx.Local(frame, slot)
	b.ArraySet(values.NewInt(0), values.NewInt(9))

	assert.Equal(t, int64(1), a.ArrayGet(values.NewInt(0)).ToInt())
	assert.Equal(t, int64(9), b.ArrayGet(values.NewInt(0)).ToInt())
	assert.NotEqual(t, a.ArrayGet(values.NewInt(0)), b.ArrayGet(values.NewInt(0)))
	assert.Equal(t, uint32(1), a.RefCount())
	assert.Equal(t, uint32(1), b.RefCount())

	noCheckInst := bytecode.NewInstruction1(bytecode.OpCowCheck, slot)
	_, err = m.dispatch[bytecode.OpCowCheck](m, ctx, frame, noCheckInst)
	require.NoError(t, err)
	stillShared, err := ctx.Pop()
	require.NoError(t, err)
	assert.False(t, stillShared.ToBool(), "slot should no longer be shared after cow_copy")
}

func TestExceptionUnwindObservesSingleOperand(t *testing.T) {
	m, ctx := newTestVM()

	fn := &bytecode.CompiledFunction{
		Name:           "divider",
		LocalSlotCount: 1,
		Bytecode: []bytecode.Instruction{
			bytecode.NewInstruction(bytecode.OpPushInt1), // 0
			bytecode.NewInstruction(bytecode.OpPushInt0), // 1
			bytecode.NewInstruction(bytecode.OpDivInt),   // 2: divide by zero
			bytecode.NewInstruction(bytecode.OpRet),      // 3 (catch target)
		},
	}
	basePointer := ctx.stackTop
	require.NoError(t, allocateFrameLocals(ctx, basePointer, fn.LocalSlotCount))
	frame := newCallFrame(fn, basePointer, -1)
	frame.IP = 2
	frame.pushExceptionHandler(3, -1)
	require.NoError(t, ctx.pushFrame(frame))

	// Leave extra junk on the stack below the handler frame's locals, the
	// way an in-flight expression evaluation would; the unwind must
	// truncate it away regardless.
	require.NoError(t, ctx.Push(values.NewInt(111)))
	require.NoError(t, ctx.Push(values.NewInt(222)))

	divErr := DecorateError(NewEngineError(ErrDivisionByZero, "division by zero"), frame, fn.Bytecode[2])
	handled := m.raiseException(ctx, divErr)
	require.True(t, handled)

	assert.Equal(t, frame.BasePointer+fn.LocalSlotCount+1, ctx.StackTop())
	assert.Equal(t, 3, frame.IP)
	exc, err := ctx.Peek()
	require.NoError(t, err)
	assert.Equal(t, "arithmetic", exc.ObjectGet("kind").ToString())
}

func TestEqOpcodeNullEqualsFalse(t *testing.T) {
	m, ctx := newTestVM()
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "eq"}, 0, -1)

	require.NoError(t, ctx.Push(values.NewNull()))
	require.NoError(t, ctx.Push(values.NewBool(false)))
	_, err := m.dispatch[bytecode.OpEq](m, ctx, frame, bytecode.NewInstruction(bytecode.OpEq))
	require.NoError(t, err)

	result, err := ctx.Pop()
	require.NoError(t, err)
	assert.True(t, result.ToBool(), "null == false should hold under loose equality")
}

func TestNewArrayPopsOperandElements(t *testing.T) {
	m, ctx := newTestVM()
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "new_array"}, 0, -1)

	require.NoError(t, ctx.Push(values.NewInt(10)))
	require.NoError(t, ctx.Push(values.NewInt(20)))
	require.NoError(t, ctx.Push(values.NewInt(30)))

	inst := bytecode.NewInstruction1(bytecode.OpNewArray, 3)
	_, err := m.dispatch[bytecode.OpNewArray](m, ctx, frame, inst)
	require.NoError(t, err)

	arr, err := ctx.Pop()
	require.NoError(t, err)
	require.True(t, arr.IsArray())
	assert.Equal(t, 3, arr.ArrayCount())

	elems := arr.ArrayValuesInOrder()
	require.Len(t, elems, 3)
	assert.Equal(t, int64(10), elems[0].ToInt())
	assert.Equal(t, int64(20), elems[1].ToInt())
	assert.Equal(t, int64(30), elems[2].ToInt())
}

func TestGuardFallsThroughWhenDeoptAddrIsZero(t *testing.T) {
	m, ctx := newTestVM()
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "guard"}, 0, -1)

	require.NoError(t, ctx.Push(values.NewString("not an int")))
	inst := bytecode.NewInstruction1(bytecode.OpGuardInt, 0)
	advance, err := m.dispatch[bytecode.OpGuardInt](m, ctx, frame, inst)
	require.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t, 1, frame.IP, "a zero deopt_addr must not redirect IP")
}

func TestGuardJumpsToDeoptAddrWhenSet(t *testing.T) {
	m, ctx := newTestVM()
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "guard"}, 0, -1)

	require.NoError(t, ctx.Push(values.NewString("not an int")))
	inst := bytecode.NewInstruction1(bytecode.OpGuardInt, 42)
	_, err := m.dispatch[bytecode.OpGuardInt](m, ctx, frame, inst)
	require.NoError(t, err)
	assert.Equal(t, 42, frame.IP)
}

func TestPassByValueClonesIntoLocalSlot(t *testing.T) {
	m, ctx := newTestVM()

	const slot = 1
	basePointer := ctx.stackTop
	require.NoError(t, allocateFrameLocals(ctx, basePointer, 2))
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "pass"}, basePointer, -1)

	arr := values.NewArray()
	arr.ArraySet(values.NewInt(0), values.NewInt(1))
	require.NoError(t, ctx.Push(arr))

	inst := bytecode.NewInstruction1(bytecode.OpPassByValue, slot)
	_, err := m.dispatch[bytecode.OpPassByValue](m, ctx, frame, inst)
	require.NoError(t, err)

	stored := ctx.Local(frame, slot)
	require.True(t, stored.IsArray())
	assert.NotSame(t, arr, stored)
	assert.Equal(t, uint32(1), arr.RefCount())
}

func TestPassByMoveTransfersWithoutRetain(t *testing.T) {
	m, ctx := newTestVM()

	const slot = 0
	basePointer := ctx.stackTop
	require.NoError(t, allocateFrameLocals(ctx, basePointer, 1))
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "pass"}, basePointer, -1)

	v := values.NewArray()
	require.NoError(t, ctx.Push(v))

	inst := bytecode.NewInstruction1(bytecode.OpPassByMove, slot)
	_, err := m.dispatch[bytecode.OpPassByMove](m, ctx, frame, inst)
	require.NoError(t, err)

	assert.Same(t, v, ctx.Local(frame, slot))
	assert.Equal(t, uint32(1), v.RefCount())
}

func TestRetCowReadsLocalSlotAndRetains(t *testing.T) {
	m, ctx := newTestVM()

	const slot = 0
	basePointer := ctx.stackTop
	require.NoError(t, allocateFrameLocals(ctx, basePointer, 1))
	frame := newCallFrame(&bytecode.CompiledFunction{Name: "ret"}, basePointer, -1)
	require.NoError(t, ctx.pushFrame(frame))

	v := values.NewArray()
	ctx.SetLocal(frame, slot, v)

	_, err := m.dispatch[bytecode.OpRetCow](m, ctx, frame, bytecode.NewInstruction1(bytecode.OpRetCow, slot))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v.RefCount(), "ret_cow retains, leaving the local's own reference intact")

	result, err := ctx.Pop()
	require.NoError(t, err)
	assert.Same(t, v, result)
}
