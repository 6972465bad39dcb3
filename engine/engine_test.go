package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holovm/enginevm/bytecode"
)

func constFn() *bytecode.CompiledFunction {
	return &bytecode.CompiledFunction{
		Name: "answer",
		Bytecode: []bytecode.Instruction{
			bytecode.NewInstruction1(bytecode.OpPushConst, 0),
			bytecode.NewInstruction(bytecode.OpRet),
		},
		Constants: []bytecode.ConstValue{bytecode.ConstIntValue(42)},
	}
}

func TestRequestLifecycle(t *testing.T) {
	eng := New(DefaultConfig())
	var out bytes.Buffer

	req, err := eng.BeginRequest(&out)
	require.NoError(t, err)
	require.NotEmpty(t, req.ID)

	result, err := req.Run(constFn())
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.ToInt())

	stats := req.EndRequest()
	assert.Equal(t, 0, stats.PromoteErrs)
}

func TestArenaPoolReuse(t *testing.T) {
	eng := New(Config{ArenaPoolCeiling: 1, ArenaCapacity: 4096, DebugLevel: 0})

	req1, err := eng.BeginRequest(nil)
	require.NoError(t, err)
	firstID := req1.Arena.RequestID()
	req1.EndRequest()

	req2, err := eng.BeginRequest(nil)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, req2.Arena.RequestID())
	assert.Equal(t, 1, eng.Arenas.InUse())
}
