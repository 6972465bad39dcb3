package runtime

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/values"
)

type stubCtx struct {
	out     bytes.Buffer
	globals map[string]*values.Value
}

func newStubCtx() *stubCtx { return &stubCtx{globals: make(map[string]*values.Value)} }

func (s *stubCtx) WriteOutput(v *values.Value) error {
	s.out.WriteString(v.ToString())
	return nil
}
func (s *stubCtx) GetGlobal(name string) (*values.Value, bool) { v, ok := s.globals[name]; return v, ok }
func (s *stubCtx) SetGlobal(name string, v *values.Value)      { s.globals[name] = v }
func (s *stubCtx) Halt(exitCode int, message string) error     { return nil }

func TestBootstrapRegistersPrint(t *testing.T) {
	reg := registry.NewRegistry()
	Bootstrap(reg)

	ctx := newStubCtx()
	result, err := reg.Invoke(ctx, "print", []*values.Value{values.NewString("hello")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ToInt())
	assert.Equal(t, "hello", ctx.out.String())
}

func TestMaxMin(t *testing.T) {
	reg := registry.NewRegistry()
	Bootstrap(reg)
	ctx := newStubCtx()

	result, err := reg.Invoke(ctx, "max", []*values.Value{values.NewInt(3), values.NewInt(9), values.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.ToInt())

	result, err = reg.Invoke(ctx, "min", []*values.Value{values.NewInt(3), values.NewInt(9), values.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ToInt())
}

func TestSprintf(t *testing.T) {
	reg := registry.NewRegistry()
	Bootstrap(reg)
	ctx := newStubCtx()

	result, err := reg.Invoke(ctx, "sprintf", []*values.Value{values.NewString("%s=%s"), values.NewString("a"), values.NewString("1")})
	require.NoError(t, err)
	assert.Equal(t, "a=1", result.ToString())
}
