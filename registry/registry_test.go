package registry

import (
	"testing"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/values"
)

type stubContext struct {
	globals map[string]*values.Value
	output  []string
}

func newStubContext() *stubContext { return &stubContext{globals: make(map[string]*values.Value)} }

func (s *stubContext) WriteOutput(v *values.Value) error {
	s.output = append(s.output, v.ToString())
	return nil
}
func (s *stubContext) GetGlobal(name string) (*values.Value, bool) { v, ok := s.globals[name]; return v, ok }
func (s *stubContext) SetGlobal(name string, v *values.Value)      { s.globals[name] = v }
func (s *stubContext) Halt(exitCode int, message string) error     { return nil }

func TestRegisterAndLookupFunctionByNameAndID(t *testing.T) {
	r := NewRegistry()
	fn := &bytecode.CompiledFunction{Name: "sum_to_n"}
	id := r.RegisterFunction(fn)

	byName, ok := r.LookupFunctionByName("sum_to_n")
	if !ok || byName != fn {
		t.Fatalf("expected lookup by name to find the registered function")
	}
	byID, ok := r.LookupFunctionByID(id)
	if !ok || byID != fn {
		t.Fatalf("expected lookup by id to find the registered function")
	}
	if fn.FunctionID != id {
		t.Fatalf("expected FunctionID to be stamped with the assigned id")
	}
}

func TestNativeArityValidation(t *testing.T) {
	r := NewRegistry()
	r.RegisterNative(&NativeFunction{
		Name:    "strlen",
		MinArgc: 1,
		MaxArgc: 1,
		Handler: func(ctx BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			return values.NewInt(int64(len(args[0].ToString()))), nil
		},
	})

	ctx := newStubContext()
	v, err := r.Invoke(ctx, "strlen", []*values.Value{values.NewString("hi")})
	if err != nil || v.ToInt() != 2 {
		t.Fatalf("expected strlen(\"hi\")==2, got v=%v err=%v", v, err)
	}

	_, err = r.Invoke(ctx, "strlen", nil)
	if err == nil {
		t.Fatalf("expected an arity mismatch error for zero arguments")
	}
	if _, ok := err.(*ArgumentCountMismatchError); !ok {
		t.Fatalf("expected *ArgumentCountMismatchError, got %T", err)
	}
}

func TestInvokeUndefinedNative(t *testing.T) {
	r := NewRegistry()
	ctx := newStubContext()
	_, err := r.Invoke(ctx, "does_not_exist", nil)
	if err == nil {
		t.Fatalf("expected an error for an undefined native function")
	}
}

func TestVariadicMaxArgcUnbounded(t *testing.T) {
	r := NewRegistry()
	r.RegisterNative(&NativeFunction{
		Name:    "var_dump",
		MinArgc: 1,
		MaxArgc: -1,
		Handler: func(ctx BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			for _, a := range args {
				_ = ctx.WriteOutput(values.NewString(a.VarDump()))
			}
			return values.NewNull(), nil
		},
	})
	ctx := newStubContext()
	_, err := r.Invoke(ctx, "var_dump", []*values.Value{values.NewInt(1), values.NewInt(2), values.NewInt(3)})
	if err != nil {
		t.Fatalf("expected variadic call to succeed, got %v", err)
	}
	if len(ctx.output) != 3 {
		t.Fatalf("expected three output writes, got %d", len(ctx.output))
	}
}
