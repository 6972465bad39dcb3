// Package runtime bootstraps the small set of native functions this
// engine ships out of the box: output, basic introspection, and simple
// math/string helpers. Grounded on the Bootstrap pattern and
// GetOutputFunctions-style registration of a much larger PHP runtime,
// trimmed down to a handful of worked examples of the native-function
// interface; the full builtin catalogue is out of scope.
package runtime

import (
	"fmt"
	"math"

	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/values"
)

// Bootstrap registers every native function this package defines into
// reg. Safe to call repeatedly; a repeated call re-registers the same
// entries, overwriting the earlier ones.
func Bootstrap(reg *registry.Registry) {
	registerOutputFunctions(reg)
	registerMathFunctions(reg)
	registerStringFunctions(reg)
}

func registerOutputFunctions(reg *registry.Registry) {
	reg.RegisterNative(&registry.NativeFunction{
		Name: "print", MinArgc: 1, MaxArgc: 1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			if err := ctx.WriteOutput(args[0]); err != nil {
				return nil, err
			}
			return values.NewInt(1), nil
		},
	})

	reg.RegisterNative(&registry.NativeFunction{
		Name: "var_dump", MinArgc: 1, MaxArgc: -1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			for _, arg := range args {
				if err := ctx.WriteOutput(values.NewString(arg.VarDump())); err != nil {
					return nil, err
				}
			}
			return values.NewNull(), nil
		},
	})

	reg.RegisterNative(&registry.NativeFunction{
		Name: "print_r", MinArgc: 1, MaxArgc: 1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			rendered := args[0].PrintR()
			if err := ctx.WriteOutput(values.NewString(rendered)); err != nil {
				return nil, err
			}
			return values.NewBool(true), nil
		},
	})
}

func registerMathFunctions(reg *registry.Registry) {
	reg.RegisterNative(&registry.NativeFunction{
		Name: "abs", MinArgc: 1, MaxArgc: 1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			v := args[0]
			if v.IsFloat() {
				return values.NewFloat(math.Abs(v.ToFloat())), nil
			}
			n := v.ToInt()
			if n < 0 {
				n = -n
			}
			return values.NewInt(n), nil
		},
	})

	reg.RegisterNative(&registry.NativeFunction{
		Name: "max", MinArgc: 1, MaxArgc: -1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			best := args[0]
			for _, v := range args[1:] {
				if v.ToFloat() > best.ToFloat() {
					best = v
				}
			}
			return best, nil
		},
	})

	reg.RegisterNative(&registry.NativeFunction{
		Name: "min", MinArgc: 1, MaxArgc: -1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			best := args[0]
			for _, v := range args[1:] {
				if v.ToFloat() < best.ToFloat() {
					best = v
				}
			}
			return best, nil
		},
	})
}

func registerStringFunctions(reg *registry.Registry) {
	reg.RegisterNative(&registry.NativeFunction{
		Name: "strlen", MinArgc: 1, MaxArgc: 1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			return values.NewInt(int64(len(args[0].ToString()))), nil
		},
	})

	reg.RegisterNative(&registry.NativeFunction{
		Name: "sprintf", MinArgc: 1, MaxArgc: -1,
		Handler: func(ctx registry.BuiltinCallContext, args []*values.Value) (*values.Value, error) {
			format := args[0].ToString()
			rest := make([]interface{}, 0, len(args)-1)
			for _, v := range args[1:] {
				rest = append(rest, v.ToString())
			}
			return values.NewString(fmt.Sprintf(format, rest...)), nil
		},
	})
}
