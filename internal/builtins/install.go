// Package builtins installs the dunder metafunctions (__add__,
// __eq__, __str__, ...) that make SPy's primitive types usable from
// internal/opdispatch's operator table. Grounded on the teacher's
// per-category eval/builtins_*.go split (registerArithmeticBuiltins,
// registerComparisonBuiltins, registerBooleanBuiltins), adapted from a
// flat Builtins map of raw callables into metafunctions returning an
// opdispatch.OpSpec, since here an operator can also report "not
// applicable" (OpSpecNull) or fold to a constant.
package builtins

import (
	"sync"

	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/opdispatch"
)

var installOnce sync.Once

// Install populates every primitive Type's member dict with its
// operator metafunctions. Idempotent: later calls are no-ops, so
// internal/frame and internal/repl can both call it unconditionally.
func Install() {
	installOnce.Do(func() {
		registerArithmeticBuiltins()
		registerComparisonBuiltins()
		registerBooleanBuiltins()
		registerStringBuiltins()
	})
}

// install wraps fn (the raw concrete computation for one operand
// shape) as a pure SimpleSpec and installs it under name on t's member
// dict, where internal/opdispatch's binary/unary lookup will find it.
func install(t *object.Type, name string, fn *object.BuiltinFunc) {
	spec := opdispatch.SimpleSpec(fn, true)
	t.Members[name] = &object.BuiltinFunc{
		FQN:   fqn.New("core", "meta_"+name),
		FuncT: &object.FuncType{Color: object.Blue, Kind: object.FuncMetafunc},
		Run: func(args []object.Object) (object.Object, error) {
			return spec, nil
		},
	}
}

func concreteFunc(namespace, name string, params []*object.Type, result *object.Type, run object.Body) *object.BuiltinFunc {
	return &object.BuiltinFunc{
		FQN:   fqn.New(namespace, name),
		FuncT: &object.FuncType{Params: params, Result: result, Color: object.Red, Kind: object.FuncPlain},
		Run:   run,
	}
}
