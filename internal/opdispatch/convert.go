package opdispatch

import (
	"sync"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/object"
)

// converterRegistry holds explicitly registered (got, exp) -> converter
// multimethods. It starts empty and holds only what callers pass to
// RegisterConverter; no numeric widening (e.g. i32 -> f64) is
// registered by this module itself.
var converterRegistry = struct {
	mu    sync.RWMutex
	funcs map[string]object.Object
}{funcs: make(map[string]object.Object)}

func converterKey(got, exp *object.Type) string {
	return got.FQN.Render() + "->" + exp.FQN.Render()
}

// RegisterConverter installs a multimethod converter for the (got,
// exp) pair, consulted by Convert's second tier.
func RegisterConverter(got, exp *object.Type, fn object.Object) {
	converterRegistry.mu.Lock()
	defer converterRegistry.mu.Unlock()
	converterRegistry.funcs[converterKey(got, exp)] = fn
}

func lookupConverter(got, exp *object.Type) (object.Object, bool) {
	converterRegistry.mu.RLock()
	defer converterRegistry.mu.RUnlock()
	fn, ok := converterRegistry.funcs[converterKey(got, exp)]
	return fn, ok
}

// Convert resolves operator::CONVERT(expT, gotT, src), per spec §4.3:
// identity if got <: exp, else a registered multimethod, else
// got.__convert_to__, else exp.__convert_from__. Returns (nil, nil) if
// none apply ("null").
func Convert(caller Caller, expT, gotT *object.Type, src object.MetaArg) (*OpImpl, error) {
	if gotT.IsSubtype(expT) {
		return &OpImpl{
			FuncT: &object.FuncType{Params: []*object.Type{gotT}, Result: expT},
			Args:  []ArgPlan{{Kind: ArgDirect, Index: 0}},
		}, nil
	}

	if fn, ok := lookupConverter(gotT, expT); ok {
		funcT, err := funcTypeOf(fn)
		if err != nil {
			return nil, err
		}
		return &OpImpl{
			FuncT: funcT,
			Func:  fn,
			Args:  []ArgPlan{{Kind: ArgDirect, Index: 0}},
		}, nil
	}

	if fn, ok := gotT.GetMember("__convert_to__"); ok {
		if impl, err := invokeConvertMetafunc(caller, fn, expT, gotT, src); impl != nil || err != nil {
			return impl, err
		}
	}
	if fn, ok := expT.GetMember("__convert_from__"); ok {
		if impl, err := invokeConvertMetafunc(caller, fn, expT, gotT, src); impl != nil || err != nil {
			return impl, err
		}
	}
	return nil, nil
}

func invokeConvertMetafunc(caller Caller, metafunc object.Object, expT, gotT *object.Type, src object.MetaArg) (*OpImpl, error) {
	expArg := object.NewBlueArg(object.TypeType, expT, ast.Span{})
	gotArg := object.NewBlueArg(object.TypeType, gotT, ast.Span{})
	result, err := caller.FastMetacall(metafunc, []object.MetaArg{expArg, gotArg, src})
	if err != nil {
		return nil, err
	}
	spec, ok := result.(*OpSpec)
	if !ok || spec.Kind == OpSpecNull {
		return nil, nil
	}
	return Typecheck(caller, spec, []object.MetaArg{src})
}
