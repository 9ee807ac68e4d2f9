package builtins

import "github.com/spy-lang/spy/internal/object"

// registerBooleanBuiltins installs __bool__/__str__ across every
// primitive type (the conditions If/While/Assert and str() coercion
// funnel through these).
func registerBooleanBuiltins() {
	install(object.BoolType, "__bool__", concreteFunc("core", "bool_bool", []*object.Type{object.BoolType}, object.BoolType,
		func(args []object.Object) (object.Object, error) { return args[0], nil }))
	install(object.BoolType, "__str__", concreteFunc("core", "str_bool", []*object.Type{object.BoolType}, object.StrType,
		func(args []object.Object) (object.Object, error) {
			return object.Str{Value: args[0].String()}, nil
		}))

	for _, it := range intTypes {
		ty := it.ty
		install(ty, "__bool__", concreteFunc("core", "bool_"+ty.FQN.Render(), []*object.Type{ty}, object.BoolType,
			func(args []object.Object) (object.Object, error) {
				return object.BoolOf(args[0].(object.Int).Value != 0), nil
			}))
		install(ty, "__str__", concreteFunc("core", "str_"+ty.FQN.Render(), []*object.Type{ty}, object.StrType,
			func(args []object.Object) (object.Object, error) {
				return object.Str{Value: args[0].String()}, nil
			}))
	}
	for _, ft := range floatTypes {
		ty := ft.ty
		install(ty, "__bool__", concreteFunc("core", "bool_"+ty.FQN.Render(), []*object.Type{ty}, object.BoolType,
			func(args []object.Object) (object.Object, error) {
				return object.BoolOf(args[0].(object.Float).Value != 0), nil
			}))
		install(ty, "__str__", concreteFunc("core", "str_"+ty.FQN.Render(), []*object.Type{ty}, object.StrType,
			func(args []object.Object) (object.Object, error) {
				return object.Str{Value: args[0].String()}, nil
			}))
	}
}

// registerStringBuiltins installs str's own __bool__/__str__/__len__,
// separate from registerBooleanBuiltins since str isn't numeric.
func registerStringBuiltins() {
	install(object.StrType, "__bool__", concreteFunc("core", "bool_str", []*object.Type{object.StrType}, object.BoolType,
		func(args []object.Object) (object.Object, error) {
			return object.BoolOf(args[0].(object.Str).Value != ""), nil
		}))
	install(object.StrType, "__str__", concreteFunc("core", "str_str", []*object.Type{object.StrType}, object.StrType,
		func(args []object.Object) (object.Object, error) { return args[0], nil }))
	install(object.StrType, "__len__", concreteFunc("core", "len_str", []*object.Type{object.StrType}, object.I32Type,
		func(args []object.Object) (object.Object, error) {
			return object.NewInt(object.I32, int64(len(args[0].(object.Str).Value))), nil
		}))
}
