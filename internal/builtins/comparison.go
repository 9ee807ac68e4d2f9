package builtins

import "github.com/spy-lang/spy/internal/object"

func registerComparisonBuiltins() {
	for _, it := range intTypes {
		ty := it.ty
		installIntComparisons(ty)
	}
	for _, ft := range floatTypes {
		ty := ft.ty
		installFloatComparisons(ty)
	}
	installStrComparisons(object.StrType)
	installBoolComparisons(object.BoolType)
}

func installIntComparisons(ty *object.Type) {
	cmp := func(name string, op func(a, b int64) bool) {
		install(ty, name, concreteFunc("core", name+"_"+ty.FQN.Render(), []*object.Type{ty, ty}, object.BoolType,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Int), args[1].(object.Int)
				return object.BoolOf(op(a.Value, b.Value)), nil
			}))
	}
	cmp("__eq__", func(a, b int64) bool { return a == b })
	cmp("__ne__", func(a, b int64) bool { return a != b })
	cmp("__lt__", func(a, b int64) bool { return a < b })
	cmp("__le__", func(a, b int64) bool { return a <= b })
	cmp("__gt__", func(a, b int64) bool { return a > b })
	cmp("__ge__", func(a, b int64) bool { return a >= b })
}

func installFloatComparisons(ty *object.Type) {
	cmp := func(name string, op func(a, b float64) bool) {
		install(ty, name, concreteFunc("core", name+"_"+ty.FQN.Render(), []*object.Type{ty, ty}, object.BoolType,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Float), args[1].(object.Float)
				return object.BoolOf(op(a.Value, b.Value)), nil
			}))
	}
	cmp("__eq__", func(a, b float64) bool { return a == b })
	cmp("__ne__", func(a, b float64) bool { return a != b })
	cmp("__lt__", func(a, b float64) bool { return a < b })
	cmp("__le__", func(a, b float64) bool { return a <= b })
	cmp("__gt__", func(a, b float64) bool { return a > b })
	cmp("__ge__", func(a, b float64) bool { return a >= b })
}

func installStrComparisons(ty *object.Type) {
	cmp := func(name string, op func(a, b string) bool) {
		install(ty, name, concreteFunc("core", name+"_str", []*object.Type{ty, ty}, object.BoolType,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Str), args[1].(object.Str)
				return object.BoolOf(op(a.Value, b.Value)), nil
			}))
	}
	cmp("__eq__", func(a, b string) bool { return a == b })
	cmp("__ne__", func(a, b string) bool { return a != b })
	cmp("__lt__", func(a, b string) bool { return a < b })
	cmp("__le__", func(a, b string) bool { return a <= b })
	cmp("__gt__", func(a, b string) bool { return a > b })
	cmp("__ge__", func(a, b string) bool { return a >= b })

	install(ty, "__add__", concreteFunc("core", "concat_str", []*object.Type{ty, ty}, ty,
		func(args []object.Object) (object.Object, error) {
			a, b := args[0].(object.Str), args[1].(object.Str)
			return object.Str{Value: a.Value + b.Value}, nil
		}))
}

func installBoolComparisons(ty *object.Type) {
	install(ty, "__eq__", concreteFunc("core", "eq_bool", []*object.Type{ty, ty}, object.BoolType,
		func(args []object.Object) (object.Object, error) {
			a, b := args[0].(object.Bool), args[1].(object.Bool)
			return object.BoolOf(a.Value == b.Value), nil
		}))
	install(ty, "__ne__", concreteFunc("core", "ne_bool", []*object.Type{ty, ty}, object.BoolType,
		func(args []object.Object) (object.Object, error) {
			a, b := args[0].(object.Bool), args[1].(object.Bool)
			return object.BoolOf(a.Value != b.Value), nil
		}))
}
