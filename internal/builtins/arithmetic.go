package builtins

import (
	"math"

	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/object"
)

var intTypes = []struct {
	width object.IntWidth
	ty    *object.Type
}{
	{object.I8, object.I8Type},
	{object.U8, object.U8Type},
	{object.I32, object.I32Type},
	{object.U32, object.U32Type},
}

var floatTypes = []struct {
	width object.FloatWidth
	ty    *object.Type
}{
	{object.F32, object.F32Type},
	{object.F64, object.F64Type},
}

func registerArithmeticBuiltins() {
	for _, it := range intTypes {
		w, ty := it.width, it.ty
		install(ty, "__add__", concreteFunc("core", "add_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Int), args[1].(object.Int)
				return object.NewInt(w, a.Value+b.Value), nil
			}))
		install(ty, "__sub__", concreteFunc("core", "sub_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Int), args[1].(object.Int)
				return object.NewInt(w, a.Value-b.Value), nil
			}))
		install(ty, "__mul__", concreteFunc("core", "mul_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Int), args[1].(object.Int)
				return object.NewInt(w, a.Value*b.Value), nil
			}))
		install(ty, "__truediv__", concreteFunc("core", "div_"+ty.FQN.Render(), []*object.Type{ty, ty}, object.F64Type,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Int), args[1].(object.Int)
				if b.Value == 0 {
					return nil, errors.Wrap(errors.New(errors.ZeroDivisionError, "division by zero"))
				}
				return object.NewFloat(object.F64, float64(a.Value)/float64(b.Value)), nil
			}))
		install(ty, "__mod__", concreteFunc("core", "mod_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Int), args[1].(object.Int)
				if b.Value == 0 {
					return nil, errors.Wrap(errors.New(errors.ZeroDivisionError, "modulo by zero"))
				}
				return object.NewInt(w, a.Value%b.Value), nil
			}))
		install(ty, "__neg__", concreteFunc("core", "neg_"+ty.FQN.Render(), []*object.Type{ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a := args[0].(object.Int)
				return object.NewInt(w, -a.Value), nil
			}))
	}

	for _, ft := range floatTypes {
		w, ty := ft.width, ft.ty
		install(ty, "__add__", concreteFunc("core", "add_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Float), args[1].(object.Float)
				return object.NewFloat(w, a.Value+b.Value), nil
			}))
		install(ty, "__sub__", concreteFunc("core", "sub_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Float), args[1].(object.Float)
				return object.NewFloat(w, a.Value-b.Value), nil
			}))
		install(ty, "__mul__", concreteFunc("core", "mul_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Float), args[1].(object.Float)
				return object.NewFloat(w, a.Value*b.Value), nil
			}))
		install(ty, "__truediv__", concreteFunc("core", "div_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Float), args[1].(object.Float)
				if b.Value == 0 {
					if a.Value >= 0 {
						return object.NewFloat(w, math.Inf(1)), nil
					}
					return object.NewFloat(w, math.Inf(-1)), nil
				}
				return object.NewFloat(w, a.Value/b.Value), nil
			}))
		install(ty, "__mod__", concreteFunc("core", "mod_"+ty.FQN.Render(), []*object.Type{ty, ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a, b := args[0].(object.Float), args[1].(object.Float)
				if b.Value == 0 {
					return object.NewFloat(w, math.NaN()), nil
				}
				return object.NewFloat(w, math.Mod(a.Value, b.Value)), nil
			}))
		install(ty, "__neg__", concreteFunc("core", "neg_"+ty.FQN.Render(), []*object.Type{ty}, ty,
			func(args []object.Object) (object.Object, error) {
				a := args[0].(object.Float)
				return object.NewFloat(w, -a.Value), nil
			}))
	}
}
