package vm

import (
	"testing"

	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGlobalRejectsDuplicate(t *testing.T) {
	v := New()
	f := fqn.New("main", "x")
	require.NoError(t, v.AddGlobal(f, object.NewInt(object.I32, 1), ""))

	err := v.AddGlobal(f, object.NewInt(object.I32, 2), "")
	assert.Error(t, err)
}

func TestLookupGlobal(t *testing.T) {
	v := New()
	f := fqn.New("main", "x")
	require.NoError(t, v.AddGlobal(f, object.NewInt(object.I32, 41), ""))

	got, ok := v.LookupGlobal(f)
	require.True(t, ok)
	assert.Equal(t, int64(41), got.(object.Int).Value)
}

func TestMakeFQNConstReusesEqualValue(t *testing.T) {
	v := New()
	f1 := v.MakeFQNConst("main", object.NewInt(object.I32, 7))
	f2 := v.MakeFQNConst("main", object.NewInt(object.I32, 7))
	assert.Equal(t, f1.Render(), f2.Render())

	f3 := v.MakeFQNConst("main", object.NewInt(object.I32, 8))
	assert.NotEqual(t, f1.Render(), f3.Render())
}

func doubleBody(args []object.Object) (object.Object, error) {
	n := args[0].(object.Int)
	return object.NewInt(object.I32, n.Value*2), nil
}

func TestRegisterBuiltinFuncIsIdempotent(t *testing.T) {
	v := New()
	funcT := &object.FuncType{Params: []*object.Type{object.I32Type}, Result: object.I32Type}

	bf1, err := v.RegisterBuiltinFunc("main", "double", nil, object.Red, object.FuncPlain, funcT, doubleBody)
	require.NoError(t, err)

	bf2, err := v.RegisterBuiltinFunc("main", "double", nil, object.Red, object.FuncPlain, funcT, doubleBody)
	require.NoError(t, err)
	assert.Same(t, bf1, bf2)
}

func TestRegisterBuiltinFuncRejectsConflictingBody(t *testing.T) {
	v := New()
	funcT := &object.FuncType{Params: []*object.Type{object.I32Type}, Result: object.I32Type}

	_, err := v.RegisterBuiltinFunc("main", "double", nil, object.Red, object.FuncPlain, funcT, doubleBody)
	require.NoError(t, err)

	otherBody := func(args []object.Object) (object.Object, error) {
		n := args[0].(object.Int)
		return object.NewInt(object.I32, n.Value*3), nil
	}
	_, err = v.RegisterBuiltinFunc("main", "double", nil, object.Red, object.FuncPlain, funcT, otherBody)
	assert.Error(t, err)
}

func TestCallTypechecksArity(t *testing.T) {
	v := New()
	funcT := &object.FuncType{Params: []*object.Type{object.I32Type}, Result: object.I32Type}
	bf, err := v.RegisterBuiltinFunc("main", "double", nil, object.Red, object.FuncPlain, funcT, doubleBody)
	require.NoError(t, err)

	_, err = v.Call(bf, nil)
	assert.Error(t, err)

	result, err := v.Call(bf, []object.Object{object.NewInt(object.I32, 4)})
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.(object.Int).Value)
}

func TestFastCallMemoizesBlueFunction(t *testing.T) {
	v := New()
	calls := 0
	body := func(args []object.Object) (object.Object, error) {
		calls++
		n := args[0].(object.Int)
		return object.NewInt(object.I32, n.Value*n.Value), nil
	}
	funcT := &object.FuncType{Params: []*object.Type{object.I32Type}, Result: object.I32Type, Color: object.Blue}
	bf, err := v.RegisterBuiltinFunc("main", "square", nil, object.Blue, object.FuncPlain, funcT, body)
	require.NoError(t, err)

	arg := object.NewInt(object.I32, 5)
	r1, err := v.FastCall(bf, []object.Object{arg})
	require.NoError(t, err)
	r2, err := v.FastCall(bf, []object.Object{arg})
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, calls)
}

func TestUniversalEqComparesByStructuralKey(t *testing.T) {
	v := New()
	a := object.NewInt(object.I32, 9)
	b := object.NewInt(object.I32, 9)
	c := object.NewInt(object.I32, 10)

	assert.True(t, v.UniversalEq(a, b))
	assert.False(t, v.UniversalEq(a, c))
}
