package opdispatch

import (
	"testing"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller is a minimal Caller that runs BuiltinFunc bodies directly
// and treats FastMetacall identically to FastCall, good enough to
// exercise the typechecker/dispatcher without a full VM.
type fakeCaller struct{}

func (fakeCaller) FastCall(callee object.Object, args []object.Object) (object.Object, error) {
	bf := callee.(*object.BuiltinFunc)
	return bf.Run(args)
}

func (c fakeCaller) FastMetacall(metafunc object.Object, margs []object.MetaArg) (object.Object, error) {
	args := make([]object.Object, len(margs))
	for i, m := range margs {
		args[i] = m
	}
	return c.FastCall(metafunc, args)
}

func addI32Func() *object.BuiltinFunc {
	return &object.BuiltinFunc{
		FQN: fqn.New("core", "__add__"),
		FuncT: &object.FuncType{
			Params: []*object.Type{object.I32Type, object.I32Type},
			Result: object.I32Type,
			Color:  object.Red,
		},
		Run: func(args []object.Object) (object.Object, error) {
			a := args[0].(object.Int)
			b := args[1].(object.Int)
			return object.NewInt(object.I32, a.Value+b.Value), nil
		},
	}
}

func addMetafunc(spec *OpSpec) *object.BuiltinFunc {
	return &object.BuiltinFunc{
		FQN:   fqn.New("core", "__add__.meta"),
		FuncT: &object.FuncType{Color: object.Blue, Kind: object.FuncMetafunc},
		Run: func(args []object.Object) (object.Object, error) {
			return spec, nil
		},
	}
}

func TestDispatchBinaryAddBothBlueFolds(t *testing.T) {
	i32 := object.NewType(object.I32Type.FQN, object.I32Type.Base, object.I32Type.PyClass, object.I32Type.Storage)
	i32.Members["__add__"] = addMetafunc(SimpleSpec(addI32Func(), true))

	left := object.NewBlueArg(i32, object.NewInt(object.I32, 2), ast.Span{})
	right := object.NewBlueArg(i32, object.NewInt(object.I32, 3), ast.Span{})

	result, err := Dispatch(fakeCaller{}, OpAdd, left, right)
	require.NoError(t, err)
	assert.True(t, result.IsBlue())
	assert.Equal(t, int64(5), result.Value.(object.Int).Value)
}

func TestDispatchBinaryRedOperandStaysRed(t *testing.T) {
	i32 := object.NewType(object.I32Type.FQN, object.I32Type.Base, object.I32Type.PyClass, object.I32Type.Storage)
	i32.Members["__add__"] = addMetafunc(SimpleSpec(addI32Func(), true))

	left := object.NewRedArgWithValue(i32, object.NewInt(object.I32, 2), ast.Span{})
	right := object.NewBlueArg(i32, object.NewInt(object.I32, 3), ast.Span{})

	result, err := Dispatch(fakeCaller{}, OpAdd, left, right)
	require.NoError(t, err)
	assert.True(t, result.IsRed())
	assert.Equal(t, int64(5), result.Value.(object.Int).Value)
}

func TestDispatchFallsBackToReverseOperator(t *testing.T) {
	i32 := object.NewType(object.I32Type.FQN, object.I32Type.Base, object.I32Type.PyClass, object.I32Type.Storage)
	str := object.NewType(object.StrType.FQN, object.StrType.Base, object.StrType.PyClass, object.StrType.Storage)
	// __radd__ is called with the operands swapped, so its parameters
	// are (str, i32).
	raddStrI32 := &object.BuiltinFunc{
		FQN: fqn.New("core", "__radd__"),
		FuncT: &object.FuncType{
			Params: []*object.Type{object.StrType, object.I32Type},
			Result: object.I32Type,
			Color:  object.Red,
		},
		Run: func(args []object.Object) (object.Object, error) {
			return object.NewInt(object.I32, args[0].(object.Int).Value+args[1].(object.Int).Value), nil
		},
	}
	str.Members["__radd__"] = addMetafunc(SimpleSpec(raddStrI32, false))

	left := object.NewBlueArg(i32, object.NewInt(object.I32, 2), ast.Span{})
	right := object.NewBlueArg(str, object.NewInt(object.I32, 3), ast.Span{})

	_, err := Dispatch(fakeCaller{}, OpAdd, left, right)
	require.NoError(t, err)
}

func TestDispatchNoOperatorReportsTypeError(t *testing.T) {
	i32 := object.NewType(object.I32Type.FQN, object.I32Type.Base, object.I32Type.PyClass, object.I32Type.Storage)
	str := object.NewType(object.StrType.FQN, object.StrType.Base, object.StrType.PyClass, object.StrType.Storage)

	left := object.NewBlueArg(i32, object.NewInt(object.I32, 2), ast.Span{})
	right := object.NewBlueArg(str, object.Str{Value: "x"}, ast.Span{})

	_, err := Dispatch(fakeCaller{}, OpAdd, left, right)
	require.Error(t, err)
}

func TestTypecheckInsertsConvertOnSubtypeMismatch(t *testing.T) {
	i8ToI32 := &object.BuiltinFunc{
		FQN: fqn.New("core", "i8_to_i32"),
		FuncT: &object.FuncType{
			Params: []*object.Type{object.I8Type},
			Result: object.I32Type,
		},
		Run: func(args []object.Object) (object.Object, error) {
			v := args[0].(object.Int)
			return object.NewInt(object.I32, v.Value), nil
		},
	}
	RegisterConverter(object.I8Type, object.I32Type, i8ToI32)

	fn := &object.BuiltinFunc{
		FQN: fqn.New("core", "takes_i32"),
		FuncT: &object.FuncType{
			Params: []*object.Type{object.I32Type},
			Result: object.I32Type,
		},
		Run: func(args []object.Object) (object.Object, error) {
			return args[0], nil
		},
	}
	spec := SimpleSpec(fn, false)

	arg := object.NewBlueArg(object.I8Type, object.NewInt(object.I8, 7), ast.Span{})
	impl, err := Typecheck(fakeCaller{}, spec, []object.MetaArg{arg})
	require.NoError(t, err)
	require.Len(t, impl.Args, 1)
	assert.Equal(t, ArgConvert, impl.Args[0].Kind)

	result, err := Execute(fakeCaller{}, impl, []object.MetaArg{arg})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.(object.Int).Value)
}

func TestTypecheckArityMismatch(t *testing.T) {
	fn := &object.BuiltinFunc{
		FQN:   fqn.New("core", "one_arg"),
		FuncT: &object.FuncType{Params: []*object.Type{object.I32Type}, Result: object.I32Type},
		Run:   func(args []object.Object) (object.Object, error) { return args[0], nil },
	}
	spec := SimpleSpec(fn, false)
	_, err := Typecheck(fakeCaller{}, spec, []object.MetaArg{})
	assert.Error(t, err)
}
