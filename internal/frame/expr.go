package frame

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/opdispatch"
)

// EvalExpr evaluates e and returns the MetaArg it produces, maintaining
// spec §4.2's invariants: every MetaArg's static type is derivable
// from its children, and (since this is the interpreter, not the
// redshifter) a value is always populated.
func (f *Frame) EvalExpr(e ast.Expr) (object.MetaArg, error) {
	switch ex := e.(type) {
	case *ast.Name:
		return f.readName(ex)
	case *ast.IntLit:
		return object.NewBlueArg(object.I32Type, object.NewInt(object.I32, ex.Value), ex.Span), nil
	case *ast.FloatLit:
		return object.NewBlueArg(object.F64Type, object.NewFloat(object.F64, ex.Value), ex.Span), nil
	case *ast.StrLit:
		return object.NewBlueArg(object.StrType, object.Str{Value: ex.Value}, ex.Span), nil
	case *ast.BoolLit:
		return object.NewBlueArg(object.BoolType, object.BoolOf(ex.Value), ex.Span), nil
	case *ast.NoneLit:
		return object.NewBlueArg(object.VoidType, object.NoneObj, ex.Span), nil
	case *ast.TupleLit:
		return f.evalTuple(ex)
	case *ast.BinOp:
		return f.evalBinOp(ex)
	case *ast.UnaryOp:
		return f.evalUnaryOp(ex)
	case *ast.Compare:
		return f.evalCompare(ex)
	case *ast.Call:
		return f.evalCall(ex)
	case *ast.Index:
		return f.evalIndex(ex)
	case *ast.Attribute:
		return f.evalAttribute(ex)
	case *ast.GenericApply:
		return f.evalGenericApply(ex)
	default:
		return object.MetaArg{}, errors.Wrap(errors.New(errors.PanicError, "frame: unsupported expression node"))
	}
}

func (f *Frame) evalTuple(ex *ast.TupleLit) (object.MetaArg, error) {
	elems := make([]object.Object, len(ex.Elts))
	allBlue := true
	for i, el := range ex.Elts {
		ma, err := f.EvalExpr(el)
		if err != nil {
			return object.MetaArg{}, err
		}
		elems[i] = ma.Value
		if !ma.IsBlue() {
			allBlue = false
		}
	}
	tuple := object.Tuple{Elems: elems}
	if allBlue {
		return object.NewBlueArg(object.TupleType, tuple, ex.Span), nil
	}
	return object.NewRedArgWithValue(object.TupleType, tuple, ex.Span), nil
}

var binOpKinds = map[string]opdispatch.OpKind{
	"+": opdispatch.OpAdd,
	"-": opdispatch.OpSub,
	"*": opdispatch.OpMul,
	"/": opdispatch.OpDiv,
	"%": opdispatch.OpMod,
}

func (f *Frame) evalBinOp(ex *ast.BinOp) (object.MetaArg, error) {
	if ex.Op == "and" || ex.Op == "or" {
		return f.evalShortCircuit(ex)
	}
	kind, ok := binOpKinds[ex.Op]
	if !ok {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.ParseError, "unknown binary operator %q", ex.Op))
	}
	left, err := f.EvalExpr(ex.Left)
	if err != nil {
		return object.MetaArg{}, err
	}
	right, err := f.EvalExpr(ex.Right)
	if err != nil {
		return object.MetaArg{}, err
	}
	return opdispatch.Dispatch(f.RT.VM, kind, left, right)
}

// evalShortCircuit evaluates `and`/`or`, never reading the right
// operand when the left already decides the result.
func (f *Frame) evalShortCircuit(ex *ast.BinOp) (object.MetaArg, error) {
	left, err := f.EvalExpr(ex.Left)
	if err != nil {
		return object.MetaArg{}, err
	}
	leftTruth, err := f.toBool(left)
	if err != nil {
		return object.MetaArg{}, err
	}
	if (ex.Op == "and" && !leftTruth) || (ex.Op == "or" && leftTruth) {
		return left, nil
	}
	return f.EvalExpr(ex.Right)
}

func (f *Frame) evalUnaryOp(ex *ast.UnaryOp) (object.MetaArg, error) {
	operand, err := f.EvalExpr(ex.Operand)
	if err != nil {
		return object.MetaArg{}, err
	}
	switch ex.Op {
	case "-":
		return opdispatch.Dispatch(f.RT.VM, opdispatch.OpNeg, operand)
	case "not":
		boolArg := operand
		if _, ok := operand.Value.(object.Bool); !ok {
			bm, err := opdispatch.Dispatch(f.RT.VM, opdispatch.OpBool, operand)
			if err != nil {
				return object.MetaArg{}, err
			}
			boolArg = bm
		}
		b := boolArg.Value.(object.Bool)
		result := object.BoolOf(!b.Value)
		if boolArg.IsBlue() {
			return object.NewBlueArg(object.BoolType, result, ex.Span), nil
		}
		return object.NewRedArgWithValue(object.BoolType, result, ex.Span), nil
	default:
		return object.MetaArg{}, errors.Wrap(errors.New(errors.ParseError, "unknown unary operator %q", ex.Op))
	}
}

var compareOpKinds = map[string]opdispatch.OpKind{
	"==": opdispatch.OpEq,
	"!=": opdispatch.OpNe,
	"<":  opdispatch.OpLt,
	"<=": opdispatch.OpLe,
	">":  opdispatch.OpGt,
	">=": opdispatch.OpGe,
}

func (f *Frame) evalCompare(ex *ast.Compare) (object.MetaArg, error) {
	left, err := f.EvalExpr(ex.Left)
	if err != nil {
		return object.MetaArg{}, err
	}
	allBlue := left.IsBlue()
	result := true
	for i, compExpr := range ex.Comps {
		right, err := f.EvalExpr(compExpr)
		if err != nil {
			return object.MetaArg{}, err
		}
		if !right.IsBlue() {
			allBlue = false
		}
		kind, ok := compareOpKinds[ex.Ops[i]]
		if !ok {
			return object.MetaArg{}, errors.Wrap(errors.New(errors.ParseError, "unknown comparison operator %q", ex.Ops[i]))
		}
		cmp, err := opdispatch.Dispatch(f.RT.VM, kind, left, right)
		if err != nil {
			return object.MetaArg{}, err
		}
		if b, ok := cmp.Value.(object.Bool); ok && !b.Value {
			result = false
		}
		left = right
	}
	val := object.BoolOf(result)
	if allBlue {
		return object.NewBlueArg(object.BoolType, val, ex.Span), nil
	}
	return object.NewRedArgWithValue(object.BoolType, val, ex.Span), nil
}

func (f *Frame) evalIndex(ex *ast.Index) (object.MetaArg, error) {
	target, err := f.EvalExpr(ex.Target)
	if err != nil {
		return object.MetaArg{}, err
	}
	idx, err := f.EvalExpr(ex.Index)
	if err != nil {
		return object.MetaArg{}, err
	}
	return opdispatch.Dispatch(f.RT.VM, opdispatch.OpGetItem, target, idx)
}

func (f *Frame) evalAttribute(ex *ast.Attribute) (object.MetaArg, error) {
	target, err := f.EvalExpr(ex.Target)
	if err != nil {
		return object.MetaArg{}, err
	}
	nameArg := object.NewBlueArg(object.StrType, object.Str{Value: ex.Name}, ex.Span)
	return opdispatch.Dispatch(f.RT.VM, opdispatch.OpGetAttr, target, nameArg)
}

func (f *Frame) evalGenericApply(ex *ast.GenericApply) (object.MetaArg, error) {
	callee, err := f.EvalExpr(ex.Callee)
	if err != nil {
		return object.MetaArg{}, err
	}
	if !callee.IsBlue() {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.TypeError, "generic specialization requires a blue (compile-time-known) callee").
			Annotate(errors.SeverityError, ex.Span, "specialized here"))
	}
	typeArgs := make([]object.Object, len(ex.Args))
	for i, ta := range ex.Args {
		ty, err := f.resolveTypeExpr(ta)
		if err != nil {
			return object.MetaArg{}, err
		}
		typeArgs[i] = ty
	}
	result, err := f.RT.VM.Call(callee.Value, typeArgs)
	if err != nil {
		return object.MetaArg{}, err
	}
	return object.NewBlueArg(result.SpyType(), result, ex.Span), nil
}
