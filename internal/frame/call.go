package frame

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/symtable"
)

func (f *Frame) evalCall(ex *ast.Call) (object.MetaArg, error) {
	callee, err := f.EvalExpr(ex.Callee)
	if err != nil {
		return object.MetaArg{}, err
	}
	args := make([]object.MetaArg, len(ex.Args))
	argVals := make([]object.Object, len(ex.Args))
	allBlue := callee.IsBlue()
	for i, a := range ex.Args {
		ma, err := f.EvalExpr(a)
		if err != nil {
			return object.MetaArg{}, err
		}
		args[i] = ma
		argVals[i] = ma.Value
		if !ma.IsBlue() {
			allBlue = false
		}
	}

	if ty, ok := callee.Value.(*object.Type); ok {
		return f.evalConstruct(ex, ty, argVals)
	}

	funcT, err := f.funcTypeOf(callee.Value)
	if err != nil {
		return object.MetaArg{}, err
	}

	result, err := f.invoke(callee.Value, funcT, argVals)
	if err != nil {
		return object.MetaArg{}, err
	}

	if funcT.Color == object.Blue && allBlue {
		return object.NewBlueArg(funcT.Result, result, ex.Span), nil
	}
	return object.NewRedArgWithValue(funcT.Result, result, ex.Span), nil
}

func (f *Frame) evalConstruct(ex *ast.Call, ty *object.Type, argVals []object.Object) (object.MetaArg, error) {
	newFn, ok := ty.GetMember("__new__")
	if !ok {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.TypeError, "%s has no constructor", ty.FQN.Render()).
			Annotate(errors.SeverityError, ex.Span, "constructed here"))
	}
	result, err := f.RT.VM.Call(newFn, argVals)
	if err != nil {
		return object.MetaArg{}, err
	}
	return object.NewRedArgWithValue(ty, result, ex.Span), nil
}

func (f *Frame) funcTypeOf(callee object.Object) (*object.FuncType, error) {
	switch fn := callee.(type) {
	case *object.BuiltinFunc:
		return fn.FuncT, nil
	case *object.ASTFunc:
		return fn.FuncT, nil
	default:
		return nil, errors.Wrap(errors.New(errors.TypeError, "%s is not callable", callee.String()))
	}
}

// invoke dispatches a resolved callee to either the VM kernel
// (BuiltinFunc) or this frame's own recursive evaluation (ASTFunc,
// whose body only the evaluator — not the VM kernel — knows how to
// run; spec §4.1's call/fast_call are for native + already-compiled
// callables).
func (f *Frame) invoke(callee object.Object, funcT *object.FuncType, argVals []object.Object) (object.Object, error) {
	switch fn := callee.(type) {
	case *object.BuiltinFunc:
		return f.RT.VM.Call(fn, argVals)
	case *object.ASTFunc:
		return f.RT.VM.CallMemoized(funcT.Color == object.Blue, fn, argVals, func() (object.Object, error) {
			return f.callASTFunc(fn, argVals)
		})
	default:
		return nil, errors.Wrap(errors.New(errors.TypeError, "%s is not callable", callee.String()))
	}
}

func (f *Frame) callASTFunc(fn *object.ASTFunc, argVals []object.Object) (object.Object, error) {
	if len(argVals) != len(fn.Def.Params) {
		return nil, errors.Wrap(errors.New(errors.TypeError,
			"this function takes %d arguments but %d were supplied", len(fn.Def.Params), len(argVals)))
	}

	defFrame, ok := f.RT.defFrames[fn.FQN.Render()]
	if !ok {
		defFrame = f // fallback: treat as defined where first called from
	}
	sym, ok := fn.Sym.(*symtable.SymTable)
	if !ok {
		return nil, errors.Wrap(errors.New(errors.PanicError, "internal: ASTFunc %s has no resolved symbol table", fn.FQN.Render()))
	}

	child := defFrame.NewChild(sym)
	for i, p := range fn.Def.Params {
		child.Vars[p.Name] = object.NewCell(argVals[i])
	}

	ctl, err := child.ExecBlock(fn.Def.Body)
	if err != nil {
		return nil, err
	}
	if ctl.sig == sigReturn {
		if ctl.value.Value == nil {
			return object.NoneObj, nil
		}
		return ctl.value.Value, nil
	}
	return object.NoneObj, nil
}
