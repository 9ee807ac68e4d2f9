package opdispatch

import (
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/object"
)

// Caller is the slice of vm.VM that opdispatch needs: invoking a
// resolved callee (FastCall) and invoking a metafunction with MetaArg
// arguments (FastMetacall). Kept as a local interface so this package
// never imports internal/vm.
type Caller interface {
	FastCall(callee object.Object, args []object.Object) (object.Object, error)
	FastMetacall(metafunc object.Object, margs []object.MetaArg) (object.Object, error)
}

func funcTypeOf(callee object.Object) (*object.FuncType, error) {
	switch fn := callee.(type) {
	case *object.BuiltinFunc:
		return fn.FuncT, nil
	case *object.ASTFunc:
		return fn.FuncT, nil
	default:
		return nil, errors.Wrap(errors.New(errors.TypeError, "%s is not callable", callee.String()))
	}
}

func identityPlan(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Typecheck turns spec plus the caller's argument MetaArgs into an
// OpImpl, per spec §4.3: expand the argument plan, subtype-check (or
// CONVERT) each final parameter, and fold immediately if the operator
// is pure and every input is blue.
func Typecheck(caller Caller, spec *OpSpec, margs []object.MetaArg) (*OpImpl, error) {
	switch spec.Kind {
	case OpSpecNull:
		return nil, nil
	case OpSpecConst:
		return &OpImpl{
			FuncT:    &object.FuncType{Result: spec.Const.SpyType(), Color: object.Blue},
			ConstVal: spec.Const,
		}, nil
	}

	declaredT, err := funcTypeOf(spec.Func)
	if err != nil {
		return nil, err
	}

	plan := spec.Plan
	if spec.Kind == OpSpecSimple || plan == nil {
		plan = identityPlan(len(declaredT.Params))
	}
	if len(plan) != len(declaredT.Params) {
		return nil, arityError(len(declaredT.Params), len(plan))
	}

	argPlans := make([]ArgPlan, len(plan))
	visibleTypes := make([]*object.Type, len(plan))
	allBlue := true

	for finalIdx, srcIdx := range plan {
		if srcIdx < 0 || srcIdx >= len(margs) {
			return nil, arityError(len(declaredT.Params), len(margs))
		}
		src := margs[srcIdx]
		paramT := declaredT.Params[finalIdx]
		visibleTypes[finalIdx] = src.StaticT
		if !src.IsBlue() {
			allBlue = false
		}

		if src.StaticT.IsSubtype(paramT) {
			argPlans[finalIdx] = ArgPlan{Kind: ArgDirect, Index: srcIdx}
			continue
		}

		conv, err := Convert(caller, paramT, src.StaticT, src)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, mismatchError(src, paramT)
		}
		argPlans[finalIdx] = ArgPlan{
			Kind:  ArgConvert,
			Index: srcIdx,
			Inner: conv,
			ExpT:  paramT,
			GotT:  src.StaticT,
		}
	}

	resultT := &object.FuncType{Params: visibleTypes, Result: declaredT.Result, Color: declaredT.Color, Kind: declaredT.Kind}

	if spec.Pure && allBlue {
		concrete := make([]object.Object, len(argPlans))
		for i, ap := range argPlans {
			v, err := resolveArg(caller, ap, margs)
			if err != nil {
				return nil, err
			}
			concrete[i] = v
		}
		result, err := caller.FastCall(spec.Func, concrete)
		if err != nil {
			return nil, err
		}
		return &OpImpl{FuncT: resultT, ConstVal: result}, nil
	}

	return &OpImpl{FuncT: resultT, Func: spec.Func, Args: argPlans}, nil
}

func resolveArg(caller Caller, ap ArgPlan, margs []object.MetaArg) (object.Object, error) {
	switch ap.Kind {
	case ArgConst:
		return ap.Const, nil
	case ArgConvert:
		srcVal := margs[ap.Index].Value
		if ap.Inner.Func == nil && !ap.Inner.IsConst() {
			return srcVal, nil // identity conversion
		}
		return Execute(caller, ap.Inner, []object.MetaArg{object.NewRedArgWithValue(ap.GotT, srcVal, margs[ap.Index].Loc)})
	default: // ArgDirect
		return margs[ap.Index].Value, nil
	}
}

// Execute runs impl against margs, producing the concrete result.
// Interpretation always populates MetaArg.Value (spec §4.2), so this
// is only used outside of redshift.
func Execute(caller Caller, impl *OpImpl, margs []object.MetaArg) (object.Object, error) {
	if impl.IsConst() {
		return impl.ConstVal, nil
	}
	args := make([]object.Object, len(impl.Args))
	for i, ap := range impl.Args {
		v, err := resolveArg(caller, ap, margs)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if impl.Func == nil {
		// identity conversion with no wrapped callee.
		if len(args) != 1 {
			return nil, errors.Wrap(errors.New(errors.PanicError, "identity OpImpl expects exactly one argument"))
		}
		return args[0], nil
	}
	return caller.FastCall(impl.Func, args)
}

func arityError(want, got int) error {
	return errors.Wrap(errors.New(errors.TypeError, "this function takes %d arguments but %d were supplied", want, got))
}

func mismatchError(src object.MetaArg, want *object.Type) error {
	rep := errors.New(errors.TypeError, "cannot use %s where %s is expected", src.StaticT.FQN.Render(), want.FQN.Render()).
		Annotate(errors.SeverityError, src.Loc, "argument of type %s", src.StaticT.FQN.Render())
	return errors.Wrap(rep)
}
