package opdispatch

import (
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/object"
)

// OpKind names the syntactic operator being dispatched; it selects
// which metafunction name(s) Dispatch tries on the operand types.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpGetItem
	OpSetItem
	OpGetAttr
	OpStr
	OpBool
	OpLen
	OpNeg
)

// binaryNames maps a binary OpKind to its primary (__OP__) and
// fallback-on-the-right-operand (__rOP__) metafunction names, per
// spec §4.3 "try __OP__ on left type; if null, try __rOP__ on right".
var binaryNames = map[OpKind][2]string{
	OpAdd: {"__add__", "__radd__"},
	OpSub: {"__sub__", "__rsub__"},
	OpMul: {"__mul__", "__rmul__"},
	OpDiv: {"__truediv__", "__rtruediv__"},
	OpMod: {"__mod__", "__rmod__"},
	OpEq:  {"__eq__", "__eq__"},
	OpNe:  {"__ne__", "__ne__"},
	OpLt:  {"__lt__", "__gt__"},
	OpLe:  {"__le__", "__ge__"},
	OpGt:  {"__gt__", "__lt__"},
	OpGe:  {"__ge__", "__le__"},
}

var unaryNames = map[OpKind]string{
	OpStr:  "__str__",
	OpBool: "__bool__",
	OpLen:  "__len__",
	OpNeg:  "__neg__",
}

// Dispatch resolves and executes a syntactic operator application
// against args (the operands, in source order), following spec §4.3's
// lookup order: binary ops try __OP__ then __rOP__; getitem/setitem use
// __getitem__/__setitem__; getattr uses __getattribute__ falling back
// to a static dict lookup then __getattr__; everything else is a plain
// unary metafunction lookup on the sole operand's type.
func Dispatch(caller Caller, kind OpKind, args ...object.MetaArg) (object.MetaArg, error) {
	switch kind {
	case OpGetItem:
		return dispatchNamed(caller, "__getitem__", args, args[0])
	case OpSetItem:
		return dispatchNamed(caller, "__setitem__", args, args[0])
	case OpGetAttr:
		return dispatchGetAttr(caller, args)
	}

	if names, ok := binaryNames[kind]; ok {
		return dispatchBinary(caller, names[0], names[1], args)
	}
	if name, ok := unaryNames[kind]; ok {
		return dispatchNamed(caller, name, args, args[0])
	}
	return object.MetaArg{}, errors.Wrap(errors.New(errors.PanicError, "opdispatch: unknown operator kind %d", kind))
}

func dispatchBinary(caller Caller, primaryName, fallbackName string, args []object.MetaArg) (object.MetaArg, error) {
	left, right := args[0], args[1]

	if fn, ok := left.StaticT.GetMember(primaryName); ok {
		ma, ok, err := tryMetafunc(caller, fn, args)
		if err != nil {
			return object.MetaArg{}, err
		}
		if ok {
			return ma, nil
		}
	}
	if fn, ok := right.StaticT.GetMember(fallbackName); ok {
		reordered := []object.MetaArg{right, left}
		ma, ok, err := tryMetafunc(caller, fn, reordered)
		if err != nil {
			return object.MetaArg{}, err
		}
		if ok {
			return ma, nil
		}
	}
	return object.MetaArg{}, errors.Wrap(errors.New(errors.TypeError,
		"unsupported operand types for this operator: %s and %s", left.StaticT.FQN.Render(), right.StaticT.FQN.Render()))
}

// Resolve performs the same operator lookup as Dispatch but stops after
// typechecking: it returns the resolved OpImpl instead of invoking it.
// The redshifter uses this to turn an operator application into a
// residual direct Call without forcing concrete operand values to
// exist yet (spec §4.4 "operator applications are replaced by a direct
// Call to the OpImpl's underlying function").
func Resolve(caller Caller, kind OpKind, args ...object.MetaArg) (*OpImpl, error) {
	switch kind {
	case OpGetItem:
		return resolveNamed(caller, "__getitem__", args, args[0])
	case OpSetItem:
		return resolveNamed(caller, "__setitem__", args, args[0])
	case OpGetAttr:
		return resolveGetAttr(caller, args)
	}
	if names, ok := binaryNames[kind]; ok {
		return resolveBinary(caller, names[0], names[1], args)
	}
	if name, ok := unaryNames[kind]; ok {
		return resolveNamed(caller, name, args, args[0])
	}
	return nil, errors.Wrap(errors.New(errors.PanicError, "opdispatch: unknown operator kind %d", kind))
}

func resolveBinary(caller Caller, primaryName, fallbackName string, args []object.MetaArg) (*OpImpl, error) {
	left, right := args[0], args[1]

	if fn, ok := left.StaticT.GetMember(primaryName); ok {
		impl, ok, err := resolveMetafunc(caller, fn, args)
		if err != nil {
			return nil, err
		}
		if ok {
			return impl, nil
		}
	}
	if fn, ok := right.StaticT.GetMember(fallbackName); ok {
		reordered := []object.MetaArg{right, left}
		impl, ok, err := resolveMetafunc(caller, fn, reordered)
		if err != nil {
			return nil, err
		}
		if ok {
			return impl, nil
		}
	}
	return nil, errors.Wrap(errors.New(errors.TypeError,
		"unsupported operand types for this operator: %s and %s", left.StaticT.FQN.Render(), right.StaticT.FQN.Render()))
}

func resolveGetAttr(caller Caller, args []object.MetaArg) (*OpImpl, error) {
	target := args[0]
	if fn, ok := target.StaticT.GetMember("__getattribute__"); ok {
		impl, ok, err := resolveMetafunc(caller, fn, args)
		if err != nil {
			return nil, err
		}
		if ok {
			return impl, nil
		}
	}
	return nil, errors.Wrap(errors.New(errors.TypeError,
		"%s has no static resolution for this attribute; it can only be looked up at interpretation time", target.StaticT.FQN.Render()))
}

func resolveNamed(caller Caller, name string, args []object.MetaArg, primary object.MetaArg) (*OpImpl, error) {
	fn, ok := primary.StaticT.GetMember(name)
	if !ok {
		return nil, errors.Wrap(errors.New(errors.TypeError, "%s has no %s", primary.StaticT.FQN.Render(), name))
	}
	impl, ok, err := resolveMetafunc(caller, fn, args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(errors.New(errors.TypeError, "%s's %s declined this application", primary.StaticT.FQN.Render(), name))
	}
	return impl, nil
}

// resolveMetafunc invokes fn as a metafunction and typechecks its
// answer, without executing the resulting OpImpl.
func resolveMetafunc(caller Caller, fn object.Object, args []object.MetaArg) (*OpImpl, bool, error) {
	result, err := caller.FastMetacall(fn, args)
	if err != nil {
		return nil, false, err
	}
	spec, ok := result.(*OpSpec)
	if !ok || spec.Kind == OpSpecNull {
		return nil, false, nil
	}
	impl, err := Typecheck(caller, spec, args)
	if err != nil {
		return nil, false, err
	}
	return impl, true, nil
}

func dispatchGetAttr(caller Caller, args []object.MetaArg) (object.MetaArg, error) {
	target := args[0]
	name := args[1]

	if fn, ok := target.StaticT.GetMember("__getattribute__"); ok {
		ma, ok, err := tryMetafunc(caller, fn, args)
		if err != nil {
			return object.MetaArg{}, err
		}
		if ok {
			return ma, nil
		}
	}
	if name.IsBlue() {
		if attrName, ok := name.Value.(object.Str); ok {
			if inst, ok := target.Value.(*object.Instance); ok {
				if field, ok := inst.GetField(attrName.Value); ok {
					return object.NewRedArgWithValue(field.SpyType(), field, target.Loc), nil
				}
			}
			if member, ok := target.StaticT.GetMember(attrName.Value); ok {
				return object.NewBlueArg(member.SpyType(), member, target.Loc), nil
			}
		}
	}
	if _, ok := target.StaticT.GetMember("__getattr__"); ok {
		return dispatchNamed(caller, "__getattr__", args, target)
	}
	return object.MetaArg{}, errors.Wrap(errors.New(errors.TypeError, "%s has no such attribute", target.StaticT.FQN.Render()))
}

func dispatchNamed(caller Caller, name string, args []object.MetaArg, primary object.MetaArg) (object.MetaArg, error) {
	fn, ok := primary.StaticT.GetMember(name)
	if !ok {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.TypeError, "%s has no %s", primary.StaticT.FQN.Render(), name))
	}
	ma, ok, err := tryMetafunc(caller, fn, args)
	if err != nil {
		return object.MetaArg{}, err
	}
	if !ok {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.TypeError, "%s's %s declined this application", primary.StaticT.FQN.Render(), name))
	}
	return ma, nil
}

// tryMetafunc invokes fn as a metafunction over args, typechecks and
// executes the resulting OpSpec, and wraps the concrete result as a
// MetaArg. ok is false if the metafunction answered Null.
func tryMetafunc(caller Caller, fn object.Object, args []object.MetaArg) (object.MetaArg, bool, error) {
	result, err := caller.FastMetacall(fn, args)
	if err != nil {
		return object.MetaArg{}, false, err
	}
	spec, ok := result.(*OpSpec)
	if !ok || spec.Kind == OpSpecNull {
		return object.MetaArg{}, false, nil
	}

	impl, err := Typecheck(caller, spec, args)
	if err != nil {
		return object.MetaArg{}, false, err
	}

	allBlue := true
	for _, a := range args {
		if !a.IsBlue() {
			allBlue = false
			break
		}
	}

	if impl.IsConst() {
		return object.NewBlueArg(impl.FuncT.Result, impl.ConstVal, args[0].Loc), true, nil
	}

	value, err := Execute(caller, impl, args)
	if err != nil {
		return object.MetaArg{}, false, err
	}
	if allBlue && impl.FuncT.Color == object.Blue {
		return object.NewBlueArg(impl.FuncT.Result, value, args[0].Loc), true, nil
	}
	return object.NewRedArgWithValue(impl.FuncT.Result, value, args[0].Loc), true, nil
}
