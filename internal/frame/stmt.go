package frame

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/opdispatch"
	"github.com/spy-lang/spy/internal/symtable"
)

// ExecBlock runs body in program order, stopping early on the first
// Break/Continue/Return signal.
func (f *Frame) ExecBlock(body []ast.Stmt) (control, error) {
	for _, stmt := range body {
		ctl, err := f.ExecStmt(stmt)
		if err != nil {
			return none, err
		}
		if ctl.sig != sigNone {
			return ctl, nil
		}
	}
	return none, nil
}

// ExecStmt runs a single statement (spec §4.2's statement table).
func (f *Frame) ExecStmt(stmt ast.Stmt) (control, error) {
	switch st := stmt.(type) {
	case *ast.VarDef:
		return f.execVarDef(st)
	case *ast.Assign:
		return f.execAssign(st)
	case *ast.UnpackAssign:
		return f.execUnpackAssign(st)
	case *ast.AugAssign:
		return f.execAugAssign(st)
	case *ast.If:
		return f.execIf(st)
	case *ast.While:
		return f.execWhile(st)
	case *ast.For:
		return f.execFor(st)
	case *ast.Break:
		return control{sig: sigBreak}, nil
	case *ast.Continue:
		return control{sig: sigContinue}, nil
	case *ast.Return:
		return f.execReturn(st)
	case *ast.Raise:
		return f.execRaise(st)
	case *ast.Assert:
		return f.execAssert(st)
	case *ast.StmtExpr:
		if _, err := f.EvalExpr(st.Value); err != nil {
			return none, err
		}
		return none, nil
	case *ast.FuncDef:
		return none, f.execFuncDef(st)
	case *ast.ClassDef:
		return none, f.execClassDef(st)
	default:
		return none, errors.Wrap(errors.New(errors.PanicError, "frame: unsupported statement node"))
	}
}

func (f *Frame) execVarDef(st *ast.VarDef) (control, error) {
	ma, err := f.EvalExpr(st.Value)
	if err != nil {
		return none, err
	}
	if err := f.assignName(st.Name, st.Span, ma.Value); err != nil {
		return none, err
	}
	return none, nil
}

func (f *Frame) execAssign(st *ast.Assign) (control, error) {
	ma, err := f.EvalExpr(st.Value)
	if err != nil {
		return none, err
	}
	if err := f.assignTarget(st.Target, ma); err != nil {
		return none, err
	}
	return none, nil
}

func (f *Frame) assignTarget(target ast.Expr, ma object.MetaArg) error {
	switch t := target.(type) {
	case *ast.Name:
		return f.assignName(t.Value, t.Span, ma.Value)
	case *ast.Attribute:
		owner, err := f.EvalExpr(t.Target)
		if err != nil {
			return err
		}
		inst, ok := owner.Value.(*object.Instance)
		if !ok {
			return errors.Wrap(errors.New(errors.TypeError, "%s has no assignable attributes", owner.StaticT.FQN.Render()).
				Annotate(errors.SeverityError, t.Span, "assigned here"))
		}
		inst.SetField(t.Name, ma.Value)
		return nil
	case *ast.Index:
		targetMA, err := f.EvalExpr(t.Target)
		if err != nil {
			return err
		}
		idxMA, err := f.EvalExpr(t.Index)
		if err != nil {
			return err
		}
		_, err = opdispatch.Dispatch(f.RT.VM, opdispatch.OpSetItem, targetMA, idxMA, ma)
		return err
	default:
		return errors.Wrap(errors.New(errors.TypeError, "invalid assignment target"))
	}
}

func (f *Frame) execUnpackAssign(st *ast.UnpackAssign) (control, error) {
	ma, err := f.EvalExpr(st.Value)
	if err != nil {
		return none, err
	}
	tuple, ok := ma.Value.(object.Tuple)
	if !ok {
		return none, errors.Wrap(errors.New(errors.TypeError, "cannot unpack a non-tuple value").
			Annotate(errors.SeverityError, st.Span, "unpacked here"))
	}
	if len(tuple.Elems) != len(st.Targets) {
		return none, errors.Wrap(errors.New(errors.ValueError, "expected %d values to unpack but got %d", len(st.Targets), len(tuple.Elems)).
			Annotate(errors.SeverityError, st.Span, "unpacked here"))
	}
	for i, name := range st.Targets {
		if err := f.assignName(name, st.Span, tuple.Elems[i]); err != nil {
			return none, err
		}
	}
	return none, nil
}

var augOpKinds = map[string]opdispatch.OpKind{
	"+=": opdispatch.OpAdd,
	"-=": opdispatch.OpSub,
	"*=": opdispatch.OpMul,
	"/=": opdispatch.OpDiv,
}

func (f *Frame) execAugAssign(st *ast.AugAssign) (control, error) {
	kind, ok := augOpKinds[st.Op]
	if !ok {
		return none, errors.Wrap(errors.New(errors.ParseError, "unknown augmented-assignment operator %q", st.Op))
	}
	current, err := f.EvalExpr(st.Target)
	if err != nil {
		return none, err
	}
	rhs, err := f.EvalExpr(st.Value)
	if err != nil {
		return none, err
	}
	result, err := opdispatch.Dispatch(f.RT.VM, kind, current, rhs)
	if err != nil {
		return none, err
	}
	if err := f.assignTarget(st.Target, result); err != nil {
		return none, err
	}
	return none, nil
}

func (f *Frame) toBool(ma object.MetaArg) (bool, error) {
	if b, ok := ma.Value.(object.Bool); ok {
		return b.Value, nil
	}
	converted, err := opdispatch.Dispatch(f.RT.VM, opdispatch.OpBool, ma)
	if err != nil {
		return false, err
	}
	b, ok := converted.Value.(object.Bool)
	if !ok {
		return false, errors.Wrap(errors.New(errors.TypeError, "__bool__ did not return a bool"))
	}
	return b.Value, nil
}

func (f *Frame) execIf(st *ast.If) (control, error) {
	cond, err := f.EvalExpr(st.Cond)
	if err != nil {
		return none, err
	}
	truth, err := f.toBool(cond)
	if err != nil {
		return none, err
	}
	if truth {
		return f.ExecBlock(st.Body)
	}
	return f.ExecBlock(st.OrElse)
}

func (f *Frame) execWhile(st *ast.While) (control, error) {
	for {
		cond, err := f.EvalExpr(st.Cond)
		if err != nil {
			return none, err
		}
		truth, err := f.toBool(cond)
		if err != nil {
			return none, err
		}
		if !truth {
			return none, nil
		}
		ctl, err := f.ExecBlock(st.Body)
		if err != nil {
			return none, err
		}
		switch ctl.sig {
		case sigBreak:
			return none, nil
		case sigReturn:
			return ctl, nil
		}
	}
}

func (f *Frame) execFor(st *ast.For) (control, error) {
	iter, err := f.EvalExpr(st.Iter)
	if err != nil {
		return none, err
	}
	var items []object.Object
	switch v := iter.Value.(type) {
	case *object.List:
		items = v.Elems
	case object.Tuple:
		items = v.Elems
	default:
		return none, errors.Wrap(errors.New(errors.TypeError, "%s is not iterable", iter.StaticT.FQN.Render()).
			Annotate(errors.SeverityError, st.Span, "iterated here"))
	}
	for _, item := range items {
		if err := f.assignName(st.Name, st.Span, item); err != nil {
			return none, err
		}
		ctl, err := f.ExecBlock(st.Body)
		if err != nil {
			return none, err
		}
		switch ctl.sig {
		case sigBreak:
			return none, nil
		case sigReturn:
			return ctl, nil
		}
	}
	return none, nil
}

func (f *Frame) execReturn(st *ast.Return) (control, error) {
	if st.Value == nil {
		return control{sig: sigReturn, value: object.NewBlueArg(object.VoidType, object.NoneObj, st.Span)}, nil
	}
	ma, err := f.EvalExpr(st.Value)
	if err != nil {
		return none, err
	}
	return control{sig: sigReturn, value: ma}, nil
}

func (f *Frame) execRaise(st *ast.Raise) (control, error) {
	ma, err := f.EvalExpr(st.Value)
	if err != nil {
		return none, err
	}
	if !ma.IsBlue() {
		return none, errors.Wrap(errors.New(errors.ValueError, "raise only supports blue exception values").
			Annotate(errors.SeverityError, st.Span, "raised here"))
	}
	rep := errors.New(errors.ValueError, "%s", ma.Value.String()).
		WithException(ma.Value).
		Annotate(errors.SeverityError, st.Span, "raised here")
	return none, errors.Wrap(rep)
}

func (f *Frame) execAssert(st *ast.Assert) (control, error) {
	cond, err := f.EvalExpr(st.Cond)
	if err != nil {
		return none, err
	}
	truth, err := f.toBool(cond)
	if err != nil {
		return none, err
	}
	if truth {
		return none, nil
	}
	msg := "assertion failed"
	if st.Msg != nil {
		ma, err := f.EvalExpr(st.Msg)
		if err != nil {
			return none, err
		}
		if s, ok := ma.Value.(object.Str); ok {
			msg = s.Value
		}
	}
	return none, errors.Wrap(errors.New(errors.ValueError, "%s", msg).
		Annotate(errors.SeverityError, st.Span, "assertion here"))
}

func (f *Frame) execFuncDef(st *ast.FuncDef) error {
	fnSym, err := symtable.BuildFunc(st, f.Sym)
	if err != nil {
		return err
	}

	params := make([]*object.Type, len(st.Params))
	for i, p := range st.Params {
		if p.Type != nil {
			ty, err := f.resolveTypeExpr(p.Type)
			if err != nil {
				return err
			}
			params[i] = ty
		} else {
			params[i] = object.ObjectType
		}
	}
	result := object.VoidType
	if st.ReturnT != nil {
		ty, err := f.resolveTypeExpr(st.ReturnT)
		if err != nil {
			return err
		}
		result = ty
	}

	color := object.Red
	kind := object.FuncPlain
	switch st.Decorator {
	case ast.DecoratorBlue:
		color = object.Blue
	case ast.DecoratorBlueGeneric:
		color = object.Blue
		kind = object.FuncGeneric
	case ast.DecoratorBlueMetafunc:
		color = object.Blue
		kind = object.FuncMetafunc
	}

	funcFQN := fqn.New(f.ModuleName, st.Name)
	astFn := &object.ASTFunc{
		FQN:   funcFQN,
		Def:   st,
		FuncT: &object.FuncType{Params: params, Result: result, Color: color, Kind: kind},
		Sym:   fnSym,
	}

	f.RT.defFrames[funcFQN.Render()] = f
	return f.assignName(st.Name, st.Span, astFn)
}

func (f *Frame) execClassDef(st *ast.ClassDef) error {
	classFQN := fqn.New(f.ModuleName, st.Name)
	ty := object.NewType(classFQN, object.ObjectType, object.PyClassStruct, object.StorageReference)

	fieldOrder := make([]string, len(st.Fields))
	fieldTypes := make(map[string]*object.Type, len(st.Fields))
	for i, field := range st.Fields {
		fieldOrder[i] = field.Name
		if field.Type != nil {
			ft, err := f.resolveTypeExpr(field.Type)
			if err != nil {
				return err
			}
			fieldTypes[field.Name] = ft
		} else {
			fieldTypes[field.Name] = object.ObjectType
		}
	}

	newFuncT := &object.FuncType{Result: ty, Color: object.Red}
	newFuncT.Params = make([]*object.Type, len(fieldOrder))
	for i, name := range fieldOrder {
		newFuncT.Params[i] = fieldTypes[name]
	}
	ty.Members["__new__"] = &object.BuiltinFunc{
		FQN:   fqn.Qualified(f.ModuleName, "__new__", classFQN),
		FuncT: newFuncT,
		Run: func(args []object.Object) (object.Object, error) {
			if len(args) != len(fieldOrder) {
				return nil, errors.Wrap(errors.New(errors.TypeError,
					"%s takes %d fields but %d were supplied", st.Name, len(fieldOrder), len(args)))
			}
			fields := make(map[string]object.Object, len(fieldOrder))
			for i, name := range fieldOrder {
				fields[name] = args[i]
			}
			return object.NewInstance(ty, fields), nil
		},
	}

	return f.assignName(st.Name, st.Span, ty)
}
