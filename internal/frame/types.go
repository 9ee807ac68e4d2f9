package frame

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
)

var builtinTypes = map[string]*object.Type{
	"void": object.VoidType,
	"bool": object.BoolType,
	"i8":   object.I8Type,
	"u8":   object.U8Type,
	"i32":  object.I32Type,
	"u32":  object.U32Type,
	"f32":  object.F32Type,
	"f64":  object.F64Type,
	"str":  object.StrType,
}

// resolveTypeExpr turns a type annotation / generic-apply argument
// into a concrete *object.Type: builtin primitive names, list[T]/
// dict[K,V], or a user-defined type reachable as a module global.
func (f *Frame) resolveTypeExpr(te ast.TypeExpr) (*object.Type, error) {
	switch t := te.(type) {
	case *ast.NamedType:
		if bt, ok := builtinTypes[t.Name]; ok {
			return bt, nil
		}
		val, ok := f.RT.VM.LookupGlobal(fqn.New(f.ModuleName, t.Name))
		if !ok {
			return nil, errors.Wrap(errors.New(errors.ScopeError, "type %q is not defined", t.Name).
				Annotate(errors.SeverityError, t.Span, "used here"))
		}
		ty, ok := val.(*object.Type)
		if !ok {
			return nil, errors.Wrap(errors.New(errors.TypeError, "%q does not name a type", t.Name).
				Annotate(errors.SeverityError, t.Span, "used here"))
		}
		return ty, nil
	case *ast.GenericType:
		switch t.Name {
		case "list":
			if len(t.Args) != 1 {
				return nil, errors.Wrap(errors.New(errors.TypeError, "list takes exactly one type argument"))
			}
			elem, err := f.resolveTypeExpr(t.Args[0])
			if err != nil {
				return nil, err
			}
			return object.ListTypeOf(elem), nil
		case "dict":
			if len(t.Args) != 2 {
				return nil, errors.Wrap(errors.New(errors.TypeError, "dict takes exactly two type arguments"))
			}
			k, err := f.resolveTypeExpr(t.Args[0])
			if err != nil {
				return nil, err
			}
			v, err := f.resolveTypeExpr(t.Args[1])
			if err != nil {
				return nil, err
			}
			return object.DictTypeOf(k, v), nil
		default:
			return nil, errors.Wrap(errors.New(errors.TypeError, "unknown generic type %q", t.Name).
				Annotate(errors.SeverityError, t.Span, "used here"))
		}
	default:
		return nil, errors.Wrap(errors.New(errors.TypeError, "unsupported type expression"))
	}
}
