package redshift

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/frame"
	"github.com/spy-lang/spy/internal/object"
)

// tryFold attempts to evaluate e to a concrete blue value by replaying
// it against the scratch frame f. Any ScopeError ("not defined" / "used
// before assignment") is read as "this subtree depends on something
// not yet known" rather than a genuine failure, and causes tryFold to
// report no fold rather than propagate the error.
func (r *redshifter) tryFold(e ast.Expr, f *frame.Frame, moduleName string) (ast.Expr, *object.Type, bool, error) {
	ma, err := f.EvalExpr(e)
	if err != nil {
		if rep, ok := errors.As(err); ok && rep.Kind == errors.ScopeError {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	if !ma.IsBlue() {
		return nil, nil, false, nil
	}
	if astFn, ok := ma.Value.(*object.ASTFunc); ok {
		r.discovered = append(r.discovered, astFn)
	}
	cf := r.rt.VM.MakeFQNConst(moduleName, ma.Value)
	return &ast.FQNConst{Const: cf, Span: e.Pos()}, ma.StaticT, true, nil
}
