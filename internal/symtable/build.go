package symtable

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
)

// BuildModule runs the declare+flatten passes over a module's top
// level and returns its root SymTable.
func BuildModule(mod *ast.Module) (*SymTable, error) {
	root := New(mod.Name)
	if err := declareBlock(root, mod.Body); err != nil {
		return nil, err
	}
	if err := flattenBlock(root, mod.Body); err != nil {
		return nil, err
	}
	return root, nil
}

// BuildFunc runs the declare+flatten passes over a function body,
// returning a child SymTable of parent. Used both for top-level
// FuncDefs and for nested ones encountered during evaluation.
func BuildFunc(fn *ast.FuncDef, parent *SymTable) (*SymTable, error) {
	s := parent.NewChild(fn.Name)
	for _, p := range fn.Params {
		if _, err := s.Declare(p.Name, DeclConst, p.Span); err != nil {
			return nil, err
		}
	}
	if err := declareBlock(s, fn.Body); err != nil {
		return nil, err
	}
	if err := flattenBlock(s, fn.Body); err != nil {
		return nil, err
	}
	return s, nil
}

// declareBlock is the "declare" pass: it walks body, registering every
// name a statement introduces. if/while/for bodies share the
// enclosing scope (Python-style block scoping); only def/class bodies
// get their own SymTable, built separately by BuildFunc, so
// declareBlock only registers their *name*, not their contents.
func declareBlock(s *SymTable, body []ast.Stmt) error {
	for _, stmt := range body {
		if err := declareStmt(s, stmt); err != nil {
			return err
		}
	}
	return nil
}

func declareStmt(s *SymTable, stmt ast.Stmt) error {
	switch st := stmt.(type) {
	case *ast.VarDef:
		kind := DeclConst
		if st.Kind == ast.KindVar {
			kind = DeclVar
		}
		_, err := s.Declare(st.Name, kind, st.Span)
		return err
	case *ast.Assign:
		if name, ok := st.Target.(*ast.Name); ok {
			_, err := s.DeclareAssign(name.Value, st.Span)
			return err
		}
		return nil
	case *ast.UnpackAssign:
		for _, name := range st.Targets {
			if _, err := s.DeclareAssign(name, st.Span); err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		if err := declareBlock(s, st.Body); err != nil {
			return err
		}
		return declareBlock(s, st.OrElse)
	case *ast.While:
		return withLoop(s, func() error { return declareBlock(s, st.Body) })
	case *ast.For:
		return withLoop(s, func() error {
			if _, err := s.DeclareAssign(st.Name, st.Span); err != nil {
				return err
			}
			return declareBlock(s, st.Body)
		})
	case *ast.FuncDef:
		_, err := s.Declare(st.Name, DeclConst, st.Span)
		return err
	case *ast.ClassDef:
		_, err := s.Declare(st.Name, DeclConst, st.Span)
		return err
	default:
		return nil
	}
}

func withLoop(s *SymTable, f func() error) error {
	prev := s.InLoop
	s.InLoop = true
	err := f()
	s.InLoop = prev
	return err
}

// flattenBlock is the "flatten" pass: it resolves every Name
// expression reachable from body (without descending into nested
// def/class bodies, which get their own pass) to its declaring scope,
// reporting an unbound-name error if none is found.
func flattenBlock(s *SymTable, body []ast.Stmt) error {
	for _, stmt := range body {
		if err := flattenStmt(s, stmt); err != nil {
			return err
		}
	}
	return nil
}

func flattenStmt(s *SymTable, stmt ast.Stmt) error {
	switch st := stmt.(type) {
	case *ast.VarDef:
		return flattenExpr(s, st.Value)
	case *ast.Assign:
		if err := flattenExpr(s, st.Target); err != nil {
			return err
		}
		return flattenExpr(s, st.Value)
	case *ast.UnpackAssign:
		for _, name := range st.Targets {
			if _, _, ok := s.Lookup(name); !ok {
				return unbound(name, st.Span)
			}
		}
		return flattenExpr(s, st.Value)
	case *ast.AugAssign:
		if err := flattenExpr(s, st.Target); err != nil {
			return err
		}
		return flattenExpr(s, st.Value)
	case *ast.If:
		if err := flattenExpr(s, st.Cond); err != nil {
			return err
		}
		if err := flattenBlock(s, st.Body); err != nil {
			return err
		}
		return flattenBlock(s, st.OrElse)
	case *ast.While:
		if err := flattenExpr(s, st.Cond); err != nil {
			return err
		}
		return flattenBlock(s, st.Body)
	case *ast.For:
		if err := flattenExpr(s, st.Iter); err != nil {
			return err
		}
		return flattenBlock(s, st.Body)
	case *ast.Return:
		return flattenExpr(s, st.Value)
	case *ast.Raise:
		return flattenExpr(s, st.Value)
	case *ast.Assert:
		if err := flattenExpr(s, st.Cond); err != nil {
			return err
		}
		return flattenExpr(s, st.Msg)
	case *ast.StmtExpr:
		return flattenExpr(s, st.Value)
	default:
		return nil
	}
}

func flattenExpr(s *SymTable, expr ast.Expr) error {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.Name:
		if _, _, ok := s.Lookup(e.Value); !ok {
			return unbound(e.Value, e.Span)
		}
		return nil
	case *ast.BinOp:
		if err := flattenExpr(s, e.Left); err != nil {
			return err
		}
		return flattenExpr(s, e.Right)
	case *ast.UnaryOp:
		return flattenExpr(s, e.Operand)
	case *ast.Compare:
		if err := flattenExpr(s, e.Left); err != nil {
			return err
		}
		for _, c := range e.Comps {
			if err := flattenExpr(s, c); err != nil {
				return err
			}
		}
		return nil
	case *ast.Call:
		if err := flattenExpr(s, e.Callee); err != nil {
			return err
		}
		for _, a := range e.Args {
			if err := flattenExpr(s, a); err != nil {
				return err
			}
		}
		return nil
	case *ast.Index:
		if err := flattenExpr(s, e.Target); err != nil {
			return err
		}
		return flattenExpr(s, e.Index)
	case *ast.Attribute:
		return flattenExpr(s, e.Target)
	case *ast.GenericApply:
		return flattenExpr(s, e.Callee)
	case *ast.TupleLit:
		for _, el := range e.Elts {
			if err := flattenExpr(s, el); err != nil {
				return err
			}
		}
		return nil
	default:
		// literals (IntLit/FloatLit/StrLit/BoolLit/NoneLit) bind nothing.
		return nil
	}
}

func unbound(name string, loc ast.Span) error {
	rep := errors.New(errors.ScopeError, "name %q is not defined", name).
		Annotate(errors.SeverityError, loc, "used here")
	return errors.Wrap(rep)
}
