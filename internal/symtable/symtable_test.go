package symtable

import (
	"testing"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(line int) ast.Span {
	return ast.Span{Start: ast.Pos{Line: line}, End: ast.Pos{Line: line}}
}

func TestDeclareAndLookup(t *testing.T) {
	s := New("module")
	sym, err := s.Declare("x", DeclConst, span(1))
	require.NoError(t, err)
	assert.Equal(t, DeclConst, sym.Kind)
	assert.Equal(t, StorageGlobal, sym.Storage)

	got, level, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 0, level)
	assert.Same(t, sym, got)
}

func TestDeclareRejectsSameScopeRedeclaration(t *testing.T) {
	s := New("module")
	_, err := s.Declare("x", DeclConst, span(1))
	require.NoError(t, err)

	_, err = s.Declare("x", DeclConst, span(2))
	require.Error(t, err)

	rep, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ScopeError, rep.Kind)
	assert.Len(t, rep.Annotations, 2)
}

func TestDeclareRejectsOuterShadow(t *testing.T) {
	parent := New("module")
	_, err := parent.Declare("x", DeclConst, span(1))
	require.NoError(t, err)

	child := parent.NewChild("f")
	_, err = child.Declare("x", DeclConst, span(2))
	require.Error(t, err)

	rep, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ScopeError, rep.Kind)
	assert.Contains(t, rep.Message, "shadows")
}

func TestDeclareAssignIsIdempotentWithinScope(t *testing.T) {
	s := New("f")
	sym1, err := s.DeclareAssign("acc", span(1))
	require.NoError(t, err)
	sym2, err := s.DeclareAssign("acc", span(2))
	require.NoError(t, err)
	assert.Same(t, sym1, sym2)
}

func TestDeclareAssignDefaultsToConstOutsideLoop(t *testing.T) {
	s := New("f")
	sym, err := s.DeclareAssign("acc", span(1))
	require.NoError(t, err)
	assert.Equal(t, DeclConst, sym.Kind)
}

func TestDeclareAssignDefaultsToVarInsideLoop(t *testing.T) {
	s := New("f")
	s.InLoop = true
	sym, err := s.DeclareAssign("acc", span(1))
	require.NoError(t, err)
	assert.Equal(t, DeclVar, sym.Kind)
}

func TestLookupPromotesOuterCellOnCapture(t *testing.T) {
	root := New("module")
	outer := root.NewChild("outer")
	sym, err := outer.Declare("n", DeclConst, span(1))
	require.NoError(t, err)
	assert.Equal(t, StorageLocalDirect, sym.Storage)

	inner := outer.NewChild("inner")
	got, level, ok := inner.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, 1, level)
	assert.Equal(t, StorageOuterCell, got.Storage)
	assert.Same(t, sym, got)
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	s := New("module")
	_, _, ok := s.Lookup("nope")
	assert.False(t, ok)
}

func TestLocalNamesPreservesDeclarationOrder(t *testing.T) {
	s := New("module")
	_, _ = s.Declare("b", DeclConst, span(1))
	_, _ = s.Declare("a", DeclConst, span(2))
	assert.Equal(t, []string{"b", "a"}, s.LocalNames())
}

func TestBuildFuncDeclaresParamsAndResolvesBody(t *testing.T) {
	root := New("module")
	fn := &ast.FuncDef{
		Name: "double",
		Params: []*ast.Param{
			{Name: "n", Span: span(1)},
		},
		Body: []ast.Stmt{
			&ast.Return{Value: &ast.BinOp{
				Op:    "+",
				Left:  &ast.Name{Value: "n", Span: span(2)},
				Right: &ast.Name{Value: "n", Span: span(2)},
				Span:  span(2),
			}, Span: span(2)},
		},
		Span: span(1),
	}

	s, err := BuildFunc(fn, root)
	require.NoError(t, err)

	sym, level, ok := s.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, 0, level)
	assert.Equal(t, StorageLocalDirect, sym.Storage)
}

func TestBuildFuncRejectsUnboundName(t *testing.T) {
	root := New("module")
	fn := &ast.FuncDef{
		Name: "bad",
		Body: []ast.Stmt{
			&ast.Return{Value: &ast.Name{Value: "ghost", Span: span(1)}, Span: span(1)},
		},
		Span: span(1),
	}

	_, err := BuildFunc(fn, root)
	require.Error(t, err)
	rep, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ScopeError, rep.Kind)
}

func TestBuildFuncLoopBodyDeclaresImplicitVar(t *testing.T) {
	root := New("module")
	fn := &ast.FuncDef{
		Name: "sum",
		Params: []*ast.Param{
			{Name: "xs", Span: span(1)},
		},
		Body: []ast.Stmt{
			&ast.For{
				Name: "x",
				Iter: &ast.Name{Value: "xs", Span: span(2)},
				Body: []ast.Stmt{
					&ast.Assign{
						Target: &ast.Name{Value: "acc", Span: span(3)},
						Value:  &ast.Name{Value: "x", Span: span(3)},
						Span:   span(3),
					},
				},
				Span: span(2),
			},
			&ast.Return{Value: &ast.Name{Value: "acc", Span: span(4)}, Span: span(4)},
		},
		Span: span(1),
	}

	s, err := BuildFunc(fn, root)
	require.NoError(t, err)

	sym, _, ok := s.Lookup("acc")
	require.True(t, ok)
	assert.Equal(t, DeclVar, sym.Kind)

	loopVar, _, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, DeclVar, loopVar.Kind)
}

func TestBuildModuleDeclaresFuncAndClassNames(t *testing.T) {
	mod := &ast.Module{
		Name: "m",
		Body: []ast.Stmt{
			&ast.FuncDef{Name: "f", Span: span(1)},
			&ast.ClassDef{Name: "Point", Decorator: ast.DecoratorStruct, Span: span(2)},
		},
		Span: span(1),
	}

	root, err := BuildModule(mod)
	require.NoError(t, err)

	_, _, ok := root.Lookup("f")
	assert.True(t, ok)
	_, _, ok = root.Lookup("Point")
	assert.True(t, ok)
}
