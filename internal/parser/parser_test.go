package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/lexer"
	"github.com/spy-lang/spy/internal/parser"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New(src, "test.spy")
	p := parser.New(l, "test")
	mod := p.Parse()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	return mod
}

func TestParseVarDefWithTypeAndValue(t *testing.T) {
	mod := parse(t, "var x: i32 = 1 + 2\n")
	require.Len(t, mod.Body, 1)
	v, ok := mod.Body[0].(*ast.VarDef)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, ast.KindVar, v.Kind)
	ty, ok := v.Type.(*ast.NamedType)
	require.True(t, ok)
	assert.Equal(t, "i32", ty.Name)
	bin, ok := v.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseConstDef(t *testing.T) {
	mod := parse(t, "const pi: f64 = 3.14\n")
	v := mod.Body[0].(*ast.VarDef)
	assert.Equal(t, ast.KindConst, v.Kind)
}

func TestParseFuncDefWithParamsAndReturnType(t *testing.T) {
	mod := parse(t, "def add(a: i32, b: i32) -> i32:\n    return a + b\n")
	require.Len(t, mod.Body, 1)
	fn, ok := mod.Body[0].(*ast.FuncDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
	ret, ok := fn.ReturnT.(*ast.NamedType)
	require.True(t, ok)
	assert.Equal(t, "i32", ret.Name)
	require.Len(t, fn.Body, 1)
	_, ok = fn.Body[0].(*ast.Return)
	assert.True(t, ok)
}

func TestParseBlueDecorator(t *testing.T) {
	mod := parse(t, "@blue\ndef identity(x: i32) -> i32:\n    return x\n")
	fn := mod.Body[0].(*ast.FuncDef)
	assert.Equal(t, ast.DecoratorBlue, fn.Decorator)
}

func TestParseStructClassDef(t *testing.T) {
	mod := parse(t, "@struct\nclass Point:\n    x: i32\n    y: i32\n")
	cls, ok := mod.Body[0].(*ast.ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Point", cls.Name)
	assert.Equal(t, ast.DecoratorStruct, cls.Decorator)
	require.Len(t, cls.Fields, 2)
	assert.Equal(t, "x", cls.Fields[0].Name)
	assert.Equal(t, "y", cls.Fields[1].Name)
}

func TestParseIfElse(t *testing.T) {
	mod := parse(t, "if x == 1:\n    y = 1\nelse:\n    y = 2\n")
	ifStmt, ok := mod.Body[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Body, 1)
	require.Len(t, ifStmt.OrElse, 1)
	cmp, ok := ifStmt.Cond.(*ast.Compare)
	require.True(t, ok)
	assert.Equal(t, []string{"=="}, cmp.Ops)
}

func TestParseWhileLoop(t *testing.T) {
	mod := parse(t, "while i < 10:\n    i += 1\n")
	w, ok := mod.Body[0].(*ast.While)
	require.True(t, ok)
	require.Len(t, w.Body, 1)
	_, ok = w.Body[0].(*ast.AugAssign)
	assert.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	mod := parse(t, "for n in (1, 2, 3):\n    total = total + n\n")
	f, ok := mod.Body[0].(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "n", f.Name)
	_, ok = f.Iter.(*ast.TupleLit)
	assert.True(t, ok)
}

func TestParseUnpackAssign(t *testing.T) {
	mod := parse(t, "a, b = (1, 2)\n")
	u, ok := mod.Body[0].(*ast.UnpackAssign)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, u.Targets)
}

func TestParseCallIndexAttributeChain(t *testing.T) {
	mod := parse(t, "var r: i32 = items[0].value(1, 2)\n")
	v := mod.Body[0].(*ast.VarDef)
	call, ok := v.Value.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	attr, ok := call.Callee.(*ast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "value", attr.Name)
	idx, ok := attr.Target.(*ast.Index)
	require.True(t, ok)
	_, ok = idx.Target.(*ast.Name)
	assert.True(t, ok)
}

func TestParseBinOpPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3), not (1 + 2) * 3.
	mod := parse(t, "var r: i32 = 1 + 2 * 3\n")
	v := mod.Body[0].(*ast.VarDef)
	top, ok := v.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)
	_, ok = top.Left.(*ast.IntLit)
	require.True(t, ok)
	right, ok := top.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestParseUnaryMinus(t *testing.T) {
	mod := parse(t, "var r: i32 = -x\n")
	v := mod.Body[0].(*ast.VarDef)
	u, ok := v.Value.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, "-", u.Op)
}

func TestParseImportDeclaration(t *testing.T) {
	mod := parse(t, "import a.b.c\nvar x: i32 = 1\n")
	require.Len(t, mod.Imports, 1)
	assert.Equal(t, "a.b.c", mod.Imports[0].ModName)
	require.Len(t, mod.Body, 1)
}

func TestParseAssertWithMessage(t *testing.T) {
	mod := parse(t, "assert x > 0, \"must be positive\"\n")
	a, ok := mod.Body[0].(*ast.Assert)
	require.True(t, ok)
	require.NotNil(t, a.Msg)
	str, ok := a.Msg.(*ast.StrLit)
	require.True(t, ok)
	assert.Equal(t, "must be positive", str.Value)
}

func TestParseRaise(t *testing.T) {
	mod := parse(t, "raise ValueError(\"bad\")\n")
	r, ok := mod.Body[0].(*ast.Raise)
	require.True(t, ok)
	_, ok = r.Value.(*ast.Call)
	assert.True(t, ok)
}

func TestParseGenericApply(t *testing.T) {
	mod := parse(t, "var r: i32 = add[i32](1, 2)\n")
	v := mod.Body[0].(*ast.VarDef)
	call, ok := v.Value.(*ast.Call)
	require.True(t, ok)
	gen, ok := call.Callee.(*ast.GenericApply)
	require.True(t, ok)
	require.Len(t, gen.Args, 1)
	ty, ok := gen.Args[0].(*ast.NamedType)
	require.True(t, ok)
	assert.Equal(t, "i32", ty.Name)
}
