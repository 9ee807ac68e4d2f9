package redshift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/frame"
	"github.com/spy-lang/spy/internal/lexer"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/parser"
	"github.com/spy-lang/spy/internal/redshift"
	"github.com/spy-lang/spy/internal/symtable"
	"github.com/spy-lang/spy/internal/vm"
)

// run parses and executes src as module "test", returning the runtime
// and VM so a caller can pull out declared functions as globals.
func run(t *testing.T, src string) (*frame.Runtime, *vm.VM) {
	t.Helper()
	l := lexer.New(src, "test.spy")
	p := parser.New(l, "test")
	mod := p.Parse()
	require.Empty(t, p.Errors(), "parse errors")

	sym, err := symtable.BuildModule(mod)
	require.NoError(t, err)

	v := vm.New()
	rt := frame.NewRuntime(v)
	modFrame := frame.NewModuleFrame(rt, sym, "test")
	_, err = modFrame.ExecBlock(mod.Body)
	require.NoError(t, err)

	return rt, v
}

func astFunc(t *testing.T, v *vm.VM, name string) *object.ASTFunc {
	t.Helper()
	g, ok := v.LookupGlobal(fqn.New("test", name))
	require.True(t, ok, "global %q not set", name)
	fn, ok := g.(*object.ASTFunc)
	require.True(t, ok, "global %q is not a function", name)
	return fn
}

func TestRedshiftFoldsPureArithmeticToConst(t *testing.T) {
	src := "def add_one(x: i32) -> i32:\n" +
		"    return x + (1 + 1)\n"
	rt, v := run(t, src)
	fn := astFunc(t, v, "add_one")

	twin, err := redshift.Redshift(rt, fn, redshift.ModeEager, nil)
	require.NoError(t, err)
	assert.True(t, fn.Redshifted)
	assert.Same(t, twin, fn.RedshiftedInto)

	require.Len(t, twin.Def.Body, 1)
	ret, ok := twin.Def.Body[0].(*ast.Return)
	require.True(t, ok)
	// "1 + 1" is a pure blue subtree and folds to a single FQNConst
	// added to "x"; the residual is a ResidualCall over x and a const,
	// not a BinOp tree with two literal operands.
	call, ok := ret.Value.(*ast.ResidualCall)
	require.True(t, ok, "expected a residual call, got %T", ret.Value)
	assert.Len(t, call.Args, 2)
}

func TestRedshiftIsIdempotent(t *testing.T) {
	src := "def square(x: i32) -> i32:\n" +
		"    return x * x\n"
	rt, v := run(t, src)
	fn := astFunc(t, v, "square")

	first, err := redshift.Redshift(rt, fn, redshift.ModeEager, nil)
	require.NoError(t, err)

	second, err := redshift.Redshift(rt, fn, redshift.ModeEager, nil)
	require.NoError(t, err)
	assert.Same(t, first, second, "redshifting an already-redshifted function returns the cached twin")
}

func TestRedshiftSkipsBlueFunction(t *testing.T) {
	src := "@blue\n" +
		"def identity(x: i32) -> i32:\n" +
		"    return x\n"
	rt, v := run(t, src)
	fn := astFunc(t, v, "identity")

	twin, err := redshift.Redshift(rt, fn, redshift.ModeEager, nil)
	require.NoError(t, err)
	assert.False(t, fn.Redshifted)
	assert.Same(t, fn, twin)
}

func TestRedshiftAllVisitsEveryFunctionOnce(t *testing.T) {
	src := "def inc(x: i32) -> i32:\n" +
		"    return x + 1\n" +
		"def dec(x: i32) -> i32:\n" +
		"    return x - 1\n"
	rt, v := run(t, src)
	inc := astFunc(t, v, "inc")
	dec := astFunc(t, v, "dec")

	twins, err := redshift.RedshiftAll(rt, []*object.ASTFunc{inc, dec}, redshift.ModeEager, nil)
	require.NoError(t, err)
	require.Len(t, twins, 2)
	assert.True(t, inc.Redshifted)
	assert.True(t, dec.Redshifted)
}

func TestRedshiftLazyModeAcceptsFunctionWithNestedDef(t *testing.T) {
	src := "def outer(n: i32) -> i32:\n" +
		"    def inner(x: i32) -> i32:\n" +
		"        return x + n\n" +
		"    return inner(n)\n"
	rt, v := run(t, src)
	outer := astFunc(t, v, "outer")

	sink := &redshift.CollectSink{}
	twin, err := redshift.Redshift(rt, outer, redshift.ModeLazy, sink)
	require.NoError(t, err)
	require.NotNil(t, twin)
}
