package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/frame"
	"github.com/spy-lang/spy/internal/lexer"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/parser"
	"github.com/spy-lang/spy/internal/symtable"
	"github.com/spy-lang/spy/internal/vm"
)

// run parses src as a module named "test", builds its symbol table,
// and executes its top-level body against a fresh VM, returning the
// module frame (for inspecting globals) and the VM.
func run(t *testing.T, src string) (*frame.Frame, *vm.VM) {
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

	return modFrame, v
}

func global(t *testing.T, v *vm.VM, name string) object.Object {
	t.Helper()
	val, ok := v.LookupGlobal(fqn.New("test", name))
	require.True(t, ok, "global %q not set", name)
	return val
}

func TestVarDefAndAssignReassignsGlobal(t *testing.T) {
	_, v := run(t, "var x: i32 = 1\nx = x + 1\n")
	i, ok := global(t, v, "x").(object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(2), i.Value)
}

func TestUnpackAssign(t *testing.T) {
	_, v := run(t, "var a: i32 = 0\nvar b: i32 = 0\na, b = (1, 2)\n")
	a := global(t, v, "a").(object.Int)
	b := global(t, v, "b").(object.Int)
	assert.Equal(t, int64(1), a.Value)
	assert.Equal(t, int64(2), b.Value)
}

func TestAugAssign(t *testing.T) {
	_, v := run(t, "var total: i32 = 10\ntotal += 5\n")
	total := global(t, v, "total").(object.Int)
	assert.Equal(t, int64(15), total.Value)
}

func TestIfElseTakesTrueBranch(t *testing.T) {
	_, v := run(t, "var x: i32 = 0\nif x == 0:\n    x = 10\nelse:\n    x = 20\n")
	x := global(t, v, "x").(object.Int)
	assert.Equal(t, int64(10), x.Value)
}

func TestIfElseTakesFalseBranch(t *testing.T) {
	_, v := run(t, "var x: i32 = 1\nif x == 0:\n    x = 10\nelse:\n    x = 20\n")
	x := global(t, v, "x").(object.Int)
	assert.Equal(t, int64(20), x.Value)
}

func TestWhileLoopWithBreak(t *testing.T) {
	src := "var i: i32 = 0\n" +
		"var sum: i32 = 0\n" +
		"while i < 5:\n" +
		"    if i == 3:\n" +
		"        break\n" +
		"    sum = sum + i\n" +
		"    i = i + 1\n"
	_, v := run(t, src)
	sum := global(t, v, "sum").(object.Int)
	assert.Equal(t, int64(3), sum.Value) // 0 + 1 + 2, breaks before adding 3
}

func TestForLoopOverTupleWithContinue(t *testing.T) {
	src := "var total: i32 = 0\n" +
		"for n in (1, 2, 3):\n" +
		"    if n == 2:\n" +
		"        continue\n" +
		"    total = total + n\n"
	_, v := run(t, src)
	total := global(t, v, "total").(object.Int)
	assert.Equal(t, int64(4), total.Value) // 1 + 3, 2 skipped
}

func TestReturnPropagatesOutOfLoop(t *testing.T) {
	src := "def first_even(n: i32) -> i32:\n" +
		"    var i: i32 = 1\n" +
		"    while i < n:\n" +
		"        if i % 2 == 0:\n" +
		"            return i\n" +
		"        i = i + 1\n" +
		"    return -1\n" +
		"var r: i32 = first_even(7)\n"
	_, v := run(t, src)
	r := global(t, v, "r").(object.Int)
	assert.Equal(t, int64(2), r.Value)
}

func TestFuncDefAndCall(t *testing.T) {
	src := "def add(a: i32, b: i32) -> i32:\n" +
		"    return a + b\n" +
		"var r: i32 = add(2, 3)\n"
	_, v := run(t, src)
	r := global(t, v, "r").(object.Int)
	assert.Equal(t, int64(5), r.Value)
}

func TestFuncDefRecursion(t *testing.T) {
	src := "def fact(n: i32) -> i32:\n" +
		"    if n == 0:\n" +
		"        return 1\n" +
		"    return n * fact(n - 1)\n" +
		"var r: i32 = fact(5)\n"
	_, v := run(t, src)
	r := global(t, v, "r").(object.Int)
	assert.Equal(t, int64(120), r.Value)
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := "def make_adder(n: i32) -> i32:\n" +
		"    def add_n(x: i32) -> i32:\n" +
		"        return x + n\n" +
		"    return add_n(10)\n" +
		"var r: i32 = make_adder(5)\n"
	_, v := run(t, src)
	r := global(t, v, "r").(object.Int)
	assert.Equal(t, int64(15), r.Value)
}

func TestClassDefConstructAndReadField(t *testing.T) {
	src := "@struct\n" +
		"class Point:\n" +
		"    x: i32\n" +
		"    y: i32\n" +
		"var p: Point = Point(1, 2)\n" +
		"var px: i32 = p.x\n"
	_, v := run(t, src)
	px := global(t, v, "px").(object.Int)
	assert.Equal(t, int64(1), px.Value)

	p := global(t, v, "p").(*object.Instance)
	field, ok := p.GetField("y")
	require.True(t, ok)
	assert.Equal(t, int64(2), field.(object.Int).Value)
}

func TestClassDefFieldAssignment(t *testing.T) {
	src := "@struct\n" +
		"class Point:\n" +
		"    x: i32\n" +
		"    y: i32\n" +
		"var p: Point = Point(1, 2)\n" +
		"p.x = 99\n"
	_, v := run(t, src)
	p := global(t, v, "p").(*object.Instance)
	field, ok := p.GetField("x")
	require.True(t, ok)
	assert.Equal(t, int64(99), field.(object.Int).Value)
}

func TestAssertFailureReportsValueError(t *testing.T) {
	l := lexer.New("assert False, \"boom\"\n", "test.spy")
	p := parser.New(l, "test")
	mod := p.Parse()
	require.Empty(t, p.Errors())

	sym, err := symtable.BuildModule(mod)
	require.NoError(t, err)

	v := vm.New()
	rt := frame.NewRuntime(v)
	modFrame := frame.NewModuleFrame(rt, sym, "test")

	_, err = modFrame.ExecBlock(mod.Body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestScopeErrorOnUnboundNameDuringBuild(t *testing.T) {
	l := lexer.New("var x: i32 = y\n", "test.spy")
	p := parser.New(l, "test")
	mod := p.Parse()
	require.Empty(t, p.Errors())

	_, err := symtable.BuildModule(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "y")
}
