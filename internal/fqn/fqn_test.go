package fqn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBasic(t *testing.T) {
	tests := []struct {
		name string
		f    FQN
		want string
	}{
		{"bare symbol", New("mod", "a"), "mod::a"},
		{"nested symbol", New("mod", "a").Child("b").Child("c"), "mod::a::b::c"},
		{"qualified generic", Qualified("test", "add", New("core", "i32")), "test::add[core::i32]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Render())
		})
	}
}

func TestSymbolNeedsQuoting(t *testing.T) {
	f := New("mod", "operator::raise")
	rendered := f.Render()
	assert.Contains(t, rendered, "`")

	parsed, ok := Parse(rendered)
	require.True(t, ok)
	assert.True(t, Equal(f, parsed))
}

func TestRoundTrip(t *testing.T) {
	tests := []FQN{
		New("mod", "a"),
		New("mod", "a").Child("b"),
		Qualified("test", "add", New("core", "i32")),
		Qualified("test", "add", New("core", "i32"), New("core", "str")),
	}
	for _, f := range tests {
		t.Run(f.Render(), func(t *testing.T) {
			parsed, ok := Parse(f.Render())
			require.True(t, ok)
			assert.True(t, Equal(f, parsed), "round-trip mismatch: %s != %s", f.Render(), parsed.Render())
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{"", "mod::", "mod::a[", "mod::a]", "::"}
	for _, s := range bad {
		_, ok := Parse(s)
		assert.False(t, ok, "expected %q to fail to parse", s)
	}
}

func TestEqualUsesNormalizedRender(t *testing.T) {
	a := Qualified("test", "add", New("core", "i32"))
	b := Qualified("test", "add", New("core", "i32"))
	assert.True(t, Equal(a, b))

	c := Qualified("test", "add", New("core", "str"))
	assert.False(t, Equal(a, c))
}

func TestTableInternsByRender(t *testing.T) {
	table := NewTable()
	a := table.Intern(New("mod", "x"))
	b := table.Intern(New("mod", "x"))
	assert.Same(t, a, b)

	c := table.Intern(New("mod", "y"))
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, table.Len())

	found, ok := table.Lookup("mod::x")
	require.True(t, ok)
	assert.Same(t, a, found)
}
