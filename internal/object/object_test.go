package object

import (
	"testing"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTypeIsItsOwnMetaclass(t *testing.T) {
	assert.Same(t, TypeType, TypeType.SpyType())
	assert.Same(t, TypeType, ObjectType.SpyType())
}

func TestIsSubtype(t *testing.T) {
	assert.True(t, I32Type.IsSubtype(ObjectType))
	assert.True(t, I32Type.IsSubtype(I32Type))
	assert.False(t, I32Type.IsSubtype(StrType))
}

func TestListTypeOfIsCached(t *testing.T) {
	a := ListTypeOf(I32Type)
	b := ListTypeOf(I32Type)
	assert.Same(t, a, b)

	c := ListTypeOf(StrType)
	assert.NotSame(t, a, c)
}

func TestDictTypeOfIsCached(t *testing.T) {
	a := DictTypeOf(StrType, I32Type)
	b := DictTypeOf(StrType, I32Type)
	assert.Same(t, a, b)
}

func TestBoolOfReturnsSingletons(t *testing.T) {
	assert.Equal(t, True, BoolOf(true))
	assert.Equal(t, False, BoolOf(false))
}

func TestIntSpyKeyIncludesWidth(t *testing.T) {
	a := NewInt(I32, 1)
	b := NewInt(U32, 1)
	assert.NotEqual(t, a.SpyKey(), b.SpyKey())

	c := NewInt(I32, 1)
	assert.Equal(t, a.SpyKey(), c.SpyKey())
}

func TestListSpyKeyIsStructural(t *testing.T) {
	a := NewList(I32Type, NewInt(I32, 1), NewInt(I32, 2))
	b := NewList(I32Type, NewInt(I32, 1), NewInt(I32, 2))
	assert.Equal(t, a.SpyKey(), b.SpyKey())

	c := NewList(I32Type, NewInt(I32, 1), NewInt(I32, 3))
	assert.NotEqual(t, a.SpyKey(), c.SpyKey())
}

func TestDictGetSet(t *testing.T) {
	d := NewDict(StrType, I32Type)
	d.Set(Str{Value: "a"}, NewInt(I32, 1))
	d.Set(Str{Value: "b"}, NewInt(I32, 2))

	v, ok := d.Get(Str{Value: "a"})
	require.True(t, ok)
	assert.Equal(t, NewInt(I32, 1), v)

	_, ok = d.Get(Str{Value: "z"})
	assert.False(t, ok)
}

func TestMetaArgBlueRequiresValue(t *testing.T) {
	assert.Panics(t, func() {
		NewBlueArg(I32Type, nil, ast.Span{})
	})
}

func TestMetaArgSpyKeyDistinguishesColor(t *testing.T) {
	blue := NewBlueArg(I32Type, NewInt(I32, 1), ast.Span{})
	red := NewRedArgWithValue(I32Type, NewInt(I32, 1), ast.Span{})
	assert.NotEqual(t, blue.SpyKey(), red.SpyKey())
}
