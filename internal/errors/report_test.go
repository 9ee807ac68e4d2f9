package errors

import (
	"testing"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWrapUnwrap(t *testing.T) {
	r := New(ScopeError, "variable %q already declared", "x").
		Annotate(SeverityError, ast.Span{Start: ast.Pos{Line: 2}}, "new declaration here").
		Annotate(SeverityNote, ast.Span{Start: ast.Pos{Line: 1}}, "old declaration here")

	err := Wrap(r)
	require.Error(t, err)

	got, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ScopeError, got.Kind)
	assert.Len(t, got.Annotations, 2)
	assert.Contains(t, err.Error(), "already declared")
}

func TestSinkEagerAbortsImmediately(t *testing.T) {
	sink := NewSink(Eager)
	err := sink.Raise(New(TypeError, "boom"))
	assert.Error(t, err)
	assert.False(t, sink.HasErrors())
}

func TestSinkLazyAccumulates(t *testing.T) {
	sink := NewSink(Lazy)
	err := sink.Raise(New(TypeError, "boom"))
	assert.NoError(t, err)
	assert.True(t, sink.HasErrors())
	assert.Len(t, sink.Reports, 1)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("warn")
	require.NoError(t, err)
	assert.Equal(t, Warn, m)

	_, err = ParseMode("bogus")
	assert.Error(t, err)
}
