// Package errors implements the tagged error-kind model of spec §7:
// every static or runtime failure is a Report carrying a Kind, a
// primary message, and an ordered list of source-annotated notes.
// Adapted from the teacher's internal/errors.Report, trimmed from a
// large per-phase error-code registry down to the fixed Kind taxonomy
// this evaluator actually raises.
package errors

// Kind is the primary error-kind symbol every Report carries.
type Kind string

const (
	TypeError         Kind = "W_TypeError"
	ScopeError        Kind = "W_ScopeError"
	ImportError       Kind = "W_ImportError"
	ParseError        Kind = "W_ParseError"
	ValueError        Kind = "W_ValueError"
	IndexError        Kind = "W_IndexError"
	KeyError          Kind = "W_KeyError"
	ZeroDivisionError Kind = "W_ZeroDivisionError"
	PanicError        Kind = "W_PanicError"
	StaticError       Kind = "W_StaticError"
	SPdbQuit          Kind = "W_SPdbQuit"
)
