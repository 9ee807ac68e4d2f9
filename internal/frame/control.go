package frame

import "github.com/spy-lang/spy/internal/object"

// signal is how a statement unwinds its enclosing block: normally
// (none), or via Break/Continue/Return (spec §4.2 "Break / Continue /
// Return unwind via signal").
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

type control struct {
	sig   signal
	value object.MetaArg
}

var none = control{sig: sigNone}
