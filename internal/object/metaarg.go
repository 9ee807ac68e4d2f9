package object

import (
	"fmt"

	"github.com/spy-lang/spy/internal/ast"
)

// MetaArg is the abstract value the evaluator uses everywhere it needs
// to reason about an expression without necessarily having computed
// it: color, static type, an optional concrete value, source location,
// and an optional originating symbol.
//
// Invariant: a Blue MetaArg always carries a concrete Value of its
// StaticT; construct blue args through NewBlueArg, which enforces this.
type MetaArg struct {
	ColorOf Color
	StaticT *Type
	Value   Object // required if ColorOf == Blue; may be nil if Red
	Loc     ast.Span

	// Sym optionally identifies the symtable.Symbol this arg originated
	// from (e.g. a Name read); interface{} to avoid an object<->symtable
	// import cycle.
	Sym interface{}
}

// NewBlueArg builds a blue MetaArg. It panics if value is nil, since a
// blue MetaArg without a value is an unrepresentable state the
// evaluator must never construct.
func NewBlueArg(t *Type, value Object, loc ast.Span) MetaArg {
	if value == nil {
		panic("object: NewBlueArg requires a non-nil value")
	}
	return MetaArg{ColorOf: Blue, StaticT: t, Value: value, Loc: loc}
}

// NewRedArg builds a red MetaArg, whose value may be populated during
// interpretation but is unknown during redshift.
func NewRedArg(t *Type, loc ast.Span) MetaArg {
	return MetaArg{ColorOf: Red, StaticT: t, Loc: loc}
}

// NewRedArgWithValue builds a red MetaArg carrying a concrete value,
// used during interpretation (as opposed to redshift, where the value
// field is left empty).
func NewRedArgWithValue(t *Type, value Object, loc ast.Span) MetaArg {
	return MetaArg{ColorOf: Red, StaticT: t, Value: value, Loc: loc}
}

func (m MetaArg) IsBlue() bool { return m.ColorOf == Blue }
func (m MetaArg) IsRed() bool  { return m.ColorOf == Red }

// SpyType reports MetaArgType (defined in type.go), letting a MetaArg
// flow as an Object wherever a metafunction expects its arguments.
func (m MetaArg) SpyType() *Type { return MetaArgType }

func (m MetaArg) String() string {
	if m.IsBlue() {
		return fmt.Sprintf("blue<%s>(%s)", m.StaticT.FQN.Render(), m.Value.String())
	}
	return fmt.Sprintf("red<%s>", m.StaticT.FQN.Render())
}

// SpyKey implements the blue cache key for a MetaArg:
// ("MetaArg", color, static-type key, blueval key).
func (m MetaArg) SpyKey() Key {
	valKey := Key("none")
	if m.Value != nil {
		if kz, ok := m.Value.(Keyer); ok {
			valKey = kz.SpyKey()
		} else {
			valKey = Key(m.Value.String())
		}
	}
	return Key(fmt.Sprintf("MetaArg:%s:%s:%s", m.ColorOf, m.StaticT.SpyKey(), valKey))
}
