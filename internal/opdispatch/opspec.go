// Package opdispatch implements spec §4.3: operator lookup order,
// OpSpec/OpImpl, and the typechecker that turns a metafunction's answer
// into a concrete call plan (including implicit CONVERT insertion and
// pure-operator constant folding).
package opdispatch

import (
	"fmt"

	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
)

// OpSpecKind is the three-shape-plus-null sum type a metafunction
// returns: no implementation (Null), a direct call with identity
// argument order (Simple), a call needing an explicit argument
// permutation (Complex), or an already-known constant (Const).
type OpSpecKind int

const (
	OpSpecNull OpSpecKind = iota
	OpSpecSimple
	OpSpecComplex
	OpSpecConst
)

func (k OpSpecKind) String() string {
	switch k {
	case OpSpecSimple:
		return "simple"
	case OpSpecComplex:
		return "complex"
	case OpSpecConst:
		return "const"
	default:
		return "null"
	}
}

// OpSpec is what a metafunction returns when asked to resolve an
// operator application. It is itself an Object so it can be returned
// from a BuiltinFunc/ASTFunc's Body like any other value.
type OpSpec struct {
	Kind OpSpecKind
	Func object.Object // underlying callable for Simple/Complex
	Plan []int         // Complex: final-param index -> caller-arg index
	Const object.Object // Const: the already-known result
	Pure bool          // arithmetic/conversion/immutable-ctor: foldable when all args blue
}

// OpSpecType is the shared Type every OpSpec reports through SpyType.
var OpSpecType = object.NewType(fqn.New("core", "OpSpec"), object.ObjectType, object.PyClassObject, object.StorageValue)

func (s *OpSpec) SpyType() *object.Type { return OpSpecType }

func (s *OpSpec) String() string {
	return fmt.Sprintf("<OpSpec %s>", s.Kind)
}

// NullSpec signals that a type's metafunction declined to handle this
// operator; the caller falls back (e.g. from __OP__ to __rOP__) or
// reports a type error.
func NullSpec() *OpSpec { return &OpSpec{Kind: OpSpecNull} }

// SimpleSpec resolves the operator to fn, called with the caller's
// arguments in order.
func SimpleSpec(fn object.Object, pure bool) *OpSpec {
	return &OpSpec{Kind: OpSpecSimple, Func: fn, Pure: pure}
}

// ComplexSpec resolves the operator to fn, called with arguments
// reordered per plan (plan[i] is the caller-arg index feeding fn's
// i'th parameter).
func ComplexSpec(fn object.Object, plan []int, pure bool) *OpSpec {
	return &OpSpec{Kind: OpSpecComplex, Func: fn, Plan: plan, Pure: pure}
}

// ConstSpec resolves the operator immediately to a known value (e.g. a
// metafunction that can answer without a call at all).
func ConstSpec(val object.Object) *OpSpec {
	return &OpSpec{Kind: OpSpecConst, Const: val}
}
