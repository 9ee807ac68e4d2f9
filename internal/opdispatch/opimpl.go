package opdispatch

import "github.com/spy-lang/spy/internal/object"

// ArgKind discriminates one resolved argument slot in an OpImpl.
type ArgKind int

const (
	// ArgDirect reads the value straight from a caller argument.
	ArgDirect ArgKind = iota
	// ArgConst supplies a fixed value (from the OpSpec's plan).
	ArgConst
	// ArgConvert wraps a caller argument in a conversion call.
	ArgConvert
)

// ArgPlan is one parameter slot of an OpImpl's call.
type ArgPlan struct {
	Kind ArgKind

	// ArgDirect / ArgConvert: which caller-argument index supplies the
	// (possibly-to-be-converted) value.
	Index int

	// ArgConst: the fixed value to supply.
	Const object.Object

	// ArgConvert: the resolved conversion and the types it bridges.
	Inner *OpImpl
	ExpT  *object.Type
	GotT  *object.Type
}

// OpImpl is a fully typechecked, ready-to-invoke call plan: the
// callee's visible FuncType (as seen from the call site) plus, for
// each of its parameters, how to obtain the argument. A const OpImpl
// (ConstVal != nil) requires no call at all — the typechecker folded
// it because every input was blue and the operator is pure.
type OpImpl struct {
	FuncT    *object.FuncType
	Func     object.Object
	Args     []ArgPlan
	ConstVal object.Object
}

// IsConst reports whether this OpImpl was constant-folded.
func (impl *OpImpl) IsConst() bool { return impl.ConstVal != nil }
