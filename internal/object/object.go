// Package object implements SPy's ObjVlisp value model: Object is the
// universal root, Type is simultaneously a subclass of Object and the
// metaclass of every type (including itself). It also carries the
// MetaArg abstraction the evaluator uses to reason about an
// expression's color and static type without necessarily having
// computed its value.
package object

// Object is the universal value type. Every value has an app-level
// Type reachable via SpyType.
type Object interface {
	SpyType() *Type
	String() string
}

// Key is the blue-cache's structural summary of an Object, produced by
// SpyKey. Primitives key to themselves, types to their FQN, and
// composite objects to their structural content, so that equal-value
// objects produce equal keys regardless of identity.
type Key string

// Keyer is implemented by every Object that can participate in blue
// cache keys. Nearly all concrete Objects in this package implement it;
// the separate interface lets callers that only need identity (not
// keying) depend on the smaller Object interface.
type Keyer interface {
	SpyKey() Key
}

// Color marks whether a value (or a function, or a MetaArg) is known
// at compile time (Blue) or only at run time (Red).
type Color int

const (
	Red Color = iota
	Blue
)

func (c Color) String() string {
	if c == Blue {
		return "blue"
	}
	return "red"
}

// StorageCategory says whether a Type's instances are copied by value
// or shared by reference.
type StorageCategory int

const (
	StorageValue StorageCategory = iota
	StorageReference
)
