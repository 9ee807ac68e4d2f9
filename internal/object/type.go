package object

import (
	"fmt"
	"sync"

	"github.com/spy-lang/spy/internal/fqn"
)

// PyClass discriminates a Type's interp-level category, driving
// dispatch decisions that don't belong in the app-level method dict
// (e.g. "is this the metaclass doing instance creation via __new__").
type PyClass string

const (
	PyClassObject PyClass = "object"
	PyClassType   PyClass = "type"
	PyClassVoid   PyClass = "void"
	PyClassBool   PyClass = "bool"
	PyClassInt    PyClass = "int"
	PyClassFloat  PyClass = "float"
	PyClassStr    PyClass = "str"
	PyClassTuple  PyClass = "tuple"
	PyClassList   PyClass = "list"
	PyClassDict   PyClass = "dict"
	PyClassFunc    PyClass = "func"
	PyClassStruct  PyClass = "struct"
	PyClassMetaArg PyClass = "metaarg"
)

// Type is both an ordinary Object (it has a Type, namely TypeType) and
// the metaclass of every type including itself. It carries an FQN, an
// optional base type, a dict of named members (methods, fields, class
// attrs — the home of a type's metafunctions, see internal/opdispatch),
// a PyClass discriminator, and a storage category.
type Type struct {
	FQN     fqn.FQN
	Base    *Type
	Members map[string]Object
	PyClass PyClass
	Storage StorageCategory
}

// NewType constructs a user-defined (non-primitive) Type, e.g. for a
// @struct class definition.
func NewType(f fqn.FQN, base *Type, pc PyClass, storage StorageCategory) *Type {
	return &Type{FQN: f, Base: base, Members: make(map[string]Object), PyClass: pc, Storage: storage}
}

// SpyType returns the metaclass of any Type, which is always TypeType
// — including for TypeType itself, closing the ObjVlisp loop.
func (t *Type) SpyType() *Type { return TypeType }

func (t *Type) String() string { return t.FQN.Render() }

func (t *Type) SpyKey() Key { return Key("type:" + t.FQN.Render()) }

// IsSubtype reports whether t is base, or a (possibly transitive)
// subtype of base — used by the typechecker's CONVERT identity check
// ("if got <: exp, the identity").
func (t *Type) IsSubtype(base *Type) bool {
	for cur := t; cur != nil; cur = cur.Base {
		if cur == base || fqn.Equal(cur.FQN, base.FQN) {
			return true
		}
	}
	return false
}

// GetMember looks up a member (method/field/class attr) on t, falling
// back through Base, mirroring §4.3's "static dict lookup" fallback
// for attribute access.
func (t *Type) GetMember(name string) (Object, bool) {
	for cur := t; cur != nil; cur = cur.Base {
		if v, ok := cur.Members[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Bootstrap roots: ObjectType is the universal base; TypeType is the
// metaclass, a subtype of ObjectType that is also its own metaclass.
var (
	ObjectType = &Type{
		FQN:     fqn.New("core", "object"),
		Members: make(map[string]Object),
		PyClass: PyClassObject,
		Storage: StorageReference,
	}
	TypeType = &Type{
		FQN:     fqn.New("core", "type"),
		Base:    ObjectType,
		Members: make(map[string]Object),
		PyClass: PyClassType,
		Storage: StorageReference,
	}
)

// MetaArgType is the shared Type reported by every MetaArg, letting it
// flow as an Object wherever a metafunction expects its arguments
// (spec §4.1(iv) fast_metacall, §4.3 operator dispatch).
var MetaArgType = &Type{
	FQN:     fqn.New("core", "MetaArg"),
	Base:    ObjectType,
	Members: make(map[string]Object),
	PyClass: PyClassMetaArg,
	Storage: StorageValue,
}

// genericFamily memoizes instantiations of a parametric type family
// (interp_list[T], interp_dict[K,V]) so that, e.g., two requests for
// list[i32] return the same *Type pointer — required by the blue cache
// and by generic-specialization FQN identity.
type genericFamily struct {
	mu    sync.Mutex
	cache map[string]*Type
}

func newGenericFamily() *genericFamily {
	return &genericFamily{cache: make(map[string]*Type)}
}

func (g *genericFamily) get(key string, build func() *Type) *Type {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.cache[key]; ok {
		return t
	}
	t := build()
	g.cache[key] = t
	return t
}

var listFamily = newGenericFamily()
var dictFamily = newGenericFamily()

// ListTypeOf returns the (cached, unique) Type for interp_list[elem].
func ListTypeOf(elem *Type) *Type {
	key := elem.FQN.Render()
	return listFamily.get(key, func() *Type {
		return NewType(fqn.Qualified("core", "interp_list", elem.FQN), ObjectType, PyClassList, StorageReference)
	})
}

// DictTypeOf returns the (cached, unique) Type for interp_dict[k,v].
func DictTypeOf(k, v *Type) *Type {
	key := k.FQN.Render() + "," + v.FQN.Render()
	return dictFamily.get(key, func() *Type {
		return NewType(fqn.Qualified("core", "interp_dict", k.FQN, v.FQN), ObjectType, PyClassDict, StorageReference)
	})
}

// AssertType panics with a descriptive message if v's Type isn't want
// or a subtype of it; used by VM/frame code paths that have already
// typechecked and so treat a mismatch as an internal invariant
// violation rather than a user-facing error.
func AssertType(v Object, want *Type) {
	if !v.SpyType().IsSubtype(want) {
		panic(fmt.Sprintf("object: expected %s, got %s", want.FQN.Render(), v.SpyType().FQN.Render()))
	}
}
