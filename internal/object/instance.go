package object

import (
	"fmt"
	"sort"
	"strings"
)

// Instance is a struct value: a Type (whose PyClass is PyClassStruct)
// plus its field values. Structs are reference-storage per spec's data
// model, so Instance is always handled through a pointer.
type Instance struct {
	Type   *Type
	Fields map[string]Object
}

// NewInstance builds an Instance of t with the given field values.
func NewInstance(t *Type, fields map[string]Object) *Instance {
	return &Instance{Type: t, Fields: fields}
}

func (i *Instance) SpyType() *Type { return i.Type }

func (i *Instance) String() string {
	names := make([]string, 0, len(i.Fields))
	for name := range i.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for idx, name := range names {
		parts[idx] = fmt.Sprintf("%s=%s", name, i.Fields[name].String())
	}
	return fmt.Sprintf("%s(%s)", i.Type.FQN.Render(), strings.Join(parts, ", "))
}

// SpyKey hashes an Instance structurally, by field name in sorted
// order, matching spec §4.1's "composite objects ... key to their
// structural content".
func (i *Instance) SpyKey() Key {
	names := make([]string, 0, len(i.Fields))
	for name := range i.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("instance:")
	b.WriteString(i.Type.FQN.Render())
	for _, name := range names {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		if kz, ok := i.Fields[name].(Keyer); ok {
			b.WriteString(string(kz.SpyKey()))
		} else {
			b.WriteString(i.Fields[name].String())
		}
	}
	return Key(b.String())
}

// GetField reads a field by name.
func (i *Instance) GetField(name string) (Object, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

// SetField writes a field by name; structs are mutable reference
// values (spec §3 data model).
func (i *Instance) SetField(name string, v Object) {
	i.Fields[name] = v
}
