// Package vm implements the VM Kernel of spec §4.1: the global symbol
// table keyed by interned FQN, the blue-call memo cache, and the
// register_builtin_func/call/fast_call/fast_metacall/make_fqn_const
// contract. Its memoization shape is grounded on the teacher's
// link.Resolver double-checked-locking memo map.
package vm

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/opdispatch"
)

// VM holds the module/global registry and the blue-call cache for one
// running program.
type VM struct {
	Table *fqn.Table

	mu      sync.RWMutex
	globals map[string]object.Object // interned FQN render -> value
	irtags  map[string]string        // interned FQN render -> irtag, if any

	// registered records, per FQN, the identity fingerprint a
	// register_builtin_func call was made with, to support its
	// "equivalent re-registration succeeds silently" rule.
	registered map[string]regFingerprint

	blueMu    sync.Mutex
	blueCache map[string]object.Object // (func identity, arg keys) -> result

	anonCounter int
}

type regFingerprint struct {
	funcPtr uintptr
	closure string
}

// New creates an empty VM.
func New() *VM {
	return &VM{
		Table:      fqn.NewTable(),
		globals:    make(map[string]object.Object),
		irtags:     make(map[string]string),
		registered: make(map[string]regFingerprint),
		blueCache:  make(map[string]object.Object),
	}
}

// AddGlobal registers w_obj under f. It is an error for f to already
// be bound (spec §4.1 "fails if fqn already exists").
func (v *VM) AddGlobal(f fqn.FQN, obj object.Object, irtag string) error {
	key := f.Render()
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.globals[key]; ok {
		return errors.Wrap(errors.New(errors.ValueError, "global %s already defined", key))
	}
	v.Table.Intern(f)
	v.globals[key] = obj
	if irtag != "" {
		v.irtags[key] = irtag
	}
	return nil
}

// Reassign overwrites an already-bound global's value in place,
// without the add_global "must not already exist" check — used for
// `var` globals and loop-declared module-level names, which may be
// written more than once.
func (v *VM) Reassign(f fqn.FQN, obj object.Object) error {
	key := f.Render()
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.globals[key]; !ok {
		return errors.Wrap(errors.New(errors.ScopeError, "global %s is not yet defined", key))
	}
	v.globals[key] = obj
	return nil
}

// LookupGlobal returns the value bound to f, if any. Module lookups
// return the module object itself (the caller registers modules as
// ordinary globals under their own FQN, so no special case is needed
// here).
func (v *VM) LookupGlobal(f fqn.FQN) (object.Object, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	obj, ok := v.globals[f.Render()]
	return obj, ok
}

// MakeFQNConst returns an existing FQN registered for a value equal to
// w_val (by spy_key), or mints and registers a fresh one. Used when a
// blue expression's result must be referenced from residual (redshifted)
// code.
func (v *VM) MakeFQNConst(namespace string, val object.Object) fqn.FQN {
	key := spyKeyOf(val)

	v.mu.Lock()
	defer v.mu.Unlock()
	for render, existing := range v.globals {
		if spyKeyOf(existing) == key {
			if f, ok := v.Table.Lookup(render); ok {
				return *f
			}
		}
	}
	v.anonCounter++
	f := fqn.New(namespace, fmt.Sprintf("$const%d", v.anonCounter))
	v.Table.Intern(f)
	v.globals[f.Render()] = val
	return f
}

// RegisterBuiltinFunc registers a native Go function under a
// deterministic FQN derived from namespace/name/qualifiers. Calling it
// again with an equivalent body (same Go function pointer, same
// closed-over values) succeeds silently; a conflicting body fails
// (spec §4.1).
func (v *VM) RegisterBuiltinFunc(namespace, name string, qualifiers []fqn.FQN, color object.Color, kind object.FuncKind, funcT *object.FuncType, body object.Body, closed ...object.Object) (*object.BuiltinFunc, error) {
	f := fqn.Qualified(namespace, name, qualifiers...)
	key := f.Render()

	fp := reflect.ValueOf(body).Pointer()
	var closureKey strings.Builder
	for _, c := range closed {
		closureKey.WriteString(string(spyKeyOf(c)))
		closureKey.WriteByte(';')
	}
	fingerprint := regFingerprint{funcPtr: fp, closure: closureKey.String()}

	v.mu.Lock()
	defer v.mu.Unlock()

	if existing, ok := v.registered[key]; ok {
		if existing != fingerprint {
			return nil, errors.Wrap(errors.New(errors.ValueError,
				"builtin %s already registered with a different implementation", key))
		}
		return v.globals[key].(*object.BuiltinFunc), nil
	}

	bf := &object.BuiltinFunc{FQN: f, FuncT: funcT, Run: body}
	v.Table.Intern(f)
	v.globals[key] = bf
	v.registered[key] = fingerprint
	return bf, nil
}

// Call typechecks args against the callee's declared FuncType and
// invokes it, consulting the blue cache first when the callee is blue.
func (v *VM) Call(callee object.Object, args []object.Object) (object.Object, error) {
	funcT, err := funcTypeOf(callee)
	if err != nil {
		return nil, err
	}
	if len(args) != len(funcT.Params) {
		return nil, errors.Wrap(errors.New(errors.TypeError,
			"this function takes %d arguments but %d were supplied", len(funcT.Params), len(args)))
	}
	for i, a := range args {
		object.AssertType(a, funcT.Params[i])
	}
	return v.FastCall(callee, args)
}

// FastCall is Call without the argument-shape typecheck, used from
// internal paths that have already validated their arguments.
func (v *VM) FastCall(callee object.Object, args []object.Object) (object.Object, error) {
	funcT, err := funcTypeOf(callee)
	if err != nil {
		return nil, err
	}

	if funcT.Color == object.Blue {
		cacheKey := blueCacheKey(callee, args)
		v.blueMu.Lock()
		if cached, ok := v.blueCache[cacheKey]; ok {
			v.blueMu.Unlock()
			return cached, nil
		}
		v.blueMu.Unlock()

		result, err := v.invoke(callee, args)
		if err != nil {
			return nil, err
		}
		v.blueMu.Lock()
		v.blueCache[cacheKey] = result
		v.blueMu.Unlock()
		return result, nil
	}

	return v.invoke(callee, args)
}

// FastMetacall invokes a metafunc (always blue) with its MetaArg
// arguments wrapped as a single tuple-shaped call, per spec §4.1(iv).
func (v *VM) FastMetacall(metafunc object.Object, margs []object.MetaArg) (object.Object, error) {
	args := make([]object.Object, len(margs))
	for i, m := range margs {
		args[i] = m
	}
	return v.FastCall(metafunc, args)
}

func (v *VM) invoke(callee object.Object, args []object.Object) (object.Object, error) {
	switch fn := callee.(type) {
	case *object.BuiltinFunc:
		return fn.Run(args)
	default:
		return nil, errors.Wrap(errors.New(errors.TypeError,
			"%s is not directly callable by the VM kernel; ASTFunc bodies are driven by internal/frame", callee.String()))
	}
}

func funcTypeOf(callee object.Object) (*object.FuncType, error) {
	switch fn := callee.(type) {
	case *object.BuiltinFunc:
		return fn.FuncT, nil
	case *object.ASTFunc:
		return fn.FuncT, nil
	default:
		return nil, errors.Wrap(errors.New(errors.TypeError, "%s is not callable", callee.String()))
	}
}

func spyKeyOf(obj object.Object) object.Key {
	if obj == nil {
		return object.Key("nil")
	}
	if k, ok := obj.(object.Keyer); ok {
		return k.SpyKey()
	}
	return object.Key(obj.String())
}

func blueCacheKey(callee object.Object, args []object.Object) string {
	var b strings.Builder
	b.WriteString(string(spyKeyOf(callee)))
	for _, a := range args {
		b.WriteByte(':')
		b.WriteString(string(spyKeyOf(a)))
	}
	return b.String()
}

// CallMemoized runs exec (an arbitrary call driver) under the blue
// cache when blue is true, giving callers that cannot route through
// FastCall itself (internal/frame's ASTFunc execution) the same
// once-per-argument-key memoization BuiltinFunc calls get.
func (v *VM) CallMemoized(blue bool, callee object.Object, args []object.Object, exec func() (object.Object, error)) (object.Object, error) {
	if !blue {
		return exec()
	}
	key := blueCacheKey(callee, args)
	v.blueMu.Lock()
	if cached, ok := v.blueCache[key]; ok {
		v.blueMu.Unlock()
		return cached, nil
	}
	v.blueMu.Unlock()

	result, err := exec()
	if err != nil {
		return nil, err
	}
	v.blueMu.Lock()
	v.blueCache[key] = result
	v.blueMu.Unlock()
	return result, nil
}

// Eq, Ne, GetItem, and StrW are thin wrappers routing through
// internal/opdispatch, matching spec §4.1(vi); UniversalEq compares
// spy keys directly.
func (v *VM) Eq(a, b object.MetaArg) (object.MetaArg, error) {
	return opdispatch.Dispatch(v, opdispatch.OpEq, a, b)
}

func (v *VM) Ne(a, b object.MetaArg) (object.MetaArg, error) {
	return opdispatch.Dispatch(v, opdispatch.OpNe, a, b)
}

func (v *VM) GetItem(target, index object.MetaArg) (object.MetaArg, error) {
	return opdispatch.Dispatch(v, opdispatch.OpGetItem, target, index)
}

func (v *VM) StrW(a object.MetaArg) (object.MetaArg, error) {
	return opdispatch.Dispatch(v, opdispatch.OpStr, a)
}

func (v *VM) UniversalEq(a, b object.Object) bool {
	return spyKeyOf(a) == spyKeyOf(b)
}
