// Package symtable implements the two-pass scope analyzer of spec
// §4.2: a "declare" pass introduces symbols into a SymTable per
// function/class/module, and a "flatten" pass resolves each name use
// to its owning scope, classifying outer references by capture level.
// The parent-chain shape is grounded on the teacher's eval.Environment.
package symtable

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/object"
)

// DeclKind mirrors ast.VarKind but is the scope analyzer's own
// classification, since a name's effective kind can be inferred
// (implicit const-at-first-assignment, var-inside-a-loop) rather than
// only coming from an explicit `var`/`const` annotation.
type DeclKind int

const (
	DeclConst DeclKind = iota
	DeclVar
)

func (k DeclKind) String() string {
	if k == DeclVar {
		return "var"
	}
	return "const"
}

// Storage is how a resolved name is read/written by the frame
// evaluator and, later, by the redshifter's residual opcodes
// (NameLocalDirect / NameOuterCell / AssignCell).
type Storage int

const (
	StorageLocalDirect Storage = iota
	StorageOuterCell
	StorageGlobal
)

// Symbol is one declared name: its kind, storage, resolved type (once
// known), and declaration site.
type Symbol struct {
	Name    string
	Kind    DeclKind
	Storage Storage
	Type    *object.Type // nil until annotated or inferred
	DeclLoc ast.Span
}

// SymTable is one lexical scope: a function body, a class body, or a
// module's top level. Scopes nest via Parent, mirroring the teacher's
// Environment parent-chain.
type SymTable struct {
	OwnerName string
	Parent    *SymTable

	symbols map[string]*Symbol
	order   []string

	// InLoop is true while declaring names inside a While/For body,
	// where an unannotated first assignment declares a var instead of
	// a const (spec §4.2 "Name scoping").
	InLoop bool
}

// New creates a root (module-level) SymTable.
func New(ownerName string) *SymTable {
	return &SymTable{OwnerName: ownerName, symbols: make(map[string]*Symbol)}
}

// NewChild creates a nested SymTable (e.g. for a function body) whose
// unresolved names fall back to parent.
func (s *SymTable) NewChild(ownerName string) *SymTable {
	return &SymTable{OwnerName: ownerName, Parent: s, symbols: make(map[string]*Symbol)}
}

// Declare introduces name into this scope. It is an error to declare a
// name that this same scope already declares (spec scenario 5) or that
// shadows a name visible from an enclosing scope (spec §4.2 "shadowing
// an outer name is an error").
func (s *SymTable) Declare(name string, kind DeclKind, loc ast.Span) (*Symbol, error) {
	if existing, ok := s.symbols[name]; ok {
		rep := errors.New(errors.ScopeError, "variable %q already declared", name).
			Annotate(errors.SeverityError, loc, "new declaration here").
			Annotate(errors.SeverityNote, existing.DeclLoc, "old declaration here")
		return nil, errors.Wrap(rep)
	}
	if sym, _, found := s.lookupOuter(name); found {
		rep := errors.New(errors.ScopeError, "declaration of %q shadows an outer variable", name).
			Annotate(errors.SeverityError, loc, "shadowing declaration here").
			Annotate(errors.SeverityNote, sym.DeclLoc, "outer declaration here")
		return nil, errors.Wrap(rep)
	}
	sym := &Symbol{Name: name, Kind: kind, Storage: StorageLocalDirect, DeclLoc: loc}
	if s.Parent == nil {
		sym.Storage = StorageGlobal
	}
	s.symbols[name] = sym
	s.order = append(s.order, name)
	return sym, nil
}

// DeclareAssign implements the "assigning to a previously unannotated
// name declares a new const at scope entry, unless the assignment
// occurs within a loop body, where it declares a var" rule: if name is
// already declared in this scope it's a plain re-assignment (no
// error), otherwise it declares a fresh symbol with the loop-sensitive
// default kind.
func (s *SymTable) DeclareAssign(name string, loc ast.Span) (*Symbol, error) {
	if sym, ok := s.symbols[name]; ok {
		return sym, nil
	}
	kind := DeclConst
	if s.InLoop {
		kind = DeclVar
	}
	return s.Declare(name, kind, loc)
}

// lookupOuter searches only enclosing scopes (not s itself), returning
// the symbol, its capture level (1 = immediate parent), and whether it
// was found. Used by Declare's shadow check.
func (s *SymTable) lookupOuter(name string) (*Symbol, int, bool) {
	level := 1
	for p := s.Parent; p != nil; p = p.Parent {
		if sym, ok := p.symbols[name]; ok {
			return sym, level, true
		}
		level++
	}
	return nil, 0, false
}

// Lookup resolves name to the nearest enclosing scope that declares
// it, along with its capture level (0 = local to s, >0 = that many
// scopes outward). Names resolved at a non-zero level in a function
// scope get StorageOuterCell assigned on first capture, since they
// must be reached through a closure cell rather than a direct local
// slot; names owned by the module root keep StorageGlobal.
func (s *SymTable) Lookup(name string) (*Symbol, int, bool) {
	if sym, ok := s.symbols[name]; ok {
		return sym, 0, true
	}
	level := 1
	for p := s.Parent; p != nil; p = p.Parent {
		if sym, ok := p.symbols[name]; ok {
			if p.Parent != nil {
				sym.Storage = StorageOuterCell
			}
			return sym, level, true
		}
		level++
	}
	return nil, 0, false
}

// LocalNames returns this scope's declared names in declaration order.
func (s *SymTable) LocalNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
