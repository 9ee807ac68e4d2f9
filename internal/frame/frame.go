// Package frame implements spec §4.2: the AST evaluator that drives
// one function or module body, producing MetaArgs for every
// expression and routing every syntactic operator through
// internal/opdispatch. Grounded on the teacher's tree-walking
// eval.CoreEvaluator (a single switch-driven Eval entrypoint over the
// node's dynamic kind, with a parent-chained Environment for scoping);
// here the switch is split into per-node-kind methods and the
// environment is internal/symtable's SymTable plus a parallel runtime
// cell store.
package frame

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/builtins"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/symtable"
	"github.com/spy-lang/spy/internal/vm"
)

// Runtime owns the VM and the defining-frame registry that closures
// need to resolve captured outer variables: when a FuncDef statement
// is evaluated, the currently-active Frame is recorded as that
// ASTFunc's defining frame so that, when it is later called, the call
// can build a child frame whose Parent is the right lexical scope.
type Runtime struct {
	VM        *vm.VM
	defFrames map[string]*Frame
}

func NewRuntime(v *vm.VM) *Runtime {
	builtins.Install()
	return &Runtime{VM: v, defFrames: make(map[string]*Frame)}
}

// Frame evaluates one function or module body: its own symbol table,
// a cell store for every local this frame itself declares, and a link
// to the lexically enclosing frame for outer reads.
type Frame struct {
	RT         *Runtime
	Sym        *symtable.SymTable
	Parent     *Frame
	Vars       map[string]*object.Cell
	ModuleName string
}

// NewModuleFrame creates the root frame for a module's top-level body.
func NewModuleFrame(rt *Runtime, sym *symtable.SymTable, moduleName string) *Frame {
	return &Frame{RT: rt, Sym: sym, Vars: make(map[string]*object.Cell), ModuleName: moduleName}
}

// NewChild creates a nested frame (a function call) whose Parent is f.
func (f *Frame) NewChild(sym *symtable.SymTable) *Frame {
	return &Frame{RT: f.RT, Sym: sym, Parent: f, Vars: make(map[string]*object.Cell), ModuleName: f.ModuleName}
}

// cellAt walks level Parent hops from f and returns that frame's cell
// for name, or nil if that frame holds no cell for name yet (callers
// treat nil as "not yet assigned" on read and create the cell on write).
func (f *Frame) cellAt(name string, level int) (*object.Cell, *Frame, error) {
	target := f
	for i := 0; i < level; i++ {
		if target.Parent == nil {
			return nil, nil, errors.Wrap(errors.New(errors.ScopeError, "internal: no enclosing frame for %q at level %d", name, level))
		}
		target = target.Parent
	}
	return target.Vars[name], target, nil
}

// readName resolves name through the symbol table and returns its
// current MetaArg: blue if its symbol is const and holds a concrete
// value, red otherwise (spec §4.2 "Expression evaluation").
func (f *Frame) readName(n *ast.Name) (object.MetaArg, error) {
	sym, level, ok := f.Sym.Lookup(n.Value)
	if !ok {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.ScopeError, "name %q is not defined", n.Value).
			Annotate(errors.SeverityError, n.Span, "used here"))
	}

	if sym.Storage == symtable.StorageGlobal {
		val, ok := f.RT.VM.LookupGlobal(fqn.New(f.ModuleName, n.Value))
		if !ok {
			return object.MetaArg{}, errors.Wrap(errors.New(errors.ScopeError, "global %q is not yet initialized", n.Value).
				Annotate(errors.SeverityError, n.Span, "read here"))
		}
		if sym.Kind == symtable.DeclConst {
			return object.NewBlueArg(val.SpyType(), val, n.Span), nil
		}
		return object.NewRedArgWithValue(val.SpyType(), val, n.Span), nil
	}

	cell, _, err := f.cellAt(n.Value, level)
	if err != nil {
		return object.MetaArg{}, err
	}
	if cell == nil || cell.Value == nil {
		return object.MetaArg{}, errors.Wrap(errors.New(errors.ScopeError, "name %q is used before assignment", n.Value).
			Annotate(errors.SeverityError, n.Span, "read here"))
	}
	if sym.Kind == symtable.DeclConst {
		return object.NewBlueArg(cell.Value.SpyType(), cell.Value, n.Span), nil
	}
	return object.NewRedArgWithValue(cell.Value.SpyType(), cell.Value, n.Span), nil
}

// assignName stores val under name, declaring a fresh cell in f (the
// frame owning name's scope) the first time it's written.
func (f *Frame) assignName(name string, loc ast.Span, val object.Object) error {
	sym, level, ok := f.Sym.Lookup(name)
	if !ok {
		return errors.Wrap(errors.New(errors.ScopeError, "name %q is not defined", name).
			Annotate(errors.SeverityError, loc, "assigned here"))
	}

	if sym.Storage == symtable.StorageGlobal {
		moduleFQN := fqn.New(f.ModuleName, name)
		if _, exists := f.RT.VM.LookupGlobal(moduleFQN); !exists {
			return f.RT.VM.AddGlobal(moduleFQN, val, "")
		}
		return f.RT.VM.Reassign(moduleFQN, val)
	}

	target := f
	for i := 0; i < level; i++ {
		target = target.Parent
	}
	if cell, ok := target.Vars[name]; ok {
		cell.Value = val
		return nil
	}
	target.Vars[name] = object.NewCell(val)
	return nil
}
