// Package redshift implements spec §4.4: the partial evaluator that
// turns a red ASTFunc into a residual twin whose blue-reducible
// subtrees are folded to FQNConst references, whose operator
// applications are direct calls to the already-resolved OpImpl, and
// whose name reads/writes are tagged with the storage slot the
// evaluator would otherwise look up afresh every time.
//
// Grounded on internal/frame's own evaluator: rather than a second,
// hand-written constant-folding walk, the redshifter runs the real
// Frame.EvalExpr against a scratch frame whose red parameters are left
// unassigned, and treats any "used before assignment" failure as the
// signal that a subtree depends on an unknown input rather than as a
// genuine error. Blue (compile-time) values are required by the
// language to come from pure computation, so re-running them here
// during analysis — rather than only during interpretation — cannot
// introduce an observable side effect.
package redshift

import (
	"fmt"
	"io"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/errors"
	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/frame"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/symtable"
)

// Mode selects how a redshift pass reacts to a function it cannot
// fully specialize (spec §4.4 "eager / lazy / warn").
type Mode int

const (
	// ModeEager stops at the first function that cannot be redshifted
	// and returns its error to the caller.
	ModeEager Mode = iota
	// ModeLazy reports the error to a Sink and leaves that function
	// un-redshifted, continuing with the rest of the worklist.
	ModeLazy
	// ModeWarn behaves like ModeLazy but additionally formats and
	// writes each diagnostic as it is reported.
	ModeWarn
)

func (m Mode) String() string {
	switch m {
	case ModeLazy:
		return "lazy"
	case ModeWarn:
		return "warn"
	default:
		return "eager"
	}
}

// Sink receives one error per function the redshifter could not
// finish, in Lazy/Warn mode.
type Sink interface {
	Report(err error)
}

// CollectSink accumulates every reported error for later inspection.
type CollectSink struct {
	Errs []error
}

func (s *CollectSink) Report(err error) { s.Errs = append(s.Errs, err) }

// WarnSink is a CollectSink that also writes a formatted line for
// every diagnostic as it arrives (spec §4.4 "warn, an alias of lazy
// with a formatter").
type WarnSink struct {
	CollectSink
	Format func(error) string
	Out    io.Writer
}

func (s *WarnSink) Report(err error) {
	s.CollectSink.Report(err)
	format := s.Format
	if format == nil {
		format = func(e error) string { return e.Error() }
	}
	out := s.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintln(out, format(err))
}

// redshifter holds the state of a single Redshift/RedshiftAll call.
type redshifter struct {
	rt     *frame.Runtime
	mode   Mode
	sink   Sink
	locals map[string]*object.Type

	// discovered accumulates any ASTFunc a fold step turned up as a
	// blue constant, feeding RedshiftAll's fixed-point worklist.
	discovered []*object.ASTFunc
}

// Redshift specializes fn into a residual twin, if it is not already
// redshifted and is neither blue nor generic/metafunc (those are
// already specialized by the VM's blue cache, per spec §4.4's skip
// conditions). A function the redshifter declines to handle — a
// nested closure, or one that failed in Lazy/Warn mode — is returned
// unchanged with Redshifted left false.
func Redshift(rt *frame.Runtime, fn *object.ASTFunc, mode Mode, sink Sink) (*object.ASTFunc, error) {
	if mode != ModeEager && sink == nil {
		sink = &CollectSink{}
	}
	r := &redshifter{rt: rt, mode: mode, sink: sink}
	return r.redshiftOne(fn)
}

// RedshiftAll drives spec §4.4's fixed-point loop over an explicit
// worklist of module-global functions, additionally redshifting any
// further ASTFunc the fold step discovers as a blue constant (e.g. a
// function passed around as a first-class value) until the worklist
// is exhausted.
func RedshiftAll(rt *frame.Runtime, fns []*object.ASTFunc, mode Mode, sink Sink) ([]*object.ASTFunc, error) {
	if mode != ModeEager && sink == nil {
		sink = &CollectSink{}
	}
	r := &redshifter{rt: rt, mode: mode, sink: sink}

	seen := make(map[*object.ASTFunc]bool)
	queue := append([]*object.ASTFunc(nil), fns...)
	out := make([]*object.ASTFunc, 0, len(fns))

	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		if seen[fn] {
			continue
		}
		seen[fn] = true

		twin, err := r.redshiftOne(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, twin)
		queue = append(queue, r.discovered...)
		r.discovered = nil
	}
	return out, nil
}

func (r *redshifter) redshiftOne(fn *object.ASTFunc) (*object.ASTFunc, error) {
	if fn.Redshifted {
		return fn.RedshiftedInto, nil
	}
	if fn.FuncT.Color == object.Blue || fn.FuncT.Kind != object.FuncPlain {
		return fn, nil
	}
	sym, ok := fn.Sym.(*symtable.SymTable)
	if !ok || sym == nil {
		return nil, errors.Wrap(errors.New(errors.StaticError,
			"function %s has no resolved symbol table to redshift against", fn.FQN.Render()))
	}
	if sym.Parent != nil && sym.Parent.Parent != nil {
		// A function nested inside another function: redshifting it
		// would require reconstructing its live lexical Frame chain,
		// which only exists once it has actually been called. Left
		// un-redshifted; RedshiftAll still visits it as an ordinary
		// (interpreted) ASTFunc.
		return fn, nil
	}

	moduleName := fn.FQN.Module
	scratch := frame.NewModuleFrame(r.rt, sym, moduleName)

	prevLocals := r.locals
	r.locals = make(map[string]*object.Type)
	for i, p := range fn.Def.Params {
		if i < len(fn.FuncT.Params) {
			r.locals[p.Name] = fn.FuncT.Params[i]
		}
	}

	body, err := r.rewriteBlock(fn.Def.Body, scratch, moduleName)
	locals := r.locals
	r.locals = prevLocals

	if err != nil {
		if r.mode == ModeEager {
			return nil, err
		}
		r.sink.Report(err)
		return fn, nil
	}

	twin := &object.ASTFunc{
		FQN: fn.FQN.Child("redshifted"),
		Def: &ast.FuncDef{
			Name:      fn.Def.Name,
			Params:    fn.Def.Params,
			ReturnT:   fn.Def.ReturnT,
			Body:      body,
			Decorator: fn.Def.Decorator,
			Span:      fn.Def.Span,
		},
		FuncT:        fn.FuncT,
		Closure:      fn.Closure,
		Sym:          fn.Sym,
		LocalsTypesW: locals,
	}
	fn.Redshifted = true
	fn.RedshiftedInto = twin
	return twin, nil
}

// fqnOf recovers the stable FQN identity of a callable Object, for
// building a residual FQNConst reference to it.
func fqnOf(obj object.Object) (fqn.FQN, bool) {
	switch fn := obj.(type) {
	case *object.BuiltinFunc:
		return fn.FQN, true
	case *object.ASTFunc:
		return fn.FQN, true
	default:
		return fqn.FQN{}, false
	}
}

// recordLocal is how rewriteStmt feeds locals_types_w as it discovers
// each local's declared/inferred type.
func (r *redshifter) recordLocal(name string, ty *object.Type) {
	if ty == nil {
		return
	}
	if r.locals == nil {
		r.locals = make(map[string]*object.Type)
	}
	if _, ok := r.locals[name]; !ok {
		r.locals[name] = ty
	}
}

// forgetLocals discards every scratch binding in f: used after an
// If/While/For whose body may or may not have run, so that later reads
// of a local the block might have reassigned are no longer folded to a
// stale blue value.
func (r *redshifter) forgetLocals(f *frame.Frame) {
	for k := range f.Vars {
		delete(f.Vars, k)
	}
}

