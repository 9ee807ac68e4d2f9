package object

import (
	"fmt"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/fqn"
)

// FuncKind distinguishes a plain callable from a generic (its result is
// another function, specialized by type arguments) or a metafunc (a
// blue function from MetaArgs to an OpSpec, see internal/opdispatch).
type FuncKind int

const (
	FuncPlain FuncKind = iota
	FuncGeneric
	FuncMetafunc
)

// FuncType describes a callable's signature: its parameter types,
// result type, color, and kind.
type FuncType struct {
	Params []*Type
	Result *Type
	Color  Color
	Kind   FuncKind
}

func (ft *FuncType) String() string {
	s := "("
	for i, p := range ft.Params {
		if i > 0 {
			s += ", "
		}
		s += p.FQN.Render()
	}
	res := "None"
	if ft.Result != nil {
		res = ft.Result.FQN.Render()
	}
	return fmt.Sprintf("%s -> %s", s+")", res)
}

// FuncObjType is the (single, shared) Type every callable Object
// reports through SpyType; dispatch on calls is keyed by PyClassFunc.
var FuncObjType = &Type{
	FQN:     fqn.New("core", "function"),
	Base:    ObjectType,
	Members: map[string]Object{},
	PyClass: PyClassFunc,
	Storage: StorageReference,
}

// Body is a native Go implementation of a BuiltinFunc.
type Body func(args []Object) (Object, error)

// BuiltinFunc is a native callable plus its declared FuncType.
type BuiltinFunc struct {
	FQN   fqn.FQN
	FuncT *FuncType
	Run   Body
}

func (b *BuiltinFunc) SpyType() *Type { return FuncObjType }
func (b *BuiltinFunc) String() string { return fmt.Sprintf("<builtin %s>", b.FQN.Render()) }
func (b *BuiltinFunc) SpyKey() Key    { return Key("builtin:" + b.FQN.Render()) }

// Cell is a closed-over mutable slot. Frames hold one Cell per bound
// name, and closures reach an enclosing function's Cells through
// its frame (ASTFunc.Closure is not filled by the evaluator); since
// the evaluator is single-
// threaded and cooperative (§5), no synchronization is needed.
type Cell struct {
	Value Object
}

func NewCell(v Object) *Cell { return &Cell{Value: v} }

// ASTFunc is a compiled SPy function: its funcdef AST, captured
// closure, resolved symbol table, and (once redshifted) its declared
// local types and a forward link to its typed twin.
//
// Sym holds a *symtable.SymTable but is typed as interface{} here to
// avoid an import cycle (symtable references object.Type for resolved
// declaration types); recover it with a type assertion,
// fn.Sym.(*symtable.SymTable).
type ASTFunc struct {
	FQN   fqn.FQN
	Def   *ast.FuncDef
	FuncT *FuncType

	Closure []*Cell
	Sym     interface{}

	// LocalsTypesW records each local variable's declared type; set by
	// the redshifter (locals_types_w).
	LocalsTypesW map[string]*Type

	Redshifted     bool
	RedshiftedInto *ASTFunc
}

func (f *ASTFunc) SpyType() *Type { return FuncObjType }
func (f *ASTFunc) String() string { return fmt.Sprintf("<function %s>", f.FQN.Render()) }
func (f *ASTFunc) SpyKey() Key    { return Key("astfunc:" + f.FQN.Render()) }
