package ast

import "github.com/spy-lang/spy/internal/fqn"

// ---------------------------------------------------------------------
// Residual nodes
//
// These are never produced by the parser; internal/redshift builds
// them in place of the surface-syntax nodes above once a subtree's
// value is known or a name's storage slot is resolved (spec §4.4).
// They live here, rather than in internal/redshift itself, because
// Stmt/Expr are closed interfaces (node/stmt/expr are unexported) —
// only types declared in this package can implement them.
// ---------------------------------------------------------------------

// FQNConst is a reference to a global already holding a computed
// value — the residual form of any blue-reducible subtree
// ("make_fqn_const").
type FQNConst struct {
	Const fqn.FQN
	Span  Span
}

func (c *FQNConst) Pos() Span { return c.Span }
func (*FQNConst) node()       {}
func (*FQNConst) expr()       {}

// NameLocalDirect is the residual form of a read of a name stored
// directly in the current frame (symtable.StorageLocalDirect).
type NameLocalDirect struct {
	Name string
	Span Span
}

func (n *NameLocalDirect) Pos() Span { return n.Span }
func (*NameLocalDirect) node()       {}
func (*NameLocalDirect) expr()       {}

// NameOuterCell is the residual form of a read of a name captured
// through Level enclosing frames (symtable.StorageOuterCell).
type NameOuterCell struct {
	Name  string
	Level int
	Span  Span
}

func (n *NameOuterCell) Pos() Span { return n.Span }
func (*NameOuterCell) node()       {}
func (*NameOuterCell) expr()       {}

// ResidualCall is the residual form of an operator application: a
// direct call to the resolved OpImpl's underlying function, its
// arguments already in final parameter order, with any implicit
// argument CONVERTs already applied (spec §4.4 "operator applications
// ... replaced by a direct Call").
type ResidualCall struct {
	Callee *FQNConst
	Args   []Expr
	Span   Span
}

func (c *ResidualCall) Pos() Span { return c.Span }
func (*ResidualCall) node()       {}
func (*ResidualCall) expr()       {}

// ConvertCall wraps an argument the typechecker could not pass as-is:
// Via names the conversion function, or is the zero FQN when the
// typechecker's plan was an identity conversion kept only for its
// recorded expected/got types (redshift still emits the wrapper so the
// residual tree records the static types that licensed the call).
type ConvertCall struct {
	Via   fqn.FQN
	ExpT  string
	GotT  string
	Value Expr
	Span  Span
}

func (c *ConvertCall) Pos() Span { return c.Span }
func (*ConvertCall) node()       {}
func (*ConvertCall) expr()       {}

// AssignCell is the residual form of a write to a name, naming
// exactly which storage slot receives the value ("w_assign_cell").
// Storage mirrors symtable.Storage's int values without importing
// that package (which itself imports ast, so the reverse import would
// be a cycle).
type AssignCell struct {
	Name    string
	Storage int
	Level   int
	Value   Expr
	Span    Span
}

func (a *AssignCell) Pos() Span { return a.Span }
func (*AssignCell) node()       {}
func (*AssignCell) stmt()       {}
