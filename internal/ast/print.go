package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a Module back to SPy surface syntax. It is the `emit`
// half of the "parse(emit(module)) recovers the module structurally"
// round-trip property: Print output is not guaranteed to match the
// original source byte-for-byte, only to reparse to a structurally
// equal AST (Equal, ignoring Span).
func Print(m *Module) string {
	var b strings.Builder
	for _, imp := range m.Imports {
		fmt.Fprintf(&b, "import %s\n", imp.ModName)
	}
	for _, s := range m.Body {
		printStmt(&b, s, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
}

func printBlock(b *strings.Builder, body []Stmt, depth int) {
	if len(body) == 0 {
		indent(b, depth)
		b.WriteString("pass\n")
		return
	}
	for _, s := range body {
		printStmt(b, s, depth)
	}
}

func printStmt(b *strings.Builder, s Stmt, depth int) {
	switch n := s.(type) {
	case *FuncDef:
		if n.Decorator != DecoratorNone {
			indent(b, depth)
			fmt.Fprintf(b, "@%s\n", n.Decorator)
		}
		indent(b, depth)
		b.WriteString("def ")
		b.WriteString(n.Name)
		b.WriteString("(")
		for i, p := range n.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			if p.Type != nil {
				b.WriteString(": ")
				b.WriteString(printType(p.Type))
			}
		}
		b.WriteString(")")
		if n.ReturnT != nil {
			b.WriteString(" -> ")
			b.WriteString(printType(n.ReturnT))
		}
		b.WriteString(":\n")
		printBlock(b, n.Body, depth+1)
	case *ClassDef:
		if n.Decorator != DecoratorNone {
			indent(b, depth)
			fmt.Fprintf(b, "@%s\n", n.Decorator)
		}
		indent(b, depth)
		fmt.Fprintf(b, "class %s:\n", n.Name)
		for _, f := range n.Fields {
			indent(b, depth+1)
			fmt.Fprintf(b, "%s: %s\n", f.Name, printType(f.Type))
		}
	case *VarDef:
		indent(b, depth)
		kw := "var"
		if n.Kind == KindConst {
			kw = "const"
		}
		b.WriteString(kw)
		b.WriteString(" ")
		b.WriteString(n.Name)
		if n.Type != nil {
			b.WriteString(": ")
			b.WriteString(printType(n.Type))
		}
		b.WriteString(" = ")
		b.WriteString(printExpr(n.Value))
		b.WriteString("\n")
	case *Assign:
		indent(b, depth)
		fmt.Fprintf(b, "%s = %s\n", printExpr(n.Target), printExpr(n.Value))
	case *UnpackAssign:
		indent(b, depth)
		fmt.Fprintf(b, "%s = %s\n", strings.Join(n.Targets, ", "), printExpr(n.Value))
	case *AugAssign:
		indent(b, depth)
		fmt.Fprintf(b, "%s %s= %s\n", printExpr(n.Target), n.Op, printExpr(n.Value))
	case *If:
		indent(b, depth)
		fmt.Fprintf(b, "if %s:\n", printExpr(n.Cond))
		printBlock(b, n.Body, depth+1)
		if len(n.OrElse) > 0 {
			indent(b, depth)
			b.WriteString("else:\n")
			printBlock(b, n.OrElse, depth+1)
		}
	case *While:
		indent(b, depth)
		fmt.Fprintf(b, "while %s:\n", printExpr(n.Cond))
		printBlock(b, n.Body, depth+1)
	case *For:
		indent(b, depth)
		fmt.Fprintf(b, "for %s in %s:\n", n.Name, printExpr(n.Iter))
		printBlock(b, n.Body, depth+1)
	case *Break:
		indent(b, depth)
		b.WriteString("break\n")
	case *Continue:
		indent(b, depth)
		b.WriteString("continue\n")
	case *Return:
		indent(b, depth)
		if n.Value == nil {
			b.WriteString("return\n")
		} else {
			fmt.Fprintf(b, "return %s\n", printExpr(n.Value))
		}
	case *Raise:
		indent(b, depth)
		fmt.Fprintf(b, "raise %s\n", printExpr(n.Value))
	case *Assert:
		indent(b, depth)
		if n.Msg != nil {
			fmt.Fprintf(b, "assert %s, %s\n", printExpr(n.Cond), printExpr(n.Msg))
		} else {
			fmt.Fprintf(b, "assert %s\n", printExpr(n.Cond))
		}
	case *StmtExpr:
		indent(b, depth)
		fmt.Fprintf(b, "%s\n", printExpr(n.Value))
	case *AssignCell:
		indent(b, depth)
		fmt.Fprintf(b, "$cell(%s) = %s\n", n.Name, printExpr(n.Value))
	default:
		indent(b, depth)
		fmt.Fprintf(b, "<?unknown stmt %T>\n", s)
	}
}

func printExpr(e Expr) string {
	switch n := e.(type) {
	case *Name:
		return n.Value
	case *IntLit:
		return strconv.FormatInt(n.Value, 10)
	case *FloatLit:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *StrLit:
		return strconv.Quote(n.Value)
	case *BoolLit:
		if n.Value {
			return "True"
		}
		return "False"
	case *NoneLit:
		return "None"
	case *TupleLit:
		parts := make([]string, len(n.Elts))
		for i, e := range n.Elts {
			parts[i] = printExpr(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", printExpr(n.Left), n.Op, printExpr(n.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s%s)", n.Op, printExpr(n.Operand))
	case *Compare:
		var b strings.Builder
		b.WriteString(printExpr(n.Left))
		for i, op := range n.Ops {
			fmt.Fprintf(&b, " %s %s", op, printExpr(n.Comps[i]))
		}
		return b.String()
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printExpr(a)
		}
		return fmt.Sprintf("%s(%s)", printExpr(n.Callee), strings.Join(args, ", "))
	case *Index:
		return fmt.Sprintf("%s[%s]", printExpr(n.Target), printExpr(n.Index))
	case *Attribute:
		return fmt.Sprintf("%s.%s", printExpr(n.Target), n.Name)
	case *GenericApply:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printType(a)
		}
		return fmt.Sprintf("%s[%s]", printExpr(n.Callee), strings.Join(args, ", "))
	case *FQNConst:
		return fmt.Sprintf("$const(%s)", n.Const.Render())
	case *NameLocalDirect:
		return "$local(" + n.Name + ")"
	case *NameOuterCell:
		return fmt.Sprintf("$cell(%s,%d)", n.Name, n.Level)
	case *ResidualCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printExpr(a)
		}
		return fmt.Sprintf("%s(%s)", printExpr(n.Callee), strings.Join(args, ", "))
	case *ConvertCall:
		return fmt.Sprintf("$convert<%s<-%s>(%s)", n.ExpT, n.GotT, printExpr(n.Value))
	default:
		return fmt.Sprintf("<?unknown expr %T>", e)
	}
}

func printType(t TypeExpr) string {
	switch n := t.(type) {
	case *NamedType:
		return n.Name
	case *GenericType:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printType(a)
		}
		return fmt.Sprintf("%s[%s]", n.Name, strings.Join(args, ", "))
	default:
		return "<?unknown type>"
	}
}
