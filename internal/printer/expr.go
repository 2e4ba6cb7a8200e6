package printer

import "github.com/starbytesoftware/oclminify/internal/ast"

// precedence mirrors generator.py's visit_BinaryOp table: lower numbers
// bind tighter. Multiplicative is 3, additive 4, shifts 5, relational
// 6, equality 7, bitwise-and 8, bitwise-xor 9, bitwise-or 10,
// logical-and 11, logical-or 12. Unary/postfix/primary expressions are
// treated as precedence 0 (never need parens around themselves), and a
// bare value passed to printExpr with a very high caller precedence
// (as in an initializer or return value) always prints unparenthesized.
func binaryPrecedence(op ast.BinaryOp) int {
	switch op {
	case ast.BinMul, ast.BinDiv, ast.BinMod:
		return 3
	case ast.BinAdd, ast.BinSub:
		return 4
	case ast.BinShl, ast.BinShr:
		return 5
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		return 6
	case ast.BinEq, ast.BinNe:
		return 7
	case ast.BinBitAnd:
		return 8
	case ast.BinBitXor:
		return 9
	case ast.BinBitOr:
		return 10
	case ast.BinLAnd:
		return 11
	case ast.BinLOr:
		return 12
	default:
		return 12
	}
}

func binaryOpString(op ast.BinaryOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinShl:
		return "<<"
	case ast.BinShr:
		return ">>"
	case ast.BinLt:
		return "<"
	case ast.BinLe:
		return "<="
	case ast.BinGt:
		return ">"
	case ast.BinGe:
		return ">="
	case ast.BinEq:
		return "=="
	case ast.BinNe:
		return "!="
	case ast.BinBitAnd:
		return "&"
	case ast.BinBitXor:
		return "^"
	case ast.BinBitOr:
		return "|"
	case ast.BinLAnd:
		return "&&"
	case ast.BinLOr:
		return "||"
	default:
		return "?"
	}
}

func assignOpString(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+="
	case ast.AssignSub:
		return "-="
	case ast.AssignMul:
		return "*="
	case ast.AssignDiv:
		return "/="
	case ast.AssignMod:
		return "%="
	case ast.AssignShl:
		return "<<="
	case ast.AssignShr:
		return ">>="
	case ast.AssignAnd:
		return "&="
	case ast.AssignXor:
		return "^="
	case ast.AssignOr:
		return "|="
	default:
		return "="
	}
}

// printExpr prints e, parenthesizing it when its own precedence is
// looser than parentPrec demands. isRightOperand follows generator.py's
// asymmetric rule: the right-hand operand of a binary expression needs
// parens when its precedence is greater-than-or-equal to the parent's
// (not just greater-than), since "a-(b-c)" and "a-b-c" are not
// equivalent while "(a-b)-c" and "a-b-c" are -- left-associativity
// means only the right side needs the tie broken in its favor.
func (p *Printer) printExpr(e ast.Expr, parentPrec int, isRightOperand bool) {
	switch n := e.(type) {
	case *ast.Ident:
		p.write(n.Name)
	case *ast.IntLit:
		p.write(n.Text)
	case *ast.FloatLit:
		p.write(n.Text)
	case *ast.StringLit:
		p.write(n.Text)
	case *ast.CharLit:
		p.write(n.Text)
	case *ast.ArrayRef:
		p.printExpr(n.Array, 1, false)
		p.write("[")
		p.printExpr(n.Index, 16, false)
		p.write("]")
	case *ast.StructRef:
		p.printExpr(n.Base, 1, false)
		if n.Arrow {
			p.write("->")
		} else {
			p.write(".")
		}
		p.write(n.Field)
	case *ast.FuncCall:
		p.printExpr(n.Name, 1, false)
		p.write("(")
		for i, a := range n.Args {
			if i > 0 {
				p.write(",")
			}
			p.printExpr(a, 16, false)
		}
		p.write(")")
	case *ast.UnaryExpr:
		p.printUnary(n)
	case *ast.BinaryExpr:
		p.printBinary(n, parentPrec, isRightOperand)
	case *ast.AssignExpr:
		needParens := parentPrec < 14
		if needParens {
			p.write("(")
		}
		p.printExpr(n.Left, 14, false)
		p.write(assignOpString(n.Op))
		p.printExpr(n.Right, 15, true)
		if needParens {
			p.write(")")
		}
	case *ast.TernaryExpr:
		needParens := parentPrec < 13
		if needParens {
			p.write("(")
		}
		p.printExpr(n.Cond, 12, false)
		p.write("?")
		p.printExpr(n.Then, 16, false)
		p.write(":")
		p.printExpr(n.Else, 13, true)
		if needParens {
			p.write(")")
		}
	case *ast.CastExpr:
		p.write("(")
		p.printTypeName(n.Type)
		p.write(")")
		p.printExpr(n.X, 1, false)
	case *ast.ExprList:
		for i, x := range n.Exprs {
			if i > 0 {
				p.write(",")
			}
			p.printExpr(x, 16, false)
		}
	case *ast.InitList:
		p.write("{")
		for i, x := range n.Exprs {
			if i > 0 {
				p.write(",")
			}
			p.printExpr(x, 16, false)
		}
		p.write("}")
	case *ast.SizeofExpr:
		p.write("sizeof(")
		if n.X != nil {
			p.printExpr(n.X, 16, false)
		} else {
			p.printTypeName(n.Type)
		}
		p.write(")")
	}
}

func (p *Printer) printBinary(n *ast.BinaryExpr, parentPrec int, isRightOperand bool) {
	prec := binaryPrecedence(n.Op)
	needParens := prec > parentPrec || (isRightOperand && prec >= parentPrec)
	if needParens {
		p.write("(")
	}
	p.printExpr(n.Left, prec, false)
	p.write(binaryOpString(n.Op))
	p.printExpr(n.Right, prec, true)
	if needParens {
		p.write(")")
	}
}

func (p *Printer) printUnary(n *ast.UnaryExpr) {
	switch n.Op {
	case ast.UnaryPostIncr:
		p.printExpr(n.X, 1, false)
		p.write("++")
	case ast.UnaryPostDecr:
		p.printExpr(n.X, 1, false)
		p.write("--")
	case ast.UnaryPreIncr:
		p.write("++")
		p.printExpr(n.X, 2, false)
	case ast.UnaryPreDecr:
		p.write("--")
		p.printExpr(n.X, 2, false)
	case ast.UnaryPlus:
		p.write("+")
		p.printExpr(n.X, 2, false)
	case ast.UnaryMinus:
		p.write("-")
		p.printExpr(n.X, 2, false)
	case ast.UnaryNot:
		p.write("!")
		p.printExpr(n.X, 2, false)
	case ast.UnaryBitNot:
		p.write("~")
		p.printExpr(n.X, 2, false)
	case ast.UnaryAddrOf:
		p.write("&")
		p.printExpr(n.X, 2, false)
	case ast.UnaryDeref:
		p.write("*")
		p.printExpr(n.X, 2, false)
	}
}
