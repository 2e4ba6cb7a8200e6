package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starbytesoftware/oclminify/internal/ast"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func bin(op ast.BinaryOp, l, r ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, Left: l, Right: r}
}

func printExprToString(e ast.Expr) string {
	p := New()
	p.printExpr(e, 16, false)
	return p.buf.String()
}

func TestPrintExprElidesParensForLeftAssociativeSamePrecedence(t *testing.T) {
	// a-b-c parses as (a-b)-c; the left operand never needs parens.
	e := bin(ast.BinSub, bin(ast.BinSub, ident("a"), ident("b")), ident("c"))
	assert.Equal(t, "a-b-c", printExprToString(e))
}

func TestPrintExprAddsParensForRightOperandTieBreak(t *testing.T) {
	// a-(b-c) is NOT the same as a-b-c, so the right operand needs parens.
	e := bin(ast.BinSub, ident("a"), bin(ast.BinSub, ident("b"), ident("c")))
	assert.Equal(t, "a-(b-c)", printExprToString(e))
}

func TestPrintExprElidesParensWhenMultiplicationNestsInsideAddition(t *testing.T) {
	// a+b*c: multiplicative binds tighter than additive, no parens needed.
	e := bin(ast.BinAdd, ident("a"), bin(ast.BinMul, ident("b"), ident("c")))
	assert.Equal(t, "a+b*c", printExprToString(e))
}

func TestPrintExprAddsParensWhenAdditionNestsInsideMultiplication(t *testing.T) {
	// (a+b)*c: additive is looser than multiplicative, parens required.
	e := bin(ast.BinMul, bin(ast.BinAdd, ident("a"), ident("b")), ident("c"))
	assert.Equal(t, "(a+b)*c", printExprToString(e))
}

func TestPrintStmtOrBlockOmitsBracesForSingleStatementBody(t *testing.T) {
	p := New()
	body := &ast.CompoundStmt{Stmts: []ast.Stmt{&ast.BreakStmt{}}}
	p.printStmtOrBlock(body)
	assert.Equal(t, "break;", p.buf.String())
}

func TestPrintStmtOrBlockKeepsBracesForMultiStatementBody(t *testing.T) {
	p := New()
	body := &ast.CompoundStmt{Stmts: []ast.Stmt{&ast.BreakStmt{}, &ast.ContinueStmt{}}}
	p.printStmtOrBlock(body)
	assert.Equal(t, "{break;continue;}", p.buf.String())
}

func TestPrintDeclGroupGroupsSameTypeDeclarators(t *testing.T) {
	intType := &ast.IdentifierType{Names: []string{"int"}}
	decls := []*ast.Decl{
		{Name: "a", Type: intType},
		{Name: "b", Type: intType, Init: &ast.IntLit{Text: "1"}},
		{Name: "c", Type: &ast.PtrType{Base: intType}},
	}
	p := New()
	p.printDeclGroup(decls)
	assert.Equal(t, "int a,b=1,*c;", p.buf.String())
}

func TestPragmaIsIsolatedOnItsOwnLine(t *testing.T) {
	f := &ast.File{Decls: []ast.ExtDecl{&ast.Pragma{Text: "OPENCL EXTENSION cl_khr_fp64 : enable"}}}
	out := Print(f)
	assert.Equal(t, "\n#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n", out)
}

func TestPrintFuncDefWithNoParamsWritesVoid(t *testing.T) {
	voidType := &ast.IdentifierType{Names: []string{"void"}}
	fn := &ast.FuncDef{
		Decl: &ast.Decl{
			Name: "f",
			Type: &ast.FuncDeclType{Return: voidType},
		},
		Body: &ast.CompoundStmt{},
	}
	f := &ast.File{Decls: []ast.ExtDecl{fn}}
	assert.Equal(t, "void f(void){}", Print(f))
}
