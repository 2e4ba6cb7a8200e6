package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starbytesoftware/oclminify/internal/ast"
)

func TestParseSimpleKernel(t *testing.T) {
	src := `__kernel void add(__global float* a, __global float* b, __global float* c) {
		int i = get_global_id(0);
		c[i] = a[i] + b[i];
	}`
	file, diags, err := Parse(src)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, file.Decls, 1)

	fn, ok := file.Decls[0].(*ast.FuncDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Decl.Name)
	assert.Contains(t, fn.Decl.Quals, "__kernel")

	ft, ok := fn.Decl.Type.(*ast.FuncDeclType)
	require.True(t, ok)
	require.Len(t, ft.Params, 3)
	assert.Equal(t, "a", ft.Params[0].Name)

	require.Len(t, fn.Body.Stmts, 2)
	_, ok = fn.Body.Stmts[0].(*ast.DeclStmt)
	assert.True(t, ok)
	_, ok = fn.Body.Stmts[1].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParseStructAndTypedef(t *testing.T) {
	src := `typedef struct Point { int x; int y; } Point;`
	file, diags, err := Parse(src)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, file.Decls, 1)

	td, ok := file.Decls[0].(*ast.Typedef)
	require.True(t, ok)
	assert.Equal(t, "Point", td.Name)

	st, ok := td.Type.(*ast.StructType)
	require.True(t, ok)
	assert.Equal(t, "Point", st.Tag)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "x", st.Fields[0].Name)
}

func TestParseControlFlowStatements(t *testing.T) {
	src := `void f() {
		for (int i = 0; i < 10; i++) {
			if (i == 5) { break; } else { continue; }
		}
		while (1) { }
		do { } while (0);
	}`
	file, _, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, file.Decls, 1)
	fn := file.Decls[0].(*ast.FuncDef)
	require.Len(t, fn.Body.Stmts, 3)

	_, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	assert.True(t, ok)
	_, ok = fn.Body.Stmts[1].(*ast.WhileStmt)
	assert.True(t, ok)
	_, ok = fn.Body.Stmts[2].(*ast.DoWhileStmt)
	assert.True(t, ok)
}

func TestParseBinaryExpressionPrecedence(t *testing.T) {
	src := `void f() { int r = 1 + 2 * 3; }`
	file, _, err := Parse(src)
	require.NoError(t, err)
	fn := file.Decls[0].(*ast.FuncDef)
	decl := fn.Body.Stmts[0].(*ast.DeclStmt).Decl.(*ast.Decl)
	add, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinAdd, add.Op)
	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinMul, mul.Op)
}

func TestParseCastVsParenthesizedExpr(t *testing.T) {
	src := `void f() { float x = (float)1; int y = (1 + 2); }`
	file, _, err := Parse(src)
	require.NoError(t, err)
	fn := file.Decls[0].(*ast.FuncDef)

	xDecl := fn.Body.Stmts[0].(*ast.DeclStmt).Decl.(*ast.Decl)
	_, ok := xDecl.Init.(*ast.CastExpr)
	assert.True(t, ok, "(float)1 should parse as a cast")

	yDecl := fn.Body.Stmts[1].(*ast.DeclStmt).Decl.(*ast.Decl)
	_, ok = yDecl.Init.(*ast.BinaryExpr)
	assert.True(t, ok, "(1 + 2) should parse as a parenthesized expression, not a cast")
}

func TestParsePragmaDoesNotConsumeFollowingDecl(t *testing.T) {
	src := "#pragma OPENCL EXTENSION cl_khr_fp64 : enable\nvoid f() {}"
	file, _, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, file.Decls, 2)
	_, ok := file.Decls[0].(*ast.Pragma)
	assert.True(t, ok)
	_, ok = file.Decls[1].(*ast.FuncDef)
	assert.True(t, ok)
}

func TestParseSwizzleAndStructRef(t *testing.T) {
	src := `void f() { float4 v; float a = v.xyz.x; }`
	file, _, err := Parse(src)
	require.NoError(t, err)
	fn := file.Decls[0].(*ast.FuncDef)
	decl := fn.Body.Stmts[1].(*ast.DeclStmt).Decl.(*ast.Decl)
	outer, ok := decl.Init.(*ast.StructRef)
	require.True(t, ok)
	assert.Equal(t, "x", outer.Field)
	inner, ok := outer.Base.(*ast.StructRef)
	require.True(t, ok)
	assert.Equal(t, "xyz", inner.Field)
}
