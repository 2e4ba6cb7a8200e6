package rewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starbytesoftware/oclminify/internal/ast"
)

func intType() *ast.IdentifierType  { return &ast.IdentifierType{Names: []string{"int"}} }
func voidType() *ast.IdentifierType { return &ast.IdentifierType{Names: []string{"void"}} }

func TestRewriteFuncDefRenamesNonKernelFunction(t *testing.T) {
	fn := &ast.FuncDef{
		Decl: &ast.Decl{
			Name: "helper",
			Type: &ast.FuncDeclType{Return: voidType()},
		},
		Body: &ast.CompoundStmt{},
	}
	file := &ast.File{Decls: []ast.ExtDecl{fn}}

	r := New(Options{RenameKernels: true}, "")
	result, err := r.Rewrite(file)
	require.NoError(t, err)

	assert.Equal(t, "a", fn.Decl.Name)
	assert.Empty(t, result.KernelNames)
	assert.Equal(t, "a", result.Functions["helper"].Name)
}

func TestRewriteFuncDefKeepsKernelNameWhenRenameKernelsDisabled(t *testing.T) {
	fn := &ast.FuncDef{
		Decl: &ast.Decl{
			Name:  "compute",
			Quals: []string{"__kernel"},
			Type:  &ast.FuncDeclType{Return: voidType()},
		},
		Body: &ast.CompoundStmt{},
	}
	file := &ast.File{Decls: []ast.ExtDecl{fn}}

	r := New(Options{RenameKernels: false}, "")
	result, err := r.Rewrite(file)
	require.NoError(t, err)

	assert.Equal(t, "compute", fn.Decl.Name)
	assert.Equal(t, []string{"compute"}, result.KernelNames)
}

func TestGlobalPostfixForcesRenameKernelsOn(t *testing.T) {
	fn := &ast.FuncDef{
		Decl: &ast.Decl{
			Name:  "compute",
			Quals: []string{"__kernel"},
			Type:  &ast.FuncDeclType{Return: voidType()},
		},
		Body: &ast.CompoundStmt{},
	}
	file := &ast.File{Decls: []ast.ExtDecl{fn}}

	r := New(Options{RenameKernels: false, GlobalPostfix: "_x"}, "")
	result, err := r.Rewrite(file)
	require.NoError(t, err)

	assert.NotEqual(t, "compute", fn.Decl.Name)
	assert.Contains(t, fn.Decl.Name, "_x")
	assert.Equal(t, []string{fn.Decl.Name}, result.KernelNames)
}

func TestRewriteDeclCanonicalizesUnsignedLongSpelling(t *testing.T) {
	decl := &ast.Decl{
		Name: "x",
		Type: &ast.IdentifierType{Names: []string{"unsigned", "long"}},
	}
	file := &ast.File{Decls: []ast.ExtDecl{decl}}

	r := New(Options{}, "")
	_, err := r.Rewrite(file)
	require.NoError(t, err)

	assert.Equal(t, []string{"ulong"}, decl.Type.(*ast.IdentifierType).Names)
}

func TestKeepNamesPreventsRenaming(t *testing.T) {
	fn := &ast.FuncDef{
		Decl: &ast.Decl{
			Name:  "kernelFn",
			Quals: []string{"__kernel"},
			Type:  &ast.FuncDeclType{Return: voidType()},
		},
		Body: &ast.CompoundStmt{},
	}
	file := &ast.File{Decls: []ast.ExtDecl{fn}}

	r := New(Options{RenameKernels: true, KeepNames: []string{"a"}}, "")
	_, err := r.Rewrite(file)
	require.NoError(t, err)

	assert.NotEqual(t, "a", fn.Decl.Name, "allocator must skip a reserved KeepNames entry")
}

func TestStructFieldRenamingUsesPerStructCompactIndices(t *testing.T) {
	structDecl := &ast.Decl{
		Name: "",
		Type: &ast.StructType{
			Tag: "Point",
			Fields: []*ast.Decl{
				{Name: "x", Type: intType()},
				{Name: "y", Type: intType()},
			},
		},
	}
	varDecl := &ast.Decl{
		Name: "p",
		Type: &ast.StructType{Tag: "Point"},
	}
	fieldRef := &ast.StructRef{Base: &ast.Ident{Name: "p"}, Field: "x"}
	exprStmt := &ast.ExprStmt{X: fieldRef}

	fn := &ast.FuncDef{
		Decl: &ast.Decl{Name: "use", Type: &ast.FuncDeclType{Return: voidType()}},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{
			&ast.DeclStmt{Decl: varDecl},
			exprStmt,
		}},
	}
	file := &ast.File{Decls: []ast.ExtDecl{structDecl, fn}}

	r := New(Options{}, "")
	_, err := r.Rewrite(file)
	require.NoError(t, err)

	assert.Equal(t, "a", structDecl.Type.(*ast.StructType).Fields[0].Name)
	assert.Equal(t, "b", structDecl.Type.(*ast.StructType).Fields[1].Name)
	assert.Equal(t, "a", fieldRef.Field, "p.x must resolve through the struct tag to the field's renamed spelling")

	newTag := structDecl.Type.(*ast.StructType).Tag
	assert.NotEqual(t, "Point", newTag, "the struct tag itself must be renamed, not just its fields")
	assert.Equal(t, newTag, varDecl.Type.(*ast.StructType).Tag, "a named use (Fields == nil) must see the same renamed tag as the definition")
}

func TestEnumTagAndEnumeratorsAreRenamedAndResolveWithoutWarning(t *testing.T) {
	enumDecl := &ast.Decl{
		Name: "",
		Type: &ast.EnumType{
			Tag: "Color",
			Values: []ast.EnumValue{
				{Name: "RED"},
				{Name: "GREEN"},
			},
		},
	}
	use := &ast.Ident{Name: "RED"}
	exprStmt := &ast.ExprStmt{X: use}

	fn := &ast.FuncDef{
		Decl: &ast.Decl{Name: "use", Type: &ast.FuncDeclType{Return: voidType()}},
		Body: &ast.CompoundStmt{Stmts: []ast.Stmt{exprStmt}},
	}
	file := &ast.File{Decls: []ast.ExtDecl{enumDecl, fn}}

	r := New(Options{}, "")
	_, err := r.Rewrite(file)
	require.NoError(t, err)

	enumType := enumDecl.Type.(*ast.EnumType)
	assert.NotEqual(t, "Color", enumType.Tag, "the enum tag must be renamed")
	assert.NotEqual(t, "RED", enumType.Values[0].Name)
	assert.NotEqual(t, "GREEN", enumType.Values[1].Name)
	assert.Equal(t, enumType.Values[0].Name, use.Name, "a use of the enumerator must resolve through the scope stack to its renamed spelling")
	assert.Equal(t, 0, r.Diagnostics().Count(), "a valid enumerator reference must not produce an unresolved-reference warning")
}

func TestShortenSwizzlePreservesXYZWNoOpBug(t *testing.T) {
	// spec's documented "bug not to fix": .xyzw on a vector already in
	// order still emits the identical (redundant) swizzle.
	got, ok := shortenSwizzle("xyzw")
	require.True(t, ok)
	assert.Equal(t, "xyzw", got)
}

func TestShortenSwizzleOnUnresolvedBaseLeavesNumericFormUnchanged(t *testing.T) {
	fieldRef := &ast.StructRef{Base: &ast.Ident{Name: "v"}, Field: "s01"}
	r := New(Options{}, "")
	r.scopes.Declare("v", true)
	err := r.rewriteStructRef(fieldRef)
	require.NoError(t, err)
	assert.Equal(t, "s01", fieldRef.Field)
}

func TestUnresolvedIdentifierEmitsWarningAndIsLeftUnchanged(t *testing.T) {
	expr := &ast.Ident{Name: "mystery"}

	r := New(Options{}, "")
	err := r.rewriteExpr(expr)
	require.NoError(t, err)
	assert.Equal(t, "mystery", expr.Name)
	assert.Equal(t, 1, r.Diagnostics().Count())
}
