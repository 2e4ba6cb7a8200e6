// Package printer turns a rewritten OpenCL C AST back into source text
// (spec §4.7). The low-level structure (a Printer wrapping a
// strings.Builder, one write helper, per-node-kind switch dispatch)
// follows the teacher's internal/printer; the actual minification
// rules -- operator-precedence-driven parenthesis elision, same-type
// declaration grouping, brace omission for single-statement bodies, and
// isolating #pragma onto its own line -- are grounded in oclminify's
// generator.py, which the teacher's printer did not implement (its
// binary/unary expression printing was a stub awaiting this logic).
package printer

import (
	"strings"

	"github.com/starbytesoftware/oclminify/internal/ast"
)

// Printer accumulates output text for a single AST.
type Printer struct {
	buf strings.Builder
}

// New creates a Printer.
func New() *Printer {
	return &Printer{}
}

// Print renders file as OpenCL C source text.
func Print(file *ast.File) string {
	p := New()
	p.printFile(file)
	return p.buf.String()
}

func (p *Printer) write(s string) {
	p.buf.WriteString(s)
}

func (p *Printer) printFile(f *ast.File) {
	for _, g := range groupExtDecls(f.Decls) {
		p.printExtDecl(g)
	}
}

// extGroup is either a single non-Decl ExtDecl, or a run of *ast.Decl
// sharing the same type to be printed as "T a, b, *c;".
type extGroup struct {
	single ast.ExtDecl
	group  []*ast.Decl
}

// groupExtDecls scans for maximal runs of consecutive top-level Decls
// sharing the same base type, mirroring generator.py's
// _generate_grouped_stmts.
func groupExtDecls(decls []ast.ExtDecl) []extGroup {
	var out []extGroup
	i := 0
	for i < len(decls) {
		d, ok := decls[i].(*ast.Decl)
		if !ok || d.Type == nil {
			out = append(out, extGroup{single: decls[i]})
			i++
			continue
		}
		key := typeKey(d.Type)
		run := []*ast.Decl{d}
		j := i + 1
		for j < len(decls) {
			next, ok := decls[j].(*ast.Decl)
			if !ok || typeKey(next.Type) != key {
				break
			}
			run = append(run, next)
			j++
		}
		out = append(out, extGroup{group: run})
		i = j
	}
	return out
}

// typeKey reduces a Type to a string suitable for grouping comparison:
// two declarations group together only if their base type (ignoring
// pointer/array wrapping, which is rendered per-declarator) is
// identical.
func typeKey(t ast.Type) string {
	switch n := t.(type) {
	case *ast.IdentifierType:
		return strings.Join(n.Names, " ")
	case *ast.PtrType:
		return typeKey(n.Base)
	case *ast.ArrayType:
		return typeKey(n.Base)
	case *ast.StructType:
		return "struct " + n.Tag
	case *ast.EnumType:
		return "enum " + n.Tag
	default:
		return ""
	}
}

func (p *Printer) printExtDecl(g extGroup) {
	if g.single != nil {
		switch n := g.single.(type) {
		case *ast.FuncDef:
			p.printFuncDef(n)
		case *ast.DeclList:
			p.printDeclGroup(n.Decls)
		case *ast.Typedef:
			p.write("typedef ")
			p.printType(n.Type, n.Name)
			p.write(";")
		case *ast.Pragma:
			// pragmas are isolated onto their own line, matching
			// generator.py's Generator.visit pragma post-processing.
			p.write("\n#pragma " + n.Text + "\n")
		case *ast.EmptyDecl:
			p.write(";")
		}
		return
	}
	p.printDeclGroup(g.group)
}

func (p *Printer) printFuncDef(fn *ast.FuncDef) {
	ft := fn.Decl.Type.(*ast.FuncDeclType)
	for _, q := range fn.Decl.Quals {
		p.write(q)
		p.write(" ")
	}
	for _, a := range fn.Decl.Attrs {
		p.write("__attribute__((" + a + ")) ")
	}
	p.printTypeName(ft.Return)
	p.write(" ")
	p.write(fn.Decl.Name)
	p.write("(")
	for i, param := range ft.Params {
		if i > 0 {
			p.write(",")
		}
		p.printType(param.Type, param.Name)
	}
	if len(ft.Params) == 0 {
		p.write("void")
	}
	p.write(")")
	p.printCompound(fn.Body)
}

// printDeclGroup prints a run of declarations sharing a type as a
// single "T a,b=1,*c;" statement (generator.py's
// _generate_grouped_stmts), each declarator rendering its own
// pointer/array wrapping and optional initializer.
func (p *Printer) printDeclGroup(decls []*ast.Decl) {
	if len(decls) == 0 {
		return
	}
	for _, q := range decls[0].Quals {
		p.write(q)
		p.write(" ")
	}
	p.printTypeName(baseType(decls[0].Type))
	p.write(" ")
	for i, d := range decls {
		if i > 0 {
			p.write(",")
		}
		p.printDeclarator(d)
	}
	p.write(";")
}

func baseType(t ast.Type) ast.Type {
	switch n := t.(type) {
	case *ast.PtrType:
		return baseType(n.Base)
	case *ast.ArrayType:
		return baseType(n.Base)
	default:
		return t
	}
}

// printDeclarator prints one declarator's pointer stars, name, array
// dimensions, bitfield width and initializer, without repeating the
// base type (which the caller already emitted once for the whole
// group).
func (p *Printer) printDeclarator(d *ast.Decl) {
	stars := 0
	t := d.Type
	for {
		ptr, ok := t.(*ast.PtrType)
		if !ok {
			break
		}
		stars++
		t = ptr.Base
	}
	for i := 0; i < stars; i++ {
		p.write("*")
	}
	p.write(d.Name)
	p.printArrayDims(d.Type)
	if d.BitSize != nil {
		p.write(":")
		p.printExpr(d.BitSize, 0, false)
	}
	if d.Init != nil {
		p.write("=")
		p.printExpr(d.Init, 16, false)
	}
}

func (p *Printer) printArrayDims(t ast.Type) {
	if arr, ok := t.(*ast.ArrayType); ok {
		p.write("[")
		if arr.Dim != nil {
			p.printExpr(arr.Dim, 0, false)
		}
		p.write("]")
		p.printArrayDims(arr.Base)
	}
}

// printType prints a full type followed by a declarator name, used for
// parameters and typedefs where no grouping applies.
func (p *Printer) printType(t ast.Type, name string) {
	switch n := t.(type) {
	case *ast.PtrType:
		for _, q := range n.Quals {
			p.write(q)
			p.write(" ")
		}
		p.printType(n.Base, "*"+name)
		return
	case *ast.ArrayType:
		p.printType(n.Base, name)
		p.write("[")
		if n.Dim != nil {
			p.printExpr(n.Dim, 0, false)
		}
		p.write("]")
		return
	}
	p.printTypeName(t)
	if name != "" {
		if strings.HasPrefix(name, "*") {
			p.write(name)
		} else {
			p.write(" ")
			p.write(name)
		}
	}
}

func (p *Printer) printTypeName(t ast.Type) {
	switch n := t.(type) {
	case *ast.IdentifierType:
		p.write(strings.Join(n.Names, " "))
	case *ast.StructType:
		kw := "struct"
		if n.Union {
			kw = "union"
		}
		if n.Fields != nil {
			p.write(kw)
			if n.Tag != "" {
				p.write(" " + n.Tag)
			}
			p.write("{")
			for _, f := range n.Fields {
				p.printDeclarator(f)
				p.write(";")
			}
			p.write("}")
		} else {
			p.write(kw + " " + n.Tag)
		}
	case *ast.EnumType:
		if n.Values != nil {
			p.write("enum")
			if n.Tag != "" {
				p.write(" " + n.Tag)
			}
			p.write("{")
			for i, v := range n.Values {
				if i > 0 {
					p.write(",")
				}
				p.write(v.Name)
				if v.Value != nil {
					p.write("=")
					p.printExpr(v.Value, 16, false)
				}
			}
			p.write("}")
		} else {
			p.write("enum " + n.Tag)
		}
	case *ast.PtrType, *ast.ArrayType:
		p.printType(n, "")
	case *ast.FuncDeclType:
		p.printTypeName(n.Return)
	}
}

func (p *Printer) printCompound(c *ast.CompoundStmt) {
	p.write("{")
	for _, s := range c.Stmts {
		p.printStmt(s)
	}
	p.write("}")
}

// printStmtOrBlock omits the braces of a CompoundStmt body holding
// exactly one statement, matching generator.py's _is_multi_stmt_compound
// check used by If/For/While/DoWhile.
func (p *Printer) printStmtOrBlock(s ast.Stmt) {
	if c, ok := s.(*ast.CompoundStmt); ok {
		if len(c.Stmts) == 1 {
			p.printStmt(c.Stmts[0])
			return
		}
		p.printCompound(c)
		return
	}
	p.printStmt(s)
}

func (p *Printer) printStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		p.printCompound(n)
	case *ast.ReturnStmt:
		p.write("return")
		if n.Value != nil {
			p.write(" ")
			p.printExpr(n.Value, 16, false)
		}
		p.write(";")
	case *ast.IfStmt:
		p.write("if(")
		p.printExpr(n.Cond, 0, false)
		p.write(")")
		p.printStmtOrBlock(n.Then)
		if n.Else != nil {
			p.write("else ")
			p.printStmtOrBlock(n.Else)
		}
	case *ast.ForStmt:
		p.write("for(")
		p.printForClause(n.Init)
		p.write(";")
		p.printForClause(n.Cond)
		p.write(";")
		p.printForClause(n.Next)
		p.write(")")
		p.printStmtOrBlock(n.Body)
	case *ast.WhileStmt:
		p.write("while(")
		p.printExpr(n.Cond, 0, false)
		p.write(")")
		p.printStmtOrBlock(n.Body)
	case *ast.DoWhileStmt:
		p.write("do ")
		p.printStmtOrBlock(n.Body)
		p.write("while(")
		p.printExpr(n.Cond, 0, false)
		p.write(");")
	case *ast.SwitchStmt:
		p.write("switch(")
		p.printExpr(n.Tag, 0, false)
		p.write(")")
		p.printStmt(n.Body)
	case *ast.CaseStmt:
		p.write("case ")
		p.printExpr(n.Value, 0, false)
		p.write(":")
		for _, st := range n.Body {
			p.printStmt(st)
		}
	case *ast.DefaultStmt:
		p.write("default:")
		for _, st := range n.Body {
			p.printStmt(st)
		}
	case *ast.BreakStmt:
		p.write("break;")
	case *ast.ContinueStmt:
		p.write("continue;")
	case *ast.EmptyStmt:
		p.write(";")
	case *ast.ExprStmt:
		p.printExpr(n.X, 0, false)
		p.write(";")
	case *ast.DeclStmt:
		switch d := n.Decl.(type) {
		case *ast.Decl:
			p.printDeclGroup([]*ast.Decl{d})
		case *ast.DeclList:
			p.printDeclGroup(d.Decls)
		}
	}
}

// printForClause prints one of a for-loop's three clauses: nil/empty
// prints nothing (the surrounding semicolons in printStmt already
// separate the clauses), a DeclStmt prints its declaration without a
// trailing semicolon (the caller supplies it), otherwise the wrapped
// expression.
func (p *Printer) printForClause(s ast.Stmt) {
	switch n := s.(type) {
	case nil, *ast.EmptyStmt:
		return
	case *ast.DeclStmt:
		switch d := n.Decl.(type) {
		case *ast.Decl:
			p.printTypeName(baseType(d.Type))
			p.write(" ")
			p.printDeclarator(d)
		case *ast.DeclList:
			if len(d.Decls) > 0 {
				p.printTypeName(baseType(d.Decls[0].Type))
				p.write(" ")
			}
			for i, decl := range d.Decls {
				if i > 0 {
					p.write(",")
				}
				p.printDeclarator(decl)
			}
		}
	case *ast.ExprStmt:
		p.printExpr(n.X, 0, false)
	}
}
