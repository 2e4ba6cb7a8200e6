// Package rewriter implements the two-pass, scope-aware AST rewrite of
// spec §4.3–§4.6: it renames user-defined identifiers through a
// internal/scope.Stack, canonicalizes long-form unsigned type spellings,
// resolves struct-reference chains far enough to rename struct fields,
// and shortens vector swizzles. It is grounded in oclminify's
// Minifier.visit_* methods (minifier.py), generalized from a dynamic
// NodeVisitor dispatch into exhaustive Go type switches over the closed
// ast.ExtDecl/ast.Type/ast.Expr/ast.Stmt families, per spec §9's own
// recommendation.
package rewriter

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/starbytesoftware/oclminify/internal/ast"
	"github.com/starbytesoftware/oclminify/internal/builtins"
	"github.com/starbytesoftware/oclminify/internal/diagnostic"
	"github.com/starbytesoftware/oclminify/internal/scope"
)

// Options controls the rewrite, mirroring spec §6's external interface:
// rename_kernels and global_postfix are the only two knobs the core
// rewriter takes; KeepNames is an ambient addition (§4.9 of
// SPEC_FULL.md) letting a caller pin extra identifiers the way the
// teacher's minifier.Options.KeepNames does.
type Options struct {
	RenameKernels bool
	GlobalPostfix string
	KeepNames     []string
}

// FunctionRename is the per-function rename record surfaced to the
// caller (spec §6's "function rename map").
type FunctionRename struct {
	Name string
	Args map[string]string
}

// Result is everything the rewrite produces besides the mutated AST
// itself (the AST is rewritten in place, matching oclminify's mutable
// visitor).
type Result struct {
	KernelNames []string
	Functions   map[string]FunctionRename
}

// structInfo records a struct definition's tag and field renames, kept
// apart from the variable scope stack because struct tags and member
// names live in their own namespace (spec §4.4): a struct field is
// never resolved by walking the enclosing lexical scope, only by first
// finding the struct's declaration and then looking up the field
// within it. It is keyed by the struct's original tag so a later named
// use (a bare "struct Tag" with Fields == nil) can find the same
// renamed tag and field table.
type structInfo struct {
	newTag string
	fields map[string]*scope.Declaration
}

// Rewriter carries all state for a single pass. A Rewriter is used
// once: New followed by one call to Rewrite, mirroring spec §5's "all
// pass state is discarded when Rewrite returns".
type Rewriter struct {
	opts      Options
	scopes    *scope.Stack
	structs   map[string]*structInfo
	enums     map[string]string // original enum tag -> renamed tag
	functions map[string]*scope.Function
	kernels   []string
	diags     *diagnostic.DiagnosticList
}

// New creates a Rewriter for a single AST. source is used only to build
// the diagnostic list's line index.
func New(opts Options, source string) *Rewriter {
	reserved := scope.DefaultReservedNames()
	for name := range builtins.Table {
		reserved[name] = true
	}
	for name := range builtins.Constants {
		reserved[name] = true
	}
	for _, name := range opts.KeepNames {
		reserved[name] = true
	}
	if opts.GlobalPostfix != "" && !opts.RenameKernels {
		// spec §7: a non-empty postfix with rename_kernels=false is a
		// config conflict normalized silently in favor of renaming.
		opts.RenameKernels = true
	}
	return &Rewriter{
		opts:      opts,
		scopes:    scope.New(reserved, opts.GlobalPostfix),
		structs:   map[string]*structInfo{},
		enums:     map[string]string{},
		functions: map[string]*scope.Function{},
		diags:     diagnostic.NewDiagnosticList(source),
	}
}

// Diagnostics returns the diagnostic list accumulated during Rewrite.
func (r *Rewriter) Diagnostics() *diagnostic.DiagnosticList {
	return r.diags
}

// Rewrite mutates file in place per spec §4.3-§4.6 and returns the
// kernel name list and function rename map of spec §6. An unsupported
// AST node is fatal: Rewrite returns an error immediately and the
// caller must not trust the partially-mutated tree (spec §7).
func (r *Rewriter) Rewrite(file *ast.File) (*Result, error) {
	for _, decl := range file.Decls {
		if err := r.rewriteExtDecl(decl); err != nil {
			return nil, err
		}
	}
	functions := map[string]FunctionRename{}
	for orig, fn := range r.functions {
		args := map[string]string{}
		for argOrig, decl := range fn.Args {
			args[argOrig] = decl.NewName
		}
		functions[orig] = FunctionRename{Name: fn.NewName, Args: args}
	}
	return &Result{KernelNames: r.kernels, Functions: functions}, nil
}

func (r *Rewriter) unsupported(kind string) error {
	return errors.Errorf("unsupported node: %s", kind)
}

func (r *Rewriter) rewriteExtDecl(d ast.ExtDecl) error {
	switch n := d.(type) {
	case *ast.FuncDef:
		return r.rewriteFuncDef(n)
	case *ast.Decl:
		return r.rewriteDecl(n, r.scopes.IsGlobal())
	case *ast.DeclList:
		for _, decl := range n.Decls {
			if err := r.rewriteDecl(decl, r.scopes.IsGlobal()); err != nil {
				return err
			}
		}
		return nil
	case *ast.Typedef:
		return r.rewriteType(n.Type)
	case *ast.Pragma, *ast.EmptyDecl:
		return nil
	default:
		return r.unsupported(fmt.Sprintf("%T", d))
	}
}

// rewriteFuncDef implements the two-phase function record of spec §4.3
// / §9: the function's own renamed name and its parameters' renamed
// names are allocated and recorded before the body (and, notionally,
// the return type) are visited, so a recursive call within the body can
// already resolve the function's new name.
func (r *Rewriter) rewriteFuncDef(fn *ast.FuncDef) error {
	isKernel := hasQual(fn.Decl.Quals, "__kernel") || hasQual(fn.Decl.Quals, "kernel")

	newName := fn.Decl.Name
	if isKernel {
		if r.opts.RenameKernels {
			newName = r.scopes.Allocate()
		}
		r.scopes.RegisterFuncName(newName)
		r.kernels = append(r.kernels, newName)
	} else {
		newName = r.scopes.Allocate()
		r.scopes.RegisterFuncName(newName)
	}

	rec := &scope.Function{OriginalName: fn.Decl.Name, NewName: newName, Args: map[string]*scope.Declaration{}}
	r.functions[fn.Decl.Name] = rec
	fn.Decl.Name = newName

	ft, ok := fn.Decl.Type.(*ast.FuncDeclType)
	if !ok {
		return r.unsupported("FuncDef.Decl.Type")
	}

	r.scopes.Push()
	defer r.scopes.Pop()

	for _, p := range ft.Params {
		if p.Name == "" {
			continue
		}
		decl := r.scopes.Declare(p.Name, false)
		rec.Args[p.Name] = decl
		p.Name = decl.NewName
		if err := r.rewriteType(p.Type); err != nil {
			return err
		}
	}
	if err := r.rewriteType(ft.Return); err != nil {
		return err
	}
	rec.ReturnTypeResolved = true

	if fn.Body != nil {
		if err := r.rewriteCompoundNoScope(fn.Body); err != nil {
			return err
		}
	}
	return nil
}

// rewriteDecl renames a single declaration and recurses into its type,
// initializer, and bitfield size. isDefinition marks whether this Decl
// is a full definition (has an initializer or is a tentative global
// definition) as opposed to a bare prototype, matching spec §3's
// Declaration.is_definition.
func (r *Rewriter) rewriteDecl(d *ast.Decl, isDefinition bool) error {
	if d.Name != "" {
		decl := r.scopes.Declare(d.Name, isDefinition || d.Init != nil)
		if tag, ok := structTagOf(d.Type); ok {
			decl.Aux = tag
		}
		d.Name = decl.NewName
	}
	if err := r.rewriteType(d.Type); err != nil {
		return err
	}
	if d.Init != nil {
		if err := r.rewriteExpr(d.Init); err != nil {
			return err
		}
	}
	if d.BitSize != nil {
		if err := r.rewriteExpr(d.BitSize); err != nil {
			return err
		}
	}
	return nil
}

// structTagOf unwraps pointer/array wrappers to find the struct tag a
// declaration's type ultimately refers to, used to populate
// Declaration.Aux for later StructRef resolution.
func structTagOf(t ast.Type) (string, bool) {
	switch n := t.(type) {
	case *ast.StructType:
		if n.Tag != "" {
			return n.Tag, true
		}
		return "", false
	case *ast.PtrType:
		return structTagOf(n.Base)
	case *ast.ArrayType:
		return structTagOf(n.Base)
	default:
		return "", false
	}
}

func hasQual(quals []string, name string) bool {
	for _, q := range quals {
		if q == name {
			return true
		}
	}
	return false
}

// rewriteType canonicalizes IdentifierType spellings (the
// "unsigned char" -> "uchar" family, spec §4.3) and recurses into
// struct/array/pointer/function types. A StructType definition also
// registers its fields in r.structs, grounded on
// Minifier._struct_to_declaration.
func (r *Rewriter) rewriteType(t ast.Type) error {
	switch n := t.(type) {
	case *ast.IdentifierType:
		for i := 0; i+1 < len(n.Names); i++ {
			if canon, ok := builtins.CanonicalTypeNames[n.Names[i]+" "+n.Names[i+1]]; ok {
				n.Names = append(append(n.Names[:i:i], canon), n.Names[i+2:]...)
			}
		}
		return nil
	case *ast.PtrType:
		return r.rewriteType(n.Base)
	case *ast.ArrayType:
		if n.Dim != nil {
			if err := r.rewriteExpr(n.Dim); err != nil {
				return err
			}
		}
		return r.rewriteType(n.Base)
	case *ast.FuncDeclType:
		for _, p := range n.Params {
			if err := r.rewriteType(p.Type); err != nil {
				return err
			}
		}
		return r.rewriteType(n.Return)
	case *ast.StructType:
		return r.rewriteStructType(n)
	case *ast.EnumType:
		return r.rewriteEnumType(n)
	default:
		return r.unsupported(fmt.Sprintf("%T", t))
	}
}

// rewriteEnumType renames an enum's tag and enumerators, mirroring
// Minifier.visit_Enum: a fresh definition (Values != nil) allocates a
// name for the tag (if named) and one for each enumerator, registering
// the enumerators in the current scope so later Ident uses resolve
// through the normal scope stack like any other declaration; a named
// use of a previously-declared tag (Values == nil) just looks up the
// tag's already-allocated name.
func (r *Rewriter) rewriteEnumType(n *ast.EnumType) error {
	if n.Values == nil {
		if n.Tag != "" {
			if newTag, ok := r.enums[n.Tag]; ok {
				n.Tag = newTag
			}
		}
		return nil
	}
	if n.Tag != "" {
		newTag := r.scopes.Allocate()
		r.enums[n.Tag] = newTag
		n.Tag = newTag
	}
	for i := range n.Values {
		decl := r.scopes.Declare(n.Values[i].Name, true)
		n.Values[i].Name = decl.NewName
		if n.Values[i].Value != nil {
			if err := r.rewriteExpr(n.Values[i].Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// rewriteStructType renames a struct's tag and fields, mirroring
// Minifier._struct_to_declaration / visit_Struct: a fresh definition
// (Fields != nil) allocates a name for the tag (if named) through the
// same allocator as every other declaration, and per-struct compact
// indices via scope.IndexToAlphaString for the fields (not the global
// allocator counter, so two unrelated structs can both have a field
// renamed "a"). A named use of a previously-declared tag (Fields ==
// nil) looks up the tag's already-allocated name.
func (r *Rewriter) rewriteStructType(s *ast.StructType) error {
	if s.Fields == nil {
		if s.Tag != "" {
			if info, ok := r.structs[s.Tag]; ok {
				s.Tag = info.newTag
			}
		}
		return nil
	}
	info := &structInfo{fields: map[string]*scope.Declaration{}}
	if s.Tag != "" {
		info.newTag = r.scopes.Allocate()
		r.structs[s.Tag] = info
		s.Tag = info.newTag
	}
	for i, field := range s.Fields {
		if field.Name != "" {
			newName := scope.IndexToAlphaString(i)
			info.fields[field.Name] = &scope.Declaration{OriginalName: field.Name, NewName: newName}
			field.Name = newName
		}
		if err := r.rewriteType(field.Type); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rewriter) rewriteExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Ident:
		if _, ok := r.scopes.Resolve(n.Name); !ok && !builtins.IsConstant(n.Name) {
			r.diags.AddWarning(0, "unresolved reference: "+n.Name)
		}
		n.Name = r.scopes.NameForIdent(n.Name)
		return nil
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.CharLit:
		return nil
	case *ast.ArrayRef:
		if err := r.rewriteExpr(n.Array); err != nil {
			return err
		}
		return r.rewriteExpr(n.Index)
	case *ast.StructRef:
		return r.rewriteStructRef(n)
	case *ast.FuncCall:
		if ident, ok := n.Name.(*ast.Ident); ok {
			if fn, ok := r.functions[ident.Name]; ok {
				ident.Name = fn.NewName
			} else if !builtins.IsBuiltin(ident.Name) {
				ident.Name = r.scopes.NameForIdent(ident.Name)
				if _, ok := r.scopes.Resolve(ident.Name); !ok {
					r.diags.AddWarning(0, "unresolved reference: "+ident.Name)
				}
			}
		} else if err := r.rewriteExpr(n.Name); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := r.rewriteExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.UnaryExpr:
		return r.rewriteExpr(n.X)
	case *ast.BinaryExpr:
		if err := r.rewriteExpr(n.Left); err != nil {
			return err
		}
		return r.rewriteExpr(n.Right)
	case *ast.AssignExpr:
		if err := r.rewriteExpr(n.Left); err != nil {
			return err
		}
		return r.rewriteExpr(n.Right)
	case *ast.TernaryExpr:
		if err := r.rewriteExpr(n.Cond); err != nil {
			return err
		}
		if err := r.rewriteExpr(n.Then); err != nil {
			return err
		}
		return r.rewriteExpr(n.Else)
	case *ast.CastExpr:
		if err := r.rewriteType(n.Type); err != nil {
			return err
		}
		return r.rewriteExpr(n.X)
	case *ast.ExprList:
		for _, x := range n.Exprs {
			if err := r.rewriteExpr(x); err != nil {
				return err
			}
		}
		return nil
	case *ast.InitList:
		for _, x := range n.Exprs {
			if err := r.rewriteExpr(x); err != nil {
				return err
			}
		}
		return nil
	case *ast.SizeofExpr:
		if n.X != nil {
			return r.rewriteExpr(n.X)
		}
		return r.rewriteType(n.Type)
	default:
		return r.unsupported(fmt.Sprintf("%T", e))
	}
}

// rewriteStructRef resolves a.b or a->b chains outermost-first, exactly
// as Minifier.visit_StructRef does: it first looks up the static type
// of the base (by declaration lookup, while the base still carries its
// original name), then rewrites the base expression, and uses the type
// to find the struct's field table and rename Field. When the base's
// type cannot be determined (see structRefBaseType), Field is tried as
// a vector-swizzle and otherwise left unchanged.
func (r *Rewriter) rewriteStructRef(n *ast.StructRef) error {
	baseType, ok := r.structRefBaseType(n.Base)
	if err := r.rewriteExpr(n.Base); err != nil {
		return err
	}
	if ok {
		if info, ok := r.structs[baseType]; ok {
			if field, ok := info.fields[n.Field]; ok {
				n.Field = field.NewName
				return nil
			}
		}
	}
	if shortened, ok := shortenSwizzle(n.Field); ok {
		n.Field = shortened
	}
	return nil
}

// structRefBaseType best-effort resolves the declared struct tag of an
// expression: an Ident is looked up by its original name and yields the
// struct tag recorded in its Declaration's Aux. Every other base is
// unresolved, including a FuncCall (neither built-in nor user function
// return types are consulted), an array element, a dereference and a
// nested StructRef.
func (r *Rewriter) structRefBaseType(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		decl, ok := r.scopes.Resolve(n.Name)
		if !ok {
			return "", false
		}
		tag, ok := decl.Aux.(string)
		return tag, ok
	case *ast.StructRef:
		// nested struct-ref: not resolved further here, matching the
		// original's conservative handling of multi-level chains for
		// swizzle purposes.
		return "", false
	default:
		return "", false
	}
}

// shortenSwizzle handles vector swizzles without knowing the vector's
// width: a field made only of the letters x/y/z/w and bare hex index
// digits, every index below 4, is spelled with x/y/z/w letters and
// reported ok. Any other field is reported not ok and the caller leaves
// it unchanged; this includes the s-prefixed index form (.s01), .lo,
// .hi, .even, .odd and any index of 4 or more. A full-order access such
// as ".xyzw" is returned as is, not elided.
func shortenSwizzle(field string) (string, bool) {
	letters := "xyzw"
	components := make([]int, 0, len(field))
	for _, c := range field {
		idx := -1
		switch c {
		case 'x':
			idx = 0
		case 'y':
			idx = 1
		case 'z':
			idx = 2
		case 'w':
			idx = 3
		default:
			if c >= '0' && c <= '9' {
				idx = int(c - '0')
			} else if c >= 'a' && c <= 'f' {
				idx = int(c-'a') + 10
			} else if c >= 'A' && c <= 'F' {
				idx = int(c-'A') + 10
			} else {
				return "", false
			}
		}
		components = append(components, idx)
	}
	if len(components) == 0 {
		return "", false
	}
	allXYZW := true
	for _, idx := range components {
		if idx > 3 {
			allXYZW = false
			break
		}
	}
	if allXYZW {
		out := make([]byte, len(components))
		for i, idx := range components {
			out[i] = letters[idx]
		}
		return string(out), true
	}
	return field, false
}

// rewriteCompoundNoScope rewrites a CompoundStmt's statements without
// pushing a new scope itself; used when the caller (rewriteFuncDef) has
// already pushed the function's own scope so the body shares it with
// the parameter list, matching C scoping rules where a parameter and a
// top-level local in the same function cannot both be declared.
func (r *Rewriter) rewriteCompoundNoScope(c *ast.CompoundStmt) error {
	for _, s := range c.Stmts {
		if err := r.rewriteStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rewriter) rewriteCompound(c *ast.CompoundStmt) error {
	r.scopes.Push()
	defer r.scopes.Pop()
	return r.rewriteCompoundNoScope(c)
}

func (r *Rewriter) rewriteStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		return r.rewriteCompound(n)
	case *ast.ReturnStmt:
		if n.Value != nil {
			return r.rewriteExpr(n.Value)
		}
		return nil
	case *ast.IfStmt:
		if err := r.rewriteExpr(n.Cond); err != nil {
			return err
		}
		if err := r.rewriteStmt(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return r.rewriteStmt(n.Else)
		}
		return nil
	case *ast.ForStmt:
		// a for-loop's init clause can declare a variable scoped to the
		// loop, so the whole statement gets its own scope.
		r.scopes.Push()
		defer r.scopes.Pop()
		if n.Init != nil {
			if err := r.rewriteStmt(n.Init); err != nil {
				return err
			}
		}
		if n.Cond != nil {
			if err := r.rewriteStmt(n.Cond); err != nil {
				return err
			}
		}
		if n.Next != nil {
			if err := r.rewriteStmt(n.Next); err != nil {
				return err
			}
		}
		return r.rewriteStmt(n.Body)
	case *ast.WhileStmt:
		if err := r.rewriteExpr(n.Cond); err != nil {
			return err
		}
		return r.rewriteStmt(n.Body)
	case *ast.DoWhileStmt:
		if err := r.rewriteStmt(n.Body); err != nil {
			return err
		}
		return r.rewriteExpr(n.Cond)
	case *ast.SwitchStmt:
		if err := r.rewriteExpr(n.Tag); err != nil {
			return err
		}
		return r.rewriteStmt(n.Body)
	case *ast.CaseStmt:
		if err := r.rewriteExpr(n.Value); err != nil {
			return err
		}
		for _, st := range n.Body {
			if err := r.rewriteStmt(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.DefaultStmt:
		for _, st := range n.Body {
			if err := r.rewriteStmt(st); err != nil {
				return err
			}
		}
		return nil
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.EmptyStmt:
		return nil
	case *ast.ExprStmt:
		return r.rewriteExpr(n.X)
	case *ast.DeclStmt:
		switch d := n.Decl.(type) {
		case *ast.Decl:
			return r.rewriteDecl(d, d.Init != nil)
		case *ast.DeclList:
			for _, decl := range d.Decls {
				if err := r.rewriteDecl(decl, decl.Init != nil); err != nil {
					return err
				}
			}
			return nil
		default:
			return r.unsupported(fmt.Sprintf("%T", n.Decl))
		}
	default:
		return r.unsupported(fmt.Sprintf("%T", s))
	}
}
