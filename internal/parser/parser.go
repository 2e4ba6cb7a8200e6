// Package parser builds an *ast.File from OpenCL C source. The overall
// shape (a Parser struct holding a token buffer and a current index,
// recursive-descent methods named parseX for each grammar production,
// error recovery that records a diagnostic and skips to the next
// statement boundary rather than aborting the whole parse) follows the
// teacher's internal/parser; the grammar itself targets the C subset
// OpenCL C extends with address-space/access qualifiers and vector
// types, which the teacher's WGSL grammar did not need.
//
// This parser is intentionally modest: SPEC_FULL.md treats the
// front end as an external collaborator whose job is only to produce
// an AST faithful enough for the rewriter and printer to exercise
// their documented behavior, not a conformance-tested implementation
// of the full OpenCL C grammar.
package parser

import (
	"fmt"

	"github.com/starbytesoftware/oclminify/internal/ast"
	"github.com/starbytesoftware/oclminify/internal/diagnostic"
	"github.com/starbytesoftware/oclminify/internal/lexer"
)

var addressQuals = map[string]bool{
	"__kernel": true, "kernel": true,
	"__global": true, "global": true,
	"__local": true, "local": true,
	"__constant": true, "constant": true,
	"__private": true, "private": true,
	"__read_only": true, "read_only": true,
	"__write_only": true, "write_only": true,
	"__read_write": true, "read_write": true,
}

var storageQuals = map[string]bool{
	"static": true, "extern": true, "const": true, "volatile": true,
	"inline": true, "restrict": true, "__restrict": true, "__restrict__": true,
}

// typeKeywords is the set of tokens that can start or continue a
// declaration's type-specifier sequence, covering the OpenCL C scalar
// and vector type grammar (spec §4.3).
var typeKeywords = map[string]bool{
	"void": true, "bool": true, "char": true, "uchar": true, "unsigned": true, "signed": true,
	"short": true, "int": true, "long": true, "float": true, "double": true, "half": true,
	"size_t": true, "ptrdiff_t": true, "intptr_t": true, "uintptr_t": true,
	"struct": true, "union": true, "enum": true,
	"image2d_t": true, "image3d_t": true, "image2d_array_t": true,
	"sampler_t": true, "event_t": true,
}

func init() {
	for _, base := range []string{"char", "uchar", "short", "ushort", "int", "uint", "long", "ulong", "float", "double"} {
		for _, n := range []string{"2", "3", "4", "8", "16"} {
			typeKeywords[base+n] = true
		}
	}
}

// Parser parses a single translation unit.
type Parser struct {
	toks  []lexer.Token
	pos   int
	diags *diagnostic.DiagnosticList
	err   error
}

// Parse tokenizes and parses source, returning the resulting AST, any
// diagnostics gathered along the way, and a non-nil error only when the
// parse could not produce a usable *ast.File at all.
func Parse(source string) (*ast.File, []diagnostic.Diagnostic, error) {
	lx := lexer.New(source)
	var toks []lexer.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == lexer.TokEOF {
			break
		}
	}
	p := &Parser{toks: toks, diags: diagnostic.NewDiagnosticList(source)}
	file := p.parseFile()
	if p.err != nil {
		return nil, p.diags.Diagnostics(), p.err
	}
	return file, p.diags.Diagnostics(), nil
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peekKind(offset int) lexer.TokenKind {
	i := p.pos + offset
	if i >= len(p.toks) {
		return lexer.TokEOF
	}
	return p.toks[i].Kind
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind lexer.TokenKind) bool { return p.cur().Kind == kind }

func (p *Parser) atIdentText(text string) bool {
	return p.cur().Kind == lexer.TokIdent && p.cur().Text == text
}

func (p *Parser) expect(kind lexer.TokenKind, what string) lexer.Token {
	if p.cur().Kind != kind {
		p.errorf("expected %s, got %q", what, p.cur().Text)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.diags.AddError(p.cur().Offset, fmt.Sprintf(format, args...))
}

// syncToStmtBoundary skips tokens until a ';', '}', or EOF, the
// teacher's recovery strategy for a malformed top-level construct.
func (p *Parser) syncToStmtBoundary() {
	for {
		switch p.cur().Kind {
		case lexer.TokSemicolon:
			p.advance()
			return
		case lexer.TokRBrace, lexer.TokEOF:
			return
		default:
			p.advance()
		}
	}
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{}
	for !p.at(lexer.TokEOF) {
		if p.at(lexer.TokSemicolon) {
			p.advance()
			f.Decls = append(f.Decls, &ast.EmptyDecl{})
			continue
		}
		if p.at(lexer.TokHash) {
			f.Decls = append(f.Decls, p.parsePragma())
			continue
		}
		before := p.pos
		d := p.parseExtDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
		if p.pos == before {
			p.syncToStmtBoundary()
			if p.pos == before && p.at(lexer.TokRBrace) {
				// a stray top-level '}' stops the resync without being
				// consumed; skip it so parsing makes progress.
				p.advance()
			}
		}
	}
	return f
}

func (p *Parser) parsePragma() ast.ExtDecl {
	p.advance() // '#'
	var text string
	for !p.at(lexer.TokEOF) {
		if p.atIdentText("pragma") {
			p.advance()
			continue
		}
		if text != "" {
			text += " "
		}
		text += p.cur().Text
		p.advance()
		if p.looksLikeDeclStart() {
			break
		}
	}
	return &ast.Pragma{Text: text}
}

// looksLikeDeclStart reports whether the parser has drifted into the
// start of the next external declaration, used by the pragma scanner
// to know when to stop since this lexer does not preserve line breaks.
func (p *Parser) looksLikeDeclStart() bool {
	if p.at(lexer.TokHash) {
		return true
	}
	if p.cur().Kind == lexer.TokIdent && (typeKeywords[p.cur().Text] || addressQuals[p.cur().Text] || storageQuals[p.cur().Text]) {
		return true
	}
	return false
}

func (p *Parser) parseExtDecl() ast.ExtDecl {
	quals, attrs := p.parseQualsAndAttrs()
	if p.atIdentText("typedef") {
		p.advance()
		base := p.parseTypeSpecifier()
		name, typ := p.parseDeclaratorSuffix(base)
		p.expect(lexer.TokSemicolon, "';'")
		return &ast.Typedef{Name: name, Type: typ}
	}

	base := p.parseTypeSpecifier()
	if base == nil {
		p.errorf("expected a type specifier")
		return nil
	}

	var decls []*ast.Decl
	for {
		name, typ := p.parseDeclaratorSuffix(base)
		d := &ast.Decl{Name: name, Quals: quals, Attrs: attrs, Type: typ}
		if p.at(lexer.TokAssign) {
			p.advance()
			d.Init = p.parseInitializer()
		}
		if _, isFunc := typ.(*ast.FuncDeclType); isFunc && p.at(lexer.TokLBrace) {
			body := p.parseCompound()
			return &ast.FuncDef{Decl: d, Body: body}
		}
		decls = append(decls, d)
		if p.at(lexer.TokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.TokSemicolon, "';'")
	if len(decls) == 1 {
		return decls[0]
	}
	return &ast.DeclList{Decls: decls}
}

// parseQualsAndAttrs collects leading storage/address/access qualifiers
// and any __attribute__((...)) payloads preceding a declaration's type.
func (p *Parser) parseQualsAndAttrs() ([]string, []string) {
	var quals, attrs []string
	for p.cur().Kind == lexer.TokIdent {
		text := p.cur().Text
		switch {
		case addressQuals[text] || storageQuals[text]:
			quals = append(quals, text)
			p.advance()
		case text == "__attribute__":
			p.advance()
			p.expect(lexer.TokLParen, "'('")
			p.expect(lexer.TokLParen, "'('")
			attrs = append(attrs, p.collectAttributeBody())
			p.expect(lexer.TokRParen, "')'")
			p.expect(lexer.TokRParen, "')'")
		default:
			return quals, attrs
		}
	}
	return quals, attrs
}

func (p *Parser) collectAttributeBody() string {
	var text string
	depth := 0
	for {
		if p.at(lexer.TokRParen) && depth == 0 {
			return text
		}
		if p.at(lexer.TokLParen) {
			depth++
		}
		if p.at(lexer.TokRParen) {
			depth--
		}
		if p.at(lexer.TokEOF) {
			return text
		}
		if text != "" {
			text += " "
		}
		text += p.cur().Text
		p.advance()
	}
}

// parseTypeSpecifier parses the base type of a declaration: a run of
// type keywords (spec §4.3 canonicalizes these), or a struct/union/enum
// specifier.
func (p *Parser) parseTypeSpecifier() ast.Type {
	if p.atIdentText("struct") || p.atIdentText("union") {
		return p.parseStructOrUnion()
	}
	if p.atIdentText("enum") {
		return p.parseEnum()
	}
	var names []string
	for p.cur().Kind == lexer.TokIdent && (typeKeywords[p.cur().Text] || (len(names) > 0 && p.cur().Text == "int")) {
		names = append(names, p.cur().Text)
		p.advance()
	}
	if len(names) == 0 && p.cur().Kind == lexer.TokIdent {
		// A bare identifier used as a type name (typedef'd type, e.g. a
		// struct typedef). Accepted unconditionally since this parser
		// does not track a typedef-name table.
		names = append(names, p.cur().Text)
		p.advance()
	}
	if len(names) == 0 {
		return nil
	}
	return &ast.IdentifierType{Names: names}
}

func (p *Parser) parseStructOrUnion() ast.Type {
	isUnion := p.cur().Text == "union"
	p.advance()
	var tag string
	if p.cur().Kind == lexer.TokIdent {
		tag = p.cur().Text
		p.advance()
	}
	if !p.at(lexer.TokLBrace) {
		return &ast.StructType{Tag: tag, Union: isUnion}
	}
	p.advance()
	var fields []*ast.Decl
	for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		fieldBase := p.parseTypeSpecifier()
		for {
			name, typ := p.parseDeclaratorSuffix(fieldBase)
			d := &ast.Decl{Name: name, Type: typ}
			if p.at(lexer.TokColon) {
				p.advance()
				d.BitSize = p.parseExpr()
			}
			fields = append(fields, d)
			if p.at(lexer.TokComma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.TokSemicolon, "';'")
	}
	p.expect(lexer.TokRBrace, "'}'")
	return &ast.StructType{Tag: tag, Union: isUnion, Fields: fields}
}

func (p *Parser) parseEnum() ast.Type {
	p.advance()
	var tag string
	if p.cur().Kind == lexer.TokIdent {
		tag = p.cur().Text
		p.advance()
	}
	if !p.at(lexer.TokLBrace) {
		return &ast.EnumType{Tag: tag}
	}
	p.advance()
	var values []ast.EnumValue
	for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		name := p.expect(lexer.TokIdent, "enumerator name").Text
		ev := ast.EnumValue{Name: name}
		if p.at(lexer.TokAssign) {
			p.advance()
			ev.Value = p.parseExpr()
		}
		values = append(values, ev)
		if p.at(lexer.TokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.TokRBrace, "'}'")
	return &ast.EnumType{Tag: tag, Values: values}
}

// parseDeclaratorSuffix parses the pointer stars, name, array
// dimensions, and (for a top-level declarator) a parameter list,
// wrapping base accordingly and returning the declared name.
func (p *Parser) parseDeclaratorSuffix(base ast.Type) (string, ast.Type) {
	t := base
	for p.at(lexer.TokStar) {
		p.advance()
		var quals []string
		for p.cur().Kind == lexer.TokIdent && storageQuals[p.cur().Text] {
			quals = append(quals, p.cur().Text)
			p.advance()
		}
		t = &ast.PtrType{Quals: quals, Base: t}
	}
	var name string
	if p.cur().Kind == lexer.TokIdent {
		name = p.cur().Text
		p.advance()
	}
	for p.at(lexer.TokLBracket) {
		p.advance()
		var dim ast.Expr
		if !p.at(lexer.TokRBracket) {
			dim = p.parseExpr()
		}
		p.expect(lexer.TokRBracket, "']'")
		t = &ast.ArrayType{Base: t, Dim: dim}
	}
	if p.at(lexer.TokLParen) {
		params, variadic := p.parseParamList()
		t = &ast.FuncDeclType{Params: params, Return: t, Variadic: variadic}
	}
	return name, t
}

func (p *Parser) parseParamList() ([]*ast.Param, bool) {
	p.expect(lexer.TokLParen, "'('")
	var params []*ast.Param
	variadic := false
	if p.atIdentText("void") && p.peekKind(1) == lexer.TokRParen {
		p.advance()
		p.advance()
		return params, false
	}
	for !p.at(lexer.TokRParen) && !p.at(lexer.TokEOF) {
		if p.at(lexer.TokEllipsis) {
			p.advance()
			variadic = true
			break
		}
		_, _ = p.parseQualsAndAttrs()
		base := p.parseTypeSpecifier()
		name, typ := p.parseDeclaratorSuffix(base)
		params = append(params, &ast.Param{Name: name, Type: typ})
		if p.at(lexer.TokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.TokRParen, "')'")
	return params, variadic
}

func (p *Parser) parseInitializer() ast.Expr {
	if p.at(lexer.TokLBrace) {
		p.advance()
		var exprs []ast.Expr
		for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
			exprs = append(exprs, p.parseInitializer())
			if p.at(lexer.TokComma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.TokRBrace, "'}'")
		return &ast.InitList{Exprs: exprs}
	}
	return p.parseAssignExprLevel()
}

// ---- statements ----

func (p *Parser) parseCompound() *ast.CompoundStmt {
	p.expect(lexer.TokLBrace, "'{'")
	c := &ast.CompoundStmt{}
	for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		before := p.pos
		c.Stmts = append(c.Stmts, p.parseStmt())
		if p.pos == before {
			p.syncToStmtBoundary()
		}
	}
	p.expect(lexer.TokRBrace, "'}'")
	return c
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.at(lexer.TokLBrace):
		return p.parseCompound()
	case p.at(lexer.TokSemicolon):
		p.advance()
		return &ast.EmptyStmt{}
	case p.atIdentText("return"):
		p.advance()
		var v ast.Expr
		if !p.at(lexer.TokSemicolon) {
			v = p.parseExpr()
		}
		p.expect(lexer.TokSemicolon, "';'")
		return &ast.ReturnStmt{Value: v}
	case p.atIdentText("if"):
		return p.parseIf()
	case p.atIdentText("for"):
		return p.parseFor()
	case p.atIdentText("while"):
		return p.parseWhile()
	case p.atIdentText("do"):
		return p.parseDoWhile()
	case p.atIdentText("switch"):
		return p.parseSwitch()
	case p.atIdentText("case"):
		p.advance()
		v := p.parseExpr()
		p.expect(lexer.TokColon, "':'")
		return &ast.CaseStmt{Value: v, Body: p.parseCaseBody()}
	case p.atIdentText("default"):
		p.advance()
		p.expect(lexer.TokColon, "':'")
		return &ast.DefaultStmt{Body: p.parseCaseBody()}
	case p.atIdentText("break"):
		p.advance()
		p.expect(lexer.TokSemicolon, "';'")
		return &ast.BreakStmt{}
	case p.atIdentText("continue"):
		p.advance()
		p.expect(lexer.TokSemicolon, "';'")
		return &ast.ContinueStmt{}
	case p.looksLikeDeclStart() && !p.atIdentText("sizeof"):
		return p.parseDeclStmt()
	default:
		x := p.parseExpr()
		p.expect(lexer.TokSemicolon, "';'")
		return &ast.ExprStmt{X: x}
	}
}

// parseCaseBody collects statements until the next case/default/'}'.
func (p *Parser) parseCaseBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atIdentText("case") && !p.atIdentText("default") && !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
		before := p.pos
		stmts = append(stmts, p.parseStmt())
		if p.pos == before {
			p.syncToStmtBoundary()
		}
	}
	return stmts
}

func (p *Parser) parseDeclStmt() ast.Stmt {
	quals, attrs := p.parseQualsAndAttrs()
	base := p.parseTypeSpecifier()
	var decls []*ast.Decl
	for {
		name, typ := p.parseDeclaratorSuffix(base)
		d := &ast.Decl{Name: name, Quals: quals, Attrs: attrs, Type: typ}
		if p.at(lexer.TokAssign) {
			p.advance()
			d.Init = p.parseInitializer()
		}
		decls = append(decls, d)
		if p.at(lexer.TokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.TokSemicolon, "';'")
	if len(decls) == 1 {
		return &ast.DeclStmt{Decl: decls[0]}
	}
	return &ast.DeclStmt{Decl: &ast.DeclList{Decls: decls}}
}

func (p *Parser) parseIf() ast.Stmt {
	p.advance()
	p.expect(lexer.TokLParen, "'('")
	cond := p.parseExpr()
	p.expect(lexer.TokRParen, "')'")
	then := p.parseStmt()
	var els ast.Stmt
	if p.atIdentText("else") {
		p.advance()
		els = p.parseStmt()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFor() ast.Stmt {
	p.advance()
	p.expect(lexer.TokLParen, "'('")
	var init ast.Stmt
	if p.at(lexer.TokSemicolon) {
		p.advance()
		init = &ast.EmptyStmt{}
	} else if p.looksLikeDeclStart() {
		init = p.parseDeclStmt()
	} else {
		x := p.parseExpr()
		p.expect(lexer.TokSemicolon, "';'")
		init = &ast.ExprStmt{X: x}
	}
	var cond ast.Stmt = &ast.EmptyStmt{}
	if !p.at(lexer.TokSemicolon) {
		cond = &ast.ExprStmt{X: p.parseExpr()}
	}
	p.expect(lexer.TokSemicolon, "';'")
	var next ast.Stmt = &ast.EmptyStmt{}
	if !p.at(lexer.TokRParen) {
		next = &ast.ExprStmt{X: p.parseExpr()}
	}
	p.expect(lexer.TokRParen, "')'")
	body := p.parseStmt()
	return &ast.ForStmt{Init: init, Cond: cond, Next: next, Body: body}
}

func (p *Parser) parseWhile() ast.Stmt {
	p.advance()
	p.expect(lexer.TokLParen, "'('")
	cond := p.parseExpr()
	p.expect(lexer.TokRParen, "')'")
	body := p.parseStmt()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	p.advance()
	body := p.parseStmt()
	if !p.atIdentText("while") {
		p.errorf("expected 'while' after 'do' body")
	} else {
		p.advance()
	}
	p.expect(lexer.TokLParen, "'('")
	cond := p.parseExpr()
	p.expect(lexer.TokRParen, "')'")
	p.expect(lexer.TokSemicolon, "';'")
	return &ast.DoWhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseSwitch() ast.Stmt {
	p.advance()
	p.expect(lexer.TokLParen, "'('")
	tag := p.parseExpr()
	p.expect(lexer.TokRParen, "')'")
	body := p.parseCompound()
	return &ast.SwitchStmt{Tag: tag, Body: body}
}

// ---- expressions ----
//
// The precedence climb mirrors printer/expr.go's table so round-
// tripping a parsed-then-printed expression reproduces the same
// parenthesization decisions; it is a standard C expression grammar
// otherwise (comma lowest, assignment next, then ternary, then the
// binary operator ladder, then unary/postfix/primary).

func (p *Parser) parseExpr() ast.Expr {
	first := p.parseAssignExprLevel()
	if !p.at(lexer.TokComma) {
		return first
	}
	exprs := []ast.Expr{first}
	for p.at(lexer.TokComma) {
		p.advance()
		exprs = append(exprs, p.parseAssignExprLevel())
	}
	return &ast.ExprList{Exprs: exprs}
}

var assignOps = map[lexer.TokenKind]ast.AssignOp{
	lexer.TokAssign:    ast.AssignPlain,
	lexer.TokPlusEq:    ast.AssignAdd,
	lexer.TokMinusEq:   ast.AssignSub,
	lexer.TokStarEq:    ast.AssignMul,
	lexer.TokSlashEq:   ast.AssignDiv,
	lexer.TokPercentEq: ast.AssignMod,
	lexer.TokShlEq:     ast.AssignShl,
	lexer.TokShrEq:     ast.AssignShr,
	lexer.TokAmpEq:     ast.AssignAnd,
	lexer.TokCaretEq:   ast.AssignXor,
	lexer.TokPipeEq:    ast.AssignOr,
}

func (p *Parser) parseAssignExprLevel() ast.Expr {
	left := p.parseTernary()
	if op, ok := assignOps[p.cur().Kind]; ok {
		p.advance()
		right := p.parseAssignExprLevel()
		return &ast.AssignExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseBinary(12)
	if p.at(lexer.TokQuestion) {
		p.advance()
		then := p.parseExpr()
		p.expect(lexer.TokColon, "':'")
		els := p.parseAssignExprLevel()
		return &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	}
	return cond
}

var binOpForTok = map[lexer.TokenKind]ast.BinaryOp{
	lexer.TokStar:    ast.BinMul,
	lexer.TokSlash:   ast.BinDiv,
	lexer.TokPercent: ast.BinMod,
	lexer.TokPlus:    ast.BinAdd,
	lexer.TokMinus:   ast.BinSub,
	lexer.TokShl:     ast.BinShl,
	lexer.TokShr:     ast.BinShr,
	lexer.TokLt:      ast.BinLt,
	lexer.TokLe:      ast.BinLe,
	lexer.TokGt:      ast.BinGt,
	lexer.TokGe:      ast.BinGe,
	lexer.TokEqEq:    ast.BinEq,
	lexer.TokNe:      ast.BinNe,
	lexer.TokAmp:     ast.BinBitAnd,
	lexer.TokCaret:   ast.BinBitXor,
	lexer.TokPipe:    ast.BinBitOr,
	lexer.TokAndAnd:  ast.BinLAnd,
	lexer.TokOrOr:    ast.BinLOr,
}

// binPrecOfTok mirrors printer.binaryPrecedence's table, keyed by token
// instead of ast.BinaryOp.
func binPrecOfTok(k lexer.TokenKind) int {
	switch k {
	case lexer.TokStar, lexer.TokSlash, lexer.TokPercent:
		return 3
	case lexer.TokPlus, lexer.TokMinus:
		return 4
	case lexer.TokShl, lexer.TokShr:
		return 5
	case lexer.TokLt, lexer.TokLe, lexer.TokGt, lexer.TokGe:
		return 6
	case lexer.TokEqEq, lexer.TokNe:
		return 7
	case lexer.TokAmp:
		return 8
	case lexer.TokCaret:
		return 9
	case lexer.TokPipe:
		return 10
	case lexer.TokAndAnd:
		return 11
	case lexer.TokOrOr:
		return 12
	default:
		return -1
	}
}

// parseBinary implements precedence climbing up to maxPrec (inclusive);
// lower precedence numbers bind tighter, matching printer/expr.go.
func (p *Parser) parseBinary(maxPrec int) ast.Expr {
	left := p.parseUnaryLevel()
	for {
		prec := binPrecOfTok(p.cur().Kind)
		if prec < 0 || prec > maxPrec {
			return left
		}
		op := binOpForTok[p.cur().Kind]
		p.advance()
		right := p.parseBinary(prec - 1)
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnaryLevel() ast.Expr {
	switch p.cur().Kind {
	case lexer.TokPlus:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryPlus, X: p.parseUnaryLevel()}
	case lexer.TokMinus:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryMinus, X: p.parseUnaryLevel()}
	case lexer.TokBang:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryNot, X: p.parseUnaryLevel()}
	case lexer.TokTilde:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryBitNot, X: p.parseUnaryLevel()}
	case lexer.TokAmp:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryAddrOf, X: p.parseUnaryLevel()}
	case lexer.TokStar:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryDeref, X: p.parseUnaryLevel()}
	case lexer.TokIncr:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryPreIncr, X: p.parseUnaryLevel()}
	case lexer.TokDecr:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryPreDecr, X: p.parseUnaryLevel()}
	case lexer.TokIdent:
		if p.cur().Text == "sizeof" {
			return p.parseSizeof()
		}
	case lexer.TokLParen:
		if p.looksLikeCast() {
			return p.parseCast()
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parseSizeof() ast.Expr {
	p.advance()
	if p.at(lexer.TokLParen) && p.tokenStartsType(p.pos+1) {
		p.advance()
		t := p.parseTypeSpecifier()
		_, wrapped := p.parseDeclaratorSuffix(t)
		p.expect(lexer.TokRParen, "')'")
		return &ast.SizeofExpr{Type: wrapped}
	}
	return &ast.SizeofExpr{X: p.parseUnaryLevel()}
}

// looksLikeCast reports whether the parser is positioned at '(' Type ')'
// rather than a parenthesized expression.
func (p *Parser) looksLikeCast() bool {
	return p.tokenStartsType(p.pos + 1)
}

func (p *Parser) tokenStartsType(idx int) bool {
	if idx >= len(p.toks) || p.toks[idx].Kind != lexer.TokIdent {
		return false
	}
	text := p.toks[idx].Text
	return typeKeywords[text] || addressQuals[text] || storageQuals[text]
}

func (p *Parser) parseCast() ast.Expr {
	p.advance() // '('
	_, _ = p.parseQualsAndAttrs()
	base := p.parseTypeSpecifier()
	_, t := p.parseDeclaratorSuffix(base)
	p.expect(lexer.TokRParen, "')'")
	return &ast.CastExpr{Type: t, X: p.parseUnaryLevel()}
}

func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case lexer.TokLBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.TokRBracket, "']'")
			e = &ast.ArrayRef{Array: e, Index: idx}
		case lexer.TokDot, lexer.TokArrow:
			arrow := p.cur().Kind == lexer.TokArrow
			p.advance()
			field := p.expect(lexer.TokIdent, "field name").Text
			e = &ast.StructRef{Base: e, Field: field, Arrow: arrow}
		case lexer.TokLParen:
			p.advance()
			var args []ast.Expr
			for !p.at(lexer.TokRParen) && !p.at(lexer.TokEOF) {
				args = append(args, p.parseAssignExprLevel())
				if p.at(lexer.TokComma) {
					p.advance()
					continue
				}
				break
			}
			p.expect(lexer.TokRParen, "')'")
			e = &ast.FuncCall{Name: e, Args: args}
		case lexer.TokIncr:
			p.advance()
			e = &ast.UnaryExpr{Op: ast.UnaryPostIncr, X: e}
		case lexer.TokDecr:
			p.advance()
			e = &ast.UnaryExpr{Op: ast.UnaryPostDecr, X: e}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur().Kind {
	case lexer.TokIdent:
		return &ast.Ident{Name: p.advance().Text}
	case lexer.TokIntLiteral:
		return &ast.IntLit{Text: p.advance().Text}
	case lexer.TokFloatLiteral:
		return &ast.FloatLit{Text: p.advance().Text}
	case lexer.TokStringLiteral:
		return &ast.StringLit{Text: p.advance().Text}
	case lexer.TokCharLiteral:
		return &ast.CharLit{Text: p.advance().Text}
	case lexer.TokLBrace:
		p.advance()
		var exprs []ast.Expr
		for !p.at(lexer.TokRBrace) && !p.at(lexer.TokEOF) {
			exprs = append(exprs, p.parseInitializer())
			if p.at(lexer.TokComma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.TokRBrace, "'}'")
		return &ast.InitList{Exprs: exprs}
	case lexer.TokLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(lexer.TokRParen, "')'")
		return e
	default:
		p.errorf("expected an expression, got %q", p.cur().Text)
		p.advance()
		return &ast.Ident{Name: "?"}
	}
}
