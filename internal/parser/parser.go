// Package parser implements a recursive-descent parser that turns a
// token stream into a list of statement AST nodes, enforcing the guest
// language's twelve-level precedence table and failing fast on the
// first syntax error.
package parser

import (
	"fmt"

	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/lexer"
	"github.com/abraun/serpent/internal/token"
)

// Parser consumes tokens from a *lexer.Lexer and produces a list of
// top-level statements.
type Parser struct {
	l      *lexer.Lexer
	source string
	file   string

	cur  token.Token
	peek token.Token
}

// New constructs a Parser reading from l. source and file are used only
// to render errors with context; file may be empty.
func New(l *lexer.Lexer, source, file string) *Parser {
	p := &Parser{l: l, source: source, file: file}
	p.advance()
	p.advance()
	return p
}

// parseAbort is the sentinel panic value used to implement fail-fast
// parsing: the first syntax error unwinds straight to ParseProgram.
type parseAbort struct{ err *errors.ParseError }

func (p *Parser) fail(pos token.Position, format string, args ...interface{}) {
	panic(parseAbort{&errors.ParseError{Message: fmt.Sprintf(format, args...), Pos: pos}})
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.cur.Kind == k {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.cur.Kind != kind {
		p.fail(p.cur.Pos, "expected %s, got %s", kind, p.cur.Kind)
	}
	tok := p.cur
	p.advance()
	return tok
}

// skipNewlines consumes zero or more stray NEWLINE tokens (e.g. at the
// very start of a program, or between top-level statements).
func (p *Parser) skipNewlines() {
	for p.cur.Kind == token.NEWLINE {
		p.advance()
	}
}

// ParseProgram parses the whole token stream into a list of top-level
// statements. The first syntax error aborts parsing and is returned.
func (p *Parser) ParseProgram() (stmts []ast.Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			abort, ok := r.(parseAbort)
			if !ok {
				panic(r)
			}
			err = abort.err
		}
	}()

	p.skipNewlines()
	for p.cur.Kind != token.EOF {
		stmts = append(stmts, p.parseStatement())
		p.skipNewlines()
	}
	return stmts, nil
}

// ---- Statements ----

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseForIn()
	case token.DEF:
		return p.parseFuncDef()
	case token.CLASS:
		return p.parseClassDef()
	case token.RETURN:
		return p.parseReturn()
	case token.PASS:
		pos := p.cur.Pos
		p.advance()
		p.endOfSimpleStmt()
		return ast.NewPass(pos)
	case token.BREAK:
		pos := p.cur.Pos
		p.advance()
		p.endOfSimpleStmt()
		return ast.NewBreak(pos)
	case token.CONTINUE:
		pos := p.cur.Pos
		p.advance()
		p.endOfSimpleStmt()
		return ast.NewContinue(pos)
	default:
		return p.parseSimpleStmt()
	}
}

// endOfSimpleStmt consumes the NEWLINE (or allows EOF) terminating a
// simple statement.
func (p *Parser) endOfSimpleStmt() {
	if p.cur.Kind == token.EOF || p.cur.Kind == token.DEDENT {
		return
	}
	p.expect(token.NEWLINE)
}

// parseSuite parses `: NEWLINE INDENT stmt+ DEDENT`.
func (p *Parser) parseSuite() []ast.Stmt {
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	var body []ast.Stmt
	for p.cur.Kind != token.DEDENT && p.cur.Kind != token.EOF {
		body = append(body, p.parseStatement())
	}
	p.expect(token.DEDENT)
	if len(body) == 0 {
		p.fail(p.cur.Pos, "suite must contain at least one statement")
	}
	return body
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	cond := p.parseExpression()
	then := p.parseSuite()

	var elifs []ast.ElifBranch
	var elseBody []ast.Stmt
	for p.cur.Kind == token.ELIF {
		p.advance()
		econd := p.parseExpression()
		ebody := p.parseSuite()
		elifs = append(elifs, ast.ElifBranch{Cond: econd, Body: ebody})
	}
	if p.cur.Kind == token.ELSE {
		p.advance()
		elseBody = p.parseSuite()
	}
	return ast.NewIf(pos, cond, then, elifs, elseBody)
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	cond := p.parseExpression()
	body := p.parseSuite()
	return ast.NewWhile(pos, cond, body)
}

func (p *Parser) parseForIn() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	name := p.expect(token.IDENT).Literal
	p.expect(token.IN)
	iterable := p.parseExpression()
	body := p.parseSuite()
	return ast.NewForIn(pos, name, iterable, body)
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	var value ast.Expr
	if p.cur.Kind != token.NEWLINE && p.cur.Kind != token.EOF && p.cur.Kind != token.DEDENT {
		value = p.parseExpressionOrTuple()
	}
	p.endOfSimpleStmt()
	return ast.NewReturn(pos, value)
}

func (p *Parser) parseFuncDef() *ast.FuncDef {
	pos := p.cur.Pos
	p.advance()
	name := p.expect(token.IDENT).Literal
	params := p.parseParams()
	body := p.parseSuite()
	return ast.NewFuncDef(pos, name, params, body)
}

// parseParams parses `( param, param, ... )`, enforcing the required ->
// optional -> *args -> **kwargs ordering.
func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	seenOptional := false
	seenStar := false
	seenDoubleStar := false

	for p.cur.Kind != token.RPAREN {
		if seenDoubleStar {
			p.fail(p.cur.Pos, "no parameter may follow **kwargs")
		}

		switch p.cur.Kind {
		case token.DOUBLESTAR:
			p.advance()
			name := p.expect(token.IDENT).Literal
			params = append(params, ast.Param{Name: name, Kind: ast.ParamDoubleStar})
			seenDoubleStar = true
		case token.STAR:
			if seenStar {
				p.fail(p.cur.Pos, "only one *args parameter is allowed")
			}
			p.advance()
			name := p.expect(token.IDENT).Literal
			params = append(params, ast.Param{Name: name, Kind: ast.ParamStar})
			seenStar = true
		default:
			name := p.expect(token.IDENT).Literal
			if p.cur.Kind == token.EQUAL {
				p.advance()
				def := p.parseExpression()
				params = append(params, ast.Param{Name: name, Default: def, Kind: ast.ParamOptional})
				seenOptional = true
			} else {
				if seenStar || seenDoubleStar {
					p.fail(p.cur.Pos, "required parameter %q may not follow *args/**kwargs", name)
				}
				if seenOptional {
					p.fail(p.cur.Pos, "required parameter %q may not follow an optional parameter", name)
				}
				params = append(params, ast.Param{Name: name, Kind: ast.ParamRequired})
			}
		}

		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseClassDef() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	name := p.expect(token.IDENT).Literal

	superclass := ""
	if p.cur.Kind == token.LPAREN {
		p.advance()
		if p.cur.Kind != token.RPAREN {
			superclass = p.expect(token.IDENT).Literal
		}
		p.expect(token.RPAREN)
	}

	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	var methods []*ast.FuncDef
	for p.cur.Kind != token.DEDENT && p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.DEF:
			methods = append(methods, p.parseFuncDef())
		case token.PASS:
			p.advance()
			p.endOfSimpleStmt()
		default:
			p.fail(p.cur.Pos, "class body may only contain method definitions and pass, got %s", p.cur.Kind)
		}
	}
	p.expect(token.DEDENT)
	return ast.NewClassDef(pos, name, superclass, methods)
}

// parseSimpleStmt parses an expression statement, which may turn out to
// be a plain assignment or augmented assignment once a target followed
// by `=`/`op=` is seen.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	pos := p.cur.Pos
	expr := p.parseExpressionOrTuple()

	if op, ok := augAssignOp(p.cur.Kind); ok {
		p.advance()
		target := p.validateTarget(expr)
		value := p.parseExpressionOrTuple()
		p.endOfSimpleStmt()
		return ast.NewExprStmt(pos, ast.NewAugAssign(pos, target, op, value))
	}

	if p.cur.Kind == token.EQUAL {
		p.advance()
		target := p.validateTarget(expr)
		value := p.parseAssignmentRHS()
		p.endOfSimpleStmt()
		return ast.NewExprStmt(pos, ast.NewAssign(pos, target, value))
	}

	p.endOfSimpleStmt()
	return ast.NewExprStmt(pos, expr)
}

// parseAssignmentRHS supports right-associative chained assignment:
// `a = b = expr` parses as Assign(a, Assign(b, expr)).
func (p *Parser) parseAssignmentRHS() ast.Expr {
	pos := p.cur.Pos
	expr := p.parseExpressionOrTuple()
	if p.cur.Kind == token.EQUAL {
		p.advance()
		target := p.validateTarget(expr)
		value := p.parseAssignmentRHS()
		return ast.NewAssign(pos, target, value)
	}
	return expr
}

func (p *Parser) validateTarget(expr ast.Expr) ast.Expr {
	switch expr.(type) {
	case *ast.Variable, *ast.IndexGet, *ast.AttributeGet:
		return expr
	default:
		p.fail(expr.Pos(), "invalid assignment target")
		return nil
	}
}

func augAssignOp(kind token.Kind) (token.Kind, bool) {
	switch kind {
	case token.PLUSEQ:
		return token.PLUS, true
	case token.MINUSEQ:
		return token.MINUS, true
	case token.STAREQ:
		return token.STAR, true
	case token.SLASHEQ:
		return token.SLASH, true
	case token.DSLASHEQ:
		return token.DOUBLESLASH, true
	case token.PERCENTEQ:
		return token.PERCENT, true
	case token.DSTAREQ:
		return token.DOUBLESTAR, true
	default:
		return token.ILLEGAL, false
	}
}

// ---- Expressions ----

// parseExpressionOrTuple parses a comma-separated expression list at
// statement level into a bare TupleLit when more than one element is
// present, per the spec's choice to permit unparenthesized tuples.
func (p *Parser) parseExpressionOrTuple() ast.Expr {
	pos := p.cur.Pos
	first := p.parseExpression()
	if p.cur.Kind != token.COMMA {
		return first
	}
	elements := []ast.Expr{first}
	for p.cur.Kind == token.COMMA {
		p.advance()
		if p.atExpressionEnd() {
			break
		}
		elements = append(elements, p.parseExpression())
	}
	return ast.NewTupleLit(pos, elements)
}

func (p *Parser) atExpressionEnd() bool {
	return p.curIs(token.NEWLINE, token.EOF, token.RPAREN, token.RBRACKET, token.RBRACE, token.EQUAL, token.COLON)
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.cur.Kind == token.OR {
		pos := p.cur.Pos
		p.advance()
		right := p.parseAnd()
		left = ast.NewLogical(pos, token.OR, left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for p.cur.Kind == token.AND {
		pos := p.cur.Pos
		p.advance()
		right := p.parseNot()
		left = ast.NewLogical(pos, token.AND, left, right)
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.cur.Kind == token.NOT {
		pos := p.cur.Pos
		p.advance()
		operand := p.parseNot()
		return ast.NewUnary(pos, token.NOT, operand)
	}
	return p.parseComparison()
}

var comparisonOps = map[token.Kind]bool{
	token.EQEQ: true, token.BANGEQ: true, token.LT: true, token.LE: true,
	token.GT: true, token.GE: true, token.IN: true,
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for comparisonOps[p.cur.Kind] {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseAdditive()
		left = ast.NewBinary(pos, op, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.Kind == token.PLUS || p.cur.Kind == token.MINUS {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(pos, op, left, right)
	}
	return left
}

var multiplicativeOps = map[token.Kind]bool{
	token.STAR: true, token.SLASH: true, token.DOUBLESLASH: true, token.PERCENT: true,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for multiplicativeOps[p.cur.Kind] {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseUnary()
		left = ast.NewBinary(pos, op, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.PLUS || p.cur.Kind == token.MINUS || p.cur.Kind == token.TILDE {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		return ast.NewUnary(pos, op, operand)
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expr {
	left := p.parsePostfix()
	if p.cur.Kind == token.DOUBLESTAR {
		pos := p.cur.Pos
		p.advance()
		right := p.parseUnary()
		return ast.NewBinary(pos, token.DOUBLESTAR, left, right)
	}
	return left
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.LPAREN:
			expr = p.parseCall(expr)
		case token.LBRACKET:
			pos := p.cur.Pos
			p.advance()
			index := p.parseExpression()
			p.expect(token.RBRACKET)
			expr = ast.NewIndexGet(pos, expr, index)
		case token.DOT:
			pos := p.cur.Pos
			p.advance()
			name := p.expect(token.IDENT).Literal
			expr = ast.NewAttributeGet(pos, expr, name)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	pos := p.cur.Pos
	p.advance()
	var args []ast.Arg
	for p.cur.Kind != token.RPAREN {
		if p.cur.Kind == token.IDENT && p.peek.Kind == token.EQUAL {
			name := p.cur.Literal
			p.advance()
			p.advance()
			value := p.parseExpression()
			args = append(args, ast.Arg{Name: name, Value: value})
		} else {
			args = append(args, ast.Arg{Value: p.parseExpression()})
		}
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return ast.NewCall(pos, callee, args)
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NONE:
		p.advance()
		return ast.NewLiteral(tok.Pos, tok.Value)
	case token.IDENT:
		p.advance()
		return ast.NewVariable(tok.Pos, tok.Literal)
	case token.SUPER:
		p.advance()
		return ast.NewSuperRef(tok.Pos)
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListLit()
	case token.LBRACE:
		return p.parseDictOrSetLit()
	case token.LAMBDA:
		return p.parseLambda()
	default:
		p.fail(tok.Pos, "unexpected token %s", tok.Kind)
		return nil
	}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	pos := p.cur.Pos
	p.advance()
	if p.cur.Kind == token.RPAREN {
		p.advance()
		return ast.NewTupleLit(pos, nil)
	}

	first := p.parseExpression()
	if p.cur.Kind != token.COMMA {
		p.expect(token.RPAREN)
		return ast.NewGrouping(pos, first)
	}

	elements := []ast.Expr{first}
	for p.cur.Kind == token.COMMA {
		p.advance()
		if p.cur.Kind == token.RPAREN {
			break
		}
		elements = append(elements, p.parseExpression())
	}
	p.expect(token.RPAREN)
	return ast.NewTupleLit(pos, elements)
}

func (p *Parser) parseListLit() ast.Expr {
	pos := p.cur.Pos
	p.advance()
	var elements []ast.Expr
	for p.cur.Kind != token.RBRACKET {
		elements = append(elements, p.parseExpression())
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACKET)
	return ast.NewListLit(pos, elements)
}

// parseDictOrSetLit disambiguates `{}` (empty dict), `{k: v, ...}`
// (dict), and `{e, ...}` (set).
func (p *Parser) parseDictOrSetLit() ast.Expr {
	pos := p.cur.Pos
	p.advance()
	if p.cur.Kind == token.RBRACE {
		p.advance()
		return ast.NewDictLit(pos, nil, nil)
	}

	first := p.parseExpression()
	if p.cur.Kind == token.COLON {
		p.advance()
		firstValue := p.parseExpression()
		keys := []ast.Expr{first}
		values := []ast.Expr{firstValue}
		for p.cur.Kind == token.COMMA {
			p.advance()
			if p.cur.Kind == token.RBRACE {
				break
			}
			k := p.parseExpression()
			p.expect(token.COLON)
			v := p.parseExpression()
			keys = append(keys, k)
			values = append(values, v)
		}
		p.expect(token.RBRACE)
		return ast.NewDictLit(pos, keys, values)
	}

	elements := []ast.Expr{first}
	for p.cur.Kind == token.COMMA {
		p.advance()
		if p.cur.Kind == token.RBRACE {
			break
		}
		elements = append(elements, p.parseExpression())
	}
	p.expect(token.RBRACE)
	return ast.NewSetLit(pos, elements)
}

func (p *Parser) parseLambda() ast.Expr {
	pos := p.cur.Pos
	p.advance()
	var params []ast.Param
	seenOptional := false
	seenStar := false
	seenDoubleStar := false
	for p.cur.Kind != token.COLON {
		if seenDoubleStar {
			p.fail(p.cur.Pos, "no parameter may follow **kwargs")
		}
		switch p.cur.Kind {
		case token.DOUBLESTAR:
			p.advance()
			name := p.expect(token.IDENT).Literal
			params = append(params, ast.Param{Name: name, Kind: ast.ParamDoubleStar})
			seenDoubleStar = true
		case token.STAR:
			if seenStar {
				p.fail(p.cur.Pos, "only one *args parameter is allowed")
			}
			p.advance()
			name := p.expect(token.IDENT).Literal
			params = append(params, ast.Param{Name: name, Kind: ast.ParamStar})
			seenStar = true
		default:
			name := p.expect(token.IDENT).Literal
			if p.cur.Kind == token.EQUAL {
				p.advance()
				def := p.parseExpression()
				params = append(params, ast.Param{Name: name, Default: def, Kind: ast.ParamOptional})
				seenOptional = true
			} else {
				if seenStar || seenDoubleStar || seenOptional {
					p.fail(p.cur.Pos, "required parameter %q may not follow an optional or variadic parameter", name)
				}
				params = append(params, ast.Param{Name: name, Kind: ast.ParamRequired})
			}
		}
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.COLON)
	body := p.parseExpression()
	return ast.NewLambda(pos, params, body)
}
