// Package lexer implements an indentation-sensitive lexical scanner for
// the guest language.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
)

// Lexer scans source text into a token stream, synthesizing NEWLINE,
// INDENT, and DEDENT tokens from leading whitespace the way the guest
// language's surface syntax requires.
//
// Column positions count runes, not bytes, matching how the teacher
// implementation reports positions for multi-byte source.
type Lexer struct {
	input        string
	errs         []*errors.LexerError
	position     int
	readPosition int
	line         int
	column       int
	ch           rune

	tabWidth int
	tracing  bool

	indents     []int
	parenDepth  int
	atLineStart bool
	pending     []token.Token
	emittedAny  bool
	finished    bool
}

// Option configures a Lexer. Mirrors the teacher's LexerOption pattern.
type Option func(*Lexer)

// WithTabWidth sets the column width a tab advances to (rounding up to
// the next multiple). Defaults to 8, per spec.
func WithTabWidth(width int) Option {
	return func(l *Lexer) { l.tabWidth = width }
}

// WithTracing enables debug tracing of emitted tokens to stderr-like
// hooks in the future; currently a no-op placeholder kept for parity
// with the teacher's configuration surface.
func WithTracing(trace bool) Option {
	return func(l *Lexer) { l.tracing = trace }
}

// New creates a Lexer for source, ready to produce tokens via NextToken.
func New(source string, opts ...Option) *Lexer {
	l := &Lexer{
		input:       source,
		line:        1,
		column:      0,
		tabWidth:    8,
		indents:     []int{0},
		atLineStart: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

// Errors returns all lexical errors accumulated so far.
func (l *Lexer) Errors() []*errors.LexerError { return l.errs }

func (l *Lexer) addError(pos token.Position, format string, args ...interface{}) {
	l.errs = append(l.errs, &errors.LexerError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if r == utf8.RuneError && size == 1 {
		l.addError(l.currentPos(), "invalid UTF-8 encoding")
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position}
}

// NextToken returns the next token in the stream. It drains any tokens
// queued by indentation processing (INDENT/DEDENT bursts) before scanning
// for more input.
func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.finished {
		return token.New(token.EOF, "", l.currentPos())
	}

	if l.atLineStart && l.parenDepth == 0 {
		if tok, ok := l.handleLineStart(); ok {
			return tok
		}
	}

	return l.scanToken()
}

// handleLineStart measures indentation at the start of a new logical
// line, skipping blank lines and comment-only lines, and queues
// INDENT/DEDENT tokens as needed. It always returns ok=true: if EOF is
// reached while measuring, it returns the first of finalizeIndent's
// closing tokens (NEWLINE/DEDENTs/EOF).
func (l *Lexer) handleLineStart() (token.Token, bool) {
	for {
		width := 0
		for {
			switch l.ch {
			case ' ':
				width++
				l.readChar()
				continue
			case '\t':
				width += l.tabWidth - (width % l.tabWidth)
				l.readChar()
				continue
			}
			break
		}

		if l.ch == '\n' {
			l.readChar()
			l.line++
			l.column = 0
			continue
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == 0 {
			return l.finalizeIndent(), true
		}

		l.atLineStart = false
		return l.adjustIndent(width), true
	}
}

func (l *Lexer) adjustIndent(width int) token.Token {
	top := l.indents[len(l.indents)-1]
	pos := l.currentPos()

	if width > top {
		l.indents = append(l.indents, width)
		return token.New(token.INDENT, "", pos)
	}

	if width == top {
		return l.scanTokenInto(nil)
	}

	var toks []token.Token
	for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
		l.indents = l.indents[:len(l.indents)-1]
		toks = append(toks, token.New(token.DEDENT, "", pos))
	}
	if l.indents[len(l.indents)-1] != width {
		l.addError(pos, "unindent does not match any outer indentation level")
	}
	return l.scanTokenInto(toks)
}

// scanTokenInto scans one real token and queues it after the given
// already-decided tokens (typically DEDENTs), returning the first.
func (l *Lexer) scanTokenInto(before []token.Token) token.Token {
	if len(before) == 0 {
		return l.scanToken()
	}
	next := l.scanToken()
	rest := append([]token.Token{next}, l.pending...)
	l.pending = append(append([]token.Token{}, before...), rest...)
	first := l.pending[0]
	l.pending = l.pending[1:]
	return first
}

// finalizeIndent is called once EOF is reached: emits a NEWLINE (if the
// last logical line had content and no trailing newline), then one
// DEDENT per remaining open indentation level, then EOF; it returns the
// first of these and queues the rest, and marks the lexer finished.
func (l *Lexer) finalizeIndent() token.Token {
	pos := l.currentPos()
	var toks []token.Token
	if l.emittedAny {
		toks = append(toks, token.New(token.NEWLINE, "", pos))
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		toks = append(toks, token.New(token.DEDENT, "", pos))
	}
	toks = append(toks, token.New(token.EOF, "", pos))
	l.finished = true
	l.pending = toks
	first := l.pending[0]
	l.pending = l.pending[1:]
	return first
}

func (l *Lexer) skipInlineWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// scanToken produces the next real (non-indentation) token, handling
// comments, line continuation inside brackets, and NEWLINE synthesis.
func (l *Lexer) scanToken() token.Token {
	for {
		l.skipInlineWhitespace()

		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '\n' {
			l.readChar()
			line := l.line
			l.line++
			l.column = 0
			if l.parenDepth > 0 {
				continue
			}
			l.atLineStart = true
			pos := token.Position{Line: line, Column: 0}
			// Nothing has been emitted on the new logical line yet, so
			// finalizeIndent adds no second NEWLINE if EOF follows.
			l.emittedAny = false
			return token.New(token.NEWLINE, "", pos)
		}

		break
	}

	pos := l.currentPos()

	if l.ch == 0 {
		return l.finalizeIndent()
	}

	l.emittedAny = true

	switch {
	case isIdentStart(l.ch):
		return l.scanIdentifier(pos)
	case isDigit(l.ch):
		return l.scanNumber(pos)
	case l.ch == '\'' || l.ch == '"':
		return l.scanString(pos)
	}

	return l.scanOperator(pos)
}

func (l *Lexer) scanIdentifier(pos token.Position) token.Token {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	kind := token.LookupIdent(lit)
	switch kind {
	case token.TRUE:
		return token.NewLiteral(kind, lit, true, pos)
	case token.FALSE:
		return token.NewLiteral(kind, lit, false, pos)
	case token.NONE:
		return token.NewLiteral(kind, lit, nil, pos)
	default:
		return token.New(kind, lit, pos)
	}
}

func (l *Lexer) scanNumber(pos token.Position) token.Token {
	start := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			l.addError(pos, "malformed number: missing exponent digits")
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lit := l.input[start:l.position]
	if isFloat {
		return token.NewLiteral(token.FLOAT, lit, parseFloat(lit), pos)
	}
	return token.NewLiteral(token.INT, lit, parseInt(lit), pos)
}

func (l *Lexer) scanString(pos token.Position) token.Token {
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.addError(pos, "unterminated string literal")
			break
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '\'':
				sb.WriteRune('\'')
			case '"':
				sb.WriteRune('"')
			default:
				l.addError(l.currentPos(), "unknown escape sequence '\\%c'", l.ch)
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	}
	return token.NewLiteral(token.STRING, sb.String(), sb.String(), pos)
}

type opHandler func(*Lexer, token.Position) token.Token

var bracketOpen = map[rune]bool{'(': true, '[': true, '{': true}
var bracketClose = map[rune]bool{')': true, ']': true, '}': true}

func (l *Lexer) scanOperator(pos token.Position) token.Token {
	ch := l.ch

	if bracketOpen[ch] {
		l.parenDepth++
	} else if bracketClose[ch] {
		if l.parenDepth > 0 {
			l.parenDepth--
		}
	}

	if handler, ok := operatorHandlers[ch]; ok {
		return handler(l, pos)
	}

	l.addError(pos, "illegal character %q", ch)
	lit := string(ch)
	l.readChar()
	return token.New(token.ILLEGAL, lit, pos)
}

var operatorHandlers = map[rune]opHandler{
	'(': simple(token.LPAREN), ')': simple(token.RPAREN),
	'[': simple(token.LBRACKET), ']': simple(token.RBRACKET),
	'{': simple(token.LBRACE), '}': simple(token.RBRACE),
	',': simple(token.COMMA), '.': simple(token.DOT),
	':': simple(token.COLON), ';': simple(token.SEMICOLON),
	'~': simple(token.TILDE),
	'+': (*Lexer).handlePlus,
	'-': (*Lexer).handleMinus,
	'*': (*Lexer).handleStar,
	'/': (*Lexer).handleSlash,
	'%': (*Lexer).handlePercent,
	'=': (*Lexer).handleEqual,
	'!': (*Lexer).handleBang,
	'<': (*Lexer).handleLess,
	'>': (*Lexer).handleGreater,
}

func simple(kind token.Kind) opHandler {
	return func(l *Lexer, pos token.Position) token.Token {
		lit := string(l.ch)
		l.readChar()
		return token.New(kind, lit, pos)
	}
}

func (l *Lexer) handlePlus(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.PLUSEQ, "+=", pos)
	}
	return token.New(token.PLUS, "+", pos)
}

func (l *Lexer) handleMinus(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.MINUSEQ, "-=", pos)
	}
	return token.New(token.MINUS, "-", pos)
}

func (l *Lexer) handleStar(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '*' {
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.New(token.DSTAREQ, "**=", pos)
		}
		return token.New(token.DOUBLESTAR, "**", pos)
	}
	if l.ch == '=' {
		l.readChar()
		return token.New(token.STAREQ, "*=", pos)
	}
	return token.New(token.STAR, "*", pos)
}

func (l *Lexer) handleSlash(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '/' {
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.New(token.DSLASHEQ, "//=", pos)
		}
		return token.New(token.DOUBLESLASH, "//", pos)
	}
	if l.ch == '=' {
		l.readChar()
		return token.New(token.SLASHEQ, "/=", pos)
	}
	return token.New(token.SLASH, "/", pos)
}

func (l *Lexer) handlePercent(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.PERCENTEQ, "%=", pos)
	}
	return token.New(token.PERCENT, "%", pos)
}

func (l *Lexer) handleEqual(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.EQEQ, "==", pos)
	}
	return token.New(token.EQUAL, "=", pos)
}

func (l *Lexer) handleBang(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.BANGEQ, "!=", pos)
	}
	l.addError(pos, "illegal character '!'")
	return token.New(token.ILLEGAL, "!", pos)
}

func (l *Lexer) handleLess(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.LE, "<=", pos)
	}
	return token.New(token.LT, "<", pos)
}

func (l *Lexer) handleGreater(pos token.Position) token.Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return token.New(token.GE, ">=", pos)
	}
	return token.New(token.GT, ">", pos)
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool { return '0' <= ch && ch <= '9' }

func parseInt(lit string) int64 {
	v, _ := strconv.ParseInt(lit, 10, 64)
	return v
}

func parseFloat(lit string) float64 {
	v, _ := strconv.ParseFloat(lit, 64)
	return v
}
