package lexer

import (
	"testing"

	"github.com/abraun/serpent/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	l := New(src)
	var out []token.Kind
	for {
		tok := l.NextToken()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return out
}

func assertKinds(t *testing.T, src string, want []token.Kind) {
	t.Helper()
	got := kinds(t, src)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}

func TestSimpleAssignment(t *testing.T) {
	assertKinds(t, "x = 1\n", []token.Kind{
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE, token.EOF,
	})
}

func TestIndentDedent(t *testing.T) {
	src := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	assertKinds(t, src, []token.Kind{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.DEDENT,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestNestedIndentMultipleDedents(t *testing.T) {
	src := "if a:\n    if b:\n        x = 1\ny = 2\n"
	assertKinds(t, src, []token.Kind{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.DEDENT, token.DEDENT,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestBlankAndCommentLinesIgnored(t *testing.T) {
	src := "x = 1\n\n# a comment\n\ny = 2\n"
	assertKinds(t, src, []token.Kind{
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestNoTrailingNewlineStillClosesBlock(t *testing.T) {
	src := "if a:\n    x = 1"
	assertKinds(t, src, []token.Kind{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	})
}

func TestBracketsSuppressNewline(t *testing.T) {
	src := "x = [1,\n2,\n3]\n"
	assertKinds(t, src, []token.Kind{
		token.IDENT, token.EQUAL, token.LBRACKET,
		token.INT, token.COMMA,
		token.INT, token.COMMA,
		token.INT, token.RBRACKET,
		token.NEWLINE, token.EOF,
	})
}

func TestOperators(t *testing.T) {
	src := "a == b != c <= d >= e // f ** g += h -= i *= j /= k //= l %= m **=\n"
	assertKinds(t, src, []token.Kind{
		token.IDENT, token.EQEQ, token.IDENT, token.BANGEQ, token.IDENT,
		token.LE, token.IDENT, token.GE, token.IDENT, token.DOUBLESLASH,
		token.IDENT, token.DOUBLESTAR, token.IDENT, token.PLUSEQ, token.IDENT,
		token.MINUSEQ, token.IDENT, token.STAREQ, token.IDENT, token.SLASHEQ,
		token.IDENT, token.DSLASHEQ, token.IDENT, token.PERCENTEQ, token.IDENT,
		token.DSTAREQ,
		token.NEWLINE, token.EOF,
	})
}

func TestStringLiteralEscapes(t *testing.T) {
	l := New(`"a\nb\tc\\d\"e"` + "\n")
	tok := l.NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("kind = %s, want STRING", tok.Kind)
	}
	want := "a\nb\tc\\d\"e"
	if tok.Value != want {
		t.Errorf("value = %q, want %q", tok.Value, want)
	}
}

func TestNumberLiterals(t *testing.T) {
	l := New("42 3.14 1e10 2.5e-3\n")

	tok := l.NextToken()
	if tok.Kind != token.INT || tok.Value != int64(42) {
		t.Errorf("got %v, want INT 42", tok)
	}

	tok = l.NextToken()
	if tok.Kind != token.FLOAT || tok.Value != 3.14 {
		t.Errorf("got %v, want FLOAT 3.14", tok)
	}

	tok = l.NextToken()
	if tok.Kind != token.FLOAT || tok.Value != 1e10 {
		t.Errorf("got %v, want FLOAT 1e10", tok)
	}

	tok = l.NextToken()
	if tok.Kind != token.FLOAT || tok.Value != 2.5e-3 {
		t.Errorf("got %v, want FLOAT 2.5e-3", tok)
	}
}

func TestKeywordsAndBooleans(t *testing.T) {
	l := New("True False None and or not\n")
	want := []struct {
		kind  token.Kind
		value interface{}
	}{
		{token.TRUE, true},
		{token.FALSE, false},
		{token.NONE, nil},
		{token.AND, nil},
		{token.OR, nil},
		{token.NOT, nil},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Kind != w.kind {
			t.Fatalf("token[%d].Kind = %s, want %s", i, tok.Kind, w.kind)
		}
		if w.kind == token.TRUE || w.kind == token.FALSE || w.kind == token.NONE {
			if tok.Value != w.value {
				t.Errorf("token[%d].Value = %v, want %v", i, tok.Value, w.value)
			}
		}
	}
}

func TestTabIndentation(t *testing.T) {
	src := "if a:\n\tx = 1\n"
	assertKinds(t, src, []token.Kind{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.EQUAL, token.INT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	})
}

func TestUnterminatedStringRecordsError(t *testing.T) {
	l := New("\"abc\n")
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected a lexer error for unterminated string")
	}
}

func TestIllegalCharacterRecordsError(t *testing.T) {
	l := New("x = $\n")
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected a lexer error for illegal character")
	}
}

func TestFunctionDefLexesEndToEnd(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	assertKinds(t, src, []token.Kind{
		token.DEF, token.IDENT, token.LPAREN, token.IDENT, token.COMMA,
		token.IDENT, token.RPAREN, token.COLON, token.NEWLINE,
		token.INDENT,
		token.RETURN, token.IDENT, token.PLUS, token.IDENT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	})
}
