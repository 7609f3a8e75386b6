package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/abraun/serpent/internal/lexer"
	"github.com/abraun/serpent/internal/parser"
	"github.com/google/go-cmp/cmp"
)

// run parses and interprets src against a fresh Interpreter writing to
// stdout, returning stdout's contents and any error Interpret reported.
func run(t *testing.T, src string) (string, *Interpreter, error) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l, src, "<test>")
	stmts, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	it := New(&out)
	rerr := it.Interpret(stmts)
	return out.String(), it, rerr
}

func TestFibonacciRecursion(t *testing.T) {
	src := "def fibo(n):\n  if n<=2:\n    return 1\n  return fibo(n-1)+fibo(n-2)\nprint(fibo(10))\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "55\n" {
		t.Errorf("got %q, want %q", out, "55\n")
	}
}

func TestForRange(t *testing.T) {
	src := "for i in range(3):\n  print(i)\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0\n1\n2\n" {
		t.Errorf("got %q, want %q", out, "0\n1\n2\n")
	}
}

func TestNativeRegistration(t *testing.T) {
	src := "for i in range(3):\n  print(randint(1,6))\n"
	l := lexer.New(src)
	p := parser.New(l, src, "<test>")
	stmts, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	it := New(&out)
	it.Register("randint", func(args []Value, kwargs map[string]Value) (Value, error) {
		return IntValue(4), nil
	})
	if err := it.Interpret(stmts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "4\n4\n4\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestVFSRoundTrip(t *testing.T) {
	write := "file = open(\"f.txt\", \"w\")\nfile.write(\"Hi\")\nfile.close()\n"
	l := lexer.New(write)
	p := parser.New(l, write, "<test>")
	stmts, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	it := New(&out)
	if err := it.Interpret(stmts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	read := "file = open(\"f.txt\", \"r\")\nprint(file.readline())\n"
	l2 := lexer.New(read)
	p2 := parser.New(l2, read, "<test>")
	stmts2, err := p2.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out.Reset()
	if err := it.Interpret(stmts2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "Hi\n" {
		t.Errorf("got %q, want %q", out.String(), "Hi\n")
	}
}

func TestClassesAndSuper(t *testing.T) {
	src := "class A:\n  def g(self):\n    return 1\nclass B(A):\n  def g(self):\n    return super.g()+1\nprint(B().g())\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n" {
		t.Errorf("got %q, want %q", out, "2\n")
	}
}

func TestShortCircuitAvoidsZeroDivision(t *testing.T) {
	src := "def boom():\n  return 1/0\nprint(False and boom())\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "False\n" {
		t.Errorf("got %q, want %q", out, "False\n")
	}
}

func TestKwargsAndDefaults(t *testing.T) {
	src := "def f(a, b=10, *r, **k):\n  return (a,b,r,k)\nprint(f(1, 2, 3, 4, x=5))\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(1, 2, (3, 4), {'x': 5})\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestClosureLateBinding(t *testing.T) {
	src := "x = 1\ndef f():\n  return x\nx = 2\nprint(f())\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n" {
		t.Errorf("got %q, want %q", out, "2\n")
	}
}

func TestMethodBindingIdentity(t *testing.T) {
	src := "class C:\n  def m(self):\n    return 1\nc = C()\na = c.m\nb = c.m\nprint(a() == b())\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "True\n" {
		t.Errorf("got %q, want %q", out, "True\n")
	}
}

func TestUndefinedNameRaisesNameError(t *testing.T) {
	src := "print(missing)\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "NameError") {
		t.Errorf("expected a NameError, got %v", err)
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	src := "break\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestTruthinessTable(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"0", "False"},
		{"1", "True"},
		{"0.0", "False"},
		{"\"\"", "False"},
		{"\"x\"", "True"},
		{"[]", "False"},
		{"[1]", "True"},
		{"None", "False"},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			src := "print(bool(" + c.expr + "))\n"
			out, _, err := run(t, src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != c.want+"\n" {
				t.Errorf("bool(%s): got %q, want %q", c.expr, out, c.want+"\n")
			}
		})
	}
}

// flatten reduces a composite Value to plain Go values (map/slice/
// scalar) so go-cmp can structurally diff list/tuple/dict results
// without tripping over DictValue/SetValue's unexported hash buckets.
func flatten(v Value) any {
	switch x := v.(type) {
	case IntValue:
		return int64(x)
	case FloatValue:
		return float64(x)
	case StringValue:
		return string(x)
	case BoolValue:
		return bool(x)
	case NoneValue:
		return nil
	case *ListValue:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = flatten(e)
		}
		return out
	case *TupleValue:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = flatten(e)
		}
		return out
	case *DictValue:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			h, _ := hashValue(k)
			val, _ := x.Get(h, k)
			out[k.String()] = flatten(val)
		}
		return out
	default:
		return v.String()
	}
}

func TestCompositeValueStructuralEquality(t *testing.T) {
	src := "x = [1, 2, {\"a\": [3, 4]}, (5, 6)]\n"
	_, it, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := it.global.Get("x")
	if !ok {
		t.Fatal("x not bound after Interpret")
	}

	want := []any{
		int64(1),
		int64(2),
		map[string]any{"a": []any{int64(3), int64(4)}},
		[]any{int64(5), int64(6)},
	}
	if diff := cmp.Diff(want, flatten(got)); diff != "" {
		t.Errorf("composite value mismatch (-want +got):\n%s", diff)
	}
}

func TestUnparenthesizedTupleAssignment(t *testing.T) {
	src := "x = 1, 2, 3\nprint(x)\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "(1, 2, 3)\n" {
		t.Errorf("got %q, want %q", out, "(1, 2, 3)\n")
	}
}
