package interp

import "testing"

func TestMissingRequiredArgumentIsArityError(t *testing.T) {
	src := "def f(a, b):\n  return a\nf(1)\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestTooManyPositionalArgumentsIsArityError(t *testing.T) {
	src := "def f(a):\n  return a\nf(1, 2)\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestUnexpectedKeywordArgumentIsArityError(t *testing.T) {
	src := "def f(a):\n  return a\nf(1, z=2)\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestKeywordArgumentFillsPositionalParam(t *testing.T) {
	src := "def f(a, b):\n  return a+b\nprint(f(b=2, a=1))\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3\n" {
		t.Errorf("got %q, want %q", out, "3\n")
	}
}

func TestDefaultEvaluatedAtCallTimeInDefiningEnvironment(t *testing.T) {
	src := "n = 1\ndef f(a=n):\n  return a\nn = 2\nprint(f())\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n" {
		t.Errorf("got %q, want %q", out, "2\n")
	}
}

func TestLambdaCapturesEnclosingScope(t *testing.T) {
	src := "x = 10\nadd = lambda y: x + y\nprint(add(5))\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "15\n" {
		t.Errorf("got %q, want %q", out, "15\n")
	}
}

func TestRecursionDepthIsGuarded(t *testing.T) {
	src := "def loop(n):\n  return loop(n+1)\nloop(0)\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected a RecursionError")
	}
}

func TestCallingNonCallableIsTypeError(t *testing.T) {
	src := "x = 1\nx()\n"
	_, _, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestAugAssignOnVariable(t *testing.T) {
	src := "x = 1\nx += 2\nprint(x)\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3\n" {
		t.Errorf("got %q, want %q", out, "3\n")
	}
}

func TestAugAssignOnIndexTarget(t *testing.T) {
	src := "xs = [1, 2, 3]\nxs[0] += 10\nprint(xs)\n"
	out, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[11, 2, 3]\n" {
		t.Errorf("got %q, want %q", out, "[11, 2, 3]\n")
	}
}
