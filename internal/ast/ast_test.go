package ast

import (
	"testing"

	"github.com/abraun/serpent/internal/token"
	"github.com/google/go-cmp/cmp"
)

func TestNodesImplementInterfaces(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}

	var exprs = []Expr{
		NewLiteral(pos, int64(1)),
		NewListLit(pos, nil),
		NewTupleLit(pos, nil),
		NewSetLit(pos, nil),
		NewDictLit(pos, nil, nil),
		NewVariable(pos, "x"),
		NewSuperRef(pos),
		NewGrouping(pos, NewLiteral(pos, int64(1))),
		NewUnary(pos, token.MINUS, NewLiteral(pos, int64(1))),
		NewBinary(pos, token.PLUS, NewLiteral(pos, int64(1)), NewLiteral(pos, int64(2))),
		NewLogical(pos, token.AND, NewLiteral(pos, true), NewLiteral(pos, false)),
		NewCall(pos, NewVariable(pos, "f"), nil),
		NewIndexGet(pos, NewVariable(pos, "x"), NewLiteral(pos, int64(0))),
		NewAttributeGet(pos, NewVariable(pos, "x"), "attr"),
		NewAssign(pos, NewVariable(pos, "x"), NewLiteral(pos, int64(1))),
		NewAugAssign(pos, NewVariable(pos, "x"), token.PLUS, NewLiteral(pos, int64(1))),
		NewLambda(pos, nil, NewLiteral(pos, int64(1))),
	}
	for _, e := range exprs {
		if e.Pos() != pos {
			t.Errorf("%T.Pos() = %v, want %v", e, e.Pos(), pos)
		}
	}

	var stmts = []Stmt{
		NewExprStmt(pos, NewLiteral(pos, int64(1))),
		NewFuncDef(pos, "f", nil, nil),
		NewClassDef(pos, "C", "", nil),
		NewIf(pos, NewLiteral(pos, true), nil, nil, nil),
		NewWhile(pos, NewLiteral(pos, true), nil),
		NewForIn(pos, "x", NewVariable(pos, "xs"), nil),
		NewReturn(pos, nil),
		NewPass(pos),
		NewBreak(pos),
		NewContinue(pos),
	}
	for _, s := range stmts {
		if s.Pos() != pos {
			t.Errorf("%T.Pos() = %v, want %v", s, s.Pos(), pos)
		}
	}
}

// TestBinaryStructuralEquality diffs two independently-built expression
// trees with go-cmp rather than a hand-rolled Equal method; base's pos
// field is unexported, so the comparer needs AllowUnexported to recurse
// into it instead of panicking.
func TestBinaryStructuralEquality(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}
	opts := cmp.AllowUnexported(base{})

	a := NewBinary(pos, token.PLUS, NewLiteral(pos, int64(1)), NewLiteral(pos, int64(2)))
	b := NewBinary(pos, token.PLUS, NewLiteral(pos, int64(1)), NewLiteral(pos, int64(2)))
	if diff := cmp.Diff(a, b, opts); diff != "" {
		t.Errorf("structurally identical trees compared unequal (-a +b):\n%s", diff)
	}

	c := NewBinary(pos, token.PLUS, NewLiteral(pos, int64(1)), NewLiteral(pos, int64(3)))
	if diff := cmp.Diff(a, c, opts); diff == "" {
		t.Error("expected trees with a differing literal to compare unequal")
	}
}

func TestParamKindString(t *testing.T) {
	tests := map[ParamKind]string{
		ParamRequired:   "required",
		ParamOptional:   "optional",
		ParamStar:       "*args",
		ParamDoubleStar: "**kwargs",
		ParamKind(99):   "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", kind, got, want)
		}
	}
}
