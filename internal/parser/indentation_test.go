package parser

import (
	"testing"

	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/lexer"
	"github.com/google/go-cmp/cmp"
)

// shapeStmts/shapeExpr reduce an AST to a position-free, comparable
// value: go-cmp can then diff two parses structurally without tripping
// over the differing source positions two indentation styles produce.
func shapeStmts(stmts []ast.Stmt) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = shapeStmt(s)
	}
	return out
}

func shapeStmt(s ast.Stmt) any {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return []any{"ExprStmt", shapeExpr(n.X)}
	case *ast.If:
		elifs := make([]any, len(n.Elifs))
		for i, e := range n.Elifs {
			elifs[i] = []any{shapeExpr(e.Cond), shapeStmts(e.Body)}
		}
		return []any{"If", shapeExpr(n.Cond), shapeStmts(n.Then), elifs, shapeStmts(n.Else)}
	case *ast.While:
		return []any{"While", shapeExpr(n.Cond), shapeStmts(n.Body)}
	case *ast.ForIn:
		return []any{"ForIn", n.Name, shapeExpr(n.Iterable), shapeStmts(n.Body)}
	case *ast.FuncDef:
		return []any{"FuncDef", n.Name, shapeParams(n.Params), shapeStmts(n.Body)}
	case *ast.ClassDef:
		methods := make([]any, len(n.Methods))
		for i, m := range n.Methods {
			methods[i] = shapeStmt(m)
		}
		return []any{"ClassDef", n.Name, n.Superclass, methods}
	case *ast.Return:
		if n.Value == nil {
			return []any{"Return", nil}
		}
		return []any{"Return", shapeExpr(n.Value)}
	case *ast.Pass:
		return "Pass"
	case *ast.Break:
		return "Break"
	case *ast.Continue:
		return "Continue"
	default:
		return nil
	}
}

func shapeExpr(e ast.Expr) any {
	switch n := e.(type) {
	case *ast.Literal:
		return []any{"Literal", n.Value}
	case *ast.Variable:
		return []any{"Variable", n.Name}
	case *ast.Binary:
		return []any{"Binary", n.Op.String(), shapeExpr(n.Left), shapeExpr(n.Right)}
	case *ast.Logical:
		return []any{"Logical", n.Op.String(), shapeExpr(n.Left), shapeExpr(n.Right)}
	case *ast.Unary:
		return []any{"Unary", n.Op.String(), shapeExpr(n.Right)}
	case *ast.Call:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = []any{a.Name, shapeExpr(a.Value)}
		}
		return []any{"Call", shapeExpr(n.Callee), args}
	case *ast.AttributeGet:
		return []any{"AttributeGet", shapeExpr(n.Object), n.Name}
	case *ast.IndexGet:
		return []any{"IndexGet", shapeExpr(n.Object), shapeExpr(n.Index)}
	case *ast.Assign:
		return []any{"Assign", shapeExpr(n.Target), shapeExpr(n.Value)}
	default:
		return nil
	}
}

func shapeParams(params []ast.Param) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = []any{p.Name, p.Kind.String()}
	}
	return out
}

func parseSource(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	l := lexer.New(src)
	p := New(l, src, "<test>")
	stmts, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return stmts
}

// TestIndentationSoundness checks that two programs with the same block
// structure, indented differently (tabs vs. two-space vs. four-space),
// parse to the same AST shape.
func TestIndentationSoundness(t *testing.T) {
	spaces := "def f(n):\n  if n > 0:\n    while n > 0:\n      n = n - 1\n  else:\n    return 0\n  return n\n"
	tabs := "def f(n):\n\tif n > 0:\n\t\twhile n > 0:\n\t\t\tn = n - 1\n\telse:\n\t\treturn 0\n\treturn n\n"
	wide := "def f(n):\n    if n > 0:\n        while n > 0:\n            n = n - 1\n    else:\n        return 0\n    return n\n"

	want := shapeStmts(parseSource(t, spaces))
	for name, src := range map[string]string{"tabs": tabs, "four-space": wide} {
		t.Run(name, func(t *testing.T) {
			got := shapeStmts(parseSource(t, src))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("AST shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
