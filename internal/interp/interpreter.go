package interp

import (
	"bufio"
	"io"

	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
	"github.com/abraun/serpent/internal/vfs"
)

// maxCallDepth bounds the tree-walking recursion used for guest function
// calls, converting a host stack overflow into a reported RecursionError.
// Comfortably above spec.md §3's 1,000-frame floor.
const maxCallDepth = 10000

// frame records the lexically enclosing method context for a single
// call, so `super` resolves against the *declaring* class rather than
// the receiver's dynamic class.
type frame struct {
	self  Value
	class *ClassValue
}

// Interpreter executes a parsed program against a tree of environments.
// It owns the global scope, the built-in registry, the host-facing
// stdout/stdin streams, and the per-interpreter virtual filesystem.
type Interpreter struct {
	global *Environment
	stdout io.Writer
	stdin  *bufio.Reader
	vfs    *vfs.FS

	frames []frame
	depth  int
}

// Option configures an Interpreter at construction time, mirroring the
// teacher's functional-option pattern on Lexer/Parser.
type Option func(*Interpreter)

// WithStdin sets the reader backing the input() built-in. Without it,
// input() reads nothing and returns an empty string; callers that never
// invoke input() may omit this.
func WithStdin(r io.Reader) Option {
	return func(it *Interpreter) { it.stdin = bufio.NewReader(r) }
}

// New creates a fresh Interpreter: an empty VFS, an empty global
// environment seeded with every built-in spec.md §4.3 names, and stdout
// wired to w (used by print and any host-visible diagnostics).
func New(w io.Writer, opts ...Option) *Interpreter {
	it := &Interpreter{
		global: NewEnvironment(),
		stdout: w,
		vfs:    vfs.New(),
	}
	for _, opt := range opts {
		opt(it)
	}
	registerBuiltins(it)
	return it
}

// Register binds name to fn in the global scope, overwriting any prior
// binding (built-in or host-registered).
func (it *Interpreter) Register(name string, fn NativeFunc) {
	it.global.Define(name, &NativeFunctionValue{Name: name, Fn: fn})
}

// VFS exposes the interpreter's in-memory filesystem for host
// introspection (e.g. reading back a file the guest program wrote).
func (it *Interpreter) VFS() *vfs.FS { return it.vfs }

// Interpret executes stmts in order against the global environment.
// Side effects (stdout writes, VFS mutations, global bindings) persist
// across multiple Interpret calls on the same Interpreter. The first
// uncaught error aborts execution and is returned.
func (it *Interpreter) Interpret(stmts []ast.Stmt) error {
	c, err := it.execBlock(stmts, it.global)
	if err != nil {
		return err
	}
	switch c.kind {
	case ctrlBreak:
		return errors.NewRuntimeError(errors.TypeError, token.Position{}, "'break' outside loop")
	case ctrlContinue:
		return errors.NewRuntimeError(errors.TypeError, token.Position{}, "'continue' outside loop")
	case ctrlReturn:
		return errors.NewRuntimeError(errors.TypeError, token.Position{}, "'return' outside function")
	}
	return nil
}

// Eval evaluates a single expression against env.
func (it *Interpreter) Eval(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Value), nil
	case *ast.ListLit:
		elems, err := it.evalExprList(e.Elements, env)
		if err != nil {
			return nil, err
		}
		return NewList(elems), nil
	case *ast.TupleLit:
		elems, err := it.evalExprList(e.Elements, env)
		if err != nil {
			return nil, err
		}
		return NewTuple(elems), nil
	case *ast.SetLit:
		return it.evalSetLit(e, env)
	case *ast.DictLit:
		return it.evalDictLit(e, env)
	case *ast.Variable:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, errors.NewRuntimeError(errors.NameError, e.Pos(), "name %q is not defined", e.Name)
		}
		return v, nil
	case *ast.SuperRef:
		return it.evalSuperRef(e)
	case *ast.Grouping:
		return it.Eval(e.Expr, env)
	case *ast.Unary:
		v, err := it.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return it.evalUnary(e.Op, v, e.Pos())
	case *ast.Binary:
		left, err := it.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := it.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return it.evalBinary(e.Op, left, right, e.Pos())
	case *ast.Logical:
		return it.evalLogical(e, env)
	case *ast.Call:
		return it.evalCall(e, env)
	case *ast.IndexGet:
		obj, err := it.Eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := it.Eval(e.Index, env)
		if err != nil {
			return nil, err
		}
		return it.indexGet(obj, idx, e.Pos())
	case *ast.AttributeGet:
		obj, err := it.Eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		return it.getAttribute(obj, e.Name, e.Pos())
	case *ast.Assign:
		return it.evalAssign(e, env)
	case *ast.AugAssign:
		return it.evalAugAssign(e, env)
	case *ast.Lambda:
		return &FunctionValue{Name: "<lambda>", Params: e.Params, LambdaExpr: e.Body, Env: env}, nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, expr.Pos(), "cannot evaluate %T", expr)
	}
}

func (it *Interpreter) evalExprList(exprs []ast.Expr, env *Environment) ([]Value, error) {
	out := make([]Value, 0, len(exprs))
	for _, x := range exprs {
		v, err := it.Eval(x, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Interpreter) evalSetLit(e *ast.SetLit, env *Environment) (Value, error) {
	s := NewSet()
	for _, x := range e.Elements {
		v, err := it.Eval(x, env)
		if err != nil {
			return nil, err
		}
		h, err := hashValue(v)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, x.Pos(), "unhashable type: %q", v.Type())
		}
		s.Add(h, v)
	}
	return s, nil
}

func (it *Interpreter) evalDictLit(e *ast.DictLit, env *Environment) (Value, error) {
	d := NewDict()
	for i := range e.Keys {
		k, err := it.Eval(e.Keys[i], env)
		if err != nil {
			return nil, err
		}
		v, err := it.Eval(e.Values[i], env)
		if err != nil {
			return nil, err
		}
		h, err := hashValue(k)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, e.Keys[i].Pos(), "unhashable type: %q", k.Type())
		}
		d.Set(h, k, v)
	}
	return d, nil
}

func (it *Interpreter) evalLogical(e *ast.Logical, env *Environment) (Value, error) {
	left, err := it.Eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.AND:
		if !truthy(left) {
			return left, nil
		}
	case token.OR:
		if truthy(left) {
			return left, nil
		}
	}
	return it.Eval(e.Right, env)
}

func (it *Interpreter) evalSuperRef(e *ast.SuperRef) (Value, error) {
	if len(it.frames) == 0 {
		return nil, errors.NewRuntimeError(errors.NameError, e.Pos(), "'super' used outside a method body")
	}
	top := it.frames[len(it.frames)-1]
	if top.class == nil {
		return nil, errors.NewRuntimeError(errors.NameError, e.Pos(), "'super' used outside a method body")
	}
	return &SuperProxyValue{Class: top.class.Superclass, Self: top.self}, nil
}

// literalValue converts a decoded token literal (interface{}: int64,
// float64, string, bool, or nil) into its runtime Value.
func literalValue(v interface{}) Value {
	switch x := v.(type) {
	case int64:
		return IntValue(x)
	case float64:
		return FloatValue(x)
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case nil:
		return None
	default:
		return None
	}
}
