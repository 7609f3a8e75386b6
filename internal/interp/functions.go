package interp

import (
	"sort"

	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
)

func (it *Interpreter) evalCall(e *ast.Call, env *Environment) (Value, error) {
	callee, err := it.Eval(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(e.Args))
	kwargs := make(map[string]Value)
	for _, a := range e.Args {
		v, err := it.Eval(a.Value, env)
		if err != nil {
			return nil, err
		}
		if a.Name != "" {
			kwargs[a.Name] = v
		} else {
			args = append(args, v)
		}
	}
	return it.callValue(callee, args, kwargs, e.Pos())
}

// callValue implements the function-call protocol of spec.md §4.3: a
// class constructs and initializes a new instance, a bound method
// prepends its receiver, and anything else must be a callable.
func (it *Interpreter) callValue(callee Value, args []Value, kwargs map[string]Value, pos token.Position) (Value, error) {
	switch c := callee.(type) {
	case *ClassValue:
		inst := NewInstance(c)
		if initFn, _ := c.LookupMethod("__init__"); initFn != nil {
			if _, err := it.invokeFunction(initFn, inst, args, kwargs, pos); err != nil {
				return nil, err
			}
		} else if len(args) > 0 || len(kwargs) > 0 {
			return nil, errors.NewRuntimeError(errors.ArityError, pos, "%s() takes no arguments", c.Name)
		}
		return inst, nil
	case *BoundMethodValue:
		return it.invokeFunction(c.Fn, c.Receiver, args, kwargs, pos)
	case *FunctionValue:
		return it.invokeFunction(c, nil, args, kwargs, pos)
	case *NativeFunctionValue:
		v, err := c.Fn(args, kwargs)
		if err != nil {
			return nil, wrapNativeError(err, pos)
		}
		return v, nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "%q object is not callable", callee.Type())
	}
}

// wrapNativeError lets a native function return a plain error (e.g.
// strconv.ErrSyntax) and still surface with source position; a native
// function that already returns a *errors.RuntimeError is passed
// through unchanged.
func wrapNativeError(err error, pos token.Position) error {
	if re, ok := err.(*errors.RuntimeError); ok {
		if re.Pos == (token.Position{}) {
			re.Pos = pos
		}
		return re
	}
	return errors.NewRuntimeError(errors.ValueError, pos, "%s", err.Error())
}

// invokeFunction runs fn's body (or, for a lambda, its expression)
// against a fresh environment bound from receiver/args/kwargs.
// receiver is non-nil only when fn is called through a bound method or
// as a class's __init__; an unbound method call passes self among args.
func (it *Interpreter) invokeFunction(fn *FunctionValue, receiver Value, args []Value, kwargs map[string]Value, pos token.Position) (Value, error) {
	it.depth++
	defer func() { it.depth-- }()
	if it.depth > maxCallDepth {
		return nil, errors.NewRuntimeError(errors.RecursionError, pos, "maximum recursion depth exceeded")
	}

	callArgs := args
	if receiver != nil {
		callArgs = make([]Value, 0, len(args)+1)
		callArgs = append(callArgs, receiver)
		callArgs = append(callArgs, args...)
	}

	env, err := it.bindArgs(fn, callArgs, kwargs, pos)
	if err != nil {
		return nil, err
	}

	if fn.DefiningClass != nil && len(callArgs) > 0 {
		it.frames = append(it.frames, frame{self: callArgs[0], class: fn.DefiningClass})
		defer func() { it.frames = it.frames[:len(it.frames)-1] }()
	}

	if fn.LambdaExpr != nil {
		return it.Eval(fn.LambdaExpr, env)
	}

	c, err := it.execBlock(fn.Body, env)
	if err != nil {
		return nil, err
	}
	switch c.kind {
	case ctrlReturn:
		return c.value, nil
	case ctrlBreak:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "'break' outside loop")
	case ctrlContinue:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "'continue' outside loop")
	default:
		return None, nil
	}
}

// bindArgs matches positional/keyword call arguments to fn's parameter
// list per spec.md §4.3 step 4: required/optional parameters consume
// positionals in order or are matched by name from kwargs; a declared
// *args collects left-over positionals into a tuple; a declared
// **kwargs collects left-over keyword arguments into a dict; either
// absent collector turns a left-over argument into an ArityError.
// Optional-parameter defaults are evaluated at call time in fn's
// defining environment, per spec.md §9's explicit choice.
func (it *Interpreter) bindArgs(fn *FunctionValue, args []Value, kwargs map[string]Value, pos token.Position) (*Environment, error) {
	env := NewChildEnvironment(fn.Env)

	remaining := make(map[string]Value, len(kwargs))
	for k, v := range kwargs {
		remaining[k] = v
	}

	var starParam, doubleStarParam *ast.Param
	consumed := 0

	for i := range fn.Params {
		p := &fn.Params[i]
		switch p.Kind {
		case ast.ParamRequired, ast.ParamOptional:
			if consumed < len(args) {
				env.Define(p.Name, args[consumed])
				consumed++
				continue
			}
			if v, ok := remaining[p.Name]; ok {
				env.Define(p.Name, v)
				delete(remaining, p.Name)
				continue
			}
			if p.Kind == ast.ParamOptional {
				def, err := it.Eval(p.Default, fn.Env)
				if err != nil {
					return nil, err
				}
				env.Define(p.Name, def)
				continue
			}
			return nil, errors.NewRuntimeError(errors.ArityError, pos, "%s() missing required argument: %q", fn.Name, p.Name)
		case ast.ParamStar:
			starParam = p
		case ast.ParamDoubleStar:
			doubleStarParam = p
		}
	}

	if starParam != nil {
		rest := append([]Value{}, args[consumed:]...)
		env.Define(starParam.Name, NewTuple(rest))
	} else if consumed < len(args) {
		return nil, errors.NewRuntimeError(errors.ArityError, pos, "%s() takes at most %d positional arguments but %d were given", fn.Name, consumed, len(args))
	}

	if doubleStarParam != nil {
		d := NewDict()
		keys := make([]string, 0, len(remaining))
		for k := range remaining {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h, _ := hashValue(StringValue(k))
			d.Set(h, StringValue(k), remaining[k])
		}
		env.Define(doubleStarParam.Name, d)
	} else if len(remaining) > 0 {
		var unexpected string
		for k := range remaining {
			unexpected = k
			break
		}
		return nil, errors.NewRuntimeError(errors.ArityError, pos, "%s() got an unexpected keyword argument %q", fn.Name, unexpected)
	}

	return env, nil
}

func (it *Interpreter) evalAssign(e *ast.Assign, env *Environment) (Value, error) {
	val, err := it.Eval(e.Value, env)
	if err != nil {
		return nil, err
	}
	if err := it.assignTo(e.Target, val, env); err != nil {
		return nil, err
	}
	return val, nil
}

func (it *Interpreter) evalAugAssign(e *ast.AugAssign, env *Environment) (Value, error) {
	cur, err := it.Eval(e.Target, env)
	if err != nil {
		return nil, err
	}
	rhs, err := it.Eval(e.Value, env)
	if err != nil {
		return nil, err
	}
	result, err := it.evalBinary(e.Op, cur, rhs, e.Pos())
	if err != nil {
		return nil, err
	}
	if err := it.assignTo(e.Target, result, env); err != nil {
		return nil, err
	}
	return result, nil
}

// assignTo writes val into target, which the parser has already
// restricted to a Variable, IndexGet, or AttributeGet.
func (it *Interpreter) assignTo(target ast.Expr, val Value, env *Environment) error {
	switch t := target.(type) {
	case *ast.Variable:
		env.Set(t.Name, val)
		return nil
	case *ast.IndexGet:
		obj, err := it.Eval(t.Object, env)
		if err != nil {
			return err
		}
		idx, err := it.Eval(t.Index, env)
		if err != nil {
			return err
		}
		return it.indexSet(obj, idx, val, t.Pos())
	case *ast.AttributeGet:
		obj, err := it.Eval(t.Object, env)
		if err != nil {
			return err
		}
		return it.setAttribute(obj, t.Name, val, t.Pos())
	default:
		return errors.NewRuntimeError(errors.TypeError, target.Pos(), "invalid assignment target %T", target)
	}
}
