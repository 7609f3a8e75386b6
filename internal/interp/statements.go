package interp

import (
	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/errors"
)

// execBlock runs stmts in order against env, stopping and propagating
// the first non-nil control signal or error. Statements share env
// directly — if/while/for bodies are not separate lexical scopes, only
// function and lambda calls introduce a new Environment, per spec.md
// §4.3's function-level scoping model.
func (it *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) (ctrl, error) {
	for _, s := range stmts {
		c, err := it.exec(s, env)
		if err != nil {
			return noCtrl, err
		}
		if c.kind != ctrlNone {
			return c, nil
		}
	}
	return noCtrl, nil
}

func (it *Interpreter) exec(stmt ast.Stmt, env *Environment) (ctrl, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := it.Eval(s.X, env)
		return noCtrl, err
	case *ast.FuncDef:
		env.Define(s.Name, &FunctionValue{Name: s.Name, Params: s.Params, Body: s.Body, Env: env})
		return noCtrl, nil
	case *ast.ClassDef:
		return it.execClassDef(s, env)
	case *ast.If:
		return it.execIf(s, env)
	case *ast.While:
		return it.execWhile(s, env)
	case *ast.ForIn:
		return it.execForIn(s, env)
	case *ast.Return:
		var val Value = None
		if s.Value != nil {
			v, err := it.Eval(s.Value, env)
			if err != nil {
				return noCtrl, err
			}
			val = v
		}
		return ctrl{kind: ctrlReturn, value: val}, nil
	case *ast.Pass:
		return noCtrl, nil
	case *ast.Break:
		return ctrl{kind: ctrlBreak}, nil
	case *ast.Continue:
		return ctrl{kind: ctrlContinue}, nil
	default:
		return noCtrl, errors.NewRuntimeError(errors.TypeError, stmt.Pos(), "cannot execute %T", stmt)
	}
}

func (it *Interpreter) execIf(s *ast.If, env *Environment) (ctrl, error) {
	cond, err := it.Eval(s.Cond, env)
	if err != nil {
		return noCtrl, err
	}
	if truthy(cond) {
		return it.execBlock(s.Then, env)
	}
	for _, elif := range s.Elifs {
		econd, err := it.Eval(elif.Cond, env)
		if err != nil {
			return noCtrl, err
		}
		if truthy(econd) {
			return it.execBlock(elif.Body, env)
		}
	}
	if s.Else != nil {
		return it.execBlock(s.Else, env)
	}
	return noCtrl, nil
}

func (it *Interpreter) execWhile(s *ast.While, env *Environment) (ctrl, error) {
	for {
		cond, err := it.Eval(s.Cond, env)
		if err != nil {
			return noCtrl, err
		}
		if !truthy(cond) {
			return noCtrl, nil
		}
		c, err := it.execBlock(s.Body, env)
		if err != nil {
			return noCtrl, err
		}
		switch c.kind {
		case ctrlBreak:
			return noCtrl, nil
		case ctrlReturn:
			return c, nil
		}
	}
}

func (it *Interpreter) execForIn(s *ast.ForIn, env *Environment) (ctrl, error) {
	iterable, err := it.Eval(s.Iterable, env)
	if err != nil {
		return noCtrl, err
	}
	values, err := valuesOf(iterable, s.Iterable.Pos())
	if err != nil {
		return noCtrl, err
	}
	for _, v := range values {
		env.Set(s.Name, v)
		c, err := it.execBlock(s.Body, env)
		if err != nil {
			return noCtrl, err
		}
		switch c.kind {
		case ctrlBreak:
			return noCtrl, nil
		case ctrlReturn:
			return c, nil
		}
	}
	return noCtrl, nil
}
