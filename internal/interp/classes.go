package interp

import (
	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
)

func (it *Interpreter) execClassDef(def *ast.ClassDef, env *Environment) (ctrl, error) {
	var super *ClassValue
	if def.Superclass != "" {
		v, ok := env.Get(def.Superclass)
		if !ok {
			return noCtrl, errors.NewRuntimeError(errors.NameError, def.Pos(), "name %q is not defined", def.Superclass)
		}
		sc, ok := v.(*ClassValue)
		if !ok {
			return noCtrl, errors.NewRuntimeError(errors.TypeError, def.Pos(), "superclass %q is not a class", def.Superclass)
		}
		super = sc
	}

	cls := &ClassValue{Name: def.Name, Superclass: super, Methods: make(map[string]*FunctionValue)}
	for _, m := range def.Methods {
		cls.Methods[m.Name] = &FunctionValue{
			Name:          m.Name,
			Params:        m.Params,
			Body:          m.Body,
			Env:           env,
			DefiningClass: cls,
		}
	}
	env.Define(def.Name, cls)
	return noCtrl, nil
}

// getAttribute implements attribute read access per spec.md §4.3:
// instance attributes shadow class methods, class methods shadow the
// superclass chain, and a method fetched from an instance comes back
// bound while one fetched from a class (or via super) does not carry
// an implicit receiver beyond what super already bound.
func (it *Interpreter) getAttribute(obj Value, name string, pos token.Position) (Value, error) {
	switch o := obj.(type) {
	case *InstanceValue:
		if v, ok := o.Attributes[name]; ok {
			return v, nil
		}
		if m, _ := o.Class.LookupMethod(name); m != nil {
			return &BoundMethodValue{Receiver: o, Fn: m}, nil
		}
		return nil, errors.NewRuntimeError(errors.AttributeError, pos, "%q object has no attribute %q", o.Class.Name, name)
	case *ClassValue:
		if m, _ := o.LookupMethod(name); m != nil {
			return m, nil
		}
		return nil, errors.NewRuntimeError(errors.AttributeError, pos, "class %q has no attribute %q", o.Name, name)
	case *SuperProxyValue:
		if o.Class == nil {
			return nil, errors.NewRuntimeError(errors.AttributeError, pos, "%q has no superclass", name)
		}
		m, _ := o.Class.LookupMethod(name)
		if m == nil {
			return nil, errors.NewRuntimeError(errors.AttributeError, pos, "superclass has no attribute %q", name)
		}
		return &BoundMethodValue{Receiver: o.Self, Fn: m}, nil
	case *FileValue:
		return it.fileMethod(o, name, pos)
	default:
		return nil, errors.NewRuntimeError(errors.AttributeError, pos, "%q object has no attribute %q", obj.Type(), name)
	}
}

// setAttribute always writes to the instance's own attribute map, per
// spec.md §4.3: "Attribute assignment always writes to the instance map."
func (it *Interpreter) setAttribute(obj Value, name string, val Value, pos token.Position) error {
	inst, ok := obj.(*InstanceValue)
	if !ok {
		return errors.NewRuntimeError(errors.AttributeError, pos, "cannot set attribute %q on %q object", name, obj.Type())
	}
	inst.Attributes[name] = val
	return nil
}
