package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
	"github.com/abraun/serpent/internal/vfs"
)

// registerBuiltins seeds every built-in spec.md §4.3 names into it's
// global environment. Each closes over it so it can reach stdout,
// stdin, and the VFS.
func registerBuiltins(it *Interpreter) {
	it.Register("print", biPrint(it))
	it.Register("len", biLen)
	it.Register("range", biRange)
	it.Register("str", biStr)
	it.Register("int", biInt)
	it.Register("float", biFloat)
	it.Register("bool", biBool)
	it.Register("list", biList)
	it.Register("tuple", biTuple)
	it.Register("set", biSet)
	it.Register("dict", biDict)
	it.Register("input", biInput(it))
	it.Register("open", biOpen(it))
	it.Register("type", biType)
}

func argErr(name string, want, got int) error {
	return errors.NewRuntimeError(errors.ArityError, token.Position{}, "%s() takes %d argument(s) but %d were given", name, want, got)
}

func biPrint(it *Interpreter) NativeFunc {
	return func(args []Value, kwargs map[string]Value) (Value, error) {
		sep := " "
		end := "\n"
		if v, ok := kwargs["sep"]; ok {
			s, ok := v.(StringValue)
			if !ok {
				return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "sep must be a str")
			}
			sep = string(s)
		}
		if v, ok := kwargs["end"]; ok {
			s, ok := v.(StringValue)
			if !ok {
				return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "end must be a str")
			}
			end = string(s)
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprint(it.stdout, strings.Join(parts, sep)+end)
		return None, nil
	}
}

func biLen(args []Value, _ map[string]Value) (Value, error) {
	if len(args) != 1 {
		return nil, argErr("len", 1, len(args))
	}
	switch v := args[0].(type) {
	case StringValue:
		return IntValue(len([]rune(string(v)))), nil
	case *ListValue:
		return IntValue(len(v.Elements)), nil
	case *TupleValue:
		return IntValue(len(v.Elements)), nil
	case *SetValue:
		return IntValue(v.Len()), nil
	case *DictValue:
		return IntValue(v.Len()), nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "object of type %q has no len()", v.Type())
	}
}

func biRange(args []Value, _ map[string]Value) (Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		n, ok := isInt(args[0])
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "range() argument must be an int")
		}
		stop = n
	case 2, 3:
		n0, ok0 := isInt(args[0])
		n1, ok1 := isInt(args[1])
		if !ok0 || !ok1 {
			return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "range() arguments must be ints")
		}
		start, stop = n0, n1
		if len(args) == 3 {
			n2, ok2 := isInt(args[2])
			if !ok2 {
				return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "range() arguments must be ints")
			}
			step = n2
		}
	default:
		return nil, errors.NewRuntimeError(errors.ArityError, token.Position{}, "range() takes 1 to 3 arguments but %d were given", len(args))
	}
	if step == 0 {
		return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "range() step argument must not be zero")
	}
	return &RangeValue{Start: start, Stop: stop, Step: step}, nil
}

func biStr(args []Value, _ map[string]Value) (Value, error) {
	if len(args) != 1 {
		return nil, argErr("str", 1, len(args))
	}
	return StringValue(args[0].String()), nil
}

func biInt(args []Value, _ map[string]Value) (Value, error) {
	if len(args) != 1 {
		return nil, argErr("int", 1, len(args))
	}
	switch v := args[0].(type) {
	case IntValue:
		return v, nil
	case FloatValue:
		return IntValue(int64(v)), nil
	case BoolValue:
		if v {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "invalid literal for int() with base 10: %s", v.Quoted())
		}
		return IntValue(n), nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "int() argument must be a string or a number, not %q", v.Type())
	}
}

func biFloat(args []Value, _ map[string]Value) (Value, error) {
	if len(args) != 1 {
		return nil, argErr("float", 1, len(args))
	}
	switch v := args[0].(type) {
	case FloatValue:
		return v, nil
	case IntValue:
		return FloatValue(float64(v)), nil
	case BoolValue:
		if v {
			return FloatValue(1), nil
		}
		return FloatValue(0), nil
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "could not convert string to float: %s", v.Quoted())
		}
		return FloatValue(f), nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "float() argument must be a string or a number, not %q", v.Type())
	}
}

func biBool(args []Value, _ map[string]Value) (Value, error) {
	if len(args) == 0 {
		return BoolValue(false), nil
	}
	if len(args) != 1 {
		return nil, argErr("bool", 1, len(args))
	}
	return BoolValue(truthy(args[0])), nil
}

func biList(args []Value, _ map[string]Value) (Value, error) {
	if len(args) == 0 {
		return NewList(nil), nil
	}
	if len(args) != 1 {
		return nil, argErr("list", 1, len(args))
	}
	elems, err := valuesOf(args[0], token.Position{})
	if err != nil {
		return nil, err
	}
	return NewList(append([]Value{}, elems...)), nil
}

func biTuple(args []Value, _ map[string]Value) (Value, error) {
	if len(args) == 0 {
		return NewTuple(nil), nil
	}
	if len(args) != 1 {
		return nil, argErr("tuple", 1, len(args))
	}
	elems, err := valuesOf(args[0], token.Position{})
	if err != nil {
		return nil, err
	}
	return NewTuple(append([]Value{}, elems...)), nil
}

func biSet(args []Value, _ map[string]Value) (Value, error) {
	s := NewSet()
	if len(args) == 0 {
		return s, nil
	}
	if len(args) != 1 {
		return nil, argErr("set", 1, len(args))
	}
	elems, err := valuesOf(args[0], token.Position{})
	if err != nil {
		return nil, err
	}
	for _, v := range elems {
		h, err := hashValue(v)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, token.Position{}, "unhashable type: %q", v.Type())
		}
		s.Add(h, v)
	}
	return s, nil
}

func biDict(args []Value, _ map[string]Value) (Value, error) {
	d := NewDict()
	if len(args) == 0 {
		return d, nil
	}
	if len(args) != 1 {
		return nil, argErr("dict", 1, len(args))
	}
	pairs, err := valuesOf(args[0], token.Position{})
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		elems, err := pairElements(pair)
		if err != nil {
			return nil, err
		}
		h, err := hashValue(elems[0])
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, token.Position{}, "unhashable type: %q", elems[0].Type())
		}
		d.Set(h, elems[0], elems[1])
	}
	return d, nil
}

func pairElements(v Value) ([]Value, error) {
	var elems []Value
	switch p := v.(type) {
	case *ListValue:
		elems = p.Elements
	case *TupleValue:
		elems = p.Elements
	default:
		return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "dict() update sequence element is not a pair")
	}
	if len(elems) != 2 {
		return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "dict() update sequence element has length %d; 2 is required", len(elems))
	}
	return elems, nil
}

func biType(args []Value, _ map[string]Value) (Value, error) {
	if len(args) != 1 {
		return nil, argErr("type", 1, len(args))
	}
	return StringValue(args[0].Type()), nil
}

func biInput(it *Interpreter) NativeFunc {
	return func(args []Value, _ map[string]Value) (Value, error) {
		if len(args) > 1 {
			return nil, argErr("input", 1, len(args))
		}
		if len(args) == 1 {
			fmt.Fprint(it.stdout, args[0].String())
		}
		if it.stdin == nil {
			return StringValue(""), nil
		}
		line, err := it.stdin.ReadString('\n')
		if err != nil && line == "" {
			return StringValue(""), nil
		}
		return StringValue(strings.TrimRight(line, "\r\n")), nil
	}
}

func biOpen(it *Interpreter) NativeFunc {
	return func(args []Value, _ map[string]Value) (Value, error) {
		if len(args) != 2 {
			return nil, argErr("open", 2, len(args))
		}
		path, ok := args[0].(StringValue)
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "open() path must be a str")
		}
		modeStr, ok := args[1].(StringValue)
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "open() mode must be a str")
		}
		mode, err := vfs.ParseMode(string(modeStr))
		if err != nil {
			return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "%s", err.Error())
		}
		handle, err := vfs.Open(it.vfs, string(path), mode)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "%s", err.Error())
		}
		return &FileValue{Handle: handle}, nil
	}
}

// fileMethod returns the native callable bound to f for name, backing
// the `file.read()/readline()/write()/close()` attribute accesses.
func (it *Interpreter) fileMethod(f *FileValue, name string, pos token.Position) (Value, error) {
	switch name {
	case "read":
		return &NativeFunctionValue{Name: "read", Fn: func(args []Value, _ map[string]Value) (Value, error) {
			s, err := f.Handle.Read()
			if err != nil {
				return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "%s", err.Error())
			}
			return StringValue(s), nil
		}}, nil
	case "readline":
		return &NativeFunctionValue{Name: "readline", Fn: func(args []Value, _ map[string]Value) (Value, error) {
			s, err := f.Handle.Readline()
			if err != nil {
				return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "%s", err.Error())
			}
			return StringValue(s), nil
		}}, nil
	case "write":
		return &NativeFunctionValue{Name: "write", Fn: func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) != 1 {
				return nil, argErr("write", 1, len(args))
			}
			s, ok := args[0].(StringValue)
			if !ok {
				return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "write() argument must be a str")
			}
			if err := f.Handle.Write(string(s)); err != nil {
				return nil, errors.NewRuntimeError(errors.ValueError, token.Position{}, "%s", err.Error())
			}
			return None, nil
		}}, nil
	case "close":
		return &NativeFunctionValue{Name: "close", Fn: func(args []Value, _ map[string]Value) (Value, error) {
			f.Handle.Close()
			return None, nil
		}}, nil
	default:
		return nil, errors.NewRuntimeError(errors.AttributeError, pos, "%q object has no attribute %q", f.Type(), name)
	}
}
