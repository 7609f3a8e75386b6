package interp

import (
	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
)

// normalizeIndex resolves a possibly-negative index against length,
// wrapping from the end, and reports whether it lands in range.
func normalizeIndex(i, length int64) (int64, bool) {
	if i < 0 {
		i += length
	}
	return i, i >= 0 && i < length
}

func (it *Interpreter) indexGet(obj, idx Value, pos token.Position) (Value, error) {
	switch o := obj.(type) {
	case StringValue:
		i, ok := isInt(idx)
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, pos, "string indices must be integers")
		}
		runes := []rune(string(o))
		n, inRange := normalizeIndex(i, int64(len(runes)))
		if !inRange {
			return nil, errors.NewRuntimeError(errors.IndexError, pos, "string index out of range")
		}
		return StringValue(runes[n]), nil
	case *ListValue:
		i, ok := isInt(idx)
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, pos, "list indices must be integers")
		}
		n, inRange := normalizeIndex(i, int64(len(o.Elements)))
		if !inRange {
			return nil, errors.NewRuntimeError(errors.IndexError, pos, "list index out of range")
		}
		return o.Elements[n], nil
	case *TupleValue:
		i, ok := isInt(idx)
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, pos, "tuple indices must be integers")
		}
		n, inRange := normalizeIndex(i, int64(len(o.Elements)))
		if !inRange {
			return nil, errors.NewRuntimeError(errors.IndexError, pos, "tuple index out of range")
		}
		return o.Elements[n], nil
	case *DictValue:
		h, err := hashValue(idx)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, pos, "unhashable type: %q", idx.Type())
		}
		v, ok := o.Get(h, idx)
		if !ok {
			return nil, errors.NewRuntimeError(errors.KeyError, pos, "%s", idx.String())
		}
		return v, nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "%q object is not subscriptable", obj.Type())
	}
}

// indexSet implements item assignment; per spec.md §4.3, only lists and
// dicts support it.
func (it *Interpreter) indexSet(obj, idx, val Value, pos token.Position) error {
	switch o := obj.(type) {
	case *ListValue:
		i, ok := isInt(idx)
		if !ok {
			return errors.NewRuntimeError(errors.TypeError, pos, "list indices must be integers")
		}
		n, inRange := normalizeIndex(i, int64(len(o.Elements)))
		if !inRange {
			return errors.NewRuntimeError(errors.IndexError, pos, "list assignment index out of range")
		}
		o.Elements[n] = val
		return nil
	case *DictValue:
		h, err := hashValue(idx)
		if err != nil {
			return errors.NewRuntimeError(errors.HashError, pos, "unhashable type: %q", idx.Type())
		}
		o.Set(h, idx, val)
		return nil
	default:
		return errors.NewRuntimeError(errors.TypeError, pos, "%q object does not support item assignment", obj.Type())
	}
}

// valuesOf enumerates the elements of an iterable value, for `for ...
// in` loops and the list()/tuple()/set()/dict() built-ins. Iterating a
// dict yields its keys, matching spec.md's dict model.
func valuesOf(v Value, pos token.Position) ([]Value, error) {
	switch o := v.(type) {
	case *RangeValue:
		return o.Values(), nil
	case *ListValue:
		return o.Elements, nil
	case *TupleValue:
		return o.Elements, nil
	case StringValue:
		runes := []rune(string(o))
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = StringValue(r)
		}
		return out, nil
	case *SetValue:
		return o.Elements(), nil
	case *DictValue:
		return o.Keys(), nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "%q object is not iterable", v.Type())
	}
}
