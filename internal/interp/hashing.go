package interp

import (
	"errors"
	"math"
)

// errUnhashable is returned by hashValue for values that cannot be used
// as set elements or dict keys; callers convert it into a HashError
// with source position.
var errUnhashable = errors.New("unhashable type")

// hashValue computes a mixing hash for v. Numeric kinds are
// canonicalized through their float64 bit pattern so that
// hash(1) == hash(1.0) == hash(True), per spec.
func hashValue(v Value) (uint64, error) {
	switch x := v.(type) {
	case NoneValue:
		return 0x9e3779b97f4a7c15, nil
	case BoolValue:
		if x {
			return hashFloat(1)
		}
		return hashFloat(0)
	case IntValue:
		return hashFloat(float64(x))
	case FloatValue:
		return hashFloat(float64(x))
	case StringValue:
		return fnv1a([]byte(x)), nil
	case *TupleValue:
		h := uint64(0xcbf29ce484222325)
		for _, el := range x.Elements {
			eh, err := hashValue(el)
			if err != nil {
				return 0, err
			}
			h ^= eh
			h *= 0x100000001b3
		}
		return h, nil
	default:
		return 0, errUnhashable
	}
}

func hashFloat(f float64) (uint64, error) {
	bits := math.Float64bits(f)
	return fnv1aBits(bits), nil
}

func fnv1a(data []byte) uint64 {
	h := uint64(0xcbf29ce484222325)
	for _, b := range data {
		h ^= uint64(b)
		h *= 0x100000001b3
	}
	return h
}

func fnv1aBits(bits uint64) uint64 {
	h := uint64(0xcbf29ce484222325)
	for i := 0; i < 8; i++ {
		h ^= bits & 0xff
		h *= 0x100000001b3
		bits >>= 8
	}
	return h
}

// valuesEqual implements the guest language's cross-kind equality
// rules: numeric kinds compare by value, None only equals None,
// sequences compare element-wise within their own kind, and everything
// else falls back to reference/structural identity.
func valuesEqual(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return numericValue(a) == numericValue(b)
	}

	switch av := a.(type) {
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av == bv
	case *ListValue:
		bv, ok := b.(*ListValue)
		return ok && elementsEqual(av.Elements, bv.Elements)
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		return ok && elementsEqual(av.Elements, bv.Elements)
	case *SetValue:
		bv, ok := b.(*SetValue)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, el := range av.Elements() {
			h, err := hashValue(el)
			if err != nil || !bv.Contains(h, el) {
				return false
			}
		}
		return true
	case *DictValue:
		bv, ok := b.(*DictValue)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.Keys() {
			h, err := hashValue(k)
			if err != nil {
				return false
			}
			va, _ := av.Get(h, k)
			vb, ok := bv.Get(h, k)
			if !ok || !valuesEqual(va, vb) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func elementsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case BoolValue, IntValue, FloatValue:
		return true
	default:
		return false
	}
}

func numericValue(v Value) float64 {
	switch x := v.(type) {
	case BoolValue:
		if x {
			return 1
		}
		return 0
	case IntValue:
		return float64(x)
	case FloatValue:
		return float64(x)
	default:
		return math.NaN()
	}
}
