package interp

import (
	"math"
	"strings"

	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/token"
)

// truthy implements the guest language's truthiness table: None, False,
// zero, empty string, and empty containers are false; everything else
// is true.
func truthy(v Value) bool {
	switch x := v.(type) {
	case NoneValue:
		return false
	case BoolValue:
		return bool(x)
	case IntValue:
		return x != 0
	case FloatValue:
		return x != 0
	case StringValue:
		return len(x) != 0
	case *ListValue:
		return len(x.Elements) != 0
	case *TupleValue:
		return len(x.Elements) != 0
	case *SetValue:
		return x.Len() != 0
	case *DictValue:
		return x.Len() != 0
	default:
		return true
	}
}

func isInt(v Value) (int64, bool) {
	if i, ok := v.(IntValue); ok {
		return int64(i), true
	}
	if b, ok := v.(BoolValue); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func isFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case FloatValue:
		return float64(x), true
	case IntValue:
		return float64(x), true
	case BoolValue:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func isNumericOperand(v Value) bool {
	switch v.(type) {
	case IntValue, FloatValue, BoolValue:
		return true
	}
	return false
}

func (in *Interpreter) evalBinary(op token.Kind, left, right Value, pos token.Position) (Value, error) {
	switch op {
	case token.PLUS:
		return in.evalAdd(left, right, pos)
	case token.MINUS:
		return in.evalArithNumeric(op, left, right, pos)
	case token.STAR:
		return in.evalMultiply(left, right, pos)
	case token.SLASH:
		return in.evalDivide(left, right, pos)
	case token.DOUBLESLASH:
		return in.evalFloorDivide(left, right, pos)
	case token.PERCENT:
		return in.evalModulo(left, right, pos)
	case token.DOUBLESTAR:
		return in.evalPower(left, right, pos)
	case token.EQEQ:
		return BoolValue(valuesEqual(left, right)), nil
	case token.BANGEQ:
		return BoolValue(!valuesEqual(left, right)), nil
	case token.LT, token.LE, token.GT, token.GE:
		return in.evalOrdering(op, left, right, pos)
	case token.IN:
		return in.evalContains(left, right, pos)
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported binary operator %s", op)
	}
}

func (in *Interpreter) evalAdd(left, right Value, pos token.Position) (Value, error) {
	if isNumericOperand(left) && isNumericOperand(right) {
		return in.evalArithNumeric(token.PLUS, left, right, pos)
	}
	if ls, ok := left.(StringValue); ok {
		if rs, ok := right.(StringValue); ok {
			return ls + rs, nil
		}
	}
	if ll, ok := left.(*ListValue); ok {
		if rl, ok := right.(*ListValue); ok {
			combined := append(append([]Value{}, ll.Elements...), rl.Elements...)
			return NewList(combined), nil
		}
	}
	if lt, ok := left.(*TupleValue); ok {
		if rt, ok := right.(*TupleValue); ok {
			combined := append(append([]Value{}, lt.Elements...), rt.Elements...)
			return NewTuple(combined), nil
		}
	}
	return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for +: %q and %q", left.Type(), right.Type())
}

func (in *Interpreter) evalArithNumeric(op token.Kind, left, right Value, pos token.Position) (Value, error) {
	li, lok := isInt(left)
	ri, rok := isInt(right)
	_, lIsFloat := left.(FloatValue)
	_, rIsFloat := right.(FloatValue)

	if lok && rok && !lIsFloat && !rIsFloat {
		switch op {
		case token.PLUS:
			return IntValue(li + ri), nil
		case token.MINUS:
			return IntValue(li - ri), nil
		}
	}

	lf, lfok := isFloat(left)
	rf, rfok := isFloat(right)
	if !lfok || !rfok {
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for %s: %q and %q", op, left.Type(), right.Type())
	}
	switch op {
	case token.PLUS:
		return FloatValue(lf + rf), nil
	case token.MINUS:
		return FloatValue(lf - rf), nil
	}
	return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported arithmetic operator %s", op)
}

func (in *Interpreter) evalMultiply(left, right Value, pos token.Position) (Value, error) {
	if isNumericOperand(left) && isNumericOperand(right) {
		li, lok := isInt(left)
		ri, rok := isInt(right)
		_, lIsFloat := left.(FloatValue)
		_, rIsFloat := right.(FloatValue)
		if lok && rok && !lIsFloat && !rIsFloat {
			return IntValue(li * ri), nil
		}
		lf, _ := isFloat(left)
		rf, _ := isFloat(right)
		return FloatValue(lf * rf), nil
	}

	if seq, n, ok := sequenceAndRepeat(left, right); ok {
		return repeatSequence(seq, n)
	}
	if seq, n, ok := sequenceAndRepeat(right, left); ok {
		return repeatSequence(seq, n)
	}
	return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for *: %q and %q", left.Type(), right.Type())
}

func sequenceAndRepeat(a, b Value) (Value, int64, bool) {
	n, ok := isInt(b)
	if !ok {
		return nil, 0, false
	}
	switch a.(type) {
	case *ListValue, *TupleValue, StringValue:
		return a, n, true
	}
	return nil, 0, false
}

func repeatSequence(seq Value, n int64) (Value, error) {
	if n < 0 {
		n = 0
	}
	switch s := seq.(type) {
	case *ListValue:
		var out []Value
		for i := int64(0); i < n; i++ {
			out = append(out, s.Elements...)
		}
		return NewList(out), nil
	case *TupleValue:
		var out []Value
		for i := int64(0); i < n; i++ {
			out = append(out, s.Elements...)
		}
		return NewTuple(out), nil
	case StringValue:
		return StringValue(strings.Repeat(string(s), int(n))), nil
	}
	return nil, errors.NewRuntimeError(errors.TypeError, token.Position{}, "unsupported operand type for *: %q", seq.Type())
}

func (in *Interpreter) evalDivide(left, right Value, pos token.Position) (Value, error) {
	lf, lok := isFloat(left)
	rf, rok := isFloat(right)
	if !lok || !rok {
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for /: %q and %q", left.Type(), right.Type())
	}
	if rf == 0 {
		return nil, errors.NewRuntimeError(errors.ZeroDivisionError, pos, "division by zero")
	}
	return FloatValue(lf / rf), nil
}

func (in *Interpreter) evalFloorDivide(left, right Value, pos token.Position) (Value, error) {
	li, lInt := isInt(left)
	ri, rInt := isInt(right)
	_, lIsFloat := left.(FloatValue)
	_, rIsFloat := right.(FloatValue)

	if lInt && rInt && !lIsFloat && !rIsFloat {
		if ri == 0 {
			return nil, errors.NewRuntimeError(errors.ZeroDivisionError, pos, "integer division or modulo by zero")
		}
		q := li / ri
		if (li%ri != 0) && ((li < 0) != (ri < 0)) {
			q--
		}
		return IntValue(q), nil
	}

	lf, lok := isFloat(left)
	rf, rok := isFloat(right)
	if !lok || !rok {
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for //: %q and %q", left.Type(), right.Type())
	}
	if rf == 0 {
		return nil, errors.NewRuntimeError(errors.ZeroDivisionError, pos, "float floor division by zero")
	}
	q := lf / rf
	return FloatValue(floorFloat(q)), nil
}

func floorFloat(f float64) float64 {
	i := float64(int64(f))
	if f < 0 && i != f {
		i--
	}
	return i
}

func (in *Interpreter) evalModulo(left, right Value, pos token.Position) (Value, error) {
	li, lInt := isInt(left)
	ri, rInt := isInt(right)
	_, lIsFloat := left.(FloatValue)
	_, rIsFloat := right.(FloatValue)

	if lInt && rInt && !lIsFloat && !rIsFloat {
		if ri == 0 {
			return nil, errors.NewRuntimeError(errors.ZeroDivisionError, pos, "integer division or modulo by zero")
		}
		m := li % ri
		if m != 0 && (m < 0) != (ri < 0) {
			m += ri
		}
		return IntValue(m), nil
	}

	lf, lok := isFloat(left)
	rf, rok := isFloat(right)
	if !lok || !rok {
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for %%: %q and %q", left.Type(), right.Type())
	}
	if rf == 0 {
		return nil, errors.NewRuntimeError(errors.ZeroDivisionError, pos, "float modulo by zero")
	}
	m := floatMod(lf, rf)
	return FloatValue(m), nil
}

func floatMod(a, b float64) float64 {
	m := a - floorFloat(a/b)*b
	return m
}

func (in *Interpreter) evalPower(left, right Value, pos token.Position) (Value, error) {
	li, lInt := isInt(left)
	ri, rInt := isInt(right)
	_, lIsFloat := left.(FloatValue)
	_, rIsFloat := right.(FloatValue)

	if lInt && rInt && !lIsFloat && !rIsFloat && ri >= 0 {
		result := int64(1)
		base := li
		exp := ri
		for exp > 0 {
			if exp&1 == 1 {
				result *= base
			}
			base *= base
			exp >>= 1
		}
		return IntValue(result), nil
	}

	lf, lok := isFloat(left)
	rf, rok := isFloat(right)
	if !lok || !rok {
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported operand types for **: %q and %q", left.Type(), right.Type())
	}
	return FloatValue(math.Pow(lf, rf)), nil
}

func (in *Interpreter) evalOrdering(op token.Kind, left, right Value, pos token.Position) (Value, error) {
	cmp, ok := compareValues(left, right)
	if !ok {
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "'%s' not supported between instances of %q and %q", op, left.Type(), right.Type())
	}
	switch op {
	case token.LT:
		return BoolValue(cmp < 0), nil
	case token.LE:
		return BoolValue(cmp <= 0), nil
	case token.GT:
		return BoolValue(cmp > 0), nil
	case token.GE:
		return BoolValue(cmp >= 0), nil
	}
	return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported comparison operator %s", op)
}

// compareValues returns -1/0/1 and ok=true if left and right are
// ordering-comparable.
func compareValues(left, right Value) (int, bool) {
	if isNumericOperand(left) && isNumericOperand(right) {
		lf, _ := isFloat(left)
		rf, _ := isFloat(right)
		switch {
		case lf < rf:
			return -1, true
		case lf > rf:
			return 1, true
		default:
			return 0, true
		}
	}
	if ls, ok := left.(StringValue); ok {
		if rs, ok := right.(StringValue); ok {
			return strings.Compare(string(ls), string(rs)), true
		}
	}
	if ll, ok := left.(*ListValue); ok {
		if rl, ok := right.(*ListValue); ok {
			return compareSequences(ll.Elements, rl.Elements)
		}
	}
	if lt, ok := left.(*TupleValue); ok {
		if rt, ok := right.(*TupleValue); ok {
			return compareSequences(lt.Elements, rt.Elements)
		}
	}
	return 0, false
}

func compareSequences(a, b []Value) (int, bool) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if cmp, ok := compareValues(a[i], b[i]); !ok {
			return 0, false
		} else if cmp != 0 {
			return cmp, true
		}
	}
	switch {
	case len(a) < len(b):
		return -1, true
	case len(a) > len(b):
		return 1, true
	default:
		return 0, true
	}
}

func (in *Interpreter) evalContains(left, right Value, pos token.Position) (Value, error) {
	switch r := right.(type) {
	case StringValue:
		ls, ok := left.(StringValue)
		if !ok {
			return nil, errors.NewRuntimeError(errors.TypeError, pos, "'in' requires a string on the left of a string")
		}
		return BoolValue(strings.Contains(string(r), string(ls))), nil
	case *ListValue:
		for _, el := range r.Elements {
			if valuesEqual(el, left) {
				return BoolValue(true), nil
			}
		}
		return BoolValue(false), nil
	case *TupleValue:
		for _, el := range r.Elements {
			if valuesEqual(el, left) {
				return BoolValue(true), nil
			}
		}
		return BoolValue(false), nil
	case *SetValue:
		h, err := hashValue(left)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, pos, "unhashable type: %q", left.Type())
		}
		return BoolValue(r.Contains(h, left)), nil
	case *DictValue:
		h, err := hashValue(left)
		if err != nil {
			return nil, errors.NewRuntimeError(errors.HashError, pos, "unhashable type: %q", left.Type())
		}
		_, ok := r.Get(h, left)
		return BoolValue(ok), nil
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "argument of type %q is not iterable", right.Type())
	}
}

func (in *Interpreter) evalUnary(op token.Kind, operand Value, pos token.Position) (Value, error) {
	switch op {
	case token.NOT:
		return BoolValue(!truthy(operand)), nil
	case token.MINUS:
		if i, ok := operand.(IntValue); ok {
			return -i, nil
		}
		if f, ok := isFloat(operand); ok {
			return FloatValue(-f), nil
		}
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "bad operand type for unary -: %q", operand.Type())
	case token.PLUS:
		if isNumericOperand(operand) {
			return operand, nil
		}
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "bad operand type for unary +: %q", operand.Type())
	case token.TILDE:
		if i, ok := isInt(operand); ok {
			return IntValue(^i), nil
		}
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "bad operand type for unary ~: %q", operand.Type())
	default:
		return nil, errors.NewRuntimeError(errors.TypeError, pos, "unsupported unary operator %s", op)
	}
}
