// Package interp implements the tree-walking evaluator: runtime values,
// lexical environments, function-call and class/method-dispatch
// protocol, operator semantics, and the host embedding surface (native
// function registration, the in-memory VFS).
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/vfs"
)

// Value is the tagged sum of every runtime value kind the interpreter
// produces or consumes.
type Value interface {
	Type() string
	String() string
}

// None is the guest language's singular null value.
type NoneValue struct{}

var None Value = NoneValue{}

func (NoneValue) Type() string   { return "NoneType" }
func (NoneValue) String() string { return "None" }

// Bool wraps a guest boolean.
type BoolValue bool

func (BoolValue) Type() string { return "bool" }
func (b BoolValue) String() string {
	if b {
		return "True"
	}
	return "False"
}

// Int is a fixed 64-bit signed integer (wraps on overflow, per Go's
// native int64 arithmetic; see DESIGN.md's Open Question resolution).
type IntValue int64

func (IntValue) Type() string     { return "int" }
func (i IntValue) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a 64-bit IEEE-754 float.
type FloatValue float64

func (FloatValue) Type() string { return "float" }
func (f FloatValue) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

// Str is an immutable guest string.
type StringValue string

func (StringValue) Type() string     { return "str" }
func (s StringValue) String() string { return string(s) }

// Quoted renders s the way print(repr(s)) would inside a container.
func (s StringValue) Quoted() string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range string(s) {
		switch r {
		case '\'':
			sb.WriteString("\\'")
		case '\\':
			sb.WriteString("\\\\")
		case '\n':
			sb.WriteString("\\n")
		case '\t':
			sb.WriteString("\\t")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// List is a mutable, reference-identity ordered sequence.
type ListValue struct {
	Elements []Value
}

func NewList(elements []Value) *ListValue { return &ListValue{Elements: elements} }

func (*ListValue) Type() string { return "list" }
func (l *ListValue) String() string {
	return "[" + joinRepr(l.Elements) + "]"
}

// Tuple is an immutable, value-semantic ordered sequence.
type TupleValue struct {
	Elements []Value
}

func NewTuple(elements []Value) *TupleValue { return &TupleValue{Elements: elements} }

func (*TupleValue) Type() string { return "tuple" }
func (t *TupleValue) String() string {
	if len(t.Elements) == 1 {
		return "(" + reprOf(t.Elements[0]) + ",)"
	}
	return "(" + joinRepr(t.Elements) + ")"
}

// Set is an unordered collection of hashable elements, keyed by hash
// with a bucket per hash value to resolve collisions by equality.
type SetValue struct {
	buckets map[uint64][]Value
	order   []Value
}

func NewSet() *SetValue {
	return &SetValue{buckets: make(map[uint64][]Value)}
}

func (*SetValue) Type() string { return "set" }
func (s *SetValue) String() string {
	if len(s.order) == 0 {
		return "set()"
	}
	return "{" + joinRepr(s.order) + "}"
}

func (s *SetValue) Len() int { return len(s.order) }

func (s *SetValue) Contains(h uint64, v Value) bool {
	for _, existing := range s.buckets[h] {
		if valuesEqual(existing, v) {
			return true
		}
	}
	return false
}

func (s *SetValue) Add(h uint64, v Value) {
	if s.Contains(h, v) {
		return
	}
	s.buckets[h] = append(s.buckets[h], v)
	s.order = append(s.order, v)
}

func (s *SetValue) Elements() []Value { return s.order }

// Dict is an insertion-ordered key→value mapping over hashable keys.
type DictValue struct {
	buckets map[uint64][]dictEntry
	order   []Value
}

type dictEntry struct {
	key   Value
	value Value
}

func NewDict() *DictValue {
	return &DictValue{buckets: make(map[uint64][]dictEntry)}
}

func (*DictValue) Type() string { return "dict" }
func (d *DictValue) String() string {
	var parts []string
	for _, k := range d.order {
		h, _ := hashValue(k)
		v, _ := d.Get(h, k)
		parts = append(parts, reprOf(k)+": "+reprOf(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *DictValue) Get(h uint64, key Value) (Value, bool) {
	for _, e := range d.buckets[h] {
		if valuesEqual(e.key, key) {
			return e.value, true
		}
	}
	return nil, false
}

func (d *DictValue) Set(h uint64, key, value Value) {
	bucket := d.buckets[h]
	for i, e := range bucket {
		if valuesEqual(e.key, key) {
			bucket[i].value = value
			return
		}
	}
	d.buckets[h] = append(bucket, dictEntry{key, value})
	d.order = append(d.order, key)
}

func (d *DictValue) Len() int { return len(d.order) }

func (d *DictValue) Keys() []Value { return d.order }

// Range is the lazy integer sequence produced by the range() built-in.
type RangeValue struct {
	Start, Stop, Step int64
}

func (*RangeValue) Type() string { return "range" }
func (r *RangeValue) String() string {
	if r.Step == 1 {
		return fmt.Sprintf("range(%d, %d)", r.Start, r.Stop)
	}
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}

func (r *RangeValue) Values() []Value {
	var out []Value
	if r.Step > 0 {
		for i := r.Start; i < r.Stop; i += r.Step {
			out = append(out, IntValue(i))
		}
	} else if r.Step < 0 {
		for i := r.Start; i > r.Stop; i += r.Step {
			out = append(out, IntValue(i))
		}
	}
	return out
}

// Function is a user-defined function or method value: its parameter
// list, body, and the environment it closed over at definition time.
// DefiningClass is non-nil only for methods, and anchors `super`
// resolution to the lexically enclosing class rather than the
// receiver's dynamic class.
type FunctionValue struct {
	Name          string
	Params        []ast.Param
	Body          []ast.Stmt
	LambdaExpr    ast.Expr // non-nil for a lambda; Body is unused in that case
	Env           *Environment
	DefiningClass *ClassValue
}

func (*FunctionValue) Type() string     { return "function" }
func (f *FunctionValue) String() string { return fmt.Sprintf("<function %s>", f.Name) }

// NativeFunc is a host-implemented callable: it receives the call's
// positional arguments and keyword arguments and returns a Value or an
// error to surface as a runtime error.
type NativeFunc func(args []Value, kwargs map[string]Value) (Value, error)

// NativeFunction wraps a host callable registered under a name.
type NativeFunctionValue struct {
	Name string
	Fn   NativeFunc
}

func (*NativeFunctionValue) Type() string     { return "native_function" }
func (n *NativeFunctionValue) String() string { return fmt.Sprintf("<native function %s>", n.Name) }

// BoundMethod pairs a receiver with the function fetched from it;
// calling it prepends the receiver as the first positional argument.
type BoundMethodValue struct {
	Receiver Value
	Fn       *FunctionValue
}

func (*BoundMethodValue) Type() string { return "bound_method" }
func (b *BoundMethodValue) String() string {
	return fmt.Sprintf("<bound method %s of %s>", b.Fn.Name, b.Receiver.String())
}

// Class is a single-inheritance class: its method table and optional
// superclass.
type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (*ClassValue) Type() string     { return "class" }
func (c *ClassValue) String() string { return fmt.Sprintf("<class %s>", c.Name) }

// LookupMethod searches the instance's class then its superclass
// chain, returning the method and the class that declared it.
func (c *ClassValue) LookupMethod(name string) (*FunctionValue, *ClassValue) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m, cls
		}
	}
	return nil, nil
}

// Instance is a class instance: its attribute map plus a class
// reference for method lookup.
type InstanceValue struct {
	Class      *ClassValue
	Attributes map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Attributes: make(map[string]Value)}
}

func (*InstanceValue) Type() string     { return "instance" }
func (i *InstanceValue) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name) }

// SuperProxy is the transient value `super` evaluates to inside a
// method body: attribute access on it resolves against Class (the
// lexically enclosing method's declaring class's superclass) rather
// than Self's dynamic class.
type SuperProxyValue struct {
	Class *ClassValue
	Self  Value
}

func (*SuperProxyValue) Type() string   { return "super" }
func (*SuperProxyValue) String() string { return "<super>" }

// File is an open VFS handle.
type FileValue struct {
	Handle *vfs.Handle
}

func (*FileValue) Type() string { return "file" }
func (f *FileValue) String() string {
	return fmt.Sprintf("<file %q mode=%q>", f.Handle.Path(), f.Handle.ModeOf().String())
}

func joinRepr(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = reprOf(v)
	}
	return strings.Join(parts, ", ")
}

// reprOf renders v the way it would appear nested inside a container
// literal's printed form (strings quoted, containers recursive).
func reprOf(v Value) string {
	if s, ok := v.(StringValue); ok {
		return s.Quoted()
	}
	return v.String()
}
