package litmus

import (
	"strconv"
	"strings"
)

// Value is a pure expression over registers and integers.
// It is rendered symbolically by the emitter and never evaluated here.
type Value interface {
	isValue()
	String() string
}

var (
	_ Value = NoValue{}
	_ Value = NamedValue{}
	_ Value = Integer{}
	_ Value = Arithmetic{}
)

// NoValue marks an absent value, such as a load without an expected
// return value or the result of a reduction.
type NoValue struct{}

func (NoValue) isValue() {}
func (NoValue) String() string { return "NoValue" }

// NamedValue is the value held by a register.
type NamedValue struct {
	Name string
}

func (NamedValue) isValue() {}
func (v NamedValue) String() string { return v.Name }

// Integer is an integer literal.
type Integer struct {
	N int
}

func (Integer) isValue() {}
func (v Integer) String() string { return strconv.Itoa(v.N) }

// Arithmetic applies Op to its operands, left to right.
type Arithmetic struct {
	Op       AtomicOp
	Operands []Value
}

func (Arithmetic) isValue() {}
func (v Arithmetic) String() string {
	parts := make([]string, len(v.Operands))
	for i, o := range v.Operands {
		parts[i] = o.String()
	}
	return "(" + strings.Join(parts, " "+v.Op.String()+" ") + ")"
}

// IsNoValue reports whether v is absent.
func IsNoValue(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NoValue)
	return ok
}

// Reg is a shorthand for NamedValue{Name: name}.
func Reg(name string) NamedValue {
	return NamedValue{Name: name}
}

// Int is a shorthand for Integer{N: n}.
func Int(n int) Integer {
	return Integer{N: n}
}
