// Package value implements the tagged value union the VM operates on:
// Bool, Int, Float, List, Table and FunctionRef, each optionally carrying
// a meta-table, plus the MetaValue wrapper and the Env local-slot frame.
package value

import (
	"fmt"
	"math"
	"strings"
)

// Value is the closed tagged union every runtime value belongs to.
// Every concrete type below is the only legal implementation; the
// unexported method keeps the set closed the way a Rust enum or a
// single switch over a sum type would.
type Value interface {
	Kind() string
	String() string
	isValue()
}

type Bool bool

func (Bool) Kind() string     { return "Bool" }
func (b Bool) String() string { return fmt.Sprintf("%v", bool(b)) }
func (Bool) isValue()         {}

type Int int64

func (Int) Kind() string     { return "Int" }
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }
func (Int) isValue()         {}

// Float carries IEEE-754 double semantics, but with the total equality
// required for container keys: NaN equals NaN, and Go's native ==
// already treats -0.0 as equal to +0.0.
type Float float64

func (Float) Kind() string { return "Float" }
func (f Float) String() string {
	if math.IsNaN(float64(f)) {
		return "nan"
	}
	return fmt.Sprintf("%g", float64(f))
}
func (Float) isValue() {}

// List is an ordered, value-typed sequence. Every mutating list
// instruction returns a fresh List rather than mutating the backing
// array in place, so two MetaValues never alias the same list.
type List []MetaValue

func (List) Kind() string { return "List" }
func (l List) String() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Value.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (List) isValue() {}

// FunctionRef is a first-class reference to a registered function
// together with the Env captured for it at Bind time (empty until bound).
type FunctionRef struct {
	Name string
	Env  *Env
}

func (FunctionRef) Kind() string { return "FunctionRef" }
func (f FunctionRef) String() string {
	return fmt.Sprintf("<fn %s/%d>", f.Name, f.Env.Len())
}
func (FunctionRef) isValue() {}

// MetaValue pairs a Value with its meta-table. A MetaValue with a nil
// Meta is treated as carrying the empty table everywhere in this
// package — NewMetaValue always fills it in so nil only appears on the
// zero value.
type MetaValue struct {
	Value Value
	Meta  *Table
}

// NewMetaValue wraps a bare Value with an empty meta-table, the
// convention every push helper in internal/stack uses.
func NewMetaValue(v Value) MetaValue {
	return MetaValue{Value: v, Meta: NewTable()}
}

func (mv MetaValue) String() string {
	if mv.Meta.Len() == 0 {
		return mv.Value.String()
	}
	return mv.Value.String() + " ~" + mv.Meta.String()
}

// Equal compares MetaValues over both Value and Meta: two otherwise-
// equal values with different meta-tables are distinct.
func (mv MetaValue) Equal(other MetaValue) bool {
	return Equal(mv.Value, other.Value) && mv.Meta.Equal(other.Meta)
}

// Equal implements structural equality across the whole Value union.
// Mismatched kinds are never equal; Float follows the total-equality
// rule (NaN==NaN).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		if !ok {
			return false
		}
		af, bf := float64(av), float64(bv)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return math.IsNaN(af) && math.IsNaN(bf)
		}
		return af == bf
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case *Table:
		bv, ok := b.(*Table)
		if !ok {
			return false
		}
		return av.Equal(bv)
	case FunctionRef:
		bv, ok := b.(FunctionRef)
		return ok && av.Name == bv.Name && av.Env.Equal(bv.Env)
	default:
		return false
	}
}
