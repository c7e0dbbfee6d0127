// Package stack implements the single operand stack shared across every
// call frame in one VM: a LIFO of MetaValues, plus typed pop helpers
// that consume the top value and fail cleanly — without putting it
// back — on a tag mismatch.
//
// Grounded on original_source/src/vm/stack.rs's push_bool/push_int/...
// and pop_bool/pop_int/... pairs, factored into its own type the way
// other_examples/.../neo-go__pkg-vm-vm.go.go factors istack/estack/astack
// out of its VM struct.
package stack

import (
	"lattice/internal/value"
	"lattice/internal/vmerr"
)

type Stack struct {
	items []value.MetaValue
}

func New() *Stack {
	return &Stack{}
}

// Depth reports the current operand count.
func (s *Stack) Depth() int {
	return len(s.items)
}

// Push places a fully-formed MetaValue on top.
func (s *Stack) Push(v value.MetaValue) {
	s.items = append(s.items, v)
}

// PushValue wraps a bare Value with an empty meta-table before pushing,
// the convention every push instruction uses.
func (s *Stack) PushValue(v value.Value) {
	s.Push(value.NewMetaValue(v))
}

// Pop removes and returns the top MetaValue, or EmptyStack if none.
func (s *Stack) Pop() (value.MetaValue, error) {
	if len(s.items) == 0 {
		return value.MetaValue{}, vmerr.EmptyStack()
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, nil
}

// Peek returns the top MetaValue without removing it.
func (s *Stack) Peek() (value.MetaValue, error) {
	if len(s.items) == 0 {
		return value.MetaValue{}, vmerr.EmptyStack()
	}
	return s.items[len(s.items)-1], nil
}

// Snapshot returns the current contents, bottom first, for tracing —
// callers must not mutate the result.
func (s *Stack) Snapshot() []value.MetaValue {
	return s.items
}

func (s *Stack) PopBool() (bool, error) {
	mv, err := s.Pop()
	if err != nil {
		return false, err
	}
	b, ok := mv.Value.(value.Bool)
	if !ok {
		return false, vmerr.TypeError("Bool", mv.Value.Kind())
	}
	return bool(b), nil
}

func (s *Stack) PopInt() (int64, error) {
	mv, err := s.Pop()
	if err != nil {
		return 0, err
	}
	i, ok := mv.Value.(value.Int)
	if !ok {
		return 0, vmerr.TypeError("Int", mv.Value.Kind())
	}
	return int64(i), nil
}

func (s *Stack) PopFloat() (float64, error) {
	mv, err := s.Pop()
	if err != nil {
		return 0, err
	}
	f, ok := mv.Value.(value.Float)
	if !ok {
		return 0, vmerr.TypeError("Float", mv.Value.Kind())
	}
	return float64(f), nil
}

func (s *Stack) PopList() (value.List, error) {
	mv, err := s.Pop()
	if err != nil {
		return nil, err
	}
	l, ok := mv.Value.(value.List)
	if !ok {
		return nil, vmerr.TypeError("List", mv.Value.Kind())
	}
	return l, nil
}

func (s *Stack) PopTable() (*value.Table, error) {
	mv, err := s.Pop()
	if err != nil {
		return nil, err
	}
	t, ok := mv.Value.(*value.Table)
	if !ok {
		return nil, vmerr.TypeError("Table", mv.Value.Kind())
	}
	return t, nil
}

func (s *Stack) PopFunctionRef() (value.FunctionRef, error) {
	mv, err := s.Pop()
	if err != nil {
		return value.FunctionRef{}, err
	}
	f, ok := mv.Value.(value.FunctionRef)
	if !ok {
		return value.FunctionRef{}, vmerr.TypeError("FunctionRef", mv.Value.Kind())
	}
	return f, nil
}
