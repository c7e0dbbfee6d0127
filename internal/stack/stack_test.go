package stack

import (
	"testing"

	"lattice/internal/value"
	"lattice/internal/vmerr"
)

func TestPushPopRoundTrip(t *testing.T) {
	s := New()
	s.PushValue(value.Int(42))
	v, err := s.Pop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Value.(value.Int) != 42 {
		t.Fatalf("expected 42, got %v", v.Value)
	}
}

func TestPopEmptyStack(t *testing.T) {
	s := New()
	_, err := s.Pop()
	if vmerr.KindOf(err) != vmerr.KindEmptyStack {
		t.Fatalf("expected EmptyStack, got %v", err)
	}
}

func TestTypedPopMismatchConsumesValue(t *testing.T) {
	s := New()
	s.PushValue(value.Bool(true))
	if _, err := s.PopInt(); vmerr.KindOf(err) != vmerr.KindTypeError {
		t.Fatalf("expected TypeError popping Int off a Bool, got %v", err)
	}
	// The mismatched value must already be gone — typed pops consume
	// the top regardless of outcome.
	if s.Depth() != 0 {
		t.Fatalf("expected depth 0 after a consuming typed pop, got %d", s.Depth())
	}
}

func TestDepthTracksPushesAndPops(t *testing.T) {
	s := New()
	s.PushValue(value.Int(1))
	s.PushValue(value.Int(2))
	if s.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", s.Depth())
	}
	if _, err := s.Pop(); err != nil {
		t.Fatal(err)
	}
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1 after one pop, got %d", s.Depth())
	}
}

func TestPopListTypeError(t *testing.T) {
	s := New()
	s.PushValue(value.Int(1))
	if _, err := s.PopList(); vmerr.KindOf(err) != vmerr.KindTypeError {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestPopFunctionRefRoundTrip(t *testing.T) {
	s := New()
	fr := value.FunctionRef{Name: "f", Env: value.NewEnv(0)}
	s.PushValue(fr)
	got, err := s.PopFunctionRef()
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "f" {
		t.Fatalf("expected name f, got %s", got.Name)
	}
}
