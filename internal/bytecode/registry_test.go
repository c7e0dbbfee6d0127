package bytecode

import "testing"

func TestRegistryDefineLookup(t *testing.T) {
	reg := NewRegistry()
	fn := &Function{Instructions: []Inst{{Op: OpReturn}}}
	reg.Define("f", fn)

	got, ok := reg.Lookup("f")
	if !ok {
		t.Fatal("expected f to be found")
	}
	if got != fn {
		t.Fatal("expected the exact registered function back")
	}
}

func TestRegistryLookupMiss(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Lookup("missing"); ok {
		t.Fatal("expected a miss on an undefined name")
	}
}

func TestRegistryDefineOverwrites(t *testing.T) {
	reg := NewRegistry()
	first := &Function{Locals: 1}
	second := &Function{Locals: 2}
	reg.Define("f", first)
	reg.Define("f", second)

	got, _ := reg.Lookup("f")
	if got.Locals != 2 {
		t.Fatalf("expected the later definition to win, got Locals=%d", got.Locals)
	}
}

func TestOpCodeStringKnownAndUnknown(t *testing.T) {
	if OpAdd.String() != "Add" {
		t.Fatalf("expected Add, got %s", OpAdd.String())
	}
	if OpCode(255).String() != "Unknown" {
		t.Fatalf("expected Unknown for an out-of-range opcode, got %s", OpCode(255).String())
	}
}
