package value

import (
	"math"
	"testing"
)

func TestEqualFloatNaN(t *testing.T) {
	a := Float(math.NaN())
	b := Float(math.NaN())
	if !Equal(a, b) {
		t.Fatal("NaN should equal NaN under the total-equality rule")
	}
}

func TestEqualFloatZero(t *testing.T) {
	if !Equal(Float(0.0), Float(math.Copysign(0, -1))) {
		t.Fatal("+0.0 should equal -0.0")
	}
}

func TestEqualMixedKinds(t *testing.T) {
	if Equal(Int(1), Float(1)) {
		t.Fatal("Int and Float must never compare equal, even with the same magnitude")
	}
}

func TestEqualList(t *testing.T) {
	a := List{NewMetaValue(Int(1)), NewMetaValue(Int(2))}
	b := List{NewMetaValue(Int(1)), NewMetaValue(Int(2))}
	c := List{NewMetaValue(Int(1)), NewMetaValue(Int(3))}
	if !Equal(a, b) {
		t.Fatal("element-wise equal lists should be Equal")
	}
	if Equal(a, c) {
		t.Fatal("lists differing in one element must not be Equal")
	}
}

func TestMetaValueEqualityRespectsMeta(t *testing.T) {
	plain := NewMetaValue(Int(1))
	tagged := MetaValue{Value: Int(1), Meta: NewTable().Set(NewMetaValue(Bool(true)), NewMetaValue(Bool(true)))}
	if plain.Equal(tagged) {
		t.Fatal("values with different meta-tables must not be Equal")
	}
	if !Equal(plain.Value, tagged.Value) {
		t.Fatal("bare value.Equal should ignore meta and still match")
	}
}

func TestFunctionRefEqualityByEnv(t *testing.T) {
	envA := NewEnv(1)
	envA.Set(0, NewMetaValue(Int(1)))
	envB := NewEnv(1)
	envB.Set(0, NewMetaValue(Int(2)))

	a := FunctionRef{Name: "f", Env: envA}
	b := FunctionRef{Name: "f", Env: envB}
	if Equal(a, b) {
		t.Fatal("two FunctionRefs with the same name but different captured envs must not be Equal")
	}

	c := FunctionRef{Name: "f", Env: envA.Clone()}
	if !Equal(a, c) {
		t.Fatal("two FunctionRefs with equal name and equal captured env must be Equal")
	}
}

func TestEnvUnsetSlot(t *testing.T) {
	env := NewEnv(2)
	if env.IsSet(0) {
		t.Fatal("a fresh Env slot must start unset")
	}
	env.Set(0, NewMetaValue(Int(5)))
	if !env.IsSet(0) {
		t.Fatal("Set must mark the slot initialized")
	}
	if !env.InRange(1) || env.InRange(2) {
		t.Fatal("InRange must reflect the Env's actual length")
	}
}

func TestEnvReserveExtendsLength(t *testing.T) {
	env := NewEnv(1)
	env.Reserve(2)
	if env.Len() != 3 {
		t.Fatalf("Reserve(2) on a 1-slot Env should yield length 3, got %d", env.Len())
	}
}

func TestEnvCloneIndependence(t *testing.T) {
	env := NewEnv(1)
	env.Set(0, NewMetaValue(Int(1)))
	clone := env.Clone()
	clone.Set(0, NewMetaValue(Int(2)))
	if env.Get(0).Value.(Int) != 1 {
		t.Fatal("mutating a clone must not affect the original Env")
	}
}
