package value

import "testing"

func TestTableSetGet(t *testing.T) {
	tbl := NewTable()
	tbl = tbl.Set(NewMetaValue(Int(1)), NewMetaValue(Bool(true)))
	v, ok := tbl.Get(NewMetaValue(Int(1)))
	if !ok {
		t.Fatal("expected key 1 to be present")
	}
	if v.Value.(Bool) != true {
		t.Fatalf("expected true, got %v", v)
	}
}

func TestTableSetDoesNotMutateOriginal(t *testing.T) {
	empty := NewTable()
	withEntry := empty.Set(NewMetaValue(Int(1)), NewMetaValue(Int(1)))
	if empty.Len() != 0 {
		t.Fatal("Set must not mutate the receiver — tables are value-typed")
	}
	if withEntry.Len() != 1 {
		t.Fatal("the returned table must carry the new entry")
	}
}

func TestTableSetOverwritesExisting(t *testing.T) {
	tbl := NewTable().Set(NewMetaValue(Int(1)), NewMetaValue(Int(10)))
	tbl = tbl.Set(NewMetaValue(Int(1)), NewMetaValue(Int(20)))
	if tbl.Len() != 1 {
		t.Fatalf("overwriting an existing key must not grow the table, got len %d", tbl.Len())
	}
	v, _ := tbl.Get(NewMetaValue(Int(1)))
	if v.Value.(Int) != 20 {
		t.Fatal("overwrite must replace the stored value")
	}
}

func TestTableKeysInsertionOrder(t *testing.T) {
	tbl := NewTable().
		Set(NewMetaValue(Int(3)), NewMetaValue(Bool(true))).
		Set(NewMetaValue(Int(1)), NewMetaValue(Bool(true))).
		Set(NewMetaValue(Int(2)), NewMetaValue(Bool(true)))

	keys := tbl.Keys()
	want := []int64{3, 1, 2}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range keys {
		if int64(k.Value.(Int)) != want[i] {
			t.Fatalf("key %d: expected %d, got %v", i, want[i], k.Value)
		}
	}
}

func TestTableEqualOrderIndependent(t *testing.T) {
	a := NewTable().
		Set(NewMetaValue(Int(1)), NewMetaValue(Bool(true))).
		Set(NewMetaValue(Int(2)), NewMetaValue(Bool(false)))
	b := NewTable().
		Set(NewMetaValue(Int(2)), NewMetaValue(Bool(false))).
		Set(NewMetaValue(Int(1)), NewMetaValue(Bool(true)))

	if !a.Equal(b) {
		t.Fatal("tables built by inserting the same pairs in a different order must be Equal")
	}
}

func TestTableGetMiss(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Get(NewMetaValue(Int(1))); ok {
		t.Fatal("Get on an empty table must report a miss")
	}
}

func TestTableListKey(t *testing.T) {
	key := NewMetaValue(List{NewMetaValue(Int(1)), NewMetaValue(Int(2))})
	tbl := NewTable().Set(key, NewMetaValue(Bool(true)))
	v, ok := tbl.Get(NewMetaValue(List{NewMetaValue(Int(1)), NewMetaValue(Int(2))}))
	if !ok || v.Value.(Bool) != true {
		t.Fatal("structurally equal List keys must collide to the same entry")
	}
}
