package value

import "strings"

type tableEntry struct {
	Key MetaValue
	Val MetaValue
}

// Table is an insertion-ordered mapping from MetaValue to MetaValue.
// Insertion order is chosen over key-sorted iteration (see DESIGN.md)
// since keys may be Lists or FunctionRefs, which have no natural sort
// order.
//
// Lookup is backed by a hash index keyed on a canonical string encoding
// of each MetaValue (covering both Value and Meta); entries that
// hash-collide are disambiguated with a final Equal check, so Get/Set
// never rely on the index alone for correctness.
type Table struct {
	entries []tableEntry
	index   map[string][]int
}

// NewTable returns an empty table; every MetaValue's default meta-table
// is an empty Table produced by this constructor.
func NewTable() *Table {
	return &Table{index: make(map[string][]int)}
}

func (*Table) Kind() string { return "Table" }

func (t *Table) String() string {
	if t == nil || len(t.entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(t.entries))
	for i, e := range t.entries {
		parts[i] = e.Key.Value.String() + ": " + e.Val.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (*Table) isValue() {}

// Len reports the number of entries; a nil Table (never produced by
// NewTable but possible as a zero value) counts as empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Table) findIndex(key MetaValue) (int, bool) {
	if t == nil {
		return 0, false
	}
	h := hashKey(key)
	for _, i := range t.index[h] {
		if t.entries[i].Key.Equal(key) {
			return i, true
		}
	}
	return 0, false
}

// Get looks up key by MetaValue equality.
func (t *Table) Get(key MetaValue) (MetaValue, bool) {
	i, ok := t.findIndex(key)
	if !ok {
		return MetaValue{}, false
	}
	return t.entries[i].Val, true
}

// Set returns a NEW table with key bound to val — containers are
// value-typed, so mutation never aliases the receiver.
func (t *Table) Set(key, val MetaValue) *Table {
	nt := t.clone()
	if i, ok := nt.findIndex(key); ok {
		nt.entries[i].Val = val
		return nt
	}
	nt.entries = append(nt.entries, tableEntry{Key: key, Val: val})
	h := hashKey(key)
	nt.index[h] = append(nt.index[h], len(nt.entries)-1)
	return nt
}

// Keys returns the current keys in insertion order.
func (t *Table) Keys() List {
	if t == nil {
		return List{}
	}
	ks := make(List, len(t.entries))
	for i, e := range t.entries {
		ks[i] = e.Key
	}
	return ks
}

func (t *Table) clone() *Table {
	nt := NewTable()
	if t == nil {
		return nt
	}
	nt.entries = append(nt.entries, t.entries...)
	for h, idxs := range t.index {
		cp := make([]int, len(idxs))
		copy(cp, idxs)
		nt.index[h] = cp
	}
	return nt
}

// Equal compares tables as an order-independent set of key/value pairs:
// TableKeys' order is observable and deterministic (insertion order),
// but two tables built by inserting the same pairs in different orders
// are still the same value.
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() {
		return false
	}
	if t == nil {
		return true
	}
	for _, e := range t.entries {
		ov, ok := other.Get(e.Key)
		if !ok || !ov.Equal(e.Val) {
			return false
		}
	}
	return true
}
