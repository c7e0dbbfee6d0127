package value

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// hashKey builds a canonical string encoding of a MetaValue, used only
// as a Table bucket key. It need not be collision-free — Table.findIndex
// always confirms with a full Equal check — but it must agree with
// Equal wherever Equal reports true, so NaN/-0.0 are normalized the
// same way Equal treats them.
func hashKey(mv MetaValue) string {
	var sb strings.Builder
	writeValue(&sb, mv.Value)
	sb.WriteByte('~')
	writeTable(&sb, mv.Meta)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value) {
	switch t := v.(type) {
	case Bool:
		fmt.Fprintf(sb, "B%v", bool(t))
	case Int:
		fmt.Fprintf(sb, "I%d", int64(t))
	case Float:
		f := float64(t)
		switch {
		case math.IsNaN(f):
			sb.WriteString("Fnan")
		case f == 0:
			sb.WriteString("F0")
		default:
			fmt.Fprintf(sb, "F%g", f)
		}
	case List:
		sb.WriteByte('[')
		for _, e := range t {
			writeValue(sb, e.Value)
			sb.WriteByte(',')
			writeTable(sb, e.Meta)
			sb.WriteByte(';')
		}
		sb.WriteByte(']')
	case *Table:
		// Table.Equal is order-independent, so the hash must be too:
		// hash each entry on its own (covering both Key and Val's full
		// MetaValue, Meta included), then sort before joining.
		pairs := make([]string, len(t.entries))
		for i, e := range t.entries {
			pairs[i] = hashKey(e.Key) + ":" + hashKey(e.Val)
		}
		sort.Strings(pairs)
		sb.WriteByte('{')
		for _, p := range pairs {
			sb.WriteString(p)
			sb.WriteByte(';')
		}
		sb.WriteByte('}')
	case FunctionRef:
		fmt.Fprintf(sb, "Fn(%s)#%d", t.Name, t.Env.Len())
	default:
		fmt.Fprintf(sb, "?%v", v)
	}
}

func writeTable(sb *strings.Builder, t *Table) {
	if t == nil {
		sb.WriteString("{}")
		return
	}
	writeValue(sb, t)
}
