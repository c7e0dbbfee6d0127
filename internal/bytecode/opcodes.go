// Package bytecode defines the instruction set and the Function/Registry
// types, in an iota-block style.
package bytecode

type OpCode byte

const (
	OpNop OpCode = iota
	// Stack
	OpDup
	OpDrop
	OpSwap
	// Primitive push
	OpPushB
	OpPushI
	OpPushF
	OpPushList
	OpPushTable
	OpPushFn
	// Coercion
	OpIntoInt
	OpIntoFloat
	// Boolean
	OpAnd
	OpOr
	OpXor
	OpNot
	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	// Comparison
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessEqual
	OpGreaterEqual
	// List
	OpListPush
	OpListPop
	OpListGet
	OpListSet
	OpListLen
	// Table
	OpTableGet
	OpTableSet
	OpTableKeys
	OpTableLen
	// Meta
	OpLoadMeta
	OpStoreMeta
	// Locals
	OpLocalLoad
	OpLocalStore
	// Control
	OpBranch
	OpBranchIf
	OpBranchIfNot
	// Calls
	OpCall
	OpBind
	OpReturn
)

var opNames = [...]string{
	OpNop:          "Nop",
	OpDup:          "Dup",
	OpDrop:         "Drop",
	OpSwap:         "Swap",
	OpPushB:        "PushB",
	OpPushI:        "PushI",
	OpPushF:        "PushF",
	OpPushList:     "PushList",
	OpPushTable:    "PushTable",
	OpPushFn:       "PushFn",
	OpIntoInt:      "IntoInt",
	OpIntoFloat:    "IntoFloat",
	OpAnd:          "And",
	OpOr:           "Or",
	OpXor:          "Xor",
	OpNot:          "Not",
	OpAdd:          "Add",
	OpSub:          "Sub",
	OpMul:          "Mul",
	OpDiv:          "Div",
	OpMod:          "Mod",
	OpEqual:        "Equal",
	OpNotEqual:     "NotEqual",
	OpLessThan:     "LessThan",
	OpGreaterThan:  "GreaterThan",
	OpLessEqual:    "LessEqual",
	OpGreaterEqual: "GreaterEqual",
	OpListPush:     "ListPush",
	OpListPop:      "ListPop",
	OpListGet:      "ListGet",
	OpListSet:      "ListSet",
	OpListLen:      "ListLen",
	OpTableGet:     "TableGet",
	OpTableSet:     "TableSet",
	OpTableKeys:    "TableKeys",
	OpTableLen:     "TableLen",
	OpLoadMeta:     "LoadMeta",
	OpStoreMeta:    "StoreMeta",
	OpLocalLoad:    "LocalLoad",
	OpLocalStore:   "LocalStore",
	OpBranch:       "Branch",
	OpBranchIf:     "BranchIf",
	OpBranchIfNot:  "BranchIfNot",
	OpCall:         "Call",
	OpBind:         "Bind",
	OpReturn:       "Return",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "Unknown"
}
