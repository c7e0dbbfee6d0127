// Package compiler implements the Emitter: it appends opcodes,
// allocates locals, and lowers structured control flow (infinite_loop /
// while_loop / break_if[_not]) to absolute branches by backpatching.
//
// Grounded on original_source/src/vm/emitter.rs (emit/patch/local_new/
// infinite_loop/while_loop/break_if/break_if_not) and a jump-patch idiom
// common across bytecode compilers: emit a placeholder, record its
// index, patch once the target is known. One deviation from
// original_source is documented below and in DESIGN.md: nested loops
// get their own pending-break frame, rather than sharing one flat list.
package compiler

import (
	"lattice/internal/bytecode"
	"lattice/internal/vmerr"
)

// pendingBreaks holds the break_if/break_if_not placeholder indices
// recorded inside one (and only one) enclosing infinite_loop.
type pendingBreaks struct {
	ifIdx    []int
	ifNotIdx []int
}

// Emitter accumulates a Function's instructions in order.
type Emitter struct {
	instructions []bytecode.Inst
	nextLocal    int
	envLocals    int

	loops       []*pendingBreaks // stack of enclosing loops, innermost last
	orphanIf    []int            // break_if seen with no enclosing loop
	orphanIfNot []int            // break_if_not seen with no enclosing loop
}

// New returns an Emitter for a function with no captured environment.
func New() *Emitter {
	return &Emitter{}
}

// NewForClosureBody returns an Emitter preparing a closure body: the
// first envLocals slots are reserved for the captured Env, so
// local_new (LocalNew here) begins allocating at envLocals instead of 0.
func NewForClosureBody(envLocals int) *Emitter {
	return &Emitter{nextLocal: envLocals, envLocals: envLocals}
}

func (e *Emitter) emit(inst bytecode.Inst) int {
	e.instructions = append(e.instructions, inst)
	return len(e.instructions) - 1
}

// CurrentIdx is the index the next emitted instruction will occupy.
func (e *Emitter) CurrentIdx() int {
	return len(e.instructions)
}

// PreviousIdx is the index of the most recently emitted instruction.
func (e *Emitter) PreviousIdx() int {
	return len(e.instructions) - 1
}

// Patch overwrites the instruction at idx — used to backpatch branch
// placeholders once their target is known.
func (e *Emitter) Patch(idx int, inst bytecode.Inst) {
	e.instructions[idx] = inst
}

// LocalNew allocates a fresh local slot index, starting at envLocals
// when the Emitter was built with NewForClosureBody.
func (e *Emitter) LocalNew() int {
	idx := e.nextLocal
	e.nextLocal++
	return idx
}

// --- stack / primitive / coercion / boolean / arithmetic / comparison ---

func (e *Emitter) Nop() int             { return e.emit(bytecode.Inst{Op: bytecode.OpNop}) }
func (e *Emitter) Dup() *Emitter        { e.emit(bytecode.Inst{Op: bytecode.OpDup}); return e }
func (e *Emitter) Drop() *Emitter       { e.emit(bytecode.Inst{Op: bytecode.OpDrop}); return e }
func (e *Emitter) Swap() *Emitter       { e.emit(bytecode.Inst{Op: bytecode.OpSwap}); return e }

func (e *Emitter) PushBool(v bool) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpPushB, Bool: v})
	return e
}
func (e *Emitter) PushInt(v int64) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpPushI, Int: v})
	return e
}
func (e *Emitter) PushFloat(v float64) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpPushF, Float: v})
	return e
}
func (e *Emitter) PushList() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpPushList}); return e }
func (e *Emitter) PushTable() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpPushTable}); return e }
func (e *Emitter) PushFn(name string) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpPushFn, Str: name})
	return e
}

func (e *Emitter) IntoInt() *Emitter   { e.emit(bytecode.Inst{Op: bytecode.OpIntoInt}); return e }
func (e *Emitter) IntoFloat() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpIntoFloat}); return e }

func (e *Emitter) And() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpAnd}); return e }
func (e *Emitter) Or() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpOr}); return e }
func (e *Emitter) Xor() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpXor}); return e }
func (e *Emitter) Not() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpNot}); return e }

func (e *Emitter) Add() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpAdd}); return e }
func (e *Emitter) Sub() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpSub}); return e }
func (e *Emitter) Mul() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpMul}); return e }
func (e *Emitter) Div() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpDiv}); return e }
func (e *Emitter) Mod() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpMod}); return e }

func (e *Emitter) Equal() *Emitter        { e.emit(bytecode.Inst{Op: bytecode.OpEqual}); return e }
func (e *Emitter) NotEqual() *Emitter     { e.emit(bytecode.Inst{Op: bytecode.OpNotEqual}); return e }
func (e *Emitter) LessThan() *Emitter     { e.emit(bytecode.Inst{Op: bytecode.OpLessThan}); return e }
func (e *Emitter) GreaterThan() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpGreaterThan}); return e }
func (e *Emitter) LessEqual() *Emitter    { e.emit(bytecode.Inst{Op: bytecode.OpLessEqual}); return e }
func (e *Emitter) GreaterEqual() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpGreaterEqual}); return e }

// --- list / table / meta ---

func (e *Emitter) ListPush() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpListPush}); return e }
func (e *Emitter) ListPop() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpListPop}); return e }
func (e *Emitter) ListGet() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpListGet}); return e }
func (e *Emitter) ListSet() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpListSet}); return e }
func (e *Emitter) ListLen() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpListLen}); return e }

func (e *Emitter) TableGet() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpTableGet}); return e }
func (e *Emitter) TableSet() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpTableSet}); return e }
func (e *Emitter) TableKeys() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpTableKeys}); return e }
func (e *Emitter) TableLen() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpTableLen}); return e }

func (e *Emitter) LoadMeta() *Emitter  { e.emit(bytecode.Inst{Op: bytecode.OpLoadMeta}); return e }
func (e *Emitter) StoreMeta() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpStoreMeta}); return e }

// --- locals / calls ---

func (e *Emitter) LocalLoad(idx int) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpLocalLoad, Int: int64(idx)})
	return e
}
func (e *Emitter) LocalStore(idx int) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpLocalStore, Int: int64(idx)})
	return e
}

func (e *Emitter) Call() *Emitter   { e.emit(bytecode.Inst{Op: bytecode.OpCall}); return e }
func (e *Emitter) Bind() *Emitter   { e.emit(bytecode.Inst{Op: bytecode.OpBind}); return e }
func (e *Emitter) Return() *Emitter { e.emit(bytecode.Inst{Op: bytecode.OpReturn}); return e }

// --- raw branches (targets must already be known) ---

func (e *Emitter) Branch(target int) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpBranch, Int: int64(target)})
	return e
}
func (e *Emitter) BranchIf(target int) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpBranchIf, Int: int64(target)})
	return e
}
func (e *Emitter) BranchIfNot(target int) *Emitter {
	e.emit(bytecode.Inst{Op: bytecode.OpBranchIfNot, Int: int64(target)})
	return e
}

// --- structured control flow ---

// BreakIf emits a Nop placeholder that the innermost enclosing
// InfiniteLoop/WhileLoop will backpatch to BranchIf(end) at its close.
func (e *Emitter) BreakIf() *Emitter {
	idx := e.Nop()
	if n := len(e.loops); n > 0 {
		e.loops[n-1].ifIdx = append(e.loops[n-1].ifIdx, idx)
	} else {
		e.orphanIf = append(e.orphanIf, idx)
	}
	return e
}

// BreakIfNot is BreakIf's BranchIfNot counterpart.
func (e *Emitter) BreakIfNot() *Emitter {
	idx := e.Nop()
	if n := len(e.loops); n > 0 {
		e.loops[n-1].ifNotIdx = append(e.loops[n-1].ifNotIdx, idx)
	} else {
		e.orphanIfNot = append(e.orphanIfNot, idx)
	}
	return e
}

// InfiniteLoop emits body repeatedly: start PC, body, Branch(start), and
// backpatches every break_if[_not] recorded *inside this call's body* —
// not any other loop's — to branch to the post-loop PC. Nesting is
// handled by pushing a fresh pendingBreaks frame per call, so a break
// emitted inside a nested InfiniteLoop is drained by that inner call,
// never by an outer one (see DESIGN.md for why this differs from the
// flat list in original_source/src/vm/emitter.rs).
func (e *Emitter) InfiniteLoop(body func(*Emitter)) *Emitter {
	frame := &pendingBreaks{}
	e.loops = append(e.loops, frame)

	start := e.CurrentIdx()
	body(e)
	e.Branch(start)
	end := e.CurrentIdx()

	e.loops = e.loops[:len(e.loops)-1]
	for _, idx := range frame.ifIdx {
		e.Patch(idx, bytecode.Inst{Op: bytecode.OpBranchIf, Int: int64(end)})
	}
	for _, idx := range frame.ifNotIdx {
		e.Patch(idx, bytecode.Inst{Op: bytecode.OpBranchIfNot, Int: int64(end)})
	}
	return e
}

// WhileLoop desugars to infinite_loop { cond(); break_if_not(); body() }.
func (e *Emitter) WhileLoop(cond func(*Emitter), body func(*Emitter)) *Emitter {
	return e.InfiniteLoop(func(e *Emitter) {
		cond(e)
		e.BreakIfNot()
		body(e)
	})
}

// Finish finalizes the Function. It is an error to finish with an
// unclosed InfiniteLoop call (a bug in this package, not in caller
// code) or with a break_if[_not] that was never inside one — a usage
// error for a break_* to outlive any enclosing loop.
func (e *Emitter) Finish() (*bytecode.Function, error) {
	if len(e.loops) > 0 {
		return nil, vmerr.UnclosedLoop()
	}
	if len(e.orphanIf) > 0 || len(e.orphanIfNot) > 0 {
		return nil, vmerr.UnresolvedBreak()
	}
	return &bytecode.Function{
		Instructions: e.instructions,
		Locals:       e.nextLocal - e.envLocals,
	}, nil
}
