// Package vm implements the interpreter: the dispatch loop, per-function
// execution frame, instruction semantics, and recursive function call.
//
// Grounded on a dispatch-loop shape common to bytecode interpreters (one
// big switch over the opcode, a frame per call), narrowed so that Call
// recurses into execute rather than pushing a software frame array —
// nesting depth is the host call stack depth — and on
// original_source/src/vm/mod.rs's per-opcode semantics (stack argument
// order "pop b then a", IntoInt/IntoFloat's coercion table, meta
// load/store).
package vm

import (
	"math"

	"github.com/pkg/errors"

	"lattice/internal/bytecode"
	"lattice/internal/stack"
	"lattice/internal/value"
	"lattice/internal/vmerr"
)

// VM is a stack-based interpreter bound to one Registry. It is not
// safe for concurrent use: a VM instance owns exactly one operand stack
// and executes strictly single-threaded.
type VM struct {
	registry *bytecode.Registry
	stack    *stack.Stack
	tracer   Tracer
	budget   int64 // negative = unlimited
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithTracer installs a step tracer — an optional tracing toggle.
func WithTracer(t Tracer) Option {
	return func(v *VM) { v.tracer = t }
}

// WithInstructionBudget bounds the total number of instructions the VM
// may execute, across all nested calls and all Runs (the budget is not
// reset between Runs), surfacing BudgetExhausted once exhausted — a cooperative-cancellation hook for a host that wants to
// bound or time out execution without any built-in concurrency.
func WithInstructionBudget(n int64) Option {
	return func(v *VM) { v.budget = n }
}

// New constructs a VM over reg. The operand stack starts empty; seed it
// with Push before calling Run.
func New(reg *bytecode.Registry, opts ...Option) *VM {
	v := &VM{registry: reg, stack: stack.New(), budget: -1}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Push seeds the operand stack with a fully-formed MetaValue.
func (v *VM) Push(mv value.MetaValue) { v.stack.Push(mv) }

// PushValue seeds the operand stack with a bare Value, wrapped in an
// empty meta-table.
func (v *VM) PushValue(val value.Value) { v.stack.PushValue(val) }

// Pop removes and returns the top of the operand stack, for a host to
// read results after Run returns.
func (v *VM) Pop() (value.MetaValue, error) { return v.stack.Pop() }

// Depth reports the current operand stack depth.
func (v *VM) Depth() int { return v.stack.Depth() }

// Run looks up name in the registry and executes it with a fresh,
// empty Env — a top-level call has no captured environment. Arguments
// must already be on the operand stack.
func (v *VM) Run(name string) error {
	fn, ok := v.registry.Lookup(name)
	if !ok {
		return vmerr.FunctionNotFound(name)
	}
	return v.execute(fn, value.NewEnv(fn.Locals))
}

var arithOp = map[bytecode.OpCode]string{
	bytecode.OpAdd: "+",
	bytecode.OpSub: "-",
	bytecode.OpMul: "*",
	bytecode.OpDiv: "/",
	bytecode.OpMod: "%",
}

// execute runs fn's instructions against env, using the VM's single
// shared operand stack. It recurses for Call, so call depth is the Go
// call stack depth.
func (v *VM) execute(fn *bytecode.Function, env *value.Env) error {
	pc := 0
	for pc < len(fn.Instructions) {
		if v.budget >= 0 {
			if v.budget == 0 {
				return vmerr.BudgetExhausted()
			}
			v.budget--
		}

		inst := fn.Instructions[pc]
		if v.tracer != nil {
			v.tracer.OnStep(pc, inst, v.stack, env)
		}

		next := pc + 1
		var err error

		switch inst.Op {
		case bytecode.OpNop:
			// no-op, including backpatch placeholders that were never
			// turned into a break branch (legal: a loop with no break).

		case bytecode.OpDup:
			var mv value.MetaValue
			if mv, err = v.stack.Pop(); err == nil {
				v.stack.Push(mv)
				v.stack.Push(mv)
			}

		case bytecode.OpDrop:
			_, err = v.stack.Pop()

		case bytecode.OpSwap:
			var a, b value.MetaValue
			if a, err = v.stack.Pop(); err == nil {
				if b, err = v.stack.Pop(); err == nil {
					v.stack.Push(a)
					v.stack.Push(b)
				}
			}

		case bytecode.OpPushB:
			v.stack.PushValue(value.Bool(inst.Bool))
		case bytecode.OpPushI:
			v.stack.PushValue(value.Int(inst.Int))
		case bytecode.OpPushF:
			v.stack.PushValue(value.Float(inst.Float))
		case bytecode.OpPushList:
			v.stack.PushValue(value.List{})
		case bytecode.OpPushTable:
			v.stack.PushValue(value.NewTable())
		case bytecode.OpPushFn:
			v.stack.PushValue(value.FunctionRef{Name: inst.Str, Env: value.NewEnv(0)})

		case bytecode.OpIntoInt:
			err = v.intoInt()
		case bytecode.OpIntoFloat:
			err = v.intoFloat()

		case bytecode.OpAnd:
			err = v.boolBinary(func(a, b bool) bool { return a && b })
		case bytecode.OpOr:
			err = v.boolBinary(func(a, b bool) bool { return a || b })
		case bytecode.OpXor:
			err = v.boolBinary(func(a, b bool) bool { return a != b })
		case bytecode.OpNot:
			var a bool
			if a, err = v.stack.PopBool(); err == nil {
				v.stack.PushValue(value.Bool(!a))
			}

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			err = v.arith(inst.Op)

		case bytecode.OpEqual, bytecode.OpNotEqual:
			var a, b value.MetaValue
			if b, err = v.stack.Pop(); err == nil {
				if a, err = v.stack.Pop(); err == nil {
					eq := a.Equal(b)
					if inst.Op == bytecode.OpNotEqual {
						eq = !eq
					}
					v.stack.PushValue(value.Bool(eq))
				}
			}

		case bytecode.OpLessThan, bytecode.OpGreaterThan, bytecode.OpLessEqual, bytecode.OpGreaterEqual:
			err = v.intCompare(inst.Op)

		case bytecode.OpListPush:
			err = v.listPush()
		case bytecode.OpListPop:
			err = v.listPop()
		case bytecode.OpListGet:
			err = v.listGet()
		case bytecode.OpListSet:
			err = v.listSet()
		case bytecode.OpListLen:
			var l value.List
			if l, err = v.stack.PopList(); err == nil {
				v.stack.PushValue(value.Int(len(l)))
			}

		case bytecode.OpTableGet:
			err = v.tableGet()
		case bytecode.OpTableSet:
			err = v.tableSet()
		case bytecode.OpTableKeys:
			var t *value.Table
			if t, err = v.stack.PopTable(); err == nil {
				v.stack.PushValue(t.Keys())
			}
		case bytecode.OpTableLen:
			var t *value.Table
			if t, err = v.stack.PopTable(); err == nil {
				v.stack.PushValue(value.Int(t.Len()))
			}

		case bytecode.OpLoadMeta:
			var mv value.MetaValue
			if mv, err = v.stack.Pop(); err == nil {
				v.stack.PushValue(mv.Meta)
			}
		case bytecode.OpStoreMeta:
			err = v.storeMeta()

		case bytecode.OpLocalLoad:
			err = v.localLoad(env, int(inst.Int))
		case bytecode.OpLocalStore:
			err = v.localStore(env, int(inst.Int))

		case bytecode.OpBranch:
			next = int(inst.Int)
		case bytecode.OpBranchIf:
			var b bool
			if b, err = v.stack.PopBool(); err == nil && b {
				next = int(inst.Int)
			}
		case bytecode.OpBranchIfNot:
			var b bool
			if b, err = v.stack.PopBool(); err == nil && !b {
				next = int(inst.Int)
			}

		case bytecode.OpCall:
			err = v.call()
		case bytecode.OpBind:
			err = v.bind()
		case bytecode.OpReturn:
			return nil

		default:
			err = vmerr.OperationNotDefined("dispatch", "unknown opcode")
		}

		if err != nil {
			return errors.Wrapf(err, "pc=%d op=%s", pc, inst.Op)
		}
		pc = next
	}
	return nil
}

func (v *VM) intoInt() error {
	mv, err := v.stack.Pop()
	if err != nil {
		return err
	}
	var out int64
	switch val := mv.Value.(type) {
	case value.Bool:
		if val {
			out = 1
		}
	case value.Int:
		out = int64(val)
	case value.Float:
		out = int64(math.Trunc(float64(val)))
	case value.List:
		out = int64(len(val))
	case *value.Table:
		out = int64(val.Len())
	default:
		return vmerr.OperationNotDefined("IntoInt", mv.Value.Kind())
	}
	v.stack.PushValue(value.Int(out))
	return nil
}

func (v *VM) intoFloat() error {
	mv, err := v.stack.Pop()
	if err != nil {
		return err
	}
	var out float64
	switch val := mv.Value.(type) {
	case value.Bool:
		if val {
			out = 1
		}
	case value.Int:
		out = float64(val)
	case value.Float:
		out = float64(val)
	case value.List:
		out = float64(len(val))
	case *value.Table:
		out = float64(val.Len())
	default:
		return vmerr.OperationNotDefined("IntoFloat", mv.Value.Kind())
	}
	v.stack.PushValue(value.Float(out))
	return nil
}

func (v *VM) boolBinary(f func(a, b bool) bool) error {
	b, err := v.stack.PopBool()
	if err != nil {
		return err
	}
	a, err := v.stack.PopBool()
	if err != nil {
		return err
	}
	v.stack.PushValue(value.Bool(f(a, b)))
	return nil
}

// arith implements Add/Sub/Mul/Div/Mod: pop b, dispatch on b's tag, pop
// a with the matching typed accessor, push the typed result.
func (v *VM) arith(op bytecode.OpCode) error {
	b, err := v.stack.Pop()
	if err != nil {
		return err
	}
	switch bv := b.Value.(type) {
	case value.Int:
		a, err := v.stack.PopInt()
		if err != nil {
			return err
		}
		bi := int64(bv)
		switch op {
		case bytecode.OpAdd:
			v.stack.PushValue(value.Int(a + bi))
		case bytecode.OpSub:
			v.stack.PushValue(value.Int(a - bi))
		case bytecode.OpMul:
			v.stack.PushValue(value.Int(a * bi))
		case bytecode.OpDiv:
			if bi == 0 {
				return vmerr.DivideByZero()
			}
			v.stack.PushValue(value.Int(a / bi))
		case bytecode.OpMod:
			if bi == 0 {
				return vmerr.DivideByZero()
			}
			v.stack.PushValue(value.Int(a % bi))
		}
		return nil
	case value.Float:
		a, err := v.stack.PopFloat()
		if err != nil {
			return err
		}
		bf := float64(bv)
		switch op {
		case bytecode.OpAdd:
			v.stack.PushValue(value.Float(a + bf))
		case bytecode.OpSub:
			v.stack.PushValue(value.Float(a - bf))
		case bytecode.OpMul:
			v.stack.PushValue(value.Float(a * bf))
		case bytecode.OpDiv:
			v.stack.PushValue(value.Float(a / bf))
		case bytecode.OpMod:
			v.stack.PushValue(value.Float(math.Mod(a, bf)))
		}
		return nil
	default:
		return vmerr.OperationNotDefined(arithOp[op], b.Value.Kind())
	}
}

func (v *VM) intCompare(op bytecode.OpCode) error {
	b, err := v.stack.PopInt()
	if err != nil {
		return err
	}
	a, err := v.stack.PopInt()
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case bytecode.OpLessThan:
		result = a < b
	case bytecode.OpGreaterThan:
		result = a > b
	case bytecode.OpLessEqual:
		result = a <= b
	case bytecode.OpGreaterEqual:
		result = a >= b
	}
	v.stack.PushValue(value.Bool(result))
	return nil
}

func (v *VM) listPush() error {
	elem, err := v.stack.Pop()
	if err != nil {
		return err
	}
	l, err := v.stack.PopList()
	if err != nil {
		return err
	}
	nl := make(value.List, len(l)+1)
	copy(nl, l)
	nl[len(l)] = elem
	v.stack.PushValue(nl)
	return nil
}

func (v *VM) listPop() error {
	l, err := v.stack.PopList()
	if err != nil {
		return err
	}
	if len(l) == 0 {
		return vmerr.EmptyList()
	}
	popped := l[len(l)-1]
	rest := make(value.List, len(l)-1)
	copy(rest, l[:len(l)-1])
	v.stack.PushValue(rest)
	v.stack.Push(popped)
	return nil
}

func (v *VM) listGet() error {
	idx, err := v.stack.PopInt()
	if err != nil {
		return err
	}
	l, err := v.stack.PopList()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= int64(len(l)) {
		return vmerr.RangeError(idx, 0, int64(len(l)))
	}
	v.stack.Push(l[idx])
	return nil
}

func (v *VM) listSet() error {
	val, err := v.stack.Pop()
	if err != nil {
		return err
	}
	idx, err := v.stack.PopInt()
	if err != nil {
		return err
	}
	l, err := v.stack.PopList()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= int64(len(l)) {
		return vmerr.RangeError(idx, 0, int64(len(l)))
	}
	nl := make(value.List, len(l))
	copy(nl, l)
	nl[idx] = val
	v.stack.PushValue(nl)
	return nil
}

func (v *VM) tableGet() error {
	key, err := v.stack.Pop()
	if err != nil {
		return err
	}
	t, err := v.stack.PopTable()
	if err != nil {
		return err
	}
	val, ok := t.Get(key)
	if !ok {
		return vmerr.KeyNotFound(key.String())
	}
	v.stack.Push(val)
	return nil
}

func (v *VM) tableSet() error {
	val, err := v.stack.Pop()
	if err != nil {
		return err
	}
	key, err := v.stack.Pop()
	if err != nil {
		return err
	}
	t, err := v.stack.PopTable()
	if err != nil {
		return err
	}
	v.stack.PushValue(t.Set(key, val))
	return nil
}

func (v *VM) storeMeta() error {
	t, err := v.stack.PopTable()
	if err != nil {
		return err
	}
	mv, err := v.stack.Pop()
	if err != nil {
		return err
	}
	v.stack.Push(value.MetaValue{Value: mv.Value, Meta: t})
	return nil
}

func (v *VM) localLoad(env *value.Env, idx int) error {
	if !env.InRange(idx) {
		return vmerr.LocalNotFound(idx)
	}
	if !env.IsSet(idx) {
		return vmerr.LocalNotInitialized(idx)
	}
	v.stack.Push(env.Get(idx))
	return nil
}

func (v *VM) localStore(env *value.Env, idx int) error {
	if !env.InRange(idx) {
		return vmerr.LocalNotFound(idx)
	}
	mv, err := v.stack.Pop()
	if err != nil {
		return err
	}
	env.Set(idx, mv)
	return nil
}

// call pops a FunctionRef, looks it up, builds a callee Env from a
// clone of the closure's captured Env extended by the callee's
// declared local count, and recurses.
func (v *VM) call() error {
	f, err := v.stack.PopFunctionRef()
	if err != nil {
		return err
	}
	fn, ok := v.registry.Lookup(f.Name)
	if !ok {
		return vmerr.FunctionNotFound(f.Name)
	}
	calleeEnv := f.Env.Clone()
	calleeEnv.Reserve(fn.Locals)
	return v.execute(fn, calleeEnv)
}

// bind pops (top-down) a List and a FunctionRef, and pushes a
// FunctionRef whose Env is exactly that List.
func (v *VM) bind() error {
	captured, err := v.stack.PopList()
	if err != nil {
		return err
	}
	f, err := v.stack.PopFunctionRef()
	if err != nil {
		return err
	}
	env := value.NewEnv(len(captured))
	for i, el := range captured {
		env.Set(i, el)
	}
	v.stack.PushValue(value.FunctionRef{Name: f.Name, Env: env})
	return nil
}
