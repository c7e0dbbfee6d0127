package vm

import (
	"log"

	"lattice/internal/bytecode"
	"lattice/internal/stack"
	"lattice/internal/value"
)

// Tracer is the optional step-by-step hook: a step-by-step log of PC,
// current instruction, stack contents, and Env contents after each
// step. It is a single-method trim of a broader DebugHook-style
// interface (OnInstruction/OnCall/OnReturn/OnError) down to exactly the
// one hook this VM needs.
type Tracer interface {
	OnStep(pc int, inst bytecode.Inst, st *stack.Stack, env *value.Env)
}

// LogTracer is the default Tracer, backed by the standard log package.
type LogTracer struct {
	*log.Logger
}

// NewLogTracer returns a LogTracer writing through l, or a new
// log.Default()-backed one if l is nil.
func NewLogTracer(l *log.Logger) *LogTracer {
	if l == nil {
		l = log.Default()
	}
	return &LogTracer{Logger: l}
}

func (t *LogTracer) OnStep(pc int, inst bytecode.Inst, st *stack.Stack, env *value.Env) {
	t.Printf("pc=%d %s stack=%s env=%s", pc, inst.Op, formatStack(st), formatEnv(env))
}

func formatStack(st *stack.Stack) string {
	items := st.Snapshot()
	s := "["
	for i, mv := range items {
		if i > 0 {
			s += ", "
		}
		s += mv.String()
	}
	return s + "]"
}

func formatEnv(env *value.Env) string {
	s := "["
	for i := 0; i < env.Len(); i++ {
		if i > 0 {
			s += ", "
		}
		if env.IsSet(i) {
			s += env.Get(i).String()
		} else {
			s += "_"
		}
	}
	return s + "]"
}
