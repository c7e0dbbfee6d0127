// Package vmerr is the runtime error taxonomy. Every error is a concrete
// *Error carrying a typed Kind rather than a bare string, the way the
// original Rust program
// pins each RuntimeError variant (original_source/src/vm/mod.rs) and
// the way a typed-tag error attaches a classification to a message.
//
// The interpreter never returns a bare string or a panic for one of
// these conditions; it always returns (or wraps, via
// github.com/pkg/errors — see internal/vm) one of the constructors
// below, so a host can branch on Kind via errors.As.
package vmerr

import "fmt"

// Kind names one row of the error taxonomy.
type Kind string

const (
	KindEmptyStack           Kind = "EmptyStack"
	KindEmptyList            Kind = "EmptyList"
	KindTypeError            Kind = "TypeError"
	KindLocalNotInitialized  Kind = "LocalNotInitialized"
	KindLocalNotFound        Kind = "LocalNotFound"
	KindOperationNotDefined  Kind = "OperationNotDefined"
	KindRangeError           Kind = "RangeError"
	KindKeyNotFound          Kind = "KeyNotFound"
	KindFunctionNotFound     Kind = "FunctionNotFound"
	KindDivideByZero         Kind = "DivideByZero"
	KindBudgetExhausted      Kind = "BudgetExhausted"
	KindUnresolvedBreak      Kind = "UnresolvedBreak"
	KindUnclosedLoop         Kind = "UnclosedLoop"
)

// Error is the concrete type every constructor below returns.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...)}
}

func EmptyStack() *Error {
	return newError(KindEmptyStack, "operand stack is empty")
}

func EmptyList() *Error {
	return newError(KindEmptyList, "list is empty")
}

// TypeError reports a typed pop that observed the wrong tag. observed
// is the Value.Kind() of what was actually on the stack.
func TypeError(expected, observed string) *Error {
	return newError(KindTypeError, "type error: expected %s, got %s", expected, observed)
}

func LocalNotInitialized(idx int) *Error {
	return newError(KindLocalNotInitialized, "local %d is not initialized", idx)
}

func LocalNotFound(idx int) *Error {
	return newError(KindLocalNotFound, "local %d is out of range", idx)
}

func OperationNotDefined(op, typ string) *Error {
	return newError(KindOperationNotDefined, "operation %q not defined on %s", op, typ)
}

func RangeError(i, lo, hi int64) *Error {
	return newError(KindRangeError, "index %d out of range [%d, %d)", i, lo, hi)
}

func KeyNotFound(key string) *Error {
	return newError(KindKeyNotFound, "key not found: %s", key)
}

func FunctionNotFound(name string) *Error {
	return newError(KindFunctionNotFound, "function not found: %s", name)
}

func DivideByZero() *Error {
	return newError(KindDivideByZero, "divide by zero")
}

// BudgetExhausted is the cooperative-cancellation error: a host that
// wraps Run with an instruction budget sees this once the budget
// reaches zero.
func BudgetExhausted() *Error {
	return newError(KindBudgetExhausted, "instruction budget exhausted")
}

// UnresolvedBreak and UnclosedLoop are emitter usage errors, not
// runtime errors, but share the same typed-kind shape.
func UnresolvedBreak() *Error {
	return newError(KindUnresolvedBreak, "break_if/break_if_not emitted outside any enclosing loop")
}

func UnclosedLoop() *Error {
	return newError(KindUnclosedLoop, "emitter finalized with an unclosed infinite_loop/while_loop")
}

// KindOf unwraps err (following github.com/pkg/errors' Cause chain, see
// internal/vm) and reports its Kind, or "" if err is not one of ours.
func KindOf(err error) Kind {
	type causer interface{ Cause() error }
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		c, ok := err.(causer)
		if !ok {
			return ""
		}
		err = c.Cause()
	}
	return ""
}
