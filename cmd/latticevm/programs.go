// Demo programs built with the Emitter: factorial, a generic List.map,
// and a one-int closure. These exist to give the CLI something to run;
// they are not part of the VM itself.
package main

import (
	"lattice/internal/bytecode"
	"lattice/internal/compiler"
)

// buildRegistry assembles every demo function into one Registry.
func buildRegistry() (*bytecode.Registry, error) {
	reg := bytecode.NewRegistry()

	fact, err := buildFactorial()
	if err != nil {
		return nil, err
	}
	reg.Define("fact", fact)

	inc, err := buildInc()
	if err != nil {
		return nil, err
	}
	reg.Define("inc", inc)

	listMap, err := buildListMap()
	if err != nil {
		return nil, err
	}
	reg.Define("List.map", listMap)

	listInc, err := buildListInc()
	if err != nil {
		return nil, err
	}
	reg.Define("List.inc", listInc)

	addN, err := buildAddN()
	if err != nil {
		return nil, err
	}
	reg.Define("add_n", addN)

	addNClosure, err := buildAddNClosure()
	if err != nil {
		return nil, err
	}
	reg.Define("add_n_closure", addNClosure)

	closureDemo, err := buildClosureDemo()
	if err != nil {
		return nil, err
	}
	reg.Define("closure_demo", closureDemo)

	return reg, nil
}

// buildFactorial seeds Int n and returns n!.
func buildFactorial() (*bytecode.Function, error) {
	e := compiler.New()
	n := e.LocalNew()
	total := e.LocalNew()

	e.LocalStore(n)
	e.PushInt(1).LocalStore(total)

	e.WhileLoop(
		func(e *compiler.Emitter) {
			e.LocalLoad(n).PushInt(1).GreaterThan()
		},
		func(e *compiler.Emitter) {
			e.LocalLoad(n).Dup().LocalLoad(total).Mul().LocalStore(total)
			e.PushInt(1).Sub().LocalStore(n)
		},
	)

	e.LocalLoad(total)
	return e.Finish()
}

// buildInc is the function mapped over a list: increment by one.
func buildInc() (*bytecode.Function, error) {
	e := compiler.New()
	e.PushInt(1).Add()
	return e.Finish()
}

// buildListMap implements the generic "apply fn to every element"
// routine: it takes a function (pushed last, so it is the top of the
// incoming stack) and a list beneath it, and returns the mapped list.
func buildListMap() (*bytecode.Function, error) {
	e := compiler.New()
	fn := e.LocalNew()
	list := e.LocalNew()
	idx := e.LocalNew()
	length := e.LocalNew()

	e.LocalStore(fn)
	e.LocalStore(list)
	e.LocalLoad(list).ListLen().LocalStore(length)
	e.PushInt(0).LocalStore(idx)

	e.WhileLoop(
		func(e *compiler.Emitter) {
			e.LocalLoad(idx).LocalLoad(length).LessThan()
		},
		func(e *compiler.Emitter) {
			e.LocalLoad(list)
			e.LocalLoad(idx)
			e.LocalLoad(list)
			e.LocalLoad(idx)
			e.ListGet()
			e.LocalLoad(fn)
			e.Call()
			e.ListSet()
			e.LocalStore(list)
			e.LocalLoad(idx).PushInt(1).Add().LocalStore(idx)
		},
	)

	e.LocalLoad(list)
	return e.Finish()
}

// buildListInc is the top-level entry point: push the element
// function, push List.map, and call it.
func buildListInc() (*bytecode.Function, error) {
	e := compiler.New()
	e.PushFn("inc")
	e.PushFn("List.map")
	e.Call()
	return e.Finish()
}

// buildAddN captures the first argument into a one-element list and
// binds it onto add_n_closure.
func buildAddN() (*bytecode.Function, error) {
	e := compiler.New()
	e.PushList()
	e.Swap()
	e.ListPush()
	e.PushFn("add_n_closure")
	e.Swap()
	e.Bind()
	return e.Finish()
}

// buildAddNClosure is add_n's one-local-capture body.
func buildAddNClosure() (*bytecode.Function, error) {
	e := compiler.NewForClosureBody(1)
	e.LocalLoad(0).Add()
	return e.Finish()
}

// buildClosureDemo wires a sample call site: add_n binds the top
// argument 2 into a closure, and calling that closure adds 2 to the
// remaining 1, giving 3.
func buildClosureDemo() (*bytecode.Function, error) {
	e := compiler.New()
	e.PushInt(1)
	e.PushInt(2)
	e.PushFn("add_n")
	e.Call()
	e.Call()
	return e.Finish()
}
