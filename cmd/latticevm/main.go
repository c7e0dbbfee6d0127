// Command latticevm is a small demo host: it registers a handful of
// functions built with the Emitter and runs one of them, printing the
// popped result. It exists to exercise the programmatic API end to
// end, not as a language front end — there is no lexer, parser, or
// file format here.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"lattice/internal/value"
	"lattice/internal/vm"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return
	}

	name := args[0]
	trace := false
	for _, a := range args[1:] {
		if a == "-trace" || a == "--trace" {
			trace = true
		}
	}

	reg, err := buildRegistry()
	if err != nil {
		log.Fatalf("build registry: %v", err)
	}

	var opts []vm.Option
	if trace {
		opts = append(opts, vm.WithTracer(vm.NewLogTracer(nil)))
	}
	machine := vm.New(reg, opts...)

	switch name {
	case "factorial":
		n := int64(5)
		if len(args) > 1 {
			if parsed, perr := strconv.ParseInt(args[1], 10, 64); perr == nil {
				n = parsed
			}
		}
		machine.PushValue(value.Int(n))
		run(machine, "fact")

	case "listmap":
		machine.PushValue(value.List{value.NewMetaValue(value.Int(5)), value.NewMetaValue(value.Int(6))})
		run(machine, "List.inc")

	case "closure":
		run(machine, "closure_demo")

	default:
		usage()
	}
}

func run(machine *vm.VM, fn string) {
	if err := machine.Run(fn); err != nil {
		log.Fatalf("run %s: %v", fn, err)
	}
	result, err := machine.Pop()
	if err != nil {
		log.Fatalf("pop result: %v", err)
	}
	fmt.Println(result.String())
}

func usage() {
	fmt.Println("usage: latticevm <factorial [n]|listmap|closure> [-trace]")
}
