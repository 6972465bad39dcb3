package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/compiler/asm"
	"github.com/holovm/enginevm/engine"
)

// runREPL is an interactive stack-machine shell: each line either pushes
// an integer literal, applies an integer opcode, or runs what's been
// assembled so far as a fresh request against one shared Engine. There is
// no exemplar of github.com/chzyer/readline's usage anywhere in the
// reference pack this engine was built from (only go.mod/go.sum
// entries), so this loop is written directly from the library's
// documented public API (readline.New, Instance.Readline,
// Instance.Close) rather than adapted from an observed source file.
func runREPL() error {
	rl, err := readline.New("enginevm> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	eng := engine.New(engine.DefaultConfig())
	a := asm.New("repl")

	fmt.Fprintln(rl.Stdout(), "enginevm repl: push <int> | add | sub | mul | run | reset | exit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return nil
		case "reset":
			a = asm.New("repl")
		case "push":
			if len(fields) != 2 {
				fmt.Fprintln(rl.Stderr(), "usage: push <int>")
				continue
			}
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Fprintf(rl.Stderr(), "not an integer: %s\n", fields[1])
				continue
			}
			idx := a.ConstInt(n)
			a.Emit1(bytecode.OpPushConst, idx)
		case "add":
			a.Emit(bytecode.OpAddInt)
		case "sub":
			a.Emit(bytecode.OpSubInt)
		case "mul":
			a.Emit(bytecode.OpMulInt)
		case "run":
			fn := a.Emit(bytecode.OpRet).Build()
			a = asm.New("repl")

			req, err := eng.BeginRequest(rl.Stdout())
			if err != nil {
				fmt.Fprintln(rl.Stderr(), err)
				continue
			}
			result, err := req.Run(fn)
			req.EndRequest()
			if err != nil {
				fmt.Fprintln(rl.Stderr(), err)
				continue
			}
			fmt.Fprintln(rl.Stdout(), result.String())
		default:
			fmt.Fprintf(rl.Stderr(), "unknown command: %s\n", fields[0])
		}
	}
}
