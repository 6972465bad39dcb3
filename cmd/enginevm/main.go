// Command enginevm is the host binary for the execution engine: it has
// no lexer/parser/compiler of its own (those are out of scope), so its
// "programs" are assembled directly via compiler/asm.Assembler. Grounded
// on a cli.Command{Name, Usage, Commands, Flags, Action} shape and an
// app.Run(context.Background(), os.Args) entry point, adapted around
// this engine's assemble-then-run model instead of a parse-compile-run
// pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/compiler/asm"
	"github.com/holovm/enginevm/engine"
	"github.com/holovm/enginevm/values"
	"github.com/holovm/enginevm/version"
)

func main() {
	app := &cli.Command{
		Name:  "enginevm",
		Usage: "a bytecode virtual machine host",
		Commands: []*cli.Command{
			demoCommand,
			replCommand,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print the engine version and exit",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Println(version.Version())
				return nil
			}
			fmt.Println("usage: enginevm [--version] <demo|repl>")
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "enginevm: %v\n", err)
		os.Exit(1)
	}
}

var demoCommand = &cli.Command{
	Name:  "demo",
	Usage: "assemble and run the built-in sum-to-n fixture, printing its result",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		n := int64(10)
		if cmd.Args().Len() > 0 {
			fmt.Sscanf(cmd.Args().Get(0), "%d", &n)
		}

		eng := engine.New(engine.DefaultConfig())
		req, err := eng.BeginRequest(os.Stdout)
		if err != nil {
			return err
		}
		defer req.EndRequest()

		if err := req.Ctx.Push(values.NewInt(n)); err != nil {
			return err
		}
		result, err := req.Run(sumToNProgram())
		if err != nil {
			return err
		}
		fmt.Println(result.String())
		return nil
	},
}

// sumToNProgram assembles the fixture each demo invocation runs: a loop
// summing 1..n, with n pushed as the sole argument before Execute runs.
// The same shape used by compiler/asm's own test, kept here as a runnable
// example of the assembler in lieu of any source program to compile.
func sumToNProgram() *bytecode.CompiledFunction {
	const n, sum, i = 0, 1, 2
	return asm.New("sum_to_n").Params(1).Locals(3).
		Emit(bytecode.OpPushInt0).
		Emit1(bytecode.OpStoreLocal, sum).
		Emit(bytecode.OpPushInt1).
		Emit1(bytecode.OpStoreLocal, i).
		Label("loop").
		Emit1(bytecode.OpPushLocal, i).
		Emit1(bytecode.OpPushLocal, n).
		Emit(bytecode.OpGtInt).
		Jmp(bytecode.OpJnz, "end").
		Emit1(bytecode.OpPushLocal, sum).
		Emit1(bytecode.OpPushLocal, i).
		Emit(bytecode.OpAddInt).
		Emit1(bytecode.OpStoreLocal, sum).
		Emit1(bytecode.OpPushLocal, i).
		Emit(bytecode.OpPushInt1).
		Emit(bytecode.OpAddInt).
		Emit1(bytecode.OpStoreLocal, i).
		Jmp(bytecode.OpJmp, "loop").
		Label("end").
		Emit1(bytecode.OpPushLocal, sum).
		Emit(bytecode.OpRet).
		Build()
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "interactively assemble and run a stack of integer instructions against one engine",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runREPL()
	},
}
