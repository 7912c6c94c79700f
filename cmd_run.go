package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"gos/compiler"
	"gos/serializer"
	"gos/vm"
)

// runCmd implements the "run" command.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a gos source or compiled bytecode file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Execute gos code. If <file> ends in ".gbc" it is loaded as compiled
  bytecode and run directly; otherwise it is preprocessed, lexed,
  parsed, optimized, compiled, and run.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 file not provided")
		return subcommands.ExitUsageError
	}
	path := args[0]

	var chunk *compiler.Chunk
	if strings.HasSuffix(path, ".gbc") {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
			return subcommands.ExitFailure
		}
		chunk, err = serializer.Load(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	} else {
		prog, err := frontend(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		chunk, err = compiler.Compile(prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	result, err := vm.New().Run(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if result.IsNumber() {
		return subcommands.ExitStatus(int(result.Num()))
	}
	return subcommands.ExitSuccess
}
