package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"gos/interpreter"
)

// interpretCmd implements the "interpret" command.
type interpretCmd struct{}

func (*interpretCmd) Name() string { return "interpret" }
func (*interpretCmd) Synopsis() string {
	return "Execute a gos source file via the tree-walking interpreter"
}
func (*interpretCmd) Usage() string {
	return `interpret <file>:
  Run via the tree-walker (alternative semantics kept in parity with run).
`
}
func (*interpretCmd) SetFlags(f *flag.FlagSet) {}

func (*interpretCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 file not provided")
		return subcommands.ExitUsageError
	}

	prog, err := frontend(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	result, err := interpreter.New().Run(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if result.IsNumber() {
		return subcommands.ExitStatus(int(result.Num()))
	}
	return subcommands.ExitSuccess
}
