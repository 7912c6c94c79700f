package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"gos/ast"
)

// astCmd implements the "ast" diagnostic command.
type astCmd struct{}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Dump the parsed, optimized AST as JSON" }
func (*astCmd) Usage() string {
	return `ast <file>:
  Preprocess, lex, parse, and optimize <file>, then print its AST as JSON.
`
}
func (*astCmd) SetFlags(f *flag.FlagSet) {}

func (*astCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out, err := ast.Dump(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}
