package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"gos/preprocessor"
)

// preprocessCmd implements the "preprocess" diagnostic command.
type preprocessCmd struct{}

func (*preprocessCmd) Name() string     { return "preprocess" }
func (*preprocessCmd) Synopsis() string { return "Dump a source file after macro/import expansion" }
func (*preprocessCmd) Usage() string {
	return `preprocess <file>:
  Expand $import/$define/$ifdef/$ifndef directives and print the result.
`
}
func (*preprocessCmd) SetFlags(f *flag.FlagSet) {}

func (*preprocessCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 file not provided")
		return subcommands.ExitUsageError
	}

	expanded, err := preprocessor.Expand(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(expanded)
	return subcommands.ExitSuccess
}
