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
)

// compileCmd implements the "compile" command.
type compileCmd struct{}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a gos source file to a .gbc bytecode file" }
func (*compileCmd) Usage() string {
	return `compile <file>:
  Produce a .gbc binary chunk beside the source file.
`
}
func (*compileCmd) SetFlags(f *flag.FlagSet) {}

func (*compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 file not provided")
		return subcommands.ExitUsageError
	}
	path := args[0]

	prog, err := frontend(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	chunk, err := compiler.Compile(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	data, err := serializer.Dump(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	outPath := withoutExt(path) + ".gbc"
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write %s: %v\n", outPath, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("wrote %s\n", outPath)
	return subcommands.ExitSuccess
}

func withoutExt(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[:idx]
	}
	return path
}
