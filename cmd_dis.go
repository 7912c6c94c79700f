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

// disCmd implements the "dis" diagnostic command.
type disCmd struct{}

func (*disCmd) Name() string     { return "dis" }
func (*disCmd) Synopsis() string { return "Dump a disassembled bytecode listing" }
func (*disCmd) Usage() string {
	return `dis <file>:
  Compile <file> (or load it directly if it's a .gbc) and print its
  disassembled bytecode listing.
`
}
func (*disCmd) SetFlags(f *flag.FlagSet) {}

func (*disCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	fmt.Print(chunk.Disassemble(path))
	for name, info := range chunk.Functions {
		fmt.Printf("\nfunction %s (params=%d, addr=%04d)\n", name, info.ParamCount, info.Addr)
	}
	return subcommands.ExitSuccess
}
