// Command gos is the command-line driver for the gos toolchain:
// preprocessor, lexer, parser, optimizer, compiler, VM, serializer, and
// tree-walking interpreter.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&interpretCmd{}, "")
	subcommands.Register(&astCmd{}, "")
	subcommands.Register(&preprocessCmd{}, "")
	subcommands.Register(&disCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
