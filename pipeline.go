package main

import (
	"fmt"

	"gos/ast"
	"gos/lexer"
	"gos/optimizer"
	"gos/parser"
	"gos/preprocessor"
)

// frontend runs every phase up to (but not including) compilation:
// preprocess the file's directives, lex, parse, and optimize. Most
// subcommands share exactly this much of the pipeline before branching
// into compile+run, interpret, or a diagnostic dump.
func frontend(path string) (*ast.Program, error) {
	expanded, err := preprocessor.Expand(path)
	if err != nil {
		return nil, err
	}

	toks, err := lexer.New(expanded).Scan()
	if err != nil {
		return nil, err
	}

	prog, errs := parser.Make(toks).Parse()
	if len(errs) > 0 {
		return nil, firstOf(errs)
	}

	return optimizer.Optimize(prog), nil
}

func firstOf(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := fmt.Sprintf("%d parse errors, first: %s", len(errs), errs[0])
	return fmt.Errorf("%s", msg)
}
