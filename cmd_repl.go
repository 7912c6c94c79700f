package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"gos/interpreter"
	"gos/lexer"
	"gos/optimizer"
	"gos/parser"
	"gos/token"
)

// replCmd implements the "repl" command: a read-eval-print loop over the
// tree-walking interpreter.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive read-eval-print loop" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session over the tree-walking interpreter.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println("💥 failed to start REPL:", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("Welcome to gos!")

	interp := interpreter.New()
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				buffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				return subcommands.ExitSuccess
			}
			fmt.Println("💥", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		toks, err := lexer.New(source).Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !inputReady(toks) {
			continue
		}

		prog, errs := parser.Make(toks).Parse()
		if len(errs) > 0 {
			if allErrorsAtEOF(errs, toks[len(toks)-1]) {
				continue // user hasn't finished typing; wait for more input
			}
			for _, e := range errs {
				fmt.Println(e)
			}
			buffer.Reset()
			continue
		}

		result, err := interp.Run(optimizer.Optimize(prog))
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}
		if !result.IsUnit() {
			fmt.Println(result.String())
		}
		buffer.Reset()
	}
}

// inputReady reports whether tokens form a balanced, complete statement
// the parser should be given a chance to accept, rather than a line the
// user is still in the middle of typing (e.g. after "if x > 5 {").
func inputReady(toks []token.Token) bool {
	braceBalance := 0
	parenBalance := 0
	for _, tok := range toks {
		switch tok.Kind {
		case token.LBRACE:
			braceBalance++
		case token.RBRACE:
			braceBalance--
		case token.LPAREN:
			parenBalance++
		case token.RPAREN:
			parenBalance--
		}
	}
	if braceBalance > 0 || parenBalance > 0 {
		return false
	}

	last := lastNonEOF(toks)
	if last == nil {
		return true
	}

	switch last.Kind {
	case token.ASSIGN, token.ADD, token.SUB, token.MUL, token.DIV,
		token.NOT, token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR, token.COMMA, token.LPAREN, token.LBRACE,
		token.IF, token.ELSE, token.WHILE, token.FUN, token.RETURN, token.LET:
		return false
	}
	return true
}

func lastNonEOF(toks []token.Token) *token.Token {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Kind != token.EOF {
			return &toks[i]
		}
	}
	return nil
}

// allErrorsAtEOF reports whether every parse error is a syntax error
// positioned at the EOF token — meaning the user simply hasn't finished
// typing yet, rather than having written something invalid.
func allErrorsAtEOF(errs []error, eof token.Token) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		syn, ok := e.(parser.SyntaxError)
		if !ok {
			return false
		}
		if syn.Line != eof.Line || syn.Column != eof.Column {
			return false
		}
	}
	return true
}
