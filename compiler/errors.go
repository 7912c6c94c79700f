package compiler

import "fmt"

// SemanticError reports a compile-time problem with an otherwise
// syntactically valid program: an undefined variable/function, an
// unresolved goto label, a misuse of ++/--, and so on.
type SemanticError struct {
	Line    int
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 Gos semantic error: line %d: %s", e.Line, e.Message)
}
