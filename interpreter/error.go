package interpreter

import "fmt"

// RuntimeError reports a failure raised while tree-walking a program:
// an undefined variable, a type mismatch, division by zero, or an
// unresolved goto/label.
type RuntimeError struct {
	Line    int
	Message string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 Gos runtime error: line %d: %s", e.Line, e.Message)
}
