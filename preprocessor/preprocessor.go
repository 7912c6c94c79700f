// Package preprocessor expands $import/$define/$ifdef/$ifndef/$endif
// directives before a source file reaches the lexer.
package preprocessor

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SystemIncludeDir is searched for $import targets that aren't found
// relative to the importing file.
const SystemIncludeDir = "/usr/local/gos"

var wordRe = regexp.MustCompile(`[A-Za-z_\\][A-Za-z_\\0-9]*`)

// Error reports a preprocessing failure with the file and line at which it
// occurred.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Preprocessor: %s:%d: %s", e.File, e.Line, e.Msg)
}

type condFrame struct {
	// active is whether this frame's branch is currently emitting text.
	active bool
	// everActive is not set or read anywhere; $endif balancing uses the
	// stack depth alone. Gos has no $else, so once a frame goes inactive
	// it never reactivates.
	everActive bool
}

// expander holds the state threaded through one top-level Expand call:
// the macro table (shared and mutated across all transitively imported
// files) and the include guard set (by absolute path).
type expander struct {
	defines  map[string]string
	included map[string]bool
}

// Expand reads path, recursively expanding $import directives and applying
// $define/$ifdef/$ifndef/$endif, and returns the fully expanded source.
func Expand(path string) (string, error) {
	e := &expander{defines: map[string]string{}, included: map[string]bool{}}
	var out strings.Builder
	if err := e.expandFile(path, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (e *expander) expandFile(path string, out *strings.Builder) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &Error{File: path, Line: 0, Msg: err.Error()}
	}
	if e.included[abs] {
		return nil
	}
	e.included[abs] = true

	f, err := os.Open(path)
	if err != nil {
		return &Error{File: path, Line: 0, Msg: fmt.Sprintf("cannot open %q: %v", path, err)}
	}
	defer f.Close()

	var stack []condFrame
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " \t")

		if strings.HasPrefix(trimmed, "$") {
			if err := e.directive(path, lineNo, trimmed, filepath.Dir(path), &stack, out); err != nil {
				return err
			}
			continue
		}

		if !framesActive(stack) {
			continue
		}
		out.WriteString(e.substitute(line))
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return &Error{File: path, Line: lineNo, Msg: err.Error()}
	}
	if len(stack) != 0 {
		return &Error{File: path, Line: lineNo, Msg: "unterminated $ifdef/$ifndef: missing $endif"}
	}
	return nil
}

func framesActive(stack []condFrame) bool {
	for _, f := range stack {
		if !f.active {
			return false
		}
	}
	return true
}

func (e *expander) directive(file string, line int, text, dir string, stack *[]condFrame, out *strings.Builder) error {
	fields := strings.Fields(text)
	name := fields[0]

	switch name {
	case "$endif":
		if len(*stack) == 0 {
			return &Error{File: file, Line: line, Msg: "$endif without matching $ifdef/$ifndef"}
		}
		*stack = (*stack)[:len(*stack)-1]
		return nil

	case "$ifdef", "$ifndef":
		if len(fields) != 2 {
			return &Error{File: file, Line: line, Msg: fmt.Sprintf("malformed %s: expected one macro name", name)}
		}
		if !framesActive(*stack) {
			*stack = append(*stack, condFrame{active: false})
			return nil
		}
		_, defined := e.defines[fields[1]]
		want := name == "$ifdef"
		*stack = append(*stack, condFrame{active: defined == want})
		return nil

	case "$define":
		if !framesActive(*stack) {
			return nil
		}
		if len(fields) < 2 {
			return &Error{File: file, Line: line, Msg: "malformed $define: expected a macro name"}
		}
		repl := ""
		if len(fields) > 2 {
			repl = strings.Join(fields[2:], " ")
		}
		e.defines[fields[1]] = repl
		return nil

	case "$import":
		if !framesActive(*stack) {
			return nil
		}
		path, ok := quotedArg(text)
		if !ok {
			return &Error{File: file, Line: line, Msg: `malformed $import: expected $import "<path>"`}
		}
		resolved, err := resolveImport(dir, path)
		if err != nil {
			return &Error{File: file, Line: line, Msg: err.Error()}
		}
		return e.expandFile(resolved, out)

	default:
		return &Error{File: file, Line: line, Msg: fmt.Sprintf("unknown directive %q", name)}
	}
}

func quotedArg(text string) (string, bool) {
	start := strings.IndexByte(text, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(text[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return text[start+1 : start+1+end], true
}

func resolveImport(fromDir, path string) (string, error) {
	candidates := []string{
		filepath.Join(fromDir, path),
		filepath.Join(SystemIncludeDir, path),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("cannot find imported file %q (looked in %q, %q)", path, fromDir, SystemIncludeDir)
}

// substitute performs whole-word macro replacement: only identifier-shaped
// tokens are considered, so a defined name as a substring of a longer
// identifier is left untouched. Expansion runs on raw text before lexing,
// so a macro name that happens to appear inside a string literal is still
// replaced.
func (e *expander) substitute(line string) string {
	if len(e.defines) == 0 {
		return line
	}
	return wordRe.ReplaceAllStringFunc(line, func(word string) string {
		if repl, ok := e.defines[word]; ok {
			return repl
		}
		return word
	})
}
