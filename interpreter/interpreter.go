// Package interpreter is a tree-walking evaluator over gos's AST, kept
// in semantic parity with the compiler+VM pipeline as an alternative
// execution path (see the "interpret" and "repl" commands).
package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"gos/ast"
	"gos/lexer"
	"gos/optimizer"
	"gos/parser"
	"gos/value"
)

type flowKind int

const (
	flowNone flowKind = iota
	flowReturn
	flowExit
	flowGoto
)

// flow signals non-local control transfer (return/exit/goto) unwinding
// out of eval/executeStmts back toward whatever frame can handle it.
type flow struct {
	kind  flowKind
	value value.Value
	label string
}

// Interpreter walks an optimized AST and evaluates it directly, without
// compiling to bytecode first.
type Interpreter struct {
	functions map[string]*ast.FuncDecl
	out       io.Writer
	in        *bufio.Reader
}

// New creates an Interpreter that prints to stdout and reads `in`
// statements from stdin.
func New() *Interpreter {
	return &Interpreter{out: os.Stdout, in: bufio.NewReader(os.Stdin)}
}

// NewWithIO creates an Interpreter with explicit output/input streams,
// for tests and for embedding (e.g. the repl).
func NewWithIO(out io.Writer, in io.Reader) *Interpreter {
	return &Interpreter{out: out, in: bufio.NewReader(in)}
}

// Run executes an optimized program to completion and returns whatever
// value ended it: the value a top-level `return`/`exit` produced, or the
// last top-level statement's value if control simply fell off the end.
func (i *Interpreter) Run(prog *ast.Program) (value.Value, error) {
	i.functions = map[string]*ast.FuncDecl{}
	var top []ast.Node
	for _, s := range prog.Stmts {
		if fd, ok := s.(*ast.FuncDecl); ok {
			i.functions[fd.Name] = fd
			continue
		}
		top = append(top, s)
	}

	env := NewEnvironment(nil)
	result, fl, err := i.executeStmts(top, env)
	if err != nil {
		return value.Unit, err
	}
	if fl != nil {
		switch fl.kind {
		case flowReturn, flowExit:
			return fl.value, nil
		case flowGoto:
			return value.Unit, RuntimeError{Message: "goto refers to undeclared label " + fl.label}
		}
	}
	return result, nil
}

// executeStmts runs a flat statement list in env, resolving any goto
// that targets a label within this same list before propagating an
// unresolved goto (or a return/exit) to the caller.
func (i *Interpreter) executeStmts(stmts []ast.Node, env *Environment) (value.Value, *flow, error) {
	result := value.Unit
	idx := 0
	for idx < len(stmts) {
		v, fl, err := i.eval(stmts[idx], env)
		if err != nil {
			return value.Unit, nil, err
		}
		if fl != nil {
			if fl.kind == flowGoto {
				if target, ok := findLabel(stmts, fl.label); ok {
					idx = target
					continue
				}
			}
			return value.Unit, fl, nil
		}
		result = v
		idx++
	}
	return result, nil, nil
}

func findLabel(stmts []ast.Node, name string) (int, bool) {
	for idx, s := range stmts {
		if lbl, ok := s.(*ast.Label); ok && lbl.Name == name {
			return idx, true
		}
	}
	return 0, false
}

// eval evaluates a single node, returning its value (for expression-
// valued nodes; Unit for statement-valued ones), a non-nil flow if
// execution must unwind, or an error.
func (i *Interpreter) eval(n ast.Node, env *Environment) (value.Value, *flow, error) {
	switch v := n.(type) {
	case *ast.Val:
		return litValue(v), nil, nil

	case *ast.Var:
		val, ok := env.Get(v.Name)
		if !ok {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "undefined variable " + v.Name}
		}
		return val, nil, nil

	case *ast.VarDecl:
		val, fl, err := i.eval(v.Init, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		env.Declare(v.Name, val)
		return value.Unit, nil, nil

	case *ast.VarMod:
		val, fl, err := i.eval(v.Value, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		if !env.Assign(v.Name, val) {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "undefined variable " + v.Name}
		}
		return value.Unit, nil, nil

	case *ast.BinOp:
		return i.evalBinOp(v, env)

	case *ast.UnaryOp:
		return i.evalUnaryOp(v, env)

	case *ast.Out:
		val, fl, err := i.eval(v.Value, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		fmt.Fprintln(i.out, val.String())
		return value.Unit, nil, nil

	case *ast.In:
		line, _ := i.in.ReadString('\n')
		env.Declare(v.Name, value.String(trimNewline(line)))
		return value.Unit, nil, nil

	case *ast.If:
		cond, fl, err := i.eval(v.Cond, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		if cond.Truthy() {
			return i.eval(v.Then, env)
		}
		if v.Else != nil {
			return i.eval(v.Else, env)
		}
		return value.Unit, nil, nil

	case *ast.While:
		for {
			cond, fl, err := i.eval(v.Cond, env)
			if err != nil || fl != nil {
				return value.Unit, fl, err
			}
			if !cond.Truthy() {
				break
			}
			_, fl, err = i.eval(v.Body, env)
			if err != nil || fl != nil {
				return value.Unit, fl, err
			}
		}
		return value.Unit, nil, nil

	case *ast.Block:
		child := NewEnvironment(env)
		return i.executeStmts(v.Stmts, child)

	case *ast.FuncCall:
		return i.evalFuncCall(v, env)

	case *ast.Return:
		val := value.Unit
		if v.Value != nil {
			var fl *flow
			var err error
			val, fl, err = i.eval(v.Value, env)
			if err != nil || fl != nil {
				return value.Unit, fl, err
			}
		}
		return value.Unit, &flow{kind: flowReturn, value: val}, nil

	case *ast.Exit:
		val := value.Unit
		if v.Value != nil {
			var fl *flow
			var err error
			val, fl, err = i.eval(v.Value, env)
			if err != nil || fl != nil {
				return value.Unit, fl, err
			}
		}
		return value.Unit, &flow{kind: flowExit, value: val}, nil

	case *ast.Eval:
		src, fl, err := i.eval(v.Source, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		if !src.IsString() {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "eval requires a string operand"}
		}
		result, err := i.evalSource(src.Str())
		if err != nil {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "eval failed: " + err.Error()}
		}
		return result, nil, nil

	case *ast.Label:
		return value.Unit, nil, nil

	case *ast.Goto:
		return value.Unit, &flow{kind: flowGoto, label: v.Label}, nil

	default:
		return value.Unit, nil, RuntimeError{Message: "interpreter: unhandled node type"}
	}
}

func (i *Interpreter) evalFuncCall(v *ast.FuncCall, env *Environment) (value.Value, *flow, error) {
	fd, ok := i.functions[v.Name]
	if !ok {
		return value.Unit, nil, RuntimeError{Line: v.Line, Message: "call to undeclared function " + v.Name}
	}
	if len(v.Args) != len(fd.Params) {
		return value.Unit, nil, RuntimeError{
			Line:    v.Line,
			Message: fmt.Sprintf("function %s expects %d argument(s), got %d", v.Name, len(fd.Params), len(v.Args)),
		}
	}

	args := make([]value.Value, len(v.Args))
	for idx, a := range v.Args {
		val, fl, err := i.eval(a, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		args[idx] = val
	}

	callEnv := NewEnvironment(nil) // functions are not closures: no access to the caller's scope
	for idx, param := range fd.Params {
		callEnv.Declare(param, args[idx])
	}

	result, fl, err := i.eval(fd.Body, callEnv)
	if err != nil {
		return value.Unit, nil, err
	}
	if fl != nil {
		switch fl.kind {
		case flowReturn:
			return fl.value, nil, nil
		case flowExit:
			return value.Unit, fl, nil // exit always terminates the whole program, regardless of call depth
		case flowGoto:
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "goto refers to undeclared label " + fl.label}
		}
	}
	return result, nil, nil
}

func (i *Interpreter) evalBinOp(v *ast.BinOp, env *Environment) (value.Value, *flow, error) {
	left, fl, err := i.eval(v.Left, env)
	if err != nil || fl != nil {
		return value.Unit, fl, err
	}
	right, fl, err := i.eval(v.Right, env)
	if err != nil || fl != nil {
		return value.Unit, fl, err
	}

	switch v.Op {
	case ast.OpAdd:
		if left.IsString() && right.IsString() {
			return value.String(left.Str() + right.Str()), nil, nil
		}
		if !left.IsNumber() || !right.IsNumber() {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "'+' requires two numbers or two strings"}
		}
		return value.Number(left.Num() + right.Num()), nil, nil
	case ast.OpSub, ast.OpMul, ast.OpDiv:
		if !left.IsNumber() || !right.IsNumber() {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "arithmetic requires numeric operands"}
		}
		switch v.Op {
		case ast.OpSub:
			return value.Number(left.Num() - right.Num()), nil, nil
		case ast.OpMul:
			return value.Number(left.Num() * right.Num()), nil, nil
		case ast.OpDiv:
			if right.Num() == 0 {
				return value.Unit, nil, RuntimeError{Line: v.Line, Message: "division by zero"}
			}
			return value.Number(left.Num() / right.Num()), nil, nil
		}
	case ast.OpEq:
		return value.Bool(value.Equal(left, right)), nil, nil
	case ast.OpNe:
		return value.Bool(!value.Equal(left, right)), nil, nil
	case ast.OpGt, ast.OpGe, ast.OpLt, ast.OpLe:
		if (left.IsNumber() && right.IsNumber()) || (left.IsString() && right.IsString()) {
			switch v.Op {
			case ast.OpGt:
				return value.Bool(value.Less(right, left)), nil, nil
			case ast.OpGe:
				return value.Bool(!value.Less(left, right)), nil, nil
			case ast.OpLt:
				return value.Bool(value.Less(left, right)), nil, nil
			case ast.OpLe:
				return value.Bool(!value.Less(right, left)), nil, nil
			}
		}
		return value.Unit, nil, RuntimeError{Line: v.Line, Message: "comparison requires two numbers or two strings"}
	case ast.OpLogAnd, ast.OpLogOr, ast.OpLogXor:
		if !left.IsNumber() || !right.IsNumber() {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "bitwise operator requires numeric operands"}
		}
		li, ri := int64(left.Num()), int64(right.Num())
		switch v.Op {
		case ast.OpLogAnd:
			return value.Number(float64(li & ri)), nil, nil
		case ast.OpLogOr:
			return value.Number(float64(li | ri)), nil, nil
		case ast.OpLogXor:
			return value.Number(float64(li ^ ri)), nil, nil
		}
	}
	return value.Unit, nil, RuntimeError{Line: v.Line, Message: "unsupported binary operator"}
}

func (i *Interpreter) evalUnaryOp(v *ast.UnaryOp, env *Environment) (value.Value, *flow, error) {
	switch v.Op {
	case ast.OpNeg, ast.OpPos, ast.OpNot:
		operand, fl, err := i.eval(v.Operand, env)
		if err != nil || fl != nil {
			return value.Unit, fl, err
		}
		switch v.Op {
		case ast.OpNeg:
			if !operand.IsNumber() {
				return value.Unit, nil, RuntimeError{Line: v.Line, Message: "'-' requires a number operand"}
			}
			return value.Number(-operand.Num()), nil, nil
		case ast.OpPos:
			if !operand.IsNumber() {
				return value.Unit, nil, RuntimeError{Line: v.Line, Message: "'+' requires a number operand"}
			}
			return value.Number(operand.Num()), nil, nil
		case ast.OpNot:
			return value.Bool(!operand.Truthy()), nil, nil
		}
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		variable, ok := v.Operand.(*ast.Var)
		if !ok {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "'++'/'--' can only be applied to a variable"}
		}
		cur, ok := env.Get(variable.Name)
		if !ok {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "undefined variable " + variable.Name}
		}
		if !cur.IsNumber() {
			return value.Unit, nil, RuntimeError{Line: v.Line, Message: "'++'/'--' requires a numeric variable"}
		}
		delta := 1.0
		if v.Op == ast.OpPreDec || v.Op == ast.OpPostDec {
			delta = -1.0
		}
		next := value.Number(cur.Num() + delta)
		env.Assign(variable.Name, next)
		if v.Op == ast.OpPreInc || v.Op == ast.OpPreDec {
			return next, nil, nil
		}
		return cur, nil, nil
	}
	return value.Unit, nil, RuntimeError{Line: v.Line, Message: "unsupported unary operator"}
}

func litValue(v *ast.Val) value.Value {
	switch v.Kind {
	case "number":
		return value.Number(v.Num)
	case "string":
		return value.String(v.Str)
	case "bool":
		return value.Bool(v.Bool)
	default:
		return value.Unit
	}
}

// evalSource runs nested source the way the bytecode VM's EVAL opcode
// does: a fresh function table (eval'd source cannot declare functions —
// wiring a second interpreter-level function table into an
// already-running call isn't justified by eval's one-shot use, mirroring
// compiler.CompileEval's restriction) and a fresh scope, sharing this
// interpreter's output stream but reading from no input.
func (i *Interpreter) evalSource(src string) (value.Value, error) {
	toks, err := lexer.New(src).Scan()
	if err != nil {
		return value.Unit, err
	}
	prog, errs := parser.Make(toks).Parse()
	if len(errs) > 0 {
		return value.Unit, errs[0]
	}
	optimized := optimizer.Optimize(prog)
	for _, s := range optimized.Stmts {
		if _, ok := s.(*ast.FuncDecl); ok {
			return value.Unit, RuntimeError{Message: "function declarations are not supported inside eval"}
		}
	}
	sub := NewWithIO(i.out, emptyReader{})
	return sub.Run(optimized)
}

type emptyReader struct{}

func (emptyReader) Read(p []byte) (int, error) { return 0, io.EOF }

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
