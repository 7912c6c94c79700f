// Package ast defines the Gos abstract syntax tree: a closed set of node
// types dispatched by callers with a Go type switch, not a visitor
// interface — pattern matching on a concrete, closed node set is clearer
// and cheaper than a class hierarchy of Accept methods for a tree this
// shape.
package ast

// Node is implemented by every AST node. It carries no behavior of its
// own; callers (the optimizer, compiler, interpreter, printer) switch on
// the concrete type.
type Node interface {
	node()
}

// BinOpKind enumerates binary operators.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpLogAnd
	OpLogOr
	OpLogXor
)

// UnaryOpKind enumerates unary operators.
type UnaryOpKind int

const (
	OpNeg UnaryOpKind = iota
	OpPos
	OpNot
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
)

// Program is the root node: a sequence of top-level statements. Any value a
// top-level statement leaves on the stack is popped once it is compiled —
// nothing consumes the program's final value.
type Program struct {
	Stmts []Node
	Line  int
}

func (*Program) node() {}

// Val is a literal number/string/bool/null.
type Val struct {
	// Kind is one of "number", "string", "bool", "null".
	Kind string
	Num  float64
	Str  string
	Bool bool
	Line int
}

func (*Val) node() {}

// Var reads a variable's current value. Expression-valued.
type Var struct {
	Name string
	Line int
}

func (*Var) node() {}

// VarDecl introduces a new binding in the current scope: `let NAME = expr`.
// Statement-valued.
type VarDecl struct {
	Name string
	Init Node
	Line int
}

func (*VarDecl) node() {}

// VarMod reassigns an existing binding: `NAME = expr`. Statement-valued:
// it compiles to evaluate expr, STORE_VAR, POP.
type VarMod struct {
	Name  string
	Value Node
	Line  int
}

func (*VarMod) node() {}

// BinOp is a binary operator expression. Expression-valued.
type BinOp struct {
	Op    BinOpKind
	Left  Node
	Right Node
	Line  int
}

func (*BinOp) node() {}

// UnaryOp is a unary/prefix/postfix operator expression applied to an
// operand. For Op in {OpPreInc, OpPreDec, OpPostInc, OpPostDec}, Operand
// must be a *Var: these compile to load, transform, store-back.
// Expression-valued.
type UnaryOp struct {
	Op      UnaryOpKind
	Operand Node
	Line    int
}

func (*UnaryOp) node() {}

// Out prints a value: `out expr`. Statement-valued.
type Out struct {
	Value Node
	Line  int
}

func (*Out) node() {}

// In reads a line from stdin into a variable: `in NAME`. Statement-valued.
type In struct {
	Name string
	Line int
}

func (*In) node() {}

// If is always expression-valued: it yields the value of whichever branch
// ran, or unit if the condition was false and there is no Else.
type If struct {
	Cond Node
	Then Node
	Else Node // nil when there is no else branch
	Line int
}

func (*If) node() {}

// While is always expression-valued: each iteration's body value is
// discarded as the loop continues, and the loop as a whole yields unit.
type While struct {
	Cond Node
	Body Node
	Line int
}

func (*While) node() {}

// Block is a brace-delimited sequence of statements/expressions. It yields
// the value of its last child if that child is expression-valued, or unit
// otherwise (including when the block is empty).
type Block struct {
	Stmts []Node
	Line  int
}

func (*Block) node() {}

// FuncDecl declares a named function. Statement-valued.
type FuncDecl struct {
	Name   string
	Params []string
	Body   Node
	Line   int
}

func (*FuncDecl) node() {}

// FuncCall invokes a declared function by name. Expression-valued: the
// callee's Return value becomes the call's value; if the callee falls off
// the end, its body block's value (its last child's value, or unit) does.
type FuncCall struct {
	Name string
	Args []Node
	Line int
}

func (*FuncCall) node() {}

// Return exits the current function with a value. Statement-valued at the
// point it appears (control never falls through to whatever follows it).
type Return struct {
	Value Node // nil means return unit
	Line  int
}

func (*Return) node() {}

// Exit halts the whole program, optionally with a value used as the
// process's reported result. Statement-valued.
type Exit struct {
	Value Node // nil means exit with unit
	Line  int
}

func (*Exit) node() {}

// Eval parses and runs source text held in a string value at runtime,
// yielding whatever that nested program's last statement yields.
// Expression-valued.
type Eval struct {
	Source Node
	Line   int
}

func (*Eval) node() {}

// Label marks a jump target: `NAME:`. Statement-valued (compiles to
// nothing but records the instruction offset under Name).
type Label struct {
	Name string
	Line int
}

func (*Label) node() {}

// Goto unconditionally jumps to a label, which may be declared later in
// the enclosing function (a forward reference, resolved via a patch table
// once the label is seen). Statement-valued.
type Goto struct {
	Label string
	Line  int
}

func (*Goto) node() {}
