// Package compiler turns an optimized AST into a Chunk of bytecode.
package compiler

import (
	"encoding/binary"

	"gos/ast"
	"gos/value"
)

type gotoPatch struct {
	offset int
	label  string
	line   int
}

// callPatch records a CALL instruction whose target function wasn't yet
// compiled (and so didn't have a known entry address) at the point the
// call was emitted.
type callPatch struct {
	offset int
	name   string
	line   int
}

// fnScope holds everything reset between compiling the top-level program
// and each function body: its own slot numbering, label table, and
// pending goto patches.
type fnScope struct {
	scopes   []map[string]int
	nextSlot int
	maxSlot  int
	labels   map[string]int
	patches  []gotoPatch
}

func newFnScope() *fnScope {
	return &fnScope{
		scopes: []map[string]int{{}},
		labels: map[string]int{},
	}
}

func (f *fnScope) beginScope() { f.scopes = append(f.scopes, map[string]int{}) }

func (f *fnScope) endScope() {
	last := f.scopes[len(f.scopes)-1]
	f.nextSlot -= len(last)
	f.scopes = f.scopes[:len(f.scopes)-1]
}

func (f *fnScope) declare(name string) int {
	slot := f.nextSlot
	f.scopes[len(f.scopes)-1][name] = slot
	f.nextSlot++
	if f.nextSlot > f.maxSlot {
		f.maxSlot = f.nextSlot
	}
	return slot
}

func (f *fnScope) resolve(name string) (int, bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if slot, ok := f.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// Compiler emits a single Chunk for a whole Program: the top-level
// statements first (terminated by OP_HALT), followed by each declared
// function's body.
type Compiler struct {
	chunk       *Chunk
	fn          *fnScope
	callPatches []callPatch
}

// Compile compiles an (already optimized) Program into a Chunk.
func Compile(prog *ast.Program) (*Chunk, error) {
	c := &Compiler{
		chunk: &Chunk{Functions: map[string]FuncInfo{}},
	}

	var funcs []*ast.FuncDecl
	var top []ast.Node
	for _, s := range prog.Stmts {
		if fd, ok := s.(*ast.FuncDecl); ok {
			funcs = append(funcs, fd)
			continue
		}
		top = append(top, s)
	}

	// Pre-register signatures so forward calls can be emitted (with a
	// placeholder address) before the callee itself is compiled.
	for _, fd := range funcs {
		c.chunk.Functions[fd.Name] = FuncInfo{Addr: -1, ParamCount: len(fd.Params)}
	}

	c.fn = newFnScope()
	for _, s := range top {
		if err := c.compileTopLevelStmt(s); err != nil {
			return nil, err
		}
	}
	c.emit(MakeInstruction(OP_HALT))
	if err := c.resolveGotos(); err != nil {
		return nil, err
	}
	c.chunk.MaxSlot = c.fn.maxSlot

	for _, fd := range funcs {
		if err := c.compileFunction(fd); err != nil {
			return nil, err
		}
	}

	for _, p := range c.callPatches {
		info, ok := c.chunk.Functions[p.name]
		if !ok || info.Addr < 0 {
			return nil, SemanticError{Line: p.line, Message: "call to undeclared function " + p.name}
		}
		binary.BigEndian.PutUint16(c.chunk.Code[p.offset+1:], uint16(info.Addr))
	}

	return c.chunk, nil
}

// CompileEval compiles source parsed at runtime by the EVAL opcode: the
// program's statements are treated as a single block whose trailing value
// (or Unit, if the last statement is stack-neutral) is returned via
// OP_RET rather than discarded via OP_HALT. Function declarations nested
// inside eval'd source are not supported — they would need a second
// pre-registration pass wired into the already-running VM's call table,
// which eval's one-shot nature doesn't justify.
func CompileEval(prog *ast.Program) (*Chunk, error) {
	c := &Compiler{
		chunk: &Chunk{Functions: map[string]FuncInfo{}},
		fn:    newFnScope(),
	}
	valued, err := c.compileNode(&ast.Block{Stmts: prog.Stmts})
	if err != nil {
		return nil, err
	}
	if !valued {
		c.emitConstant(value.Unit)
	}
	c.emit(MakeInstruction(OP_RET))
	if err := c.resolveGotos(); err != nil {
		return nil, err
	}
	c.chunk.MaxSlot = c.fn.maxSlot
	return c.chunk, nil
}

func (c *Compiler) emit(bytes []byte) int {
	pos := len(c.chunk.Code)
	c.chunk.Code = append(c.chunk.Code, bytes...)
	return pos
}

func (c *Compiler) addConstant(v value.Value) int {
	c.chunk.Constants = append(c.chunk.Constants, v)
	return len(c.chunk.Constants) - 1
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emit(MakeInstruction(OP_LOAD_CONST, c.addConstant(v)))
}

func (c *Compiler) emitJumpPlaceholder(op Opcode) int {
	pos := c.emit(MakeInstruction(op, 0))
	return pos
}

// patchJump overwrites the 2-byte big-endian operand of the jump
// instruction at jumpPos so it targets the current end of the code
// stream.
func (c *Compiler) patchJump(jumpPos int) {
	target := len(c.chunk.Code)
	operandOffset := jumpPos + 1
	binary.BigEndian.PutUint16(c.chunk.Code[operandOffset:], uint16(target))
}

func (c *Compiler) patchJumpTo(jumpPos, target int) {
	operandOffset := jumpPos + 1
	binary.BigEndian.PutUint16(c.chunk.Code[operandOffset:], uint16(target))
}

func (c *Compiler) resolveGotos() error {
	for _, p := range c.fn.patches {
		target, ok := c.fn.labels[p.label]
		if !ok {
			return SemanticError{Line: p.line, Message: "goto refers to undeclared label " + p.label}
		}
		c.patchJumpTo(p.offset, target)
	}
	return nil
}

func (c *Compiler) compileFunction(fd *ast.FuncDecl) error {
	c.fn = newFnScope()
	addr := len(c.chunk.Code)
	for _, param := range fd.Params {
		c.fn.declare(param)
	}
	valued, err := c.compileNode(fd.Body)
	if err != nil {
		return err
	}
	if !valued {
		c.emitConstant(value.Unit)
	}
	c.emit(MakeInstruction(OP_RET))
	if err := c.resolveGotos(); err != nil {
		return err
	}
	c.chunk.Functions[fd.Name] = FuncInfo{Addr: addr, ParamCount: len(fd.Params), MaxSlot: c.fn.maxSlot}
	return nil
}

// compileTopLevelStmt compiles one Program-level statement, discarding
// any value it produces — nothing at the top level consumes it.
func (c *Compiler) compileTopLevelStmt(n ast.Node) error {
	valued, err := c.compileNode(n)
	if err != nil {
		return err
	}
	if valued {
		c.emit(MakeInstruction(OP_POP))
	}
	return nil
}

// compileNode compiles n and reports whether it left exactly one value on
// the stack (true) or was stack-neutral (false).
func (c *Compiler) compileNode(n ast.Node) (bool, error) {
	switch v := n.(type) {
	case *ast.Val:
		c.emitConstant(litValue(v))
		return true, nil

	case *ast.Var:
		slot, ok := c.fn.resolve(v.Name)
		if !ok {
			return false, SemanticError{Line: v.Line, Message: "undefined variable " + v.Name}
		}
		c.emit(MakeInstruction(OP_LOAD_VAR, slot))
		return true, nil

	case *ast.VarDecl:
		if _, err := c.compileNode(v.Init); err != nil {
			return false, err
		}
		slot := c.fn.declare(v.Name)
		c.emit(MakeInstruction(OP_STORE_VAR, slot))
		c.emit(MakeInstruction(OP_POP))
		return false, nil

	case *ast.VarMod:
		slot, ok := c.fn.resolve(v.Name)
		if !ok {
			return false, SemanticError{Line: v.Line, Message: "undefined variable " + v.Name}
		}
		if _, err := c.compileNode(v.Value); err != nil {
			return false, err
		}
		c.emit(MakeInstruction(OP_STORE_VAR, slot))
		c.emit(MakeInstruction(OP_POP))
		return false, nil

	case *ast.BinOp:
		return c.compileBinOp(v)

	case *ast.UnaryOp:
		return c.compileUnaryOp(v)

	case *ast.Out:
		if _, err := c.compileNode(v.Value); err != nil {
			return false, err
		}
		c.emit(MakeInstruction(OP_OUT))
		return false, nil

	case *ast.In:
		slot, ok := c.fn.resolve(v.Name)
		if !ok {
			slot = c.fn.declare(v.Name)
		}
		c.emit(MakeInstruction(OP_IN, slot))
		return false, nil

	case *ast.If:
		return c.compileIf(v)

	case *ast.While:
		return c.compileWhile(v)

	case *ast.Block:
		return c.compileBlock(v)

	case *ast.FuncCall:
		return c.compileFuncCall(v)

	case *ast.Return:
		if v.Value != nil {
			if _, err := c.compileNode(v.Value); err != nil {
				return false, err
			}
		} else {
			c.emitConstant(value.Unit)
		}
		c.emit(MakeInstruction(OP_RET))
		return false, nil

	case *ast.Exit:
		if v.Value != nil {
			if _, err := c.compileNode(v.Value); err != nil {
				return false, err
			}
			c.emit(MakeInstruction(OP_EXIT, 1))
		} else {
			c.emit(MakeInstruction(OP_EXIT, 0))
		}
		return false, nil

	case *ast.Eval:
		if _, err := c.compileNode(v.Source); err != nil {
			return false, err
		}
		c.emit(MakeInstruction(OP_EVAL))
		return true, nil

	case *ast.Label:
		c.fn.labels[v.Name] = len(c.chunk.Code)
		return false, nil

	case *ast.Goto:
		pos := c.emitJumpPlaceholder(OP_JUMP)
		c.fn.patches = append(c.fn.patches, gotoPatch{offset: pos, label: v.Label, line: v.Line})
		return false, nil

	default:
		return false, SemanticError{Message: "compiler: unhandled node type"}
	}
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

var binOpcodes = map[ast.BinOpKind]Opcode{
	ast.OpAdd: OP_ADD, ast.OpSub: OP_SUB, ast.OpMul: OP_MUL, ast.OpDiv: OP_DIV,
	ast.OpEq: OP_EQ, ast.OpNe: OP_NE, ast.OpGt: OP_GT, ast.OpGe: OP_GE,
	ast.OpLt: OP_LT, ast.OpLe: OP_LE,
	ast.OpLogAnd: OP_LOG_AND, ast.OpLogOr: OP_LOG_OR, ast.OpLogXor: OP_LOG_XOR,
}

func (c *Compiler) compileBinOp(v *ast.BinOp) (bool, error) {
	if _, err := c.compileNode(v.Left); err != nil {
		return false, err
	}
	if _, err := c.compileNode(v.Right); err != nil {
		return false, err
	}
	c.emit(MakeInstruction(binOpcodes[v.Op]))
	return true, nil
}

func (c *Compiler) compileUnaryOp(v *ast.UnaryOp) (bool, error) {
	switch v.Op {
	case ast.OpNeg, ast.OpPos, ast.OpNot:
		if _, err := c.compileNode(v.Operand); err != nil {
			return false, err
		}
		op := OP_NEG
		switch v.Op {
		case ast.OpPos:
			op = OP_POS
		case ast.OpNot:
			op = OP_LOG_NOT
		}
		c.emit(MakeInstruction(op))
		return true, nil

	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		variable, ok := v.Operand.(*ast.Var)
		if !ok {
			return false, SemanticError{Line: v.Line, Message: "'++'/'--' can only be applied to a variable"}
		}
		slot, ok := c.fn.resolve(variable.Name)
		if !ok {
			return false, SemanticError{Line: v.Line, Message: "undefined variable " + variable.Name}
		}
		var op Opcode
		switch v.Op {
		case ast.OpPreInc:
			op = OP_INC
		case ast.OpPreDec:
			op = OP_DEC
		case ast.OpPostInc:
			op = OP_INC_POST
		case ast.OpPostDec:
			op = OP_DEC_POST
		}
		c.emit(MakeInstruction(op, slot))
		return true, nil
	}
	return false, SemanticError{Line: v.Line, Message: "compiler: unhandled unary operator"}
}

func (c *Compiler) compileIf(v *ast.If) (bool, error) {
	if _, err := c.compileNode(v.Cond); err != nil {
		return false, err
	}
	elseJump := c.emitJumpPlaceholder(OP_JUMP_IF_FALSE)

	thenValued, err := c.compileNode(v.Then)
	if err != nil {
		return false, err
	}
	if !thenValued {
		c.emitConstant(value.Unit)
	}
	endJump := c.emitJumpPlaceholder(OP_JUMP)

	c.patchJump(elseJump)
	if v.Else != nil {
		elseValued, err := c.compileNode(v.Else)
		if err != nil {
			return false, err
		}
		if !elseValued {
			c.emitConstant(value.Unit)
		}
	} else {
		c.emitConstant(value.Unit)
	}
	c.patchJump(endJump)
	return true, nil
}

func (c *Compiler) compileWhile(v *ast.While) (bool, error) {
	loopStart := len(c.chunk.Code)
	if _, err := c.compileNode(v.Cond); err != nil {
		return false, err
	}
	exitJump := c.emitJumpPlaceholder(OP_JUMP_IF_FALSE)

	bodyValued, err := c.compileNode(v.Body)
	if err != nil {
		return false, err
	}
	if bodyValued {
		c.emit(MakeInstruction(OP_POP))
	}
	c.emit(MakeInstruction(OP_JUMP, loopStart))

	c.patchJump(exitJump)
	c.emitConstant(value.Unit)
	return true, nil
}

func (c *Compiler) compileBlock(v *ast.Block) (bool, error) {
	c.fn.beginScope()
	defer c.fn.endScope()

	if len(v.Stmts) == 0 {
		c.emitConstant(value.Unit)
		return true, nil
	}

	for i, stmt := range v.Stmts {
		valued, err := c.compileNode(stmt)
		if err != nil {
			return false, err
		}
		last := i == len(v.Stmts)-1
		if !last {
			if valued {
				c.emit(MakeInstruction(OP_POP))
			}
			continue
		}
		if !valued {
			c.emitConstant(value.Unit)
		}
	}
	return true, nil
}

func (c *Compiler) compileFuncCall(v *ast.FuncCall) (bool, error) {
	for _, arg := range v.Args {
		if _, err := c.compileNode(arg); err != nil {
			return false, err
		}
	}
	info, ok := c.chunk.Functions[v.Name]
	if !ok {
		return false, SemanticError{Line: v.Line, Message: "call to undeclared function " + v.Name}
	}
	if info.ParamCount != len(v.Args) {
		return false, SemanticError{Line: v.Line, Message: "wrong number of arguments calling " + v.Name}
	}
	pos := c.emit(MakeInstruction(OP_CALL, 0, len(v.Args)))
	c.callPatches = append(c.callPatches, callPatch{offset: pos, name: v.Name, line: v.Line})
	return true, nil
}
