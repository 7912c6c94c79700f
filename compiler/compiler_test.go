package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gos/ast"
	"gos/lexer"
	"gos/optimizer"
	"gos/parser"
)

func compileSrc(t *testing.T, src string) *Chunk {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)
	chunk, err := Compile(optimizer.Optimize(prog))
	require.NoError(t, err)
	return chunk
}

func TestCompileSimpleArithmeticEndsInHalt(t *testing.T) {
	chunk := compileSrc(t, "out 1 + 2")
	require.NotEmpty(t, chunk.Code)
	assert.Equal(t, byte(OP_HALT), chunk.Code[len(chunk.Code)-1])
}

func TestCompileVarDeclAndOutRoundTrip(t *testing.T) {
	chunk := compileSrc(t, "let x = 5\nout x")
	assert.Equal(t, byte(OP_LOAD_CONST), chunk.Code[0])
	found := false
	for _, b := range chunk.Code {
		if Opcode(b) == OP_OUT {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompileUndefinedVariableIsSemanticError(t *testing.T) {
	toks, err := lexer.New("out x").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)
	_, err = Compile(optimizer.Optimize(prog))
	assert.Error(t, err)
}

func TestCompileFunctionCallPatchesAddress(t *testing.T) {
	chunk := compileSrc(t, "fun add(a, b) { return a + b }\nout add(1, 2)")
	info, ok := chunk.Functions["add"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, info.Addr, 0)
	assert.Equal(t, 2, info.ParamCount)
}

func TestCompileGotoForwardReference(t *testing.T) {
	chunk := compileSrc(t, "goto done\nout 1\ndone:\nout 2")
	require.NotEmpty(t, chunk.Code)
}

func TestCompileUnresolvedGotoIsSemanticError(t *testing.T) {
	toks, err := lexer.New("goto nowhere").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)
	_, err = Compile(optimizer.Optimize(prog))
	assert.Error(t, err)
}

func TestChunkDisassembleContainsHeader(t *testing.T) {
	chunk := compileSrc(t, "out 1")
	out := chunk.Disassemble("test")
	assert.Contains(t, out, "=== test ===")
	assert.Contains(t, out, "LOAD_CONST")
	assert.Contains(t, out, "OUT")
}

func TestIfIsExpressionValued(t *testing.T) {
	chunk := compileSrc(t, "let x = if true { 1 } else { 2 }\nout x")
	require.NotEmpty(t, chunk.Code)
}

func TestWhileYieldsUnit(t *testing.T) {
	chunk := compileSrc(t, "let i = 0\nlet r = while i < 3 { i = i + 1 }\nout r")
	require.NotEmpty(t, chunk.Code)
}

func TestBinOpNetStackEffectIsOne(t *testing.T) {
	c := &Compiler{chunk: &Chunk{Functions: map[string]FuncInfo{}}, fn: newFnScope()}
	valued, err := c.compileNode(&ast.BinOp{
		Op:    ast.OpAdd,
		Left:  &ast.Val{Kind: "number", Num: 1},
		Right: &ast.Val{Kind: "number", Num: 2},
	})
	require.NoError(t, err)
	assert.True(t, valued)
}
