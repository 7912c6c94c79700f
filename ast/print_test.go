package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpProgram(t *testing.T) {
	prog := &Program{Stmts: []Node{
		&VarDecl{Name: "x", Init: &Val{Kind: "number", Num: 1}},
		&Out{Value: &Var{Name: "x"}},
	}}
	out, err := Dump(prog)
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "Program"`)
	assert.Contains(t, out, `"type": "VarDecl"`)
	assert.Contains(t, out, `"name": "x"`)
	assert.Contains(t, out, `"type": "Out"`)
}

func TestDumpBinOpAndUnaryOp(t *testing.T) {
	n := &BinOp{Op: OpAdd, Left: &Val{Kind: "number", Num: 1}, Right: &UnaryOp{Op: OpNeg, Operand: &Val{Kind: "number", Num: 2}}}
	out, err := Dump(n)
	require.NoError(t, err)
	assert.Contains(t, out, `"op": "+"`)
	assert.Contains(t, out, `"op": "-"`)
}

func TestDumpIfWithNoElse(t *testing.T) {
	n := &If{Cond: &Val{Kind: "bool", Bool: true}, Then: &Block{}}
	out, err := Dump(n)
	require.NoError(t, err)
	assert.Contains(t, out, `"else": null`)
}
