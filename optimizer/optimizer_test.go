package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gos/ast"
)

func TestFoldsConstantArithmetic(t *testing.T) {
	prog := &ast.Program{Stmts: []ast.Node{
		&ast.Out{Value: &ast.BinOp{Op: ast.OpAdd, Left: &ast.Val{Kind: "number", Num: 1}, Right: &ast.Val{Kind: "number", Num: 2}}},
	}}
	out := Optimize(prog)
	folded := out.Stmts[0].(*ast.Out).Value.(*ast.Val)
	assert.Equal(t, "number", folded.Kind)
	assert.Equal(t, 3.0, folded.Num)
}

func TestLeavesDivisionByZeroUnfolded(t *testing.T) {
	prog := &ast.Program{Stmts: []ast.Node{
		&ast.Out{Value: &ast.BinOp{Op: ast.OpDiv, Left: &ast.Val{Kind: "number", Num: 1}, Right: &ast.Val{Kind: "number", Num: 0}}},
	}}
	out := Optimize(prog)
	_, ok := out.Stmts[0].(*ast.Out).Value.(*ast.BinOp)
	assert.True(t, ok, "division by zero must not be folded")
}

func TestFoldsBitwiseOperators(t *testing.T) {
	and := foldBinary(ast.OpLogAnd, &ast.Val{Kind: "number", Num: 6}, &ast.Val{Kind: "number", Num: 3}, 0).(*ast.Val)
	assert.Equal(t, "number", and.Kind)
	assert.Equal(t, 2.0, and.Num)

	or := foldBinary(ast.OpLogOr, &ast.Val{Kind: "number", Num: 6}, &ast.Val{Kind: "number", Num: 3}, 0).(*ast.Val)
	assert.Equal(t, 7.0, or.Num)

	xor := foldBinary(ast.OpLogXor, &ast.Val{Kind: "number", Num: 6}, &ast.Val{Kind: "number", Num: 3}, 0).(*ast.Val)
	assert.Equal(t, 5.0, xor.Num)
}

func TestFoldsStringConcat(t *testing.T) {
	n := foldBinary(ast.OpAdd, &ast.Val{Kind: "string", Str: "a"}, &ast.Val{Kind: "string", Str: "b"}, 0)
	lit := n.(*ast.Val)
	assert.Equal(t, "ab", lit.Str)
}

func TestDeadIfBranchElimination(t *testing.T) {
	prog := &ast.Program{Stmts: []ast.Node{
		&ast.If{
			Cond: &ast.Val{Kind: "bool", Bool: false},
			Then: &ast.Out{Value: &ast.Val{Kind: "number", Num: 1}},
			Else: &ast.Out{Value: &ast.Val{Kind: "number", Num: 2}},
		},
	}}
	out := Optimize(prog)
	res, ok := out.Stmts[0].(*ast.Out)
	require.True(t, ok)
	assert.Equal(t, 2.0, res.Value.(*ast.Val).Num)
}

func TestDeadWhileEliminatedToEmptyBlock(t *testing.T) {
	prog := &ast.Program{Stmts: []ast.Node{
		&ast.While{Cond: &ast.Val{Kind: "bool", Bool: false}, Body: &ast.Out{Value: &ast.Val{Kind: "number", Num: 1}}},
	}}
	out := Optimize(prog)
	block, ok := out.Stmts[0].(*ast.Block)
	require.True(t, ok)
	assert.Empty(t, block.Stmts)
}

func TestPreservesEvaluationOrderWhenNotFoldable(t *testing.T) {
	prog := &ast.Program{Stmts: []ast.Node{
		&ast.Out{Value: &ast.BinOp{Op: ast.OpAdd, Left: &ast.Var{Name: "x"}, Right: &ast.Val{Kind: "number", Num: 1}}},
	}}
	out := Optimize(prog)
	bin := out.Stmts[0].(*ast.Out).Value.(*ast.BinOp)
	_, ok := bin.Left.(*ast.Var)
	assert.True(t, ok)
}
