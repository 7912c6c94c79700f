// Package optimizer performs a pure AST-to-AST pass: constant folding of
// binary/unary operators over literal operands, and elimination of
// statically-resolved branches (If) and loops (While) whose condition
// folds to a constant false, without running the program.
package optimizer

import (
	"gos/ast"
	"gos/value"
)

// Optimize returns a new Program with constant expressions folded and
// dead branches removed. The input is never mutated.
func Optimize(prog *ast.Program) *ast.Program {
	return &ast.Program{Stmts: optimizeList(prog.Stmts), Line: prog.Line}
}

func optimizeList(nodes []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, optimize(n))
	}
	return out
}

func optimize(n ast.Node) ast.Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *ast.Val, *ast.Var, *ast.Label, *ast.Goto:
		return n

	case *ast.VarDecl:
		return &ast.VarDecl{Name: v.Name, Init: optimize(v.Init), Line: v.Line}

	case *ast.VarMod:
		return &ast.VarMod{Name: v.Name, Value: optimize(v.Value), Line: v.Line}

	case *ast.Out:
		return &ast.Out{Value: optimize(v.Value), Line: v.Line}

	case *ast.In:
		return n

	case *ast.Return:
		return &ast.Return{Value: optimize(v.Value), Line: v.Line}

	case *ast.Exit:
		return &ast.Exit{Value: optimize(v.Value), Line: v.Line}

	case *ast.Eval:
		return &ast.Eval{Source: optimize(v.Source), Line: v.Line}

	case *ast.Block:
		return &ast.Block{Stmts: optimizeList(v.Stmts), Line: v.Line}

	case *ast.FuncDecl:
		return &ast.FuncDecl{Name: v.Name, Params: v.Params, Body: optimize(v.Body), Line: v.Line}

	case *ast.FuncCall:
		return &ast.FuncCall{Name: v.Name, Args: optimizeList(v.Args), Line: v.Line}

	case *ast.UnaryOp:
		operand := optimize(v.Operand)
		return foldUnary(v.Op, operand, v.Line)

	case *ast.BinOp:
		left := optimize(v.Left)
		right := optimize(v.Right)
		return foldBinary(v.Op, left, right, v.Line)

	case *ast.If:
		cond := optimize(v.Cond)
		then := optimize(v.Then)
		var elseBranch ast.Node
		if v.Else != nil {
			elseBranch = optimize(v.Else)
		}
		if lit, ok := cond.(*ast.Val); ok {
			if lit.Kind == "bool" {
				if lit.Bool {
					return then
				}
				if elseBranch != nil {
					return elseBranch
				}
				return &ast.Block{Line: v.Line}
			}
		}
		return &ast.If{Cond: cond, Then: then, Else: elseBranch, Line: v.Line}

	case *ast.While:
		cond := optimize(v.Cond)
		if lit, ok := cond.(*ast.Val); ok && lit.Kind == "bool" && !lit.Bool {
			return &ast.Block{Line: v.Line}
		}
		body := optimize(v.Body)
		return &ast.While{Cond: cond, Body: body, Line: v.Line}

	default:
		return n
	}
}

func foldUnary(op ast.UnaryOpKind, operand ast.Node, line int) ast.Node {
	lit, ok := operand.(*ast.Val)
	if !ok {
		return &ast.UnaryOp{Op: op, Operand: operand, Line: line}
	}
	switch op {
	case ast.OpNeg:
		if lit.Kind == "number" {
			return &ast.Val{Kind: "number", Num: -lit.Num, Line: line}
		}
	case ast.OpPos:
		if lit.Kind == "number" {
			return &ast.Val{Kind: "number", Num: lit.Num, Line: line}
		}
	case ast.OpNot:
		return &ast.Val{Kind: "bool", Bool: !toValue(lit).Truthy(), Line: line}
	}
	// Pre/post inc/dec require an addressable variable; they never fold.
	return &ast.UnaryOp{Op: op, Operand: operand, Line: line}
}

func foldBinary(op ast.BinOpKind, left, right ast.Node, line int) ast.Node {
	lLit, lok := left.(*ast.Val)
	rLit, rok := right.(*ast.Val)
	if !lok || !rok {
		return &ast.BinOp{Op: op, Left: left, Right: right, Line: line}
	}

	switch op {
	case ast.OpAdd:
		if lLit.Kind == "number" && rLit.Kind == "number" {
			return &ast.Val{Kind: "number", Num: lLit.Num + rLit.Num, Line: line}
		}
		if lLit.Kind == "string" && rLit.Kind == "string" {
			return &ast.Val{Kind: "string", Str: lLit.Str + rLit.Str, Line: line}
		}
	case ast.OpSub:
		if lLit.Kind == "number" && rLit.Kind == "number" {
			return &ast.Val{Kind: "number", Num: lLit.Num - rLit.Num, Line: line}
		}
	case ast.OpMul:
		if lLit.Kind == "number" && rLit.Kind == "number" {
			return &ast.Val{Kind: "number", Num: lLit.Num * rLit.Num, Line: line}
		}
	case ast.OpDiv:
		// Division by zero is left unfolded: the VM/interpreter reports
		// it as a runtime error rather than the optimizer crashing.
		if lLit.Kind == "number" && rLit.Kind == "number" && rLit.Num != 0 {
			return &ast.Val{Kind: "number", Num: lLit.Num / rLit.Num, Line: line}
		}
	case ast.OpEq:
		return &ast.Val{Kind: "bool", Bool: value.Equal(toValue(lLit), toValue(rLit)), Line: line}
	case ast.OpNe:
		return &ast.Val{Kind: "bool", Bool: !value.Equal(toValue(lLit), toValue(rLit)), Line: line}
	case ast.OpGt:
		if sameOrderable(lLit, rLit) {
			return &ast.Val{Kind: "bool", Bool: value.Less(toValue(rLit), toValue(lLit)), Line: line}
		}
	case ast.OpGe:
		if sameOrderable(lLit, rLit) {
			return &ast.Val{Kind: "bool", Bool: !value.Less(toValue(lLit), toValue(rLit)), Line: line}
		}
	case ast.OpLt:
		if sameOrderable(lLit, rLit) {
			return &ast.Val{Kind: "bool", Bool: value.Less(toValue(lLit), toValue(rLit)), Line: line}
		}
	case ast.OpLe:
		if sameOrderable(lLit, rLit) {
			return &ast.Val{Kind: "bool", Bool: !value.Less(toValue(rLit), toValue(lLit)), Line: line}
		}
	case ast.OpLogAnd, ast.OpLogOr, ast.OpLogXor:
		if lLit.Kind == "number" && rLit.Kind == "number" {
			li, ri := int64(lLit.Num), int64(rLit.Num)
			switch op {
			case ast.OpLogAnd:
				return &ast.Val{Kind: "number", Num: float64(li & ri), Line: line}
			case ast.OpLogOr:
				return &ast.Val{Kind: "number", Num: float64(li | ri), Line: line}
			case ast.OpLogXor:
				return &ast.Val{Kind: "number", Num: float64(li ^ ri), Line: line}
			}
		}
	}
	return &ast.BinOp{Op: op, Left: left, Right: right, Line: line}
}

func sameOrderable(a, b *ast.Val) bool {
	return (a.Kind == "number" && b.Kind == "number") || (a.Kind == "string" && b.Kind == "string")
}

func toValue(v *ast.Val) value.Value {
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
