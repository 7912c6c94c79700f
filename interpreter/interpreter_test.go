package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gos/lexer"
	"gos/optimizer"
	"gos/parser"
)

func runSrc(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)

	var out bytes.Buffer
	interp := NewWithIO(&out, strings.NewReader(""))
	_, err = interp.Run(optimizer.Optimize(prog))
	require.NoError(t, err)
	return out.String()
}

func TestArithmeticAndOut(t *testing.T) {
	assert.Equal(t, "14\n", runSrc(t, "out 2 + 3 * 4"))
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	toks, err := lexer.New("out 1 / 0").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)

	_, err = New().Run(optimizer.Optimize(prog))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestVariableRoundTrip(t *testing.T) {
	assert.Equal(t, "15\n", runSrc(t, "let x = 10\nx = x + 5\nout x"))
}

func TestIfExpressionResult(t *testing.T) {
	assert.Equal(t, "yes\n", runSrc(t, `let x = if 1 < 2 { "yes" } else { "no" }
out x`))
}

func TestWhileLoopAccumulates(t *testing.T) {
	out := runSrc(t, "let i = 0\nlet sum = 0\nwhile i < 5 {\nsum = sum + i\ni = i + 1\n}\nout sum")
	assert.Equal(t, "10\n", out)
}

func TestBitwiseOperatorsOverNumbers(t *testing.T) {
	out := runSrc(t, "out 6 & 3\nout 6 | 3\nout 6 ^ 3")
	assert.Equal(t, "2\n7\n5\n", out)
}

func TestDoubledBitwiseSpellingMatchesSingle(t *testing.T) {
	out := runSrc(t, "out 6 && 3\nout 6 || 3")
	assert.Equal(t, "2\n7\n", out)
}

func TestPrefixAndPostfixIncDec(t *testing.T) {
	out := runSrc(t, "let x = 5\nout x++\nout x\nout ++x\nout x")
	assert.Equal(t, "5\n6\n7\n7\n", out)
}

func TestGotoSkipsStatements(t *testing.T) {
	assert.Equal(t, "2\n", runSrc(t, "goto done\nout 1\ndone:\nout 2"))
}

func TestFunctionCallAndReturn(t *testing.T) {
	assert.Equal(t, "7\n", runSrc(t, "fun add(a, b) { return a + b }\nout add(3, 4)"))
}

func TestFunctionCannotSeeGlobalVariables(t *testing.T) {
	toks, err := lexer.New("let x = 1\nfun f() { return x }\nout f()").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)
	_, err = New().Run(optimizer.Optimize(prog))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func TestRecursiveFunctionCall(t *testing.T) {
	src := `fun fact(n) {
if n <= 1 { return 1 }
return n * fact(n - 1)
}
out fact(5)`
	assert.Equal(t, "120\n", runSrc(t, src))
}

func TestExitStopsExecutionWithValue(t *testing.T) {
	toks, err := lexer.New("out 1\nexit 42\nout 2").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)

	var out bytes.Buffer
	interp := NewWithIO(&out, strings.NewReader(""))
	result, err := interp.Run(optimizer.Optimize(prog))
	require.NoError(t, err)
	assert.Equal(t, "1\n", out.String())
	assert.Equal(t, 42.0, result.Num())
}

func TestExitInsideFunctionTerminatesProgram(t *testing.T) {
	src := `fun stop() { exit 9 }
out 1
stop()
out 2`
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)

	var out bytes.Buffer
	interp := NewWithIO(&out, strings.NewReader(""))
	result, err := interp.Run(optimizer.Optimize(prog))
	require.NoError(t, err)
	assert.Equal(t, "1\n", out.String())
	assert.Equal(t, 9.0, result.Num())
}

func TestEvalExecutesNestedSource(t *testing.T) {
	assert.Equal(t, "3\n", runSrc(t, `out eval "1 + 2"`))
}

func TestInReadsFromInputStream(t *testing.T) {
	toks, err := lexer.New("in name\nout name").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)

	var out bytes.Buffer
	interp := NewWithIO(&out, strings.NewReader("Ada\n"))
	_, err = interp.Run(optimizer.Optimize(prog))
	require.NoError(t, err)
	assert.Equal(t, "Ada\n", out.String())
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	toks, err := lexer.New("out x").Scan()
	require.NoError(t, err)
	prog, errs := parser.Make(toks).Parse()
	require.Empty(t, errs)
	_, err = New().Run(optimizer.Optimize(prog))
	require.Error(t, err)
}

func TestGotoEscapesNestedBlockToEnclosingLabel(t *testing.T) {
	src := `let i = 0
if true {
i = 1
goto after
}
i = 99
after:
out i`
	assert.Equal(t, "1\n", runSrc(t, src))
}
