package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"zero is falsy", Number(0), false},
		{"nonzero is truthy", Number(1), true},
		{"negative is truthy", Number(-1), true},
		{"empty string is falsy", String(""), false},
		{"nonempty string is truthy", String("x"), true},
		{"false is falsy", Bool(false), false},
		{"true is truthy", Bool(true), true},
		{"unit is falsy", Unit, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Number(1), Number(1)))
	assert.False(t, Equal(Number(1), Number(2)))
	assert.False(t, Equal(Number(0), Bool(false)), "different kinds are never equal")
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(Unit, Unit))
}

func TestLess(t *testing.T) {
	assert.True(t, Less(Number(1), Number(2)))
	assert.False(t, Less(Number(2), Number(1)))
	assert.True(t, Less(String("a"), String("b")))
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "9", Number(9).String())
	assert.Equal(t, "null", Unit.String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "hi", String("hi").String())
}
