package compiler

import (
	"encoding/binary"
	"fmt"
	"strings"

	"gos/value"
)

// Chunk is a compiled unit: the flat instruction stream, the constant
// pool it indexes into, and the high-water mark of local slots a frame
// executing it will need.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	MaxSlot   int
	// Functions maps a declared function name to its entry point (an
	// instruction offset into Code) and parameter count.
	Functions map[string]FuncInfo
}

// FuncInfo locates a compiled function inside a Chunk.
type FuncInfo struct {
	Addr       int
	ParamCount int
	MaxSlot    int
}

// Disassemble renders Code as one line per instruction, in the
// "AAAA: OPCODE operands ; annotation" format, opening with a header
// naming the chunk and the constants table and code length, and closing
// with a separator line.
func (c *Chunk) Disassemble(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", name)
	fmt.Fprintf(&b, "constants (%d):\n", len(c.Constants))
	for i, v := range c.Constants {
		fmt.Fprintf(&b, "  %04d: %s %s\n", i, v.Kind(), v.String())
	}
	fmt.Fprintf(&b, "code (%d bytes):\n", len(c.Code))
	ip := 0
	for ip < len(c.Code) {
		next, line := c.disassembleInstruction(ip)
		b.WriteString(line)
		b.WriteByte('\n')
		ip = next
	}
	fmt.Fprintf(&b, "--- end %s ---\n", name)
	return b.String()
}

func (c *Chunk) disassembleInstruction(ip int) (int, string) {
	op := Opcode(c.Code[ip])
	def, err := Get(op)
	if err != nil {
		return ip + 1, fmt.Sprintf("%04d: <unknown opcode %d>", ip, op)
	}

	operands, width := readOperands(def, c.Code[ip+1:])
	line := fmt.Sprintf("%04d: %s", ip, def.Name)
	for _, o := range operands {
		line += fmt.Sprintf(" %d", o)
	}
	if annotation := c.annotate(op, operands); annotation != "" {
		line += " ; " + annotation
	}
	return ip + 1 + width, line
}

func readOperands(def *OpCodeDefinition, bytes []byte) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(bytes[offset])
		case 2:
			operands[i] = int(binary.BigEndian.Uint16(bytes[offset:]))
		}
		offset += width
	}
	return operands, offset
}

func (c *Chunk) annotate(op Opcode, operands []int) string {
	switch op {
	case OP_LOAD_CONST:
		if operands[0] < len(c.Constants) {
			return c.Constants[operands[0]].String()
		}
	case OP_CALL:
		return fmt.Sprintf("argc=%d", operands[1])
	}
	return ""
}
