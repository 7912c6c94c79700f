package compiler

import (
	"encoding/binary"
	"fmt"
)

// Opcode is a single byte instruction tag.
type Opcode byte

const (
	// LOAD_CONST pushes ConstantsPool[operand] onto the stack.
	//   ... -> ... value
	OP_LOAD_CONST Opcode = iota
	// LOAD_VAR pushes the value held in slot[operand].
	//   ... -> ... value
	OP_LOAD_VAR
	// STORE_VAR writes the top of stack into slot[operand], without popping.
	//   ... value -> ... value
	OP_STORE_VAR
	// POP discards the top of stack.
	//   ... value ->  ...
	OP_POP

	// ADD/SUB/MUL/DIV pop two operands and push the arithmetic result.
	//   ... a b -> ... (a op b)
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV

	// EQ/NE/GT/GE/LT/LE pop two operands and push a bool.
	//   ... a b -> ... (a cmp b)
	OP_EQ
	OP_NE
	OP_GT
	OP_GE
	OP_LT
	OP_LE

	// LOG_AND/LOG_OR/LOG_XOR pop two numeric operands, truncate each to an
	// integer, and push the bitwise AND/OR/XOR of the two as a Number.
	//   ... a b -> ... (a op b)
	OP_LOG_AND
	OP_LOG_OR
	OP_LOG_XOR

	// NEG/POS/LOG_NOT pop one operand and push the transformed value.
	//   ... a -> ... a'
	OP_NEG
	OP_POS
	OP_LOG_NOT

	// INC/DEC add/subtract 1 from slot[operand] in place and push the
	// slot's new value (pre) or old value (post); the compiler chooses
	// OP_INC/OP_DEC for pre-forms and OP_INC_POST/OP_DEC_POST for post.
	//   ... -> ... value
	OP_INC
	OP_DEC
	OP_INC_POST
	OP_DEC_POST

	// OUT pops and prints a value.
	//   ... value -> ...
	OP_OUT
	// IN reads a line of input from stdin into slot[operand].
	//   ... -> ...
	OP_IN

	// JUMP unconditionally sets ip to its 2-byte big-endian operand.
	OP_JUMP
	// JUMP_IF_FALSE pops the condition; if falsy, sets ip to its operand.
	//   ... cond -> ...
	OP_JUMP_IF_FALSE

	// CALL invokes the function whose entry point is the 2-byte operand,
	// popping argCount (the 1-byte operand) arguments off the stack into
	// the callee's parameter slots and pushing a new call frame.
	//   ... arg1..argN -> ...
	OP_CALL
	// RET pops the return value, pops the current call frame, and pushes
	// the return value back for the caller.
	//   ... value -> value
	OP_RET

	// EXIT halts the VM. Its operand is 1 if a value is on the stack to
	// report as the program's result, 0 otherwise.
	OP_EXIT

	// EVAL pops a string, parses and compiles it as a nested program, runs
	// it to completion on a separate nested VM, and pushes its result.
	//   ... src -> ... value
	OP_EVAL

	// HALT stops the fetch-decode-execute loop normally (end of program).
	OP_HALT
)

// OpCodeDefinition names an opcode and the byte-width of each of its
// operands, in encoding order.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_LOAD_CONST:    {"LOAD_CONST", []int{1}},
	OP_LOAD_VAR:      {"LOAD_VAR", []int{1}},
	OP_STORE_VAR:     {"STORE_VAR", []int{1}},
	OP_POP:           {"POP", nil},
	OP_ADD:           {"ADD", nil},
	OP_SUB:           {"SUB", nil},
	OP_MUL:           {"MUL", nil},
	OP_DIV:           {"DIV", nil},
	OP_EQ:            {"EQ", nil},
	OP_NE:            {"NE", nil},
	OP_GT:            {"GT", nil},
	OP_GE:            {"GE", nil},
	OP_LT:            {"LT", nil},
	OP_LE:            {"LE", nil},
	OP_LOG_AND:       {"LOG_AND", nil},
	OP_LOG_OR:        {"LOG_OR", nil},
	OP_LOG_XOR:       {"LOG_XOR", nil},
	OP_NEG:           {"NEG", nil},
	OP_POS:           {"POS", nil},
	OP_LOG_NOT:       {"LOG_NOT", nil},
	OP_INC:           {"INC", []int{1}},
	OP_DEC:           {"DEC", []int{1}},
	OP_INC_POST:      {"INC_POST", []int{1}},
	OP_DEC_POST:      {"DEC_POST", []int{1}},
	OP_OUT:           {"OUT", nil},
	OP_IN:            {"IN", []int{1}},
	OP_JUMP:          {"JUMP", []int{2}},
	OP_JUMP_IF_FALSE: {"JUMP_IF_FALSE", []int{2}},
	OP_CALL:          {"CALL", []int{2, 1}},
	OP_RET:           {"RET", nil},
	OP_EXIT:          {"EXIT", []int{1}},
	OP_EVAL:          {"EVAL", nil},
	OP_HALT:          {"HALT", nil},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("compiler: opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes op and its operands into a byte instruction.
// Multi-byte operands are encoded big-endian; the VM relies on this for
// jump target patching, so this width/order pairing must match
// readOperands in the disassembler (chunk.go), the VM's operand decoding,
// and the serializer's framing notes.
func MakeInstruction(op Opcode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return nil
	}

	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instr := make([]byte, length)
	instr[0] = byte(op)

	offset := 1
	for i, width := range def.OperandWidths {
		operand := 0
		if i < len(operands) {
			operand = operands[i]
		}
		switch width {
		case 1:
			instr[offset] = byte(operand)
		case 2:
			binary.BigEndian.PutUint16(instr[offset:], uint16(operand))
		}
		offset += width
	}
	return instr
}
