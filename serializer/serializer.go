// Package serializer converts a compiler.Chunk to and from the
// self-describing binary format gos persists compiled programs in
// (conventionally given a ".gbc" extension).
package serializer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"gos/compiler"
	"gos/value"
)

var magic = [4]byte{0x47, 0x4F, 0x53, 0x42} // "GOSB"

const version uint16 = 1

const (
	tagUnit   = 0
	tagNumber = 1
	tagBool   = 2
	tagString = 3
)

// Error reports a malformed or incompatible bytecode file.
type Error struct {
	Message string
}

func (e Error) Error() string { return "💥 Gos bytecode error: " + e.Message }

// Dump encodes chunk into the binary layout: four-byte magic, a 2-byte
// version, the code stream length-prefixed, the typed constant pool, and
// the chunk's maxSlot — all little-endian except the jump targets already
// embedded big-endian in the code stream, which Dump passes through
// untouched. A function table is appended after maxSlot: gos programs
// can declare named functions, which the binary format this was grounded
// on predates, so the table is a length-prefixed extension a version-1
// reader that only knows the original five fields can simply stop short
// of.
func Dump(chunk *compiler.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])

	if err := binary.Write(&buf, binary.LittleEndian, version); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(chunk.Code))); err != nil {
		return nil, err
	}
	buf.Write(chunk.Code)

	if len(chunk.Constants) > 0xFFFF {
		return nil, Error{Message: fmt.Sprintf("too many constants to serialize: %d", len(chunk.Constants))}
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(chunk.Constants))); err != nil {
		return nil, err
	}
	for _, c := range chunk.Constants {
		if err := writeConstant(&buf, c); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint16(chunk.MaxSlot)); err != nil {
		return nil, err
	}

	if err := writeFunctions(&buf, chunk.Functions); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeConstant(buf *bytes.Buffer, c value.Value) error {
	switch c.Kind() {
	case value.KindUnit:
		buf.WriteByte(tagUnit)
	case value.KindNumber:
		buf.WriteByte(tagNumber)
		if err := binary.Write(buf, binary.LittleEndian, c.Num()); err != nil {
			return err
		}
	case value.KindBool:
		buf.WriteByte(tagBool)
		if c.BoolVal() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case value.KindString:
		buf.WriteByte(tagString)
		s := c.Str()
		if len(s) > 0xFFFF {
			return Error{Message: fmt.Sprintf("string constant too long to serialize: %d bytes", len(s))}
		}
		if err := binary.Write(buf, binary.LittleEndian, uint16(len(s))); err != nil {
			return err
		}
		buf.WriteString(s)
	default:
		return Error{Message: "cannot serialize constant of unknown kind"}
	}
	return nil
}

func writeFunctions(buf *bytes.Buffer, funcs map[string]compiler.FuncInfo) error {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic output for bit-exact round-trips

	if err := binary.Write(buf, binary.LittleEndian, uint16(len(names))); err != nil {
		return err
	}
	for _, name := range names {
		if len(name) > 0xFFFF {
			return Error{Message: fmt.Sprintf("function name too long to serialize: %q", name)}
		}
		if err := binary.Write(buf, binary.LittleEndian, uint16(len(name))); err != nil {
			return err
		}
		buf.WriteString(name)

		info := funcs[name]
		if err := binary.Write(buf, binary.LittleEndian, uint16(info.Addr)); err != nil {
			return err
		}
		buf.WriteByte(byte(info.ParamCount))
		if err := binary.Write(buf, binary.LittleEndian, uint16(info.MaxSlot)); err != nil {
			return err
		}
	}
	return nil
}

// Load decodes the format Dump writes, rejecting magic or version
// mismatches and truncated input.
func Load(data []byte) (*compiler.Chunk, error) {
	r := bytes.NewReader(data)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, Error{Message: "truncated file: missing magic"}
	}
	if gotMagic != magic {
		return nil, Error{Message: fmt.Sprintf("bad magic: got % x, want % x", gotMagic, magic)}
	}

	var gotVersion uint16
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return nil, Error{Message: "truncated file: missing version"}
	}
	if gotVersion != version {
		return nil, Error{Message: fmt.Sprintf("unsupported bytecode version %d (want %d)", gotVersion, version)}
	}

	var codeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return nil, Error{Message: "truncated file: missing code length"}
	}
	code := make([]byte, codeLen)
	if _, err := io.ReadFull(r, code); err != nil {
		return nil, Error{Message: "truncated file: code stream shorter than declared"}
	}

	var constCount uint16
	if err := binary.Read(r, binary.LittleEndian, &constCount); err != nil {
		return nil, Error{Message: "truncated file: missing constants count"}
	}
	constants := make([]value.Value, constCount)
	for i := range constants {
		c, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		constants[i] = c
	}

	var maxSlot uint16
	if err := binary.Read(r, binary.LittleEndian, &maxSlot); err != nil {
		return nil, Error{Message: "truncated file: missing maxSlot"}
	}

	funcs, err := readFunctions(r)
	if err != nil {
		return nil, err
	}

	return &compiler.Chunk{
		Code:      code,
		Constants: constants,
		MaxSlot:   int(maxSlot),
		Functions: funcs,
	}, nil
}

func readConstant(r *bytes.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return value.Unit, Error{Message: "truncated file: missing constant tag"}
	}
	switch tag {
	case tagUnit:
		return value.Unit, nil
	case tagNumber:
		var n float64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return value.Unit, Error{Message: "truncated file: incomplete number constant"}
		}
		return value.Number(n), nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return value.Unit, Error{Message: "truncated file: incomplete bool constant"}
		}
		return value.Bool(b != 0), nil
	case tagString:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return value.Unit, Error{Message: "truncated file: incomplete string length"}
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return value.Unit, Error{Message: "truncated file: incomplete string constant"}
		}
		return value.String(string(buf)), nil
	default:
		return value.Unit, Error{Message: fmt.Sprintf("unknown constant tag %d", tag)}
	}
}

func readFunctions(r *bytes.Reader) (map[string]compiler.FuncInfo, error) {
	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, Error{Message: "truncated file: missing function table count"}
	}
	funcs := make(map[string]compiler.FuncInfo, count)
	for i := uint16(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, Error{Message: "truncated file: missing function name length"}
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBuf); err != nil {
			return nil, Error{Message: "truncated file: incomplete function name"}
		}

		var addr uint16
		if err := binary.Read(r, binary.LittleEndian, &addr); err != nil {
			return nil, Error{Message: "truncated file: missing function address"}
		}
		paramCount, err := r.ReadByte()
		if err != nil {
			return nil, Error{Message: "truncated file: missing function param count"}
		}
		var maxSlot uint16
		if err := binary.Read(r, binary.LittleEndian, &maxSlot); err != nil {
			return nil, Error{Message: "truncated file: missing function maxSlot"}
		}

		funcs[string(nameBuf)] = compiler.FuncInfo{
			Addr:       int(addr),
			ParamCount: int(paramCount),
			MaxSlot:    int(maxSlot),
		}
	}
	return funcs, nil
}

