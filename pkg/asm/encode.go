package asm

import (
	"fmt"
	"strconv"
)

// C-instruction layout, most significant bit first:
//
//	1 1 1 a c1 c2 c3 c4 c5 c6 d1 d2 d3 j1 j2 j3
const (
	cPrefix    uint16 = 0xE000
	compShift         = 6
	destShift         = 3
	compMask   uint16 = 0x7F
	destMask   uint16 = 0x07
	jumpMask   uint16 = 0x07
	aInstrMask uint16 = 0x8000
)

// compCodes holds the 7-bit "a c1..c6" pattern of every comp mnemonic.
var compCodes = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"D|A": 0b0010101,

	"M":   0b1110000,
	"!M":  0b1110001,
	"-M":  0b1110011,
	"M+1": 0b1110111,
	"M-1": 0b1110010,
	"D+M": 0b1000010,
	"D-M": 0b1010011,
	"M-D": 0b1000111,
	"D&M": 0b1000000,
	"D|M": 0b1010101,
}

var destCodes = map[string]uint16{
	"null": 0b000,
	"M":    0b001,
	"D":    0b010,
	"MD":   0b011,
	"A":    0b100,
	"AM":   0b101,
	"AD":   0b110,
	"AMD":  0b111,
}

var jumpCodes = map[string]uint16{
	"null": 0b000,
	"JGT":  0b001,
	"JEQ":  0b010,
	"JGE":  0b011,
	"JLT":  0b100,
	"JNE":  0b101,
	"JLE":  0b110,
	"JMP":  0b111,
}

var (
	compNames = invert(compCodes, 28, "comp")
	destNames = invert(destCodes, 8, "dest")
	jumpNames = invert(jumpCodes, 8, "jump")
)

// invert builds the decode table and panics if the encode table is not a
// bijection of the expected size.
func invert(table map[string]uint16, want int, field string) map[uint16]string {
	if len(table) != want {
		panic(fmt.Sprintf("asm: %s table has %d entries, want %d", field, len(table), want))
	}
	out := make(map[uint16]string, len(table))
	for name, code := range table {
		if other, dup := out[code]; dup {
			panic(fmt.Sprintf("asm: %s mnemonics %q and %q share code %07b", field, name, other, code))
		}
		out[code] = name
	}
	return out
}

// Encode translates a resolved instruction into its machine word.
func Encode(inst Instruction) (uint16, error) {
	if inst.Kind == AInstruction {
		return encodeA(inst)
	}

	comp, ok := compCodes[inst.Comp]
	if !ok {
		return 0, unknownMnemonic(inst, "comp", inst.Comp)
	}
	dest, ok := destCodes[inst.Dest]
	if !ok {
		return 0, unknownMnemonic(inst, "dest", inst.Dest)
	}
	jump, ok := jumpCodes[inst.Jump]
	if !ok {
		return 0, unknownMnemonic(inst, "jump", inst.Jump)
	}

	return cPrefix | comp<<compShift | dest<<destShift | jump, nil
}

func encodeA(inst Instruction) (uint16, error) {
	if !isNumber(inst.Operand) {
		return 0, &Error{
			Kind:   KindSyntax,
			Line:   inst.Line,
			Text:   inst.Text,
			Symbol: inst.Operand,
			Msg:    fmt.Sprintf("unresolved symbol '%s'", inst.Operand),
		}
	}
	value, err := strconv.ParseUint(inst.Operand, 10, 64)
	if err != nil || value > uint64(MaxAddress) {
		return 0, &Error{
			Kind:   KindAddressRange,
			Line:   inst.Line,
			Text:   inst.Text,
			Symbol: inst.Operand,
			Msg:    fmt.Sprintf("address %s does not fit in 15 bits", inst.Operand),
		}
	}
	return uint16(value), nil
}

func unknownMnemonic(inst Instruction, field, mnemonic string) *Error {
	return &Error{
		Kind:   KindUnknownMnemonic,
		Line:   inst.Line,
		Text:   inst.Text,
		Symbol: mnemonic,
		Field:  field,
		Msg:    fmt.Sprintf("unknown %s mnemonic '%s'", field, mnemonic),
	}
}

// Decode is the inverse of Encode. Null dest and jump fields come back as
// "null".
func Decode(word uint16) (Instruction, error) {
	if word&aInstrMask == 0 {
		return Instruction{Kind: AInstruction, Operand: strconv.Itoa(int(word))}, nil
	}
	if word&cPrefix != cPrefix {
		return Instruction{}, &Error{
			Kind:   KindUnknownMnemonic,
			Symbol: FormatWord(word),
			Msg:    fmt.Sprintf("word %s is not a C-instruction", FormatWord(word)),
		}
	}

	compBits := (word >> compShift) & compMask
	comp, ok := compNames[compBits]
	if !ok {
		return Instruction{}, &Error{
			Kind:   KindUnknownMnemonic,
			Field:  "comp",
			Symbol: fmt.Sprintf("%07b", compBits),
			Msg:    fmt.Sprintf("no comp mnemonic for %07b", compBits),
		}
	}

	return Instruction{
		Kind: CInstruction,
		Comp: comp,
		Dest: destNames[(word>>destShift)&destMask],
		Jump: jumpNames[word&jumpMask],
	}, nil
}

// FormatWord renders a word as 16 binary digits.
func FormatWord(word uint16) string {
	return fmt.Sprintf("%016b", word)
}

// ParseWord is the inverse of FormatWord.
func ParseWord(s string) (uint16, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("machine word %q must have 16 digits", s)
	}
	v, err := strconv.ParseUint(s, 2, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid machine word %q: %w", s, err)
	}
	return uint16(v), nil
}
