package asm

import "fmt"

// Render prints an instruction in canonical source form, leaving out null
// dest and jump fields.
func (inst Instruction) Render() string {
	if inst.Kind == AInstruction {
		return "@" + inst.Operand
	}
	s := inst.Comp
	if inst.Dest != "" && inst.Dest != nullMnemonic {
		s = inst.Dest + "=" + s
	}
	if inst.Jump != "" && inst.Jump != nullMnemonic {
		s += ";" + inst.Jump
	}
	return s
}

// Disassemble decodes machine words back into source lines.
func Disassemble(words []uint16) ([]string, error) {
	out := make([]string, 0, len(words))
	for addr, w := range words {
		inst, err := Decode(w)
		if err != nil {
			return nil, fmt.Errorf("address %d: %w", addr, err)
		}
		out = append(out, inst.Render())
	}
	return out, nil
}
