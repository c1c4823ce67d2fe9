package cpu

import (
	"fmt"
)

const (
	ROMSize = 32768
	RAMSize = 32768

	ScreenBase   uint16 = 16384
	ScreenWords         = 8192
	KeyboardAddr uint16 = 24576
)

// Hack keyboard codes for keys without a printable character.
const (
	KeyNewline   uint16 = 128
	KeyBackspace uint16 = 129
	KeyLeft      uint16 = 130
	KeyUp        uint16 = 131
	KeyRight     uint16 = 132
	KeyDown      uint16 = 133
	KeyHome      uint16 = 134
	KeyEnd       uint16 = 135
	KeyPageUp    uint16 = 136
	KeyPageDown  uint16 = 137
	KeyInsert    uint16 = 138
	KeyDelete    uint16 = 139
	KeyEsc       uint16 = 140
	KeyF1        uint16 = 141
	KeyF12       uint16 = 152
)

// C-instruction fields.
const (
	cBit     uint16 = 0x8000
	aBit     uint16 = 0x1000
	destA    uint16 = 0x0020
	destD    uint16 = 0x0010
	destM    uint16 = 0x0008
	jumpLT   uint16 = 0x0004
	jumpEQ   uint16 = 0x0002
	jumpGT   uint16 = 0x0001
	destMask uint16 = destA | destD | destM
)

// CPU is the Hack computer: a 32K-word instruction ROM, a 32K-word data RAM
// with the screen and keyboard mapped into it, and the A, D and PC registers.
type CPU struct {
	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	A  uint16
	D  uint16
	PC uint16

	// ProgramLen is the number of loaded instructions. Leaving that range
	// halts the CPU.
	ProgramLen int

	Halted bool
	Cycles uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// LoadProgram copies words into ROM and resets the registers. RAM is kept.
func (c *CPU) LoadProgram(words []uint16) error {
	if len(words) > ROMSize {
		return fmt.Errorf("program too large for ROM: %d words > %d words", len(words), ROMSize)
	}
	c.ROM = [ROMSize]uint16{}
	copy(c.ROM[:], words)
	c.ProgramLen = len(words)
	c.Reset()
	return nil
}

// Reset is the Hack reset line: registers cleared, memory untouched.
func (c *CPU) Reset() {
	c.A = 0
	c.D = 0
	c.PC = 0
	c.Halted = false
	c.Cycles = 0
}

// SetKey publishes the currently pressed key; 0 means no key.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

func (c *CPU) ReadMem(addr uint16) uint16 {
	return c.RAM[addr&0x7FFF]
}

// WriteMem stores val at addr. The keyboard register is read-only.
func (c *CPU) WriteMem(addr uint16, val uint16) {
	addr &= 0x7FFF
	if addr == KeyboardAddr {
		return
	}
	c.RAM[addr] = val
}

// ALU computes the Hack ALU function selected by the six control bits
// zx nx zy ny f no (zx is bit 5).
func ALU(x, y uint16, control uint16) uint16 {
	if control&0x20 != 0 {
		x = 0
	}
	if control&0x10 != 0 {
		x = ^x
	}
	if control&0x08 != 0 {
		y = 0
	}
	if control&0x04 != 0 {
		y = ^y
	}
	var out uint16
	if control&0x02 != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if control&0x01 != 0 {
		out = ^out
	}
	return out
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= c.ProgramLen {
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	c.Cycles++

	if instr&cBit == 0 {
		c.A = instr
		c.PC++
		return
	}

	addr := c.A
	y := addr
	if instr&aBit != 0 {
		y = c.ReadMem(addr)
	}
	out := ALU(c.D, y, (instr>>6)&0x3F)

	if instr&destM != 0 {
		c.WriteMem(addr, out)
	}
	if instr&destD != 0 {
		c.D = out
	}
	if instr&destA != 0 {
		c.A = out
	}

	neg := int16(out) < 0
	zero := out == 0
	jump := (instr&jumpLT != 0 && neg) ||
		(instr&jumpEQ != 0 && zero) ||
		(instr&jumpGT != 0 && !neg && !zero)

	if !jump {
		c.PC++
		return
	}

	// The jump target is the A register as it was when the instruction
	// started.
	if instr&destMask == 0 && c.isTerminalLoop(addr) {
		c.Halted = true
	}
	c.PC = addr
}

// isTerminalLoop reports whether jumping to target from PC re-enters a loop
// that cannot change state: a jump to itself, or "(L) @L 0;JMP".
func (c *CPU) isTerminalLoop(target uint16) bool {
	if target == c.PC {
		return true
	}
	return target+1 == c.PC && c.ROM[target] == target
}

// Run steps until the CPU halts or maxCycles instructions have executed in
// total. maxCycles of zero means no limit. It reports whether the CPU halted.
func (c *CPU) Run(maxCycles uint64) bool {
	for !c.Halted {
		if maxCycles > 0 && c.Cycles >= maxCycles {
			return false
		}
		c.Step()
	}
	return true
}

func (c *CPU) RunUntilDone() {
	for !c.Halted {
		c.Step()
	}
}
