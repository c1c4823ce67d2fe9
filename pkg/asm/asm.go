package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ROMSize is the number of instruction words the target can address.
const ROMSize = 32768

// Phase is the stage an Assembler has reached. The phases always run in
// order: every label is known before the first variable is allocated.
type Phase int

const (
	PhaseCollecting Phase = iota
	PhaseResolving
	PhaseEncoding
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "collecting"
	case PhaseResolving:
		return "resolving"
	case PhaseEncoding:
		return "encoding"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Assembler owns the symbol table and instruction list of one translation
// run. It is not safe for concurrent use.
type Assembler struct {
	symbols *SymbolTable
	program []Instruction
	phase   Phase
}

func NewAssembler() *Assembler {
	return &Assembler{
		symbols: NewSymbolTable(),
	}
}

// Assemble translates a whole program. It returns the machine words in
// program order and a map from instruction address to 1-based source line.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	return a.AssembleLines(strings.Split(code, "\n"))
}

// AssembleLines is Assemble over pre-split source lines. Each call starts
// from a fresh symbol table.
func (a *Assembler) AssembleLines(lines []string) ([]uint16, map[uint16]int, error) {
	a.symbols = NewSymbolTable()
	a.program = nil
	a.phase = PhaseCollecting

	if err := a.collect(lines); err != nil {
		return nil, nil, err
	}

	a.phase = PhaseResolving
	if err := a.resolve(); err != nil {
		return nil, nil, err
	}

	a.phase = PhaseEncoding
	words, sourceMap, err := a.encode()
	if err != nil {
		return nil, nil, err
	}

	a.phase = PhaseDone
	return words, sourceMap, nil
}

func (a *Assembler) Phase() Phase {
	return a.phase
}

func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}

// Program returns the instruction list. After a successful run every
// A-instruction operand is numeric.
func (a *Assembler) Program() []Instruction {
	return a.program
}

func (a *Assembler) collect(lines []string) error {
	for i, raw := range lines {
		lineNo := i + 1
		stmt, err := ClassifyLine(raw, lineNo)
		if err != nil {
			return err
		}

		switch stmt.Kind {
		case StmtLabel:
			if err := a.symbols.DeclareLabel(stmt.Label, uint16(len(a.program))); err != nil {
				return withLine(err, lineNo, raw)
			}

		case StmtA, StmtC:
			if len(a.program) >= ROMSize {
				return &Error{
					Kind: KindResource,
					Line: lineNo,
					Text: strings.TrimSpace(raw),
					Msg:  fmt.Sprintf("program exceeds %d instructions", ROMSize),
				}
			}
			inst := stmt.Inst
			inst.Index = uint16(len(a.program))
			a.program = append(a.program, inst)
		}
	}
	return nil
}

func (a *Assembler) resolve() error {
	for i := range a.program {
		inst := &a.program[i]
		if inst.Kind != AInstruction || isNumber(inst.Operand) {
			continue
		}

		addr, ok := a.symbols.Lookup(inst.Operand)
		if !ok {
			var err error
			addr, err = a.symbols.AllocateVariable(inst.Operand)
			if err != nil {
				return withLine(err, inst.Line, inst.Text)
			}
		}
		inst.Symbol = inst.Operand
		inst.Operand = strconv.Itoa(int(addr))
	}
	return nil
}

func (a *Assembler) encode() ([]uint16, map[uint16]int, error) {
	words := make([]uint16, 0, len(a.program))
	sourceMap := make(map[uint16]int, len(a.program))

	for _, inst := range a.program {
		word, err := Encode(inst)
		if err != nil {
			return nil, nil, err
		}
		sourceMap[inst.Index] = inst.Line
		words = append(words, word)
	}

	return words, sourceMap, nil
}

func withLine(err error, lineNo int, text string) error {
	var aerr *Error
	if errors.As(err, &aerr) && aerr.Line == 0 {
		aerr.Line = lineNo
		aerr.Text = strings.TrimSpace(text)
	}
	return err
}
