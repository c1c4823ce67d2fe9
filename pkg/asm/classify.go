package asm

import (
	"strings"
	"unicode"
)

type StatementKind int

const (
	StmtNone StatementKind = iota
	StmtLabel
	StmtA
	StmtC
)

type InstructionKind int

const (
	AInstruction InstructionKind = iota
	CInstruction
)

// Instruction is one A- or C-instruction in program order. Index is the
// instruction's ROM address; Line and Text point back into the source.
type Instruction struct {
	Kind    InstructionKind
	Operand string // A-instruction only
	Symbol  string // symbolic operand as written, set once resolved
	Dest    string
	Comp    string
	Jump    string

	Index uint16
	Line  int
	Text  string
}

// Statement is the classified form of one source line.
type Statement struct {
	Kind  StatementKind
	Label string
	Inst  Instruction
}

const nullMnemonic = "null"

// ClassifyLine turns one raw source line into a Statement. Comments and
// whitespace are dropped; blank lines yield StmtNone. The returned
// instruction has no Index yet.
func ClassifyLine(raw string, lineNo int) (Statement, error) {
	text := strings.TrimSpace(raw)
	line := stripSpace(stripComments(raw))
	if line == "" {
		return Statement{Kind: StmtNone}, nil
	}

	switch line[0] {
	case '(':
		if len(line) < 2 || line[len(line)-1] != ')' {
			return Statement{}, syntaxError(lineNo, text, "unterminated label declaration")
		}
		name := line[1 : len(line)-1]
		if name == "" {
			return Statement{}, syntaxError(lineNo, text, "empty label name")
		}
		if !isSymbol(name) {
			return Statement{}, syntaxError(lineNo, text, "invalid label '%s'", name)
		}
		return Statement{Kind: StmtLabel, Label: name}, nil

	case '@':
		operand := line[1:]
		if operand == "" {
			return Statement{}, syntaxError(lineNo, text, "missing A-instruction operand")
		}
		if isDigit(rune(operand[0])) {
			if !isNumber(operand) {
				return Statement{}, syntaxError(lineNo, text, "invalid numeric operand '%s'", operand)
			}
		} else if !isSymbol(operand) {
			return Statement{}, syntaxError(lineNo, text, "invalid symbol '%s'", operand)
		}
		return Statement{
			Kind: StmtA,
			Inst: Instruction{Kind: AInstruction, Operand: operand, Line: lineNo, Text: text},
		}, nil
	}

	if strings.ContainsAny(line, "()@") {
		return Statement{}, syntaxError(lineNo, text, "unrecognised statement")
	}

	dest, rest := nullMnemonic, line
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		dest, rest = rest[:eq], rest[eq+1:]
		if dest == "" || strings.ContainsRune(dest, ';') {
			return Statement{}, syntaxError(lineNo, text, "missing dest before '='")
		}
	}

	jump := nullMnemonic
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		rest, jump = rest[:semi], rest[semi+1:]
		if jump == "" {
			return Statement{}, syntaxError(lineNo, text, "missing jump after ';'")
		}
	}

	if rest == "" {
		return Statement{}, syntaxError(lineNo, text, "missing comp")
	}
	if strings.ContainsAny(rest, "=;") || strings.ContainsAny(jump, "=;") {
		return Statement{}, syntaxError(lineNo, text, "malformed C-instruction")
	}

	return Statement{
		Kind: StmtC,
		Inst: Instruction{Kind: CInstruction, Dest: dest, Comp: rest, Jump: jump, Line: lineNo, Text: text},
	}, nil
}

func stripComments(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}

func stripSpace(line string) string {
	return strings.Join(strings.Fields(line), "")
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

// isSymbol accepts letters, digits, '_', '.', '$' and ':', not starting with a digit.
func isSymbol(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 && isDigit(r) {
			return false
		}
		if unicode.IsLetter(r) || isDigit(r) {
			continue
		}
		switch r {
		case '_', '.', '$', ':':
		default:
			return false
		}
	}

	return true
}
