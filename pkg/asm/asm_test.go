package asm

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// words parses binary strings into machine words.
func words(t *testing.T, bits ...string) []uint16 {
	t.Helper()
	out := make([]uint16, len(bits))
	for i, b := range bits {
		w, err := ParseWord(b)
		if err != nil {
			t.Fatalf("bad test word %q: %v", b, err)
		}
		out[i] = w
	}
	return out
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    []string
		wantErr error
	}{
		{
			"Add",
			`
			// Computes R0 = 2 + 3
			@2
			D=A
			@3
			D=D+A
			@0
			M=D
			`,
			[]string{
				"0000000000000010",
				"1110110000010000",
				"0000000000000011",
				"1110000010010000",
				"0000000000000000",
				"1110001100001000",
			},
			nil,
		},
		{
			"Forward label",
			// @LOOP  -> addr 0
			// 0;JMP  -> addr 1
			// (LOOP) -> binds to 2
			// @LOOP  -> addr 2
			`
			@LOOP
			0;JMP
			(LOOP)
			@LOOP
			`,
			[]string{
				"0000000000000010",
				"1110101010000111",
				"0000000000000010",
			},
			nil,
		},
		{
			"Variables",
			`
			@i
			M=1
			@sum
			M=0
			@i
			D=M
			`,
			[]string{
				"0000000000010000",
				"1110111111001000",
				"0000000000010001",
				"1110101010001000",
				"0000000000010000",
				"1111110000010000",
			},
			nil,
		},
		{
			"Predefined symbols",
			`
			@SCREEN
			@KBD
			@R15
			@THAT
			`,
			[]string{
				"0100000000000000",
				"0110000000000000",
				"0000000000001111",
				"0000000000000100",
			},
			nil,
		},
		{
			"Trailing label",
			`
			@END
			0;JMP
			(END)
			`,
			[]string{
				"0000000000000010",
				"1110101010000111",
			},
			nil,
		},
		{
			"Consecutive labels share an address",
			`
			(A1)
			(A2)
			@A2
			`,
			[]string{"0000000000000000"},
			nil,
		},
		{
			"Empty program",
			"\n// nothing\n\n",
			[]string{},
			nil,
		},
		{
			"CRLF line endings",
			"@1\r\nD=A\r\n",
			[]string{"0000000000000001", "1110110000010000"},
			nil,
		},
		// Errors
		{"Empty comp", "D=;JGT", nil, ErrSyntax},
		{"Unknown comp", "D=D*A", nil, ErrUnknownMnemonic},
		{"Unknown dest", "X=A", nil, ErrUnknownMnemonic},
		{"Unknown jump", "0;JUMP", nil, ErrUnknownMnemonic},
		{"Address too large", "@32768", nil, ErrAddressRange},
		{"Duplicate label", "(L)\n@1\n(L)", nil, ErrDuplicateLabel},
		{"Label shadows predefined", "(SP)\n@1", nil, ErrDuplicateLabel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Assemble(tc.code)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Assemble() error = %v, want %v", err, tc.wantErr)
				}
				if got != nil {
					t.Errorf("Assemble() returned %d words alongside an error", len(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			want := words(t, tc.want...)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Assemble() = %v, want %v", FormatHack(got), FormatHack(want))
			}
		})
	}
}

// A variable referenced before a label of the same name is declared must
// still resolve to the label.
func TestLabelsResolvedBeforeVariables(t *testing.T) {
	code := `
	@x
	M=0
	@LATER
	0;JMP
	@y
	(LATER)
	@x
	`
	a := NewAssembler()
	got, _, err := a.Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := []uint16{16, 0xEA88, 5, 0xEA87, 17, 16}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Assemble() = %v, want %v", got, want)
	}

	if addr, _ := a.Symbols().Lookup("LATER"); addr != 5 {
		t.Errorf("LATER = %d, want 5", addr)
	}
	if a.Phase() != PhaseDone {
		t.Errorf("Phase() = %s, want done", a.Phase())
	}

	prog := a.Program()
	if prog[2].Symbol != "LATER" || prog[2].Operand != "5" {
		t.Errorf("resolved record = %+v, want Symbol LATER Operand 5", prog[2])
	}
	for i, inst := range prog {
		if int(inst.Index) != i {
			t.Errorf("record %d has Index %d", i, inst.Index)
		}
	}
}

func TestAssemblerReuse(t *testing.T) {
	a := NewAssembler()
	if _, _, err := a.Assemble("(L)\n@v\n"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	got, _, err := a.Assemble("(L)\n@w\n")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got[0] != 16 {
		t.Errorf("second run allocated w at %d, want 16", got[0])
	}
}

func TestErrorContext(t *testing.T) {
	code := "@1\nD=A\n   AM=D*M  // bad\n"
	_, _, err := Assemble(code)

	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("Assemble() error = %v, want *Error", err)
	}
	if aerr.Kind != KindUnknownMnemonic || aerr.Line != 3 || aerr.Field != "comp" || aerr.Symbol != "D*M" {
		t.Errorf("error = %+v", aerr)
	}
	if aerr.Text != "AM=D*M  // bad" {
		t.Errorf("Text = %q", aerr.Text)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Error() = %q, want it to mention line 3", err.Error())
	}

	_, _, err = Assemble("@1\n(L)\n(L)\n")
	if !errors.As(err, &aerr) || aerr.Line != 3 || aerr.Symbol != "L" {
		t.Errorf("duplicate label error = %v, want line 3 symbol L", err)
	}
}

func TestResourceLimit(t *testing.T) {
	lines := make([]string, ROMSize+1)
	for i := range lines {
		lines[i] = "D=0"
	}
	_, _, err := NewAssembler().AssembleLines(lines)
	if !errors.Is(err, ErrResource) {
		t.Fatalf("AssembleLines(%d instructions) error = %v, want ErrResource", len(lines), err)
	}

	if _, _, err := NewAssembler().AssembleLines(lines[:ROMSize]); err != nil {
		t.Fatalf("AssembleLines(%d instructions) failed: %v", ROMSize, err)
	}
}

func TestHackRoundTrip(t *testing.T) {
	code := `
	@R0
	D=M
	@R1
	D=D-M
	@OUTPUT_FIRST
	D;JGT
	@R1
	D=M
	@OUTPUT_D
	0;JMP
	(OUTPUT_FIRST)
	@R0
	D=M
	(OUTPUT_D)
	@R2
	M=D
	(INFINITE_LOOP)
	@INFINITE_LOOP
	0;JMP
	`
	prog, _, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	var sb strings.Builder
	if err := WriteHack(&sb, prog); err != nil {
		t.Fatalf("WriteHack failed: %v", err)
	}
	if sb.String() != FormatHack(prog) {
		t.Errorf("WriteHack and FormatHack disagree")
	}

	back, err := ReadHack(strings.NewReader(sb.String() + "\n\n"))
	if err != nil {
		t.Fatalf("ReadHack failed: %v", err)
	}
	if !reflect.DeepEqual(back, prog) {
		t.Errorf("ReadHack = %v, want %v", back, prog)
	}

	src, err := Disassemble(prog)
	if err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	again, _, err := Assemble(strings.Join(src, "\n"))
	if err != nil {
		t.Fatalf("reassembling disassembly failed: %v", err)
	}
	if !reflect.DeepEqual(again, prog) {
		t.Errorf("reassembled program differs:\n%s\nwant\n%s", FormatHack(again), FormatHack(prog))
	}
	if src[1] != "D=M" || src[5] != "D;JGT" || src[9] != "0;JMP" {
		t.Errorf("unexpected disassembly: %q", src)
	}
}

func TestReadHackErrors(t *testing.T) {
	if _, err := ReadHack(strings.NewReader("0000000000000001\n01\n")); err == nil ||
		!strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadHack error = %v, want line 2 error", err)
	}
}
