package asm

import (
	"fmt"
	"sort"
)

const (
	// FirstVariable is the RAM address handed to the first variable.
	FirstVariable uint16 = 16
	// MaxAddress is the largest value an A-instruction can load.
	MaxAddress uint16 = 0x7FFF

	ScreenBase   uint16 = 16384
	KeyboardAddr uint16 = 24576
)

type SymbolKind int

const (
	SymbolPredefined SymbolKind = iota
	SymbolLabel
	SymbolVariable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolPredefined:
		return "predefined"
	case SymbolLabel:
		return "label"
	case SymbolVariable:
		return "variable"
	}
	return "unknown"
}

type Symbol struct {
	Name    string
	Address uint16
	Kind    SymbolKind
}

// SymbolTable maps names to addresses. Entries are never changed once added.
type SymbolTable struct {
	entries map[string]Symbol
	nextVar uint32
}

var predefined = []Symbol{
	{Name: "SP", Address: 0},
	{Name: "LCL", Address: 1},
	{Name: "ARG", Address: 2},
	{Name: "THIS", Address: 3},
	{Name: "THAT", Address: 4},
	{Name: "SCREEN", Address: ScreenBase},
	{Name: "KBD", Address: KeyboardAddr},
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		entries: make(map[string]Symbol, len(predefined)+16),
		nextVar: uint32(FirstVariable),
	}
	for _, s := range predefined {
		st.entries[s.Name] = Symbol{Name: s.Name, Address: s.Address, Kind: SymbolPredefined}
	}
	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("R%d", i)
		st.entries[name] = Symbol{Name: name, Address: uint16(i), Kind: SymbolPredefined}
	}
	return st
}

// DeclareLabel binds name to address. A name that is already bound keeps its
// first binding and a DuplicateLabel error is returned.
func (st *SymbolTable) DeclareLabel(name string, address uint16) error {
	if prev, exists := st.entries[name]; exists {
		return &Error{
			Kind:   KindDuplicateLabel,
			Symbol: name,
			Msg:    fmt.Sprintf("duplicate label '%s' (already bound to %d as %s)", name, prev.Address, prev.Kind),
		}
	}
	st.entries[name] = Symbol{Name: name, Address: address, Kind: SymbolLabel}
	return nil
}

func (st *SymbolTable) Lookup(name string) (uint16, bool) {
	s, ok := st.entries[name]
	return s.Address, ok
}

// AllocateVariable must only be called after Lookup(name) failed.
func (st *SymbolTable) AllocateVariable(name string) (uint16, error) {
	if st.nextVar > uint32(MaxAddress) {
		return 0, &Error{
			Kind:   KindResource,
			Symbol: name,
			Msg:    fmt.Sprintf("no data address left for variable '%s'", name),
		}
	}
	addr := uint16(st.nextVar)
	st.nextVar++
	st.entries[name] = Symbol{Name: name, Address: addr, Kind: SymbolVariable}
	return addr, nil
}

// Len reports the number of entries, predefined ones included.
func (st *SymbolTable) Len() int {
	return len(st.entries)
}

// Symbols returns every entry ordered by address, then name.
func (st *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, 0, len(st.entries))
	for _, s := range st.entries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Name < out[j].Name
	})
	return out
}
