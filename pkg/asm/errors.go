package asm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a translation run was aborted.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota + 1
	KindUnknownMnemonic
	KindAddressRange
	KindDuplicateLabel
	KindResource
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrSyntax          = errors.New("syntax error")
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrAddressRange    = errors.New("address out of range")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrResource        = errors.New("resource exhausted")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindUnknownMnemonic:
		return ErrUnknownMnemonic
	case KindAddressRange:
		return ErrAddressRange
	case KindDuplicateLabel:
		return ErrDuplicateLabel
	case KindResource:
		return ErrResource
	}
	return nil
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned for every failed translation. Line is 1-based and zero
// when the failure is not tied to a source line.
type Error struct {
	Kind   ErrorKind
	Line   int
	Text   string
	Symbol string // offending symbol or mnemonic
	Field  string // "dest", "comp" or "jump" for mnemonic errors
	Msg    string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s on line %d: %q", msg, e.Line, e.Text)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func syntaxError(lineNo int, text, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Line: lineNo, Text: text, Msg: fmt.Sprintf(format, args...)}
}
