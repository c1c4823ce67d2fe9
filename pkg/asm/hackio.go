package asm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FormatHack renders words as .hack text, one word per line.
func FormatHack(words []uint16) string {
	var sb strings.Builder
	sb.Grow(len(words) * 17)
	for _, w := range words {
		sb.WriteString(FormatWord(w))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func WriteHack(w io.Writer, words []uint16) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := bw.WriteString(FormatWord(word)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadHack parses .hack text. Blank lines are skipped.
func ReadHack(r io.Reader) ([]uint16, error) {
	var words []uint16
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		w, err := ParseWord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
