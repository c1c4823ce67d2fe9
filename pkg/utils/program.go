package utils

import (
	"fmt"
	"os"

	"hackasm/pkg/asm"
)

// LoadProgram returns the machine words for path. A .hack file is read as
// text; anything else is treated as assembly source and assembled.
func LoadProgram(path string) ([]uint16, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, err
	}

	if IsHackFile(fullPath) {
		f, err := os.Open(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read program %q: %w", path, err)
		}
		defer f.Close()
		words, err := asm.ReadHack(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return words, nil
	}

	source, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %q: %w", path, err)
	}
	words, _, err := asm.Assemble(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}
