package utils

import (
	"path/filepath"
	"strings"
)

const (
	AsmExt  = ".asm"
	HackExt = ".hack"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// HackOutputPath swaps the extension of inPath for .hack.
func HackOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + HackExt
	}
	return strings.TrimSuffix(inPath, ext) + HackExt
}

// IsHackFile reports whether path names an already assembled program.
func IsHackFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), HackExt)
}
