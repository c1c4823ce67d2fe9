package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hackasm/pkg/asm"
)

func newDisasmCmd() *cobra.Command {
	var addresses bool

	cmd := &cobra.Command{
		Use:   "disasm <file.hack>",
		Short: "Turn Hack machine code back into assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := readHackFile(args[0])
			if err != nil {
				return err
			}
			lines, err := asm.Disassemble(words)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			for addr, line := range lines {
				if addresses {
					fmt.Fprintf(out, "%5d  %s\n", addr, line)
				} else {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&addresses, "addresses", "a", false, "prefix every line with its ROM address")
	return cmd
}

func readHackFile(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %q: %w", path, err)
	}
	defer f.Close()

	words, err := asm.ReadHack(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}
