package main

import (
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"hackasm/pkg/asm"
	"hackasm/pkg/utils"
)

func newAssembleCmd() *cobra.Command {
	var (
		outPath string
		listing bool
	)

	cmd := &cobra.Command{
		Use:   "assemble <file.asm>",
		Short: "Translate a Hack assembly file into a .hack file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return assembleRun(cmd.OutOrStdout(), args[0], outPath, listing)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output .hack path, - for stdout (default: input with .hack extension)")
	cmd.Flags().BoolVar(&listing, "listing", false, "print address, machine word and source for every instruction")
	return cmd
}

func assembleRun(stdout io.Writer, inPath, outPath string, listing bool) error {
	a, words, err := assembleFile(inPath)
	if err != nil {
		return err
	}

	if outPath == "-" {
		if err := asm.WriteHack(stdout, words); err != nil {
			return err
		}
	} else {
		if outPath == "" {
			outPath = utils.HackOutputPath(inPath)
		}
		if err := writeHackFile(outPath, words); err != nil {
			return fmt.Errorf("failed to write %q: %w", outPath, err)
		}
		fmt.Fprintf(stdout, "assembled %d words -> %s\n", len(words), outPath)
	}

	if listing {
		printListing(stdout, a.Program(), words)
	}
	return nil
}

// assembleFile reads and translates one source file.
func assembleFile(path string) (*asm.Assembler, []uint16, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input file %q: %w", path, err)
	}

	a := asm.NewAssembler()
	words, _, err := a.Assemble(string(source))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	glog.V(1).Infof("%s: %d instructions, %d symbols", path, len(words), a.Symbols().Len())
	return a, words, nil
}

func writeHackFile(path string, words []uint16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := asm.WriteHack(f, words); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printListing(w io.Writer, program []asm.Instruction, words []uint16) {
	for i, inst := range program {
		fmt.Fprintf(w, "%5d  %s  %4d: %s\n", inst.Index, asm.FormatWord(words[i]), inst.Line, inst.Text)
	}
}
