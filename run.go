package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"hackasm/pkg/asm"
	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

type runOptions struct {
	maxCycles  uint64
	presets    map[string]int
	dumpRAM    string
	screenshot string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <file.asm|file.hack>",
		Short: "Execute a program on the Hack CPU emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.maxCycles, "max-cycles", 10_000_000, "stop after this many instructions (0 = no limit)")
	cmd.Flags().StringToIntVar(&opts.presets, "set", nil, "preset RAM cells before running, e.g. R0=3,R1=5,100=7")
	cmd.Flags().StringVar(&opts.dumpRAM, "dump-ram", "", "print RAM[start:end] after the run, e.g. 0:3")
	cmd.Flags().StringVar(&opts.screenshot, "screenshot", "", "write the final screen to this PNG file")
	return cmd
}

func loadProgram(path string) ([]uint16, error) {
	if utils.IsHackFile(path) {
		return readHackFile(path)
	}
	_, words, err := assembleFile(path)
	return words, err
}

func runProgram(stdout io.Writer, path string, opts runOptions) error {
	words, err := loadProgram(path)
	if err != nil {
		return err
	}

	vm := cpu.NewCPU()
	if err := vm.LoadProgram(words); err != nil {
		return err
	}

	predefined := asm.NewSymbolTable()
	for name, value := range opts.presets {
		addr, err := resolveAddress(predefined, name)
		if err != nil {
			return err
		}
		vm.RAM[addr] = uint16(value)
	}

	halted := vm.Run(opts.maxCycles)
	if !halted {
		glog.Warningf("%s: stopped after %d cycles without halting", path, vm.Cycles)
	}

	fmt.Fprintf(stdout, "run complete (%s): PC=%d A=%d D=%d cycles=%d halted=%t\n",
		path, vm.PC, vm.A, vm.D, vm.Cycles, halted)

	if opts.dumpRAM != "" {
		start, end, err := parseRange(opts.dumpRAM)
		if err != nil {
			return err
		}
		for addr := start; addr < end; addr++ {
			fmt.Fprintf(stdout, "RAM[%d] = %d\n", addr, int16(vm.RAM[addr]))
		}
	}

	if opts.screenshot != "" {
		if err := vm.SaveScreenshot(opts.screenshot); err != nil {
			return fmt.Errorf("failed to write screenshot %q: %w", opts.screenshot, err)
		}
		glog.V(1).Infof("screen written to %s", opts.screenshot)
	}

	return nil
}

// resolveAddress accepts a decimal RAM address or a predefined symbol name.
func resolveAddress(st *asm.SymbolTable, name string) (uint16, error) {
	if addr, ok := st.Lookup(name); ok {
		return addr, nil
	}
	n, err := strconv.ParseUint(name, 10, 16)
	if err != nil || n >= cpu.RAMSize {
		return 0, fmt.Errorf("invalid RAM address %q", name)
	}
	return uint16(n), nil
}

func parseRange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid RAM range %q, want start:end", s)
	}
	start, err1 := strconv.Atoi(lo)
	end, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil || start < 0 || end > cpu.RAMSize || start > end {
		return 0, 0, fmt.Errorf("invalid RAM range %q", s)
	}
	return start, end, nil
}
