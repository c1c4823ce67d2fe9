package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hackasm",
		Short: "hackasm: assembler, disassembler and runner for the Hack computer",
		Long: `hackasm translates Hack assembly (.asm) into Hack machine code (.hack).

Commands:
  assemble  Translate a .asm file into a .hack file
  disasm    Turn a .hack file back into assembly
  symbols   Print the symbol table of a .asm file
  run       Execute a .asm or .hack file on the Hack CPU emulator
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog refuses to log before the go flag set is parsed.
			return flag.CommandLine.Parse(nil)
		},
	}

	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(newAssembleCmd(), newDisasmCmd(), newSymbolsCmd(), newRunCmd())
	return rootCmd
}

func main() {
	_ = flag.Set("logtostderr", "true")

	err := newRootCmd().Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hackasm: %v\n", err)
		os.Exit(1)
	}
}
