package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"hackasm/pkg/asm"
)

func newSymbolsCmd() *cobra.Command {
	var (
		all    bool
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "symbols <file.asm>",
		Short: "Print the labels and variables of a Hack assembly file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := assembleFile(args[0])
			if err != nil {
				return err
			}

			var syms []asm.Symbol
			for _, s := range a.Symbols().Symbols() {
				if all || s.Kind != asm.SymbolPredefined {
					syms = append(syms, s)
				}
			}

			out := cmd.OutOrStdout()
			if pretty {
				printer := pp.New()
				printer.SetOutput(out)
				printer.SetColoringEnabled(false)
				_, err := printer.Println(syms)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "ADDRESS\tKIND\tNAME")
			for _, s := range syms {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Address, s.Kind, s.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include predefined symbols")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "dump the symbol records with pp")
	return cmd
}
