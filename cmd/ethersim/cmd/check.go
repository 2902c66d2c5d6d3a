package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ethersim/script"
)

var checkCmd = &cobra.Command{
	Use:   "check [script]",
	Short: "Parse an instruction script without running it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		insts, err := script.ParseFile(args[0])
		if err != nil {
			return err
		}

		var last uint64
		if len(insts) > 0 {
			last = insts[len(insts)-1].Tick()
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"%d instructions, last at tick %d\n", len(insts), last)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
