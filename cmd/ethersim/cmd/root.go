// Package cmd provides the command-line interface of ethersim.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ethersim",
	Short: "ethersim simulates hosts, hubs and switches bit by bit.",
	Long: `ethersim simulates hosts, hubs and switches bit by bit. It runs ` +
		`instruction scripts against a configured network and writes one ` +
		`log per device.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
