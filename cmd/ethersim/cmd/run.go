package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ethersim/config"
	"github.com/sarchlab/ethersim/script"
	"github.com/sarchlab/ethersim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an instruction script.",
	Long: "`run --script [file]` runs the instructions of the file on a " +
		"network set up by the configuration file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScript(cmd, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("config", "config.json",
		"Configuration file, JSON or YAML")
	runCmd.Flags().String("script", "", "Instruction script")
	runCmd.Flags().StringSlice("env", []string{".env"},
		"Environment files to load before reading the configuration")
	runCmd.Flags().Bool("verbose", false, "Print every engine event")
	runCmd.Flags().Bool("monitor", false, "Start the web monitor")
	runCmd.Flags().Bool("open-browser", false,
		"Open the web monitor in a browser")
	runCmd.Flags().Bool("deterministic", false,
		"Use the longest collision backoff instead of a random one")

	_ = runCmd.MarkFlagRequired("script")
}

func runScript(cmd *cobra.Command, out io.Writer) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	scriptPath, _ := flags.GetString("script")
	envFiles, _ := flags.GetStringSlice("env")
	verbose, _ := flags.GetBool("verbose")
	monitorOn, _ := flags.GetBool("monitor")
	openBrowser, _ := flags.GetBool("open-browser")
	deterministic, _ := flags.GetBool("deterministic")

	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	insts, err := script.ParseFile(scriptPath)
	if err != nil {
		return err
	}

	b := simulation.MakeBuilder().WithConfig(cfg)
	if verbose {
		b = b.WithEventLog(os.Stderr)
	}

	if monitorOn || openBrowser {
		b = b.WithMonitoring()
	}

	if deterministic {
		b = b.WithDeterministicBackoff()
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if openBrowser {
		if err := browser.OpenURL(s.MonitorURL()); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	runErr := s.Run(insts)
	closeErr := s.Terminate()

	if runErr != nil {
		return runErr
	}

	printSummary(out, s)

	return closeErr
}

func printSummary(out io.Writer, s *simulation.Simulation) {
	n := s.GetNetwork()
	sum := s.Summary()

	fmt.Fprintf(out, "ticks: %d\n", n.Ticks())
	if n.Truncated() {
		fmt.Fprintln(out, "stopped at the tick limit")
	}

	fmt.Fprintf(out, "frames: %d (%d with errors)\n", sum.Frames, sum.BadFrames)
	fmt.Fprintf(out, "collisions: %d\n", sum.Collisions)
	fmt.Fprintf(out, "frames per host: mean %.2f, stddev %.2f, %d receiving\n",
		sum.MeanFrames, sum.StdDevFrames, sum.ReceivingHosts)

	for _, d := range s.GetStats().Devices() {
		fmt.Fprintf(out, "  %-12s sent %6d  received %6d  collisions %4d\n",
			d.Name, d.Sent, d.Received, d.Collisions)
	}
}
