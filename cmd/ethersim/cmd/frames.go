package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/network"
)

var framesCmd = &cobra.Command{
	Use:   "frames [database]",
	Short: "List the frames recorded in a database.",
	Long: "`frames [file.sqlite3]` lists the frames a run recorded with " +
		"record_db set.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		onlyBad, _ := cmd.Flags().GetBool("errors")
		limit, _ := cmd.Flags().GetInt("limit")

		r, err := datarecording.OpenReader(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		frames, total, err := network.ReadFrames(cmd.Context(), r,
			network.FrameFilter{Host: host, OnlyErrors: onlyBad, Limit: limit})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range frames {
			mark := ""
			if !e.Valid {
				mark = " ERROR"
			}

			fmt.Fprintf(out, "%d %s %s->%s %s%s\n",
				e.Tick, e.Host, e.Src, e.Dst, e.Payload, mark)
		}

		fmt.Fprintf(out, "%d of %d frames\n", len(frames), total)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(framesCmd)
	framesCmd.Flags().String("host", "", "Only frames received by this host")
	framesCmd.Flags().Bool("errors", false, "Only frames that failed detection")
	framesCmd.Flags().Int("limit", 0, "Maximum number of frames, 0 for all")
}
