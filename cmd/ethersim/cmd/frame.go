package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ethersim/detection"
	"github.com/sarchlab/ethersim/frame"
)

var frameCmd = &cobra.Command{
	Use:   "frame [src-mac] [dst-mac] [hex-data]",
	Short: "Print the bits a host would send for a frame.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		codecName, _ := cmd.Flags().GetString("codec")

		codec, err := detection.ByName(codecName)
		if err != nil {
			return err
		}

		src, err := frame.ParseMAC(args[0])
		if err != nil {
			return err
		}

		dst, err := frame.ParseMAC(args[1])
		if err != nil {
			return err
		}

		data, err := frame.ParseHexData(args[2])
		if err != nil {
			return err
		}

		f, err := frame.Build(dst, src, data, codec)
		if err != nil {
			return err
		}

		bits, err := f.Bits()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), bits)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(frameCmd)
	frameCmd.Flags().String("codec", "crc32", "Error detection codec")
}
