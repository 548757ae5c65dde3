package main

import (
	"github.com/spf13/cobra"

	"github.com/nikitaxru/bbtemplar"
)

func newConvertCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert [FILE|-]",
		Short: "Convert BBCode markup to HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}
			return a.writeOutput(cmd, output, bbtemplar.ConvertMarkup(text))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write result to file instead of stdout")
	return cmd
}
