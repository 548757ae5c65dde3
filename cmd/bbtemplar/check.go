package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikitaxru/bbtemplar"
)

func newCheckCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check [TEMPLATE|-]",
		Short: "List placeholders, conditions and loops used by a template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}
			info := bbtemplar.Parse(src).Inspect()
			printInfo(cmd.OutOrStdout(), info)
			for _, u := range info.Unmatched {
				a.logger.Warn("непарный маркер блока", "marker", u)
			}
			if strict && len(info.Unmatched) > 0 {
				return fmt.Errorf("непарных маркеров: %d", len(info.Unmatched))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the template has unmatched block markers")
	return cmd
}

func printInfo(w io.Writer, info bbtemplar.Info) {
	line := func(title string, items []string) {
		if len(items) == 0 {
			fmt.Fprintf(w, "%s: -\n", title)
			return
		}
		fmt.Fprintf(w, "%s: %s\n", title, strings.Join(items, ", "))
	}
	line("variables", info.Variables)
	line("conditions", info.Conditions)
	line("loops", info.Loops)
	line("unmatched", info.Unmatched)
}
