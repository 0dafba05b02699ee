package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/bornir/convert"
)

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops [format]",
		Short: "List the source operators each format can translate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := convert.Formats()
			if len(args) == 1 {
				formats = args[:1]
			}
			out := cmd.OutOrStdout()
			for _, format := range formats {
				ops := convert.SupportedOps(format)
				if len(ops) == 0 {
					return fmt.Errorf("unknown format %q", format)
				}
				for _, op := range ops {
					fmt.Fprintf(out, "%s\t%s\n", format, op)
				}
			}
			return nil
		},
	}
}
