package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/docd/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.ModulePath, version.Current())
			return err
		},
	}
}
