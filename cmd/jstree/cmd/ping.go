package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/jstree/internal/app"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Print a fixed greeting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), app.Greeting())
		return nil
	},
}
