package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importersCmd = &cobra.Command{
	Use:   "importers <module>",
	Short: "List saved files that import a module",
	Long:  "Queries the graph written by analyze --save, watch or serve.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImporters,
}

func runImporters(cmd *cobra.Command, args []string) error {
	a, err := openProjectApp(nil)
	if err != nil {
		return err
	}
	defer a.Stop()

	files, err := a.Importers(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatPaths(files, "imports", args[0], isStdoutTTY()))
	return nil
}
