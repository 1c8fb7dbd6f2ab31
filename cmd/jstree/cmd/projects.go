package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects [dir]",
	Short: "List projects saved in the database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	a, err := openProjectApp(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	names, err := a.Projects()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatProjects(names, isStdoutTTY()))
	return nil
}
