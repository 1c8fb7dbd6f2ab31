package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var declarersClass bool

var declarersCmd = &cobra.Command{
	Use:   "declarers <name>",
	Short: "List saved files that declare a function (Class.method for methods)",
	Long:  "Looks the name up among declared functions, or among declared classes with --class.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeclarers,
}

func init() {
	declarersCmd.Flags().BoolVar(&declarersClass, "class", false, "Look up a class name instead of a function")
}

func runDeclarers(cmd *cobra.Command, args []string) error {
	a, err := openProjectApp(nil)
	if err != nil {
		return err
	}
	defer a.Stop()

	lookup := a.Declarers
	if declarersClass {
		lookup = a.ClassDeclarers
	}
	files, err := lookup(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatPaths(files, "declares", args[0], isStdoutTTY()))
	return nil
}
