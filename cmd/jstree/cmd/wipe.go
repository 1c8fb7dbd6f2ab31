package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe [dir]",
	Short: "Delete the saved analysis of a project",
	Long:  "Removes every file, import, function and class entry stored for the project. The database file itself is kept.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Skip confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	a, err := projectApp(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	out := cmd.OutOrStdout()
	dbPath := a.Config.DBPath
	if dbPath == "" {
		dbPath = a.Paths.DB
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "⚡ no data to wipe")
		return nil
	}

	if !wipeForce {
		fmt.Fprintf(out, "⚠ This will delete all saved data for %s. Continue? [y/N] ", a.ProjectName())
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
	}

	if err := a.Open(); err != nil {
		if isDBLockError(err) {
			return errors.New(diagnoseDBLock(a.Paths))
		}
		return err
	}
	if err := a.Wipe(); err != nil {
		return err
	}
	fmt.Fprintln(out, "⚡ project data wiped")
	return nil
}
