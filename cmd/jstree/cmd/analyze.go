package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/jstree/internal/ports"
)

var (
	analyzeJSON   bool
	analyzeSave   bool
	analyzeCached bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Summarize functions, classes and imports of every JavaScript file",
	Long:  "Walks the project (default: configured root), parses each .js/.mjs/.cjs/.jsx file and prints what it declares and imports.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the analysis to .jstree/jstree.db")
	analyzeCmd.Flags().BoolVar(&analyzeCached, "cached", false, "Print the last saved analysis without parsing")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeSave && analyzeCached {
		return errors.New("--save and --cached cannot be combined")
	}
	open := projectApp
	if analyzeSave || analyzeCached {
		open = openProjectApp
	}
	a, err := open(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	var analysis *ports.ProjectAnalysis
	if analyzeCached {
		analysis, err = a.Cached()
		if err == nil && analysis == nil {
			err = fmt.Errorf("no saved analysis for %s; run jstree analyze --save first", a.ProjectName())
		}
	} else {
		analysis, err = a.Analyze(cmd.Context())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}
	fmt.Fprint(out, formatAnalysis(analysis, isStdoutTTY()))
	return nil
}
