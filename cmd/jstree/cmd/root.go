package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/jstree/internal/app"
	"github.com/corey/jstree/internal/config"
	"github.com/corey/jstree/internal/pkg/logger"
)

var (
	configPath string
	cfg        *config.Config
	log        *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jstree",
	Short: "Print JavaScript syntax trees",
	Long: "Parses " + config.DefaultSource + " with the tree-sitter JavaScript grammar and prints\n" +
		"its s-expression. Subcommands analyze whole projects.",
	Args:              cobra.NoArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runPrint,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(importersCmd)
	rootCmd.AddCommand(declarersCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return nil
}

func runPrint(cmd *cobra.Command, args []string) error {
	p, err := app.NewParser(cfg)
	if err != nil {
		return err
	}
	tree, err := app.PrintTree(cmd.OutOrStdout(), p, cfg.Source)
	if errors.Is(err, app.ErrFileNotFound) {
		return exitError{code: 2, err: err}
	}
	if err != nil {
		return err
	}
	tree.Close()
	return nil
}

// projectApp builds the App for an optional [dir] argument.
func projectApp(args []string) (*app.App, error) {
	if len(args) > 0 {
		cfg.Root = filepath.Clean(args[0])
	}
	return app.New(cfg, log)
}

// openProjectApp is projectApp with the store opened.
func openProjectApp(args []string) (*app.App, error) {
	a, err := projectApp(args)
	if err != nil {
		return nil, err
	}
	if err := a.Open(); err != nil {
		if isDBLockError(err) {
			err = errors.New(diagnoseDBLock(a.Paths))
		}
		a.Stop()
		return nil, err
	}
	return a, nil
}
