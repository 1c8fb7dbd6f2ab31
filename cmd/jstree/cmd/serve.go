package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve the analysis API over HTTP",
	Long:  "Analyzes the project, saves it and serves /analyze, /api/tree, /api/importers, /api/declarers and /api/health until interrupted.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		cfg.HTTP.Port = servePort
	}
	a, err := openProjectApp(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	if _, err := a.Analyze(cmd.Context()); err != nil {
		return err
	}
	if err := a.StartServer(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ jstree serving %s\n", a.WebServer.URL())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
