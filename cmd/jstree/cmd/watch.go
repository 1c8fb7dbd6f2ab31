package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Analyze once, then keep the saved graph current",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openProjectApp(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	analysis, err := a.Analyze(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.StartWatcher(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ watching %s (%d files), Ctrl-C to stop\n", a.Analyzer.Root(), len(analysis.Boxes))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
