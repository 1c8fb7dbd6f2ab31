package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [dir]",
	Short: "Show configuration",
	Long:  "Shows the resolved configuration, project paths and server status. Nothing is opened or written.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	a, err := projectApp(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	c := palette(isStdoutTTY())
	dbPath := a.Config.DBPath
	if dbPath == "" {
		dbPath = a.Paths.DB
	}
	proxies := "none"
	if len(a.Config.HTTP.TrustedProxies) > 0 {
		proxies = strings.Join(a.Config.HTTP.TrustedProxies, ", ")
	}
	server := fmt.Sprintf("%s✗ not running%s", c(colorYellow), c(colorReset))
	if url, ok := serverURL(a.Paths); ok {
		server = fmt.Sprintf("%s✓ %s%s", c(colorGreen), url, c(colorReset))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ jstree config%s\n", c(colorBold), c(colorReset))
	fmt.Fprintf(out, "  Project:     %s\n", a.ProjectName())
	fmt.Fprintf(out, "  Root:        %s\n", a.Analyzer.Root())
	fmt.Fprintf(out, "  Source:      %s\n", a.Config.Source)
	fmt.Fprintf(out, "  Language:    %s\n", a.Language())
	fmt.Fprintf(out, "  Extensions:  %s\n", strings.Join(a.Parser.SupportedExtensions(), " "))
	fmt.Fprintf(out, "  Workers:     %d\n", a.Config.Workers)
	fmt.Fprintf(out, "  DB:          %s\n", dbPath)
	fmt.Fprintf(out, "  Grammars:    %s\n", a.Paths.GrammarsDir)
	fmt.Fprintf(out, "  Listen:      %s\n", a.Config.Address())
	fmt.Fprintf(out, "  Proxies:     %s\n", proxies)
	fmt.Fprintf(out, "  Server:      %s\n", server)
	return nil
}
