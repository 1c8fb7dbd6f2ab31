package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/jstree/internal/adapters/web"
)

var healthCmd = &cobra.Command{
	Use:   "health [dir]",
	Short: "Check a running jstree serve",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := projectApp(args)
	if err != nil {
		return err
	}
	defer a.Stop()

	out := cmd.OutOrStdout()
	url, ok := serverURL(a.Paths)
	if !ok {
		fmt.Fprintln(out, "⚡ jstree server is not running")
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url + "/api/health")
	if err != nil {
		return fmt.Errorf("server at %s not responding: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server at %s: %s", url, resp.Status)
	}

	var health web.HealthResult
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	fmt.Fprint(out, formatHealth(url, &health, isStdoutTTY()))
	return nil
}
