// ABOUTME: Health command for the insight CLI
// ABOUTME: Checks backend connectivity and service status

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/models"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the GitLab Insight backend and verify service status.`,
	Args:  cobra.NoArgs,
	Run:   execute(runHealth),
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "")
	if code != 0 {
		return code
	}

	resp, err := rt.api.System.Health(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(rt.cfg.APIURL, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(rt.cfg.APIURL, resp))
	}

	if resp.Status != "healthy" {
		return 1
	}
	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *models.HealthResponse) string {
	return fmt.Sprintf(`Backend: %s
Status:  %s`, url, orDash(resp.Status))
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *models.HealthResponse) string {
	output := map[string]interface{}{
		"backend": url,
		"status":  resp.Status,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
