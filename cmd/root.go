// ABOUTME: Root command for the insight CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
	timeout    time.Duration
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "CLI for GitLab Insight",
	Long: `insight is a command-line client for the GitLab Insight backend.

It signs in, browses the mirrored GitLab data, manages branch rules and
background tasks, and exports reports.

Exit codes:
  0 - Success
  1 - Check failed (e.g. branch missing, backend unhealthy)
  2 - Error (connectivity, authentication, invalid input)

Environment Variables:
  INSIGHT_API_URL                Backend URL without /api (default: http://localhost:5000)
  INSIGHT_TIMEOUT                Request timeout in seconds (default: 30)
  INSIGHT_BRANCH_CREATE_TIMEOUT  Branch creation timeout in seconds (default: 240)
  INSIGHT_ALL_PROXY              ssh+socks5://user@host:port?private-key=/path
  INSIGHT_SKIP_SSL_VALIDATION    Skip TLS certificate checks (default: false)
  INSIGHT_CONFIG_DIR             Session and log directory (default: ~/.config/gitlab-insight)
  LOG_LEVEL                      debug, info, warn or error (default: warn)
  LOG_FORMAT                     text or json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend URL (overrides INSIGHT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides INSIGHT_TIMEOUT)")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("INSIGHT_API_URL"); envURL != "" {
		return envURL
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// runFunc is the testable body of a command. It returns the exit code.
type runFunc func(ctx context.Context, w io.Writer, args []string) int

// execute adapts a runFunc to cobra, cancelling on SIGINT or SIGTERM and
// exiting with the returned code.
func execute(run runFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		exitCode := run(ctx, cmd.OutOrStdout(), args)
		cancel()
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}
}
