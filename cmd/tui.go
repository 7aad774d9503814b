// ABOUTME: Launches the interactive terminal UI
// ABOUTME: Logs to a file in the config directory so the screen stays clean

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/logger"
	"github.com/gitlab-insight/insight/internal/notify"
	"github.com/gitlab-insight/insight/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Long: `Start the interactive terminal UI.

Signs in when no session is saved, then shows the mirror dashboard, background
tasks, branch creation and password change. Other views point at the matching
command. Logs are written to debug.log in the config directory.`,
	Args: cobra.NoArgs,
	Run:  execute(runTUI),
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI runs the terminal UI and returns exit code
func runTUI(ctx context.Context, w io.Writer, args []string) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	closeLog, err := logger.InitFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Warning: file logging disabled: %v\n", err)
	}
	defer closeLog()

	notices := notify.NewRecorder()
	rt, err := buildRuntime(cfg, notices)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	err = tui.Run(ctx, tui.Services{
		API:     rt.api,
		Session: rt.session,
		Router:  rt.router,
		Notices: notices,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}
