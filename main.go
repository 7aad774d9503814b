// ABOUTME: Entry point for the insight CLI
// ABOUTME: Command-line and terminal client for the GitLab Insight backend

package main

import (
	"fmt"
	"os"

	"github.com/gitlab-insight/insight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
