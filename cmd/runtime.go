// ABOUTME: Wires configuration, logging, the request pipeline, session and router for a command
// ABOUTME: Also holds the output helpers shared by every command

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gitlab-insight/insight/internal/api"
	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/config"
	"github.com/gitlab-insight/insight/internal/logger"
	"github.com/gitlab-insight/insight/internal/notify"
	"github.com/gitlab-insight/insight/internal/router"
	"github.com/gitlab-insight/insight/internal/session"
)

// now is the clock used for relative times
var now = time.Now

// runtime is everything a command needs to talk to the backend
type runtime struct {
	cfg      *config.Config
	client   *client.Client
	api      *api.API
	session  *session.Store
	router   *router.Router
	notifier notify.Notifier
}

// newRuntime loads configuration and builds the client stack. Notifications
// are written to w so each failed call is reported once, in line with the
// command's own output.
func newRuntime(w io.Writer) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return buildRuntime(cfg, notify.NewWriter(w))
}

// loadConfig reads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(GetAPIURL(), "/")
	if timeout > 0 {
		cfg.Timeout = timeout
		// branch creation never gets less time than an ordinary request
		if cfg.BranchCreationTimeout < timeout {
			cfg.BranchCreationTimeout = timeout
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRuntime assembles the stack from a loaded config
func buildRuntime(cfg *config.Config, notifier notify.Notifier) (*runtime, error) {
	transport, err := client.NewTransport(cfg.AllProxy, cfg.SkipSSLValidation)
	if err != nil {
		return nil, err
	}

	c := client.New(cfg.BaseURL(),
		client.WithTimeout(cfg.Timeout),
		client.WithNotifier(notifier),
		client.WithTransport(transport),
		client.WithLoginPath(router.RootPath),
	)
	a := api.New(c, api.WithBranchCreationTimeout(cfg.BranchCreationTimeout))

	store := session.New(session.NewFileStorage(cfg.ConfigDir), a.Auth)
	if err := store.InitFromStorage(); err != nil {
		return nil, err
	}
	c.SetSession(store)

	r := router.New(router.NewGuard(store, notifier))
	c.SetNavigator(r)

	return &runtime{
		cfg:      cfg,
		client:   c,
		api:      a,
		session:  store,
		router:   r,
		notifier: notifier,
	}, nil
}

// enter navigates to the view a command belongs to. It returns false when
// the route guard turns the navigation away.
func (rt *runtime) enter(w io.Writer, path string) bool {
	want := router.Resolve(path)
	got := rt.router.Navigate(path)
	if got.Target == want.Target {
		return true
	}
	if !rt.session.IsLoggedIn() {
		fmt.Fprintln(w, "Error: not logged in. Run 'insight login' first.")
	}
	return false
}

// setup builds the runtime and enters path. It returns a non-zero exit code
// when the command cannot proceed.
func setup(w io.Writer, path string) (*runtime, int) {
	rt, err := newRuntime(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, 2
	}
	if path != "" && !rt.enter(w, path) {
		return nil, 2
	}
	return rt, 0
}

// reportError prints err unless the pipeline already notified the user.
func reportError(w io.Writer, err error) int {
	if _, notified := client.Message(err); !notified {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 2
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintln(w, string(data))
	return 0
}

// orDash returns s, or "-" when empty
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
