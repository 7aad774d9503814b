// ABOUTME: Shared helpers for command tests
// ABOUTME: Fake backend server, isolated config directory and saved sessions

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitlab-insight/insight/internal/session"
)

const (
	memberJSON = `{"user_id":7,"username":"alice","email":"alice@example.com","is_admin":false}`
	adminJSON  = `{"user_id":1,"username":"root","is_admin":true}`
)

// newBackend starts handler, points the CLI at it and isolates the config
// directory. It returns the config directory.
func newBackend(t *testing.T, handler http.Handler) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("INSIGHT_CONFIG_DIR", dir)
	t.Setenv("INSIGHT_API_URL", "")
	apiURL = server.URL
	t.Cleanup(func() { apiURL = "" })
	return dir
}

// saveSession writes a session as if a previous login had succeeded
func saveSession(t *testing.T, dir, profile string) {
	t.Helper()
	storage := session.NewFileStorage(dir)
	if err := storage.Set(session.KeyToken, "tok-saved"); err != nil {
		t.Fatal(err)
	}
	if err := storage.Set(session.KeyUser, profile); err != nil {
		t.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v interface{}) {
	json.NewDecoder(r.Body).Decode(v)
}
