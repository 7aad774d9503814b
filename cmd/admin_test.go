// ABOUTME: Tests for the administrator commands
// ABOUTME: Verifies the admin route guard and the todo listing

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gitlab-insight/insight/internal/router"
)

func todosBackend(t *testing.T, calls *int32) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gitlab/todos", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if got := r.URL.Query().Get("state"); got != "pending" {
			t.Errorf("expected state=pending, got %q", got)
		}
		writeJSON(w, map[string]interface{}{
			"success": true,
			"total":   1,
			"todos": []map[string]interface{}{{
				"id":          11,
				"action_name": "assigned",
				"title":       "Fix login redirect",
				"author":      map[string]interface{}{"username": "bob"},
				"project":     map[string]interface{}{"name_with_namespace": "platform / api"},
			}},
		})
	})
	return mux
}

func TestTodos_MemberIsTurnedAway(t *testing.T) {
	var calls int32
	dir := newBackend(t, todosBackend(t, &calls))
	saveSession(t, dir, memberJSON)

	var buf bytes.Buffer
	if code := runTodos(context.Background(), &buf, nil); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(buf.String(), router.MsgAdminOnly) {
		t.Errorf("expected admin-only warning, got %q", buf.String())
	}
	if calls != 0 {
		t.Errorf("expected no backend call, got %d", calls)
	}
}

func TestTodos_AdminListsTodos(t *testing.T) {
	var calls int32
	dir := newBackend(t, todosBackend(t, &calls))
	saveSession(t, dir, adminJSON)

	var buf bytes.Buffer
	if code := runTodos(context.Background(), &buf, nil); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	for _, want := range []string{"Fix login redirect", "platform / api", "bob", "1 todos"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output %q", want, buf.String())
		}
	}
}
