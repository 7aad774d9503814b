// ABOUTME: Integration tests for the TUI app
// ABOUTME: Drives the root model against a fake backend and checks screen transitions

package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitlab-insight/insight/internal/api"
	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/notify"
	"github.com/gitlab-insight/insight/internal/router"
	"github.com/gitlab-insight/insight/internal/session"
	"github.com/gitlab-insight/insight/internal/tui/forms"
	"github.com/gitlab-insight/insight/internal/tui/menu"
)

const (
	memberProfile = `{"user_id":7,"username":"alice","is_admin":false}`
	adminProfile  = `{"user_id":1,"username":"root","is_admin":true}`
)

// fakeBackend answers the endpoints the TUI calls
func fakeBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/api/auth/auto-login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			writeJSON(w, map[string]interface{}{"success": false, "error": "Invalid username or password"})
			return
		}
		writeJSON(w, map[string]interface{}{
			"success": true,
			"token":   "tok-1",
			"user":    map[string]interface{}{"user_id": 7, "username": req["username"], "is_admin": false},
		})
	})
	mux.HandleFunc("/api/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": true, "user": map[string]interface{}{"username": "alice"}})
	})
	mux.HandleFunc("/api/statistics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": true, "repositories": 1234, "groups": 12, "branches": 56789, "logs": 3})
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": true, "total_records": 3, "import_days": 1})
	})
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": true, "count": 1, "tasks": []map[string]interface{}{
			{"task_id": "t-1", "task_type": "sync_repositories", "status": "running", "progress": 40},
		}})
	})
	return mux
}

func newTestApp(t *testing.T, handler http.Handler, profile string) (*App, *notify.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notices := notify.NewRecorder()
	c := client.New(server.URL+"/api", client.WithNotifier(notices), client.WithLoginPath(router.RootPath))
	a := api.New(c)

	storage := session.NewMemoryStorage()
	if profile != "" {
		storage.Set(session.KeyToken, "tok-0")
		storage.Set(session.KeyUser, profile)
	}
	store := session.New(storage, a.Auth)
	if err := store.InitFromStorage(); err != nil {
		t.Fatal(err)
	}
	c.SetSession(store)

	r := router.New(router.NewGuard(store, notices))
	c.SetNavigator(r)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := New(ctx, Services{API: a, Session: store, Router: r, Notices: notices})
	app.width = 100
	app.height = 40
	return app, notices
}

// nextRoute applies the next queued navigation to the app
func nextRoute(t *testing.T, app *App) tea.Cmd {
	t.Helper()
	select {
	case m := <-app.routes:
		_, cmd := app.Update(routeChangedMsg{match: m})
		return cmd
	case <-time.After(time.Second):
		t.Fatal("expected a navigation")
		return nil
	}
}

func TestApp_StartsAtLoginWhenLoggedOut(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), "")
	app.Init()
	nextRoute(t, app)

	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.screen)
	}
	if app.form == nil {
		t.Error("expected login form")
	}
}

func TestApp_StartsAtDashboardWhenLoggedIn(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), memberProfile)
	app.Init()
	nextRoute(t, app)

	if app.screen != ScreenDashboard {
		t.Fatalf("expected ScreenDashboard, got %d", app.screen)
	}

	app.Update(app.loadDashboard()())
	if app.dashboard == nil {
		t.Fatal("expected dashboard to be created")
	}
	view := app.View()
	for _, want := range []string{"Mirror Overview", "1,234", "56,789", "alice"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestApp_LoginFlow(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), "")
	app.Init()
	nextRoute(t, app)

	_, cmd := app.Update(forms.LoginMsg{Username: "alice", Password: "secret"})
	if !app.busy {
		t.Error("expected busy while signing in")
	}
	app.Update(cmd())
	nextRoute(t, app)

	if !app.svc.Session.IsLoggedIn() {
		t.Fatal("expected session to be logged in")
	}
	if app.screen != ScreenDashboard {
		t.Errorf("expected ScreenDashboard after login, got %d", app.screen)
	}
	if app.svc.Session.Username() != "alice" {
		t.Errorf("expected username alice, got %q", app.svc.Session.Username())
	}
}

func TestApp_LoginFailureStaysOnLogin(t *testing.T) {
	app, notices := newTestApp(t, fakeBackend(t), "")
	app.Init()
	nextRoute(t, app)

	_, cmd := app.Update(forms.LoginMsg{Username: "alice", Password: "wrong"})
	app.Update(cmd())

	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.screen)
	}
	if app.err != "Invalid username or password" {
		t.Errorf("expected server error text, got %q", app.err)
	}
	if app.form == nil {
		t.Error("expected a fresh login form")
	}
	if notices.Len() != 1 {
		t.Errorf("expected one notification, got %d", notices.Len())
	}
}

func TestApp_AdminViewRedirectsMember(t *testing.T) {
	app, notices := newTestApp(t, fakeBackend(t), memberProfile)
	app.Init()
	nextRoute(t, app)

	app.Update(menu.SelectedMsg{Path: "/todos"})
	nextRoute(t, app)

	if app.route.Target != router.DashboardPath {
		t.Errorf("expected redirect to dashboard, got %s", app.route.Target)
	}
	last, ok := notices.Last()
	if !ok || last.Message != router.MsgAdminOnly || last.Level != notify.LevelWarning {
		t.Errorf("expected admin-only warning, got %+v", last)
	}
}

func TestApp_AdminViewOpensForAdmin(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), adminProfile)
	app.Init()
	nextRoute(t, app)

	app.Update(menu.SelectedMsg{Path: "/todos"})
	nextRoute(t, app)

	if app.screen != ScreenView || app.route.Target != "/todos" {
		t.Errorf("expected todos view, got screen %d at %s", app.screen, app.route.Target)
	}
	if !strings.Contains(app.View(), "insight todos") {
		t.Error("expected command hint in view")
	}
}

func TestApp_ExpiredSessionReturnsToLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/statistics", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"Token expired"}`))
	})
	app, notices := newTestApp(t, mux, memberProfile)
	app.Init()
	nextRoute(t, app)

	app.Update(app.loadDashboard()())
	nextRoute(t, app)

	if app.svc.Session.IsLoggedIn() {
		t.Error("expected session to be cleared")
	}
	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.screen)
	}
	last, _ := notices.Last()
	if last.Message != client.MsgSessionExpired {
		t.Errorf("expected session expired notice, got %q", last.Message)
	}
}

func TestApp_LogoutKey(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), memberProfile)
	app.Init()
	nextRoute(t, app)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	nextRoute(t, app)

	if app.svc.Session.IsLoggedIn() {
		t.Error("expected logout")
	}
	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.screen)
	}
}

func TestApp_TasksScreen(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), memberProfile)
	app.Init()
	nextRoute(t, app)

	app.Update(menu.SelectedMsg{Path: TasksPath})
	nextRoute(t, app)
	if app.screen != ScreenTasks {
		t.Fatalf("expected ScreenTasks, got %d", app.screen)
	}

	app.Update(app.loadTasks()())
	if app.tasks == nil {
		t.Fatal("expected task list")
	}
	if !strings.Contains(app.View(), "sync_repositories") {
		t.Error("expected task type in view")
	}
}

func TestApp_CancelledFormReturnsToDashboard(t *testing.T) {
	app, _ := newTestApp(t, fakeBackend(t), memberProfile)
	app.Init()
	nextRoute(t, app)

	app.Update(menu.SelectedMsg{Path: SettingsPath})
	nextRoute(t, app)
	if app.screen != ScreenSettings || app.form == nil {
		t.Fatalf("expected settings form, got screen %d", app.screen)
	}

	app.Update(forms.CancelledMsg{})
	nextRoute(t, app)
	if app.screen != ScreenDashboard {
		t.Errorf("expected ScreenDashboard, got %d", app.screen)
	}
}

func TestApp_FrameAlignment(t *testing.T) {
	for _, width := range []int{80, 100, 120} {
		app, _ := newTestApp(t, fakeBackend(t), memberProfile)
		model, _ := app.Update(tea.WindowSizeMsg{Width: width, Height: 30})
		app = model.(*App)

		expected := width - 1
		if expected < minTerminalWidth {
			expected = minTerminalWidth
		}

		if w := lipgloss.Width(app.renderHeader()); w != expected {
			t.Errorf("header width at %d: expected %d, got %d", width, expected, w)
		}
		if w := lipgloss.Width(app.renderFooter()); w != expected {
			t.Errorf("footer width at %d: expected %d, got %d", width, expected, w)
		}
	}
}
