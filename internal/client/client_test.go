// ABOUTME: Tests for the request pipeline
// ABOUTME: Uses httptest to mock backend responses and a recorder to count notifications

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gitlab-insight/insight/internal/notify"
)

type fakeSession struct {
	mu      sync.Mutex
	token   string
	logouts int
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.logouts++
}

type fakeNavigator struct {
	pushed []string
}

func (n *fakeNavigator) Push(path string) {
	n.pushed = append(n.pushed, path)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *notify.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec := notify.NewRecorder()
	return New(server.URL+"/api", WithNotifier(rec)), rec
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tasks" {
			t.Errorf("expected path /api/tasks, got %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	c.SetSession(&fakeSession{token: "abc123"})

	if _, err := c.Do(context.Background(), Request{Path: "/tasks"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var sawHeader bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`{"status":"healthy"}`))
	})
	c.SetSession(&fakeSession{})

	if _, err := c.Do(context.Background(), Request{Path: "/health"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawHeader {
		t.Error("expected no Authorization header without a token")
	}
}

func TestDo_SetsRequestIDAndQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		if got := r.URL.Query().Get("page_size"); got != "20" {
			t.Errorf("expected page_size=20, got %q", got)
		}
		w.Write([]byte(`{}`))
	})

	req := Request{Path: "/gitlab/repositories", Query: map[string][]string{"page_size": {"20"}}}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_EncodesJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["pattern"] != "feature/*" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Write([]byte(`{"success":true}`))
	})

	req := Request{Method: http.MethodPost, Path: "/branch-rules/test-pattern", Body: map[string]string{"pattern": "feature/*"}}
	if _, err := c.Do(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_BusinessFailureMessagePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"error wins", `{"success":false,"error":"E","message":"M"}`, "E"},
		{"message fallback", `{"success":false,"message":"M"}`, "M"},
		{"generic fallback", `{"success":false}`, MsgRequestFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			_, err := c.Do(context.Background(), Request{Path: "/branch-rules"})
			if !errors.Is(err, ErrBusiness) {
				t.Fatalf("expected business error, got %v", err)
			}
			msg, _ := Message(err)
			if msg != tc.expected {
				t.Errorf("expected message %q, got %q", tc.expected, msg)
			}
			if rec.Len() != 1 {
				t.Errorf("expected exactly one notification, got %d", rec.Len())
			}
			if last, _ := rec.Last(); last.Message != tc.expected {
				t.Errorf("expected notification %q, got %q", tc.expected, last.Message)
			}
		})
	}
}

func TestDo_SuccessTrueIsNotAFailure(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	})

	if _, err := c.Do(context.Background(), Request{Path: "/init-db"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Len() != 0 {
		t.Errorf("expected no notification, got %d", rec.Len())
	}
}

func TestDo_UnauthorizedClearsSessionAndRedirects(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	})
	session := &fakeSession{token: "stale"}
	nav := &fakeNavigator{}
	c.SetSession(session)
	c.SetNavigator(nav)

	_, err := c.Do(context.Background(), Request{Path: "/auth/me"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if session.logouts != 1 || session.Token() != "" {
		t.Errorf("expected session cleared once, logouts=%d token=%q", session.logouts, session.Token())
	}
	if len(nav.pushed) != 1 || nav.pushed[0] != "/" {
		t.Errorf("expected redirect to /, got %v", nav.pushed)
	}
	if last, _ := rec.Last(); last.Message != MsgSessionExpired {
		t.Errorf("expected session expired notification, got %q", last.Message)
	}
	var ce *Error
	if errors.As(err, &ce) && ce.Detail != "token expired" {
		t.Errorf("expected server detail to be kept, got %q", ce.Detail)
	}
	if rec.Len() != 1 {
		t.Errorf("expected one notification, got %d", rec.Len())
	}
}

func TestDo_CustomLoginPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	nav := &fakeNavigator{}
	c := New(server.URL, WithLoginPath("/login"))
	c.SetNavigator(nav)

	c.Do(context.Background(), Request{Path: "/auth/me"})
	if len(nav.pushed) != 1 || nav.pushed[0] != "/login" {
		t.Errorf("expected redirect to /login, got %v", nav.pushed)
	}
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		expected string
	}{
		{"forbidden", http.StatusForbidden, `{"error":"nope"}`, ErrForbidden, MsgForbidden},
		{"not found", http.StatusNotFound, ``, ErrNotFound, MsgNotFound},
		{"method not allowed", http.StatusMethodNotAllowed, ``, ErrMethodNotAllowed, MsgMethodNotAllowed},
		{"server with error", http.StatusInternalServerError, `{"error":"db down"}`, ErrServer, "db down"},
		{"server generic", http.StatusInternalServerError, `<html>`, ErrServer, MsgServerError},
		{"other with error", http.StatusBadRequest, `{"error":"bad pattern"}`, ErrHTTP, "bad pattern"},
		{"other with message", http.StatusConflict, `{"message":"exists"}`, ErrHTTP, "exists"},
		{"other generic", http.StatusBadGateway, ``, ErrHTTP, MsgRequestFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			session := &fakeSession{token: "keep"}
			nav := &fakeNavigator{}
			c.SetSession(session)
			c.SetNavigator(nav)

			_, err := c.Do(context.Background(), Request{Path: "/x"})
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			var ce *Error
			if !errors.As(err, &ce) || ce.StatusCode != tc.status {
				t.Errorf("expected status %d on error, got %+v", tc.status, ce)
			}
			if ce.Message != tc.expected {
				t.Errorf("expected message %q, got %q", tc.expected, ce.Message)
			}
			if rec.Len() != 1 {
				t.Errorf("expected one notification, got %d", rec.Len())
			}
			if session.logouts != 0 || session.Token() != "keep" {
				t.Error("session must not change on non-401 failures")
			}
			if len(nav.pushed) != 0 {
				t.Errorf("expected no navigation, got %v", nav.pushed)
			}
		})
	}
}

func TestDo_BlobPassesThrough(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0xff}
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="deletion_report.xlsx"`)
		w.Write(payload)
	})

	resp, err := c.Do(context.Background(), Request{Path: "/branch-rules/deletion-report/excel", ResponseType: ResponseBlob})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != string(payload) {
		t.Errorf("expected raw body, got %v", resp.Body)
	}
	if resp.Filename() != "deletion_report.xlsx" {
		t.Errorf("expected filename from Content-Disposition, got %q", resp.Filename())
	}
	if rec.Len() != 0 {
		t.Errorf("expected no notification, got %d", rec.Len())
	}
}

func TestDo_BlobSkipsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"looks like a failure"}`))
	})

	if _, err := c.Do(context.Background(), Request{Path: "/export", ResponseType: ResponseBlob}); err != nil {
		t.Errorf("blob responses must not be envelope-checked, got %v", err)
	}
}

func TestDo_PerRequestTimeoutOverride(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"success":true}`))
	})
	c.timeout = 20 * time.Millisecond

	_, err := c.Do(context.Background(), Request{Path: "/slow"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout with default, got %v", err)
	}
	if last, _ := rec.Last(); last.Message != MsgTimeout {
		t.Errorf("expected timeout notification, got %q", last.Message)
	}

	if _, err := c.Do(context.Background(), Request{Path: "/slow", Timeout: 2 * time.Second}); err != nil {
		t.Errorf("expected override to allow slow request, got %v", err)
	}
}

func TestDo_CanceledContext(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, Request{Path: "/health"})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if rec.Len() != 1 {
		t.Errorf("expected one notification, got %d", rec.Len())
	}
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	rec := notify.NewRecorder()
	c := New(url, WithNotifier(rec))

	_, err := c.Do(context.Background(), Request{Path: "/health"})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if last, _ := rec.Last(); last.Message != MsgNetwork {
		t.Errorf("expected network notification, got %q", last.Message)
	}
}

func TestDoJSON_Decodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"count":2}`))
	})

	var out struct {
		Count int `json:"count"`
	}
	if err := c.DoJSON(context.Background(), Request{Path: "/tasks"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("expected count 2, got %d", out.Count)
	}
}

func TestDoJSON_InvalidBodyNotifiesOnce(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var out map[string]interface{}
	err := c.DoJSON(context.Background(), Request{Path: "/statistics"}, &out)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if rec.Len() != 1 {
		t.Errorf("expected one notification, got %d", rec.Len())
	}
}

func TestDo_TokenReadAtSendTime(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Write([]byte(`{}`))
	})
	session := &fakeSession{token: "first"}
	c.SetSession(session)

	c.Do(context.Background(), Request{Path: "/a"})
	session.mu.Lock()
	session.token = "second"
	session.mu.Unlock()
	c.Do(context.Background(), Request{Path: "/b"})

	if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "Bearer second" {
		t.Errorf("expected token changes to apply to later requests, got %v", seen)
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Kind: KindForbidden, StatusCode: 403, Message: MsgForbidden}
	if !errors.Is(err, ErrForbidden) {
		t.Error("expected match on kind")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("expected no match on different kind")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status in error string, got %q", err.Error())
	}
}

func TestMessage_NonPipelineError(t *testing.T) {
	if _, ok := Message(errors.New("plain")); ok {
		t.Error("expected ok=false for a plain error")
	}
}
