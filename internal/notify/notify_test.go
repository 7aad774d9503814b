// ABOUTME: Tests for notification sinks
// ABOUTME: Verifies writer output, recorder ordering, and level names

package notify

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelInfo, "info"},
		{LevelSuccess, "success"},
		{LevelWarning, "warning"},
		{LevelError, "error"},
		{Level(42), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.level.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestWriter_OneLinePerNotification(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriter(&buf)

	n.Notify(LevelError, "Server error")
	n.Notify(LevelWarning, "Restricted")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Server error") {
		t.Errorf("expected first line to contain message, got %q", lines[0])
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	if _, ok := r.Last(); ok {
		t.Error("expected no notification on empty recorder")
	}

	r.Notify(LevelInfo, "first")
	r.Notify(LevelError, "second")

	last, ok := r.Last()
	if !ok || last.Message != "second" || last.Level != LevelError {
		t.Errorf("unexpected last notification: %+v", last)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", r.Len())
	}

	all := r.All()
	all[0].Message = "mutated"
	if r.All()[0].Message != "first" {
		t.Error("All() must return a copy")
	}

	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected empty recorder after Reset, got %d", r.Len())
	}
}

func TestRecorder_ConcurrentNotify(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(LevelError, "boom")
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("expected 50 notifications, got %d", r.Len())
	}
}

func TestFunc(t *testing.T) {
	var got Notification
	n := Func(func(level Level, message string) {
		got = Notification{Level: level, Message: message}
	})

	n.Notify(LevelSuccess, "done")
	if got.Level != LevelSuccess || got.Message != "done" {
		t.Errorf("unexpected notification: %+v", got)
	}
}
