// ABOUTME: User-visible notification channel shared by the request pipeline and route guard
// ABOUTME: Provides writer-backed and in-memory notifiers behind a single interface

package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the string representation of a Level
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a single message surfaced to the user
type Notification struct {
	Level   Level
	Message string
}

// Notifier surfaces messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a plain function to the Notifier interface.
type Func func(level Level, message string)

// Notify implements Notifier
func (f Func) Notify(level Level, message string) { f(level, message) }

// Discard drops every notification.
var Discard Notifier = Func(func(Level, string) {})

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
)

// Writer prints notifications as single styled lines, one per call.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a notifier that writes to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify implements Notifier
func (n *Writer) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	slog.Debug("Notification", "level", level.String(), "message", message)
	fmt.Fprintf(n.w, "%s %s\n", Prefix(level), message)
}

// Prefix returns the styled marker shown before a message of the given level
func Prefix(level Level) string {
	switch level {
	case LevelError:
		return errorStyle.Render("✗")
	case LevelWarning:
		return warningStyle.Render("⚠")
	case LevelSuccess:
		return successStyle.Render("✓")
	default:
		return infoStyle.Render("ℹ")
	}
}

// Recorder keeps notifications in memory. The terminal UI renders the latest
// one in its footer; tests use it to count emissions.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier
func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug("Notification", "level", level.String(), "message", message)
	r.entries = append(r.entries, Notification{Level: level, Message: message})
}

// All returns a copy of every recorded notification in emission order
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, len(r.entries))
	copy(out, r.entries)
	return out
}

// Last returns the most recent notification, if any
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return Notification{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Len returns the number of recorded notifications
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset drops every recorded notification
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
