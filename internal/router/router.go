// ABOUTME: Route guard and navigation state
// ABOUTME: Checks each navigation against the session and follows guard redirects

package router

import (
	"log/slog"
	"sync"

	"github.com/gitlab-insight/insight/internal/notify"
)

// MsgAdminOnly is shown when a non-admin reaches an admin-only view
const MsgAdminOnly = "This feature is restricted to administrators"

// maxRedirects bounds redirect chains
const maxRedirects = 5

// SessionView is the read-only session state the guard needs.
type SessionView interface {
	IsLoggedIn() bool
	IsAdmin() bool
}

// Reason explains a guard decision
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonForbidden
)

// String returns the string representation of a Reason
func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "none"
	}
}

// Decision is the outcome of a guard check
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   Reason
}

// Guard decides whether a navigation may proceed.
type Guard struct {
	session  SessionView
	notifier notify.Notifier
}

// NewGuard creates a guard. A nil notifier discards warnings.
func NewGuard(session SessionView, notifier notify.Notifier) *Guard {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Guard{session: session, notifier: notifier}
}

// Check evaluates a navigation to m. Authentication is checked before
// admin rights, so a guest hitting an admin view is sent to log in.
func (g *Guard) Check(m Match) Decision {
	loggedIn := g.session.IsLoggedIn()

	if m.RequiresAuth() && !loggedIn {
		if m.Target == RootPath {
			return Decision{Allowed: true}
		}
		return Decision{Redirect: RootPath, Reason: ReasonUnauthenticated}
	}

	if m.RequiresAdmin() && (!loggedIn || !g.session.IsAdmin()) {
		g.notifier.Notify(notify.LevelWarning, MsgAdminOnly)
		return Decision{Redirect: DashboardPath, Reason: ReasonForbidden}
	}

	return Decision{Allowed: true}
}

// Router tracks the current view. It is safe for concurrent use and
// implements client.Navigator.
type Router struct {
	mu        sync.RWMutex
	guard     *Guard
	current   Match
	listeners []func(Match)
}

// New creates a router positioned at the root view
func New(guard *Guard) *Router {
	return &Router{guard: guard, current: Resolve(RootPath)}
}

// Push navigates to path, discarding the resulting match
func (r *Router) Push(path string) {
	r.Navigate(path)
}

// Navigate resolves path, runs the guard and follows its redirects. It
// returns the match that became current.
func (r *Router) Navigate(path string) Match {
	m := Resolve(path)
	for i := 0; ; i++ {
		decision := r.guard.Check(m)
		if decision.Allowed {
			break
		}
		slog.Debug("Navigation redirected", "from", m.Target, "to", decision.Redirect, "reason", decision.Reason)
		if i >= maxRedirects {
			slog.Warn("Too many redirects, staying on current view", "path", path)
			return r.Current()
		}
		m = Resolve(decision.Redirect)
	}

	r.mu.Lock()
	r.current = m
	listeners := append([]func(Match){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(m)
	}
	return m
}

// Current returns the current match
func (r *Router) Current() Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// OnChange registers fn to run after every completed navigation
func (r *Router) OnChange(fn func(Match)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
