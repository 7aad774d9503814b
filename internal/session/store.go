// ABOUTME: Session store: the single source of truth for who is logged in
// ABOUTME: Mirrors token and profile to durable storage and derives login and admin state

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// Fallback messages when the backend gives no reason
const (
	MsgLoginFailed          = "Login failed"
	MsgChangePasswordFailed = "Failed to change password"
)

// ErrNoSession is returned when a profile update arrives while logged out
var ErrNoSession = errors.New("no active session")

// Authenticator performs the backend calls the store delegates to.
// *api.AuthAPI implements it.
type Authenticator interface {
	AutoLogin(ctx context.Context, username, password string) (*models.LoginResponse, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (*models.MessageResponse, error)
	Verify(ctx context.Context) (*models.UserResponse, error)
	Me(ctx context.Context) (*models.UserResponse, error)
}

// Result is the outcome of an operation that reports failure as data
type Result struct {
	Success bool
	Message string
	Error   string
	// Notified is set when the request pipeline already showed the failure
	Notified bool
}

// Store holds the current token and profile. Token and profile are always
// set or cleared together. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	token   string
	user    models.Profile
	storage Storage
	auth    Authenticator
	group   singleflight.Group
}

// New creates an empty store. Call InitFromStorage to restore a saved session.
func New(storage Storage, auth Authenticator) *Store {
	return &Store{storage: storage, auth: auth}
}

// InitFromStorage adopts the persisted session when both entries are present
// and the profile parses as a JSON object. Anything else leaves the store
// logged out with persisted remnants cleared.
func (s *Store) InitFromStorage() error {
	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read saved token: %w", err)
	}
	rawUser, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read saved user: %w", err)
	}

	if !hasToken && !hasUser {
		return nil
	}
	if !hasToken || !hasUser || token == "" {
		slog.Warn("Discarding incomplete saved session", "has_token", hasToken, "has_user", hasUser)
		s.Logout()
		return nil
	}

	var user models.Profile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user == nil {
		slog.Warn("Discarding saved session with unreadable profile", "error", err)
		s.Logout()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	slog.Debug("Restored saved session", "username", user.Username())
	return nil
}

// Login authenticates and, on success, adopts and persists the session.
// On any failure the session is left unchanged.
func (s *Store) Login(ctx context.Context, username, password string) Result {
	resp, err := s.auth.AutoLogin(ctx, username, password)
	if err != nil {
		return failure(err, MsgLoginFailed)
	}
	if !resp.Success || resp.Token == "" {
		return Result{Error: firstNonEmpty(resp.Error, MsgLoginFailed)}
	}

	user := resp.User.Clone()
	if user == nil {
		user = models.Profile{}
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = user
	s.persistLocked()
	s.mu.Unlock()

	slog.Info("Logged in", "username", user.Username(), "auth_type", user.AuthType())
	return Result{Success: true, Message: resp.Message}
}

// Logout clears the in-memory and persisted session. It is idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.storage.Delete(key); err != nil {
			slog.Warn("Failed to clear saved session", "key", key, "error", err)
		}
	}
}

// UpdateUser shallow-merges partial into the profile and persists it.
// Later calls win on overlapping keys. It returns ErrNoSession when logged out.
func (s *Store) UpdateUser(partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(partial)
}

func (s *Store) mergeLocked(partial map[string]interface{}) error {
	if s.token == "" {
		return ErrNoSession
	}

	merged := s.user.Clone()
	if merged == nil {
		merged = models.Profile{}
	}
	for k, v := range partial {
		merged[k] = v
	}
	s.user = merged

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ChangePassword changes the password. The session is not affected.
func (s *Store) ChangePassword(ctx context.Context, oldPassword, newPassword string) Result {
	resp, err := s.auth.ChangePassword(ctx, oldPassword, newPassword)
	if err != nil {
		return failure(err, MsgChangePasswordFailed)
	}
	return Result{Success: true, Message: resp.Message}
}

// Verify checks the token with the backend and merges the returned profile.
// Concurrent calls share one request.
func (s *Store) Verify(ctx context.Context) error {
	return s.fetchProfile(ctx, "verify", s.auth.Verify)
}

// Refresh reloads the profile from /auth/me. Concurrent calls share one request.
func (s *Store) Refresh(ctx context.Context) error {
	return s.fetchProfile(ctx, "me", s.auth.Me)
}

// fetchProfile runs fetch once for all concurrent callers. The shared call
// is detached from any single caller's cancellation; each caller still
// returns as soon as its own ctx is done.
func (s *Store) fetchProfile(ctx context.Context, key string, fetch func(context.Context) (*models.UserResponse, error)) error {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		resp, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		if len(resp.User) == 0 {
			return nil, nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// a logout that raced the request wins
		if s.token == "" {
			return nil, nil
		}
		return nil, s.mergeLocked(resp.User)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-ch:
		return r.Err
	}
}

// Token returns the current bearer token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current profile, or nil when logged out
func (s *Store) User() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// IsLoggedIn reports whether a token is present
func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the profile's is_admin flag is true
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsAdmin()
}

// Username returns the display name, or ""
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Username()
}

// UserID returns the numeric user id when known
func (s *Store) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.UserID()
}

// TokenExpiry reads the exp claim of the token without verifying its
// signature. ok is false when there is no token or it carries no expiry.
func (s *Store) TokenExpiry() (exp time.Time, ok bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		slog.Debug("Token is not a readable JWT", "error", err)
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// persistLocked writes token and profile. The caller holds s.mu.
func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.user)
	if err != nil {
		slog.Warn("Failed to encode profile", "error", err)
		return
	}
	if err := s.storage.Set(KeyToken, s.token); err != nil {
		slog.Warn("Failed to save token", "error", err)
		return
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		slog.Warn("Failed to save profile", "error", err)
	}
}

func failure(err error, fallback string) Result {
	_, notified := client.Message(err)
	return Result{Error: errorText(err, fallback), Notified: notified}
}

// errorText picks the most useful reason from a failed call: the server's
// own message when it sent one, else the pipeline message.
func errorText(err error, fallback string) string {
	var ce *client.Error
	if errors.As(err, &ce) {
		return firstNonEmpty(ce.Detail, ce.Message, fallback)
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
