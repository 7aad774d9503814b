// ABOUTME: Tests for the session store
// ABOUTME: Covers restore, login, logout, profile merge, password change and token expiry

package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

type fakeAuth struct {
	loginResp *models.LoginResponse
	loginErr  error
	passResp  *models.MessageResponse
	passErr   error
	userResp  *models.UserResponse
	userErr   error
	userCalls int32
	userDelay time.Duration
	lastOld   string
	lastNew   string
}

func (f *fakeAuth) AutoLogin(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*models.MessageResponse, error) {
	f.lastOld, f.lastNew = oldPassword, newPassword
	return f.passResp, f.passErr
}

func (f *fakeAuth) Verify(ctx context.Context) (*models.UserResponse, error) {
	return f.fetch(ctx)
}

func (f *fakeAuth) Me(ctx context.Context) (*models.UserResponse, error) {
	return f.fetch(ctx)
}

func (f *fakeAuth) fetch(ctx context.Context) (*models.UserResponse, error) {
	atomic.AddInt32(&f.userCalls, 1)
	if f.userDelay > 0 {
		select {
		case <-time.After(f.userDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.userResp, f.userErr
}

func seed(t *testing.T, storage Storage, token, user string) {
	t.Helper()
	if token != "" {
		if err := storage.Set(KeyToken, token); err != nil {
			t.Fatal(err)
		}
	}
	if user != "" {
		if err := storage.Set(KeyUser, user); err != nil {
			t.Fatal(err)
		}
	}
}

func assertCleared(t *testing.T, storage Storage) {
	t.Helper()
	for _, key := range []string{KeyToken, KeyUser} {
		if _, ok, _ := storage.Get(key); ok {
			t.Errorf("expected %q to be removed from storage", key)
		}
	}
}

func TestInitFromStorage_Restores(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"user_id":1,"username":"alice","is_admin":true}`)

	s := New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatalf("InitFromStorage() error = %v", err)
	}

	if !s.IsLoggedIn() {
		t.Fatal("expected logged in")
	}
	if s.Token() != "abc" {
		t.Errorf("Token() = %q, want abc", s.Token())
	}
	if !s.IsAdmin() {
		t.Error("expected admin")
	}
	if s.Username() != "alice" {
		t.Errorf("Username() = %q, want alice", s.Username())
	}
	if id, ok := s.UserID(); !ok || id != 1 {
		t.Errorf("UserID() = %d, %v; want 1, true", id, ok)
	}
}

func TestInitFromStorage_DiscardsBadState(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"corrupt profile", "abc", "not-json"},
		{"non-object profile", "abc", `"alice"`},
		{"null profile", "abc", "null"},
		{"token only", "abc", ""},
		{"user only", "", `{"username":"alice"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			seed(t, storage, tt.token, tt.user)

			s := New(storage, &fakeAuth{})
			if err := s.InitFromStorage(); err != nil {
				t.Fatalf("InitFromStorage() error = %v", err)
			}

			if s.IsLoggedIn() {
				t.Error("expected logged out")
			}
			if s.User() != nil {
				t.Errorf("User() = %v, want nil", s.User())
			}
			assertCleared(t, storage)
		})
	}
}

func TestInitFromStorage_Empty(t *testing.T) {
	s := New(NewMemoryStorage(), &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatalf("InitFromStorage() error = %v", err)
	}
	if s.IsLoggedIn() || s.IsAdmin() {
		t.Error("expected logged out non-admin")
	}
}

func TestLogin_Success(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuth{loginResp: &models.LoginResponse{
		Success: true,
		Token:   "T",
		User:    models.Profile{"user_id": float64(1), "username": "alice", "is_admin": true},
		Message: "welcome",
	}}
	s := New(storage, auth)

	result := s.Login(context.Background(), "alice", "pw")

	if !result.Success {
		t.Fatalf("Login() = %+v, want success", result)
	}
	if result.Message != "welcome" {
		t.Errorf("Message = %q, want welcome", result.Message)
	}
	if s.Token() != "T" || !s.IsAdmin() {
		t.Errorf("token = %q admin = %v", s.Token(), s.IsAdmin())
	}

	token, ok, _ := storage.Get(KeyToken)
	if !ok || token != "T" {
		t.Errorf("stored token = %q, %v", token, ok)
	}
	raw, ok, _ := storage.Get(KeyUser)
	if !ok {
		t.Fatal("expected stored user")
	}
	var stored map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored user is not JSON: %v", err)
	}
	if stored["username"] != "alice" {
		t.Errorf("stored username = %v", stored["username"])
	}
}

func TestLogin_SuccessWithoutUser(t *testing.T) {
	s := New(NewMemoryStorage(), &fakeAuth{loginResp: &models.LoginResponse{Success: true, Token: "T"}})

	if result := s.Login(context.Background(), "bob", "pw"); !result.Success {
		t.Fatalf("Login() = %+v", result)
	}
	if !s.IsLoggedIn() {
		t.Error("expected logged in")
	}
	if s.User() == nil {
		t.Error("expected empty profile, got nil")
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp *models.LoginResponse
		err  error
		want string
	}{
		{
			name: "business failure with reason",
			resp: &models.LoginResponse{Success: false, Error: "Invalid credentials"},
			want: "Invalid credentials",
		},
		{
			name: "business failure without reason",
			resp: &models.LoginResponse{Success: false},
			want: MsgLoginFailed,
		},
		{
			name: "success without token",
			resp: &models.LoginResponse{Success: true},
			want: MsgLoginFailed,
		},
		{
			name: "pipeline error with server detail",
			err:  &client.Error{Kind: client.KindUnauthorized, StatusCode: 401, Message: client.MsgSessionExpired, Detail: "LDAP authentication failed"},
			want: "LDAP authentication failed",
		},
		{
			name: "pipeline error without detail",
			err:  &client.Error{Kind: client.KindNetwork, Message: client.MsgNetwork},
			want: client.MsgNetwork,
		},
		{
			name: "other error",
			err:  errors.New("boom"),
			want: MsgLoginFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			seed(t, storage, "old", `{"username":"prev"}`)
			s := New(storage, &fakeAuth{loginResp: tt.resp, loginErr: tt.err})
			if err := s.InitFromStorage(); err != nil {
				t.Fatal(err)
			}

			result := s.Login(context.Background(), "alice", "bad")

			if result.Success {
				t.Fatal("expected failure")
			}
			if result.Error != tt.want {
				t.Errorf("Error = %q, want %q", result.Error, tt.want)
			}
			if s.Token() != "old" || s.Username() != "prev" {
				t.Errorf("session changed: token=%q user=%q", s.Token(), s.Username())
			}
		})
	}
}

func TestLogout_Idempotent(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice"}`)
	s := New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	s.Logout()
	s.Logout()

	if s.IsLoggedIn() || s.User() != nil || s.IsAdmin() {
		t.Error("expected cleared session")
	}
	assertCleared(t, storage)
}

func TestUpdateUser_MergesLastWriteWins(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice","email":"a@x"}`)
	s := New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateUser(map[string]interface{}{"email": "first@x", "full_name": "Alice"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateUser(map[string]interface{}{"email": "second@x"}); err != nil {
		t.Fatal(err)
	}

	user := s.User()
	if user.Email() != "second@x" {
		t.Errorf("email = %q, want second@x", user.Email())
	}
	if user.FullName() != "Alice" || user.Username() != "alice" {
		t.Errorf("unexpected profile %v", user)
	}

	raw, _, _ := storage.Get(KeyUser)
	var stored map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatal(err)
	}
	if stored["email"] != "second@x" {
		t.Errorf("stored email = %v", stored["email"])
	}
}

func TestUser_ReturnsCopy(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice"}`)
	s := New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	user := s.User()
	user["username"] = "mallory"

	if s.Username() != "alice" {
		t.Errorf("store mutated through copy: %q", s.Username())
	}
}

func TestChangePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := &fakeAuth{passResp: &models.MessageResponse{Success: true, Message: "Password changed"}}
		storage := NewMemoryStorage()
		seed(t, storage, "abc", `{"username":"alice"}`)
		s := New(storage, auth)
		if err := s.InitFromStorage(); err != nil {
			t.Fatal(err)
		}

		result := s.ChangePassword(context.Background(), "old", "new")

		if !result.Success || result.Message != "Password changed" {
			t.Errorf("ChangePassword() = %+v", result)
		}
		if auth.lastOld != "old" || auth.lastNew != "new" {
			t.Errorf("sent %q/%q", auth.lastOld, auth.lastNew)
		}
		if s.Token() != "abc" {
			t.Error("session should be unchanged")
		}
	})

	t.Run("failure", func(t *testing.T) {
		auth := &fakeAuth{passErr: &client.Error{Kind: client.KindBusiness, Message: "Old password is incorrect", Detail: "Old password is incorrect"}}
		s := New(NewMemoryStorage(), auth)

		result := s.ChangePassword(context.Background(), "bad", "new")

		if result.Success || result.Error != "Old password is incorrect" {
			t.Errorf("ChangePassword() = %+v", result)
		}
	})

	t.Run("failure without reason", func(t *testing.T) {
		s := New(NewMemoryStorage(), &fakeAuth{passErr: errors.New("boom")})

		if result := s.ChangePassword(context.Background(), "a", "b"); result.Error != MsgChangePasswordFailed {
			t.Errorf("Error = %q, want %q", result.Error, MsgChangePasswordFailed)
		}
	})
}

func TestRefresh_MergesProfile(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice","is_admin":false}`)
	auth := &fakeAuth{userResp: &models.UserResponse{Success: true, User: models.Profile{"is_admin": true}}}
	s := New(storage, auth)
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if !s.IsAdmin() || s.Username() != "alice" {
		t.Errorf("admin=%v username=%q", s.IsAdmin(), s.Username())
	}
}

func TestVerify_SharesConcurrentCalls(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice"}`)
	auth := &fakeAuth{
		userResp:  &models.UserResponse{Success: true, User: models.Profile{"username": "alice"}},
		userDelay: 50 * time.Millisecond,
	}
	s := New(storage, auth)
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Verify(context.Background()); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt32(&auth.userCalls); calls >= 10 {
		t.Errorf("expected concurrent verifies to share requests, got %d calls", calls)
	}
}

func TestVerify_PropagatesError(t *testing.T) {
	s := New(NewMemoryStorage(), &fakeAuth{userErr: client.ErrUnauthorized})

	if err := s.Verify(context.Background()); !errors.Is(err, client.ErrUnauthorized) {
		t.Errorf("Verify() error = %v, want unauthorized", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	storage := NewMemoryStorage()
	seed(t, storage, signed, `{"username":"alice"}`)
	s := New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	got, ok := s.TokenExpiry()
	if !ok {
		t.Fatal("expected expiry")
	}
	if !got.Equal(exp) {
		t.Errorf("TokenExpiry() = %v, want %v", got, exp)
	}
}

func TestTokenExpiry_NotAvailable(t *testing.T) {
	s := New(NewMemoryStorage(), &fakeAuth{})
	if _, ok := s.TokenExpiry(); ok {
		t.Error("expected no expiry when logged out")
	}

	storage := NewMemoryStorage()
	seed(t, storage, "opaque-token", `{"username":"alice"}`)
	s = New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.TokenExpiry(); ok {
		t.Error("expected no expiry for non-JWT token")
	}
}

func TestUpdateUser_AfterLogoutLeavesNoProfile(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice"}`)
	s := New(storage, &fakeAuth{})
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}
	s.Logout()

	err := s.UpdateUser(map[string]interface{}{"is_admin": true, "username": "x"})

	if !errors.Is(err, ErrNoSession) {
		t.Errorf("UpdateUser() error = %v, want ErrNoSession", err)
	}
	if s.User() != nil || s.IsAdmin() || s.IsLoggedIn() {
		t.Errorf("expected empty session, got user %v admin %v", s.User(), s.IsAdmin())
	}
	assertCleared(t, storage)
}

func TestVerify_LogoutDuringRequestWins(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice"}`)
	auth := &fakeAuth{
		userResp:  &models.UserResponse{Success: true, User: models.Profile{"is_admin": true}},
		userDelay: 50 * time.Millisecond,
	}
	s := New(storage, auth)
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Verify(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	s.Logout()

	if err := <-done; err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if s.User() != nil || s.IsAdmin() {
		t.Errorf("expected profile to stay cleared, got %v", s.User())
	}
	assertCleared(t, storage)
}

func TestVerify_CanceledCallerDoesNotFailOthers(t *testing.T) {
	storage := NewMemoryStorage()
	seed(t, storage, "abc", `{"username":"alice"}`)
	auth := &fakeAuth{
		userResp:  &models.UserResponse{Success: true, User: models.Profile{"full_name": "Alice"}},
		userDelay: 50 * time.Millisecond,
	}
	s := New(storage, auth)
	if err := s.InitFromStorage(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- s.Verify(ctx) }()
	time.Sleep(10 * time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- s.Verify(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Errorf("first Verify() error = %v, want context.Canceled", err)
	}
	if err := <-second; err != nil {
		t.Errorf("second Verify() error = %v", err)
	}
	if s.User().FullName() != "Alice" {
		t.Errorf("expected merged profile, got %v", s.User())
	}
}

func TestLogin_FailureReportsPipelineNotification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notified bool
	}{
		{"pipeline failure", &client.Error{Kind: client.KindUnauthorized, Message: client.MsgSessionExpired, Detail: "Invalid credentials"}, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(NewMemoryStorage(), &fakeAuth{loginErr: tt.err})

			result := s.Login(context.Background(), "alice", "wrong")

			if result.Success || result.Notified != tt.notified {
				t.Errorf("Login() = %+v, want Notified %v", result, tt.notified)
			}
		})
	}
}
