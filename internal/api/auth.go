// ABOUTME: Authentication endpoint wrappers
// ABOUTME: Local, LDAP and automatic login plus token verification and password changes

package api

import (
	"context"
	"net/http"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// AuthAPI wraps /auth endpoints
type AuthAPI struct {
	d Doer
}

// AutoLogin tries LDAP first and falls back to local accounts
func (a *AuthAPI) AutoLogin(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	return a.login(ctx, "/auth/auto-login", username, password)
}

// Login authenticates against local accounts only
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	return a.login(ctx, "/auth/login", username, password)
}

// LDAPLogin authenticates against LDAP only
func (a *AuthAPI) LDAPLogin(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	return a.login(ctx, "/auth/ldap-login", username, password)
}

func (a *AuthAPI) login(ctx context.Context, path, username, password string) (*models.LoginResponse, error) {
	return call[models.LoginResponse](ctx, a.d, client.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   models.LoginRequest{Username: username, Password: password},
	})
}

// Verify checks that the current token is still valid
func (a *AuthAPI) Verify(ctx context.Context) (*models.UserResponse, error) {
	return call[models.UserResponse](ctx, a.d, client.Request{Path: "/auth/verify"})
}

// Me returns the current user's profile
func (a *AuthAPI) Me(ctx context.Context) (*models.UserResponse, error) {
	return call[models.UserResponse](ctx, a.d, client.Request{Path: "/auth/me"})
}

// ChangePassword changes the current user's password
func (a *AuthAPI) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, a.d, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/change-password",
		Body:   models.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword},
	})
}

// TestLDAP checks the backend's LDAP connection (admin only)
func (a *AuthAPI) TestLDAP(ctx context.Context) (*models.LDAPTestResponse, error) {
	return call[models.LDAPTestResponse](ctx, a.d, client.Request{Path: "/auth/ldap/test"})
}

// LDAPConfig returns the redacted LDAP configuration (admin only)
func (a *AuthAPI) LDAPConfig(ctx context.Context) (*models.LDAPConfigResponse, error) {
	return call[models.LDAPConfigResponse](ctx, a.d, client.Request{Path: "/auth/ldap/config"})
}
