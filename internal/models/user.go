// ABOUTME: User profile and authentication response types
// ABOUTME: Profile is kept as an open JSON object so partial updates merge shallowly

package models

import "strconv"

// Profile is the logged-in user's profile as returned by the backend.
// It stays a free-form object: the backend adds fields per auth type and
// local updates merge arbitrary keys.
type Profile map[string]interface{}

// Clone returns a shallow copy of the profile
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// UserID returns the numeric user id, reading user_id and falling back to id.
func (p Profile) UserID() (int64, bool) {
	for _, key := range []string{"user_id", "id"} {
		if id, ok := toInt64(p[key]); ok {
			return id, true
		}
	}
	return 0, false
}

// Username returns the display name
func (p Profile) Username() string {
	return p.str("username")
}

// Email returns the user's email, if known
func (p Profile) Email() string {
	return p.str("email")
}

// FullName returns the user's full name, if known
func (p Profile) FullName() string {
	return p.str("full_name")
}

// AuthType returns "local" or "ldap" when the backend reports it
func (p Profile) AuthType() string {
	return p.str("auth_type")
}

// IsAdmin is true only when is_admin is the boolean true.
func (p Profile) IsAdmin() bool {
	v, ok := p["is_admin"].(bool)
	return ok && v
}

func (p Profile) str(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// LoginRequest is the body of the login endpoints
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by /auth/auto-login, /auth/login and /auth/ldap-login
type LoginResponse struct {
	Success bool    `json:"success"`
	Token   string  `json:"token,omitempty"`
	User    Profile `json:"user,omitempty"`
	Message string  `json:"message,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ChangePasswordRequest is the body of /auth/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UserResponse is returned by /auth/verify and /auth/me
type UserResponse struct {
	Success bool    `json:"success"`
	User    Profile `json:"user,omitempty"`
	Message string  `json:"message,omitempty"`
}

// MessageResponse is the bare envelope returned by mutating endpoints
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LDAPTestResponse is returned by /auth/ldap/test
type LDAPTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LDAPConfigResponse is returned by /auth/ldap/config
type LDAPConfigResponse struct {
	Success bool                   `json:"success"`
	Config  map[string]interface{} `json:"config,omitempty"`
}
