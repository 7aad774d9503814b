// ABOUTME: Session commands for the insight CLI: login, logout, whoami and passwd
// ABOUTME: Credentials missing from flags are prompted for with an interactive form

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/router"
	"github.com/gitlab-insight/insight/internal/session"
)

var (
	loginUsername string
	loginPassword string
	whoamiVerify  bool
	whoamiRefresh bool
	oldPassword   string
	newPassword   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in with a local or LDAP account. The backend picks the
authentication method. The session is saved in the config directory.`,
	Args: cobra.NoArgs,
	Run:  execute(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	Run:   execute(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run:   execute(runWhoami),
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the password of the signed-in local account",
	Args:  cobra.NoArgs,
	Run:   execute(runPasswd),
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, passwdCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")

	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "Check the token with the backend first")
	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Reload the full profile from the backend")

	passwdCmd.Flags().StringVar(&oldPassword, "old", "", "Current password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&newPassword, "new", "", "New password (prompted when omitted)")
}

// promptCredentials asks for whichever of username and password is empty
func promptCredentials(username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(username).Validate(required("username")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "")
	if code != 0 {
		return code
	}

	username, password := loginUsername, loginPassword
	if err := promptCredentials(&username, &password); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 2
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	result := rt.session.Login(ctx, username, password)
	if !result.Success {
		return reportResult(w, result)
	}

	rt.router.Push(router.DashboardPath)
	if IsJSONOutput() {
		return printJSON(w, rt.session.User())
	}
	fmt.Fprintf(w, "Logged in as %s\n", rt.session.Username())
	return 0
}

// runLogout clears the saved session and returns exit code
func runLogout(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "")
	if code != 0 {
		return code
	}
	rt.session.Logout()
	rt.router.Push(router.RootPath)
	fmt.Fprintln(w, "Logged out")
	return 0
}

// runWhoami prints the signed-in user and returns exit code
func runWhoami(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, router.DashboardPath)
	if code != 0 {
		return code
	}

	if whoamiVerify {
		if err := rt.session.Verify(ctx); err != nil {
			return reportError(w, err)
		}
	}
	if whoamiRefresh {
		if err := rt.session.Refresh(ctx); err != nil {
			return reportError(w, err)
		}
	}

	user := rt.session.User()
	if IsJSONOutput() {
		out := map[string]interface{}{"user": user}
		if exp, ok := rt.session.TokenExpiry(); ok {
			out["token_expires_at"] = exp.Format(time.RFC3339)
		}
		return printJSON(w, out)
	}

	id := "-"
	if n, ok := user.UserID(); ok {
		id = fmt.Sprint(n)
	}
	expires := "-"
	if exp, ok := rt.session.TokenExpiry(); ok {
		expires = exp.Local().Format("2006-01-02 15:04:05")
	}

	fmt.Fprintf(w, `User:      %s
ID:        %s
Full name: %s
Email:     %s
Auth:      %s
Admin:     %t
Expires:   %s
`, orDash(user.Username()), id, orDash(user.FullName()), orDash(user.Email()), orDash(user.AuthType()), user.IsAdmin(), expires)
	return 0
}

// runPasswd changes the password and returns exit code
func runPasswd(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "/settings")
	if code != 0 {
		return code
	}

	current, next := oldPassword, newPassword
	if current == "" || next == "" {
		var confirm string
		var fields []huh.Field
		if current == "" {
			fields = append(fields, huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).Value(&current).Validate(required("current password")))
		}
		if next == "" {
			fields = append(fields,
				huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&next).Validate(required("new password")),
				huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).Value(&confirm).Validate(func(s string) error {
					if s != next {
						return errors.New("passwords do not match")
					}
					return nil
				}),
			)
		}
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return 2
			}
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	result := rt.session.ChangePassword(ctx, current, next)
	if !result.Success {
		return reportResult(w, result)
	}
	fmt.Fprintln(w, orDash(result.Message))
	return 0
}

// reportResult prints a failed result unless the pipeline already notified
func reportResult(w io.Writer, result session.Result) int {
	if !result.Notified {
		fmt.Fprintf(w, "Error: %s\n", result.Error)
	}
	return 2
}
