// ABOUTME: huh forms hosted inside the TUI as bubbletea models
// ABOUTME: Login, change password and branch creation, each emitting a message on submit

package forms

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitlab-insight/insight/internal/models"
	"github.com/gitlab-insight/insight/internal/tui/styles"
)

// LoginMsg carries submitted credentials
type LoginMsg struct {
	Username string
	Password string
}

// PasswordMsg carries a password change
type PasswordMsg struct {
	Old string
	New string
}

// BranchMsg carries a branch creation request
type BranchMsg struct {
	Request models.CreateBranchRequest
}

// CancelledMsg is sent when the user leaves a form with esc
type CancelledMsg struct{}

// Form wraps a huh form and emits a message once it completes
type Form struct {
	form   *huh.Form
	submit func() tea.Msg
	done   bool
}

func theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(styles.Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(styles.Muted)

	return t
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

// NewLogin builds the sign-in form
func NewLogin() *Form {
	var username, password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&username).Validate(required("username")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(required("password")),
		).Title("Sign in to GitLab Insight"),
	).WithTheme(theme())

	return &Form{form: form, submit: func() tea.Msg {
		return LoginMsg{Username: strings.TrimSpace(username), Password: password}
	}}
}

// NewPassword builds the change password form
func NewPassword() *Form {
	var oldPassword, newPassword, confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).Value(&oldPassword).Validate(required("current password")),
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&newPassword).Validate(required("new password")),
			huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).Value(&confirm).Validate(func(s string) error {
				if s != newPassword {
					return errors.New("passwords do not match")
				}
				return nil
			}),
		).Title("Change password"),
	).WithTheme(theme())

	return &Form{form: form, submit: func() tea.Msg {
		return PasswordMsg{Old: oldPassword, New: newPassword}
	}}
}

// NewBranch builds the branch creation form. createdBy is recorded in the
// creation history.
func NewBranch(createdBy string) *Form {
	var projectID, branch, ref, group, project, jira string
	ref = "main"
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project ID").Value(&projectID).Validate(positiveInt),
			huh.NewInput().Title("New branch name").Value(&branch).Validate(required("branch name")),
			huh.NewInput().Title("Source ref").Value(&ref).Validate(required("source ref")),
		).Title("Create branch").
			Description("Submodules on the same GitLab server get the branch too"),
		huh.NewGroup(
			huh.NewInput().Title("Group name").Description("Optional").Value(&group),
			huh.NewInput().Title("Project name").Description("Optional").Value(&project),
			huh.NewInput().Title("Jira ticket").Description("Optional").Value(&jira),
		).Title("Details"),
	).WithTheme(theme())

	return &Form{form: form, submit: func() tea.Msg {
		id, _ := strconv.Atoi(strings.TrimSpace(projectID))
		return BranchMsg{Request: models.CreateBranchRequest{
			ProjectID:     id,
			NewBranchName: strings.TrimSpace(branch),
			SourceRef:     strings.TrimSpace(ref),
			GroupName:     strings.TrimSpace(group),
			ProjectName:   strings.TrimSpace(project),
			JiraTicket:    strings.TrimSpace(jira),
			CreatedBy:     createdBy,
		}}
	}}
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.done {
		return f, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		f.done = true
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}

	switch f.form.State {
	case huh.StateCompleted:
		f.done = true
		return f, f.submit
	case huh.StateAborted:
		f.done = true
		return f, func() tea.Msg { return CancelledMsg{} }
	}
	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	return f.form.View()
}
