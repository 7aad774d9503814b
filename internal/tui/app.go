// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows the router's current view and routes keyboard input to child components

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitlab-insight/insight/internal/api"
	"github.com/gitlab-insight/insight/internal/models"
	"github.com/gitlab-insight/insight/internal/notify"
	"github.com/gitlab-insight/insight/internal/router"
	"github.com/gitlab-insight/insight/internal/session"
	"github.com/gitlab-insight/insight/internal/tui/dashboard"
	"github.com/gitlab-insight/insight/internal/tui/forms"
	"github.com/gitlab-insight/insight/internal/tui/icons"
	"github.com/gitlab-insight/insight/internal/tui/menu"
	"github.com/gitlab-insight/insight/internal/tui/styles"
	"github.com/gitlab-insight/insight/internal/tui/tasks"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenTasks
	ScreenSettings
	ScreenBranchCreate
	ScreenView
	ScreenNotFound
)

// Route paths with a dedicated screen
const (
	TasksPath        = "/tasks"
	SettingsPath     = "/settings"
	BranchCreatePath = "/branch-create"
)

// Layout constants
const (
	minTerminalWidth = 80
	menuWidth        = 30
	panelPadding     = 4 // horizontal padding inside a panel
	taskListLimit    = 50
)

// commandHints names the CLI command that covers views without a screen
var commandHints = map[string]string{
	"/repositories":            "insight repos list",
	"/groups":                  "insight repos groups",
	"/branches":                "insight repos summary",
	"/branch-rules":            "insight rules list",
	"/branch-creation-history": "insight branch history",
	"/logs":                    "insight logs",
	"/todos":                   "insight todos",
	"/home-content":            "insight links",
}

// Services is what the TUI needs from the client stack
type Services struct {
	API     *api.API
	Session *session.Store
	Router  *router.Router
	Notices *notify.Recorder
}

type routeChangedMsg struct {
	match router.Match
}

type dashboardLoadedMsg struct {
	data *dashboard.Data
	err  error
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type loginDoneMsg struct {
	result session.Result
}

type passwordDoneMsg struct {
	result session.Result
}

type branchCreatedMsg struct {
	branch string
	result *models.CreateBranchResult
	err    error
}

type taskCancelledMsg struct {
	err error
}

type verifiedMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	ctx    context.Context
	svc    Services
	routes chan router.Match

	screen    Screen
	route     router.Match
	width     int
	height    int
	err       string
	focusMenu bool

	busy       bool
	spinner    spinner.Model
	lastUpdate time.Time

	menu      *menu.Menu
	dashboard *dashboard.Dashboard
	tasks     *tasks.List
	form      *forms.Form
}

// New creates the TUI application and subscribes it to route changes
func New(ctx context.Context, svc Services) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	a := &App{
		ctx:       ctx,
		svc:       svc,
		routes:    make(chan router.Match, 16),
		focusMenu: true,
		spinner:   s,
		menu:      menu.New(svc.Session.IsAdmin()),
	}
	svc.Router.OnChange(func(m router.Match) {
		select {
		case a.routes <- m:
		default:
			slog.Warn("Route change dropped", "target", m.Target)
		}
	})
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	start := router.RootPath
	if a.svc.Session.IsLoggedIn() {
		start = router.DashboardPath
	}
	a.svc.Router.Push(start)

	cmds := []tea.Cmd{a.waitForRoute(), a.spinner.Tick}
	if a.svc.Session.IsLoggedIn() {
		cmds = append(cmds, a.verify())
	}
	return tea.Batch(cmds...)
}

// waitForRoute delivers the next navigation to Update
func (a *App) waitForRoute() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-a.routes:
			return routeChangedMsg{match: m}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dashboard != nil {
			a.dashboard.SetSize(a.contentWidth()-panelPadding, a.contentHeight())
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case routeChangedMsg:
		return a, tea.Batch(a.applyRoute(msg.match), a.waitForRoute())

	case menu.SelectedMsg:
		a.svc.Router.Push(msg.Path)
		return a, nil

	case forms.LoginMsg:
		a.busy = true
		return a, a.login(msg)

	case forms.PasswordMsg:
		a.busy = true
		return a, a.changePassword(msg)

	case forms.BranchMsg:
		a.busy = true
		return a, a.createBranch(msg.Request)

	case forms.CancelledMsg:
		a.form = nil
		if a.screen == ScreenLogin {
			return a, tea.Quit
		}
		a.svc.Router.Push(router.DashboardPath)
		return a, nil

	case tasks.CancelMsg:
		a.busy = true
		return a, a.cancelTask(msg.TaskID)

	case loginDoneMsg:
		a.busy = false
		if !msg.result.Success {
			a.err = msg.result.Error
			a.form = forms.NewLogin()
			return a, a.form.Init()
		}
		a.err = ""
		a.form = nil
		a.menu = menu.New(a.svc.Session.IsAdmin())
		a.svc.Router.Push(router.DashboardPath)
		return a, nil

	case passwordDoneMsg:
		a.busy = false
		if !msg.result.Success {
			a.err = msg.result.Error
			a.form = forms.NewPassword()
			return a, a.form.Init()
		}
		a.err = ""
		a.form = nil
		a.svc.Notices.Notify(notify.LevelSuccess, firstNonEmpty(msg.result.Message, "Password changed"))
		a.svc.Router.Push(router.DashboardPath)
		return a, nil

	case branchCreatedMsg:
		a.busy = false
		if msg.err != nil {
			a.form = forms.NewBranch(a.svc.Session.Username())
			return a, a.form.Init()
		}
		a.form = nil
		a.svc.Notices.Notify(notify.LevelSuccess, describeBranch(msg.branch, msg.result))
		a.svc.Router.Push(router.DashboardPath)
		return a, nil

	case taskCancelledMsg:
		a.busy = false
		return a, a.loadTasks()

	case dashboardLoadedMsg:
		a.busy = false
		if msg.err != nil {
			return a, nil
		}
		a.lastUpdate = time.Now()
		if a.dashboard == nil {
			a.dashboard = dashboard.New(msg.data, a.contentWidth()-panelPadding, a.contentHeight())
		} else {
			a.dashboard.Update(msg.data)
		}
		return a, nil

	case tasksLoadedMsg:
		a.busy = false
		if msg.err != nil {
			return a, nil
		}
		a.lastUpdate = time.Now()
		if a.tasks == nil {
			a.tasks = tasks.New(msg.tasks)
		} else {
			a.tasks.SetTasks(msg.tasks)
		}
		return a, nil

	case verifiedMsg:
		if msg.err != nil {
			slog.Debug("Session verification failed", "error", msg.err)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	default:
		// huh forms need their internal messages
		if a.form != nil {
			return a.updateForm(msg)
		}
	}

	return a, nil
}

// applyRoute switches to the screen for m and starts any loading it needs
func (a *App) applyRoute(m router.Match) tea.Cmd {
	a.route = m
	a.err = ""
	a.form = nil
	a.focusMenu = true
	a.menu = menu.New(a.svc.Session.IsAdmin())
	a.menu.SetCurrent(m.Target)

	switch {
	case m.Target == router.RootPath:
		if a.svc.Session.IsLoggedIn() {
			a.svc.Router.Push(router.DashboardPath)
			return nil
		}
		a.screen = ScreenLogin
		a.dashboard = nil
		a.tasks = nil
		a.form = forms.NewLogin()
		return a.form.Init()

	case m.Name == router.NotFoundName:
		a.screen = ScreenNotFound
		return nil

	case m.Target == router.DashboardPath:
		a.screen = ScreenDashboard
		return a.loadDashboard()

	case m.Target == TasksPath:
		a.screen = ScreenTasks
		return a.loadTasks()

	case m.Target == SettingsPath:
		a.screen = ScreenSettings
		a.form = forms.NewPassword()
		return a.form.Init()

	case m.Target == BranchCreatePath:
		a.screen = ScreenBranchCreate
		a.form = forms.NewBranch(a.svc.Session.Username())
		return a.form.Init()
	}

	a.screen = ScreenView
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form != nil {
		if a.busy {
			return a, nil
		}
		return a.updateForm(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		return a, a.refresh()
	case "L":
		a.svc.Session.Logout()
		a.svc.Router.Push(router.RootPath)
		return a, nil
	case "tab":
		if a.screen == ScreenTasks {
			a.focusMenu = !a.focusMenu
		}
		return a, nil
	}

	if !a.focusMenu && a.tasks != nil {
		model, cmd := a.tasks.Update(msg)
		a.tasks = model.(*tasks.List)
		return a, cmd
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.form.Update(msg)
	a.form = model.(*forms.Form)
	return a, cmd
}

func (a *App) refresh() tea.Cmd {
	switch a.screen {
	case ScreenDashboard:
		return a.loadDashboard()
	case ScreenTasks:
		return a.loadTasks()
	}
	return nil
}

func (a *App) loadDashboard() tea.Cmd {
	a.busy = true
	ctx, svc := a.ctx, a.svc
	return func() tea.Msg {
		stats, err := svc.API.System.Statistics(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		data := &dashboard.Data{Statistics: stats}
		if imp, err := svc.API.System.Status(ctx); err == nil {
			data.Import = imp
		}
		if running, err := svc.API.Tasks.List(ctx, models.TaskFilter{Status: models.TaskRunning, Limit: 10}); err == nil {
			data.Running = running.Tasks
		}
		return dashboardLoadedMsg{data: data}
	}
}

func (a *App) loadTasks() tea.Cmd {
	a.busy = true
	ctx, svc := a.ctx, a.svc
	return func() tea.Msg {
		resp, err := svc.API.Tasks.List(ctx, models.TaskFilter{Limit: taskListLimit})
		if err != nil {
			return tasksLoadedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: resp.Tasks}
	}
}

func (a *App) login(msg forms.LoginMsg) tea.Cmd {
	ctx, store := a.ctx, a.svc.Session
	return func() tea.Msg {
		return loginDoneMsg{result: store.Login(ctx, msg.Username, msg.Password)}
	}
}

func (a *App) changePassword(msg forms.PasswordMsg) tea.Cmd {
	ctx, store := a.ctx, a.svc.Session
	return func() tea.Msg {
		return passwordDoneMsg{result: store.ChangePassword(ctx, msg.Old, msg.New)}
	}
}

func (a *App) createBranch(req models.CreateBranchRequest) tea.Cmd {
	ctx, svc := a.ctx, a.svc
	return func() tea.Msg {
		resp, err := svc.API.Branches.CreateBranch(ctx, req)
		if err != nil {
			return branchCreatedMsg{branch: req.NewBranchName, err: err}
		}
		return branchCreatedMsg{branch: req.NewBranchName, result: &resp.Data}
	}
}

func (a *App) cancelTask(id string) tea.Cmd {
	ctx, svc := a.ctx, a.svc
	return func() tea.Msg {
		resp, err := svc.API.Tasks.Cancel(ctx, id)
		if err == nil {
			svc.Notices.Notify(notify.LevelInfo, firstNonEmpty(resp.Message, "Task cancelled"))
		}
		return taskCancelledMsg{err: err}
	}
}

// verify checks the restored session against the backend. An expired token
// makes the request pipeline clear the session and return to the root view.
func (a *App) verify() tea.Cmd {
	ctx, store := a.ctx, a.svc.Session
	return func() tea.Msg {
		return verifiedMsg{err: store.Verify(ctx)}
	}
}

func describeBranch(name string, r *models.CreateBranchResult) string {
	if r == nil {
		return fmt.Sprintf("Branch %s created", name)
	}
	created := 0
	for _, s := range r.Submodules {
		if s.Status == "created" {
			created++
		}
	}
	if !r.HasSubmodules {
		return fmt.Sprintf("Branch %s created", name)
	}
	return fmt.Sprintf("Branch %s created with %d of %d submodules", name, created, len(r.Submodules))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.viewLogin()
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			styles.Panel.Width(menuWidth).Render(a.menu.View()),
			styles.ActivePanel.Width(a.contentWidth()).Render(a.viewContent()),
		)
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewLogin() string {
	var sb strings.Builder
	if a.busy {
		sb.WriteString(a.spinner.View() + " Signing in...")
	} else if a.form != nil {
		sb.WriteString(a.form.View())
	}
	if a.err != "" {
		sb.WriteString("\n" + styles.StatusCritical.Render(a.err))
	}
	return styles.ActivePanel.Render(sb.String())
}

func (a *App) viewContent() string {
	if a.busy && a.form != nil {
		return a.spinner.View() + " Working..."
	}

	var sb strings.Builder
	switch a.screen {
	case ScreenDashboard:
		if a.dashboard != nil {
			sb.WriteString(a.dashboard.View())
		} else {
			sb.WriteString(a.spinner.View() + " Loading statistics...")
		}
	case ScreenTasks:
		if a.tasks != nil {
			sb.WriteString(a.tasks.View())
		} else {
			sb.WriteString(a.spinner.View() + " Loading tasks...")
		}
	case ScreenSettings, ScreenBranchCreate:
		if a.form != nil {
			sb.WriteString(a.form.View())
		}
	case ScreenNotFound:
		sb.WriteString(styles.Title.Render("Not Found"))
		sb.WriteString("\nNo view at " + a.route.Target)
	default:
		sb.WriteString(styles.Title.Render(a.route.Title()))
		if hint, ok := commandHints[a.route.Target]; ok {
			sb.WriteString("\nThis view is available from the command line:\n\n  ")
			sb.WriteString(styles.KeyStyle.Render(hint))
		}
	}
	if a.err != "" {
		sb.WriteString("\n" + styles.StatusCritical.Render(a.err))
	}
	return sb.String()
}

// contentWidth is the width of the pane right of the menu
func (a *App) contentWidth() int {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width - menuWidth - 10
}

// contentHeight leaves room for the frame, panel borders and padding
func (a *App) contentHeight() int {
	return a.height - 8
}

// frameWidth clamps the terminal width for header and footer
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("GitLab Insight"))

	rightText := ""
	if a.svc.Session.IsLoggedIn() {
		user := a.svc.Session.Username()
		if a.svc.Session.IsAdmin() {
			user += " (admin)"
		}
		rightText = " " + contextStyle.Render(icons.User.String()+" "+user) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮")
}

// renderFooter shows keyboard shortcuts and the latest notification
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var shortcuts []string
	switch {
	case a.form != nil && a.screen == ScreenLogin:
		shortcuts = []string{"Enter Submit", "Esc Quit"}
	case a.form != nil:
		shortcuts = []string{"Enter Submit", "Esc Cancel"}
	case a.screen == ScreenTasks:
		shortcuts = []string{"↑↓ Navigate", "Tab Focus", "c Cancel", "r Refresh", "L Logout", "q Quit"}
	default:
		shortcuts = []string{"↑↓ Navigate", "Enter Open", "r Refresh", "L Logout", "q Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if n, ok := a.svc.Notices.Last(); ok {
		rightText = " " + styles.Notice(n) + " "
	} else if !a.lastUpdate.IsZero() {
		rightText = " " + labelStyle.Render("Updated "+a.lastUpdate.Format("15:04:05")) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, svc Services) error {
	p := tea.NewProgram(
		New(ctx, svc),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
