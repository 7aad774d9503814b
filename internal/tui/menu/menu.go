// ABOUTME: Navigation menu listing the routed views
// ABOUTME: Marks admin-only views for non-admin users and emits the chosen path

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gitlab-insight/insight/internal/router"
	"github.com/gitlab-insight/insight/internal/tui/icons"
	"github.com/gitlab-insight/insight/internal/tui/styles"
)

// SelectedMsg is sent when the user picks a view
type SelectedMsg struct {
	Path string
}

// Item is one entry of the menu
type Item struct {
	Path    string
	Title   string
	Icon    icons.Icon
	Locked  bool // admin-only view shown to a non-admin
	Current bool
}

// Menu is the view list shown next to the active screen
type Menu struct {
	items  []Item
	cursor int
}

// New builds the menu from the route table. The public home view is left
// out; admin-only views are marked locked unless isAdmin.
func New(isAdmin bool) *Menu {
	var items []Item
	for _, route := range router.Routes() {
		m := router.Resolve(route.Path)
		if !m.RequiresAuth() {
			continue
		}
		leaf := m.Leaf()
		items = append(items, Item{
			Path:   route.Path,
			Title:  leaf.Title,
			Icon:   icons.For(leaf.Icon),
			Locked: m.RequiresAdmin() && !isAdmin,
		})
	}
	return &Menu{items: items}
}

// Items returns the menu entries
func (m *Menu) Items() []Item {
	return m.items
}

// Cursor returns the highlighted index
func (m *Menu) Cursor() int {
	return m.cursor
}

// SetCurrent marks the entry for path as the active view and moves the
// cursor onto it
func (m *Menu) SetCurrent(path string) {
	for i := range m.items {
		m.items[i].Current = m.items[i].Path == path
		if m.items[i].Current {
			m.cursor = i
		}
	}
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		path := m.items[m.cursor].Path
		return m, func() tea.Msg { return SelectedMsg{Path: path} }
	}
	return m, nil
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.App.String() + " Views"))
	sb.WriteString("\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		label := item.Icon.String() + " " + item.Title
		switch {
		case item.Locked:
			label = styles.Disabled.Render(label) + " " + icons.Lock.String()
		case i == m.cursor:
			label = styles.Selected.Render(label)
		}
		if item.Current {
			label += " •"
		}
		sb.WriteString(cursor + label + "\n")
	}
	return sb.String()
}
