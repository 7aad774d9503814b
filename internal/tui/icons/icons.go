// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Maps route icon names to glyphs for the menu and header

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	if env := os.Getenv("INSIGHT_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Views
	Home      = Icon{"󰋜", "⌂"} // nf-md-home
	Dashboard = Icon{"󰕮", "▦"} // nf-md-view_dashboard
	Repo      = Icon{"", "▣"} // nf-oct-repo
	Group     = Icon{"󰡉", "⬡"} // nf-md-account_group
	Branch    = Icon{"", "⑂"} // nf-oct-git_branch
	Rules     = Icon{"󰘬", "≡"} // nf-md-source_branch_check
	History   = Icon{"󰋚", "↺"} // nf-md-history
	Create    = Icon{"󰐕", "+"} // nf-md-plus
	Logs      = Icon{"󰌱", "☰"} // nf-md-text_box
	Tasks     = Icon{"󰄲", "☑"} // nf-md-checkbox_marked
	Settings  = Icon{"󰒓", "⚙"} // nf-md-cog
	Todo      = Icon{"󰄬", "✎"} // nf-md-check
	Content   = Icon{"󰈙", "▤"} // nf-md-file_document
	Lock      = Icon{"󰌾", "⊘"} // nf-md-lock

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
	User    = Icon{"󰀄", "☺"} // nf-md-account

	App = Icon{"", "◈"} // nf-dev-gitlab
)

var byName = map[string]Icon{
	"home":      Home,
	"dashboard": Dashboard,
	"repo":      Repo,
	"group":     Group,
	"branch":    Branch,
	"rules":     Rules,
	"history":   History,
	"create":    Create,
	"logs":      Logs,
	"tasks":     Tasks,
	"settings":  Settings,
	"todo":      Todo,
	"content":   Content,
	"warning":   Warning,
}

// For returns the icon registered under name, or Info when unknown
func For(name string) Icon {
	if i, ok := byName[name]; ok {
		return i
	}
	return Info
}
