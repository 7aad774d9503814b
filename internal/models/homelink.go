// ABOUTME: Home page link configuration types
// ABOUTME: Links are grouped into documentation groups and platform links

package models

// HomeLink is one configurable link on the landing page
type HomeLink struct {
	ID          int    `json:"id,omitempty"`
	Category    string `json:"category"`
	GroupName   string `json:"group_name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	IP          string `json:"ip,omitempty"`
	Port        string `json:"port,omitempty"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// HomeLinkGroup is a titled group of documentation links
type HomeLinkGroup struct {
	GroupName  string     `json:"group_name"`
	GroupTitle string     `json:"group_title"`
	Links      []HomeLink `json:"links"`
}

// HomeLinks is the data of GET /home-links
type HomeLinks struct {
	DocLinks      []HomeLinkGroup `json:"doc_links"`
	PlatformLinks []HomeLink      `json:"platform_links"`
}

// LinkOrder sets the sort position of one link
type LinkOrder struct {
	ID        int `json:"id"`
	SortOrder int `json:"sort_order"`
}
