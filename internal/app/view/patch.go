package view

import (
	"maps"

	"freequilt/internal/app/prefstore"
)

// Menu names a disclosure other than the modal.
type Menu string

const (
	MenuMobile       Menu = "mobileMenu"
	MenuUserDropdown Menu = "userDropdown"
	MenuSidebar      Menu = "sidebar"
)

// surface returns the page surface rendering m.
func (m Menu) surface() Surface {
	switch m {
	case MenuMobile:
		return SurfaceMobileMenu
	case MenuUserDropdown:
		return SurfaceUserDropdown
	case MenuSidebar:
		return SurfaceSidebar
	}
	return ""
}

// Patch is a set of updates to apply to the surfaces of one tab. Absent
// fields leave the surface as it is.
type Patch struct {
	Theme     prefstore.Theme          `json:"theme,omitempty"`
	Direction prefstore.Direction      `json:"direction,omitempty"`
	Auth      *AuthPatch               `json:"auth,omitempty"`
	Grid      *GridPatch               `json:"grid,omitempty"`
	Favorites map[string]bool          `json:"favorites,omitempty"`
	Modal     *ModalPatch              `json:"modal,omitempty"`
	Menus     map[Menu]DisclosureState `json:"menus,omitempty"`
}

// AuthPatch sets the visibility of the session-dependent chrome.
type AuthPatch struct {
	AuthLinks     *bool  `json:"authLinks,omitempty"`
	UserMenu      *bool  `json:"userMenu,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	LogoutButtons *bool  `json:"logoutButtons,omitempty"`
}

// GridPatch lists the visible pattern cards in page order.
type GridPatch struct {
	Visible      []string `json:"visible"`
	ActiveFilter string   `json:"activeFilter"`
	Term         string   `json:"term"`
}

// ModalPatch describes the shared pattern modal.
type ModalPatch struct {
	State        DisclosureState `json:"state"`
	ScrollLocked bool            `json:"scrollLocked"`
	Content      *ModalContent   `json:"content,omitempty"`
}

// ModalContent fills the modal for one pattern.
type ModalContent struct {
	PatternID    string   `json:"patternId"`
	Image        string   `json:"image"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Instructions []string `json:"instructions"`
	Materials    []string `json:"materials"`
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Theme == "" && p.Direction == "" && p.Auth == nil && p.Grid == nil &&
		len(p.Favorites) == 0 && p.Modal == nil && len(p.Menus) == 0
}

// Merge overlays other onto p. Fields set in other win.
func (p Patch) Merge(other Patch) Patch {
	if other.Theme != "" {
		p.Theme = other.Theme
	}
	if other.Direction != "" {
		p.Direction = other.Direction
	}
	if other.Auth != nil {
		p.Auth = other.Auth
	}
	if other.Grid != nil {
		p.Grid = other.Grid
	}
	if other.Modal != nil {
		p.Modal = other.Modal
	}
	if len(other.Favorites) > 0 {
		merged := maps.Clone(p.Favorites)
		if merged == nil {
			merged = make(map[string]bool, len(other.Favorites))
		}
		maps.Copy(merged, other.Favorites)
		p.Favorites = merged
	}
	if len(other.Menus) > 0 {
		merged := maps.Clone(p.Menus)
		if merged == nil {
			merged = make(map[Menu]DisclosureState, len(other.Menus))
		}
		maps.Copy(merged, other.Menus)
		p.Menus = merged
	}
	return p
}

func boolPtr(b bool) *bool {
	return &b
}
