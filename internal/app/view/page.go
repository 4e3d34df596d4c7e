package view

import "slices"

// Surface is an optional region of a page that the synchronizer may update.
type Surface string

const (
	SurfaceAuthLinks     Surface = "authLinks"
	SurfaceUserMenu      Surface = "userMenu"
	SurfaceUserDropdown  Surface = "userDropdown"
	SurfaceLogoutButtons Surface = "logoutButtons"
	SurfaceMobileMenu    Surface = "mobileMenu"
	SurfaceSidebar       Surface = "sidebar"
	SurfacePatternGrid   Surface = "patternGrid"
	SurfaceSearch        Surface = "search"
	SurfaceFilters       Surface = "filters"
	SurfaceFavorites     Surface = "favorites"
	SurfaceModal         Surface = "modal"
	SurfaceTheme         Surface = "theme"
	SurfaceDirection     Surface = "direction"
	SurfaceStats         Surface = "stats"
)

// Page names.
const (
	PageHome      = "home"
	PageDashboard = "dashboard"
	PageLogin     = "login"
	PageRegister  = "register"
)

// Page describes which surfaces a page renders and which pattern cards it shows.
type Page interface {
	Name() string
	Has(s Surface) bool
	Cards() []string
}

// StaticPage is a Page with a fixed surface set.
type StaticPage struct {
	name     string
	cards    []string
	surfaces map[Surface]bool
}

// NewStaticPage creates a page rendering cards and the given surfaces.
func NewStaticPage(name string, cards []string, surfaces ...Surface) *StaticPage {
	p := &StaticPage{
		name:     name,
		cards:    slices.Clone(cards),
		surfaces: make(map[Surface]bool, len(surfaces)),
	}
	for _, s := range surfaces {
		p.surfaces[s] = true
	}
	return p
}

func (p *StaticPage) Name() string       { return p.name }
func (p *StaticPage) Has(s Surface) bool { return p.surfaces[s] }
func (p *StaticPage) Cards() []string    { return slices.Clone(p.cards) }

// Pages is a registry of the site's pages by name.
type Pages map[string]Page

// DefaultPages builds the site's pages. The home page shows every catalog
// card; the dashboard shows its favorites cards.
func DefaultPages(catalogIDs, dashboardFavorites []string) Pages {
	chrome := []Surface{
		SurfaceAuthLinks, SurfaceUserMenu, SurfaceUserDropdown, SurfaceLogoutButtons,
		SurfaceMobileMenu, SurfaceTheme, SurfaceDirection,
	}

	with := func(extra ...Surface) []Surface {
		return append(slices.Clone(chrome), extra...)
	}

	return Pages{
		PageHome: NewStaticPage(PageHome, catalogIDs,
			with(SurfacePatternGrid, SurfaceSearch, SurfaceFilters, SurfaceFavorites, SurfaceModal)...),
		PageDashboard: NewStaticPage(PageDashboard, dashboardFavorites,
			SurfaceUserMenu, SurfaceUserDropdown, SurfaceLogoutButtons, SurfaceMobileMenu,
			SurfaceSidebar, SurfaceFavorites, SurfaceStats, SurfaceTheme, SurfaceDirection),
		PageLogin:    NewStaticPage(PageLogin, nil, with()...),
		PageRegister: NewStaticPage(PageRegister, nil, with()...),
	}
}

// Lookup returns the named page, falling back to the home page.
func (p Pages) Lookup(name string) Page {
	if page, ok := p[name]; ok {
		return page
	}
	return p[PageHome]
}
