/*
Package view keeps the visible state of one tab consistent with the member
directory and the pattern catalog. It owns no data: every operation reads
the current session from the directory and answers with a Patch limited to
the surfaces the tab's page actually renders.
*/
package view

import (
	"context"
	"sync"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/prefstore"
)

// Directory is the part of the member directory the synchronizer needs.
type Directory interface {
	CurrentUser(ctx context.Context, namespace string) (*directory.User, error)
	AddFavorite(ctx context.Context, namespace, patternID string) (directory.FavoriteResult, error)
	RemoveFavorite(ctx context.Context, namespace, patternID string) (directory.FavoriteResult, error)
}

// Synchronizer holds the per-tab presentation state: visible cards, the
// active filter, the modal and the menus.
type Synchronizer struct {
	namespace string
	page      Page
	surfaces  map[Surface]bool
	cards     []string

	dir   Directory
	index *catalog.Index
	store prefstore.Store

	mu           sync.Mutex
	visible      []string
	activeFilter string
	term         string
	modal        Disclosure
	modalPattern string
	menus        map[Menu]*Disclosure
}

// NewSynchronizer creates the synchronizer of one tab showing page for the
// profile namespace. The page's surfaces are queried once here.
func NewSynchronizer(namespace string, page Page, dir Directory, index *catalog.Index, store prefstore.Store) *Synchronizer {
	s := &Synchronizer{
		namespace:    namespace,
		page:         page,
		surfaces:     make(map[Surface]bool),
		cards:        page.Cards(),
		dir:          dir,
		index:        index,
		store:        store,
		activeFilter: catalog.AllCategories,
		menus:        make(map[Menu]*Disclosure),
	}

	for _, surface := range []Surface{
		SurfaceAuthLinks, SurfaceUserMenu, SurfaceUserDropdown, SurfaceLogoutButtons,
		SurfaceMobileMenu, SurfaceSidebar, SurfacePatternGrid, SurfaceSearch, SurfaceFilters,
		SurfaceFavorites, SurfaceModal, SurfaceTheme, SurfaceDirection, SurfaceStats,
	} {
		if page.Has(surface) {
			s.surfaces[surface] = true
		}
	}

	for _, m := range []Menu{MenuMobile, MenuUserDropdown, MenuSidebar} {
		if s.surfaces[m.surface()] {
			s.menus[m] = &Disclosure{}
		}
	}

	s.visible = append([]string(nil), s.cards...)

	return s
}

// Page returns the page of the tab.
func (s *Synchronizer) Page() Page {
	return s.page
}

func (s *Synchronizer) has(surface Surface) bool {
	return s.surfaces[surface]
}

// Snapshot returns the complete state of every surface of the page.
func (s *Synchronizer) Snapshot(ctx context.Context) (Patch, error) {
	var patch Patch

	if s.has(SurfaceTheme) || s.has(SurfaceDirection) {
		prefs, err := prefstore.LoadUIPreferences(ctx, s.store, s.namespace)
		if err != nil {
			return Patch{}, err
		}
		patch = patch.Merge(s.prefsPatch(prefs))
	}

	session, err := s.SyncSession(ctx)
	if err != nil {
		return Patch{}, err
	}
	patch = patch.Merge(session)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.has(SurfacePatternGrid) {
		patch.Grid = s.gridLocked()
	}

	if s.has(SurfaceModal) {
		patch.Modal = s.modalLocked()
	}

	if len(s.menus) > 0 {
		patch.Menus = make(map[Menu]DisclosureState, len(s.menus))
		for m, d := range s.menus {
			patch.Menus[m] = d.State()
		}
	}

	return patch, nil
}

// SyncPreferences returns the theme and direction patch.
func (s *Synchronizer) SyncPreferences(ctx context.Context) (Patch, error) {
	if !s.has(SurfaceTheme) && !s.has(SurfaceDirection) {
		return Patch{}, nil
	}
	prefs, err := prefstore.LoadUIPreferences(ctx, s.store, s.namespace)
	if err != nil {
		return Patch{}, err
	}
	return s.prefsPatch(prefs), nil
}

func (s *Synchronizer) prefsPatch(prefs prefstore.UIPreferences) Patch {
	var patch Patch
	if s.has(SurfaceTheme) {
		patch.Theme = prefs.Theme
	}
	if s.has(SurfaceDirection) {
		patch.Direction = prefs.Direction
	}
	return patch
}

// SyncSession recomputes the session-dependent chrome and favorite buttons.
func (s *Synchronizer) SyncSession(ctx context.Context) (Patch, error) {
	user, err := s.dir.CurrentUser(ctx, s.namespace)
	if err != nil {
		return Patch{}, err
	}

	var patch Patch
	if auth := s.authPatch(user); auth != nil {
		patch.Auth = auth
	}

	if s.has(SurfaceFavorites) && len(s.cards) > 0 {
		patch.Favorites = make(map[string]bool, len(s.cards))
		for _, id := range s.cards {
			patch.Favorites[id] = user != nil && user.HasFavorite(id)
		}
	}

	return patch, nil
}

// authPatch shows identity controls for a session and sign-in links
// otherwise. Logout buttons stay visible on the dashboard when signed out.
func (s *Synchronizer) authPatch(user *directory.User) *AuthPatch {
	signedIn := user != nil
	auth := &AuthPatch{}
	touched := false

	if s.has(SurfaceAuthLinks) {
		auth.AuthLinks = boolPtr(!signedIn)
		touched = true
	}

	if s.has(SurfaceUserMenu) {
		auth.UserMenu = boolPtr(signedIn)
		if signedIn {
			auth.DisplayName = user.FullName()
		}
		touched = true
	}

	if s.has(SurfaceLogoutButtons) {
		auth.LogoutButtons = boolPtr(signedIn || s.page.Name() == PageDashboard)
		touched = true
	}

	if !touched {
		return nil
	}
	return auth
}

// Search shows the rendered cards whose title or description contain term.
// The active filter button is left as it is; the result replaces whatever
// the last filter showed.
func (s *Synchronizer) Search(term string) Patch {
	if !s.has(SurfacePatternGrid) {
		return Patch{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.term = term
	s.visible = catalog.IDsOf(s.index.SearchWithin(s.cards, term))

	return Patch{Grid: s.gridLocked()}
}

// Filter shows the rendered cards of category and marks its button active.
// The result replaces whatever the last search showed.
func (s *Synchronizer) Filter(category string) Patch {
	if !s.has(SurfacePatternGrid) {
		return Patch{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.has(SurfaceFilters) {
		s.activeFilter = category
	}
	s.visible = catalog.IDsOf(s.index.FilterWithin(s.cards, category))

	return Patch{Grid: s.gridLocked()}
}

func (s *Synchronizer) gridLocked() *GridPatch {
	return &GridPatch{
		Visible:      append([]string{}, s.visible...),
		ActiveFilter: s.activeFilter,
		Term:         s.term,
	}
}

// ToggleFavorite flips the favorite state of patternID for the signed-in
// member and returns the patch for that one button. Unknown patterns are
// ignored. Without a session it returns directory.ErrNoSession.
func (s *Synchronizer) ToggleFavorite(ctx context.Context, patternID string) (Patch, directory.FavoriteResult, error) {
	if _, ok := s.index.Get(patternID); !ok {
		return Patch{}, 0, nil
	}

	user, err := s.dir.CurrentUser(ctx, s.namespace)
	if err != nil {
		return Patch{}, 0, err
	}
	if user == nil {
		return Patch{}, 0, directory.ErrNoSession
	}

	var result directory.FavoriteResult
	if user.HasFavorite(patternID) {
		result, err = s.dir.RemoveFavorite(ctx, s.namespace, patternID)
	} else {
		result, err = s.dir.AddFavorite(ctx, s.namespace, patternID)
	}
	if err != nil {
		return Patch{}, 0, err
	}

	if !s.has(SurfaceFavorites) {
		return Patch{}, result, nil
	}

	active := result == directory.FavoriteAdded || result == directory.FavoriteAlreadyPresent
	return Patch{Favorites: map[string]bool{patternID: active}}, result, nil
}

// OpenPattern fills the shared modal with patternID and opens it with
// background scrolling locked. An unknown id changes nothing.
func (s *Synchronizer) OpenPattern(patternID string) Patch {
	if !s.has(SurfaceModal) {
		return Patch{}
	}

	if _, ok := s.index.Get(patternID); !ok {
		return Patch{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.modal.Show()
	s.modalPattern = patternID

	return Patch{Modal: s.modalLocked()}
}

// CloseModal applies a closing event to the modal. The trigger event does
// not apply: the modal only opens through OpenPattern.
func (s *Synchronizer) CloseModal(e DisclosureEvent) Patch {
	if !s.has(SurfaceModal) || e == EventTrigger {
		return Patch{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modal.Apply(e) {
		return Patch{}
	}
	return Patch{Modal: s.modalLocked()}
}

// ModalPattern returns the pattern shown in the modal, or "" when closed.
func (s *Synchronizer) ModalPattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modal.IsOpen() {
		return ""
	}
	return s.modalPattern
}

func (s *Synchronizer) modalLocked() *ModalPatch {
	if !s.modal.IsOpen() {
		return &ModalPatch{State: Closed}
	}

	patch := &ModalPatch{State: Open, ScrollLocked: true}
	if p, ok := s.index.Get(s.modalPattern); ok {
		patch.Content = &ModalContent{
			PatternID:    p.ID,
			Image:        p.Image,
			Title:        p.Title,
			Description:  p.Description,
			Instructions: s.index.Instructions(),
			Materials:    s.index.Materials(),
		}
	}
	return patch
}

// Menu applies e to menu m. Menus the page does not render are ignored.
func (s *Synchronizer) Menu(m Menu, e DisclosureEvent) Patch {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.menus[m]
	if !ok || !d.Apply(e) {
		return Patch{}
	}
	return Patch{Menus: map[Menu]DisclosureState{m: d.State()}}
}

// ToggleTheme flips the profile theme.
func (s *Synchronizer) ToggleTheme(ctx context.Context) (Patch, error) {
	theme, err := prefstore.ToggleTheme(ctx, s.store, s.namespace)
	if err != nil {
		return Patch{}, err
	}
	if !s.has(SurfaceTheme) {
		return Patch{}, nil
	}
	return Patch{Theme: theme}, nil
}

// ToggleDirection flips the profile text direction.
func (s *Synchronizer) ToggleDirection(ctx context.Context) (Patch, error) {
	direction, err := prefstore.ToggleDirection(ctx, s.store, s.namespace)
	if err != nil {
		return Patch{}, err
	}
	if !s.has(SurfaceDirection) {
		return Patch{}, nil
	}
	return Patch{Direction: direction}, nil
}
