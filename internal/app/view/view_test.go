package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/prefstore"
)

const testNamespace = "prf_view"

type fixture struct {
	store prefstore.Store
	dir   *directory.Directory
	index *catalog.Index
	pages Pages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := prefstore.NewMemoryStore()
	index := catalog.MustLoad()
	return &fixture{
		store: store,
		dir:   directory.New(store, directory.Options{BcryptCost: bcrypt.MinCost}),
		index: index,
		pages: DefaultPages(index.IDs(), []string{"tetris-tumble", "dresden-delight", "modern-angle", "jelly-roll"}),
	}
}

func (f *fixture) sync(page string) *Synchronizer {
	return NewSynchronizer(testNamespace, f.pages.Lookup(page), f.dir, f.index, f.store)
}

func (f *fixture) signIn(t *testing.T) *directory.User {
	t.Helper()
	user, err := f.dir.Register(context.Background(), testNamespace, directory.RegisterInput{
		FirstName:       "Grace",
		LastName:        "Hopper",
		Email:           "grace@example.com",
		Username:        "grace",
		Password:        "cobolrules",
		ConfirmPassword: "cobolrules",
		SkillLevel:      directory.SkillAdvanced,
		AgreeTerms:      true,
	})
	require.NoError(t, err)
	return user
}

func TestDisclosure(t *testing.T) {
	tests := []struct {
		name   string
		start  bool
		event  DisclosureEvent
		want   DisclosureState
		change bool
	}{
		{"trigger opens", false, EventTrigger, Open, true},
		{"trigger closes", true, EventTrigger, Closed, true},
		{"close control", true, EventClose, Closed, true},
		{"outside click", true, EventOutside, Closed, true},
		{"nav link", true, EventNavigate, Closed, true},
		{"close when closed", false, EventClose, Closed, false},
		{"unknown event", true, DisclosureEvent("hover"), Open, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Disclosure{open: tt.start}
			assert.Equal(t, tt.change, d.Apply(tt.event))
			assert.Equal(t, tt.want, d.State())
		})
	}

	var d Disclosure
	assert.Equal(t, Closed, d.State())
	assert.True(t, d.Show())
	assert.False(t, d.Show())
	assert.False(t, DisclosureEvent("hover").Valid())
}

func TestCounterValue(t *testing.T) {
	c := NewCounter(24)

	assert.Equal(t, 0, c.Value(0))
	assert.Equal(t, 12, c.Value(750*time.Millisecond))
	assert.Equal(t, 24, c.Value(1500*time.Millisecond))
	assert.Equal(t, 24, c.Value(time.Hour))
	assert.Equal(t, 5, Counter{Target: 5}.Value(0))
}

func TestCounterRun(t *testing.T) {
	c := Counter{Target: 10, Duration: 20 * time.Millisecond}

	var values []int
	require.NoError(t, c.Run(context.Background(), time.Millisecond, func(v int) {
		values = append(values, v)
	}))

	require.NotEmpty(t, values)
	assert.Equal(t, 10, values[len(values)-1])
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
}

func TestCounterRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	err := Counter{Target: 10, Duration: time.Hour}.Run(ctx, time.Hour, func(int) { calls++ })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPages_LookupFallsBackToHome(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, PageHome, f.pages.Lookup("nowhere").Name())
	assert.Equal(t, PageDashboard, f.pages.Lookup(PageDashboard).Name())
	assert.False(t, f.pages.Lookup(PageDashboard).Has(SurfaceAuthLinks))
}

func TestSyncSession_SignedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	patch, err := f.sync(PageHome).SyncSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, patch.Auth)
	assert.True(t, *patch.Auth.AuthLinks)
	assert.False(t, *patch.Auth.UserMenu)
	assert.False(t, *patch.Auth.LogoutButtons)
	assert.Len(t, patch.Favorites, f.index.Len())
	for id, active := range patch.Favorites {
		assert.False(t, active, id)
	}

	dash, err := f.sync(PageDashboard).SyncSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, dash.Auth)
	assert.Nil(t, dash.Auth.AuthLinks)
	assert.True(t, *dash.Auth.LogoutButtons)
}

func TestSyncSession_SignedIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signIn(t)

	_, err := f.dir.AddFavorite(ctx, testNamespace, "tetris-tumble")
	require.NoError(t, err)

	patch, err := f.sync(PageHome).SyncSession(ctx)
	require.NoError(t, err)

	assert.False(t, *patch.Auth.AuthLinks)
	assert.True(t, *patch.Auth.UserMenu)
	assert.True(t, *patch.Auth.LogoutButtons)
	assert.Equal(t, "Grace Hopper", patch.Auth.DisplayName)
	assert.True(t, patch.Favorites["tetris-tumble"])
	assert.False(t, patch.Favorites["jelly-roll"])
}

func TestSurfacesAbsent_NoPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bare := NewSynchronizer(testNamespace, NewStaticPage("bare", nil), f.dir, f.index, f.store)

	patch, err := bare.SyncSession(ctx)
	require.NoError(t, err)
	assert.True(t, patch.Empty())

	assert.True(t, bare.Search("quilt").Empty())
	assert.True(t, bare.Filter("quilts").Empty())
	assert.True(t, bare.OpenPattern("tetris-tumble").Empty())
	assert.True(t, bare.Menu(MenuMobile, EventTrigger).Empty())

	theme, err := bare.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.True(t, theme.Empty())

	prefs, err := prefstore.LoadUIPreferences(ctx, f.store, testNamespace)
	require.NoError(t, err)
	assert.Equal(t, prefstore.ThemeDark, prefs.Theme)
}

func TestSearchAndFilter_DecoupledReset(t *testing.T) {
	f := newFixture(t)
	s := f.sync(PageHome)

	filtered := s.Filter("table-runners")
	require.NotNil(t, filtered.Grid)
	assert.Equal(t, []string{"mini-charmer", "sunshine-runner", "tulip-tango", "sapphire-topper"}, filtered.Grid.Visible)
	assert.Equal(t, "table-runners", filtered.Grid.ActiveFilter)

	// A search replaces the filtered set and keeps the active button.
	searched := s.Search("TETRIS")
	assert.Equal(t, []string{"tetris-tumble"}, searched.Grid.Visible)
	assert.Equal(t, "table-runners", searched.Grid.ActiveFilter)
	assert.Equal(t, "TETRIS", searched.Grid.Term)

	all := s.Search("")
	assert.Len(t, all.Grid.Visible, f.index.Len())

	none := s.Filter("blankets")
	assert.Empty(t, none.Grid.Visible)
	assert.NotNil(t, none.Grid.Visible)
}

func TestSearch_LimitedToRenderedCards(t *testing.T) {
	f := newFixture(t)
	page := NewStaticPage("favorites", []string{"jelly-roll", "modern-angle"}, SurfacePatternGrid)
	s := NewSynchronizer(testNamespace, page, f.dir, f.index, f.store)

	assert.Equal(t, []string{"jelly-roll", "modern-angle"}, s.Filter(catalog.AllCategories).Grid.Visible)
	assert.Empty(t, s.Search("tetris").Grid.Visible)
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sync(PageHome)

	_, _, err := s.ToggleFavorite(ctx, "tetris-tumble")
	assert.ErrorIs(t, err, directory.ErrNoSession)

	f.signIn(t)

	patch, result, err := s.ToggleFavorite(ctx, "tetris-tumble")
	require.NoError(t, err)
	assert.Equal(t, directory.FavoriteAdded, result)
	assert.Equal(t, map[string]bool{"tetris-tumble": true}, patch.Favorites)

	patch, result, err = s.ToggleFavorite(ctx, "tetris-tumble")
	require.NoError(t, err)
	assert.Equal(t, directory.FavoriteRemoved, result)
	assert.Equal(t, map[string]bool{"tetris-tumble": false}, patch.Favorites)

	patch, result, err = s.ToggleFavorite(ctx, "no-such-pattern")
	require.NoError(t, err)
	assert.Zero(t, result)
	assert.True(t, patch.Empty())
}

func TestModal(t *testing.T) {
	f := newFixture(t)
	s := f.sync(PageHome)

	assert.True(t, s.OpenPattern("no-such-pattern").Empty())
	assert.Empty(t, s.ModalPattern())

	patch := s.OpenPattern("tetris-tumble")
	require.NotNil(t, patch.Modal)
	assert.Equal(t, Open, patch.Modal.State)
	assert.True(t, patch.Modal.ScrollLocked)
	require.NotNil(t, patch.Modal.Content)
	assert.Equal(t, "Tetris Tumble Quilt", patch.Modal.Content.Title)
	assert.Equal(t, f.index.Instructions(), patch.Modal.Content.Instructions)
	assert.Equal(t, f.index.Materials(), patch.Modal.Content.Materials)
	assert.Equal(t, "tetris-tumble", s.ModalPattern())

	// The trigger only opens through OpenPattern.
	assert.True(t, s.CloseModal(EventTrigger).Empty())

	closed := s.CloseModal(EventOutside)
	require.NotNil(t, closed.Modal)
	assert.Equal(t, &ModalPatch{State: Closed}, closed.Modal)
	assert.Empty(t, s.ModalPattern())

	assert.True(t, s.CloseModal(EventClose).Empty())

	// Opening another pattern while open swaps the content.
	s.OpenPattern("tetris-tumble")
	swapped := s.OpenPattern("jelly-roll")
	assert.Equal(t, "jelly-roll", swapped.Modal.Content.PatternID)
}

func TestMenus(t *testing.T) {
	f := newFixture(t)
	s := f.sync(PageHome)

	assert.Equal(t, map[Menu]DisclosureState{MenuMobile: Open}, s.Menu(MenuMobile, EventTrigger).Menus)
	assert.Equal(t, map[Menu]DisclosureState{MenuMobile: Closed}, s.Menu(MenuMobile, EventNavigate).Menus)
	assert.True(t, s.Menu(MenuMobile, EventOutside).Empty())

	// The home page has no sidebar.
	assert.True(t, s.Menu(MenuSidebar, EventTrigger).Empty())
	assert.False(t, f.sync(PageDashboard).Menu(MenuSidebar, EventTrigger).Empty())
}

func TestThemeAndDirection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sync(PageHome)

	patch, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefstore.ThemeDark, patch.Theme)

	patch, err = s.ToggleDirection(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefstore.DirectionRTL, patch.Direction)

	prefs, err := s.SyncPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, Patch{Theme: prefstore.ThemeDark, Direction: prefstore.DirectionRTL}, prefs)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signIn(t)

	s := f.sync(PageHome)
	s.Filter("accessories")
	s.OpenPattern("touring-tote")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, prefstore.ThemeLight, snap.Theme)
	assert.Equal(t, prefstore.DirectionLTR, snap.Direction)
	assert.Equal(t, "Grace Hopper", snap.Auth.DisplayName)
	assert.Equal(t, "accessories", snap.Grid.ActiveFilter)
	assert.Equal(t, []string{"sewing-undercover", "monogram-hanger", "touring-tote", "casserole-cover"}, snap.Grid.Visible)
	assert.Equal(t, Open, snap.Modal.State)
	want := map[Menu]DisclosureState{MenuMobile: Closed, MenuUserDropdown: Closed}
	if diff := cmp.Diff(want, snap.Menus); diff != "" {
		t.Errorf("menus mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchMerge(t *testing.T) {
	a := Patch{Theme: prefstore.ThemeDark, Favorites: map[string]bool{"a": true}}
	b := Patch{Direction: prefstore.DirectionRTL, Favorites: map[string]bool{"b": false}}

	merged := a.Merge(b)
	assert.Equal(t, prefstore.ThemeDark, merged.Theme)
	assert.Equal(t, prefstore.DirectionRTL, merged.Direction)
	assert.Equal(t, map[string]bool{"a": true, "b": false}, merged.Favorites)
	assert.Equal(t, map[string]bool{"a": true}, a.Favorites)

	assert.True(t, Patch{}.Empty())
	assert.False(t, merged.Empty())
}

func TestSynchronizer_ConcurrentUse(t *testing.T) {
	f := newFixture(t)
	s := f.sync(PageHome)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Search("quilt")
			} else {
				s.Filter("quilts")
			}
			s.Menu(MenuUserDropdown, EventTrigger)
		}(i)
	}
	wg.Wait()

	_, err := s.Snapshot(context.Background())
	require.NoError(t, err)
}

func TestFavoriteNotice(t *testing.T) {
	n, ok := FavoriteNotice(directory.FavoriteAdded)
	require.True(t, ok)
	assert.Equal(t, "Added to favorites!", n.Message)

	n, ok = FavoriteNotice(directory.FavoriteAlreadyPresent)
	require.True(t, ok)
	assert.Equal(t, "Already in favorites", n.Message)

	_, ok = FavoriteNotice(directory.FavoriteNotPresent)
	assert.False(t, ok)
}
