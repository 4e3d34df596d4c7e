package prefstore

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"freequilt/internal/app/db"
	"freequilt/internal/pkg/randx"
)

func nextChange(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

// runStoreContract exercises the behaviour every backend shares.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	ns := "test_" + randx.MessageID()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, ns, "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, ns, "theme", []byte(`"dark"`)))

		raw, err := s.Get(ctx, ns, "theme")
		require.NoError(t, err)
		assert.JSONEq(t, `"dark"`, string(raw))

		require.NoError(t, s.Delete(ctx, ns, "theme"))
		_, err = s.Get(ctx, ns, "theme")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, s.Delete(ctx, ns, "theme"))
	})

	t.Run("events carry origin and skip no-ops", func(t *testing.T) {
		sub := s.Feed().Subscribe(16, ns)
		defer sub.Close()

		tabCtx := WithOrigin(ctx, "tab_a")
		require.NoError(t, s.Set(tabCtx, ns, "direction", []byte(`"rtl"`)))

		c := nextChange(t, sub)
		assert.Equal(t, ns, c.Namespace)
		assert.Equal(t, "direction", c.Key)
		assert.Equal(t, "tab_a", c.Origin)
		assert.JSONEq(t, `"rtl"`, string(c.Value))

		require.NoError(t, s.Delete(ctx, ns, "missing"))
		require.NoError(t, s.Update(ctx, ns, "direction", func([]byte, bool) ([]byte, error) {
			return nil, ErrNoChange
		}))
		require.NoError(t, s.Delete(ctx, ns, "direction"))

		c = nextChange(t, sub)
		assert.Equal(t, "direction", c.Key)
		assert.True(t, c.Deleted())
		assert.Empty(t, c.Origin)
	})

	t.Run("update returning nil deletes", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, ns, "rememberMe", []byte(`true`)))
		require.NoError(t, s.Update(ctx, ns, "rememberMe", func(current []byte, exists bool) ([]byte, error) {
			assert.True(t, exists)
			return nil, nil
		}))
		_, err := s.Get(ctx, ns, "rememberMe")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update propagates errors without writing", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.Update(ctx, ns, "users", func([]byte, bool) ([]byte, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		_, err = s.Get(ctx, ns, "users")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent updates are atomic", func(t *testing.T) {
		const workers = 20

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := UpdateJSON(ctx, s, ns, "counter", func(n *int, _ bool) error {
					*n++
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		var n int
		require.NoError(t, GetJSON(ctx, s, ns, "counter", &n))
		assert.Equal(t, workers, n)
	})

	t.Run("ui preferences", func(t *testing.T) {
		prefs, err := LoadUIPreferences(ctx, s, ns)
		require.NoError(t, err)
		assert.Equal(t, UIPreferences{Theme: ThemeLight, Direction: DirectionLTR}, prefs)

		theme, err := ToggleTheme(ctx, s, ns)
		require.NoError(t, err)
		assert.Equal(t, ThemeDark, theme)

		direction, err := ToggleDirection(ctx, s, ns)
		require.NoError(t, err)
		assert.Equal(t, DirectionRTL, direction)

		prefs, err = LoadUIPreferences(ctx, s, ns)
		require.NoError(t, err)
		assert.Equal(t, UIPreferences{Theme: ThemeDark, Direction: DirectionRTL}, prefs)

		theme, err = ToggleTheme(ctx, s, ns)
		require.NoError(t, err)
		assert.Equal(t, ThemeLight, theme)
	})
}

func TestMemoryStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewMemoryStore()
	defer s.Close()

	runStoreContract(t, s)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte(`"light"`)
	require.NoError(t, s.Set(ctx, "p", "theme", value))
	value[1] = 'X'

	raw, err := s.Get(ctx, "p", "theme")
	require.NoError(t, err)
	raw[1] = 'Y'

	raw, err = s.Get(ctx, "p", "theme")
	require.NoError(t, err)
	assert.Equal(t, `"light"`, string(raw))
}

func TestMemoryStore_UnrecognizedPreferencesFallBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "p", KeyTheme, []byte(`"sepia"`)))
	require.NoError(t, s.Set(ctx, "p", KeyDirection, []byte(`"ttb"`)))

	prefs, err := LoadUIPreferences(ctx, s, "p")
	require.NoError(t, err)
	assert.Equal(t, UIPreferences{Theme: ThemeLight, Direction: DirectionLTR}, prefs)

	theme, err := ToggleTheme(ctx, s, "p")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PREFSTORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PREFSTORE_TEST_DATABASE_URL not set")
	}

	pool, err := db.NewPool(context.Background(), dsn)
	require.NoError(t, err)

	s := NewPostgresStore(pool)
	defer s.Close()

	runStoreContract(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("PREFSTORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PREFSTORE_TEST_REDIS_ADDR not set")
	}
	dbIndex, _ := strconv.Atoi(os.Getenv("PREFSTORE_TEST_REDIS_DB"))

	s, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr, DB: dbIndex})
	require.NoError(t, err)
	defer s.Close()

	runStoreContract(t, s)
}

func TestRedisStore_WatchRelaysOtherInstances(t *testing.T) {
	addr := os.Getenv("PREFSTORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PREFSTORE_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer, err := NewRedisStore(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer writer.Close()

	reader, err := NewRedisStore(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer reader.Close()

	ns := "test_" + randx.MessageID()
	sub := reader.Feed().Subscribe(4, ns)
	defer sub.Close()

	done := make(chan error, 1)
	go func() { done <- reader.Watch(ctx) }()

	// The subscription is asynchronous; keep writing until the reader sees it.
	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, writer.Set(WithOrigin(ctx, "tab_w"), ns, KeyTheme, []byte(`"dark"`)))
		select {
		case c := <-sub.C():
			assert.Equal(t, KeyTheme, c.Key)
			assert.Equal(t, "tab_w", c.Origin)
			cancel()
			assert.NoError(t, <-done)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("watcher never relayed the change")
		}
	}
}
