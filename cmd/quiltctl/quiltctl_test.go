package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"freequilt/internal/app/dashboard"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/storage"
	"freequilt/internal/configs"
)

const testProfile = "prf_abcdefABCDEF"

type fakeFiles struct {
	key         string
	contentType string
	body        []byte
}

func (f *fakeFiles) PresignDownload(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func (f *fakeFiles) Upload(_ context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.key, f.contentType, f.body = key, contentType, data
	return nil
}

func (f *fakeFiles) Delete(context.Context, string) error { return nil }

func (f *fakeFiles) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	if key != f.key {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, ContentType: f.contentType, ContentLength: int64(len(f.body))}, nil
}

func newTestApp(t *testing.T) (*app, *configs.AppConfig, *fakeFiles) {
	t.Helper()

	cfg := &configs.AppConfig{Environment: "development", StoreBackend: configs.StoreMemory}
	store := prefstore.NewMemoryStore()
	files := &fakeFiles{}

	a := &app{
		loadConfig: func() (*configs.AppConfig, error) { return cfg, nil },
		openStore: func(context.Context, *configs.AppConfig) (prefstore.Store, error) {
			return store, nil
		},
		openFiles: func(context.Context, *configs.AppConfig) (storage.StorageService, error) {
			return files, nil
		},
	}
	return a, cfg, files
}

func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	readPassword = func(int) ([]byte, error) {
		require.NotEmpty(t, passwords, "unexpected password prompt")
		pw := passwords[0]
		passwords = passwords[1:]
		return []byte(pw), nil
	}
}

func execute(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func registerAda(t *testing.T, a *app) {
	t.Helper()
	stubPasswords(t, "difference", "difference")

	out, _, err := execute(t, a, "user", "register",
		"--first-name", "Ada", "--last-name", "Lovelace",
		"--email", "ada@example.com", "--username", "ada1815",
		"--skill", "intermediate", "--profile", testProfile)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered ada1815")
	assert.Contains(t, out, testProfile)
}

func TestCatalogList(t *testing.T) {
	a, _, _ := newTestApp(t)

	out, _, err := execute(t, a, "catalog", "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ID"))
	assert.Contains(t, out, "dresden-delight")
	assert.Contains(t, out, "mini-charmer")

	out, _, err = execute(t, a, "catalog", "list", "--category", "table-runners")
	require.NoError(t, err)
	assert.Contains(t, out, "mini-charmer")
	assert.NotContains(t, out, "dresden-delight")
}

func TestCatalogSearch(t *testing.T) {
	a, _, _ := newTestApp(t)

	out, _, err := execute(t, a, "catalog", "search", "DRESDEN")
	require.NoError(t, err)
	assert.Contains(t, out, "Dresden Delight Quilt")

	out, _, err = execute(t, a, "catalog", "search", "no-such-thing")
	require.NoError(t, err)
	assert.Equal(t, "No patterns found.\n", out)

	_, _, err = execute(t, a, "catalog", "search")
	assert.Error(t, err)
}

func TestCatalogShow(t *testing.T) {
	a, _, _ := newTestApp(t)

	out, _, err := execute(t, a, "catalog", "show", "dresden-delight")
	require.NoError(t, err)
	assert.Contains(t, out, "Dresden Delight Quilt\n")
	assert.Contains(t, out, "Difficulty: Intermediate")
	assert.Contains(t, out, "  1. Gather all materials listed in the pattern")
	assert.Contains(t, out, "  - Coordinating thread")

	_, _, err = execute(t, a, "catalog", "show", "nope")
	assert.ErrorContains(t, err, `pattern "nope" not found`)
}

func TestUserRegisterAndList(t *testing.T) {
	a, _, _ := newTestApp(t)

	out, _, err := execute(t, a, "user", "list")
	require.NoError(t, err)
	assert.Equal(t, "No members registered.\n", out)

	registerAda(t, a)

	out, _, err = execute(t, a, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ada1815")
	assert.Contains(t, out, "Ada Lovelace")
	assert.NotContains(t, out, "$2a$")
}

func TestUserRegisterRejected(t *testing.T) {
	a, _, _ := newTestApp(t)
	stubPasswords(t, "difference", "different")

	_, stderr, err := execute(t, a, "user", "register",
		"--first-name", "Ada", "--last-name", "Lovelace",
		"--email", "ada@example.com", "--username", "ada1815")
	assert.EqualError(t, err, "registration rejected")
	assert.Contains(t, stderr, "confirmPassword: Passwords do not match")

	_, _, err = execute(t, a, "user", "register", "--email", "ada@example.com", "--username", "ada", "--profile", "bogus")
	assert.ErrorContains(t, err, "invalid profile id")
}

func TestDashboard(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, _, err := execute(t, a, "dashboard", "--profile", testProfile, "--animate", "never")
	assert.ErrorContains(t, err, "no member is signed in")

	registerAda(t, a)

	out, _, err := execute(t, a, "dashboard", "--profile", testProfile, "--animate", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Ada!\n")
	assert.Contains(t, out, "Ada Lovelace, Intermediate Quilter\n")
	assert.Contains(t, out, "Patterns downloaded: 0  Active projects: 3  Favorites: 0  Streak: 24 days\n")
	assert.Contains(t, out, "Dresden Delight Quilt")
}

func TestRenderStatsLive(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	stats := dashboard.Stats{PatternsDownloaded: 5, ActiveProjects: 3, Favorites: 2, StreakDays: 24}

	require.NoError(t, renderStats(context.Background(), &buf, stats, true, time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\rPatterns downloaded: 0"))
	assert.True(t, strings.HasSuffix(out, "\rPatterns downloaded: 5  Active projects: 3  Favorites: 2  Streak: 24 days\n"))
}

func TestRenderStatsCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := renderStats(ctx, &buf, dashboard.Stats{StreakDays: 24}, true, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPatternUpload(t *testing.T) {
	a, cfg, files := newTestApp(t)

	pdf := filepath.Join(t.TempDir(), "dresden.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7 test"), 0o600))

	_, _, err := execute(t, a, "pattern", "upload", "dresden-delight", pdf)
	assert.ErrorContains(t, err, "S3_BUCKET_NAME")

	cfg.S3BucketName = "patterns"

	out, _, err := execute(t, a, "pattern", "upload", "dresden-delight", pdf)
	require.NoError(t, err)
	assert.Equal(t, "patterns/dresden-delight.pdf", files.key)
	assert.Equal(t, "application/pdf", files.contentType)
	assert.Equal(t, "Uploaded patterns/dresden-delight.pdf (13 bytes) for \"Dresden Delight Quilt\"\n", out)

	_, _, err = execute(t, a, "pattern", "upload", "nope", pdf)
	assert.ErrorContains(t, err, `pattern "nope" not found`)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, _, err := execute(t, a, "migrate")
	assert.ErrorContains(t, err, "migrations apply to \"postgres\" only")
}
