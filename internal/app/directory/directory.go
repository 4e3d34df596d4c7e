/*
Package directory implements the mock member directory: the user collection
shared by every profile and the single active session of each profile.

Both live in the preference store. The collection is the users key of the
site namespace; a profile's session is a reference in its currentUser key,
resolved against the collection on every read.
*/
package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"freequilt/internal/app/prefstore"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
)

var (
	// ErrNoSession is returned by operations that need a signed-in member.
	ErrNoSession = errors.New("directory: no active session")

	// ErrFlowInProgress is returned when a login or registration for the
	// same profile is still waiting on its simulated latency.
	ErrFlowInProgress = errors.New("directory: login or registration already in progress")
)

// Options tune the simulated backend.
type Options struct {
	// LoginLatency and RegisterLatency emulate a remote call before the
	// credentials are checked or the account is created.
	LoginLatency    time.Duration
	RegisterLatency time.Duration

	// Sleep waits for d or until ctx ends. Defaults to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// BcryptCost is the hashing cost for new passwords.
	BcryptCost int
}

// DefaultOptions returns the latencies of the original sign-in pages.
func DefaultOptions() Options {
	return Options{
		LoginLatency:    1500 * time.Millisecond,
		RegisterLatency: 2000 * time.Millisecond,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// Directory is stateless over its store apart from the in-flight flow guard.
type Directory struct {
	store prefstore.Store
	opts  Options

	mu       sync.Mutex
	inflight map[string]struct{}

	logger zerolog.Logger
}

// New creates a Directory over store.
func New(store prefstore.Store, opts Options) *Directory {
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	return &Directory{
		store:    store,
		opts:     opts,
		inflight: make(map[string]struct{}),
		logger:   logx.Component("directory"),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginFlow marks a login or registration for namespace as running.
func (d *Directory) beginFlow(namespace string) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inflight[namespace]; busy {
		return nil, ErrFlowInProgress
	}
	d.inflight[namespace] = struct{}{}

	return func() {
		d.mu.Lock()
		delete(d.inflight, namespace)
		d.mu.Unlock()
	}, nil
}

// Users returns the whole collection.
func (d *Directory) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := prefstore.GetJSON(ctx, d.store, prefstore.SiteNamespace, prefstore.KeyUsers, &users)
	if errors.Is(err, prefstore.ErrNotFound) {
		return []User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// Register validates in, waits the registration latency, appends the new
// member and signs it in on namespace.
func (d *Directory) Register(ctx context.Context, namespace string, in RegisterInput) (*User, error) {
	in.normalize()

	users, err := d.Users(ctx)
	if err != nil {
		return nil, err
	}

	if fields := validateRegistration(in, users); len(fields) > 0 {
		return nil, fields
	}

	done, err := d.beginFlow(namespace)
	if err != nil {
		return nil, err
	}
	defer done()

	hash, err := hashPassword(in.Password, d.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := d.opts.Sleep(ctx, d.opts.RegisterLatency); err != nil {
		return nil, err
	}

	var created User
	err = prefstore.UpdateJSON(ctx, d.store, prefstore.SiteNamespace, prefstore.KeyUsers, func(users *[]User, _ bool) error {
		// The collection may have changed during the latency.
		var fields errs.FieldErrors
		uniquenessErrors(&fields, in, *users)
		if len(fields) > 0 {
			return fields
		}

		now := d.opts.Now().UTC()
		created = User{
			ID:           nextID(now, *users),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			Username:     in.Username,
			PasswordHash: string(hash),
			SkillLevel:   in.SkillLevel,
			Newsletter:   in.Newsletter,
			CreatedAt:    now,
			Stats:        Stats{JoinDate: now},
			Favorites:    []string{},
			Downloads:    []DownloadEntry{},
		}

		*users = append(*users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := d.startSession(ctx, namespace, &created); err != nil {
		return nil, err
	}

	d.logger.Info().Int64("user_id", created.ID).Str("namespace", namespace).Msg("Member registered")

	return created.Public(), nil
}

// passwordDigest hex-encodes SHA-256 of password so inputs of any length
// fit within bcrypt's 72-byte limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

func hashPassword(password string, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword(passwordDigest(password), cost)
}

// checkPassword reports a mismatch between hash and the supplied password.
func checkPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordDigest(password))
}

// nextID returns max(now in ms, largest id + 1) so ids stay unique and
// increasing even when two registrations share a millisecond.
func nextID(now time.Time, users []User) int64 {
	id := now.UnixMilli()
	for i := range users {
		if users[i].ID >= id {
			id = users[i].ID + 1
		}
	}
	return id
}

// Login checks the form, waits the login latency and signs the member in on
// namespace. remember is stored only when set.
func (d *Directory) Login(ctx context.Context, namespace, email, password string, remember bool) (*User, error) {
	email = strings.TrimSpace(email)

	if fields := validateLogin(email, password); len(fields) > 0 {
		return nil, fields
	}

	done, err := d.beginFlow(namespace)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := d.opts.Sleep(ctx, d.opts.LoginLatency); err != nil {
		return nil, err
	}

	users, err := d.Users(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(users, func(u User) bool { return u.Email == email })
	if idx < 0 || checkPassword(users[idx].PasswordHash, password) != nil {
		var fields errs.FieldErrors
		fields.Add(FieldEmail, MsgInvalidLogin)
		fields.Add(FieldPassword, MsgInvalidLogin)
		return nil, fields
	}

	user := users[idx]
	if err := d.startSession(ctx, namespace, &user); err != nil {
		return nil, err
	}

	if remember {
		if err := prefstore.SetJSON(ctx, d.store, namespace, prefstore.KeyRememberMe, true); err != nil {
			return nil, err
		}
	}

	d.logger.Info().Int64("user_id", user.ID).Str("namespace", namespace).Msg("Member signed in")

	return user.Public(), nil
}

func (d *Directory) startSession(ctx context.Context, namespace string, u *User) error {
	ref := SessionRef{
		UserID:    u.ID,
		Username:  u.Username,
		StartedAt: d.opts.Now().UTC(),
	}
	return prefstore.SetJSON(ctx, d.store, namespace, prefstore.KeyCurrentUser, ref)
}

// Logout clears the session and the remember flag of namespace. The member
// stays in the collection.
func (d *Directory) Logout(ctx context.Context, namespace string) error {
	if err := d.store.Delete(ctx, namespace, prefstore.KeyCurrentUser); err != nil {
		return err
	}
	return d.store.Delete(ctx, namespace, prefstore.KeyRememberMe)
}

// Session returns the session reference of namespace, or nil when signed out.
func (d *Directory) Session(ctx context.Context, namespace string) (*SessionRef, error) {
	var ref SessionRef
	err := prefstore.GetJSON(ctx, d.store, namespace, prefstore.KeyCurrentUser, &ref)
	if errors.Is(err, prefstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CurrentUser resolves the session of namespace. It returns nil, nil when
// nobody is signed in or the referenced member no longer exists.
func (d *Directory) CurrentUser(ctx context.Context, namespace string) (*User, error) {
	ref, err := d.Session(ctx, namespace)
	if err != nil || ref == nil {
		return nil, err
	}

	users, err := d.Users(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(users, func(u User) bool { return u.ID == ref.UserID })
	if idx < 0 {
		return nil, nil
	}
	return users[idx].Public(), nil
}

// RememberMe reports whether the profile asked to stay signed in.
func (d *Directory) RememberMe(ctx context.Context, namespace string) (bool, error) {
	var remember bool
	err := prefstore.GetJSON(ctx, d.store, namespace, prefstore.KeyRememberMe, &remember)
	if errors.Is(err, prefstore.ErrNotFound) {
		return false, nil
	}
	return remember, err
}

// updateSessionUser applies fn to the signed-in member of namespace inside
// one atomic update of the collection. fn may return prefstore.ErrNoChange.
func (d *Directory) updateSessionUser(ctx context.Context, namespace string, fn func(u *User) error) (*User, error) {
	ref, err := d.Session(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrNoSession
	}

	var updated User
	err = prefstore.UpdateJSON(ctx, d.store, prefstore.SiteNamespace, prefstore.KeyUsers, func(users *[]User, _ bool) error {
		idx := slices.IndexFunc(*users, func(u User) bool { return u.ID == ref.UserID })
		if idx < 0 {
			return ErrNoSession
		}

		u := &(*users)[idx]
		fnErr := fn(u)
		updated = *u
		return fnErr
	})
	if err != nil {
		return nil, err
	}

	return updated.Public(), nil
}

// UpdateProfile merges the non-nil fields of patch into the signed-in member.
func (d *Directory) UpdateProfile(ctx context.Context, namespace string, patch ProfilePatch) (*User, error) {
	if fields := validatePatch(patch); len(fields) > 0 {
		return nil, fields
	}

	return d.updateSessionUser(ctx, namespace, func(u *User) error {
		if patch.FirstName != nil {
			u.FirstName = strings.TrimSpace(*patch.FirstName)
		}
		if patch.LastName != nil {
			u.LastName = strings.TrimSpace(*patch.LastName)
		}
		if patch.SkillLevel != nil {
			u.SkillLevel = *patch.SkillLevel
		}
		if patch.Newsletter != nil {
			u.Newsletter = *patch.Newsletter
		}
		if patch.Profile != nil {
			u.Profile = *patch.Profile
		}
		return nil
	})
}

// AddFavorite adds patternID to the favorites of the signed-in member.
func (d *Directory) AddFavorite(ctx context.Context, namespace, patternID string) (FavoriteResult, error) {
	result := FavoriteAlreadyPresent

	_, err := d.updateSessionUser(ctx, namespace, func(u *User) error {
		// Backends may run fn more than once.
		result = FavoriteAlreadyPresent
		if u.HasFavorite(patternID) {
			return prefstore.ErrNoChange
		}
		u.Favorites = append(u.Favorites, patternID)
		u.Stats.Favorites = len(u.Favorites)
		result = FavoriteAdded
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// RemoveFavorite removes patternID from the favorites of the signed-in member.
func (d *Directory) RemoveFavorite(ctx context.Context, namespace, patternID string) (FavoriteResult, error) {
	result := FavoriteNotPresent

	_, err := d.updateSessionUser(ctx, namespace, func(u *User) error {
		result = FavoriteNotPresent
		idx := slices.Index(u.Favorites, patternID)
		if idx < 0 {
			return prefstore.ErrNoChange
		}
		u.Favorites = slices.Delete(u.Favorites, idx, idx+1)
		u.Stats.Favorites = len(u.Favorites)
		result = FavoriteRemoved
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// RecordDownload appends patternID to the download log of the signed-in
// member and bumps the download counter.
func (d *Directory) RecordDownload(ctx context.Context, namespace, patternID string) (*User, error) {
	return d.updateSessionUser(ctx, namespace, func(u *User) error {
		u.Downloads = append(u.Downloads, DownloadEntry{
			PatternID: patternID,
			Timestamp: d.opts.Now().UTC(),
		})
		u.Stats.PatternsDownloaded++
		return nil
	})
}
