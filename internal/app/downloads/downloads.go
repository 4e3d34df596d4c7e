/*
Package downloads simulates pattern downloads: it logs every download in the
profile, credits the signed-in member and produces the file name and link the
browser should fetch.
*/
package downloads

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/notify"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/storage"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
)

// StartDelay is how long the page waits before starting the file transfer.
const StartDelay = time.Second

// Entry is one line of the profile download log.
type Entry struct {
	Pattern   string    `json:"pattern"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticket tells the page what to fetch.
type Ticket struct {
	PatternID  string          `json:"patternId"`
	Title      string          `json:"title"`
	FileName   string          `json:"fileName"`
	URL        string          `json:"url"`
	StartAfter int64           `json:"startAfterMs"`
	User       *directory.User `json:"user,omitempty"`
}

// Members credits downloads to the signed-in member.
type Members interface {
	RecordDownload(ctx context.Context, namespace, patternID string) (*directory.User, error)
}

// Service records downloads. Files may be nil, in which case tickets carry
// no URL.
type Service struct {
	store   prefstore.Store
	index   *catalog.Index
	members Members
	files   storage.StorageService
	now     func() time.Time
	logger  zerolog.Logger
}

// NewService creates a download service.
func NewService(store prefstore.Store, index *catalog.Index, members Members, files storage.StorageService) *Service {
	return &Service{
		store:   store,
		index:   index,
		members: members,
		files:   files,
		now:     time.Now,
		logger:  logx.Component("downloads"),
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName turns a pattern title into its PDF name, e.g.
// "Tetris Tumble Quilt" -> "tetris-tumble-quilt-pattern.pdf".
func FileName(title string) string {
	return strings.ToLower(whitespace.ReplaceAllString(title, "-")) + "-pattern.pdf"
}

// Started is the notification shown when a download begins.
func Started(title string) notify.Notification {
	return notify.Notification{
		Kind:    notify.KindSuccess,
		Title:   "Download Started!",
		Message: fmt.Sprintf("%s pattern is being downloaded...", title),
	}
}

// Download records a download of patternID in namespace and returns the
// ticket for it. Unknown patterns fail with ErrPatternNotFound.
func (s *Service) Download(ctx context.Context, namespace, patternID string) (*Ticket, error) {
	pattern, ok := s.index.Get(patternID)
	if !ok {
		return nil, errs.NewError(errs.ErrPatternNotFound)
	}

	ticket := &Ticket{
		PatternID:  pattern.ID,
		Title:      pattern.Title,
		FileName:   FileName(pattern.Title),
		StartAfter: StartDelay.Milliseconds(),
	}

	if s.files != nil {
		link, err := s.files.PresignDownload(ctx, storage.PatternKey(pattern.ID), storage.DownloadLinkExpiration)
		if err != nil {
			s.logger.Warn().Err(err).Str("pattern_id", pattern.ID).Msg("Download link unavailable")
			return nil, errs.NewError(errs.ErrDownloadUnavailable)
		}
		ticket.URL = link
	}

	// A failed credit leaves the profile log untouched.
	user, err := s.members.RecordDownload(ctx, namespace, pattern.ID)
	switch {
	case errors.Is(err, directory.ErrNoSession):
	case err != nil:
		return nil, err
	default:
		ticket.User = user
	}

	entry := Entry{Pattern: pattern.ID, Timestamp: s.now().UTC()}
	err = prefstore.UpdateJSON(ctx, s.store, namespace, prefstore.KeyPatternDownloads, func(log *[]Entry, _ bool) error {
		*log = append(*log, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("downloads: append log: %w", err)
	}

	s.logger.Debug().Str("namespace", namespace).Str("pattern_id", pattern.ID).Msg("Pattern downloaded")

	return ticket, nil
}

// History returns the download log of namespace, oldest first.
func (s *Service) History(ctx context.Context, namespace string) ([]Entry, error) {
	entries := []Entry{}
	err := prefstore.GetJSON(ctx, s.store, namespace, prefstore.KeyPatternDownloads, &entries)
	if err != nil && !errors.Is(err, prefstore.ErrNotFound) {
		return nil, err
	}
	return entries, nil
}
