package handler

import (
	"errors"
	"net/http"
	"time"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/downloads"
	"freequilt/internal/app/hub"
	"freequilt/internal/app/notify"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/storage"
	"freequilt/internal/configs"
	"freequilt/internal/pkg/auth/jwt"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/randx"
	"freequilt/internal/pkg/resp"
)

// TabHeader names the tab that issued a REST write, so the tab is not echoed
// its own storage event.
const TabHeader = "X-Tab-Id"

// AppDeps bundles everything the handlers need.
type AppDeps struct {
	Config    *configs.AppConfig
	Store     prefstore.Store
	Directory *directory.Directory
	Catalog   *catalog.Index
	Downloads *downloads.Service
	Hub       *hub.Manager

	// Storage is nil when S3 is not configured.
	Storage storage.StorageService

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// namespace returns the profile namespace of r. Routes using it sit behind
// jwt.RequireProfile.
func namespace(r *http.Request) string {
	return jwt.ProfileID(r)
}

// originMiddleware tags the request context with the writing tab.
func originMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ns := namespace(r)
		tab := r.Header.Get(TabHeader)
		if ns != "" && randx.IsValidTabID(tab) {
			r = r.WithContext(prefstore.WithOrigin(r.Context(), hub.Origin(ns, tab)))
		}
		next.ServeHTTP(w, r)
	})
}

// respondErr maps directory sentinels onto business codes before responding.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrNoSession):
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
	case errors.Is(err, directory.ErrFlowInProgress):
		resp.RespondError(w, r, errs.NewError(errs.ErrFlowInProgress))
	default:
		resp.RespondErr(w, r, err)
	}
}

// withID stamps a fixed notice with a fresh id so clients can tell repeats apart.
func withID(n notify.Notification) *notify.Notification {
	n.ID = randx.MessageID()
	return &n
}
