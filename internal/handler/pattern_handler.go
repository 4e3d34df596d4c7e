package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/downloads"
	"freequilt/internal/app/hub"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/resp"
)

// HandleListPatterns lists the catalog. A non-empty q searches titles and
// descriptions and takes precedence over category.
func HandleListPatterns(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		term := strings.TrimSpace(query.Get("q"))
		category := query.Get("category")

		if len(term) > hub.MaxSearchTermBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var patterns []catalog.Pattern
		switch {
		case term != "":
			patterns = deps.Catalog.Search(term)
		case category != "":
			patterns = deps.Catalog.FilterByCategory(category)
		default:
			patterns = deps.Catalog.All()
		}
		if patterns == nil {
			patterns = []catalog.Pattern{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"patterns": patterns,
			"total":    len(patterns),
		})
	}
}

func HandleGetPattern(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pattern, ok := deps.Catalog.Get(chi.URLParam(r, "id"))
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrPatternNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"pattern":      pattern,
			"instructions": deps.Catalog.Instructions(),
			"materials":    deps.Catalog.Materials(),
		})
	}
}

func HandleListCategories(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"categories": deps.Catalog.Categories(),
		})
	}
}

// HandleDownloadPattern records a download and returns the ticket the page
// uses to fetch the file.
func HandleDownloadPattern(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket, err := deps.Downloads.Download(r.Context(), namespace(r), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"ticket":       ticket,
			"notification": withID(downloads.Started(ticket.Title)),
		})
	}
}

// HandleListDownloads returns the profile's download log.
func HandleListDownloads(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := deps.Downloads.History(r.Context(), namespace(r))
		if err != nil {
			logx.Error(err, "list_downloads: store read failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"downloads": entries})
	}
}
