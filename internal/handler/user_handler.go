package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"freequilt/internal/app/dashboard"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/notify"
	"freequilt/internal/app/view"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/req"
	"freequilt/internal/pkg/resp"
)

// HandleUpdateUserProfile merges the submitted fields into the signed-in member.
func HandleUpdateUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch directory.ProfilePatch
		if customErr := req.BindJSON(w, r, &patch); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Directory.UpdateProfile(r.Context(), namespace(r), patch)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": user})
	}
}

// FavoriteResponse reports a favorite change and the notice to show for it.
type FavoriteResponse struct {
	PatternID    string               `json:"patternId"`
	Result       string               `json:"result"`
	Favorite     bool                 `json:"favorite"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

func favoriteResponse(patternID string, result directory.FavoriteResult) FavoriteResponse {
	out := FavoriteResponse{
		PatternID: patternID,
		Result:    result.String(),
		Favorite:  result == directory.FavoriteAdded || result == directory.FavoriteAlreadyPresent,
	}
	if note, ok := view.FavoriteNotice(result); ok {
		out.Notification = withID(note)
	}
	return out
}

// HandleAddFavorite adds a catalog pattern to the member's favorites.
func HandleAddFavorite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patternID := chi.URLParam(r, "id")
		if _, ok := deps.Catalog.Get(patternID); !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrPatternNotFound))
			return
		}

		result, err := deps.Directory.AddFavorite(r.Context(), namespace(r), patternID)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, favoriteResponse(patternID, result))
	}
}

// HandleRemoveFavorite removes a pattern from the member's favorites.
// Removing a pattern that is not a favorite succeeds without a notice.
func HandleRemoveFavorite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patternID := chi.URLParam(r, "id")

		result, err := deps.Directory.RemoveFavorite(r.Context(), namespace(r), patternID)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, favoriteResponse(patternID, result))
	}
}

// HandleExportUserData sends the member's record as a JSON attachment.
func HandleExportUserData(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := deps.Directory.CurrentUser(r.Context(), namespace(r))
		if err != nil {
			respondErr(w, r, err)
			return
		}
		if user == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		export, err := dashboard.ExportUser(user, deps.now())
		if err != nil {
			logx.Error(err, "export_user_data: encoding failed", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(export.Data); err != nil {
			logx.Warn("export_user_data: write failed", "error", err)
		}
	}
}
