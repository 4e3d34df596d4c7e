/*
Package handler provides the HTTP handlers of the pattern site API.

This file covers browser profiles and their appearance preferences.
*/
package handler

import (
	"net/http"

	"freequilt/internal/app/prefstore"
	"freequilt/internal/pkg/auth/jwt"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/randx"
	"freequilt/internal/pkg/resp"
)

// HandleCreateProfile issues a token for a new browser profile. Each profile
// is its own preference namespace, like the local storage of one browser.
func HandleCreateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := randx.ProfileID()
		if err != nil {
			logx.Error(err, "create_profile: id generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		token, err := jwt.GenerateToken(&jwt.Payload{ProfileID: profileID}, deps.Config.JWTSecret, jwt.ProfileTokenExpiration)
		if err != nil {
			logx.Error(err, "create_profile: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Browser profile created", "profile_id", profileID)

		resp.RespondSuccess(w, r, map[string]any{
			"token":     token,
			"profileId": profileID,
		})
	}
}

// HandleGetPreferences returns the theme and text direction of the profile.
func HandleGetPreferences(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := prefstore.LoadUIPreferences(r.Context(), deps.Store, namespace(r))
		if err != nil {
			logx.Error(err, "get_preferences: store read failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		resp.RespondSuccess(w, r, prefs)
	}
}

func HandleToggleTheme(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme, err := prefstore.ToggleTheme(r.Context(), deps.Store, namespace(r))
		if err != nil {
			logx.Error(err, "toggle_theme: store write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"theme": theme})
	}
}

func HandleToggleDirection(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		direction, err := prefstore.ToggleDirection(r.Context(), deps.Store, namespace(r))
		if err != nil {
			logx.Error(err, "toggle_direction: store write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"direction": direction})
	}
}
