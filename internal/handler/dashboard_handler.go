package handler

import (
	"net/http"

	"freequilt/internal/app/dashboard"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/req"
	"freequilt/internal/pkg/resp"
)

// HandleGetDashboard assembles the dashboard of the signed-in member.
func HandleGetDashboard(deps *AppDeps) http.HandlerFunc {
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

		resp.RespondSuccess(w, r, dashboard.Build(user))
	}
}

type EventActionInput struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// HandleEventAction confirms a Join, Register or Remind Me click on an event.
func HandleEventAction(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input EventActionInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		notice, ok := dashboard.EventAction(input.Action, input.Title)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"notice": notice})
	}
}

type QuickActionInput struct {
	Action string `json:"action"`
}

// HandleQuickAction resolves a quick action card to a page or a notice.
func HandleQuickAction(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input QuickActionInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, ok := dashboard.QuickAction(input.Action)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}
