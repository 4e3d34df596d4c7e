package handler

import (
	"net/http"

	"freequilt/internal/app/directory"
	"freequilt/internal/app/notify"
	"freequilt/internal/app/view"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/req"
	"freequilt/internal/pkg/resp"
)

// Pages the browser moves to after the sign-in flows.
const (
	RedirectAfterSignIn  = "dashboard.html"
	RedirectAfterSignOut = "index.html"
)

// AuthResult is returned by register, login and logout.
type AuthResult struct {
	User         *directory.User      `json:"user,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Redirect     string               `json:"redirect"`
}

// checkExistingSession rejects sign-in attempts from a profile that already
// holds a session. It reports whether the handler may continue.
func checkExistingSession(deps *AppDeps, w http.ResponseWriter, r *http.Request) bool {
	user, err := deps.Directory.CurrentUser(r.Context(), namespace(r))
	if err != nil {
		logx.Error(err, "auth: session lookup failed")
		resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
		return false
	}
	if user != nil {
		resp.RespondErrorData(w, r, errs.NewError(errs.ErrAlreadyLoggedIn), AuthResult{
			User:     user,
			Redirect: RedirectAfterSignIn,
		})
		return false
	}
	return true
}

// HandleRegister validates the registration form, creates the member and
// signs it in on the profile.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !checkExistingSession(deps, w, r) {
			return
		}

		var input directory.RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Directory.Register(r.Context(), namespace(r), input)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, AuthResult{
			User:         user,
			Notification: withID(view.NoticeRegistered),
			Redirect:     RedirectAfterSignIn,
		})
	}
}

// LoginInput is the submitted sign-in form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// HandleLogin checks the credentials against the member collection.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !checkExistingSession(deps, w, r) {
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Directory.Login(r.Context(), namespace(r), input.Email, input.Password, input.Remember)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, AuthResult{
			User:         user,
			Notification: withID(view.NoticeLoggedIn),
			Redirect:     RedirectAfterSignIn,
		})
	}
}

// HandleLogout ends the session of the profile. Logging out without a
// session succeeds.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.Logout(r.Context(), namespace(r)); err != nil {
			logx.Error(err, "logout: store write failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		resp.RespondSuccess(w, r, AuthResult{
			Notification: withID(view.NoticeLoggedOut),
			Redirect:     RedirectAfterSignOut,
		})
	}
}

// HandleGetSession returns the signed-in member, or a null user.
func HandleGetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns := namespace(r)

		user, err := deps.Directory.CurrentUser(r.Context(), ns)
		if err != nil {
			logx.Error(err, "get_session: store read failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		remember, err := deps.Directory.RememberMe(r.Context(), ns)
		if err != nil {
			logx.Warn("get_session: remember flag unreadable", "error", err)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":       user,
			"rememberMe": remember,
		})
	}
}
