/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleWebSocket, which validates the profile token and tab
parameters, upgrades the HTTP connection to WebSocket and hands the
connection to the hub.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"freequilt/internal/pkg/auth/jwt"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/randx"
	"freequilt/internal/pkg/resp"
)

// Query parameters of the WebSocket endpoint. The token travels in
// jwt.TokenQueryParam.
const (
	TabQueryParam  = "tab"
	PageQueryParam = "page"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := jwt.ProfileID(r)
		if profileID == "" {
			logx.Warn("WebSocket request rejected: missing or invalid profile token")
			resp.RespondError(w, r, errs.NewError(errs.ErrProfileRequired))
			return
		}

		query := r.URL.Query()
		tabID := query.Get(TabQueryParam)
		if tabID == "" {
			tabID = randx.TabID()
		} else if !randx.IsValidTabID(tabID) {
			logx.Warn("WebSocket request rejected: invalid tab id", "profile_id", profileID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		page := query.Get(PageQueryParam)

		logx.Info("Attempting to upgrade connection", "profile_id", profileID, "tab_id", tabID, "page", page)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket connection established", "profile_id", profileID, "tab_id", tabID)

		deps.Hub.Serve(conn, profileID, tabID, page)
	}
}
