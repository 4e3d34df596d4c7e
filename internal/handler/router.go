/*
Package handler provides the HTTP handlers and routing setup for the pattern site server.

This file defines the main Router, applying middleware like logging, CORS,
profile extraction and IP-based rate limiting before delegating requests to
the API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"freequilt/internal/pkg/auth/jwt"
	"freequilt/internal/pkg/limiter"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/resp"
)

const (
	AuthRate     = 0.2
	AuthBurst    = 10
	ConnectRate  = 1
	ConnectBurst = 20
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter("auth", rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter("ws", rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TabHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		logx.Info("Health check endpoint hit")

		data := map[string]any{
			"status":   "ok",
			"service":  "Free Quilt Server",
			"channels": deps.Hub.Len(),
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.ProfileExtractorMiddleware(deps.Config.JWTSecret))

		api.Post("/profile", HandleCreateProfile(deps))

		api.Route("/patterns", func(patterns chi.Router) {
			patterns.Get("/", HandleListPatterns(deps))
			patterns.Get("/categories", HandleListCategories(deps))
			patterns.Get("/{id}", HandleGetPattern(deps))
			patterns.With(jwt.RequireProfile, originMiddleware).
				Post("/{id}/download", HandleDownloadPattern(deps))
		})

		api.Group(func(profile chi.Router) {
			profile.Use(jwt.RequireProfile)
			profile.Use(originMiddleware)

			profile.Get("/prefs", HandleGetPreferences(deps))
			profile.Post("/prefs/theme/toggle", HandleToggleTheme(deps))
			profile.Post("/prefs/direction/toggle", HandleToggleDirection(deps))

			profile.Route("/auth", func(auth chi.Router) {
				auth.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
				auth.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))
				auth.Post("/logout", HandleLogout(deps))
				auth.Get("/session", HandleGetSession(deps))
			})

			profile.Route("/user", func(user chi.Router) {
				user.Post("/profile", HandleUpdateUserProfile(deps))
				user.Post("/favorites/{id}", HandleAddFavorite(deps))
				user.Delete("/favorites/{id}", HandleRemoveFavorite(deps))
				user.Get("/export", HandleExportUserData(deps))
			})

			profile.Get("/downloads", HandleListDownloads(deps))

			profile.Route("/dashboard", func(dash chi.Router) {
				dash.Get("/", HandleGetDashboard(deps))
				dash.Post("/events", HandleEventAction(deps))
				dash.Post("/actions", HandleQuickAction(deps))
			})
		})
	})

	r.With(connectLimiter.Middleware, jwt.ProfileExtractorMiddleware(deps.Config.JWTSecret)).
		Get("/ws", HandleWebSocket(deps, wsUpgrader))

	return r
}
