package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/handler"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/middleware"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
)

type Dependencies struct {
	Logger *slog.Logger

	AuthHandler   *handler.AuthHandler
	EventHandler  *handler.EventHandler
	RiddleHandler *handler.RiddleHandler
	BlogHandler   *handler.BlogHandler

	Guard       *middleware.SessionGuard
	AuthLimiter *middleware.RateLimiter
	APILimiter  *middleware.RateLimiter

	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int

	// Ready reports whether the datastore is reachable.
	Ready func(ctx context.Context) error
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   dep.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := dep.Ready(ctx); err != nil {
				dep.Logger.WarnContext(r.Context(), "readiness probe failed", "error", err.Error())
				response.Error(w, r, http.StatusServiceUnavailable, "NOT_READY", "datastore unreachable", nil)
				return
			}
		}
		response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready"})
	})

	guard := dep.Guard.Middleware()

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if dep.AuthLimiter != nil {
				r.Use(dep.AuthLimiter.Middleware())
			}
			r.Post("/register", dep.AuthHandler.Register)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/verify", dep.AuthHandler.VerifyCode)
			r.Post("/resend", dep.AuthHandler.ResendCode)
			r.Post("/refresh", dep.AuthHandler.Refresh)
			r.Post("/forgot-password", dep.AuthHandler.ForgotPassword)
			r.Post("/reset-password", dep.AuthHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(guard)
				r.Post("/logout", dep.AuthHandler.Logout)
				r.Get("/me", dep.AuthHandler.Me)
				r.Post("/institute-email", dep.AuthHandler.RequestInstituteVerification)
			})
		})

		r.Group(func(r chi.Router) {
			if dep.APILimiter != nil {
				r.Use(dep.APILimiter.Middleware())
			}

			r.Get("/events", dep.EventHandler.List)
			r.Get("/events/{event_id}", dep.EventHandler.Get)
			r.Get("/events/{event_id}/teams", dep.EventHandler.ListTeams)
			r.Get("/riddles", dep.RiddleHandler.List)
			r.Get("/leaderboard", dep.RiddleHandler.Leaderboard)
			r.Get("/blog", dep.BlogHandler.List)
			r.Get("/blog/{slug}", dep.BlogHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(guard)
				r.Post("/events/{event_id}/register", dep.EventHandler.RegisterSolo)
				r.Delete("/events/{event_id}/register", dep.EventHandler.UnregisterSolo)
				r.Post("/events/{event_id}/teams", dep.EventHandler.CreateTeam)
				r.Get("/events/{event_id}/team", dep.EventHandler.MyTeam)
				r.Post("/teams/{team_id}/join", dep.EventHandler.JoinTeam)
				r.Post("/teams/{team_id}/leave", dep.EventHandler.LeaveTeam)
				r.Post("/riddles/{riddle_id}/submit", dep.RiddleHandler.Submit)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/events", dep.EventHandler.Create)
					r.Put("/events/{event_id}", dep.EventHandler.Update)
					r.Delete("/events/{event_id}", dep.EventHandler.Delete)
					r.Post("/riddles", dep.RiddleHandler.Create)
					r.Post("/blog", dep.BlogHandler.Create)
					r.Put("/blog/{post_id}", dep.BlogHandler.Update)
					r.Delete("/blog/{post_id}", dep.BlogHandler.Delete)
				})
			})
		})
	})

	return r
}
