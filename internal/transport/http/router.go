package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-library-cms/internal/config"
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/transport/http/handler"
	appmiddleware "github.com/go-library-cms/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// background sweep of the login throttle.
func NewRouter(ctx context.Context, cfg *config.Config, svcs *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	loginThrottle := appmiddleware.NewIPThrottle(ctx, rate.Limit(cfg.LoginThrottleRPS), cfg.LoginThrottleBurst, svcs.Limiter)

	healthH := handler.NewHealthHandler(svcs.Health)
	authH := handler.NewAuthHandler(svcs.Auth)
	userH := handler.NewUserHandler(svcs.User)
	articleH := handler.NewArticleHandler(svcs.Article)
	auditH := handler.NewAuditHandler(svcs.Audit)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Group(func(r chi.Router) {
		// Identity first so the limiter can key on the username.
		r.Use(appmiddleware.Authenticate(svcs.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(loginThrottle.Limit)
			r.Use(appmiddleware.RateLimit(svcs.Limiter))

			r.Post("/login", authH.Login)
			r.Post("/verify-otp", authH.VerifyOTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RateLimit(svcs.Limiter))
			r.Use(appmiddleware.RequireAuth)

			r.Get("/articles", articleH.List)
			r.Post("/articles", articleH.Create)
			r.Put("/articles/{id}", articleH.Update)
			r.Delete("/articles/{id}", articleH.Delete)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleSuperAdmin))

				r.Post("/users/register", userH.Register)
				r.Get("/users", userH.List)
				r.Put("/users/{id}", userH.Update)
				r.Delete("/users/{id}", userH.Delete)
				r.Get("/audit/logs", auditH.List)
			})
		})
	})

	return r
}
