package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/learnhub-api/internal/application/auth"
	"github.com/learnhub-api/internal/config"
	"github.com/learnhub-api/internal/infrastructure/cache"
	"github.com/learnhub-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/learnhub-api/internal/infrastructure/jwt"
	"github.com/learnhub-api/internal/infrastructure/smtp"
	"github.com/learnhub-api/internal/pkg/otp"
	"github.com/learnhub-api/internal/pkg/ratelimit"
	"github.com/learnhub-api/internal/transport/http/handler"
	appmiddleware "github.com/learnhub-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	Cache       cache.Store
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		Mailer:      deps.Mailer,
		VerifyOTP:   otp.NewManager(deps.Cache, otp.ScopeVerify),
		ResetOTP:    otp.NewManager(deps.Cache, otp.ScopeReset),
		JWTProvider: deps.JWTProvider,
		OTPTTL:      cfg.OTPTTL,
	})
	limiter := ratelimit.NewLimiter(deps.Cache)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, limiter, cfg)
	userH := handler.NewUserHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public routes (no auth)
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/resend-otp", authH.ResendOTP)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.Post("/refresh", authH.Refresh)
			r.With(sensitiveRL.Limit).Post("/forgot-password", authH.ForgotPassword)
			r.With(sensitiveRL.Limit).Post("/reset-password", authH.ResetPassword)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/me", userH.Me)
		})
	})

	return r
}
