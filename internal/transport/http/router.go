package http

import (
	"net/http"

	"github.com/bowling-bff/internal/application/account"
	"github.com/bowling-bff/internal/application/verification"
	"github.com/bowling-bff/internal/config"
	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/transport/http/handler"
	appmiddleware "github.com/bowling-bff/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Store:      deps.OTPStore,
		Signer:     deps.Tickets,
		ReturnCode: cfg.OTPReturnToClient,
	})
	accountSvc := account.NewService(deps.Upstream)

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(verificationSvc)
	accountH := handler.NewAccountHandler(accountSvc)
	proxyH := handler.NewProxyHandler(deps.Upstream)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/otp/{action}", otpH.Action)

		// ── Ticket-gated account flows ───────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Ticket(deps.Tickets))

			r.With(appmiddleware.RequirePurpose(domain.PurposeSignup)).Post("/signup", accountH.Signup)
			r.With(appmiddleware.RequirePurpose(domain.PurposePasswordReset)).Post("/password-reset", accountH.ResetPassword)
		})

		// ── Upstream pass-through; upstream enforces its own auth ───────────
		r.HandleFunc("/api/*", proxyH.Forward)
	})

	return r
}
