package http

import (
	"net/http"

	"github.com/empower-api/internal/application/admin"
	"github.com/empower-api/internal/application/auth"
	"github.com/empower-api/internal/application/bank"
	"github.com/empower-api/internal/application/investment"
	"github.com/empower-api/internal/application/transaction"
	"github.com/empower-api/internal/config"
	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/transport/http/handler"
	appmiddleware "github.com/empower-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

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

	// Typed nil awareness: only hand the signer interface a provider that
	// actually exists.
	var userSigner auth.TokenSigner
	var adminSigner admin.TokenSigner
	if deps.JWTProvider != nil {
		userSigner = deps.JWTProvider
		adminSigner = deps.JWTProvider
	}

	authSvc := auth.NewService(deps.UserRepo, deps.ChallengeRepo, deps.SMSSender, userSigner, deps.PhoneEmail, cfg.OTPTTL)
	investSvc := investment.NewService(deps.UserRepo, deps.InvestmentRepo, deps.S3Store, deps.Events)
	txSvc := transaction.NewService(deps.UserRepo, deps.LedgerRepo, deps.Events)
	bankSvc := bank.NewService(deps.UserRepo, deps.BankDetailRepo)
	adminSvc := admin.NewService(deps.UserRepo, deps.InvestmentRepo, deps.SettingsRepo, deps.S3Store, adminSigner, deps.Events, cfg.AdminAccessKey)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	investH := handler.NewInvestmentHandler(investSvc)
	txH := handler.NewTransactionHandler(txSvc)
	bankH := handler.NewBankHandler(bankSvc)
	adminH := handler.NewAdminHandler(adminSvc)

	// Admin routes are unreachable without a working token provider.
	adminMw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"admin access unavailable"}`))
		})
	}
	if deps.JWTProvider != nil {
		adminMw = appmiddleware.Auth(deps.JWTProvider)
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/auth", func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/register", authH.Register)
		r.Post("/verify-otp", authH.VerifyOTP)
		r.Post("/setup-mpin", authH.SetupMPIN)
		r.Post("/login-mpin", authH.LoginMPIN)
		r.Post("/check-status", authH.CheckStatus)
		r.Post("/phone-email-verify", authH.PhoneEmailVerify)
	})

	r.Route("/investment", func(r chi.Router) {
		r.Post("/plan", investH.CreatePlan)
		r.Post("/payment", investH.SubmitPayment)
		r.Get("/status/{userId}", investH.Status)
	})

	r.Route("/transaction", func(r chi.Router) {
		r.Post("/deposit", txH.Deposit)
		r.Post("/withdraw", txH.Withdraw)
		r.Get("/history/{userId}", txH.History)
	})

	r.Route("/bank", func(r chi.Router) {
		r.Post("/details", bankH.Save)
		r.Get("/details/{userId}", bankH.Get)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/login", adminH.Login)
		// The payment page reads the payee settings without credentials.
		r.Get("/settings", adminH.GetSettings)

		r.Group(func(r chi.Router) {
			r.Use(adminMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/investments", adminH.ListInvestments)
			r.Post("/verify", adminH.Verify)
			r.Post("/settings", adminH.UpdateSettings)
		})
	})

	return r
}
