package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"PARTYCONNECT_BACK-END/internal/config"
	"PARTYCONNECT_BACK-END/internal/handlers"
	"PARTYCONNECT_BACK-END/internal/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(
	partyHandler *handlers.PartyHandler,
	paymentsHandler *handlers.PaymentsHandler,
	healthHandler *handlers.HealthHandler,
	cfg *config.Config,
) {
	jwt := &cfg.JWT
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(next, jwt)
	}
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireRole(middleware.RoleAdmin, next, jwt)
	}

	// Health check routes
	http.HandleFunc("/healthz", healthHandler.HealthCheck)
	http.HandleFunc("/livez", healthHandler.LivenessCheck)
	http.HandleFunc("/readyz", healthHandler.ReadinessCheck)

	// Party lifecycle and catalogue
	http.HandleFunc("/api/parties/create", auth(partyHandler.CreateParty))
	http.HandleFunc("/api/parties/list", auth(partyHandler.ListParties))
	http.HandleFunc("/api/parties/my/created", auth(partyHandler.MyCreatedParties))
	http.HandleFunc("/api/parties/my/joined", auth(partyHandler.MyJoinedParties))
	http.HandleFunc("/api/parties/", auth(partyHandler.Parties))

	// Payments and escrow
	http.HandleFunc("/api/payments/create-checkout-session", auth(paymentsHandler.CreateCheckoutSession))
	http.HandleFunc("/api/payments/refund", auth(paymentsHandler.Refund))
	http.HandleFunc("/api/payments/release-escrow", auth(paymentsHandler.ReleaseEscrow))

	// Provider entry points: the webhook authenticates with its payload
	// signature, the callback with the provider transaction id.
	http.HandleFunc("/api/payments/webhook", paymentsHandler.Webhook)
	http.HandleFunc("/api/payments/callback", paymentsHandler.Callback)

	// Admin operations
	http.HandleFunc("/api/admin/parties/", admin(partyHandler.AdminParties))
	http.HandleFunc("/api/admin/payments/reconcile", admin(paymentsHandler.Reconcile))

	// Observability and docs
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("PartyConnect backend is running."))
}
