package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/dto"
	"PARTYCONNECT_BACK-END/internal/gateway"
	"PARTYCONNECT_BACK-END/internal/service"
	"PARTYCONNECT_BACK-END/internal/utils"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// PaymentsHandler manages checkout, webhook and escrow endpoints
type PaymentsHandler struct {
	svc *service.PaymentService
}

// NewPaymentsHandler creates a new PaymentsHandler
func NewPaymentsHandler(svc *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// CreateCheckoutSession handles POST /api/payments/create-checkout-session
// @Summary Open a provider checkout for an accepted request
// @Tags payments
// @Accept json
// @Produce json
// @Param payload body dto.CreateCheckoutRequest true "Checkout payload"
// @Success 200 {object} dto.CreateCheckoutResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/payments/create-checkout-session [post]
func (h *PaymentsHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreateCheckoutRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "party_id must be a UUID")
		return
	}

	checkout, err := h.svc.CreateCheckout(r.Context(), partyID, userID, strings.ToLower(strings.TrimSpace(req.Provider)))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.CreateCheckoutResponse{
		ChargeRef: checkout.ChargeRef,
		URL:       checkout.RedirectURL,
		Amount:    checkout.Amount,
	})
}

// Webhook handles POST /api/payments/webhook. The raw body is verified
// against the provider signature header before anything is parsed out of it.
// A verified but unprocessable event still gets a 200 so the provider stops
// retrying; only signature failures are rejected.
// @Summary Provider webhook receiver
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookAck
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/payments/webhook [post]
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	signature := r.Header.Get(gateway.SignatureHeader)
	if signature == "" {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Webhook signature missing", "")
		return
	}

	if err := h.svc.HandleWebhook(r.Context(), payload, signature); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.WebhookAck{Received: true})
}

// Callback handles GET /api/payments/callback, the execute-style redirect
// confirmation. The query params only identify the purchase; the service
// confirms the transaction with the provider before recording anything, and
// the settled amount comes from that confirmation.
// @Summary Redirect-style payment confirmation
// @Tags payments
// @Produce json
// @Param transaction_id query string true "Provider transaction id"
// @Param user_id query string true "Paying user"
// @Param party_id query string true "Party"
// @Param provider query string true "stripe|paypal"
// @Success 200 {object} dto.PaymentEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/payments/callback [get]
func (h *PaymentsHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	txID := strings.TrimSpace(q.Get("transaction_id"))
	if txID == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "transaction_id is required")
		return
	}
	userID, err := uuid.Parse(q.Get("user_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "user_id must be a UUID")
		return
	}
	partyID, err := uuid.Parse(q.Get("party_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "party_id must be a UUID")
		return
	}
	provider := strings.ToLower(strings.TrimSpace(q.Get("provider")))

	payment, err := h.svc.HandleCallback(r.Context(), userID, partyID, provider, txID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if payment == nil {
		// Duplicate transaction id raced in; the first delivery won.
		utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Payment already recorded"})
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PaymentEnvelope{
		Message: "Payment recorded",
		Payment: toPaymentResponse(payment),
	})
}

// Refund handles POST /api/payments/refund
// @Summary Refund a payment
// @Tags payments
// @Accept json
// @Produce json
// @Param payload body dto.RefundRequest true "Refund payload"
// @Success 200 {object} dto.PaymentEnvelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/payments/refund [post]
func (h *PaymentsHandler) Refund(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	var req dto.RefundRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "payment_id must be a UUID")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "requested by user"
	}

	payment, err := h.svc.Refund(r.Context(), paymentID, reason, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PaymentEnvelope{
		Message: "Payment refunded",
		Payment: toPaymentResponse(payment),
	})
}

// ReleaseEscrow handles POST /api/payments/release-escrow
// @Summary Release held funds to the organizer
// @Tags payments
// @Accept json
// @Produce json
// @Param payload body dto.ReleaseEscrowRequest true "Release payload"
// @Success 200 {object} dto.PaymentEnvelope
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/payments/release-escrow [post]
func (h *PaymentsHandler) ReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := authedUserID(w, r); !ok {
		return
	}

	var req dto.ReleaseEscrowRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "payment_id must be a UUID")
		return
	}

	payment, err := h.svc.ReleaseEscrow(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PaymentEnvelope{
		Message: "Escrow released",
		Payment: toPaymentResponse(payment),
	})
}

// Reconcile handles POST /api/admin/payments/reconcile
// @Summary Repair payments flagged for review
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ReconcileResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/admin/payments/reconcile [post]
func (h *PaymentsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := authedUserID(w, r); !ok {
		return
	}

	outcomes, err := h.svc.Reconcile(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]dto.ReconcileOutcome, len(outcomes))
	for i, o := range outcomes {
		items[i] = dto.ReconcileOutcome{
			PaymentID: o.PaymentID.String(),
			Action:    o.Action,
			Error:     o.Error,
		}
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ReconcileResponse{Outcomes: items})
}
