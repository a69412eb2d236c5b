package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/calculator"
	"PARTYCONNECT_BACK-END/internal/config"
	"PARTYCONNECT_BACK-END/internal/gateway"
	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/storage"
)

// PaymentService owns Payment records, their escrow sub-state, and the
// idempotent handling of provider confirmations.
type PaymentService struct {
	store   storage.Store
	gw      gateway.Gateway
	cfg     config.PaymentConfig
	locks   *partyLocker
	parties *PartyService
	now     func() time.Time

	// refunding marks payments with a provider refund call in flight, so a
	// concurrent second refund cannot reach the provider before the first
	// one's state flip lands.
	refundMu  sync.Mutex
	refunding map[uuid.UUID]bool
}

// NewPaymentService creates the payment service. Wire it to the lifecycle
// service with PartyService.BindPayments.
func NewPaymentService(store storage.Store, gw gateway.Gateway, cfg config.PaymentConfig) *PaymentService {
	return &PaymentService{
		store:     store,
		gw:        gw,
		cfg:       cfg,
		now:       time.Now,
		refunding: make(map[uuid.UUID]bool),
	}
}

// Checkout is the result of opening a provider checkout session.
type Checkout struct {
	ChargeRef   string  `json:"charge_ref"`
	RedirectURL string  `json:"url"`
	Amount      float64 `json:"amount"`
}

// CreateCheckout validates that the user holds an accepted request with a
// free slot remaining and opens a charge with the provider. Nothing is
// reserved; the asynchronous confirmation fills the seat.
func (s *PaymentService) CreateCheckout(ctx context.Context, partyID, userID uuid.UUID, provider string) (*Checkout, error) {
	if provider != models.ProviderStripe && provider != models.ProviderPayPal {
		return nil, validationError("Invalid payment provider")
	}
	quote, err := s.parties.Join(ctx, partyID, userID)
	if err != nil {
		return nil, err
	}

	charge, err := s.callCreateCharge(ctx, quote.Amount, map[string]string{
		"user_id":  userID.String(),
		"party_id": partyID.String(),
		"provider": provider,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("checkout created",
		"party_id", partyID, "user_id", userID, "provider", provider, "amount", quote.Amount)
	return &Checkout{ChargeRef: charge.Ref, RedirectURL: charge.RedirectURL, Amount: quote.Amount}, nil
}

// HandleWebhook verifies a raw provider payload and, for a completed
// checkout, records the payment. Other event types are acknowledged and
// dropped.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gw.VerifyWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return &Error{Kind: KindNotAuthorized, Code: "invalid_signature", Message: "Webhook signature verification failed", Err: err}
		}
		return validationError(err.Error())
	}
	if event.Type != gateway.EventCheckoutCompleted {
		slog.Debug("webhook event ignored", "type", event.Type)
		return nil
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return validationError("webhook user_id is not a UUID")
	}
	partyID, err := uuid.Parse(event.PartyID)
	if err != nil {
		return validationError("webhook party_id is not a UUID")
	}
	_, err = s.RecordSuccessfulPayment(ctx, userID, partyID, event.Provider, event.TransactionID, event.Amount)
	return err
}

// HandleCallback processes a redirect-style confirmation. Query parameters
// are attacker-writable, so nothing is recorded until the provider vouches
// for the transaction; the settled amount comes from the provider, never
// from the request.
func (s *PaymentService) HandleCallback(ctx context.Context, userID, partyID uuid.UUID, provider, providerTransactionID string) (*models.Payment, error) {
	if provider != models.ProviderStripe && provider != models.ProviderPayPal {
		return nil, validationError("Invalid payment provider")
	}
	if providerTransactionID == "" {
		return nil, validationError("provider transaction id required")
	}

	var conf gateway.Confirmation
	err := s.callGateway(ctx, func(ctx context.Context) error {
		var err error
		conf, err = s.gw.ConfirmCharge(ctx, providerTransactionID)
		return err
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnknownTransaction) {
			slog.Warn("callback for unknown transaction rejected",
				"provider_tx", providerTransactionID, "user_id", userID, "party_id", partyID)
			return nil, ErrTxNotConfirmed
		}
		return nil, err
	}

	return s.RecordSuccessfulPayment(ctx, userID, partyID, provider, conf.TransactionID, conf.Amount)
}

// RecordSuccessfulPayment is the single entry point for gateway
// confirmations. It is idempotent under at-least-once delivery: a repeat of
// an already-recorded (user, party) completion or provider transaction id is
// a no-op returning the existing record. The Payment is persisted before the
// roster update; if the roster update fails the payment is kept as pending
// with NeedsReview set so the reconciliation pass can repair it — funds are
// never dropped from the record.
func (s *PaymentService) RecordSuccessfulPayment(ctx context.Context, userID, partyID uuid.UUID, provider, providerTransactionID string, amount float64) (*models.Payment, error) {
	if providerTransactionID == "" {
		return nil, validationError("provider transaction id required")
	}

	unlock := s.locks.Lock(partyID)
	defer unlock()

	party, err := s.parties.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}

	// Webhook re-delivery or a second confirmation channel for the same
	// purchase: return the existing record untouched. The lookup covers
	// released payments too, so a late confirmation arriving after escrow
	// release cannot seat the same user twice.
	if existing, err := s.store.FindCompletedPayment(ctx, userID, partyID); err == nil {
		slog.Info("payment confirmation replayed",
			"payment_id", existing.ID, "provider_tx", providerTransactionID)
		return existing, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	commission, net, err := calculator.Split(amount, s.cfg.CommissionRate)
	if err != nil {
		return nil, validationError(err.Error())
	}

	now := s.now()
	payment := &models.Payment{
		ID:                    uuid.New(),
		UserID:                userID,
		PartyID:               partyID,
		Amount:                amount,
		Commission:            commission,
		NetAmount:             net,
		Provider:              provider,
		ProviderTransactionID: providerTransactionID,
		Status:                models.PaymentStatusCompleted,
		EscrowStatus:          models.EscrowStatusHeld,
		CreatedAt:             now,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			// Two deliveries raced past the completed-payment lookup; the
			// unique index made sure only one record exists.
			slog.Info("duplicate provider transaction dropped", "provider_tx", providerTransactionID)
			return nil, nil
		}
		return nil, err
	}

	// Funds are recorded; now fill the seat. Both must land or the payment
	// is flagged for reconciliation.
	if err := addParticipant(party, userID, payment.ID, now); err != nil {
		s.flagForReview(ctx, payment)
		return nil, err
	}
	if err := s.store.UpdateParty(ctx, party); err != nil {
		s.flagForReview(ctx, payment)
		return nil, inconsistentState(fmt.Sprintf("payment %s recorded but roster update failed: %v", payment.ID, err))
	}

	slog.Info("payment recorded",
		"payment_id", payment.ID, "party_id", partyID, "user_id", userID,
		"amount", amount, "commission", commission)
	return payment, nil
}

// flagForReview parks a payment whose roster update failed. Status drops
// back to pending so the completed-payment invariant stays true.
func (s *PaymentService) flagForReview(ctx context.Context, payment *models.Payment) {
	payment.Status = models.PaymentStatusPending
	payment.NeedsReview = true
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		slog.Error("failed to flag payment for review", "payment_id", payment.ID, "error", err)
	} else {
		slog.Warn("payment flagged for reconciliation", "payment_id", payment.ID)
	}
}

// Refund reverses a payment on the actor's behalf. Only the payment's owner
// or the party's organizer may refund; admin cancellation goes through the
// party service's fan-out.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID, reason string, actingUserID uuid.UUID) (*models.Payment, error) {
	payment, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if actingUserID != payment.UserID {
		party, err := s.parties.getParty(ctx, payment.PartyID)
		if err != nil {
			return nil, err
		}
		if party.OrganizerID != actingUserID {
			return nil, ErrNotAuthorized
		}
	}
	return s.refund(ctx, paymentID, reason)
}

// refund performs the gateway call and the local state flip. The gateway
// call happens before any local change and outside the party lock; a
// gateway failure leaves everything untouched.
func (s *PaymentService) refund(ctx context.Context, paymentID uuid.UUID, reason string) (*models.Payment, error) {
	payment, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusRefunded {
		return nil, ErrAlreadyRefunded
	}
	if payment.EscrowStatus == models.EscrowStatusReleased {
		// Funds already paid out to the organizer; nothing left to refund.
		return nil, ErrEscrowNotHeld
	}

	// The provider call runs outside the party lock, so two concurrent
	// refunds could both pass the status check above. The in-flight marker
	// makes sure only one of them reaches the provider.
	s.refundMu.Lock()
	if s.refunding[paymentID] {
		s.refundMu.Unlock()
		return nil, ErrRefundInProgress
	}
	s.refunding[paymentID] = true
	s.refundMu.Unlock()
	defer func() {
		s.refundMu.Lock()
		delete(s.refunding, paymentID)
		s.refundMu.Unlock()
	}()

	if err := s.callGateway(ctx, func(ctx context.Context) error {
		return s.gw.Refund(ctx, payment.ProviderTransactionID, payment.Amount)
	}); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(payment.PartyID)
	defer unlock()

	// Reload under the lock; a concurrent refund may have won.
	payment, err = s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusRefunded {
		return nil, ErrAlreadyRefunded
	}

	now := s.now()
	payment.Status = models.PaymentStatusRefunded
	payment.EscrowStatus = models.EscrowStatusRefunded
	payment.RefundedAt = &now
	payment.RefundReason = reason
	payment.NeedsReview = false
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}

	party, err := s.parties.getParty(ctx, payment.PartyID)
	if err != nil {
		return nil, err
	}
	if removeParticipant(party, payment.ID, now) {
		if err := s.store.UpdateParty(ctx, party); err != nil {
			return nil, inconsistentState(fmt.Sprintf("payment %s refunded but roster removal failed: %v", payment.ID, err))
		}
	}

	slog.Info("payment refunded", "payment_id", payment.ID, "reason", reason)
	return payment, nil
}

// ReleaseEscrow pays the organizer out once arrival is confirmed. The payout
// is attempted before the state flips; a transfer failure leaves escrow held
// and surfaces the error.
func (s *PaymentService) ReleaseEscrow(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.EscrowStatus != models.EscrowStatusHeld {
		return nil, ErrEscrowNotHeld
	}

	party, err := s.parties.getParty(ctx, payment.PartyID)
	if err != nil {
		return nil, err
	}
	participant := party.FindParticipantByPayment(payment.ID)
	if participant == nil {
		return nil, inconsistentState(fmt.Sprintf("payment %s has no matching participant", payment.ID))
	}
	if !participant.ArrivalConfirmed {
		return nil, ErrArrivalNotDone
	}

	if err := s.callGateway(ctx, func(ctx context.Context) error {
		return s.gw.Payout(ctx, payment.ProviderTransactionID, payment.NetAmount)
	}); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(payment.PartyID)
	defer unlock()

	payment, err = s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.EscrowStatus != models.EscrowStatusHeld {
		return nil, ErrEscrowNotHeld
	}
	now := s.now()
	payment.EscrowStatus = models.EscrowStatusReleased
	payment.Status = models.PaymentStatusReleased
	payment.ReleasedAt = &now
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}
	slog.Info("escrow released", "payment_id", payment.ID, "net_amount", payment.NetAmount)
	return payment, nil
}

// markArrival mirrors a roster arrival confirmation onto the payment record.
func (s *PaymentService) markArrival(ctx context.Context, paymentID uuid.UUID, at time.Time) error {
	payment, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.ArrivalConfirmed {
		return nil
	}
	payment.ArrivalConfirmed = true
	payment.ArrivalConfirmedAt = &at
	return s.store.UpdatePayment(ctx, payment)
}

// Get returns a payment by id.
func (s *PaymentService) Get(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	return s.getPayment(ctx, paymentID)
}

// ReconcileOutcome reports one repaired payment.
type ReconcileOutcome struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Action    string    `json:"action"`
	Error     string    `json:"error,omitempty"`
}

// Reconcile drives payments flagged for review back to consistency: the
// roster add is retried, or the money is returned when the party can no
// longer take the participant. Invoked by operators; each payment is
// handled independently.
func (s *PaymentService) Reconcile(ctx context.Context) ([]ReconcileOutcome, error) {
	flagged, err := s.store.ListPaymentsNeedingReview(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ReconcileOutcome, 0, len(flagged))
	for _, payment := range flagged {
		outcome := ReconcileOutcome{PaymentID: payment.ID}
		action, err := s.reconcileOne(ctx, payment)
		outcome.Action = action
		if err != nil {
			outcome.Error = err.Error()
			slog.Error("reconcile failed", "payment_id", payment.ID, "error", err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *PaymentService) reconcileOne(ctx context.Context, payment *models.Payment) (string, error) {
	unlock := s.locks.Lock(payment.PartyID)

	party, err := s.parties.getParty(ctx, payment.PartyID)
	if err != nil {
		unlock()
		return "none", err
	}

	refundNeeded := party.IsTerminal() || len(party.Participants) >= party.MaxParticipants
	if !refundNeeded {
		now := s.now()
		if err := addParticipant(party, payment.UserID, payment.ID, now); err != nil {
			unlock()
			return "none", err
		}
		if err := s.store.UpdateParty(ctx, party); err != nil {
			unlock()
			return "none", err
		}
		payment.Status = models.PaymentStatusCompleted
		payment.NeedsReview = false
		if err := s.store.UpdatePayment(ctx, payment); err != nil {
			unlock()
			return "completed", inconsistentState(fmt.Sprintf("participant re-added but payment %s not updated: %v", payment.ID, err))
		}
		unlock()
		slog.Info("payment reconciled", "payment_id", payment.ID, "action", "completed")
		return "completed", nil
	}
	unlock()

	// refund() re-acquires the lock itself.
	if _, err := s.refund(ctx, payment.ID, "reconciliation: party unavailable"); err != nil {
		return "refund", err
	}
	return "refunded", nil
}

func (s *PaymentService) getPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) callCreateCharge(ctx context.Context, amount float64, metadata map[string]string) (gateway.Charge, error) {
	var charge gateway.Charge
	err := s.callGateway(ctx, func(ctx context.Context) error {
		var err error
		charge, err = s.gw.CreateCharge(ctx, amount, s.cfg.Currency, metadata)
		return err
	})
	return charge, err
}

// callGateway bounds a provider call with the configured timeout and maps
// failures into the gateway error kinds.
func (s *PaymentService) callGateway(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		timeout := gateway.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded)
		return gatewayError(err, timeout)
	}
	return nil
}
