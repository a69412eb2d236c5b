package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"PARTYCONNECT_BACK-END/internal/config"
	"PARTYCONNECT_BACK-END/internal/gateway"
	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/storage/memory"
)

func TestRecordPaymentSplitsCommission(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)

	payment, err := payFor(payments, party.ID, user, 500)
	require.NoError(t, err)
	require.Equal(t, 500.0, payment.Amount)
	require.Equal(t, 25.0, payment.Commission)
	require.Equal(t, 475.0, payment.NetAmount)
	require.Equal(t, models.PaymentStatusCompleted, payment.Status)
	require.Equal(t, models.EscrowStatusHeld, payment.EscrowStatus)
}

// A replayed confirmation for the same (user, party) purchase returns the
// original record and leaves the roster alone.
func TestRecordPaymentIdempotentReplay(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)

	first, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	replay, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
}

func TestRecordPaymentRequiresTransactionID(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	_, err := payments.RecordSuccessfulPayment(context.Background(), uuid.New(), party.ID,
		models.ProviderStripe, "", 500)
	require.Error(t, err)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, KindValidation, svcErr.Kind)
}

func TestCheckoutRequiresAcceptedRequest(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	_, err := payments.CreateCheckout(context.Background(), party.ID, user, "bank-transfer")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, KindValidation, svcErr.Kind)

	_, err = payments.CreateCheckout(context.Background(), party.ID, user, models.ProviderStripe)
	require.ErrorIs(t, err, ErrRequestNotFound)

	acceptedRequest(t, parties, party.ID, user, organizer)
	checkout, err := payments.CreateCheckout(context.Background(), party.ID, user, models.ProviderStripe)
	require.NoError(t, err)
	require.NotEmpty(t, checkout.ChargeRef)
	require.NotEmpty(t, checkout.RedirectURL)
	require.Equal(t, party.PricePerPerson, checkout.Amount)
}

func TestWebhookFlow(t *testing.T) {
	store := memory.New()
	sandbox := gateway.NewSandbox("whsec_test", "https://app.example/return")
	parties := NewPartyService(store)
	payments := NewPaymentService(store, sandbox, config.PaymentConfig{
		CommissionRate: 0.05,
		Currency:       "THB",
		GatewayTimeout: time.Second,
	})
	parties.BindPayments(payments)

	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)

	payload, err := json.Marshal(map[string]any{
		"type":           gateway.EventCheckoutCompleted,
		"provider":       models.ProviderStripe,
		"transaction_id": "tx_webhook_1",
		"user_id":        user.String(),
		"party_id":       party.ID.String(),
		"amount":         party.PricePerPerson,
	})
	require.NoError(t, err)

	err = payments.HandleWebhook(context.Background(), payload, "not-a-signature")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, KindNotAuthorized, svcErr.Kind)

	require.NoError(t, payments.HandleWebhook(context.Background(), payload, sandbox.Sign(payload)))

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	require.Equal(t, user, got.Participants[0].UserID)

	// At-least-once delivery: the retry is acknowledged without effect.
	require.NoError(t, payments.HandleWebhook(context.Background(), payload, sandbox.Sign(payload)))
	got, err = parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)

	// Unknown event types are acknowledged and dropped.
	other, err := json.Marshal(map[string]any{"type": "charge.updated"})
	require.NoError(t, err)
	require.NoError(t, payments.HandleWebhook(context.Background(), other, sandbox.Sign(other)))
}

// A forged redirect confirmation names a transaction the provider never saw;
// nothing may be recorded and nobody may be seated.
func TestCallbackRejectsUnconfirmedTransaction(t *testing.T) {
	store, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	attacker := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	_, err := payments.HandleCallback(context.Background(), attacker, party.ID,
		models.ProviderPayPal, "tx_forged_1")
	require.ErrorIs(t, err, ErrTxNotConfirmed)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Empty(t, got.Participants)

	recorded, err := store.ListPaymentsByParty(context.Background(), party.ID)
	require.NoError(t, err)
	require.Empty(t, recorded)
}

// The callback trusts the provider's settled amount, not the request.
func TestCallbackUsesProviderVouchedCharge(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)

	checkout, err := payments.CreateCheckout(context.Background(), party.ID, user, models.ProviderPayPal)
	require.NoError(t, err)

	payment, err := payments.HandleCallback(context.Background(), user, party.ID,
		models.ProviderPayPal, checkout.ChargeRef)
	require.NoError(t, err)
	require.Equal(t, party.PricePerPerson, payment.Amount)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	require.Equal(t, user, got.Participants[0].UserID)

	_, err = payments.HandleCallback(context.Background(), user, party.ID, "bank-transfer", checkout.ChargeRef)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, KindValidation, svcErr.Kind)
}

// A confirmation arriving after escrow release must not seat the user again,
// even with a fresh transaction id from a second channel.
func TestReplayAfterReleaseDoesNotReseat(t *testing.T) {
	store, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)

	first, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)
	_, err = parties.ConfirmArrival(context.Background(), party.ID, user)
	require.NoError(t, err)

	released, err := payments.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusReleased, released.Status)

	replay, err := payments.RecordSuccessfulPayment(context.Background(), user, party.ID,
		models.ProviderStripe, "tx-second-channel", party.PricePerPerson)
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)

	recorded, err := store.ListPaymentsByParty(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
}

func TestRefundAuthorization(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	_, err = payments.Refund(context.Background(), payment.ID, "nope", uuid.New())
	require.ErrorIs(t, err, ErrNotAuthorized)

	refunded, err := payments.Refund(context.Background(), payment.ID, "organizer removed guest", organizer)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusRefunded, refunded.Status)
	require.Equal(t, models.EscrowStatusRefunded, refunded.EscrowStatus)
	require.NotNil(t, refunded.RefundedAt)

	_, err = payments.Refund(context.Background(), payment.ID, "again", user)
	require.ErrorIs(t, err, ErrAlreadyRefunded)
}

func TestRefundAfterReleaseFails(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	_, err = parties.ConfirmArrival(context.Background(), party.ID, user)
	require.NoError(t, err)

	_, err = payments.Refund(context.Background(), payment.ID, "too late", user)
	require.ErrorIs(t, err, ErrEscrowNotHeld)
}

func TestGatewayFailureLeavesPaymentUntouched(t *testing.T) {
	_, parties, payments, gw := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	gw.refundErr[payment.ProviderTransactionID] = errors.New("provider down")
	_, err = payments.Refund(context.Background(), payment.ID, "attempt", user)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, KindGateway, svcErr.Kind)

	untouched, err := payments.Get(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCompleted, untouched.Status)
	require.Equal(t, models.EscrowStatusHeld, untouched.EscrowStatus)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
}

// While one refund is waiting on the provider, a second refund of the same
// payment is rejected instead of reaching the provider too.
func TestConcurrentRefundReachesProviderOnce(t *testing.T) {
	_, parties, payments, gw := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	gw.refundStarted = make(chan struct{}, 1)
	gw.refundRelease = make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := payments.Refund(context.Background(), payment.ID, "first", user)
		errCh <- err
	}()
	<-gw.refundStarted // first refund is now at the provider

	_, err = payments.Refund(context.Background(), payment.ID, "second", user)
	require.ErrorIs(t, err, ErrRefundInProgress)

	close(gw.refundRelease)
	require.NoError(t, <-errCh)
	require.Equal(t, 1, gw.refundCount())

	refunded, err := payments.Get(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusRefunded, refunded.Status)
	require.Equal(t, "first", refunded.RefundReason)
}

func TestReleaseRequiresArrival(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	_, err = payments.ReleaseEscrow(context.Background(), payment.ID)
	require.ErrorIs(t, err, ErrArrivalNotDone)
}

func TestReleaseExactlyOnce(t *testing.T) {
	_, parties, payments, gw := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	_, err = parties.ConfirmArrival(context.Background(), party.ID, user)
	require.NoError(t, err)
	require.Equal(t, 1, gw.payoutCount())

	_, err = payments.ReleaseEscrow(context.Background(), payment.ID)
	require.ErrorIs(t, err, ErrEscrowNotHeld)
	require.Equal(t, 1, gw.payoutCount())
}

func TestReconcileReaddsWhenCapacityRemains(t *testing.T) {
	store, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	party := publishedParty(t, parties, organizer, 1)
	acceptedRequest(t, parties, party.ID, userA, organizer)
	acceptedRequest(t, parties, party.ID, userB, organizer)

	payA, err := payFor(payments, party.ID, userA, party.PricePerPerson)
	require.NoError(t, err)
	_, err = payFor(payments, party.ID, userB, party.PricePerPerson)
	require.ErrorIs(t, err, ErrPartyFull)

	// The winning participant refunds. The status latch keeps the party
	// "full", but reconciliation goes by the roster, which now has a slot.
	_, err = payments.Refund(context.Background(), payA.ID, "bailed", userA)
	require.NoError(t, err)

	outcomes, err := payments.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, "completed", outcomes[0].Action)
	require.Empty(t, outcomes[0].Error)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	require.Equal(t, userB, got.Participants[0].UserID)

	flagged, err := store.ListPaymentsNeedingReview(context.Background())
	require.NoError(t, err)
	require.Empty(t, flagged)
}

func TestReconcileRefundsWhenPartyCancelled(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	party := publishedParty(t, parties, organizer, 1)
	acceptedRequest(t, parties, party.ID, userA, organizer)
	acceptedRequest(t, parties, party.ID, userB, organizer)

	_, err := payFor(payments, party.ID, userA, party.PricePerPerson)
	require.NoError(t, err)
	_, err = payFor(payments, party.ID, userB, party.PricePerPerson)
	require.ErrorIs(t, err, ErrPartyFull)

	_, _, err = parties.Cancel(context.Background(), party.ID, organizer, false)
	require.NoError(t, err)

	outcomes, err := payments.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, "refunded", outcomes[0].Action)
}

// Hammer one party with concurrent confirmations: the roster must never
// exceed capacity, and exactly max payments may complete.
func TestConcurrentPaymentsRespectCapacity(t *testing.T) {
	const (
		maxParticipants = 3
		contenders      = 12
	)
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	party := publishedParty(t, parties, organizer, maxParticipants)

	users := make([]uuid.UUID, contenders)
	for i := range users {
		users[i] = uuid.New()
		acceptedRequest(t, parties, party.ID, users[i], organizer)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i, user := range users {
		wg.Add(1)
		go func(i int, user uuid.UUID) {
			defer wg.Done()
			_, err := payments.RecordSuccessfulPayment(context.Background(), user, party.ID,
				models.ProviderPayPal, fmt.Sprintf("tx-race-%d", i), party.PricePerPerson)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrPartyFull) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i, user)
	}
	wg.Wait()

	require.Equal(t, maxParticipants, succeeded)
	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, maxParticipants)
	require.Equal(t, models.PartyStatusFull, got.Status)
}
