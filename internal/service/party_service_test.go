package service

import (
	"context"
	"errors"
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

// fakeGateway records provider calls, can be told to fail individual refunds
// by transaction id, and can hold a refund at the provider until released.
type fakeGateway struct {
	mu        sync.Mutex
	charges   map[string]float64
	refunds   []string
	payouts   []string
	refundErr map[string]error
	payoutErr error

	// When set, Refund signals refundStarted and blocks until refundRelease
	// closes; used to pin a refund in flight.
	refundStarted chan struct{}
	refundRelease chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		charges:   map[string]float64{},
		refundErr: map[string]error{},
	}
}

func (g *fakeGateway) addCharge(ref string, amount float64) {
	g.mu.Lock()
	g.charges[ref] = amount
	g.mu.Unlock()
}

func (g *fakeGateway) CreateCharge(ctx context.Context, amount float64, currency string, metadata map[string]string) (gateway.Charge, error) {
	ref := "ch_" + uuid.NewString()
	g.addCharge(ref, amount)
	return gateway.Charge{Ref: ref, RedirectURL: "https://pay.example/checkout"}, nil
}

func (g *fakeGateway) ConfirmCharge(ctx context.Context, transactionID string) (gateway.Confirmation, error) {
	g.mu.Lock()
	amount, ok := g.charges[transactionID]
	g.mu.Unlock()
	if !ok {
		return gateway.Confirmation{}, gateway.ErrUnknownTransaction
	}
	return gateway.Confirmation{TransactionID: transactionID, Amount: amount}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, chargeRef string, amount float64) error {
	if g.refundStarted != nil {
		g.refundStarted <- struct{}{}
		<-g.refundRelease
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.refundErr[chargeRef]; err != nil {
		return err
	}
	g.refunds = append(g.refunds, chargeRef)
	return nil
}

func (g *fakeGateway) Payout(ctx context.Context, chargeRef string, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.payoutErr != nil {
		return g.payoutErr
	}
	g.payouts = append(g.payouts, chargeRef)
	return nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (gateway.Event, error) {
	return gateway.Event{}, errors.New("fakeGateway does not verify webhooks")
}

func (g *fakeGateway) payoutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.payouts)
}

func (g *fakeGateway) refundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.refunds)
}

func newTestEnv(t *testing.T) (*memory.Store, *PartyService, *PaymentService, *fakeGateway) {
	t.Helper()
	store := memory.New()
	gw := newFakeGateway()
	parties := NewPartyService(store)
	payments := NewPaymentService(store, gw, config.PaymentConfig{
		CommissionRate: 0.05,
		Currency:       "THB",
		GatewayTimeout: time.Second,
	})
	parties.BindPayments(payments)
	return store, parties, payments, gw
}

func validPartyInput() CreatePartyInput {
	return CreatePartyInput{
		Title:           "Rooftop Night",
		Description:     "Music and drinks on the rooftop",
		Date:            time.Now().Add(72 * time.Hour),
		Time:            "21:00",
		PricePerPerson:  500,
		MaxParticipants: 10,
		Location: models.Location{
			Address: "99 Sukhumvit Rd",
			Lat:     13.73,
			Lng:     100.56,
			City:    "Bangkok",
			Country: "TH",
		},
		Images:   []string{"a.jpg", "b.jpg", "c.jpg"},
		AgeRange: models.AgeRange{Min: 20, Max: 35},
	}
}

func publishedParty(t *testing.T, parties *PartyService, organizer uuid.UUID, maxParticipants int) *models.Party {
	t.Helper()
	in := validPartyInput()
	in.MaxParticipants = maxParticipants
	party, err := parties.Create(context.Background(), organizer, in)
	require.NoError(t, err)
	party, err = parties.Publish(context.Background(), party.ID, organizer)
	require.NoError(t, err)
	return party
}

func acceptedRequest(t *testing.T, parties *PartyService, partyID, userID, organizer uuid.UUID) {
	t.Helper()
	_, _, err := parties.CreateRequest(context.Background(), partyID, userID)
	require.NoError(t, err)
	_, err = parties.AcceptRequest(context.Background(), partyID, userID, organizer)
	require.NoError(t, err)
}

func payFor(payments *PaymentService, partyID, userID uuid.UUID, amount float64) (*models.Payment, error) {
	return payments.RecordSuccessfulPayment(context.Background(), userID, partyID,
		models.ProviderStripe, "tx-"+userID.String(), amount)
}

func TestCreateValidation(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()

	cases := []struct {
		name   string
		mutate func(*CreatePartyInput)
		want   error
	}{
		{"missing title", func(in *CreatePartyInput) { in.Title = "" }, nil},
		{"zero price", func(in *CreatePartyInput) { in.PricePerPerson = 0 }, nil},
		{"no capacity", func(in *CreatePartyInput) { in.MaxParticipants = 0 }, nil},
		{"too few images", func(in *CreatePartyInput) { in.Images = []string{"a.jpg"} }, ErrInsufficientImages},
		{"past date", func(in *CreatePartyInput) { in.Date = time.Now().Add(-24 * time.Hour) }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validPartyInput()
			tc.mutate(&in)
			_, err := parties.Create(context.Background(), organizer, in)
			require.Error(t, err)
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)
			}
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			require.Equal(t, KindValidation, svcErr.Kind)
		})
	}
}

func TestPublishLifecycle(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()

	party, err := parties.Create(context.Background(), organizer, validPartyInput())
	require.NoError(t, err)
	require.Equal(t, models.PartyStatusDraft, party.Status)
	require.Nil(t, party.PublishedAt)

	_, err = parties.Publish(context.Background(), party.ID, uuid.New())
	require.ErrorIs(t, err, ErrNotAuthorized)

	party, err = parties.Publish(context.Background(), party.ID, organizer)
	require.NoError(t, err)
	require.Equal(t, models.PartyStatusPublished, party.Status)
	require.NotNil(t, party.PublishedAt)

	_, err = parties.Publish(context.Background(), party.ID, organizer)
	require.ErrorIs(t, err, ErrNotDraft)
}

func TestUpdateDraftOnlyWhileDraft(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()

	party, err := parties.Create(context.Background(), organizer, validPartyInput())
	require.NoError(t, err)

	in := validPartyInput()
	in.Title = "Renamed Night"
	updated, err := parties.UpdateDraft(context.Background(), party.ID, organizer, in)
	require.NoError(t, err)
	require.Equal(t, "Renamed Night", updated.Title)

	_, err = parties.Publish(context.Background(), party.ID, organizer)
	require.NoError(t, err)
	_, err = parties.UpdateDraft(context.Background(), party.ID, organizer, in)
	require.ErrorIs(t, err, ErrNotDraft)
}

func TestRequestLifecycle(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	req, existed, err := parties.CreateRequest(context.Background(), party.ID, user)
	require.NoError(t, err)
	require.False(t, existed)
	require.Equal(t, models.RequestStatusPending, req.Status)

	// A second like is idempotent, not an error.
	req2, existed, err := parties.CreateRequest(context.Background(), party.ID, user)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, req.RequestedAt.Unix(), req2.RequestedAt.Unix())

	// Withdraw, then withdraw again: the second is a no-op.
	require.NoError(t, parties.WithdrawRequest(context.Background(), party.ID, user))
	require.NoError(t, parties.WithdrawRequest(context.Background(), party.ID, user))

	status, err := parties.RequestStatus(context.Background(), party.ID, user)
	require.NoError(t, err)
	require.Nil(t, status)
}

func TestWithdrawAnsweredRequestFails(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, user, organizer)

	err := parties.WithdrawRequest(context.Background(), party.ID, user)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRespondToRequest(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	_, _, err := parties.CreateRequest(context.Background(), party.ID, user)
	require.NoError(t, err)

	_, err = parties.AcceptRequest(context.Background(), party.ID, user, uuid.New())
	require.ErrorIs(t, err, ErrNotAuthorized)

	req, err := parties.AcceptRequest(context.Background(), party.ID, user, organizer)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusAccepted, req.Status)
	require.NotNil(t, req.RespondedAt)

	_, err = parties.RejectRequest(context.Background(), party.ID, user, organizer)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

// Acceptance is permission to pay, not a reservation: with one slot the
// organizer can accept two requests, and the second payment loses at the
// roster, not at accept time.
func TestAcceptanceDoesNotReserveCapacity(t *testing.T) {
	store, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	party := publishedParty(t, parties, organizer, 1)

	acceptedRequest(t, parties, party.ID, userA, organizer)
	acceptedRequest(t, parties, party.ID, userB, organizer)

	_, err := payFor(payments, party.ID, userA, party.PricePerPerson)
	require.NoError(t, err)

	_, err = payFor(payments, party.ID, userB, party.PricePerPerson)
	require.ErrorIs(t, err, ErrPartyFull)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	require.Equal(t, userA, got.Participants[0].UserID)
	require.Equal(t, models.PartyStatusFull, got.Status)

	// The losing payment is parked for reconciliation, not dropped.
	flagged, err := store.ListPaymentsNeedingReview(context.Background())
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, userB, flagged[0].UserID)
	require.Equal(t, models.PaymentStatusPending, flagged[0].Status)
}

func TestJoinGate(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	_, err := parties.Join(context.Background(), party.ID, user)
	require.ErrorIs(t, err, ErrRequestNotFound)

	_, _, err = parties.CreateRequest(context.Background(), party.ID, user)
	require.NoError(t, err)
	_, err = parties.Join(context.Background(), party.ID, user)
	require.ErrorIs(t, err, ErrRequestNotAccepted)

	_, err = parties.AcceptRequest(context.Background(), party.ID, user, organizer)
	require.NoError(t, err)
	quote, err := parties.Join(context.Background(), party.ID, user)
	require.NoError(t, err)
	require.Equal(t, party.PricePerPerson, quote.Amount)
}

func TestConfirmArrival(t *testing.T) {
	_, parties, payments, gw := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	// Not a participant yet.
	_, err := parties.ConfirmArrival(context.Background(), party.ID, user)
	require.ErrorIs(t, err, ErrNotParticipant)

	acceptedRequest(t, parties, party.ID, user, organizer)
	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	participant, err := parties.ConfirmArrival(context.Background(), party.ID, user)
	require.NoError(t, err)
	require.True(t, participant.ArrivalConfirmed)
	require.NotNil(t, participant.ArrivalConfirmedAt)

	// Confirmation triggered the escrow release.
	released, err := payments.Get(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Equal(t, models.EscrowStatusReleased, released.EscrowStatus)
	require.Equal(t, models.PaymentStatusReleased, released.Status)
	require.Equal(t, 1, gw.payoutCount())

	_, err = parties.ConfirmArrival(context.Background(), party.ID, user)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestCancelRefundFanOut(t *testing.T) {
	_, parties, payments, gw := newTestEnv(t)
	organizer := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	party := publishedParty(t, parties, organizer, 5)
	acceptedRequest(t, parties, party.ID, userA, organizer)
	acceptedRequest(t, parties, party.ID, userB, organizer)

	payA, err := payFor(payments, party.ID, userA, party.PricePerPerson)
	require.NoError(t, err)
	payB, err := payFor(payments, party.ID, userB, party.PricePerPerson)
	require.NoError(t, err)

	// One provider refund fails; the other participant still gets theirs and
	// the cancellation itself stands.
	gw.refundErr[payB.ProviderTransactionID] = errors.New("provider unavailable")

	cancelled, outcomes, err := parties.Cancel(context.Background(), party.ID, organizer, false)
	require.NoError(t, err)
	require.Equal(t, models.PartyStatusCancelled, cancelled.Status)
	require.Len(t, outcomes, 2)

	byUser := map[uuid.UUID]RefundOutcome{}
	for _, o := range outcomes {
		byUser[o.UserID] = o
	}
	require.True(t, byUser[userA].Refunded)
	require.False(t, byUser[userB].Refunded)
	require.NotEmpty(t, byUser[userB].Error)

	refundedA, err := payments.Get(context.Background(), payA.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusRefunded, refundedA.Status)

	stuckB, err := payments.Get(context.Background(), payB.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCompleted, stuckB.Status)

	_, _, err = parties.Cancel(context.Background(), party.ID, organizer, false)
	require.ErrorIs(t, err, ErrPartyTerminal)
}

func TestAdminCancelBypassesOwnership(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()
	admin := uuid.New()
	party := publishedParty(t, parties, organizer, 5)

	_, _, err := parties.Cancel(context.Background(), party.ID, admin, false)
	require.ErrorIs(t, err, ErrNotAuthorized)

	cancelled, _, err := parties.Cancel(context.Background(), party.ID, admin, true)
	require.NoError(t, err)
	require.Equal(t, models.PartyStatusCancelled, cancelled.Status)
}

// A full party stays full after a refund frees a slot; the latch is one-way.
func TestFullStatusLatch(t *testing.T) {
	_, parties, payments, _ := newTestEnv(t)
	organizer := uuid.New()
	user := uuid.New()
	party := publishedParty(t, parties, organizer, 1)
	acceptedRequest(t, parties, party.ID, user, organizer)

	payment, err := payFor(payments, party.ID, user, party.PricePerPerson)
	require.NoError(t, err)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Equal(t, models.PartyStatusFull, got.Status)

	_, err = payments.Refund(context.Background(), payment.ID, "changed my mind", user)
	require.NoError(t, err)

	got, err = parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Empty(t, got.Participants)
	require.Equal(t, models.PartyStatusFull, got.Status)
}

func TestLikeRequiresPublishedParty(t *testing.T) {
	_, parties, _, _ := newTestEnv(t)
	organizer := uuid.New()

	draft, err := parties.Create(context.Background(), organizer, validPartyInput())
	require.NoError(t, err)

	_, _, err = parties.CreateRequest(context.Background(), draft.ID, uuid.New())
	require.ErrorIs(t, err, ErrPartyNotJoinable)

	_, _, err = parties.CreateRequest(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrPartyNotFound)
}
