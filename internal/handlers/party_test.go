package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"PARTYCONNECT_BACK-END/internal/config"
	"PARTYCONNECT_BACK-END/internal/dto"
	"PARTYCONNECT_BACK-END/internal/gateway"
	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/service"
	"PARTYCONNECT_BACK-END/internal/storage/memory"
	"PARTYCONNECT_BACK-END/internal/utils"
)

func newHandlersEnv(t *testing.T) (*PartyHandler, *PaymentsHandler, *service.PartyService, *gateway.Sandbox) {
	t.Helper()
	store := memory.New()
	sandbox := gateway.NewSandbox("whsec_test", "https://app.example/return")
	parties := service.NewPartyService(store)
	payments := service.NewPaymentService(store, sandbox, config.PaymentConfig{
		CommissionRate: 0.05,
		Currency:       "THB",
		GatewayTimeout: time.Second,
	})
	parties.BindPayments(payments)
	return NewPartyHandler(parties), NewPaymentsHandler(payments), parties, sandbox
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), utils.ContextKeyUserID, userID)
	return r.WithContext(ctx)
}

func createPartyBody() []byte {
	body, _ := json.Marshal(dto.CreatePartyRequest{
		Title:           "Rooftop Night",
		Description:     "Music and drinks on the rooftop",
		Date:            time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		Time:            "21:00",
		PricePerPerson:  500,
		MaxParticipants: 10,
		Location: dto.LocationPayload{
			Address: "99 Sukhumvit Rd",
			Lat:     13.73,
			Lng:     100.56,
			City:    "Bangkok",
			Country: "TH",
		},
		Images:   []string{"a.jpg", "b.jpg", "c.jpg"},
		AgeRange: dto.AgeRangePayload{Min: 20, Max: 35},
	})
	return body
}

func TestCreatePartyHandler(t *testing.T) {
	h, _, _, _ := newHandlersEnv(t)
	organizer := uuid.New()

	r := httptest.NewRequest(http.MethodPost, "/api/parties/create", bytes.NewReader(createPartyBody()))
	w := httptest.NewRecorder()
	h.CreateParty(w, withUser(r, organizer))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.PartyEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, models.PartyStatusDraft, resp.Party.Status)
	require.Equal(t, organizer.String(), resp.Party.OrganizerID)
}

func TestCreatePartyHandlerUnauthorized(t *testing.T) {
	h, _, _, _ := newHandlersEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/api/parties/create", bytes.NewReader(createPartyBody()))
	w := httptest.NewRecorder()
	h.CreateParty(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePartyHandlerValidation(t *testing.T) {
	h, _, _, _ := newHandlersEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/api/parties/create", bytes.NewReader([]byte(`{"title":""}`)))
	w := httptest.NewRecorder()
	h.CreateParty(w, withUser(r, uuid.New()))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPartiesDispatchBadID(t *testing.T) {
	h, _, _, _ := newHandlersEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/api/parties/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.Parties(w, withUser(r, uuid.New()))
	require.Equal(t, http.StatusBadRequest, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/parties/"+uuid.NewString()+"/frobnicate", nil)
	w = httptest.NewRecorder()
	h.Parties(w, withUser(r, uuid.New()))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceErrorMapping(t *testing.T) {
	h, _, parties, _ := newHandlersEnv(t)
	organizer := uuid.New()

	party, err := parties.Create(context.Background(), organizer, service.CreatePartyInput{
		Title:           "Rooftop Night",
		Description:     "Music and drinks",
		Date:            time.Now().Add(72 * time.Hour),
		Time:            "21:00",
		PricePerPerson:  500,
		MaxParticipants: 10,
		Images:          []string{"a.jpg", "b.jpg", "c.jpg"},
	})
	require.NoError(t, err)

	// Liking a draft party is a validation failure.
	r := httptest.NewRequest(http.MethodPost, "/api/parties/"+party.ID.String()+"/like", nil)
	w := httptest.NewRecorder()
	h.Parties(w, withUser(r, uuid.New()))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	require.Equal(t, "party_not_joinable", errResp.Code)

	// Publishing someone else's party is forbidden.
	r = httptest.NewRequest(http.MethodPost, "/api/parties/"+party.ID.String()+"/publish", nil)
	w = httptest.NewRecorder()
	h.Parties(w, withUser(r, uuid.New()))
	require.Equal(t, http.StatusForbidden, w.Code)

	// An unknown party is 404.
	r = httptest.NewRequest(http.MethodGet, "/api/parties/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	h.Parties(w, withUser(r, organizer))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressHiddenUntilPaid(t *testing.T) {
	h, _, parties, _ := newHandlersEnv(t)
	organizer := uuid.New()
	stranger := uuid.New()

	r := httptest.NewRequest(http.MethodPost, "/api/parties/create", bytes.NewReader(createPartyBody()))
	w := httptest.NewRecorder()
	h.CreateParty(w, withUser(r, organizer))
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.PartyEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	partyID, err := uuid.Parse(created.Party.ID)
	require.NoError(t, err)
	_, err = parties.Publish(context.Background(), partyID, organizer)
	require.NoError(t, err)

	r = httptest.NewRequest(http.MethodGet, "/api/parties/"+created.Party.ID, nil)
	w = httptest.NewRecorder()
	h.Parties(w, withUser(r, stranger))
	require.Equal(t, http.StatusOK, w.Code)
	var forStranger dto.PartyEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&forStranger))
	require.Empty(t, forStranger.Party.Location.Address)
	require.Zero(t, forStranger.Party.Location.Lat)
	require.Equal(t, "Bangkok", forStranger.Party.Location.City)

	r = httptest.NewRequest(http.MethodGet, "/api/parties/"+created.Party.ID, nil)
	w = httptest.NewRecorder()
	h.Parties(w, withUser(r, organizer))
	require.Equal(t, http.StatusOK, w.Code)
	var forOrganizer dto.PartyEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&forOrganizer))
	require.Equal(t, "99 Sukhumvit Rd", forOrganizer.Party.Location.Address)
}

// An unauthenticated callback naming a transaction the provider never saw
// must not create a payment or seat anyone.
func TestCallbackHandlerRejectsForgedConfirmation(t *testing.T) {
	h, ph, parties, _ := newHandlersEnv(t)
	organizer := uuid.New()
	attacker := uuid.New()

	r := httptest.NewRequest(http.MethodPost, "/api/parties/create", bytes.NewReader(createPartyBody()))
	w := httptest.NewRecorder()
	h.CreateParty(w, withUser(r, organizer))
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.PartyEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	partyID, err := uuid.Parse(created.Party.ID)
	require.NoError(t, err)
	_, err = parties.Publish(context.Background(), partyID, organizer)
	require.NoError(t, err)

	url := "/api/payments/callback?transaction_id=tx_forged_1&provider=paypal" +
		"&user_id=" + attacker.String() + "&party_id=" + created.Party.ID
	r = httptest.NewRequest(http.MethodGet, url, nil)
	w = httptest.NewRecorder()
	ph.Callback(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	got, err := parties.Get(context.Background(), partyID)
	require.NoError(t, err)
	require.Empty(t, got.Participants)
}

func TestCallbackHandlerConfirmsWithProvider(t *testing.T) {
	h, ph, parties, _ := newHandlersEnv(t)
	organizer := uuid.New()
	user := uuid.New()

	r := httptest.NewRequest(http.MethodPost, "/api/parties/create", bytes.NewReader(createPartyBody()))
	w := httptest.NewRecorder()
	h.CreateParty(w, withUser(r, organizer))
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.PartyEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	partyID, err := uuid.Parse(created.Party.ID)
	require.NoError(t, err)
	_, err = parties.Publish(context.Background(), partyID, organizer)
	require.NoError(t, err)
	_, _, err = parties.CreateRequest(context.Background(), partyID, user)
	require.NoError(t, err)
	_, err = parties.AcceptRequest(context.Background(), partyID, user, organizer)
	require.NoError(t, err)

	body, err := json.Marshal(dto.CreateCheckoutRequest{PartyID: created.Party.ID, Provider: models.ProviderPayPal})
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodPost, "/api/payments/create-checkout-session", bytes.NewReader(body))
	w = httptest.NewRecorder()
	ph.CreateCheckoutSession(w, withUser(r, user))
	require.Equal(t, http.StatusOK, w.Code)
	var checkout dto.CreateCheckoutResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&checkout))

	url := "/api/payments/callback?transaction_id=" + checkout.ChargeRef + "&provider=paypal" +
		"&user_id=" + user.String() + "&party_id=" + created.Party.ID
	r = httptest.NewRequest(http.MethodGet, url, nil)
	w = httptest.NewRecorder()
	ph.Callback(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	var recorded dto.PaymentEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&recorded))
	require.Equal(t, created.Party.PricePerPerson, recorded.Payment.Amount)

	got, err := parties.Get(context.Background(), partyID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	require.Equal(t, user, got.Participants[0].UserID)
}

func TestWebhookHandler(t *testing.T) {
	_, ph, parties, sandbox := newHandlersEnv(t)
	organizer := uuid.New()
	user := uuid.New()

	party, err := parties.Create(context.Background(), organizer, service.CreatePartyInput{
		Title:           "Rooftop Night",
		Description:     "Music and drinks",
		Date:            time.Now().Add(72 * time.Hour),
		Time:            "21:00",
		PricePerPerson:  500,
		MaxParticipants: 10,
		Images:          []string{"a.jpg", "b.jpg", "c.jpg"},
	})
	require.NoError(t, err)
	_, err = parties.Publish(context.Background(), party.ID, organizer)
	require.NoError(t, err)
	_, _, err = parties.CreateRequest(context.Background(), party.ID, user)
	require.NoError(t, err)
	_, err = parties.AcceptRequest(context.Background(), party.ID, user, organizer)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"type":           gateway.EventCheckoutCompleted,
		"provider":       models.ProviderStripe,
		"transaction_id": "tx_http_1",
		"user_id":        user.String(),
		"party_id":       party.ID.String(),
		"amount":         500,
	})
	require.NoError(t, err)

	// No signature header.
	r := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	ph.Webhook(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Bad signature.
	r = httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	r.Header.Set(gateway.SignatureHeader, "deadbeef")
	w = httptest.NewRecorder()
	ph.Webhook(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Valid signature fills the seat.
	r = httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	r.Header.Set(gateway.SignatureHeader, sandbox.Sign(payload))
	w = httptest.NewRecorder()
	ph.Webhook(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := parties.Get(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
}
