package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Sandbox is a development gateway: charges always succeed and webhooks are
// verified with an HMAC-SHA256 signature over the raw payload, the same
// scheme real providers use. It lets the full payment flow run end to end
// without provider credentials. Created charges are remembered so the
// redirect-style confirmation can be vouched for, the way a real provider's
// execute call does.
type Sandbox struct {
	secret      []byte
	redirectURL string

	mu      sync.Mutex
	charges map[string]float64
}

// NewSandbox creates a sandbox gateway. secret signs and verifies webhook
// payloads; redirectURL is where checkouts send the participant.
func NewSandbox(secret, redirectURL string) *Sandbox {
	return &Sandbox{
		secret:      []byte(secret),
		redirectURL: redirectURL,
		charges:     make(map[string]float64),
	}
}

func (s *Sandbox) CreateCharge(ctx context.Context, amount float64, currency string, metadata map[string]string) (Charge, error) {
	if err := ctx.Err(); err != nil {
		return Charge{}, &Error{Timeout: true, Err: err}
	}
	ref := "sandbox_" + uuid.NewString()
	s.mu.Lock()
	s.charges[ref] = amount
	s.mu.Unlock()
	slog.Info("sandbox charge created",
		"ref", ref, "amount", amount, "currency", currency)
	return Charge{
		Ref:         ref,
		RedirectURL: fmt.Sprintf("%s?charge=%s", s.redirectURL, ref),
	}, nil
}

func (s *Sandbox) ConfirmCharge(ctx context.Context, transactionID string) (Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return Confirmation{}, &Error{Timeout: true, Err: err}
	}
	s.mu.Lock()
	amount, ok := s.charges[transactionID]
	s.mu.Unlock()
	if !ok {
		return Confirmation{}, fmt.Errorf("confirm %s: %w", transactionID, ErrUnknownTransaction)
	}
	return Confirmation{TransactionID: transactionID, Amount: amount}, nil
}

func (s *Sandbox) Refund(ctx context.Context, chargeRef string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return &Error{Timeout: true, Err: err}
	}
	slog.Info("sandbox refund", "ref", chargeRef, "amount", amount)
	return nil
}

func (s *Sandbox) Payout(ctx context.Context, chargeRef string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return &Error{Timeout: true, Err: err}
	}
	slog.Info("sandbox payout", "ref", chargeRef, "amount", amount)
	return nil
}

// webhookPayload is the sandbox wire format; real providers carry the same
// fields inside their own envelopes.
type webhookPayload struct {
	Type          string  `json:"type"`
	Provider      string  `json:"provider"`
	TransactionID string  `json:"transaction_id"`
	UserID        string  `json:"user_id"`
	PartyID       string  `json:"party_id"`
	Amount        float64 `json:"amount"`
}

func (s *Sandbox) VerifyWebhook(payload []byte, signature string) (Event, error) {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return Event{}, ErrInvalidSignature
	}

	var p webhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}
	return Event{
		Type:          p.Type,
		Provider:      p.Provider,
		TransactionID: p.TransactionID,
		UserID:        p.UserID,
		PartyID:       p.PartyID,
		Amount:        p.Amount,
	}, nil
}

// Sign computes the signature for a payload. Used by tests and by tooling
// that replays webhooks against a sandbox deployment.
func (s *Sandbox) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
