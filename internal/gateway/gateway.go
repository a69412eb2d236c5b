// Package gateway abstracts the external payment providers. The engine only
// needs three capabilities: create a charge, refund a charge, and verify a
// webhook payload. Provider specifics (Stripe sessions, PayPal execute) live
// behind this interface.
package gateway

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrUnknownTransaction is returned when the provider has no settled charge
// for the given transaction id.
var ErrUnknownTransaction = errors.New("unknown transaction")

// Error wraps a provider failure. Timeout distinguishes deadline expiry so
// callers can report GatewayTimeout and retry safely behind the idempotency
// key.
type Error struct {
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	if e.Timeout {
		return "gateway timeout: " + e.Err.Error()
	}
	return "gateway error: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a gateway timeout.
func IsTimeout(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Timeout
}

// Charge is the provider's handle for a created checkout.
type Charge struct {
	Ref         string
	RedirectURL string
}

// Confirmation is the provider's own record of a settled charge.
type Confirmation struct {
	TransactionID string
	Amount        float64
}

// Event is a verified payment confirmation extracted from a webhook.
type Event struct {
	Type          string
	Provider      string
	TransactionID string
	UserID        string
	PartyID       string
	Amount        float64
}

// EventCheckoutCompleted is the only event type the engine reacts to.
const EventCheckoutCompleted = "checkout.completed"

// SignatureHeader carries the webhook payload signature.
const SignatureHeader = "X-Payment-Signature"

// Gateway is the consumed payment-provider capability.
type Gateway interface {
	// CreateCharge opens a checkout for the given amount and returns the
	// provider reference plus the URL the participant is redirected to.
	CreateCharge(ctx context.Context, amount float64, currency string, metadata map[string]string) (Charge, error)

	// ConfirmCharge asks the provider whether the transaction settled, and
	// for how much. Redirect-style confirmations must call this before
	// trusting anything the client supplied; only the webhook path, which
	// authenticates with the payload signature, may skip it.
	ConfirmCharge(ctx context.Context, transactionID string) (Confirmation, error)

	// Refund returns the full charged amount to the participant.
	Refund(ctx context.Context, chargeRef string, amount float64) error

	// Payout transfers released escrow funds to the organizer.
	Payout(ctx context.Context, chargeRef string, amount float64) error

	// VerifyWebhook checks the payload signature and decodes the event.
	VerifyWebhook(payload []byte, signature string) (Event, error)
}
