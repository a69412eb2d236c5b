package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusReleased  = "released"
)

// Escrow sub-states. EscrowStatus tracks fund custody independently of the
// payment's lifecycle stage and is authoritative for release/refund checks.
const (
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
)

// Payment providers
const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

// Payment records funds received for one participant's spot at a party.
// ProviderTransactionID is the external idempotency key: the same provider
// transaction is never recorded twice.
type Payment struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	UserID                uuid.UUID  `json:"user_id" db:"user_id"`
	PartyID               uuid.UUID  `json:"party_id" db:"party_id"`
	Amount                float64    `json:"amount" db:"amount"`
	Commission            float64    `json:"commission" db:"commission"`
	NetAmount             float64    `json:"net_amount" db:"net_amount"`
	Provider              string     `json:"provider" db:"provider"`
	ProviderTransactionID string     `json:"provider_transaction_id" db:"provider_transaction_id"`
	Status                string     `json:"status" db:"status"`
	EscrowStatus          string     `json:"escrow_status" db:"escrow_status"`
	ArrivalConfirmed      bool       `json:"arrival_confirmed" db:"arrival_confirmed"`
	ArrivalConfirmedAt    *time.Time `json:"arrival_confirmed_at,omitempty" db:"arrival_confirmed_at"`
	ReleasedAt            *time.Time `json:"released_at,omitempty" db:"released_at"`
	RefundedAt            *time.Time `json:"refunded_at,omitempty" db:"refunded_at"`
	RefundReason          string     `json:"refund_reason,omitempty" db:"refund_reason"`
	// NeedsReview flags a payment whose participant-roster update failed
	// after funds were recorded; the reconciliation pass repairs these.
	NeedsReview bool      `json:"needs_review" db:"needs_review"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
