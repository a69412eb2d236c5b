package dto

// CreateCheckoutRequest opens a provider checkout for a party
type CreateCheckoutRequest struct {
	PartyID  string `json:"party_id"`
	Provider string `json:"provider"` // stripe | paypal
}

// CreateCheckoutResponse carries the provider redirect
type CreateCheckoutResponse struct {
	ChargeRef string  `json:"charge_ref"`
	URL       string  `json:"url"`
	Amount    float64 `json:"amount"`
}

// WebhookAck acknowledges a processed webhook
type WebhookAck struct {
	Received bool `json:"received"`
}

// RefundRequest reverses a payment
type RefundRequest struct {
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

// ReleaseEscrowRequest releases held funds to the organizer
type ReleaseEscrowRequest struct {
	PaymentID string `json:"payment_id"`
}

// PaymentResponse represents a payment record in responses
type PaymentResponse struct {
	ID                    string  `json:"id"`
	UserID                string  `json:"user_id"`
	PartyID               string  `json:"party_id"`
	Amount                float64 `json:"amount"`
	Commission            float64 `json:"commission"`
	NetAmount             float64 `json:"net_amount"`
	Provider              string  `json:"provider"`
	ProviderTransactionID string  `json:"provider_transaction_id"`
	Status                string  `json:"status"`
	EscrowStatus          string  `json:"escrow_status"`
	ArrivalConfirmed      bool    `json:"arrival_confirmed"`
	ReleasedAt            string  `json:"released_at,omitempty"`
	RefundedAt            string  `json:"refunded_at,omitempty"`
	RefundReason          string  `json:"refund_reason,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// PaymentEnvelope wraps one payment with a message
type PaymentEnvelope struct {
	Message string          `json:"message"`
	Payment PaymentResponse `json:"payment"`
}

// ReconcileOutcome is one repaired payment from the reconciliation pass
type ReconcileOutcome struct {
	PaymentID string `json:"payment_id"`
	Action    string `json:"action"`
	Error     string `json:"error,omitempty"`
}

// ReconcileResponse wraps the reconciliation pass results
type ReconcileResponse struct {
	Outcomes []ReconcileOutcome `json:"outcomes"`
}
