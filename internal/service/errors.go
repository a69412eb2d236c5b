package service

import "fmt"

// Kind classifies an error for propagation policy: validation and conflict
// errors are user-facing and non-retriable, gateway errors are transient and
// safe to retry behind the idempotency key, inconsistent-state errors are
// surfaced for operator attention and never auto-corrected.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotAuthorized  Kind = "not_authorized"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindGateway        Kind = "gateway"
	KindGatewayTimeout Kind = "gateway_timeout"
	KindInconsistent   Kind = "inconsistent_state"
)

// Error is the typed error returned by every service operation. Code names
// the specific failure (e.g. "party_full") so handlers and clients can
// branch without string-matching messages.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Named failures from the lifecycle and payment engines.
var (
	ErrPartyNotFound      = newError(KindNotFound, "party_not_found", "Party not found")
	ErrPaymentNotFound    = newError(KindNotFound, "payment_not_found", "Payment not found")
	ErrRequestNotFound    = newError(KindNotFound, "request_not_found", "Request not found")
	ErrNotParticipant     = newError(KindNotFound, "not_participant", "Not a participant of this party")
	ErrNotAuthorized      = newError(KindNotAuthorized, "not_authorized", "Not authorized")
	ErrPartyNotJoinable   = newError(KindValidation, "party_not_joinable", "Party is not available for requests")
	ErrPartyNotAvailable  = newError(KindValidation, "party_not_available", "Party not available")
	ErrAlreadyParticipant = newError(KindConflict, "already_participant", "Already a participant of this party")
	ErrAlreadyProcessed   = newError(KindConflict, "request_already_processed", "Request already processed")
	ErrRequestNotAccepted = newError(KindValidation, "request_not_accepted", "Only accepted requests can proceed to payment")
	ErrPartyFull          = newError(KindConflict, "party_full", "Party is full")
	ErrNotDraft           = newError(KindConflict, "not_draft", "Party already published or cancelled")
	ErrPartyTerminal      = newError(KindConflict, "party_terminal", "Party is already in a terminal state")
	ErrInsufficientImages = newError(KindValidation, "insufficient_images", "At least 3 images required")
	ErrAlreadyRefunded    = newError(KindConflict, "already_refunded", "Already refunded")
	ErrRefundInProgress   = newError(KindConflict, "refund_in_progress", "A refund for this payment is already in flight")
	ErrTxNotConfirmed     = newError(KindNotAuthorized, "transaction_not_confirmed", "Provider has no settled charge for this transaction")
	ErrAlreadyConfirmed   = newError(KindConflict, "arrival_already_confirmed", "Arrival already confirmed")
	ErrPaymentNotComplete = newError(KindValidation, "payment_not_completed", "Payment not completed")
	ErrEscrowNotHeld      = newError(KindConflict, "escrow_not_held", "Escrow already released or refunded")
	ErrArrivalNotDone     = newError(KindValidation, "arrival_not_confirmed", "Arrival not confirmed")
)

func validationError(message string) *Error {
	return newError(KindValidation, "validation_error", message)
}

func gatewayError(err error, timeout bool) *Error {
	if timeout {
		return &Error{Kind: KindGatewayTimeout, Code: "gateway_timeout", Message: "Payment gateway timed out", Err: err}
	}
	return &Error{Kind: KindGateway, Code: "gateway_error", Message: "Payment gateway call failed", Err: err}
}

func inconsistentState(message string) *Error {
	return newError(KindInconsistent, "inconsistent_state", message)
}
