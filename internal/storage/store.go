// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/models"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateTransaction is returned by CreatePayment when a payment
	// with the same provider transaction id already exists. This is the
	// storage half of the webhook idempotency guard.
	ErrDuplicateTransaction = errors.New("duplicate provider transaction")
)

// PartyFilter narrows ListPublishedParties.
type PartyFilter struct {
	City     string
	MinDate  *time.Time
	MaxDate  *time.Time
	MaxPrice *float64
	Limit    int
}

// Store defines the interface for party and payment persistence.
// This abstraction allows swapping storage backends (Postgres, in-memory)
// without changing the service layer. A party row is always written as a
// whole document, so a single UpdateParty is an atomic read-modify-write
// from the caller's perspective.
type Store interface {
	CreateParty(ctx context.Context, party *models.Party) error
	GetParty(ctx context.Context, id uuid.UUID) (*models.Party, error)
	UpdateParty(ctx context.Context, party *models.Party) error
	ListPublishedParties(ctx context.Context, filter PartyFilter) ([]*models.Party, error)
	ListPartiesByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*models.Party, error)
	ListPartiesByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Party, error)

	// CreatePayment persists a new payment. Fails with
	// ErrDuplicateTransaction if the provider transaction id is taken.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// FindCompletedPayment returns the settled payment for (user, party),
	// or ErrNotFound. Settled means completed or released: a payment whose
	// escrow has already been paid out still blocks a re-purchase. Refunded
	// payments do not match, so a refunded user may buy back in.
	FindCompletedPayment(ctx context.Context, userID, partyID uuid.UUID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	ListPaymentsByParty(ctx context.Context, partyID uuid.UUID) ([]*models.Payment, error)
	// ListPaymentsNeedingReview returns payments flagged for the
	// reconciliation pass.
	ListPaymentsNeedingReview(ctx context.Context) ([]*models.Payment, error)

	Close() error
}
