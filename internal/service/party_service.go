// Package service implements the party lifecycle, join-request ledger,
// payment record store and escrow coordination on top of storage.Store.
// All mutating operations against one party are serialized by a per-party
// lock; see locker.go.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/storage"
)

// MinPartyImages is the gallery size required before a party can publish.
const MinPartyImages = 3

// PartyService owns the party lifecycle and the join-request ledger.
type PartyService struct {
	store    storage.Store
	locks    *partyLocker
	payments *PaymentService
	now      func() time.Time
}

// NewPartyService creates the lifecycle service. Call BindPayments before
// using Cancel or ConfirmArrival.
func NewPartyService(store storage.Store) *PartyService {
	return &PartyService{
		store: store,
		locks: newPartyLocker(),
		now:   time.Now,
	}
}

// BindPayments wires the payment service in; the two services call each
// other (refund fan-out, release trigger, roster updates) and share the
// per-party locks.
func (s *PartyService) BindPayments(p *PaymentService) {
	s.payments = p
	p.locks = s.locks
	p.parties = s
}

// CreatePartyInput carries the validated fields for a new draft party.
type CreatePartyInput struct {
	Title           string
	Description     string
	Date            time.Time
	Time            string
	PricePerPerson  float64
	MaxParticipants int
	Location        models.Location
	Images          []string
	MusicType       string
	DressCode       string
	AgeRange        models.AgeRange
}

func (in *CreatePartyInput) validate(now time.Time) error {
	if in.Title == "" || in.Description == "" || in.Time == "" || in.Date.IsZero() {
		return validationError("Missing required fields")
	}
	if in.PricePerPerson <= 0 {
		return validationError("price_per_person must be positive")
	}
	if in.MaxParticipants < 1 {
		return validationError("max_participants must be at least 1")
	}
	if len(in.Images) < MinPartyImages {
		return ErrInsufficientImages
	}
	if !in.Date.After(now) {
		return validationError("Party date must be in the future")
	}
	return nil
}

// Create makes a new party in draft for the organizer.
func (s *PartyService) Create(ctx context.Context, organizerID uuid.UUID, in CreatePartyInput) (*models.Party, error) {
	now := s.now()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	images := make([]models.PartyImage, len(in.Images))
	for i, url := range in.Images {
		images[i] = models.PartyImage{URL: url, Order: i}
	}

	party := &models.Party{
		ID:              uuid.New(),
		OrganizerID:     organizerID,
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date,
		Time:            in.Time,
		PricePerPerson:  in.PricePerPerson,
		MaxParticipants: in.MaxParticipants,
		Location:        in.Location,
		Images:          images,
		MusicType:       in.MusicType,
		DressCode:       in.DressCode,
		AgeRange:        in.AgeRange,
		Status:          models.PartyStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateParty(ctx, party); err != nil {
		return nil, err
	}
	slog.Info("party created", "party_id", party.ID, "organizer_id", organizerID)
	return party, nil
}

// UpdateDraft edits a party's fields while it is still in draft.
func (s *PartyService) UpdateDraft(ctx context.Context, partyID, actingOrganizerID uuid.UUID, in CreatePartyInput) (*models.Party, error) {
	unlock := s.locks.Lock(partyID)
	defer unlock()

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.OrganizerID != actingOrganizerID {
		return nil, ErrNotAuthorized
	}
	if party.Status != models.PartyStatusDraft {
		return nil, ErrNotDraft
	}
	now := s.now()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	images := make([]models.PartyImage, len(in.Images))
	for i, url := range in.Images {
		images[i] = models.PartyImage{URL: url, Order: i}
	}
	party.Title = in.Title
	party.Description = in.Description
	party.Date = in.Date
	party.Time = in.Time
	party.PricePerPerson = in.PricePerPerson
	party.MaxParticipants = in.MaxParticipants
	party.Location = in.Location
	party.Images = images
	party.MusicType = in.MusicType
	party.DressCode = in.DressCode
	party.AgeRange = in.AgeRange
	party.UpdatedAt = now

	if err := s.store.UpdateParty(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// Publish moves a draft party to published.
func (s *PartyService) Publish(ctx context.Context, partyID, actingOrganizerID uuid.UUID) (*models.Party, error) {
	unlock := s.locks.Lock(partyID)
	defer unlock()

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.OrganizerID != actingOrganizerID {
		return nil, ErrNotAuthorized
	}
	if party.Status != models.PartyStatusDraft {
		return nil, ErrNotDraft
	}
	if len(party.Images) < MinPartyImages {
		return nil, ErrInsufficientImages
	}

	now := s.now()
	party.Status = models.PartyStatusPublished
	party.PublishedAt = &now
	party.UpdatedAt = now
	if err := s.store.UpdateParty(ctx, party); err != nil {
		return nil, err
	}
	slog.Info("party published", "party_id", party.ID)
	return party, nil
}

// CreateRequest records a participant's request to join ("like"). When the
// user already has a request the existing one is returned with existed=true
// instead of an error, so webhook-style retries stay harmless.
func (s *PartyService) CreateRequest(ctx context.Context, partyID, userID uuid.UUID) (request *models.Request, existed bool, err error) {
	unlock := s.locks.Lock(partyID)
	defer unlock()

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, false, err
	}
	if existing := party.FindRequest(userID); existing != nil {
		r := *existing
		return &r, true, nil
	}
	if party.HasCompletedParticipant(userID) {
		return nil, false, ErrAlreadyParticipant
	}
	if party.Status != models.PartyStatusPublished {
		return nil, false, ErrPartyNotJoinable
	}

	now := s.now()
	party.Requests = append(party.Requests, models.Request{
		UserID:      userID,
		RequestedAt: now,
		Status:      models.RequestStatusPending,
	})
	party.UpdatedAt = now
	if err := s.store.UpdateParty(ctx, party); err != nil {
		return nil, false, err
	}
	r := party.Requests[len(party.Requests)-1]
	slog.Info("join request created", "party_id", partyID, "user_id", userID)
	return &r, false, nil
}

// WithdrawRequest removes a still-pending request ("unlike"). A missing
// request is a no-op; an already-answered request stays as it is.
func (s *PartyService) WithdrawRequest(ctx context.Context, partyID, userID uuid.UUID) error {
	unlock := s.locks.Lock(partyID)
	defer unlock()

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return err
	}
	req := party.FindRequest(userID)
	if req == nil {
		return nil
	}
	if req.Status != models.RequestStatusPending {
		return ErrAlreadyProcessed
	}

	kept := party.Requests[:0]
	for _, r := range party.Requests {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	party.Requests = kept
	party.UpdatedAt = s.now()
	return s.store.UpdateParty(ctx, party)
}

// RequestStatus looks up the user's request. Absence is a valid result, not
// an error.
func (s *PartyService) RequestStatus(ctx context.Context, partyID, userID uuid.UUID) (*models.Request, error) {
	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	req := party.FindRequest(userID)
	if req == nil {
		return nil, nil
	}
	r := *req
	return &r, nil
}

// ListRequests returns all requests for the organizer's party.
func (s *PartyService) ListRequests(ctx context.Context, partyID, actingOrganizerID uuid.UUID) ([]models.Request, error) {
	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.OrganizerID != actingOrganizerID {
		return nil, ErrNotAuthorized
	}
	return party.Requests, nil
}

// AcceptRequest flips a pending request to accepted. Capacity is re-checked
// here against the current roster, not against other accepted requests:
// acceptance is permission to attempt payment, never a capacity reservation.
func (s *PartyService) AcceptRequest(ctx context.Context, partyID, userID, actingOrganizerID uuid.UUID) (*models.Request, error) {
	return s.respondToRequest(ctx, partyID, userID, actingOrganizerID, models.RequestStatusAccepted)
}

// RejectRequest flips a pending request to rejected.
func (s *PartyService) RejectRequest(ctx context.Context, partyID, userID, actingOrganizerID uuid.UUID) (*models.Request, error) {
	return s.respondToRequest(ctx, partyID, userID, actingOrganizerID, models.RequestStatusRejected)
}

func (s *PartyService) respondToRequest(ctx context.Context, partyID, userID, actingOrganizerID uuid.UUID, status string) (*models.Request, error) {
	unlock := s.locks.Lock(partyID)
	defer unlock()

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.OrganizerID != actingOrganizerID {
		return nil, ErrNotAuthorized
	}
	req := party.FindRequest(userID)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}
	if status == models.RequestStatusAccepted && len(party.Participants) >= party.MaxParticipants {
		return nil, ErrPartyFull
	}

	now := s.now()
	req.Status = status
	req.RespondedAt = &now
	party.UpdatedAt = now
	if err := s.store.UpdateParty(ctx, party); err != nil {
		return nil, err
	}
	r := *req
	slog.Info("join request answered", "party_id", partyID, "user_id", userID, "status", status)
	return &r, nil
}

// JoinQuote is what a participant owes to take their accepted spot.
type JoinQuote struct {
	PartyID uuid.UUID
	Amount  float64
}

// Join validates that the user may proceed to payment and returns the
// amount due. It does not reserve anything; the payment webhook is what
// fills the seat.
func (s *PartyService) Join(ctx context.Context, partyID, userID uuid.UUID) (*JoinQuote, error) {
	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.Status != models.PartyStatusPublished && party.Status != models.PartyStatusFull {
		return nil, ErrPartyNotAvailable
	}
	if len(party.Participants) >= party.MaxParticipants {
		return nil, ErrPartyFull
	}
	if party.FindParticipant(userID) != nil {
		return nil, ErrAlreadyParticipant
	}
	req := party.FindRequest(userID)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.RequestStatusAccepted {
		return nil, ErrRequestNotAccepted
	}
	return &JoinQuote{PartyID: party.ID, Amount: party.PricePerPerson}, nil
}

// ConfirmArrival marks the participant as arrived and triggers an escrow
// release attempt. The release attempt's failure never fails the confirm.
func (s *PartyService) ConfirmArrival(ctx context.Context, partyID, userID uuid.UUID) (*models.Participant, error) {
	unlock := s.locks.Lock(partyID)

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		unlock()
		return nil, err
	}
	participant := party.FindParticipant(userID)
	if participant == nil {
		unlock()
		return nil, ErrNotParticipant
	}
	if participant.PaymentStatus != models.ParticipantPaymentCompleted {
		unlock()
		return nil, ErrPaymentNotComplete
	}
	if participant.ArrivalConfirmed {
		unlock()
		return nil, ErrAlreadyConfirmed
	}

	now := s.now()
	participant.ArrivalConfirmed = true
	participant.ArrivalConfirmedAt = &now
	party.UpdatedAt = now
	if err := s.store.UpdateParty(ctx, party); err != nil {
		unlock()
		return nil, err
	}
	result := *participant
	paymentID := participant.PaymentID
	unlock()

	// Mirror the confirmation onto the payment record and attempt release.
	if s.payments != nil {
		if err := s.payments.markArrival(ctx, paymentID, now); err != nil {
			slog.Error("arrival mirror failed", "payment_id", paymentID, "error", err)
		}
		if _, err := s.payments.ReleaseEscrow(ctx, paymentID); err != nil {
			slog.Warn("escrow release attempt failed", "payment_id", paymentID, "error", err)
		}
	}
	return &result, nil
}

// RefundOutcome reports one participant's refund result from a cancel
// fan-out.
type RefundOutcome struct {
	UserID    uuid.UUID `json:"user_id"`
	PaymentID uuid.UUID `json:"payment_id"`
	Refunded  bool      `json:"refunded"`
	Error     string    `json:"error,omitempty"`
}

// Cancel moves the party to cancelled from any non-terminal state and
// refunds every completed participant. Refunds are isolated: one failing
// never blocks the others and never reverts the cancellation.
func (s *PartyService) Cancel(ctx context.Context, partyID, actingUserID uuid.UUID, asAdmin bool) (*models.Party, []RefundOutcome, error) {
	unlock := s.locks.Lock(partyID)

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if !asAdmin && party.OrganizerID != actingUserID {
		unlock()
		return nil, nil, ErrNotAuthorized
	}
	if party.IsTerminal() {
		unlock()
		return nil, nil, ErrPartyTerminal
	}

	party.Status = models.PartyStatusCancelled
	party.UpdatedAt = s.now()
	if err := s.store.UpdateParty(ctx, party); err != nil {
		unlock()
		return nil, nil, err
	}

	type target struct{ userID, paymentID uuid.UUID }
	var targets []target
	for _, p := range party.Participants {
		if p.PaymentStatus == models.ParticipantPaymentCompleted {
			targets = append(targets, target{p.UserID, p.PaymentID})
		}
	}
	unlock()

	// Fan-out refunds outside the lock; each attempt is independent.
	outcomes := make([]RefundOutcome, 0, len(targets))
	for _, t := range targets {
		outcome := RefundOutcome{UserID: t.userID, PaymentID: t.paymentID}
		if s.payments == nil {
			outcome.Error = "payment service not configured"
		} else if _, err := s.payments.refund(ctx, t.paymentID, "party cancelled"); err != nil {
			outcome.Error = err.Error()
			slog.Error("cancel fan-out refund failed",
				"party_id", partyID, "payment_id", t.paymentID, "error", err)
		} else {
			outcome.Refunded = true
		}
		outcomes = append(outcomes, outcome)
	}

	slog.Info("party cancelled", "party_id", partyID, "refunds", len(outcomes))
	return party, outcomes, nil
}

// Get returns a party by id.
func (s *PartyService) Get(ctx context.Context, partyID uuid.UUID) (*models.Party, error) {
	return s.getParty(ctx, partyID)
}

// ListPublished returns published parties matching the filter.
func (s *PartyService) ListPublished(ctx context.Context, filter storage.PartyFilter) ([]*models.Party, error) {
	return s.store.ListPublishedParties(ctx, filter)
}

// ListCreated returns the organizer's parties.
func (s *PartyService) ListCreated(ctx context.Context, organizerID uuid.UUID) ([]*models.Party, error) {
	return s.store.ListPartiesByOrganizer(ctx, organizerID)
}

// ListJoined returns parties where the user is a completed participant.
func (s *PartyService) ListJoined(ctx context.Context, userID uuid.UUID) ([]*models.Party, error) {
	return s.store.ListPartiesByParticipant(ctx, userID)
}

func (s *PartyService) getParty(ctx context.Context, partyID uuid.UUID) (*models.Party, error) {
	party, err := s.store.GetParty(ctx, partyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return party, nil
}

// addParticipant appends a paid participant to the roster. The Full check is
// the last line of consistency defense: the join/accept gate should already
// have excluded an overflow, but concurrent payments can still race to the
// final slot. Caller holds the party lock.
func addParticipant(party *models.Party, userID, paymentID uuid.UUID, now time.Time) error {
	if len(party.Participants) >= party.MaxParticipants {
		return ErrPartyFull
	}
	party.Participants = append(party.Participants, models.Participant{
		UserID:        userID,
		JoinedAt:      now,
		PaymentID:     paymentID,
		PaymentStatus: models.ParticipantPaymentCompleted,
	})
	// A cancelled or draft party is never auto-promoted to full.
	if len(party.Participants) >= party.MaxParticipants && party.Status == models.PartyStatusPublished {
		party.Status = models.PartyStatusFull
	}
	party.UpdatedAt = now
	return nil
}

// removeParticipant drops the roster entry referencing paymentID. A full
// party stays full even when the removal frees a slot; the latch is
// deliberately one-way. Caller holds the party lock.
func removeParticipant(party *models.Party, paymentID uuid.UUID, now time.Time) bool {
	kept := party.Participants[:0]
	removed := false
	for _, p := range party.Participants {
		if p.PaymentID == paymentID {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	party.Participants = kept
	if removed {
		party.UpdatedAt = now
	}
	return removed
}
