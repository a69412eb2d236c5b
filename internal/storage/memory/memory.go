// Package memory implements storage.Store with in-process maps. It backs the
// test suite and local development without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/storage"
)

// Store keeps parties and payments in memory. All returned entities are deep
// copies so callers can mutate them freely before writing back.
type Store struct {
	mu       sync.RWMutex
	parties  map[uuid.UUID]*models.Party
	payments map[uuid.UUID]*models.Payment
	// provider transaction ids already consumed, the unique-constraint stand-in
	txIDs map[string]uuid.UUID
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		parties:  make(map[uuid.UUID]*models.Party),
		payments: make(map[uuid.UUID]*models.Payment),
		txIDs:    make(map[string]uuid.UUID),
	}
}

func (s *Store) CreateParty(ctx context.Context, party *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[party.ID] = copyParty(party)
	return nil
}

func (s *Store) GetParty(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyParty(p), nil
}

func (s *Store) UpdateParty(ctx context.Context, party *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[party.ID]; !ok {
		return storage.ErrNotFound
	}
	s.parties[party.ID] = copyParty(party)
	return nil
}

func (s *Store) ListPublishedParties(ctx context.Context, filter storage.PartyFilter) ([]*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Party
	for _, p := range s.parties {
		if p.Status != models.PartyStatusPublished {
			continue
		}
		if filter.City != "" && p.Location.City != filter.City {
			continue
		}
		if filter.MinDate != nil && p.Date.Before(*filter.MinDate) {
			continue
		}
		if filter.MaxDate != nil && p.Date.After(*filter.MaxDate) {
			continue
		}
		if filter.MaxPrice != nil && p.PricePerPerson > *filter.MaxPrice {
			continue
		}
		out = append(out, copyParty(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) ListPartiesByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Party
	for _, p := range s.parties {
		if p.OrganizerID == organizerID {
			out = append(out, copyParty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListPartiesByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Party
	for _, p := range s.parties {
		pt := p.FindParticipant(userID)
		if pt != nil && pt.PaymentStatus == models.ParticipantPaymentCompleted {
			out = append(out, copyParty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.txIDs[payment.ProviderTransactionID]; taken {
		return storage.ErrDuplicateTransaction
	}
	s.txIDs[payment.ProviderTransactionID] = payment.ID
	s.payments[payment.ID] = copyPayment(payment)
	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyPayment(p), nil
}

func (s *Store) FindCompletedPayment(ctx context.Context, userID, partyID uuid.UUID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.UserID != userID || p.PartyID != partyID {
			continue
		}
		if p.Status == models.PaymentStatusCompleted || p.Status == models.PaymentStatusReleased {
			return copyPayment(p), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[payment.ID]; !ok {
		return storage.ErrNotFound
	}
	s.payments[payment.ID] = copyPayment(payment)
	return nil
}

func (s *Store) ListPaymentsByParty(ctx context.Context, partyID uuid.UUID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.PartyID == partyID {
			out = append(out, copyPayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListPaymentsNeedingReview(ctx context.Context) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.NeedsReview {
			out = append(out, copyPayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Close() error { return nil }

func copyParty(p *models.Party) *models.Party {
	c := *p
	c.Images = append([]models.PartyImage(nil), p.Images...)
	c.Requests = make([]models.Request, len(p.Requests))
	for i, r := range p.Requests {
		c.Requests[i] = r
		c.Requests[i].RespondedAt = copyTime(r.RespondedAt)
	}
	c.Participants = make([]models.Participant, len(p.Participants))
	for i, pt := range p.Participants {
		c.Participants[i] = pt
		c.Participants[i].ArrivalConfirmedAt = copyTime(pt.ArrivalConfirmedAt)
	}
	c.PublishedAt = copyTime(p.PublishedAt)
	return &c
}

func copyPayment(p *models.Payment) *models.Payment {
	c := *p
	c.ArrivalConfirmedAt = copyTime(p.ArrivalConfirmedAt)
	c.ReleasedAt = copyTime(p.ReleasedAt)
	c.RefundedAt = copyTime(p.RefundedAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
