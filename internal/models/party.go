package models

import (
	"time"

	"github.com/google/uuid"
)

// Party statuses
const (
	PartyStatusDraft     = "draft"
	PartyStatusPublished = "published"
	PartyStatusFull      = "full"
	PartyStatusCancelled = "cancelled"
	PartyStatusCompleted = "completed"
	PartyStatusExpired   = "expired"
)

// Join-request statuses
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// Participant payment statuses (mirror of the referenced Payment)
const (
	ParticipantPaymentPending   = "pending"
	ParticipantPaymentCompleted = "completed"
	ParticipantPaymentRefunded  = "refunded"
)

// Location of a party. Address and coordinates stay hidden from users who
// have not completed payment.
type Location struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

// PartyImage is one image in a party's gallery
type PartyImage struct {
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// AgeRange restricts who a party is aimed at
type AgeRange struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

// Request is a participant's request to join a party. At most one exists per
// (party, user). Once accepted or rejected it never changes again.
type Request struct {
	UserID      uuid.UUID  `json:"user_id"`
	RequestedAt time.Time  `json:"requested_at"`
	Status      string     `json:"status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// Participant is a paid member of a party's roster. PaymentID references a
// Payment record; the Party never owns the Payment itself.
type Participant struct {
	UserID             uuid.UUID  `json:"user_id"`
	JoinedAt           time.Time  `json:"joined_at"`
	PaymentID          uuid.UUID  `json:"payment_id"`
	PaymentStatus      string     `json:"payment_status"`
	ArrivalConfirmed   bool       `json:"arrival_confirmed"`
	ArrivalConfirmedAt *time.Time `json:"arrival_confirmed_at,omitempty"`
}

// Party is the aggregate root for the event lifecycle. Requests and
// participants are embedded and only ever mutated through the party, which
// keeps the per-party single-writer discipline enforceable.
type Party struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	OrganizerID     uuid.UUID     `json:"organizer_id" db:"organizer_id"`
	Title           string        `json:"title" db:"title"`
	Description     string        `json:"description" db:"description"`
	Date            time.Time     `json:"date" db:"date"`
	Time            string        `json:"time" db:"time"`
	PricePerPerson  float64       `json:"price_per_person" db:"price_per_person"`
	MaxParticipants int           `json:"max_participants" db:"max_participants"`
	Location        Location      `json:"location" db:"location"`
	Images          []PartyImage  `json:"images" db:"images"`
	MusicType       string        `json:"music_type,omitempty" db:"music_type"`
	DressCode       string        `json:"dress_code,omitempty" db:"dress_code"`
	AgeRange        AgeRange      `json:"age_range" db:"age_range"`
	Status          string        `json:"status" db:"status"`
	Requests        []Request     `json:"requests" db:"requests"`
	Participants    []Participant `json:"participants" db:"participants"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
	PublishedAt     *time.Time    `json:"published_at,omitempty" db:"published_at"`
}

// FindRequest returns the request for userID, or nil
func (p *Party) FindRequest(userID uuid.UUID) *Request {
	for i := range p.Requests {
		if p.Requests[i].UserID == userID {
			return &p.Requests[i]
		}
	}
	return nil
}

// FindParticipant returns the participant entry for userID, or nil
func (p *Party) FindParticipant(userID uuid.UUID) *Participant {
	for i := range p.Participants {
		if p.Participants[i].UserID == userID {
			return &p.Participants[i]
		}
	}
	return nil
}

// FindParticipantByPayment returns the participant referencing paymentID, or nil
func (p *Party) FindParticipantByPayment(paymentID uuid.UUID) *Participant {
	for i := range p.Participants {
		if p.Participants[i].PaymentID == paymentID {
			return &p.Participants[i]
		}
	}
	return nil
}

// HasCompletedParticipant reports whether userID is on the roster with a
// completed payment
func (p *Party) HasCompletedParticipant(userID uuid.UUID) bool {
	pt := p.FindParticipant(userID)
	return pt != nil && pt.PaymentStatus == ParticipantPaymentCompleted
}

// IsTerminal reports whether the party can no longer transition
func (p *Party) IsTerminal() bool {
	switch p.Status {
	case PartyStatusCancelled, PartyStatusCompleted, PartyStatusExpired:
		return true
	}
	return false
}
