package dto

// LocationPayload mirrors models.Location on the wire
type LocationPayload struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

// AgeRangePayload mirrors models.AgeRange on the wire
type AgeRangePayload struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

// CreatePartyRequest represents the payload to create a party draft
type CreatePartyRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Date            string          `json:"date"` // ISO 8601 format: YYYY-MM-DD or RFC3339
	Time            string          `json:"time"`
	PricePerPerson  float64         `json:"price_per_person"`
	MaxParticipants int             `json:"max_participants"`
	Location        LocationPayload `json:"location"`
	Images          []string        `json:"images"`
	MusicType       string          `json:"music_type"`
	DressCode       string          `json:"dress_code"`
	AgeRange        AgeRangePayload `json:"age_range"`
}

// PartyResponse represents a party object in responses
type PartyResponse struct {
	ID              string                `json:"id"`
	OrganizerID     string                `json:"organizer_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Date            string                `json:"date"`
	Time            string                `json:"time"`
	PricePerPerson  float64               `json:"price_per_person"`
	MaxParticipants int                   `json:"max_participants"`
	Location        LocationPayload       `json:"location"`
	Images          []string              `json:"images"`
	MusicType       string                `json:"music_type,omitempty"`
	DressCode       string                `json:"dress_code,omitempty"`
	AgeRange        AgeRangePayload       `json:"age_range"`
	Status          string                `json:"status"`
	Participants    []ParticipantResponse `json:"participants"`
	CreatedAt       string                `json:"created_at"`
	UpdatedAt       string                `json:"updated_at"`
	PublishedAt     string                `json:"published_at,omitempty"`
}

// ParticipantResponse is one roster entry in responses
type ParticipantResponse struct {
	UserID             string `json:"user_id"`
	JoinedAt           string `json:"joined_at"`
	PaymentID          string `json:"payment_id"`
	PaymentStatus      string `json:"payment_status"`
	ArrivalConfirmed   bool   `json:"arrival_confirmed"`
	ArrivalConfirmedAt string `json:"arrival_confirmed_at,omitempty"`
}

// RequestResponse is one join-request in responses
type RequestResponse struct {
	UserID      string `json:"user_id"`
	RequestedAt string `json:"requested_at"`
	Status      string `json:"status"`
	RespondedAt string `json:"responded_at,omitempty"`
}

// PartyEnvelope wraps a single party
type PartyEnvelope struct {
	Party PartyResponse `json:"party"`
}

// PartyListResponse wraps a list of parties
type PartyListResponse struct {
	Parties []PartyResponse `json:"parties"`
}

// LikeResponse reports the request state after a like
type LikeResponse struct {
	Message       string          `json:"message"`
	RequestStatus string          `json:"request_status"`
	Request       RequestResponse `json:"request"`
}

// UnlikeResponse confirms a withdrawn like
type UnlikeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

// RequestStatusResponse reports whether the caller has a request
type RequestStatusResponse struct {
	HasRequest    bool             `json:"has_request"`
	RequestStatus string           `json:"request_status,omitempty"`
	Request       *RequestResponse `json:"request,omitempty"`
}

// RequestListResponse wraps an organizer's view of all requests
type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
}

// RequestEnvelope wraps one answered request
type RequestEnvelope struct {
	Message string          `json:"message"`
	Request RequestResponse `json:"request"`
}

// JoinResponse is the amount due for an accepted request
type JoinResponse struct {
	PartyID string  `json:"party_id"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// ConfirmArrivalResponse wraps the updated participant entry
type ConfirmArrivalResponse struct {
	Message     string              `json:"message"`
	Participant ParticipantResponse `json:"participant"`
}

// CancelPartyResponse reports the cancellation and the refund fan-out
type CancelPartyResponse struct {
	Message string          `json:"message"`
	Party   PartyResponse   `json:"party"`
	Refunds []RefundOutcome `json:"refunds"`
}

// RefundOutcome is one participant's refund result
type RefundOutcome struct {
	UserID    string `json:"user_id"`
	PaymentID string `json:"payment_id"`
	Refunded  bool   `json:"refunded"`
	Error     string `json:"error,omitempty"`
}
