package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/dto"
	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/service"
	"PARTYCONNECT_BACK-END/internal/storage"
	"PARTYCONNECT_BACK-END/internal/utils"
)

// PartyHandler manages party lifecycle and join-request endpoints
type PartyHandler struct {
	svc *service.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(svc *service.PartyService) *PartyHandler {
	return &PartyHandler{svc: svc}
}

// Parties dispatches /api/parties/{id}[/...] by path suffix and method.
func (h *PartyHandler) Parties(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/parties/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" || len(parts) == 0 {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "Unknown party route")
		return
	}

	partyID, err := uuid.Parse(parts[0])
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "party id must be a UUID")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.PartyDetail(w, r, partyID)
		case http.MethodPut, http.MethodPatch:
			h.UpdateParty(w, r, partyID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2:
		switch parts[1] {
		case "publish":
			h.PublishParty(w, r, partyID)
		case "like":
			h.LikeParty(w, r, partyID)
		case "unlike":
			h.UnlikeParty(w, r, partyID)
		case "request-status":
			h.RequestStatus(w, r, partyID)
		case "requests":
			h.ListRequests(w, r, partyID)
		case "join":
			h.JoinParty(w, r, partyID)
		case "confirm-arrival":
			h.ConfirmArrival(w, r, partyID)
		case "cancel":
			h.CancelParty(w, r, partyID, false)
		default:
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "Unknown party route")
		}
	case len(parts) == 4 && parts[1] == "requests":
		requestUserID, err := uuid.Parse(parts[2])
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "user id must be a UUID")
			return
		}
		switch parts[3] {
		case "accept":
			h.RespondToRequest(w, r, partyID, requestUserID, true)
		case "reject":
			h.RespondToRequest(w, r, partyID, requestUserID, false)
		default:
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "Unknown request route")
		}
	default:
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "Unknown party route")
	}
}

// AdminParties dispatches /api/admin/parties/{id}/cancel.
func (h *PartyHandler) AdminParties(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/parties/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "cancel" {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "Unknown admin route")
		return
	}
	partyID, err := uuid.Parse(parts[0])
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "party id must be a UUID")
		return
	}
	h.CancelParty(w, r, partyID, true)
}

// CreateParty handles POST /api/parties/create
// @Summary Create a party draft
// @Tags parties
// @Accept json
// @Produce json
// @Param payload body dto.CreatePartyRequest true "Party payload"
// @Success 201 {object} dto.PartyEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/parties/create [post]
func (h *PartyHandler) CreateParty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	in, ok := h.decodePartyInput(w, r)
	if !ok {
		return
	}

	party, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, dto.PartyEnvelope{Party: toPartyResponse(party, false)})
}

// UpdateParty handles PUT /api/parties/{id} while the party is in draft
// @Summary Update a draft party
// @Tags parties
// @Accept json
// @Produce json
// @Param id path string true "Party ID"
// @Param payload body dto.CreatePartyRequest true "Party payload"
// @Success 200 {object} dto.PartyEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id} [put]
func (h *PartyHandler) UpdateParty(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodePartyInput(w, r)
	if !ok {
		return
	}

	party, err := h.svc.UpdateDraft(r.Context(), partyID, userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PartyEnvelope{Party: toPartyResponse(party, false)})
}

// PublishParty handles POST /api/parties/{id}/publish
// @Summary Publish a draft party
// @Tags parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.PartyEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/publish [post]
func (h *PartyHandler) PublishParty(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	party, err := h.svc.Publish(r.Context(), partyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PartyEnvelope{Party: toPartyResponse(party, false)})
}

// LikeParty handles POST /api/parties/{id}/like
// @Summary Request to join a party
// @Tags requests
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.LikeResponse
// @Success 201 {object} dto.LikeResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/like [post]
func (h *PartyHandler) LikeParty(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	req, existed, err := h.svc.CreateRequest(r.Context(), partyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	message := "Join request created"
	if existed {
		status = http.StatusOK
		message = "Join request already exists"
	}
	utils.WriteJSONResponse(w, status, dto.LikeResponse{
		Message:       message,
		RequestStatus: req.Status,
		Request:       toRequestResponse(req),
	})
}

// UnlikeParty handles POST /api/parties/{id}/unlike
// @Summary Withdraw a pending join request
// @Tags requests
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.UnlikeResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/unlike [post]
func (h *PartyHandler) UnlikeParty(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	if err := h.svc.WithdrawRequest(r.Context(), partyID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.UnlikeResponse{Message: "Join request withdrawn", Liked: false})
}

// RequestStatus handles GET /api/parties/{id}/request-status
// @Summary Check the caller's join request
// @Tags requests
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.RequestStatusResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/parties/{id}/request-status [get]
func (h *PartyHandler) RequestStatus(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	req, err := h.svc.RequestStatus(r.Context(), partyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if req == nil {
		utils.WriteJSONResponse(w, http.StatusOK, dto.RequestStatusResponse{HasRequest: false})
		return
	}
	resp := toRequestResponse(req)
	utils.WriteJSONResponse(w, http.StatusOK, dto.RequestStatusResponse{
		HasRequest:    true,
		RequestStatus: req.Status,
		Request:       &resp,
	})
}

// ListRequests handles GET /api/parties/{id}/requests (organizer only)
// @Summary List join requests for a party
// @Tags requests
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.RequestListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/parties/{id}/requests [get]
func (h *PartyHandler) ListRequests(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	requests, err := h.svc.ListRequests(r.Context(), partyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]dto.RequestResponse, len(requests))
	for i := range requests {
		items[i] = toRequestResponse(&requests[i])
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.RequestListResponse{Requests: items})
}

// RespondToRequest handles POST /api/parties/{id}/requests/{uid}/accept|reject
// @Summary Accept or reject a join request
// @Tags requests
// @Produce json
// @Param id path string true "Party ID"
// @Param uid path string true "Requesting user ID"
// @Success 200 {object} dto.RequestEnvelope
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/requests/{uid}/accept [post]
func (h *PartyHandler) RespondToRequest(w http.ResponseWriter, r *http.Request, partyID, requestUserID uuid.UUID, accept bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	var (
		req *models.Request
		err error
	)
	if accept {
		req, err = h.svc.AcceptRequest(r.Context(), partyID, requestUserID, userID)
	} else {
		req, err = h.svc.RejectRequest(r.Context(), partyID, requestUserID, userID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.RequestEnvelope{
		Message: "Join request " + req.Status,
		Request: toRequestResponse(req),
	})
}

// JoinParty handles POST /api/parties/{id}/join
// @Summary Validate an accepted request and quote the amount due
// @Tags parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.JoinResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/join [post]
func (h *PartyHandler) JoinParty(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	quote, err := h.svc.Join(r.Context(), partyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.JoinResponse{
		PartyID: quote.PartyID.String(),
		Amount:  quote.Amount,
		Message: "Proceed to payment to take your spot",
	})
}

// ConfirmArrival handles POST /api/parties/{id}/confirm-arrival
// @Summary Confirm arrival at the party
// @Tags parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.ConfirmArrivalResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/confirm-arrival [post]
func (h *PartyHandler) ConfirmArrival(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	participant, err := h.svc.ConfirmArrival(r.Context(), partyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ConfirmArrivalResponse{
		Message:     "Arrival confirmed",
		Participant: toParticipantResponse(participant),
	})
}

// CancelParty handles POST /api/parties/{id}/cancel and the admin variant
// @Summary Cancel a party and refund completed participants
// @Tags parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.CancelPartyResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/parties/{id}/cancel [post]
func (h *PartyHandler) CancelParty(w http.ResponseWriter, r *http.Request, partyID uuid.UUID, asAdmin bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	party, outcomes, err := h.svc.Cancel(r.Context(), partyID, userID, asAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	refunds := make([]dto.RefundOutcome, len(outcomes))
	for i, o := range outcomes {
		refunds[i] = dto.RefundOutcome{
			UserID:    o.UserID.String(),
			PaymentID: o.PaymentID.String(),
			Refunded:  o.Refunded,
			Error:     o.Error,
		}
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.CancelPartyResponse{
		Message: "Party cancelled",
		Party:   toPartyResponse(party, false),
		Refunds: refunds,
	})
}

// PartyDetail handles GET /api/parties/{id}
// @Summary Get one party
// @Tags parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} dto.PartyEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/parties/{id} [get]
func (h *PartyHandler) PartyDetail(w http.ResponseWriter, r *http.Request, partyID uuid.UUID) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	party, err := h.svc.Get(r.Context(), partyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PartyEnvelope{
		Party: toPartyResponse(party, hideLocationFor(party, userID)),
	})
}

// ListParties handles GET /api/parties/list with catalogue filters
// @Summary List published parties
// @Tags parties
// @Produce json
// @Param city query string false "filter by city"
// @Param min_date query string false "ISO 8601 lower bound"
// @Param max_date query string false "ISO 8601 upper bound"
// @Param max_price query number false "price ceiling"
// @Param limit query int false "items per page"
// @Success 200 {object} dto.PartyListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/parties/list [get]
func (h *PartyHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := storage.PartyFilter{
		City:  strings.TrimSpace(q.Get("city")),
		Limit: 20,
	}
	if v := strings.TrimSpace(q.Get("min_date")); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "min_date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
			return
		}
		filter.MinDate = &t
	}
	if v := strings.TrimSpace(q.Get("max_date")); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "max_date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
			return
		}
		filter.MaxDate = &t
	}
	if v := strings.TrimSpace(q.Get("max_price")); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "max_price must be a non-negative number")
			return
		}
		filter.MaxPrice = &p
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 100 {
				n = 100
			}
			filter.Limit = n
		}
	}

	parties, err := h.svc.ListPublished(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writePartyList(w, parties, userID)
}

// MyCreatedParties handles GET /api/parties/my/created
// @Summary List parties the caller organizes
// @Tags parties
// @Produce json
// @Success 200 {object} dto.PartyListResponse
// @Router /api/parties/my/created [get]
func (h *PartyHandler) MyCreatedParties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	parties, err := h.svc.ListCreated(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writePartyList(w, parties, userID)
}

// MyJoinedParties handles GET /api/parties/my/joined
// @Summary List parties the caller has paid into
// @Tags parties
// @Produce json
// @Success 200 {object} dto.PartyListResponse
// @Router /api/parties/my/joined [get]
func (h *PartyHandler) MyJoinedParties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	parties, err := h.svc.ListJoined(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writePartyList(w, parties, userID)
}

func (h *PartyHandler) writePartyList(w http.ResponseWriter, parties []*models.Party, userID uuid.UUID) {
	items := make([]dto.PartyResponse, len(parties))
	for i, p := range parties {
		items[i] = toPartyResponse(p, hideLocationFor(p, userID))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.PartyListResponse{Parties: items})
}

func (h *PartyHandler) decodePartyInput(w http.ResponseWriter, r *http.Request) (service.CreatePartyInput, bool) {
	var req dto.CreatePartyRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return service.CreatePartyInput{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Date == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "date is required")
		return service.CreatePartyInput{}, false
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
		return service.CreatePartyInput{}, false
	}

	return service.CreatePartyInput{
		Title:           req.Title,
		Description:     req.Description,
		Date:            date,
		Time:            strings.TrimSpace(req.Time),
		PricePerPerson:  req.PricePerPerson,
		MaxParticipants: req.MaxParticipants,
		Location: models.Location{
			Address: req.Location.Address,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			City:    req.Location.City,
			Country: req.Location.Country,
		},
		Images:    req.Images,
		MusicType: req.MusicType,
		DressCode: req.DressCode,
		AgeRange:  models.AgeRange{Min: req.AgeRange.Min, Max: req.AgeRange.Max},
	}, true
}

// hideLocationFor decides whether the exact address stays hidden: organizers
// and participants with a completed payment see it, everyone else does not.
func hideLocationFor(party *models.Party, userID uuid.UUID) bool {
	if party.OrganizerID == userID {
		return false
	}
	return !party.HasCompletedParticipant(userID)
}

// authedUserID pulls the authenticated user id out of the request context.
func authedUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return uuid.Nil, false
	}
	return userID, true
}
