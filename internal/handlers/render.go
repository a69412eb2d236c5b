package handlers

import (
	"errors"
	"net/http"

	"PARTYCONNECT_BACK-END/internal/dto"
	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/service"
	"PARTYCONNECT_BACK-END/internal/utils"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Server error", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindNotAuthorized:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindGateway:
		status = http.StatusBadGateway
	case service.KindGatewayTimeout:
		status = http.StatusGatewayTimeout
	case service.KindInconsistent:
		// Surfaced, never masked: operators need to see these.
		status = http.StatusInternalServerError
	}

	utils.WriteJSONResponse(w, status, dto.ErrorResponse{
		Error:  svcErr.Message,
		Detail: svcErr.Error(),
		Code:   svcErr.Code,
	})
}

// toPartyResponse converts a party for the wire. When hideLocation is set the
// address and coordinates are stripped; city and country stay visible.
func toPartyResponse(p *models.Party, hideLocation bool) dto.PartyResponse {
	location := dto.LocationPayload{
		Address: p.Location.Address,
		Lat:     p.Location.Lat,
		Lng:     p.Location.Lng,
		City:    p.Location.City,
		Country: p.Location.Country,
	}
	if hideLocation {
		location.Address = ""
		location.Lat = 0
		location.Lng = 0
	}

	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = img.URL
	}

	participants := make([]dto.ParticipantResponse, len(p.Participants))
	for i, pt := range p.Participants {
		participants[i] = toParticipantResponse(&pt)
	}

	return dto.PartyResponse{
		ID:              p.ID.String(),
		OrganizerID:     p.OrganizerID.String(),
		Title:           p.Title,
		Description:     p.Description,
		Date:            utils.FormatTimestamp(p.Date),
		Time:            p.Time,
		PricePerPerson:  p.PricePerPerson,
		MaxParticipants: p.MaxParticipants,
		Location:        location,
		Images:          images,
		MusicType:       p.MusicType,
		DressCode:       p.DressCode,
		AgeRange:        dto.AgeRangePayload{Min: p.AgeRange.Min, Max: p.AgeRange.Max},
		Status:          p.Status,
		Participants:    participants,
		CreatedAt:       utils.FormatTimestamp(p.CreatedAt),
		UpdatedAt:       utils.FormatTimestamp(p.UpdatedAt),
		PublishedAt:     utils.FormatTimestampPtr(p.PublishedAt),
	}
}

func toParticipantResponse(pt *models.Participant) dto.ParticipantResponse {
	return dto.ParticipantResponse{
		UserID:             pt.UserID.String(),
		JoinedAt:           utils.FormatTimestamp(pt.JoinedAt),
		PaymentID:          pt.PaymentID.String(),
		PaymentStatus:      pt.PaymentStatus,
		ArrivalConfirmed:   pt.ArrivalConfirmed,
		ArrivalConfirmedAt: utils.FormatTimestampPtr(pt.ArrivalConfirmedAt),
	}
}

func toRequestResponse(r *models.Request) dto.RequestResponse {
	return dto.RequestResponse{
		UserID:      r.UserID.String(),
		RequestedAt: utils.FormatTimestamp(r.RequestedAt),
		Status:      r.Status,
		RespondedAt: utils.FormatTimestampPtr(r.RespondedAt),
	}
}

func toPaymentResponse(p *models.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                    p.ID.String(),
		UserID:                p.UserID.String(),
		PartyID:               p.PartyID.String(),
		Amount:                p.Amount,
		Commission:            p.Commission,
		NetAmount:             p.NetAmount,
		Provider:              p.Provider,
		ProviderTransactionID: p.ProviderTransactionID,
		Status:                p.Status,
		EscrowStatus:          p.EscrowStatus,
		ArrivalConfirmed:      p.ArrivalConfirmed,
		ReleasedAt:            utils.FormatTimestampPtr(p.ReleasedAt),
		RefundedAt:            utils.FormatTimestampPtr(p.RefundedAt),
		RefundReason:          p.RefundReason,
		CreatedAt:             utils.FormatTimestamp(p.CreatedAt),
	}
}
