package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/storage"
)

const partyColumns = `id, organizer_id, title, description, date, time, price_per_person, max_participants,
	location, images, music_type, dress_code, age_range, status, requests, participants,
	created_at, updated_at, published_at`

func (s *Store) CreateParty(ctx context.Context, party *models.Party) error {
	location, images, ageRange, requests, participants, err := marshalPartyDocs(party)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO parties (`+partyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		party.ID, party.OrganizerID, party.Title, party.Description, party.Date, party.Time,
		party.PricePerPerson, party.MaxParticipants, location, images, party.MusicType,
		party.DressCode, ageRange, party.Status, requests, participants,
		party.CreatedAt, party.UpdatedAt, party.PublishedAt,
	)
	return err
}

func (s *Store) GetParty(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = $1`, id)
	party, err := scanParty(row)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return party, nil
}

func (s *Store) UpdateParty(ctx context.Context, party *models.Party) error {
	location, images, ageRange, requests, participants, err := marshalPartyDocs(party)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE parties
		    SET title = $1, description = $2, date = $3, time = $4,
		        price_per_person = $5, max_participants = $6, location = $7, images = $8,
		        music_type = $9, dress_code = $10, age_range = $11, status = $12,
		        requests = $13, participants = $14, updated_at = $15, published_at = $16
		  WHERE id = $17`,
		party.Title, party.Description, party.Date, party.Time,
		party.PricePerPerson, party.MaxParticipants, location, images,
		party.MusicType, party.DressCode, ageRange, party.Status,
		requests, participants, party.UpdatedAt, party.PublishedAt, party.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListPublishedParties(ctx context.Context, filter storage.PartyFilter) ([]*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE status = 'published'`
	args := []any{}
	n := 0
	add := func(clause string, val any) {
		n++
		args = append(args, val)
		query += fmt.Sprintf(clause, n)
	}
	if filter.City != "" {
		add(` AND location->>'city' = $%d`, filter.City)
	}
	if filter.MinDate != nil {
		add(` AND date >= $%d`, *filter.MinDate)
	}
	if filter.MaxDate != nil {
		add(` AND date <= $%d`, *filter.MaxDate)
	}
	if filter.MaxPrice != nil {
		add(` AND price_per_person <= $%d`, *filter.MaxPrice)
	}
	query += ` ORDER BY date ASC`
	if filter.Limit > 0 {
		add(` LIMIT $%d`, filter.Limit)
	}
	return s.queryParties(ctx, query, args...)
}

func (s *Store) ListPartiesByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*models.Party, error) {
	return s.queryParties(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE organizer_id = $1 ORDER BY created_at DESC`,
		organizerID)
}

func (s *Store) ListPartiesByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Party, error) {
	return s.queryParties(ctx,
		`SELECT `+partyColumns+` FROM parties
		  WHERE participants @> $1::jsonb
		  ORDER BY date ASC`,
		fmt.Sprintf(`[{"user_id": %q, "payment_status": "completed"}]`, userID))
}

func (s *Store) queryParties(ctx context.Context, query string, args ...any) ([]*models.Party, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []*models.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	return parties, rows.Err()
}

func scanParty(row pgx.Row) (*models.Party, error) {
	var p models.Party
	var location, images, ageRange, requests, participants []byte
	err := row.Scan(
		&p.ID, &p.OrganizerID, &p.Title, &p.Description, &p.Date, &p.Time,
		&p.PricePerPerson, &p.MaxParticipants, &location, &images, &p.MusicType,
		&p.DressCode, &ageRange, &p.Status, &requests, &participants,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(location, &p.Location); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ageRange, &p.AgeRange); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(requests, &p.Requests); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &p.Participants); err != nil {
		return nil, err
	}
	return &p, nil
}

func marshalPartyDocs(p *models.Party) (location, images, ageRange, requests, participants []byte, err error) {
	if location, err = json.Marshal(p.Location); err != nil {
		return
	}
	if images, err = json.Marshal(orEmptyImages(p.Images)); err != nil {
		return
	}
	if ageRange, err = json.Marshal(p.AgeRange); err != nil {
		return
	}
	if requests, err = json.Marshal(orEmptyRequests(p.Requests)); err != nil {
		return
	}
	participants, err = json.Marshal(orEmptyParticipants(p.Participants))
	return
}

// jsonb columns are NOT NULL, so nil slices marshal as [] rather than null.
func orEmptyImages(v []models.PartyImage) []models.PartyImage {
	if v == nil {
		return []models.PartyImage{}
	}
	return v
}

func orEmptyRequests(v []models.Request) []models.Request {
	if v == nil {
		return []models.Request{}
	}
	return v
}

func orEmptyParticipants(v []models.Participant) []models.Participant {
	if v == nil {
		return []models.Participant{}
	}
	return v
}
