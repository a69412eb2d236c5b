package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"PARTYCONNECT_BACK-END/internal/models"
	"PARTYCONNECT_BACK-END/internal/storage"
)

const paymentColumns = `id, user_id, party_id, amount, commission, net_amount, provider,
	provider_transaction_id, status, escrow_status, arrival_confirmed, arrival_confirmed_at,
	released_at, refunded_at, refund_reason, needs_review, created_at`

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		payment.ID, payment.UserID, payment.PartyID, payment.Amount, payment.Commission,
		payment.NetAmount, payment.Provider, payment.ProviderTransactionID, payment.Status,
		payment.EscrowStatus, payment.ArrivalConfirmed, payment.ArrivalConfirmedAt,
		payment.ReleasedAt, payment.RefundedAt, payment.RefundReason, payment.NeedsReview,
		payment.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return storage.ErrDuplicateTransaction
	}
	return err
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return payment, nil
}

func (s *Store) FindCompletedPayment(ctx context.Context, userID, partyID uuid.UUID) (*models.Payment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments
		  WHERE user_id = $1 AND party_id = $2 AND status IN ('completed', 'released')
		  LIMIT 1`, userID, partyID)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return payment, nil
}

func (s *Store) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE payments
		    SET status = $1, escrow_status = $2, arrival_confirmed = $3,
		        arrival_confirmed_at = $4, released_at = $5, refunded_at = $6,
		        refund_reason = $7, needs_review = $8
		  WHERE id = $9`,
		payment.Status, payment.EscrowStatus, payment.ArrivalConfirmed,
		payment.ArrivalConfirmedAt, payment.ReleasedAt, payment.RefundedAt,
		payment.RefundReason, payment.NeedsReview, payment.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListPaymentsByParty(ctx context.Context, partyID uuid.UUID) ([]*models.Payment, error) {
	return s.queryPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE party_id = $1 ORDER BY created_at ASC`,
		partyID)
}

func (s *Store) ListPaymentsNeedingReview(ctx context.Context) ([]*models.Payment, error) {
	return s.queryPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE needs_review ORDER BY created_at ASC`)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.UserID, &p.PartyID, &p.Amount, &p.Commission, &p.NetAmount, &p.Provider,
		&p.ProviderTransactionID, &p.Status, &p.EscrowStatus, &p.ArrivalConfirmed,
		&p.ArrivalConfirmedAt, &p.ReleasedAt, &p.RefundedAt, &p.RefundReason,
		&p.NeedsReview, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
