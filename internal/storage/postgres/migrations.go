package postgres

import "context"

// migrate creates the schema if it does not exist. Statements are idempotent
// so repeated boots are safe.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS parties (
			id UUID PRIMARY KEY,
			organizer_id UUID NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			time TEXT NOT NULL,
			price_per_person DOUBLE PRECISION NOT NULL CHECK (price_per_person >= 0),
			max_participants INTEGER NOT NULL CHECK (max_participants >= 1),
			location JSONB NOT NULL DEFAULT '{}',
			images JSONB NOT NULL DEFAULT '[]',
			music_type TEXT NOT NULL DEFAULT '',
			dress_code TEXT NOT NULL DEFAULT '',
			age_range JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL,
			requests JSONB NOT NULL DEFAULT '[]',
			participants JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			published_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_organizer ON parties (organizer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_status_date ON parties (status, date)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			party_id UUID NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			commission DOUBLE PRECISION NOT NULL,
			net_amount DOUBLE PRECISION NOT NULL,
			provider TEXT NOT NULL,
			provider_transaction_id TEXT NOT NULL,
			status TEXT NOT NULL,
			escrow_status TEXT NOT NULL,
			arrival_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			arrival_confirmed_at TIMESTAMPTZ,
			released_at TIMESTAMPTZ,
			refunded_at TIMESTAMPTZ,
			refund_reason TEXT NOT NULL DEFAULT '',
			needs_review BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		// The webhook idempotency guard: one payment per provider transaction.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_provider_tx ON payments (provider_transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_user_party ON payments (user_id, party_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_needs_review ON payments (needs_review) WHERE needs_review`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
