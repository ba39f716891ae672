package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/models"
)

// PostgresAlertRepository implements AlertRepository for PostgreSQL
type PostgresAlertRepository struct {
	db *database.DB
}

// NewPostgresAlertRepository creates a new alert repository
func NewPostgresAlertRepository(db *database.DB) AlertRepository {
	return &PostgresAlertRepository{db: db}
}

// IsSent reports whether a fingerprint has already been alerted
func (r *PostgresAlertRepository) IsSent(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM alerts_sent WHERE fingerprint = $1)", fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check alert ledger: %w", err)
	}
	return exists, nil
}

// MarkSent records a fingerprint; marking twice is a no-op
func (r *PostgresAlertRepository) MarkSent(ctx context.Context, fingerprint string) error {
	_, err := r.db.Conn(ctx).Exec(ctx,
		"INSERT INTO alerts_sent (fingerprint) VALUES ($1) ON CONFLICT (fingerprint) DO NOTHING", fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}
	return nil
}

// Get retrieves the ledger entry for a fingerprint
func (r *PostgresAlertRepository) Get(ctx context.Context, fingerprint string) (*models.AlertRecord, error) {
	rec := &models.AlertRecord{}
	err := r.db.Conn(ctx).QueryRow(ctx,
		"SELECT fingerprint, sent_at FROM alerts_sent WHERE fingerprint = $1", fingerprint,
	).Scan(&rec.Fingerprint, &rec.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return rec, nil
}

// DeleteOlderThan prunes ledger entries sent before cutoff
func (r *PostgresAlertRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Conn(ctx).Exec(ctx, "DELETE FROM alerts_sent WHERE sent_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune alert ledger: %w", err)
	}
	return tag.RowsAffected(), nil
}
