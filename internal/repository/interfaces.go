package repository

import (
	"context"
	"time"

	"github.com/yourusername/arb-scanner/internal/models"
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	Upsert(ctx context.Context, games []models.Game) (map[string]int64, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Game, error)
	GetBySport(ctx context.Context, sportKey string, from time.Time) ([]*models.Game, error)
}

// PriceRepository defines the interface for price snapshot access
type PriceRepository interface {
	InsertBatch(ctx context.Context, prices []models.PriceRecord) (int64, error)
	GetLatestCapturedAt(ctx context.Context, sportKey string) (time.Time, error)
	GetLatest(ctx context.Context, sportKey string) ([]models.PriceRecord, error)
	GetSnapshot(ctx context.Context, sportKey string, capturedAt time.Time) ([]models.PriceRecord, error)
}

// AlertRepository defines the interface for the alert fingerprint ledger
type AlertRepository interface {
	IsSent(ctx context.Context, fingerprint string) (bool, error)
	MarkSent(ctx context.Context, fingerprint string) error
	Get(ctx context.Context, fingerprint string) (*models.AlertRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
