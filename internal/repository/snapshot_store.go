package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/models"
)

// StoreResult reports what a snapshot write changed
type StoreResult struct {
	GamesUpserted  int   `json:"games_upserted"`
	PricesInserted int64 `json:"prices_inserted"`
}

// SnapshotWriter persists one normalized snapshot
type SnapshotWriter interface {
	Store(ctx context.Context, games []models.Game, prices []models.PriceRecord) (StoreResult, error)
}

// SnapshotStore writes games and prices atomically
type SnapshotStore struct {
	db     *database.DB
	games  GameRepository
	prices PriceRepository
}

// NewSnapshotStore creates a snapshot store over the given repositories
func NewSnapshotStore(db *database.DB, games GameRepository, prices PriceRepository) *SnapshotStore {
	return &SnapshotStore{db: db, games: games, prices: prices}
}

// Store upserts games then inserts prices in a single transaction
func (s *SnapshotStore) Store(ctx context.Context, games []models.Game, prices []models.PriceRecord) (StoreResult, error) {
	var result StoreResult

	err := s.db.WithTransaction(ctx, func(txCtx context.Context) error {
		ids, err := s.games.Upsert(txCtx, games)
		if err != nil {
			return err
		}
		result.GamesUpserted = len(ids)

		inserted, err := s.prices.InsertBatch(txCtx, prices)
		if err != nil {
			return err
		}
		result.PricesInserted = inserted
		return nil
	})
	if err != nil {
		return StoreResult{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	return result, nil
}
