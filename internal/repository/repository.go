package repository

import (
	"fmt"

	"github.com/yourusername/arb-scanner/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game      GameRepository
	Price     PriceRepository
	Alert     AlertRepository
	Snapshots *SnapshotStore
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	games := NewPostgresGameRepository(db)
	prices := NewPostgresPriceRepository(db)

	return &Repositories{
		Game:      games,
		Price:     prices,
		Alert:     NewPostgresAlertRepository(db),
		Snapshots: NewSnapshotStore(db, games, prices),
	}, nil
}
