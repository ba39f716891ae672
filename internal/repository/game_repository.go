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

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Upsert inserts or refreshes games and returns their internal ids keyed by external id
func (r *PostgresGameRepository) Upsert(ctx context.Context, games []models.Game) (map[string]int64, error) {
	ids := make(map[string]int64, len(games))
	if len(games) == 0 {
		return ids, nil
	}

	query := `
		INSERT INTO games (external_game_id, sport_key, commence_time, home_team, away_team)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_game_id) DO UPDATE SET
			commence_time = EXCLUDED.commence_time,
			home_team     = EXCLUDED.home_team,
			away_team     = EXCLUDED.away_team
		RETURNING id
	`

	batch := &pgx.Batch{}
	for i := range games {
		g := &games[i]
		batch.Queue(query, g.ExternalGameID, g.SportKey, g.CommenceTime, g.HomeTeam, g.AwayTeam)
	}

	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for i := range games {
		var id int64
		if err := results.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to upsert game %s: %w", games[i].ExternalGameID, err)
		}
		ids[games[i].ExternalGameID] = id
	}

	return ids, nil
}

// GetByExternalID retrieves a game by the provider's event id
func (r *PostgresGameRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Game, error) {
	query := `
		SELECT id, external_game_id, sport_key, commence_time, home_team, away_team, created_at
		FROM games
		WHERE external_game_id = $1
	`

	g := &models.Game{}
	err := r.db.Conn(ctx).QueryRow(ctx, query, externalID).Scan(
		&g.ID, &g.ExternalGameID, &g.SportKey, &g.CommenceTime, &g.HomeTeam, &g.AwayTeam, &g.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return g, nil
}

// GetBySport retrieves games of a sport starting at or after from
func (r *PostgresGameRepository) GetBySport(ctx context.Context, sportKey string, from time.Time) ([]*models.Game, error) {
	query := `
		SELECT id, external_game_id, sport_key, commence_time, home_team, away_team, created_at
		FROM games
		WHERE sport_key = $1 AND commence_time >= $2
		ORDER BY commence_time ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sportKey, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		if err := rows.Scan(&g.ID, &g.ExternalGameID, &g.SportKey, &g.CommenceTime, &g.HomeTeam, &g.AwayTeam, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
