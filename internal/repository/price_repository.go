package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/models"
)

const priceColumns = `g.external_game_id, p.id, p.captured_at, p.bookmaker, p.market, p.outcome, p.line, p.odds_american, p.odds_decimal`

// PostgresPriceRepository implements PriceRepository for PostgreSQL
type PostgresPriceRepository struct {
	db *database.DB
}

// NewPostgresPriceRepository creates a new price repository
func NewPostgresPriceRepository(db *database.DB) PriceRepository {
	return &PostgresPriceRepository{db: db}
}

// InsertBatch inserts price records, resolving each game by external id.
// Rows already present for the snapshot and rows for unknown games are skipped.
// It returns the number of rows actually inserted.
func (r *PostgresPriceRepository) InsertBatch(ctx context.Context, prices []models.PriceRecord) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO prices (game_id, captured_at, bookmaker, market, outcome, line, odds_american, odds_decimal)
		SELECT g.id, $2::timestamptz, $3::text, $4::text, $5::text, $6::numeric, $7::integer, $8::numeric
		FROM games g
		WHERE g.external_game_id = $1
		ON CONFLICT ON CONSTRAINT uq_prices_snapshot DO NOTHING
	`

	batch := &pgx.Batch{}
	for i := range prices {
		p := &prices[i]
		batch.Queue(query,
			p.GameID, p.CapturedAt, p.Bookmaker, string(p.Market), p.Outcome,
			p.Line, p.OddsAmerican, p.OddsDecimal,
		)
	}

	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range prices {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to batch insert prices: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// GetLatestCapturedAt returns the newest snapshot time for a sport
func (r *PostgresPriceRepository) GetLatestCapturedAt(ctx context.Context, sportKey string) (time.Time, error) {
	query := `
		SELECT MAX(p.captured_at)
		FROM prices p
		JOIN games g ON g.id = p.game_id
		WHERE g.sport_key = $1
	`

	var latest *time.Time
	if err := r.db.Conn(ctx).QueryRow(ctx, query, sportKey).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest snapshot time: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}

	return latest.UTC(), nil
}

// GetLatest returns every record of the newest snapshot for a sport in insertion order
func (r *PostgresPriceRepository) GetLatest(ctx context.Context, sportKey string) ([]models.PriceRecord, error) {
	capturedAt, err := r.GetLatestCapturedAt(ctx, sportKey)
	if err != nil {
		return nil, err
	}
	return r.GetSnapshot(ctx, sportKey, capturedAt)
}

// GetSnapshot returns the records of one snapshot ordered by id, which keeps
// best-price tie-breaks reproducible between runs.
func (r *PostgresPriceRepository) GetSnapshot(ctx context.Context, sportKey string, capturedAt time.Time) ([]models.PriceRecord, error) {
	query := `
		SELECT ` + priceColumns + `
		FROM prices p
		JOIN games g ON g.id = p.game_id
		WHERE g.sport_key = $1 AND p.captured_at = $2
		ORDER BY p.id ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sportKey, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []models.PriceRecord
	for rows.Next() {
		var p models.PriceRecord
		var market string
		if err := rows.Scan(
			&p.GameID, &p.ID, &p.CapturedAt, &p.Bookmaker, &market, &p.Outcome,
			&p.Line, &p.OddsAmerican, &p.OddsDecimal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		p.Market = models.Market(market)
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return prices, nil
}
