package models

import (
	"time"
)

// Game represents a scheduled sporting event quoted by bookmakers
type Game struct {
	ID             int64     `db:"id" json:"-"`
	ExternalGameID string    `db:"external_game_id" json:"game_id" validate:"required"`
	SportKey       string    `db:"sport_key" json:"sport_key" validate:"required"`
	CommenceTime   time.Time `db:"commence_time" json:"commence_time" validate:"required"`
	HomeTeam       string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam       string    `db:"away_team" json:"away_team" validate:"required"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// IsUpcoming checks if the game hasn't started yet
func (g *Game) IsUpcoming() bool {
	return time.Now().Before(g.CommenceTime)
}

// TimeToStart returns the duration until the game starts
func (g *Game) TimeToStart() time.Duration {
	return time.Until(g.CommenceTime)
}
