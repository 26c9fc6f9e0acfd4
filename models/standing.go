package models

import "time"

// Scoring rule for a single finished match.
const (
	PointsForWin  = 2
	PointsForDraw = 1
	PointsForLoss = 0
)

// Standing is the per-player aggregate of match outcomes. Wins, losses and
// draws always add up to GamesPlayed.
type Standing struct {
	ID          string    `json:"id" db:"id"`
	PlayerID    string    `json:"player_id" db:"player_id"`
	Wins        int       `json:"wins" db:"wins"`
	Losses      int       `json:"losses" db:"losses"`
	Draws       int       `json:"draws" db:"draws"`
	Points      int       `json:"points" db:"points"`
	GamesPlayed int       `json:"games_played" db:"games_played"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	DisplayName *string `json:"display_name,omitempty" db:"display_name"`
}

// PlayerStats is the compact projection served by the player-stats endpoint.
type PlayerStats struct {
	Position    int `json:"position"`
	Points      int `json:"points"`
	Wins        int `json:"wins"`
	Draws       int `json:"draws"`
	Losses      int `json:"losses"`
	GamesPlayed int `json:"games_played"`
}

func (s *Standing) Stats() PlayerStats {
	return PlayerStats{
		Position:    s.Position,
		Points:      s.Points,
		Wins:        s.Wins,
		Draws:       s.Draws,
		Losses:      s.Losses,
		GamesPlayed: s.GamesPlayed,
	}
}

type LeagueStats struct {
	TotalPlayers    int `json:"totalPlayers"`
	TotalMatches    int `json:"totalMatches"`
	UpcomingMatches int `json:"upcomingMatches"`
}
