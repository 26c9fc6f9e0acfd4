package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

type MatchWinner string

const (
	WinnerPlayer1 MatchWinner = "player1"
	WinnerPlayer2 MatchWinner = "player2"
	WinnerDraw    MatchWinner = "draw"
)

// DetermineWinner compares final scores. Equal scores are a draw.
func DetermineWinner(player1Score, player2Score int) MatchWinner {
	switch {
	case player1Score > player2Score:
		return WinnerPlayer1
	case player2Score > player1Score:
		return WinnerPlayer2
	default:
		return WinnerDraw
	}
}

// Match is a single fixture between two players. Scores, winner and played
// date are set together, exactly when status becomes completed.
type Match struct {
	ID            string       `json:"id" db:"id"`
	Player1ID     string       `json:"player1_id" db:"player1_id"`
	Player2ID     string       `json:"player2_id" db:"player2_id"`
	ScheduledDate time.Time    `json:"scheduled_date" db:"scheduled_date"`
	Status        MatchStatus  `json:"status" db:"status"`
	Player1Score  *int         `json:"player1_score,omitempty" db:"player1_score"`
	Player2Score  *int         `json:"player2_score,omitempty" db:"player2_score"`
	Winner        *MatchWinner `json:"winner,omitempty" db:"winner"`
	PlayedDate    *time.Time   `json:"played_date,omitempty" db:"played_date"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`

	Player1Name *string `json:"player1_name,omitempty" db:"player1_name"`
	Player2Name *string `json:"player2_name,omitempty" db:"player2_name"`
}

// Involves reports whether playerID is on either side of the match.
func (m *Match) Involves(playerID string) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// MatchOutcome is the finalized result handed to the standings ledger.
type MatchOutcome struct {
	MatchID   string
	Player1ID string
	Player2ID string
	Winner    MatchWinner
}
