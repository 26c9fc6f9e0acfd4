package services

import (
	"sort"

	"github.com/Dosada05/league-system/models"
)

type outcome int

const (
	outcomeWin outcome = iota
	outcomeLoss
	outcomeDraw
)

// outcomeFor resolves the winner field of a match from one side's viewpoint.
func outcomeFor(winner models.MatchWinner, side models.MatchWinner) outcome {
	switch {
	case winner == models.WinnerDraw:
		return outcomeDraw
	case winner == side:
		return outcomeWin
	default:
		return outcomeLoss
	}
}

func pointsFor(o outcome) int {
	switch o {
	case outcomeWin:
		return models.PointsForWin
	case outcomeDraw:
		return models.PointsForDraw
	default:
		return models.PointsForLoss
	}
}

// applyOutcome records exactly one win, loss or draw on standing and keeps
// wins + losses + draws == games_played.
func applyOutcome(standing *models.Standing, o outcome) {
	switch o {
	case outcomeWin:
		standing.Wins++
	case outcomeLoss:
		standing.Losses++
	case outcomeDraw:
		standing.Draws++
	}
	standing.Points += pointsFor(o)
	standing.GamesPlayed++
}

// rankStandings orders standings by points descending. Equal points rank the
// player with fewer games played first, then by player id. Positions are
// assigned 1..N in that order and returned keyed by standing id.
func rankStandings(standings []*models.Standing) map[string]int {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed < b.GamesPlayed
		}
		return a.PlayerID < b.PlayerID
	})

	positions := make(map[string]int, len(standings))
	for i, standing := range standings {
		standing.Position = i + 1
		positions[standing.ID] = standing.Position
	}
	return positions
}
