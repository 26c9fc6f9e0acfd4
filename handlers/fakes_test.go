package handlers

import (
	"context"
	"io"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/services"
)

type fakePlayerService struct {
	players      map[string]*models.Player
	public       []models.PublicPlayer
	lastRegister services.RegisterProfileInput
	lastUpdate   services.UpdateProfileInput
	avatarType   string
	avatarBytes  []byte
	err          error
}

func (f *fakePlayerService) Register(_ context.Context, id models.Identity, input services.RegisterProfileInput) (*models.Player, error) {
	f.lastRegister = input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Player{ID: id.UserID, DisplayName: input.DisplayName, Email: id.Email, Role: id.Role}, nil
}

func (f *fakePlayerService) GetProfile(_ context.Context, playerID string) (*models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.players[playerID]
	if !ok {
		return nil, services.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakePlayerService) UpdateProfile(_ context.Context, playerID string, input services.UpdateProfileInput) (*models.Player, error) {
	f.lastUpdate = input
	if f.err != nil {
		return nil, f.err
	}
	p := &models.Player{ID: playerID}
	if input.DisplayName != nil {
		p.DisplayName = *input.DisplayName
	}
	return p, nil
}

func (f *fakePlayerService) UploadAvatar(_ context.Context, playerID string, contentType string, file io.Reader) (*models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.avatarType = contentType
	f.avatarBytes = data
	url := "https://cdn.example.com/avatars/" + playerID
	return &models.Player{ID: playerID, AvatarURL: &url}, nil
}

func (f *fakePlayerService) ListPlayers(context.Context) ([]models.PublicPlayer, error) {
	return f.public, f.err
}

func (f *fakePlayerService) SearchByName(_ context.Context, fragment string) ([]models.PublicPlayer, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.PublicPlayer, 0)
	for _, p := range f.public {
		if p.DisplayName == fragment {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeMatchService struct {
	matches      map[string]*models.Match
	lastSchedule services.ScheduleMatchInput
	lastResult   services.RecordResultInput
	lastPlayerID *string
	err          error
}

func (f *fakeMatchService) Schedule(_ context.Context, input services.ScheduleMatchInput) (*models.Match, error) {
	f.lastSchedule = input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Match{ID: "match-1", Player1ID: input.Player1ID, Player2ID: input.Player2ID, Status: models.MatchStatusScheduled}, nil
}

func (f *fakeMatchService) RecordResult(_ context.Context, matchID string, input services.RecordResultInput) (*models.Match, error) {
	f.lastResult = input
	if f.err != nil {
		return nil, f.err
	}
	winner := models.DetermineWinner(*input.Player1Score, *input.Player2Score)
	return &models.Match{ID: matchID, Status: models.MatchStatusCompleted, Player1Score: input.Player1Score, Player2Score: input.Player2Score, Winner: &winner}, nil
}

func (f *fakeMatchService) GetMatch(_ context.Context, matchID string) (*models.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.matches[matchID]
	if !ok {
		return nil, services.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeMatchService) ListUpcoming(_ context.Context, playerID *string) ([]models.Match, error) {
	f.lastPlayerID = playerID
	if f.err != nil {
		return nil, f.err
	}
	return []models.Match{}, nil
}

func (f *fakeMatchService) ListHistory(_ context.Context, playerID string) ([]models.Match, error) {
	f.lastPlayerID = &playerID
	if f.err != nil {
		return nil, f.err
	}
	return []models.Match{}, nil
}

type fakeStandingsService struct {
	standings []models.Standing
	stats     models.LeagueStats
	lastLimit int
	added     []string
	err       error
}

func (f *fakeStandingsService) GetStandings(context.Context) ([]models.Standing, error) {
	return f.standings, f.err
}

func (f *fakeStandingsService) GetTopPlayers(_ context.Context, limit int) ([]models.Standing, error) {
	f.lastLimit = limit
	return f.standings, f.err
}

func (f *fakeStandingsService) GetPlayerStats(_ context.Context, playerID string) (*models.Standing, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.standings {
		if f.standings[i].PlayerID == playerID {
			return &f.standings[i], nil
		}
	}
	return nil, services.ErrStandingNotFound
}

func (f *fakeStandingsService) GetLeagueStats(context.Context) (*models.LeagueStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats := f.stats
	return &stats, nil
}

func (f *fakeStandingsService) AddPlayerToLeague(_ context.Context, playerID string) (*models.Standing, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, playerID)
	return &models.Standing{ID: "standing-" + playerID, PlayerID: playerID, Position: len(f.added)}, nil
}

func (f *fakeStandingsService) RunLocked(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

func (f *fakeStandingsService) Recompute(context.Context, repositories.SQLExecutor, models.MatchOutcome) error {
	return f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error {
	return f.err
}
