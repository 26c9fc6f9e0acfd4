package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
)

type fakeTxRunner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(nil)
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*models.Player
	err     error
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[string]*models.Player)}
	for _, p := range players {
		repo.players[p.ID] = p
	}
	return repo
}

func (f *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.players[player.ID]; ok {
		return repositories.ErrPlayerConflict
	}
	now := time.Now()
	player.CreatedAt, player.UpdatedAt = now, now
	cp := *player
	f.players[player.ID] = &cp
	return nil
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id string) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, id string, update repositories.PlayerUpdate) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	if update.DisplayName != nil {
		p.DisplayName = *update.DisplayName
	}
	if update.ClearPhone {
		p.Phone = nil
	} else if update.Phone != nil {
		phone := *update.Phone
		p.Phone = &phone
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (f *fakePlayerRepo) UpdateAvatar(_ context.Context, id string, avatarKey *string) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	p.AvatarKey = avatarKey
	cp := *p
	return &cp, nil
}

func (f *fakePlayerRepo) List(_ context.Context) ([]models.PublicPlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PublicPlayer, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p.Public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (f *fakePlayerRepo) SearchByName(ctx context.Context, fragment string, limit int) ([]models.PublicPlayer, error) {
	all, _ := f.List(ctx)
	out := make([]models.PublicPlayer, 0)
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.DisplayName), strings.ToLower(fragment)) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) name(id string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[id]; ok {
		name := p.DisplayName
		return &name
	}
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
	players *fakePlayerRepo
}

func newFakeMatchRepo(players *fakePlayerRepo) *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[string]*models.Match), players: players}
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if f.players != nil && (f.players.name(match.Player1ID) == nil || f.players.name(match.Player2ID) == nil) {
		return repositories.ErrMatchPlayerInvalid
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *match
	f.matches[match.ID] = &cp
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	return f.GetByID(ctx, exec, id)
}

func (f *fakeMatchRepo) Complete(_ context.Context, _ repositories.SQLExecutor, id string, s1, s2 int, winner models.MatchWinner, playedAt time.Time) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok || m.Status != models.MatchStatusScheduled {
		return nil, repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusCompleted
	m.Player1Score, m.Player2Score = &s1, &s2
	m.Winner = &winner
	m.PlayedDate = &playedAt
	cp := *m
	return &cp, nil
}

func (f *fakeMatchRepo) ListUpcoming(_ context.Context, playerID *string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range f.matches {
		if m.Status != models.MatchStatusScheduled {
			continue
		}
		if playerID != nil && !m.Involves(*playerID) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (f *fakeMatchRepo) ListHistory(_ context.Context, playerID string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range f.matches {
		if m.Status == models.MatchStatusCompleted && m.Involves(playerID) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayedDate.After(*out[j].PlayedDate) })
	return out, nil
}

func (f *fakeMatchRepo) Count(_ context.Context, status *models.MatchStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.matches {
		if status == nil || m.Status == *status {
			count++
		}
	}
	return count, nil
}

type fakeStandingRepo struct {
	mu        sync.Mutex
	rows      map[string]*models.Standing // keyed by player id
	players   *fakePlayerRepo
	locks     int
	updateErr error
	lastLimit int
	listCalls int
}

func newFakeStandingRepo(players *fakePlayerRepo) *fakeStandingRepo {
	return &fakeStandingRepo{rows: make(map[string]*models.Standing), players: players}
}

func (f *fakeStandingRepo) LockLedger(_ context.Context, _ repositories.SQLExecutor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks++
	return nil
}

func (f *fakeStandingRepo) Create(_ context.Context, _ repositories.SQLExecutor, standing *models.Standing) error {
	if f.players != nil && f.players.name(standing.PlayerID) == nil {
		return repositories.ErrStandingPlayerInvalid
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[standing.PlayerID]; ok {
		return repositories.ErrStandingConflict
	}
	cp := *standing
	f.rows[standing.PlayerID] = &cp
	return nil
}

func (f *fakeStandingRepo) GetByPlayerID(_ context.Context, _ repositories.SQLExecutor, playerID string) (*models.Standing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[playerID]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeStandingRepo) Update(_ context.Context, _ repositories.SQLExecutor, standing *models.Standing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	row, ok := f.rows[standing.PlayerID]
	if !ok || row.ID != standing.ID {
		return repositories.ErrStandingNotFound
	}
	row.Wins, row.Losses, row.Draws = standing.Wins, standing.Losses, standing.Draws
	row.Points, row.GamesPlayed = standing.Points, standing.GamesPlayed
	row.UpdatedAt = standing.UpdatedAt
	return nil
}

func (f *fakeStandingRepo) ListForRanking(_ context.Context, _ repositories.SQLExecutor) ([]*models.Standing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Standing, 0, len(f.rows))
	for _, row := range f.rows {
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

func (f *fakeStandingRepo) UpdatePositions(_ context.Context, _ repositories.SQLExecutor, positions map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if pos, ok := positions[row.ID]; ok {
			row.Position = pos
		}
	}
	return nil
}

func (f *fakeStandingRepo) ListWithPlayers(_ context.Context, limit int) ([]models.Standing, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.listCalls++
	out := make([]models.Standing, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	f.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	for i := range out {
		if f.players != nil {
			out[i].DisplayName = f.players.name(out[i].PlayerID)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStandingRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

type recordedEvent struct {
	room  string
	event LeagueEvent
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
	// noSubscribers makes every room report zero clients.
	noSubscribers bool
}

func (f *fakeBroadcaster) RoomSize(string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noSubscribers {
		return 0
	}
	return 1
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, _ := message.(LeagueEvent)
	f.events = append(f.events, recordedEvent{room: roomID, event: event})
}

func (f *fakeBroadcaster) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.event.Type)
	}
	return out
}

type fakeNotifier struct {
	mu      sync.Mutex
	matches []string
}

func (f *fakeNotifier) NotifyMatchScheduled(match *models.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, match.ID)
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
	err      error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string]string)}
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = string(data)
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

var errBoom = errors.New("boom")

type league struct {
	players   *fakePlayerRepo
	matches   *fakeMatchRepo
	standings *fakeStandingRepo
	tx        *fakeTxRunner
	hub       *fakeBroadcaster
	notifier  *fakeNotifier
	ledger    StandingsService
	registry  MatchService
}

func newLeague(playerIDs ...string) *league {
	l := &league{
		players:  newFakePlayerRepo(),
		tx:       &fakeTxRunner{},
		hub:      &fakeBroadcaster{},
		notifier: &fakeNotifier{},
	}
	for _, id := range playerIDs {
		l.players.players[id] = &models.Player{ID: id, DisplayName: "Player " + id, Email: id + "@example.com", Role: models.RoleMember}
	}
	l.matches = newFakeMatchRepo(l.players)
	l.standings = newFakeStandingRepo(l.players)
	l.ledger = NewStandingsService(l.tx, l.standings, l.matches, l.hub, nil)
	l.registry = NewMatchService(l.matches, l.ledger, l.notifier, l.hub, nil)
	return l
}
