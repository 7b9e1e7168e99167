package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

// Memory is an in-process Store. It backs the tests and doubles as the
// reference semantics for the SQL backends. Records are kept as encoded
// payloads so reads hand out fresh copies, never aliases.
type Memory struct {
	mu      sync.Mutex
	players map[uuid.UUID]models.Player
	games   map[uuid.UUID]models.Game
	scores  map[uuid.UUID]memScoreRow
}

type memScoreRow struct {
	id      uuid.UUID
	gameID  uuid.UUID
	payload []byte
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		players: make(map[uuid.UUID]models.Player),
		games:   make(map[uuid.UUID]models.Game),
		scores:  make(map[uuid.UUID]memScoreRow),
	}
}

func (m *Memory) CreatePlayer(ctx context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = *p
	return nil
}

func (m *Memory) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Player, 0, len(m.players))
	for _, p := range m.players {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *Memory) UpdatePlayerName(ctx context.Context, id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Name = name
	m.players[id] = p
	return nil
}

func (m *Memory) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[id]; !ok {
		return ErrNotFound
	}
	delete(m.players, id)
	return nil
}

func (m *Memory) CreateGame(ctx context.Context, g *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = cloneGame(*g)
	return nil
}

func (m *Memory) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneGame(g)
	return &cp, nil
}

func (m *Memory) ActiveGame(ctx context.Context) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		if g.Status == models.StatusInProgress {
			cp := cloneGame(g)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListGames(ctx context.Context) ([]*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Game, 0, len(m.games))
	for _, g := range m.games {
		cp := cloneGame(g)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateGame(ctx context.Context, g *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; !ok {
		return ErrNotFound
	}
	m.games[g.ID] = cloneGame(*g)
	return nil
}

func (m *Memory) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	delete(m.games, id)
	return nil
}

func (m *Memory) CreateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	rows, err := encodeRows(recs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.scores[r.id] = r
	}
	return nil
}

func (m *Memory) UpdateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	rows, err := encodeRows(recs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if _, ok := m.scores[r.id]; !ok {
			return ErrNotFound
		}
	}
	for _, r := range rows {
		m.scores[r.id] = r
	}
	return nil
}

func (m *Memory) ScoresByGame(ctx context.Context, game *models.Game) ([]models.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScoreRecord
	for _, r := range m.scores {
		if r.gameID != game.ID {
			continue
		}
		rec, err := decodeScore(game.GameType, r.payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) DeleteScores(ctx context.Context, gameID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.scores {
		if r.gameID == gameID {
			delete(m.scores, id)
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func encodeRows(recs []models.ScoreRecord) ([]memScoreRow, error) {
	rows := make([]memScoreRow, 0, len(recs))
	for _, rec := range recs {
		data, err := encodeScore(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, memScoreRow{id: rec.RecordID(), gameID: rec.RecordGameID(), payload: data})
	}
	return rows, nil
}

func cloneGame(g models.Game) models.Game {
	g.PlayerIDs = append([]uuid.UUID(nil), g.PlayerIDs...)
	if g.WinnerID != nil {
		id := *g.WinnerID
		g.WinnerID = &id
	}
	if g.WinnerTeam != nil {
		t := *g.WinnerTeam
		g.WinnerTeam = &t
	}
	if g.FinishedAt != nil {
		t := *g.FinishedAt
		g.FinishedAt = &t
	}
	return g
}
