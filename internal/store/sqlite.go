package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jason-s-yu/anotador/internal/models"
)

// SQLite is the default backend: a single local database file, matching the
// single-device model of the app.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	game_type TEXT NOT NULL,
	status TEXT NOT NULL,
	config TEXT NOT NULL,
	player_ids TEXT NOT NULL,
	winner_id TEXT,
	winner_team TEXT,
	created_at INTEGER NOT NULL,
	finished_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
CREATE TABLE IF NOT EXISTS scores (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scores_game ON scores(game_id);
`

// OpenSQLite opens (and if needed bootstraps) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single conn avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) CreatePlayer(ctx context.Context, p *models.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID.String(), p.Name, p.CreatedAt.UnixMilli())
	return err
}

func (s *SQLite) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM players WHERE id = ?`, id.String())
	return scanPlayer(row)
}

func (s *SQLite) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM players ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdatePlayerName(ctx context.Context, id uuid.UUID, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET name = ? WHERE id = ?`, name, id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLite) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM players WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLite) CreateGame(ctx context.Context, g *models.Game) error {
	cfg, ids, winner, winnerTeam, finished, err := gameColumns(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), string(g.GameType), string(g.Status), cfg, ids, winner, winnerTeam,
		g.CreatedAt.UnixMilli(), finished)
	return err
}

func (s *SQLite) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at
		 FROM games WHERE id = ?`, id.String())
	return scanGame(row)
}

func (s *SQLite) ActiveGame(ctx context.Context) (*models.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at
		 FROM games WHERE status = ? LIMIT 1`, string(models.StatusInProgress))
	g, err := scanGame(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return g, err
}

func (s *SQLite) ListGames(ctx context.Context) ([]*models.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at
		 FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdateGame(ctx context.Context, g *models.Game) error {
	cfg, ids, winner, winnerTeam, finished, err := gameColumns(g)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET game_type = ?, status = ?, config = ?, player_ids = ?, winner_id = ?, winner_team = ?, finished_at = ?
		 WHERE id = ?`,
		string(g.GameType), string(g.Status), cfg, ids, winner, winnerTeam, finished, g.ID.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLite) DeleteGame(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM games WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLite) CreateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			data, err := encodeScore(rec)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO scores (id, game_id, payload) VALUES (?, ?, ?)`,
				rec.RecordID().String(), rec.RecordGameID().String(), string(data)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) UpdateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			data, err := encodeScore(rec)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx,
				`UPDATE scores SET payload = ? WHERE id = ?`,
				string(data), rec.RecordID().String())
			if err != nil {
				return err
			}
			if err := requireAffected(res); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) ScoresByGame(ctx context.Context, game *models.Game) ([]models.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM scores WHERE game_id = ?`, game.ID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoreRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := decodeScore(game.GameType, []byte(payload))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteScores(ctx context.Context, gameID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM scores WHERE game_id = ?`, gameID.String())
	return err
}

func (s *SQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var (
		id, name string
		created  int64
	)
	if err := row.Scan(&id, &name, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad player id %q: %w", id, err)
	}
	return &models.Player{ID: pid, Name: name, CreatedAt: time.UnixMilli(created)}, nil
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		id, gameType, status, cfg, ids string
		winner, winnerTeam             sql.NullString
		created                        int64
		finished                       sql.NullInt64
	)
	if err := row.Scan(&id, &gameType, &status, &cfg, &ids, &winner, &winnerTeam, &created, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	g := &models.Game{
		GameType:  models.GameType(gameType),
		Status:    models.GameStatus(status),
		CreatedAt: time.UnixMilli(created),
	}
	var err error
	if g.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad game id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(cfg), &g.Config); err != nil {
		return nil, fmt.Errorf("decode game config: %w", err)
	}
	if err := json.Unmarshal([]byte(ids), &g.PlayerIDs); err != nil {
		return nil, fmt.Errorf("decode game player ids: %w", err)
	}
	if winner.Valid {
		w, err := uuid.Parse(winner.String)
		if err != nil {
			return nil, fmt.Errorf("bad winner id %q: %w", winner.String, err)
		}
		g.WinnerID = &w
	}
	if winnerTeam.Valid {
		t := models.Team(winnerTeam.String)
		g.WinnerTeam = &t
	}
	if finished.Valid {
		t := time.UnixMilli(finished.Int64)
		g.FinishedAt = &t
	}
	return g, nil
}

// gameColumns flattens the variable-width game fields for SQL.
func gameColumns(g *models.Game) (cfg, ids string, winner, winnerTeam, finished any, err error) {
	cfgBytes, err := json.Marshal(g.Config)
	if err != nil {
		return "", "", nil, nil, nil, fmt.Errorf("encode game config: %w", err)
	}
	idBytes, err := json.Marshal(g.PlayerIDs)
	if err != nil {
		return "", "", nil, nil, nil, fmt.Errorf("encode game player ids: %w", err)
	}
	if g.WinnerID != nil {
		winner = g.WinnerID.String()
	}
	if g.WinnerTeam != nil {
		winnerTeam = string(*g.WinnerTeam)
	}
	if g.FinishedAt != nil {
		finished = g.FinishedAt.UnixMilli()
	}
	return string(cfgBytes), string(idBytes), winner, winnerTeam, finished, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
