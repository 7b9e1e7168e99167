package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/anotador/internal/models"
)

// Postgres is the pgx-backed Store, selected when DATABASE_URL is set.
type Postgres struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS players (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
	id UUID PRIMARY KEY,
	game_type TEXT NOT NULL,
	status TEXT NOT NULL,
	config JSONB NOT NULL,
	player_ids JSONB NOT NULL,
	winner_id UUID,
	winner_team TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
CREATE TABLE IF NOT EXISTS scores (
	id UUID PRIMARY KEY,
	game_id UUID NOT NULL,
	payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scores_game ON scores(game_id);
`

// OpenPostgres connects a pool and bootstraps the schema.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreatePlayer(ctx context.Context, pl *models.Player) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO players (id, name, created_at) VALUES ($1, $2, $3)`,
		pl.ID, pl.Name, pl.CreatedAt)
	return err
}

func (p *Postgres) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var pl models.Player
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM players WHERE id = $1`, id).
		Scan(&pl.ID, &pl.Name, &pl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

func (p *Postgres) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, created_at FROM players ORDER BY lower(name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		var pl models.Player
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &pl)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdatePlayerName(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE players SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateGame(ctx context.Context, g *models.Game) error {
	cfg, ids, err := gameJSON(g)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO games (id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, string(g.GameType), string(g.Status), cfg, ids, g.WinnerID, teamColumn(g), g.CreatedAt, g.FinishedAt)
	return err
}

func (p *Postgres) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at
		 FROM games WHERE id = $1`, id)
	return scanPGGame(row)
}

func (p *Postgres) ActiveGame(ctx context.Context) (*models.Game, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at
		 FROM games WHERE status = $1 LIMIT 1`, string(models.StatusInProgress))
	g, err := scanPGGame(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return g, err
}

func (p *Postgres) ListGames(ctx context.Context) ([]*models.Game, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, game_type, status, config, player_ids, winner_id, winner_team, created_at, finished_at
		 FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanPGGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateGame(ctx context.Context, g *models.Game) error {
	cfg, ids, err := gameJSON(g)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE games SET game_type = $1, status = $2, config = $3, player_ids = $4, winner_id = $5, winner_team = $6, finished_at = $7
		 WHERE id = $8`,
		string(g.GameType), string(g.Status), cfg, ids, g.WinnerID, teamColumn(g), g.FinishedAt, g.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteGame(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			data, err := encodeScore(rec)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO scores (id, game_id, payload) VALUES ($1, $2, $3)`,
				rec.RecordID(), rec.RecordGameID(), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) UpdateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			data, err := encodeScore(rec)
			if err != nil {
				return err
			}
			tag, err := tx.Exec(ctx,
				`UPDATE scores SET payload = $1 WHERE id = $2`, data, rec.RecordID())
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

func (p *Postgres) ScoresByGame(ctx context.Context, game *models.Game) ([]models.ScoreRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT payload FROM scores WHERE game_id = $1`, game.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoreRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := decodeScore(game.GameType, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteScores(ctx context.Context, gameID uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM scores WHERE game_id = $1`, gameID)
	return err
}

func teamColumn(g *models.Game) *string {
	if g.WinnerTeam == nil {
		return nil
	}
	t := string(*g.WinnerTeam)
	return &t
}

func gameJSON(g *models.Game) (cfg, ids []byte, err error) {
	cfg, err = json.Marshal(g.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("encode game config: %w", err)
	}
	ids, err = json.Marshal(g.PlayerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode game player ids: %w", err)
	}
	return cfg, ids, nil
}

func scanPGGame(row pgx.Row) (*models.Game, error) {
	var (
		g          models.Game
		gameType   string
		status     string
		cfg        []byte
		ids        []byte
		winnerTeam *string
	)
	err := row.Scan(&g.ID, &gameType, &status, &cfg, &ids, &g.WinnerID, &winnerTeam, &g.CreatedAt, &g.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.GameType = models.GameType(gameType)
	g.Status = models.GameStatus(status)
	if winnerTeam != nil {
		t := models.Team(*winnerTeam)
		g.WinnerTeam = &t
	}
	if err := json.Unmarshal(cfg, &g.Config); err != nil {
		return nil, fmt.Errorf("decode game config: %w", err)
	}
	if err := json.Unmarshal(ids, &g.PlayerIDs); err != nil {
		return nil, fmt.Errorf("decode game player ids: %w", err)
	}
	return &g, nil
}
