// Package session orchestrates game lifecycles over the store: starting and
// resuming the single active game, recording entries through the variant
// engines, undo, abandonment, terminal detection and score-row recovery.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/anotador/internal/journal"
	"github.com/jason-s-yu/anotador/internal/models"
	"github.com/jason-s-yu/anotador/internal/store"
)

// Invariant violations are refusals: the mutation is rejected synchronously
// with no state change. Callers can pre-check with the same predicates the
// engines expose.
var (
	ErrActiveGame    = errors.New("another game is already in progress")
	ErrGameFinished  = errors.New("game is already finished")
	ErrWrongVariant  = errors.New("operation does not match the game variant")
	ErrNotOpened     = errors.New("player has not reached the opening threshold")
	ErrExceedsTarget = errors.New("banking would exceed the target score")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrBadConfig     = errors.New("config does not match the game variant")
	ErrNoPlayers     = errors.New("at least two players are required")
	ErrPlayerNotIn   = errors.New("player is not part of this game")
	ErrBadValue      = errors.New("value is not a valid option for this category")
)

// Notifier is invoked after every committed mutation so a presentation
// layer can re-fetch state (the UI equivalent of a live query).
type Notifier func(gameID uuid.UUID, op string)

type trucoUndoEntry struct {
	scoreID        uuid.UUID
	previousPoints int
}

// Controller drives the session state machine. One controller serves all
// variants, dispatching on the game's type tag.
type Controller struct {
	store   store.Store
	log     *logrus.Logger
	journal *journal.Journal
	notify  Notifier

	mu sync.Mutex
	// recovered guards score-row recovery so it runs once per anomaly, not
	// on every read.
	recovered map[uuid.UUID]bool
	// trucoUndo keeps the caller-side undo history the truco engine
	// requires; it lives only for the session's lifetime.
	trucoUndo map[uuid.UUID][]trucoUndoEntry
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithJournal attaches a mutation journal.
func WithJournal(j *journal.Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithNotifier attaches a post-commit notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// New builds a controller over the given store.
func New(st store.Store, log *logrus.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:     st,
		log:       log,
		recovered: make(map[uuid.UUID]bool),
		trucoUndo: make(map[uuid.UUID][]trucoUndoEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start creates a new game session plus its score rows. Exactly one game
// may be in progress; a second start is refused. If the score rows cannot
// be created the just-created game is deleted again, so the operation is
// all or nothing.
func (c *Controller) Start(ctx context.Context, gameType models.GameType, cfg models.GameConfig, playerIDs []uuid.UUID) (*models.Game, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !cfg.Matches(gameType) {
		return nil, ErrBadConfig
	}
	if gameType != models.GameTruco && len(playerIDs) < 2 {
		return nil, ErrNoPlayers
	}

	active, err := c.store.ActiveGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("check active game: %w", err)
	}
	if active != nil {
		return nil, ErrActiveGame
	}

	game := &models.Game{
		ID:        uuid.New(),
		GameType:  gameType,
		Status:    models.StatusInProgress,
		Config:    cfg,
		PlayerIDs: append([]uuid.UUID(nil), playerIDs...),
		CreatedAt: time.Now(),
	}
	if err := c.store.CreateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	if err := c.store.CreateScores(ctx, game, initialScores(game)); err != nil {
		// Compensate: never leave an orphaned game behind.
		if delErr := c.store.DeleteGame(ctx, game.ID); delErr != nil {
			c.log.WithError(delErr).WithField("game_id", game.ID).
				Error("rollback of partially created game failed")
		}
		return nil, fmt.Errorf("create score rows: %w", err)
	}

	c.committed(ctx, game.ID, "start", map[string]any{"game_type": string(gameType)})
	return game, nil
}

// initialScores builds the zero-value score rows for a fresh game: one per
// roster player, or one per team for truco.
func initialScores(game *models.Game) []models.ScoreRecord {
	if game.GameType == models.GameTruco {
		recs := make([]models.ScoreRecord, 0, 2)
		for _, team := range models.Teams {
			recs = append(recs, &models.TrucoScore{ID: uuid.New(), GameID: game.ID, Team: team})
		}
		return recs
	}
	recs := make([]models.ScoreRecord, 0, len(game.PlayerIDs))
	for _, pid := range game.PlayerIDs {
		recs = append(recs, newPlayerScore(game, pid))
	}
	return recs
}

func newPlayerScore(game *models.Game, playerID uuid.UUID) models.ScoreRecord {
	switch game.GameType {
	case models.GameDiezMil:
		return &models.DiezMilScore{ID: uuid.New(), GameID: game.ID, PlayerID: playerID}
	case models.GameGenerala:
		return &models.GeneralaScore{ID: uuid.New(), GameID: game.ID, PlayerID: playerID}
	case models.GameChinchon:
		return &models.ChinchonScore{ID: uuid.New(), GameID: game.ID, PlayerID: playerID}
	case models.GameUniversal:
		return &models.UniversalScore{ID: uuid.New(), GameID: game.ID, PlayerID: playerID}
	}
	return nil
}

// Active returns the in-progress game, or nil.
func (c *Controller) Active(ctx context.Context) (*models.Game, error) {
	return c.store.ActiveGame(ctx)
}

// History returns all games, newest first.
func (c *Controller) History(ctx context.Context) ([]*models.Game, error) {
	return c.store.ListGames(ctx)
}

// Scores returns the game's score records ordered by roster (or fixed team)
// order, healing missing rows first for an in-progress game.
func (c *Controller) Scores(ctx context.Context, gameID uuid.UUID) (*models.Game, []models.ScoreRecord, error) {
	game, err := c.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	recs, err := c.loadScores(ctx, game)
	if err != nil {
		return nil, nil, err
	}
	return game, recs, nil
}

// loadScores fetches, recovers (once) and orders the game's score rows.
func (c *Controller) loadScores(ctx context.Context, game *models.Game) ([]models.ScoreRecord, error) {
	recs, err := c.store.ScoresByGame(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	if game.Status == models.StatusInProgress {
		recs, err = c.recoverScores(ctx, game, recs)
		if err != nil {
			return nil, err
		}
	}
	return orderScores(game, recs), nil
}

// recoverScores heals an in-progress game whose score rows are partially
// missing (a crash between game and score creation). Only the missing rows
// are created, exactly once per game per process.
func (c *Controller) recoverScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) ([]models.ScoreRecord, error) {
	c.mu.Lock()
	done := c.recovered[game.ID]
	c.recovered[game.ID] = true
	c.mu.Unlock()
	if done {
		return recs, nil
	}

	var missing []models.ScoreRecord
	if game.GameType == models.GameTruco {
		have := map[models.Team]bool{}
		for _, rec := range recs {
			if s, ok := rec.(*models.TrucoScore); ok {
				have[s.Team] = true
			}
		}
		for _, team := range models.Teams {
			if !have[team] {
				missing = append(missing, &models.TrucoScore{ID: uuid.New(), GameID: game.ID, Team: team})
			}
		}
	} else {
		have := map[uuid.UUID]bool{}
		for _, rec := range recs {
			if pid, ok := scorePlayerID(rec); ok {
				have[pid] = true
			}
		}
		for _, pid := range game.PlayerIDs {
			if !have[pid] {
				missing = append(missing, newPlayerScore(game, pid))
			}
		}
	}

	if len(missing) == 0 {
		return recs, nil
	}
	c.log.WithFields(logrus.Fields{"game_id": game.ID, "rows": len(missing)}).
		Warn("recovering missing score rows")
	if err := c.store.CreateScores(ctx, game, missing); err != nil {
		return nil, fmt.Errorf("recover score rows: %w", err)
	}
	return append(recs, missing...), nil
}

// Abandon deletes the game and its scores. Destructive confirmation is a
// presentation concern; by the time this is called the user already agreed.
func (c *Controller) Abandon(ctx context.Context, gameID uuid.UUID) error {
	game, err := c.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := c.store.DeleteScores(ctx, game.ID); err != nil {
		return fmt.Errorf("delete scores: %w", err)
	}
	if err := c.store.DeleteGame(ctx, game.ID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}

	c.mu.Lock()
	delete(c.recovered, game.ID)
	delete(c.trucoUndo, game.ID)
	c.mu.Unlock()

	c.committed(ctx, game.ID, "abandon", nil)
	return nil
}

// finish marks the game finished. A nil winner records a tie.
func (c *Controller) finish(ctx context.Context, game *models.Game, winnerID *uuid.UUID) error {
	now := time.Now()
	game.Status = models.StatusFinished
	game.WinnerID = winnerID
	game.FinishedAt = &now
	if err := c.store.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	fields := logrus.Fields{"game_id": game.ID}
	if winnerID != nil {
		fields["winner_id"] = *winnerID
	}
	c.log.WithFields(fields).Info("game finished")
	return nil
}

// finishTeam marks a team-based game finished with the winning side.
func (c *Controller) finishTeam(ctx context.Context, game *models.Game, team models.Team) error {
	now := time.Now()
	game.Status = models.StatusFinished
	game.WinnerTeam = &team
	game.FinishedAt = &now
	if err := c.store.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	c.log.WithFields(logrus.Fields{"game_id": game.ID, "winner_team": team}).Info("game finished")
	return nil
}

// inProgress loads a game and verifies it accepts mutations for the variant.
func (c *Controller) inProgress(ctx context.Context, gameID uuid.UUID, t models.GameType) (*models.Game, error) {
	game, err := c.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.GameType != t {
		return nil, ErrWrongVariant
	}
	if game.Status != models.StatusInProgress {
		return nil, ErrGameFinished
	}
	return game, nil
}

// committed runs the post-commit hooks: journal and notifier, exactly once
// per committed operation.
func (c *Controller) committed(ctx context.Context, gameID uuid.UUID, op string, payload map[string]any) {
	c.journal.Publish(ctx, journal.Record{GameID: gameID, Op: op, Payload: payload})
	if c.notify != nil {
		c.notify(gameID, op)
	}
}

// scorePlayerID extracts the owning player id from any roster-based record.
func scorePlayerID(rec models.ScoreRecord) (uuid.UUID, bool) {
	switch s := rec.(type) {
	case *models.DiezMilScore:
		return s.PlayerID, true
	case *models.GeneralaScore:
		return s.PlayerID, true
	case *models.ChinchonScore:
		return s.PlayerID, true
	case *models.UniversalScore:
		return s.PlayerID, true
	}
	return uuid.Nil, false
}

// orderScores sorts records into roster order (or fixed team order for
// truco). Records referencing players missing from the roster sort last;
// that inconsistency is tolerated, never an error.
func orderScores(game *models.Game, recs []models.ScoreRecord) []models.ScoreRecord {
	if game.GameType == models.GameTruco {
		ordered := make([]models.ScoreRecord, 0, len(recs))
		for _, team := range models.Teams {
			for _, rec := range recs {
				if s, ok := rec.(*models.TrucoScore); ok && s.Team == team {
					ordered = append(ordered, rec)
				}
			}
		}
		return ordered
	}

	pos := make(map[uuid.UUID]int, len(game.PlayerIDs))
	for i, pid := range game.PlayerIDs {
		pos[pid] = i
	}
	ordered := append([]models.ScoreRecord(nil), recs...)
	rank := func(rec models.ScoreRecord) int {
		pid, ok := scorePlayerID(rec)
		if !ok {
			return len(game.PlayerIDs)
		}
		if i, ok := pos[pid]; ok {
			return i
		}
		return len(game.PlayerIDs)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && rank(ordered[j]) < rank(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
