// Package store persists players, games and score records. Score records of
// every variant travel through the same generic row shape (id, game id, JSON
// payload) so each backend stays small.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator consumed by the session controller.
// Bulk and multi-row score operations are atomic: either every row is
// written or none is.
type Store interface {
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	// ListPlayers returns the roster ordered by name.
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	UpdatePlayerName(ctx context.Context, id uuid.UUID, name string) error
	DeletePlayer(ctx context.Context, id uuid.UUID) error

	CreateGame(ctx context.Context, g *models.Game) error
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	// ActiveGame returns the in-progress game, or nil if there is none.
	ActiveGame(ctx context.Context) (*models.Game, error)
	// ListGames returns the history, newest first.
	ListGames(ctx context.Context) ([]*models.Game, error)
	UpdateGame(ctx context.Context, g *models.Game) error
	DeleteGame(ctx context.Context, id uuid.UUID) error

	// CreateScores bulk-inserts the score rows for a new game.
	CreateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error
	// UpdateScores writes multiple score rows as one atomic unit.
	UpdateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error
	// ScoresByGame returns the game's score records, decoded to the
	// concrete type for the game's variant. Order is unspecified; callers
	// sort by roster or team order.
	ScoresByGame(ctx context.Context, game *models.Game) ([]models.ScoreRecord, error)
	DeleteScores(ctx context.Context, gameID uuid.UUID) error

	Close() error
}
