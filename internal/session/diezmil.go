package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/engine"
	"github.com/jason-s-yu/anotador/internal/models"
)

// diezMilState loads the engine and the player's score row for a 10.000
// mutation.
func (c *Controller) diezMilState(ctx context.Context, gameID, playerID uuid.UUID) (*models.Game, engine.DiezMil, []*models.DiezMilScore, *models.DiezMilScore, error) {
	game, err := c.inProgress(ctx, gameID, models.GameDiezMil)
	if err != nil {
		return nil, engine.DiezMil{}, nil, nil, err
	}
	recs, err := c.loadScores(ctx, game)
	if err != nil {
		return nil, engine.DiezMil{}, nil, nil, err
	}

	scores := make([]*models.DiezMilScore, 0, len(recs))
	var mine *models.DiezMilScore
	for _, rec := range recs {
		s, ok := rec.(*models.DiezMilScore)
		if !ok {
			return nil, engine.DiezMil{}, nil, nil, fmt.Errorf("unexpected score type %T", rec)
		}
		scores = append(scores, s)
		if s.PlayerID == playerID {
			mine = s
		}
	}
	if mine == nil {
		return nil, engine.DiezMil{}, nil, nil, ErrPlayerNotIn
	}
	return game, engine.DiezMil{Config: *game.Config.DiezMil}, scores, mine, nil
}

// BankTurn commits a turn worth points for the player. The points value is
// the final client-side accumulated amount; the opening rule and the target
// cap are enforced here, and a winner check runs once after the write.
func (c *Controller) BankTurn(ctx context.Context, gameID, playerID uuid.UUID, points int) ([]models.ScoreRecord, error) {
	game, eng, scores, mine, err := c.diezMilState(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if !eng.CanAdd(mine, points) {
		return nil, ErrNotOpened
	}
	if !eng.CanBank(mine, points) {
		return nil, ErrExceedsTarget
	}

	eng.PushTurn(mine, points)
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		return nil, fmt.Errorf("bank turn: %w", err)
	}
	if winner := eng.Winner(scores); winner != nil {
		if err := c.finish(ctx, game, winner); err != nil {
			return nil, err
		}
	}

	c.committed(ctx, game.ID, "bank_turn", map[string]any{
		"player_id": playerID, "points": points,
	})
	return asRecords(scores), nil
}

// Fumble records a zero-point turn: it forfeits the turn but still occupies
// a slot in the history.
func (c *Controller) Fumble(ctx context.Context, gameID, playerID uuid.UUID) ([]models.ScoreRecord, error) {
	game, eng, scores, mine, err := c.diezMilState(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	eng.PushTurn(mine, 0)
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		return nil, fmt.Errorf("record fumble: %w", err)
	}

	c.committed(ctx, game.ID, "fumble", map[string]any{"player_id": playerID})
	return asRecords(scores), nil
}

// UndoTurn removes the player's last turn and recomputes their total from
// the remaining history.
func (c *Controller) UndoTurn(ctx context.Context, gameID, playerID uuid.UUID) ([]models.ScoreRecord, error) {
	game, eng, scores, mine, err := c.diezMilState(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if !eng.PopTurn(mine) {
		return nil, ErrNothingToUndo
	}
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		return nil, fmt.Errorf("undo turn: %w", err)
	}

	c.committed(ctx, game.ID, "undo_turn", map[string]any{"player_id": playerID})
	return asRecords(scores), nil
}

func asRecords[T models.ScoreRecord](scores []T) []models.ScoreRecord {
	out := make([]models.ScoreRecord, len(scores))
	for i, s := range scores {
		out[i] = s
	}
	return out
}
