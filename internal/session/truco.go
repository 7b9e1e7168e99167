package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/engine"
	"github.com/jason-s-yu/anotador/internal/models"
)

func (c *Controller) trucoState(ctx context.Context, gameID uuid.UUID) (*models.Game, engine.Truco, []*models.TrucoScore, error) {
	game, err := c.inProgress(ctx, gameID, models.GameTruco)
	if err != nil {
		return nil, engine.Truco{}, nil, err
	}
	recs, err := c.loadScores(ctx, game)
	if err != nil {
		return nil, engine.Truco{}, nil, err
	}
	scores := make([]*models.TrucoScore, 0, len(recs))
	for _, rec := range recs {
		s, ok := rec.(*models.TrucoScore)
		if !ok {
			return nil, engine.Truco{}, nil, fmt.Errorf("unexpected score type %T", rec)
		}
		scores = append(scores, s)
	}
	return game, engine.Truco{Config: *game.Config.Truco}, scores, nil
}

// AddPoint increments a team's tally by exactly one, the only scoring
// primitive truco has. The previous value is pushed onto the session's undo
// stack before the write.
func (c *Controller) AddPoint(ctx context.Context, gameID uuid.UUID, team models.Team) ([]models.ScoreRecord, error) {
	game, eng, scores, err := c.trucoState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !eng.CanAdd(scores) {
		return nil, ErrGameFinished
	}
	var mine *models.TrucoScore
	for _, s := range scores {
		if s.Team == team {
			mine = s
			break
		}
	}
	if mine == nil {
		return nil, fmt.Errorf("%w: unknown team %q", ErrBadValue, team)
	}

	c.mu.Lock()
	c.trucoUndo[game.ID] = append(c.trucoUndo[game.ID], trucoUndoEntry{
		scoreID:        mine.ID,
		previousPoints: mine.Points,
	})
	c.mu.Unlock()

	mine.Points++
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		// The write failed, so the stack entry describes nothing.
		c.popTrucoUndo(game.ID)
		return nil, fmt.Errorf("add point: %w", err)
	}

	if winner := eng.Winner(scores); winner != nil {
		if err := c.finishTeam(ctx, game, *winner); err != nil {
			return nil, err
		}
	}

	c.committed(ctx, game.ID, "add_point", map[string]any{"team": string(team)})
	return asRecords(scores), nil
}

// UndoPoint restores the team tally recorded by the most recent AddPoint.
func (c *Controller) UndoPoint(ctx context.Context, gameID uuid.UUID) ([]models.ScoreRecord, error) {
	game, _, scores, err := c.trucoState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	entry, ok := c.popTrucoUndo(game.ID)
	if !ok {
		return nil, ErrNothingToUndo
	}
	var mine *models.TrucoScore
	for _, s := range scores {
		if s.ID == entry.scoreID {
			mine = s
			break
		}
	}
	if mine == nil {
		return nil, ErrNothingToUndo
	}

	mine.Points = entry.previousPoints
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		return nil, fmt.Errorf("undo point: %w", err)
	}

	c.committed(ctx, game.ID, "undo_point", map[string]any{"team": string(mine.Team)})
	return asRecords(scores), nil
}

func (c *Controller) popTrucoUndo(gameID uuid.UUID) (trucoUndoEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stack := c.trucoUndo[gameID]
	if len(stack) == 0 {
		return trucoUndoEntry{}, false
	}
	entry := stack[len(stack)-1]
	c.trucoUndo[gameID] = stack[:len(stack)-1]
	return entry, true
}
