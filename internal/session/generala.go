package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/engine"
	"github.com/jason-s-yu/anotador/internal/models"
)

func (c *Controller) generalaState(ctx context.Context, gameID, playerID uuid.UUID) (*models.Game, []*models.GeneralaScore, *models.GeneralaScore, error) {
	game, err := c.inProgress(ctx, gameID, models.GameGenerala)
	if err != nil {
		return nil, nil, nil, err
	}
	recs, err := c.loadScores(ctx, game)
	if err != nil {
		return nil, nil, nil, err
	}

	scores := make([]*models.GeneralaScore, 0, len(recs))
	var mine *models.GeneralaScore
	for _, rec := range recs {
		s, ok := rec.(*models.GeneralaScore)
		if !ok {
			return nil, nil, nil, fmt.Errorf("unexpected score type %T", rec)
		}
		scores = append(scores, s)
		if s.PlayerID == playerID {
			mine = s
		}
	}
	if mine == nil {
		return nil, nil, nil, ErrPlayerNotIn
	}
	return game, scores, mine, nil
}

// FillCategory sets one sheet cell to an offered value (0 strikes it) or
// clears it back to empty when value is nil. Once every sheet is complete
// the game finishes; a tie for the maximum leaves no winner.
func (c *Controller) FillCategory(ctx context.Context, gameID, playerID uuid.UUID, cat models.GeneralaCategory, value *int) ([]models.ScoreRecord, error) {
	game, scores, mine, err := c.generalaState(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	def, err := engine.CategoryByKey(cat)
	if err != nil {
		return nil, err
	}
	if value != nil && !engine.IsValidOption(def, *value) {
		return nil, ErrBadValue
	}

	mine.SetCell(cat, value)
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		return nil, fmt.Errorf("fill category: %w", err)
	}

	if result := engine.GeneralaEnd(scores); result != nil {
		var winner *uuid.UUID
		if !result.Tie {
			id := result.WinnerID
			winner = &id
		}
		if err := c.finish(ctx, game, winner); err != nil {
			return nil, err
		}
	}

	c.committed(ctx, game.ID, "fill_category", map[string]any{
		"player_id": playerID, "category": string(cat),
	})
	return asRecords(scores), nil
}

// ServidaWin records a generala-kind category scored on the very first roll
// and ends the game immediately for that player, regardless of anyone
// else's sheet.
func (c *Controller) ServidaWin(ctx context.Context, gameID, playerID uuid.UUID, cat models.GeneralaCategory) ([]models.ScoreRecord, error) {
	game, scores, mine, err := c.generalaState(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	def, err := engine.CategoryByKey(cat)
	if err != nil {
		return nil, err
	}
	if def.Kind != engine.KindGenerala {
		return nil, fmt.Errorf("%w: servida win only applies to generala categories", ErrBadValue)
	}

	v := def.NormalScore
	mine.SetCell(cat, &v)
	if err := c.store.UpdateScores(ctx, game, []models.ScoreRecord{mine}); err != nil {
		return nil, fmt.Errorf("servida win: %w", err)
	}
	if err := c.finish(ctx, game, &playerID); err != nil {
		return nil, err
	}

	c.committed(ctx, game.ID, "servida_win", map[string]any{
		"player_id": playerID, "category": string(cat),
	})
	return asRecords(scores), nil
}
