package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/engine"
	"github.com/jason-s-yu/anotador/internal/models"
)

func (c *Controller) universalState(ctx context.Context, gameID uuid.UUID) (*models.Game, engine.Universal, []*models.UniversalScore, error) {
	game, err := c.inProgress(ctx, gameID, models.GameUniversal)
	if err != nil {
		return nil, engine.Universal{}, nil, err
	}
	recs, err := c.loadScores(ctx, game)
	if err != nil {
		return nil, engine.Universal{}, nil, err
	}
	scores := make([]*models.UniversalScore, 0, len(recs))
	for _, rec := range recs {
		s, ok := rec.(*models.UniversalScore)
		if !ok {
			return nil, engine.Universal{}, nil, fmt.Errorf("unexpected score type %T", rec)
		}
		scores = append(scores, s)
	}
	return game, engine.Universal{Config: *game.Config.Universal}, scores, nil
}

// RecordUniversalRound applies one free-form round to every participant.
// Players omitted from entries score zero for the round.
func (c *Controller) RecordUniversalRound(ctx context.Context, gameID uuid.UUID, entries map[uuid.UUID]int) ([]models.ScoreRecord, error) {
	game, eng, scores, err := c.universalState(ctx, gameID)
	if err != nil {
		return nil, err
	}

	roundEntries := make([]engine.RoundEntry, 0, len(entries))
	for pid, pts := range entries {
		var scoreID uuid.UUID
		for _, s := range scores {
			if s.PlayerID == pid {
				scoreID = s.ID
				break
			}
		}
		if scoreID == uuid.Nil {
			return nil, ErrPlayerNotIn
		}
		roundEntries = append(roundEntries, engine.RoundEntry{ScoreID: scoreID, Points: pts})
	}

	if err := eng.ApplyRound(scores, roundEntries); err != nil {
		return nil, err
	}
	if err := c.store.UpdateScores(ctx, game, asRecords(scores)); err != nil {
		return nil, fmt.Errorf("record universal round: %w", err)
	}

	if winner := eng.Winner(scores); winner != nil {
		if err := c.finish(ctx, game, winner); err != nil {
			return nil, err
		}
	}

	c.committed(ctx, game.ID, "record_universal_round", map[string]any{"players": len(entries)})
	return asRecords(scores), nil
}

// UndoUniversalRound strips the most recent shared round.
func (c *Controller) UndoUniversalRound(ctx context.Context, gameID uuid.UUID) ([]models.ScoreRecord, error) {
	game, eng, scores, err := c.universalState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	touched := eng.UndoRound(scores)
	if touched == nil {
		return nil, ErrNothingToUndo
	}
	if err := c.store.UpdateScores(ctx, game, asRecords(touched)); err != nil {
		return nil, fmt.Errorf("undo universal round: %w", err)
	}

	c.committed(ctx, game.ID, "undo_universal_round", nil)
	return asRecords(scores), nil
}
