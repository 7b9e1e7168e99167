package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/engine"
	"github.com/jason-s-yu/anotador/internal/models"
)

func (c *Controller) chinchonState(ctx context.Context, gameID uuid.UUID) (*models.Game, engine.Chinchon, []*models.ChinchonScore, error) {
	game, err := c.inProgress(ctx, gameID, models.GameChinchon)
	if err != nil {
		return nil, engine.Chinchon{}, nil, err
	}
	recs, err := c.loadScores(ctx, game)
	if err != nil {
		return nil, engine.Chinchon{}, nil, err
	}
	scores := make([]*models.ChinchonScore, 0, len(recs))
	for _, rec := range recs {
		s, ok := rec.(*models.ChinchonScore)
		if !ok {
			return nil, engine.Chinchon{}, nil, fmt.Errorf("unexpected score type %T", rec)
		}
		scores = append(scores, s)
	}
	return game, engine.Chinchon{Config: *game.Config.Chinchon}, scores, nil
}

// RecordRound applies one round to every active participant at once:
// entries map player ids to points (players omitted score zero; negative
// values record the chinchón bonus). Eliminations flip permanently the
// moment a total reaches the threshold, and the end check runs once after
// the write.
func (c *Controller) RecordRound(ctx context.Context, gameID uuid.UUID, entries map[uuid.UUID]int) ([]models.ScoreRecord, error) {
	game, eng, scores, err := c.chinchonState(ctx, gameID)
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

	touched, err := eng.ApplyRound(scores, roundEntries)
	if err != nil {
		return nil, err
	}
	if err := c.store.UpdateScores(ctx, game, asRecords(touched)); err != nil {
		return nil, fmt.Errorf("record round: %w", err)
	}

	if result := eng.End(scores); result != nil {
		var winner *uuid.UUID
		if !result.Tie {
			id := result.WinnerID
			winner = &id
		}
		if err := c.finish(ctx, game, winner); err != nil {
			return nil, err
		}
	}

	c.committed(ctx, game.ID, "record_round", map[string]any{"players": len(entries)})
	return asRecords(scores), nil
}

// ChinchonWin ends the game immediately for the player who laid down a
// chinchón, when the outright-win rule is on. With the rule off the UI
// records the hand as a regular round worth engine.ChinchonBonus instead.
func (c *Controller) ChinchonWin(ctx context.Context, gameID, playerID uuid.UUID) error {
	game, eng, scores, err := c.chinchonState(ctx, gameID)
	if err != nil {
		return err
	}
	if !eng.Config.ChinchonWins {
		return fmt.Errorf("%w: chinchón outright win is disabled for this game", ErrBadValue)
	}
	found := false
	for _, s := range scores {
		if s.PlayerID == playerID {
			found = true
			break
		}
	}
	if !found {
		return ErrPlayerNotIn
	}

	if err := c.finish(ctx, game, &playerID); err != nil {
		return err
	}
	c.committed(ctx, game.ID, "chinchon_win", map[string]any{"player_id": playerID})
	return nil
}

// UndoRound strips the most recent shared round. Every touched score is
// un-eliminated unconditionally, even when its recomputed total still sits
// at or above the threshold; this mirrors the app's historical behavior.
func (c *Controller) UndoRound(ctx context.Context, gameID uuid.UUID) ([]models.ScoreRecord, error) {
	game, eng, scores, err := c.chinchonState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	touched := eng.UndoRound(scores)
	if touched == nil {
		return nil, ErrNothingToUndo
	}
	if err := c.store.UpdateScores(ctx, game, asRecords(touched)); err != nil {
		return nil, fmt.Errorf("undo round: %w", err)
	}

	c.committed(ctx, game.ID, "undo_round", nil)
	return asRecords(scores), nil
}
