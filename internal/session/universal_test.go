package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anotador/internal/models"
)

func universalByPlayer(t *testing.T, recs []models.ScoreRecord) map[uuid.UUID]*models.UniversalScore {
	t.Helper()
	out := make(map[uuid.UUID]*models.UniversalScore, len(recs))
	for _, rec := range recs {
		s, ok := rec.(*models.UniversalScore)
		require.True(t, ok)
		out[s.PlayerID] = s
	}
	return out
}

func TestRecordUniversalRound(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	players := twoPlayers()
	game, err := ctrl.Start(ctx, models.GameUniversal, universalConfig(100, true), players)
	require.NoError(t, err)

	recs, err := ctrl.RecordUniversalRound(ctx, game.ID, map[uuid.UUID]int{players[0]: 25})
	require.NoError(t, err)
	byPlayer := universalByPlayer(t, recs)
	assert.Equal(t, 25, byPlayer[players[0]].TotalPoints)
	assert.Equal(t, 0, byPlayer[players[1]].TotalPoints)
	require.Len(t, byPlayer[players[1]].Rounds, 1, "every participant gets the round")

	_, err = ctrl.RecordUniversalRound(ctx, game.ID, map[uuid.UUID]int{uuid.New(): 5})
	assert.ErrorIs(t, err, ErrPlayerNotIn)
}

func TestUniversalFinishAtTargetLowestWins(t *testing.T) {
	ctrl, st := newTestController(t)
	ctx := context.Background()
	players := twoPlayers()
	game, err := ctrl.Start(ctx, models.GameUniversal, universalConfig(50, false), players)
	require.NoError(t, err)

	_, err = ctrl.RecordUniversalRound(ctx, game.ID, map[uuid.UUID]int{
		players[0]: 50,
		players[1]: 20,
	})
	require.NoError(t, err)

	got, err := st.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, players[1], *got.WinnerID, "crossing the line loses when lowest wins")
}

func TestUndoUniversalRound(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	players := twoPlayers()
	game, err := ctrl.Start(ctx, models.GameUniversal, universalConfig(100, true), players)
	require.NoError(t, err)

	_, err = ctrl.RecordUniversalRound(ctx, game.ID, map[uuid.UUID]int{players[0]: 30})
	require.NoError(t, err)

	recs, err := ctrl.UndoUniversalRound(ctx, game.ID)
	require.NoError(t, err)
	byPlayer := universalByPlayer(t, recs)
	assert.Zero(t, byPlayer[players[0]].TotalPoints)
	assert.Empty(t, byPlayer[players[0]].Rounds)

	_, err = ctrl.UndoUniversalRound(ctx, game.ID)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}
