package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anotador/internal/models"
)

func startTruco(t *testing.T, ctrl *Controller, target int) *models.Game {
	t.Helper()
	game, err := ctrl.Start(context.Background(), models.GameTruco, trucoConfig(target), nil)
	require.NoError(t, err)
	return game
}

func trucoPoints(t *testing.T, recs []models.ScoreRecord) map[models.Team]int {
	t.Helper()
	out := make(map[models.Team]int, len(recs))
	for _, rec := range recs {
		s, ok := rec.(*models.TrucoScore)
		require.True(t, ok)
		out[s.Team] = s.Points
	}
	return out
}

func TestAddPoint(t *testing.T) {
	ctrl, _ := newTestController(t)
	game := startTruco(t, ctrl, 30)
	ctx := context.Background()

	recs, err := ctrl.AddPoint(ctx, game.ID, models.TeamNosotros)
	require.NoError(t, err)
	assert.Equal(t, map[models.Team]int{models.TeamNosotros: 1, models.TeamEllos: 0}, trucoPoints(t, recs))

	recs, err = ctrl.AddPoint(ctx, game.ID, models.TeamEllos)
	require.NoError(t, err)
	assert.Equal(t, map[models.Team]int{models.TeamNosotros: 1, models.TeamEllos: 1}, trucoPoints(t, recs))

	_, err = ctrl.AddPoint(ctx, game.ID, "vosotros")
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestAddPointFinishesAtTarget(t *testing.T) {
	ctrl, st := newTestController(t)
	game := startTruco(t, ctrl, 2)
	ctx := context.Background()

	_, err := ctrl.AddPoint(ctx, game.ID, models.TeamEllos)
	require.NoError(t, err)
	_, err = ctrl.AddPoint(ctx, game.ID, models.TeamEllos)
	require.NoError(t, err)

	got, err := st.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, got.Status)
	assert.Nil(t, got.WinnerID, "truco winners are teams, not players")
	require.NotNil(t, got.WinnerTeam)
	assert.Equal(t, models.TeamEllos, *got.WinnerTeam)

	_, err = ctrl.AddPoint(ctx, game.ID, models.TeamNosotros)
	assert.ErrorIs(t, err, ErrGameFinished)
}

func TestUndoPointRestoresPreviousTally(t *testing.T) {
	ctrl, _ := newTestController(t)
	game := startTruco(t, ctrl, 30)
	ctx := context.Background()

	_, err := ctrl.AddPoint(ctx, game.ID, models.TeamNosotros)
	require.NoError(t, err)
	_, err = ctrl.AddPoint(ctx, game.ID, models.TeamEllos)
	require.NoError(t, err)
	_, err = ctrl.AddPoint(ctx, game.ID, models.TeamNosotros)
	require.NoError(t, err)

	// Undo pops in reverse order of the adds.
	recs, err := ctrl.UndoPoint(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.Team]int{models.TeamNosotros: 1, models.TeamEllos: 1}, trucoPoints(t, recs))

	recs, err = ctrl.UndoPoint(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.Team]int{models.TeamNosotros: 1, models.TeamEllos: 0}, trucoPoints(t, recs))

	recs, err = ctrl.UndoPoint(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.Team]int{models.TeamNosotros: 0, models.TeamEllos: 0}, trucoPoints(t, recs))

	_, err = ctrl.UndoPoint(ctx, game.ID)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestAbandonClearsTrucoUndoStack(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	game := startTruco(t, ctrl, 30)
	_, err := ctrl.AddPoint(ctx, game.ID, models.TeamNosotros)
	require.NoError(t, err)
	require.NoError(t, ctrl.Abandon(ctx, game.ID))

	next := startTruco(t, ctrl, 30)
	_, err = ctrl.UndoPoint(ctx, next.ID)
	assert.ErrorIs(t, err, ErrNothingToUndo, "undo history does not leak across games")
}
