package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anotador/internal/engine"
	"github.com/jason-s-yu/anotador/internal/models"
)

func intp(v int) *int { return &v }

func startGenerala(t *testing.T, ctrl *Controller, players []uuid.UUID) *models.Game {
	t.Helper()
	game, err := ctrl.Start(context.Background(), models.GameGenerala, generalaConfig(), players)
	require.NoError(t, err)
	return game
}

func TestFillCategoryValidation(t *testing.T) {
	ctrl, _ := newTestController(t)
	players := twoPlayers()
	game := startGenerala(t, ctrl, players)
	ctx := context.Background()

	_, err := ctrl.FillCategory(ctx, game.ID, players[0], models.CatFives, intp(7))
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = ctrl.FillCategory(ctx, game.ID, players[0], "yahtzee", intp(50))
	assert.Error(t, err)

	recs, err := ctrl.FillCategory(ctx, game.ID, players[0], models.CatFives, intp(15))
	require.NoError(t, err)
	s := recs[0].(*models.GeneralaScore)
	require.NotNil(t, s.Fives)
	assert.Equal(t, 15, *s.Fives)
}

func TestFillCategoryClearsCell(t *testing.T) {
	ctrl, _ := newTestController(t)
	players := twoPlayers()
	game := startGenerala(t, ctrl, players)
	ctx := context.Background()

	_, err := ctrl.FillCategory(ctx, game.ID, players[0], models.CatPoker, intp(40))
	require.NoError(t, err)

	recs, err := ctrl.FillCategory(ctx, game.ID, players[0], models.CatPoker, nil)
	require.NoError(t, err)
	assert.Nil(t, recs[0].(*models.GeneralaScore).Poker, "nil value empties the cell again")
}

func TestGeneralaFinishesWhenSheetsComplete(t *testing.T) {
	ctrl, st := newTestController(t)
	players := twoPlayers()
	game := startGenerala(t, ctrl, players)
	ctx := context.Background()

	// First player strikes everything, second strikes all but ones.
	for _, c := range engine.Categories {
		_, err := ctrl.FillCategory(ctx, game.ID, players[0], c.Key, intp(0))
		require.NoError(t, err)
		if c.Key != models.CatOnes {
			_, err = ctrl.FillCategory(ctx, game.ID, players[1], c.Key, intp(0))
			require.NoError(t, err)
		}
	}
	got, err := st.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status, "one open cell keeps the game going")

	_, err = ctrl.FillCategory(ctx, game.ID, players[1], models.CatOnes, intp(5))
	require.NoError(t, err)

	got, err = st.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, players[1], *got.WinnerID)
}

func TestGeneralaTieLeavesNoWinner(t *testing.T) {
	ctrl, st := newTestController(t)
	players := twoPlayers()
	game := startGenerala(t, ctrl, players)
	ctx := context.Background()

	for _, c := range engine.Categories {
		for _, pid := range players {
			_, err := ctrl.FillCategory(ctx, game.ID, pid, c.Key, intp(0))
			require.NoError(t, err)
		}
	}

	got, err := st.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, got.Status)
	assert.Nil(t, got.WinnerID, "an exact tie records no winner")
}

func TestServidaWinEndsImmediately(t *testing.T) {
	ctrl, st := newTestController(t)
	players := twoPlayers()
	game := startGenerala(t, ctrl, players)
	ctx := context.Background()

	_, err := ctrl.ServidaWin(ctx, game.ID, players[0], models.CatFullHouse)
	assert.ErrorIs(t, err, ErrBadValue, "only generala categories win servida")

	recs, err := ctrl.ServidaWin(ctx, game.ID, players[0], models.CatGenerala)
	require.NoError(t, err)
	s := recs[0].(*models.GeneralaScore)
	require.NotNil(t, s.Generala)
	assert.Equal(t, 50, *s.Generala)

	got, err := st.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, players[0], *got.WinnerID)
}
