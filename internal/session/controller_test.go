package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anotador/internal/models"
	"github.com/jason-s-yu/anotador/internal/store"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestController(t *testing.T, opts ...Option) (*Controller, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return New(st, testLogger(), opts...), st
}

func twoPlayers() []uuid.UUID {
	return []uuid.UUID{uuid.New(), uuid.New()}
}

func diezMilConfig() models.GameConfig {
	return models.GameConfig{DiezMil: &models.DiezMilConfig{TargetScore: 10000, RequireOpening: true}}
}

func generalaConfig() models.GameConfig {
	return models.GameConfig{Generala: &models.GeneralaConfig{MaxPlayers: 6}}
}

func chinchonConfig(wins bool) models.GameConfig {
	return models.GameConfig{Chinchon: &models.ChinchonConfig{EliminationThreshold: 100, ChinchonWins: wins}}
}

func trucoConfig(target int) models.GameConfig {
	return models.GameConfig{Truco: &models.TrucoConfig{TargetScore: target, TeamNames: [2]string{"Nosotros", "Ellos"}}}
}

func universalConfig(target int, highest bool) models.GameConfig {
	return models.GameConfig{Universal: &models.UniversalConfig{TargetScore: target, HighestWins: highest}}
}

// flakyStore wraps a real store and lets tests fail or count CreateScores.
type flakyStore struct {
	store.Store
	failCreateScores bool
	createScoreCalls int
}

func (f *flakyStore) CreateScores(ctx context.Context, game *models.Game, recs []models.ScoreRecord) error {
	f.createScoreCalls++
	if f.failCreateScores {
		return errors.New("simulated write failure")
	}
	return f.Store.CreateScores(ctx, game, recs)
}

func TestStartRefusesMismatchedConfig(t *testing.T) {
	ctrl, _ := newTestController(t)
	_, err := ctrl.Start(context.Background(), models.GameDiezMil, generalaConfig(), twoPlayers())
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	ctrl, _ := newTestController(t)
	_, err := ctrl.Start(context.Background(), models.GameDiezMil, diezMilConfig(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrNoPlayers)
}

func TestStartRefusesSecondGame(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, models.GameDiezMil, diezMilConfig(), twoPlayers())
	require.NoError(t, err)

	_, err = ctrl.Start(ctx, models.GameChinchon, chinchonConfig(false), twoPlayers())
	assert.ErrorIs(t, err, ErrActiveGame)
}

func TestStartCreatesScoreRows(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	players := twoPlayers()

	game, err := ctrl.Start(ctx, models.GameDiezMil, diezMilConfig(), players)
	require.NoError(t, err)

	got, recs, err := ctrl.Scores(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	require.Len(t, recs, 2)
	for i, rec := range recs {
		s, ok := rec.(*models.DiezMilScore)
		require.True(t, ok)
		assert.Equal(t, players[i], s.PlayerID, "rows come back in roster order")
	}
}

func TestStartTrucoCreatesTeamRows(t *testing.T) {
	// Truco has no roster: the two team rows exist regardless of players.
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	game, err := ctrl.Start(ctx, models.GameTruco, trucoConfig(30), nil)
	require.NoError(t, err)

	_, recs, err := ctrl.Scores(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, models.TeamNosotros, recs[0].(*models.TrucoScore).Team)
	assert.Equal(t, models.TeamEllos, recs[1].(*models.TrucoScore).Team)
}

func TestStartCompensatesOnScoreFailure(t *testing.T) {
	flaky := &flakyStore{Store: store.NewMemory(), failCreateScores: true}
	ctrl := New(flaky, testLogger())
	ctx := context.Background()

	_, err := ctrl.Start(ctx, models.GameDiezMil, diezMilConfig(), twoPlayers())
	require.Error(t, err)

	// The half-created game must not survive as the active game.
	active, err := ctrl.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	games, err := ctrl.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestScoresRecoversMissingRows(t *testing.T) {
	flaky := &flakyStore{Store: store.NewMemory()}
	ctrl := New(flaky, testLogger())
	ctx := context.Background()
	players := twoPlayers()

	// Simulate a crash between game and score creation: the game row exists
	// but only one of the two score rows does.
	game := &models.Game{
		ID:        uuid.New(),
		GameType:  models.GameChinchon,
		Status:    models.StatusInProgress,
		Config:    chinchonConfig(false),
		PlayerIDs: players,
		CreatedAt: time.Now(),
	}
	require.NoError(t, flaky.Store.CreateGame(ctx, game))
	require.NoError(t, flaky.Store.CreateScores(ctx, game, []models.ScoreRecord{
		&models.ChinchonScore{ID: uuid.New(), GameID: game.ID, PlayerID: players[0]},
	}))

	_, recs, err := ctrl.Scores(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, flaky.createScoreCalls, "only the missing row is created")

	// Recovery runs once per game; subsequent reads do not re-check.
	_, recs, err = ctrl.Scores(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 1, flaky.createScoreCalls)
}

func TestScoresRecoversTrucoTeamRows(t *testing.T) {
	ctrl, st := newTestController(t)
	ctx := context.Background()

	game := &models.Game{
		ID:        uuid.New(),
		GameType:  models.GameTruco,
		Status:    models.StatusInProgress,
		Config:    trucoConfig(30),
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.CreateGame(ctx, game))

	_, recs, err := ctrl.Scores(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, models.TeamNosotros, recs[0].(*models.TrucoScore).Team)
	assert.Equal(t, models.TeamEllos, recs[1].(*models.TrucoScore).Team)
}

func TestAbandonDeletesGameAndScores(t *testing.T) {
	ctrl, st := newTestController(t)
	ctx := context.Background()

	game, err := ctrl.Start(ctx, models.GameGenerala, generalaConfig(), twoPlayers())
	require.NoError(t, err)

	require.NoError(t, ctrl.Abandon(ctx, game.ID))

	_, err = st.GetGame(ctx, game.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	active, err := ctrl.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active, "a new game may start after abandonment")
}

func TestNotifierFiresOnCommit(t *testing.T) {
	var ops []string
	ctrl, _ := newTestController(t, WithNotifier(func(gameID uuid.UUID, op string) {
		ops = append(ops, op)
	}))
	ctx := context.Background()

	game, err := ctrl.Start(ctx, models.GameTruco, trucoConfig(30), nil)
	require.NoError(t, err)
	_, err = ctrl.AddPoint(ctx, game.ID, models.TeamEllos)
	require.NoError(t, err)
	_, err = ctrl.UndoPoint(ctx, game.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "add_point", "undo_point"}, ops)
}

func TestNotifierNotFiredOnRefusal(t *testing.T) {
	var ops []string
	ctrl, _ := newTestController(t, WithNotifier(func(gameID uuid.UUID, op string) {
		ops = append(ops, op)
	}))
	ctx := context.Background()

	game, err := ctrl.Start(ctx, models.GameTruco, trucoConfig(30), nil)
	require.NoError(t, err)
	_, err = ctrl.UndoPoint(ctx, game.ID)
	require.ErrorIs(t, err, ErrNothingToUndo)

	assert.Equal(t, []string{"start"}, ops)
}
