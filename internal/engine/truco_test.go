package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anotador/internal/models"
)

func newTrucoScores() []*models.TrucoScore {
	gameID := uuid.New()
	return []*models.TrucoScore{
		{ID: uuid.New(), GameID: gameID, Team: models.TeamNosotros},
		{ID: uuid.New(), GameID: gameID, Team: models.TeamEllos},
	}
}

func TestTrucoWinner(t *testing.T) {
	eng := Truco{Config: models.TrucoConfig{TargetScore: 30}}
	scores := newTrucoScores()

	assert.Nil(t, eng.Winner(scores))
	assert.True(t, eng.CanAdd(scores))

	scores[1].Points = 30
	winner := eng.Winner(scores)
	require.NotNil(t, winner)
	assert.Equal(t, models.TeamEllos, *winner)
	assert.False(t, eng.CanAdd(scores))
}

func TestTrucoWinnerFixedTeamOrder(t *testing.T) {
	eng := Truco{Config: models.TrucoConfig{TargetScore: 15}}
	scores := newTrucoScores()
	scores[0].Points = 15
	scores[1].Points = 15

	winner := eng.Winner(scores)
	require.NotNil(t, winner)
	assert.Equal(t, models.TeamNosotros, *winner)
}

func TestTrucoTeamName(t *testing.T) {
	eng := Truco{Config: models.TrucoConfig{TargetScore: 30, TeamNames: [2]string{"Nosotros", "Ellos"}}}
	assert.Equal(t, "Nosotros", eng.TeamName(models.TeamNosotros))
	assert.Equal(t, "Ellos", eng.TeamName(models.TeamEllos))
}

func TestSplitBuenasMalas(t *testing.T) {
	cases := []struct {
		points   int
		malas    int
		buenas   int
		inBuenas bool
	}{
		{0, 0, 0, false},
		{7, 7, 0, false},
		{15, 15, 0, false},
		{16, 15, 1, true},
		{30, 15, 15, true},
	}
	for _, c := range cases {
		got := SplitBuenasMalas(c.points)
		assert.Equal(t, c.malas, got.Malas, "points=%d", c.points)
		assert.Equal(t, c.buenas, got.Buenas, "points=%d", c.points)
		assert.Equal(t, c.inBuenas, got.InBuenas, "points=%d", c.points)
	}
}
