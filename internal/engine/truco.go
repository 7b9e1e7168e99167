package engine

import "github.com/jason-s-yu/anotador/internal/models"

// Truco implements the two-team point race. The engine is stateless per
// call; the undo history (previous point values) is the caller's to keep.
type Truco struct {
	Config models.TrucoConfig
}

// Winner returns the first team in fixed order whose points reached the
// target, or nil.
func (e Truco) Winner(scores []*models.TrucoScore) *models.Team {
	for _, team := range models.Teams {
		for _, s := range scores {
			if s.Team == team && s.Points >= e.Config.TargetScore {
				t := team
				return &t
			}
		}
	}
	return nil
}

// CanAdd reports whether another point may be scored (no winner yet).
func (e Truco) CanAdd(scores []*models.TrucoScore) bool {
	return e.Winner(scores) == nil
}

// TeamName resolves a team's display label from the config.
func (e Truco) TeamName(team models.Team) string {
	if team == models.TeamNosotros {
		return e.Config.TeamNames[0]
	}
	return e.Config.TeamNames[1]
}

// BuenasMalas is the presentational split of a 30-point tally: the first 15
// points are "malas", the rest "buenas". The 15-point variant has no split.
type BuenasMalas struct {
	Malas    int  `json:"malas"`
	Buenas   int  `json:"buenas"`
	InBuenas bool `json:"in_buenas"`
}

// SplitBuenasMalas derives the malas/buenas partition from a point count.
func SplitBuenasMalas(points int) BuenasMalas {
	malas := points
	if malas > 15 {
		malas = 15
	}
	buenas := points - 15
	if buenas < 0 {
		buenas = 0
	}
	return BuenasMalas{Malas: malas, Buenas: buenas, InBuenas: points > 15}
}
