package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

// ChinchonBonus is the fixed round value awarded for a chinchón hand when
// the outright-win rule is disabled.
const ChinchonBonus = -10

// Chinchon implements the elimination card game rules.
type Chinchon struct {
	Config models.ChinchonConfig
}

// RoundEntry pairs a score row with that player's points for the round.
type RoundEntry struct {
	ScoreID uuid.UUID
	Points  int
}

// Active returns the non-eliminated scores, preserving order.
func (e Chinchon) Active(scores []*models.ChinchonScore) []*models.ChinchonScore {
	var out []*models.ChinchonScore
	for _, s := range scores {
		if !s.IsEliminated {
			out = append(out, s)
		}
	}
	return out
}

// NextRound is the global round number for the next entry: one past the
// longest round list across all participants. Numbering is per operation,
// not per participant.
func (e Chinchon) NextRound(scores []*models.ChinchonScore) int {
	return maxRounds(scores) + 1
}

func maxRounds(scores []*models.ChinchonScore) int {
	n := 0
	for _, s := range scores {
		if len(s.Rounds) > n {
			n = len(s.Rounds)
		}
	}
	return n
}

// ApplyRound appends one round to every active participant simultaneously,
// recomputes totals and flips eliminations. Players absent from entries
// score zero for the round. Returns the scores touched.
func (e Chinchon) ApplyRound(scores []*models.ChinchonScore, entries []RoundEntry) ([]*models.ChinchonScore, error) {
	points := make(map[uuid.UUID]int, len(entries))
	for _, en := range entries {
		points[en.ScoreID] = en.Points
	}
	for id := range points {
		found := false
		for _, s := range scores {
			if s.ID == id {
				if s.IsEliminated {
					return nil, fmt.Errorf("score %s is eliminated", id)
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown score %s in round entries", id)
		}
	}

	n := e.NextRound(scores)
	var touched []*models.ChinchonScore
	for _, s := range e.Active(scores) {
		s.Rounds = append(s.Rounds, models.ChinchonRound{RoundNumber: n, Points: points[s.ID]})
		s.TotalPoints = sumChinchonRounds(s)
		if s.TotalPoints >= e.Config.EliminationThreshold {
			s.IsEliminated = true
		}
		touched = append(touched, s)
	}
	return touched, nil
}

func sumChinchonRounds(s *models.ChinchonScore) int {
	total := 0
	for _, r := range s.Rounds {
		total += r.Points
	}
	return total
}

// UndoRound strips the most recent shared round: only participants whose
// round count equals the maximum lose their last round. Totals are
// recomputed from the remaining rounds, and elimination is cleared
// unconditionally on every touched score; undo never re-derives it from
// the recomputed total. Returns the touched scores, or nil if there was
// nothing to undo.
func (e Chinchon) UndoRound(scores []*models.ChinchonScore) []*models.ChinchonScore {
	n := maxRounds(scores)
	if n == 0 {
		return nil
	}
	var touched []*models.ChinchonScore
	for _, s := range scores {
		if len(s.Rounds) != n {
			continue
		}
		s.Rounds = s.Rounds[:len(s.Rounds)-1]
		s.TotalPoints = sumChinchonRounds(s)
		s.IsEliminated = false
		touched = append(touched, s)
	}
	return touched
}

// ChinchonResult is a finished chinchón outcome.
type ChinchonResult struct {
	WinnerID uuid.UUID
	Tie      bool
}

// End returns the outcome once at most one participant remains active, or
// nil while play continues. When the final round eliminates everyone at
// once, the lowest total among those eliminated by that round wins; an
// exact tie for lowest leaves no winner.
func (e Chinchon) End(scores []*models.ChinchonScore) *ChinchonResult {
	active := e.Active(scores)
	switch len(active) {
	case 1:
		return &ChinchonResult{WinnerID: active[0].PlayerID}
	case 0:
		if len(scores) == 0 {
			return nil
		}
		n := maxRounds(scores)
		best := -1
		var winner uuid.UUID
		tie := false
		for _, s := range scores {
			if len(s.Rounds) != n {
				continue
			}
			if best == -1 || s.TotalPoints < best {
				best = s.TotalPoints
				winner = s.PlayerID
				tie = false
			} else if s.TotalPoints == best {
				tie = true
			}
		}
		if best == -1 || tie {
			return &ChinchonResult{Tie: true}
		}
		return &ChinchonResult{WinnerID: winner}
	}
	return nil
}
