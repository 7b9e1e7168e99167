package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

// Universal implements the free-form round scorer: shared rounds like
// chinchón, but no elimination. The game ends when any total reaches the
// target; whether the highest or the lowest total wins is configurable.
type Universal struct {
	Config models.UniversalConfig
}

// NextRound is the global round number for the next entry.
func (e Universal) NextRound(scores []*models.UniversalScore) int {
	n := 0
	for _, s := range scores {
		if len(s.Rounds) > n {
			n = len(s.Rounds)
		}
	}
	return n + 1
}

// ApplyRound appends one round to every participant simultaneously and
// recomputes totals. Players absent from entries score zero.
func (e Universal) ApplyRound(scores []*models.UniversalScore, entries []RoundEntry) error {
	points := make(map[uuid.UUID]int, len(entries))
	for _, en := range entries {
		points[en.ScoreID] = en.Points
	}
	for id := range points {
		found := false
		for _, s := range scores {
			if s.ID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown score %s in round entries", id)
		}
	}

	n := e.NextRound(scores)
	for _, s := range scores {
		s.Rounds = append(s.Rounds, models.UniversalRound{RoundNumber: n, Points: points[s.ID]})
		s.TotalPoints = sumUniversalRounds(s)
	}
	return nil
}

func sumUniversalRounds(s *models.UniversalScore) int {
	total := 0
	for _, r := range s.Rounds {
		total += r.Points
	}
	return total
}

// UndoRound strips the most recent round from every participant whose round
// count equals the maximum and recomputes totals. Returns the touched
// scores, or nil if there was nothing to undo.
func (e Universal) UndoRound(scores []*models.UniversalScore) []*models.UniversalScore {
	n := 0
	for _, s := range scores {
		if len(s.Rounds) > n {
			n = len(s.Rounds)
		}
	}
	if n == 0 {
		return nil
	}
	var touched []*models.UniversalScore
	for _, s := range scores {
		if len(s.Rounds) != n {
			continue
		}
		s.Rounds = s.Rounds[:len(s.Rounds)-1]
		s.TotalPoints = sumUniversalRounds(s)
		touched = append(touched, s)
	}
	return touched
}

// Winner returns the winning player once any total reaches the target, or
// nil while play continues. The winner is the best total across all
// participants (highest or lowest per config); ties resolve by roster order.
func (e Universal) Winner(scores []*models.UniversalScore) *uuid.UUID {
	reached := false
	for _, s := range scores {
		if s.TotalPoints >= e.Config.TargetScore {
			reached = true
			break
		}
	}
	if !reached {
		return nil
	}

	var best *models.UniversalScore
	for _, s := range scores {
		if best == nil {
			best = s
			continue
		}
		if e.Config.HighestWins && s.TotalPoints > best.TotalPoints {
			best = s
		}
		if !e.Config.HighestWins && s.TotalPoints < best.TotalPoints {
			best = s
		}
	}
	id := best.PlayerID
	return &id
}
