// Package engine holds the pure scoring rules for each game variant.
// Engines never touch storage, the clock or a logger; they transform score
// records in memory and derive terminal conditions.
package engine

import (
	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

// OpeningThreshold is the minimum single-turn score that opens a player when
// the opening rule is enabled.
const OpeningThreshold = 1000

// DiezMil implements the 10.000 dice race rules.
type DiezMil struct {
	Config models.DiezMilConfig
}

// Opened reports whether the player may bank freely. A player counts as
// opened if any past turn reached the opening threshold OR their total is
// positive. The total check makes "opened" retroactive for points banked
// while the opening rule was off.
func (e DiezMil) Opened(s *models.DiezMilScore) bool {
	for _, t := range s.Turns {
		if t.PointsEarned >= OpeningThreshold {
			return true
		}
	}
	return s.TotalPoints > 0
}

// CanAdd reports whether a turn worth points may be banked with respect to
// the opening rule.
func (e DiezMil) CanAdd(s *models.DiezMilScore, points int) bool {
	if !e.Config.RequireOpening {
		return true
	}
	if e.Opened(s) {
		return true
	}
	return points >= OpeningThreshold
}

// CanBank reports whether a turn total is bankable: it must be positive
// (zero only enters through the explicit fumble path) and must not push the
// total past the target. There is no bust rule; an overshooting bank is
// simply refused.
func (e DiezMil) CanBank(s *models.DiezMilScore, turnTotal int) bool {
	if turnTotal <= 0 {
		return false
	}
	return s.TotalPoints+turnTotal <= e.Config.TargetScore
}

// PushTurn appends a committed turn and updates the running total. A zero
// points turn records a fumble: it occupies a turn slot with no points.
func (e DiezMil) PushTurn(s *models.DiezMilScore, points int) {
	s.Turns = append(s.Turns, models.DiezMilTurn{
		TurnNumber:   len(s.Turns) + 1,
		PointsEarned: points,
		TotalAfter:   s.TotalPoints + points,
	})
	s.TotalPoints = s.Turns[len(s.Turns)-1].TotalAfter
}

// PopTurn removes the last turn. The total is taken from the new last
// turn's TotalAfter rather than by subtraction, so it can never drift.
func (e DiezMil) PopTurn(s *models.DiezMilScore) bool {
	if len(s.Turns) == 0 {
		return false
	}
	s.Turns = s.Turns[:len(s.Turns)-1]
	if len(s.Turns) == 0 {
		s.TotalPoints = 0
	} else {
		s.TotalPoints = s.Turns[len(s.Turns)-1].TotalAfter
	}
	return true
}

// Winner returns the first score in iteration order whose total reached the
// target, or nil. Ties resolve by roster order.
func (e DiezMil) Winner(scores []*models.DiezMilScore) *uuid.UUID {
	for _, s := range scores {
		if s.TotalPoints >= e.Config.TargetScore {
			id := s.PlayerID
			return &id
		}
	}
	return nil
}
