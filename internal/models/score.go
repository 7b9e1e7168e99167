package models

import "github.com/google/uuid"

// ScoreRecord is implemented by every per-variant score shape so the store
// can persist them generically (id + game id + JSON payload).
type ScoreRecord interface {
	RecordID() uuid.UUID
	RecordGameID() uuid.UUID
}

// DiezMilTurn is a single banked (or fumbled) turn. TotalAfter is the
// running total after this turn; the score's TotalPoints always equals the
// last turn's TotalAfter.
type DiezMilTurn struct {
	TurnNumber   int `json:"turn_number"`
	PointsEarned int `json:"points_earned"`
	TotalAfter   int `json:"total_after"`
}

// DiezMilScore is one player's state in a 10.000 game.
type DiezMilScore struct {
	ID          uuid.UUID     `json:"id"`
	GameID      uuid.UUID     `json:"game_id"`
	PlayerID    uuid.UUID     `json:"player_id"`
	Turns       []DiezMilTurn `json:"turns"`
	TotalPoints int           `json:"total_points"`
}

func (s *DiezMilScore) RecordID() uuid.UUID     { return s.ID }
func (s *DiezMilScore) RecordGameID() uuid.UUID { return s.GameID }

// GeneralaCategory keys one cell of the generala sheet.
type GeneralaCategory string

const (
	CatOnes          GeneralaCategory = "ones"
	CatTwos          GeneralaCategory = "twos"
	CatThrees        GeneralaCategory = "threes"
	CatFours         GeneralaCategory = "fours"
	CatFives         GeneralaCategory = "fives"
	CatSixes         GeneralaCategory = "sixes"
	CatStraight      GeneralaCategory = "straight"
	CatFullHouse     GeneralaCategory = "full_house"
	CatPoker         GeneralaCategory = "poker"
	CatGenerala      GeneralaCategory = "generala"
	CatDobleGenerala GeneralaCategory = "double_generala"
)

// GeneralaScore is one player's sheet. A nil cell is empty; a zero cell is
// struck ("tachado"). The two states are distinct.
type GeneralaScore struct {
	ID            uuid.UUID `json:"id"`
	GameID        uuid.UUID `json:"game_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	Ones          *int      `json:"ones"`
	Twos          *int      `json:"twos"`
	Threes        *int      `json:"threes"`
	Fours         *int      `json:"fours"`
	Fives         *int      `json:"fives"`
	Sixes         *int      `json:"sixes"`
	Straight      *int      `json:"straight"`
	FullHouse     *int      `json:"full_house"`
	Poker         *int      `json:"poker"`
	Generala      *int      `json:"generala"`
	DobleGenerala *int      `json:"double_generala"`
}

func (s *GeneralaScore) RecordID() uuid.UUID     { return s.ID }
func (s *GeneralaScore) RecordGameID() uuid.UUID { return s.GameID }

// Cell returns the value of the named category cell.
func (s *GeneralaScore) Cell(cat GeneralaCategory) *int {
	switch cat {
	case CatOnes:
		return s.Ones
	case CatTwos:
		return s.Twos
	case CatThrees:
		return s.Threes
	case CatFours:
		return s.Fours
	case CatFives:
		return s.Fives
	case CatSixes:
		return s.Sixes
	case CatStraight:
		return s.Straight
	case CatFullHouse:
		return s.FullHouse
	case CatPoker:
		return s.Poker
	case CatGenerala:
		return s.Generala
	case CatDobleGenerala:
		return s.DobleGenerala
	}
	return nil
}

// SetCell writes the named category cell. A nil value clears the cell back
// to empty.
func (s *GeneralaScore) SetCell(cat GeneralaCategory, v *int) {
	switch cat {
	case CatOnes:
		s.Ones = v
	case CatTwos:
		s.Twos = v
	case CatThrees:
		s.Threes = v
	case CatFours:
		s.Fours = v
	case CatFives:
		s.Fives = v
	case CatSixes:
		s.Sixes = v
	case CatStraight:
		s.Straight = v
	case CatFullHouse:
		s.FullHouse = v
	case CatPoker:
		s.Poker = v
	case CatGenerala:
		s.Generala = v
	case CatDobleGenerala:
		s.DobleGenerala = v
	}
}

// ChinchonRound is one round entry for one player. Points may be negative
// (the chinchón bonus hand).
type ChinchonRound struct {
	RoundNumber int `json:"round_number"`
	Points      int `json:"points"`
}

// ChinchonScore is one player's state in a chinchón game. TotalPoints is
// always the sum of Rounds' points; IsEliminated is permanent once set,
// except through an explicit round undo.
type ChinchonScore struct {
	ID           uuid.UUID       `json:"id"`
	GameID       uuid.UUID       `json:"game_id"`
	PlayerID     uuid.UUID       `json:"player_id"`
	Rounds       []ChinchonRound `json:"rounds"`
	TotalPoints  int             `json:"total_points"`
	IsEliminated bool            `json:"is_eliminated"`
}

func (s *ChinchonScore) RecordID() uuid.UUID     { return s.ID }
func (s *ChinchonScore) RecordGameID() uuid.UUID { return s.GameID }

// Team is one of the two fixed truco sides, in fixed order.
type Team string

const (
	TeamNosotros Team = "nosotros"
	TeamEllos    Team = "ellos"
)

// Teams lists the sides in fixed order; winner checks iterate this order.
var Teams = [2]Team{TeamNosotros, TeamEllos}

// TrucoScore is one team's tally. Exactly two records exist per game,
// created together at game start.
type TrucoScore struct {
	ID     uuid.UUID `json:"id"`
	GameID uuid.UUID `json:"game_id"`
	Team   Team      `json:"team"`
	Points int       `json:"points"`
}

func (s *TrucoScore) RecordID() uuid.UUID     { return s.ID }
func (s *TrucoScore) RecordGameID() uuid.UUID { return s.GameID }

// UniversalRound is one round entry in the free-form scorer.
type UniversalRound struct {
	RoundNumber int `json:"round_number"`
	Points      int `json:"points"`
}

// UniversalScore is one player's state in a universal game.
type UniversalScore struct {
	ID          uuid.UUID        `json:"id"`
	GameID      uuid.UUID        `json:"game_id"`
	PlayerID    uuid.UUID        `json:"player_id"`
	Rounds      []UniversalRound `json:"rounds"`
	TotalPoints int              `json:"total_points"`
}

func (s *UniversalScore) RecordID() uuid.UUID     { return s.ID }
func (s *UniversalScore) RecordGameID() uuid.UUID { return s.GameID }
