package models

import (
	"time"

	"github.com/google/uuid"
)

// GameType identifies one of the supported game variants.
type GameType string

const (
	GameDiezMil   GameType = "diez_mil"
	GameGenerala  GameType = "generala"
	GameChinchon  GameType = "chinchon"
	GameTruco     GameType = "truco"
	GameUniversal GameType = "universal"
)

// GameStatus is the lifecycle state of a game session. At most one game is
// in progress at any time; the session controller enforces that, not the
// storage layer.
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

// DiezMilConfig configures the 10.000 dice race.
type DiezMilConfig struct {
	TargetScore    int  `json:"target_score"`
	RequireOpening bool `json:"require_opening"`
}

// GeneralaConfig configures the generala category sheet.
type GeneralaConfig struct {
	MaxPlayers int `json:"max_players"`
}

// ChinchonConfig configures the chinchón elimination card game.
type ChinchonConfig struct {
	EliminationThreshold int  `json:"elimination_threshold"`
	ChinchonWins         bool `json:"chinchon_wins"`
}

// TrucoConfig configures the two-team truco tally. TeamNames holds the
// display labels in fixed team order (nosotros, ellos).
type TrucoConfig struct {
	TargetScore int       `json:"target_score"`
	TeamNames   [2]string `json:"team_names"`
}

// UniversalConfig configures the free-form round scorer.
type UniversalConfig struct {
	TargetScore int  `json:"target_score"`
	HighestWins bool `json:"highest_wins"`
}

// GameConfig is a tagged union of the per-variant configurations; exactly
// the pointer matching the game's GameType is non-nil.
type GameConfig struct {
	DiezMil   *DiezMilConfig   `json:"diez_mil,omitempty"`
	Generala  *GeneralaConfig  `json:"generala,omitempty"`
	Chinchon  *ChinchonConfig  `json:"chinchon,omitempty"`
	Truco     *TrucoConfig     `json:"truco,omitempty"`
	Universal *UniversalConfig `json:"universal,omitempty"`
}

// Matches reports whether the populated config arm corresponds to t.
func (c GameConfig) Matches(t GameType) bool {
	switch t {
	case GameDiezMil:
		return c.DiezMil != nil
	case GameGenerala:
		return c.Generala != nil
	case GameChinchon:
		return c.Chinchon != nil
	case GameTruco:
		return c.Truco != nil
	case GameUniversal:
		return c.Universal != nil
	}
	return false
}

// Game is one played session of a variant, from start to finish or
// abandonment. PlayerIDs is ordered; order defines display and turn rotation.
type Game struct {
	ID        uuid.UUID   `json:"id"`
	GameType  GameType    `json:"game_type"`
	Status    GameStatus  `json:"status"`
	Config    GameConfig  `json:"config"`
	PlayerIDs []uuid.UUID `json:"player_ids"`
	WinnerID  *uuid.UUID  `json:"winner_id,omitempty"`
	// WinnerTeam records the winning side for team-based variants, where
	// no player id exists to point at.
	WinnerTeam *Team      `json:"winner_team,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
