package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/anotador/internal/models"
)

// CategoryKind distinguishes the three scoring shapes on the sheet.
type CategoryKind string

const (
	KindNumber   CategoryKind = "number"   // dice-face multiples
	KindSpecial  CategoryKind = "special"  // normal/servida score pair
	KindGenerala CategoryKind = "generala" // single score, servida wins outright
)

// CategoryDef describes one sheet row and its scoring metadata.
type CategoryDef struct {
	Key          models.GeneralaCategory
	Label        string
	Kind         CategoryKind
	DiceValue    int
	NormalScore  int
	ServidaScore int
}

// Categories is the fixed sheet, in display order.
var Categories = []CategoryDef{
	{Key: models.CatOnes, Label: "1", Kind: KindNumber, DiceValue: 1},
	{Key: models.CatTwos, Label: "2", Kind: KindNumber, DiceValue: 2},
	{Key: models.CatThrees, Label: "3", Kind: KindNumber, DiceValue: 3},
	{Key: models.CatFours, Label: "4", Kind: KindNumber, DiceValue: 4},
	{Key: models.CatFives, Label: "5", Kind: KindNumber, DiceValue: 5},
	{Key: models.CatSixes, Label: "6", Kind: KindNumber, DiceValue: 6},
	{Key: models.CatStraight, Label: "Escalera", Kind: KindSpecial, NormalScore: 20, ServidaScore: 25},
	{Key: models.CatFullHouse, Label: "Full", Kind: KindSpecial, NormalScore: 30, ServidaScore: 35},
	{Key: models.CatPoker, Label: "Poker", Kind: KindSpecial, NormalScore: 40, ServidaScore: 45},
	{Key: models.CatGenerala, Label: "Generala", Kind: KindGenerala, NormalScore: 50},
	{Key: models.CatDobleGenerala, Label: "Doble Generala", Kind: KindGenerala, NormalScore: 100},
}

// CategoryByKey looks up a sheet row by its key.
func CategoryByKey(key models.GeneralaCategory) (CategoryDef, error) {
	for _, c := range Categories {
		if c.Key == key {
			return c, nil
		}
	}
	return CategoryDef{}, fmt.Errorf("unknown generala category %q", key)
}

// ScoreOption is one selectable value for a cell. Value 0 is the strike
// ("tachar"); it is distinct from an empty cell.
type ScoreOption struct {
	Label   string `json:"label"`
	Value   int    `json:"value"`
	Servida bool   `json:"servida,omitempty"`
}

// ValidOptions lists the values a cell may take. Number categories offer the
// strike plus one to five times the dice face; special categories offer the
// strike, the normal score and the servida score; generala categories offer
// the strike and the single score.
func ValidOptions(def CategoryDef) []ScoreOption {
	opts := []ScoreOption{{Label: "Tachar", Value: 0}}
	switch def.Kind {
	case KindNumber:
		for i := 1; i <= 5; i++ {
			v := def.DiceValue * i
			opts = append(opts, ScoreOption{Label: fmt.Sprint(v), Value: v})
		}
	case KindSpecial:
		opts = append(opts,
			ScoreOption{Label: fmt.Sprintf("Normal (%d)", def.NormalScore), Value: def.NormalScore},
			ScoreOption{Label: fmt.Sprintf("Servida (%d)", def.ServidaScore), Value: def.ServidaScore, Servida: true},
		)
	case KindGenerala:
		opts = append(opts, ScoreOption{Label: fmt.Sprintf("Anotar (%d)", def.NormalScore), Value: def.NormalScore})
	}
	return opts
}

// IsValidOption reports whether v is an offered value for the category.
func IsValidOption(def CategoryDef, v int) bool {
	for _, o := range ValidOptions(def) {
		if o.Value == v {
			return true
		}
	}
	return false
}

// GeneralaTotal sums the sheet. Struck (0) and empty (nil) cells both
// contribute nothing.
func GeneralaTotal(s *models.GeneralaScore) int {
	total := 0
	for _, c := range Categories {
		if v := s.Cell(c.Key); v != nil && *v > 0 {
			total += *v
		}
	}
	return total
}

// GeneralaComplete reports whether every cell is filled or struck.
func GeneralaComplete(s *models.GeneralaScore) bool {
	for _, c := range Categories {
		if s.Cell(c.Key) == nil {
			return false
		}
	}
	return true
}

// AllGeneralaComplete reports whether every sheet in the game is complete.
func AllGeneralaComplete(scores []*models.GeneralaScore) bool {
	if len(scores) == 0 {
		return false
	}
	for _, s := range scores {
		if !GeneralaComplete(s) {
			return false
		}
	}
	return true
}

// GeneralaResult is the outcome of a finished generala game. A tie for the
// maximum total is an explicit outcome with no winner.
type GeneralaResult struct {
	WinnerID uuid.UUID
	Tie      bool
}

// GeneralaEnd returns the game outcome once every sheet is complete, or nil
// while play continues.
func GeneralaEnd(scores []*models.GeneralaScore) *GeneralaResult {
	if !AllGeneralaComplete(scores) {
		return nil
	}

	maxTotal := -1
	var winner uuid.UUID
	tie := false
	for _, s := range scores {
		total := GeneralaTotal(s)
		if total > maxTotal {
			maxTotal = total
			winner = s.PlayerID
			tie = false
		} else if total == maxTotal {
			tie = true
		}
	}

	if tie {
		return &GeneralaResult{Tie: true}
	}
	return &GeneralaResult{WinnerID: winner}
}
