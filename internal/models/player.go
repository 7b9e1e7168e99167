package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a roster entry. Games and score records reference players by id
// only; renaming a player never rewrites historical scores.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
