package player

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinAge = 16
	MaxAge = 50
)

// Player is an athlete with a market value. A nil ClubID means free agent.
type Player struct {
	ID        int64
	Name      string
	Value     decimal.Decimal
	Position  string
	Age       *int
	ClubID    *int64
	CreatedAt time.Time
}

func (p Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Value.IsNegative() {
		return fmt.Errorf("player value cannot be negative")
	}
	if p.Age != nil && (*p.Age < MinAge || *p.Age > MaxAge) {
		return fmt.Errorf("player age must be between %d and %d", MinAge, MaxAge)
	}

	return nil
}

// IsFreeAgent reports whether the player has no club assignment.
func (p Player) IsFreeAgent() bool {
	return p.ClubID == nil
}
