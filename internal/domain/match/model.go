package match

import (
	"fmt"
	"time"
)

// Match is a scheduled fixture between two clubs. ReminderSent is the
// at-most-once dispatch marker: it transitions false to true exactly once and
// never reverses.
type Match struct {
	ID           int64
	Team1ID      int64
	Team2ID      int64
	MatchTime    time.Time
	ReminderSent bool
	CreatedAt    time.Time
}

func (m Match) Validate() error {
	if m.Team1ID <= 0 || m.Team2ID <= 0 {
		return fmt.Errorf("both team ids are required")
	}
	if m.Team1ID == m.Team2ID {
		return fmt.Errorf("a club cannot play against itself")
	}
	if m.MatchTime.IsZero() {
		return fmt.Errorf("match time is required")
	}

	return nil
}
