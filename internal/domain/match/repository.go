package match

import (
	"context"
	"time"
)

// Repository describes match persistence needs from use cases.
//
// ClaimDueReminders selects every match with match_time in [from, until) that
// has not been notified yet and flips reminder_sent in the same atomic unit,
// returning the claimed rows. Two concurrent claims never return the same
// match.
type Repository interface {
	Create(ctx context.Context, item Match) (Match, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]Match, error)
	ClaimDueReminders(ctx context.Context, from, until time.Time) ([]Match, error)
}
