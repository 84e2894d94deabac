package player

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository describes player persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Player) (Player, error)
	GetByID(ctx context.Context, id int64) (Player, bool, error)
	GetByName(ctx context.Context, name string) (Player, bool, error)
	ListByClub(ctx context.Context, clubID int64) ([]Player, error)
	ListFreeAgents(ctx context.Context) ([]Player, error)
	ListTopByValue(ctx context.Context, limit int) ([]Player, error)
	UpdateValue(ctx context.Context, id int64, value decimal.Decimal) error
}
