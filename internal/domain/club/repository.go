package club

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository describes club persistence needs from use cases.
// Delete removes the club and everything referencing it (transfers on either
// side, matches on either side, player assignments) in one atomic unit.
type Repository interface {
	Create(ctx context.Context, item Club) (Club, error)
	GetByID(ctx context.Context, id int64) (Club, bool, error)
	GetByName(ctx context.Context, name string) (Club, bool, error)
	GetByOwner(ctx context.Context, ownerID int64) (Club, bool, error)
	List(ctx context.Context) ([]Club, error)
	ListRichest(ctx context.Context, limit int) ([]Club, error)
	UpdateMoney(ctx context.Context, id int64, money decimal.Decimal) error
	UpdateNotificationGroup(ctx context.Context, id int64, groupID *int64) error
	Delete(ctx context.Context, id int64) error
}
