package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/club"
)

type clubTableModel struct {
	ID                  int64           `db:"id"`
	Name                string          `db:"name"`
	OwnerID             int64           `db:"owner_id"`
	Money               decimal.Decimal `db:"money"`
	NotificationGroupID sql.NullInt64   `db:"notification_group_id"`
	CreatedAt           time.Time       `db:"created_at"`
}

func (m clubTableModel) toDomain() club.Club {
	return club.Club{
		ID:                  m.ID,
		Name:                m.Name,
		OwnerID:             m.OwnerID,
		Money:               m.Money,
		NotificationGroupID: int64Ptr(m.NotificationGroupID),
		CreatedAt:           m.CreatedAt,
	}
}
