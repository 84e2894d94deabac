package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/player"
)

type playerTableModel struct {
	ID        int64           `db:"id"`
	Name      string          `db:"name"`
	Value     decimal.Decimal `db:"value"`
	Position  sql.NullString  `db:"position"`
	Age       sql.NullInt64   `db:"age"`
	ClubID    sql.NullInt64   `db:"club_id"`
	CreatedAt time.Time       `db:"created_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:        m.ID,
		Name:      m.Name,
		Value:     m.Value,
		Position:  m.Position.String,
		Age:       intPtr(m.Age),
		ClubID:    int64Ptr(m.ClubID),
		CreatedAt: m.CreatedAt,
	}
}
