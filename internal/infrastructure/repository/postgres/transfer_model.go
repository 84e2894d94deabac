package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/transfer"
)

type transferTableModel struct {
	ID         int64           `db:"id"`
	PlayerID   int64           `db:"player_id"`
	FromClubID sql.NullInt64   `db:"from_club_id"`
	ToClubID   int64           `db:"to_club_id"`
	Fee        decimal.Decimal `db:"transfer_fee"`
	Date       time.Time       `db:"transfer_date"`
}

func (m transferTableModel) toDomain() transfer.Transfer {
	return transfer.Transfer{
		ID:         m.ID,
		PlayerID:   m.PlayerID,
		FromClubID: int64Ptr(m.FromClubID),
		ToClubID:   m.ToClubID,
		Fee:        m.Fee,
		Date:       m.Date,
	}
}
