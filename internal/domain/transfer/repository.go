package transfer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository describes read access to the transfer audit trail.
type Repository interface {
	ListRecent(ctx context.Context, limit int) ([]Transfer, error)
	ListByPlayer(ctx context.Context, playerID int64) ([]Transfer, error)
}

// Ledger moves a player between clubs as one atomic unit: re-assign the
// player, append the audit row, credit the source club (when any) and debit
// the destination. Either every write lands or none do.
type Ledger interface {
	ExecuteTransfer(ctx context.Context, playerID, toClubID int64, fee decimal.Decimal) (Transfer, error)
}
