package transfer

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is an append-only audit record of a player moving between clubs.
// A nil FromClubID means the player was a free agent at the time.
type Transfer struct {
	ID         int64
	PlayerID   int64
	FromClubID *int64
	ToClubID   int64
	Fee        decimal.Decimal
	Date       time.Time
}

// Failure modes surfaced from inside the ledger transaction. The use case
// layer maps these onto its error taxonomy.
var (
	ErrPlayerNotFound    = errors.New("transfer: player not found")
	ErrClubNotFound      = errors.New("transfer: destination club not found")
	ErrSameClub          = errors.New("transfer: player already belongs to destination club")
	ErrInsufficientFunds = errors.New("transfer: destination club cannot afford the fee")
)
