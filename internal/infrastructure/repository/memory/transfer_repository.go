package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/transfer"
)

// TransferRepository is a view over the shared Store satisfying both
// transfer.Repository and transfer.Ledger.
type TransferRepository struct {
	s *Store
}

func (s *Store) Transfers() *TransferRepository {
	return &TransferRepository{s: s}
}

func (r *TransferRepository) ListRecent(_ context.Context, limit int) ([]transfer.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.listLocked(func(transfer.Transfer) bool { return true }, limit), nil
}

func (r *TransferRepository) ListByPlayer(_ context.Context, playerID int64) ([]transfer.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.listLocked(func(item transfer.Transfer) bool {
		return item.PlayerID == playerID
	}, 0), nil
}

func (r *TransferRepository) listLocked(keep func(transfer.Transfer) bool, limit int) []transfer.Transfer {
	out := make([]transfer.Transfer, 0, len(r.s.transfers))
	for _, item := range r.s.transfers {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

// ExecuteTransfer applies the whole move under the store lock, so it is as
// atomic as the database version: nothing is written until every check passes.
func (r *TransferRepository) ExecuteTransfer(_ context.Context, playerID, toClubID int64, fee decimal.Decimal) (transfer.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	subject, ok := r.s.players[playerID]
	if !ok {
		return transfer.Transfer{}, transfer.ErrPlayerNotFound
	}
	if subject.ClubID != nil && *subject.ClubID == toClubID {
		return transfer.Transfer{}, transfer.ErrSameClub
	}

	destination, ok := r.s.clubs[toClubID]
	if !ok {
		return transfer.Transfer{}, transfer.ErrClubNotFound
	}
	if destination.Money.LessThan(fee) {
		return transfer.Transfer{}, transfer.ErrInsufficientFunds
	}

	fromClubID := subject.ClubID
	subject.ClubID = &toClubID
	r.s.players[playerID] = subject

	record := transfer.Transfer{
		ID:         r.s.nextTransferID,
		PlayerID:   playerID,
		FromClubID: fromClubID,
		ToClubID:   toClubID,
		Fee:        fee,
		Date:       r.s.now().UTC(),
	}
	r.s.nextTransferID++
	r.s.transfers = append(r.s.transfers, record)

	if fromClubID != nil {
		source := r.s.clubs[*fromClubID]
		source.Money = source.Money.Add(fee)
		r.s.clubs[*fromClubID] = source
	}

	destination.Money = destination.Money.Sub(fee)
	r.s.clubs[toClubID] = destination

	return record, nil
}
