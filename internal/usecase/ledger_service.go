package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/transfer"
)

// TransferInput is the incoming payload for moving a player to a club.
type TransferInput struct {
	PlayerID int64
	ToClubID int64
	Fee      decimal.Decimal
}

// LedgerService fronts the atomic transfer ledger. Fee validation happens
// here, once; the ledger itself only enforces affordability and ownership.
type LedgerService struct {
	ledger       transfer.Ledger
	transferRepo transfer.Repository
	logger       *slog.Logger
}

func NewLedgerService(ledger transfer.Ledger, transferRepo transfer.Repository, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LedgerService{
		ledger:       ledger,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

func (s *LedgerService) Transfer(ctx context.Context, input TransferInput) (transfer.Transfer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.Transfer")
	defer span.End()

	if input.PlayerID <= 0 {
		return transfer.Transfer{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.ToClubID <= 0 {
		return transfer.Transfer{}, fmt.Errorf("%w: destination club id is required", ErrInvalidInput)
	}
	if input.Fee.IsNegative() {
		return transfer.Transfer{}, fmt.Errorf("%w: transfer fee cannot be negative", ErrInvalidInput)
	}

	record, err := s.ledger.ExecuteTransfer(ctx, input.PlayerID, input.ToClubID, input.Fee)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrPlayerNotFound):
			return transfer.Transfer{}, fmt.Errorf("%w: player=%d", ErrNotFound, input.PlayerID)
		case errors.Is(err, transfer.ErrClubNotFound):
			return transfer.Transfer{}, fmt.Errorf("%w: club=%d", ErrNotFound, input.ToClubID)
		case errors.Is(err, transfer.ErrSameClub):
			return transfer.Transfer{}, fmt.Errorf("%w: player=%d already plays for club=%d", ErrInvalidInput, input.PlayerID, input.ToClubID)
		case errors.Is(err, transfer.ErrInsufficientFunds):
			return transfer.Transfer{}, fmt.Errorf("%w: club=%d cannot pay %s", ErrInsufficientFunds, input.ToClubID, input.Fee.String())
		default:
			return transfer.Transfer{}, fmt.Errorf("%w: execute transfer: %v", ErrConsistency, err)
		}
	}

	s.logger.InfoContext(ctx, "transfer completed",
		"transfer_id", record.ID,
		"player_id", record.PlayerID,
		"to_club_id", record.ToClubID,
		"fee", record.Fee.String(),
	)

	return record, nil
}

func (s *LedgerService) ListRecentTransfers(ctx context.Context, limit int) ([]transfer.Transfer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	items, err := s.transferRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transfers: %w", err)
	}

	return items, nil
}

func (s *LedgerService) ListPlayerTransfers(ctx context.Context, playerID int64) ([]transfer.Transfer, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	items, err := s.transferRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list player transfers: %w", err)
	}

	return items, nil
}
