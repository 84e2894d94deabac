package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// DataResetter wipes every stored entity in one transaction.
type DataResetter interface {
	ResetAllData(ctx context.Context) error
}

type AdminService struct {
	resetter DataResetter
	logger   *slog.Logger
}

func NewAdminService(resetter DataResetter, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminService{resetter: resetter, logger: logger}
}

// ResetAllData destroys every club, player, transfer and match.
func (s *AdminService) ResetAllData(ctx context.Context) error {
	if err := s.resetter.ResetAllData(ctx); err != nil {
		return fmt.Errorf("%w: reset all data: %v", ErrConsistency, err)
	}

	s.logger.WarnContext(ctx, "all data reset")

	return nil
}
