package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/club"
)

// CreateClubInput is the incoming payload for founding a club.
type CreateClubInput struct {
	Name                string `validate:"required,min=2,max=64"`
	OwnerID             int64  `validate:"required,gt=0"`
	StartingMoney       decimal.Decimal
	NotificationGroupID *int64
}

type ClubService struct {
	clubRepo club.Repository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewClubService(clubRepo club.Repository, logger *slog.Logger) *ClubService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClubService{
		clubRepo: clubRepo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *ClubService) CreateClub(ctx context.Context, input CreateClubInput) (club.Club, error) {
	input.Name = strings.TrimSpace(input.Name)

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return club.Club{}, fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}
	if input.StartingMoney.IsNegative() {
		return club.Club{}, fmt.Errorf("%w: starting money cannot be negative", ErrInvalidInput)
	}

	if _, exists, err := s.clubRepo.GetByName(ctx, input.Name); err != nil {
		return club.Club{}, fmt.Errorf("check club name: %w", err)
	} else if exists {
		return club.Club{}, fmt.Errorf("%w: club name %q is taken", ErrConflict, input.Name)
	}
	if existing, exists, err := s.clubRepo.GetByOwner(ctx, input.OwnerID); err != nil {
		return club.Club{}, fmt.Errorf("check club owner: %w", err)
	} else if exists {
		return club.Club{}, fmt.Errorf("%w: owner already runs club %q", ErrConflict, existing.Name)
	}

	item := club.Club{
		Name:                input.Name,
		OwnerID:             input.OwnerID,
		Money:               input.StartingMoney,
		NotificationGroupID: input.NotificationGroupID,
	}
	if err := item.Validate(); err != nil {
		return club.Club{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.clubRepo.Create(ctx, item)
	if err != nil {
		return club.Club{}, fmt.Errorf("create club: %w", err)
	}

	s.logger.InfoContext(ctx, "club created",
		"club_id", created.ID,
		"name", created.Name,
		"owner_id", created.OwnerID,
	)

	return created, nil
}

func (s *ClubService) GetClub(ctx context.Context, id int64) (club.Club, error) {
	item, exists, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return club.Club{}, fmt.Errorf("get club: %w", err)
	}
	if !exists {
		return club.Club{}, fmt.Errorf("%w: club=%d", ErrNotFound, id)
	}

	return item, nil
}

func (s *ClubService) GetClubByName(ctx context.Context, name string) (club.Club, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return club.Club{}, fmt.Errorf("%w: club name is required", ErrInvalidInput)
	}

	item, exists, err := s.clubRepo.GetByName(ctx, name)
	if err != nil {
		return club.Club{}, fmt.Errorf("get club by name: %w", err)
	}
	if !exists {
		return club.Club{}, fmt.Errorf("%w: club %q", ErrNotFound, name)
	}

	return item, nil
}

func (s *ClubService) GetClubByOwner(ctx context.Context, ownerID int64) (club.Club, error) {
	item, exists, err := s.clubRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return club.Club{}, fmt.Errorf("get club by owner: %w", err)
	}
	if !exists {
		return club.Club{}, fmt.Errorf("%w: owner=%d has no club", ErrNotFound, ownerID)
	}

	return item, nil
}

func (s *ClubService) ListClubs(ctx context.Context) ([]club.Club, error) {
	items, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	return items, nil
}

func (s *ClubService) ListRichestClubs(ctx context.Context, limit int) ([]club.Club, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	items, err := s.clubRepo.ListRichest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list richest clubs: %w", err)
	}

	return items, nil
}

func (s *ClubService) SetClubMoney(ctx context.Context, id int64, money decimal.Decimal) error {
	if money.IsNegative() {
		return fmt.Errorf("%w: money cannot be negative", ErrInvalidInput)
	}
	if _, err := s.GetClub(ctx, id); err != nil {
		return err
	}

	if err := s.clubRepo.UpdateMoney(ctx, id, money); err != nil {
		return fmt.Errorf("update club money: %w", err)
	}

	s.logger.InfoContext(ctx, "club money set", "club_id", id, "money", money.String())

	return nil
}

// SetNotificationGroup points a club's match reminders at a chat group. A nil
// groupID clears it; reminders then fall back to the owner.
func (s *ClubService) SetNotificationGroup(ctx context.Context, id int64, groupID *int64) error {
	if _, err := s.GetClub(ctx, id); err != nil {
		return err
	}

	if err := s.clubRepo.UpdateNotificationGroup(ctx, id, groupID); err != nil {
		return fmt.Errorf("update club notification group: %w", err)
	}

	return nil
}

// DeleteClub removes the club and everything tied to it in one transaction.
// The repository cascade releases its players as free agents.
func (s *ClubService) DeleteClub(ctx context.Context, id int64) error {
	item, err := s.GetClub(ctx, id)
	if err != nil {
		return err
	}

	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete club %d: %v", ErrConsistency, id, err)
	}

	s.logger.InfoContext(ctx, "club deleted", "club_id", id, "name", item.Name)

	return nil
}
