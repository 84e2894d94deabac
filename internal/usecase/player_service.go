package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/club"
	"github.com/footylabs/clubledger/internal/domain/player"
)

// CreatePlayerInput is the incoming payload for registering a player. A nil
// ClubID registers a free agent.
type CreatePlayerInput struct {
	Name     string `validate:"required,min=2,max=64"`
	Value    decimal.Decimal
	Position string `validate:"max=32"`
	Age      *int   `validate:"omitempty,gte=16,lte=50"`
	ClubID   *int64
}

type PlayerService struct {
	playerRepo player.Repository
	clubRepo   club.Repository
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewPlayerService(playerRepo player.Repository, clubRepo club.Repository, logger *slog.Logger) *PlayerService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PlayerService{
		playerRepo: playerRepo,
		clubRepo:   clubRepo,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (s *PlayerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (player.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Position = strings.TrimSpace(input.Position)

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return player.Player{}, fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}
	if input.Value.IsNegative() {
		return player.Player{}, fmt.Errorf("%w: player value cannot be negative", ErrInvalidInput)
	}

	if _, exists, err := s.playerRepo.GetByName(ctx, input.Name); err != nil {
		return player.Player{}, fmt.Errorf("check player name: %w", err)
	} else if exists {
		return player.Player{}, fmt.Errorf("%w: player name %q is taken", ErrConflict, input.Name)
	}

	if input.ClubID != nil {
		if _, exists, err := s.clubRepo.GetByID(ctx, *input.ClubID); err != nil {
			return player.Player{}, fmt.Errorf("check player club: %w", err)
		} else if !exists {
			return player.Player{}, fmt.Errorf("%w: club=%d", ErrNotFound, *input.ClubID)
		}
	}

	item := player.Player{
		Name:     input.Name,
		Value:    input.Value,
		Position: input.Position,
		Age:      input.Age,
		ClubID:   input.ClubID,
	}
	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.playerRepo.Create(ctx, item)
	if err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.logger.InfoContext(ctx, "player created",
		"player_id", created.ID,
		"name", created.Name,
		"free_agent", created.IsFreeAgent(),
	)

	return created, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id int64) (player.Player, error) {
	item, exists, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%d", ErrNotFound, id)
	}

	return item, nil
}

func (s *PlayerService) GetPlayerByName(ctx context.Context, name string) (player.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player by name: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player %q", ErrNotFound, name)
	}

	return item, nil
}

func (s *PlayerService) ListClubPlayers(ctx context.Context, clubID int64) ([]player.Player, error) {
	if _, exists, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, fmt.Errorf("check club: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: club=%d", ErrNotFound, clubID)
	}

	items, err := s.playerRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list club players: %w", err)
	}

	return items, nil
}

func (s *PlayerService) ListFreeAgents(ctx context.Context) ([]player.Player, error) {
	items, err := s.playerRepo.ListFreeAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list free agents: %w", err)
	}

	return items, nil
}

func (s *PlayerService) ListTopPlayers(ctx context.Context, limit int) ([]player.Player, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	items, err := s.playerRepo.ListTopByValue(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top players: %w", err)
	}

	return items, nil
}

func (s *PlayerService) SetPlayerValue(ctx context.Context, id int64, value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: player value cannot be negative", ErrInvalidInput)
	}
	if _, err := s.GetPlayer(ctx, id); err != nil {
		return err
	}

	if err := s.playerRepo.UpdateValue(ctx, id, value); err != nil {
		return fmt.Errorf("update player value: %w", err)
	}

	s.logger.InfoContext(ctx, "player value set", "player_id", id, "value", value.String())

	return nil
}
