package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/footylabs/clubledger/internal/domain/club"
	"github.com/footylabs/clubledger/internal/domain/match"
)

// ScheduleMatchInput is the incoming payload for putting a match on the
// calendar.
type ScheduleMatchInput struct {
	Team1ID   int64
	Team2ID   int64
	MatchTime time.Time
}

type MatchService struct {
	matchRepo match.Repository
	clubRepo  club.Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewMatchService(matchRepo match.Repository, clubRepo club.Repository, logger *slog.Logger) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MatchService{
		matchRepo: matchRepo,
		clubRepo:  clubRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MatchService) ScheduleMatch(ctx context.Context, input ScheduleMatchInput) (match.Match, error) {
	if input.Team1ID <= 0 || input.Team2ID <= 0 {
		return match.Match{}, fmt.Errorf("%w: both team ids are required", ErrInvalidInput)
	}
	if input.Team1ID == input.Team2ID {
		return match.Match{}, fmt.Errorf("%w: a club cannot play itself", ErrInvalidInput)
	}
	if !input.MatchTime.After(s.now()) {
		return match.Match{}, fmt.Errorf("%w: match time must be in the future", ErrInvalidInput)
	}

	for _, teamID := range []int64{input.Team1ID, input.Team2ID} {
		if _, exists, err := s.clubRepo.GetByID(ctx, teamID); err != nil {
			return match.Match{}, fmt.Errorf("check match club: %w", err)
		} else if !exists {
			return match.Match{}, fmt.Errorf("%w: club=%d", ErrNotFound, teamID)
		}
	}

	item := match.Match{
		Team1ID:   input.Team1ID,
		Team2ID:   input.Team2ID,
		MatchTime: input.MatchTime.UTC(),
	}
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.matchRepo.Create(ctx, item)
	if err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match scheduled",
		"match_id", created.ID,
		"team1_id", created.Team1ID,
		"team2_id", created.Team2ID,
		"match_time", created.MatchTime,
	)

	return created, nil
}

func (s *MatchService) GetMatch(ctx context.Context, id int64) (match.Match, error) {
	item, exists, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, id)
	}

	return item, nil
}

func (s *MatchService) ListUpcomingMatches(ctx context.Context, limit int) ([]match.Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	items, err := s.matchRepo.ListUpcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}

	return items, nil
}
