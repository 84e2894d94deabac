package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc"

	"github.com/footylabs/clubledger/internal/domain/club"
	"github.com/footylabs/clubledger/internal/domain/match"
	"github.com/footylabs/clubledger/internal/platform/logging"
)

// ReminderSchedulerConfig tunes the dispatch loop.
type ReminderSchedulerConfig struct {
	Tick      time.Duration
	Lookahead time.Duration
}

const (
	defaultReminderTick      = time.Minute
	defaultReminderLookahead = 5 * time.Minute
)

func normalizeReminderSchedulerConfig(cfg ReminderSchedulerConfig) ReminderSchedulerConfig {
	if cfg.Tick <= 0 {
		cfg.Tick = defaultReminderTick
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = defaultReminderLookahead
	}
	return cfg
}

// ReminderScheduler owns the reminder loop as an explicit lifecycle object:
// Start runs the loop at most once, Stop shuts it down cooperatively with the
// in-flight tick allowed to finish. Tick servicing is held back until the
// ready channel closes, so reminders never race the chat session bootstrap.
type ReminderScheduler struct {
	matchRepo match.Repository
	clubRepo  club.Repository
	notifier  *Notifier
	cfg       ReminderSchedulerConfig
	clock     clockwork.Clock
	ready     <-chan struct{}
	logger    *logging.Logger

	started atomic.Bool
	stopped atomic.Bool
	stop    chan struct{}
	loop    conc.WaitGroup
}

func NewReminderScheduler(
	matchRepo match.Repository,
	clubRepo club.Repository,
	notifier *Notifier,
	cfg ReminderSchedulerConfig,
	ready <-chan struct{},
	clock clockwork.Clock,
	logger *logging.Logger,
) *ReminderScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ready == nil {
		closed := make(chan struct{})
		close(closed)
		ready = closed
	}

	return &ReminderScheduler{
		matchRepo: matchRepo,
		clubRepo:  clubRepo,
		notifier:  notifier,
		cfg:       normalizeReminderSchedulerConfig(cfg),
		clock:     clock,
		ready:     ready,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Start launches the loop. A second call, including after Stop, is an error.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: reminder scheduler already started", ErrInvalidInput)
	}

	s.loop.Go(func() {
		s.run(ctx)
	})

	return nil
}

// Stop signals the loop and waits for the in-flight tick, bounded by ctx.
func (s *ReminderScheduler) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return nil
	}
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stop)
	}

	done := make(chan struct{})
	go func() {
		s.loop.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for reminder loop shutdown: %w", ctx.Err())
	}
}

func (s *ReminderScheduler) run(ctx context.Context) {
	select {
	case <-s.ready:
	case <-s.stop:
		return
	case <-ctx.Done():
		return
	}

	s.logger.InfoContext(ctx, "reminder scheduler running",
		"tick", s.cfg.Tick.String(),
		"lookahead", s.cfg.Lookahead.String(),
	)

	ticker := s.clock.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.dispatchDue(ctx)
		}
	}
}

// dispatchDue claims every match due within the lookahead window and fans the
// reminders out. Claiming marks reminder_sent first, so a crash mid-dispatch
// loses reminders rather than duplicating them. Per-match failures are logged
// and never abort the loop.
func (s *ReminderScheduler) dispatchDue(ctx context.Context) {
	now := s.clock.Now().UTC()

	claimed, err := s.matchRepo.ClaimDueReminders(ctx, now, now.Add(s.cfg.Lookahead))
	if err != nil {
		s.logger.ErrorContext(ctx, "claim due reminders", "error", err)
		return
	}
	if len(claimed) == 0 {
		return
	}

	for _, item := range claimed {
		home, away, ok := s.resolveClubs(ctx, item)
		if !ok {
			continue
		}

		report, err := s.notifier.NotifyMatch(ctx, MatchReminder{
			MatchID:   item.ID,
			HomeClub:  home,
			AwayClub:  away,
			MatchTime: item.MatchTime,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "match reminder fan-out degraded",
				"error", err,
				"match_id", item.ID,
			)
		}

		s.logger.InfoContext(ctx, "match reminder dispatched",
			"match_id", item.ID,
			"attempted", report.Attempted,
			"delivered", report.Delivered,
			"blocked", report.Blocked,
			"failed", report.Failed,
		)
	}
}

func (s *ReminderScheduler) resolveClubs(ctx context.Context, item match.Match) (club.Club, club.Club, bool) {
	home, exists, err := s.clubRepo.GetByID(ctx, item.Team1ID)
	if err != nil || !exists {
		s.logger.WarnContext(ctx, "skipping reminder, home club unavailable",
			"error", err,
			"match_id", item.ID,
			"club_id", item.Team1ID,
		)
		return club.Club{}, club.Club{}, false
	}

	away, exists, err := s.clubRepo.GetByID(ctx, item.Team2ID)
	if err != nil || !exists {
		s.logger.WarnContext(ctx, "skipping reminder, away club unavailable",
			"error", err,
			"match_id", item.ID,
			"club_id", item.Team2ID,
		)
		return club.Club{}, club.Club{}, false
	}

	return home, away, true
}
