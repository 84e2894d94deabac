package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/footylabs/clubledger/external/chatapi"
	"github.com/footylabs/clubledger/internal/config"
	"github.com/footylabs/clubledger/internal/infrastructure/repository/postgres"
	"github.com/footylabs/clubledger/internal/platform/logging"
	"github.com/footylabs/clubledger/internal/platform/resilience"
	"github.com/footylabs/clubledger/internal/usecase"
)

// App wires the durable store, the chat client, and the reminder loop into a
// single runnable unit. Run blocks until ctx is cancelled; Close releases the
// remaining resources after Run returns.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	db        *sqlx.DB
	chat      *chatapi.Client
	scheduler *usecase.ReminderScheduler
	ready     chan struct{}

	Clubs   *usecase.ClubService
	Players *usecase.PlayerService
	Ledger  *usecase.LedgerService
	Matches *usecase.MatchService
	Admin   *usecase.AdminService
}

func New(cfg config.Config, logger *logging.Logger, slogger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if slogger == nil {
		slogger = slog.Default()
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(cfg.ServiceName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	clubRepo := postgres.NewClubRepository(db)
	playerRepo := postgres.NewPlayerRepository(db)
	transferRepo := postgres.NewTransferRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	adminRepo := postgres.NewAdminRepository(db)

	chat := chatapi.NewClient(chatapi.Config{
		BaseURL:          cfg.ChatBaseURL,
		Token:            cfg.ChatToken,
		Timeout:          cfg.ChatTimeout,
		ConnectTimeout:   cfg.ChatConnectTimeout,
		MaxRetries:       cfg.ChatMaxRetries,
		BackoffBase:      cfg.ChatBackoffBase,
		BootstrapRetries: cfg.ChatBootstrapRetries,
		Logger:           logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ChatCircuitEnabled,
			FailureThreshold: cfg.ChatCircuitFailureCount,
			OpenTimeout:      cfg.ChatCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ChatCircuitHalfOpenMaxReq,
		},
	})

	notifier := usecase.NewNotifier(chat, cfg.FanoutWorkers, logger)
	ready := make(chan struct{})
	scheduler := usecase.NewReminderScheduler(
		matchRepo,
		clubRepo,
		notifier,
		usecase.ReminderSchedulerConfig{
			Tick:      cfg.ReminderTick,
			Lookahead: cfg.ReminderLookahead,
		},
		ready,
		nil,
		logger,
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		chat:      chat,
		scheduler: scheduler,
		ready:     ready,
		Clubs:     usecase.NewClubService(clubRepo, slogger),
		Players:   usecase.NewPlayerService(playerRepo, clubRepo, slogger),
		Ledger:    usecase.NewLedgerService(transferRepo, transferRepo, slogger),
		Matches:   usecase.NewMatchService(matchRepo, clubRepo, slogger),
		Admin:     usecase.NewAdminService(adminRepo, slogger),
	}, nil
}

// Run bootstraps the chat session and keeps the reminder loop alive until ctx
// is cancelled. A failed bootstrap is fatal: the caller should exit non-zero.
func (a *App) Run(ctx context.Context) error {
	if err := a.chat.Connect(ctx); err != nil {
		return fmt.Errorf("chat session bootstrap: %w", err)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	close(a.ready)

	a.logger.InfoContext(ctx, "clubledger bot running",
		"env", a.cfg.AppEnv,
		"reminder_tick", a.cfg.ReminderTick.String(),
		"reminder_lookahead", a.cfg.ReminderLookahead.String(),
	)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return a.scheduler.Stop(stopCtx)
}

func (a *App) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
