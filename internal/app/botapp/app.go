package botapp

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kolotovalexander/znakomstva-shahter/internal/config"
	tginfra "github.com/kolotovalexander/znakomstva-shahter/internal/infra/telegram"
	pgrepo "github.com/kolotovalexander/znakomstva-shahter/internal/repo/postgres"
	redrepo "github.com/kolotovalexander/znakomstva-shahter/internal/repo/redis"
	feedsvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/feed"
	matchingsvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/matching"
	profilessvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/profiles"
	ratesvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/rate"
)

type App struct {
	cfg    config.Config
	logger *zap.Logger

	postgres *pgxpool.Pool
	redis    *goredis.Client
	tg       *tginfra.Client

	sessions   *sessionStore
	router     *router
	dispatcher *dispatcher
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	store := pgrepo.NewStore(pool)
	limiter := ratesvc.NewLimiter(
		redrepo.NewRateRepo(redisClient),
		cfg.Limits.LikesPerMinute,
		cfg.Limits.LikesPer10Sec,
	)

	profileService := profilessvc.NewService(store)
	matchingService := matchingsvc.NewService(matchingsvc.Dependencies{
		Store:       store,
		RateLimiter: limiter,
	})
	feedService := feedsvc.NewService(store)

	app := &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		redis:    redisClient,
		sessions: newSessionStore(),
	}

	app.router = newRouter(
		logger,
		nil,
		profileService,
		matchingService,
		feedService,
		app.sessions,
		cfg.Bot.AdminIDs,
		cfg.Bot.SupportURL,
	)
	app.dispatcher = newDispatcher(logger, cfg.Bot.QueueSize, cfg.Bot.SessionIdleTTL, app.router.handleUpdate)

	app.tg, err = tginfra.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeoutSeconds, logger, app.enqueueUpdate)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	app.router.sender = app.tg

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	go a.runSessionReaper(ctx)

	err := a.tg.Start(ctx)

	a.dispatcher.Wait()
	a.logger.Info("bot app stopped")
	return err
}

func (a *App) enqueueUpdate(ctx context.Context, update tgbotapi.Update) {
	userID := updateUserID(update)
	if userID <= 0 {
		return
	}
	a.dispatcher.Dispatch(ctx, userID, update)
}

func (a *App) runSessionReaper(ctx context.Context) {
	ttl := a.cfg.Bot.SessionIdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.sessions.reap(ttl); removed > 0 {
				a.logger.Debug("reaped idle sessions", zap.Int("count", removed))
			}
		}
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
}

func updateUserID(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}
