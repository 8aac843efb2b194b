package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lk-schedule/schedule-hub/config"
	"github.com/lk-schedule/schedule-hub/internal/application/command"
	"github.com/lk-schedule/schedule-hub/internal/application/query"
	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/external/lk"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/persistence/postgres"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/persistence/redis"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/persistence/sqlite"
	"github.com/lk-schedule/schedule-hub/internal/infrastructure/scheduler/jobs"
	"github.com/lk-schedule/schedule-hub/internal/interface/cli"
	"github.com/lk-schedule/schedule-hub/pkg/logger"
	"github.com/lk-schedule/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app holds the configured dependencies shared by all commands.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	location *time.Location
	repo     lesson.Repository

	closers []func()
}

// newApp loads configuration, opens the store (with the optional cache in
// front of it) and makes sure the schema exists.
func newApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg, logOut)

	location, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, location: location}

	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	if err := a.repo.EnsureSchema(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		a.log.Debug("connecting to postgres")
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = a.cfg.Store.DatabaseURL
		pgCfg.MaxConns = a.cfg.Store.PostgresMaxConns

		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		a.repo = postgres.NewLessonRepository(conn)

	default:
		a.log.Debug("opening sqlite database", "path", a.cfg.Store.SQLitePath)
		conn, err := sqlite.Open(ctx, sqlite.Config{
			Path:          a.cfg.Store.SQLitePath,
			BusyTimeoutMS: a.cfg.Store.SQLiteBusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		a.repo = sqlite.NewLessonRepository(conn)
	}

	if a.cfg.Redis.Enabled {
		a.attachCache(ctx)
	}

	return nil
}

// attachCache puts the redis query cache in front of the store.
// An unreachable redis only disables caching.
func (a *app) attachCache(ctx context.Context) {
	redisCfg := redis.DefaultConfig()
	redisCfg.Addr = a.cfg.Redis.Addr
	redisCfg.Password = a.cfg.Redis.Password
	redisCfg.DB = a.cfg.Redis.DB

	cache, err := redis.NewCache(ctx, redisCfg)
	if err != nil {
		a.log.Warn("failed to connect to redis, caching disabled", "error", err)
		return
	}

	a.closers = append(a.closers, func() { _ = cache.Close() })
	a.repo = redis.NewCachedRepository(a.repo, cache, redis.CachedRepositoryConfig{
		TTL:    a.cfg.Redis.TTL,
		Logger: a.log,
	})
	a.log.Debug("redis query cache enabled", "addr", redisCfg.Addr)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

func (a *app) loader() *command.LoadScheduleHandler {
	return command.NewLoadScheduleHandler(a.repo, command.LoadScheduleHandlerConfig{Logger: a.log})
}

// syncer builds the cabinet client. It fails without credentials.
func (a *app) syncer() (*command.SyncScheduleHandler, error) {
	if err := a.cfg.LK.RequireCredentials(); err != nil {
		return nil, err
	}

	clientCfg := lk.DefaultClientConfig(a.cfg.LK.BaseURL)
	clientCfg.Username = a.cfg.LK.Username
	clientCfg.Password = a.cfg.LK.Password
	if a.cfg.LK.UserAgent != "" {
		clientCfg.UserAgent = a.cfg.LK.UserAgent
	}
	clientCfg.Timeout = a.cfg.LK.Timeout
	clientCfg.MaxAttempts = a.cfg.LK.MaxAttempts
	clientCfg.Logger = a.log.With(logger.Component("lk"))

	client, err := lk.NewClient(clientCfg)
	if err != nil {
		return nil, err
	}

	return command.NewSyncScheduleHandler(client, a.loader()), nil
}

// window returns the configured fetch range, or the current semester.
func (a *app) window() jobs.WindowFunc {
	if start, end, ok, _ := a.cfg.LK.Range(); ok {
		return jobs.FixedWindow(start, end)
	}
	return timeutil.SemesterWindow
}

func (a *app) queries() cli.Queries {
	return cli.Queries{
		Day:     query.NewGetDayScheduleHandler(a.repo),
		Subject: query.NewGetSubjectLessonsHandler(a.repo),
		Teacher: query.NewGetTeacherLessonsHandler(a.repo, query.GetTeacherLessonsHandlerConfig{}),
	}
}

func (a *app) now() time.Time {
	return time.Now().In(a.location)
}
