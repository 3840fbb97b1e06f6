package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	rediscache "github.com/yungbote/sotfinder-backend/internal/clients/redis"
	"github.com/yungbote/sotfinder-backend/internal/data/db"
	"github.com/yungbote/sotfinder-backend/internal/http"
	"github.com/yungbote/sotfinder-backend/internal/jobs/scheduler"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Router    *gin.Engine
	Cfg       Config
	Clients   Clients
	Repos     Repos
	Services  Services
	Scheduler *scheduler.Scheduler
	Metrics   *observability.Metrics

	server       *http.Server
	dbService    *db.DatabaseService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	closed       bool
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg.logSummary(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:      cfg.Otel.Enabled,
		ServiceName:  cfg.Otel.ServiceName,
		Environment:  cfg.Otel.Environment,
		Version:      cfg.Otel.Version,
		Endpoint:     cfg.Otel.Endpoint,
		Headers:      cfg.Otel.Headers,
		Insecure:     cfg.Otel.Insecure,
		SampleRatio:  cfg.Otel.SampleRatio,
		StdoutPretty: cfg.Otel.StdoutPretty,
	})
	metrics := observability.NewMetrics()

	dbService, err := db.NewDatabaseService(db.Config{
		Driver:           cfg.Database.Driver,
		PostgresHost:     cfg.Database.Host,
		PostgresPort:     cfg.Database.Port,
		PostgresUser:     cfg.Database.User,
		PostgresPassword: cfg.Database.Password,
		PostgresName:     cfg.Database.Name,
		PostgresSSLMode:  cfg.Database.SSLMode,
		SQLitePath:       cfg.Database.SQLitePath,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbService.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, cfg, clients, reposet, metrics)

	sched := scheduler.New(log, cfg.Loader.TaskTimeout)
	if err := scheduler.RegisterCurriculumJobs(sched, serviceset.Loader, clients.Feed, scheduler.CurriculumJobsConfig{
		LoaderSpec:   cfg.Loader.Cron,
		FeedInterval: cfg.Feed.RefreshInterval,
	}); err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("register scheduled jobs: %w", err)
	}

	handlerset := wireHandlers(log, serviceset, theDB, clients.Redis, sched)
	server := http.NewServer(wireRouterConfig(log, cfg, handlerset, metrics))

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Scheduler:    sched,
		Metrics:      metrics,
		server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the scheduler, the startup sweep and the
// cross-instance invalidation forwarder.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Invalidation != nil {
		err := a.Clients.Invalidation.StartForwarder(ctx, func(m rediscache.InvalidationMessage) {
			a.Services.Store.EvictLocal(m.Language)
		})
		if err != nil {
			a.Log.Warn("invalidation forwarder not started", "error", err)
		}
	}

	a.Scheduler.Start()
	for _, t := range a.Scheduler.Tasks() {
		a.Log.Info("scheduled task", "task", t.Name, "spec", t.Spec, "next_run", t.NextRun)
	}
	if a.Cfg.Loader.RunOnStart {
		a.Scheduler.RunNow(scheduler.TaskCurriculumSweep, scheduler.SweepTask(a.Services.Loader))
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	return a.server.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil || a.closed {
		return
	}
	a.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
