package app

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/sotfinder-backend/internal/http"
	httpH "github.com/yungbote/sotfinder-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sotfinder-backend/internal/http/middleware"
	"github.com/yungbote/sotfinder-backend/internal/jobs/scheduler"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Language   *httpH.LanguageHandler
	Search     *httpH.SearchHandler
	SavedLinks *httpH.SavedLinksHandler
}

func wireHandlers(log *logger.Logger, services Services, db *gorm.DB, rdb *goredis.Client, sched *scheduler.Scheduler) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if sched != nil {
		checks["scheduler"] = schedulerCheck(sched)
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(checks),
		Language:   httpH.NewLanguageHandler(log, services.Curriculum),
		Search:     httpH.NewSearchHandler(log, services.Search),
		SavedLinks: httpH.NewSavedLinksHandler(log, services.SavedLinks),
	}
}

func wireRouterConfig(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) http.RouterConfig {
	rc := http.RouterConfig{
		Log:               log,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		SearchRPS:         cfg.HTTP.SearchRPS,
		SearchBurst:       cfg.HTTP.SearchBurst,
		AdminAuth:         httpMW.NewAdminAuth(log, cfg.HTTP.AdminJWTSecret),
		LanguageHandler:   handlers.Language,
		SearchHandler:     handlers.Search,
		SavedLinksHandler: handlers.SavedLinks,
		HealthHandler:     handlers.Health,
	}
	if cfg.HTTP.MetricsEnabled {
		rc.Metrics = metrics
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.ServiceName
	}
	return rc
}

func schedulerCheck(sched *scheduler.Scheduler) httpH.Pinger {
	return func(ctx context.Context) error {
		if !sched.IsRunning() {
			return errors.New("scheduler not running")
		}
		return nil
	}
}
