package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sotfinder-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sotfinder-backend/internal/http/middleware"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	ServiceName    string
	AllowedOrigins []string

	// zero disables search rate limiting
	SearchRPS   float64
	SearchBurst int

	AdminAuth *httpMW.AdminAuth

	LanguageHandler   *httpH.LanguageHandler
	SearchHandler     *httpH.SearchHandler
	SavedLinksHandler *httpH.SavedLinksHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Languages
	if cfg.LanguageHandler != nil {
		api.GET("/languages", cfg.LanguageHandler.ListLanguages)
		api.GET("/language/:slug", cfg.LanguageHandler.GetLanguage)
		api.GET("/language/:slug/sources", cfg.LanguageHandler.GetSources)
		api.GET("/language/:slug/curriculum", cfg.LanguageHandler.GetCurriculum)
		api.GET("/language/:slug/sources/:sourceId/breakdown", cfg.LanguageHandler.GetSourceBreakdown)

		admin := api.Group("/")
		if cfg.AdminAuth.Enabled() {
			admin.Use(cfg.AdminAuth.RequireAdmin())
		} else {
			log.Warn("admin auth disabled; refresh endpoint is open")
		}
		admin.POST("/language/:slug/refresh", cfg.LanguageHandler.Refresh)
	}

	// Search
	if cfg.SearchHandler != nil {
		search := []gin.HandlerFunc{}
		if cfg.SearchRPS > 0 {
			search = append(search, httpMW.RateLimit(cfg.SearchRPS, cfg.SearchBurst))
		}
		search = append(search, cfg.SearchHandler.Search)
		api.GET("/search", search...)
	}

	// Saved links
	if cfg.SavedLinksHandler != nil {
		api.POST("/saved", cfg.SavedLinksHandler.Save)
		api.GET("/saved", cfg.SavedLinksHandler.List)
	}

	return r
}
