package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogMode         string        `env:"LOG_MODE" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Database DatabaseConfig
	OpenAI   OpenAIConfig
	Feed     FeedConfig
	Loader   LoaderConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Otel     OtelConfig
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port       string `env:"POSTGRES_PORT" envDefault:"5432"`
	User       string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password   string `env:"POSTGRES_PASSWORD"`
	Name       string `env:"POSTGRES_NAME" envDefault:"sotfinder"`
	SSLMode    string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"sotfinder.db"`
}

type OpenAIConfig struct {
	APIKey          string        `env:"OPENAI_API_KEY"`
	BaseURL         string        `env:"OPENAI_BASE_URL"`
	Model           string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	TimeoutSeconds  int           `env:"OPENAI_TIMEOUT_SECONDS" envDefault:"180"`
	MaxRetries      int           `env:"OPENAI_MAX_RETRIES" envDefault:"2"`
	RPS             float64       `env:"OPENAI_RPS" envDefault:"2"`
	Burst           int           `env:"OPENAI_BURST" envDefault:"2"`
	BreakerFailures uint32        `env:"OPENAI_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"OPENAI_BREAKER_COOLDOWN" envDefault:"30s"`
}

type FeedConfig struct {
	URL             string        `env:"CURRICULUM_DATA_URL"`
	File            string        `env:"CURRICULUM_DATA_FILE"`
	RefreshInterval time.Duration `env:"FEED_REFRESH_INTERVAL" envDefault:"1h"`
	Timeout         time.Duration `env:"FEED_TIMEOUT" envDefault:"30s"`
}

type LoaderConfig struct {
	Cron                    string        `env:"LOADER_CRON" envDefault:"0 0 3 * * *"`
	RunOnStart              bool          `env:"LOADER_RUN_ON_START" envDefault:"true"`
	TaskTimeout             time.Duration `env:"LOADER_TASK_TIMEOUT" envDefault:"30m"`
	RefreshTimeout          time.Duration `env:"REFRESH_TIMEOUT" envDefault:"10m"`
	EnrichLearningResources bool          `env:"ENRICH_LEARNING_RESOURCES" envDefault:"false"`
	GenerationTimeout       time.Duration `env:"GENERATION_TIMEOUT" envDefault:"5m"`
}

type RedisConfig struct {
	Addr                string        `env:"REDIS_ADDR"`
	Password            string        `env:"REDIS_PASSWORD"`
	DB                  int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL            time.Duration `env:"REDIS_CACHE_TTL" envDefault:"24h"`
	InvalidationChannel string        `env:"REDIS_INVALIDATION_CHANNEL" envDefault:"sotfinder:curriculum:invalidate"`
}

type HTTPConfig struct {
	AdminJWTSecret string   `env:"ADMIN_JWT_SECRET"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	SearchRPS      float64  `env:"SEARCH_RPS" envDefault:"1"`
	SearchBurst    int      `env:"SEARCH_BURST" envDefault:"5"`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"true"`
}

type OtelConfig struct {
	Enabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"sotfinder-backend"`
	Environment  string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	Version      string  `env:"OTEL_SERVICE_VERSION"`
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers      string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio  float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
	StdoutPretty bool    `env:"OTEL_STDOUT_PRETTY" envDefault:"false"`
}

// LoadConfig reads an optional .env file (ENV_FILE, default ".env") and then
// parses the environment.
func LoadConfig() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) logSummary(log *logger.Logger) {
	log.Info("configuration loaded",
		"port", c.Port,
		"db_driver", c.Database.Driver,
		"openai_model", c.OpenAI.Model,
		"feed_url", c.Feed.URL,
		"feed_file", c.Feed.File,
		"loader_cron", c.Loader.Cron,
		"redis", c.Redis.Addr != "",
		"admin_auth", c.HTTP.AdminJWTSecret != "",
		"otel", c.Otel.Enabled,
	)
}
