package config

import (
	"fmt"
	"time"

	"club-app-go/pkg/logger"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	Env         string   `env:"ENV" envDefault:"development"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	DB          DBConfig
	Auth        AuthConfig
	Dues        DuesConfig
	Access      AccessConfig
	Messaging   MessagingConfig
	Telemetry   TelemetryConfig
	Gateway     GatewayConfig
}

type DBConfig struct {
	DSN             string        `env:"DB_DSN"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"club_app"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	TimeZone        string        `env:"DB_TIMEZONE" envDefault:"UTC"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	// Statements slower than this are logged as warnings; 0 disables.
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
	LogQueries         bool          `env:"DB_LOG_QUERIES" envDefault:"false"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"2h"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"club-app"`
	// Login attempts per second per client, shared burst.
	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND" envDefault:"1"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

type DuesConfig struct {
	BaseAmount       float64       `env:"DUES_BASE_AMOUNT" envDefault:"15000"`
	DueDay           int           `env:"DUES_DUE_DAY" envDefault:"5"`
	Currency         string        `env:"DUES_CURRENCY" envDefault:"ARS"`
	StandingCacheTTL time.Duration `env:"STANDING_CACHE_TTL" envDefault:"1m"`
}

type AccessConfig struct {
	RatePerSecond  float64       `env:"ACCESS_RATE_PER_SECOND" envDefault:"5"`
	RateBurst      int           `env:"ACCESS_RATE_BURST" envDefault:"10"`
	EventLookahead time.Duration `env:"ACCESS_EVENT_LOOKAHEAD" envDefault:"168h"`
}

type MessagingConfig struct {
	AMQPURL  string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"club.events"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"club-app"`
}

type GatewayConfig struct {
	// Payment methods the simulated gateway always declines, e.g. "declined_card".
	FailMethods []string `env:"GATEWAY_FAIL_METHODS" envSeparator:"," envDefault:"declined_card"`
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if c.Env != "development" && c.Env != "test" {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
	}
	if c.Dues.DueDay < 1 || c.Dues.DueDay > 28 {
		return fmt.Errorf("DUES_DUE_DAY must be between 1 and 28, got %d", c.Dues.DueDay)
	}
	if c.Dues.BaseAmount <= 0 {
		return fmt.Errorf("DUES_BASE_AMOUNT must be positive")
	}
	return nil
}

// SigningKey falls back to a fixed development key when JWT_SECRET is unset.
func (c AuthConfig) SigningKey() []byte {
	if c.JWTSecret == "" {
		return []byte("development-only-secret")
	}
	return []byte(c.JWTSecret)
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
