package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	SaccoAPI SaccoAPIConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Audit    AuditConfig
}

type SessionConfig struct {
	// Secret signs the gateway session token and derives the key that seals
	// the password retained between the two sign-in steps.
	Secret        string        `env:"SESSION_SECRET, required"`
	TTL           time.Duration `env:"SESSION_TTL,     default=12h"`
	OTPWindow     time.Duration `env:"OTP_WINDOW,      default=10m"`
	SubmitLockTTL time.Duration `env:"SUBMIT_LOCK_TTL, default=30s"`
	DraftTTL      time.Duration `env:"DRAFT_TTL,       default=30m"`
	SignInPath    string        `env:"SIGN_IN_PATH,    default=/"`
}

type SaccoAPIConfig struct {
	BaseURL    string        `env:"SACCO_API_BASE_URL,    required"`
	Timeout    time.Duration `env:"SACCO_API_TIMEOUT,     default=20s"`
	AuthScheme string        `env:"SACCO_API_AUTH_SCHEME, default=Bearer"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sacco_backoffice"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with developer conveniences
// such as console logging.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least 32 characters")
	}
	return &cfg, nil
}
