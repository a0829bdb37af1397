package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	CredentialBackendFile  = "file"
	CredentialBackendRedis = "redis"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend    BackendConfig
	Credential CredentialConfig
	Redis      RedisConfig
	DevServer  DevServerConfig
}

// BackendConfig locates the ERP API the console talks to.
type BackendConfig struct {
	BaseURL string `env:"ERP_BASE_URL,     default=http://127.0.0.1:8000"`
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration `env:"ERP_HTTP_TIMEOUT, default=0s"`
}

type CredentialConfig struct {
	Backend string `env:"CREDENTIAL_BACKEND, default=file"`
	Key     string `env:"CREDENTIAL_KEY,     default=token"`
	// Path is the credential file; empty selects the per-user config dir.
	Path string `env:"CREDENTIAL_PATH"`
}

type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB,         default=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=erpconsole:"`
}

type DevServerConfig struct {
	Addr         string        `env:"DEVSERVER_ADDR,          default=:8000"`
	JWTSecret    string        `env:"DEVSERVER_JWT_SECRET,    default=dev-secret-change-me"`
	TokenTTL     time.Duration `env:"DEVSERVER_TOKEN_TTL,     default=24h"`
	SeedPassword string        `env:"DEVSERVER_SEED_PASSWORD, default=changeme123"`
	MongoURI     string        `env:"DEVSERVER_MONGO_URI"`
	MongoDB      string        `env:"DEVSERVER_MONGO_DB,      default=erp_devserver"`
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Credential.Backend {
	case CredentialBackendFile, CredentialBackendRedis:
	default:
		return fmt.Errorf("config: CREDENTIAL_BACKEND must be %q or %q, got %q",
			CredentialBackendFile, CredentialBackendRedis, c.Credential.Backend)
	}
	if c.Credential.Key == "" {
		return fmt.Errorf("config: CREDENTIAL_KEY must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("config: ERP_HTTP_TIMEOUT must not be negative")
	}
	return nil
}
