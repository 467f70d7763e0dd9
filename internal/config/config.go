package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string        `env:"SERVER_PORT" envDefault:"8080"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"1"`

	JWTSecret    string   `env:"JWT_SECRET"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitRPM int      `env:"RATE_LIMIT_RPM" envDefault:"120"`

	ObjectStoreDriver    string `env:"OBJECT_STORE_DRIVER" envDefault:"local"`
	ObjectStoreRoot      string `env:"OBJECT_STORE_ROOT" envDefault:"./data/objects"`
	ObjectStorePublicURL string `env:"OBJECT_STORE_PUBLIC_URL" envDefault:"http://localhost:8080/files"`
	GCSCredentialsFile   string `env:"GCS_CREDENTIALS_FILE"`
	MaxUploadSize        int64  `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`

	LifecycleStepTimeout time.Duration `env:"LIFECYCLE_STEP_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"pretty"`

	OTelEndpoint    string `env:"OTEL_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"parish-admin"`
}

// Load reads .env (when present) and the process environment. Only the settings shared by the
// server and the operator CLI are validated here; see ValidateServer.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.ObjectStoreDriver = strings.ToLower(strings.TrimSpace(cfg.ObjectStoreDriver))
	cfg.ObjectStorePublicURL = strings.TrimRight(strings.TrimSpace(cfg.ObjectStorePublicURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}

	switch c.ObjectStoreDriver {
	case "local":
		if strings.TrimSpace(c.ObjectStoreRoot) == "" {
			return fmt.Errorf("OBJECT_STORE_ROOT cannot be empty for the local driver")
		}
		if c.ObjectStorePublicURL == "" {
			return fmt.Errorf("OBJECT_STORE_PUBLIC_URL cannot be empty for the local driver")
		}
	case "gcs":
	default:
		return fmt.Errorf("OBJECT_STORE_DRIVER must be local or gcs, got %q", c.ObjectStoreDriver)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.LifecycleStepTimeout <= 0 {
		return fmt.Errorf("LIFECYCLE_STEP_TIMEOUT must be positive")
	}

	return nil
}

// ValidateServer adds the checks that only matter when serving HTTP.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}
