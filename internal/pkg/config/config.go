package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=720h"`

	// SessionSettleDelay is how long the session listener waits after a
	// sign-in or token refresh before fetching profile and role.
	SessionSettleDelay time.Duration `env:"SESSION_SETTLE_DELAY, default=500ms"`

	Mongo     MongoConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Functions FunctionsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=umkm_dashboard"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type NATSConfig struct {
	URL     string `env:"NATS_URL,          default=nats://localhost:4222"`
	Subject string `env:"NATS_AUTH_SUBJECT, default=umkm.auth.events"`
}

type FunctionsConfig struct {
	BaseURL string        `env:"FUNCTIONS_BASE_URL, default=http://localhost:9000/functions"`
	Timeout time.Duration `env:"FUNCTIONS_TIMEOUT,  default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
