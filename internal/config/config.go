package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinBcryptCost is the lowest accepted password hashing cost.
const MinBcryptCost = 8

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config contains server configuration parameters.
type Config struct {
	Port        string   `env:"PORT" envDefault:"5000"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the client IP is always the connection's remote address.
	TrustedProxies []string    `env:"TRUSTED_PROXIES" envSeparator:","`
	JWT            JWT         `envPrefix:"JWT_"`
	Auth           Auth        `envPrefix:"AUTH_"`
	Storage        Storage     `envPrefix:"STORAGE_"`
	Translation    Translation `envPrefix:"TRANSLATION_"`
	History        History     `envPrefix:"HISTORY_"`
}


// JWT contains session token parameters. There is deliberately no default secret.
type JWT struct {
	Secret string        `env:"SECRET,required,notEmpty"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

// Auth contains credential and throttling parameters.
type Auth struct {
	BcryptCost    int     `env:"BCRYPT_COST" envDefault:"10"`
	RatePerMinute float64 `env:"RATE_PER_MINUTE" envDefault:"20"`
	RateBurst     int     `env:"RATE_BURST" envDefault:"5"`
}

// Storage selects where users and history live.
type Storage struct {
	Backend         string `env:"BACKEND" envDefault:"sqlite"`
	Path            string `env:"PATH" envDefault:"./data/textify.db"`
	LegacyUsersFile string `env:"LEGACY_USERS_FILE"`
}

// Translation contains upstream and cache parameters.
type Translation struct {
	APIURL          string        `env:"API_URL" envDefault:"https://api.mymemory.translated.net/get"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"10s"`
	CacheSize       int           `env:"CACHE_SIZE" envDefault:"500"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// History contains ledger parameters.
type History struct {
	Cap int `env:"CAP" envDefault:"100"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.Auth.BcryptCost < MinBcryptCost {
		c.Auth.BcryptCost = MinBcryptCost
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.LegacyUsersFile != "" && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("legacy users import requires the %s backend, got %q", BackendSQLite, c.Storage.Backend)
	}
	if c.Translation.CacheSize <= 0 {
		return fmt.Errorf("translation cache size must be positive, got %d", c.Translation.CacheSize)
	}
	if c.History.Cap <= 0 {
		return fmt.Errorf("history cap must be positive, got %d", c.History.Cap)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %s", c.JWT.TTL)
	}
	if c.Auth.RatePerMinute <= 0 || c.Auth.RateBurst <= 0 {
		return fmt.Errorf("auth rate limit must be positive")
	}
	return nil
}
