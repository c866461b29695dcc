// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                 string        // e.g. "8080"
	BackofficePort       string        // e.g. "8081"
	Env                  string        // "development" | "production"
	ReadTimeout          time.Duration // default 10s
	WriteTimeout         time.Duration // default 30s
	BackofficeAllowedIPs string        // comma-separated IPs; "" = allow all
	RateLimitPerMinute   int           // public API requests per IP per minute
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
	MigrateOnBoot   bool          // apply embedded migrations at startup
}

// RedisConfig holds the settlement cache connection.
type RedisConfig struct {
	Enabled  bool
	Addr     string // host:port
	Password string
	DB       int
}

// AuthConfig holds operator login and JWT signing settings.
type AuthConfig struct {
	AccessSecret         string        // must be set
	RefreshSecret        string        // must be set
	AccessTTL            time.Duration // default 15m
	RefreshTTL           time.Duration // default 24h
	OperatorUsername     string
	OperatorPasswordHash string // bcrypt hash
}

// SettlementConfig holds balance computation settings.
type SettlementConfig struct {
	RoundingPolicy string        // "floor-difference" | "floor-operands"
	CacheTTL       time.Duration // default 5m
	MaxParallel    int           // championships settled concurrently, default 4
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string // default "/metrics"
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level string // logrus level name, default "info"
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Settlement SettlementConfig
	Metrics    MetricsConfig
	Log        LogConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// AllowedIPs splits BackofficeAllowedIPs into trimmed entries.
func (c *Config) AllowedIPs() []string {
	var out []string
	for _, ip := range strings.Split(c.Server.BackofficeAllowedIPs, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

// Validate checks that all required configuration values are present and valid.
// Every problem found is returned, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be set"))
	}
	if c.Auth.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must be set"))
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Auth.OperatorUsername == "" || c.Auth.OperatorPasswordHash == "" {
		errs = append(errs, errors.New("OPERATOR_USERNAME and OPERATOR_PASSWORD_HASH must be set"))
	}

	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}

	switch c.Settlement.RoundingPolicy {
	case "floor-difference", "floor-operands":
	default:
		errs = append(errs, fmt.Errorf(
			"SETTLEMENT_ROUNDING_POLICY must be floor-difference or floor-operands, got %q",
			c.Settlement.RoundingPolicy,
		))
	}
	if c.Settlement.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_MAX_PARALLEL must be >= 1, got %d", c.Settlement.MaxParallel))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR must be set when REDIS_ENABLED=true"))
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0, got %d", c.Server.RateLimitPerMinute))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails; call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = Load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Loader
// ──────────────────────────────────────────────────────────────────────────────

// Load reads an optional .env file, then the environment. It does not validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("config: .env present but unreadable")
	}

	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	rate, err := getInt("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}
	cfg.Server = ServerConfig{
		Port:                 getEnv("SERVER_PORT", "8080"),
		BackofficePort:       getEnv("BACKOFFICE_PORT", "8081"),
		Env:                  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:          getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:         getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		BackofficeAllowedIPs: getEnv("BACKOFFICE_ALLOWED_IPS", ""),
		RateLimitPerMinute:   rate,
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "corrida"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}
	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		MigrateOnBoot:   getBool("DB_MIGRATE_ON_BOOT", true),
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	cfg.Redis = RedisConfig{
		Enabled:  getBool("REDIS_ENABLED", false),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	cfg.Auth = AuthConfig{
		AccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		RefreshSecret:        getEnv("JWT_REFRESH_SECRET", ""),
		AccessTTL:            getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:           getDuration("JWT_REFRESH_TTL", 24*time.Hour),
		OperatorUsername:     getEnv("OPERATOR_USERNAME", ""),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
	}

	// ── Settlement ────────────────────────────────────────────────────────────
	parallel, err := getInt("SETTLEMENT_MAX_PARALLEL", 4)
	if err != nil {
		return nil, fmt.Errorf("SETTLEMENT_MAX_PARALLEL: %w", err)
	}
	cfg.Settlement = SettlementConfig{
		RoundingPolicy: strings.ToLower(getEnv("SETTLEMENT_ROUNDING_POLICY", "floor-difference")),
		CacheTTL:       getDuration("SETTLEMENT_CACHE_TTL", 5*time.Minute),
		MaxParallel:    parallel,
	}

	// ── Metrics / logging ─────────────────────────────────────────────────────
	cfg.Metrics = MetricsConfig{
		Enabled: getBool("METRICS_ENABLED", true),
		Path:    getEnv("METRICS_PATH", "/metrics"),
	}
	cfg.Log = LogConfig{Level: getEnv("LOG_LEVEL", "info")}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.WithField("key", key).Warnf("config: invalid bool %q, using default", v)
		return defaultVal
	}
	return b
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or unparsable.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithField("key", key).Warnf("config: invalid duration %q, using default", v)
		return defaultVal
	}
	return d
}
