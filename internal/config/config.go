package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ittycoon/internal/game"
)

type SimConfig struct {
	Rules       game.Rules
	Store       StoreConfig
	CatalogPath string
	LogLevel    string
	LogFormat   string
}

type StoreConfig struct {
	Driver        string
	SQLitePath    string
	DatabaseURL   string
	RedisURL      string
	SaveDir       string
	Key           string
	VersionPolicy string
}

type APIConfig struct {
	Addr           string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	Sim            SimConfig
}

type CLIConfig struct {
	APIBaseURL string
	Sim        SimConfig
}

// loadDotEnv is best effort; a missing .env is the normal case.
func loadDotEnv() {
	_ = godotenv.Load()
}

func LoadSimFromEnv() (SimConfig, error) {
	loadDotEnv()
	defaults := game.DefaultRules()
	home, _ := os.UserHomeDir()
	dataDir := envDefault("TYCOON_DATA_DIR", filepath.Join(home, ".ittycoon"))

	cfg := SimConfig{
		Rules: game.Rules{
			TickEvery:           envDurationDefault("TYCOON_TICK_EVERY", defaults.TickEvery),
			MinutesPerTick:      envIntDefault("TYCOON_MINUTES_PER_TICK", defaults.MinutesPerTick),
			HealthDecayPerTick:  envFloatDefault("TYCOON_HEALTH_DECAY", defaults.HealthDecayPerTick),
			MoodDecayPerTick:    envFloatDefault("TYCOON_MOOD_DECAY", defaults.MoodDecayPerTick),
			StaminaRegenPerTick: envFloatDefault("TYCOON_STAMINA_REGEN", defaults.StaminaRegenPerTick),
			CreditWarningDays:   envIntDefault("TYCOON_CREDIT_WARNING_DAYS", defaults.CreditWarningDays),
			CheatMoney:          envFloatDefault("TYCOON_CHEAT_MONEY", defaults.CheatMoney),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(envDefault("TYCOON_STORE", "sqlite")),
			SQLitePath:    envDefault("TYCOON_SQLITE_PATH", filepath.Join(dataDir, "save.db")),
			DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
			RedisURL:      strings.TrimSpace(os.Getenv("REDIS_URL")),
			SaveDir:       envDefault("TYCOON_SAVE_DIR", dataDir),
			Key:           envDefault("TYCOON_SAVE_KEY", "it-tycoon-save"),
			VersionPolicy: strings.ToLower(envDefault("TYCOON_VERSION_POLICY", "discard")),
		},
		CatalogPath: strings.TrimSpace(os.Getenv("TYCOON_CATALOG")),
		LogLevel:    strings.ToLower(envDefault("TYCOON_LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(envDefault("TYCOON_LOG_FORMAT", "json")),
	}
	return cfg, cfg.validate()
}

func (c SimConfig) validate() error {
	if c.Rules.TickEvery <= 0 {
		return fmt.Errorf("TYCOON_TICK_EVERY must be > 0")
	}
	if c.Rules.MinutesPerTick <= 0 {
		return fmt.Errorf("TYCOON_MINUTES_PER_TICK must be > 0")
	}
	switch c.Store.Driver {
	case "sqlite", "file", "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown TYCOON_STORE %q", c.Store.Driver)
	}
	switch c.Store.VersionPolicy {
	case "discard", "reconcile":
	default:
		return fmt.Errorf("TYCOON_VERSION_POLICY must be discard or reconcile")
	}
	return nil
}

func LoadAPIFromEnv() (APIConfig, error) {
	sim, err := LoadSimFromEnv()
	if err != nil {
		return APIConfig{}, err
	}
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("TYCOON_API_ADDR", ":8080")
	}
	return APIConfig{
		Addr:           addr,
		CORSOrigins:    envListDefault("TYCOON_CORS_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:   envFloatDefault("TYCOON_RATE_LIMIT_RPS", 20),
		RateLimitBurst: envIntDefault("TYCOON_RATE_LIMIT_BURST", 40),
		Sim:            sim,
	}, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	sim, err := LoadSimFromEnv()
	if err != nil {
		return CLIConfig{}, err
	}
	return CLIConfig{
		APIBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("TYCOON_API_BASE_URL")), "/"),
		Sim:        sim,
	}, nil
}

// Logger builds the process logger from TYCOON_LOG_LEVEL and TYCOON_LOG_FORMAT.
func (c SimConfig) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envListDefault(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
