package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server        ServerConfig   `toml:"server"`
	Database      DatabaseConfig `toml:"database"`
	Auth          AuthConfig     `toml:"auth"`
	AI            AIConfig       `toml:"ai"`
	Schedule      ScheduleConfig `toml:"schedule"`
	Notifications NotifyConfig   `toml:"notifications"`
	Calendar      CalendarConfig `toml:"calendar"`
	Log           LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr                  string   `toml:"addr" validate:"required"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds" validate:"gte=1,lte=300"`
	CORSOrigins           []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver" validate:"oneof=postgres sqlite"`
	// DSN is the Postgres connection string (Supabase pooler URL) or the
	// SQLite file path. An empty SQLite DSN resolves to the config dir.
	DSN string `toml:"dsn"`
}

type AuthConfig struct {
	SupabaseURL     string `toml:"supabase_url" validate:"omitempty,url"`
	SupabaseAnonKey string `toml:"supabase_anon_key"`
	// DevMode lets `serve` accept every caller as DevUserID when no Supabase
	// URL is set. Off by default: without it the API answers 401.
	DevMode bool `toml:"dev_mode"`
	// DevUserID is the identity of dev mode and of the local surfaces
	// (log, remind, mcp), which have no bearer token.
	DevUserID string `toml:"dev_user_id"`
}

type AIConfig struct {
	Provider    string  `toml:"provider" validate:"oneof=gemini openai claude-cli"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url" validate:"omitempty,url"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
}

type ScheduleConfig struct {
	IntervalMinutes int    `toml:"interval_minutes" validate:"gte=1"`
	WorkStart       string `toml:"work_start"`
	WorkEnd         string `toml:"work_end"`
	WorkDays        []int  `toml:"work_days" validate:"dive,gte=1,lte=7"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type CalendarConfig struct {
	Enabled bool   `toml:"enabled"`
	Source  string `toml:"source"` // ICS URL or file path
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:                  ":8080",
			RequestTimeoutSeconds: 15,
			CORSOrigins:           []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		AI: AIConfig{
			Provider:    "gemini",
			Temperature: 0.2,
		},
		Schedule: ScheduleConfig{
			IntervalMinutes: 60,
			WorkStart:       "09:00",
			WorkEnd:         "17:00",
			WorkDays:        []int{1, 2, 3, 4, 5},
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hourly"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path (the default location when empty),
// applies .env and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the work-hour formats.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, _, ok := ParseClock(cfg.Schedule.WorkStart); !ok {
		return fmt.Errorf("validation failed: schedule.work_start %q must be HH:MM", cfg.Schedule.WorkStart)
	}
	if _, _, ok := ParseClock(cfg.Schedule.WorkEnd); !ok {
		return fmt.Errorf("validation failed: schedule.work_end %q must be HH:MM", cfg.Schedule.WorkEnd)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOURLY_AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	switch cfg.AI.Provider {
	case "gemini":
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.Driver = "postgres"
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Auth.SupabaseURL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Auth.SupabaseAnonKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if strings.HasPrefix(v, ":") {
			cfg.Server.Addr = v
		} else {
			cfg.Server.Addr = ":" + v
		}
	}
	if v := os.Getenv("HOURLY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DefaultFile renders the config file written by `hourly config` on first use.
func DefaultFile() ([]byte, error) {
	cfg := DefaultConfig()
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}
