// media-service/internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Поддерживаемые реализации хранилища.
const (
	StoreDriverGorm = "gorm"
	StoreDriverSQLX = "sqlx"
)

// Config содержит настройки процесса, собранные из окружения.
type Config struct {
	HTTPPort        string
	GRPCPort        string // пустая строка или "0" отключает gRPC
	DatabaseURL     string
	StoreDriver     string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// Default возвращает конфигурацию со значениями по умолчанию (без DatabaseURL).
func Default() Config {
	return Config{
		HTTPPort:          "5000",
		GRPCPort:          "9092",
		StoreDriver:       StoreDriverGorm,
		LogLevel:          slog.LevelInfo,
		LogFormat:         "json",
		ShutdownTimeout:   10 * time.Second,
		CORSOrigins:       []string{"*"},
		DBMaxOpenConns:    25,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 5 * time.Minute,
	}
}

// Load читает .env (если есть) и переменные окружения.
func Load() (Config, error) {
	// .env необязателен
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup собирает конфигурацию через произвольную функцию поиска переменных.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get("PORT"); ok {
		cfg.HTTPPort = v
	}
	if v, ok := lookup("GRPC_PORT"); ok {
		cfg.GRPCPort = strings.TrimSpace(v)
	}
	if v, ok := get("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := get("STORE_DRIVER"); ok {
		cfg.StoreDriver = strings.ToLower(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		} else {
			cfg.ShutdownTimeout = d
		}
	}
	if v, ok := get("CORS_ALLOWED_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}
	if v, ok := get("DB_MAX_OPEN_CONNS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err))
		} else {
			cfg.DBMaxOpenConns = n
		}
	}
	if v, ok := get("DB_MAX_IDLE_CONNS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err))
		} else {
			cfg.DBMaxIdleConns = n
		}
	}
	if v, ok := get("DB_CONN_MAX_LIFETIME"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err))
		} else {
			cfg.DBConnMaxLifetime = d
		}
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.StoreDriver != StoreDriverGorm && c.StoreDriver != StoreDriverSQLX {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverGorm, StoreDriverSQLX, c.StoreDriver))
	}
	if err := validPort(c.HTTPPort); err != nil {
		errs = append(errs, fmt.Errorf("PORT: %w", err))
	}
	if c.GRPCEnabled() {
		if err := validPort(c.GRPCPort); err != nil {
			errs = append(errs, fmt.Errorf("GRPC_PORT: %w", err))
		}
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 {
		errs = append(errs, errors.New("DB pool sizes must not be negative"))
	}
	return errors.Join(errs...)
}

// GRPCEnabled сообщает, нужно ли поднимать gRPC сервер.
func (c Config) GRPCEnabled() bool {
	return c.GRPCPort != "" && c.GRPCPort != "0"
}

// NewLogger создает slog.Logger по настройкам формата и уровня.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// RedactedDatabaseURL возвращает строку подключения без пароля, для логов.
func (c Config) RedactedDatabaseURL() string {
	at := strings.LastIndex(c.DatabaseURL, "@")
	scheme := strings.Index(c.DatabaseURL, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return c.DatabaseURL
	}
	userinfo := c.DatabaseURL[scheme+3 : at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return c.DatabaseURL
	}
	return c.DatabaseURL[:scheme+3] + userinfo[:colon] + ":********" + c.DatabaseURL[at:]
}

func validPort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil {
		return fmt.Errorf("invalid port %q", p)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port %d out of range", n)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
