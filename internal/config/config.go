package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Config конфигурация сервиса
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        DatabaseConfig        `toml:"database"`
	Logs            LogsConfig            `toml:"logs"`
	Metrics         MetricsConfig         `toml:"metrics"`
	Rules           RulesConfig           `toml:"rules"`
	Commissions     CommissionsConfig     `toml:"commissions"`
	EvidenceStorage EvidenceStorageConfig `toml:"evidence_storage"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// RulesConfig настройки движка бизнес-правил
type RulesConfig struct {
	// CacheTTL время жизни закешированного набора правил бизнеса, в секундах
	CacheTTL int `toml:"cache_ttl"`
	// DefaultCancellationHours минимальный запас до начала записи для отмены,
	// если в правиле enableCancellation не задано значение
	DefaultCancellationHours int `toml:"default_cancellation_hours"`
}

// CommissionsConfig настройки расчета комиссий
type CommissionsConfig struct {
	DefaultRate    string `toml:"default_rate"`
	CurrencyPlaces int32  `toml:"currency_places"`
}

// DefaultRateDecimal возвращает ставку по умолчанию в процентах
func (c CommissionsConfig) DefaultRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(c.DefaultRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// EvidenceStorageConfig настройки хранилища фото-доказательств
type EvidenceStorageConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию,
// переопределения из окружения и валидирует результат
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "salonservice",
			Path:        "/metrics",
		},
		Rules: RulesConfig{
			CacheTTL:                 60,
			DefaultCancellationHours: 24,
		},
		Commissions: CommissionsConfig{
			DefaultRate:    "0",
			CurrencyPlaces: 2,
		},
		EvidenceStorage: EvidenceStorageConfig{
			Timeout: 10,
		},
	}
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if raw := os.Getenv("HTTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: HTTP_PORT=%q is not a number", ErrInvalidConfig, raw)
		}
		cfg.Server.HTTPPort = port
	}
	return nil
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535, got %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("%w: database.host, database.dbname and database.user are required", ErrInvalidConfig)
	}
	if c.Rules.CacheTTL < 0 {
		return fmt.Errorf("%w: rules.cache_ttl must not be negative", ErrInvalidConfig)
	}
	if c.Rules.DefaultCancellationHours < 0 {
		return fmt.Errorf("%w: rules.default_cancellation_hours must not be negative", ErrInvalidConfig)
	}

	rate, err := decimal.NewFromString(c.Commissions.DefaultRate)
	if err != nil {
		return fmt.Errorf("%w: commissions.default_rate %q is not a number", ErrInvalidConfig, c.Commissions.DefaultRate)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: commissions.default_rate must be within 0..100", ErrInvalidConfig)
	}
	if c.Commissions.CurrencyPlaces < 0 {
		return fmt.Errorf("%w: commissions.currency_places must not be negative", ErrInvalidConfig)
	}

	if c.EvidenceStorage.URL == "" {
		return fmt.Errorf("%w: evidence_storage.url is required", ErrInvalidConfig)
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("%w: metrics.path is required when metrics are enabled", ErrInvalidConfig)
	}

	return nil
}
