package config

import (
	"os"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Market   MarketConfig
	Notify   NotifyConfig
	Monitor  MonitorConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the run-lock redis configuration. An empty Addr
// disables the cross-process run guard.
type RedisConfig struct {
	Addr     string
	Password string
}

// KafkaConfig holds the audit-event stream configuration. Empty
// brokers disable audit publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MarketConfig holds the upstream fund listing source configuration
type MarketConfig struct {
	BaseURL string
}

// NotifyConfig holds the push-notification provider configuration
type NotifyConfig struct {
	BaseURL string
	Token   string
}

// MonitorConfig holds the monitoring pipeline configuration.
// SchedulerEnabled is an explicit deployment flag: a web-only instance
// serves the manual trigger without running the interval scheduler.
type MonitorConfig struct {
	SchedulerEnabled bool
	Interval         string
	HoldingFundIDs   []string
	HolidayFile      string
	MigrationsPath   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fundmonitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "fund-notifications"),
		},
		Market: MarketConfig{
			BaseURL: getEnv("MARKET_BASE_URL", "https://www.jisilu.cn"),
		},
		Notify: NotifyConfig{
			BaseURL: getEnv("PUSHPLUS_BASE_URL", "https://www.pushplus.plus"),
			Token:   getEnv("PUSHPLUS_TOKEN", ""),
		},
		Monitor: MonitorConfig{
			SchedulerEnabled: getEnv("SCHEDULER_ENABLED", "true") == "true",
			Interval:         getEnv("MONITOR_INTERVAL", "@every 7m"),
			HoldingFundIDs:   splitNonEmpty(getEnv("HOLDING_FUND_IDS", "")),
			HolidayFile:      getEnv("HOLIDAY_FILE", "configs/holidays.yaml"),
			MigrationsPath:   getEnv("MIGRATIONS_PATH", "db/migrations"),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// HoldingSet returns the holding fund ids as a lookup set.
func (m *MonitorConfig) HoldingSet() map[string]bool {
	set := make(map[string]bool, len(m.HoldingFundIDs))
	for _, id := range m.HoldingFundIDs {
		set[id] = true
	}
	return set
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
