package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// DefaultHighRiskRegions are the states where cash-on-delivery orders are most
// often refused at the door.
var DefaultHighRiskRegions = []string{
	"Bihar",
	"Jharkhand",
	"Uttar Pradesh",
	"West Bengal",
	"Odisha",
	"Assam",
}

// Aggregation modes
const (
	AggregationSync  = "sync"
	AggregationAsync = "async"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Risk        RiskConfig
	Aggregation AggregationConfig
	Log         LogConfig
	Env         string
	Timezone    string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RabbitMQConfig holds RabbitMQ configuration
type RabbitMQConfig struct {
	Host      string
	Port      string
	User      string
	Password  string
	QueueName string
}

// RedisConfig holds Redis configuration. An empty Host disables caching.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// AuthConfig holds basic-auth credentials for staff and read-only viewers
type AuthConfig struct {
	AdminUsername  string
	AdminPassword  string
	ViewerUsername string
	ViewerPassword string
}

// RiskConfig holds risk classification settings
type RiskConfig struct {
	HighRiskRegions []string
}

// AggregationConfig controls where customer recomputation runs
type AggregationConfig struct {
	Mode string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
			Host:         v.GetString("POSTGRES_HOST"),
			Port:         v.GetString("POSTGRES_PORT"),
			User:         v.GetString("POSTGRES_USER"),
			Password:     v.GetString("POSTGRES_PASSWORD"),
			DBName:       v.GetString("POSTGRES_DB"),
			SSLMode:      v.GetString("POSTGRES_SSLMODE"),
			MaxOpenConns: v.GetInt("POSTGRES_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("POSTGRES_MAX_IDLE_CONNS"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:      v.GetString("RABBITMQ_HOST"),
			Port:      v.GetString("RABBITMQ_PORT"),
			User:      v.GetString("RABBITMQ_DEFAULT_USER"),
			Password:  v.GetString("RABBITMQ_DEFAULT_PASS"),
			QueueName: v.GetString("RABBITMQ_QUEUE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		Auth: AuthConfig{
			AdminUsername:  v.GetString("BASIC_AUTH_USERNAME"),
			AdminPassword:  v.GetString("BASIC_AUTH_PASSWORD"),
			ViewerUsername: v.GetString("VIEWER_USERNAME"),
			ViewerPassword: v.GetString("VIEWER_PASSWORD"),
		},
		Risk: RiskConfig{
			HighRiskRegions: parseList(v.GetString("HIGH_RISK_REGIONS"), DefaultHighRiskRegions),
		},
		Aggregation: AggregationConfig{
			Mode: strings.ToLower(v.GetString("AGGREGATION_MODE")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Env:      v.GetString("ENV"),
		Timezone: v.GetString("TIMEZONE"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "orderdesk")
	v.SetDefault("POSTGRES_DB", "orderdesk_db")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_MAX_OPEN_CONNS", 10)
	v.SetDefault("POSTGRES_MAX_IDLE_CONNS", 5)

	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("RABBITMQ_DEFAULT_USER", "guest")
	v.SetDefault("RABBITMQ_DEFAULT_PASS", "guest")
	v.SetDefault("RABBITMQ_QUEUE", "customer_recompute")

	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "10m")

	v.SetDefault("BASIC_AUTH_USERNAME", "admin")
	v.SetDefault("BASIC_AUTH_PASSWORD", "admin123")
	v.SetDefault("VIEWER_USERNAME", "viewer")
	v.SetDefault("VIEWER_PASSWORD", "viewer123")

	v.SetDefault("AGGREGATION_MODE", AggregationSync)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("ENV", "development")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
}

func (c *Config) validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("POSTGRES_PASSWORD or DATABASE_URL is required")
	}

	if c.Aggregation.Mode != AggregationSync && c.Aggregation.Mode != AggregationAsync {
		return fmt.Errorf("AGGREGATION_MODE must be %q or %q, got %q", AggregationSync, AggregationAsync, c.Aggregation.Mode)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// GetRedisAddr returns the Redis address, or "" when caching is disabled
func (c *Config) GetRedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Location returns the configured time zone for order timestamps
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsAsyncAggregation reports whether recomputation is handed to the worker queue
func (c *Config) IsAsyncAggregation() bool {
	return c.Aggregation.Mode == AggregationAsync
}

// parseList splits a comma-separated value, falling back to def when empty
func parseList(raw string, def []string) []string {
	if strings.TrimSpace(raw) == "" {
		out := make([]string, len(def))
		copy(out, def)
		return out
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
