package config

import (
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
)

type GatewayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type SearchConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Config struct {
	ServiceName    string
	Port           string
	DBDriver       string
	DatabaseURL    string
	JWTSecret      []byte
	LogLevel       string
	OutboxInterval time.Duration

	Gateway GatewayConfig
	Kafka   KafkaConfig
	Search  SearchConfig
}

// FromEnv reads the process environment without validating it.
func FromEnv() Config {
	return Config{
		ServiceName:    config.EnvDefault("SERVICE_NAME", "storefront"),
		Port:           config.EnvDefault("SERVER_PORT", "8080"),
		DBDriver:       strings.ToLower(config.EnvDefault("DB_DRIVER", db.DriverPostgres)),
		DatabaseURL:    config.EnvDefault("DATABASE_URL", ""),
		JWTSecret:      []byte(config.EnvDefault("JWT_SECRET", "")),
		LogLevel:       config.EnvDefault("LOG_LEVEL", "info"),
		OutboxInterval: config.EnvDurationDefault("OUTBOX_INTERVAL", 2*time.Second),
		Gateway: GatewayConfig{
			BaseURL:   strings.TrimRight(config.EnvDefault("GATEWAY_BASE_URL", "https://api.razorpay.com"), "/"),
			KeyID:     config.EnvDefault("GATEWAY_KEY_ID", ""),
			KeySecret: config.EnvDefault("GATEWAY_KEY_SECRET", ""),
			Currency:  config.EnvDefault("GATEWAY_CURRENCY", "INR"),
			Timeout:   config.EnvDurationDefault("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: config.CSV(config.EnvDefault("KAFKA_BROKERS", "")),
			Topic:   config.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),
		},
		Search: SearchConfig{
			URL:      config.EnvDefault("ES_URL", ""),
			User:     config.EnvDefault("ES_USER", ""),
			Password: config.EnvDefault("ES_PASSWORD", ""),
			Index:    config.EnvDefault("ES_INDEX", "products"),
		},
	}
}

// Load reads and validates the server configuration.
func Load() (Config, error) {
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var m config.Missing
	m.NonEmpty(c.DatabaseURL, "DATABASE_URL")
	m.NonEmptyBytes(c.JWTSecret, "JWT_SECRET")
	m.NonEmpty(c.Gateway.KeyID, "GATEWAY_KEY_ID")
	m.NonEmpty(c.Gateway.KeySecret, "GATEWAY_KEY_SECRET")
	return m.Err()
}

// DBOnly validates the subset needed by offline tooling (migrate, relay, reindex).
func (c Config) DBOnly() error {
	var m config.Missing
	m.NonEmpty(c.DatabaseURL, "DATABASE_URL")
	return m.Err()
}
