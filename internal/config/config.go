package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// SendGridAPIKey and FromEmail drive outbound transactional mail. When
	// SendGridAPIKey is empty the mailer is a no-op (local development).
	SendGridAPIKey string
	FromEmail      string

	// InboundEmailDomain is the domain whose local part encodes the ticket
	// id on reply addresses, e.g. <ticket-id>@inbound.example.com.
	InboundEmailDomain string

	KafkaBrokers     []string
	KafkaTopicTicket string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:            getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:           firstEnv("APP_PORT", "HTTP_PORT", "8099"),
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		FromEmail:          getEnv("FROM_EMAIL", ""),
		InboundEmailDomain: getEnv("INBOUND_EMAIL_DOMAIN", "inbound.localhost"),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicTicket:   getEnv("KAFKA_TOPIC_TICKET", ""),
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "autocrm")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	if c.AppEnv == "production" {
		if c.DB.Password == "" {
			return errors.New("config: in production DB_PASSWORD is required")
		}
		if c.SendGridAPIKey == "" {
			return errors.New("config: SENDGRID_API_KEY is required")
		}
		if c.FromEmail == "" {
			return errors.New("config: FROM_EMAIL is required")
		}
	}
	if c.SendGridAPIKey != "" && c.FromEmail == "" {
		return errors.New("config: FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	if c.FromEmail != "" && !strings.Contains(c.FromEmail, "@") {
		return fmt.Errorf("config: FROM_EMAIL %q is not an email address", c.FromEmail)
	}
	if c.InboundEmailDomain == "" {
		return errors.New("config: INBOUND_EMAIL_DOMAIN must not be empty")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
