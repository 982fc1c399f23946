package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_HOST", "APP_PORT", "HTTP_PORT", "APP_ENV",
		"SENDGRID_API_KEY", "FROM_EMAIL", "INBOUND_EMAIL_DOMAIN",
		"KAFKA_BROKERS", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_DATABASE", "DB_SSLMODE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8099", cfg.Addr())
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "inbound.localhost", cfg.InboundEmailDomain)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "autocrm", cfg.DB.Database)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9001")
	t.Setenv("HTTP_PORT", "9002")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092 ,")
	t.Setenv("DB_DATABASE", "crm_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9001", cfg.HTTPPort, "APP_PORT wins over HTTP_PORT")
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "crm_test", cfg.DB.Database)
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := &Config{AppEnv: "production", InboundEmailDomain: "inbound.example.com"}
	cfg.DB.Host = "db"
	cfg.DB.Database = "autocrm"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	cfg.DB.Password = "secret"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENDGRID_API_KEY")

	cfg.SendGridAPIKey = "sg-key"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FROM_EMAIL")

	cfg.FromEmail = "support@example.com"
	assert.NoError(t, cfg.Validate())
}

func TestValidateFromEmail(t *testing.T) {
	cfg := &Config{AppEnv: "development", InboundEmailDomain: "inbound.example.com"}
	cfg.DB.Host = "db"
	cfg.DB.Database = "autocrm"

	cfg.SendGridAPIKey = "sg-key"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FROM_EMAIL")

	cfg.FromEmail = "not-an-address"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an email address")

	cfg.FromEmail = "support@example.com"
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseURLEscapesPassword(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host = "db"
	cfg.DB.Port = "5432"
	cfg.DB.User = "crm"
	cfg.DB.Password = "p@ss word"
	cfg.DB.Database = "autocrm"
	cfg.DB.SSLMode = "disable"

	assert.Equal(t,
		"postgres://crm:p%40ss+word@db:5432/autocrm?sslmode=disable",
		cfg.DatabaseURL())
	assert.Equal(t,
		"host=db port=5432 user=crm password=p@ss word dbname=autocrm sslmode=disable",
		cfg.DSN())
}
