package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_HOST", "LOG_LEVEL", "KAFKA_BROKER", "PAYMENT_SUCCESS_RATE", "JWT_SECRET"} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	conf, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", conf.Server.Port)
	assert.Equal(t, "postgres", conf.Database.Driver)
	assert.False(t, conf.HasDatabase())
	assert.Equal(t, 24*time.Hour, conf.SessionTTL())
	assert.Equal(t, 2*time.Second, conf.PaymentDelay())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
database:
  driver: pgx
  host: db
  port: "5433"
  user: irini
  password: secret
  name: orders
  sslMode: disable
checkout:
  paymentSuccessRate: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("PORT", "7070")
	t.Setenv("KAFKA_BROKER", "k1:9092,k2:9092")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, conf.Kafka.Brokers)
	assert.Equal(t, 0.5, conf.Checkout.PaymentSuccessRate)
	assert.True(t, conf.HasDatabase())
	assert.Equal(t, "postgres://irini:secret@db:5433/orders?sslmode=disable", conf.DSN())
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [port"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "cant unmarshal config")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DB_HOST":              "postgres",
		"PAYMENT_SUCCESS_RATE": "not-a-number",
		"STRICT_TRANSITIONS":   "true",
		"JWT_SECRET":           "s3cr3t",
	}
	conf := Default()
	conf.applyEnv(func(key string) string { return env[key] })

	assert.Equal(t, "postgres", conf.Database.Host)
	assert.Equal(t, 0.9, conf.Checkout.PaymentSuccessRate)
	assert.True(t, conf.Checkout.StrictTransitions)
	assert.Equal(t, "s3cr3t", conf.Auth.JWTSecret)
	assert.Equal(t, "host=postgres port=5432 user= password= dbname= sslmode=disable", conf.DSN())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		expected string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no_port", mutate: func(c *Config) { c.Server.Port = "" }, expected: "server port"},
		{name: "unknown_driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, expected: "unknown database driver"},
		{name: "rate_above_one", mutate: func(c *Config) { c.Checkout.PaymentSuccessRate = 1.5 }, expected: "payment success rate"},
		{name: "negative_delay", mutate: func(c *Config) { c.Checkout.PrintDelayMs = -1 }, expected: "checkout delays"},
		{name: "tax_rate", mutate: func(c *Config) { c.Analytics.TaxRate = 100 }, expected: "tax rate"},
		{name: "session_ttl", mutate: func(c *Config) { c.Redis.SessionTTLH = 0 }, expected: "session ttl"},
		{name: "log_level", mutate: func(c *Config) { c.Logging.Level = "loud" }, expected: "logging level"},
		{name: "kafka_without_topic", mutate: func(c *Config) { c.Kafka.Brokers, c.Kafka.Topic = []string{"k:9092"}, "" }, expected: "kafka topic"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			conf := Default()
			testCase.mutate(&conf)
			err := conf.Validate()
			if testCase.expected == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, testCase.expected)
		})
	}
}
