package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  host: db
  name: clinic
broker:
  kind: kafka
kafka:
  brokers: "k1:9092,k2:9092"
cache:
  reference_ttl: 1m
calllog:
  base_url: https://intake.example.com
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "clinic", cfg.Database.Name)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "kafka", cfg.Broker.Kind)
	assert.Equal(t, time.Minute, cfg.Cache.ReferenceTTL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.WorkspaceTTL)
	assert.Equal(t, "https://intake.example.com", cfg.CallLog.BaseURL)
}

func TestLoadConfigSecretsFromEnv(t *testing.T) {
	path := writeConfig(t, "database:\n  password: from-file\n")
	t.Setenv("DENTAL_DB_PASSWORD", "from-env")
	t.Setenv("DENTAL_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("DENTAL_SERVER_PORT", "7070")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "broker:\n  kind: nats\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown broker.kind")

	path = writeConfig(t, "broker:\n  kind: kafka\n")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "kafka.brokers")
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", c.DSN())
}
