package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "memory"
seed_file = "seed.toml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "seed.toml", cfg.Database.SeedFile)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 15, cfg.Booking.SlotGranularityMinutes)
	assert.Equal(t, 24, cfg.Booking.CancellationLeadHours)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_OverridesValues(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[kafka]
enabled = true
brokers = ["kafka-1:9092", "kafka-2:9092"]
topic = "bookings"

[booking]
slot_granularity_minutes = 30
cancellation_lead_hours = 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "bookings", cfg.Kafka.Topic)
	assert.Equal(t, 30, cfg.Booking.SlotGranularityMinutes)
	assert.Equal(t, 12, cfg.Booking.CancellationLeadHours)
}

func TestLoad_UsesEnvPath(t *testing.T) {
	path := writeConfig(t, "[server]\nhttp_port = 7070\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
		{"zero granularity", func(c *Config) { c.Booking.SlotGranularityMinutes = 0 }},
		{"negative lead", func(c *Config) { c.Booking.CancellationLeadHours = -1 }},
		{"redis without address", func(c *Config) { c.Redis.Enabled = true; c.Redis.Address = "" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "appointments", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=appointments sslmode=disable", d.DSN())
}
