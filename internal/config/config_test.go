package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/internal/config"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Resolver.UseRemote)
	assert.True(t, cfg.Resolver.UseLocal)
	assert.Equal(t, int64(134825000), cfg.Resolver.MaxPubChemIndex)
	assert.Equal(t, 100, cfg.PubChem.BatchSize)
	assert.Equal(t, config.StoreFile, cfg.Synonyms.Store)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"port out of range", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"batch too large", func(c *config.Config) { c.PubChem.BatchSize = 101 }, "pubchem.batch_size"},
		{"zero attempts", func(c *config.Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts"},
		{"negative delay", func(c *config.Config) { c.Retry.BusyDelay = -1 }, "retry delays"},
		{"unknown store", func(c *config.Config) { c.Synonyms.Store = "s3" }, "synonyms.store"},
		{"redis store without redis", func(c *config.Config) { c.Synonyms.Store = config.StoreRedis }, "redis.enabled"},
		{"minio store without bucket", func(c *config.Config) { c.Synonyms.Store = config.StoreMinIO }, "minio.bucket"},
		{"offset not positive", func(c *config.Config) { c.Resolver.MaxPubChemIndex = -5 }, "max_pubchem_index"},
		{"cache ttl without redis", func(c *config.Config) { c.Resolver.CacheTTL = 1 }, "cache_ttl"},
		{"database without user", func(c *config.Config) { c.Database.Enabled = true }, "database.user"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
		{"negative rate limit", func(c *config.Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Resolver.MaxPubChemIndex = 200000000
	cfg.Retry.MaxAttempts = 3
	config.ApplyDefaults(cfg)

	assert.Equal(t, int64(200000000), cfg.Resolver.MaxPubChemIndex)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, config.DefaultBusyDelay, cfg.Retry.BusyDelay)
}

func TestApplyDefaults_Nil(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()
	d := config.DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, DBName: "chemidr", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/chemidr?sslmode=disable", d.DSN())
}

//Personal.AI order the ending
