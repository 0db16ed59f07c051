package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
pubchem:
  rate_limit: 3
  batch_size: 50
retry:
  max_attempts: 4
  busy_delay: 2s
synonyms:
  data_dir: /srv/foodb
  load_cache: true
resolver:
  use_remote: false
  max_pubchem_index: 200000000
log:
  level: debug
  format: console
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chemidr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.PubChem.RateLimit)
	assert.Equal(t, 50, cfg.PubChem.BatchSize)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BusyDelay)
	assert.Equal(t, DefaultRateLimitedDelay, cfg.Retry.RateLimitedDelay)
	assert.Equal(t, "/srv/foodb", cfg.Synonyms.DataDir)
	assert.True(t, cfg.Synonyms.LoadCache)
	assert.False(t, cfg.Resolver.UseRemote)
	assert.True(t, cfg.Resolver.UseLocal, "unset booleans keep their defaults")
	assert.Equal(t, int64(200000000), cfg.Resolver.MaxPubChemIndex)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CHEMIDR_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("CHEMIDR_SYNONYMS_DATA_DIR", "/tmp/foodb")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, "/tmp/foodb", cfg.Synonyms.DataDir)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("CHEMIDR_RESOLVER_MAX_PUBCHEM_INDEX", "150000000")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, int64(150000000), cfg.Resolver.MaxPubChemIndex)
	assert.Equal(t, DefaultPubChemBaseURL, cfg.PubChem.BaseURL)
	assert.True(t, cfg.Resolver.UseRemote)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "pubchem:\n  batch_size: 500\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}

//Personal.AI order the ending
