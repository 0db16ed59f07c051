package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "CHEMIDR"

// envBoundKeys lists keys that must be known to viper for AutomaticEnv to
// reach them during Unmarshal when no config file sets them.
var envBoundKeys = []string{
	"pubchem.base_url", "pubchem.entrez_url", "pubchem.api_key", "pubchem.rate_limit",
	"retry.max_attempts", "retry.rate_limited_delay", "retry.busy_delay",
	"synonyms.data_dir", "synonyms.cache_dir", "synonyms.store", "synonyms.load_cache",
	"resolver.max_pubchem_index", "resolver.concurrency", "resolver.cache_ttl",
	"redis.enabled", "redis.addr", "redis.password",
	"database.enabled", "database.host", "database.user", "database.password", "database.db_name",
	"kafka.enabled", "kafka.brokers",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
	"log.level", "log.format", "server.port",
}

// newViper builds a Viper instance with YAML file type, CHEMIDR_ env prefix
// and a "." → "_" key replacer so "retry.max_attempts" resolves to
// CHEMIDR_RETRY_MAX_ATTEMPTS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range booleanDefaults {
		v.SetDefault(key, val)
	}
	for _, key := range envBoundKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges CHEMIDR_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CHEMIDR_* environment variables and
// defaults only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOptional behaves like Load when configPath is set and like LoadFromEnv
// otherwise.
func LoadOptional(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch re-parses configPath on change and passes valid results to onChange.
// Invalid revisions are skipped. Only log level and rate limits are safe to
// apply at runtime.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is Load that panics on error. For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
