// Package config defines the configuration structures for chemidr.
// Only plain data types and validation live here; loading is in loader.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxBatch bounds names per synchronous request; larger batches go
	// through the job queue.
	MaxBatch int `mapstructure:"max_batch"`
	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// PubChemConfig holds the remote endpoints and HTTP client settings shared by
// PUG-REST and Entrez lookups.
type PubChemConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	EntrezURL string        `mapstructure:"entrez_url"`
	APIKey    string        `mapstructure:"api_key"` // optional Entrez key
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	Burst     int           `mapstructure:"burst"`
	BatchSize int           `mapstructure:"batch_size"` // CIDs per InChIKey request, ≤ 100
	UserAgent string        `mapstructure:"user_agent"`
}

// RetryConfig bounds the retry loop applied to transient upstream statuses.
type RetryConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RateLimitedDelay time.Duration `mapstructure:"rate_limited_delay"` // HTTP 429
	BusyDelay        time.Duration `mapstructure:"busy_delay"`         // HTTP 503
}

// SynonymConfig locates the bulk reference tables and the persisted index.
type SynonymConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	CompoundsFile string `mapstructure:"compounds_file"`
	SynonymsFile  string `mapstructure:"synonyms_file"`
	ContentsFile  string `mapstructure:"contents_file"`
	NutrientsFile string `mapstructure:"nutrients_file"`

	// Store selects where the persisted tables live: file | redis | minio.
	Store    string `mapstructure:"store"`
	CacheDir string `mapstructure:"cache_dir"`

	// LoadCache loads the persisted tables instead of rebuilding them.
	// There is no staleness check against the bulk files.
	LoadCache bool `mapstructure:"load_cache"`
}

// ResolverConfig controls the per-chemical resolution pipeline.
type ResolverConfig struct {
	UseRemote bool `mapstructure:"use_remote"`
	UseLocal  bool `mapstructure:"use_local"`

	// MaxPubChemIndex is added to FooDB ids to build composite ids. It must
	// exceed the largest PubChem CID in existence at deployment time.
	MaxPubChemIndex int64 `mapstructure:"max_pubchem_index"`

	Concurrency int           `mapstructure:"concurrency"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"` // 0 disables the redis result cache
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// DatabaseConfig holds PostgreSQL parameters for the resolved-identifier store.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the connection string understood by pgx and golang-migrate.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// KafkaConfig holds the resolution-job queue parameters.
type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	GroupID      string   `mapstructure:"group_id"`
	JobsTopic    string   `mapstructure:"jobs_topic"`
	ResultsTopic string   `mapstructure:"results_topic"`
	DLQTopic     string   `mapstructure:"dlq_topic"`
	MaxRetries   int      `mapstructure:"max_retries"`
}

// MinIOConfig holds object-storage parameters for synonym snapshots.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	PubChem  PubChemConfig     `mapstructure:"pubchem"`
	Retry    RetryConfig       `mapstructure:"retry"`
	Synonyms SynonymConfig     `mapstructure:"synonyms"`
	Resolver ResolverConfig    `mapstructure:"resolver"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Database DatabaseConfig    `mapstructure:"database"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	MinIO    MinIOConfig       `mapstructure:"minio"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Log      logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a defaulted Config and returns the
// first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must not be negative")
	}

	// PubChem
	if c.PubChem.BaseURL == "" {
		return fmt.Errorf("config: pubchem.base_url is required")
	}
	if c.PubChem.EntrezURL == "" {
		return fmt.Errorf("config: pubchem.entrez_url is required")
	}
	if c.PubChem.BatchSize < 1 || c.PubChem.BatchSize > MaxPubChemBatch {
		return fmt.Errorf("config: pubchem.batch_size %d is out of range [1, %d]", c.PubChem.BatchSize, MaxPubChemBatch)
	}
	if c.PubChem.RateLimit <= 0 {
		return fmt.Errorf("config: pubchem.rate_limit must be > 0, got %v", c.PubChem.RateLimit)
	}

	// Retry
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: retry.max_attempts must be ≥ 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.RateLimitedDelay < 0 || c.Retry.BusyDelay < 0 {
		return fmt.Errorf("config: retry delays must not be negative")
	}

	// Synonyms
	switch c.Synonyms.Store {
	case StoreFile, StoreRedis, StoreMinIO:
	default:
		return fmt.Errorf("config: synonyms.store %q is invalid; expected file|redis|minio", c.Synonyms.Store)
	}
	if c.Synonyms.Store == StoreRedis && !c.Redis.Enabled {
		return fmt.Errorf("config: synonyms.store=redis requires redis.enabled")
	}
	if c.Synonyms.Store == StoreMinIO && c.MinIO.Bucket == "" {
		return fmt.Errorf("config: synonyms.store=minio requires minio.bucket")
	}

	// Resolver
	if c.Resolver.MaxPubChemIndex <= 0 {
		return fmt.Errorf("config: resolver.max_pubchem_index must be > 0, got %d", c.Resolver.MaxPubChemIndex)
	}
	if c.Resolver.Concurrency < 1 {
		return fmt.Errorf("config: resolver.concurrency must be ≥ 1, got %d", c.Resolver.Concurrency)
	}
	if c.Resolver.CacheTTL > 0 && !c.Redis.Enabled {
		return fmt.Errorf("config: resolver.cache_ttl requires redis.enabled")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.JobsTopic == "" || c.Kafka.ResultsTopic == "" {
			return fmt.Errorf("config: kafka.jobs_topic and kafka.results_topic are required")
		}
	}

	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
