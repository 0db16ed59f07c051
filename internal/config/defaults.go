package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080

	DefaultPubChemBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultEntrezURL      = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultUserAgent      = "chemidr/1.0"
	DefaultRateLimit      = 5.0
	DefaultBurst          = 5

	// MaxPubChemBatch is the PUG-REST limit on CIDs per property request.
	MaxPubChemBatch = 100

	DefaultMaxAttempts      = 10
	DefaultRateLimitedDelay = 500 * time.Millisecond
	DefaultBusyDelay        = time.Second

	DefaultCompoundsFile = "compounds.csv"
	DefaultSynonymsFile  = "compound_synonymssql.csv"
	DefaultContentsFile  = "contentssql.csv"
	DefaultNutrientsFile = "usda_raw_garlic.csv"
	DefaultDataDir       = "data"
	DefaultCacheDir      = "intermediate_save"

	// DefaultMaxPubChemIndex exceeds every PubChem CID assigned when the
	// FooDB offset was chosen.
	DefaultMaxPubChemIndex int64 = 134825000

	DefaultRedisAddr = "localhost:6379"
	DefaultKeyPrefix = "chemidr:"

	DefaultDBHost = "localhost"
	DefaultDBPort = 5432
	DefaultDBName = "chemidr"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "chemidr-resolver"
	DefaultJobsTopic    = "chemidr.resolve.jobs"
	DefaultResultsTopic = "chemidr.resolve.results"
	DefaultDLQTopic     = "chemidr.resolve.dlq"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOPrefix   = "synonyms/"

	DefaultMetricsNamespace = "chemidr"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Synonym store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreMinIO = "minio"
)

// booleanDefaults are registered with viper before unmarshalling because a
// zero bool cannot be told apart from an explicit false afterwards.
var booleanDefaults = map[string]bool{
	"resolver.use_remote": true,
	"resolver.use_local":  true,
	"metrics.enabled":     true,
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicitly set values are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// A batch may block on several retry delays.
		cfg.Server.WriteTimeout = 5 * time.Minute
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 4 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.MaxBatch == 0 {
		cfg.Server.MaxBatch = 1000
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 20
	}

	// ── PubChem ───────────────────────────────────────────────────────────────
	if cfg.PubChem.BaseURL == "" {
		cfg.PubChem.BaseURL = DefaultPubChemBaseURL
	}
	if cfg.PubChem.EntrezURL == "" {
		cfg.PubChem.EntrezURL = DefaultEntrezURL
	}
	if cfg.PubChem.Timeout == 0 {
		cfg.PubChem.Timeout = 30 * time.Second
	}
	if cfg.PubChem.RateLimit == 0 {
		cfg.PubChem.RateLimit = DefaultRateLimit
	}
	if cfg.PubChem.Burst == 0 {
		cfg.PubChem.Burst = DefaultBurst
	}
	if cfg.PubChem.BatchSize == 0 {
		cfg.PubChem.BatchSize = MaxPubChemBatch
	}
	if cfg.PubChem.UserAgent == "" {
		cfg.PubChem.UserAgent = DefaultUserAgent
	}

	// ── Retry ─────────────────────────────────────────────────────────────────
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Retry.RateLimitedDelay == 0 {
		cfg.Retry.RateLimitedDelay = DefaultRateLimitedDelay
	}
	if cfg.Retry.BusyDelay == 0 {
		cfg.Retry.BusyDelay = DefaultBusyDelay
	}

	// ── Synonyms ──────────────────────────────────────────────────────────────
	if cfg.Synonyms.DataDir == "" {
		cfg.Synonyms.DataDir = DefaultDataDir
	}
	if cfg.Synonyms.CompoundsFile == "" {
		cfg.Synonyms.CompoundsFile = DefaultCompoundsFile
	}
	if cfg.Synonyms.SynonymsFile == "" {
		cfg.Synonyms.SynonymsFile = DefaultSynonymsFile
	}
	if cfg.Synonyms.ContentsFile == "" {
		cfg.Synonyms.ContentsFile = DefaultContentsFile
	}
	if cfg.Synonyms.NutrientsFile == "" {
		cfg.Synonyms.NutrientsFile = DefaultNutrientsFile
	}
	if cfg.Synonyms.Store == "" {
		cfg.Synonyms.Store = StoreFile
	}
	if cfg.Synonyms.CacheDir == "" {
		cfg.Synonyms.CacheDir = DefaultCacheDir
	}

	// ── Resolver ──────────────────────────────────────────────────────────────
	if cfg.Resolver.MaxPubChemIndex == 0 {
		cfg.Resolver.MaxPubChemIndex = DefaultMaxPubChemIndex
	}
	if cfg.Resolver.Concurrency == 0 {
		cfg.Resolver.Concurrency = 1
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultKeyPrefix
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.JobsTopic == "" {
		cfg.Kafka.JobsTopic = DefaultJobsTopic
	}
	if cfg.Kafka.ResultsTopic == "" {
		cfg.Kafka.ResultsTopic = DefaultResultsTopic
	}
	if cfg.Kafka.DLQTopic == "" {
		cfg.Kafka.DLQTopic = DefaultDLQTopic
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Prefix == "" {
		cfg.MinIO.Prefix = DefaultMinIOPrefix
	}

	// ── Metrics / Log ─────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config with all defaults applied, including the
// boolean defaults that Load registers with viper.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Resolver.UseRemote = booleanDefaults["resolver.use_remote"]
	cfg.Resolver.UseLocal = booleanDefaults["resolver.use_local"]
	cfg.Metrics.Enabled = booleanDefaults["metrics.enabled"]
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
