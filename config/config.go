package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by [LoadEnvOverride]
const EnvPrefix = "TREEFS"

// Store backends
const (
	MemoryBackend = "memory"
	MongoBackend  = "mongo"
	DuckDBBackend = "duckdb"
)

// CLI style verbosity values accepted by ConfigOverride.LogLvl
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	DefaultAddr            = "127.0.0.1:8080"
	DefaultShutdownTimeout = 10 // seconds
	DefaultRateLimitRPS    = 100
	DefaultRateLimitBurst  = 200

	DefaultStoreBackend    = MemoryBackend
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "markdown-api"
	DefaultMongoCollection = "markdown-api filesystem"
	DefaultStoreTimeout    = 0 // seconds; 0 leaves deadlines to the driver
	DefaultDuckDBPath      = "treefs.duckdb"

	DefaultFsName = "treefs"
	DefaultName   = "treefs"

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0
	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// Config contains runtime configuration values for the tree service.
type Config struct {
	MountOptions
	LogLvl util.LogLevel // Internal log level (Default Info)

	Addr            string   // HTTP listen address (Default 127.0.0.1:8080)
	ShutdownTimeout int      // Graceful HTTP shutdown in seconds (Default 10)
	RateLimitRPS    int      // Requests per second per client; 0 disables limiting (Default 100)
	RateLimitBurst  int      // Limiter burst (Default 200)
	CORSOrigins     []string // Allowed CORS origins; empty disables CORS

	StoreBackend    string // memory, mongo or duckdb (Default memory)
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	StoreTimeout    int    // Per store call timeout in seconds applied by the backend; 0 = none
	DuckDBPath      string // DuckDB database file; "" opens an in-memory database

	AttrTimeout  float64 // Mount attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Mount directory entry cache timeout in seconds (Default 1.0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace)
	LogLvl *int `yaml:"verbose,omitempty" json:"verbose,omitempty" envconfig:"VERBOSE"`

	Addr            *string  `yaml:"addr,omitempty" json:"addr,omitempty" envconfig:"ADDR"`
	ShutdownTimeout *int     `yaml:"shutdown_timeout,omitempty" json:"shutdown_timeout,omitempty" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    *int     `yaml:"rate_limit_rps,omitempty" json:"rate_limit_rps,omitempty" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  *int     `yaml:"rate_limit_burst,omitempty" json:"rate_limit_burst,omitempty" envconfig:"RATE_LIMIT_BURST"`
	CORSOrigins     []string `yaml:"cors_origins,omitempty" json:"cors_origins,omitempty" envconfig:"CORS_ORIGINS"`

	StoreBackend    *string `yaml:"store,omitempty" json:"store,omitempty" envconfig:"STORE"`
	MongoURI        *string `yaml:"mongo_uri,omitempty" json:"mongo_uri,omitempty" envconfig:"MONGO_URI"`
	MongoDatabase   *string `yaml:"mongo_database,omitempty" json:"mongo_database,omitempty" envconfig:"MONGO_DATABASE"`
	MongoCollection *string `yaml:"mongo_collection,omitempty" json:"mongo_collection,omitempty" envconfig:"MONGO_COLLECTION"`
	StoreTimeout    *int    `yaml:"store_timeout,omitempty" json:"store_timeout,omitempty" envconfig:"STORE_TIMEOUT"`
	DuckDBPath      *string `yaml:"duckdb_path,omitempty" json:"duckdb_path,omitempty" envconfig:"DUCKDB_PATH"`

	FsName       *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty" envconfig:"FS_NAME"`
	Name         *string  `yaml:"name,omitempty" json:"name,omitempty" envconfig:"NAME"`
	MountPoint   *string  `yaml:"mount_point,omitempty" json:"mount_point,omitempty" envconfig:"MOUNT_POINT"`
	MountDebug   *bool    `yaml:"mount_debug,omitempty" json:"mount_debug,omitempty" envconfig:"MOUNT_DEBUG"`
	AttrTimeout  *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty" envconfig:"ATTR_TIMEOUT"`
	EntryTimeout *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty" envconfig:"ENTRY_TIMEOUT"`
}

// NewConfig creates a new Config from defaults with override applied if not nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:          DefaultLogLvl,
		Addr:            DefaultAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		StoreBackend:    DefaultStoreBackend,
		MongoURI:        DefaultMongoURI,
		MongoDatabase:   DefaultMongoDatabase,
		MongoCollection: DefaultMongoCollection,
		StoreTimeout:    DefaultStoreTimeout,
		DuckDBPath:      DefaultDuckDBPath,
		AttrTimeout:     DefaultAttrTimeout,
		EntryTimeout:    DefaultEntryTimeout,
	}
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.VerbosityLevel(*override.LogLvl)
	}
	if override.Addr != nil {
		c.Addr = *override.Addr
	}
	if override.ShutdownTimeout != nil {
		c.ShutdownTimeout = *override.ShutdownTimeout
	}
	if override.RateLimitRPS != nil {
		c.RateLimitRPS = *override.RateLimitRPS
	}
	if override.RateLimitBurst != nil {
		c.RateLimitBurst = *override.RateLimitBurst
	}
	if override.CORSOrigins != nil {
		c.CORSOrigins = append([]string(nil), override.CORSOrigins...)
	}
	if override.StoreBackend != nil {
		c.StoreBackend = strings.ToLower(*override.StoreBackend)
	}
	if override.MongoURI != nil {
		c.MongoURI = *override.MongoURI
	}
	if override.MongoDatabase != nil {
		c.MongoDatabase = *override.MongoDatabase
	}
	if override.MongoCollection != nil {
		c.MongoCollection = *override.MongoCollection
	}
	if override.StoreTimeout != nil {
		c.StoreTimeout = *override.StoreTimeout
	}
	if override.DuckDBPath != nil {
		c.DuckDBPath = *override.DuckDBPath
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.MountPoint != nil {
		c.MountPoint = *override.MountPoint
	}
	if override.MountDebug != nil {
		c.Debug = *override.MountDebug
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case MemoryBackend, MongoBackend, DuckDBBackend:
	default:
		return fmt.Errorf("unknown store backend: %q", c.StoreBackend)
	}
	if c.StoreBackend == MongoBackend && (c.MongoURI == "" || c.MongoDatabase == "" || c.MongoCollection == "") {
		return fmt.Errorf("mongo store requires uri, database and collection")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// LoadEnvOverride reads TREEFS_* environment variables into an override.
// Unset variables leave the matching field nil.
func LoadEnvOverride() (*ConfigOverride, error) {
	var override ConfigOverride
	if err := envconfig.Process(EnvPrefix, &override); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}
	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}

// Load layers defaults, the optional override file at path and the environment,
// in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		override, err := LoadConfigOverrideFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(override)
	}
	env, err := LoadEnvOverride()
	if err != nil {
		return nil, err
	}
	cfg.Merge(env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
