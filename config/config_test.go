package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()
	cfg := NewConfig(nil)
	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()
	override := createOverride()
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			FsName:     "test_fs",
			Name:       "test_name",
			MountPoint: "/mnt/tree",
			Debug:      true,
		},
		LogLvl:          util.TraceLevel,
		Addr:            *override.Addr,
		ShutdownTimeout: *override.ShutdownTimeout,
		RateLimitRPS:    *override.RateLimitRPS,
		RateLimitBurst:  *override.RateLimitBurst,
		CORSOrigins:     []string{"http://localhost:3000"},
		StoreBackend:    DuckDBBackend,
		MongoURI:        *override.MongoURI,
		MongoDatabase:   *override.MongoDatabase,
		MongoCollection: *override.MongoCollection,
		StoreTimeout:    *override.StoreTimeout,
		DuckDBPath:      *override.DuckDBPath,
		AttrTimeout:     *override.AttrTimeout,
		EntryTimeout:    *override.EntryTimeout,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}
			cfg := NewConfig(override)
			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"CLI verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()
	override := &ConfigOverride{
		FsName:       util.Pointer("test_fs"),
		StoreBackend: util.Pointer("MONGO"),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.FsName = "test_fs"
	expCfg.StoreBackend = MongoBackend

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }, "unknown store backend"},
		{"mongo without uri", func(c *Config) {
			c.StoreBackend = MongoBackend
			c.MongoURI = ""
		}, "mongo store requires"},
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"negative rate", func(c *Config) { c.RateLimitRPS = -1 }, "rate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func() (*ConfigOverride, []byte)
	}

	cases := []tc{
		{
			ext: ".yaml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".yml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".json",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := json.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
	}

	for _, c := range cases {
		name := "valid" + c.ext
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			override, data := c.build()

			dir := t.TempDir()
			path := filepath.Join(dir, "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("addr: x"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestNewConfigFromFile_FileError(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
}

// Not parallel: mutates process environment
func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: 0.0.0.0:9000\nstore: duckdb\nduckdb_path: from-file.db\n"), 0o600))

	t.Setenv("TREEFS_ADDR", "127.0.0.1:7000")
	t.Setenv("TREEFS_RATE_LIMIT_RPS", "5")
	t.Setenv("TREEFS_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Addr, "env must win over file")
	assert.Equal(t, DuckDBBackend, cfg.StoreBackend)
	assert.Equal(t, "from-file.db", cfg.DuckDBPath)
	assert.Equal(t, 5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, DefaultRateLimitBurst, cfg.RateLimitBurst)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("TREEFS_STORE", "redis")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func createDefaultCfg() *Config {
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

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	return &ConfigOverride{
		LogLvl:          util.Pointer(TraceVerbose),
		Addr:            util.Pointer("0.0.0.0:9999"),
		ShutdownTimeout: util.Pointer(DefaultShutdownTimeout + 1),
		RateLimitRPS:    util.Pointer(DefaultRateLimitRPS + 1),
		RateLimitBurst:  util.Pointer(DefaultRateLimitBurst + 1),
		CORSOrigins:     []string{"http://localhost:3000"},
		StoreBackend:    util.Pointer(DuckDBBackend),
		MongoURI:        util.Pointer("mongodb://db:27017"),
		MongoDatabase:   util.Pointer("test_db"),
		MongoCollection: util.Pointer("test_coll"),
		StoreTimeout:    util.Pointer(DefaultStoreTimeout + 1),
		DuckDBPath:      util.Pointer("test.duckdb"),
		FsName:          util.Pointer("test_fs"),
		Name:            util.Pointer("test_name"),
		MountPoint:      util.Pointer("/mnt/tree"),
		MountDebug:      util.Pointer(true),
		AttrTimeout:     util.Pointer(float64(DefaultAttrTimeout + 1)),
		EntryTimeout:    util.Pointer(float64(DefaultEntryTimeout + 1)),
	}
}
