package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration: the data directory layout,
// the indexing pipeline's extraction limits, the scheduler's batching
// cadence, the snapshot/dump engine's schedule and destinations, the
// unix-socket daemon's bind paths, and logging.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// DataDir is the engine's root data directory: the task store
	// (tasks.db), one bbolt environment per index under indexes/, and
	// the pending-payload tree.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	Indexing  IndexingConfig  `yaml:"indexing" json:"indexing"`
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`
	Snapshot  SnapshotConfig  `yaml:"snapshot" json:"snapshot"`
	Dump      DumpConfig      `yaml:"dump" json:"dump"`
	Daemon    DaemonConfig    `yaml:"daemon" json:"daemon"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// IndexingConfig bounds the indexing pipeline's extraction cache and
// prefix range.
type IndexingConfig struct {
	// ExtractionCacheCapacity bounds every extractor's LRU before it
	// spills to its external sorter.
	ExtractionCacheCapacity int `yaml:"extraction_cache_capacity" json:"extraction_cache_capacity"`
	// PrefixMinLength and PrefixMaxLength are a prefix-length range that
	// is defaulted and validated here. The prefix-docids extractor does
	// not read them: it takes its range from each index's settings
	// (falling back to 1..4).
	PrefixMinLength int `yaml:"prefix_min_length" json:"prefix_min_length"`
	PrefixMaxLength int `yaml:"prefix_max_length" json:"prefix_max_length"`
	// ExternalSortChunkSize is loaded, merged and defaulted here but is
	// not read by any other package: extractors keep their sorted runs
	// in memory and never spill them to disk.
	ExternalSortChunkSize int `yaml:"external_sort_chunk_size" json:"external_sort_chunk_size"`
}

// SchedulerConfig configures the batcher's polling cadence (component G).
type SchedulerConfig struct {
	// IdleInterval is how long the scheduler sleeps between backlog
	// polls when it finds nothing to batch, e.g. "200ms".
	IdleInterval string `yaml:"idle_interval" json:"idle_interval"`
}

// Duration parses IdleInterval, falling back to 200ms if unset or
// unparsable.
func (s SchedulerConfig) Duration() time.Duration {
	if d, err := time.ParseDuration(s.IdleInterval); err == nil && d > 0 {
		return d
	}
	return 200 * time.Millisecond
}

// SnapshotConfig configures the periodic live snapshot (component H).
type SnapshotConfig struct {
	// Enabled turns on the periodic snapshot timer. Disabled by
	// default: snapshots are otherwise taken only on explicit request.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Interval is how often the timer fires, e.g. "1h".
	Interval string `yaml:"interval" json:"interval"`
	// Dir is where finished <name>.snapshot archives land.
	Dir string `yaml:"dir" json:"dir"`
	// IgnoreIfDataDirExists lets a restore-on-boot no-op instead of
	// refusing to start when DataDir already holds an environment.
	IgnoreIfDataDirExists bool `yaml:"ignore_if_data_dir_exists" json:"ignore_if_data_dir_exists"`
	// IgnoreMissingSnapshot lets a restore-on-boot proceed to a cold
	// start instead of erroring when no archive is present yet.
	IgnoreMissingSnapshot bool `yaml:"ignore_missing_snapshot" json:"ignore_missing_snapshot"`
}

// Duration parses Interval, falling back to 1h if unset or unparsable.
func (s SnapshotConfig) Duration() time.Duration {
	if d, err := time.ParseDuration(s.Interval); err == nil && d > 0 {
		return d
	}
	return time.Hour
}

// DumpConfig configures where versioned dumps are written (component H).
type DumpConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// DaemonConfig configures the unix-socket request/response server.
// Its fields mirror daemon.Config; Load keeps them here so the data
// directory, snapshot schedule, and socket paths all come from one
// file instead of scattering flags across every subcommand.
type DaemonConfig struct {
	SocketPath          string `yaml:"socket_path" json:"socket_path"`
	PIDPath             string `yaml:"pid_path" json:"pid_path"`
	Timeout             string `yaml:"timeout" json:"timeout"`
	ShutdownGracePeriod string `yaml:"shutdown_grace_period" json:"shutdown_grace_period"`
	// MCPEnabled starts the stdio MCP tool surface (internal/mcp)
	// alongside the unix socket when the daemon serves.
	MCPEnabled bool `yaml:"mcp_enabled" json:"mcp_enabled"`
}

// TimeoutDuration parses Timeout, falling back to 30s.
func (d DaemonConfig) TimeoutDuration() time.Duration {
	if v, err := time.ParseDuration(d.Timeout); err == nil && v > 0 {
		return v
	}
	return 30 * time.Second
}

// ShutdownGraceDuration parses ShutdownGracePeriod, falling back to 10s.
func (d DaemonConfig) ShutdownGraceDuration() time.Duration {
	if v, err := time.ParseDuration(d.ShutdownGracePeriod); err == nil && v > 0 {
		return v
	}
	return 10 * time.Second
}

// LoggingConfig configures slog output (internal/logging).
type LoggingConfig struct {
	Level         string `yaml:"level" json:"level"`
	FilePath      string `yaml:"file_path" json:"file_path"`
	MaxSizeMB     int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles      int    `yaml:"max_files" json:"max_files"`
	WriteToStderr bool   `yaml:"write_to_stderr" json:"write_to_stderr"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Version: 1,
		DataDir: dataDir,
		Indexing: IndexingConfig{
			ExtractionCacheCapacity: 4096,
			PrefixMinLength:         1,
			PrefixMaxLength:         4,
			ExternalSortChunkSize:   1 << 20,
		},
		Scheduler: SchedulerConfig{
			IdleInterval: "200ms",
		},
		Snapshot: SnapshotConfig{
			Enabled:               false,
			Interval:              "1h",
			Dir:                   filepath.Join(defaultHomeSubdir(), "snapshots"),
			IgnoreIfDataDirExists: false,
			IgnoreMissingSnapshot: true,
		},
		Dump: DumpConfig{
			Dir: filepath.Join(defaultHomeSubdir(), "dumps"),
		},
		Daemon: DaemonConfig{
			SocketPath:          filepath.Join(defaultHomeSubdir(), "daemon.sock"),
			PIDPath:             filepath.Join(defaultHomeSubdir(), "daemon.pid"),
			Timeout:             "30s",
			ShutdownGracePeriod: "10s",
			MCPEnabled:          true,
		},
		Logging: LoggingConfig{
			Level:         "info",
			FilePath:      filepath.Join(defaultHomeSubdir(), "logs", "searchd.log"),
			MaxSizeMB:     10,
			MaxFiles:      5,
			WriteToStderr: true,
		},
	}
}

// defaultHomeSubdir returns ~/.searchd, falling back to a temp directory.
func defaultHomeSubdir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".searchd")
	}
	return filepath.Join(home, ".searchd")
}

// defaultDataDir returns the default engine data directory.
func defaultDataDir() string {
	return filepath.Join(defaultHomeSubdir(), "data")
}

// GetUserConfigPath returns the path to the user/global configuration
// file, following the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/searchd/config.yaml (if set)
//   - ~/.config/searchd/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "searchd", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "searchd", "config.yaml")
	}
	return filepath.Join(home, ".config", "searchd", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration from the specified directory, applying
// sources in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/searchd/config.yaml)
//  3. Instance config (.searchd.yaml in dir)
//  4. Environment variables (SEARCHD_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .searchd.yaml or
// .searchd.yml in dir.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".searchd.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".searchd.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}

	if other.Indexing.ExtractionCacheCapacity != 0 {
		c.Indexing.ExtractionCacheCapacity = other.Indexing.ExtractionCacheCapacity
	}
	if other.Indexing.PrefixMinLength != 0 {
		c.Indexing.PrefixMinLength = other.Indexing.PrefixMinLength
	}
	if other.Indexing.PrefixMaxLength != 0 {
		c.Indexing.PrefixMaxLength = other.Indexing.PrefixMaxLength
	}
	if other.Indexing.ExternalSortChunkSize != 0 {
		c.Indexing.ExternalSortChunkSize = other.Indexing.ExternalSortChunkSize
	}

	if other.Scheduler.IdleInterval != "" {
		c.Scheduler.IdleInterval = other.Scheduler.IdleInterval
	}

	if other.Snapshot.Enabled {
		c.Snapshot.Enabled = other.Snapshot.Enabled
	}
	if other.Snapshot.Interval != "" {
		c.Snapshot.Interval = other.Snapshot.Interval
	}
	if other.Snapshot.Dir != "" {
		c.Snapshot.Dir = other.Snapshot.Dir
	}
	if other.Snapshot.IgnoreIfDataDirExists {
		c.Snapshot.IgnoreIfDataDirExists = other.Snapshot.IgnoreIfDataDirExists
	}

	if other.Dump.Dir != "" {
		c.Dump.Dir = other.Dump.Dir
	}

	if other.Daemon.SocketPath != "" {
		c.Daemon.SocketPath = other.Daemon.SocketPath
	}
	if other.Daemon.PIDPath != "" {
		c.Daemon.PIDPath = other.Daemon.PIDPath
	}
	if other.Daemon.Timeout != "" {
		c.Daemon.Timeout = other.Daemon.Timeout
	}
	if other.Daemon.ShutdownGracePeriod != "" {
		c.Daemon.ShutdownGracePeriod = other.Daemon.ShutdownGracePeriod
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies SEARCHD_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SEARCHD_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SEARCHD_EXTRACTION_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Indexing.ExtractionCacheCapacity = n
		}
	}
	if v := os.Getenv("SEARCHD_SCHEDULER_IDLE_INTERVAL"); v != "" {
		c.Scheduler.IdleInterval = v
	}
	if v := os.Getenv("SEARCHD_SNAPSHOT_ENABLED"); v != "" {
		c.Snapshot.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SEARCHD_SNAPSHOT_INTERVAL"); v != "" {
		c.Snapshot.Interval = v
	}
	if v := os.Getenv("SEARCHD_SNAPSHOT_DIR"); v != "" {
		c.Snapshot.Dir = v
	}
	if v := os.Getenv("SEARCHD_DUMP_DIR"); v != "" {
		c.Dump.Dir = v
	}
	if v := os.Getenv("SEARCHD_SOCKET_PATH"); v != "" {
		c.Daemon.SocketPath = v
	}
	if v := os.Getenv("SEARCHD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Indexing.ExtractionCacheCapacity <= 0 {
		return fmt.Errorf("indexing.extraction_cache_capacity must be positive, got %d", c.Indexing.ExtractionCacheCapacity)
	}
	if c.Indexing.PrefixMinLength <= 0 || c.Indexing.PrefixMaxLength < c.Indexing.PrefixMinLength {
		return fmt.Errorf("indexing.prefix_min_length/prefix_max_length must satisfy 0 < min <= max, got %d/%d",
			c.Indexing.PrefixMinLength, c.Indexing.PrefixMaxLength)
	}
	if _, err := time.ParseDuration(c.Scheduler.IdleInterval); err != nil {
		return fmt.Errorf("scheduler.idle_interval is not a valid duration: %w", err)
	}
	if c.Snapshot.Enabled {
		if _, err := time.ParseDuration(c.Snapshot.Interval); err != nil {
			return fmt.Errorf("snapshot.interval is not a valid duration: %w", err)
		}
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("snapshot.dir must not be empty when snapshot.enabled is true")
		}
	}
	if c.Dump.Dir == "" {
		return fmt.Errorf("dump.dir must not be empty")
	}
	if c.Daemon.SocketPath == "" {
		return fmt.Errorf("daemon.socket_path must not be empty")
	}
	if c.Daemon.PIDPath == "" {
		return fmt.Errorf("daemon.pid_path must not be empty")
	}
	if _, err := time.ParseDuration(c.Daemon.Timeout); err != nil {
		return fmt.Errorf("daemon.timeout is not a valid duration: %w", err)
	}
	if _, err := time.ParseDuration(c.Daemon.ShutdownGracePeriod); err != nil {
		return fmt.Errorf("daemon.shutdown_grace_period is not a valid duration: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// MergeNewDefaults adds new default fields while preserving existing
// values. Returns the list of field names that were added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Indexing.ExtractionCacheCapacity == 0 {
		c.Indexing.ExtractionCacheCapacity = defaults.Indexing.ExtractionCacheCapacity
		added = append(added, "indexing.extraction_cache_capacity")
	}
	if c.Indexing.PrefixMinLength == 0 {
		c.Indexing.PrefixMinLength = defaults.Indexing.PrefixMinLength
		added = append(added, "indexing.prefix_min_length")
	}
	if c.Indexing.PrefixMaxLength == 0 {
		c.Indexing.PrefixMaxLength = defaults.Indexing.PrefixMaxLength
		added = append(added, "indexing.prefix_max_length")
	}
	if c.Indexing.ExternalSortChunkSize == 0 {
		c.Indexing.ExternalSortChunkSize = defaults.Indexing.ExternalSortChunkSize
		added = append(added, "indexing.external_sort_chunk_size")
	}
	if c.Scheduler.IdleInterval == "" {
		c.Scheduler.IdleInterval = defaults.Scheduler.IdleInterval
		added = append(added, "scheduler.idle_interval")
	}
	if c.Snapshot.Interval == "" {
		c.Snapshot.Interval = defaults.Snapshot.Interval
		added = append(added, "snapshot.interval")
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = defaults.Snapshot.Dir
		added = append(added, "snapshot.dir")
	}
	if c.Dump.Dir == "" {
		c.Dump.Dir = defaults.Dump.Dir
		added = append(added, "dump.dir")
	}
	if c.Daemon.Timeout == "" {
		c.Daemon.Timeout = defaults.Daemon.Timeout
		added = append(added, "daemon.timeout")
	}
	if c.Daemon.ShutdownGracePeriod == "" {
		c.Daemon.ShutdownGracePeriod = defaults.Daemon.ShutdownGracePeriod
		added = append(added, "daemon.shutdown_grace_period")
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
		added = append(added, "logging.max_size_mb")
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
		added = append(added, "logging.max_files")
	}

	return added
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
