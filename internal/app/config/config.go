package config

import (
	"path/filepath"
	"time"
)

// Storage drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (YAML, ENV, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	Home() string // Base directory (TASKTRACK_HOME)

	// Storage
	StorageDriver() string // file, sqlite or memory (TASKTRACK_STORAGE_DRIVER)
	StoragePath() string   // Snapshot file or database path (TASKTRACK_STORAGE_PATH)

	// HTTP
	HTTPAddress() string            // Listen address (TASKTRACK_HTTP_ADDRESS)
	ShutdownTimeout() time.Duration // Graceful shutdown budget

	LogLevel() string // debug, info, warn or error (TASKTRACK_LOG_LEVEL)

	// Metadata
	ConfigSource() string // "yaml" or "default"
	SettingPath() string  // Path to setting.yaml if loaded from file
}

// AppConfig is the concrete implementation of Config
type AppConfig struct {
	home               string
	storageDriver      string
	storagePath        string
	httpAddress        string
	shutdownTimeoutSec int
	logLevel           string
	configSource       string
	settingPath        string
}

// NewAppConfig creates a new AppConfig. A relative storage path is resolved
// against home.
func NewAppConfig(
	home, storageDriver, storagePath, httpAddress string,
	shutdownTimeoutSec int,
	logLevel, configSource, settingPath string,
) *AppConfig {
	if storagePath != "" && !filepath.IsAbs(storagePath) {
		storagePath = filepath.Join(home, storagePath)
	}
	return &AppConfig{
		home:               home,
		storageDriver:      storageDriver,
		storagePath:        storagePath,
		httpAddress:        httpAddress,
		shutdownTimeoutSec: shutdownTimeoutSec,
		logLevel:           logLevel,
		configSource:       configSource,
		settingPath:        settingPath,
	}
}

func (c *AppConfig) Home() string          { return c.home }
func (c *AppConfig) StorageDriver() string { return c.storageDriver }
func (c *AppConfig) StoragePath() string   { return c.storagePath }
func (c *AppConfig) HTTPAddress() string   { return c.httpAddress }
func (c *AppConfig) LogLevel() string      { return c.logLevel }
func (c *AppConfig) ConfigSource() string  { return c.configSource }
func (c *AppConfig) SettingPath() string   { return c.settingPath }

// ShutdownTimeout returns the graceful shutdown budget as a Duration
func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.shutdownTimeoutSec) * time.Second
}
