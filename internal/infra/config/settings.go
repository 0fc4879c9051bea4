package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/tasktrack/internal/app/config"
)

// SettingFile is the settings file name inside the home directory
const SettingFile = "setting.yaml"

// RawSettings mirrors setting.yaml. Pointer fields tell "unset" apart from
// zero values so defaults only fill what the file leaves out.
type RawSettings struct {
	Home    *string         `yaml:"home"`
	Storage StorageSettings `yaml:"storage"`
	HTTP    HTTPSettings    `yaml:"http"`
	Log     LogSettings     `yaml:"log"`
}

type StorageSettings struct {
	Driver *string `yaml:"driver"`
	Path   *string `yaml:"path"`
}

type HTTPSettings struct {
	Address            *string `yaml:"address"`
	ShutdownTimeoutSec *int    `yaml:"shutdown_timeout_sec"`
}

type LogSettings struct {
	Level *string `yaml:"level"`
}

// LoadSettings loads configuration from setting.yaml in baseDir.
// Priority: ENV > setting.yaml > defaults
func LoadSettings(fsys afero.Fs, baseDir string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	yamlPath := filepath.Join(baseDir, SettingFile)
	data, err := afero.ReadFile(fsys, yamlPath)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", yamlPath, err)
		}
		configSource = "yaml"
		settingPath = yamlPath
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", yamlPath, err)
	}

	if settings.Home == nil {
		settings.Home = &baseDir
	}

	applyEnv(settings, lookupEnv)
	applyDefaults(settings)

	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", yamlPath, err)
	}

	return buildAppConfig(settings, configSource, settingPath), nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings) {
	if settings.Home == nil {
		v := DefaultHome
		settings.Home = &v
	}
	if settings.Storage.Driver == nil {
		v := config.DriverFile
		settings.Storage.Driver = &v
	}
	if settings.Storage.Path == nil {
		v := defaultStoragePath(*settings.Storage.Driver)
		settings.Storage.Path = &v
	}
	if settings.HTTP.Address == nil {
		v := ":8080"
		settings.HTTP.Address = &v
	}
	if settings.HTTP.ShutdownTimeoutSec == nil {
		v := 10
		settings.HTTP.ShutdownTimeoutSec = &v
	}
	if settings.Log.Level == nil {
		v := "warn"
		settings.Log.Level = &v
	}
}

func defaultStoragePath(driver string) string {
	switch driver {
	case config.DriverSQLite:
		return "tasks.db"
	case config.DriverMemory:
		return ""
	default:
		return "tasks.csv"
	}
}

func validate(settings *RawSettings) error {
	switch *settings.Storage.Driver {
	case config.DriverFile, config.DriverSQLite, config.DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", *settings.Storage.Driver)
	}
	if *settings.HTTP.ShutdownTimeoutSec < 0 {
		return fmt.Errorf("shutdown timeout must not be negative")
	}
	switch strings.ToLower(*settings.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", *settings.Log.Level)
	}
	return nil
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(settings *RawSettings, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(
		*settings.Home,
		*settings.Storage.Driver,
		*settings.Storage.Path,
		*settings.HTTP.Address,
		*settings.HTTP.ShutdownTimeoutSec,
		strings.ToLower(*settings.Log.Level),
		configSource,
		settingPath,
	)
}

// CreateDefaultSettings returns the content of a default setting.yaml
func CreateDefaultSettings() []byte {
	settings := &RawSettings{}
	applyDefaults(settings)

	data, _ := yaml.Marshal(settings)
	return data
}
