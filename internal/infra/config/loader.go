package config

import "os"

// DefaultHome is used when TASKTRACK_HOME is unset
const DefaultHome = ".tasktrack"

// Environment variables recognised by the loader
const (
	EnvHome          = "TASKTRACK_HOME"
	EnvStorageDriver = "TASKTRACK_STORAGE_DRIVER"
	EnvStoragePath   = "TASKTRACK_STORAGE_PATH"
	EnvHTTPAddress   = "TASKTRACK_HTTP_ADDRESS"
	EnvLogLevel      = "TASKTRACK_LOG_LEVEL"
)

// ResolveHome returns TASKTRACK_HOME or the default home directory
func ResolveHome() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	return DefaultHome
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

// applyEnv overrides file values with non-empty environment variables
func applyEnv(settings *RawSettings, lookup func(string) (string, bool)) {
	set := func(key string, dst **string) {
		if v, ok := lookup(key); ok {
			*dst = &v
		}
	}
	set(EnvStorageDriver, &settings.Storage.Driver)
	set(EnvStoragePath, &settings.Storage.Path)
	set(EnvHTTPAddress, &settings.HTTP.Address)
	set(EnvLogLevel, &settings.Log.Level)
}
