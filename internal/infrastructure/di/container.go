package di

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/tasktrack/internal/adapter/controller/api"
	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	appconfig "github.com/YoshitsuguKoike/tasktrack/internal/app/config"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/input"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/service"
	taskusecase "github.com/YoshitsuguKoike/tasktrack/internal/application/usecase/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/memory"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/metrics"
	filestore "github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/persistence/file"
	sqlitestore "github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/persistence/sqlite"
)

// Container is the DI container that holds all dependencies
// This implements manual dependency injection for Clean Architecture
type Container struct {
	// Infrastructure Layer - Storage
	fs            afero.Fs
	db            *sql.DB
	snapshotStore output.SnapshotStore
	archiver      archiver

	// Infrastructure Layer - Metrics
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Application Layer
	manager     *taskusecase.Manager
	taskService *service.TaskService

	// Adapter Layer
	server *api.Server

	config Config
}

// archiver is implemented by stores able to keep a copy of the snapshot
// they are about to replace
type archiver interface {
	Archive(ctx context.Context) (string, error)
}

// Config holds configuration for the container
type Config struct {
	StorageDriver   string   // file, sqlite or memory (default: memory)
	StoragePath     string   // snapshot file or database path
	FS              afero.Fs // filesystem for the file driver (default: OS)
	ShutdownTimeout time.Duration
	Logger          app.Logger
}

// ConfigFrom maps application configuration onto container configuration
func ConfigFrom(cfg appconfig.Config) Config {
	return Config{
		StorageDriver:   cfg.StorageDriver(),
		StoragePath:     cfg.StoragePath(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
	}
}

// NewContainer creates and initializes the DI container
func NewContainer(ctx context.Context, config Config) (*Container, error) {
	c := &Container{config: config}

	if c.config.FS == nil {
		c.config.FS = afero.NewOsFs()
	}
	if c.config.Logger == nil {
		c.config.Logger = app.GetLogger()
	}
	if c.config.StorageDriver == "" {
		c.config.StorageDriver = appconfig.DriverMemory
	}

	if err := c.initializeInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	c.initializeApplication()
	c.initializeAdapters()

	return c, nil
}

func (c *Container) initializeInfrastructure(ctx context.Context) error {
	c.fs = c.config.FS

	switch c.config.StorageDriver {
	case appconfig.DriverFile:
		if c.config.StoragePath == "" {
			return fmt.Errorf("file storage requires a path")
		}
		store := filestore.NewSnapshotStore(c.fs, c.config.StoragePath)
		c.snapshotStore = store
		c.archiver = store
	case appconfig.DriverSQLite:
		if c.config.StoragePath == "" {
			return fmt.Errorf("sqlite storage requires a path")
		}
		// The driver always opens the database on the OS filesystem
		if err := os.MkdirAll(filepath.Dir(c.config.StoragePath), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := sqlitestore.Open(ctx, c.config.StoragePath)
		if err != nil {
			return err
		}
		c.db = db
		c.snapshotStore = sqlitestore.NewSnapshotStore(db)
	case appconfig.DriverMemory:
		// nothing persisted
	default:
		return fmt.Errorf("unknown storage driver %q", c.config.StorageDriver)
	}

	c.registry, c.metrics = metrics.NewRegistry()
	return nil
}

func (c *Container) initializeApplication() {
	c.manager = taskusecase.NewManager(
		memory.NewEntityStore(),
		memory.NewPriorityIndex(),
		memory.NewHistoryTracker(memory.DefaultHistoryCapacity),
	)
	c.manager.SetLogger(c.config.Logger)

	// A nil store keeps the service purely in memory
	c.taskService = service.NewTaskService(c.manager, c.snapshotStore, c.metrics)
}

func (c *Container) initializeAdapters() {
	c.server = api.NewServer(c.taskService, api.Options{
		Logger:          c.config.Logger,
		Metrics:         c.metrics,
		Gatherer:        c.registry,
		ShutdownTimeout: c.config.ShutdownTimeout,
	})
}

// GetTaskUseCase returns the task use case
func (c *Container) GetTaskUseCase() input.TaskUseCase {
	return c.taskService
}

// GetServer returns the HTTP API server
func (c *Container) GetServer() *api.Server {
	return c.server
}

// GetFS returns the filesystem used by file storage
func (c *Container) GetFS() afero.Fs {
	return c.fs
}

// Start loads the persisted snapshot into memory
func (c *Container) Start(ctx context.Context) error {
	return c.taskService.Load(ctx)
}

// Archive keeps a copy of the current snapshot. ok is false when the
// storage driver does not support archiving.
func (c *Container) Archive(ctx context.Context) (path string, ok bool, err error) {
	if c.archiver == nil {
		return "", false, nil
	}
	path, err = c.archiver.Archive(ctx)
	return path, true, err
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
