package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/input"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/metrics"
)

// DefaultShutdownTimeout bounds graceful shutdown when Options leaves it unset
const DefaultShutdownTimeout = 10 * time.Second

// Options configures a Server
type Options struct {
	Logger          app.Logger
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer // serves /metrics when set
	ShutdownTimeout time.Duration
}

// Server is the task tracker HTTP API
type Server struct {
	tasks           input.TaskUseCase
	router          *gin.Engine
	logger          app.Logger
	metrics         *metrics.Metrics
	shutdownTimeout time.Duration
}

// NewServer creates a new API server over tasks
func NewServer(tasks input.TaskUseCase, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = app.GetLogger()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	s := &Server{
		tasks:           tasks,
		router:          router,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		shutdownTimeout: opts.ShutdownTimeout,
	}

	router.Use(gin.Recovery(), requestID(), s.accessLog())
	router.NoRoute(func(c *gin.Context) { notFound(c) })
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
	})

	router.GET("/health", s.handleHealth)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.HandlerFor(opts.Gatherer)))
	}

	tasksGroup := router.Group("/tasks")
	{
		tasksGroup.GET("", s.handleListTasks)
		tasksGroup.POST("", s.handleCreateTask)
		tasksGroup.DELETE("", s.handleDeleteAllTasks)
		tasksGroup.GET("/:id", s.handleGetTask)
		tasksGroup.POST("/:id", s.handleUpdateTask)
		tasksGroup.DELETE("/:id", s.handleDeleteTask)
	}

	epics := router.Group("/epics")
	{
		epics.GET("", s.handleListEpics)
		epics.POST("", s.handleCreateEpic)
		epics.DELETE("", s.handleDeleteAllEpics)
		epics.GET("/:id", s.handleGetEpic)
		epics.POST("/:id", s.handleUpdateEpic)
		epics.DELETE("/:id", s.handleDeleteEpic)
		epics.GET("/:id/subtasks", s.handleEpicSubtasks)
	}

	subtasks := router.Group("/subtasks")
	{
		subtasks.GET("", s.handleListSubtasks)
		subtasks.POST("", s.handleCreateSubtask)
		subtasks.DELETE("", s.handleDeleteAllSubtasks)
		subtasks.GET("/:id", s.handleGetSubtask)
		subtasks.POST("/:id", s.handleUpdateSubtask)
		subtasks.DELETE("/:id", s.handleDeleteSubtask)
	}

	router.GET("/history", s.handleHistory)
	router.GET("/prioritized", s.handlePrioritized)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("HTTP server listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
