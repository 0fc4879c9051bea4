package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/tasktrack/internal/adapter/presenter"
	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	"github.com/YoshitsuguKoike/tasktrack/internal/app/config"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	infraConfig "github.com/YoshitsuguKoike/tasktrack/internal/infra/config"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/di"
	"github.com/YoshitsuguKoike/tasktrack/internal/interface/cli/version"
)

// rootState is shared by all subcommands of one root command
type rootState struct {
	fs       afero.Fs
	config   config.Config
	logger   app.Logger
	logLevel string
}

// NewRoot builds the tasktrack command tree on the OS filesystem
func NewRoot() *cobra.Command {
	return newRoot(afero.NewOsFs())
}

func newRoot(fs afero.Fs) *cobra.Command {
	st := &rootState{fs: fs}

	cmd := &cobra.Command{
		Use:           "tasktrack",
		Short:         "Track tasks, epics and subtasks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Priority: ENV > setting.yaml > defaults
			cfg, err := infraConfig.LoadSettings(st.fs, infraConfig.ResolveHome())
			if err != nil {
				return err
			}
			st.config = cfg

			level := cfg.LogLevel()
			if st.logLevel != "" {
				level = st.logLevel
			}
			st.logger = InitializeLoggers(InitGlobalLogger(level))
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newServeCmd(st))
	cmd.AddCommand(newExportCmd(st))
	cmd.AddCommand(newImportCmd(st))
	cmd.AddCommand(newScheduleCmd(st))
	cmd.AddCommand(newHistoryCmd(st))
	cmd.AddCommand(newListCmd(st))
	cmd.AddCommand(version.NewCommand())
	return cmd
}

// openContainer wires the application from configuration and loads the
// persisted snapshot
func (st *rootState) openContainer(ctx context.Context) (*di.Container, error) {
	cfg := di.ConfigFrom(st.config)
	cfg.FS = st.fs
	cfg.Logger = st.logger

	c, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return c, nil
}

func newPresenter(format string, out io.Writer) output.Presenter {
	if format == "json" {
		return presenter.NewJSONPresenter(out)
	}
	return presenter.NewCLITaskPresenter(out)
}

// setupSignalHandler cancels the returned context on Ctrl+C or SIGTERM
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
