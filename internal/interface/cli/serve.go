package cli

import (
	"github.com/spf13/cobra"
)

func newServeCmd(st *rootState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := setupSignalHandler(cmd.Context())
			defer stop()

			c, err := st.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			if addr == "" {
				addr = st.config.HTTPAddress()
			}
			Info("Storage: %s %s", st.config.StorageDriver(), st.config.StoragePath())
			return c.GetServer().ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from http.address)")
	return cmd
}
