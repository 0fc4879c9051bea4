package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	filestore "github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/persistence/file"
)

func newExportCmd(st *rootState) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current snapshot in flat-file format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := st.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			snap := c.GetTaskUseCase().Export(ctx)
			if out == "" {
				return filestore.Encode(cmd.OutOrStdout(), snap)
			}

			err = filestore.WriteAtomic(st.fs, out, func(w io.Writer) error {
				return filestore.Encode(w, snap)
			})
			if err != nil {
				return fmt.Errorf("failed to export to %s: %w", out, err)
			}
			return newPresenter("", cmd.OutOrStdout()).
				PresentSuccess(fmt.Sprintf("Exported %d items to %s", snap.Len(), out), nil)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored content with a flat-file snapshot",
		Long: `Replace the stored content with a flat-file snapshot.
The current snapshot is archived first when the storage driver supports it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := afero.ReadFile(st.fs, args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			snap, err := filestore.Decode(bytes.NewReader(data))
			if err != nil {
				return err
			}

			c, err := st.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			archived, ok, err := c.Archive(ctx)
			if err != nil {
				return err
			}
			if ok && archived != "" {
				Info("Archived previous snapshot to %s", archived)
			}

			if err := c.GetTaskUseCase().Import(ctx, snap); err != nil {
				return err
			}
			return newPresenter("", cmd.OutOrStdout()).
				PresentSuccess(fmt.Sprintf("Imported %d items", snap.Len()), nil)
		},
	}
	return cmd
}
