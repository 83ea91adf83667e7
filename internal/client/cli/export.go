package cli

import (
	"fmt"

	"github.com/dmitrijs2005/inventory/internal/filex"
	"github.com/dmitrijs2005/inventory/internal/netx"
	"github.com/spf13/cobra"
)

// downloadPresignedURL is replaced in tests.
var downloadPresignedURL = netx.DownloadPresignedURL

func (a *App) exportCmd() *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of all items to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Export(cmd.Context())
			if err != nil {
				return err
			}

			if save != "" {
				f, err := filex.CreateWithDirs(save)
				if err != nil {
					return err
				}
				if _, err := downloadPresignedURL(cmd.Context(), res.URL, f); err != nil {
					_ = f.Close()
					return fmt.Errorf("download snapshot: %w", err)
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			return a.render(res)
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "also download the snapshot to this file")

	return cmd
}
