package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"laptev/internal/cli"
	"laptev/internal/store"
)

func listCmd() *cobra.Command {
	var (
		page       int
		thumbnails string
	)
	cmd := &cobra.Command{
		Use:   "list <host>",
		Short: "Show the host's recordings, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := connect(cmd, args[0])
			if err != nil {
				return err
			}
			defer ctrl.Disconnect()

			recs, pages := cli.Page(ctrl.Recordings(), page, cfg.PageSize)
			if page > 1 && len(recs) == 0 {
				return fmt.Errorf("page %d is out of range (%d pages)", page, pages)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRecordings(recs, page, pages, cfg.Location()))

			if thumbnails == "" {
				return nil
			}
			if err := os.MkdirAll(thumbnails, 0o700); err != nil {
				return err
			}
			for _, r := range recs {
				path := filepath.Join(thumbnails, r.ID.String()+store.ThumbnailExt)
				if err := store.WriteFileAtomic(path, r.Thumbnail, 0o600); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("wrote %d thumbnails to %s", len(recs), thumbnails)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	cmd.Flags().StringVar(&thumbnails, "thumbnails", "", "also write the page's thumbnails to this directory")
	return cmd
}
