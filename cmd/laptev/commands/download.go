package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"laptev/internal/cli"
	"laptev/internal/domain"
)

func downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <host> <id>...",
		Short: "Fetch recordings into the download dir",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			ctrl, err := connect(cmd, args[0])
			if err != nil {
				return err
			}
			defer ctrl.Disconnect()

			for _, id := range ids {
				path, err := ctrl.Download(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("download %s: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.OK(path))
			}
			return nil
		},
	}
}

func parseIDs(args []string) ([]domain.RecordingID, error) {
	ids := make([]domain.RecordingID, 0, len(args))
	for _, a := range args {
		id, err := domain.ParseRecordingID(a)
		if err != nil {
			return nil, fmt.Errorf("invalid recording id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
