package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"laptev/internal/cli"
	"laptev/internal/config"
	"laptev/internal/domain"
	"laptev/internal/store"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <id> <thumbnail> <video>",
		Short: "Add a recording to the data dir",
		Long:  "Copy a thumbnail and video into the data dir under the given id (the recording's unix start time).",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseRecordingID(args[0])
			if err != nil {
				return fmt.Errorf("invalid recording id %q: %w", args[0], err)
			}
			cfg, err := config.LoadHostFile(configPath)
			if err != nil {
				return err
			}
			thumb, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			video, err := os.ReadFile(args[2])
			if err != nil {
				return err
			}
			if err := store.NewRecordingFileStore(cfg.DataDir).Put(cmd.Context(), id, thumb, video); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("imported %s (%d byte video)", id, len(video))))
			return nil
		},
	}
}
