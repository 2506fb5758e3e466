package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"laptev/internal/cli"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <host> <id>...",
		Short: "Remove recordings from the host",
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
				if err := ctrl.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("deleted %s", id)))
			}
			return nil
		},
	}
}
