package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"laptev/internal/cli"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <host>",
		Short: "Connect to a host and report the session state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := connect(cmd, args[0])
			if err != nil {
				return err
			}
			defer ctrl.Disconnect()

			fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("%s: %s, %d recordings",
				ctrl.Address(), ctrl.State(), len(ctrl.Recordings()))))
			return nil
		},
	}
}
