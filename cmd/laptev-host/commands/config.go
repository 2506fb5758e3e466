package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"laptev/internal/cli"
	"laptev/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the host config",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a new config with a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to replace it", configPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			cfg, err := config.GenerateHost()
			if err != nil {
				return err
			}
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("wrote %s", configPath)))
			fmt.Fprintf(cmd.OutOrStdout(), "password fingerprint: %s\n", cfg.Password.Fingerprint())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing config, invalidating the old password")
	return cmd
}

func configShowCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadHostFile(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if reveal {
				// The viewer needs this value for `laptev hosts add`.
				text, _ := cfg.Password.MarshalText()
				fmt.Fprintf(out, "password: %s\n", text)
				return nil
			}
			fmt.Fprintf(out, "password fingerprint: %s\n\n", cfg.Password.Fingerprint())
			shown := *cfg
			shown.Password = nil
			return toml.NewEncoder(out).Encode(&shown)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the base64 password instead of the config")
	return cmd
}
