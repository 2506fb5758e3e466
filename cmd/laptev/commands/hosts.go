package commands

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"laptev/internal/cli"
	"laptev/internal/crypto"
)

func hostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Manage known hosts and their passwords",
	}
	cmd.AddCommand(hostsAddCmd(), hostsRemoveCmd(), hostsListCmd())
	return cmd
}

func hostsAddCmd() *cobra.Command {
	var b64, file string
	cmd := &cobra.Command{
		Use:   "add <ip>",
		Short: "Store the password for a host",
		Long:  "Store the password for a host. Get it from `laptev-host config show --reveal` on the host.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := netip.ParseAddr(args[0])
			if err != nil {
				return fmt.Errorf("invalid host address %q", args[0])
			}
			if (b64 == "") == (file == "") {
				return errors.New("exactly one of --password-base64 or --password-file is required")
			}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				b64 = strings.TrimSpace(string(raw))
			}
			pw, err := crypto.FromB64(b64)
			if err != nil {
				return fmt.Errorf("password is not valid base64: %w", err)
			}
			if len(pw) == 0 {
				return errors.New("password is empty")
			}

			cfg.SetHost(addr, pw)
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("%s added, password fingerprint %s", addr.Unmap(), crypto.Fingerprint(pw))))
			return nil
		},
	}
	cmd.Flags().StringVar(&b64, "password-base64", "", "the host password, base64")
	cmd.Flags().StringVar(&file, "password-file", "", "file holding the base64 host password")
	return cmd
}

func hostsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <ip>",
		Short: "Forget a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := netip.ParseAddr(args[0])
			if err != nil {
				return fmt.Errorf("invalid host address %q", args[0])
			}
			if !cfg.RemoveHost(addr) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Warn(fmt.Sprintf("%s is not a known host", addr)))
				return nil
			}
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.OK(fmt.Sprintf("%s removed", addr)))
			return nil
		},
	}
}

func hostsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show known hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(cfg.Hosts))
			for h := range cfg.Hosts {
				names = append(names, h)
			}
			slices.Sort(names)
			for _, h := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", h, cfg.Hosts[h].Fingerprint())
			}
			return nil
		},
	}
}
