package commands

import (
	"github.com/spf13/cobra"

	"laptev/internal/app"
	"laptev/internal/cli"
	"laptev/internal/client"
	"laptev/internal/config"
	"laptev/internal/log"
)

var (
	env        app.Env
	envErr     error
	configPath string
	cfg        *config.Client
	backend    *log.Backend
)

func Execute() {
	env, envErr = app.LoadEnv()

	root := &cobra.Command{
		Use:           "laptev",
		Short:         "View and manage recordings on laptev hosts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			var err error
			if cfg, err = config.LoadClientFile(configPath); err != nil {
				return err
			}
			if env.LogLevel != "" {
				cfg.Logging.Level = env.LogLevel
			}
			backend, err = cfg.Logging.Backend()
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", env.ClientConfig, "viewer config file")

	root.AddCommand(hostsCmd(), statusCmd(), listCmd(), downloadCmd(), deleteCmd())
	cli.ExecuteWithFang(root)
}

// connect opens an authenticated session with address and loads its
// recording index. Each network call is bounded by the configured timeout.
func connect(cmd *cobra.Command, address string) (*client.Controller, error) {
	ctrl := app.NewController(configPath, cfg, backend)
	if err := ctrl.Connect(cmd.Context(), address); err != nil {
		ctrl.Disconnect()
		return nil, err
	}
	return ctrl, nil
}
