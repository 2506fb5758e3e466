package commands

import (
	"github.com/spf13/cobra"

	"laptev/internal/app"
	"laptev/internal/cli"
	"laptev/internal/config"
	"laptev/internal/log"
)

var (
	env        app.Env
	envErr     error
	configPath string
)

func Execute() {
	env, envErr = app.LoadEnv()

	root := &cobra.Command{
		Use:           "laptev-host",
		Short:         "Serve camera recordings to authenticated viewers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return envErr
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", env.HostConfig, "host config file")

	root.AddCommand(serveCmd(), configCmd(), importCmd())
	cli.ExecuteWithFang(root)
}

// backend opens logging for cfg, honouring LAPTEV_LOG_LEVEL.
func backend(cfg *config.Host) (*log.Backend, error) {
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	return cfg.Logging.Backend()
}
