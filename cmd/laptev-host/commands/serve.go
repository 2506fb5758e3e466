package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"laptev/internal/app"
	"laptev/internal/config"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the host until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, created, err := config.LoadOrGenerateHost(configPath)
			if err != nil {
				return err
			}
			b, err := backend(cfg)
			if err != nil {
				return err
			}
			log := b.GetLogger("main")
			if created {
				log.Noticef("Wrote new config %s, password fingerprint %s", configPath, cfg.Password.Fingerprint())
			}

			h := app.NewHost(configPath, cfg, b)
			if err := h.Start(); err != nil {
				return err
			}
			defer h.Shutdown()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(sigCh)

			for {
				select {
				case sig := <-sigCh:
					if sig == syscall.SIGHUP {
						if err := h.Rotate(); err != nil {
							log.Errorf("Failed to rotate log: %v", err)
						}
						continue
					}
					log.Noticef("Received %v, shutting down", sig)
					return nil
				case err := <-h.Errors():
					return fmt.Errorf("listener failed: %w", err)
				}
			}
		},
	}
}
