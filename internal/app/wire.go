package app

import (
	"net/http"

	"laptev/internal/client"
	"laptev/internal/config"
	"laptev/internal/domain"
	"laptev/internal/log"
	"laptev/internal/transport/stream"
	"laptev/internal/transport/web"
)

// NewDialer builds the transport selected by cfg.
func NewDialer(cfg *config.Client) domain.Dialer {
	if cfg.Transport == config.TransportStream {
		return stream.Dialer{Timeout: cfg.TimeoutDuration()}
	}
	return web.Dialer{HTTP: &http.Client{Timeout: cfg.TimeoutDuration()}}
}

// NewController builds the viewer's session controller from the config
// loaded from path.
func NewController(path string, cfg *config.Client, backend *log.Backend) *client.Controller {
	return client.New(NewDialer(cfg), cfg, cfg.DownloadPath(path), backend.GetLogger("client"))
}
