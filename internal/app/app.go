package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"gopkg.in/op/go-logging.v1"

	"laptev/internal/config"
	"laptev/internal/instrument"
	"laptev/internal/log"
	"laptev/internal/services/host"
	"laptev/internal/services/retention"
	"laptev/internal/store"
	"laptev/internal/transport/stream"
	"laptev/internal/transport/web"
)

const shutdownTimeout = 5 * time.Second

// Host is the running host process.
type Host struct {
	path    string
	cfg     *config.Host
	backend *log.Backend
	log     *logging.Logger

	Sessions   *store.SessionStore
	Recordings *store.RecordingFileStore
	Service    *host.Service

	sweeper *retention.Sweeper
	watcher *config.Watcher

	httpLn     net.Listener
	streamLn   net.Listener
	httpSrv    *http.Server
	streamSrv  *stream.Server
	metricsSrv *http.Server

	errCh    chan error
	haltOnce sync.Once
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithListeners serves on pre-opened listeners instead of the configured
// ports. A nil stream listener leaves the stream binding to the config.
func WithListeners(httpLn, streamLn net.Listener) HostOption {
	return func(h *Host) {
		h.httpLn = httpLn
		h.streamLn = streamLn
	}
}

// NewHost builds the host runtime for cfg, loaded from path.
func NewHost(path string, cfg *config.Host, backend *log.Backend, opts ...HostOption) *Host {
	h := &Host{
		path:    path,
		cfg:     cfg,
		backend: backend,
		log:     backend.GetLogger("laptev-host"),
		errCh:   make(chan error, 3),
	}
	for _, o := range opts {
		o(h)
	}

	h.Sessions = store.NewSessionStore(cfg.SessionLifetime(), store.WithMaxAttempts(cfg.MaxAuthAttempts))
	h.Recordings = store.NewRecordingFileStore(cfg.DataDir)
	h.Service = host.New(h.Sessions, h.Recordings, policy(cfg), backend.GetLogger("host"))
	h.sweeper = retention.New(h.Recordings, h.Sessions, cfg.Retention(), backend.GetLogger("retention"))
	return h
}

func policy(cfg *config.Host) host.Policy {
	return host.Policy{Password: cfg.Password, SyncLimit: cfg.SyncLimit}
}

// Start opens the listeners and launches every background task.
func (h *Host) Start() error {
	var err error
	if h.httpLn == nil {
		if h.httpLn, err = net.Listen("tcp", fmt.Sprintf(":%d", h.cfg.Port)); err != nil {
			return fmt.Errorf("listening for http: %w", err)
		}
	}
	if h.streamLn == nil && h.cfg.StreamPort != 0 {
		if h.streamLn, err = net.Listen("tcp", fmt.Sprintf(":%d", h.cfg.StreamPort)); err != nil {
			_ = h.httpLn.Close()
			return fmt.Errorf("listening for stream: %w", err)
		}
	}

	h.httpSrv = &http.Server{
		Handler:           web.NewHandler(h.Service, h.backend.GetLogger("web")),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          h.backend.GetGoLogger("web", "DEBUG"),
	}
	go h.serve("http", func() error { return h.httpSrv.Serve(h.httpLn) })
	h.log.Noticef("http listening on %s", h.httpLn.Addr())

	if h.streamLn != nil {
		h.streamSrv = stream.NewServer(h.Service, h.backend.GetLogger("stream"), 0)
		h.streamSrv.Serve(h.streamLn)
		h.log.Noticef("stream listening on %s", h.streamLn.Addr())
	}

	if h.cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", instrument.Handler())
		h.metricsSrv = &http.Server{Addr: h.cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go h.serve("metrics", h.metricsSrv.ListenAndServe)
		h.log.Noticef("metrics listening on %s", h.cfg.MetricsAddress)
	}

	h.sweeper.Start()

	if h.path != "" {
		w, err := config.WatchHost(h.path, h.backend.GetLogger("config"), h.apply)
		if err != nil {
			h.log.Warningf("config reload disabled: %v", err)
		} else {
			h.watcher = w
		}
	}
	return nil
}

func (h *Host) serve(name string, fn func() error) {
	if err := fn(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.log.Errorf("%s server: %v", name, err)
		h.errCh <- fmt.Errorf("%s server: %w", name, err)
	}
}

// apply swaps in the reloadable parts of a changed config.
func (h *Host) apply(c *config.Host) {
	if c.Port != h.cfg.Port || c.StreamPort != h.cfg.StreamPort || c.MetricsAddress != h.cfg.MetricsAddress {
		h.log.Warning("listener changes take effect after a restart")
	}
	if c.DataDir != h.cfg.DataDir {
		h.log.Warning("DataDir changes take effect after a restart")
	}
	h.Service.UpdatePolicy(policy(c))
	h.Sessions.Configure(c.SessionLifetime(), c.MaxAuthAttempts)
	h.sweeper.SetRetention(c.Retention())
}

// HTTPAddr returns the bound HTTP address once started.
func (h *Host) HTTPAddr() net.Addr { return h.httpLn.Addr() }

// StreamAddr returns the bound stream address, or nil when disabled.
func (h *Host) StreamAddr() net.Addr {
	if h.streamLn == nil {
		return nil
	}
	return h.streamLn.Addr()
}

// Errors delivers fatal listener failures.
func (h *Host) Errors() <-chan error { return h.errCh }

// Rotate reopens the log file.
func (h *Host) Rotate() error { return h.backend.Rotate() }

// Shutdown stops every listener and background task. Safe to call twice.
func (h *Host) Shutdown() {
	h.haltOnce.Do(func() {
		h.log.Notice("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if h.watcher != nil {
			h.watcher.Halt()
		}
		if h.httpSrv != nil {
			_ = h.httpSrv.Shutdown(ctx)
		}
		if h.metricsSrv != nil {
			_ = h.metricsSrv.Shutdown(ctx)
		}
		if h.streamSrv != nil {
			h.streamSrv.Halt()
		}
		h.sweeper.Halt()
	})
}
