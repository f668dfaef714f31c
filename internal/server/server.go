package server

import (
	"context"
	"log/slog"
	"net/http"

	"live-scores-service/internal/config"
	"live-scores-service/internal/detect"
	"live-scores-service/internal/dispatch"
	"live-scores-service/internal/httpapi"
	"live-scores-service/internal/metrics"
	"live-scores-service/internal/poller"
	"live-scores-service/internal/providers"
	"live-scores-service/internal/providers/espn"
	"live-scores-service/internal/store"
	"live-scores-service/internal/subs"
	"live-scores-service/internal/ws"
)

var metricsSetup = metrics.Setup

// Poller abstracts the poll loop for test injection.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}

// Dispatcher abstracts the dispatch loop for test injection.
type Dispatcher interface {
	Start(ctx context.Context)
	Stop()
}

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	snapshots     *store.SnapshotStore
	registry      *subs.Registry
	dispatcher    Dispatcher
	poller        Poller
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server with the default upstream provider wiring.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithProvider(cfg, logger, nil)
}

func newServerWithProvider(cfg config.Config, logger *slog.Logger, provider providers.ScoreboardProvider) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger)

	if provider == nil {
		provider = espn.NewClient(espn.Config{
			BaseURL: cfg.Upstream.BaseURL,
			Resolve: config.SportPath,
		})
	}
	provider = providers.NewLoggingProvider(provider, logger, recorder)

	snapshots := store.NewSnapshotStore()
	registry := subs.NewRegistry()
	detector := detect.New(snapshots, logger)
	dispatcher := dispatch.New(registry, snapshots, logger, recorder)

	plr := poller.New(poller.Config{
		Provider: provider,
		Detector: detector,
		WorkingSet: func() []string {
			return poller.BuildWorkingSet(cfg.BaselineSports, registry.SubscribedSports(), config.KnownSport)
		},
		Changes:      dispatcher.Changes(),
		Cycles:       dispatcher.Cycles(),
		Logger:       logger,
		Metrics:      recorder,
		Interval:     cfg.PollInterval,
		FetchTimeout: cfg.FetchTimeout,
	})

	httpSrv := buildHTTPServer(cfg, snapshots, registry, dispatcher, plr, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		snapshots:     snapshots,
		registry:      registry,
		dispatcher:    dispatcher,
		poller:        plr,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, dispatcher Dispatcher, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatcher,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildHTTPServer(cfg config.Config, snapshots *store.SnapshotStore, registry *subs.Registry, dispatcher *dispatch.Dispatcher, plr *poller.Poller, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	hub := ws.NewHub(ws.Config{
		Registry:   registry,
		Greeter:    dispatcher,
		Logger:     logger,
		Metrics:    recorder,
		KnownSport: config.KnownSport,
	})

	handler := httpapi.NewHandler(httpapi.HandlerConfig{
		Snapshots: snapshots,
		Logger:    logger,
		Status:    plr.Status,
		Sports:    config.SupportedSports(),
		Known:     config.KnownSport,
	})

	router := httpapi.NewRouter(handler, hub)
	wrapped := httpapi.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the dispatcher, poller, and HTTP servers, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.dispatcher.Start(ctx)
	s.poller.Start(ctx)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown stops producers before consumers: first the poller so no
// new changes enter the pipeline, then the dispatcher, then the listeners.
func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.poller.Stop(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("failed to stop poller", "error", err)
	}

	s.dispatcher.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
