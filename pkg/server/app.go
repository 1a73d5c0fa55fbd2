package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/handler/api"
	"MarketPulse/internal/handler/ws"
	"MarketPulse/internal/scheduler"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	store      repository.Storage
	publisher  repository.Publisher
	orch       *usecase.Orchestrator
	hub        *ws.Hub
	handler    *api.PulseHandler
	sched      *scheduler.Scheduler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	store repository.Storage,
	publisher repository.Publisher,
	orch *usecase.Orchestrator,
	hub *ws.Hub,
	handler *api.PulseHandler,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		publisher: publisher,
		orch:      orch,
		hub:       hub,
		handler:   handler,
		sched:     sched,
	}
}

// Run starts the application and blocks until interrupted. A store that
// cannot initialize is fatal; everything downstream degrades instead.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.store.Init(ctx); err != nil {
		return fmt.Errorf("store init: %w", err)
	}

	if pub, ok := a.publisher.(applogger.Publisher); ok && a.cfg.Kafka.Enabled {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.Topic + ".errors",
			Publisher:      pub,
		})
	}

	go a.hub.Run(ctx)

	if err := a.registerJobs(); err != nil {
		return err
	}
	a.sched.Start(ctx)
	a.log.Info("scheduler started",
		applogger.Duration("social", a.cfg.Ingest.SocialInterval),
		applogger.Duration("financial", a.cfg.Ingest.FinancialInterval),
		applogger.Duration("product", a.cfg.Ingest.ProductInterval))

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Prime the store so the first websocket client sees data.
	go func() {
		if err := a.orch.RunAll(ctx); err != nil {
			a.log.Warn("initial ingestion pass incomplete", applogger.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// RunOnce executes a single full ingestion pass and exits. Used by the
// one-shot CLI mode.
func (a *App) RunOnce(ctx context.Context) error {
	if err := a.store.Init(ctx); err != nil {
		return fmt.Errorf("store init: %w", err)
	}
	defer a.closeResources()
	return a.orch.RunAll(ctx)
}

func (a *App) registerJobs() error {
	jobs := []scheduler.Job{
		{Name: "social_cycle", Interval: a.cfg.Ingest.SocialInterval, Run: a.orch.RunSocialCycle},
		{Name: "financial_cycle", Interval: a.cfg.Ingest.FinancialInterval, Run: a.orch.RunFinancialCycle},
		{Name: "product_cycle", Interval: a.cfg.Ingest.ProductInterval, Run: a.orch.RunProductCycle},
		{Name: "match_cycle", Interval: a.cfg.Ingest.MatchInterval, Run: a.orch.RunMatchCycle},
		{Name: "cleanup", Interval: a.cfg.Ingest.CleanupInterval, Run: a.orch.RunCleanup},
	}
	for _, j := range jobs {
		if err := a.sched.Register(j); err != nil {
			return err
		}
	}
	return nil
}

// shutdown gracefully stops all services: scheduler first so no new
// cycles start, then HTTP, then the store last.
func (a *App) shutdown() error {
	a.sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.closeResources()
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) closeResources() {
	a.log.RemoveCollector()
	if err := a.publisher.Close(); err != nil {
		a.log.Warn("publisher close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close error", applogger.Error(err))
	}
}
