package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mand0ng/fitness-app-backend/internal/data/db"
	"github.com/mand0ng/fitness-app-backend/internal/http"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *http.Server

	shutdownOTel func(context.Context) error
}

// New connects every dependency and wires the service graph. Nothing runs
// until Run is called.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.Init(log)
	}
	shutdownOTel := observability.InitOTel(ctx, log, cfg.Otel)

	dbService, err := db.Open(log, cfg.DB)
	if err != nil {
		_ = shutdownOTel(ctx)
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(dbService.DB()); err != nil {
			_ = dbService.Close()
			_ = shutdownOTel(ctx)
			return nil, err
		}
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = shutdownOTel(ctx)
		return nil, err
	}

	reposet := wireRepos(dbService.DB(), log)
	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		_ = shutdownOTel(ctx)
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, cfg, reposet)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbService,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then stops accepting requests and
// waits up to ShutdownTimeout for in-flight jobs.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Services.MemoryRegistry != nil {
		a.Services.MemoryRegistry.StartJanitor(gctx)
	}
	if a.Cfg.PromptsWatch {
		if err := a.Services.Prompts.Watch(gctx); err != nil {
			a.Log.Warn("Prompt watcher not started", "error", err)
		}
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		a.Log.Info("Shutting down HTTP server")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("HTTP shutdown incomplete", "error", err)
		}
		a.drainJobs(shutdownCtx)
		return nil
	})
	return g.Wait()
}

func (a *App) drainJobs(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.Services.Runner.Wait()
		close(done)
	}()
	start := time.Now()
	select {
	case <-done:
		a.Log.Info("Jobs drained", "waited_ms", time.Since(start).Milliseconds())
	case <-ctx.Done():
		a.Log.Warn("Exiting with jobs still running")
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("Flushing traces failed", "error", err)
		}
	}
	a.Log.Sync()
}
