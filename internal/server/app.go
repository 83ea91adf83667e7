// Package server wires the inventory application together: it opens the
// configured storage backend, prepares its schema and runs the HTTP API and
// the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/dmitrijs2005/inventory/internal/server/config"
	"github.com/dmitrijs2005/inventory/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/inventory/internal/server/rest"
	"github.com/dmitrijs2005/inventory/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/inventory/internal/server/grpc"
)

// openRepositoryManager is replaced in tests.
var openRepositoryManager = repomanager.Open

type App struct {
	config     *config.Config
	logger     logging.Logger
	store      repomanager.RepositoryManager
	httpServer *rest.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	store, err := openRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := store.RunMigrations(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("storage migration error: %w", err)
	}

	is := services.NewItemService(store.Items(), logger)
	es := services.NewExportService(store.Items(), c, logger)

	hs, err := rest.NewServer(c.EndpointAddrHTTP, c.ShutdownTimeout, logger, store, is, es)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	gsrv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, store, c.HealthCheckInterval)

	return &App{config: c, logger: logger, store: store, httpServer: hs, grpcServer: gsrv}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a signal arrives or either server
// fails. The storage connection is closed before returning.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageType)

	app.initSignalHandler(ctx, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.httpServer.Run(gctx)
	})
	g.Go(func() error {
		return app.grpcServer.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server error", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if cerr := app.store.Close(closeCtx); cerr != nil {
		app.logger.Error(ctx, "storage close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
