package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/lilleviklofoten/webcamsweep/internal/controllers/restserver"
	"github.com/lilleviklofoten/webcamsweep/internal/log"
	"github.com/lilleviklofoten/webcamsweep/pkg/config"
	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Calculator builds the window calculator for the configured site.
func (a *App) Calculator() (*solar.Calculator, error) {
	site, err := a.configProvider.GetSite()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	sc, err := site.SolarConfig()
	if err != nil {
		return nil, err
	}
	return solar.NewCalculator(sc), nil
}

// Run starts the browsing API and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rest, err := restserver.NewController(ctx, &wg, a.configProvider, a.logger.Named("rest"))
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
