// Package scandesk parses service configuration and starts the scan runtime.
package scandesk

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/opencourts/scandesk/internal/platform/config"
	"github.com/opencourts/scandesk/internal/platform/logging"
	scanhttp "github.com/opencourts/scandesk/internal/scan/api/http"
	"github.com/opencourts/scandesk/internal/scan/domain/aggregate"
	"github.com/opencourts/scandesk/internal/scan/domain/checkpoint"
	"github.com/opencourts/scandesk/internal/scan/domain/engine"
	"github.com/opencourts/scandesk/internal/scan/domain/replay"
	"github.com/opencourts/scandesk/internal/scan/projection"
	"github.com/opencourts/scandesk/internal/scan/storage/sqlite"
)

// Config holds scandesk service configuration.
type Config struct {
	Port              int    `env:"SCANDESK_PORT" envDefault:"8080"`
	EventsDBPath      string `env:"SCANDESK_EVENTS_DB" envDefault:"scandesk-events.db"`
	ProjectionsDBPath string `env:"SCANDESK_PROJECTIONS_DB" envDefault:"scandesk-projections.db"`
	LogLevel          string `env:"SCANDESK_LOG_LEVEL" envDefault:"info"`
	Environment       string `env:"SCANDESK_ENV" envDefault:"production"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.EventsDBPath, "events-db", cfg.EventsDBPath, "Path to the event journal database")
	fs.StringVar(&cfg.ProjectionsDBPath, "projections-db", cfg.ProjectionsDBPath, "Path to the read-model database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the scan envelope API service and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	logger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.Environment)

	registries, err := engine.BuildRegistries()
	if err != nil {
		return fmt.Errorf("build registries: %w", err)
	}

	eventStore, err := sqlite.OpenEvents(cfg.EventsDBPath, registries.Events)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer eventStore.Close()

	readStore, err := sqlite.OpenProjections(cfg.ProjectionsDBPath)
	if err != nil {
		return fmt.Errorf("open read-model store: %w", err)
	}
	defer readStore.Close()

	folder := &aggregate.Folder{Events: registries.Events}
	checkpoints := checkpoint.NewMemory()

	loader := engine.ReplayStateLoader{
		Events:      eventStore,
		Checkpoints: checkpoints,
		Snapshots:   checkpoints,
		Folder:      folder,
		StateFactory: func() any {
			return aggregate.State{}
		},
		Options: replay.Options{PageSize: 200},
	}

	journal := projection.Journal{
		Store: eventStore,
		Applier: projection.Applier{
			Events:    registries.Events,
			Envelopes: readStore,
			Documents: readStore,
		},
		Logger: logger,
	}

	handler := engine.Handler{
		Commands:    registries.Commands,
		Events:      registries.Events,
		Journal:     journal,
		Checkpoints: checkpoints,
		Snapshots:   checkpoints,
		StateLoader: loader,
		Decider:     engine.CoreDecider{},
		Applier:     folder,
		Now:         time.Now,
	}

	api := scanhttp.New(handler, readStore, readStore, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           scanhttp.NewRouter(api),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("scandesk listening", "addr", server.Addr, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
