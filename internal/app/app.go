package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"attentionos/internal/analytics"
	"attentionos/internal/database"
	"attentionos/internal/source"
	"attentionos/pkg/config"
	"attentionos/pkg/logger"
)

// App holds the analytics stack shared by the server and the CLI
type App struct {
	Config  *config.Config
	DB      *database.DB
	Repo    *database.Repository
	Service *analytics.Service

	health func(ctx context.Context) error
	logger *logger.ColoredLogger

	closers   []func()
	closeOnce sync.Once
	closeErr  error
}

// New builds the session source, engine and service described by cfg.
// The sqlite source also seeds the achievement catalog and records unlocks.
func New(cfg *config.Config) (*App, error) {
	return newApp(cfg, analytics.SystemClock{})
}

func newApp(cfg *config.Config, clock analytics.Clock) (*App, error) {
	a := &App{
		Config: cfg,
		logger: logger.ServerLogger,
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	catalog := analytics.DefaultCatalog()
	if cfg.Analytics.CatalogFile != "" {
		catalog, err = analytics.LoadCatalog(cfg.Analytics.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
		}
		a.logger.Info("Loaded %d achievements from %s", catalog.Len(), cfg.Analytics.CatalogFile)
	}
	engine := analytics.NewEngine(catalog, clock, loc)

	switch cfg.Source.Kind {
	case config.SourceHTTP:
		client, err := source.NewClient(&source.Config{
			BaseURL: cfg.Source.BaseURL,
			Timeout: cfg.Source.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create upstream client: %w", err)
		}
		a.Service = analytics.NewService(client, engine)
		a.health = client.Health
		a.logger.Info("Reading sessions from %s", client.Name())

	case config.SourceSQLite:
		db, err := database.NewConnection(&database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxConnections,
			MaxIdleConns:    cfg.Database.MaxIdleConnections,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			MigrateOnStart:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.GetMigrator().Seed(seedCtx, catalog.Definitions()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed achievement catalog: %w", err)
		}

		a.DB = db
		a.Repo = database.NewRepository(db)
		a.Service = analytics.NewService(a.Repo.Session, engine)
		if cfg.Analytics.TrackUnlocks {
			a.Service.SetLedger(a.Repo.Achievement)
		}
		a.health = db.Health

	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	return a, nil
}

// Health checks the session source
func (a *App) Health(ctx context.Context) error {
	if a.health == nil {
		return nil
	}
	return a.health(ctx)
}

// onClose registers fn to run when the app closes, before the database
func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close stops registered background work, then releases the database
// connection, if any
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			a.closers[i]()
		}
		if a.DB != nil {
			a.closeErr = a.DB.Close()
		}
	})
	return a.closeErr
}
