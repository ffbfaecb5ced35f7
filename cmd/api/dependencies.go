package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/farmaguardia/farmaguardia/internal/domain/roster/handler"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/parser"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/repository"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/service"
	"github.com/farmaguardia/farmaguardia/internal/domain/search"
	"github.com/farmaguardia/farmaguardia/pkg/config"
	"github.com/farmaguardia/farmaguardia/pkg/cron"
	"github.com/farmaguardia/farmaguardia/pkg/db"
	"github.com/farmaguardia/farmaguardia/pkg/fetch"
	"github.com/farmaguardia/farmaguardia/pkg/push"
	"github.com/farmaguardia/farmaguardia/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	RosterRepo repository.RosterRepository

	// Services
	RosterService *service.RosterService
	SearchIndex   *search.Index
	PushService   *push.Service
	Fetcher       *fetch.Fetcher
	Scheduler     *cron.Scheduler
	RosterCache   storage.Storage

	// Handlers
	RosterHandler *handler.RosterHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes the repository, parsing, cache and refresh stack
func (d *Dependencies) initServices() error {
	d.RosterRepo = repository.NewPostgresRosterRepository(d.DB.Pool)

	registry := parser.NewRegistry(d.Logger, time.Now)
	d.RosterService = service.NewRosterService(registry, d.Logger).
		WithRepository(d.RosterRepo)

	index, err := search.NewIndex(d.Logger)
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}
	d.SearchIndex = index

	cache, err := storage.New(&storage.Config{LocalPath: d.Config.Cache.Path})
	if err != nil {
		return fmt.Errorf("failed to init roster cache: %w", err)
	}
	d.RosterCache = cache

	d.Fetcher = fetch.NewFetcher(cache, d.Logger)

	d.Scheduler = cron.NewScheduler(d.Fetcher, d.RosterService, d.Logger).
		WithIndexer(d.SearchIndex)
	if d.Config.Push.Enabled {
		d.PushService = push.NewService(d.Logger)
		d.Scheduler = d.Scheduler.WithNotifier(d.PushService, d.Config.Push.Tokens)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.RosterHandler = handler.NewRosterHandler(d.RosterRepo, d.Logger).
		WithSearchIndex(d.SearchIndex)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
