package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"BrewPress/internal/analysis"
	"BrewPress/internal/config"
	"BrewPress/internal/gateway"
	"BrewPress/internal/importer"
	"BrewPress/internal/infrastructure/fetch"
	"BrewPress/internal/infrastructure/llm"
	"BrewPress/internal/infrastructure/storage"
	"BrewPress/internal/infrastructure/wordpress"
	"BrewPress/internal/logging"
	"BrewPress/internal/media"
	"BrewPress/internal/ports"
	"BrewPress/internal/usecase"
)

// Application wires configuration to the enrichment use cases.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	enricher    *usecase.Enricher
	coordinator *importer.Coordinator
	db          *sql.DB
}

// New validates configuration and constructs every component. A validation
// failure here is fatal by design: no post is touched with broken credentials.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	generator, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	store := wordpress.NewClient(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.AppPassword)
	gw := gateway.New(generator, baseLogger.With("component", "gateway"))
	resolver := analysis.NewResolver(cfg.Categories.Table, cfg.Categories.FallbackID, cfg.Categories.FeaturedID)
	images := media.NewResolver(gw, fetch.NewDownloader(nil), store, baseLogger.With("component", "media"))

	var repository ports.EnrichmentRepository
	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Store:      store,
		Gateway:    gw,
		Resolver:   resolver,
		Images:     images,
		Repository: repository,
		Logger:     baseLogger.With("component", "enricher"),
	})

	var coordinator *importer.Coordinator
	if cfg.Import.TriggerURL != "" {
		coordinator = importer.NewCoordinator(cfg.Import.TriggerURL, cfg.Import.StatusURL,
			baseLogger.With("component", "importer"))
	}

	return &Application{
		cfg:         cfg,
		logger:      baseLogger,
		enricher:    enricher,
		coordinator: coordinator,
		db:          db,
	}, nil
}

// RunImport triggers the bulk import and waits for it to drain.
func (a *Application) RunImport(ctx context.Context) error {
	if a.coordinator == nil {
		return fmt.Errorf("import endpoints are not configured")
	}
	if !a.coordinator.ImportAndWait(ctx) {
		return fmt.Errorf("import trigger failed")
	}
	return nil
}

// RunBatch enriches every pending post.
func (a *Application) RunBatch(ctx context.Context) error {
	stats, err := a.enricher.ProcessBatch(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("run complete", "done", stats.Done, "skipped", stats.Skipped, "failed", stats.Failed)
	return nil
}

// RunImportAndBatch runs the import first, then the batch.
func (a *Application) RunImportAndBatch(ctx context.Context) error {
	if err := a.RunImport(ctx); err != nil {
		return err
	}
	return a.RunBatch(ctx)
}

// RunArticle enriches one post by id.
func (a *Application) RunArticle(ctx context.Context, id int) error {
	outcome, err := a.enricher.ProcessByID(ctx, id)
	if err != nil {
		return err
	}
	a.logger.Info("post processed", "post", id, "outcome", outcome)
	return nil
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
