package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/catalogflow/internal/config"
	"github.com/Lllllllleong/catalogflow/internal/extract"
	"github.com/Lllllllleong/catalogflow/internal/gcp"
	"github.com/Lllllllleong/catalogflow/internal/httpapi"
	"github.com/Lllllllleong/catalogflow/internal/services"
	"github.com/Lllllllleong/catalogflow/internal/store"
	"github.com/Lllllllleong/catalogflow/internal/store/firestoredb"
	"github.com/Lllllllleong/catalogflow/internal/store/memory"
	"github.com/Lllllllleong/catalogflow/internal/store/postgres"
)

// Dependencies holds everything the server needs.
type Dependencies struct {
	Config *config.Config
	Store  store.Store
	Server *httpapi.Server
}

// InitDependencies opens the configured store and builds the services on it.
func InitDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}
	deps.Store = st

	auth, err := services.NewAuthService(cfg.Auth.AdminPasswordHash, cfg.Auth.AdminPassword, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	catalog := services.NewCatalogService(st)
	pipeline := extract.NewPipeline(extract.NewPDFTextExtractor())

	deps.Server = httpapi.NewServer(httpapi.Services{
		Catalog:    catalog,
		SiteConfig: services.NewSiteConfigService(st),
		Storefront: services.NewStorefrontService(st),
		Auth:       auth,
		PDFImport:  services.NewPDFImportService(pipeline, catalog),
	}, st, httpapi.NewMetrics(), httpapi.Options{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
	})

	slog.Info("All dependencies initialized.", "storeBackend", cfg.Store.Backend)
	return deps, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendFirestore:
		client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		return firestoredb.New(client), nil

	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			slog.Info("Database migrations applied.")
		}
		return postgres.New(pool), nil

	case config.BackendMemory:
		slog.Warn("Using the in-memory store. Data is lost on restart.")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Close releases the store.
func (d *Dependencies) Close() {
	if err := d.Store.Close(); err != nil {
		slog.Error("Failed to close store.", "error", err)
	}
}
