package cmd

import (
	"context"
	"fmt"

	"github.com/kaushiktak19/blog-website/internal/cms"
	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/db"
	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/service"
)

func newCMSClient(cfg config.Config) *cms.Client {
	return cms.NewClient(cfg.CMSGraphQLURL, cfg.CMSTimeout,
		cms.WithPageSize(cfg.CMSPageSize),
		cms.WithRetries(cfg.CMSMaxRetries),
	)
}

// openStore connects and migrates the snapshot store. It returns nil when
// no database is configured.
func openStore(ctx context.Context, cfg config.Config) (*db.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, snapshots are kept in memory only")
		return nil, nil
	}
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func serviceOptions(cfg config.Config) service.Options {
	return service.Options{
		TechnologyCategory: cfg.TechnologyCategory,
		CommunityCategory:  cfg.CommunityCategory,
		RefreshInterval:    cfg.RevalidateInterval,
		CommunityCacheTTL:  cfg.CommunityCacheTTL,
	}
}
