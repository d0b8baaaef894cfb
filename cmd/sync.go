package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/service"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copies the current CMS content into the snapshot store",
	Long: `The sync command fetches every post and tag from the CMS once and
replaces the snapshot kept in Postgres, so that the service can start
even while the CMS is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runSync(ctx, appConfig)
	},
}

func runSync(ctx context.Context, cfg config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("sync requires DATABASE_URL")
	}
	site, err := config.LoadSite(cfg.SiteConfigPath)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.New(newCMSClient(cfg), nil, site, serviceOptions(cfg))
	if err := svc.Refresh(ctx); err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	if err := store.ReplaceSnapshot(ctx, snap.Posts, snap.Tags); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	logger.Info("snapshot synced", "posts", len(snap.Posts), "tags", len(snap.Tags))
	return nil
}
