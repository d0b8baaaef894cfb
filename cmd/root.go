package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/logger"
)

var (
	siteFile  string
	logLevel  string
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blog-website",
	Short: "Blog landing page service",
	Long: `blog-website serves the landing page of the blog: the filtered and
paginated post listing, the featured carousel and the curated side lists,
all built from posts published in the headless CMS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&siteFile, "site", "", "site config file (default is SITE_CONFIG or the built-in site file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default is LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd, syncCmd)
}

func initializeConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if siteFile != "" {
		cfg.SiteConfigPath = siteFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(cfg.LogLevel)
	appConfig = cfg
	return nil
}
