package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"BrewPress/internal/app"
	"BrewPress/internal/config"
	"BrewPress/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brewpress",
	Short: "AI enrichment pipeline for the beer news site",
	Long:  "brewpress pulls pending posts from the content store, analyzes them with Gemini, resolves cover images, and writes the enriched posts back.",
	Args:  cobra.ArbitraryArgs,
	// No or unknown subcommand: show usage, exit clean.
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(articleCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Trigger the bulk feed import and wait for it to finish",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.RunImport(ctx)
		})
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich every pending post",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.RunBatch(ctx)
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Import fresh content, then enrich the pending batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.RunImportAndBatch(ctx)
		})
	},
}

var articleCmd = &cobra.Command{
	Use:   "article <id>",
	Short: "Enrich a single post by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid post id %q", args[0])
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.RunArticle(ctx, id)
		})
	},
}

func withApp(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer application.Close()

	if err := fn(ctx, application); err != nil {
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}
