package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/ingestion"
)

var fetchURL string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a job posting URL and print its visible text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFetch(cmd.Context(), configPath, fetchURL, cmd.OutOrStdout())
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchURL, "url", "u", "", "URL to fetch (required)")
	_ = fetchCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(ctx context.Context, cfgPath, urlStr string, out io.Writer) error {
	if urlStr == "" {
		return fmt.Errorf("--url is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadRuntime(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fetcher, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("failed to close cache store", zap.Error(err))
		}
	}()

	doc, err := ingestion.FromURL(ctx, fetcher, urlStr)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n", doc.Raw)
	return err
}
