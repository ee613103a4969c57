package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"investor-parser/lib/investorstore"
	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	fetchLimit *int
	fetchDelay *int
)

func init() {
	fetchLimit = fetchCmd.Flags().Int("limit", 0, "Maximum number of pages to fetch this run, 0 for no limit.")
	fetchDelay = fetchCmd.Flags().Int("delay", 2, "Seconds to wait between fetches.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--limit <n>] [--delay <seconds>]",
	Short: "Queues the url list and downloads pending profile pages into the html dir.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		entries, err := readUrlFile(cfg.UrlFile)
		if err != nil {
			serviceutil.Fatal("failed to read url file", err)
		}

		store, database := openStore(cfg)
		defer database.Close()

		for _, entry := range entries {
			err := store.Enqueue(ctx, entry.Url, entry.Name)
			if err != nil {
				serviceutil.Fatal("failed to enqueue url", err)
			}
		}
		err = store.ResetInProgress(ctx)
		if err != nil {
			serviceutil.Fatal("failed to reset fetch queue", err)
		}

		drainQueue(ctx, store, cfg, *fetchLimit)
	},
}

// drainQueue claims pending urls one at a time until the queue is
// empty, the limit is hit, or the context is cancelled.
func drainQueue(ctx context.Context, store investorstore.Store, cfg Config, limit int) {
	client, err := signal.NewClient(ctx, signal.ClientOptions{BaseUrl: cfg.BaseUrl})
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}

	t1 := time.Now()
	fetched := 0
	for ctx.Err() == nil {
		if limit > 0 && fetched >= limit {
			break
		}
		item, ok, err := store.NextPending(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read fetch queue", err)
		}
		if !ok {
			break
		}

		fetchOne(ctx, store, client, cfg, item)
		fetched++

		// the site throttles rapid crawlers
		select {
		case <-ctx.Done():
		case <-time.After(time.Second * time.Duration(*fetchDelay)):
		}
	}
	t2 := time.Now()

	status, err := store.QueueStatus(ctx)
	if err != nil {
		serviceutil.Fatal("failed to read queue status", err)
	}
	slog.Info("fetch finished",
		"fetched", fetched,
		"completed", status.Completed,
		"pending", status.Pending,
		"failed", status.Failed,
		"seconds", t2.Sub(t1).Seconds())
}

func fetchOne(ctx context.Context, store investorstore.Store, client *signal.Client, cfg Config, item investorstore.QueueItem) {
	slug := signal.Slug(item.Url)
	if slug == "" {
		slog.Warn("url does not point at an investor profile", "url", item.Url)
		err := store.MarkFailed(ctx, item.Url, "not an investor profile url")
		if err != nil {
			serviceutil.Fatal("failed to update fetch queue", err)
		}
		return
	}

	content, err := client.FetchProfile(ctx, item.Url)
	if err != nil {
		slog.Warn("fetch failed", "url", item.Url, "err", err)
		err = store.MarkFailed(ctx, item.Url, err.Error())
		if err != nil {
			serviceutil.Fatal("failed to update fetch queue", err)
		}
		return
	}

	if signal.NeedsInteractiveFetch(content) {
		slog.Info("investment list is truncated, expanding it needs a real browser", "url", item.Url)
	}

	err = os.MkdirAll(cfg.HtmlDir, 0755)
	if err != nil {
		serviceutil.Fatal("failed to create html dir", err)
	}
	outputPath := filepath.Join(cfg.HtmlDir, signal.PageFileName(slug))
	err = os.WriteFile(outputPath, []byte(content), 0644)
	if err != nil {
		serviceutil.Fatal("failed to write page", err)
	}

	err = store.MarkCompleted(ctx, item.Url, outputPath)
	if err != nil {
		serviceutil.Fatal("failed to update fetch queue", err)
	}
	slog.Info("fetched", "url", item.Url, "output", outputPath)
}
