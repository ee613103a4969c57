package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"investor-parser/cmd/investor-cli/utils"
	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rescrapeList *bool

func init() {
	rescrapeList = rescrapeCmd.Flags().Bool("list", false, "Only list the missing pages, do not fetch them.")
	rootCmd.AddCommand(rescrapeCmd)
}

var rescrapeCmd = &cobra.Command{
	Use:   "rescrape [--list]",
	Short: "Finds urls whose pages are missing from the html dir and refetches them.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		entries, err := readUrlFile(cfg.UrlFile)
		if err != nil {
			serviceutil.Fatal("failed to read url file", err)
		}

		var missing []urlEntry
		for _, entry := range entries {
			slug := signal.Slug(entry.Url)
			if slug == "" {
				continue
			}
			_, err := os.Stat(filepath.Join(cfg.HtmlDir, signal.PageFileName(slug)))
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, entry)
			}
		}
		slog.Info("diffed url list against html dir",
			"urls", len(entries), "missing", len(missing))

		if *rescrapeList {
			t := utils.NewTable()
			t.AppendHeader(table.Row{"Name", "Url"})
			for _, entry := range missing {
				t.AppendRow(table.Row{entry.Name, entry.Url})
			}
			t.Render()
			return
		}
		if len(missing) == 0 {
			return
		}

		store, database := openStore(cfg)
		defer database.Close()

		for _, entry := range missing {
			err := store.Requeue(ctx, entry.Url, entry.Name)
			if err != nil {
				serviceutil.Fatal("failed to requeue url", err)
			}
		}
		err = store.ResetInProgress(ctx)
		if err != nil {
			serviceutil.Fatal("failed to reset fetch queue", err)
		}

		drainQueue(ctx, store, cfg, 0)
	},
}
