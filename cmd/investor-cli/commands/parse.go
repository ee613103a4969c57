package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extracts records from every page in the html dir, saves them and writes the output json.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		pages, err := os.ReadDir(cfg.HtmlDir)
		if err != nil {
			serviceutil.Fatal("failed to read html dir", err)
		}

		store, database := openStore(cfg)
		defer database.Close()

		var records []signal.InvestorRecord
		var stateCount, htmlCount, failed int

		t1 := time.Now()
		for _, page := range pages {
			if page.IsDir() || !strings.HasSuffix(page.Name(), ".html") {
				continue
			}
			content, err := os.ReadFile(filepath.Join(cfg.HtmlDir, page.Name()))
			if err != nil {
				serviceutil.Fatal("failed to read page", err)
			}

			record, err := signal.Extract(string(content), signal.PageHint{SourceFile: page.Name()})
			if err != nil {
				slog.Warn("extraction failed", "file", page.Name(), "err", err)
				failed++
				continue
			}
			switch record.ExtractionMethod {
			case signal.MethodApolloState:
				stateCount++
			case signal.MethodHTML:
				htmlCount++
			}

			err = store.SaveRecord(ctx, record)
			if err != nil {
				serviceutil.Fatal("failed to save record", err)
			}
			records = append(records, record)
		}
		t2 := time.Now()

		sort.Slice(records, func(i, j int) bool {
			if records[i].Name != records[j].Name {
				return records[i].Name < records[j].Name
			}
			return records[i].SourceFile < records[j].SourceFile
		})
		err = writeOutputFile(cfg.OutputFile, records)
		if err != nil {
			serviceutil.Fatal("failed to write output file", err)
		}

		slog.Info("parse finished",
			"records", len(records),
			"apollo_state", stateCount,
			"html", htmlCount,
			"failed", failed,
			"output", cfg.OutputFile,
			"seconds", t2.Sub(t1).Seconds())
	},
}

func writeOutputFile(path string, records []signal.InvestorRecord) error {
	if records == nil {
		records = []signal.InvestorRecord{}
	}
	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0644)
}
