package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <path/to/investor_data.json>",
	Short: "Imports a previously written output file into the database.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "incorrect number of arguments")
			os.Exit(1)
		}
		cfg := loadConfig()
		ctx := cmd.Context()

		content, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read output file", err)
		}
		var records []signal.InvestorRecord
		err = json.Unmarshal(content, &records)
		if err != nil {
			serviceutil.Fatal("failed to parse output file", err)
		}

		store, database := openStore(cfg)
		defer database.Close()

		imported := 0
		skipped := 0
		for _, record := range records {
			// records without a name or source cannot be keyed
			if record.Name == "" || record.SourceFile == "" {
				skipped++
				continue
			}
			err := store.SaveRecord(ctx, record)
			if err != nil {
				serviceutil.Fatal("failed to save record", err)
			}
			imported++
		}

		slog.Info("migration finished", "imported", imported, "skipped", skipped)
	},
}
