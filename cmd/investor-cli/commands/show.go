package commands

import (
	"fmt"
	"os"
	"strings"

	"investor-parser/cmd/investor-cli/utils"
	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"
	"investor-parser/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// fuzzy matches below this similarity are not worth showing
const showMatchThreshold = 0.8

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Shows stored investors, or one investor's full record looked up by name.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		store, database := openStore(cfg)
		defer database.Close()

		records, err := store.ListRecords(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list records", err)
		}

		if len(args) == 0 {
			t := utils.NewTable()
			t.AppendHeader(table.Row{"Name", "Firm", "Position", "Location", "Investments", "Method"})
			for _, record := range records {
				t.AppendRow(table.Row{
					record.Name,
					string(record.Firm),
					string(record.Position),
					string(record.Location),
					len(record.Investments),
					record.ExtractionMethod,
				})
			}
			t.Render()
			return
		}

		record, ok := lookupRecord(records, strings.Join(args, " "))
		if !ok {
			fmt.Fprintln(os.Stderr, "no investor matches that name")
			os.Exit(1)
		}
		renderRecord(record)
	},
}

// lookupRecord finds the stored record for a human-typed name: exact
// normalized match first, then the most similar name above the
// threshold.
func lookupRecord(records []signal.InvestorRecord, query string) (signal.InvestorRecord, bool) {
	for _, record := range records {
		if textutil.NormalizeName(record.Name) == textutil.NormalizeName(query) {
			return record, true
		}
	}

	var mostSimilarity float64
	var mostSimilar signal.InvestorRecord
	for _, record := range records {
		similarity := matchr.JaroWinkler(
			strings.ToLower(record.Name),
			strings.ToLower(query),
			false,
		)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = record
		}
	}
	if mostSimilarity < showMatchThreshold {
		return signal.InvestorRecord{}, false
	}
	return mostSimilar, true
}

func renderRecord(record signal.InvestorRecord) {
	t := utils.NewTable()
	t.AppendRows([]table.Row{
		{"Name", record.Name},
		{"Position", string(record.Position)},
		{"Firm", string(record.Firm)},
		{"Location", string(record.Location)},
		{"Areas of interest", strings.Join(record.AreasOfInterest, ", ")},
		{"Roles", strings.Join(record.Roles, ", ")},
		{"Investments on record", record.InvestmentCount},
		{"Method", record.ExtractionMethod},
		{"Source", record.SourceFile},
	})
	t.Render()

	if len(record.Investments) == 0 {
		return
	}
	t = utils.NewTable()
	t.AppendHeader(table.Row{"Company", "Round", "Date", "Amount", "Lead"})
	for _, investment := range record.Investments {
		t.AppendRow(table.Row{
			investment.Company,
			string(investment.Round),
			string(investment.Date),
			string(investment.Amount),
			utils.Mark(investment.IsLead),
		})
	}
	t.Render()
}
