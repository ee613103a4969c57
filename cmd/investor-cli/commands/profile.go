package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/serviceutil"

	"github.com/spf13/cobra"
)

var profileId *string

func init() {
	profileId = profileCmd.Flags().String("profile-id", "", "Profile entity id to select when the page embeds several.")
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile <path/to/page.html>",
	Short: "Extracts a single page and prints the record json.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "incorrect number of arguments")
			os.Exit(1)
		}

		content, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read page", err)
		}

		record, err := signal.Extract(string(content), signal.PageHint{
			SourceFile: filepath.Base(args[0]),
			ProfileID:  *profileId,
		})
		if err != nil {
			serviceutil.Fatal("extraction failed", err)
		}

		encoded, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to marshal record", err)
		}
		fmt.Println(string(encoded))
	},
}
