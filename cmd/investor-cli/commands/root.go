package commands

import (
	"context"
	"fmt"
	"os"

	"investor-parser/lib/restyutil"
	"investor-parser/lib/scrapers/signal"
	"investor-parser/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose *bool

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging and http request/response dumps.")
}

var rootCmd = &cobra.Command{
	Use:   "investor-cli",
	Short: "investor-cli fetches investor profile pages from signal.nfx.com and parses them into structured records.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		if *verbose {
			signal.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/signal"))
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
