package commands

import (
	"github.com/spf13/cobra"
)

var (
	processSkipFetch *bool
	processSkipParse *bool
)

func init() {
	processSkipFetch = processCmd.Flags().Bool("skip-fetch", false, "Skip the fetch stage.")
	processSkipParse = processCmd.Flags().Bool("skip-parse", false, "Skip the parse stage.")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process [--skip-fetch] [--skip-parse]",
	Short: "Runs the full pipeline: fetch the url list, then parse the html dir.",
	Run: func(cmd *cobra.Command, args []string) {
		if !*processSkipFetch {
			fetchCmd.Run(cmd, nil)
		}
		if !*processSkipParse {
			parseCmd.Run(cmd, nil)
		}
	},
}
