package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "embedhub",
	Short: "Embed configuration server",
	Long: `embedhub stores the configuration of embeddable chat widgets and serves
the management API, the API-key protected public API and uploaded assets.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(userCommand())
	rootCmd.AddCommand(apiKeyCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
