package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zibamira/CTCoral-CoDA/cmd/coda/commands"
	"github.com/zibamira/CTCoral-CoDA/logger"
)

var rootCmd = &cobra.Command{
	Use:   "coda",
	Short: "CoDA - Coral dashboard for colony data exploration",
	Long: `CoDA - interactive dashboard for coral colony data.

Load vertex and edge spreadsheets, map columns onto colors and markers,
and explore the colony through linked views. Selections made in any view
propagate to all others and back to the data source.

Available commands:
  filesystem - Watch and serve local CSV spreadsheets
  random     - Serve generated sample data
  amira      - Link with a running Amira instance
  version    - Show version information

Examples:
  coda filesystem --vertices corals.csv --edges framework.csv
  coda random --port 8080
  coda amira /tmp/amira-coda-1234`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		return logger.SetVerbosity(verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().String("config", "", "Path to a coda.toml configuration file")
	rootCmd.PersistentFlags().Int("port", 0, "Listen port for the dashboard server")
	rootCmd.PersistentFlags().Bool("start-browser", false, "Open the dashboard in the default browser")

	rootCmd.AddCommand(commands.FilesystemCmd)
	rootCmd.AddCommand(commands.RandomCmd)
	rootCmd.AddCommand(commands.AmiraCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
