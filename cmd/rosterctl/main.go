// Command rosterctl ingests roster workbooks offline and prints what the
// server would build from them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	schemaPath string
	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "rosterctl",
	Short:         "Inspect academy roster workbooks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "workbook schema YAML (default: embedded)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(ingestCmd, demoCmd, schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
