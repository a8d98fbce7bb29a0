// Package main provides the recruit_desk command: the match lifecycle API
// server and its operator tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "recruit_desk",
	Short: "Recruiting back-office match lifecycle service",
	Long: "recruit_desk tracks candidate-to-job matches from proposal through offer, " +
		"serves them over a REST API and provides import, export and maintenance tools.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional JSON config file; environment variables take precedence")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
