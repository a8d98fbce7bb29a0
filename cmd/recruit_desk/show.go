package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/observability"
	"github.com/spf13/cobra"
)

var (
	showID   string
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a match and its timeline",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showID, "id", "", "Match id")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the match as JSON")
	_ = showCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	view, err := matching.NewEngine(database, nil, engineOptions(cfg)).GetMatch(cmd.Context(), showID)
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to encode match: %w", err)
		}
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatch(view)
	return nil
}
