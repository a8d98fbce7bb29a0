package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/recruit-desk/internal/export"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/spf13/cobra"
)

var (
	exportOut         string
	exportCandidateID string
	exportCompanyID   string
	exportStatuses    []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matches to an Excel workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path (default matches-YYYYMMDD.xlsx)")
	exportCmd.Flags().StringVar(&exportCandidateID, "candidate-id", "", "Only export this candidate's matches")
	exportCmd.Flags().StringVar(&exportCompanyID, "company-id", "", "Only export matches at this company")
	exportCmd.Flags().StringSliceVar(&exportStatuses, "status", nil, "Only export these statuses (repeatable or comma-separated)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	opts, err := exportOptions(exportCandidateID, exportCompanyID, exportStatuses)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	engine := matching.NewEngine(database, nil, engineOptions(cfg))
	now := time.Now()
	path := exportOut
	if path == "" {
		path = defaultExportPath(now)
	}

	count, err := exportToFile(cmd.Context(), engine, opts, path, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d match(es) to %s\n", count, path)
	return nil
}

func exportOptions(candidateID, companyID string, statuses []string) (matching.ListOptions, error) {
	opts := matching.ListOptions{CandidateID: candidateID, CompanyID: companyID}
	for _, raw := range statuses {
		st, err := types.ParseStatus(strings.TrimSpace(raw))
		if err != nil {
			return opts, err
		}
		opts.Statuses = append(opts.Statuses, st)
	}
	return opts, nil
}

func defaultExportPath(now time.Time) string {
	return fmt.Sprintf("matches-%s.xlsx", now.Format("20060102"))
}

// exportToFile pages through every matching record and writes the workbook.
func exportToFile(ctx context.Context, engine *matching.Engine, opts matching.ListOptions, path string, now time.Time) (int, error) {
	var views []matching.MatchView
	for {
		opts.Offset = len(views)
		page, err := engine.ListMatches(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("failed to list matches: %w", err)
		}
		views = append(views, page.Matches...)
		if len(page.Matches) == 0 || len(views) >= page.Total {
			break
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	if err := export.WriteMatches(w, views, now); err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(views), f.Close()
}
