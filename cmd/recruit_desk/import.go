package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/observability"
	"github.com/jonathan/recruit-desk/internal/schemas"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/spf13/cobra"
)

var (
	importFile      string
	importCreatedBy string
	importDryRun    bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create match proposals from a JSON file",
	Long: `Validate a batch of match proposals against schemas/match_import.schema.json
and create each one. Invalid files are rejected before anything is written;
individual proposals that fail (for example duplicates) are reported and skipped.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Path to the import JSON file")
	importCmd.Flags().StringVar(&importCreatedBy, "created-by", "", "Actor recorded on created matches (overrides the file)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without creating matches")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

// importDocument mirrors match_import.schema.json.
type importDocument struct {
	CreatedBy string                     `json:"created_by"`
	Matches   []types.CreateMatchRequest `json:"matches"`
}

// importSummary reports the outcome of an import.
type importSummary struct {
	Created  []string
	Failures []types.BulkFailure
}

func runImport(cmd *cobra.Command, _ []string) error {
	doc, err := readImportFile(importFile)
	if err != nil {
		return err
	}
	if importCreatedBy != "" {
		doc.CreatedBy = importCreatedBy
	}

	out := cmd.OutOrStdout()
	if importDryRun {
		fmt.Fprintf(out, "Validation passed: %d match(es) ready to import\n", len(doc.Matches))
		return nil
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

	publisher, closePublisher, err := buildPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	engine := matching.NewEngine(database, publisher, engineOptions(cfg))
	summary := importMatches(cmd.Context(), engine, doc)
	printImportSummary(out, summary)

	if len(summary.Failures) > 0 {
		return fmt.Errorf("%d of %d match(es) failed to import", len(summary.Failures), len(doc.Matches))
	}
	return nil
}

// readImportFile validates the file against the import schema and decodes it.
func readImportFile(path string) (*importDocument, error) {
	schemaPath := schemas.ResolveSchemaPath(schemas.MatchImportSchema)
	if schemaPath == "" {
		return nil, fmt.Errorf("schema %s not found", schemas.MatchImportSchema)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	if err := schemas.ValidateBytes(schemaPath, data); err != nil {
		return nil, fmt.Errorf("import file is invalid: %w", err)
	}

	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	return &doc, nil
}

// importMatches creates each proposal in file order and keeps going after
// failures.
func importMatches(ctx context.Context, engine *matching.Engine, doc *importDocument) importSummary {
	var summary importSummary
	for i := range doc.Matches {
		req := doc.Matches[i]
		req.CreatedBy = doc.CreatedBy

		m, err := engine.CreateMatch(ctx, &req)
		if err != nil {
			log.Printf("[IMPORT] Skipping %s/%s: %v", req.CandidateID, req.JobID, err)
			summary.Failures = append(summary.Failures, types.BulkFailure{
				MatchID: fmt.Sprintf("#%d %s/%s", i+1, req.CandidateID, req.JobID),
				Error:   err.Error(),
			})
			continue
		}
		summary.Created = append(summary.Created, m.ID)
	}
	return summary
}

func printImportSummary(w io.Writer, s importSummary) {
	observability.NewPrinter(w).PrintBulkResult("MATCH IMPORT", types.BulkResult{
		SuccessCount: len(s.Created),
		ErrorCount:   len(s.Failures),
		Failures:     s.Failures,
	})
}
