package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/recruit-desk/internal/config"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/matching/matchingtest"
	"github.com/jonathan/recruit-desk/internal/observability"
	"github.com/jonathan/recruit-desk/internal/server"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadImportFile(t *testing.T) {
	path := writeFile(t, `{
		"created_by": "recruiter-9",
		"matches": [
			{"candidate_id": "c1", "job_id": "j1", "company_id": "acme", "score": 91,
			 "match_reasons": [{"type": "skill", "description": "Go", "weight": 0.8}]},
			{"candidate_id": "c2", "job_id": "j1", "company_id": "acme", "initial_status": "applied"}
		]
	}`)

	doc, err := readImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, "recruiter-9", doc.CreatedBy)
	require.Len(t, doc.Matches, 2)
	assert.Equal(t, 91.0, doc.Matches[0].Score)
	assert.Equal(t, "skill", doc.Matches[0].MatchReasons[0].Type)
	assert.Equal(t, types.StatusApplied, doc.Matches[1].InitialStatus)
}

func TestReadImportFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty batch":    `{"matches": []}`,
		"missing job":    `{"matches": [{"candidate_id": "c1", "company_id": "acme"}]}`,
		"unknown status": `{"matches": [{"candidate_id": "c1", "job_id": "j1", "company_id": "acme", "initial_status": "hired"}]}`,
		"extra field":    `{"matches": [{"candidate_id": "c1", "job_id": "j1", "company_id": "acme", "salary": 1}]}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readImportFile(writeFile(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "import file is invalid")
		})
	}

	_, err := readImportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestImportMatches(t *testing.T) {
	store := matchingtest.NewMemoryStore()
	engine := matching.NewEngine(store, nil, matching.Options{})

	doc := &importDocument{
		CreatedBy: "recruiter-9",
		Matches: []types.CreateMatchRequest{
			{CandidateID: "c1", JobID: "j1", CompanyID: "acme"},
			{CandidateID: "c1", JobID: "j1", CompanyID: "acme"},
			{CandidateID: "c2", JobID: "j1", CompanyID: "acme", InitialStatus: types.StatusApplied},
		},
	}

	summary := importMatches(context.Background(), engine, doc)
	assert.Len(t, summary.Created, 2)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "#2 c1/j1", summary.Failures[0].MatchID)
	assert.Equal(t, 2, store.Len())

	m, err := store.GetMatch(context.Background(), summary.Created[1])
	require.NoError(t, err)
	assert.Equal(t, "recruiter-9", m.CreatedBy)
	assert.Equal(t, types.StatusApplied, m.Status)

	var out bytes.Buffer
	printImportSummary(&out, summary)
	assert.Contains(t, out.String(), "Succeeded: 2")
	assert.Contains(t, out.String(), "#2 c1/j1: match already exists")
}

func TestExportOptions(t *testing.T) {
	opts, err := exportOptions("c1", "", []string{"interview", " offer"})
	require.NoError(t, err)
	assert.Equal(t, "c1", opts.CandidateID)
	assert.Equal(t, []types.Status{types.StatusInterview, types.StatusOffer}, opts.Statuses)

	_, err = exportOptions("", "", []string{"hired"})
	assert.Error(t, err)

	assert.Equal(t, "matches-20240301.xlsx", defaultExportPath(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestExportToFile(t *testing.T) {
	store := matchingtest.NewMemoryStore()
	engine := matching.NewEngine(store, nil, matching.Options{})
	for i := range 60 {
		_, err := engine.CreateMatch(context.Background(), &types.CreateMatchRequest{
			CandidateID: "c1",
			JobID:       "job-" + strings.Repeat("x", i+1),
			CompanyID:   "acme",
		})
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	count, err := exportToFile(context.Background(), engine, matching.ListOptions{}, path, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 60, count, "walks past the default page size")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Matches")
	require.NoError(t, err)
	assert.Len(t, rows, 61)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user-id", "recruiter-3"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	service := server.NewJWTService(&config.JWTConfig{Secret: "cli-test-secret", ExpirationHours: 1})
	claims, err := service.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "recruiter-3", claims.ActorID)
}

func TestForwardTo(t *testing.T) {
	rec := &matchingtest.RecordingPublisher{}
	handler := forwardTo(rec)

	event := matching.Event{Type: matching.EventStatusChanged, MatchID: "m1"}
	require.NoError(t, handler(context.Background(), event))
	assert.Equal(t, []matching.Event{event}, rec.Events())

	rec.Err = errors.New("chat unavailable")
	err := handler(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match.status_changed")
}

func TestBuildPublisher_NothingConfigured(t *testing.T) {
	publisher, closeFn, err := buildPublisher(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, publisher)
	assert.NotPanics(t, closeFn)
}

func TestEngineOptions(t *testing.T) {
	opts := engineOptions(&config.Config{EnforceStatusFlow: true, BulkConcurrency: 3, MaxWriteAttempts: 5})
	assert.Equal(t, matching.Options{EnforceStatusFlow: true, BulkConcurrency: 3, MaxWriteAttempts: 5}, opts)
}

func TestPrintingHandler(t *testing.T) {
	var out bytes.Buffer
	rec := &matchingtest.RecordingPublisher{}
	handler := printing(observability.NewPrinter(&out), forwardTo(rec))

	require.NoError(t, handler(context.Background(), matching.Event{Type: matching.EventMatchDeleted, MatchID: "m9"}))
	assert.Contains(t, out.String(), "match.deleted")
	assert.Len(t, rec.Events(), 1)
}
