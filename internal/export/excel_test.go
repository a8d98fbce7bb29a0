package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleViews() []matching.MatchView {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	interview := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := types.Match{
		ID:            "m-1",
		CandidateID:   "cand-1",
		JobID:         "job-1",
		CompanyID:     "acme",
		Status:        types.StatusInterview,
		Score:         81,
		InterviewDate: &interview,
		UpdatedAt:     created,
		Timeline: []types.TimelineEntry{
			{ID: "e-1", Status: types.StatusApplied, Timestamp: created, Description: "Match created"},
			{ID: "e-2", Status: types.StatusInterview, Timestamp: created.Add(time.Hour), EventDate: &interview},
		},
	}
	second := types.Match{
		ID:          "m-2",
		CandidateID: "cand-2",
		JobID:       "job-1",
		CompanyID:   "acme",
		Status:      types.StatusWithdrawn,
		UpdatedAt:   created,
		Timeline: []types.TimelineEntry{
			{ID: "e-3", Status: types.StatusWithdrawn, Timestamp: created, Notes: "bulk withdrawal"},
		},
	}
	return []matching.MatchView{matching.NewView(first), matching.NewView(second)}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteMatches(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	require.NoError(t, WriteMatches(&buf, sampleViews(), generated))

	f := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{SummarySheet, MatchesSheet, TimelineSheet}, f.GetSheetList())

	rows, err := f.GetRows(MatchesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, matchHeaders, rows[0])
	assert.Equal(t, "m-1", rows[1][0])
	assert.Equal(t, "Interview", rows[1][4])
	assert.Equal(t, "81", rows[1][5])
	assert.Equal(t, "2025-03-01 10:00", rows[1][6])
	assert.Equal(t, "Withdrawn", rows[2][4])

	timeline, err := f.GetRows(TimelineSheet)
	require.NoError(t, err)
	require.Len(t, timeline, 4)
	assert.Equal(t, "e-2", timeline[2][1])
	assert.Equal(t, "bulk withdrawal", timeline[3][6])

	total, err := f.GetCellValue(SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
	generatedCell, err := f.GetCellValue(SummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02 08:30", generatedCell)
}

func TestWriteMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatches(&buf, nil, time.Now()))

	f := openWorkbook(t, buf.Bytes())
	rows, err := f.GetRows(MatchesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	total, err := f.GetCellValue(SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "0", total)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(nil))
	d := time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-02 03:04", formatDate(&d))
}
