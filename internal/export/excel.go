// Package export writes match listings to Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SummarySheet  = "Summary"
	MatchesSheet  = "Matches"
	TimelineSheet = "Timeline"
)

const dateLayout = "2006-01-02 15:04"

var matchHeaders = []string{
	"Match ID", "Candidate", "Job", "Company", "Status", "Score", "Latest Event",
	"Applied", "Interview", "Offer", "Accepted", "Rejected", "Start", "End", "Updated",
}

var timelineHeaders = []string{
	"Match ID", "Entry ID", "Status", "Recorded", "Event Date", "Description", "Notes", "By",
}

// WriteMatches renders the matches, in the given order, as an .xlsx workbook
// with a summary, one row per match and one row per timeline entry.
func WriteMatches(w io.Writer, matches []matching.MatchView, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(MatchesSheet); err != nil {
		return fmt.Errorf("failed to create matches sheet: %w", err)
	}
	if _, err := f.NewSheet(TimelineSheet); err != nil {
		return fmt.Errorf("failed to create timeline sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, matches, generatedAt, headerStyle); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeMatchRows(f, matches, headerStyle); err != nil {
		return fmt.Errorf("failed to create matches sheet: %w", err)
	}
	if err := writeTimelineRows(f, matches, headerStyle); err != nil {
		return fmt.Errorf("failed to create timeline sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, matches []matching.MatchView, generatedAt time.Time, headerStyle int) error {
	_ = f.SetColWidth(SummarySheet, "A", "A", 24)
	_ = f.SetColWidth(SummarySheet, "B", "B", 16)

	counts := make(map[types.Status]int, len(types.AllStatuses))
	for _, m := range matches {
		counts[m.Status]++
	}

	rows := [][]any{
		{"Match Report", ""},
		{"Generated", generatedAt.Format(dateLayout)},
		{"Total Matches", len(matches)},
		{},
		{"Status", "Count"},
	}
	for _, s := range types.AllStatuses {
		rows = append(rows, []any{matching.Label(s), counts[s]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetCellStyle(SummarySheet, "A5", "B5", headerStyle)
}

func writeMatchRows(f *excelize.File, matches []matching.MatchView, headerStyle int) error {
	if err := writeHeader(f, MatchesSheet, matchHeaders, headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(MatchesSheet, "A", "A", 38)
	_ = f.SetColWidth(MatchesSheet, "B", "O", 16)

	for i, m := range matches {
		row := []any{
			m.ID, m.CandidateID, m.JobID, m.CompanyID, matching.Label(m.Status), m.Score,
			formatDate(m.LatestEventDate),
			formatDate(m.AppliedDate), formatDate(m.InterviewDate), formatDate(m.OfferDate),
			formatDate(m.AcceptedDate), formatDate(m.RejectedDate),
			formatDate(m.StartDate), formatDate(m.EndDate),
			m.UpdatedAt.Format(dateLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MatchesSheet, cell, &row); err != nil {
			return err
		}
	}

	return finishTable(f, MatchesSheet, len(matchHeaders), len(matches))
}

func writeTimelineRows(f *excelize.File, matches []matching.MatchView, headerStyle int) error {
	if err := writeHeader(f, TimelineSheet, timelineHeaders, headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(TimelineSheet, "A", "B", 38)
	_ = f.SetColWidth(TimelineSheet, "C", "E", 18)
	_ = f.SetColWidth(TimelineSheet, "F", "G", 40)

	n := 0
	for _, m := range matches {
		for _, e := range m.Timeline {
			row := []any{
				m.ID, e.ID, matching.Label(e.Status), e.Timestamp.Format(dateLayout),
				formatDate(e.EventDate), e.Description, e.Notes, e.CreatedBy,
			}
			cell, err := excelize.CoordinatesToCellName(1, n+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(TimelineSheet, cell, &row); err != nil {
				return err
			}
			n++
		}
	}

	return finishTable(f, TimelineSheet, len(timelineHeaders), n)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// finishTable freezes the header row and enables filtering over the data.
func finishTable(f *excelize.File, sheet string, cols, rows int) error {
	if rows > 0 {
		last, err := excelize.CoordinatesToCellName(cols, rows+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(sheet, "A1:"+last, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
