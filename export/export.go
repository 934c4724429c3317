// ABOUTME: Client-side exports of analytics and call data
// ABOUTME: Writes pretty-printed JSON blobs or xlsx workbooks
package export

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/xuri/excelize/v2"

	"github.com/fleetcall/dispatchctl/models"
)

// DefaultFilename builds a collision-free name like
// analytics-01J9GX3V....json in the working directory.
func DefaultFilename(prefix, ext string) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return fmt.Sprintf("%s-%s.%s", prefix, id.String(), ext)
}

// WriteJSON dumps any payload as an indented JSON file.
func WriteJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteAnalyticsWorkbook writes the summary and call list into an xlsx
// workbook: a Summary sheet, an Outcomes sheet, and a Calls sheet.
func WriteAnalyticsWorkbook(path string, summary *models.AnalyticsSummary, calls []models.Call) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return err
	}

	summaryRows := [][]any{
		{"Period (days)", summary.PeriodDays},
		{"Total calls", summary.TotalCalls},
		{"Completed calls", summary.CompletedCalls},
		{"Failed calls", summary.FailedCalls},
		{"Success rate", summary.SuccessRate},
		{"Average duration (s)", summary.AverageDuration},
		{"Generated at", summary.GeneratedAt.Format(time.RFC3339)},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	const outcomeSheet = "Outcomes"
	if _, err := f.NewSheet(outcomeSheet); err != nil {
		return err
	}
	header := []any{"Outcome", "Count"}
	if err := f.SetSheetRow(outcomeSheet, "A1", &header); err != nil {
		return err
	}
	row := 2
	for _, outcome := range []string{
		models.OutcomeInTransitUpdate,
		models.OutcomeArrivalConfirmation,
		models.OutcomeEmergencyEscalation,
	} {
		if count, ok := summary.CallOutcomes[outcome]; ok {
			values := []any{outcome, count}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(outcomeSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	if len(calls) > 0 {
		if err := writeCallsSheet(f, calls); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeCallsSheet(f *excelize.File, calls []models.Call) error {
	const sheet = "Calls"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"ID", "Driver", "Load", "Type", "Status", "Outcome", "Duration (s)", "Created"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, call := range calls {
		values := []any{
			call.ID,
			call.DriverName,
			call.LoadNumber,
			string(call.CallType),
			string(call.Status),
			call.CallOutcome,
			call.Duration,
			call.CreatedAt.Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// WriteTranscriptJSON exports one call's transcript for handoff to other
// tooling.
func WriteTranscriptJSON(path string, transcript *models.Transcript) error {
	return WriteJSON(path, transcript)
}
