// ABOUTME: Tests for the export writers
// ABOUTME: Round-trips JSON and xlsx output files
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fleetcall/dispatchctl/models"
)

func sampleSummary() *models.AnalyticsSummary {
	return &models.AnalyticsSummary{
		PeriodDays:      7,
		TotalCalls:      40,
		CompletedCalls:  32,
		FailedCalls:     5,
		SuccessRate:     80.0,
		AverageDuration: 87.5,
		CallOutcomes: map[string]int{
			models.OutcomeInTransitUpdate:     20,
			models.OutcomeArrivalConfirmation: 10,
			models.OutcomeEmergencyEscalation: 2,
		},
		GeneratedAt: time.Now(),
	}
}

func TestDefaultFilename(t *testing.T) {
	name := DefaultFilename("analytics", "json")
	if !strings.HasPrefix(name, "analytics-") || !strings.HasSuffix(name, ".json") {
		t.Errorf("unexpected filename: %s", name)
	}
	if name == DefaultFilename("analytics", "json") {
		t.Error("filenames should not collide")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.json")
	if err := WriteJSON(path, sampleSummary()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var got models.AnalyticsSummary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.TotalCalls != 40 || got.CallOutcomes[models.OutcomeInTransitUpdate] != 20 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestWriteAnalyticsWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.xlsx")

	calls := []models.Call{
		{
			ID:         1,
			DriverName: "Maria Lopez",
			LoadNumber: "LD-4471",
			CallType:   models.CallTypePhone,
			Status:     models.StatusCompleted,
			Duration:   95,
			CreatedAt:  time.Now(),
		},
	}
	if err := WriteAnalyticsWorkbook(path, sampleSummary(), calls); err != nil {
		t.Fatalf("WriteAnalyticsWorkbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{"Summary": false, "Outcomes": false, "Calls": false}
	for _, s := range sheets {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing sheet %s (have %v)", name, sheets)
		}
	}

	total, err := f.GetCellValue("Summary", "B2")
	if err != nil || total != "40" {
		t.Errorf("Summary!B2 = %q (err %v), want 40", total, err)
	}

	driver, err := f.GetCellValue("Calls", "B2")
	if err != nil || driver != "Maria Lopez" {
		t.Errorf("Calls!B2 = %q (err %v), want Maria Lopez", driver, err)
	}
}
