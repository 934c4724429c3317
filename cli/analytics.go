// ABOUTME: Analytics CLI command
// ABOUTME: Prints the call summary and exports it as JSON or xlsx
package cli

import (
	"flag"
	"fmt"
	"sort"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/export"
	"github.com/fleetcall/dispatchctl/models"
)

// AnalyticsCommand fetches the aggregate call summary for a trailing window.
func AnalyticsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	days := fs.Int("days", 7, "Trailing window in days (1-90)")
	format := fs.String("export", "", "Export format (json or xlsx)")
	output := fs.String("output", "", "Output file (default: generated name)")
	_ = fs.Parse(args)

	if *days < 1 || *days > 90 {
		return fmt.Errorf("--days must be between 1 and 90")
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	summary, err := client.Analytics(ctx, *days)
	if err != nil {
		return fmt.Errorf("failed to fetch analytics: %w", err)
	}

	switch *format {
	case "":
		printSummary(summary)
		return nil
	case "json":
		path := *output
		if path == "" {
			path = export.DefaultFilename("analytics", "json")
		}
		if err := export.WriteJSON(path, summary); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("✓ Analytics written to %s\n", path)
		return nil
	case "xlsx":
		// The workbook also carries the raw calls for the window
		result, err := client.ListCalls(ctx, api.CallFilter{PerPage: 100})
		if err != nil {
			return fmt.Errorf("failed to fetch calls for export: %w", err)
		}

		path := *output
		if path == "" {
			path = export.DefaultFilename("analytics", "xlsx")
		}
		if err := export.WriteAnalyticsWorkbook(path, summary, result.Calls); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Printf("✓ Analytics workbook written to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown export format: %s (use json or xlsx)", *format)
	}
}

func printSummary(summary *models.AnalyticsSummary) {
	fmt.Printf("Call analytics, last %d day(s)\n", summary.PeriodDays)
	fmt.Printf("  Total calls:      %d\n", summary.TotalCalls)
	fmt.Printf("  Completed:        %d\n", summary.CompletedCalls)
	fmt.Printf("  Failed:           %d\n", summary.FailedCalls)
	fmt.Printf("  Success rate:     %.1f%%\n", summary.SuccessRate)
	fmt.Printf("  Average duration: %.1fs\n", summary.AverageDuration)

	if len(summary.CallOutcomes) > 0 {
		fmt.Println("  Outcomes:")
		outcomes := make([]string, 0, len(summary.CallOutcomes))
		for outcome := range summary.CallOutcomes {
			outcomes = append(outcomes, outcome)
		}
		sort.Strings(outcomes)
		for _, outcome := range outcomes {
			fmt.Printf("    %-22s %d\n", outcome, summary.CallOutcomes[outcome])
		}
	}
}
