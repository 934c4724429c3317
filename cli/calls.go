// ABOUTME: Call lifecycle CLI commands
// ABOUTME: Initiate, list, inspect, cancel, and retry dispatch calls
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/export"
	"github.com/fleetcall/dispatchctl/models"
)

func printCallTable(calls []models.Call) {
	if len(calls) == 0 {
		fmt.Println("No calls found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDRIVER\tLOAD\tTYPE\tSTATUS\tOUTCOME\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t----\t----\t------\t-------\t--------")
	for _, call := range calls {
		outcome := call.CallOutcome
		if outcome == "" {
			outcome = "-"
		}
		duration := "-"
		if call.Duration > 0 {
			duration = fmt.Sprintf("%ds", call.Duration)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			call.ID, call.DriverName, call.LoadNumber, call.CallType, call.Status, outcome, duration)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d call(s)\n", len(calls))
}

// InitiateCallCommand starts a phone call to a driver.
func InitiateCallCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("initiate-call", flag.ExitOnError)
	driver := fs.String("driver", "", "Driver name (required)")
	phone := fs.String("phone", "", "Driver phone number (required)")
	load := fs.String("load", "", "Load number (required)")
	agentID := fs.Int("agent", 0, "Agent config ID (required)")
	_ = fs.Parse(args)

	if *agentID == 0 {
		return fmt.Errorf("--agent is required")
	}

	req := &models.CallInitiateRequest{
		DriverName:    *driver,
		PhoneNumber:   *phone,
		LoadNumber:    *load,
		AgentConfigID: *agentID,
		CallType:      models.CallTypePhone,
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	call, err := client.InitiateCall(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to initiate call: %w", err)
	}
	if err := db.PutCall(app.DB, call); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	fmt.Printf("✓ Call initiated: #%d to %s (%s) for load %s\n",
		call.ID, call.DriverName, call.PhoneNumber, call.LoadNumber)
	fmt.Printf("  Status: %s\n", call.Status)
	return nil
}

// ListCallsCommand lists calls with optional filters.
func ListCallsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-calls", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	outcome := fs.String("outcome", "", "Filter by outcome")
	page := fs.Int("page", 1, "Page number")
	perPage := fs.Int("per-page", 50, "Results per page")
	cached := fs.Bool("cached", false, "List from the local cache without hitting the backend")
	_ = fs.Parse(args)

	if *cached {
		calls, err := db.ListCalls(app.DB, models.CallStatus(*status), *perPage)
		if err != nil {
			return fmt.Errorf("failed to read call cache: %w", err)
		}
		printCallTable(calls)
		return nil
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := client.ListCalls(ctx, api.CallFilter{
		Status:  models.CallStatus(*status),
		Outcome: *outcome,
		Page:    *page,
		PerPage: *perPage,
	})
	if err != nil {
		return fmt.Errorf("failed to list calls: %w", err)
	}
	if err := db.PutCalls(app.DB, result.Calls); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	printCallTable(result.Calls)
	if result.HasNext {
		fmt.Printf("More results: --page %d\n", result.Page+1)
	}
	return nil
}

// ActiveCallsCommand lists calls still in flight.
func ActiveCallsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("active-calls", flag.ExitOnError)
	_ = fs.Parse(args)

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	calls, err := client.ActiveCalls(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active calls: %w", err)
	}
	if err := db.PutCalls(app.DB, calls); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	printCallTable(calls)
	return nil
}

// ShowCallCommand prints a call's details and extracted data.
func ShowCallCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show-call", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "call")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	detail, err := client.GetCall(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get call: %w", err)
	}
	if err := db.PutCall(app.DB, &detail.Call); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	fmt.Printf("Call #%d: %s / load %s\n", detail.ID, detail.DriverName, detail.LoadNumber)
	fmt.Printf("  Type:     %s\n", detail.CallType)
	fmt.Printf("  Status:   %s\n", detail.Status)
	if detail.CallOutcome != "" {
		fmt.Printf("  Outcome:  %s\n", detail.CallOutcome)
	}
	if detail.AgentConfigName != "" {
		fmt.Printf("  Agent:    %s (%s)\n", detail.AgentConfigName, detail.ScenarioType)
	}
	if detail.Duration > 0 {
		fmt.Printf("  Duration: %ds\n", detail.Duration)
	}
	if detail.Confidence > 0 {
		fmt.Printf("  Extraction confidence: %.2f\n", detail.Confidence)
	}
	if detail.ErrorMessage != "" {
		fmt.Printf("  Error:    %s\n", detail.ErrorMessage)
	}

	if len(detail.StructuredData) > 0 {
		fmt.Println("  Extracted data:")
		for key, value := range detail.StructuredData {
			fmt.Printf("    %s: %v\n", key, value)
		}
	}
	return nil
}

// TranscriptCommand prints or exports a call transcript.
func TranscriptCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("transcript", flag.ExitOnError)
	output := fs.String("output", "", "Write transcript JSON to file instead of stdout")
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "call")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	transcript, err := client.GetTranscript(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get transcript: %w", err)
	}

	if *output != "" {
		if err := export.WriteTranscriptJSON(*output, transcript); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
		fmt.Printf("✓ Transcript written to %s\n", *output)
		return nil
	}

	fmt.Printf("Transcript for call #%d (%s / load %s)\n\n",
		transcript.CallID, transcript.DriverName, transcript.LoadNumber)
	for _, turn := range transcript.Turns {
		marker := ""
		if turn.EmergencyDetected {
			marker = "  ⚠ EMERGENCY"
		}
		fmt.Printf("[%02d] %s: %s%s\n", turn.TurnNumber, turn.Speaker, turn.Message, marker)
	}
	if transcript.TotalDuration > 0 {
		fmt.Printf("\nDuration: %ds", transcript.TotalDuration)
		if transcript.Confidence > 0 {
			fmt.Printf(", extraction confidence %.2f", transcript.Confidence)
		}
		fmt.Println()
	}
	return nil
}

// CancelCallCommand cancels an in-flight call.
func CancelCallCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("cancel-call", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "call")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	call, err := client.CancelCall(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel call: %w", err)
	}
	if err := db.PutCall(app.DB, call); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	fmt.Printf("✓ Call cancelled: #%d\n", call.ID)
	return nil
}

// RetryCallCommand re-dials a failed call.
func RetryCallCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("retry-call", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "call")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	call, err := client.RetryCall(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retry call: %w", err)
	}
	if err := db.PutCall(app.DB, call); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	fmt.Printf("✓ Retry started: new call #%d (%s)\n", call.ID, call.Status)
	return nil
}

// CallStatusCommand polls the current status of one call.
func CallStatusCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("call-status", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "call")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	status, err := client.CallStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get call status: %w", err)
	}
	if err := db.UpdateCallStatus(app.DB, status); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	fmt.Printf("Call #%d: %s\n", status.CallID, status.Status)
	if status.Duration > 0 {
		fmt.Printf("  Duration: %ds\n", status.Duration)
	}
	if status.Message != "" {
		fmt.Printf("  Message:  %s\n", status.Message)
	}
	if !status.Timestamp.IsZero() {
		fmt.Printf("  As of:    %s\n", status.Timestamp.Format(time.RFC3339))
	}
	return nil
}
