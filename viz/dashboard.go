// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII dashboard of the cached dispatch call overview
package viz

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
)

type DashboardStats struct {
	// Call counts by status
	CallsByStatus map[models.CallStatus]int

	// Call counts by outcome
	CallsByOutcome map[string]int

	// Overall stats
	TotalCalls      int
	TotalAgents     int
	DeployedAgents  int
	ActiveCalls     int
	EmergencyCount  int
	AverageDuration float64

	// Calls stuck in flight for too long
	StalledCalls []StalledCall
}

type StalledCall struct {
	ID         int
	DriverName string
	LoadNumber string
	MinutesIn  int
}

// stalledAfter is how long an in-flight call can sit before the dashboard
// flags it.
const stalledAfter = 15 * time.Minute

func GenerateDashboardStats(database *sql.DB) (*DashboardStats, error) {
	stats := &DashboardStats{
		CallsByStatus:  make(map[models.CallStatus]int),
		CallsByOutcome: make(map[string]int),
	}

	calls, err := db.ListCalls(database, "", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calls: %w", err)
	}

	now := time.Now()
	totalDuration := 0
	completed := 0
	for _, call := range calls {
		stats.CallsByStatus[call.Status]++
		if call.CallOutcome != "" {
			stats.CallsByOutcome[call.CallOutcome]++
		}
		if call.CallOutcome == models.OutcomeEmergencyEscalation {
			stats.EmergencyCount++
		}
		if call.Duration > 0 {
			totalDuration += call.Duration
			completed++
		}

		if !call.Status.IsTerminal() {
			stats.ActiveCalls++
			if now.Sub(call.UpdatedAt) > stalledAfter {
				stats.StalledCalls = append(stats.StalledCalls, StalledCall{
					ID:         call.ID,
					DriverName: call.DriverName,
					LoadNumber: call.LoadNumber,
					MinutesIn:  int(now.Sub(call.UpdatedAt).Minutes()),
				})
			}
		}
	}
	stats.TotalCalls = len(calls)
	if completed > 0 {
		stats.AverageDuration = float64(totalDuration) / float64(completed)
	}

	agents, err := db.ListAgents(database, "", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agents: %w", err)
	}
	stats.TotalAgents = len(agents)
	for _, agent := range agents {
		if agent.IsDeployed {
			stats.DeployedAgents++
		}
	}

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DISPATCH OPERATIONS DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("CALLS BY STATUS\n")
	renderStatusBars(&out, stats.CallsByStatus)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📞 %d calls  🎙 %d agents (%d deployed)  ⏱ avg %.0fs\n\n",
		stats.TotalCalls, stats.TotalAgents, stats.DeployedAgents, stats.AverageDuration))

	if len(stats.CallsByOutcome) > 0 {
		out.WriteString("OUTCOMES\n")
		for _, outcome := range []string{
			models.OutcomeInTransitUpdate,
			models.OutcomeArrivalConfirmation,
			models.OutcomeEmergencyEscalation,
		} {
			if count, ok := stats.CallsByOutcome[outcome]; ok {
				out.WriteString(fmt.Sprintf("  %-22s %d\n", outcome, count))
			}
		}
		out.WriteString("\n")
	}

	if stats.EmergencyCount > 0 || len(stats.StalledCalls) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if stats.EmergencyCount > 0 {
			out.WriteString(fmt.Sprintf("  🚨 %d emergency escalation(s)\n", stats.EmergencyCount))
		}
		for _, call := range stats.StalledCalls {
			out.WriteString(fmt.Sprintf("  ⚠️  call #%d (%s / %s) in flight for %d min\n",
				call.ID, call.DriverName, call.LoadNumber, call.MinutesIn))
		}
	}

	return out.String()
}

func renderStatusBars(out *strings.Builder, byStatus map[models.CallStatus]int) {
	statuses := []models.CallStatus{
		models.StatusInitiated,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusFailed,
		models.StatusCancelled,
	}

	maxCount := 0
	for _, count := range byStatus {
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, status := range statuses {
		count, exists := byStatus[status]
		if !exists {
			continue
		}

		barLength := (count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-12s %s  %d\n", status, bar, count))
	}
}
