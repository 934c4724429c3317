// ABOUTME: Visualization CLI commands
// ABOUTME: Dashboard and call-flow graph over the local cache
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/fleetcall/dispatchctl/viz"
)

// DashboardCommand renders the ops overview from cached data.
func DashboardCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	stats, err := viz.GenerateDashboardStats(app.DB)
	if err != nil {
		return fmt.Errorf("failed to generate dashboard: %w", err)
	}

	fmt.Print(viz.RenderDashboard(stats))
	if stats.TotalCalls == 0 {
		fmt.Println("\nCache is empty; run `dispatchctl calls list` first")
	}
	return nil
}

// FlowGraphCommand writes the agent-to-outcome graph as DOT.
func FlowGraphCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("flow-graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	generator := viz.NewGraphGenerator(app.DB)
	dot, err := generator.GenerateCallFlowGraph()
	if err != nil {
		return fmt.Errorf("failed to generate graph: %w", err)
	}

	if *output == "" {
		fmt.Print(dot)
		return nil
	}
	if err := os.WriteFile(*output, []byte(dot), 0o644); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	fmt.Printf("✓ Graph written to %s\n", *output)
	return nil
}
