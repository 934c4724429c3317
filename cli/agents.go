// ABOUTME: Agent configuration CLI commands
// ABOUTME: Human-friendly commands for managing voice agent configs
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
)

const commandTimeout = 60 * time.Second

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func parseID(args []string, what string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%s ID is required", what)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", what, args[0])
	}
	return id, nil
}

// ListAgentsCommand lists agent configs.
func ListAgentsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-agents", flag.ExitOnError)
	scenario := fs.String("scenario", "", "Filter by scenario (check_in or emergency)")
	page := fs.Int("page", 1, "Page number")
	perPage := fs.Int("per-page", 50, "Results per page")
	cached := fs.Bool("cached", false, "List from the local cache without hitting the backend")
	_ = fs.Parse(args)

	if *cached {
		configs, err := db.ListAgents(app.DB, models.ScenarioType(*scenario), *perPage)
		if err != nil {
			return fmt.Errorf("failed to read agent cache: %w", err)
		}
		printAgentTable(configs)
		return nil
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := client.ListAgents(ctx, models.ScenarioType(*scenario), *page, *perPage)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	// Refresh the local cache with whatever came back
	if err := db.PutAgents(app.DB, result.Configs); err != nil {
		app.Log.WithError(err).Warn("agent cache update failed")
	}

	printAgentTable(result.Configs)
	if len(result.Configs) > 0 {
		fmt.Printf("\nPage %d of %d config(s)\n", result.Page, result.Total)
	}
	return nil
}

func printAgentTable(configs []models.AgentConfig) {
	if len(configs) == 0 {
		fmt.Println("No agent configs found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSCENARIO\tACTIVE\tDEPLOYED\tVERSION")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t------\t--------\t-------")
	for _, cfg := range configs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\t%d\n",
			cfg.ID, cfg.Name, cfg.ScenarioType, cfg.IsActive, cfg.IsDeployed, cfg.Version)
	}
	_ = w.Flush()
}

// ShowAgentCommand prints one config in full.
func ShowAgentCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show-agent", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "agent")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := client.GetAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get agent: %w", err)
	}
	if err := db.PutAgent(app.DB, cfg); err != nil {
		app.Log.WithError(err).Warn("agent cache update failed")
	}

	printAgentConfig(cfg)
	return nil
}

func printAgentConfig(cfg *models.AgentConfig) {
	fmt.Printf("Agent #%d: %s\n", cfg.ID, cfg.Name)
	fmt.Printf("  Scenario:     %s\n", cfg.ScenarioType)
	if cfg.Description != "" {
		fmt.Printf("  Description:  %s\n", cfg.Description)
	}
	fmt.Printf("  Active:       %t\n", cfg.IsActive)
	fmt.Printf("  Deployed:     %t (version %d)\n", cfg.IsDeployed, cfg.Version)
	if cfg.ProviderAgentID != "" {
		fmt.Printf("  Provider ID:  %s\n", cfg.ProviderAgentID)
	}
	fmt.Println("  Prompts:")
	fmt.Printf("    Opening:    %s\n", cfg.Prompts.Opening)
	fmt.Printf("    Follow-up:  %s\n", cfg.Prompts.FollowUp)
	fmt.Printf("    Closing:    %s\n", cfg.Prompts.Closing)
	if cfg.Prompts.EmergencyTrigger != "" {
		fmt.Printf("    Emergency:  %s\n", cfg.Prompts.EmergencyTrigger)
	}
	fmt.Println("  Voice:")
	fmt.Printf("    Speed %.2f, temperature %.2f, responsiveness %.2f, interruption %.2f\n",
		cfg.VoiceSettings.VoiceSpeed, cfg.VoiceSettings.VoiceTemperature,
		cfg.VoiceSettings.Responsiveness, cfg.VoiceSettings.InterruptionSensitivity)
	fmt.Printf("    Backchanneling %t, filler words %t\n",
		cfg.VoiceSettings.Backchanneling, cfg.VoiceSettings.FillerWords)
	fmt.Println("  Flow:")
	fmt.Printf("    Max turns %d, timeout %ds, retries %d\n",
		cfg.Flow.MaxTurns, cfg.Flow.TimeoutSeconds, cfg.Flow.RetryAttempts)
	fmt.Printf("    Emergency keywords: %s\n", strings.Join(cfg.Flow.EmergencyKeywords, ", "))
	fmt.Printf("    Extraction fields:  %s\n", strings.Join(cfg.Flow.DataExtractionPoints, ", "))
}

// CreateAgentCommand creates a new agent config from a JSON file or flags,
// starting from the scenario defaults.
func CreateAgentCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("create-agent", flag.ExitOnError)
	file := fs.String("file", "", "JSON config file (flags override its fields)")
	name := fs.String("name", "", "Config name (required)")
	scenario := fs.String("scenario", "check_in", "Scenario type (check_in or emergency)")
	description := fs.String("description", "", "Description")
	opening := fs.String("opening", "", "Opening prompt (required)")
	followUp := fs.String("follow-up", "", "Follow-up prompt (required)")
	closing := fs.String("closing", "", "Closing prompt (required)")
	emergencyTrigger := fs.String("emergency-trigger", "", "Emergency trigger prompt")
	voiceSpeed := fs.Float64("voice-speed", 1.0, "Voice speed (0.5-2.0)")
	maxTurns := fs.Int("max-turns", 20, "Max conversation turns (5-50)")
	_ = fs.Parse(args)

	cfg := models.DefaultAgentConfig(models.ScenarioType(*scenario))
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}
	}

	if *name != "" {
		cfg.Name = *name
	}
	if cfg.Name == "" {
		return fmt.Errorf("--name is required")
	}
	if *description != "" {
		cfg.Description = *description
	}
	if *opening != "" {
		cfg.Prompts.Opening = *opening
	}
	if *followUp != "" {
		cfg.Prompts.FollowUp = *followUp
	}
	if *closing != "" {
		cfg.Prompts.Closing = *closing
	}
	if *emergencyTrigger != "" {
		cfg.Prompts.EmergencyTrigger = *emergencyTrigger
	}
	if *voiceSpeed != 1.0 {
		cfg.VoiceSettings.VoiceSpeed = *voiceSpeed
	}
	if *maxTurns != 20 {
		cfg.Flow.MaxTurns = *maxTurns
	}
	cfg.IsActive = true

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	created, err := client.CreateAgent(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	if err := db.PutAgent(app.DB, created); err != nil {
		app.Log.WithError(err).Warn("agent cache update failed")
	}

	fmt.Printf("✓ Agent created: %s (ID: %d)\n", created.Name, created.ID)
	return nil
}

// UpdateAgentCommand applies flag values on top of the stored config.
func UpdateAgentCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("update-agent", flag.ExitOnError)
	name := fs.String("name", "", "Config name")
	description := fs.String("description", "", "Description")
	opening := fs.String("opening", "", "Opening prompt")
	followUp := fs.String("follow-up", "", "Follow-up prompt")
	closing := fs.String("closing", "", "Closing prompt")
	active := fs.String("active", "", "Set active state (true or false)")
	_ = fs.Parse(args)

	// First positional arg is the agent ID
	id, err := parseID(fs.Args(), "agent")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	existing, err := client.GetAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("agent not found: %w", err)
	}

	if *name != "" {
		existing.Name = *name
	}
	if *description != "" {
		existing.Description = *description
	}
	if *opening != "" {
		existing.Prompts.Opening = *opening
	}
	if *followUp != "" {
		existing.Prompts.FollowUp = *followUp
	}
	if *closing != "" {
		existing.Prompts.Closing = *closing
	}
	if *active != "" {
		val, err := strconv.ParseBool(*active)
		if err != nil {
			return fmt.Errorf("invalid --active value: %s", *active)
		}
		existing.IsActive = val
	}

	updated, err := client.UpdateAgent(ctx, id, existing)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	if err := db.PutAgent(app.DB, updated); err != nil {
		app.Log.WithError(err).Warn("agent cache update failed")
	}

	fmt.Printf("✓ Agent updated: %s (version %d)\n", updated.Name, updated.Version)
	return nil
}

// DeleteAgentCommand deletes an agent config after confirmation.
func DeleteAgentCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-agent", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation")
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "agent")
	if err != nil {
		return err
	}

	if !*force && !confirm(fmt.Sprintf("Delete agent config %d?", id)) {
		fmt.Println("Cancelled")
		return nil
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.DeleteAgent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	if err := db.InvalidateAgent(app.DB, id); err != nil {
		app.Log.WithError(err).Warn("agent cache invalidation failed")
	}

	fmt.Printf("✓ Agent deleted: %d\n", id)
	return nil
}

// DeployAgentCommand pushes a config to the voice provider.
func DeployAgentCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("deploy-agent", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "agent")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := client.DeployAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to deploy agent: %w", err)
	}
	if err := db.PutAgent(app.DB, cfg); err != nil {
		app.Log.WithError(err).Warn("agent cache update failed")
	}

	fmt.Printf("✓ Agent deployed: %s (version %d)\n", cfg.Name, cfg.Version)
	return nil
}

// TestAgentCommand runs a backend dry-run against a config.
func TestAgentCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("test-agent", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "agent")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := client.TestAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("agent test failed: %w", err)
	}

	fmt.Printf("✓ Agent %d test results:\n", id)
	for key, value := range result {
		fmt.Printf("  %s: %v\n", key, value)
	}
	return nil
}

// AgentCallsCommand lists recent calls placed with a config.
func AgentCallsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("agent-calls", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "agent")
	if err != nil {
		return err
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	calls, err := client.AgentCalls(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list agent calls: %w", err)
	}
	if err := db.PutCalls(app.DB, calls); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	printCallTable(calls)
	return nil
}
