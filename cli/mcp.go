// ABOUTME: MCP server subcommand
// ABOUTME: Exposes the dispatch backend as MCP tools over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fleetcall/dispatchctl/handlers"
)

// MCPCommand starts the MCP server on stdio.
func MCPCommand(app *App) error {
	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	app.Log.Info("starting dispatch MCP server")

	agentHandlers := handlers.NewAgentHandlers(client)
	callHandlers := handlers.NewCallHandlers(client)
	analyticsHandlers := handlers.NewAnalyticsHandlers(client)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dispatchctl",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_agents",
		Description: "List voice agent configurations, optionally filtered by scenario",
	}, agentHandlers.ListAgents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_agent",
		Description: "Get one agent configuration by ID, including prompts and voice settings",
	}, agentHandlers.GetAgent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_agent",
		Description: "Create a new voice agent configuration from scenario defaults",
	}, agentHandlers.CreateAgent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deploy_agent",
		Description: "Deploy an agent configuration to the voice provider",
	}, agentHandlers.DeployAgent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "initiate_call",
		Description: "Start a phone check-in call to a driver about a load",
	}, callHandlers.InitiateCall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_calls",
		Description: "List calls with optional status and outcome filters",
	}, callHandlers.ListCalls)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_call",
		Description: "Get one call's details including extracted structured data",
	}, callHandlers.GetCall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Get a completed call's turn-by-turn transcript",
	}, callHandlers.GetTranscript)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_analytics",
		Description: "Get aggregate call analytics over a trailing window of days",
	}, analyticsHandlers.GetAnalytics)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}
