// ABOUTME: Agent config MCP tool handlers
// ABOUTME: Implements list_agents, get_agent, create_agent, and deploy_agent tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/models"
)

type AgentHandlers struct {
	client *api.Client
}

func NewAgentHandlers(client *api.Client) *AgentHandlers {
	return &AgentHandlers{client: client}
}

type ListAgentsInput struct {
	Scenario string `json:"scenario,omitempty" jsonschema:"Filter by scenario type (check_in or emergency)"`
	Page     int    `json:"page,omitempty" jsonschema:"Page number (default 1)"`
	PerPage  int    `json:"per_page,omitempty" jsonschema:"Results per page (default 20)"`
}

type ListAgentsOutput struct {
	Configs []models.AgentConfig `json:"configs"`
	Total   int                  `json:"total"`
	HasNext bool                 `json:"has_next"`
}

func (h *AgentHandlers) ListAgents(ctx context.Context, request *mcp.CallToolRequest, input ListAgentsInput) (*mcp.CallToolResult, ListAgentsOutput, error) {
	perPage := input.PerPage
	if perPage == 0 {
		perPage = 20
	}

	page, err := h.client.ListAgents(ctx, models.ScenarioType(input.Scenario), input.Page, perPage)
	if err != nil {
		return nil, ListAgentsOutput{}, fmt.Errorf("failed to list agents: %w", err)
	}

	return nil, ListAgentsOutput{
		Configs: page.Configs,
		Total:   page.Total,
		HasNext: page.HasNext,
	}, nil
}

type GetAgentInput struct {
	ID int `json:"id" jsonschema:"Agent config ID (required)"`
}

func (h *AgentHandlers) GetAgent(ctx context.Context, request *mcp.CallToolRequest, input GetAgentInput) (*mcp.CallToolResult, models.AgentConfig, error) {
	if input.ID == 0 {
		return nil, models.AgentConfig{}, fmt.Errorf("id is required")
	}

	cfg, err := h.client.GetAgent(ctx, input.ID)
	if err != nil {
		return nil, models.AgentConfig{}, fmt.Errorf("failed to get agent: %w", err)
	}
	return nil, *cfg, nil
}

type CreateAgentInput struct {
	Name             string `json:"name" jsonschema:"Config name (required)"`
	Scenario         string `json:"scenario" jsonschema:"Scenario type: check_in or emergency (required)"`
	Description      string `json:"description,omitempty" jsonschema:"Description of the config"`
	Opening          string `json:"opening" jsonschema:"Opening prompt (required)"`
	FollowUp         string `json:"follow_up" jsonschema:"Follow-up prompt (required)"`
	Closing          string `json:"closing" jsonschema:"Closing prompt (required)"`
	EmergencyTrigger string `json:"emergency_trigger,omitempty" jsonschema:"Emergency trigger prompt"`
}

func (h *AgentHandlers) CreateAgent(ctx context.Context, request *mcp.CallToolRequest, input CreateAgentInput) (*mcp.CallToolResult, models.AgentConfig, error) {
	if input.Name == "" {
		return nil, models.AgentConfig{}, fmt.Errorf("name is required")
	}

	cfg := models.DefaultAgentConfig(models.ScenarioType(input.Scenario))
	cfg.Name = input.Name
	cfg.Description = input.Description
	cfg.Prompts.Opening = input.Opening
	cfg.Prompts.FollowUp = input.FollowUp
	cfg.Prompts.Closing = input.Closing
	cfg.Prompts.EmergencyTrigger = input.EmergencyTrigger
	cfg.IsActive = true

	created, err := h.client.CreateAgent(ctx, &cfg)
	if err != nil {
		return nil, models.AgentConfig{}, fmt.Errorf("failed to create agent: %w", err)
	}
	return nil, *created, nil
}

type DeployAgentInput struct {
	ID int `json:"id" jsonschema:"Agent config ID (required)"`
}

func (h *AgentHandlers) DeployAgent(ctx context.Context, request *mcp.CallToolRequest, input DeployAgentInput) (*mcp.CallToolResult, models.AgentConfig, error) {
	if input.ID == 0 {
		return nil, models.AgentConfig{}, fmt.Errorf("id is required")
	}

	cfg, err := h.client.DeployAgent(ctx, input.ID)
	if err != nil {
		return nil, models.AgentConfig{}, fmt.Errorf("failed to deploy agent: %w", err)
	}
	return nil, *cfg, nil
}
