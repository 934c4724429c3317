// ABOUTME: Call MCP tool handlers
// ABOUTME: Implements initiate_call, list_calls, get_call, and get_transcript tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/models"
)

type CallHandlers struct {
	client *api.Client
}

func NewCallHandlers(client *api.Client) *CallHandlers {
	return &CallHandlers{client: client}
}

type InitiateCallInput struct {
	DriverName    string `json:"driver_name" jsonschema:"Driver name (required)"`
	PhoneNumber   string `json:"phone_number" jsonschema:"Driver phone number (required)"`
	LoadNumber    string `json:"load_number" jsonschema:"Load number (required)"`
	AgentConfigID int    `json:"agent_config_id" jsonschema:"Agent config ID to place the call with (required)"`
}

func (h *CallHandlers) InitiateCall(ctx context.Context, request *mcp.CallToolRequest, input InitiateCallInput) (*mcp.CallToolResult, models.Call, error) {
	if input.AgentConfigID == 0 {
		return nil, models.Call{}, fmt.Errorf("agent_config_id is required")
	}

	call, err := h.client.InitiateCall(ctx, &models.CallInitiateRequest{
		DriverName:    input.DriverName,
		PhoneNumber:   input.PhoneNumber,
		LoadNumber:    input.LoadNumber,
		AgentConfigID: input.AgentConfigID,
		CallType:      models.CallTypePhone,
	})
	if err != nil {
		return nil, models.Call{}, fmt.Errorf("failed to initiate call: %w", err)
	}
	return nil, *call, nil
}

type ListCallsInput struct {
	Status  string `json:"status,omitempty" jsonschema:"Filter by status (initiated, in_progress, completed, failed, cancelled)"`
	Outcome string `json:"outcome,omitempty" jsonschema:"Filter by call outcome"`
	Page    int    `json:"page,omitempty" jsonschema:"Page number (default 1)"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"Results per page (default 20)"`
}

type ListCallsOutput struct {
	Calls   []models.Call `json:"calls"`
	Total   int           `json:"total"`
	HasNext bool          `json:"has_next"`
}

func (h *CallHandlers) ListCalls(ctx context.Context, request *mcp.CallToolRequest, input ListCallsInput) (*mcp.CallToolResult, ListCallsOutput, error) {
	perPage := input.PerPage
	if perPage == 0 {
		perPage = 20
	}

	page, err := h.client.ListCalls(ctx, api.CallFilter{
		Status:  models.CallStatus(input.Status),
		Outcome: input.Outcome,
		Page:    input.Page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, ListCallsOutput{}, fmt.Errorf("failed to list calls: %w", err)
	}

	return nil, ListCallsOutput{
		Calls:   page.Calls,
		Total:   page.Total,
		HasNext: page.HasNext,
	}, nil
}

type GetCallInput struct {
	ID int `json:"id" jsonschema:"Call ID (required)"`
}

func (h *CallHandlers) GetCall(ctx context.Context, request *mcp.CallToolRequest, input GetCallInput) (*mcp.CallToolResult, models.CallDetail, error) {
	if input.ID == 0 {
		return nil, models.CallDetail{}, fmt.Errorf("id is required")
	}

	detail, err := h.client.GetCall(ctx, input.ID)
	if err != nil {
		return nil, models.CallDetail{}, fmt.Errorf("failed to get call: %w", err)
	}
	return nil, *detail, nil
}

type GetTranscriptInput struct {
	ID int `json:"id" jsonschema:"Call ID (required)"`
}

func (h *CallHandlers) GetTranscript(ctx context.Context, request *mcp.CallToolRequest, input GetTranscriptInput) (*mcp.CallToolResult, models.Transcript, error) {
	if input.ID == 0 {
		return nil, models.Transcript{}, fmt.Errorf("id is required")
	}

	transcript, err := h.client.GetTranscript(ctx, input.ID)
	if err != nil {
		return nil, models.Transcript{}, fmt.Errorf("failed to get transcript: %w", err)
	}
	return nil, *transcript, nil
}
