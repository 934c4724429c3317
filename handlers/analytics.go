// ABOUTME: Analytics MCP tool handler
// ABOUTME: Implements the get_analytics tool over the summary endpoint
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/models"
)

type AnalyticsHandlers struct {
	client *api.Client
}

func NewAnalyticsHandlers(client *api.Client) *AnalyticsHandlers {
	return &AnalyticsHandlers{client: client}
}

type GetAnalyticsInput struct {
	Days int `json:"days,omitempty" jsonschema:"Trailing window in days, 1-90 (default 7)"`
}

func (h *AnalyticsHandlers) GetAnalytics(ctx context.Context, request *mcp.CallToolRequest, input GetAnalyticsInput) (*mcp.CallToolResult, models.AnalyticsSummary, error) {
	days := input.Days
	if days == 0 {
		days = 7
	}
	if days < 1 || days > 90 {
		return nil, models.AnalyticsSummary{}, fmt.Errorf("days must be between 1 and 90")
	}

	summary, err := h.client.Analytics(ctx, days)
	if err != nil {
		return nil, models.AnalyticsSummary{}, fmt.Errorf("failed to fetch analytics: %w", err)
	}
	return nil, *summary, nil
}
