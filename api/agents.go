// ABOUTME: Agent configuration endpoints
// ABOUTME: CRUD plus deploy and test-call operations
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fleetcall/dispatchctl/models"
)

// ListAgents fetches one page of agent configs. scenario filters by type
// when non-empty.
func (c *Client) ListAgents(ctx context.Context, scenario models.ScenarioType, page, perPage int) (*models.AgentConfigPage, error) {
	query := url.Values{}
	if scenario != "" {
		query.Set("scenario_type", string(scenario))
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	var out models.AgentConfigPage
	if err := c.get(ctx, "/agents", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAgent(ctx context.Context, id int) (*models.AgentConfig, error) {
	var out models.AgentConfig
	if err := c.get(ctx, fmt.Sprintf("/agents/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAgent validates and normalizes the config, then POSTs it. The
// extraction field list is always the fixed list for the scenario.
func (c *Client) CreateAgent(ctx context.Context, cfg *models.AgentConfig) (*models.AgentConfig, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var out models.AgentConfig
	if err := c.post(ctx, "/agents", cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAgent(ctx context.Context, id int, cfg *models.AgentConfig) (*models.AgentConfig, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var out models.AgentConfig
	if err := c.put(ctx, fmt.Sprintf("/agents/%d", id), cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAgent removes a config. The backend answers 204.
func (c *Client) DeleteAgent(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/agents/%d", id))
}

// DeployAgent pushes the config to the voice provider and bumps the version.
func (c *Client) DeployAgent(ctx context.Context, id int) (*models.AgentConfig, error) {
	var out models.AgentConfig
	if err := c.post(ctx, fmt.Sprintf("/agents/%d/deploy", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestAgent asks the backend to run a dry-run call against the config.
func (c *Client) TestAgent(ctx context.Context, id int) (map[string]any, error) {
	var out map[string]any
	if err := c.post(ctx, fmt.Sprintf("/agents/%d/test", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AgentCalls lists recent calls placed with a config.
func (c *Client) AgentCalls(ctx context.Context, id int) ([]models.Call, error) {
	var out []models.Call
	if err := c.get(ctx, fmt.Sprintf("/agents/%d/calls", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
