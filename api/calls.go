// ABOUTME: Call lifecycle endpoints
// ABOUTME: Initiate, list, transcript, cancel, retry, status, and analytics
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fleetcall/dispatchctl/models"
)

// InitiateCall validates the request and starts a phone call.
func (c *Client) InitiateCall(ctx context.Context, req *models.CallInitiateRequest) (*models.Call, error) {
	if req.CallType == "" {
		req.CallType = models.CallTypePhone
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out models.Call
	if err := c.post(ctx, "/calls/initiate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitiateWebCall starts a browser-free web call and returns the audio
// stream coordinates alongside the call record.
func (c *Client) InitiateWebCall(ctx context.Context, req *models.CallInitiateRequest) (*models.WebCallSession, error) {
	req.CallType = models.CallTypeWeb
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out models.WebCallSession
	if err := c.post(ctx, "/calls/initiate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallFilter narrows ListCalls. Zero values mean no filter.
type CallFilter struct {
	Status  models.CallStatus
	Outcome string
	Page    int
	PerPage int
}

func (c *Client) ListCalls(ctx context.Context, filter CallFilter) (*models.CallPage, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Outcome != "" {
		query.Set("call_outcome", filter.Outcome)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(filter.PerPage))
	}

	var out models.CallPage
	if err := c.get(ctx, "/calls", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveCalls lists calls that are still initiated or in progress.
func (c *Client) ActiveCalls(ctx context.Context) ([]models.Call, error) {
	var out []models.Call
	if err := c.get(ctx, "/calls/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCall(ctx context.Context, id int) (*models.CallDetail, error) {
	var out models.CallDetail
	if err := c.get(ctx, fmt.Sprintf("/calls/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTranscript(ctx context.Context, id int) (*models.Transcript, error) {
	var out models.Transcript
	if err := c.get(ctx, fmt.Sprintf("/calls/%d/transcript", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelCall(ctx context.Context, id int) (*models.Call, error) {
	var out models.Call
	if err := c.post(ctx, fmt.Sprintf("/calls/%d/cancel", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetryCall re-dials a failed call with the same parameters.
func (c *Client) RetryCall(ctx context.Context, id int) (*models.Call, error) {
	var out models.Call
	if err := c.post(ctx, fmt.Sprintf("/calls/%d/retry", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CallStatus(ctx context.Context, id int) (*models.CallStatusUpdate, error) {
	var out models.CallStatusUpdate
	if err := c.get(ctx, fmt.Sprintf("/calls/%d/status", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics returns the aggregate summary over a trailing window of days
// (the backend accepts 1-90).
func (c *Client) Analytics(ctx context.Context, days int) (*models.AnalyticsSummary, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}

	var out models.AnalyticsSummary
	if err := c.get(ctx, "/calls/analytics/summary", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
