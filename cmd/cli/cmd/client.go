package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fleetops/pkg/api"
)

// FleetClient handles API calls to the fleetops server.
type FleetClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewFleetClient creates a new client with the given base URL.
func NewFleetClient(baseURL string) *FleetClient {
	return &FleetClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (c *FleetClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := string(respBody)
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CreateTask sends POST /tasks to create a new maintenance task.
func (c *FleetClient) CreateTask(req api.CreateTaskRequest) (*api.TaskResponse, error) {
	var result api.TaskResponse
	if err := c.do(http.MethodPost, "/tasks", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTask sends GET /tasks/{id} to retrieve task details.
func (c *FleetClient) GetTask(taskID string) (*api.TaskResponse, error) {
	var result api.TaskResponse
	if err := c.do(http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateTaskStatus sends PUT /tasks/{id}/status.
func (c *FleetClient) UpdateTaskStatus(taskID, status string) (*api.TaskResponse, error) {
	var result api.TaskResponse
	req := api.UpdateTaskStatusRequest{Status: status}
	if err := c.do(http.MethodPut, "/tasks/"+url.PathEscape(taskID)+"/status", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AssignAuto sends POST /assignments/auto to assign the least-loaded technician.
func (c *FleetClient) AssignAuto(taskID string) (*api.AssignmentResponse, error) {
	var result api.AssignmentResponse
	req := api.AssignAutoRequest{TaskID: taskID}
	if err := c.do(http.MethodPost, "/assignments/auto", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AssignManual sends POST /assignments to assign a specific technician.
func (c *FleetClient) AssignManual(taskID string, technicianID int64) (*api.AssignmentResponse, error) {
	var result api.AssignmentResponse
	req := api.AssignManualRequest{TaskID: taskID, TechnicianID: technicianID}
	if err := c.do(http.MethodPost, "/assignments", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Respond sends PUT /assignments/{id}/response with the technician's decision.
func (c *FleetClient) Respond(assignmentID int64, accept bool, reason string) (*api.AssignmentResponse, error) {
	var result api.AssignmentResponse
	req := api.RespondRequest{Accept: accept, Reason: reason}
	path := fmt.Sprintf("/assignments/%d/response", assignmentID)
	if err := c.do(http.MethodPut, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSchedule sends POST /schedules to book a schedule slot.
func (c *FleetClient) CreateSchedule(req api.ScheduleRequest) (*api.ScheduleResponse, error) {
	var result api.ScheduleResponse
	if err := c.do(http.MethodPost, "/schedules", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Statistics sends GET /assignments/statistics for the given period.
func (c *FleetClient) Statistics(start, end time.Time) (*api.StatisticsResponse, error) {
	var result api.StatisticsResponse
	path := fmt.Sprintf("/assignments/statistics?start=%s&end=%s",
		url.QueryEscape(start.Format(time.RFC3339)), url.QueryEscape(end.Format(time.RFC3339)))
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
