package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"fleetops/pkg/api"
)

func TestScheduleCreateCommand_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/schedules" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req api.ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if req.TaskID == nil || *req.TaskID != "TASK-100" {
			t.Errorf("expected task_id TASK-100, got %v", req.TaskID)
		}
		if req.TechnicianID == nil || *req.TechnicianID != 42 {
			t.Errorf("expected technician 42, got %v", req.TechnicianID)
		}
		if req.Notes == nil || *req.Notes != "Bay 3" {
			t.Errorf("expected notes to be forwarded, got %v", req.Notes)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.ScheduleResponse{
			ID:           9,
			TaskID:       *req.TaskID,
			TechnicianID: *req.TechnicianID,
			StartTime:    *req.StartTime,
			EndTime:      *req.EndTime,
			Priority:     "MEDIUM",
			Status:       "SCHEDULED",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := runCommand(t, "schedule", "create",
		"--task", "TASK-100", "--technician", "42",
		"--start", "2026-09-01T09:00:00Z", "--end", "2026-09-01T11:00:00Z",
		"--notes", "Bay 3")

	if !strings.Contains(output, "Schedule booked") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "2026-09-01T09:00:00Z") {
		t.Errorf("expected slot times in output, got: %s", output)
	}
}

func TestScheduleCreateCommand_ConflictReported(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(api.ErrorResponse{
			Error: "technician 42 already booked from 09:00 to 11:00",
			Code:  "rule_violation",
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := runCommand(t, "schedule", "create",
		"--task", "TASK-100", "--technician", "42",
		"--start", "2026-09-01T09:30:00Z", "--end", "2026-09-01T10:30:00Z")

	if !strings.Contains(output, "Error (409)") || !strings.Contains(output, "already booked") {
		t.Errorf("expected conflict error output, got: %s", output)
	}
}

func TestScheduleCreateCommand_BadStartTime(t *testing.T) {
	resetViper()

	output := runCommand(t, "schedule", "create",
		"--task", "TASK-100", "--technician", "42",
		"--start", "tomorrow morning", "--end", "2026-09-01T11:00:00Z")

	if !strings.Contains(output, "Invalid --start time") {
		t.Errorf("expected time parse error, got: %s", output)
	}
}
