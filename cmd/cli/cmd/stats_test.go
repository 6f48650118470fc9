package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"fleetops/pkg/api"
)

func TestStatsCommand_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assignments/statistics" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != "2026-09-01T00:00:00Z" {
			t.Errorf("unexpected start param: %s", got)
		}
		if got := r.URL.Query().Get("end"); got != "2026-10-01T00:00:00Z" {
			t.Errorf("unexpected end param: %s", got)
		}

		json.NewEncoder(w).Encode(api.StatisticsResponse{
			Total:          8,
			Completed:      4,
			Pending:        2,
			Rejected:       2,
			CompletionRate: 0.5,
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := runCommand(t, "stats",
		"--start", "2026-09-01T00:00:00Z", "--end", "2026-10-01T00:00:00Z")

	if !strings.Contains(output, "Assignment Statistics") {
		t.Errorf("expected statistics header, got: %s", output)
	}
	if !strings.Contains(output, "50.0%") {
		t.Errorf("expected completion rate as a percentage, got: %s", output)
	}
}

func TestStatsCommand_InvalidStart(t *testing.T) {
	resetViper()

	output := runCommand(t, "stats", "--start", "last week", "--end", "2026-10-01T00:00:00Z")

	if !strings.Contains(output, "Invalid --start time") {
		t.Errorf("expected time parse error, got: %s", output)
	}
}
