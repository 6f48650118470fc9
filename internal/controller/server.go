// Package controller contains the HTTP API for the fleet maintenance service.
package controller

import (
	"context"
	"net/http"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/controller/handlers"
	"fleetops/internal/controller/middleware"
)

// Server is the HTTP server for the fleet API.
type Server struct {
	httpServer *http.Server
}

// New creates a new API server with all routes registered.
func New(addr string, h *handlers.Handlers, cfg *config.Config, metricsHandler http.Handler) *Server {
	mux := http.NewServeMux()

	// Tasks
	mux.HandleFunc("POST /tasks", h.CreateTask)
	mux.HandleFunc("GET /tasks", h.ListTasks)
	mux.HandleFunc("GET /tasks/overdue", h.OverdueTasks)
	mux.HandleFunc("GET /tasks/due", h.DueTasks)
	mux.HandleFunc("GET /tasks/{id}", h.GetTask)
	mux.HandleFunc("PATCH /tasks/{id}", h.UpdateTask)
	mux.HandleFunc("DELETE /tasks/{id}", h.DeleteTask)
	mux.HandleFunc("PUT /tasks/{id}/status", h.UpdateTaskStatus)
	mux.HandleFunc("PUT /tasks/{id}/completion", h.UpdateTaskCompletion)
	mux.HandleFunc("PUT /tasks/{id}/technician", h.AssignTaskTechnician)
	mux.HandleFunc("DELETE /tasks/{id}/technician", h.UnassignTaskTechnician)
	mux.HandleFunc("PUT /tasks/{id}/equipment", h.AssignTaskEquipment)
	mux.HandleFunc("POST /tasks/{id}/skills", h.AddTaskSkill)
	mux.HandleFunc("DELETE /tasks/{id}/skills/{value}", h.RemoveTaskSkill)
	mux.HandleFunc("POST /tasks/{id}/parts", h.AddTaskPart)
	mux.HandleFunc("DELETE /tasks/{id}/parts/{value}", h.RemoveTaskPart)
	mux.HandleFunc("PUT /tasks/{id}/due-date", h.SetTaskDueDate)
	mux.HandleFunc("GET /tasks/{id}/assignments", h.TaskAssignments)
	mux.HandleFunc("POST /tasks/bulk/technician", h.BulkAssignTechnician)
	mux.HandleFunc("POST /tasks/bulk/status", h.BulkUpdateStatus)

	// Assignments
	mux.HandleFunc("POST /assignments", h.AssignManual)
	mux.HandleFunc("POST /assignments/auto", h.AssignAuto)
	mux.HandleFunc("GET /assignments/statistics", h.AssignmentStatistics)
	mux.HandleFunc("GET /assignments/{id}", h.GetAssignment)
	mux.HandleFunc("PUT /assignments/{id}/response", h.RespondToAssignment)
	mux.HandleFunc("PUT /assignments/{id}/start", h.StartAssignment)
	mux.HandleFunc("PUT /assignments/{id}/complete", h.CompleteAssignment)
	mux.HandleFunc("POST /assignments/{id}/reassign", h.ReassignTask)

	// Schedules
	mux.HandleFunc("POST /schedules", h.CreateSchedule)
	mux.HandleFunc("GET /schedules", h.ListSchedules)
	mux.HandleFunc("GET /schedules/{id}", h.GetSchedule)
	mux.HandleFunc("PUT /schedules/{id}", h.UpdateSchedule)
	mux.HandleFunc("DELETE /schedules/{id}", h.DeleteSchedule)

	// Technicians
	mux.HandleFunc("GET /technicians/{id}/tasks", h.TechnicianTasks)
	mux.HandleFunc("GET /technicians/{id}/assignments", h.TechnicianAssignments)
	mux.HandleFunc("GET /technicians/{id}/assignments/pending", h.PendingAssignments)
	mux.HandleFunc("GET /technicians/{id}/assignments/active", h.ActiveAssignments)
	mux.HandleFunc("GET /technicians/{id}/schedules", h.TechnicianSchedules)

	// Operational endpoints
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	var handler http.Handler = mux
	handler = middleware.RateLimit(cfg.RateLimit, cfg.RateLimitBurst)(handler)
	handler = middleware.RequestID(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
