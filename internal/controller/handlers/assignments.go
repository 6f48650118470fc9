package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fleetops/internal/store"
	"fleetops/pkg/api"
)

// AssignAuto handles POST /assignments/auto.
// The workload-balancing selection policy picks the technician.
func (h *Handlers) AssignAuto(w http.ResponseWriter, r *http.Request) {
	var req api.AssignAutoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.AssignAutomatically(r.Context(), req.TaskID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusCreated, assignmentResponse(assignment))
}

// AssignManual handles POST /assignments.
func (h *Handlers) AssignManual(w http.ResponseWriter, r *http.Request) {
	var req api.AssignManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.AssignManually(r.Context(), req.TaskID, req.TechnicianID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusCreated, assignmentResponse(assignment))
}

// GetAssignment handles GET /assignments/{id}.
func (h *Handlers) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.GetAssignment(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, assignmentResponse(assignment))
}

// RespondToAssignment handles PUT /assignments/{id}/response.
func (h *Handlers) RespondToAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	var req api.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.Respond(r.Context(), id, req.Accept, req.Reason)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, assignmentResponse(assignment))
}

// ReassignTask handles POST /assignments/{id}/reassign. The replacement
// assignment row is returned.
func (h *Handlers) ReassignTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	var req api.ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.Reassign(r.Context(), id, req.NewTechnicianID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusCreated, assignmentResponse(assignment))
}

// StartAssignment handles PUT /assignments/{id}/start.
func (h *Handlers) StartAssignment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.assignments.Start)
}

// CompleteAssignment handles PUT /assignments/{id}/complete.
func (h *Handlers) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.assignments.Complete)
}

// TechnicianAssignments handles GET /technicians/{id}/assignments with an
// optional status query parameter.
func (h *Handlers) TechnicianAssignments(w http.ResponseWriter, r *http.Request) {
	technicianID, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid technician id", http.StatusBadRequest)
		return
	}

	var status *store.AssignmentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := store.AssignmentStatus(raw)
		status = &s
	}

	assignments, err := h.assignments.TechnicianAssignments(r.Context(), technicianID, status)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, assignmentResponses(assignments))
}

// PendingAssignments handles GET /technicians/{id}/assignments/pending.
func (h *Handlers) PendingAssignments(w http.ResponseWriter, r *http.Request) {
	h.technicianList(w, r, h.assignments.PendingAssignments)
}

// ActiveAssignments handles GET /technicians/{id}/assignments/active.
func (h *Handlers) ActiveAssignments(w http.ResponseWriter, r *http.Request) {
	h.technicianList(w, r, h.assignments.ActiveAssignments)
}

// TaskAssignments handles GET /tasks/{id}/assignments.
func (h *Handlers) TaskAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignments.TaskAssignments(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, assignmentResponses(assignments))
}

// AssignmentStatistics handles GET /assignments/statistics?start=...&end=...
// (RFC 3339 timestamps).
func (h *Handlers) AssignmentStatistics(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		h.httpError(w, "Invalid 'start' timestamp", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		h.httpError(w, "Invalid 'end' timestamp", http.StatusBadRequest)
		return
	}

	stats, err := h.assignments.Statistics(r.Context(), start, end)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.StatisticsResponse{
		Total:          stats.Total,
		Completed:      stats.Completed,
		Pending:        stats.Pending,
		Rejected:       stats.Rejected,
		CompletionRate: stats.CompletionRate(),
	})
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (*store.Assignment, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	assignment, err := op(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, assignmentResponse(assignment))
}

func (h *Handlers) technicianList(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, technicianID int64) ([]store.Assignment, error)) {
	technicianID, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid technician id", http.StatusBadRequest)
		return
	}

	assignments, err := op(r.Context(), technicianID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, assignmentResponses(assignments))
}
