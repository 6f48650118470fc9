package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fleetops/internal/service"
	"fleetops/internal/store"
	"fleetops/pkg/api"
)

// CreateSchedule handles POST /schedules.
func (h *Handlers) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req api.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sched, err := h.schedules.CreateSchedule(r.Context(), scheduleInput(req))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusCreated, scheduleResponse(sched))
}

// UpdateSchedule handles PUT /schedules/{id} with partial-update semantics.
func (h *Handlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}

	var req api.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sched, err := h.schedules.UpdateSchedule(r.Context(), id, scheduleInput(req))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, scheduleResponse(sched))
}

// GetSchedule handles GET /schedules/{id}.
func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}

	sched, err := h.schedules.GetSchedule(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, scheduleResponse(sched))
}

// DeleteSchedule handles DELETE /schedules/{id}.
func (h *Handlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}

	if err := h.schedules.DeleteSchedule(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusNoContent, nil)
}

// ListSchedules handles GET /schedules. Supports start/end range queries
// (RFC 3339) or task filtering; defaults to the coming week.
func (h *Handlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if taskID := r.URL.Query().Get("task_id"); taskID != "" {
		schedules, err := h.schedules.TaskSchedules(r.Context(), taskID)
		if err != nil {
			h.serviceError(w, err)
			return
		}
		h.respondJson(w, http.StatusOK, scheduleResponses(schedules))
		return
	}

	start := time.Now().UTC()
	end := start.Add(7 * 24 * time.Hour)
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.httpError(w, "Invalid 'start' timestamp", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.httpError(w, "Invalid 'end' timestamp", http.StatusBadRequest)
			return
		}
		end = parsed
	}

	schedules, err := h.schedules.SchedulesBetween(r.Context(), start, end)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, scheduleResponses(schedules))
}

// TechnicianSchedules handles GET /technicians/{id}/schedules.
func (h *Handlers) TechnicianSchedules(w http.ResponseWriter, r *http.Request) {
	technicianID, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid technician id", http.StatusBadRequest)
		return
	}

	schedules, err := h.schedules.TechnicianSchedules(r.Context(), technicianID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, scheduleResponses(schedules))
}

func scheduleInput(req api.ScheduleRequest) service.ScheduleInput {
	in := service.ScheduleInput{
		TaskID:            req.TaskID,
		TechnicianID:      req.TechnicianID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Notes:             req.Notes,
		Recurring:         req.Recurring,
		RecurrenceEndDate: req.RecurrenceEndDate,
	}
	if req.Priority != nil {
		p := store.TaskPriority(*req.Priority)
		in.Priority = &p
	}
	if req.Status != nil {
		s := store.ScheduleStatus(*req.Status)
		in.Status = &s
	}
	if req.RecurrenceType != nil {
		rt := store.RecurrenceType(*req.RecurrenceType)
		in.RecurrenceType = &rt
	}
	return in
}
