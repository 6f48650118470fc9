package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fleetops/internal/store"
	"fleetops/pkg/api"
)

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req.TaskID, req.Description,
		store.TaskPriority(req.Priority), time.Duration(req.EstimatedMinutes)*time.Minute)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusCreated, taskResponse(task))
}

// GetTask handles GET /tasks/{id}.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// ListTasks handles GET /tasks with optional status and priority filters.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Statuses = []store.TaskStatus{store.TaskStatus(status)}
	}
	filter.Priority = store.TaskPriority(r.URL.Query().Get("priority"))

	tasks, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponses(tasks))
}

// UpdateTask handles PATCH /tasks/{id}.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), r.PathValue("id"), req.Description,
		store.TaskPriority(req.Priority), time.Duration(req.EstimatedMinutes)*time.Minute)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// UpdateTaskStatus handles PUT /tasks/{id}/status.
func (h *Handlers) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), r.PathValue("id"), store.TaskStatus(req.Status))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// UpdateTaskCompletion handles PUT /tasks/{id}/completion.
func (h *Handlers) UpdateTaskCompletion(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.UpdateCompletion(r.Context(), r.PathValue("id"), req.CompletionPct)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// AssignTaskTechnician handles PUT /tasks/{id}/technician.
func (h *Handlers) AssignTaskTechnician(w http.ResponseWriter, r *http.Request) {
	var req api.AssignTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.AssignTechnician(r.Context(), r.PathValue("id"), req.TechnicianID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// UnassignTaskTechnician handles DELETE /tasks/{id}/technician.
func (h *Handlers) UnassignTaskTechnician(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.UnassignTechnician(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// AssignTaskEquipment handles PUT /tasks/{id}/equipment.
func (h *Handlers) AssignTaskEquipment(w http.ResponseWriter, r *http.Request) {
	var req api.AssignEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.AssignEquipment(r.Context(), r.PathValue("id"), req.EquipmentID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// AddTaskSkill handles POST /tasks/{id}/skills.
func (h *Handlers) AddTaskSkill(w http.ResponseWriter, r *http.Request) {
	h.listEntry(w, r, h.tasks.AddRequiredSkill)
}

// RemoveTaskSkill handles DELETE /tasks/{id}/skills/{value}.
func (h *Handlers) RemoveTaskSkill(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.RemoveRequiredSkill(r.Context(), r.PathValue("id"), r.PathValue("value"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// AddTaskPart handles POST /tasks/{id}/parts.
func (h *Handlers) AddTaskPart(w http.ResponseWriter, r *http.Request) {
	h.listEntry(w, r, h.tasks.AddRequiredPart)
}

// RemoveTaskPart handles DELETE /tasks/{id}/parts/{value}.
func (h *Handlers) RemoveTaskPart(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.RemoveRequiredPart(r.Context(), r.PathValue("id"), r.PathValue("value"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// SetTaskDueDate handles PUT /tasks/{id}/due-date.
func (h *Handlers) SetTaskDueDate(w http.ResponseWriter, r *http.Request) {
	var req api.SetDueDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.SetDueDate(r.Context(), r.PathValue("id"), req.DueDate)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respondJson(w, http.StatusNoContent, nil)
}

// OverdueTasks handles GET /tasks/overdue.
func (h *Handlers) OverdueTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.OverdueTasks(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, taskResponses(tasks))
}

// DueTasks handles GET /tasks/due?within=<duration>.
func (h *Handlers) DueTasks(w http.ResponseWriter, r *http.Request) {
	window, err := time.ParseDuration(r.URL.Query().Get("within"))
	if err != nil {
		h.httpError(w, "Invalid 'within' duration", http.StatusBadRequest)
		return
	}

	tasks, err := h.tasks.TasksDueWithin(r.Context(), window)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, taskResponses(tasks))
}

// TechnicianTasks handles GET /technicians/{id}/tasks.
func (h *Handlers) TechnicianTasks(w http.ResponseWriter, r *http.Request) {
	technicianID, err := pathID(r, "id")
	if err != nil {
		h.httpError(w, "Invalid technician id", http.StatusBadRequest)
		return
	}

	details, err := h.tasks.TechnicianTasks(r.Context(), technicianID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	tasks := make([]api.TaskResponse, 0, len(details))
	for i := range details {
		tasks = append(tasks, taskResponse(&details[i].Task))
	}
	h.respondJson(w, http.StatusOK, tasks)
}

// BulkAssignTechnician handles POST /tasks/bulk/technician.
func (h *Handlers) BulkAssignTechnician(w http.ResponseWriter, r *http.Request) {
	var req api.BulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results := h.tasks.BulkAssignTechnician(r.Context(), req.TaskIDs, req.TechnicianID)
	h.respondJson(w, http.StatusOK, bulkResponse(results))
}

// BulkUpdateStatus handles POST /tasks/bulk/status.
func (h *Handlers) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req api.BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results := h.tasks.BulkUpdateStatus(r.Context(), req.TaskIDs, store.TaskStatus(req.Status))
	h.respondJson(w, http.StatusOK, bulkResponse(results))
}

func (h *Handlers) listEntry(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, taskID, value string) (*store.Task, error)) {
	var req api.ListEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := op(r.Context(), r.PathValue("id"), req.Value)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, taskResponse(task))
}
