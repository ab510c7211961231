package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/models"
	"taskboard/services"

	"github.com/gorilla/mux"
)

type WorkflowHandler struct {
	Workflow *services.WorkflowService
}

func NewWorkflowHandler(workflow *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{Workflow: workflow}
}

func (h *WorkflowHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	var rel models.TaskDependencyRelation
	if err := json.NewDecoder(r.Body).Decode(&rel); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if rel.FromTaskID == "" || rel.ToTaskID == "" {
		http.Error(w, "fromTaskId and toTaskId are required", http.StatusBadRequest)
		return
	}

	if err := h.Workflow.AddDependency(r.Context(), rel); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Dependency added"})
}

func (h *WorkflowHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	var rel models.TaskDependencyRelation
	if err := json.NewDecoder(r.Body).Decode(&rel); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Workflow.RemoveDependency(r.Context(), rel); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Dependency removed"})
}

func (h *WorkflowHandler) GetDependencies(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["taskID"]
	if taskID == "" {
		http.Error(w, "taskID is required", http.StatusBadRequest)
		return
	}

	dependencies, err := h.Workflow.GetDependencies(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dependencies)
}
