package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/apperrors"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	Board *services.BoardService
	Tasks *services.TaskService
}

func NewTaskHandler(board *services.BoardService, tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{Board: board, Tasks: tasks}
}

func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Board.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Board.Create(r.Context(), task, identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.Tasks.GetTaskByID(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var update models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.Board.Update(r.Context(), taskID, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Board.Delete(r.Context(), taskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// ChangeTaskStatus menja status taska (ručne akcije i table dele ovaj put).
func (h *TaskHandler) ChangeTaskStatus(w http.ResponseWriter, r *http.Request) {
	var request struct {
		TaskID string            `json:"taskId"`
		Status models.TaskStatus `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	taskID, err := primitive.ObjectIDFromHex(request.TaskID)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	updated, _, err := h.Board.SetStatus(r.Context(), taskID, request.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func taskIDFromPath(r *http.Request) (primitive.ObjectID, error) {
	vars := mux.Vars(r)
	taskID, err := primitive.ObjectIDFromHex(vars["taskID"])
	if err != nil {
		return primitive.NilObjectID, apperrors.E(apperrors.KindInvalidInput, "invalid task ID format")
	}
	return taskID, nil
}
