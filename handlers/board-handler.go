package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BoardHandler struct {
	Board *services.BoardService
}

func NewBoardHandler(board *services.BoardService) *BoardHandler {
	return &BoardHandler{Board: board}
}

// GetBoard vraća tri kolone table iz svežeg ogledala.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Board.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Board.Lanes())
}

// Drag obrađuje jedan potez prevlačenja. Odredište je ili drop-zone
// identifikator kolone ili kartica drugog taska.
func (h *BoardHandler) Drag(w http.ResponseWriter, r *http.Request) {
	var request struct {
		TaskID       string `json:"taskId"`
		DropZoneID   string `json:"dropZoneId"`
		TargetTaskID string `json:"targetTaskId,omitempty"`
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

	var targetTaskID *primitive.ObjectID
	if request.TargetTaskID != "" {
		target, err := primitive.ObjectIDFromHex(request.TargetTaskID)
		if err != nil {
			http.Error(w, "Invalid target task ID format", http.StatusBadRequest)
			return
		}
		targetTaskID = &target
	}

	task, moved, err := h.Board.Drag(r.Context(), taskID, request.DropZoneID, targetTaskID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"task":  task,
		"moved": moved,
	})
}

func (h *BoardHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.Board.StartTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.Board.CompleteTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) ReopenTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.Board.ReopenTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetTimer vraća proteklo vreme aktivnog merača za task.
func (h *BoardHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["taskID"]

	elapsed, ok := h.Board.Timers.Elapsed(taskID)
	if !ok {
		http.Error(w, "No active timer for task", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"taskId":  taskID,
		"elapsed": elapsed.Seconds(),
		"display": services.FormatDuration(elapsed),
	})
}

// GetActiveTimers vraća sve aktivne merače.
func (h *BoardHandler) GetActiveTimers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Board.Timers.Active())
}
