package handlers

import (
	"net/http"
	"time"

	"taskboard/services"
)

type ReportHandler struct {
	Tasks    *services.TaskService
	Projects *services.ProjectService
	Users    *services.UserService
}

func NewReportHandler(tasks *services.TaskService, projects *services.ProjectService, users *services.UserService) *ReportHandler {
	return &ReportHandler{Tasks: tasks, Projects: projects, Users: users}
}

// Summary svaki put iznova učitava kolekcije i računa izveštaj; agregator
// nema sopstveno stanje.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.GetAllTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	projects, err := h.Projects.GetAllProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.Users.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, services.BuildSummary(tasks, projects, users, time.Now()))
}
