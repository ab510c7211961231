package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/middleware"
	"taskboard/models"
	"taskboard/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectHandler struct {
	Projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Projects: projects}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Projects.CreateProject(r.Context(), project, identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.GetAllProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, err := h.Projects.GetProjectByID(r.Context(), vars["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	// Identitet i vremena ne dolaze od klijenta.
	delete(fields, "_id")
	delete(fields, "id")
	delete(fields, "createdBy")
	delete(fields, "createdAt")

	project, err := h.Projects.UpdateProject(r.Context(), vars["projectID"], fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Projects.DeleteProject(r.Context(), vars["projectID"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	memberID, err := primitive.ObjectIDFromHex(request.MemberID)
	if err != nil {
		http.Error(w, "Invalid member ID format", http.StatusBadRequest)
		return
	}

	project, err := h.Projects.AddMember(r.Context(), vars["projectID"], memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	memberID, err := primitive.ObjectIDFromHex(vars["memberID"])
	if err != nil {
		http.Error(w, "Invalid member ID format", http.StatusBadRequest)
		return
	}

	project, err := h.Projects.RemoveMember(r.Context(), vars["projectID"], memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
