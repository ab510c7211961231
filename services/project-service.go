package services

import (
	"context"
	"time"

	"taskboard/apperrors"
	"taskboard/logging"
	"taskboard/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	Validate           *validator.Validate
}

func NewProjectService(projectsCollection, tasksCollection *mongo.Collection) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projectsCollection,
		TasksCollection:    tasksCollection,
		Validate:           validator.New(),
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, project models.Project, creator models.Identity) (*models.Project, error) {
	if err := s.Validate.Struct(project); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "invalid project data", err)
	}
	if project.Status == "" {
		project.Status = models.ProjectPlanning
	}
	if !project.Status.Valid() {
		return nil, apperrors.E(apperrors.KindInvalidInput, "unknown project status")
	}
	if project.MaxMembers > 0 && project.MinMembers > project.MaxMembers {
		return nil, apperrors.E(apperrors.KindInvalidInput, "minMembers cannot exceed maxMembers")
	}

	now := time.Now()
	project.ID = primitive.NewObjectID()
	project.CreatedBy = creator.ID
	project.CreatedAt = now
	project.UpdatedAt = now
	// Brojači taskova se postavljaju jednom pri kreiranju i ne preračunavaju
	// se iz živog stanja taskova.

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create project", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", project.ID.Hex(), creator.Email)
	return &project, nil
}

func (s *ProjectService) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch projects", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to parse projects", err)
	}
	return projects, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	projectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.E(apperrors.KindInvalidInput, "invalid project ID format")
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.E(apperrors.KindNotFound, "project not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch project", err)
	}
	return &project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, fields bson.M) (*models.Project, error) {
	// Status iz sirovog JSON-a mora biti string sa poznatom vrednošću.
	if raw, ok := fields["status"]; ok {
		status, isString := raw.(string)
		if !isString || !models.ProjectStatus(status).Valid() {
			return nil, apperrors.E(apperrors.KindInvalidInput, "unknown project status")
		}
	}

	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields["updatedAt"] = time.Now()
	_, err = s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, bson.M{"$set": fields})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update project", err)
	}

	return s.GetProjectByID(ctx, id)
}

// DeleteProject briše projekat i taskove koji na njega pokazuju.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.TasksCollection.DeleteMany(ctx, bson.M{"projectId": project.ID.Hex()}); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete project tasks", err)
	}
	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": project.ID}); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete project", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted", project.ID.Hex())
	return nil
}

func (s *ProjectService) AddMember(ctx context.Context, projectID string, memberID primitive.ObjectID) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, existing := range project.Members {
		if existing == memberID {
			return nil, apperrors.E(apperrors.KindInvalidInput, "member already on project")
		}
	}
	if project.MaxMembers > 0 && len(project.Members) >= project.MaxMembers {
		return nil, apperrors.E(apperrors.KindInvalidInput, "project already has the maximum number of members")
	}

	update := bson.M{
		"$push": bson.M{"members": memberID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, update); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to add member", err)
	}

	return s.GetProjectByID(ctx, projectID)
}

func (s *ProjectService) RemoveMember(ctx context.Context, projectID string, memberID primitive.ObjectID) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, existing := range project.Members {
		if existing == memberID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.E(apperrors.KindNotFound, "member not on project")
	}

	update := bson.M{
		"$pull": bson.M{"members": memberID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, update); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to remove member", err)
	}

	return s.GetProjectByID(ctx, projectID)
}
