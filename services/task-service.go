package services

import (
	"context"
	"fmt"
	"time"

	"taskboard/apperrors"
	"taskboard/logging"
	"taskboard/models"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DependencyChecker je graf zavisnosti taskova (Neo4j u produkciji).
type DependencyChecker interface {
	EnsureTaskNode(ctx context.Context, node models.TaskNode) error
	UpdateTaskStatus(ctx context.Context, taskID, status string) error
	RemoveTaskNode(ctx context.Context, taskID string) error
	HasUnfinishedDependencies(ctx context.Context, taskID string) (bool, error)
}

// Notifier upisuje notifikaciju korisniku.
type Notifier interface {
	Notify(ctx context.Context, email, userID, message string) error
}

// TaskService su operacije nad kolekcijom taskova. Pozivi ka grafu i
// notifikacijama idu kroz circuit breaker-e i ne obaraju glavnu operaciju.
type TaskService struct {
	TasksCollection *mongo.Collection
	UserCollection  *mongo.Collection
	Validate        *validator.Validate
	Graph           DependencyChecker
	Notifier        Notifier
	GraphBreaker    *gobreaker.CircuitBreaker
	NotifyBreaker   *gobreaker.CircuitBreaker
}

func NewTaskService(tasksCollection, userCollection *mongo.Collection, graph DependencyChecker, notifier Notifier, graphBreaker, notifyBreaker *gobreaker.CircuitBreaker) *TaskService {
	return &TaskService{
		TasksCollection: tasksCollection,
		UserCollection:  userCollection,
		Validate:        validator.New(),
		Graph:           graph,
		Notifier:        notifier,
		GraphBreaker:    graphBreaker,
		NotifyBreaker:   notifyBreaker,
	}
}

// GetAllTasks vraća celu kolekciju, najnoviji prvi. Bez paginacije;
// pretpostavka je da ceo skup staje u memoriju.
func (s *TaskService) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.TasksCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve tasks", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to decode tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.E(apperrors.KindNotFound, "task not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch task", err)
	}
	return &task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, task models.Task, creator models.Identity) (*models.Task, error) {
	if err := s.Validate.Struct(task); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "invalid task data", err)
	}

	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if !task.Status.Valid() {
		return nil, apperrors.E(apperrors.KindInvalidInput, "unknown task status")
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !task.Priority.Valid() {
		return nil, apperrors.E(apperrors.KindInvalidInput, "unknown task priority")
	}

	now := time.Now()
	task.ID = primitive.NewObjectID()
	task.CreatedBy = creator.ID
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create task", err)
	}

	s.mirrorToGraph(ctx, &task)
	s.notifyAssignees(ctx, &task, fmt.Sprintf("You have been assigned to task %q", task.Title))

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created by %s", task.ID.Hex(), creator.Email)
	return &task, nil
}

// UpdateTask primenjuje delimičnu izmenu i postavlja updatedAt.
func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, update models.TaskUpdate) (*models.Task, error) {
	fields := bson.M{}
	if update.Title != nil {
		if *update.Title == "" {
			return nil, apperrors.E(apperrors.KindInvalidInput, "title is required")
		}
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, apperrors.E(apperrors.KindInvalidInput, "unknown task status")
		}
		fields["status"] = *update.Status
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, apperrors.E(apperrors.KindInvalidInput, "unknown task priority")
		}
		fields["priority"] = *update.Priority
	}
	if update.Progress != nil {
		if *update.Progress < 0 || *update.Progress > 100 {
			return nil, apperrors.E(apperrors.KindInvalidInput, "progress must be between 0 and 100")
		}
		fields["progress"] = *update.Progress
	}
	if update.Deadline != nil {
		fields["deadline"] = *update.Deadline
	}
	if update.Assignees != nil {
		fields["assignees"] = *update.Assignees
	}
	if update.Tags != nil {
		fields["tags"] = *update.Tags
	}
	if update.ActualTime != nil {
		fields["actualTime"] = *update.ActualTime
	}
	if len(fields) == 0 {
		return nil, apperrors.E(apperrors.KindInvalidInput, "no fields to update")
	}
	fields["updatedAt"] = time.Now()

	res, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$set": fields})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update task", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.E(apperrors.KindNotFound, "task not found for update")
	}

	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if update.Status != nil {
		s.graphStatus(ctx, task)
	}
	return task, nil
}

// ChangeTaskStatus menja samo status. Prelaz u in-progress je blokiran dok
// task ima nedovršenu zavisnost u grafu.
func (s *TaskService) ChangeTaskStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperrors.E(apperrors.KindInvalidInput, "unknown task status")
	}

	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if status == models.StatusInProgress && s.Graph != nil {
		blocked, err := s.GraphBreaker.Execute(func() (interface{}, error) {
			return s.Graph.HasUnfinishedDependencies(ctx, taskID.Hex())
		})
		if err != nil {
			// Graf nedostupan: propusti prelaz, ali ostavi trag u logu.
			logging.Logger.Warnf("Event ID: DEPENDENCY_CHECK_SKIPPED, Description: Dependency check for task %s failed: %v", taskID.Hex(), err)
		} else if blocked.(bool) {
			return nil, apperrors.E(apperrors.KindInvalidInput, "cannot start task due to unfinished dependency")
		}
	}

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	res, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, update)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update task status", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.E(apperrors.KindNotFound, "task not found for update")
	}

	task, err = s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.graphStatus(ctx, task)
	s.notifyAssignees(ctx, task, fmt.Sprintf("Task %q moved to %s", task.Title, task.Status))

	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	res, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete task", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.E(apperrors.KindNotFound, "task not found")
	}

	if s.Graph != nil {
		if _, err := s.GraphBreaker.Execute(func() (interface{}, error) {
			return nil, s.Graph.RemoveTaskNode(ctx, taskID.Hex())
		}); err != nil {
			logging.Logger.Warnf("Event ID: GRAPH_REMOVE_FAILED, Description: Failed to remove task %s from dependency graph: %v", taskID.Hex(), err)
		}
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted", taskID.Hex())
	return nil
}

func (s *TaskService) mirrorToGraph(ctx context.Context, task *models.Task) {
	if s.Graph == nil {
		return
	}
	node := models.TaskNode{
		ID:        task.ID.Hex(),
		ProjectID: task.ProjectID,
		Name:      task.Title,
		Status:    string(task.Status),
	}
	if _, err := s.GraphBreaker.Execute(func() (interface{}, error) {
		return nil, s.Graph.EnsureTaskNode(ctx, node)
	}); err != nil {
		logging.Logger.Warnf("Event ID: GRAPH_MIRROR_FAILED, Description: Failed to mirror task %s to dependency graph: %v", task.ID.Hex(), err)
	}
}

func (s *TaskService) graphStatus(ctx context.Context, task *models.Task) {
	if s.Graph == nil {
		return
	}
	if _, err := s.GraphBreaker.Execute(func() (interface{}, error) {
		return nil, s.Graph.UpdateTaskStatus(ctx, task.ID.Hex(), string(task.Status))
	}); err != nil {
		logging.Logger.Warnf("Event ID: GRAPH_STATUS_FAILED, Description: Failed to update graph status for task %s: %v", task.ID.Hex(), err)
	}
}

// notifyAssignees šalje notifikaciju svakom dodeljenom korisniku; neuspeh
// se loguje i ne prekida operaciju nad taskom.
func (s *TaskService) notifyAssignees(ctx context.Context, task *models.Task, message string) {
	if s.Notifier == nil || len(task.Assignees) == 0 {
		return
	}
	for _, assigneeID := range task.Assignees {
		var assignee models.User
		err := s.UserCollection.FindOne(ctx, bson.M{"_id": assigneeID}).Decode(&assignee)
		if err != nil {
			logging.Logger.Warnf("Event ID: NOTIFY_LOOKUP_FAILED, Description: Assignee %s not found: %v", assigneeID.Hex(), err)
			continue
		}
		id := assigneeID
		if _, err := s.NotifyBreaker.Execute(func() (interface{}, error) {
			return nil, s.Notifier.Notify(ctx, assignee.Email, id.Hex(), message)
		}); err != nil {
			logging.Logger.Warnf("Event ID: NOTIFY_FAILED, Description: Failed to notify %s: %v", assignee.Email, err)
		}
	}
}
