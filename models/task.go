package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	ProjectID   string               `json:"projectId" bson:"projectId"`
	Title       string               `json:"title" bson:"title" validate:"required"`
	Description string               `json:"description" bson:"description"`
	Status      TaskStatus           `json:"status" bson:"status"`
	Priority    TaskPriority         `json:"priority" bson:"priority"`
	Progress    int                  `json:"progress" bson:"progress" validate:"gte=0,lte=100"`
	Deadline    *time.Time           `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Assignees   []primitive.ObjectID `json:"assignees" bson:"assignees"`
	Tags        []string             `json:"tags" bson:"tags"`
	DependsOn   []primitive.ObjectID `json:"dependsOn,omitempty" bson:"dependsOn,omitempty"`
	ActualTime  string               `json:"actualTime,omitempty" bson:"actualTime,omitempty"`
	CreatedBy   primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// TaskUpdate nosi delimičnu izmenu taska; nil polja se ne diraju.
type TaskUpdate struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *TaskStatus           `json:"status,omitempty"`
	Priority    *TaskPriority         `json:"priority,omitempty"`
	Progress    *int                  `json:"progress,omitempty"`
	Deadline    *time.Time            `json:"deadline,omitempty"`
	Assignees   *[]primitive.ObjectID `json:"assignees,omitempty"`
	Tags        *[]string             `json:"tags,omitempty"`
	ActualTime  *string               `json:"actualTime,omitempty"`
}
