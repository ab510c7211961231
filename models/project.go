package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name" validate:"required"`
	Description string               `json:"description" bson:"description"`
	Status      ProjectStatus        `json:"status" bson:"status"`
	Progress    int                  `json:"progress" bson:"progress" validate:"gte=0,lte=100"`
	StartDate   *time.Time           `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate     *time.Time           `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Members     []primitive.ObjectID `json:"members" bson:"members"`
	MinMembers  int                  `json:"minMembers" bson:"minMembers"`
	MaxMembers  int                  `json:"maxMembers" bson:"maxMembers"`
	// Budget je slobodan tekst; agregacija ga parsira tolerantno.
	Budget         string             `json:"budget" bson:"budget"`
	Priority       TaskPriority       `json:"priority" bson:"priority"`
	TaskCount      int                `json:"taskCount" bson:"taskCount"`
	CompletedTasks int                `json:"completedTasks" bson:"completedTasks"`
	CreatedBy      primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
