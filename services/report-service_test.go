package services

import (
	"testing"
	"time"

	"taskboard/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      float64
	}{
		{name: "empty collection", completed: 0, total: 0, want: 0},
		{name: "three of four", completed: 3, total: 4, want: 75},
		{name: "all completed", completed: 5, total: 5, want: 100},
		{name: "none completed", completed: 0, total: 8, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.total))
		})
	}
}

func TestStatusDistribution(t *testing.T) {
	tasks := []models.Task{
		{Status: models.StatusPending},
		{Status: models.StatusPending},
		{Status: models.StatusInProgress},
		{Status: models.StatusCompleted},
	}

	dist := StatusDistribution(tasks)

	assert.Equal(t, 2, dist.Pending)
	assert.Equal(t, 1, dist.InProgress)
	assert.Equal(t, 1, dist.Completed)
}

func TestPriorityDistribution(t *testing.T) {
	tasks := []models.Task{
		{Priority: models.PriorityHigh},
		{Priority: models.PriorityHigh},
		{Priority: models.PriorityLow},
	}

	dist := PriorityDistribution(tasks)

	assert.Equal(t, 1, dist.Low)
	assert.Equal(t, 0, dist.Medium)
	assert.Equal(t, 2, dist.High)
}

func TestDepartmentCompletion(t *testing.T) {
	dev := primitive.NewObjectID()
	devTwo := primitive.NewObjectID()
	qa := primitive.NewObjectID()
	users := []models.User{
		{ID: dev, Department: "Engineering"},
		{ID: devTwo, Department: "Engineering"},
		{ID: qa, Department: "QA"},
	}
	tasks := []models.Task{
		// Dva inženjera na istom tasku: broji se jednom za Engineering.
		{Status: models.StatusCompleted, Assignees: []primitive.ObjectID{dev, devTwo}},
		{Status: models.StatusPending, Assignees: []primitive.ObjectID{dev}},
		{Status: models.StatusCompleted, Assignees: []primitive.ObjectID{qa}},
	}

	stats := DepartmentCompletion(tasks, users)

	assert.Len(t, stats, 2)
	assert.Equal(t, "Engineering", stats[0].Department)
	assert.Equal(t, 2, stats[0].TotalTasks)
	assert.Equal(t, 1, stats[0].CompletedTasks)
	assert.Equal(t, float64(50), stats[0].CompletionRate)
	assert.Equal(t, "QA", stats[1].Department)
	assert.Equal(t, float64(100), stats[1].CompletionRate)
}

func TestWeeklyTrend(t *testing.T) {
	now := time.Date(2024, 11, 20, 15, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{CreatedAt: time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2024, 11, 20, 22, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2024, 11, 14, 1, 0, 0, 0, time.UTC)},
		// Van prozora od sedam dana.
		{CreatedAt: time.Date(2024, 11, 13, 23, 0, 0, 0, time.UTC)},
	}

	points := WeeklyTrend(tasks, now)

	assert.Len(t, points, 7)
	assert.Equal(t, "2024-11-14", points[0].Date)
	assert.Equal(t, 1, points[0].Created)
	assert.Equal(t, "2024-11-20", points[6].Date)
	assert.Equal(t, 2, points[6].Created)
	for _, point := range points[1:6] {
		assert.Equal(t, 0, point.Created)
	}
}

func TestWeeklyTrendBucketsUTCDate(t *testing.T) {
	now := time.Date(2024, 11, 20, 0, 30, 0, 0, time.UTC)
	zone := time.FixedZone("CET", 3600)
	tasks := []models.Task{
		// Lokalno 20. u 00:30, ali po UTC datumu još uvek 19.
		{CreatedAt: time.Date(2024, 11, 20, 0, 30, 0, 0, zone)},
	}

	points := WeeklyTrend(tasks, now)

	assert.Equal(t, "2024-11-19", points[5].Date)
	assert.Equal(t, 1, points[5].Created)
	assert.Equal(t, 0, points[6].Created)
}

func TestTopPerformers(t *testing.T) {
	ana := primitive.NewObjectID()
	marko := primitive.NewObjectID()
	idle := primitive.NewObjectID()
	users := []models.User{
		{ID: ana, Name: "Ana"},
		{ID: marko, Name: "Marko"},
		{ID: idle, Name: "Jovana"},
	}
	tasks := []models.Task{
		{Status: models.StatusCompleted, Assignees: []primitive.ObjectID{ana}},
		{Status: models.StatusCompleted, Assignees: []primitive.ObjectID{ana}},
		{Status: models.StatusCompleted, Assignees: []primitive.ObjectID{marko}},
		{Status: models.StatusPending, Assignees: []primitive.ObjectID{marko}},
	}

	performers := TopPerformers(tasks, users, 5)

	// Korisnici bez ijednog taska se ne rangiraju.
	assert.Len(t, performers, 2)
	assert.Equal(t, "Ana", performers[0].Name)
	assert.Equal(t, float64(100), performers[0].CompletionRate)
	assert.Equal(t, "Marko", performers[1].Name)
	assert.Equal(t, float64(50), performers[1].CompletionRate)

	limited := TopPerformers(tasks, users, 1)
	assert.Len(t, limited, 1)
	assert.Equal(t, "Ana", limited[0].Name)
}

func TestBuildSummary(t *testing.T) {
	assignee := primitive.NewObjectID()
	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{Status: models.StatusCompleted, Priority: models.PriorityHigh, Assignees: []primitive.ObjectID{assignee}, CreatedAt: now},
		{Status: models.StatusPending, Priority: models.PriorityLow, CreatedAt: now},
	}
	projects := []models.Project{{Name: "Redizajn portala"}}
	users := []models.User{{ID: assignee, Name: "Ana", Department: "Engineering"}}

	summary := BuildSummary(tasks, projects, users, now)

	assert.Equal(t, 2, summary.TotalTasks)
	assert.Equal(t, 1, summary.TotalProjects)
	assert.Equal(t, 1, summary.TotalUsers)
	assert.Equal(t, float64(50), summary.CompletionRate)
	assert.Equal(t, 1, summary.ByStatus.Completed)
	assert.Equal(t, 1, summary.ByPriority.High)
	assert.Len(t, summary.WeeklyTrend, 7)
	assert.Equal(t, 2, summary.WeeklyTrend[6].Created)
	assert.Len(t, summary.TopPerformers, 1)
}
