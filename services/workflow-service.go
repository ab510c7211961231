package services

import (
	"context"
	"fmt"

	"taskboard/apperrors"
	"taskboard/logging"
	"taskboard/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// WorkflowService vodi graf zavisnosti taskova u Neo4j bazi.
// Relacija (to)-[:DEPENDS_ON]->(from) znači da "to" čeka na "from".
type WorkflowService struct {
	Driver neo4j.DriverWithContext
}

func NewWorkflowService(driver neo4j.DriverWithContext) *WorkflowService {
	return &WorkflowService{Driver: driver}
}

func (s *WorkflowService) AddDependency(ctx context.Context, rel models.TaskDependencyRelation) error {
	exist, err := s.tasksExist(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "failed to check task existence", err)
	}
	if !exist {
		return apperrors.E(apperrors.KindNotFound, "one or both tasks do not exist")
	}

	exists, err := s.DependencyExists(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "failed to check if dependency exists", err)
	}
	if exists {
		return apperrors.E(apperrors.KindInvalidInput, "dependency already exists")
	}

	hasCycle, err := s.CreatesCycle(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "failed to check cycle", err)
	}
	if hasCycle {
		return apperrors.E(apperrors.KindInvalidInput, "cannot add dependency: cycle detected")
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId}), (to:Task {id: $toId})
			MERGE (to)-[:DEPENDS_ON]->(from)
			SET to.blocked = true
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"fromId": rel.FromTaskID,
			"toId":   rel.ToTaskID,
		})
		return nil, err
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "failed to create dependency relation", err)
	}

	logging.Logger.Infof("Event ID: DEPENDENCY_ADDED, Description: Task %s now depends on %s", rel.ToTaskID, rel.FromTaskID)
	return nil
}

func (s *WorkflowService) RemoveDependency(ctx context.Context, rel models.TaskDependencyRelation) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId})-[r:DEPENDS_ON]->(from:Task {id: $fromId})
			DELETE r
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"fromId": rel.FromTaskID,
			"toId":   rel.ToTaskID,
		})
		return nil, err
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "failed to remove dependency relation", err)
	}

	return s.UpdateBlockedStatus(ctx, rel.ToTaskID)
}

func (s *WorkflowService) CreatesCycle(ctx context.Context, fromID, toID string) (bool, error) {
	if fromID == toID {
		return true, nil
	}
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId}), (to:Task {id: $toId})
			RETURN EXISTS((from)-[:DEPENDS_ON*1..]->(to)) AS hasCycle
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId": fromID,
			"toId":   toID,
		})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			val, ok := res.Record().Values[0].(bool)
			if !ok {
				return false, fmt.Errorf("unexpected result type")
			}
			return val, nil
		}
		return false, nil
	})
	if err != nil {
		return false, fmt.Errorf("cycle detection failed: %v", err)
	}

	return result.(bool), nil
}

func (s *WorkflowService) tasksExist(ctx context.Context, id1, id2 string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			OPTIONAL MATCH (a:Task {id: $id1})
			OPTIONAL MATCH (b:Task {id: $id2})
			RETURN a IS NOT NULL AND b IS NOT NULL AS bothExist
		`
		res, err := tx.Run(ctx, query, map[string]any{"id1": id1, "id2": id2})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}

	return result.(bool), nil
}

func (s *WorkflowService) DependencyExists(ctx context.Context, fromID, toID string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId})-[r:DEPENDS_ON]->(from:Task {id: $fromId})
			RETURN COUNT(r) > 0 AS exists
		`
		res, err := tx.Run(ctx, query, map[string]any{"fromId": fromID, "toId": toID})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// EnsureTaskNode upisuje čvor taska u graf ako ne postoji.
func (s *WorkflowService) EnsureTaskNode(ctx context.Context, task models.TaskNode) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (t:Task {id: $id})
			ON CREATE SET
				t.projectId = $projectId,
				t.name = $name,
				t.status = $status,
				t.blocked = $blocked
		`
		params := map[string]any{
			"id":        task.ID,
			"projectId": task.ProjectID,
			"name":      task.Name,
			"status":    task.Status,
			"blocked":   task.Blocked,
		}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})

	return err
}

func (s *WorkflowService) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `MATCH (t:Task {id: $id}) SET t.status = $status`
		_, err := tx.Run(ctx, query, map[string]any{"id": taskID, "status": status})
		return nil, err
	})
	if err != nil {
		return err
	}

	// Promena statusa može da odblokira taskove koji zavise od ovog.
	return s.refreshDependents(ctx, taskID)
}

func (s *WorkflowService) RemoveTaskNode(ctx context.Context, taskID string) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `MATCH (t:Task {id: $id}) DETACH DELETE t`
		_, err := tx.Run(ctx, query, map[string]any{"id": taskID})
		return nil, err
	})
	return err
}

func (s *WorkflowService) GetDependencies(ctx context.Context, taskID string) ([]models.TaskNode, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $taskId})-[:DEPENDS_ON]->(from:Task)
			RETURN from.id AS id, from.projectId AS projectId, from.name AS name,
			       from.status AS status, from.blocked AS blocked
		`
		res, err := tx.Run(ctx, query, map[string]any{"taskId": taskID})
		if err != nil {
			return nil, err
		}

		var dependencies []models.TaskNode
		for res.Next(ctx) {
			record := res.Record()

			id, _ := record.Get("id")
			projectID, _ := record.Get("projectId")
			name, _ := record.Get("name")
			status, _ := record.Get("status")
			blocked, _ := record.Get("blocked")

			dependencies = append(dependencies, models.TaskNode{
				ID:        id.(string),
				ProjectID: projectID.(string),
				Name:      name.(string),
				Status:    status.(string),
				Blocked:   blocked.(bool),
			})
		}

		return dependencies, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]models.TaskNode), nil
}

// HasUnfinishedDependencies proverava da li task čeka na nezavršene taskove.
func (s *WorkflowService) HasUnfinishedDependencies(ctx context.Context, taskID string) (bool, error) {
	dependencies, err := s.GetDependencies(ctx, taskID)
	if err != nil {
		return false, err
	}
	for _, dep := range dependencies {
		if dep.Status != string(models.StatusCompleted) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateBlockedStatus preračunava blocked flag iz preostalih zavisnosti.
func (s *WorkflowService) UpdateBlockedStatus(ctx context.Context, taskID string) error {
	blocked, err := s.HasUnfinishedDependencies(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch dependencies: %v", err)
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `MATCH (t:Task {id: $id}) SET t.blocked = $blocked`
		_, err := tx.Run(ctx, query, map[string]any{"id": taskID, "blocked": blocked})
		return nil, err
	})
	return err
}

// refreshDependents ažurira blocked flag svih taskova koji zavise od datog.
func (s *WorkflowService) refreshDependents(ctx context.Context, taskID string) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task)-[:DEPENDS_ON]->(from:Task {id: $id})
			RETURN to.id AS id
		`
		res, err := tx.Run(ctx, query, map[string]any{"id": taskID})
		if err != nil {
			return nil, err
		}
		var ids []string
		for res.Next(ctx) {
			id, _ := res.Record().Get("id")
			ids = append(ids, id.(string))
		}
		return ids, nil
	})
	session.Close(ctx)
	if err != nil {
		return err
	}

	for _, dependentID := range result.([]string) {
		if err := s.UpdateBlockedStatus(ctx, dependentID); err != nil {
			return err
		}
	}
	return nil
}
