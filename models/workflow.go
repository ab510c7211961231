package models

// TaskNode je projekcija taska u grafu zavisnosti.
type TaskNode struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Blocked   bool   `json:"blocked"`
}

// TaskDependencyRelation: ToTaskID zavisi od FromTaskID.
type TaskDependencyRelation struct {
	FromTaskID string `json:"fromTaskId"`
	ToTaskID   string `json:"toTaskId"`
}
