package models

// Rezultati agregacije; računaju se iz učitanih kolekcija, bez sopstvenog stanja.

type StatusDistribution struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type PriorityDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type DepartmentStats struct {
	Department     string  `json:"department"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

type TrendPoint struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Created int    `json:"created"`
}

type PerformerStats struct {
	UserID         string  `json:"userId"`
	Name           string  `json:"name"`
	AssignedTasks  int     `json:"assignedTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

type ReportSummary struct {
	TotalTasks     int                  `json:"totalTasks"`
	TotalProjects  int                  `json:"totalProjects"`
	TotalUsers     int                  `json:"totalUsers"`
	CompletionRate float64              `json:"completionRate"`
	ByStatus       StatusDistribution   `json:"byStatus"`
	ByPriority     PriorityDistribution `json:"byPriority"`
	ByDepartment   []DepartmentStats    `json:"byDepartment"`
	WeeklyTrend    []TrendPoint         `json:"weeklyTrend"`
	TopPerformers  []PerformerStats     `json:"topPerformers"`
}
