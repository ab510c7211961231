package services

import (
	"sort"
	"time"

	"taskboard/models"
)

// Agregacija izveštaja: čiste funkcije nad već učitanim kolekcijama.
// Bez keširanja; svaki poziv računa ispočetka.

// CompletionRate vraća procenat završenosti; 0 kada nema taskova.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

func StatusDistribution(tasks []models.Task) models.StatusDistribution {
	var dist models.StatusDistribution
	for _, task := range tasks {
		switch task.Status {
		case models.StatusPending:
			dist.Pending++
		case models.StatusInProgress:
			dist.InProgress++
		case models.StatusCompleted:
			dist.Completed++
		}
	}
	return dist
}

func PriorityDistribution(tasks []models.Task) models.PriorityDistribution {
	var dist models.PriorityDistribution
	for _, task := range tasks {
		switch task.Priority {
		case models.PriorityLow:
			dist.Low++
		case models.PriorityMedium:
			dist.Medium++
		case models.PriorityHigh:
			dist.High++
		}
	}
	return dist
}

// DepartmentCompletion računa stopu završenosti po odeljenju. Task se
// pripisuje odeljenju svakog dodeljenog korisnika.
func DepartmentCompletion(tasks []models.Task, users []models.User) []models.DepartmentStats {
	departmentOf := make(map[string]string, len(users))
	for _, user := range users {
		departmentOf[user.ID.Hex()] = user.Department
	}

	stats := make(map[string]*models.DepartmentStats)
	for _, task := range tasks {
		seen := make(map[string]bool)
		for _, assigneeID := range task.Assignees {
			dept, ok := departmentOf[assigneeID.Hex()]
			if !ok || dept == "" || seen[dept] {
				continue
			}
			seen[dept] = true
			entry, ok := stats[dept]
			if !ok {
				entry = &models.DepartmentStats{Department: dept}
				stats[dept] = entry
			}
			entry.TotalTasks++
			if task.Status == models.StatusCompleted {
				entry.CompletedTasks++
			}
		}
	}

	result := make([]models.DepartmentStats, 0, len(stats))
	for _, entry := range stats {
		entry.CompletionRate = CompletionRate(entry.CompletedTasks, entry.TotalTasks)
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Department < result[j].Department })
	return result
}

// WeeklyTrend broji kreirane taskove po kalendarskom danu za poslednjih
// sedam dana. Poređenje ide po UTC datumu createdAt polja, ne po
// vremenski-zonskom opsegu; taskovi kreirani oko ponoći u drugoj zoni mogu
// upasti u susedni dan.
func WeeklyTrend(tasks []models.Task, now time.Time) []models.TrendPoint {
	points := make([]models.TrendPoint, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.UTC().AddDate(0, 0, -offset).Format("2006-01-02")
		point := models.TrendPoint{Date: day}
		for _, task := range tasks {
			if task.CreatedAt.UTC().Format("2006-01-02") == day {
				point.Created++
			}
		}
		points = append(points, point)
	}
	return points
}

// TopPerformers rangira korisnike po stopi završenosti dodeljenih taskova.
func TopPerformers(tasks []models.Task, users []models.User, limit int) []models.PerformerStats {
	performers := make([]models.PerformerStats, 0, len(users))
	for _, user := range users {
		stats := models.PerformerStats{UserID: user.ID.Hex(), Name: user.Name}
		for _, task := range tasks {
			for _, assigneeID := range task.Assignees {
				if assigneeID == user.ID {
					stats.AssignedTasks++
					if task.Status == models.StatusCompleted {
						stats.CompletedTasks++
					}
					break
				}
			}
		}
		if stats.AssignedTasks == 0 {
			continue
		}
		stats.CompletionRate = CompletionRate(stats.CompletedTasks, stats.AssignedTasks)
		performers = append(performers, stats)
	}

	sort.Slice(performers, func(i, j int) bool {
		if performers[i].CompletionRate != performers[j].CompletionRate {
			return performers[i].CompletionRate > performers[j].CompletionRate
		}
		return performers[i].CompletedTasks > performers[j].CompletedTasks
	})

	if limit > 0 && len(performers) > limit {
		performers = performers[:limit]
	}
	return performers
}

// BuildSummary sklapa kompletan izveštaj iz učitanih kolekcija.
func BuildSummary(tasks []models.Task, projects []models.Project, users []models.User, now time.Time) models.ReportSummary {
	byStatus := StatusDistribution(tasks)
	return models.ReportSummary{
		TotalTasks:     len(tasks),
		TotalProjects:  len(projects),
		TotalUsers:     len(users),
		CompletionRate: CompletionRate(byStatus.Completed, len(tasks)),
		ByStatus:       byStatus,
		ByPriority:     PriorityDistribution(tasks),
		ByDepartment:   DepartmentCompletion(tasks, users),
		WeeklyTrend:    WeeklyTrend(tasks, now),
		TopPerformers:  TopPerformers(tasks, users, 5),
	}
}
