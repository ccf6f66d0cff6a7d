package progress

import (
	"planboard/domain"

	"github.com/fundwit/go-commons/types"
)

// ActivityWeight is 1 for a completed activity and 0 otherwise, there is no partial credit.
func ActivityWeight(a *domain.Activity) int {
	if a.Status == domain.ActivityCompleted {
		return 1
	}
	return 0
}

// Percentage rounds 100*completed/total half-up, 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// Count returns the completed and total numbers of the activities.
func Count(activities []domain.Activity) (completed, total int) {
	for i := range activities {
		completed += ActivityWeight(&activities[i])
	}
	return completed, len(activities)
}

func StageProgress(activities []domain.Activity) int {
	return Percentage(Count(activities))
}

// ProjectProgress weights every stage by its activity count: the ratio is computed over
// all activities of the project and rounded once.
func ProjectProgress(activitiesByStage map[types.ID][]domain.Activity) int {
	completed, total := 0, 0
	for _, activities := range activitiesByStage {
		c, t := Count(activities)
		completed += c
		total += t
	}
	return Percentage(completed, total)
}

// DeriveStatus keeps manual statuses and otherwise follows completion of all activities.
func DeriveStatus(current domain.ProjectStatus, completed, total int) domain.ProjectStatus {
	if current.Manual() {
		return current
	}
	if total > 0 && completed == total {
		return domain.ProjectCompleted
	}
	return domain.ProjectActive
}

// Rollup recomputes every derived value of the aggregate from its activities.
// Stages are updated in place.
func Rollup(project *domain.Project, stages []domain.Stage, activitiesByStage map[types.ID][]domain.Activity) {
	completed, total := 0, 0
	var realStart, realEnd types.Timestamp

	for i := range stages {
		activities := activitiesByStage[stages[i].ID]
		c, t := Count(activities)
		stages[i].CompletedCount = c
		stages[i].ActivitiesCount = t
		stages[i].Progress = Percentage(c, t)
		completed += c
		total += t

		for _, a := range activities {
			if !a.ExecutedStartDate.IsZero() && (realStart.IsZero() || a.ExecutedStartDate.Time().Before(realStart.Time())) {
				realStart = a.ExecutedStartDate
			}
			if !a.ExecutedEndDate.IsZero() && (realEnd.IsZero() || a.ExecutedEndDate.Time().After(realEnd.Time())) {
				realEnd = a.ExecutedEndDate
			}
		}
	}

	project.ActivitiesCount = total
	project.ProgressPercentage = Percentage(completed, total)
	project.RealStartDate = realStart
	if total > 0 && completed == total {
		project.RealEndDate = realEnd
	} else {
		project.RealEndDate = types.Timestamp{}
	}
	project.Status = DeriveStatus(project.Status, completed, total)
}
