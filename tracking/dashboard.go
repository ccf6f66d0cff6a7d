package tracking

import (
	"context"
	"planboard/domain"
	"planboard/domain/progress"
	"planboard/persistence"
	"sort"
)

type Dashboard struct {
	ProjectsCount      int                           `json:"projectsCount"`
	ProjectsByStatus   map[domain.ProjectStatus]int  `json:"projectsByStatus"`
	ArchivedCount      int                           `json:"archivedCount"`
	ActivitiesCount    int                           `json:"activitiesCount"`
	ActivitiesByStatus map[domain.ActivityStatus]int `json:"activitiesByStatus"`
	OverallProgress    int                           `json:"overallProgress"`
	OverdueActivities  []domain.Activity             `json:"overdueActivities"`
}

// Dashboard summarizes every project, archived and cancelled ones included, from one read transaction.
// Overdue activities are listed by planned end date, the most late first.
func (m *TrackingManager) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{
		ProjectsByStatus:   map[domain.ProjectStatus]int{},
		ActivitiesByStatus: map[domain.ActivityStatus]int{},
		OverdueActivities:  []domain.Activity{},
	}
	for _, s := range domain.ProjectStatuses {
		d.ProjectsByStatus[s] = 0
	}
	for _, s := range domain.ActivityStatuses {
		d.ActivitiesByStatus[s] = 0
	}

	now := m.now()
	completed := 0
	err := m.store.ReadTransaction(ctx, func(tx persistence.Repositories) error {
		projects, err := tx.ListProjects(&domain.ProjectQuery{Archived: domain.ArchiveStateAll})
		if err != nil {
			return err
		}
		for _, p := range projects {
			d.ProjectsCount++
			d.ProjectsByStatus[p.Status]++
			if p.Archived {
				d.ArchivedCount++
			}
			stages, err := tx.ListStages(p.ID)
			if err != nil {
				return err
			}
			for _, s := range stages {
				activities, err := tx.ListActivities(s.ID)
				if err != nil {
					return err
				}
				c, t := progress.Count(activities)
				completed += c
				d.ActivitiesCount += t
				for i := range activities {
					a := &activities[i]
					d.ActivitiesByStatus[a.Status]++
					if a.Overdue(now) {
						d.OverdueActivities = append(d.OverdueActivities, *a)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.OverallProgress = progress.Percentage(completed, d.ActivitiesCount)

	sort.SliceStable(d.OverdueActivities, func(i, j int) bool {
		return d.OverdueActivities[i].EndDate.Time().Before(d.OverdueActivities[j].EndDate.Time())
	})
	return d, nil
}
