package tracking

import (
	"context"
	"planboard/common"
	"planboard/domain"
	"planboard/domain/state"
	"planboard/event"
	"planboard/persistence"
	"planboard/security"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

func (m *TrackingManager) AddActivity(ctx context.Context, stageID types.ID, c *domain.ActivityCreation,
	sec *security.Session) (*domain.AggregateSnapshot, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	activity := domain.Activity{
		ID:          common.NextId(m.idWorker),
		StageID:     stageID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		AssigneeID:  c.AssigneeID,
		AreaID:      c.AreaID,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Checklist:   append([]domain.ChecklistItem{}, c.Checklist...),
		CreateTime:  now,
		UpdateTime:  now,
	}
	if activity.Status == "" {
		activity.Status = domain.ActivityPending
	}
	if activity.Priority == "" {
		activity.Priority = domain.PriorityMedium
	}
	state.Stamp(&activity, now)
	if err := activity.Validate(); err != nil {
		return nil, err
	}

	var snapshot *domain.AggregateSnapshot
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		stage, err := tx.GetStage(stageID)
		if err != nil {
			return notFound(err, "stage", stageID)
		}
		if err := checkActivityReferences(tx, &activity); err != nil {
			return err
		}
		activity.ProjectID = stage.ProjectID

		ag, err := loadAggregate(tx, stage.ProjectID)
		if err != nil {
			return err
		}
		if err := tx.SaveActivity(&activity); err != nil {
			return err
		}
		ag.putActivity(activity)
		if err := ag.commit(tx, now); err != nil {
			return err
		}
		snapshot = ag.snapshot(&activity, stageID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"activityId": activity.ID, "stageId": stageID, "projectId": activity.ProjectID,
		"projectProgress": snapshot.Project.ProgressPercentage}).Info("activity added")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceActivity, activity.ID, activity.Title,
		activity.ProjectID, event.EventCategoryCreated, nil, creatorOf(sec), now)})
	return snapshot, nil
}

func (m *TrackingManager) DetailActivity(ctx context.Context, id types.ID) (*domain.Activity, error) {
	a, err := m.store.Repositories(ctx).GetActivity(id)
	if err != nil {
		return nil, notFound(err, "activity", id)
	}
	return a, nil
}

func (m *TrackingManager) ListActivities(ctx context.Context, stageID types.ID) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := m.store.ReadTransaction(ctx, func(tx persistence.Repositories) error {
		if _, err := tx.GetStage(stageID); err != nil {
			return notFound(err, "stage", stageID)
		}
		var err error
		activities, err = tx.ListActivities(stageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// UpdateActivity applies the present fields. A present status different from the current one
// goes through the state machine and triggers the roll-up, other fields never touch progress.
func (m *TrackingManager) UpdateActivity(ctx context.Context, id types.ID, c *domain.ActivityUpdating,
	sec *security.Session) (*domain.AggregateSnapshot, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	var (
		snapshot *domain.AggregateSnapshot
		changes  event.UpdatedProperties
		category event.EventCategory = event.EventCategoryPropertyUpdated
		updated  *domain.Activity
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		activity, err := tx.GetActivity(id)
		if err != nil {
			return notFound(err, "activity", id)
		}

		changes = applyActivityUpdating(activity, c)
		statusChanged := false
		if c.Status != nil && *c.Status != activity.Status {
			from := activity.Status
			if err := state.ActivityStateMachine.Transit(activity, *c.Status, now); err != nil {
				return err
			}
			statusChanged = true
			category = event.EventCategoryStatusChanged
			changes = append(changes, event.UpdatedProperty{PropertyName: "status", OldValue: string(from), NewValue: string(activity.Status)})
		}
		if err := activity.Validate(); err != nil {
			return err
		}
		if err := checkActivityReferences(tx, activity); err != nil {
			return err
		}
		activity.UpdateTime = now
		if err := tx.SaveActivity(activity); err != nil {
			return err
		}
		updated = activity

		if !statusChanged {
			stage, err := tx.GetStage(activity.StageID)
			if err != nil {
				return notFound(err, "stage", activity.StageID)
			}
			project, err := tx.GetProject(activity.ProjectID)
			if err != nil {
				return notFound(err, "project", activity.ProjectID)
			}
			snapshot = &domain.AggregateSnapshot{Activity: activity, Stage: stage, Project: project}
			return nil
		}

		ag, err := loadAggregate(tx, activity.ProjectID)
		if err != nil {
			return err
		}
		ag.putActivity(*activity)
		if err := ag.commit(tx, now); err != nil {
			return err
		}
		snapshot = ag.snapshot(activity, activity.StageID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"activityId": id, "changes": len(changes)}).Info("activity updated")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceActivity, id, updated.Title,
		updated.ProjectID, category, changes, creatorOf(sec), now)})
	return snapshot, nil
}

// ChangeActivityStatus is the strict transition path: the requested status must be reachable
// from the current one in one allowed step.
func (m *TrackingManager) ChangeActivityStatus(ctx context.Context, c *domain.ChangeStatusCommand,
	sec *security.Session) (*domain.AggregateSnapshot, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	var (
		snapshot *domain.AggregateSnapshot
		from     domain.ActivityStatus
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		activity, err := tx.GetActivity(c.ActivityID)
		if err != nil {
			return notFound(err, "activity", c.ActivityID)
		}
		from = activity.Status
		if err := state.ActivityStateMachine.Transit(activity, c.NewStatus, now); err != nil {
			return err
		}
		activity.UpdateTime = now
		if err := activity.Validate(); err != nil {
			return err
		}
		if err := tx.SaveActivity(activity); err != nil {
			return err
		}

		ag, err := loadAggregate(tx, activity.ProjectID)
		if err != nil {
			return err
		}
		ag.putActivity(*activity)
		if err := ag.commit(tx, now); err != nil {
			return err
		}
		snapshot = ag.snapshot(activity, activity.StageID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	a := snapshot.Activity
	common.Log.WithFields(logrus.Fields{"activityId": a.ID, "from": from, "to": a.Status,
		"stageProgress": snapshot.Stage.Progress, "projectProgress": snapshot.Project.ProgressPercentage}).Info("activity status changed")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceActivity, a.ID, a.Title, a.ProjectID,
		event.EventCategoryStatusChanged,
		event.UpdatedProperties{{PropertyName: "status", OldValue: string(from), NewValue: string(a.Status)}},
		creatorOf(sec), now)})
	return snapshot, nil
}

func (m *TrackingManager) RemoveActivity(ctx context.Context, id types.ID, sec *security.Session) (*domain.AggregateSnapshot, error) {
	now := m.now()
	var snapshot *domain.AggregateSnapshot
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		activity, err := tx.GetActivity(id)
		if err != nil {
			return notFound(err, "activity", id)
		}
		if err := tx.DeleteActivity(id); err != nil {
			return err
		}
		ag, err := loadAggregate(tx, activity.ProjectID)
		if err != nil {
			return err
		}
		ag.removeActivity(activity)
		if err := ag.commit(tx, now); err != nil {
			return err
		}
		snapshot = ag.snapshot(activity, activity.StageID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	a := snapshot.Activity
	common.Log.WithFields(logrus.Fields{"activityId": id, "projectProgress": snapshot.Project.ProgressPercentage}).Info("activity removed")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceActivity, a.ID, a.Title, a.ProjectID,
		event.EventCategoryDeleted, nil, creatorOf(sec), now)})
	return snapshot, nil
}

func applyActivityUpdating(a *domain.Activity, c *domain.ActivityUpdating) event.UpdatedProperties {
	changes := event.UpdatedProperties{}
	if c.Title != nil && *c.Title != a.Title {
		changes = append(changes, event.UpdatedProperty{PropertyName: "title", OldValue: a.Title, NewValue: *c.Title})
		a.Title = *c.Title
	}
	if c.Description != nil && *c.Description != a.Description {
		changes = append(changes, event.UpdatedProperty{PropertyName: "description"})
		a.Description = *c.Description
	}
	if c.Priority != nil && *c.Priority != a.Priority {
		changes = append(changes, event.UpdatedProperty{PropertyName: "priority", OldValue: string(a.Priority), NewValue: string(*c.Priority)})
		a.Priority = *c.Priority
	}
	if c.AssigneeID != nil && *c.AssigneeID != a.AssigneeID {
		changes = append(changes, event.UpdatedProperty{PropertyName: "assigneeId", OldValue: a.AssigneeID.String(), NewValue: c.AssigneeID.String()})
		a.AssigneeID = *c.AssigneeID
	}
	if c.AreaID != nil && *c.AreaID != a.AreaID {
		changes = append(changes, event.UpdatedProperty{PropertyName: "areaId", OldValue: a.AreaID.String(), NewValue: c.AreaID.String()})
		a.AreaID = *c.AreaID
	}
	if c.StartDate != nil {
		changes = append(changes, event.UpdatedProperty{PropertyName: "startDate", OldValue: a.StartDate.String(), NewValue: c.StartDate.String()})
		a.StartDate = *c.StartDate
	}
	if c.EndDate != nil {
		changes = append(changes, event.UpdatedProperty{PropertyName: "endDate", OldValue: a.EndDate.String(), NewValue: c.EndDate.String()})
		a.EndDate = *c.EndDate
	}
	if c.Checklist != nil {
		changes = append(changes, event.UpdatedProperty{PropertyName: "checklist"})
		a.Checklist = append([]domain.ChecklistItem{}, (*c.Checklist)...)
	}
	return changes
}

func checkActivityReferences(tx persistence.Repositories, a *domain.Activity) error {
	if a.AssigneeID != 0 {
		if _, err := tx.GetUser(a.AssigneeID); err != nil {
			return notFound(err, "user", a.AssigneeID)
		}
	}
	if a.AreaID != 0 {
		if _, err := tx.GetArea(a.AreaID); err != nil {
			return notFound(err, "area", a.AreaID)
		}
	}
	return nil
}
