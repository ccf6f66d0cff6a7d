package tracking

import (
	"context"
	"planboard/common"
	"planboard/domain"
	"planboard/event"
	"planboard/persistence"
	"planboard/security"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

// CreateStage appends the stage after the last one unless a free position is requested.
// A stage without color takes the next palette color.
func (m *TrackingManager) CreateStage(ctx context.Context, projectID types.ID, c *domain.StageCreation,
	sec *security.Session) (*domain.Stage, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	stage := domain.Stage{
		ID:          common.NextId(m.idWorker),
		ProjectID:   projectID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Position:    c.Position,
		CreateTime:  now,
		UpdateTime:  now,
	}
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		if _, err := tx.GetProject(projectID); err != nil {
			return notFound(err, "project", projectID)
		}
		stages, err := tx.ListStages(projectID)
		if err != nil {
			return err
		}
		if stage.Position == 0 {
			stage.Position = 1
			for _, s := range stages {
				if s.Position >= stage.Position {
					stage.Position = s.Position + 1
				}
			}
		}
		if stage.Color == "" {
			stage.Color = domain.StagePalette[len(stages)%len(domain.StagePalette)]
		}
		if err := stage.Validate(); err != nil {
			return err
		}
		if err := domain.CheckStagePositions(append(stages, stage)); err != nil {
			return err
		}
		return tx.SaveStage(&stage)
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"stageId": stage.ID, "projectId": projectID, "position": stage.Position}).Info("stage created")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceStage, stage.ID, stage.Name, projectID,
		event.EventCategoryCreated, nil, creatorOf(sec), now)})
	return &stage, nil
}

func (m *TrackingManager) UpdateStage(ctx context.Context, id types.ID, c *domain.StageUpdating, sec *security.Session) (*domain.Stage, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	var (
		stage   *domain.Stage
		changes = event.UpdatedProperties{}
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		var err error
		stage, err = tx.GetStage(id)
		if err != nil {
			return notFound(err, "stage", id)
		}
		if c.Name != nil && *c.Name != stage.Name {
			changes = append(changes, event.UpdatedProperty{PropertyName: "name", OldValue: stage.Name, NewValue: *c.Name})
			stage.Name = *c.Name
		}
		if c.Description != nil && *c.Description != stage.Description {
			changes = append(changes, event.UpdatedProperty{PropertyName: "description"})
			stage.Description = *c.Description
		}
		if c.Color != nil && *c.Color != stage.Color {
			changes = append(changes, event.UpdatedProperty{PropertyName: "color", OldValue: string(stage.Color), NewValue: string(*c.Color)})
			stage.Color = *c.Color
		}
		if err := stage.Validate(); err != nil {
			return err
		}
		stage.UpdateTime = now
		return tx.SaveStage(stage)
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"stageId": id, "changes": len(changes)}).Info("stage updated")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceStage, id, stage.Name, stage.ProjectID,
		event.EventCategoryPropertyUpdated, changes, creatorOf(sec), now)})
	return stage, nil
}

// ReorderStages takes every stage of the project exactly once and numbers them from 1 in that order.
func (m *TrackingManager) ReorderStages(ctx context.Context, projectID types.ID, c *domain.StageReordering,
	sec *security.Session) ([]domain.Stage, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	var reordered []domain.Stage
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		if _, err := tx.GetProject(projectID); err != nil {
			return notFound(err, "project", projectID)
		}
		stages, err := tx.ListStages(projectID)
		if err != nil {
			return err
		}
		byID := map[types.ID]domain.Stage{}
		for _, s := range stages {
			byID[s.ID] = s
		}
		if len(c.StageIDs) != len(stages) {
			return domain.NewValidationError("stage order must list all %d stages of the project", len(stages))
		}

		reordered = make([]domain.Stage, 0, len(stages))
		for i, stageID := range c.StageIDs {
			s, found := byID[stageID]
			if !found {
				for _, listed := range reordered {
					if listed.ID == stageID {
						return domain.NewValidationError("stage '%s' is listed more than once", stageID)
					}
				}
				return &domain.NotFoundError{Kind: "stage", ID: stageID.String()}
			}
			delete(byID, stageID)
			if s.Position != i+1 {
				s.Position = i + 1
				s.UpdateTime = now
				if err := tx.SaveStage(&s); err != nil {
					return err
				}
			}
			reordered = append(reordered, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"projectId": projectID, "stages": len(reordered)}).Info("stages reordered")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceProject, projectID, "", projectID,
		event.EventCategoryRelationUpdated, event.UpdatedProperties{{PropertyName: "stageOrder", NewValue: strconv.Itoa(len(reordered))}},
		creatorOf(sec), now)})
	return reordered, nil
}

// DeleteStage removes the stage with its activities, closes the position gap
// and recomputes the project progress.
func (m *TrackingManager) DeleteStage(ctx context.Context, id types.ID, sec *security.Session) (*domain.AggregateSnapshot, error) {
	now := m.now()
	var (
		snapshot *domain.AggregateSnapshot
		stage    *domain.Stage
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		var err error
		stage, err = tx.GetStage(id)
		if err != nil {
			return notFound(err, "stage", id)
		}
		ag, err := loadAggregate(tx, stage.ProjectID)
		if err != nil {
			return err
		}
		for _, a := range ag.activities[id] {
			if err := tx.DeleteActivity(a.ID); err != nil {
				return err
			}
		}
		if err := tx.DeleteStage(id); err != nil {
			return err
		}
		ag.removeStage(id)

		for i := range ag.stages {
			if ag.stages[i].Position != i+1 {
				ag.stages[i].Position = i + 1
				ag.stages[i].UpdateTime = now
				if err := tx.SaveStage(&ag.stages[i]); err != nil {
					return err
				}
			}
		}
		if err := ag.commit(tx, now); err != nil {
			return err
		}
		snapshot = ag.snapshot(nil, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"stageId": id, "projectId": stage.ProjectID,
		"projectProgress": snapshot.Project.ProgressPercentage}).Info("stage deleted")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceStage, id, stage.Name, stage.ProjectID,
		event.EventCategoryDeleted, nil, creatorOf(sec), now)})
	return snapshot, nil
}

func (m *TrackingManager) ListStages(ctx context.Context, projectID types.ID) ([]domain.Stage, error) {
	var stages []domain.Stage
	err := m.store.ReadTransaction(ctx, func(tx persistence.Repositories) error {
		if _, err := tx.GetProject(projectID); err != nil {
			return notFound(err, "project", projectID)
		}
		var err error
		stages, err = tx.ListStages(projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stages, nil
}
