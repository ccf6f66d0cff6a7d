package tracking

import (
	"context"
	"planboard/common"
	"planboard/domain"
	"planboard/domain/progress"
	"planboard/event"
	"planboard/persistence"
	"planboard/security"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

func (m *TrackingManager) CreateProject(ctx context.Context, c *domain.ProjectCreation, sec *security.Session) (*domain.Project, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	project := domain.Project{
		ID:          common.NextId(m.idWorker),
		Name:        c.Name,
		Description: c.Description,
		ManagerID:   c.ManagerID,
		CategoryID:  c.CategoryID,
		Team:        uniqueIDs(c.Team),
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Status:      domain.ProjectActive,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := project.CheckTeam(); err != nil {
		return nil, err
	}

	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		if err := checkProjectReferences(tx, &project); err != nil {
			return err
		}
		return tx.SaveProject(&project)
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"projectId": project.ID, "team": len(project.Team)}).Info("project created")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceProject, project.ID, project.Name, project.ID,
		event.EventCategoryCreated, nil, creatorOf(sec), now)})
	return &project, nil
}

func (m *TrackingManager) DetailProject(ctx context.Context, id types.ID) (*domain.ProjectDetail, error) {
	var detail *domain.ProjectDetail
	err := m.store.ReadTransaction(ctx, func(tx persistence.Repositories) error {
		ag, err := loadAggregate(tx, id)
		if err != nil {
			return err
		}
		detail = ag.detail()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// QueryProjects lists the projects matching the query, a nil query lists the projects not archived.
func (m *TrackingManager) QueryProjects(ctx context.Context, q *domain.ProjectQuery) ([]domain.Project, error) {
	if q != nil {
		if err := m.validateCommand(q); err != nil {
			return nil, err
		}
	}
	return m.store.Repositories(ctx).ListProjects(q)
}

// UpdateProject applies the present fields. A requested status is kept when it is a manual one,
// active and completed follow the activities, and completed is rejected until every activity is done.
func (m *TrackingManager) UpdateProject(ctx context.Context, id types.ID, c *domain.ProjectUpdating, sec *security.Session) (*domain.Project, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}

	now := m.now()
	var (
		project *domain.Project
		changes = event.UpdatedProperties{}
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		ag, err := loadAggregate(tx, id)
		if err != nil {
			return err
		}
		p := ag.project

		if c.Name != nil && *c.Name != p.Name {
			changes = append(changes, event.UpdatedProperty{PropertyName: "name", OldValue: p.Name, NewValue: *c.Name})
			p.Name = *c.Name
		}
		if c.Description != nil && *c.Description != p.Description {
			changes = append(changes, event.UpdatedProperty{PropertyName: "description"})
			p.Description = *c.Description
		}
		if c.ManagerID != nil && *c.ManagerID != p.ManagerID {
			changes = append(changes, event.UpdatedProperty{PropertyName: "managerId", OldValue: p.ManagerID.String(), NewValue: c.ManagerID.String()})
			p.ManagerID = *c.ManagerID
		}
		if c.Team != nil {
			changes = append(changes, event.UpdatedProperty{PropertyName: "team", OldValue: strconv.Itoa(len(p.Team)), NewValue: strconv.Itoa(len(*c.Team))})
			p.Team = uniqueIDs(*c.Team)
		}
		if c.CategoryID != nil && *c.CategoryID != p.CategoryID {
			changes = append(changes, event.UpdatedProperty{PropertyName: "categoryId", OldValue: p.CategoryID.String(), NewValue: c.CategoryID.String()})
			p.CategoryID = *c.CategoryID
		}
		if c.StartDate != nil {
			changes = append(changes, event.UpdatedProperty{PropertyName: "startDate", OldValue: p.StartDate.String(), NewValue: c.StartDate.String()})
			p.StartDate = *c.StartDate
		}
		if c.EndDate != nil {
			changes = append(changes, event.UpdatedProperty{PropertyName: "endDate", OldValue: p.EndDate.String(), NewValue: c.EndDate.String()})
			p.EndDate = *c.EndDate
		}
		if c.Status != nil && *c.Status != p.Status {
			changes = append(changes, event.UpdatedProperty{PropertyName: "status", OldValue: string(p.Status), NewValue: string(*c.Status)})
			p.Status = *c.Status
		}

		if err := p.Validate(); err != nil {
			return err
		}
		if err := p.CheckTeam(); err != nil {
			return err
		}
		if err := checkProjectReferences(tx, p); err != nil {
			return err
		}
		if err := ag.commit(tx, now); err != nil {
			return err
		}
		if c.Status != nil && *c.Status == domain.ProjectCompleted && p.Status != domain.ProjectCompleted {
			return domain.NewValidationError("project can not be completed before all of its activities are completed")
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"projectId": id, "changes": len(changes), "status": project.Status}).Info("project updated")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceProject, id, project.Name, id,
		event.EventCategoryPropertyUpdated, changes, creatorOf(sec), now)})
	return project, nil
}

// ArchiveProject sets the archive flag, the soft delete of a project.
func (m *TrackingManager) ArchiveProject(ctx context.Context, id types.ID, archived bool, sec *security.Session) (*domain.Project, error) {
	now := m.now()
	var (
		project *domain.Project
		changed bool
	)
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		var err error
		project, err = tx.GetProject(id)
		if err != nil {
			return notFound(err, "project", id)
		}
		if project.Archived == archived {
			return nil
		}
		changed = true
		project.Archived = archived
		project.UpdateTime = now
		return tx.SaveProject(project)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return project, nil
	}

	common.Log.WithFields(logrus.Fields{"projectId": id, "archived": archived}).Info("project archive flag changed")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceProject, id, project.Name, id,
		event.EventCategoryArchived,
		event.UpdatedProperties{{PropertyName: "archived", OldValue: strconv.FormatBool(!archived), NewValue: strconv.FormatBool(archived)}},
		creatorOf(sec), now)})
	return project, nil
}

// DeleteProject removes the project with all of its stages and activities.
func (m *TrackingManager) DeleteProject(ctx context.Context, id types.ID, sec *security.Session) error {
	now := m.now()
	var project *domain.Project
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		ag, err := loadAggregate(tx, id)
		if err != nil {
			return err
		}
		project = ag.project
		for _, s := range ag.stages {
			for _, a := range ag.activities[s.ID] {
				if err := tx.DeleteActivity(a.ID); err != nil {
					return err
				}
			}
			if err := tx.DeleteStage(s.ID); err != nil {
				return err
			}
		}
		return tx.DeleteProject(id)
	})
	if err != nil {
		return err
	}

	common.Log.WithField("projectId", id).Info("project deleted")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceProject, id, project.Name, id,
		event.EventCategoryDeleted, nil, creatorOf(sec), now)})
	return nil
}

func (m *TrackingManager) AddTeamMember(ctx context.Context, id types.ID, c *domain.TeamMemberCommand, sec *security.Session) (*domain.Project, error) {
	if err := m.validateCommand(c); err != nil {
		return nil, err
	}
	return m.changeTeam(ctx, id, sec, func(tx persistence.Repositories, p *domain.Project) error {
		if p.HasMember(c.UserID) {
			return domain.NewConflictError("user '%s' is already a member of the project team", c.UserID)
		}
		if _, err := tx.GetUser(c.UserID); err != nil {
			return notFound(err, "user", c.UserID)
		}
		p.Team = append(p.Team, c.UserID)
		return nil
	}, event.UpdatedProperty{PropertyName: "team", NewValue: c.UserID.String()})
}

// RemoveTeamMember refuses to remove the manager, which also covers the last member
// since the manager is always on the team.
func (m *TrackingManager) RemoveTeamMember(ctx context.Context, id types.ID, userID types.ID, sec *security.Session) (*domain.Project, error) {
	return m.changeTeam(ctx, id, sec, func(tx persistence.Repositories, p *domain.Project) error {
		if !p.HasMember(userID) {
			return &domain.NotFoundError{Kind: "team member", ID: userID.String()}
		}
		if userID == p.ManagerID {
			return domain.NewConflictError("manager '%s' can not be removed from the project team", userID)
		}
		if len(p.Team) == 1 {
			return domain.NewConflictError("the last member can not be removed from the project team")
		}
		team := make([]types.ID, 0, len(p.Team)-1)
		for _, member := range p.Team {
			if member != userID {
				team = append(team, member)
			}
		}
		p.Team = team
		return nil
	}, event.UpdatedProperty{PropertyName: "team", OldValue: userID.String()})
}

func (m *TrackingManager) changeTeam(ctx context.Context, id types.ID, sec *security.Session,
	change func(tx persistence.Repositories, p *domain.Project) error, property event.UpdatedProperty) (*domain.Project, error) {
	now := m.now()
	var project *domain.Project
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		var err error
		project, err = tx.GetProject(id)
		if err != nil {
			return notFound(err, "project", id)
		}
		if err := change(tx, project); err != nil {
			return err
		}
		if err := project.Validate(); err != nil {
			return err
		}
		if err := project.CheckTeam(); err != nil {
			return err
		}
		project.UpdateTime = now
		return tx.SaveProject(project)
	})
	if err != nil {
		return nil, err
	}

	common.Log.WithFields(logrus.Fields{"projectId": id, "team": len(project.Team)}).Info("project team changed")
	m.publish([]*event.EventRecord{event.NewEventRecord(event.SourceProject, id, project.Name, id,
		event.EventCategoryRelationUpdated, event.UpdatedProperties{property}, creatorOf(sec), now)})
	return project, nil
}

func (m *TrackingManager) ProjectTimeline(ctx context.Context, id types.ID) (*progress.Timeline, error) {
	detail, err := m.DetailProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return progress.BuildTimeline(detail), nil
}

func checkProjectReferences(tx persistence.Repositories, p *domain.Project) error {
	for _, member := range p.Team {
		if _, err := tx.GetUser(member); err != nil {
			return notFound(err, "user", member)
		}
	}
	if p.CategoryID != 0 {
		if _, err := tx.GetTag(p.CategoryID); err != nil {
			return notFound(err, "tag", p.CategoryID)
		}
	}
	return nil
}

func uniqueIDs(ids []types.ID) []types.ID {
	seen := map[types.ID]bool{}
	result := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
