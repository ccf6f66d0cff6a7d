package tracking

import (
	"context"
	"errors"
	"planboard/common"
	"planboard/domain"
	"planboard/domain/progress"
	"planboard/event"
	"planboard/persistence"
	"planboard/security"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

type TrackingManagerTraits interface {
	AddActivity(ctx context.Context, stageID types.ID, c *domain.ActivityCreation, sec *security.Session) (*domain.AggregateSnapshot, error)
	DetailActivity(ctx context.Context, id types.ID) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, id types.ID, c *domain.ActivityUpdating, sec *security.Session) (*domain.AggregateSnapshot, error)
	ChangeActivityStatus(ctx context.Context, c *domain.ChangeStatusCommand, sec *security.Session) (*domain.AggregateSnapshot, error)
	RemoveActivity(ctx context.Context, id types.ID, sec *security.Session) (*domain.AggregateSnapshot, error)
	ListActivities(ctx context.Context, stageID types.ID) ([]domain.Activity, error)

	CreateStage(ctx context.Context, projectID types.ID, c *domain.StageCreation, sec *security.Session) (*domain.Stage, error)
	UpdateStage(ctx context.Context, id types.ID, c *domain.StageUpdating, sec *security.Session) (*domain.Stage, error)
	ReorderStages(ctx context.Context, projectID types.ID, c *domain.StageReordering, sec *security.Session) ([]domain.Stage, error)
	DeleteStage(ctx context.Context, id types.ID, sec *security.Session) (*domain.AggregateSnapshot, error)
	ListStages(ctx context.Context, projectID types.ID) ([]domain.Stage, error)

	CreateProject(ctx context.Context, c *domain.ProjectCreation, sec *security.Session) (*domain.Project, error)
	DetailProject(ctx context.Context, id types.ID) (*domain.ProjectDetail, error)
	QueryProjects(ctx context.Context, q *domain.ProjectQuery) ([]domain.Project, error)
	UpdateProject(ctx context.Context, id types.ID, c *domain.ProjectUpdating, sec *security.Session) (*domain.Project, error)
	ArchiveProject(ctx context.Context, id types.ID, archived bool, sec *security.Session) (*domain.Project, error)
	DeleteProject(ctx context.Context, id types.ID, sec *security.Session) error
	AddTeamMember(ctx context.Context, id types.ID, c *domain.TeamMemberCommand, sec *security.Session) (*domain.Project, error)
	RemoveTeamMember(ctx context.Context, id types.ID, userID types.ID, sec *security.Session) (*domain.Project, error)
	ProjectTimeline(ctx context.Context, id types.ID) (*progress.Timeline, error)

	Dashboard(ctx context.Context) (*Dashboard, error)
}

// TrackingManager orchestrates the state machine and the progress roll-up around the store.
// Every mutation commits in one store transaction, events are published after the commit.
type TrackingManager struct {
	store    persistence.Store
	idWorker *sonyflake.Sonyflake
	bus      *event.Bus
	now      func() types.Timestamp
}

type Option func(m *TrackingManager)

// WithClock replaces the clock used for executed dates and update times.
func WithClock(now func() types.Timestamp) Option {
	return func(m *TrackingManager) {
		m.now = now
	}
}

func NewTrackingManager(store persistence.Store, bus *event.Bus, options ...Option) *TrackingManager {
	m := &TrackingManager{
		store:    store,
		idWorker: common.NewIdWorker(),
		bus:      bus,
		now:      types.CurrentTimestamp,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *TrackingManager) validateCommand(c interface{}) error {
	return domain.ValidateCommand(c)
}

func (m *TrackingManager) publish(records []*event.EventRecord) {
	for _, r := range records {
		m.bus.Publish(r)
	}
}

func creatorOf(sec *security.Session) event.Creator {
	if sec == nil {
		return event.Creator{}
	}
	return event.Creator{ID: sec.Identity.ID, Name: sec.Identity.Name}
}

func notFound(err error, kind string, id types.ID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Kind: kind, ID: id.String()}
	}
	return err
}

// aggregate is one project with all of its stages and activities, loaded inside a transaction.
type aggregate struct {
	project    *domain.Project
	stages     []domain.Stage
	activities map[types.ID][]domain.Activity
}

func loadAggregate(repos persistence.Repositories, projectID types.ID) (*aggregate, error) {
	p, err := repos.GetProject(projectID)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	stages, err := repos.ListStages(projectID)
	if err != nil {
		return nil, err
	}
	ag := &aggregate{project: p, stages: stages, activities: map[types.ID][]domain.Activity{}}
	for _, s := range stages {
		activities, err := repos.ListActivities(s.ID)
		if err != nil {
			return nil, err
		}
		ag.activities[s.ID] = activities
	}
	return ag, nil
}

func (ag *aggregate) stage(id types.ID) *domain.Stage {
	for i := range ag.stages {
		if ag.stages[i].ID == id {
			return &ag.stages[i]
		}
	}
	return nil
}

// putActivity adds the activity to its stage or replaces the stored version of it.
func (ag *aggregate) putActivity(a domain.Activity) {
	list := ag.activities[a.StageID]
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			return
		}
	}
	ag.activities[a.StageID] = append(list, a)
}

func (ag *aggregate) removeActivity(a *domain.Activity) {
	list := ag.activities[a.StageID]
	kept := make([]domain.Activity, 0, len(list))
	for _, v := range list {
		if v.ID != a.ID {
			kept = append(kept, v)
		}
	}
	ag.activities[a.StageID] = kept
}

func (ag *aggregate) removeStage(id types.ID) {
	kept := make([]domain.Stage, 0, len(ag.stages))
	for _, s := range ag.stages {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	ag.stages = kept
	delete(ag.activities, id)
}

// commit rolls the aggregate up and writes the stages whose derived values changed and the project.
func (ag *aggregate) commit(tx persistence.Repositories, now types.Timestamp) error {
	before := map[types.ID]domain.Stage{}
	for _, s := range ag.stages {
		before[s.ID] = s
	}
	progress.Rollup(ag.project, ag.stages, ag.activities)

	for i := range ag.stages {
		s := &ag.stages[i]
		old := before[s.ID]
		if old.ActivitiesCount == s.ActivitiesCount && old.CompletedCount == s.CompletedCount && old.Progress == s.Progress {
			continue
		}
		s.UpdateTime = now
		if err := tx.SaveStage(s); err != nil {
			return err
		}
	}
	ag.project.UpdateTime = now
	if err := ag.project.Validate(); err != nil {
		return err
	}
	return tx.SaveProject(ag.project)
}

func (ag *aggregate) detail() *domain.ProjectDetail {
	detail := &domain.ProjectDetail{Project: *ag.project, Stages: []domain.StageDetail{}}
	for _, s := range ag.stages {
		activities := ag.activities[s.ID]
		if activities == nil {
			activities = []domain.Activity{}
		}
		detail.Stages = append(detail.Stages, domain.StageDetail{Stage: s, Activities: activities})
	}
	return detail
}

func (ag *aggregate) snapshot(a *domain.Activity, stageID types.ID) *domain.AggregateSnapshot {
	snapshot := &domain.AggregateSnapshot{Activity: a}
	if s := ag.stage(stageID); s != nil {
		copied := *s
		snapshot.Stage = &copied
	}
	project := *ag.project
	snapshot.Project = &project
	return snapshot
}
