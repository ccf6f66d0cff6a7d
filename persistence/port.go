package persistence

import (
	"context"
	"planboard/domain"

	"github.com/fundwit/go-commons/types"
)

// Repositories is the persistence port of the domain service. Lookups of unknown ids
// return domain.ErrNotFound. List methods return children of the given parent in display order.
type Repositories interface {
	ProjectRepository
	StageRepository
	ActivityRepository
	UserRepository
	AreaRepository
	TagRepository
}

type ProjectRepository interface {
	GetProject(id types.ID) (*domain.Project, error)
	SaveProject(p *domain.Project) error
	DeleteProject(id types.ID) error
	ListProjects(q *domain.ProjectQuery) ([]domain.Project, error)
}

type StageRepository interface {
	GetStage(id types.ID) (*domain.Stage, error)
	SaveStage(s *domain.Stage) error
	DeleteStage(id types.ID) error
	ListStages(projectID types.ID) ([]domain.Stage, error)
}

type ActivityRepository interface {
	GetActivity(id types.ID) (*domain.Activity, error)
	SaveActivity(a *domain.Activity) error
	DeleteActivity(id types.ID) error
	ListActivities(stageID types.ID) ([]domain.Activity, error)
}

type UserRepository interface {
	GetUser(id types.ID) (*domain.User, error)
	FindUserByEmail(email string) (*domain.User, error)
	SaveUser(u *domain.User) error
	DeleteUser(id types.ID) error
	ListUsers() ([]domain.User, error)
}

type AreaRepository interface {
	GetArea(id types.ID) (*domain.Area, error)
	FindAreaByName(name string) (*domain.Area, error)
	SaveArea(a *domain.Area) error
	DeleteArea(id types.ID) error
	ListAreas() ([]domain.Area, error)
}

type TagRepository interface {
	GetTag(id types.ID) (*domain.Tag, error)
	FindTagByName(name string) (*domain.Tag, error)
	SaveTag(t *domain.Tag) error
	DeleteTag(id types.ID) error
	ListTags() ([]domain.Tag, error)
}

// Store hands out repositories. Writes made inside Transaction commit together or not at all.
// Reads made inside ReadTransaction see one consistent state, fn must not write.
type Store interface {
	Repositories(ctx context.Context) Repositories
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
	ReadTransaction(ctx context.Context, fn func(tx Repositories) error) error
}
