package label

import (
	"context"
	"errors"
	"planboard/common"
	"planboard/domain"
	"planboard/persistence"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

// LabelManagerTraits maintains the areas of activities and the tags used as project categories.
// Names are unique ignoring case.
type LabelManagerTraits interface {
	QueryAreas(ctx context.Context) ([]domain.Area, error)
	CreateArea(ctx context.Context, c *domain.AreaCreation) (*domain.Area, error)
	UpdateArea(ctx context.Context, id types.ID, c *domain.AreaCreation) (*domain.Area, error)
	DeleteArea(ctx context.Context, id types.ID) error

	QueryTags(ctx context.Context) ([]domain.Tag, error)
	CreateTag(ctx context.Context, c *domain.TagCreation) (*domain.Tag, error)
	UpdateTag(ctx context.Context, id types.ID, c *domain.TagCreation) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id types.ID) error
}

type LabelManager struct {
	store    persistence.Store
	idWorker *sonyflake.Sonyflake
}

func NewLabelManager(store persistence.Store) *LabelManager {
	return &LabelManager{store: store, idWorker: common.NewIdWorker()}
}

func (m *LabelManager) QueryAreas(ctx context.Context) ([]domain.Area, error) {
	return m.store.Repositories(ctx).ListAreas()
}

func (m *LabelManager) CreateArea(ctx context.Context, c *domain.AreaCreation) (*domain.Area, error) {
	return m.saveArea(ctx, 0, c)
}

func (m *LabelManager) UpdateArea(ctx context.Context, id types.ID, c *domain.AreaCreation) (*domain.Area, error) {
	return m.saveArea(ctx, id, c)
}

func (m *LabelManager) saveArea(ctx context.Context, id types.ID, c *domain.AreaCreation) (*domain.Area, error) {
	if err := domain.ValidateCommand(c); err != nil {
		return nil, err
	}
	area := domain.Area{ID: id, Name: strings.TrimSpace(c.Name), Description: c.Description}
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		if id != 0 {
			if _, err := tx.GetArea(id); err != nil {
				return notFound(err, "area", id)
			}
		} else {
			area.ID = common.NextId(m.idWorker)
		}
		if other, err := tx.FindAreaByName(area.Name); err == nil && other.ID != area.ID {
			return domain.NewConflictError("area '%s' already exists", area.Name)
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.SaveArea(&area)
	})
	if err != nil {
		return nil, err
	}
	common.Log.WithFields(logrus.Fields{"areaId": area.ID, "name": area.Name}).Info("area saved")
	return &area, nil
}

// DeleteArea refuses to delete an area still referenced by an activity.
func (m *LabelManager) DeleteArea(ctx context.Context, id types.ID) error {
	return m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		area, err := tx.GetArea(id)
		if err != nil {
			return notFound(err, "area", id)
		}
		used, err := areaInUse(tx, id)
		if err != nil {
			return err
		}
		if used != nil {
			return domain.NewConflictError("area '%s' is used by activity '%s'", area.Name, used.Title)
		}
		return tx.DeleteArea(id)
	})
}

func (m *LabelManager) QueryTags(ctx context.Context) ([]domain.Tag, error) {
	return m.store.Repositories(ctx).ListTags()
}

func (m *LabelManager) CreateTag(ctx context.Context, c *domain.TagCreation) (*domain.Tag, error) {
	return m.saveTag(ctx, 0, c)
}

func (m *LabelManager) UpdateTag(ctx context.Context, id types.ID, c *domain.TagCreation) (*domain.Tag, error) {
	return m.saveTag(ctx, id, c)
}

func (m *LabelManager) saveTag(ctx context.Context, id types.ID, c *domain.TagCreation) (*domain.Tag, error) {
	if err := domain.ValidateCommand(c); err != nil {
		return nil, err
	}
	tag := domain.Tag{ID: id, Name: strings.TrimSpace(c.Name), Color: c.Color}
	err := m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		if id != 0 {
			if _, err := tx.GetTag(id); err != nil {
				return notFound(err, "tag", id)
			}
		} else {
			tag.ID = common.NextId(m.idWorker)
		}
		if other, err := tx.FindTagByName(tag.Name); err == nil && other.ID != tag.ID {
			return domain.NewConflictError("tag '%s' already exists", tag.Name)
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.SaveTag(&tag)
	})
	if err != nil {
		return nil, err
	}
	common.Log.WithFields(logrus.Fields{"tagId": tag.ID, "name": tag.Name}).Info("tag saved")
	return &tag, nil
}

// DeleteTag refuses to delete a tag still used as a project category.
func (m *LabelManager) DeleteTag(ctx context.Context, id types.ID) error {
	return m.store.Transaction(ctx, func(tx persistence.Repositories) error {
		tag, err := tx.GetTag(id)
		if err != nil {
			return notFound(err, "tag", id)
		}
		projects, err := tx.ListProjects(&domain.ProjectQuery{CategoryID: id, Archived: domain.ArchiveStateAll})
		if err != nil {
			return err
		}
		if len(projects) > 0 {
			return domain.NewConflictError("tag '%s' is the category of project '%s'", tag.Name, projects[0].Name)
		}
		return tx.DeleteTag(id)
	})
}

func areaInUse(tx persistence.Repositories, areaID types.ID) (*domain.Activity, error) {
	projects, err := tx.ListProjects(&domain.ProjectQuery{Archived: domain.ArchiveStateAll})
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		stages, err := tx.ListStages(p.ID)
		if err != nil {
			return nil, err
		}
		for _, s := range stages {
			activities, err := tx.ListActivities(s.ID)
			if err != nil {
				return nil, err
			}
			for i := range activities {
				if activities[i].AreaID == areaID {
					return &activities[i], nil
				}
			}
		}
	}
	return nil, nil
}

func notFound(err error, kind string, id types.ID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Kind: kind, ID: id.String()}
	}
	return err
}
