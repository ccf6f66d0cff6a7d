package indices

import (
	"context"
	"errors"
	"fmt"
	"planboard/client/es"
	"planboard/common"
	"planboard/domain"
	"planboard/event"

	"github.com/fundwit/go-commons/types"
)

var (
	ProjectIndexName = "projects"

	ProjectIndexEventHandlerName = "projectIndexer"
)

// ProjectLoader reads the project aggregates to be indexed.
type ProjectLoader interface {
	QueryProjects(ctx context.Context, q *domain.ProjectQuery) ([]domain.Project, error)
	DetailProject(ctx context.Context, id types.ID) (*domain.ProjectDetail, error)
}

// ProjectDocument is the searchable view of a project, its stages and its activities.
type ProjectDocument struct {
	ID          types.ID             `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Archived    bool                 `json:"archived"`
	ManagerID   types.ID             `json:"managerId"`
	CategoryID  types.ID             `json:"categoryId"`
	Team        []types.ID           `json:"team"`
	Progress    int                  `json:"progressPercentage"`
	Stages      []string             `json:"stages"`
	Activities  []ActivityDocument   `json:"activities"`
}

type ActivityDocument struct {
	ID     types.ID              `json:"id"`
	Title  string                `json:"title"`
	Status domain.ActivityStatus `json:"status"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func NewProjectDocument(detail *domain.ProjectDetail) ProjectDocument {
	doc := ProjectDocument{
		ID:          detail.ID,
		Name:        detail.Name,
		Description: detail.Description,
		Status:      detail.Status,
		Archived:    detail.Archived,
		ManagerID:   detail.ManagerID,
		CategoryID:  detail.CategoryID,
		Team:        detail.Team,
		Progress:    detail.ProgressPercentage,
		Stages:      []string{},
		Activities:  []ActivityDocument{},
	}
	for _, s := range detail.Stages {
		doc.Stages = append(doc.Stages, s.Name)
		for _, a := range s.Activities {
			doc.Activities = append(doc.Activities, ActivityDocument{ID: a.ID, Title: a.Title, Status: a.Status})
		}
	}
	return doc
}

func IndexProjects(ctx context.Context, details []domain.ProjectDetail) error {
	errs := BatchActionError{}
	for i := range details {
		doc := NewProjectDocument(&details[i])
		if err := es.IndexFunc(ctx, ProjectIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			common.Log.WithField("projectId", doc.ID).WithError(err).Warn("index project failed")
		} else {
			common.Log.WithField("projectId", doc.ID).Debug("project indexed")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ProjectIndexHandler keeps the document of the project touched by an event up to date.
// A deleted project loses its document.
func ProjectIndexHandler(loader ProjectLoader) event.EventHandler {
	return func(e *event.EventRecord) *event.EventHandleResult {
		if e.ProjectId == 0 {
			return nil
		}
		ctx := context.Background()
		if err := syncProject(ctx, loader, e); err != nil {
			return &event.EventHandleResult{HandlerIdentifier: ProjectIndexEventHandlerName, Success: false, Message: err.Error()}
		}
		return &event.EventHandleResult{HandlerIdentifier: ProjectIndexEventHandlerName, Success: true}
	}
}

func syncProject(ctx context.Context, loader ProjectLoader, e *event.EventRecord) error {
	if e.SourceType == event.SourceProject && e.EventCategory == event.EventCategoryDeleted {
		return es.DeleteDocumentByIdFunc(ctx, ProjectIndexName, e.ProjectId)
	}
	detail, err := loader.DetailProject(ctx, e.ProjectId)
	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		return es.DeleteDocumentByIdFunc(ctx, ProjectIndexName, e.ProjectId)
	} else if err != nil {
		return err
	}
	return IndexProjects(ctx, []domain.ProjectDetail{*detail})
}
