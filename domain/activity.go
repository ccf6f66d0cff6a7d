package domain

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

type Activity struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	StageID   types.ID `json:"stageId" gorm:"index" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID `json:"projectId" gorm:"index" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      ActivityStatus `json:"status"`
	Priority    Priority       `json:"priority"`
	AssigneeID  types.ID       `json:"assigneeId"`
	AreaID      types.ID       `json:"areaId"`

	StartDate         types.Timestamp `json:"startDate" sql:"type:DATETIME(6)"`
	EndDate           types.Timestamp `json:"endDate" sql:"type:DATETIME(6)"`
	ExecutedStartDate types.Timestamp `json:"executedStartDate" sql:"type:DATETIME(6)"`
	ExecutedEndDate   types.Timestamp `json:"executedEndDate" sql:"type:DATETIME(6)"`

	Checklist []ChecklistItem `json:"checklist" gorm:"-"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

type ChecklistItem struct {
	Description string `json:"description" binding:"required,max=200"`
	Done        bool   `json:"done"`
}

// Validate checks the invariants an activity must hold after every mutation.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return NewValidationError("activity title must not be empty")
	}
	if !a.Status.Valid() {
		return NewValidationError("unknown activity status '%s'", a.Status)
	}
	if !a.Priority.Valid() {
		return NewValidationError("unknown activity priority '%s'", a.Priority)
	}
	if !a.StartDate.IsZero() && !a.EndDate.IsZero() && a.EndDate.Time().Before(a.StartDate.Time()) {
		return NewValidationError("activity end date must not be before its start date")
	}
	if !a.ExecutedEndDate.IsZero() && a.ExecutedStartDate.IsZero() {
		return NewValidationError("activity executed end date requires an executed start date")
	}
	if !a.ExecutedStartDate.IsZero() && !a.ExecutedEndDate.IsZero() &&
		a.ExecutedEndDate.Time().Before(a.ExecutedStartDate.Time()) {
		return NewValidationError("activity executed end date must not be before its executed start date")
	}
	for i, item := range a.Checklist {
		if strings.TrimSpace(item.Description) == "" {
			return NewValidationError("checklist item %d must have a description", i+1)
		}
	}
	return nil
}

// Overdue reports whether a not yet completed activity has passed its planned end date.
func (a *Activity) Overdue(now types.Timestamp) bool {
	return a.Status != ActivityCompleted && !a.EndDate.IsZero() && a.EndDate.Time().Before(now.Time())
}

// ChecklistProgress returns the number of done items and the item count.
func (a *Activity) ChecklistProgress() (done, total int) {
	for _, item := range a.Checklist {
		if item.Done {
			done++
		}
	}
	return done, len(a.Checklist)
}
