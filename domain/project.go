package domain

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name        string   `json:"name"`
	Description string   `json:"description"`
	ManagerID   types.ID `json:"managerId"`
	CategoryID  types.ID `json:"categoryId"`

	Team []types.ID `json:"team" gorm:"-"`

	StartDate     types.Timestamp `json:"startDate" sql:"type:DATETIME(6)"`
	EndDate       types.Timestamp `json:"endDate" sql:"type:DATETIME(6)"`
	RealStartDate types.Timestamp `json:"realStartDate" sql:"type:DATETIME(6)"`
	RealEndDate   types.Timestamp `json:"realEndDate" sql:"type:DATETIME(6)"`

	ProgressPercentage int           `json:"progressPercentage"`
	ActivitiesCount    int           `json:"activitiesCount"`
	Status             ProjectStatus `json:"status"`
	Archived           bool          `json:"archived"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

// ProjectMember is the persisted form of one team entry.
type ProjectMember struct {
	ProjectID types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID    types.ID `json:"userId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Position  int      `json:"position"`
}

// Validate checks the single-entity invariants of a project.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("project name must not be empty")
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Time().Before(p.StartDate.Time()) {
		return NewValidationError("project end date must not be before its start date")
	}
	if len(p.Team) == 0 {
		return NewValidationError("project team must have at least one member")
	}
	if !p.Status.Valid() {
		return NewValidationError("unknown project status '%s'", p.Status)
	}
	if p.Status == ProjectCompleted && p.ProgressPercentage != 100 {
		return NewValidationError("project can not be completed at %d%% progress", p.ProgressPercentage)
	}
	return nil
}

// CheckTeam verifies the manager is one of the team members.
func (p *Project) CheckTeam() error {
	if !p.HasMember(p.ManagerID) {
		return NewConflictError("manager '%s' is not a member of the project team", p.ManagerID)
	}
	return nil
}

func (p *Project) HasMember(userID types.ID) bool {
	for _, id := range p.Team {
		if id == userID {
			return true
		}
	}
	return false
}

// ProjectDetail is the whole aggregate: the project with its stages and their activities.
type ProjectDetail struct {
	Project
	Stages []StageDetail `json:"stages"`
}

// AggregateSnapshot is the externally observable result of an activity or stage mutation.
type AggregateSnapshot struct {
	Activity *Activity `json:"activity,omitempty"`
	Stage    *Stage    `json:"stage,omitempty"`
	Project  *Project  `json:"project"`
}
