package domain

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

type Stage struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" gorm:"index" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       StageColor `json:"color"`
	Position    int        `json:"position"`

	ActivitiesCount int `json:"activitiesCount"`
	CompletedCount  int `json:"completedCount"`
	Progress        int `json:"progress"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

func (s *Stage) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("stage name must not be empty")
	}
	if !s.Color.Valid() {
		return NewValidationError("unknown stage color '%s'", s.Color)
	}
	if s.Position < 1 {
		return NewValidationError("stage position must be positive")
	}
	if s.Progress < 0 || s.Progress > 100 {
		return NewValidationError("stage progress %d out of range", s.Progress)
	}
	return nil
}

// StageDetail is a stage with its activities, in stage order.
type StageDetail struct {
	Stage
	Activities []Activity `json:"activities"`
}

// CheckStagePositions returns a ConflictError when two stages share a position.
func CheckStagePositions(stages []Stage) error {
	seen := map[int]types.ID{}
	for _, s := range stages {
		if other, found := seen[s.Position]; found && other != s.ID {
			return NewConflictError("stage position %d is already taken", s.Position)
		}
		seen[s.Position] = s.ID
	}
	return nil
}
