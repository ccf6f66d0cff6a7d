package domain

import (
	"github.com/fundwit/go-commons/types"
)

type ActivityCreation struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Status      ActivityStatus  `json:"status" binding:"omitempty,oneof=pending in_progress review completed"`
	Priority    Priority        `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssigneeID  types.ID        `json:"assigneeId"`
	AreaID      types.ID        `json:"areaId"`
	StartDate   types.Timestamp `json:"startDate"`
	EndDate     types.Timestamp `json:"endDate"`
	Checklist   []ChecklistItem `json:"checklist" binding:"omitempty,dive"`
}

// ActivityUpdating carries only the fields to change; a present Status routes through the state machine.
type ActivityUpdating struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Status      *ActivityStatus  `json:"status" binding:"omitempty,oneof=pending in_progress review completed"`
	Priority    *Priority        `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssigneeID  *types.ID        `json:"assigneeId"`
	AreaID      *types.ID        `json:"areaId"`
	StartDate   *types.Timestamp `json:"startDate"`
	EndDate     *types.Timestamp `json:"endDate"`
	Checklist   *[]ChecklistItem `json:"checklist" binding:"omitempty,dive"`
}

type ChangeStatusCommand struct {
	ActivityID types.ID       `json:"activityId" binding:"required"`
	NewStatus  ActivityStatus `json:"newStatus" binding:"required,oneof=pending in_progress review completed"`
}

type StageCreation struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Description string     `json:"description" binding:"max=2000"`
	Color       StageColor `json:"color" binding:"omitempty,oneof=gray blue green yellow orange red purple pink"`
	Position    int        `json:"position" binding:"omitempty,min=1"`
}

type StageUpdating struct {
	Name        *string     `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	Color       *StageColor `json:"color" binding:"omitempty,oneof=gray blue green yellow orange red purple pink"`
}

// StageReordering lists every stage of a project in its new display order.
type StageReordering struct {
	StageIDs []types.ID `json:"stageIds" binding:"required,min=1,dive,required"`
}

type ProjectCreation struct {
	Name        string          `json:"name" binding:"required,max=120"`
	Description string          `json:"description" binding:"max=2000"`
	ManagerID   types.ID        `json:"managerId" binding:"required"`
	Team        []types.ID      `json:"team" binding:"required,min=1,dive,required"`
	CategoryID  types.ID        `json:"categoryId"`
	StartDate   types.Timestamp `json:"startDate"`
	EndDate     types.Timestamp `json:"endDate"`
}

type ProjectUpdating struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	ManagerID   *types.ID        `json:"managerId"`
	Team        *[]types.ID      `json:"team" binding:"omitempty,min=1,dive,required"`
	CategoryID  *types.ID        `json:"categoryId"`
	StartDate   *types.Timestamp `json:"startDate"`
	EndDate     *types.Timestamp `json:"endDate"`
	Status      *ProjectStatus   `json:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
}

type ProjectArchiving struct {
	Archived bool `json:"archived"`
}

type TeamMemberCommand struct {
	UserID types.ID `json:"userId" binding:"required"`
}

type ArchiveState string

const (
	ArchiveStateOff ArchiveState = "off"
	ArchiveStateOn  ArchiveState = "on"
	ArchiveStateAll ArchiveState = "all"
)

type ProjectQuery struct {
	Name       string        `form:"name"`
	Status     ProjectStatus `form:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
	CategoryID types.ID      `form:"categoryId"`
	MemberID   types.ID      `form:"memberId"`
	Archived   ArchiveState  `form:"archived" binding:"omitempty,oneof=off on all"`
}
