package domain

type ActivityStatus string

const (
	ActivityPending    ActivityStatus = "pending"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityReview     ActivityStatus = "review"
	ActivityCompleted  ActivityStatus = "completed"
)

// ActivityStatuses lists the statuses in their forward order.
var ActivityStatuses = []ActivityStatus{ActivityPending, ActivityInProgress, ActivityReview, ActivityCompleted}

func (s ActivityStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank is the position of the status in the forward order, -1 when unknown.
func (s ActivityStatus) Rank() int {
	for i, v := range ActivityStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Manual reports whether the status is set by a person and survives progress changes.
func (s ProjectStatus) Manual() bool {
	return s == ProjectOnHold || s == ProjectCancelled
}

type StageColor string

const (
	ColorGray   StageColor = "gray"
	ColorBlue   StageColor = "blue"
	ColorGreen  StageColor = "green"
	ColorYellow StageColor = "yellow"
	ColorOrange StageColor = "orange"
	ColorRed    StageColor = "red"
	ColorPurple StageColor = "purple"
	ColorPink   StageColor = "pink"
)

var StagePalette = []StageColor{ColorGray, ColorBlue, ColorGreen, ColorYellow, ColorOrange, ColorRed, ColorPurple, ColorPink}

func (c StageColor) Valid() bool {
	for _, v := range StagePalette {
		if v == c {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// CanEdit reports whether the role may mutate projects, stages and activities.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}
