package progress

import (
	"planboard/domain"
	"sort"

	"github.com/fundwit/go-commons/types"
)

type Span struct {
	Start types.Timestamp `json:"start"`
	End   types.Timestamp `json:"end"`
}

func (s *Span) extend(start, end types.Timestamp) {
	if !start.IsZero() && (s.Start.IsZero() || start.Time().Before(s.Start.Time())) {
		s.Start = start
	}
	if !end.IsZero() && (s.End.IsZero() || end.Time().After(s.End.Time())) {
		s.End = end
	}
}

type StageSpan struct {
	StageID  types.ID          `json:"stageId"`
	Name     string            `json:"name"`
	Color    domain.StageColor `json:"color"`
	Position int               `json:"position"`
	Progress int               `json:"progress"`
	Planned  Span              `json:"planned"`
	Executed Span              `json:"executed"`
}

type Timeline struct {
	ProjectID types.ID    `json:"projectId"`
	Planned   Span        `json:"planned"`
	Executed  Span        `json:"executed"`
	Stages    []StageSpan `json:"stages"`
}

// BuildTimeline lays the stages out in position order with the planned and executed
// spans covered by their activities, the data a gantt view renders.
func BuildTimeline(detail *domain.ProjectDetail) *Timeline {
	t := &Timeline{
		ProjectID: detail.ID,
		Planned:   Span{Start: detail.StartDate, End: detail.EndDate},
		Executed:  Span{Start: detail.RealStartDate, End: detail.RealEndDate},
		Stages:    []StageSpan{},
	}
	for _, s := range detail.Stages {
		span := StageSpan{StageID: s.ID, Name: s.Name, Color: s.Color, Position: s.Position, Progress: s.Progress}
		for _, a := range s.Activities {
			span.Planned.extend(a.StartDate, a.EndDate)
			span.Executed.extend(a.ExecutedStartDate, a.ExecutedEndDate)
		}
		t.Stages = append(t.Stages, span)
	}
	sort.SliceStable(t.Stages, func(i, j int) bool {
		return t.Stages[i].Position < t.Stages[j].Position
	})
	return t
}
