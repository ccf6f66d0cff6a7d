package progress_test

import (
	"planboard/domain"
	"planboard/domain/progress"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func activities(completed, pending int) []domain.Activity {
	r := []domain.Activity{}
	for i := 0; i < completed; i++ {
		r = append(r, domain.Activity{Status: domain.ActivityCompleted})
	}
	for i := 0; i < pending; i++ {
		r = append(r, domain.Activity{Status: domain.ActivityPending})
	}
	return r
}

var _ = Describe("Progress", func() {
	Describe("ActivityWeight", func() {
		It("should only count completed activities", func() {
			for _, s := range domain.ActivityStatuses {
				expected := 0
				if s == domain.ActivityCompleted {
					expected = 1
				}
				Expect(progress.ActivityWeight(&domain.Activity{Status: s})).To(Equal(expected))
			}
		})
	})

	Describe("Percentage", func() {
		It("should round half up", func() {
			Expect(progress.Percentage(1, 8)).To(Equal(13))
			Expect(progress.Percentage(1, 3)).To(Equal(33))
			Expect(progress.Percentage(2, 3)).To(Equal(67))
			Expect(progress.Percentage(1, 2)).To(Equal(50))
			Expect(progress.Percentage(3, 3)).To(Equal(100))
		})
		It("should be 0 without activities", func() {
			Expect(progress.Percentage(0, 0)).To(Equal(0))
		})
	})

	Describe("StageProgress", func() {
		It("should be 0 for an empty stage", func() {
			Expect(progress.StageProgress(nil)).To(Equal(0))
			Expect(progress.StageProgress([]domain.Activity{})).To(Equal(0))
		})

		It("should not decrease while activities complete", func() {
			acts := activities(0, 5)
			last := progress.StageProgress(acts)
			for i := range acts {
				acts[i].Status = domain.ActivityCompleted
				current := progress.StageProgress(acts)
				Expect(current >= last).To(BeTrue())
				last = current
			}
			Expect(last).To(Equal(100))

			for i := range acts {
				acts[i].Status = domain.ActivityReview
				current := progress.StageProgress(acts)
				Expect(current <= last).To(BeTrue())
				last = current
			}
			Expect(last).To(Equal(0))
		})
	})

	Describe("ProjectProgress", func() {
		It("should be 0 when the project has no activities", func() {
			Expect(progress.ProjectProgress(map[types.ID][]domain.Activity{})).To(Equal(0))
			Expect(progress.ProjectProgress(map[types.ID][]domain.Activity{1: {}, 2: nil})).To(Equal(0))
		})

		It("should weight stages by their activity count", func() {
			byStage := map[types.ID][]domain.Activity{1: activities(1, 0), 2: activities(0, 3)}
			naive := (progress.StageProgress(byStage[1]) + progress.StageProgress(byStage[2])) / 2
			Expect(naive).To(Equal(50))
			Expect(progress.ProjectProgress(byStage)).To(Equal(25))
		})

		It("should round once instead of per stage", func() {
			byStage := map[types.ID][]domain.Activity{1: activities(0, 1), 2: activities(1, 5)}
			perStage := progress.StageProgress(byStage[1])*1 + progress.StageProgress(byStage[2])*6
			Expect(progress.Percentage(perStage, 100*7)).To(Equal(15))
			Expect(progress.ProjectProgress(byStage)).To(Equal(14))
		})
	})

	Describe("Rollup", func() {
		var (
			project *domain.Project
			stages  []domain.Stage
			byStage map[types.ID][]domain.Activity
			t1, t2  types.Timestamp
		)

		BeforeEach(func() {
			t1 = types.TimestampOfDate(2021, 1, 1, 0, 0, 0, 0, time.UTC)
			t2 = types.TimestampOfDate(2021, 2, 1, 0, 0, 0, 0, time.UTC)
			project = &domain.Project{ID: 1, Status: domain.ProjectActive}
			stages = []domain.Stage{{ID: 10, Position: 1}, {ID: 20, Position: 2}}
			byStage = map[types.ID][]domain.Activity{
				10: {{Status: domain.ActivityPending}, {Status: domain.ActivityPending}},
				20: {{Status: domain.ActivityCompleted, ExecutedStartDate: t1, ExecutedEndDate: t2}},
			}
		})

		It("should compute stage and project values", func() {
			progress.Rollup(project, stages, byStage)
			Expect(stages[0].Progress).To(Equal(0))
			Expect(stages[0].ActivitiesCount).To(Equal(2))
			Expect(stages[1].Progress).To(Equal(100))
			Expect(stages[1].CompletedCount).To(Equal(1))
			Expect(project.ProgressPercentage).To(Equal(33))
			Expect(project.ActivitiesCount).To(Equal(3))
			Expect(project.RealStartDate).To(Equal(t1))
			Expect(project.RealEndDate.IsZero()).To(BeTrue())
			Expect(project.Status).To(Equal(domain.ProjectActive))

			byStage[10][0].Status = domain.ActivityCompleted
			progress.Rollup(project, stages, byStage)
			Expect(stages[0].Progress).To(Equal(50))
			Expect(project.ProgressPercentage).To(Equal(67))
		})

		It("should complete the project with its last activity and reopen it afterwards", func() {
			byStage[10][0].Status = domain.ActivityCompleted
			byStage[10][1].Status = domain.ActivityCompleted
			progress.Rollup(project, stages, byStage)
			Expect(project.ProgressPercentage).To(Equal(100))
			Expect(project.Status).To(Equal(domain.ProjectCompleted))
			Expect(project.RealEndDate).To(Equal(t2))

			byStage[10][1].Status = domain.ActivityReview
			progress.Rollup(project, stages, byStage)
			Expect(project.Status).To(Equal(domain.ProjectActive))
			Expect(project.RealEndDate.IsZero()).To(BeTrue())
		})

		It("should keep manual statuses", func() {
			project.Status = domain.ProjectOnHold
			byStage[10] = nil
			progress.Rollup(project, stages, byStage)
			Expect(project.Status).To(Equal(domain.ProjectOnHold))
			Expect(project.ProgressPercentage).To(Equal(100))
		})
	})

	Describe("BuildTimeline", func() {
		It("should order stages and cover activity spans", func() {
			t1 := types.TimestampOfDate(2021, 1, 1, 0, 0, 0, 0, time.UTC)
			t2 := types.TimestampOfDate(2021, 1, 5, 0, 0, 0, 0, time.UTC)
			t3 := types.TimestampOfDate(2021, 1, 9, 0, 0, 0, 0, time.UTC)
			detail := &domain.ProjectDetail{
				Project: domain.Project{ID: 1},
				Stages: []domain.StageDetail{
					{Stage: domain.Stage{ID: 2, Position: 2}},
					{Stage: domain.Stage{ID: 1, Position: 1}, Activities: []domain.Activity{
						{StartDate: t2, EndDate: t3}, {StartDate: t1, EndDate: t2, ExecutedStartDate: t2},
					}},
				},
			}
			timeline := progress.BuildTimeline(detail)
			Expect(len(timeline.Stages)).To(Equal(2))
			Expect(timeline.Stages[0].StageID).To(Equal(types.ID(1)))
			Expect(timeline.Stages[0].Planned).To(Equal(progress.Span{Start: t1, End: t3}))
			Expect(timeline.Stages[0].Executed).To(Equal(progress.Span{Start: t2}))
			Expect(timeline.Stages[1].Planned).To(Equal(progress.Span{}))
		})
	})
})
