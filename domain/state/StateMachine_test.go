package state_test

import (
	"planboard/domain"
	"planboard/domain/state"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	allowed := map[domain.ActivityStatus]map[domain.ActivityStatus]bool{
		domain.ActivityPending:    {domain.ActivityInProgress: true},
		domain.ActivityInProgress: {domain.ActivityReview: true, domain.ActivityPending: true},
		domain.ActivityReview:     {domain.ActivityCompleted: true, domain.ActivityInProgress: true},
		domain.ActivityCompleted:  {domain.ActivityReview: true},
	}

	Describe("ActivityStateMachine", func() {
		It("should hold exactly six transitions", func() {
			Expect(len(state.ActivityStateMachine.Transitions)).To(Equal(6))
		})

		for _, from := range domain.ActivityStatuses {
			for _, to := range domain.ActivityStatuses {
				from, to := from, to
				expected := allowed[from][to]
				It("should decide "+string(from)+" -> "+string(to), func() {
					Expect(state.ActivityStateMachine.Allowed(from, to)).To(Equal(expected))

					a := &domain.Activity{Title: "a", Status: from, Priority: domain.PriorityLow}
					err := state.ActivityStateMachine.Transit(a, to, types.CurrentTimestamp())
					if expected {
						Expect(err).To(BeNil())
						Expect(a.Status).To(Equal(to))
					} else {
						Expect(err).To(Equal(&domain.InvalidTransitionError{From: from, To: to}))
						Expect(a.Status).To(Equal(from))
					}
				})
			}
		}

		It("should reject unknown states", func() {
			Expect(state.ActivityStateMachine.Allowed("unknown", domain.ActivityPending)).To(BeFalse())
			Expect(state.ActivityStateMachine.Allowed(domain.ActivityPending, "")).To(BeFalse())
		})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by from and to", func() {
			Ω(state.ActivityStateMachine.AvailableTransitions(domain.ActivityInProgress, "")).Should(Equal([]state.Transition{
				{Name: "submit", From: domain.ActivityInProgress, To: domain.ActivityReview},
				{Name: "stop", From: domain.ActivityInProgress, To: domain.ActivityPending},
			}))
			Ω(state.ActivityStateMachine.AvailableTransitions("", domain.ActivityReview)).Should(Equal([]state.Transition{
				{Name: "submit", From: domain.ActivityInProgress, To: domain.ActivityReview},
				{Name: "rework", From: domain.ActivityCompleted, To: domain.ActivityReview},
			}))
			Ω(len(state.ActivityStateMachine.AvailableTransitions(domain.ActivityPending, domain.ActivityCompleted))).Should(Equal(0))
		})
	})

	Describe("Transit", func() {
		var (
			activity *domain.Activity
			t1, t2   types.Timestamp
		)

		BeforeEach(func() {
			activity = &domain.Activity{Title: "a", Status: domain.ActivityPending, Priority: domain.PriorityLow}
			t1 = types.TimestampOfDate(2021, 1, 1, 8, 0, 0, 0, time.UTC)
			t2 = types.TimestampOfDate(2021, 1, 2, 8, 0, 0, 0, time.UTC)
		})

		It("should stamp executed start only once", func() {
			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityInProgress, t1)).To(BeNil())
			Expect(activity.ExecutedStartDate).To(Equal(t1))

			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityPending, t2)).To(BeNil())
			Expect(activity.ExecutedStartDate).To(Equal(t1))
			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityInProgress, t2)).To(BeNil())
			Expect(activity.ExecutedStartDate).To(Equal(t1))
			Expect(activity.ExecutedEndDate.IsZero()).To(BeTrue())
		})

		It("should stamp executed end on completion and keep it on rework", func() {
			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityInProgress, t1)).To(BeNil())
			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityReview, t1)).To(BeNil())
			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityCompleted, t1)).To(BeNil())
			Expect(activity.ExecutedEndDate).To(Equal(t1))

			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityReview, t2)).To(BeNil())
			Expect(activity.ExecutedEndDate).To(Equal(t1))
			Expect(state.ActivityStateMachine.Transit(activity, domain.ActivityCompleted, t2)).To(BeNil())
			Expect(activity.ExecutedEndDate).To(Equal(t1))
		})

		It("should not skip forward steps", func() {
			err := state.ActivityStateMachine.Transit(activity, domain.ActivityCompleted, t1)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("transition from 'pending' to 'completed' is not allowed"))
			Expect(activity.ExecutedStartDate.IsZero()).To(BeTrue())
		})
	})

	Describe("Stamp", func() {
		It("should stamp both dates for an activity created as completed", func() {
			now := types.TimestampOfDate(2021, 3, 1, 0, 0, 0, 0, time.UTC)
			a := &domain.Activity{Status: domain.ActivityCompleted}
			state.Stamp(a, now)
			Expect(a.ExecutedStartDate).To(Equal(now))
			Expect(a.ExecutedEndDate).To(Equal(now))

			p := &domain.Activity{Status: domain.ActivityPending}
			state.Stamp(p, now)
			Expect(p.ExecutedStartDate.IsZero()).To(BeTrue())
		})
	})
})
