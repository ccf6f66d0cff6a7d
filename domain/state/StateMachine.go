package state

import (
	"planboard/domain"

	"github.com/fundwit/go-commons/types"
)

// stateless object, just used for state computing
type StateMachine struct {
	States      []domain.ActivityStatus `json:"states"`
	Transitions []Transition            `json:"transitions"`
}

type Transition struct {
	Name string                `json:"name"`
	From domain.ActivityStatus `json:"from"`
	To   domain.ActivityStatus `json:"to"`
}

func NewStateMachine(states []domain.ActivityStatus, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

//            pending   in_progress   review       completed
// pending       -       V (start)      X             X
// in_progress V (stop)     -          V (submit)     X
// review        X       V (reject)     -            V (approve)
// completed     X          X          V (rework)     -
var ActivityStateMachine = NewStateMachine(
	domain.ActivityStatuses,
	[]Transition{
		{Name: "start", From: domain.ActivityPending, To: domain.ActivityInProgress},
		{Name: "submit", From: domain.ActivityInProgress, To: domain.ActivityReview},
		{Name: "approve", From: domain.ActivityReview, To: domain.ActivityCompleted},
		{Name: "stop", From: domain.ActivityInProgress, To: domain.ActivityPending},
		{Name: "reject", From: domain.ActivityReview, To: domain.ActivityInProgress},
		{Name: "rework", From: domain.ActivityCompleted, To: domain.ActivityReview},
	})

// AvailableTransitions filters the transition table, an empty state matches any state.
func (sm *StateMachine) AvailableTransitions(from, to domain.ActivityStatus) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (from == "" || from == transition.From) && (to == "" || to == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

func (sm *StateMachine) HasState(s domain.ActivityStatus) bool {
	for _, v := range sm.States {
		if v == s {
			return true
		}
	}
	return false
}

// Allowed reports whether exactly one transition leads from one known state to another.
func (sm *StateMachine) Allowed(from, to domain.ActivityStatus) bool {
	if from == "" || to == "" || !sm.HasState(from) || !sm.HasState(to) {
		return false
	}
	return len(sm.AvailableTransitions(from, to)) == 1
}

// Transit moves the activity to the target status and stamps its executed dates.
// The executed start is stamped on the first entry into in_progress or a later status,
// the executed end on the first entry into completed. Neither is cleared by backward moves.
func (sm *StateMachine) Transit(a *domain.Activity, to domain.ActivityStatus, now types.Timestamp) error {
	if !sm.Allowed(a.Status, to) {
		return &domain.InvalidTransitionError{From: a.Status, To: to}
	}
	a.Status = to
	Stamp(a, now)
	return nil
}

// Stamp fills in the executed dates implied by the current status when they are unset.
func Stamp(a *domain.Activity, now types.Timestamp) {
	if a.ExecutedStartDate.IsZero() && a.Status.Rank() >= domain.ActivityInProgress.Rank() {
		a.ExecutedStartDate = now
	}
	if a.ExecutedEndDate.IsZero() && a.Status == domain.ActivityCompleted {
		a.ExecutedEndDate = now
	}
}
