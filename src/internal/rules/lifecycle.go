package rules

import "github.com/ce-fello/festival-teams-service/src/internal/model"

type Transition string

const (
	TransitionSubmit   Transition = "submit"
	TransitionApprove  Transition = "approve"
	TransitionReject   Transition = "reject"
	TransitionComplete Transition = "complete"
)

var transitionEdges = map[Transition]struct{ from, to model.Status }{
	TransitionSubmit:   {model.StatusDraft, model.StatusSubmitted},
	TransitionApprove:  {model.StatusSubmitted, model.StatusApproved},
	TransitionReject:   {model.StatusSubmitted, model.StatusRejected},
	TransitionComplete: {model.StatusApproved, model.StatusCompleted},
}

// Source returns the only status tr may start from.
func (tr Transition) Source() model.Status { return transitionEdges[tr].from }

// Target returns the status a team lands in after tr.
func (tr Transition) Target() model.Status { return transitionEdges[tr].to }

func (tr Transition) Valid() bool {
	_, ok := transitionEdges[tr]
	return ok
}

// CanTransition reports whether the workflow allows moving from -> to.
// Nothing leads back to draft.
func CanTransition(from, to model.Status) bool {
	for _, e := range transitionEdges {
		if e.from == from && e.to == to {
			return true
		}
	}
	return false
}

// Allowed checks the role and status guard of tr against p. Completion and
// validation gates are checked separately by the caller.
func Allowed(tr Transition, p Permissions) bool {
	switch tr {
	case TransitionSubmit:
		return p.CanSubmit
	case TransitionApprove:
		return p.CanApprove
	case TransitionReject:
		return p.CanReject
	case TransitionComplete:
		return p.CanComplete
	}
	return false
}

// PerformanceOrderAllowed reports whether a running order may be set.
func PerformanceOrderAllowed(s model.Status) bool {
	return s == model.StatusApproved || s == model.StatusCompleted
}

// Scorable reports whether judges' scoring may be recorded. Scores belong
// to teams that went through review and are still in the show.
func Scorable(s model.Status) bool {
	return s == model.StatusSubmitted || s == model.StatusApproved || s == model.StatusCompleted
}
