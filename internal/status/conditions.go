package status

import (
	"time"

	"github.com/perola/clusterd/internal/model"
)

// Condition reasons surfaced on the cluster-level Available and Ready
// conditions.
const (
	ReasonAllReconciled       = "AllControllersReconciled"
	ReasonAwaitingControllers = "AwaitingControllers"
	ReasonReconciling         = "ControllersReconciling"
	ReasonControllerError     = "ControllerError"
	ReasonTerminating         = "Terminating"
)

// BuildConditions derives the cluster-level Available and Ready conditions
// from an aggregation outcome. Previous conditions are carried through
// model.Conditions.Set, so a condition's transition time only moves when its
// status actually flips. The clock is supplied by the caller; phase
// computation itself never reads one.
func BuildConditions(out Outcome, previous model.Conditions, now time.Time) model.Conditions {
	conds := append(model.Conditions(nil), previous...)

	condStatus := model.ConditionFalse
	if out.Phase == model.PhaseReady {
		condStatus = model.ConditionTrue
	}

	reason := reasonForPhase(out.Phase)
	conds.Set(model.Condition{
		Type:    model.ConditionAvailable,
		Status:  condStatus,
		Reason:  reason,
		Message: out.Message,
	}, now)
	conds.Set(model.Condition{
		Type:    model.ConditionReady,
		Status:  condStatus,
		Reason:  reason,
		Message: out.Message,
	}, now)

	return conds
}

func reasonForPhase(phase string) string {
	switch phase {
	case model.PhaseReady:
		return ReasonAllReconciled
	case model.PhasePending:
		return ReasonAwaitingControllers
	case model.PhaseFailed:
		return ReasonControllerError
	case model.PhaseTerminating:
		return ReasonTerminating
	default:
		return ReasonReconciling
	}
}
