// Package status computes a cluster's aggregate phase from the latest
// per-controller reports. Aggregation is a pure function over a report
// snapshot: identical snapshots always yield identical results regardless of
// the order reports arrived in.
package status

import (
	"fmt"

	"github.com/perola/clusterd/internal/model"
)

// Outcome is the aggregate derived from one report snapshot.
type Outcome struct {
	Phase              string
	Message            string
	Reconciled         int
	Available          int
	Total              int
	FailedController   string
	ObservedGeneration int64
}

// Aggregate evaluates the phase rules in precedence order:
//
//  1. no reports: Pending
//  2. a current-generation report carries an error: Failed, with the
//     lexically smallest controller name picking the surfaced error
//  3. any report lags the generation: Progressing (stale reports count as
//     not yet reconciled, never as failures)
//  4. every report is current and Available (or Ready) is True: Ready
//  5. otherwise: Progressing
//
// The returned observed generation is the minimum across reports, capped at
// the cluster generation, and 0 when no reports exist.
func Aggregate(generation int64, reports []model.ControllerReport) Outcome {
	out := Outcome{Total: len(reports)}

	if len(reports) == 0 {
		out.Phase = model.PhasePending
		out.Message = "awaiting controller reconciliation"
		return out
	}

	out.ObservedGeneration = generation
	var failed *model.ControllerReport
	for i := range reports {
		r := &reports[i]

		og := r.ObservedGeneration
		if og > generation {
			og = generation
		}
		if og < out.ObservedGeneration {
			out.ObservedGeneration = og
		}

		if r.ObservedGeneration >= generation {
			out.Reconciled++
			if r.Conditions.IsTrue(model.ConditionAvailable) || r.Conditions.IsTrue(model.ConditionReady) {
				out.Available++
			}
			if r.LastError != nil && (failed == nil || r.ControllerName < failed.ControllerName) {
				failed = r
			}
		}
	}

	if failed != nil {
		out.Phase = model.PhaseFailed
		out.FailedController = failed.ControllerName
		out.Message = fmt.Sprintf("controller %s: %s", failed.ControllerName, failed.LastError.Message)
		return out
	}

	if out.Reconciled < out.Total {
		out.Phase = model.PhaseProgressing
		out.Message = fmt.Sprintf("%d of %d controllers reconciled", out.Reconciled, out.Total)
		return out
	}

	if out.Available == out.Total {
		out.Phase = model.PhaseReady
		out.Message = "all controllers reconciled"
		return out
	}

	out.Phase = model.PhaseProgressing
	out.Message = fmt.Sprintf("%d of %d controllers available", out.Available, out.Total)
	return out
}
