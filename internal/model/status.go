package model

// Cluster lifecycle phases.
const (
	PhasePending     = "Pending"
	PhaseProgressing = "Progressing"
	PhaseReady       = "Ready"
	PhaseFailed      = "Failed"
	PhaseTerminating = "Terminating"
)

// ClusterStatus is the aggregated view derived from controller reports. It is
// never written by API clients.
type ClusterStatus struct {
	Phase              string     `json:"phase"`
	Message            string     `json:"message,omitempty"`
	Conditions         Conditions `json:"conditions,omitempty"`
	ObservedGeneration int64      `json:"observed_generation"`
}
