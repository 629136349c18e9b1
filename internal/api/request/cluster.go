package request

import (
	"encoding/json"

	"github.com/perola/clusterd/internal/model"
)

type CreateCluster struct {
	Name string            `json:"name" validate:"required,slug"`
	Spec model.ClusterSpec `json:"spec"`
}

type UpdateClusterSpec struct {
	Spec model.ClusterSpec `json:"spec"`
	// ExpectedGeneration makes the update conditional: it fails with a
	// conflict when another writer got there first.
	ExpectedGeneration *int64 `json:"expected_generation,omitempty" validate:"omitempty,min=1"`
}

type PushReport struct {
	ControllerName     string             `json:"controller_name" validate:"required"`
	ObservedGeneration int64              `json:"observed_generation" validate:"min=0"`
	Conditions         model.Conditions   `json:"conditions"`
	Metadata           json.RawMessage    `json:"metadata,omitempty"`
	LastError          *model.ReportError `json:"last_error,omitempty"`
}

// Report converts the request body into the model the service stores.
func (p PushReport) Report(clusterID string) model.ControllerReport {
	return model.ControllerReport{
		ClusterID:          clusterID,
		ControllerName:     p.ControllerName,
		ObservedGeneration: p.ObservedGeneration,
		Conditions:         p.Conditions,
		Metadata:           p.Metadata,
		LastError:          p.LastError,
	}
}
