package model

import (
	"encoding/json"
	"time"
)

// ControllerReport is the latest status pushed by one controller for one
// cluster. Reports are retained even when their observed generation lags the
// cluster; staleness is computed against the cluster's current generation at
// read time and surfaced through the Stale field.
type ControllerReport struct {
	ClusterID          string          `json:"cluster_id" db:"cluster_id"`
	ControllerName     string          `json:"controller_name" db:"controller_name"`
	ObservedGeneration int64           `json:"observed_generation" db:"observed_generation"`
	Conditions         Conditions      `json:"conditions,omitempty" db:"conditions"`
	Metadata           json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	LastError          *ReportError    `json:"last_error,omitempty" db:"last_error"`
	Stale              bool            `json:"stale" db:"-"`
	ReportedAt         time.Time       `json:"reported_at" db:"reported_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// ReportError describes a controller's most recent reconciliation failure.
type ReportError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
