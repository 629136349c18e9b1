package model

import "time"

// Condition status values.
const (
	ConditionTrue    = "True"
	ConditionFalse   = "False"
	ConditionUnknown = "Unknown"
)

// Well-known condition types.
const (
	ConditionAvailable = "Available"
	ConditionReady     = "Ready"
)

type Condition struct {
	Type               string    `json:"type"`
	Status             string    `json:"status"`
	Reason             string    `json:"reason,omitempty"`
	Message            string    `json:"message,omitempty"`
	LastTransitionTime time.Time `json:"last_transition_time"`
}

type Conditions []Condition

// Get returns the condition with the given type, or nil.
func (c Conditions) Get(condType string) *Condition {
	for i := range c {
		if c[i].Type == condType {
			return &c[i]
		}
	}
	return nil
}

// IsTrue reports whether a condition of the given type exists with status True.
func (c Conditions) IsTrue(condType string) bool {
	cond := c.Get(condType)
	return cond != nil && cond.Status == ConditionTrue
}

// Set upserts a condition by type. The transition time is preserved when the
// status is unchanged, so repeated identical updates do not move it.
func (c *Conditions) Set(cond Condition, now time.Time) {
	cond.LastTransitionTime = now
	for i := range *c {
		if (*c)[i].Type == cond.Type {
			if (*c)[i].Status == cond.Status {
				cond.LastTransitionTime = (*c)[i].LastTransitionTime
			}
			(*c)[i] = cond
			return
		}
	}
	*c = append(*c, cond)
}
