// Package events provides the in-process cluster event stream. Mutating
// operations publish after commit; delivery is best effort and never blocks
// or fails the operation that produced the event.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeClusterCreated = "cluster.created"
	TypeClusterUpdated = "cluster.updated"
	TypeClusterDeleted = "cluster.deleted"
	TypeStatusChanged  = "cluster.status_changed"
	TypeReconcile      = "cluster.reconcile"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ClusterID  string    `json:"cluster_id"`
	Generation int64     `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// New builds an event with a fresh ID and timestamp.
func New(evtType, clusterID string, generation int64, source string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       evtType,
		ClusterID:  clusterID,
		Generation: generation,
		Timestamp:  time.Now().UTC(),
		Source:     source,
	}
}
