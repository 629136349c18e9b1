package model

import (
	"time"
)

type Cluster struct {
	ID         string        `json:"id" db:"id"`
	Name       string        `json:"name" db:"name"`
	Spec       ClusterSpec   `json:"spec" db:"spec"`
	Generation int64         `json:"generation" db:"generation"`
	Status     ClusterStatus `json:"status" db:"status"`
	CreatedBy  string        `json:"created_by" db:"created_by"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time    `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ClusterSpec is the declarative desired state. Beyond the platform type the
// contents are opaque to status aggregation.
type ClusterSpec struct {
	Platform   PlatformSpec    `json:"platform"`
	Release    *ReleaseSpec    `json:"release,omitempty"`
	Networking *NetworkingSpec `json:"networking,omitempty"`
	DNS        *DNSSpec        `json:"dns,omitempty"`
}

type PlatformSpec struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

type ReleaseSpec struct {
	Channel string `json:"channel,omitempty"`
	Version string `json:"version,omitempty"`
	Image   string `json:"image,omitempty"`
}

type NetworkingSpec struct {
	MachineCIDR string `json:"machine_cidr,omitempty"`
	ServiceCIDR string `json:"service_cidr,omitempty"`
	PodCIDR     string `json:"pod_cidr,omitempty"`
}

type DNSSpec struct {
	BaseDomain string `json:"base_domain,omitempty"`
}
