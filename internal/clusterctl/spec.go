package clusterctl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/perola/clusterd/internal/model"
)

// ClusterFile is the YAML definition accepted by "clusterctl create -f".
type ClusterFile struct {
	Name string  `yaml:"name"`
	Spec SpecDef `yaml:"spec"`
}

type SpecDef struct {
	Platform   PlatformDef    `yaml:"platform"`
	Release    *ReleaseDef    `yaml:"release"`
	Networking *NetworkingDef `yaml:"networking"`
	DNS        *DNSDef        `yaml:"dns"`
}

type PlatformDef struct {
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config"`
}

type ReleaseDef struct {
	Channel string `yaml:"channel"`
	Version string `yaml:"version"`
	Image   string `yaml:"image"`
}

type NetworkingDef struct {
	MachineCIDR string `yaml:"machine_cidr"`
	ServiceCIDR string `yaml:"service_cidr"`
	PodCIDR     string `yaml:"pod_cidr"`
}

type DNSDef struct {
	BaseDomain string `yaml:"base_domain"`
}

// LoadClusterFile reads and validates a YAML cluster definition.
func LoadClusterFile(path string) (*ClusterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cluster file: %w", err)
	}

	var f ClusterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse cluster file: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("cluster file missing name")
	}
	if f.Spec.Platform.Type == "" {
		return nil, fmt.Errorf("cluster file missing spec.platform.type")
	}
	return &f, nil
}

// Spec converts the YAML definition into the API's spec shape.
func (d SpecDef) Spec() model.ClusterSpec {
	spec := model.ClusterSpec{
		Platform: model.PlatformSpec{Type: d.Platform.Type, Config: d.Platform.Config},
	}
	if d.Release != nil {
		spec.Release = &model.ReleaseSpec{
			Channel: d.Release.Channel,
			Version: d.Release.Version,
			Image:   d.Release.Image,
		}
	}
	if d.Networking != nil {
		spec.Networking = &model.NetworkingSpec{
			MachineCIDR: d.Networking.MachineCIDR,
			ServiceCIDR: d.Networking.ServiceCIDR,
			PodCIDR:     d.Networking.PodCIDR,
		}
	}
	if d.DNS != nil {
		spec.DNS = &model.DNSSpec{BaseDomain: d.DNS.BaseDomain}
	}
	return spec
}
