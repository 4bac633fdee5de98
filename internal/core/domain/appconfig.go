package domain

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// AppConfig is the digested application layer configuration that drives all
// lifecycle activity. It is read from YAML at startup, enriched during
// consolidation and written back out to the build directory by prepare so the
// node setup command can consume it on the deployment targets.
type AppConfig struct {
	Geometry       Geometry          `yaml:"geometry"`
	BMC            BMCConfig         `yaml:"bmc"`
	CSM            CSMSettings       `yaml:"csm"`
	SeedFiles      SeedFiles         `yaml:"seed_files"`
	DebianPackages []string          `yaml:"debian_packages,omitempty"`
	HostIPv4Map    map[string]string `yaml:"host_ipv4_map,omitempty"`
	XNameMap       map[string]NodeRef `yaml:"xname_map,omitempty"`
}

type Geometry struct {
	Cabinets CabinetGeometry `yaml:"cabinets"`
}

type CabinetGeometry struct {
	River RiverGeometry `yaml:"river"`
}

// RiverGeometry describes the river cabinets of the modeled system. The
// BladeClasses map is keyed by cabinet number, then chassis number, and lists
// the blade classes packed in slot order into that chassis.
type RiverGeometry struct {
	Count        int                      `yaml:"count"`
	StartingID   int                      `yaml:"starting_id"`
	BladeClasses map[int]map[int][]string `yaml:"blade_classes"`
}

type BMCConfig struct {
	User     string `yaml:"bmc_user"`
	Password string `yaml:"bmc_passwd"`
}

type CSMSettings struct {
	Version string `yaml:"version"`
}

// SeedFiles carries the configured and computed contents of the CSI seed
// files that prepare writes to the build directory.
type SeedFiles struct {
	SystemConfig          map[string]any   `yaml:"system_config"`
	Cabinets              map[string]any   `yaml:"cabinets,omitempty"`
	ApplicationNodeConfig map[string]any   `yaml:"application_node_config,omitempty"`
	HMNConnections        []map[string]any `yaml:"hmn_connections,omitempty"`
	NCNMetadata           []string         `yaml:"ncn_metadata,omitempty"`
	SwitchMetadata        []string         `yaml:"switch_metadata,omitempty"`
}

// LoadAppConfig reads and parses the application layer configuration.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read application configuration '%s': %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse application configuration '%s': %w", path, err)
	}

	return &cfg, nil
}

// WriteTo dumps the configuration as YAML, used by prepare to stage the
// config for deployment to the targets.
func (c *AppConfig) WriteTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal application configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write application configuration '%s': %w", path, err)
	}
	return nil
}

// Clone returns a copy of the configuration that is safe to mutate while
// the original is still being read. Everything consolidation touches is
// copied: the system_config seed map, the host and xname maps, and the
// other top level maps and slices.
func (c *AppConfig) Clone() *AppConfig {
	clone := *c
	clone.SeedFiles.SystemConfig = maps.Clone(c.SeedFiles.SystemConfig)
	clone.SeedFiles.Cabinets = maps.Clone(c.SeedFiles.Cabinets)
	clone.SeedFiles.ApplicationNodeConfig = maps.Clone(c.SeedFiles.ApplicationNodeConfig)
	clone.SeedFiles.HMNConnections = slices.Clone(c.SeedFiles.HMNConnections)
	clone.SeedFiles.NCNMetadata = slices.Clone(c.SeedFiles.NCNMetadata)
	clone.SeedFiles.SwitchMetadata = slices.Clone(c.SeedFiles.SwitchMetadata)
	clone.DebianPackages = slices.Clone(c.DebianPackages)
	clone.HostIPv4Map = maps.Clone(c.HostIPv4Map)
	clone.XNameMap = maps.Clone(c.XNameMap)
	return &clone
}

// RiverBladeClasses returns the cabinet geometry blade class layout or an
// error when the configuration never set one up.
func (c *AppConfig) RiverBladeClasses() (map[int]map[int][]string, error) {
	classes := c.Geometry.Cabinets.River.BladeClasses
	if len(classes) == 0 {
		return nil, ErrMissingGeometry
	}
	return classes, nil
}
