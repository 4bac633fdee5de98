package domain

import "strings"

// HostBladeInfo describes how a node class is hosted on blades: the blade
// class hosting it and how many instances each blade carries.
type HostBladeInfo struct {
	BladeClass       string
	InstanceCapacity int
}

// NodeRole is the parsed 'role:subrole' application metadata of a node
// class. Node classes with no role are not part of the vShasta system and
// are skipped by topology and deployment (a virtual data center may host
// nodes beyond the vShasta cluster itself).
type NodeRole struct {
	Role    string
	Subrole string
}

const RoleManagement = "management"

// ParseNodeRole splits a 'role:subrole' metadata string. The subrole part
// is optional.
func ParseNodeRole(s string) NodeRole {
	role, subrole, _ := strings.Cut(s, ":")
	return NodeRole{Role: role, Subrole: subrole}
}

// SiteServer is a DNS or NTP server in the provider's site configuration.
type SiteServer struct {
	Hostname string
	Address  string
}

// SiteConfig is the provider-supplied site level configuration consumed by
// the system_config seed data.
type SiteConfig struct {
	SystemName string
	DNSServers []SiteServer
	NTPServers []SiteServer
}

// Endpoint is a reachable SSH target for one blade or node instance.
type Endpoint struct {
	Host     string
	Port     int
	Class    string
	Instance int
}

type DeployTarget string

const (
	TargetNode  DeployTarget = "node"
	TargetBlade DeployTarget = "blade"
)

// ManifestFile pairs a local staging path with its destination on a target.
type ManifestFile struct {
	Source string
	Dest   string
	Tag    string
}

// Manifest describes what deploy pushes to one kind of target and the
// command run there afterwards. The command receives the target's class
// name as its final argument.
type Manifest struct {
	Target     DeployTarget
	ClassNames []string
	Files      []ManifestFile
	Command    string
}

// CSMNodeStatus reports the readiness of one Kubernetes node of a deployed
// CSM system.
type CSMNodeStatus struct {
	Name           string `json:"name"`
	Ready          bool   `json:"ready"`
	KubeletVersion string `json:"kubelet_version"`
}
