package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

// TopologyService derives the physical-looking topology of the modeled
// Shasta system from the cluster and provider layers: which blade classes
// host which node classes, the XNAME of every blade and node, and the
// cluster wide host address map.
type TopologyService struct {
	cluster  ports.ClusterClient
	provider ports.ProviderClient

	mu            sync.Mutex
	hostedNodeMap map[string][]string
	netsByRole    map[string]string
}

func NewTopologyService(cluster ports.ClusterClient, provider ports.ProviderClient) *TopologyService {
	return &TopologyService{cluster: cluster, provider: provider}
}

// Invalidate drops cached cluster data. Operations that change cluster
// state (such as node name assignment) call this before returning so later
// lookups see the updated configuration.
func (s *TopologyService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostedNodeMap = nil
	s.netsByRole = nil
}

func (s *TopologyService) nodeRole(ctx context.Context, nodeClass string) (string, error) {
	meta, err := s.cluster.NodeApplicationMetadata(ctx, nodeClass)
	if err != nil {
		return "", err
	}
	return meta["node_role"], nil
}

// HostedNodeMap maps each blade class to the node classes it hosts.
func (s *TopologyService) HostedNodeMap(ctx context.Context) (map[string][]string, error) {
	s.mu.Lock()
	cached := s.hostedNodeMap
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	nodeClasses, err := s.cluster.NodeClasses(ctx)
	if err != nil {
		return nil, err
	}

	hosted := map[string][]string{}
	for _, nodeClass := range nodeClasses {
		info, err := s.cluster.NodeHostBladeInfo(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		hosted[info.BladeClass] = append(hosted[info.BladeClass], nodeClass)
	}
	for _, classes := range hosted {
		sort.Strings(classes)
	}

	s.mu.Lock()
	s.hostedNodeMap = hosted
	s.mu.Unlock()
	return hosted, nil
}

// hostedNodes returns, for one instance of a blade class, the node
// instances of each hosted node class. Node classes with no role in the
// application metadata are left out; they are not part of the vShasta
// system.
func (s *TopologyService) hostedNodes(ctx context.Context, bladeClass string, bladeInstance int) (map[string][]int, error) {
	hosted, err := s.HostedNodeMap(ctx)
	if err != nil {
		return nil, err
	}

	result := map[string][]int{}
	for _, nodeClass := range hosted[bladeClass] {
		role, err := s.nodeRole(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		if role == "" {
			continue
		}
		info, err := s.cluster.NodeHostBladeInfo(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		instances := make([]int, 0, info.InstanceCapacity)
		for i := bladeInstance * info.InstanceCapacity; i < (bladeInstance+1)*info.InstanceCapacity; i++ {
			instances = append(instances, i)
		}
		result[nodeClass] = instances
	}
	return result, nil
}

// firstBladeSlot computes the slot number of the first instance of a blade
// class assuming all blades are packed in-order by class into numbered
// slots.
func (s *TopologyService) firstBladeSlot(ctx context.Context, bladeClassList []string, bladeClass string) (int, error) {
	slot := 0
	for _, item := range bladeClassList {
		if item == bladeClass {
			return slot, nil
		}
		count, err := s.provider.BladeCount(ctx, item)
		if err != nil {
			return 0, err
		}
		slot += count
	}
	return 0, fmt.Errorf("%w: '%s' in %v", domain.ErrBladeClassNotFound, bladeClass, bladeClassList)
}

// BladeXNames maps every blade instance to its XNAME based on the river
// cabinet geometry.
func (s *TopologyService) BladeXNames(ctx context.Context, cfg *domain.AppConfig) (map[domain.BladeRef]string, error) {
	cabinets, err := cfg.RiverBladeClasses()
	if err != nil {
		return nil, err
	}

	xnames := map[domain.BladeRef]string{}
	for cabinet, chassisList := range cabinets {
		for chassis, bladeClasses := range chassisList {
			for _, bladeClass := range bladeClasses {
				first, err := s.firstBladeSlot(ctx, bladeClasses, bladeClass)
				if err != nil {
					return nil, err
				}
				count, err := s.provider.BladeCount(ctx, bladeClass)
				if err != nil {
					return nil, err
				}
				for instance := 0; instance < count; instance++ {
					ref := domain.BladeRef{Class: bladeClass, Instance: instance}
					xnames[ref] = domain.BladeXName(cabinet, chassis, first+instance)
				}
			}
		}
	}
	return xnames, nil
}

// AssignNodeXNames determines node XNAMEs from the blade XNAMEs and pushes
// them into the cluster layer as node names, so the cluster can address
// nodes by XNAME for things like Redfish. The node index on a blade runs
// across all hosted node classes in sorted class order.
func (s *TopologyService) AssignNodeXNames(ctx context.Context, cfg *domain.AppConfig) (map[domain.NodeRef]string, error) {
	bladeXNames, err := s.BladeXNames(ctx, cfg)
	if err != nil {
		return nil, err
	}

	nodeXNames := map[domain.NodeRef]string{}
	for bladeRef, bladeXName := range bladeXNames {
		hosted, err := s.hostedNodes(ctx, bladeRef.Class, bladeRef.Instance)
		if err != nil {
			return nil, err
		}
		nodeClasses := make([]string, 0, len(hosted))
		for nodeClass := range hosted {
			nodeClasses = append(nodeClasses, nodeClass)
		}
		sort.Strings(nodeClasses)

		index := 0
		for _, nodeClass := range nodeClasses {
			for _, instance := range hosted[nodeClass] {
				ref := domain.NodeRef{Class: nodeClass, Instance: instance}
				nodeXNames[ref] = domain.NodeXName(bladeXName, index)
				index++
			}
		}
	}

	for ref, xname := range nodeXNames {
		if err := s.cluster.SetNodeName(ctx, ref.Class, ref.Instance, xname); err != nil {
			return nil, err
		}
	}
	// Node names changed under us, refresh on next lookup.
	s.Invalidate()
	return nodeXNames, nil
}

// HostIPv4Map computes the hostname to IPv4 address map covering every
// host on every network a node class is attached to. Hosts with no
// address on a network are omitted.
func (s *TopologyService) HostIPv4Map(ctx context.Context) (map[string]string, error) {
	nodeClasses, err := s.cluster.NodeClasses(ctx)
	if err != nil {
		return nil, err
	}

	hosts := map[string]string{}
	for _, nodeClass := range nodeClasses {
		networks, err := s.cluster.NodeNetworkNames(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		count, err := s.cluster.NodeCount(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		for _, network := range networks {
			for instance := 0; instance < count; instance++ {
				addr, err := s.cluster.NodeIPv4Addr(ctx, nodeClass, instance, network)
				if err != nil {
					return nil, err
				}
				if addr == "" {
					continue
				}
				hostname, err := s.cluster.NodeHostname(ctx, nodeClass, instance, network)
				if err != nil {
					return nil, err
				}
				hosts[hostname] = addr
			}
		}
	}
	return hosts, nil
}

// XNameMap maps node names (XNAMEs once AssignNodeXNames has run) back to
// node class and instance.
func (s *TopologyService) XNameMap(ctx context.Context) (map[string]domain.NodeRef, error) {
	nodeClasses, err := s.cluster.NodeClasses(ctx)
	if err != nil {
		return nil, err
	}

	xnames := map[string]domain.NodeRef{}
	for _, nodeClass := range nodeClasses {
		count, err := s.cluster.NodeCount(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		for instance := 0; instance < count; instance++ {
			name, err := s.cluster.NodeName(ctx, nodeClass, instance)
			if err != nil {
				return nil, err
			}
			xnames[name] = domain.NodeRef{Class: nodeClass, Instance: instance}
		}
	}
	return xnames, nil
}

// ManagementHostnames lists the node names of all nodes with a management
// role (master, worker and storage nodes); these are the cluster's NTP
// peers.
func (s *TopologyService) ManagementHostnames(ctx context.Context) ([]string, error) {
	nodeClasses, err := s.cluster.NodeClasses(ctx)
	if err != nil {
		return nil, err
	}

	var hostnames []string
	for _, nodeClass := range nodeClasses {
		role, err := s.nodeRole(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		if domain.ParseNodeRole(role).Role != domain.RoleManagement {
			continue
		}
		count, err := s.cluster.NodeCount(ctx, nodeClass)
		if err != nil {
			return nil, err
		}
		for instance := 0; instance < count; instance++ {
			name, err := s.cluster.NodeName(ctx, nodeClass, instance)
			if err != nil {
				return nil, err
			}
			hostnames = append(hostnames, name)
		}
	}
	sort.Strings(hostnames)
	return hostnames, nil
}

// NetworkByRole resolves a network role (CAN, CMN, HMN, ...) to the name
// of the virtual network carrying it in its application metadata.
func (s *TopologyService) NetworkByRole(ctx context.Context, role string) (string, error) {
	s.mu.Lock()
	cached := s.netsByRole
	s.mu.Unlock()

	if cached == nil {
		names, err := s.cluster.NetworkNames(ctx)
		if err != nil {
			return "", err
		}
		cached = map[string]string{}
		for _, name := range names {
			meta, err := s.cluster.NetworkApplicationMetadata(ctx, name)
			if err != nil {
				return "", err
			}
			if netRole := meta["network_role"]; netRole != "" {
				cached[netRole] = name
			}
		}
		s.mu.Lock()
		s.netsByRole = cached
		s.mu.Unlock()
	}

	name, ok := cached[role]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", domain.ErrNetworkRoleNotFound, role)
	}
	return name, nil
}

// NetworkCIDRByRole retrieves the IPv4 CIDR of the network carrying the
// given role.
func (s *TopologyService) NetworkCIDRByRole(ctx context.Context, role string) (string, error) {
	name, err := s.NetworkByRole(ctx, role)
	if err != nil {
		return "", err
	}
	return s.cluster.NetworkIPv4CIDR(ctx, name)
}
