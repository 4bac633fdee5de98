package ports

import (
	"context"

	"vtds-application-vshasta/internal/core/domain"
)

// ClusterClient is the application layer's view of the vTDS cluster layer:
// virtual nodes and virtual networks. All data is served by the cluster
// layer's HTTP API.
type ClusterClient interface {
	// Virtual nodes
	NodeClasses(ctx context.Context) ([]string, error)
	NodeCount(ctx context.Context, nodeClass string) (int, error)
	NodeHostBladeInfo(ctx context.Context, nodeClass string) (*domain.HostBladeInfo, error)
	// NodeApplicationMetadata returns the application metadata of a node
	// class; the 'node_role' key carries the role:subrole string.
	NodeApplicationMetadata(ctx context.Context, nodeClass string) (map[string]string, error)
	NodeNetworkNames(ctx context.Context, nodeClass string) ([]string, error)
	NodeHostname(ctx context.Context, nodeClass string, instance int, network string) (string, error)
	// NodeIPv4Addr returns the empty string when the instance has no
	// address on the network.
	NodeIPv4Addr(ctx context.Context, nodeClass string, instance int, network string) (string, error)
	NodeName(ctx context.Context, nodeClass string, instance int) (string, error)
	SetNodeName(ctx context.Context, nodeClass string, instance int, name string) error
	NodeEndpoints(ctx context.Context, nodeClass string) ([]domain.Endpoint, error)

	// Virtual networks
	NetworkNames(ctx context.Context) ([]string, error)
	NetworkApplicationMetadata(ctx context.Context, network string) (map[string]string, error)
	NetworkIPv4CIDR(ctx context.Context, network string) (string, error)
}
