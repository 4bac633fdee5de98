package layerhttp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

type clusterClient struct {
	*client
}

// NewClusterClient builds the ClusterClient adapter over the cluster
// layer's HTTP API.
func NewClusterClient(baseURL string, timeout time.Duration) ports.ClusterClient {
	return &clusterClient{client: newClient(baseURL, timeout)}
}

type nodeClassInfo struct {
	Count     int `json:"count"`
	HostBlade struct {
		BladeClass       string `json:"blade_class"`
		InstanceCapacity int    `json:"instance_capacity"`
	} `json:"host_blade"`
	ApplicationMetadata map[string]string `json:"application_metadata"`
	Networks            []string          `json:"networks"`
}

type networkInfo struct {
	IPv4CIDR            string            `json:"ipv4_cidr"`
	ApplicationMetadata map[string]string `json:"application_metadata"`
}

type nodeInstanceInfo struct {
	Name string `json:"name"`
}

type nodeNetworkInfo struct {
	Hostname string `json:"hostname"`
	IPv4Addr string `json:"ipv4_addr"`
}

type endpointList struct {
	Endpoints []struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Instance int    `json:"instance"`
	} `json:"endpoints"`
}

func (c *clusterClient) nodeClass(ctx context.Context, nodeClass string) (*nodeClassInfo, error) {
	var info nodeClassInfo
	path := "/v1/nodes/classes/" + url.PathEscape(nodeClass)
	if err := c.getJSON(ctx, path, &info); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrNodeClassNotFound, nodeClass)
		}
		return nil, err
	}
	return &info, nil
}

func (c *clusterClient) NodeClasses(ctx context.Context) ([]string, error) {
	var out struct {
		Classes []string `json:"classes"`
	}
	if err := c.getJSON(ctx, "/v1/nodes/classes", &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

func (c *clusterClient) NodeCount(ctx context.Context, nodeClass string) (int, error) {
	info, err := c.nodeClass(ctx, nodeClass)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

func (c *clusterClient) NodeHostBladeInfo(ctx context.Context, nodeClass string) (*domain.HostBladeInfo, error) {
	info, err := c.nodeClass(ctx, nodeClass)
	if err != nil {
		return nil, err
	}
	return &domain.HostBladeInfo{
		BladeClass:       info.HostBlade.BladeClass,
		InstanceCapacity: info.HostBlade.InstanceCapacity,
	}, nil
}

func (c *clusterClient) NodeApplicationMetadata(ctx context.Context, nodeClass string) (map[string]string, error) {
	info, err := c.nodeClass(ctx, nodeClass)
	if err != nil {
		return nil, err
	}
	return info.ApplicationMetadata, nil
}

func (c *clusterClient) NodeNetworkNames(ctx context.Context, nodeClass string) ([]string, error) {
	info, err := c.nodeClass(ctx, nodeClass)
	if err != nil {
		return nil, err
	}
	return info.Networks, nil
}

func (c *clusterClient) NodeHostname(ctx context.Context, nodeClass string, instance int, network string) (string, error) {
	var info nodeNetworkInfo
	path := fmt.Sprintf("/v1/nodes/classes/%s/instances/%d/networks/%s",
		url.PathEscape(nodeClass), instance, url.PathEscape(network))
	if err := c.getJSON(ctx, path, &info); err != nil {
		return "", err
	}
	return info.Hostname, nil
}

func (c *clusterClient) NodeIPv4Addr(ctx context.Context, nodeClass string, instance int, network string) (string, error) {
	var info nodeNetworkInfo
	path := fmt.Sprintf("/v1/nodes/classes/%s/instances/%d/networks/%s",
		url.PathEscape(nodeClass), instance, url.PathEscape(network))
	if err := c.getJSON(ctx, path, &info); err != nil {
		return "", err
	}
	return info.IPv4Addr, nil
}

func (c *clusterClient) NodeName(ctx context.Context, nodeClass string, instance int) (string, error) {
	var info nodeInstanceInfo
	path := fmt.Sprintf("/v1/nodes/classes/%s/instances/%d", url.PathEscape(nodeClass), instance)
	if err := c.getJSON(ctx, path, &info); err != nil {
		return "", err
	}
	return info.Name, nil
}

func (c *clusterClient) SetNodeName(ctx context.Context, nodeClass string, instance int, name string) error {
	path := fmt.Sprintf("/v1/nodes/classes/%s/instances/%d", url.PathEscape(nodeClass), instance)
	return c.putJSON(ctx, path, nodeInstanceInfo{Name: name})
}

func (c *clusterClient) NodeEndpoints(ctx context.Context, nodeClass string) ([]domain.Endpoint, error) {
	var out endpointList
	path := "/v1/nodes/classes/" + url.PathEscape(nodeClass) + "/endpoints"
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	eps := make([]domain.Endpoint, 0, len(out.Endpoints))
	for _, ep := range out.Endpoints {
		eps = append(eps, domain.Endpoint{
			Host:     ep.Host,
			Port:     ep.Port,
			Class:    nodeClass,
			Instance: ep.Instance,
		})
	}
	return eps, nil
}

func (c *clusterClient) NetworkNames(ctx context.Context) ([]string, error) {
	var out struct {
		Networks []string `json:"networks"`
	}
	if err := c.getJSON(ctx, "/v1/networks", &out); err != nil {
		return nil, err
	}
	return out.Networks, nil
}

func (c *clusterClient) network(ctx context.Context, name string) (*networkInfo, error) {
	var info networkInfo
	if err := c.getJSON(ctx, "/v1/networks/"+url.PathEscape(name), &info); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrNetworkNotFound, name)
		}
		return nil, err
	}
	return &info, nil
}

func (c *clusterClient) NetworkApplicationMetadata(ctx context.Context, name string) (map[string]string, error) {
	info, err := c.network(ctx, name)
	if err != nil {
		return nil, err
	}
	return info.ApplicationMetadata, nil
}

func (c *clusterClient) NetworkIPv4CIDR(ctx context.Context, name string) (string, error) {
	info, err := c.network(ctx, name)
	if err != nil {
		return "", err
	}
	return info.IPv4CIDR, nil
}
