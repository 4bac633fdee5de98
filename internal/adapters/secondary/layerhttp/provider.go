package layerhttp

import (
	"context"
	"net/url"
	"time"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

type providerClient struct {
	*client
}

// NewProviderClient builds the ProviderClient adapter over the provider
// layer's HTTP API.
func NewProviderClient(baseURL string, timeout time.Duration) ports.ProviderClient {
	return &providerClient{client: newClient(baseURL, timeout)}
}

type siteServer struct {
	Hostname string `json:"hostname"`
	Address  string `json:"address"`
}

type siteInfo struct {
	SystemName string       `json:"system_name"`
	DNSServers []siteServer `json:"dns_servers"`
	NTPServers []siteServer `json:"ntp_servers"`
}

func (c *providerClient) BladeClasses(ctx context.Context) ([]string, error) {
	var out struct {
		Classes []string `json:"classes"`
	}
	if err := c.getJSON(ctx, "/v1/blades/classes", &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

func (c *providerClient) BladeCount(ctx context.Context, bladeClass string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	path := "/v1/blades/classes/" + url.PathEscape(bladeClass)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *providerClient) BladeEndpoints(ctx context.Context, bladeClass string) ([]domain.Endpoint, error) {
	var out endpointList
	path := "/v1/blades/classes/" + url.PathEscape(bladeClass) + "/endpoints"
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	eps := make([]domain.Endpoint, 0, len(out.Endpoints))
	for _, ep := range out.Endpoints {
		eps = append(eps, domain.Endpoint{
			Host:     ep.Host,
			Port:     ep.Port,
			Class:    bladeClass,
			Instance: ep.Instance,
		})
	}
	return eps, nil
}

func (c *providerClient) SiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	var info siteInfo
	if err := c.getJSON(ctx, "/v1/site", &info); err != nil {
		return nil, err
	}

	site := &domain.SiteConfig{SystemName: info.SystemName}
	for _, s := range info.DNSServers {
		site.DNSServers = append(site.DNSServers, domain.SiteServer{Hostname: s.Hostname, Address: s.Address})
	}
	for _, s := range info.NTPServers {
		site.NTPServers = append(site.NTPServers, domain.SiteServer{Hostname: s.Hostname, Address: s.Address})
	}
	return site, nil
}
