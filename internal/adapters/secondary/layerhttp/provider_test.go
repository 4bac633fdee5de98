package layerhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtds-application-vshasta/internal/core/domain"
)

func providerTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/blades/classes", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"classes": []string{"ncn_blade"}})
	})
	mux.HandleFunc("GET /v1/blades/classes/ncn_blade", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"count": 2})
	})
	mux.HandleFunc("GET /v1/blades/classes/ncn_blade/endpoints", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"endpoints": []map[string]any{
				{"host": "10.0.0.10", "port": 22, "instance": 0},
				{"host": "10.0.0.11", "port": 22, "instance": 1},
			},
		})
	})
	mux.HandleFunc("GET /v1/site", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"system_name": "vshasta",
			"dns_servers": []map[string]any{{"address": "8.8.8.8"}},
			"ntp_servers": []map[string]any{{"hostname": "time.example.com"}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderClient(t *testing.T) {
	srv := providerTestServer(t)
	c := NewProviderClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	classes, err := c.BladeClasses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ncn_blade"}, classes)

	count, err := c.BladeCount(ctx, "ncn_blade")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	eps, err := c.BladeEndpoints(ctx, "ncn_blade")
	require.NoError(t, err)
	assert.Equal(t, []domain.Endpoint{
		{Host: "10.0.0.10", Port: 22, Class: "ncn_blade", Instance: 0},
		{Host: "10.0.0.11", Port: 22, Class: "ncn_blade", Instance: 1},
	}, eps)

	site, err := c.SiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "vshasta", site.SystemName)
	require.Len(t, site.DNSServers, 1)
	assert.Equal(t, "8.8.8.8", site.DNSServers[0].Address)
	require.Len(t, site.NTPServers, 1)
	assert.Equal(t, "time.example.com", site.NTPServers[0].Hostname)
}
