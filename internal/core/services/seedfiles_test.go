package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/testutil"
)

func setupSeedMocks() (*testutil.MockClusterClient, *testutil.MockProviderClient) {
	cluster := new(testutil.MockClusterClient)
	provider := new(testutil.MockProviderClient)

	var networks []string
	for _, role := range networkRoles {
		name := strings.ToLower(role) + "-net"
		networks = append(networks, name)
		cluster.On("NetworkApplicationMetadata", mock.Anything, name).
			Return(map[string]string{"network_role": role}, nil)
		cluster.On("NetworkIPv4CIDR", mock.Anything, name).
			Return("10.100.0.0/23", nil)
	}
	cluster.On("NetworkNames", mock.Anything).Return(networks, nil)

	cluster.On("NodeClasses", mock.Anything).Return([]string{"master"}, nil)
	cluster.On("NodeApplicationMetadata", mock.Anything, "master").
		Return(map[string]string{"node_role": "management:master"}, nil)
	cluster.On("NodeCount", mock.Anything, "master").Return(1, nil)
	cluster.On("NodeName", mock.Anything, "master", 0).Return("ncn-m001", nil)

	provider.On("SiteConfig", mock.Anything).Return(&domain.SiteConfig{
		SystemName: "vshasta",
		DNSServers: []domain.SiteServer{{Address: "8.8.8.8"}},
		NTPServers: []domain.SiteServer{
			{Hostname: "time.example.com"},
			{Address: "192.0.2.10"},
		},
	}, nil)

	return cluster, provider
}

func seedConfig() *domain.AppConfig {
	return &domain.AppConfig{
		Geometry: domain.Geometry{
			Cabinets: domain.CabinetGeometry{
				River: domain.RiverGeometry{Count: 1, StartingID: 3000},
			},
		},
		BMC: domain.BMCConfig{User: "root", Password: "hunter2"},
		CSM: domain.CSMSettings{Version: "1.6.2"},
		SeedFiles: domain.SeedFiles{
			SystemConfig: map[string]any{
				"can-gateway": "10.100.0.1",
			},
		},
	}
}

func TestBuildSystemConfig(t *testing.T) {
	cluster, provider := setupSeedMocks()
	topo := NewTopologyService(cluster, provider)
	svc := NewSeedFileService(topo, provider)

	cfg := seedConfig()
	require.NoError(t, svc.BuildSystemConfig(context.Background(), cfg))

	sys := cfg.SeedFiles.SystemConfig
	for _, role := range networkRoles {
		assert.Equal(t, "10.100.0.0/23", sys[strings.ToLower(role)+"-cidr"])
	}
	assert.Equal(t, "10.100.0.1", sys["can-gw"])
	assert.Equal(t, "1.6", sys["csm-version"])
	assert.Equal(t, "1", sys["river-cabinets"])
	assert.Equal(t, "3000", sys["starting-river-cabinet"])
	assert.Equal(t, "1", sys["starting-river-nid"])
	assert.Equal(t, "root", sys["bootstrap-ncn-bmc-user"])
	assert.Equal(t, "hunter2", sys["bootstrap-ncn-bmc-pass"])
	assert.Equal(t, []string{"ncn-m001"}, sys["ntp-peers"])
	assert.Equal(t, "8.8.8.8", sys["site-dns"])
	assert.Equal(t, "8.8.8.8", sys["ipv4-resolvers"])
	assert.Equal(t, "vshasta", sys["system-name"])
	assert.Equal(t, []string{"time.example.com", "192.0.2.10"}, sys["upstream-ntp-server"])
}

func TestBuildSystemConfig_Defaults(t *testing.T) {
	cluster, provider := setupSeedMocks()
	topo := NewTopologyService(cluster, provider)
	svc := NewSeedFileService(topo, provider)

	cfg := seedConfig()
	cfg.Geometry = domain.Geometry{}
	require.NoError(t, svc.BuildSystemConfig(context.Background(), cfg))

	sys := cfg.SeedFiles.SystemConfig
	assert.Equal(t, "1", sys["river-cabinets"])
	assert.Equal(t, "3000", sys["starting-river-cabinet"])
}

func TestBuildSystemConfig_NoSystemConfig(t *testing.T) {
	cluster, provider := setupSeedMocks()
	svc := NewSeedFileService(NewTopologyService(cluster, provider), provider)

	cfg := seedConfig()
	cfg.SeedFiles.SystemConfig = nil
	err := svc.BuildSystemConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrMissingSystemConfig)
}

func TestBuildSystemConfig_MissingBMC(t *testing.T) {
	cluster, provider := setupSeedMocks()
	svc := NewSeedFileService(NewTopologyService(cluster, provider), provider)

	cfg := seedConfig()
	cfg.BMC.Password = ""
	err := svc.BuildSystemConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrMissingBMCConfig)
}

func TestWriteSeedFiles(t *testing.T) {
	cluster, provider := setupSeedMocks()
	svc := NewSeedFileService(NewTopologyService(cluster, provider), provider)

	buildDir := t.TempDir()
	cfg := seedConfig()
	cfg.SeedFiles.HMNConnections = []map[string]any{
		{"Source": "mn01", "DestinationXname": "x3000c0s0b0"},
	}
	cfg.SeedFiles.NCNMetadata = []string{
		"Xname,Role,Subrole,BMC MAC,Bootstrap MAC,Bond0 MAC0,Bond0 MAC1",
		"x3000c0s0b0n0,Management,Master,de:ad:be:ef:00:00,...",
	}
	require.NoError(t, svc.WriteSeedFiles(cfg, buildDir))

	// All six seed files exist even when their configured data is empty.
	for _, name := range []string{
		SystemConfigFile, CabinetsFile, AppNodeConfigFile,
		HMNConnectionsFile, NCNMetadataFile, SwitchMetadataFile,
	} {
		_, err := os.Stat(filepath.Join(buildDir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(buildDir, SystemConfigFile))
	require.NoError(t, err)
	var sys map[string]any
	require.NoError(t, yaml.Unmarshal(data, &sys))
	assert.Equal(t, "10.100.0.1", sys["can-gateway"])

	data, err = os.ReadFile(filepath.Join(buildDir, HMNConnectionsFile))
	require.NoError(t, err)
	var conns []map[string]any
	require.NoError(t, json.Unmarshal(data, &conns))
	require.Len(t, conns, 1)
	assert.Equal(t, "mn01", conns[0]["Source"])

	data, err = os.ReadFile(filepath.Join(buildDir, NCNMetadataFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Xname,Role"))
}
