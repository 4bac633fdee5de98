package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/testutil"
)

// lifecycleMocks wires up every dependency of the application service
// for a one cabinet, one blade, one node system.
type lifecycleMocks struct {
	cluster   *testutil.MockClusterClient
	provider  *testutil.MockProviderClient
	connector *testutil.MockConnector
	runs      *testutil.MockRunRepo
	csm       *testutil.MockCSMClient
}

func setupLifecycleMocks() *lifecycleMocks {
	m := &lifecycleMocks{
		cluster:   new(testutil.MockClusterClient),
		provider:  new(testutil.MockProviderClient),
		connector: new(testutil.MockConnector),
		runs:      new(testutil.MockRunRepo),
		csm:       new(testutil.MockCSMClient),
	}

	m.provider.On("BladeCount", mock.Anything, "ncn_blade").Return(1, nil)
	m.provider.On("SiteConfig", mock.Anything).Return(&domain.SiteConfig{
		SystemName: "vshasta",
		DNSServers: []domain.SiteServer{{Address: "8.8.8.8"}},
		NTPServers: []domain.SiteServer{{Hostname: "time.example.com"}},
	}, nil)

	m.cluster.On("NodeClasses", mock.Anything).Return([]string{"master"}, nil)
	m.cluster.On("NodeHostBladeInfo", mock.Anything, "master").
		Return(&domain.HostBladeInfo{BladeClass: "ncn_blade", InstanceCapacity: 1}, nil)
	m.cluster.On("NodeApplicationMetadata", mock.Anything, "master").
		Return(map[string]string{"node_role": "management:master"}, nil)
	m.cluster.On("SetNodeName", mock.Anything, "master", 0, "x3000c0s0b0n0").Return(nil)
	m.cluster.On("NodeNetworkNames", mock.Anything, "master").Return([]string{"nmn-net"}, nil)
	m.cluster.On("NodeCount", mock.Anything, "master").Return(1, nil)
	m.cluster.On("NodeIPv4Addr", mock.Anything, "master", 0, "nmn-net").Return("10.100.0.2", nil)
	m.cluster.On("NodeHostname", mock.Anything, "master", 0, "nmn-net").Return("ncn-m001", nil)
	m.cluster.On("NodeName", mock.Anything, "master", 0).Return("x3000c0s0b0n0", nil)

	var networks []string
	for _, role := range networkRoles {
		name := role + "-net"
		networks = append(networks, name)
		m.cluster.On("NetworkApplicationMetadata", mock.Anything, name).
			Return(map[string]string{"network_role": role}, nil)
		m.cluster.On("NetworkIPv4CIDR", mock.Anything, name).Return("10.100.0.0/23", nil)
	}
	m.cluster.On("NetworkNames", mock.Anything).Return(networks, nil)

	return m
}

func lifecycleConfig() *domain.AppConfig {
	return &domain.AppConfig{
		Geometry: domain.Geometry{
			Cabinets: domain.CabinetGeometry{
				River: domain.RiverGeometry{
					Count:      1,
					StartingID: 3000,
					BladeClasses: map[int]map[int][]string{
						3000: {0: {"ncn_blade"}},
					},
				},
			},
		},
		CSM: domain.CSMSettings{Version: "1.6.2"},
		SeedFiles: domain.SeedFiles{
			SystemConfig: map[string]any{"can-gateway": "10.100.0.1"},
		},
	}
}

func newTestService(t *testing.T, m *lifecycleMocks, cfg *domain.AppConfig) *ApplicationService {
	t.Helper()
	buildDir := filepath.Join(t.TempDir(), "build")
	setupBinary := filepath.Join(t.TempDir(), "vtds-nodesetup")
	require.NoError(t, os.WriteFile(setupBinary, []byte("#!/bin/true\n"), 0o755))

	topo := NewTopologyService(m.cluster, m.provider)
	seeds := NewSeedFileService(topo, m.provider)
	return NewApplicationService(
		cfg, buildDir, setupBinary, "/root",
		topo, seeds, NewValidationService(),
		m.cluster, m.provider, m.connector, m.runs, m.csm,
	)
}

// ============================================================================
// Lifecycle Ordering Tests
// ============================================================================

func TestPrepare_RequiresConsolidate(t *testing.T) {
	svc := newTestService(t, setupLifecycleMocks(), lifecycleConfig())
	assert.ErrorIs(t, svc.Prepare(context.Background()), domain.ErrNotConsolidated)
}

func TestValidate_RequiresPrepare(t *testing.T) {
	svc := newTestService(t, setupLifecycleMocks(), lifecycleConfig())
	assert.ErrorIs(t, svc.Validate(context.Background()), domain.ErrNotPrepared)
}

func TestDeploy_RequiresPrepare(t *testing.T) {
	svc := newTestService(t, setupLifecycleMocks(), lifecycleConfig())
	assert.ErrorIs(t, svc.Deploy(context.Background()), domain.ErrNotPrepared)
}

func TestRemove_RequiresPrepare(t *testing.T) {
	svc := newTestService(t, setupLifecycleMocks(), lifecycleConfig())
	assert.ErrorIs(t, svc.Remove(context.Background()), domain.ErrNotPrepared)
}

// ============================================================================
// Consolidate / Prepare / Validate Tests
// ============================================================================

func TestConsolidatePrepareValidate(t *testing.T) {
	m := setupLifecycleMocks()
	cfg := lifecycleConfig()
	svc := newTestService(t, m, cfg)
	ctx := context.Background()

	require.NoError(t, svc.Consolidate(ctx))

	consolidated := svc.Config()
	assert.Equal(t, "root", consolidated.BMC.User)
	assert.NotEmpty(t, consolidated.BMC.Password)
	assert.Equal(t, map[string]string{"ncn-m001": "10.100.0.2"}, consolidated.HostIPv4Map)
	assert.Equal(t, map[string]domain.NodeRef{
		"x3000c0s0b0n0": {Class: "master", Instance: 0},
	}, consolidated.XNameMap)
	assert.Equal(t, "1.6", consolidated.SeedFiles.SystemConfig["csm-version"])
	m.cluster.AssertCalled(t, "SetNodeName", mock.Anything, "master", 0, "x3000c0s0b0n0")

	require.NoError(t, svc.Prepare(ctx))
	_, err := os.Stat(filepath.Join(svc.buildDir, AppConfigName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(svc.buildDir, SystemConfigFile))
	assert.NoError(t, err)

	assert.NoError(t, svc.Validate(ctx))
}

func TestConsolidate_RegeneratesBMCPassword(t *testing.T) {
	m := setupLifecycleMocks()
	cfg := lifecycleConfig()
	cfg.BMC = domain.BMCConfig{User: "admin", Password: "stale"}
	svc := newTestService(t, m, cfg)

	require.NoError(t, svc.Consolidate(context.Background()))
	consolidated := svc.Config()
	assert.Equal(t, "admin", consolidated.BMC.User)
	assert.NotEqual(t, "stale", consolidated.BMC.Password)
}

// ============================================================================
// Deploy / Remove Tests
// ============================================================================

func setupDeployMocks(m *lifecycleMocks, conn *testutil.MockConnection) {
	m.provider.On("BladeClasses", mock.Anything).Return([]string{"ncn_blade"}, nil)
	m.cluster.On("NodeEndpoints", mock.Anything, PITNodeClass).
		Return([]domain.Endpoint{{Host: "pit", Port: 22, Class: PITNodeClass, Instance: 0}}, nil)
	m.provider.On("BladeEndpoints", mock.Anything, "ncn_blade").
		Return([]domain.Endpoint{{Host: "blade0", Port: 22, Class: "ncn_blade", Instance: 0}}, nil)
	m.connector.On("Connect", mock.Anything, mock.Anything).Return(conn, nil)
	conn.On("Close").Return(nil)
}

func TestDeploy(t *testing.T) {
	m := setupLifecycleMocks()
	conn := new(testutil.MockConnection)
	setupDeployMocks(m, conn)
	conn.On("Copy", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	conn.On("Run", mock.Anything, mock.Anything).Return("ok", nil)

	svc := newTestService(t, m, lifecycleConfig())
	svc.prepared = true

	require.NoError(t, svc.Deploy(context.Background()))

	// Both targets get the setup binary (executable) and the staged
	// configuration (private).
	conn.AssertCalled(t, "Copy", mock.Anything, svc.setupBinary, "/root/vtds-nodesetup", os.FileMode(0o700))
	conn.AssertCalled(t, "Copy", mock.Anything,
		filepath.Join(svc.buildDir, AppConfigName), "/root/application_config.yaml", os.FileMode(0o600))
	conn.AssertCalled(t, "Run", mock.Anything,
		"/root/vtds-nodesetup --target node --class pit_node --config /root/application_config.yaml")
	conn.AssertCalled(t, "Run", mock.Anything,
		"/root/vtds-nodesetup --target blade --class ncn_blade --config /root/application_config.yaml")
	conn.AssertNumberOfCalls(t, "Close", 2)
}

func TestDeploy_SetupBinaryMissing(t *testing.T) {
	svc := newTestService(t, setupLifecycleMocks(), lifecycleConfig())
	svc.prepared = true
	svc.setupBinary = filepath.Join(t.TempDir(), "missing")

	assert.ErrorIs(t, svc.Deploy(context.Background()), domain.ErrSetupBinaryMissing)
}

func TestDeploy_NoEndpoints(t *testing.T) {
	m := setupLifecycleMocks()
	m.provider.On("BladeClasses", mock.Anything).Return([]string{"ncn_blade"}, nil)
	m.cluster.On("NodeEndpoints", mock.Anything, PITNodeClass).Return([]domain.Endpoint{}, nil)

	svc := newTestService(t, m, lifecycleConfig())
	svc.prepared = true

	assert.ErrorIs(t, svc.Deploy(context.Background()), domain.ErrNoDeployTargets)
}

func TestDeploy_RunFailure(t *testing.T) {
	m := setupLifecycleMocks()
	conn := new(testutil.MockConnection)
	setupDeployMocks(m, conn)
	conn.On("Copy", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	conn.On("Run", mock.Anything, mock.Anything).Return("boom", errors.New("exit status 1"))

	svc := newTestService(t, m, lifecycleConfig())
	svc.prepared = true

	err := svc.Deploy(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run setup command")
	assert.Contains(t, err.Error(), "boom")
}

func TestRemove(t *testing.T) {
	m := setupLifecycleMocks()
	conn := new(testutil.MockConnection)
	setupDeployMocks(m, conn)
	// Remove is best effort: the first target failing does not stop the
	// pass over the remaining targets.
	conn.On("Run", mock.Anything, "rm -f /root/vtds-nodesetup").
		Return("", errors.New("connection reset")).Once()
	conn.On("Run", mock.Anything, mock.Anything).Return("", nil)

	svc := newTestService(t, m, lifecycleConfig())
	svc.prepared = true

	require.NoError(t, svc.Remove(context.Background()))
	conn.AssertCalled(t, "Run", mock.Anything, "rm -f /root/application_config.yaml")
	conn.AssertNumberOfCalls(t, "Close", 2)
}

// ============================================================================
// Run Management Tests
// ============================================================================

func TestStartRun_Wait(t *testing.T) {
	m := setupLifecycleMocks()
	m.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.runs.On("Finish", mock.Anything, mock.Anything, domain.RunStatusSucceeded, "").Return(nil)

	svc := newTestService(t, m, lifecycleConfig())

	run, err := svc.StartRun(context.Background(), domain.RunPhaseConsolidate, true)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSucceeded, run.Status)
	assert.NotNil(t, run.FinishedAt)
	m.runs.AssertExpectations(t)
}

func TestStartRun_WaitFailedPhase(t *testing.T) {
	m := setupLifecycleMocks()
	m.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.runs.On("Finish", mock.Anything, mock.Anything, domain.RunStatusFailed, mock.Anything).Return(nil)

	svc := newTestService(t, m, lifecycleConfig())

	// Prepare before consolidate fails, and the failure lands in the run
	// record rather than the StartRun error.
	run, err := svc.StartRun(context.Background(), domain.RunPhasePrepare, true)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, domain.ErrNotConsolidated.Error())
}

func TestStartRun_BackgroundRunSafeForConfigReaders(t *testing.T) {
	m := setupLifecycleMocks()
	m.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.runs.On("Finish", mock.Anything, mock.Anything, domain.RunStatusSucceeded, "").Return(nil)

	svc := newTestService(t, m, lifecycleConfig())

	run, err := svc.StartRun(context.Background(), domain.RunPhaseConsolidate, false)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, run.Status)

	// Poll the configuration the way the HTTP handlers do while the run
	// mutates it in the background. Every snapshot must be fully readable;
	// the race detector flags any torn state.
	require.Eventually(t, func() bool {
		cfg := svc.Config()
		for key := range cfg.SeedFiles.SystemConfig {
			_ = cfg.SeedFiles.SystemConfig[key]
		}
		for host := range cfg.HostIPv4Map {
			_ = cfg.HostIPv4Map[host]
		}
		return cfg.XNameMap != nil
	}, 5*time.Second, time.Millisecond)

	cfg := svc.Config()
	assert.NotEmpty(t, cfg.BMC.Password)
	assert.Equal(t, "1.6", cfg.SeedFiles.SystemConfig["csm-version"])
}

func TestConsolidate_PublishesAtomically(t *testing.T) {
	m := setupLifecycleMocks()
	cfg := lifecycleConfig()
	svc := newTestService(t, m, cfg)

	before := svc.Config()
	require.NoError(t, svc.Consolidate(context.Background()))
	after := svc.Config()

	// Consolidate swaps in a staged clone; the snapshot handed out before
	// the run keeps its pre-consolidation contents.
	assert.NotSame(t, before, after)
	assert.Empty(t, before.BMC.Password)
	assert.NotContains(t, before.SeedFiles.SystemConfig, "csm-version")
	assert.NotEmpty(t, after.BMC.Password)
}

func TestStartRun_AlreadyRunning(t *testing.T) {
	svc := newTestService(t, setupLifecycleMocks(), lifecycleConfig())
	svc.activeRun = &domain.DeploymentRun{ID: uuid.New()}

	_, err := svc.StartRun(context.Background(), domain.RunPhaseConsolidate, true)
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
}

func TestStartRun_CreateFailureClearsActiveRun(t *testing.T) {
	m := setupLifecycleMocks()
	m.runs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	m.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.runs.On("Finish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(t, m, lifecycleConfig())

	_, err := svc.StartRun(context.Background(), domain.RunPhaseConsolidate, true)
	require.Error(t, err)

	// The failed start must not leave a phantom active run behind.
	_, err = svc.StartRun(context.Background(), domain.RunPhaseConsolidate, true)
	assert.NoError(t, err)
}

func TestListRuns_LimitClamping(t *testing.T) {
	m := setupLifecycleMocks()
	m.runs.On("List", mock.Anything, 20, 0).Return([]*domain.DeploymentRun{}, 0, nil).Once()
	m.runs.On("List", mock.Anything, 100, 0).Return([]*domain.DeploymentRun{}, 0, nil).Once()

	svc := newTestService(t, m, lifecycleConfig())

	_, _, err := svc.ListRuns(context.Background(), 0, 0)
	require.NoError(t, err)
	_, _, err = svc.ListRuns(context.Background(), 500, 0)
	require.NoError(t, err)
	m.runs.AssertExpectations(t)
}

// ============================================================================
// Verify Tests
// ============================================================================

func TestVerify_NoCSMClient(t *testing.T) {
	m := setupLifecycleMocks()
	svc := newTestService(t, m, lifecycleConfig())
	svc.csm = nil

	_, err := svc.Verify(context.Background())
	assert.ErrorIs(t, err, domain.ErrCSMNotAvailable)
}

func TestVerify_CSMUnavailable(t *testing.T) {
	m := setupLifecycleMocks()
	m.csm.On("IsAvailable").Return(false)
	svc := newTestService(t, m, lifecycleConfig())

	_, err := svc.Verify(context.Background())
	assert.ErrorIs(t, err, domain.ErrCSMNotAvailable)
}

func TestVerify(t *testing.T) {
	m := setupLifecycleMocks()
	m.csm.On("IsAvailable").Return(true)
	m.csm.On("NodeStatuses", mock.Anything).Return([]domain.CSMNodeStatus{
		{Name: "ncn-m001", Ready: true, KubeletVersion: "v1.28.3"},
	}, nil)
	svc := newTestService(t, m, lifecycleConfig())

	nodes, err := svc.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Ready)
}
