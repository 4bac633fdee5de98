package testutil

import (
	"context"
	"io/fs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vtds-application-vshasta/internal/core/domain"
	ports "vtds-application-vshasta/internal/core/ports/output"
)

// MockClusterClient is a mock of ClusterClient.
type MockClusterClient struct {
	mock.Mock
}

func (m *MockClusterClient) NodeClasses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClusterClient) NodeCount(ctx context.Context, nodeClass string) (int, error) {
	args := m.Called(ctx, nodeClass)
	return args.Int(0), args.Error(1)
}

func (m *MockClusterClient) NodeHostBladeInfo(ctx context.Context, nodeClass string) (*domain.HostBladeInfo, error) {
	args := m.Called(ctx, nodeClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HostBladeInfo), args.Error(1)
}

func (m *MockClusterClient) NodeApplicationMetadata(ctx context.Context, nodeClass string) (map[string]string, error) {
	args := m.Called(ctx, nodeClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockClusterClient) NodeNetworkNames(ctx context.Context, nodeClass string) ([]string, error) {
	args := m.Called(ctx, nodeClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClusterClient) NodeHostname(ctx context.Context, nodeClass string, instance int, network string) (string, error) {
	args := m.Called(ctx, nodeClass, instance, network)
	return args.String(0), args.Error(1)
}

func (m *MockClusterClient) NodeIPv4Addr(ctx context.Context, nodeClass string, instance int, network string) (string, error) {
	args := m.Called(ctx, nodeClass, instance, network)
	return args.String(0), args.Error(1)
}

func (m *MockClusterClient) NodeName(ctx context.Context, nodeClass string, instance int) (string, error) {
	args := m.Called(ctx, nodeClass, instance)
	return args.String(0), args.Error(1)
}

func (m *MockClusterClient) SetNodeName(ctx context.Context, nodeClass string, instance int, name string) error {
	args := m.Called(ctx, nodeClass, instance, name)
	return args.Error(0)
}

func (m *MockClusterClient) NodeEndpoints(ctx context.Context, nodeClass string) ([]domain.Endpoint, error) {
	args := m.Called(ctx, nodeClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Endpoint), args.Error(1)
}

func (m *MockClusterClient) NetworkNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClusterClient) NetworkApplicationMetadata(ctx context.Context, network string) (map[string]string, error) {
	args := m.Called(ctx, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockClusterClient) NetworkIPv4CIDR(ctx context.Context, network string) (string, error) {
	args := m.Called(ctx, network)
	return args.String(0), args.Error(1)
}

// MockProviderClient is a mock of ProviderClient.
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) BladeClasses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProviderClient) BladeCount(ctx context.Context, bladeClass string) (int, error) {
	args := m.Called(ctx, bladeClass)
	return args.Int(0), args.Error(1)
}

func (m *MockProviderClient) BladeEndpoints(ctx context.Context, bladeClass string) ([]domain.Endpoint, error) {
	args := m.Called(ctx, bladeClass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Endpoint), args.Error(1)
}

func (m *MockProviderClient) SiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SiteConfig), args.Error(1)
}

// MockConnector is a mock of Connector.
type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Connect(ctx context.Context, ep domain.Endpoint) (ports.Connection, error) {
	args := m.Called(ctx, ep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Connection), args.Error(1)
}

// MockConnection is a mock of Connection.
type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Copy(ctx context.Context, localPath, remotePath string, mode fs.FileMode) error {
	args := m.Called(ctx, localPath, remotePath, mode)
	return args.Error(0)
}

func (m *MockConnection) Run(ctx context.Context, cmd string) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

func (m *MockConnection) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunRepo is a mock of RunRepository.
type MockRunRepo struct {
	mock.Mock
}

func (m *MockRunRepo) Create(ctx context.Context, run *domain.DeploymentRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) Finish(ctx context.Context, id uuid.UUID, status domain.RunStatus, errText string) error {
	args := m.Called(ctx, id, status, errText)
	return args.Error(0)
}

func (m *MockRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeploymentRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeploymentRun), args.Error(1)
}

func (m *MockRunRepo) List(ctx context.Context, limit, offset int) ([]*domain.DeploymentRun, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.DeploymentRun), args.Int(1), args.Error(2)
}

// MockCSMClient is a mock of CSMClient.
type MockCSMClient struct {
	mock.Mock
}

func (m *MockCSMClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCSMClient) NodeStatuses(ctx context.Context) ([]domain.CSMNodeStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CSMNodeStatus), args.Error(1)
}
