package domain

import "errors"

// ============================================================================
// Lifecycle Errors
// ============================================================================

var (
	ErrNotConsolidated = errors.New("application configuration has not been consolidated, run consolidate first")
	ErrNotPrepared     = errors.New("application has not been prepared, run prepare first")
	ErrRunInProgress   = errors.New("another lifecycle run is already in progress")
	ErrRunNotFound     = errors.New("deployment run not found")
	ErrInvalidPhase    = errors.New("unknown lifecycle phase")
)

// ============================================================================
// Configuration Errors
// ============================================================================

var (
	ErrNoApplicationConfig = errors.New("no application configuration found")
	ErrMissingGeometry     = errors.New("no river cabinet blade class contents found in geometry configuration")
	ErrMissingSystemConfig = errors.New("application configuration contains no system_config seed file settings")
	ErrMissingBMCConfig    = errors.New("BMC configuration has not been set up in the application configuration")
	ErrNoCSMVersion        = errors.New("no CSM version (csm.version) provided in the application configuration")
	ErrInvalidCSMVersion   = errors.New("CSM version is not a valid semantic version")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrPoolOutsideNetwork    = errors.New("address pool falls outside its network CIDR")
	ErrGatewayOutsideNetwork = errors.New("gateway address falls outside its network CIDR")
	ErrInvalidCIDR           = errors.New("value is not a valid CIDR")
)

// ============================================================================
// Topology Errors
// ============================================================================

var (
	ErrBladeClassNotFound  = errors.New("blade class not present in chassis blade class list")
	ErrNodeClassNotFound   = errors.New("node class not known to the cluster layer")
	ErrNetworkRoleNotFound = errors.New("no virtual network carries the requested network role")
	ErrNetworkNotFound     = errors.New("virtual network not known to the cluster layer")
)

// ============================================================================
// Deployment Errors
// ============================================================================

var (
	ErrNoDeployTargets    = errors.New("no reachable deployment targets for class")
	ErrSetupBinaryMissing = errors.New("node setup binary not found at configured path")
	ErrCSMNotAvailable    = errors.New("CSM verification is not configured")
)
