package services

import (
	"fmt"
	"net/netip"
	"strings"

	"vtds-application-vshasta/internal/core/domain"
)

// ValidationService checks the consolidated system configuration before
// deployment: address pools and gateways must fall inside the CIDRs of
// their networks, and the CSM version must parse.
type ValidationService struct{}

func NewValidationService() *ValidationService {
	return &ValidationService{}
}

// pool/gateway keys checked against their network CIDR. The NMN is
// special: its pools come from Kubernetes endpoints in an overlay of the
// NMN, so it is not checked here.
var poolChecks = []struct{ pool, cidr string }{
	{"hmn-dynamic-pool", "hmn-cidr"},
	{"hmn-static-pool", "hmn-cidr"},
	{"hsn-dynamic-pool", "hsn-cidr"},
	{"hsn-static-pool", "hsn-cidr"},
	{"can-dynamic-pool", "can-cidr"},
	{"can-static-pool", "can-cidr"},
}

var gatewayChecks = []struct{ gateway, cidr string }{
	{"can-gateway", "can-cidr"},
	{"cmn-gateway", "cmn-cidr"},
}

// ValidateSystemConfig validates the system_config seed data of a
// consolidated application configuration.
func (v *ValidationService) ValidateSystemConfig(cfg *domain.AppConfig) error {
	sys := cfg.SeedFiles.SystemConfig
	if sys == nil {
		return domain.ErrMissingSystemConfig
	}

	if _, err := domain.ParseCSMVersion(cfg.CSM.Version); err != nil {
		return err
	}

	for _, check := range poolChecks {
		pool := stringValue(sys, check.pool)
		if pool == "" {
			continue
		}
		if err := cidrWithin(pool, stringValue(sys, check.cidr), false); err != nil {
			return fmt.Errorf("%s: %w", check.pool, err)
		}
	}

	for _, check := range gatewayChecks {
		gateway := stringValue(sys, check.gateway)
		if gateway == "" {
			continue
		}
		if err := cidrWithin(gateway, stringValue(sys, check.cidr), true); err != nil {
			return fmt.Errorf("%s: %w", check.gateway, err)
		}
	}

	return nil
}

// cidrWithin checks that 'cidr' falls inside 'netCIDR'. With prefixOnly
// the value is treated as a host address: any mask is stripped and /32
// applied before the check.
func cidrWithin(cidr, netCIDR string, prefixOnly bool) error {
	if prefixOnly {
		addr, _, _ := strings.Cut(cidr, "/")
		cidr = addr + "/32"
	}

	sub, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Errorf("%w: '%s'", domain.ErrInvalidCIDR, cidr)
	}
	network, err := netip.ParsePrefix(netCIDR)
	if err != nil {
		return fmt.Errorf("%w: '%s'", domain.ErrInvalidCIDR, netCIDR)
	}

	if !network.Contains(sub.Addr()) || sub.Bits() < network.Bits() {
		if prefixOnly {
			return fmt.Errorf("%w: '%s' not in '%s'", domain.ErrGatewayOutsideNetwork, cidr, netCIDR)
		}
		return fmt.Errorf("%w: '%s' not in '%s'", domain.ErrPoolOutsideNetwork, cidr, netCIDR)
	}
	return nil
}

func stringValue(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
