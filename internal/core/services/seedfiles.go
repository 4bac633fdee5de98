package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

// Seed file names expected by 'csi config init' on the PIT node.
const (
	SystemConfigFile   = "system_config.yaml"
	CabinetsFile       = "cabinets.yaml"
	AppNodeConfigFile  = "application_node_config.yaml"
	HMNConnectionsFile = "hmn_connections.json"
	NCNMetadataFile    = "ncn_metadata.csv"
	SwitchMetadataFile = "switch_metadata.csv"
)

// networkRoles whose CIDRs feed the system_config seed data.
var networkRoles = []string{"CAN", "CHN", "CMN", "HMN", "HSN", "NMN"}

// SeedFileService composes the CSI seed file data during consolidation and
// writes the seed files to the build directory during prepare.
type SeedFileService struct {
	topo     *TopologyService
	provider ports.ProviderClient
}

func NewSeedFileService(topo *TopologyService, provider ports.ProviderClient) *SeedFileService {
	return &SeedFileService{topo: topo, provider: provider}
}

// BuildSystemConfig folds the network CIDRs, CSM version, cabinet
// geometry, BMC bootstrap credentials and provider site settings into the
// system_config seed data in place.
func (s *SeedFileService) BuildSystemConfig(ctx context.Context, cfg *domain.AppConfig) error {
	sys := cfg.SeedFiles.SystemConfig
	if sys == nil {
		return domain.ErrMissingSystemConfig
	}

	for _, role := range networkRoles {
		cidr, err := s.topo.NetworkCIDRByRole(ctx, role)
		if err != nil {
			return err
		}
		sys[strings.ToLower(role)+"-cidr"] = cidr
	}

	// The *-gw fields seem deprecated in favor of *-gateway, but some CSM
	// versions may still read them. Keep them as aliases.
	sys["can-gw"] = sys["can-gateway"]
	sys["cmn-gw"] = sys["cmn-gateway"]

	version, err := domain.ParseCSMVersion(cfg.CSM.Version)
	if err != nil {
		return err
	}
	sys["csm-version"] = version.MajorMinor()

	// vShasta only supports river cabinets. Node naming in the cluster
	// layer leaves no room for a starting NID other than 1.
	river := cfg.Geometry.Cabinets.River
	cabinetCount := river.Count
	if cabinetCount == 0 {
		cabinetCount = 1
	}
	startingID := river.StartingID
	if startingID == 0 {
		startingID = 3000
	}
	sys["river-cabinets"] = strconv.Itoa(cabinetCount)
	sys["starting-river-cabinet"] = strconv.Itoa(startingID)
	sys["starting-river-nid"] = "1"

	if cfg.BMC.User == "" || cfg.BMC.Password == "" {
		return domain.ErrMissingBMCConfig
	}
	sys["bootstrap-ncn-bmc-user"] = cfg.BMC.User
	sys["bootstrap-ncn-bmc-pass"] = cfg.BMC.Password

	// Currently unused by vShasta; if that changes it becomes a cluster
	// layer setting from the NCN interface definitions.
	sys["install-ncn-bond-members"] = "p1p1,p10p1"

	peers, err := s.topo.ManagementHostnames(ctx)
	if err != nil {
		return err
	}
	sys["ntp-peers"] = peers

	site, err := s.provider.SiteConfig(ctx)
	if err != nil {
		return err
	}
	dns := firstDNSAddress(site)
	sys["site-dns"] = dns
	sys["ipv4-resolvers"] = dns
	sys["system-name"] = site.SystemName
	sys["upstream-ntp-server"] = ntpServerNames(site)

	return nil
}

func firstDNSAddress(site *domain.SiteConfig) string {
	if len(site.DNSServers) == 0 {
		return ""
	}
	return site.DNSServers[0].Address
}

func ntpServerNames(site *domain.SiteConfig) []string {
	names := make([]string, 0, len(site.NTPServers))
	for _, server := range site.NTPServers {
		switch {
		case server.Hostname != "":
			names = append(names, server.Hostname)
		case server.Address != "":
			names = append(names, server.Address)
		}
	}
	return names
}

// WriteSeedFiles writes all seed files needed to run 'csi config init' on
// the PIT node into the build directory.
func (s *SeedFileService) WriteSeedFiles(cfg *domain.AppConfig, buildDir string) error {
	seeds := cfg.SeedFiles
	if err := writeYAMLFile(filepath.Join(buildDir, SystemConfigFile), seeds.SystemConfig); err != nil {
		return err
	}
	if err := writeYAMLFile(filepath.Join(buildDir, CabinetsFile), seeds.Cabinets); err != nil {
		return err
	}
	if err := writeYAMLFile(filepath.Join(buildDir, AppNodeConfigFile), seeds.ApplicationNodeConfig); err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(buildDir, HMNConnectionsFile), seeds.HMNConnections); err != nil {
		return err
	}
	if err := writeCSVFile(filepath.Join(buildDir, NCNMetadataFile), seeds.NCNMetadata); err != nil {
		return err
	}
	return writeCSVFile(filepath.Join(buildDir, SwitchMetadataFile), seeds.SwitchMetadata)
}

func writeYAMLFile(path string, data any) error {
	if data == nil {
		data = map[string]any{}
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("format '%s' as YAML: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write seed file '%s': %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, data any) error {
	if data == nil {
		data = []any{}
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("format '%s' as JSON: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write seed file '%s': %w", path, err)
	}
	return nil
}

func writeCSVFile(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write seed file '%s': %w", path, err)
	}
	return nil
}
