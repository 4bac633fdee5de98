package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

const (
	// AppConfigName is the file name of the staged application
	// configuration, both in the build directory and on the targets.
	AppConfigName = "application_config.yaml"
	// SetupBinaryName is the name the node setup command gets on the
	// targets.
	SetupBinaryName = "vtds-nodesetup"
	// PITNodeClass is the node class of the Pre-Install Toolkit node.
	PITNodeClass = "pit_node"
)

// ApplicationService orchestrates the vShasta application lifecycle:
// consolidate, prepare, validate, deploy, remove. Lifecycle phases run as
// deployment runs, one at a time.
type ApplicationService struct {
	cfg         *domain.AppConfig
	buildDir    string
	setupBinary string
	remoteDir   string

	topo      *TopologyService
	seeds     *SeedFileService
	validator *ValidationService
	provider  ports.ProviderClient
	cluster   ports.ClusterClient
	connector ports.Connector
	runs      ports.RunRepository
	csm       ports.CSMClient

	mu           sync.Mutex
	activeRun    *domain.DeploymentRun
	consolidated bool
	prepared     bool
}

func NewApplicationService(
	cfg *domain.AppConfig,
	buildDir string,
	setupBinary string,
	remoteDir string,
	topo *TopologyService,
	seeds *SeedFileService,
	validator *ValidationService,
	cluster ports.ClusterClient,
	provider ports.ProviderClient,
	connector ports.Connector,
	runs ports.RunRepository,
	csm ports.CSMClient,
) *ApplicationService {
	if remoteDir == "" {
		remoteDir = "/root"
	}
	return &ApplicationService{
		cfg:         cfg,
		buildDir:    buildDir,
		setupBinary: setupBinary,
		remoteDir:   remoteDir,
		topo:        topo,
		seeds:       seeds,
		validator:   validator,
		cluster:     cluster,
		provider:    provider,
		connector:   connector,
		runs:        runs,
		csm:         csm,
	}
}

// Config returns the application configuration in its current state of
// consolidation. The returned snapshot is never mutated after it is
// published; consolidate stages its changes on a clone and swaps it in,
// so concurrent readers are safe.
func (s *ApplicationService) Config() *domain.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// StartRun launches a lifecycle phase as a deployment run. Only one run
// may be active at a time. With wait the phase executes before StartRun
// returns; otherwise it continues in the background and the returned run
// is still in the RUNNING state.
func (s *ApplicationService) StartRun(ctx context.Context, phase domain.RunPhase, wait bool) (*domain.DeploymentRun, error) {
	s.mu.Lock()
	if s.activeRun != nil {
		s.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	run := &domain.DeploymentRun{
		ID:        uuid.New(),
		Phase:     phase,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	s.activeRun = run
	s.mu.Unlock()

	if err := s.runs.Create(ctx, run); err != nil {
		s.mu.Lock()
		s.activeRun = nil
		s.mu.Unlock()
		return nil, err
	}

	if wait {
		s.executeRun(ctx, run)
		return run, nil
	}

	go s.executeRun(context.Background(), run)

	// The background goroutine owns the run record from here; hand the
	// caller its own copy.
	snapshot := *run
	return &snapshot, nil
}

func (s *ApplicationService) executeRun(ctx context.Context, run *domain.DeploymentRun) {
	err := s.execute(ctx, run.Phase)

	status := domain.RunStatusSucceeded
	errText := ""
	if err != nil {
		status = domain.RunStatusFailed
		errText = err.Error()
		log.WithError(err).WithField("phase", run.Phase).Error("lifecycle run failed")
	} else {
		log.WithField("phase", run.Phase).Info("lifecycle run completed")
	}

	now := time.Now()
	run.Status = status
	run.Error = errText
	run.FinishedAt = &now

	if ferr := s.runs.Finish(ctx, run.ID, status, errText); ferr != nil {
		log.WithError(ferr).Error("record lifecycle run result")
	}

	s.mu.Lock()
	s.activeRun = nil
	s.mu.Unlock()
}

func (s *ApplicationService) execute(ctx context.Context, phase domain.RunPhase) error {
	switch phase {
	case domain.RunPhaseConsolidate:
		return s.Consolidate(ctx)
	case domain.RunPhasePrepare:
		return s.Prepare(ctx)
	case domain.RunPhaseValidate:
		return s.Validate(ctx)
	case domain.RunPhaseDeploy:
		return s.Deploy(ctx)
	case domain.RunPhaseRemove:
		return s.Remove(ctx)
	}
	return domain.ErrInvalidPhase
}

// Consolidate assigns XNAMEs, computes the host and xname maps, generates
// BMC credentials and composes the system_config seed data. All changes
// are staged on a clone of the configuration and swapped in atomically so
// readers polling Config never see a half-consolidated state.
func (s *ApplicationService) Consolidate(ctx context.Context) error {
	cfg := s.Config().Clone()

	if cfg.BMC.User == "" {
		cfg.BMC.User = "root"
	}
	// Users never need this password, a fresh random one is fine.
	cfg.BMC.Password = uuid.NewString()

	nodeXNames, err := s.topo.AssignNodeXNames(ctx, cfg)
	if err != nil {
		return err
	}
	log.WithField("nodes", len(nodeXNames)).Info("assigned node xnames")

	hosts, err := s.topo.HostIPv4Map(ctx)
	if err != nil {
		return err
	}
	cfg.HostIPv4Map = hosts

	xnames, err := s.topo.XNameMap(ctx)
	if err != nil {
		return err
	}
	cfg.XNameMap = xnames

	if err := s.seeds.BuildSystemConfig(ctx, cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.consolidated = true
	s.mu.Unlock()
	return nil
}

// Prepare stages the consolidated configuration and the CSI seed files in
// the build directory.
func (s *ApplicationService) Prepare(ctx context.Context) error {
	s.mu.Lock()
	consolidated := s.consolidated
	s.mu.Unlock()
	if !consolidated {
		return domain.ErrNotConsolidated
	}

	cfg := s.Config()
	if err := os.MkdirAll(s.buildDir, 0o755); err != nil {
		return fmt.Errorf("create build directory '%s': %w", s.buildDir, err)
	}
	if err := cfg.WriteTo(filepath.Join(s.buildDir, AppConfigName)); err != nil {
		return err
	}
	if err := s.seeds.WriteSeedFiles(cfg, s.buildDir); err != nil {
		return err
	}

	s.mu.Lock()
	s.prepared = true
	s.mu.Unlock()
	return nil
}

// Validate checks the prepared configuration.
func (s *ApplicationService) Validate(ctx context.Context) error {
	s.mu.Lock()
	prepared := s.prepared
	s.mu.Unlock()
	if !prepared {
		return domain.ErrNotPrepared
	}
	return s.validator.ValidateSystemConfig(s.Config())
}

// manifests composes the deployment manifests: the node setup command and
// the staged configuration go to the PIT node and to every blade class.
func (s *ApplicationService) manifests(ctx context.Context) ([]domain.Manifest, error) {
	files := func() []domain.ManifestFile {
		return []domain.ManifestFile{
			{Source: s.setupBinary, Dest: path.Join(s.remoteDir, SetupBinaryName), Tag: "node-setup"},
			{Source: filepath.Join(s.buildDir, AppConfigName), Dest: path.Join(s.remoteDir, AppConfigName), Tag: "config"},
		}
	}

	bladeClasses, err := s.provider.BladeClasses(ctx)
	if err != nil {
		return nil, err
	}

	return []domain.Manifest{
		{
			Target:     domain.TargetNode,
			ClassNames: []string{PITNodeClass},
			Files:      files(),
			Command:    path.Join(s.remoteDir, SetupBinaryName) + " --target node",
		},
		{
			Target:     domain.TargetBlade,
			ClassNames: bladeClasses,
			Files:      files(),
			Command:    path.Join(s.remoteDir, SetupBinaryName) + " --target blade",
		},
	}, nil
}

func (s *ApplicationService) endpoints(ctx context.Context, target domain.DeployTarget, class string) ([]domain.Endpoint, error) {
	if target == domain.TargetNode {
		return s.cluster.NodeEndpoints(ctx, class)
	}
	return s.provider.BladeEndpoints(ctx, class)
}

// Deploy pushes the manifests to all targets and runs the setup command
// on each.
func (s *ApplicationService) Deploy(ctx context.Context) error {
	s.mu.Lock()
	prepared := s.prepared
	s.mu.Unlock()
	if !prepared {
		return domain.ErrNotPrepared
	}

	if _, err := os.Stat(s.setupBinary); err != nil {
		return fmt.Errorf("%w: '%s'", domain.ErrSetupBinaryMissing, s.setupBinary)
	}

	manifests, err := s.manifests(ctx)
	if err != nil {
		return err
	}

	for _, manifest := range manifests {
		for _, class := range manifest.ClassNames {
			if err := s.deployClass(ctx, manifest, class); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ApplicationService) deployClass(ctx context.Context, manifest domain.Manifest, class string) error {
	eps, err := s.endpoints(ctx, manifest.Target, class)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		return fmt.Errorf("%w: %s '%s'", domain.ErrNoDeployTargets, manifest.Target, class)
	}

	cmd := fmt.Sprintf("%s --class %s --config %s",
		manifest.Command, class, path.Join(s.remoteDir, AppConfigName))

	for _, ep := range eps {
		if err := s.deployEndpoint(ctx, manifest, ep, cmd); err != nil {
			return fmt.Errorf("deploy to %s '%s' instance %d: %w",
				manifest.Target, ep.Class, ep.Instance, err)
		}
	}
	return nil
}

func (s *ApplicationService) deployEndpoint(ctx context.Context, manifest domain.Manifest, ep domain.Endpoint, cmd string) error {
	conn, err := s.connector.Connect(ctx, ep)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, file := range manifest.Files {
		mode := fs.FileMode(0o600)
		if file.Tag == "node-setup" {
			mode = 0o700
		}
		log.WithFields(log.Fields{
			"target": manifest.Target,
			"class":  ep.Class,
			"file":   file.Tag,
			"dest":   file.Dest,
		}).Info("copying file to target")
		if err := conn.Copy(ctx, file.Source, file.Dest, mode); err != nil {
			return fmt.Errorf("upload %s: %w", file.Tag, err)
		}
	}

	log.WithFields(log.Fields{
		"target": manifest.Target,
		"class":  ep.Class,
		"cmd":    cmd,
	}).Info("running setup command on target")
	if out, err := conn.Run(ctx, cmd); err != nil {
		return fmt.Errorf("run setup command: %w (output: %s)", err, out)
	}
	return nil
}

// Remove tears down what deploy installed on the targets, best effort per
// target.
func (s *ApplicationService) Remove(ctx context.Context) error {
	s.mu.Lock()
	prepared := s.prepared
	s.mu.Unlock()
	if !prepared {
		return domain.ErrNotPrepared
	}

	manifests, err := s.manifests(ctx)
	if err != nil {
		return err
	}

	for _, manifest := range manifests {
		for _, class := range manifest.ClassNames {
			eps, err := s.endpoints(ctx, manifest.Target, class)
			if err != nil {
				return err
			}
			for _, ep := range eps {
				if err := s.removeEndpoint(ctx, manifest, ep); err != nil {
					log.WithError(err).WithFields(log.Fields{
						"target":   manifest.Target,
						"class":    ep.Class,
						"instance": ep.Instance,
					}).Warn("remove failed on target")
				}
			}
		}
	}
	return nil
}

func (s *ApplicationService) removeEndpoint(ctx context.Context, manifest domain.Manifest, ep domain.Endpoint) error {
	conn, err := s.connector.Connect(ctx, ep)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, file := range manifest.Files {
		if _, err := conn.Run(ctx, "rm -f "+file.Dest); err != nil {
			return err
		}
	}
	return nil
}

// Verify reports the Kubernetes node readiness of the deployed CSM
// system.
func (s *ApplicationService) Verify(ctx context.Context) ([]domain.CSMNodeStatus, error) {
	if s.csm == nil || !s.csm.IsAvailable() {
		return nil, domain.ErrCSMNotAvailable
	}
	return s.csm.NodeStatuses(ctx)
}

// GetRun looks up one deployment run.
func (s *ApplicationService) GetRun(ctx context.Context, id uuid.UUID) (*domain.DeploymentRun, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns pages through the deployment run history, newest first.
func (s *ApplicationService) ListRuns(ctx context.Context, limit, offset int) ([]*domain.DeploymentRun, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.runs.List(ctx, limit, offset)
}
