// Package setup implements the per-host configuration run by the deploy
// phase on Virtual Nodes and Virtual Blades. The binary is copied out to
// each host along with the consolidated application configuration and run
// remotely over SSH.
package setup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"vtds-application-vshasta/internal/core/domain"
)

const (
	// TargetNode configures a Virtual Node host.
	TargetNode = "node"
	// TargetBlade configures a Virtual Blade host.
	TargetBlade = "blade"

	hostsFile   = "/etc/hosts"
	hostsMarker = "# Added by vTDS Application Layer Deployment"
)

// Options carries the command line settings for one setup run.
type Options struct {
	Target     string
	Class      string
	ConfigPath string
	HostsPath  string // defaults to /etc/hosts
	DryRun     bool
}

// Runner applies the configured setup steps to the local host.
type Runner struct {
	opts Options
	cfg  *domain.AppConfig
}

// NewRunner loads the application configuration named by opts and returns
// a Runner ready to apply it.
func NewRunner(opts Options) (*Runner, error) {
	switch opts.Target {
	case TargetNode, TargetBlade:
	default:
		return nil, fmt.Errorf("unknown setup target %q", opts.Target)
	}
	if opts.HostsPath == "" {
		opts.HostsPath = hostsFile
	}

	cfg, err := domain.LoadAppConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load application config: %w", err)
	}
	return &Runner{opts: opts, cfg: cfg}, nil
}

// Run applies the host map and, on Virtual Nodes, installs the configured
// Debian packages.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.applyHostMap(); err != nil {
		return err
	}
	if r.opts.Target == TargetNode {
		if err := r.installPackages(ctx); err != nil {
			return err
		}
	}
	return nil
}

// applyHostMap appends the cluster wide hostname map to the hosts file so
// every host can resolve every other host by name. The append is skipped
// when the marker from a previous run is already present.
func (r *Runner) applyHostMap() error {
	if len(r.cfg.HostIPv4Map) == 0 {
		log.Info("no host map in configuration, skipping hosts file update")
		return nil
	}

	existing, err := os.ReadFile(r.opts.HostsPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", r.opts.HostsPath, err)
	}
	if strings.Contains(string(existing), hostsMarker) {
		log.Info("hosts file already contains the cluster host map")
		return nil
	}

	var b strings.Builder
	b.WriteString(hostsMarker + "\n")
	hostnames := make([]string, 0, len(r.cfg.HostIPv4Map))
	for hostname := range r.cfg.HostIPv4Map {
		hostnames = append(hostnames, hostname)
	}
	sort.Strings(hostnames)
	for _, hostname := range hostnames {
		fmt.Fprintf(&b, "%-15.15s %s\n", r.cfg.HostIPv4Map[hostname], hostname)
	}

	if r.opts.DryRun {
		log.Infof("dry run: would append %d host entries to %s", len(hostnames), r.opts.HostsPath)
		return nil
	}

	f, err := os.OpenFile(r.opts.HostsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.opts.HostsPath, err)
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append host map to %s: %w", r.opts.HostsPath, err)
	}

	log.Infof("appended %d host entries to %s", len(hostnames), r.opts.HostsPath)
	return nil
}

// installPackages runs apt-get for the Debian packages named in the
// application configuration.
func (r *Runner) installPackages(ctx context.Context) error {
	packages := r.cfg.DebianPackages
	if len(packages) == 0 {
		log.Info("no debian packages configured")
		return nil
	}

	if r.opts.DryRun {
		log.Infof("dry run: would install packages %s", strings.Join(packages, " "))
		return nil
	}

	if err := r.runApt(ctx, "update"); err != nil {
		return fmt.Errorf("apt-get update: %w", err)
	}
	args := append([]string{"install", "-y"}, packages...)
	if err := r.runApt(ctx, args...); err != nil {
		return fmt.Errorf("apt-get install: %w", err)
	}

	log.Infof("installed %d debian packages", len(packages))
	return nil
}

func (r *Runner) runApt(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "apt-get", args...)
	cmd.Env = append(os.Environ(),
		"DEBIAN_FRONTEND=noninteractive",
		"NEEDRESTART_MODE=a",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 30 * time.Second

	log.Infof("running apt-get %s", strings.Join(args, " "))
	return cmd.Run()
}
