// The vtds-nodesetup command is pushed to Virtual Nodes and Virtual Blades
// during the deploy phase and applies the consolidated application
// configuration on the host it runs on.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"vtds-application-vshasta/internal/setup"
)

func main() {
	var opts setup.Options
	flag.StringVar(&opts.Target, "target", setup.TargetNode, "setup target: node or blade")
	flag.StringVar(&opts.Class, "class", "", "node or blade class being configured")
	flag.StringVar(&opts.ConfigPath, "config", "application_config.yaml", "path to the consolidated application configuration")
	flag.StringVar(&opts.HostsPath, "hosts-file", "", "hosts file to update (default /etc/hosts)")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "log actions without applying them")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := setup.NewRunner(opts)
	if err != nil {
		log.Errorf("setup init failed: %v", err)
		os.Exit(1)
	}

	log.WithFields(log.Fields{
		"target": opts.Target,
		"class":  opts.Class,
	}).Info("starting host setup")

	if err := runner.Run(ctx); err != nil {
		log.Errorf("setup failed: %v", err)
		os.Exit(1)
	}

	log.Info("host setup complete")
}
