/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command preflight checks that an environment can run the Fleet UI suites: the configuration loads,
// the manifests used by the import scenarios are valid and, when a kubeconfig is given, Fleet is
// installed and ready.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/commands"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/config"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/k8s"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/logger"
)

type options struct {
	configPath string
	kubeconfig string
	manifests  string
	wait       time.Duration
}

func main() {
	var opts options

	flag.StringVar(&opts.configPath, "config", os.Getenv(config.FileEnvVar), "Optional YAML file layered between defaults and the environment.")
	flag.StringVar(&opts.kubeconfig, "kubeconfig", "", "Kubeconfig of the Rancher local cluster. Overrides KUBECONFIG.")
	flag.StringVar(&opts.manifests, "manifests", "test/e2e/assets/helm-server-with-auth-and-data.yaml", "Comma separated manifests to validate.")
	flag.DurationVar(&opts.wait, "wait", 3*time.Minute, "How long to wait for the Fleet controllers to become ready.")

	zapOpts := zap.Options{
		Development: true,
		Level:       logger.Level(os.Getenv("LOG_LEVEL")),
		TimeEncoder: zapcore.RFC3339TimeEncoder,
	}
	zapOpts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))
	setupLog := ctrl.Log.WithName("preflight")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts, setupLog); err != nil {
		setupLog.Error(err, "preflight failed")
		os.Exit(1)
	}
	setupLog.Info("environment is ready")
}

func run(ctx context.Context, opts options, log logr.Logger) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.kubeconfig != "" {
		cfg.Kubeconfig = opts.kubeconfig
	}

	log.Info("configuration loaded",
		"rancherURL", cfg.RancherURL,
		"rancherVersion", cfg.RancherVersion,
		"k8s", cfg.K8sMajorMinor(),
		"browser", cfg.Browser.Name,
		"sshKeys", cfg.HasSSHKeys())

	for _, name := range []string{config.ProviderGitHub, config.ProviderGitLab, config.ProviderBitbucket, config.ProviderAzure} {
		if creds, ok := cfg.Provider(name); !ok || !creds.HasHTTP() {
			log.Info("private provider scenarios will be skipped", "provider", name)
		}
	}

	var errs []error
	for _, path := range splitList(opts.manifests) {
		if err := commands.ValidateManifest(path); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.Kubeconfig == "" {
		log.Info("no kubeconfig configured, skipping cluster checks")
		return errors.Join(errs...)
	}

	clients, err := k8s.NewClients(cfg.Kubeconfig)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if err := checkCluster(ctx, clients.Client, opts.wait, log); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// checkCluster verifies the Fleet CRDs and controllers and reports GitRepos a previous run left behind.
func checkCluster(ctx context.Context, c client.Client, wait time.Duration, log logr.Logger) error {
	missing, err := k8s.MissingFleetCRDs(ctx, c)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("fleet CRDs are not installed: %s", strings.Join(missing, ", "))
	}

	if err := k8s.WaitForDeploymentsReady(ctx, c, k8s.FleetSystemNamespace, wait); err != nil {
		return fmt.Errorf("fleet controllers are not ready: %w", err)
	}

	for _, ws := range []string{commands.WorkspaceLocal, commands.WorkspaceDefault} {
		states, err := k8s.ListGitRepos(ctx, c, ws)
		if err != nil {
			return err
		}
		for _, s := range states {
			// Scenarios delete these on start; they usually point at an aborted run.
			log.Info("leftover gitrepo", "gitrepo", s.String())
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
