// Package fixture wires the browser session, the command set and the optional cluster side channel
// into the Ginkgo lifecycle of the Fleet UI suites.
package fixture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	//lint:ignore ST1001 "This is a common practice in Gomega tests for readability."
	. "github.com/onsi/ginkgo/v2" //nolint:all
	//lint:ignore ST1001 "This is a common practice in Gomega tests for readability."
	. "github.com/onsi/gomega" //nolint:all
	"github.com/onsi/gomega/format"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/commands"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/config"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/k8s"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/logger"
	osFixture "github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/os"
)

const (
	// fleetReadyTimeout bounds the wait for the Fleet controllers before the first scenario.
	fleetReadyTimeout = 3 * time.Minute

	// caseLabelPrefix prefixes the test case id in spec labels, e.g. "fleet-62".
	caseLabelPrefix = "fleet-"
)

// Suite is the state shared by every scenario of a suite process.
type Suite struct {
	Config   *config.Config
	Log      logr.Logger
	Session  *browser.Session
	Commands *commands.Commands
	// Kube is nil unless a kubeconfig is configured.
	Kube *k8s.Clients
}

var (
	current *Suite

	testReportLock sync.Mutex
	testReportMap  = map[string]testReportEntry{}
)

type testReportEntry struct {
	isOutputted bool
}

// ConfigureDefaults sets the Gomega defaults used by the UI suites.
func ConfigureDefaults() {
	// Increase the maximum length of debug output, for when tests fail
	format.MaxLength = 64 * 1024
	SetDefaultEventuallyTimeout(time.Second * 60)
	SetDefaultEventuallyPollingInterval(time.Second * 3)
	SetDefaultConsistentlyDuration(time.Second * 10)
	SetDefaultConsistentlyPollingInterval(time.Second * 1)
}

// SetupSuite loads the configuration, checks that Fleet is installed when a cluster is reachable and
// opens the browser session. It is meant to be called from BeforeSuite.
func SetupSuite(ctx context.Context) *Suite {
	ConfigureDefaults()

	cfg, err := config.Load(os.Getenv(config.FileEnvVar))
	Expect(err).ToNot(HaveOccurred(), "unable to load configuration")

	log := logger.New(cfg.LogLevel, GinkgoWriter)
	s := &Suite{Config: cfg, Log: log}

	if cfg.Kubeconfig != "" {
		s.Kube, err = k8s.NewClients(cfg.Kubeconfig)
		Expect(err).ToNot(HaveOccurred())

		missing, err := k8s.MissingFleetCRDs(ctx, s.Kube.Client)
		Expect(err).ToNot(HaveOccurred())
		Expect(missing).To(BeEmpty(), "Fleet CRDs are not installed")

		By("waiting for the Fleet controllers to be ready")
		Expect(k8s.WaitForDeploymentsReady(ctx, s.Kube.Client, k8s.FleetSystemNamespace, fleetReadyTimeout)).To(Succeed())
	}

	Expect(os.MkdirAll(cfg.ArtifactsDir, 0o755)).To(Succeed())

	s.Session, err = browser.Launch(browser.Options{
		Browser:       cfg.Browser.Name,
		Headless:      cfg.Browser.Headless,
		Width:         cfg.Browser.ViewportWidth,
		Height:        cfg.Browser.ViewportHeight,
		ActionTimeout: cfg.Timeouts.Command,
		Install:       cfg.Browser.InstallBrowsers,
	}, log)
	Expect(err).ToNot(HaveOccurred(), "unable to launch browser")

	s.Commands = commands.New(s.Session, cfg, log)

	log.Info("suite ready", "rancherURL", cfg.RancherURL, "rancherVersion", cfg.RancherVersion, "browser", cfg.Browser.Name)

	current = s
	return s
}

// TeardownSuite closes the browser session. It is meant to be called from AfterSuite.
func TeardownSuite() {
	if current == nil || current.Session == nil {
		return
	}
	Expect(current.Session.Close()).To(Succeed())
	current = nil
}

// Current returns the suite set up by SetupSuite.
func Current() *Suite {
	Expect(current).ToNot(BeNil(), "SetupSuite was not called")
	return current
}

// EnsureCleanSlate logs in as admin, opens the dashboard home page and deletes the GitRepos left
// behind in the Fleet workspaces.
func EnsureCleanSlate(ctx context.Context) {
	Expect(EnsureCleanSlateWithError(ctx)).To(Succeed())
}

func EnsureCleanSlateWithError(ctx context.Context) error {
	s := Current()

	// Page errors of a previous scenario must not be reported against this one.
	_ = s.Session.PageErrors()

	return resetToCleanSlate(ctx, s.Commands)
}

// EnsureLoggedIn is EnsureCleanSlate followed by a check that the side menu offers Cluster Management.
// The side menu is closed again afterwards.
func EnsureLoggedIn(ctx context.Context) {
	s := Current()
	_ = s.Session.PageErrors()

	Expect(loginWithCleanSlate(ctx, s.Commands)).To(Succeed())
}

func resetToCleanSlate(ctx context.Context, c commands.Verbs) error {
	if err := c.Login(ctx, commands.Admin); err != nil {
		return err
	}
	if err := c.Visit(ctx, "/"); err != nil {
		return err
	}
	return c.DeleteAllFleetRepos(ctx)
}

func loginWithCleanSlate(ctx context.Context, c commands.Verbs) error {
	if err := resetToCleanSlate(ctx, c); err != nil {
		return err
	}
	// DeleteAllFleetRepos leaves the Git Repos list open.
	if err := c.Visit(ctx, "/"); err != nil {
		return err
	}
	if err := c.BurgerMenuToggle(ctx); err != nil {
		return err
	}
	if err := c.CheckNavIcon(ctx, "cluster-management"); err != nil {
		return err
	}
	return c.BurgerMenuToggle(ctx)
}

// CheckPageErrors reports the uncaught dashboard errors seen during the spec. They fail the spec
// only when FailOnPageErrors is set.
func CheckPageErrors() {
	s := Current()

	errs := s.Session.PageErrors()
	if len(errs) == 0 {
		return
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	AddReportEntry("page errors", strings.Join(msgs, "\n"))

	if s.Config.FailOnPageErrors {
		Fail(fmt.Sprintf("%d uncaught page error(s):\n%s", len(errs), strings.Join(msgs, "\n")))
	}
}

// OutputDebugOnFail outputs a screenshot, the GitRepo states, the fleet-controller logs and the events
// of the given namespaces when the current spec failed. Each spec container is reported once.
func OutputDebugOnFail(ctx context.Context, namespaces ...string) {
	csr := CurrentSpecReport()

	s := Current()
	if !csr.Failed() || s.Config.SkipDebugOutput {
		return
	}

	testName := strings.Join(csr.ContainerHierarchyTexts, " ")
	testReportLock.Lock()
	defer testReportLock.Unlock()

	if debugOutput, exists := testReportMap[testName]; exists && debugOutput.isOutputted {
		// Skip output if we have already outputted once for this test
		return
	}
	testReportMap[testName] = testReportEntry{isOutputted: true}

	screenshot := filepath.Join(s.Config.ArtifactsDir, screenshotName(csr.FullText()))
	if err := s.Session.Screenshot(ctx, screenshot); err != nil {
		GinkgoWriter.Println("unable to take screenshot:", err)
	} else {
		AddReportEntry("screenshot", screenshot)
	}

	if s.Kube == nil {
		GinkgoWriter.Println("no kubeconfig configured, skipping cluster debug output")
		return
	}

	if len(namespaces) == 0 {
		namespaces = []string{commands.WorkspaceLocal, commands.WorkspaceDefault}
	}

	outputGitRepos(ctx, s)
	outputControllerLogs(ctx, s)

	for _, namespace := range namespaces {
		kubectlOutput, err := osFixture.Kubectl(ctx, s.Config.Kubeconfig, "get", "events", "-n", namespace)
		if err != nil {
			GinkgoWriter.Println("unable to get events for namespace", err, kubectlOutput)
			continue
		}
		printSection("'kubectl get events -n "+namespace+"':", kubectlOutput)
	}

	GinkgoWriter.Println("You can skip this debug output by setting 'SKIP_DEBUG_OUTPUT=true'")
}

func outputGitRepos(ctx context.Context, s *Suite) {
	states, err := k8s.ListGitRepos(ctx, s.Kube.Client, "")
	if err != nil {
		GinkgoWriter.Println("unable to list gitrepos", err)
		return
	}
	out, err := k8s.GitReposYAML(states)
	if err != nil {
		GinkgoWriter.Println("unable to render gitrepos", err)
		return
	}
	printSection("GitRepo states:", out)
}

func outputControllerLogs(ctx context.Context, s *Suite) {
	logs, err := k8s.ControllerLogs(ctx, s.Kube.Clientset, k8s.LogTailLines)
	if err != nil {
		GinkgoWriter.Println("unable to get fleet-controller logs", err)
		return
	}
	printSection(fmt.Sprintf("last %d lines of fleet-controller:", k8s.LogTailLines), logs)
}

func printSection(title, body string) {
	GinkgoWriter.Println("")
	GinkgoWriter.Println("----------------------------------------------------------------")
	GinkgoWriter.Println(title)
	GinkgoWriter.Println(body)
	GinkgoWriter.Println("----------------------------------------------------------------")
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// screenshotName turns a spec description into a file name.
func screenshotName(specText string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(specText, "_"), "_")
	if len(name) > 120 {
		name = name[:120]
	}
	if name == "" {
		name = "spec"
	}
	return name + ".png"
}

// Case labels a spec with its test case id, so `--label-filter=fleet-62` selects it.
func Case(id int) Labels {
	return Label(caseLabel(id))
}

func caseLabel(id int) string {
	return fmt.Sprintf("%s%d", caseLabelPrefix, id)
}

// caseIDs returns the test case labels among labels.
func caseIDs(labels []string) []string {
	var ids []string
	for _, l := range labels {
		if strings.HasPrefix(l, caseLabelPrefix) {
			ids = append(ids, l)
		}
	}
	return ids
}

// ReportCase logs the outcome of a spec against its test case ids. It is meant for ReportAfterEach.
func ReportCase(report SpecReport) {
	ids := caseIDs(report.Labels())
	if len(ids) == 0 {
		return
	}
	GinkgoWriter.Printf("test case %s: %s (%s)\n", strings.Join(ids, ","), report.State, report.RunTime.Round(time.Second))
}

// RequireRancherVersion skips the spec when the Rancher under test is older than minimum.
func RequireRancherVersion(minimum string) {
	ok, err := Current().Config.RancherVersionAtLeast(minimum)
	Expect(err).ToNot(HaveOccurred())
	if !ok {
		Skip(fmt.Sprintf("requires Rancher %s or newer, testing %s", minimum, Current().Config.RancherVersion))
	}
}

// RequireProvider returns the credentials of a private Git provider, skipping the spec when none are set.
func RequireProvider(name string) config.Credentials {
	creds, ok := Current().Config.Provider(name)
	if !ok || !creds.HasHTTP() {
		Skip(fmt.Sprintf("no credentials configured for %s", name))
	}
	return creds
}

// RequireSSHKeys skips the spec when the QA key pair is not configured.
func RequireSSHKeys() {
	if !Current().Config.HasSSHKeys() {
		Skip("no RSA key pair configured")
	}
}
