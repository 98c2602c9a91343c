// Package config loads the immutable settings of an E2E run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/mod/semver"
)

const (
	// FileEnvVar points to an optional YAML file layered between defaults and the environment.
	FileEnvVar = "E2E_CONFIG"

	DefaultRancherURL = "https://localhost:8005"
)

// Provider names accepted by (*Config).Provider.
const (
	ProviderGitHub    = "github"
	ProviderGitLab    = "gitlab"
	ProviderBitbucket = "bitbucket"
	ProviderAzure     = "azure"
)

// Timeouts holds the polling tiers used by the UI commands.
type Timeouts struct {
	// Command is the default wait for an element to appear.
	Command time.Duration `koanf:"command"`
	// Menu covers menus and navigation entries, which render after an API round trip.
	Menu time.Duration `koanf:"menu"`
	// TablePopulation is how long a list may stay empty after navigation.
	TablePopulation time.Duration `koanf:"table_population"`
	// Content covers workload lists and status widgets.
	Content time.Duration `koanf:"content"`
	// Reconcile covers table rows that depend on the GitOps controller converging.
	Reconcile time.Duration `koanf:"reconcile"`
	// Deletion covers bulk deletion of list rows.
	Deletion time.Duration `koanf:"deletion"`
	// Poll is the interval between two checks.
	Poll time.Duration `koanf:"poll"`
}

// Credentials for a private Git or Helm source.
type Credentials struct {
	RepoURL    string `koanf:"repo_url"`
	SSHRepoURL string `koanf:"ssh_repo_url"`
	Branch     string `koanf:"branch"`
	Path       string `koanf:"path"`
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
}

// HasHTTP reports whether username and password are both set.
func (c Credentials) HasHTTP() bool {
	return c.Username != "" && c.Password != ""
}

// Browser settings for the playwright session.
type Browser struct {
	Name           string `koanf:"name"`
	Headless       bool   `koanf:"headless"`
	ViewportWidth  int    `koanf:"viewport_width"`
	ViewportHeight int    `koanf:"viewport_height"`
	// InstallBrowsers downloads the playwright driver and browser on first launch.
	InstallBrowsers bool `koanf:"install_browsers"`
}

// Config is built once per suite by Load and never mutated afterwards.
type Config struct {
	RancherURL      string `koanf:"rancher_url"`
	RancherUser     string `koanf:"rancher_user"`
	RancherPassword string `koanf:"rancher_password"`
	// RancherVersion uses the install format "channel/version/head", e.g. "latest/devel/2.8".
	RancherVersion string `koanf:"rancher_version"`
	ClusterName    string `koanf:"cluster_name"`
	// DownstreamClusterName is the cluster targeted by multi-cluster scenarios.
	DownstreamClusterName string `koanf:"ds_cluster_name"`
	K8sVersion            string `koanf:"k8s_version"`
	CacheSession          bool   `koanf:"cache_session"`
	Kubeconfig            string `koanf:"kubeconfig"`
	SkipDebugOutput       bool   `koanf:"skip_debug_output"`
	FailOnPageErrors      bool   `koanf:"fail_on_page_errors"`
	ArtifactsDir          string `koanf:"artifacts_dir"`
	LogLevel              string `koanf:"log_level"`

	RSAPublicKey  string `koanf:"rsa_public_key"`
	RSAPrivateKey string `koanf:"rsa_private_key"`

	Providers map[string]Credentials `koanf:"providers"`
	Browser   Browser                `koanf:"browser"`
	Timeouts  Timeouts               `koanf:"timeouts"`
}

// Defaults returns the settings used when neither file nor environment override them.
func Defaults() Config {
	return Config{
		RancherURL:            DefaultRancherURL,
		RancherUser:           "admin",
		ClusterName:           "local",
		DownstreamClusterName: "imported-0",
		RancherVersion:        "latest/devel/2.9",
		CacheSession:          false,
		ArtifactsDir:          "artifacts",
		LogLevel:              "info",
		Providers: map[string]Credentials{
			ProviderGitHub: {
				RepoURL:    "https://github.com/fleetqa/fleet-qa-examples.git",
				SSHRepoURL: "git@github.com:fleetqa/fleet-qa-examples.git",
				Branch:     "main",
				Path:       "simple-chart",
			},
			ProviderGitLab: {
				RepoURL:    "https://gitlab.com/fleetqa/fleet-qa-examples.git",
				SSHRepoURL: "git@gitlab.com:fleetqa/fleet-qa-examples.git",
				Branch:     "main",
				Path:       "simple-chart",
			},
			ProviderBitbucket: {
				RepoURL:    "https://bitbucket.org/fleetqa-bb/fleet-qa-examples.git",
				SSHRepoURL: "git@bitbucket.org:fleetqa-bb/fleet-qa-examples.git",
				Branch:     "main",
				Path:       "simple-chart",
			},
			ProviderAzure: {
				RepoURL:    "https://dev.azure.com/fleetqateam/fleet-qa-examples/_git/fleet-qa-examples",
				SSHRepoURL: "git@ssh.dev.azure.com:v3/fleetqateam/fleet-qa-examples/fleet-qa-examples",
				Branch:     "main",
				Path:       "simple-chart",
			},
		},
		Browser: Browser{
			Name:           "chromium",
			Headless:       true,
			ViewportWidth:  1314,
			ViewportHeight: 954,
		},
		Timeouts: Timeouts{
			Command:         10 * time.Second,
			Menu:            15 * time.Second,
			TablePopulation: 25 * time.Second,
			Content:         60 * time.Second,
			Reconcile:       180 * time.Second,
			Deletion:        20 * time.Second,
			Poll:            250 * time.Millisecond,
		},
	}
}

// envKeys maps flat environment variable names onto config keys.
var envKeys = map[string]string{
	"RANCHER_URL":              "rancher_url",
	"RANCHER_USER":             "rancher_user",
	"RANCHER_PASSWORD":         "rancher_password",
	"RANCHER_VERSION":          "rancher_version",
	"CLUSTER_NAME":             "cluster_name",
	"DS_CLUSTER_NAME":          "ds_cluster_name",
	"K8S_VERSION_TO_PROVISION": "k8s_version",
	"CACHE_SESSION":            "cache_session",
	"KUBECONFIG":               "kubeconfig",
	"SKIP_DEBUG_OUTPUT":        "skip_debug_output",
	"FAIL_ON_PAGE_ERRORS":      "fail_on_page_errors",
	"ARTIFACTS_DIR":            "artifacts_dir",
	"LOG_LEVEL":                "log_level",
	"HEADLESS":                 "browser.headless",
	"BROWSER":                  "browser.name",
	"INSTALL_BROWSERS":         "browser.install_browsers",
	"RSA_PUBLIC_KEY_QA":        "rsa_public_key",
	"RSA_PRIVATE_KEY_QA":       "rsa_private_key",
	"GH_PRIVATE_USER":          "providers.github.username",
	"GH_PRIVATE_PWD":           "providers.github.password",
	"GITLAB_PRIVATE_USER":      "providers.gitlab.username",
	"GITLAB_PRIVATE_PWD":       "providers.gitlab.password",
	"BB_PRIVATE_USER":          "providers.bitbucket.username",
	"BB_PRIVATE_PWD":           "providers.bitbucket.password",
	"AZURE_PRIVATE_USER":       "providers.azure.username",
	"AZURE_PRIVATE_PWD":        "providers.azure.password",
}

// Load builds a Config from defaults, the optional YAML file at path, then the environment.
// An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", func(name, value string) (string, any) {
		key, ok := envKeys[name]
		if !ok || value == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.RancherURL = strings.TrimRight(cfg.RancherURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would make every scenario fail.
func (c *Config) Validate() error {
	var errs []error

	if c.RancherURL == "" {
		errs = append(errs, errors.New("rancher_url is required"))
	} else if !strings.HasPrefix(c.RancherURL, "http://") && !strings.HasPrefix(c.RancherURL, "https://") {
		errs = append(errs, fmt.Errorf("rancher_url must be an http(s) URL: %q", c.RancherURL))
	}

	if c.K8sVersion != "" && !semver.IsValid(canonicalK8s(c.K8sVersion)) {
		errs = append(errs, fmt.Errorf("k8s_version is not a valid version: %q", c.K8sVersion))
	}

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("browser viewport must be positive"))
	}

	t := c.Timeouts
	for name, d := range map[string]time.Duration{
		"command":          t.Command,
		"menu":             t.Menu,
		"table_population": t.TablePopulation,
		"content":          t.Content,
		"reconcile":        t.Reconcile,
		"deletion":         t.Deletion,
		"poll":             t.Poll,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timeouts.%s must be positive", name))
		}
	}
	if t.Poll > 0 && t.Command > 0 && t.Poll >= t.Command {
		errs = append(errs, errors.New("timeouts.poll must be shorter than timeouts.command"))
	}

	return errors.Join(errs...)
}

// URL joins the Rancher base URL with a dashboard path.
func (c *Config) URL(path string) string {
	if path == "" {
		return c.RancherURL + "/"
	}
	return c.RancherURL + "/" + strings.TrimLeft(path, "/")
}

// Provider returns the credentials for one of the Provider* names.
func (c *Config) Provider(name string) (Credentials, bool) {
	creds, ok := c.Providers[name]
	return creds, ok
}

// HasSSHKeys reports whether both halves of the QA key pair are configured.
func (c *Config) HasSSHKeys() bool {
	return c.RSAPublicKey != "" && c.RSAPrivateKey != ""
}

// RancherServerVersion returns the version part of RancherVersion, or "" when it is a moving channel.
func (c *Config) RancherServerVersion() string {
	parts := strings.Split(c.RancherVersion, "/")
	v := parts[len(parts)-1]
	if _, err := goversion.NewVersion(v); err != nil {
		return ""
	}
	return v
}

// RancherVersionAtLeast reports whether the Rancher under test is at least minimum.
// Channel heads that carry no version ("devel", "latest") are treated as the newest release.
func (c *Config) RancherVersionAtLeast(minimum string) (bool, error) {
	want, err := goversion.NewVersion(minimum)
	if err != nil {
		return false, fmt.Errorf("invalid minimum version %q: %w", minimum, err)
	}

	v := c.RancherServerVersion()
	if v == "" {
		return true, nil
	}

	have, err := goversion.NewVersion(v)
	if err != nil {
		return false, err
	}
	return have.GreaterThanOrEqual(want), nil
}

// K8sMajorMinor returns e.g. "v1.30" for "v1.30.4+k3s1", or "" when no version is configured.
func (c *Config) K8sMajorMinor() string {
	if c.K8sVersion == "" {
		return ""
	}
	return semver.MajorMinor(canonicalK8s(c.K8sVersion))
}

func canonicalK8s(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
