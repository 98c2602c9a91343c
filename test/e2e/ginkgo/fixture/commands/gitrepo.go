package commands

import (
	"context"
	"fmt"

	"github.com/onsi/gomega/gcustom"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/naming"
)

// Toggle is a checkbox request: unset leaves the box untouched, only Yes clicks it.
type Toggle string

const (
	ToggleUnset Toggle = ""
	ToggleYes   Toggle = "yes"
	ToggleNo    Toggle = "no"
)

// AuthScope selects which credentials block of the GitRepo form is filled.
type AuthScope string

const (
	AuthScopeGit  AuthScope = "Git"
	AuthScopeHelm AuthScope = "Helm"
)

// AuthType is the credential kind, matched case-insensitively against the auth dropdown options.
type AuthType string

const (
	AuthNone AuthType = ""
	AuthHTTP AuthType = "http"
	AuthSSH  AuthType = "ssh"
)

// GitRepoCredentials are interpreted according to AuthType.
type GitRepoCredentials struct {
	Username   string
	Password   string
	PublicKey  string
	PrivateKey string
}

// GitRepoConfig describes a GitRepo to register, or the fields to change when EditMode is set.
type GitRepoConfig struct {
	Name   string
	URL    string
	Branch string
	// Path is added through the repeatable "Add Path" field; empty means the repository root.
	Path string

	AuthScope   AuthScope
	AuthType    AuthType
	Credentials GitRepoCredentials
	// HelmURLRegex restricts which Helm repositories receive the Helm credentials.
	HelmURLRegex string

	KeepResources Toggle
	CorrectDrift  Toggle

	// Workspace defaults to WorkspaceLocal.
	Workspace string
	// EditMode force-updates the existing repo, waits until it is Active and opens its config. URL and
	// Branch are only typed on create.
	EditMode bool
}

func (g GitRepoConfig) workspace() string {
	if g.Workspace == "" {
		return WorkspaceLocal
	}
	return g.Workspace
}

// Validate rejects configurations the form cannot express.
func (g GitRepoConfig) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("gitrepo name is required")
	}
	if !g.EditMode && g.URL == "" {
		return fmt.Errorf("gitrepo %s: repository URL is required", g.Name)
	}
	switch g.AuthType {
	case AuthNone:
	case AuthHTTP:
		if g.Credentials.Username == "" || g.Credentials.Password == "" {
			return fmt.Errorf("gitrepo %s: http auth needs username and password", g.Name)
		}
	case AuthSSH:
		if g.Credentials.PublicKey == "" || g.Credentials.PrivateKey == "" {
			return fmt.Errorf("gitrepo %s: ssh auth needs public and private key", g.Name)
		}
	default:
		return fmt.Errorf("gitrepo %s: unknown auth type %q", g.Name, g.AuthType)
	}
	return nil
}

// OpenGitRepos navigates to Continuous Delivery > Git Repos of a workspace.
func (c *Commands) OpenGitRepos(ctx context.Context, workspace string) error {
	if err := c.AccessMenuSelection(ctx, menuContinuousDelivery, menuGitRepos, ""); err != nil {
		return err
	}
	return c.FleetNamespaceToggle(ctx, workspace)
}

// AddOrEditGitRepo fills the first page of the GitRepo wizard and moves to the second. The caller
// submits with ClickButton("Create") or ClickButton("Save").
func (c *Commands) AddOrEditGitRepo(ctx context.Context, repo GitRepoConfig) error {
	if err := repo.Validate(); err != nil {
		return err
	}

	c.log.Info("filling gitrepo form", "name", repo.Name, "workspace", repo.workspace(), "edit", repo.EditMode)

	if err := c.OpenGitRepos(ctx, repo.workspace()); err != nil {
		return err
	}

	if repo.EditMode {
		if err := c.ForceUpdate(ctx, repo.Name); err != nil {
			return err
		}
		if err := c.Open3dotsMenu(ctx, repo.Name, textEditConfig, false); err != nil {
			return err
		}
	} else {
		if err := c.ClickButton(ctx, "Add Repository"); err != nil {
			return err
		}
		if err := c.shouldBeVisible(ctx, wizardTitle, c.timeouts.Command); err != nil {
			return err
		}
		if err := c.TypeValue(ctx, "Name", repo.Name); err != nil {
			return err
		}
		// Edit Config keeps the source of the repo.
		if err := c.TypeValue(ctx, "Repository URL", repo.URL); err != nil {
			return err
		}
		if repo.Branch != "" {
			if err := c.TypeValue(ctx, "Branch Name", repo.Branch); err != nil {
				return err
			}
		}
	}

	if repo.Path != "" {
		if err := c.addPath(ctx, repo.Path); err != nil {
			return err
		}
	}

	if repo.AuthType != AuthNone {
		if err := c.gitRepoAuth(ctx, repo); err != nil {
			return err
		}
	}

	if repo.KeepResources == ToggleYes {
		if err := c.click(ctx, keepResources, c.timeouts.Command); err != nil {
			return err
		}
	}
	if repo.CorrectDrift == ToggleYes {
		if err := c.click(ctx, correctDrift, c.timeouts.Command); err != nil {
			return err
		}
	}

	if err := c.ClickButton(ctx, "Next"); err != nil {
		return err
	}
	return c.shouldBeVisible(ctx, previousButton, c.timeouts.Command)
}

// addPath adds one repository path through the repeatable path field.
func (c *Commands) addPath(ctx context.Context, path string) error {
	if err := c.ClickButton(ctx, "Add Path"); err != nil {
		return err
	}
	return c.fill(ctx, pathInput.Last(), path)
}

// gitRepoAuth selects the auth method and fills the matching credential fields.
func (c *Commands) gitRepoAuth(ctx context.Context, repo GitRepoConfig) error {
	scope := repo.AuthScope
	if scope == "" {
		scope = AuthScopeGit
	}

	if err := c.click(ctx, browser.Text(fmt.Sprintf("%s Authentication", scope)), c.timeouts.Command); err != nil {
		return err
	}
	option := dropdownItem.Matching(anyCase(string(repo.AuthType)))
	if err := c.click(ctx, option, c.timeouts.Command); err != nil {
		return err
	}

	if repo.HelmURLRegex != "" {
		if err := c.TypeValue(ctx, "Helm Repos (URL Regex)", repo.HelmURLRegex); err != nil {
			return err
		}
	}

	creds := repo.Credentials
	switch repo.AuthType {
	case AuthHTTP:
		if err := c.TypeValue(ctx, "Username", creds.Username); err != nil {
			return err
		}
		return c.TypeValue(ctx, "Password", creds.Password)
	case AuthSSH:
		// Field 0 takes the public key, field 1 the private key.
		if err := c.typeCode(ctx, codeMirror.Nth(0), creds.PublicKey); err != nil {
			return err
		}
		return c.typeCode(ctx, codeMirror.Nth(1), creds.PrivateKey)
	}
	return nil
}

// typeCode types into a code-mirror editor, which ignores Fill.
func (c *Commands) typeCode(ctx context.Context, editor browser.Target, value string) error {
	if err := c.click(ctx, editor, c.timeouts.Command); err != nil {
		return err
	}
	return c.driver.Type(ctx, editor, value)
}

// ForceUpdate triggers a redeploy of the repo and waits until its row reads Active again.
func (c *Commands) ForceUpdate(ctx context.Context, name string) error {
	if err := c.Open3dotsMenu(ctx, name, textForceUpdate, false); err != nil {
		return err
	}
	return c.verifyRowNamed(ctx, name, Contains(textActive), c.timeouts.Reconcile)
}

// CheckGitRepoStatus waits for the repo row to be Active, opens the repo and checks the bundle and
// resource summaries, e.g. "1 / 1" and "6 / 6". Empty summaries are not checked.
func (c *Commands) CheckGitRepoStatus(ctx context.Context, name, bundles, resources string) error {
	c.log.Info("checking gitrepo status", "name", name, "bundles", bundles, "resources", resources)

	if err := c.waitTablePopulated(ctx); err != nil {
		return err
	}
	if err := c.verifyRowNamed(ctx, name, Contains(textActive), c.timeouts.Reconcile); err != nil {
		return err
	}

	if err := c.click(ctx, browser.CSS("a").WithText(name).Within(rowNamed(name)), c.timeouts.Command); err != nil {
		return err
	}

	if bundles != "" {
		want := Contains(fmt.Sprintf(" %s %s ", bundles, textBundlesReady))
		if err := c.shouldHaveText(ctx, statusWidget.Nth(0), want, c.timeouts.Content); err != nil {
			return err
		}
	}
	if resources != "" {
		want := Contains(fmt.Sprintf(" %s %s ", resources, textResourcesReady))
		if err := c.shouldHaveText(ctx, statusWidget.Nth(1), want, c.timeouts.Content); err != nil {
			return err
		}
	}
	return nil
}

// CheckGitRepoResources checks that the open repo detail page lists every named resource.
func (c *Commands) CheckGitRepoResources(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := c.shouldBeVisible(ctx, browser.Text(name).Within(resourceTable), c.timeouts.Content); err != nil {
			return err
		}
	}
	return nil
}

// CheckBundleNameTrimmed checks that the bundle in row keeps the repo-name prefix and respects the
// bundle name length cap.
func (c *Commands) CheckBundleNameTrimmed(ctx context.Context, row int, repoName string) error {
	if err := c.waitTablePopulated(ctx); err != nil {
		return err
	}

	cell := bundleNameColumn.Within(tableRow(row))
	return c.shouldHaveText(ctx, cell, bundleNameOf(repoName), c.timeouts.Reconcile)
}

// CheckErrorBanner waits for the form error banner to contain every part.
func (c *Commands) CheckErrorBanner(ctx context.Context, parts ...string) error {
	var ms []TextMatcher
	for _, p := range parts {
		ms = append(ms, Contains(p))
	}
	return c.shouldHaveText(ctx, errorBanner, allOf(ms...), c.timeouts.Command)
}

// CheckGitRepoError waits until the open repo detail page reports an error containing text, e.g.
// "error code: 401" for rejected Helm credentials.
func (c *Commands) CheckGitRepoError(ctx context.Context, text string) error {
	return c.shouldHaveText(ctx, textError, Contains(text), c.timeouts.Reconcile)
}

// DeleteAllFleetRepos removes every GitRepo from both built-in workspaces.
func (c *Commands) DeleteAllFleetRepos(ctx context.Context) error {
	if err := c.AccessMenuSelection(ctx, menuContinuousDelivery, menuGitRepos, ""); err != nil {
		return err
	}

	for _, ws := range []string{WorkspaceLocal, WorkspaceDefault} {
		if err := c.FleetNamespaceToggle(ctx, ws); err != nil {
			return err
		}
		if err := c.DeleteAll(ctx, EmptyGitRepos); err != nil {
			return fmt.Errorf("unable to delete git repos in %s: %w", ws, err)
		}
	}
	return nil
}

// bundleNameOf matches a bundle name derived from repoName, see naming.IsTrimmedBundleName.
func bundleNameOf(repoName string) TextMatcher {
	return gcustom.MakeMatcher(func(text string) (bool, error) {
		return naming.IsTrimmedBundleName(text, repoName), nil
	}).WithMessage(fmt.Sprintf("be a bundle name of %q of at most %d characters", repoName, naming.MaxBundleNameLength))
}
