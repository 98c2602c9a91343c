package commands

import (
	"context"
	"time"
)

// Verbs is the vocabulary scenarios are written in.
type Verbs interface {
	// session and generic UI
	Visit(ctx context.Context, path string) error
	Login(ctx context.Context, user TestUser) error
	Logout(ctx context.Context) error
	FirstLogin(ctx context.Context) error
	BurgerMenuToggle(ctx context.Context) error
	AccessMenu(ctx context.Context, label string) error
	ClickNavMenu(ctx context.Context, items ...string) error
	ClickButton(ctx context.Context, label string) error
	TypeValue(ctx context.Context, label, value string) error
	FilterInSearchBox(ctx context.Context, value string) error
	CheckNavIcon(ctx context.Context, name string) error
	CheckTextVisible(ctx context.Context, text string) error
	CheckTextAbsent(ctx context.Context, text string) error
	CheckPrimaryAction(ctx context.Context, label string) error
	CreateUser(ctx context.Context, user TestUser) error
	Wait(ctx context.Context, d time.Duration) error

	// navigation
	AccessMenuSelection(ctx context.Context, top, sub, option string) error
	NamespaceToggle(ctx context.Context, namespace string) error
	FleetNamespaceToggle(ctx context.Context, workspace string) error

	// lists
	VerifyTableRow(ctx context.Context, index int, text string, other TextMatcher) error
	VerifyTableCell(ctx context.Context, row, col int, m TextMatcher) error
	Open3dotsMenu(ctx context.Context, name, selection string, expectAbsent bool) error
	DeleteAll(ctx context.Context, empty EmptyState) error
	SortBy(ctx context.Context, column string) error
	RowCount(ctx context.Context) (int, error)

	// git repos
	OpenGitRepos(ctx context.Context, workspace string) error
	AddOrEditGitRepo(ctx context.Context, repo GitRepoConfig) error
	ForceUpdate(ctx context.Context, name string) error
	CheckGitRepoStatus(ctx context.Context, name, bundles, resources string) error
	CheckGitRepoResources(ctx context.Context, names ...string) error
	CheckBundleNameTrimmed(ctx context.Context, row int, repoName string) error
	CheckErrorBanner(ctx context.Context, parts ...string) error
	CheckGitRepoError(ctx context.Context, text string) error
	DeleteAllFleetRepos(ctx context.Context) error

	// applications and resources
	CheckApplicationStatus(ctx context.Context, appName, cluster string) error
	CheckApplicationAbsent(ctx context.Context, appName, cluster string) error
	ModifyDeployedApplication(ctx context.Context, appName, cluster string) error
	DeleteApplicationDeployment(ctx context.Context, cluster string) error
	ImportYaml(ctx context.Context, cluster, path string) error
	OpenResourceDetail(ctx context.Context, name string) error
	CheckResourceData(ctx context.Context, parts ...string) error
	EditResource(ctx context.Context, edit ResourceEdit) error

	// rbac
	CreateRoleTemplate(ctx context.Context, role RoleTemplateSpec) error
	AssignRoleToUser(ctx context.Context, username, roleName string) error
}

var _ Verbs = &Commands{}
