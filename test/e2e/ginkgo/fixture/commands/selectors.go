package commands

import (
	"regexp"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
)

// Dashboard DOM contract. Everything the commands locate is listed here.
var (
	burgerMenu   = browser.CSS("div.menu-icon")
	sideNav      = browser.CSS("nav.side-nav")
	body         = browser.CSS("body")
	button       = browser.CSS(".btn")
	searchBox    = browser.CSS("input.search-box")
	primaryLink  = browser.CSS("a.btn.role-primary")
	userAvatar   = browser.CSS(".user-image")
	dropdownItem = browser.CSS("ul.vs__dropdown-menu > li")

	// login and first setup
	loginUsername       = browser.CSS(`[data-testid="local-login-username"]`)
	loginPassword       = browser.CSS(`[data-testid="local-login-password"]`)
	loginSubmit         = browser.CSS(`[data-testid="login-submit"]`)
	setupSpecificPwd    = browser.CSS(`[data-testid="setup-password-mode"] label`).WithText("Set a specific password to use")
	setupPassword       = browser.CSS(`[data-testid="setup-password"] input`)
	setupPasswordRepeat = browser.CSS(`[data-testid="setup-password-confirm"] input`)
	setupAgreement      = browser.CSS(`[data-testid="setup-agreement"] .checkbox-custom`)
	setupSubmit         = browser.CSS(`[data-testid="setup-submit"]`)

	// lists
	tableFirstRow    = browser.CSS(`table > tbody > tr.main-row[data-testid="sortable-table-0-row"]`)
	mainRow          = browser.CSS("tr.main-row")
	rowActions       = browser.CSS(".icon.icon-actions")
	actionMenu       = browser.CSS(".list-unstyled.menu")
	actionMenuItem   = browser.CSS(".list-unstyled.menu > li > span")
	actionMenuActive = browser.CSS(".list-unstyled.menu > li:not(.disabled) > span")
	selectAll        = browser.CSS(`[width="30"] > .checkbox-outer-container.check`)
	columnHeader     = browser.CSS("th")

	// namespace filter and workspace switcher
	nsFilter       = browser.CSS(".top > .ns-filter")
	nsInput        = browser.CSS("div.ns-input input")
	nsDropdownItem = browser.CSS(".ns-dropdown-menu .ns-option")
	nsClose        = browser.CSS(".icon.icon-chevron-up")
	workspaceMenu  = browser.CSS(".workspace-switcher").WithText("fleet-")

	// git repo wizard
	wizardTitle      = browser.CSS(".title h1, .primaryheader h1").WithText("Git Repo:")
	pathInput        = browser.CSS(`input[placeholder="e.g. /directory/in/your/repo"]`)
	codeMirror       = browser.CSS("div.code-mirror.as-text-area")
	keepResources    = browser.CSS(".checkbox-outer-container.check").WithText("Always keep resources")
	correctDrift     = browser.CSS(`[data-testid="GitRepo-correctDrift-checkbox"] > .checkbox-container > .checkbox-custom`)
	previousButton   = browser.CSS("button.btn").WithText("Previous")
	errorBanner      = browser.CSS(`[data-testid="banner-content"] > span`)
	statusWidget     = browser.CSS("div.fleet-status")
	resourceTable    = browser.CSS(".sortable-table")
	bundleNameColumn = browser.CSS("td.col-link-detail")

	// import YAML dialog
	importYamlButton = browser.CSS("header button").WithText("Import YAML")
	importYamlTitle  = browser.CSS("div.card-title > h4").WithText("Import YAML")
	importYamlFile   = browser.CSS(`input[type="file"]`)
	importYamlImport = browser.CSS(`button[data-testid="import-yaml-import-action"]`)
	importYamlClose  = browser.CSS(`button[data-testid="import-yaml-close"]`)

	// role templates
	roleTemplateTab   = browser.CSS(".tabs .tab")
	addResourceButton = browser.CSS("button.btn").WithText("Add Resource")
	defaultRoleYes    = browser.CSS(`span[aria-label="Yes: Default role for new users"]`)
	formFooter        = browser.CSS("div.cru-resource-footer")
	standardUserRole  = browser.CSS(`span[aria-label="Standard User"]`)

	// resource pages
	detailLink       = browser.CSS(".col-link-detail")
	dataSection      = browser.CSS("section#data")
	servicePortInput = browser.CSS("input[type=number]")
	textError        = browser.CSS(".text-error")
)

// Literal dashboard texts.
const (
	textNoRepositories = "No repositories have been added"
	textNoRows         = "There are no rows to show."
	textBundlesReady   = "Bundles ready"
	textResourcesReady = "Resources ready"
	textActive         = "Active"
	textDelete         = "Delete"
	textEditConfig     = "Edit Config"
	textForceUpdate    = "Force Update"

	menuContinuousDelivery = "Continuous Delivery"
	menuGitRepos           = "Git Repos"
	menuUsersAndAuth       = "Users & Authentication"
	menuUsers              = "Users"
	menuRoleTemplates      = "Role Templates"
	menuWorkloads          = "Workloads"
	menuDeployments        = "Deployments"

	// WorkspaceLocal and WorkspaceDefault are the two built-in Fleet workspaces.
	WorkspaceLocal   = "fleet-local"
	WorkspaceDefault = "fleet-default"
)

// labeledInput is the input of the form field whose label is exactly label.
func labeledInput(label string) browser.Target {
	return browser.CSSf(`.labeled-input:has(> label:text-is(%q)) input, .labeled-input:has(> label:text-is(%q)) textarea`, label, label)
}

// tableRow is the n-th (zero-based) row of the current list.
func tableRow(n int) browser.Target {
	return browser.CSSf(`table > tbody > tr.main-row[data-testid="sortable-table-%d-row"]`, n)
}

// tableCell is a single cell of the current list.
func tableCell(row, col int) browser.Target {
	return browser.CSSf(`td[data-testid="sortable-cell-%d-%d"]`, row, col)
}

// rowNamed is the first list row containing name.
func rowNamed(name string) browser.Target {
	return mainRow.WithText(name)
}

// checkboxLabeled is the checkbox whose accessible label is exactly label.
func checkboxLabeled(label string) browser.Target {
	return browser.CSSf(`span[aria-label=%q]`, label)
}

// grantResource and grantVerbs are the dropdowns of the i-th rule of a role template.
func grantResource(i int) browser.Target {
	return browser.CSSf(`[data-testid="grant-resources-resources%d"] .vs__search`, i)
}

func grantVerbs(i int) browser.Target {
	return browser.CSSf(`[data-testid="grant-resources-verbs%d"] .vs__search`, i)
}

// keyValueKey is the key input of the i-th entry of a key/value editor.
func keyValueKey(i int) browser.Target {
	return browser.CSSf(`[data-testid="input-kv-item-key-%d"]`, i)
}

// anyCase matches text case-insensitively.
func anyCase(text string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(text))
}
