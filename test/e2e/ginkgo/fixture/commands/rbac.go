package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/config"
)

// StandardUserRole is the global role the user form preselects.
const StandardUserRole = "Standard User"

// dropdownSettle is how long role template dropdowns ignore input after the form renders.
const dropdownSettle = 500 * time.Millisecond

// TestUser is a dashboard identity. The default admin takes its credentials from the configuration.
type TestUser struct {
	Username string
	Password string
	// DisplayRoleLabel is the global role selected at creation, StandardUserRole when empty.
	DisplayRoleLabel string
	IsDefaultAdmin   bool
}

// Admin is the configured administrator.
var Admin = TestUser{IsDefaultAdmin: true}

func (u TestUser) credentials(cfg *config.Config) (string, string) {
	if u.IsDefaultAdmin {
		return cfg.RancherUser, cfg.RancherPassword
	}
	return u.Username, u.Password
}

// RoleScope is the role template tab a template is created in.
type RoleScope string

const (
	RoleScopeGlobal  RoleScope = "Global"
	RoleScopeCluster RoleScope = "Cluster"
	RoleScopeProject RoleScope = "Project"
)

// Verbs granted by role template rules.
const (
	VerbCreate = "create"
	VerbDelete = "delete"
	VerbGet    = "get"
	VerbList   = "list"
	VerbPatch  = "patch"
	VerbUpdate = "update"
	VerbWatch  = "watch"
)

// AllVerbs is every verb the grant form offers.
var AllVerbs = []string{VerbCreate, VerbDelete, VerbGet, VerbList, VerbPatch, VerbUpdate, VerbWatch}

// Rule grants verbs on one resource.
type Rule struct {
	Resource string
	Verbs    []string
}

// RoleTemplateSpec describes a custom role template.
type RoleTemplateSpec struct {
	Scope RoleScope
	Name  string
	Rules []Rule
	// IsDefault makes the role the default for new users.
	IsDefault bool
}

// Validate rejects templates with missing names, empty rules or repeated verbs.
func (r RoleTemplateSpec) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("role template name is required")
	}
	switch r.Scope {
	case RoleScopeGlobal, RoleScopeCluster, RoleScopeProject:
	default:
		return fmt.Errorf("role template %s: unknown scope %q", r.Name, r.Scope)
	}
	if len(r.Rules) == 0 {
		return fmt.Errorf("role template %s: at least one rule is required", r.Name)
	}

	var errs []error
	for i, rule := range r.Rules {
		if rule.Resource == "" {
			errs = append(errs, fmt.Errorf("rule %d: resource is required", i))
		}
		if len(rule.Verbs) == 0 {
			errs = append(errs, fmt.Errorf("rule %d (%s): at least one verb is required", i, rule.Resource))
		}
		if seen := sets.New(rule.Verbs...); seen.Len() != len(rule.Verbs) {
			errs = append(errs, fmt.Errorf("rule %d (%s): duplicate verbs in %v", i, rule.Resource, rule.Verbs))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("role template %s: %w", r.Name, err)
	}
	return nil
}

// CreateRoleTemplate creates a role template. For each rule the resource is chosen and confirmed
// before its verbs are selected.
func (c *Commands) CreateRoleTemplate(ctx context.Context, role RoleTemplateSpec) error {
	if err := role.Validate(); err != nil {
		return err
	}

	c.log.Info("creating role template", "name", role.Name, "scope", role.Scope, "rules", len(role.Rules))

	if err := c.AccessMenuSelection(ctx, menuUsersAndAuth, menuRoleTemplates, ""); err != nil {
		return err
	}
	if err := c.click(ctx, roleTemplateTab.WithText(string(role.Scope)), c.timeouts.Menu); err != nil {
		return err
	}
	if err := c.ClickButton(ctx, "Create "+string(role.Scope)); err != nil {
		return err
	}
	if err := c.TypeValue(ctx, "Name", role.Name); err != nil {
		return err
	}
	if role.IsDefault {
		if err := c.forceClick(ctx, defaultRoleYes, c.timeouts.Command); err != nil {
			return err
		}
	}

	for i, rule := range role.Rules {
		if err := c.Wait(ctx, dropdownSettle); err != nil {
			return err
		}
		if err := c.pick(ctx, grantResource(i), rule.Resource, rule.Resource); err != nil {
			return fmt.Errorf("rule %d: resource %s: %w", i, rule.Resource, err)
		}
		if err := c.click(ctx, addResourceButton, c.timeouts.Command); err != nil {
			return err
		}
		for _, verb := range rule.Verbs {
			if err := c.pick(ctx, grantVerbs(i), "", verb); err != nil {
				return fmt.Errorf("rule %d: verb %s: %w", i, verb, err)
			}
		}
	}

	if err := c.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	return c.shouldNotExist(ctx, formFooter, c.timeouts.Content)
}

// AssignRoleToUser adds the global role roleName to an existing user.
func (c *Commands) AssignRoleToUser(ctx context.Context, username, roleName string) error {
	c.log.Info("assigning role", "user", username, "role", roleName)

	if err := c.AccessMenuSelection(ctx, menuUsersAndAuth, menuUsers, ""); err != nil {
		return err
	}
	if err := c.FilterInSearchBox(ctx, username); err != nil {
		return err
	}
	if err := c.Open3dotsMenu(ctx, username, textEditConfig, false); err != nil {
		return err
	}
	if err := c.Wait(ctx, dropdownSettle); err != nil {
		return err
	}

	role := checkboxLabeled(roleName)
	if err := c.shouldExist(ctx, role, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.driver.ScrollIntoView(ctx, role); err != nil {
		return err
	}
	if err := c.click(ctx, role, c.timeouts.Command); err != nil {
		return err
	}

	if err := c.ClickButton(ctx, "Save"); err != nil {
		return err
	}
	// Sorting by age puts the edited user first.
	if err := c.SortBy(ctx, "Age"); err != nil {
		return err
	}
	return c.VerifyTableRow(ctx, 0, textActive, Contains(username))
}
