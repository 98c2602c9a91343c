package commands

import (
	"context"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
)

// AccessMenuSelection opens the burger menu, then top, then sub and finally a side navigation option.
// Empty sub or option skip that level. Every entry must be visible before it is clicked.
func (c *Commands) AccessMenuSelection(ctx context.Context, top, sub, option string) error {
	c.log.V(1).Info("navigating", "menu", top, "sub", sub, "option", option)

	if err := c.BurgerMenuToggle(ctx); err != nil {
		return err
	}
	if err := c.AccessMenu(ctx, top); err != nil {
		return err
	}
	if sub != "" {
		if err := c.AccessMenu(ctx, sub); err != nil {
			return err
		}
	}
	if option != "" {
		if err := c.ClickNavMenu(ctx, option); err != nil {
			return err
		}
	}
	return nil
}

// NamespaceToggle restricts the cluster explorer to a single namespace.
func (c *Commands) NamespaceToggle(ctx context.Context, namespace string) error {
	if err := c.shouldBeVisible(ctx, nsFilter, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.driver.Click(ctx, nsFilter, browser.ClickOptions{Force: true}); err != nil {
		return err
	}

	if err := c.shouldExist(ctx, nsInput, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.driver.Type(ctx, nsInput, namespace); err != nil {
		return err
	}

	if err := c.selectScrolled(ctx, nsDropdownItem.Matching(browser.ExactPattern(namespace))); err != nil {
		return err
	}

	return c.forceClick(ctx, nsClose, c.timeouts.Command)
}

// FleetNamespaceToggle switches the Continuous Delivery views to a workspace, e.g. WorkspaceLocal.
func (c *Commands) FleetNamespaceToggle(ctx context.Context, workspace string) error {
	c.log.V(1).Info("switching workspace", "workspace", workspace)

	if err := c.click(ctx, workspaceMenu, c.timeouts.Menu); err != nil {
		return err
	}
	return c.selectScrolled(ctx, dropdownItem.Matching(browser.ExactPattern(workspace)))
}

// selectScrolled clicks a dropdown option that may be rendered outside the visible list area.
func (c *Commands) selectScrolled(ctx context.Context, option browser.Target) error {
	if err := c.shouldExist(ctx, option, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.driver.ScrollIntoView(ctx, option); err != nil {
		return err
	}
	return c.click(ctx, option, c.timeouts.Command)
}
