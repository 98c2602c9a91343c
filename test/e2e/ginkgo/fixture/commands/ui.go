package commands

import (
	"context"
	"fmt"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/wait"
)

// Visit loads a dashboard path, e.g. "/" or "/dashboard/c/local/explorer".
func (c *Commands) Visit(ctx context.Context, path string) error {
	return c.driver.Navigate(ctx, c.cfg.URL(path))
}

// Login logs user into the dashboard. With session caching on, logging in again as the current user
// only reloads the home page.
func (c *Commands) Login(ctx context.Context, user TestUser) error {
	username, password := user.credentials(c.cfg)

	if c.cfg.CacheSession && c.loggedInAs == username {
		c.log.V(1).Info("reusing session", "user", username)
		return c.Visit(ctx, "/")
	}

	if c.loggedInAs != "" {
		if err := c.Logout(ctx); err != nil {
			return fmt.Errorf("unable to end session of %s: %w", c.loggedInAs, err)
		}
	}

	c.log.Info("logging in", "user", username)

	if err := c.Visit(ctx, "/auth/login"); err != nil {
		return err
	}
	if err := c.fill(ctx, loginUsername, username); err != nil {
		return err
	}
	if err := c.fill(ctx, loginPassword, password); err != nil {
		return err
	}
	if err := c.click(ctx, loginSubmit, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.shouldBeVisible(ctx, burgerMenu, c.timeouts.Menu); err != nil {
		return fmt.Errorf("login as %s did not reach the dashboard: %w", username, err)
	}

	c.loggedInAs = username
	return nil
}

// Logout ends the current dashboard session.
func (c *Commands) Logout(ctx context.Context) error {
	if err := c.click(ctx, userAvatar, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.click(ctx, browser.Text("Log Out"), c.timeouts.Command); err != nil {
		return err
	}
	if err := c.shouldBeVisible(ctx, loginUsername, c.timeouts.Menu); err != nil {
		return err
	}

	c.loggedInAs = ""
	return nil
}

// FirstLogin logs in with the bootstrap password and completes the first-run setup page when shown.
// The configured admin password is kept as the permanent one.
func (c *Commands) FirstLogin(ctx context.Context) error {
	c.log.Info("performing first login", "user", c.cfg.RancherUser)

	if err := c.Visit(ctx, "/auth/login"); err != nil {
		return err
	}

	hasUsername, err := c.exists(ctx, loginUsername)
	if err != nil {
		return err
	}
	if hasUsername {
		if err := c.fill(ctx, loginUsername, c.cfg.RancherUser); err != nil {
			return err
		}
	}
	if err := c.fill(ctx, loginPassword, c.cfg.RancherPassword); err != nil {
		return err
	}
	if err := c.click(ctx, loginSubmit, c.timeouts.Command); err != nil {
		return err
	}

	// Either the setup page or, when setup was already done, the dashboard shows up.
	setup, err := wait.Until(ctx, func(ctx context.Context) (bool, bool, error) {
		onSetup, err := c.exists(ctx, setupSubmit)
		if err != nil || onSetup {
			return onSetup, onSetup, err
		}
		onDashboard, err := c.driver.Visible(ctx, burgerMenu)
		return false, onDashboard, err
	}, c.waitOpts(c.timeouts.Menu, "setup page or dashboard after first login")...)
	if err != nil {
		return err
	}

	if setup {
		if err := c.forceClick(ctx, setupSpecificPwd, c.timeouts.Command); err != nil {
			return err
		}
		if err := c.fill(ctx, setupPassword, c.cfg.RancherPassword); err != nil {
			return err
		}
		if err := c.fill(ctx, setupPasswordRepeat, c.cfg.RancherPassword); err != nil {
			return err
		}
		if err := c.forceClick(ctx, setupAgreement, c.timeouts.Command); err != nil {
			return err
		}
		if err := c.click(ctx, setupSubmit, c.timeouts.Command); err != nil {
			return err
		}
		if err := c.shouldBeVisible(ctx, burgerMenu, c.timeouts.Menu); err != nil {
			return err
		}
	}

	c.loggedInAs = c.cfg.RancherUser
	return nil
}

// BurgerMenuToggle opens or closes the global side menu.
func (c *Commands) BurgerMenuToggle(ctx context.Context) error {
	return c.click(ctx, burgerMenu, c.timeouts.Menu)
}

// AccessMenu clicks the first menu entry containing label.
func (c *Commands) AccessMenu(ctx context.Context, label string) error {
	return c.click(ctx, browser.Text(label), c.timeouts.Menu)
}

// ClickNavMenu clicks the given side navigation entries in order.
func (c *Commands) ClickNavMenu(ctx context.Context, items ...string) error {
	for _, item := range items {
		if err := c.click(ctx, browser.Text(item).Within(sideNav), c.timeouts.Menu); err != nil {
			return err
		}
	}
	return nil
}

// ClickButton clicks the first button containing label.
func (c *Commands) ClickButton(ctx context.Context, label string) error {
	return c.click(ctx, button.WithText(label), c.timeouts.Command)
}

// TypeValue fills the form field labelled exactly label.
func (c *Commands) TypeValue(ctx context.Context, label, value string) error {
	return c.fill(ctx, labeledInput(label), value)
}

// FilterInSearchBox types value into the list search box.
func (c *Commands) FilterInSearchBox(ctx context.Context, value string) error {
	return c.fill(ctx, searchBox, value)
}

// CheckTextVisible waits until an element containing text is visible.
func (c *Commands) CheckTextVisible(ctx context.Context, text string) error {
	return c.shouldBeVisible(ctx, browser.Text(text), c.timeouts.Content)
}

// CheckTextAbsent waits until no element shows text. Used to assert what a restricted user cannot see.
func (c *Commands) CheckTextAbsent(ctx context.Context, text string) error {
	return c.shouldNotExist(ctx, browser.Text(text), c.timeouts.Command)
}

// CheckPrimaryAction asserts the list header offers the primary action label, e.g. "Create".
func (c *Commands) CheckPrimaryAction(ctx context.Context, label string) error {
	return c.shouldBeVisible(ctx, primaryLink.WithText(label), c.timeouts.Command)
}

// CheckNavIcon asserts the side menu shows the icon of a product, e.g. "cluster-management".
func (c *Commands) CheckNavIcon(ctx context.Context, name string) error {
	return c.shouldExist(ctx, browser.CSSf(".option .icon.group-icon.icon-%s", name), c.timeouts.Menu)
}

// CreateUser creates a local user. A role label other than "Standard User" replaces the default role.
func (c *Commands) CreateUser(ctx context.Context, user TestUser) error {
	if user.IsDefaultAdmin {
		return fmt.Errorf("refusing to create the default admin %q", user.Username)
	}

	c.log.Info("creating user", "user", user.Username, "role", user.DisplayRoleLabel)

	if err := c.AccessMenuSelection(ctx, menuUsersAndAuth, menuUsers, ""); err != nil {
		return err
	}
	if err := c.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	if err := c.TypeValue(ctx, "Username", user.Username); err != nil {
		return err
	}
	if err := c.TypeValue(ctx, "New Password", user.Password); err != nil {
		return err
	}
	if err := c.TypeValue(ctx, "Confirm Password", user.Password); err != nil {
		return err
	}

	if user.DisplayRoleLabel != "" && user.DisplayRoleLabel != StandardUserRole {
		if err := c.forceClick(ctx, standardUserRole, c.timeouts.Command); err != nil {
			return err
		}
		if err := c.forceClick(ctx, checkboxLabeled(user.DisplayRoleLabel), c.timeouts.Command); err != nil {
			return err
		}
	}

	if err := c.ClickButton(ctx, "Create"); err != nil {
		return err
	}
	return c.shouldBeVisible(ctx, rowNamed(user.Username), c.timeouts.Content)
}
