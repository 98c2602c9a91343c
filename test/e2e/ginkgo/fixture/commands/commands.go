// Package commands holds the domain verbs the Fleet UI scenarios are written in.
//
// A Commands value wraps one browser session. Every verb locates elements, interacts with them and
// then waits, with a bounded timeout, for the dashboard to show the expected state. Verbs return an
// error instead of failing the spec, so scenarios assert them with Expect(...).To(Succeed()).
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/config"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/wait"
)

// AssertionError is returned when an element was found but its content never matched.
type AssertionError struct {
	Target   string
	Expected string
	Actual   string
	Timeout  time.Duration
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: text did not match within %s, last seen %q: %s", e.Target, e.Timeout, e.Actual, e.Expected)
}

// IsAssertion reports whether err is, or wraps, an *AssertionError.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// Commands is the automation client for one browser session.
type Commands struct {
	driver   browser.Driver
	cfg      *config.Config
	timeouts config.Timeouts
	log      logr.Logger

	// loggedInAs is the username of the current dashboard session, "" when logged out.
	loggedInAs string
}

// New returns the command set for driver. cfg is read-only.
func New(driver browser.Driver, cfg *config.Config, log logr.Logger) *Commands {
	return &Commands{
		driver:   driver,
		cfg:      cfg,
		timeouts: cfg.Timeouts,
		log:      log.WithName("commands"),
	}
}

// Driver exposes the underlying driver for fixtures (screenshots on failure).
func (c *Commands) Driver() browser.Driver {
	return c.driver
}

// waitOpts builds the wait options for a timeout tier.
func (c *Commands) waitOpts(timeout time.Duration, format string, args ...any) []wait.Option {
	return []wait.Option{
		wait.WithTimeout(timeout),
		wait.WithInterval(c.timeouts.Poll),
		wait.WithDescription(format, args...),
	}
}

// shouldBeVisible waits until t is visible.
func (c *Commands) shouldBeVisible(ctx context.Context, t browser.Target, timeout time.Duration) error {
	return wait.For(ctx, func(ctx context.Context) (bool, error) {
		return c.driver.Visible(ctx, t)
	}, c.waitOpts(timeout, "%s to be visible", t)...)
}

// shouldExist waits until at least one element matches t, visible or not.
func (c *Commands) shouldExist(ctx context.Context, t browser.Target, timeout time.Duration) error {
	return wait.For(ctx, func(ctx context.Context) (bool, error) {
		n, err := c.driver.Count(ctx, t)
		return n > 0, err
	}, c.waitOpts(timeout, "%s to exist", t)...)
}

// shouldNotExist waits until no element matches t.
func (c *Commands) shouldNotExist(ctx context.Context, t browser.Target, timeout time.Duration) error {
	return wait.For(ctx, func(ctx context.Context) (bool, error) {
		n, err := c.driver.Count(ctx, t)
		return n == 0, err
	}, c.waitOpts(timeout, "%s to disappear", t)...)
}

// exists checks t once, without waiting.
func (c *Commands) exists(ctx context.Context, t browser.Target) (bool, error) {
	n, err := c.driver.Count(ctx, t)
	return n > 0, err
}

// shouldHaveText waits until the text of t satisfies m. An element that never shows up yields a
// *wait.TimeoutError, an element whose text never matches yields an *AssertionError.
func (c *Commands) shouldHaveText(ctx context.Context, t browser.Target, m TextMatcher, timeout time.Duration) error {
	found := false
	last, err := wait.Until(ctx, func(ctx context.Context) (string, bool, error) {
		n, err := c.driver.Count(ctx, t)
		if err != nil || n == 0 {
			return "", false, err
		}
		text, err := c.driver.Text(ctx, t)
		if err != nil {
			return "", false, err
		}
		found = true
		ok, err := m.Match(text)
		if err != nil {
			return text, false, wait.Stop(fmt.Errorf("matching text of %s: %w", t, err))
		}
		return text, ok, nil
	}, c.waitOpts(timeout, "text of %s to match", t)...)

	if err != nil && wait.IsTimeout(err) && found {
		return &AssertionError{Target: t.String(), Expected: m.FailureMessage(last), Actual: normalizeSpace(last), Timeout: timeout}
	}
	return err
}

// click waits for t to be visible, then clicks it.
func (c *Commands) click(ctx context.Context, t browser.Target, timeout time.Duration) error {
	if err := c.shouldBeVisible(ctx, t, timeout); err != nil {
		return err
	}
	return c.driver.Click(ctx, t, browser.ClickOptions{})
}

// forceClick waits for t to exist and clicks it without actionability checks.
func (c *Commands) forceClick(ctx context.Context, t browser.Target, timeout time.Duration) error {
	if err := c.shouldExist(ctx, t, timeout); err != nil {
		return err
	}
	return c.driver.Click(ctx, t, browser.ClickOptions{Force: true})
}

// fill waits for t to be visible, then replaces its value.
func (c *Commands) fill(ctx context.Context, t browser.Target, value string) error {
	if err := c.shouldBeVisible(ctx, t, c.timeouts.Command); err != nil {
		return err
	}
	return c.driver.Fill(ctx, t, value)
}

// pick opens a dropdown and selects the option whose text is exactly option.
func (c *Commands) pick(ctx context.Context, dropdown browser.Target, search, option string) error {
	if err := c.click(ctx, dropdown, c.timeouts.Command); err != nil {
		return err
	}
	if search != "" {
		if err := c.driver.Type(ctx, dropdown, search); err != nil {
			return err
		}
	}
	item := dropdownItem.Matching(browser.ExactPattern(option))
	if err := c.shouldBeVisible(ctx, item, c.timeouts.Command); err != nil {
		return err
	}
	return c.driver.Click(ctx, item, browser.ClickOptions{})
}

// Wait pauses for d. Reserved for widgets that ignore input until an animation finishes.
func (c *Commands) Wait(ctx context.Context, d time.Duration) error {
	return wait.Sleep(ctx, d)
}
