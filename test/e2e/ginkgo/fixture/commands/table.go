package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/wait"
)

// EmptyState is the message a list shows once its last row is gone.
type EmptyState string

const (
	// EmptyGitRepos is shown by the Git Repos list.
	EmptyGitRepos EmptyState = textNoRepositories
	// EmptyRows is shown by generic resource lists.
	EmptyRows EmptyState = textNoRows
)

// waitTablePopulated waits until the first row of the current list has content.
func (c *Commands) waitTablePopulated(ctx context.Context) error {
	return c.shouldHaveText(ctx, tableFirstRow, Matches(nonEmpty), c.timeouts.TablePopulation)
}

// VerifyTableRow waits for the list to populate, then for row index to contain text and satisfy
// other. A nil other is ignored.
func (c *Commands) VerifyTableRow(ctx context.Context, index int, text string, other TextMatcher) error {
	return c.verifyTableRow(ctx, index, c.timeouts.Reconcile, Contains(text), other)
}

func (c *Commands) verifyTableRow(ctx context.Context, index int, timeout time.Duration, matchers ...TextMatcher) error {
	if err := c.waitTablePopulated(ctx); err != nil {
		return err
	}
	return c.shouldHaveText(ctx, tableRow(index), allOf(matchers...), timeout)
}

// VerifyTableCell checks a single cell, e.g. the node count of the first cluster. Cells fed by the
// GitOps controller may take a full reconcile to settle.
func (c *Commands) VerifyTableCell(ctx context.Context, row, col int, m TextMatcher) error {
	if err := c.waitTablePopulated(ctx); err != nil {
		return err
	}
	return c.shouldHaveText(ctx, tableCell(row, col), m, c.timeouts.Reconcile)
}

// verifyRowNamed waits until the row containing name satisfies m.
func (c *Commands) verifyRowNamed(ctx context.Context, name string, m TextMatcher, timeout time.Duration) error {
	return c.shouldHaveText(ctx, rowNamed(name), m, timeout)
}

// Open3dotsMenu opens the action menu of the row containing name.
//
// With expectAbsent the entry selection must be missing or disabled and the menu is closed again;
// otherwise the entry is clicked and the menu must close.
func (c *Commands) Open3dotsMenu(ctx context.Context, name, selection string, expectAbsent bool) error {
	c.log.V(1).Info("opening row actions", "row", name, "selection", selection, "expectAbsent", expectAbsent)

	actions := rowActions.Within(rowNamed(name))
	if err := c.click(ctx, actions, c.timeouts.Command); err != nil {
		return err
	}
	if selection == "" {
		return nil
	}

	if err := c.shouldBeVisible(ctx, actionMenu, c.timeouts.Menu); err != nil {
		return err
	}

	exact := browser.ExactPattern(selection)

	if expectAbsent {
		enabled, err := c.exists(ctx, actionMenuActive.Matching(exact))
		if err != nil {
			return err
		}
		if enabled {
			return fmt.Errorf("action %q is offered on %q but must not be", selection, name)
		}
		if err := c.driver.Press(ctx, body, "Escape"); err != nil {
			return err
		}
		return c.shouldNotExist(ctx, actionMenu, c.timeouts.Command)
	}

	item := actionMenuItem.Matching(exact)
	if err := c.shouldBeVisible(ctx, item, c.timeouts.Menu); err != nil {
		return err
	}
	if err := c.driver.Click(ctx, item, browser.ClickOptions{Force: true}); err != nil {
		return err
	}
	return c.shouldNotExist(ctx, actionMenu, c.timeouts.Command)
}

// DeleteAll removes every row of the current list through the bulk Delete action. Ctrl-click skips
// the confirmation dialog. It waits for the list to load first, so a list still fetching its rows is
// not mistaken for an empty one. An empty list is left alone.
func (c *Commands) DeleteAll(ctx context.Context, empty EmptyState) error {
	deleteButton := button.WithText(textDelete)

	rows, err := c.RowCount(ctx)
	if err != nil {
		return err
	}
	if rows == 0 {
		c.log.V(1).Info("nothing to delete")
		return nil
	}

	c.log.Info("deleting all rows", "rows", rows)

	if err := c.forceClick(ctx, selectAll, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.shouldBeVisible(ctx, deleteButton, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.driver.Click(ctx, deleteButton, browser.ClickOptions{Modifiers: []browser.Modifier{browser.ModifierControl}}); err != nil {
		return err
	}
	if err := c.shouldNotExist(ctx, deleteButton, c.timeouts.Deletion); err != nil {
		return err
	}
	return c.shouldBeVisible(ctx, browser.Text(string(empty)), c.timeouts.Deletion)
}

// SortBy clicks a list column header.
func (c *Commands) SortBy(ctx context.Context, column string) error {
	return c.click(ctx, columnHeader.WithText(column), c.timeouts.Command)
}

// RowCount returns how many rows the current list shows, after waiting for it to populate or report
// its empty state.
func (c *Commands) RowCount(ctx context.Context) (int, error) {
	return wait.Until(ctx, func(ctx context.Context) (int, bool, error) {
		n, err := c.driver.Count(ctx, mainRow)
		if err != nil {
			return 0, false, err
		}
		if n > 0 {
			return n, true, nil
		}
		empty, err := c.exists(ctx, browser.Text(textNoRows))
		if err == nil && !empty {
			empty, err = c.exists(ctx, browser.Text(textNoRepositories))
		}
		return 0, empty, err
	}, c.waitOpts(c.timeouts.TablePopulation, "list rows or empty state")...)
}
