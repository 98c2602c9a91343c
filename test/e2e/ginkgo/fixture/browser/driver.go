// Package browser drives the dashboard through a real browser.
//
// Commands only see the Driver interface; Session implements it with playwright and
// browsertest.Fake implements it in memory for unit tests.
package browser

import (
	"context"
)

// Modifier is a keyboard modifier held during a click.
type Modifier string

const ModifierControl Modifier = "Control"

// ClickOptions tune a single click.
type ClickOptions struct {
	// Force skips actionability checks (visibility, overlap).
	Force     bool
	Modifiers []Modifier
}

// Driver is the set of primitive interactions the UI commands are built from.
//
// Every method acts on the current state of the page and returns immediately; waiting for a state is
// the caller's job. Methods that act on a single element use the first match unless the target
// selects an index.
type Driver interface {
	// Navigate loads url in the current page.
	Navigate(ctx context.Context, url string) error
	// Count returns how many elements match t.
	Count(ctx context.Context, t Target) (int, error)
	// Visible reports whether the element is attached and visible.
	Visible(ctx context.Context, t Target) (bool, error)
	// Text returns the rendered text of the element.
	Text(ctx context.Context, t Target) (string, error)
	Click(ctx context.Context, t Target, opts ClickOptions) error
	// Fill replaces the value of an input.
	Fill(ctx context.Context, t Target, value string) error
	// Type sends keystrokes to the element, for editors that do not accept Fill.
	Type(ctx context.Context, t Target, value string) error
	// Press sends a single key, e.g. "Enter" or "Escape".
	Press(ctx context.Context, t Target, key string) error
	ScrollIntoView(ctx context.Context, t Target) error
	// SetInputFile attaches a local file to a file input.
	SetInputFile(ctx context.Context, t Target, path string) error
	// Screenshot writes a full-page PNG to path.
	Screenshot(ctx context.Context, path string) error
}
