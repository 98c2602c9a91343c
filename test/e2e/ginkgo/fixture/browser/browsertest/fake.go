// Package browsertest provides an in-memory browser.Driver for unit tests of UI commands.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/browser"
)

// Action kinds recorded by Fake.
const (
	ActionNavigate   = "navigate"
	ActionClick      = "click"
	ActionFill       = "fill"
	ActionType       = "type"
	ActionPress      = "press"
	ActionScroll     = "scroll"
	ActionUpload     = "upload"
	ActionScreenshot = "screenshot"
)

// Action is one interaction performed on the fake page.
type Action struct {
	Kind   string
	Target string
	Value  string
	// Modifiers are the keys held during a click, e.g. "Control".
	Modifiers string
	Force     bool
}

func (a Action) String() string {
	s := a.Kind
	if a.Target != "" {
		s += " " + a.Target
	}
	if a.Value != "" {
		s += fmt.Sprintf(" %q", a.Value)
	}
	if a.Modifiers != "" {
		s += " +" + a.Modifiers
	}
	return s
}

// Element is the scripted state of a target.
type Element struct {
	Count   int
	Visible bool
	Text    string
}

// Present is an element that exists once and is visible.
func Present(text string) Element {
	return Element{Count: 1, Visible: true, Text: text}
}

// Absent is an element that does not exist.
var Absent = Element{}

// Fake is a scripted page. Targets not registered with Set resolve to Default.
//
// Elements are keyed by browser.Target.String(), so tests register exactly the targets the command
// under test builds.
type Fake struct {
	mu       sync.Mutex
	elements map[string]Element
	actions  []Action
	hooks    map[string]func(f *Fake)

	// Default is returned for unregistered targets.
	Default Element
	// Errors makes the next calls on a target fail, one entry consumed per call.
	Errors map[string][]error
}

var _ browser.Driver = &Fake{}

// New returns a fake page on which every unknown element is present, visible and empty.
func New() *Fake {
	return &Fake{
		elements: map[string]Element{},
		hooks:    map[string]func(f *Fake){},
		Errors:   map[string][]error{},
		Default:  Present(""),
	}
}

// Set scripts the state of t.
func (f *Fake) Set(t browser.Target, e Element) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[t.String()] = e
	return f
}

// SetLocked is Set for use inside hooks, which already hold the lock.
func (f *Fake) SetLocked(t browser.Target, e Element) {
	f.elements[t.String()] = e
}

// On runs hook after every action of kind on t; hooks model the page reacting to the user.
func (f *Fake) On(kind string, t browser.Target, hook func(f *Fake)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[kind+" "+t.String()] = hook
	return f
}

// OnClick is On(ActionClick, t, hook).
func (f *Fake) OnClick(t browser.Target, hook func(f *Fake)) *Fake {
	return f.On(ActionClick, t, hook)
}

// FailNext makes the next call touching t return err.
func (f *Fake) FailNext(t browser.Target, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[t.String()] = append(f.Errors[t.String()], err)
	return f
}

// Actions returns the recorded interactions in order.
func (f *Fake) Actions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Action(nil), f.actions...)
}

// ActionStrings returns Actions rendered with Action.String.
func (f *Fake) ActionStrings() []string {
	var out []string
	for _, a := range f.Actions() {
		out = append(out, a.String())
	}
	return out
}

// Did reports whether an action of kind was performed on t.
func (f *Fake) Did(kind string, t browser.Target) bool {
	for _, a := range f.Actions() {
		if a.Kind == kind && a.Target == t.String() {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the first action of kind on t, or -1.
func (f *Fake) IndexOf(kind string, t browser.Target) int {
	for i, a := range f.Actions() {
		if a.Kind == kind && a.Target == t.String() {
			return i
		}
	}
	return -1
}

func (f *Fake) lookup(t browser.Target) (Element, error) {
	key := t.String()
	if errs := f.Errors[key]; len(errs) > 0 {
		f.Errors[key] = errs[1:]
		return Element{}, errs[0]
	}
	if e, ok := f.elements[key]; ok {
		return e, nil
	}
	return f.Default, nil
}

func (f *Fake) record(ctx context.Context, a Action, t *browser.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	if t != nil {
		e, err := f.lookup(*t)
		if err != nil {
			f.mu.Unlock()
			return err
		}
		if e.Count == 0 {
			f.mu.Unlock()
			return fmt.Errorf("%s: no element matches %s", a.Kind, t)
		}
	}
	f.actions = append(f.actions, a)
	hook := f.hooks[a.Kind+" "+a.Target]
	if hook != nil {
		hook(f)
	}
	f.mu.Unlock()

	return nil
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	return f.record(ctx, Action{Kind: ActionNavigate, Value: url}, nil)
}

func (f *Fake) Count(ctx context.Context, t browser.Target) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, err := f.lookup(t)
	return e.Count, err
}

func (f *Fake) Visible(ctx context.Context, t browser.Target) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, err := f.lookup(t)
	return e.Count > 0 && e.Visible, err
}

func (f *Fake) Text(ctx context.Context, t browser.Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, err := f.lookup(t)
	if err != nil {
		return "", err
	}
	if e.Count == 0 {
		return "", fmt.Errorf("text: no element matches %s", t)
	}
	return e.Text, nil
}

func (f *Fake) Click(ctx context.Context, t browser.Target, opts browser.ClickOptions) error {
	a := Action{Kind: ActionClick, Target: t.String(), Force: opts.Force}
	for i, m := range opts.Modifiers {
		if i > 0 {
			a.Modifiers += "+"
		}
		a.Modifiers += string(m)
	}
	return f.record(ctx, a, &t)
}

func (f *Fake) Fill(ctx context.Context, t browser.Target, value string) error {
	return f.record(ctx, Action{Kind: ActionFill, Target: t.String(), Value: value}, &t)
}

func (f *Fake) Type(ctx context.Context, t browser.Target, value string) error {
	return f.record(ctx, Action{Kind: ActionType, Target: t.String(), Value: value}, &t)
}

func (f *Fake) Press(ctx context.Context, t browser.Target, key string) error {
	return f.record(ctx, Action{Kind: ActionPress, Target: t.String(), Value: key}, &t)
}

func (f *Fake) ScrollIntoView(ctx context.Context, t browser.Target) error {
	return f.record(ctx, Action{Kind: ActionScroll, Target: t.String()}, &t)
}

func (f *Fake) SetInputFile(ctx context.Context, t browser.Target, path string) error {
	return f.record(ctx, Action{Kind: ActionUpload, Target: t.String(), Value: path}, &t)
}

func (f *Fake) Screenshot(ctx context.Context, path string) error {
	return f.record(ctx, Action{Kind: ActionScreenshot, Value: path}, nil)
}
