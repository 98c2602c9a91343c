package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/playwright-community/playwright-go"
)

// Options configure Launch.
type Options struct {
	// Browser is one of "chromium", "firefox" or "webkit".
	Browser  string
	Headless bool
	Width    int
	Height   int
	// ActionTimeout bounds every single playwright call so a missing element fails instead of hanging.
	ActionTimeout time.Duration
	// Install downloads the driver and browser before launching.
	Install bool
}

// Session is a single browser page shared by all scenarios of a suite.
type Session struct {
	log     logr.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	mu         sync.Mutex
	pageErrors []error
}

var _ Driver = &Session{}

// Launch starts playwright, a browser and one page.
func Launch(opts Options, log logr.Logger) (*Session, error) {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}

	if opts.Install {
		log.Info("installing playwright browser", "browser", opts.Browser)
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{opts.Browser}}); err != nil {
			return nil, fmt.Errorf("unable to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("unable to start playwright: %w", err)
	}

	s := &Session{log: log, pw: pw}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unsupported browser %q", opts.Browser)
	}

	s.browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("unable to launch %s: %w", opts.Browser, err)
	}

	// Rancher under test usually serves a self-signed certificate.
	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("unable to create browser context: %w", err)
	}
	if opts.ActionTimeout > 0 {
		s.context.SetDefaultTimeout(float64(opts.ActionTimeout.Milliseconds()))
	}

	s.page, err = s.context.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("unable to open page: %w", err)
	}
	s.page.OnPageError(s.recordPageError)

	return s, nil
}

// Close releases the page, the browser and the playwright driver.
func (s *Session) Close() error {
	var errs []error
	if s.context != nil {
		errs = append(errs, s.context.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}

func (s *Session) recordPageError(err error) {
	if IsBenignPageError(err) {
		s.log.V(1).Info("ignoring benign page error", "error", err.Error())
		return
	}

	s.log.Info("uncaught page error", "error", err.Error())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageErrors = append(s.pageErrors, err)
}

// PageErrors returns the uncaught, non-benign page errors seen since the previous call.
func (s *Session) PageErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := s.pageErrors
	s.pageErrors = nil
	return errs
}

// locate resolves t to a locator matching every element described by t.
func (s *Session) locate(t Target) playwright.Locator {
	var loc playwright.Locator

	if t.Parent != nil {
		parent := s.single(*t.Parent)
		switch {
		case t.Selector != "":
			loc = parent.Locator(t.Selector)
		case t.Pattern != nil:
			loc = parent.GetByText(t.Pattern)
		default:
			loc = parent.GetByText(containsPattern(t.Text))
		}
	} else {
		switch {
		case t.Selector != "":
			loc = s.page.Locator(t.Selector)
		case t.Pattern != nil:
			loc = s.page.GetByText(t.Pattern)
		default:
			loc = s.page.GetByText(containsPattern(t.Text))
		}
	}

	if t.Selector != "" {
		if t.Text != "" {
			loc = loc.Filter(playwright.LocatorFilterOptions{HasText: containsPattern(t.Text)})
		}
		if t.Pattern != nil {
			loc = loc.Filter(playwright.LocatorFilterOptions{HasText: t.Pattern})
		}
	}

	if t.HasIndex {
		if t.Index < 0 {
			return loc.Last()
		}
		return loc.Nth(t.Index)
	}
	return loc
}

// single resolves t to exactly one element: its selected index, or the first match.
func (s *Session) single(t Target) playwright.Locator {
	loc := s.locate(t)
	if t.HasIndex {
		return loc
	}
	return loc.First()
}

// containsPattern gives case-sensitive substring matching; playwright's plain string matching ignores case.
func containsPattern(text string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(text))
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("unable to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Count(ctx context.Context, t Target) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.locate(t).Count()
}

func (s *Session) Visible(ctx context.Context, t Target) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.single(t).IsVisible()
}

func (s *Session) Text(ctx context.Context, t Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.single(t).InnerText()
}

func (s *Session) Click(ctx context.Context, t Target, opts ClickOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clickOpts := playwright.LocatorClickOptions{}
	if opts.Force {
		clickOpts.Force = playwright.Bool(true)
	}
	for _, m := range opts.Modifiers {
		clickOpts.Modifiers = append(clickOpts.Modifiers, playwright.KeyboardModifier(m))
	}

	if err := s.single(t).Click(clickOpts); err != nil {
		return fmt.Errorf("unable to click %s: %w", t, err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, t Target, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.single(t).Fill(value); err != nil {
		return fmt.Errorf("unable to fill %s: %w", t, err)
	}
	return nil
}

func (s *Session) Type(ctx context.Context, t Target, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.single(t).PressSequentially(value); err != nil {
		return fmt.Errorf("unable to type into %s: %w", t, err)
	}
	return nil
}

func (s *Session) Press(ctx context.Context, t Target, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.single(t).Press(key); err != nil {
		return fmt.Errorf("unable to press %s on %s: %w", key, t, err)
	}
	return nil
}

func (s *Session) ScrollIntoView(ctx context.Context, t Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.single(t).ScrollIntoViewIfNeeded()
}

func (s *Session) SetInputFile(ctx context.Context, t Target, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.single(t).SetInputFiles(path); err != nil {
		return fmt.Errorf("unable to attach %s to %s: %w", path, t, err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}
