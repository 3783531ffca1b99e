// Package browser wraps the playwright driver behind a runner that
// launches Chromium once and hands out isolated contexts, one per
// crawled item. Contexts share nothing, so a blocked session on one
// ASIN cannot taint the next.
package browser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Runner struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    *Options
	logger  *slog.Logger
}

// ProxyReporter receives per-navigation outcomes for the active proxy,
// keyed by its URL. A proxy pool uses these to bench a failing proxy.
type ProxyReporter interface {
	ReportSuccess(url string)
	ReportError(url string)
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
	ProxyReporter  ProxyReporter
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-US,en;q=0.9",
		TimezoneID:     "America/New_York",
		Locale:         "en-US",
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"DNT":             "1",
		},
	}
}

func New(opts *Options) (*Runner, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--window-size=1920,1080",
			"--user-agent=" + opts.UserAgent,
		},
	}

	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{
			Server: opts.ProxyServer,
		}
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Runner{
		pw:      pw,
		browser: b,
		opts:    opts,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// NewContext creates an isolated browsing context with the stock
// options plus any saved cookies. Callers own the context and must
// close it when the item is done.
func (r *Runner) NewContext(cookies []Cookie) (playwright.BrowserContext, error) {
	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:         &r.opts.UserAgent,
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            &r.opts.Locale,
		TimezoneId:        &r.opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  r.opts.ViewportWidth,
			Height: r.opts.ViewportHeight,
		},
		ExtraHttpHeaders: r.opts.ExtraHeaders,
	}

	ctx, err := r.browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := ctx.AddCookies(toOptionalCookies(cookies)); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("failed to add cookies: %w", err)
		}
	}

	return ctx, nil
}

// NewPage opens a page on the given context with the default timeout set.
func (r *Runner) NewPage(ctx playwright.BrowserContext) (playwright.Page, error) {
	page, err := ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(r.opts.Timeout.Milliseconds()))

	return page, nil
}

func (r *Runner) Close() error {
	var errs []error

	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if r.pw != nil {
		if err := r.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

func (r *Runner) Navigate(page playwright.Page, url string, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			r.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			time.Sleep(time.Duration(i+1) * time.Second)
		}

		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(r.opts.Timeout.Milliseconds())),
		})

		if err == nil {
			bypassed, err := r.dismissInterstitial(page)
			if err != nil {
				lastErr = err
				continue
			}
			if bypassed {
				r.logger.Info("interstitial dismissed", "url", url)
			}
			r.reportProxy(nil)
			return nil
		}

		lastErr = err
		r.logger.Error("navigation failed", "error", err, "attempt", i+1)
	}

	r.reportProxy(lastErr)
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// reportProxy relays a navigation outcome to the configured proxy
// reporter. Only exhausted retries count against the proxy; a single
// flaky load that recovers is not its fault.
func (r *Runner) reportProxy(err error) {
	if r.opts.ProxyReporter == nil || r.opts.ProxyServer == "" {
		return
	}
	if err != nil {
		r.opts.ProxyReporter.ReportError(r.opts.ProxyServer)
		return
	}
	r.opts.ProxyReporter.ReportSuccess(r.opts.ProxyServer)
}

// dismissInterstitial clicks through the "Continue shopping" gate Amazon
// sometimes serves before the real page. CAPTCHA walls are not handled
// here; the crawler classifies those from page content.
func (r *Runner) dismissInterstitial(page playwright.Page) (bool, error) {
	content, err := page.Content()
	if err != nil {
		return false, fmt.Errorf("failed to get page content: %w", err)
	}

	if !strings.Contains(content, "Continue shopping") {
		return false, nil
	}

	buttonSelectors := []string{
		`button:has-text("Continue shopping")`,
		`input[type="submit"][value*="Continue"]`,
		`.a-button-primary`,
	}

	for _, selector := range buttonSelectors {
		button := page.Locator(selector).First()

		count, err := button.Count()
		if err != nil || count == 0 {
			continue
		}

		if err := button.Click(); err != nil {
			r.logger.Error("failed to click interstitial button", "error", err)
			continue
		}

		page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateDomcontentloaded,
		})

		newContent, _ := page.Content()
		if !strings.Contains(newContent, "Continue shopping") {
			return true, nil
		}
	}

	return false, fmt.Errorf("could not dismiss interstitial")
}

// Cookie is the persisted cookie shape. Browser exports carry more
// fields; only these four survive the round trip into playwright.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// LoadCookies reads a JSON cookie export from disk. A missing file is
// not an error; the crawl just runs without a session.
func LoadCookies(path string) ([]Cookie, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}

	out := cookies[:0]
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		out = append(out, c)
	}
	return out, nil
}

func toOptionalCookies(cookies []Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, playwright.OptionalCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: playwright.String(c.Domain),
			Path:   playwright.String(c.Path),
		})
	}
	return out
}
