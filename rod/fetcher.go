package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docseek"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load when the caller's context
// has no earlier deadline.
const DefaultFetchTimeout = 30 * time.Second

// serializeJS returns the rendered document with open shadow roots inlined
// as declarative shadow DOM, so links inside web components reach the link
// extractor. Browsers without Element.getHTML fall back to outerHTML.
const serializeJS = `() => {
	const roots = [];
	const collect = (node) => {
		for (const el of node.querySelectorAll('*')) {
			if (el.shadowRoot) {
				roots.push(el.shadowRoot);
				collect(el.shadowRoot);
			}
		}
	};
	collect(document);
	const html = document.documentElement;
	if (typeof html.getHTML !== 'function') {
		return html.outerHTML;
	}
	return '<html>' + html.getHTML({shadowRoots: roots}) + '</html>';
}`

// Ensure Fetcher implements docseek.Fetcher at compile time.
var _ docseek.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using headless Chrome, for sites whose
// links only appear after JavaScript runs.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout     time.Duration
	managerOpts []ManagerOption
}

// WithFetchTimeout sets the per-page load timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithRecycleAfter restarts the browser after n pages.
func WithRecycleAfter(n int64) Option {
	return func(c *fetcherConfig) {
		c.managerOpts = append(c.managerOpts, WithMaxPages(n))
	}
}

// NewFetcher launches a headless browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.managerOpts...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager, timeout: cfg.timeout}, nil
}

// Fetch navigates to url, waits for the load event and returns the
// rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", docseek.Errorf(docseek.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	browser := f.manager.Acquire()
	defer f.manager.Release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	result, err := page.Eval(serializeJS)
	if err != nil {
		return "", err
	}
	return result.Value.Str(), nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
