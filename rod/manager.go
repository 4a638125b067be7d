package rod

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is how many pages a browser renders before it is
// replaced. Archiving a long thread otherwise grows Chrome's memory
// without bound.
const DefaultMaxPages = 75

// browserLang matches the Accept-Language the forum templates are read in.
const browserLang = "zh-CN"

// BrowserManager owns the headless browser behind a Fetcher. Each browser
// is a generation; a new generation is launched once the current one has
// rendered maxPages pages.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu         sync.Mutex
	browser    *rod.Browser
	launcher   *launcher.Launcher
	generation int

	rendered atomic.Int64
	maxPages int64
	closed   atomic.Bool
	logger   *slog.Logger
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser generation renders.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithLogger reports browser replacements.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = logger
	}
}

// NewBrowserManager launches the first browser generation.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(bm)
	}

	browser, lnchr, err := launch()
	if err != nil {
		return nil, err
	}
	bm.install(browser, lnchr)
	return bm, nil
}

// Browser returns the live browser, starting a new generation first when
// the current one has used up its pages. Report each rendered page with
// IncrementPageCount.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.rendered.Load() >= bm.maxPages {
		bm.replace()
	}
	return bm.browser
}

// IncrementPageCount records one rendered page.
func (bm *BrowserManager) IncrementPageCount() {
	bm.rendered.Add(1)
}

// Generation returns how many browsers have been launched.
func (bm *BrowserManager) Generation() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.generation
}

// LauncherPID returns the process ID of the browser launcher, or 0 after
// Close.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	return err
}

// install makes browser the current generation. Must be called with mu
// held, or before bm is shared.
func (bm *BrowserManager) install(browser *rod.Browser, lnchr *launcher.Launcher) {
	bm.browser = browser
	bm.launcher = lnchr
	bm.generation++
	bm.rendered.Store(0)
}

// replace launches the next generation and shuts down the current one.
// The current browser stays in service if the launch fails.
// Must be called with mu held.
func (bm *BrowserManager) replace() {
	browser, lnchr, err := launch()
	if err != nil {
		bm.logger.Warn("browser replacement failed", "generation", bm.generation, "err", err)
		return
	}

	oldBrowser, oldLauncher := bm.browser, bm.launcher
	rendered := bm.rendered.Load()
	bm.install(browser, lnchr)
	_ = shutdown(oldBrowser, oldLauncher)

	bm.logger.Debug("browser replaced", "generation", bm.generation, "rendered", rendered)
}

// launch starts a headless browser with stability flags.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("lang", browserLang).
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}

func shutdown(browser *rod.Browser, lnchr *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if lnchr != nil {
		lnchr.Kill()
	}
	return err
}
