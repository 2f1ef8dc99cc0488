package website

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

const (
	mobileViewportWidth  = 375
	mobileViewportHeight = 667
)

// ChromeProbe measures the rendered body width in a headless Chrome tab. One browser
// process is shared; every BodyWidth call opens its own tab in it.
type ChromeProbe struct {
	browserCtx context.Context
	cancel     context.CancelFunc

	startOnce sync.Once
	startErr  error
}

// NewChromeProbe prepares a shared headless browser. Chrome itself starts on the
// first BodyWidth call. Call Close when done.
func NewChromeProbe(ctx context.Context) *ChromeProbe {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	return &ChromeProbe{
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}
}

// start launches the browser on the shared context so later tabs attach to it
// instead of spawning their own process.
func (p *ChromeProbe) start() error {
	p.startOnce.Do(func() {
		if err := chromedp.Run(p.browserCtx); err != nil {
			p.startErr = fmt.Errorf("start chrome: %w", err)
		}
	})
	return p.startErr
}

// BodyWidth opens url in a fresh tab at a 375x667 viewport.
func (p *ChromeProbe) BodyWidth(ctx context.Context, url string) (float64, error) {
	if err := p.start(); err != nil {
		return 0, err
	}

	tabCtx, cancelTab := chromedp.NewContext(p.browserCtx)
	defer cancelTab()

	// Stop the tab when the caller's deadline passes.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var width float64
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(mobileViewportWidth, mobileViewportHeight),
		chromedp.Navigate(url),
		chromedp.Evaluate(`document.body ? document.body.getBoundingClientRect().width : 0`, &width),
	)
	if err != nil {
		return 0, fmt.Errorf("render %s: %w", url, err)
	}
	return width, nil
}

// Close shuts the browser down.
func (p *ChromeProbe) Close() {
	if p.cancel != nil {
		p.cancel()
	}
}
