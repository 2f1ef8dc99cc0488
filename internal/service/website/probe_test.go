package website

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
)

func TestChromeProbeTabsShareBrowserContext(t *testing.T) {
	probe := NewChromeProbe(context.Background())
	defer probe.Close()

	if chromedp.FromContext(probe.browserCtx) == nil {
		t.Fatalf("expected a chromedp browser context")
	}
	tabCtx, cancel := chromedp.NewContext(probe.browserCtx)
	defer cancel()
	if chromedp.FromContext(tabCtx).Allocator != chromedp.FromContext(probe.browserCtx).Allocator {
		t.Fatalf("expected tabs to reuse the probe's allocator")
	}
}

func TestChromeProbeClosedReportsStartError(t *testing.T) {
	probe := NewChromeProbe(context.Background())
	probe.Close()

	if _, err := probe.BodyWidth(context.Background(), "https://example.test"); err == nil {
		t.Fatalf("expected an error from a closed probe")
	}
}
