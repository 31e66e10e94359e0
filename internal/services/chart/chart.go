// Package chart captures a rendered chart image through a headless browser.
// The automation mechanics stay behind the Capturer; callers only see bytes
// or an error.
package chart

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

const (
	defaultViewportWidth  = 1600
	defaultViewportHeight = 900
	defaultRenderWait     = 5 * time.Second
	defaultCaptureTimeout = 45 * time.Second
)

// Capturer takes full-page screenshots of the configured chart URL.
type Capturer struct {
	url        string
	renderWait time.Duration
	timeout    time.Duration
}

// NewCapturer creates a chart capturer for the given URL.
func NewCapturer(url string) *Capturer {
	return &Capturer{
		url:        url,
		renderWait: defaultRenderWait,
		timeout:    defaultCaptureTimeout,
	}
}

// Capture renders the chart page headlessly and returns a PNG screenshot.
func (c *Capturer) Capture(ctx context.Context) ([]byte, error) {
	if c.url == "" {
		return nil, errors.New("chart URL is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var png []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(defaultViewportWidth, defaultViewportHeight),
		chromedp.Navigate(c.url),
		// Charting pages draw asynchronously after load; give them time.
		chromedp.Sleep(c.renderWait),
		chromedp.FullScreenshot(&png, 90),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to capture chart screenshot")
	}
	if len(png) == 0 {
		return nil, errors.New("chart screenshot is empty")
	}

	return png, nil
}
