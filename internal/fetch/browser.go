package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// minStaticText is the shortest extracted text accepted from static HTML
// before the client tries a rendered copy. Boards that build the posting in
// JavaScript serve little more than a "Loading" shell.
const minStaticText = 500

func needsRender(text string) bool {
	return len(strings.TrimSpace(text)) < minStaticText
}

// renderFunc loads a page in a browser and returns its rendered HTML together
// with the URL the browser ended up on.
type renderFunc func(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (html, finalURL string, err error)

// renderInChrome renders url with headless Chrome. Chrome does its own name
// resolution, so callers must pass the final URL back through the Guard.
func renderInChrome(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, string, error) {
	logger.Debug("rendering posting in headless chrome", zap.String("url", truncate(url, 80)))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	var html, location string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, location, nil
}
