package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"stayfind/internal/model"
)

// Selector the rendered tier waits on before grabbing the DOM. Any card
// container appearing means the results script has run.
const renderedReadySelector = `[data-testid="card-container"], [role="group"][aria-label*="listing"], .atm_9s_1txwivl`

// renderedFetch loads the results page in the pooled headless browser and
// parses the fully rendered DOM. The wait for listing cards is best-effort:
// on timeout whatever has rendered so far is parsed anyway.
func (p *Pipeline) renderedFetch(ctx context.Context, searchURL string, maxResults int) ([]model.Listing, error) {
	browserCtx, release, err := p.sessions.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	// Fresh tab per fetch; the deadline of the caller bounds everything.
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}

	if err := chromedp.Run(tabCtx, chromedp.Navigate(searchURL)); err != nil {
		return nil, fmt.Errorf("rendered fetch navigation failed: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(tabCtx, time.Duration(p.cfg.RenderWait)*time.Second)
	_ = chromedp.Run(waitCtx, chromedp.WaitReady(renderedReadySelector, chromedp.ByQuery))
	cancelWait()

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("rendered fetch DOM read failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered DOM: %w", err)
	}
	return parseListings(doc, renderedCardSelectors, searchURL, maxResults, model.TierRenderedFetch), nil
}
