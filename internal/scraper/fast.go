package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stayfind/internal/model"
)

// fastFetch grabs the server-rendered results page over plain HTTP. It is
// cheap and quick but only works when the site ships listing markup without
// JavaScript; the caller falls through to the rendered tier otherwise.
func (p *Pipeline) fastFetch(ctx context.Context, searchURL string, timeout time.Duration, maxResults int) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	c := colly.NewCollector(
		colly.UserAgent(p.cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("fast fetch failed: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fast fetch returned empty body")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fast fetch body: %w", err)
	}
	return parseListings(doc, fastCardSelectors, searchURL, maxResults, model.TierFastFetch), nil
}
