package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stayfind/internal/model"
)

// The results page markup changes often, so everything here is a cascade:
// stable data-testid hooks first, then aria and role attributes, then
// generated class names, then raw-text regex as the last resort.

// Card container selectors for fully rendered pages.
var renderedCardSelectors = []string{
	`[data-testid="card-container"]`,
	`[role="group"][aria-label*="listing"]`,
	`[role="group"][aria-label*="property"]`,
	`.atm_9s_1txwivl[data-testid]`,
	`[itemprop="itemListElement"]`,
}

// Server-rendered pages expose less structure, so this cascade is broader.
var fastCardSelectors = []string{
	`[data-testid="card-container"]`,
	`[data-testid="listing-card-title"]`,
	`.c4mnd7m`,
	`[aria-label*="listing"]`,
	`[itemprop="itemListElement"]`,
}

var titleSelectors = []string{
	`[data-testid="listing-card-title"]`,
	`.atm_7l_jt7fhx`,
	`h3`,
	`.t1jojoys`,
	`[role="heading"]`,
}

var priceSelectors = []string{
	`[data-testid="price-availability"]`,
	`.atm_7h_hxbz6r`,
	`.a8jt5op`,
	`[aria-label*="price"]`,
	`span[aria-hidden="true"]`,
}

var ratingSelectors = []string{
	`[data-testid="listing-card-subtitle"]`,
	`.r1dxllyb`,
	`[aria-label*="rating"]`,
	`[aria-label*="star"]`,
}

// Text fragments that identify search-interface chrome rather than a
// listing card.
var chromePhrases = []string{
	"Start your search", "Check in", "Check out", "Guests",
	"Filters", "filters applied", "Become a host", "Location",
	"Homes in", "Total before taxes", "Display total before taxes",
}

var (
	priceTextRe  = regexp.MustCompile(`[$€₽]\s?\d[\d,]*(?:\s*(?:per\s*night|night|total))?`)
	ratingTextRe = regexp.MustCompile(`\d\.\d+(?:\s*\(\d+\))?`)
	currencyRe   = regexp.MustCompile(`[$€₽]`)
)

const (
	fallbackPrice  = "Price available on site"
	fallbackRating = "Rating not available"
)

// parseListings extracts listing cards from a results-page document using
// the given container cascade. The first selector that yields usable cards
// wins; later ones are only tried when earlier ones produce nothing.
func parseListings(doc *goquery.Document, cardSelectors []string, pageURL string, maxResults int, tier model.SourceTier) []model.Listing {
	for _, selector := range cardSelectors {
		var listings []model.Listing
		doc.Find(selector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
			text := strings.TrimSpace(card.Text())
			if isChrome(text) || len(text) < 10 {
				return true
			}
			listings = append(listings, model.Listing{
				Title:  extractTitle(card, text),
				Price:  extractPrice(card, text),
				Rating: extractRating(card, text),
				Link:   extractLink(card, pageURL),
				Source: tier,
			})
			return len(listings) < maxResults
		})
		if len(listings) > 0 {
			return listings
		}
	}
	return nil
}

func isChrome(text string) bool {
	for _, phrase := range chromePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func extractTitle(card *goquery.Selection, cardText string) string {
	for _, sel := range titleSelectors {
		title := strings.TrimSpace(card.Find(sel).First().Text())
		if title != "" && !isChrome(title) {
			return title
		}
	}
	// No structured title: take the first line of card text that reads
	// like a property name rather than a price or a rating.
	lines := strings.Split(cardText, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 5 && len(line) < 100 && !isChrome(line) &&
			!strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "★") {
			return line
		}
	}
	return "Property listing"
}

func extractPrice(card *goquery.Selection, cardText string) string {
	for _, sel := range priceSelectors {
		var found string
		card.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if currencyRe.MatchString(text) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	if m := priceTextRe.FindString(cardText); m != "" {
		return m
	}
	return fallbackPrice
}

func extractRating(card *goquery.Selection, cardText string) string {
	for _, sel := range ratingSelectors {
		var found string
		card.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if ratingTextRe.MatchString(text) && len(text) < 40 {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	if m := ratingTextRe.FindString(cardText); m != "" {
		return m
	}
	return fallbackRating
}

func extractLink(card *goquery.Selection, pageURL string) string {
	href, ok := card.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return pageURL
	}
	return absolutizeLink(href, pageURL)
}

// absolutizeLink resolves a card href against the results-page URL.
func absolutizeLink(href, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
