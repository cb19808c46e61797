package service

import (
	"regexp"

	"stayfind/internal/model"
)

// The validator is a repair pass over an extracted query. Pattern matchers
// and the model fallback both make mistakes (a year read as a guest count,
// a date read as a price), so every query is re-checked against the source
// text before anything downstream sees it.

const (
	minGuests     = 1
	maxGuests     = 16
	defaultGuests = 2

	priceFloor       = 20
	priceSuspectCeil = 500
	priceAbsurdCeil  = 2000
	priceCapFallback = 500
	strictPriceCeil  = 1000
	maxOnlyMinSpread = 100
	rangeMinBuffer   = 50
	strictAroundBand = 50
)

// Stricter guest patterns than the extractor's: a bare "for 2026" must not
// survive as a guest count, so the number has to sit next to a people word.
var strictGuestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s+(?:people|guests?|persons?|adults?)`),
	regexp.MustCompile(`(?i)(?:for|with)\s+(\d+)\s+(?:people|guests?|persons?|adults?)`),
	regexp.MustCompile(`(?i)(\d+)\s+of\s+us`),
}

var priceMentionRe = regexp.MustCompile(`(?i)\$\d|\d+\s*(?:usd|dollars?|kzt|tenge)|budget|price|per\s*night|\bmax(?:imum)?\b|\bunder\s+\d|\bbelow\s+\d|\bup\s+to\s+\d|\baround\s+\d`)

// ValidateQuery returns a repaired copy of the query. The input is never
// mutated and the function is idempotent: validating a validated query is
// a no-op.
func ValidateQuery(q *model.SearchQuery, sourceText string) *model.SearchQuery {
	repaired := *q
	repairGuests(&repaired, sourceText)
	repairPrice(&repaired, sourceText)
	return &repaired
}

func repairGuests(q *model.SearchQuery, text string) {
	if q.Guests != nil && *q.Guests >= minGuests && *q.Guests <= maxGuests {
		return
	}
	// Missing or out of range: re-derive from the text with the strict
	// patterns, fall back to a sensible default for a typical booking.
	if n, ok := strictGuestCount(text); ok {
		q.Guests = intPtr(n)
		return
	}
	q.Guests = intPtr(defaultGuests)
}

func strictGuestCount(text string) (int, bool) {
	for _, re := range strictGuestPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n := atoi(m[1])
			if n >= minGuests && n <= maxGuests {
				return n, true
			}
		}
	}
	return 0, false
}

func repairPrice(q *model.SearchQuery, text string) {
	if priceSuspect(q, text) {
		if minP, maxP, ok := strictPrice(text); ok {
			q.MinPrice = minP
			q.MaxPrice = maxP
		}
	}
	// Hard caps regardless of how the values got here.
	if q.MaxPrice != nil && *q.MaxPrice > priceAbsurdCeil {
		q.MaxPrice = intPtr(priceCapFallback)
	}
	if q.MinPrice != nil && *q.MinPrice < priceFloor {
		q.MinPrice = intPtr(priceFloor)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		q.MinPrice, q.MaxPrice = q.MaxPrice, q.MinPrice
	}
}

// priceSuspect flags queries whose bounds look like extraction noise: an
// implausibly high ceiling, inverted bounds, or a price mention in the text
// that produced no bounds at all.
func priceSuspect(q *model.SearchQuery, text string) bool {
	if q.MaxPrice != nil && *q.MaxPrice > priceSuspectCeil {
		return true
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return true
	}
	if q.MinPrice == nil && q.MaxPrice == nil && priceMentionRe.MatchString(text) {
		return true
	}
	return false
}

type strictPricePattern struct {
	re   *regexp.Regexp
	kind priceKind
}

var strictPricePatterns = []strictPricePattern{
	{regexp.MustCompile(`(?i)(?:under|below|up\s*to|max(?:imum)?\s*(?:of)?)\s*\$?(\d+)`), priceMaxOnly},
	{regexp.MustCompile(`(?i)(\d+)\s*(?:usd|dollars?)\s*(?:per\s*(?:day|night)\s*)?max(?:imum)?`), priceMaxOnly},
	{regexp.MustCompile(`(?i)\$(\d+)\s*-\s*\$?(\d+)`), priceRange},
	{regexp.MustCompile(`(?i)(\d+)\s+(?:to|through)\s+(\d+)\s*(?:dollars?|\$|per\s*night)`), priceRange},
	{regexp.MustCompile(`(?i)(?:around|about|roughly)\s+\$?(\d+)`), priceAround},
	{regexp.MustCompile(`(?i)budget\s*(?:of\s*)?(?:around\s*)?\$?(\d+)`), priceAround},
}

// strictPrice re-derives bounds requiring every amount to be plausible for
// a nightly rate. Unlike the extractor it refuses rather than guesses.
func strictPrice(text string) (minPrice, maxPrice *int, ok bool) {
	for _, p := range strictPricePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch p.kind {
		case priceMaxOnly:
			n := atoi(m[1])
			if !plausibleRate(n) {
				continue
			}
			lo := n - maxOnlyMinSpread
			if lo < priceFloor {
				lo = priceFloor
			}
			return intPtr(lo), intPtr(n), true
		case priceRange:
			a, b := atoi(m[1]), atoi(m[2])
			if !plausibleRate(a) || !plausibleRate(b) {
				continue
			}
			if a > b {
				a, b = b, a
			}
			// The stated lower end is softened so near-misses just under
			// it still show up.
			lo := a - rangeMinBuffer
			if lo < priceFloor {
				lo = priceFloor
			}
			return intPtr(lo), intPtr(b), true
		case priceAround:
			n := atoi(m[1])
			if !plausibleRate(n) {
				continue
			}
			lo := n - strictAroundBand
			if lo < priceFloor {
				lo = priceFloor
			}
			return intPtr(lo), intPtr(n + strictAroundBand), true
		}
	}
	return nil, nil, false
}

func plausibleRate(n int) bool { return n >= priceFloor && n <= strictPriceCeil }
