package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfind/internal/model"
)

const resultsPageURL = "https://www.airbnb.com/s/Tokyo/homes?currency=USD"

const resultsFixture = `<html><body>
<div data-testid="card-container">Start your search Check in Check out Guests Filters</div>
<div data-testid="card-container">
  <a href="/rooms/12345"><div data-testid="listing-card-title">Cozy loft in Shibuya</div></a>
  <span data-testid="price-availability">$120 per night</span>
  <span>4.8 (213)</span>
</div>
<div data-testid="card-container">
  <h3>Modern apartment near the station</h3>
  <p>Great little place, $95 night, rated 4.5 (88)</p>
  <a href="https://www.airbnb.com/rooms/678">open</a>
</div>
<div data-testid="card-container">
  <div data-testid="listing-card-title">Quiet house with garden</div>
  <span data-testid="price-availability">$210 per night</span>
  <a href="/rooms/999">open</a>
</div>
</body></html>`

func parseFixture(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseListings(t *testing.T) {
	doc := parseFixture(t, resultsFixture)
	listings := parseListings(doc, renderedCardSelectors, resultsPageURL, 3, model.TierRenderedFetch)

	require.Len(t, listings, 3)

	assert.Equal(t, "Cozy loft in Shibuya", listings[0].Title)
	assert.Equal(t, "$120 per night", listings[0].Price)
	assert.Equal(t, "4.8 (213)", listings[0].Rating)
	assert.Equal(t, "https://www.airbnb.com/rooms/12345", listings[0].Link)
	assert.Equal(t, model.TierRenderedFetch, listings[0].Source)

	assert.Equal(t, "Modern apartment near the station", listings[1].Title)
	assert.Contains(t, listings[1].Price, "$95")
	assert.Contains(t, listings[1].Rating, "4.5")
	assert.Equal(t, "https://www.airbnb.com/rooms/678", listings[1].Link)

	assert.Equal(t, "Quiet house with garden", listings[2].Title)
	assert.Equal(t, fallbackRating, listings[2].Rating)
}

func TestParseListingsSkipsChrome(t *testing.T) {
	doc := parseFixture(t, resultsFixture)
	listings := parseListings(doc, renderedCardSelectors, resultsPageURL, 10, model.TierRenderedFetch)

	for _, l := range listings {
		assert.NotContains(t, l.Title, "Start your search")
	}
}

func TestParseListingsHonorsMaxResults(t *testing.T) {
	doc := parseFixture(t, resultsFixture)
	listings := parseListings(doc, renderedCardSelectors, resultsPageURL, 1, model.TierRenderedFetch)
	assert.Len(t, listings, 1)
}

func TestParseListingsCascadeFallsThrough(t *testing.T) {
	// No card-container hooks; only the broader fast-tier selectors hit.
	html := `<html><body>
	<div aria-label="listing card one"><h3>Beach bungalow</h3> $75 night <a href="/rooms/1">x</a></div>
	</body></html>`
	doc := parseFixture(t, html)

	listings := parseListings(doc, fastCardSelectors, resultsPageURL, 3, model.TierFastFetch)
	require.Len(t, listings, 1)
	assert.Equal(t, "Beach bungalow", listings[0].Title)
	assert.Equal(t, model.TierFastFetch, listings[0].Source)
}

func TestParseListingsEmptyDocument(t *testing.T) {
	doc := parseFixture(t, "<html><body><p>nothing here worth parsing</p></body></html>")
	listings := parseListings(doc, renderedCardSelectors, resultsPageURL, 3, model.TierRenderedFetch)
	assert.Empty(t, listings)
}

func TestAbsolutizeLink(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/rooms/123", "https://www.airbnb.com/rooms/123"},
		{"https://elsewhere.example/x", "https://elsewhere.example/x"},
		{"rooms/5", "https://www.airbnb.com/s/Tokyo/rooms/5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, absolutizeLink(tt.href, "https://www.airbnb.com/s/Tokyo/homes"), tt.href)
	}
}

func TestDegradedListing(t *testing.T) {
	l := degradedListing("https://www.airbnb.com/s/New+York/homes?currency=USD")
	assert.Equal(t, "Places to stay in New York", l.Title)
	assert.Equal(t, model.TierDegraded, l.Source)
	assert.Equal(t, "https://www.airbnb.com/s/New+York/homes?currency=USD", l.Link)
}
