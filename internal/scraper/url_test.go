package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayfind/internal/model"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func testNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

const testBase = "https://www.airbnb.com"

func TestBuildSearchURLFull(t *testing.T) {
	q := &model.SearchQuery{
		Location:     strPtr("New York"),
		Checkin:      strPtr("2026-06-15"),
		Checkout:     strPtr("2026-06-20"),
		Guests:       intPtr(2),
		MinPrice:     intPtr(100),
		MaxPrice:     intPtr(150),
		PropertyType: strPtr("apartment"),
		Amenities:    []string{"pool"},
	}

	got := BuildSearchURL(q, testBase, "USD", testNow())

	assert.True(t, strings.HasPrefix(got, "https://www.airbnb.com/s/New+York/homes?"), got)
	assert.Contains(t, got, "currency=USD")
	assert.Contains(t, got, "adults=2")
	assert.Contains(t, got, "checkin=2026-06-15")
	assert.Contains(t, got, "checkout=2026-06-20")
	assert.Contains(t, got, "price_min=100")
	assert.Contains(t, got, "price_max=150")
	assert.Contains(t, got, "property_type_id%5B0%5D=2")
	assert.Contains(t, got, "room_types%5B%5D=Entire%20home%2Fapt")
	// Requested amenity plus both defaults.
	assert.Contains(t, got, "amenities%5B7%5D=7")
	assert.Contains(t, got, "amenities%5B4%5D=4")
	assert.Contains(t, got, "amenities%5B8%5D=8")
}

func TestBuildSearchURLNoLocation(t *testing.T) {
	got := BuildSearchURL(&model.SearchQuery{}, testBase, "USD", testNow())
	assert.Equal(t, "https://www.airbnb.com/s/homes", got)
}

func TestBuildSearchURLDefaultDates(t *testing.T) {
	q := &model.SearchQuery{Location: strPtr("Tokyo")}
	got := BuildSearchURL(q, testBase, "USD", testNow())

	// Next week, three nights.
	assert.Contains(t, got, "checkin=2026-03-17")
	assert.Contains(t, got, "checkout=2026-03-20")
}

func TestBuildSearchURLRequestedDefaultAmenityNotDuplicated(t *testing.T) {
	q := &model.SearchQuery{Location: strPtr("Tokyo"), Amenities: []string{"wifi"}}
	got := BuildSearchURL(q, testBase, "USD", testNow())

	assert.Equal(t, 1, strings.Count(got, "amenities%5B4%5D=4"))
	assert.Contains(t, got, "amenities%5B8%5D=8")
}

func TestBuildSearchURLUnknownAmenityIgnored(t *testing.T) {
	q := &model.SearchQuery{Location: strPtr("Tokyo"), Amenities: []string{"helipad"}}
	got := BuildSearchURL(q, testBase, "USD", testNow())
	assert.NotContains(t, got, "helipad")
}

func TestLocationFromSearchURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.airbnb.com/s/New+York/homes?currency=USD", "New York"},
		{"https://www.airbnb.com/s/Tokyo/homes", "Tokyo"},
		{"https://www.airbnb.com/s/homes", "your destination"},
		{"::not a url::", "your destination"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, locationFromSearchURL(tt.url), tt.url)
	}
}
