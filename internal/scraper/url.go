// Package scraper builds accommodation search URLs and retrieves listing
// data from the rendered results pages, falling back through progressively
// heavier fetch tiers.
package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"stayfind/internal/model"
)

// Defaults applied when the query carries no dates: a stay starting next
// week, lasting three nights.
const (
	defaultCheckinOffsetDays = 7
	defaultStayNights        = 3
)

// BuildSearchURL renders a query as an Airbnb results-page URL. Parameters
// with Airbnb's bracket syntax are pre-encoded because the site expects the
// brackets percent-escaped exactly this way.
func BuildSearchURL(q *model.SearchQuery, baseURL, currency string, now time.Time) string {
	if q.Location == nil {
		return baseURL + "/s/homes"
	}

	base := fmt.Sprintf("%s/s/%s/homes", baseURL, url.QueryEscape(*q.Location))

	params := []string{"currency=" + url.QueryEscape(currency)}

	if q.Guests != nil {
		params = append(params, fmt.Sprintf("adults=%d", *q.Guests))
	}

	if q.Checkin != nil && q.Checkout != nil {
		params = append(params, "checkin="+*q.Checkin, "checkout="+*q.Checkout)
	} else {
		checkin := now.AddDate(0, 0, defaultCheckinOffsetDays)
		checkout := checkin.AddDate(0, 0, defaultStayNights)
		params = append(params,
			"checkin="+checkin.Format("2006-01-02"),
			"checkout="+checkout.Format("2006-01-02"))
	}

	if q.MinPrice != nil {
		params = append(params, fmt.Sprintf("price_min=%d", *q.MinPrice))
	}
	if q.MaxPrice != nil {
		params = append(params, fmt.Sprintf("price_max=%d", *q.MaxPrice))
	}

	if q.PropertyType != nil {
		if id, ok := model.AirbnbPropertyTypes[strings.ToLower(*q.PropertyType)]; ok {
			params = append(params, fmt.Sprintf("property_type_id%%5B0%%5D=%d", id))
		}
	}

	// Whole-place results only.
	params = append(params, "room_types%5B%5D=Entire%20home%2Fapt")

	requested := make(map[string]bool, len(q.Amenities))
	for _, amenity := range q.Amenities {
		key := strings.ToLower(amenity)
		if id, ok := model.AirbnbAmenities[key]; ok {
			requested[key] = true
			params = append(params, fmt.Sprintf("amenities%%5B%d%%5D=%d", id, id))
		}
	}
	// Baseline amenities keep the results page populated even for sparse
	// queries.
	for _, amenity := range model.DefaultAmenities {
		if !requested[amenity] {
			id := model.AirbnbAmenities[amenity]
			params = append(params, fmt.Sprintf("amenities%%5B%d%%5D=%d", id, id))
		}
	}

	return base + "?" + strings.Join(params, "&")
}

// locationFromSearchURL recovers the place name from the /s/<location>/
// path segment of a results URL. Used when no listing data could be
// fetched and the placeholder still needs a human-readable label.
func locationFromSearchURL(searchURL string) string {
	u, err := url.Parse(searchURL)
	if err != nil {
		return "your destination"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "s" && i+1 < len(segments) && segments[i+1] != "homes" {
			name, err := url.QueryUnescape(segments[i+1])
			if err != nil {
				name = segments[i+1]
			}
			name = strings.NewReplacer("+", " ", "-", " ").Replace(name)
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	return "your destination"
}
