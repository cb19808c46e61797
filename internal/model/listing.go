package model

// SourceTier identifies which retrieval tier produced a listing.
type SourceTier string

const (
	TierFastFetch     SourceTier = "fast_fetch"
	TierRenderedFetch SourceTier = "rendered_fetch"
	TierDegraded      SourceTier = "degraded"
)

// Listing is a normalized scraped search result. Price and rating stay as
// display strings because the target site renders them in many formats
// ("$71 for 2 nights", "4.82 (135)") and we never do arithmetic on them.
type Listing struct {
	Title  string     `json:"title"`
	Price  string     `json:"price"`
	Rating string     `json:"rating"`
	Link   string     `json:"link"`
	Source SourceTier `json:"source"`
}
