package model

// SearchQuery is the canonical structured search intent extracted from a
// conversation. Fields are pointers so "not mentioned" is distinguishable
// from a zero value. A query is built fresh per turn and is read-only after
// validation.
type SearchQuery struct {
	Location     *string  `json:"location,omitempty"`
	Checkin      *string  `json:"checkin,omitempty"`  // YYYY-MM-DD
	Checkout     *string  `json:"checkout,omitempty"` // YYYY-MM-DD
	Guests       *int     `json:"guests,omitempty"`
	MinPrice     *int     `json:"min_price,omitempty"`
	MaxPrice     *int     `json:"max_price,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
}

// HasDates reports whether at least one stay date was extracted.
func (q *SearchQuery) HasDates() bool {
	return q.Checkin != nil || q.Checkout != nil
}

// HasPrice reports whether at least one price bound was extracted.
func (q *SearchQuery) HasPrice() bool {
	return q.MinPrice != nil || q.MaxPrice != nil
}

// HasDetailBeyondLocation reports whether anything besides the location was
// extracted.
func (q *SearchQuery) HasDetailBeyondLocation() bool {
	return q.Guests != nil || q.HasPrice() || q.HasDates() ||
		q.PropertyType != nil || len(q.Amenities) > 0
}

// Speaker values for conversation turns.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// ConversationTurn is one message of the conversation history. The history
// is owned by the API/session layer; the core only reads it.
type ConversationTurn struct {
	Speaker string `json:"speaker" binding:"required"`
	Text    string `json:"text"`
}

// Action is the per-turn decision of the conversation evaluator.
type Action string

const (
	ActionMoreInfo Action = "need_more_info"
	ActionConfirm  Action = "need_confirmation"
	ActionSearch   Action = "execute_search"
)

// ChatRequest is the inbound payload for a single conversation turn.
type ChatRequest struct {
	Message string             `json:"message" binding:"required"`
	History []ConversationTurn `json:"conversation_history"`
}

// ChatResponse is the outcome of processing one turn.
type ChatResponse struct {
	Response  string       `json:"response"`
	Action    Action       `json:"action"`
	Query     *SearchQuery `json:"query,omitempty"`
	Listings  []Listing    `json:"search_results,omitempty"`
	SearchURL string       `json:"search_url,omitempty"`
	SearchID  string       `json:"search_id,omitempty"`
}

// SearchRecord is one executed search as persisted for later analysis.
type SearchRecord struct {
	SearchID     string
	Message      string
	Query        *SearchQuery
	Action       string
	ListingCount int
	TookMs       int
}

// FeedbackRequest records a user action on a presented listing.
type FeedbackRequest struct {
	SearchID   string `json:"search_id" binding:"required"`
	ListingURL string `json:"listing_url" binding:"required"`
	Action     string `json:"action" binding:"required"` // click, contact, book
}
