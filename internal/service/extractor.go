package service

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"stayfind/internal/model"
)

// CompletionClient is the language-model surface the services depend on.
// The concrete implementation talks to an OpenAI-compatible endpoint; tests
// substitute fakes.
type CompletionClient interface {
	// ExtractQuery asks the model to pull search parameters out of free text.
	ExtractQuery(ctx context.Context, conversationText string) (*model.SearchQuery, error)
	// GenerateReply produces a conversational answer in the assistant persona.
	GenerateReply(ctx context.Context, systemPrompt string, history []model.ConversationTurn, message string) (string, error)
	// Enabled reports whether the client is configured with credentials.
	Enabled() bool
}

// Extractor turns conversation text into a SearchQuery. Deterministic
// pattern matchers run first and the language model is consulted only when
// they clearly missed, so the hot path never leaves the process.
type Extractor struct {
	completions CompletionClient
	logger      *zap.Logger
}

func NewExtractor(completions CompletionClient, logger *zap.Logger) *Extractor {
	return &Extractor{completions: completions, logger: logger}
}

// Extract runs the matcher cascade over the text and, when warranted, the
// model fallback. Matcher results always win over model results.
func (e *Extractor) Extract(ctx context.Context, conversationText string) *model.SearchQuery {
	query := extractDeterministic(conversationText, time.Now().UTC())

	if e.shouldFallBack(query, conversationText) {
		fromModel, err := e.completions.ExtractQuery(ctx, conversationText)
		if err != nil {
			e.logger.Warn("model extraction failed, keeping pattern results",
				zap.Error(err))
		} else {
			query = mergeQueries(query, fromModel)
		}
	}
	return query
}

// extractDeterministic applies every field matcher to the text. It is a
// pure function of its inputs.
func extractDeterministic(text string, now time.Time) *model.SearchQuery {
	q := &model.SearchQuery{}
	if loc, ok := matchLocation(text); ok {
		q.Location = strPtr(loc)
	}
	if in, out, ok := matchDates(text, now); ok {
		q.Checkin = strPtr(in)
		q.Checkout = strPtr(out)
	}
	if guests, ok := matchGuests(text); ok {
		q.Guests = intPtr(guests)
	}
	if minP, maxP, ok := matchPrice(text); ok {
		q.MinPrice = minP
		q.MaxPrice = maxP
	}
	if pt, ok := matchPropertyType(text); ok {
		q.PropertyType = strPtr(pt)
	}
	q.Amenities = matchAmenities(text)
	return q
}

var travelVocabRe = regexp.MustCompile(`(?i)\b(?:stay|trip|travel|visit|vacation|holiday|accommodation|airbnb|booking|book)\b`)

// The fallback fires only for long messages that talk about travel yet
// yielded no location: short or off-topic text is not worth a model call.
const fallbackMinLength = 50

func (e *Extractor) shouldFallBack(q *model.SearchQuery, text string) bool {
	if e.completions == nil || !e.completions.Enabled() {
		return false
	}
	return q.Location == nil && len(text) > fallbackMinLength && travelVocabRe.MatchString(text)
}

// mergeQueries fills gaps in the deterministic result from the model
// result. It never overwrites a field the matchers already set.
func mergeQueries(base, fallback *model.SearchQuery) *model.SearchQuery {
	if fallback == nil {
		return base
	}
	merged := *base
	if merged.Location == nil {
		merged.Location = fallback.Location
	}
	if merged.Checkin == nil {
		merged.Checkin = fallback.Checkin
	}
	if merged.Checkout == nil {
		merged.Checkout = fallback.Checkout
	}
	if merged.Guests == nil {
		merged.Guests = fallback.Guests
	}
	if merged.MinPrice == nil && merged.MaxPrice == nil {
		merged.MinPrice = fallback.MinPrice
		merged.MaxPrice = fallback.MaxPrice
	}
	if merged.PropertyType == nil {
		merged.PropertyType = fallback.PropertyType
	}
	if len(merged.Amenities) == 0 {
		merged.Amenities = fallback.Amenities
	}
	return &merged
}
