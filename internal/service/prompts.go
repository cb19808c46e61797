package service

import (
	"fmt"
	"strings"
	"time"

	"stayfind/internal/model"
)

// personaPrompt is the system prompt for conversational replies.
const personaPrompt = `You are a friendly and efficient accommodation search assistant.
You help travelers find places to stay by collecting their destination, dates,
group size, budget, and preferences, then searching for matching listings.

Style rules:
- Be warm but concise: two or three sentences at most.
- Ask for at most one missing detail per reply.
- Never invent listings, prices, or availability.
- When search results are provided in the context, present them naturally and
  mention the price and rating of each.`

// extractionPromptTemplate asks the model for search parameters as strict
// JSON. The current year is injected so relative dates resolve correctly.
const extractionPromptTemplate = `Extract accommodation search parameters from the conversation below.
The current year is %d.

Respond with ONLY a JSON object, no prose, with exactly these keys
(use null for anything the user did not state):
{
  "location": "city or area name, English, or null",
  "checkin": "YYYY-MM-DD or null",
  "checkout": "YYYY-MM-DD or null",
  "guests": number or null,
  "min_price": number (USD per night) or null,
  "max_price": number (USD per night) or null,
  "property_type": "house|apartment|villa|cabin|loft|cottage or null",
  "amenities": ["wifi", "kitchen", ...] or []
}

Conversation:
%s`

func buildExtractionPrompt(conversationText string, now time.Time) string {
	return fmt.Sprintf(extractionPromptTemplate, now.Year(), conversationText)
}

// buildSearchContext summarizes a finished search for the reply model so it
// can present real results instead of inventing them.
func buildSearchContext(q *model.SearchQuery, listings []model.Listing, searchURL string) string {
	var b strings.Builder
	b.WriteString("A search was just executed with these parameters:\n")
	b.WriteString(describeQuery(q))
	b.WriteString(fmt.Sprintf("\nFull results page: %s\n", searchURL))
	if len(listings) == 0 {
		b.WriteString("\nNo individual listings could be retrieved. Offer the results page link.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("\nTop %d listings found:\n", len(listings)))
	for i, l := range listings {
		b.WriteString(fmt.Sprintf("%d. %s | %s | rating %s | %s\n", i+1, l.Title, l.Price, l.Rating, l.Link))
	}
	b.WriteString("\nPresent these listings to the user with their links.\n")
	return b.String()
}

func describeQuery(q *model.SearchQuery) string {
	var parts []string
	if q.Location != nil {
		parts = append(parts, "location: "+*q.Location)
	}
	if q.Checkin != nil && q.Checkout != nil {
		parts = append(parts, fmt.Sprintf("dates: %s to %s", *q.Checkin, *q.Checkout))
	}
	if q.Guests != nil {
		parts = append(parts, fmt.Sprintf("guests: %d", *q.Guests))
	}
	switch {
	case q.MinPrice != nil && q.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("price: $%d-$%d per night", *q.MinPrice, *q.MaxPrice))
	case q.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("price: up to $%d per night", *q.MaxPrice))
	case q.MinPrice != nil:
		parts = append(parts, fmt.Sprintf("price: from $%d per night", *q.MinPrice))
	}
	if q.PropertyType != nil {
		parts = append(parts, "property type: "+*q.PropertyType)
	}
	if len(q.Amenities) > 0 {
		parts = append(parts, "amenities: "+strings.Join(q.Amenities, ", "))
	}
	if len(parts) == 0 {
		return "(no parameters)"
	}
	return strings.Join(parts, "\n")
}

// FormatConfirmation renders the deterministic read-back shown before a
// search is committed.
func FormatConfirmation(q *model.SearchQuery) string {
	var parts []string
	if q.Location != nil {
		parts = append(parts, "📍 "+*q.Location)
	}
	if q.Checkin != nil && q.Checkout != nil {
		parts = append(parts, fmt.Sprintf("🗓 %s → %s", *q.Checkin, *q.Checkout))
	}
	if q.Guests != nil {
		parts = append(parts, fmt.Sprintf("👥 %d guests", *q.Guests))
	}
	switch {
	case q.MinPrice != nil && q.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("💰 $%d-$%d/night", *q.MinPrice, *q.MaxPrice))
	case q.MaxPrice != nil:
		parts = append(parts, fmt.Sprintf("💰 up to $%d/night", *q.MaxPrice))
	}
	if q.PropertyType != nil {
		parts = append(parts, "🏠 "+*q.PropertyType)
	}
	if len(q.Amenities) > 0 {
		parts = append(parts, "✨ "+strings.Join(q.Amenities, ", "))
	}
	return fmt.Sprintf("Searching for: %s. Sound good? Say yes and I'll start searching!",
		strings.Join(parts, " • "))
}

// missingParamsMessage is the canned ask-for-more reply used when the
// language model is unavailable.
func missingParamsMessage(q *model.SearchQuery) string {
	if q.Location == nil {
		return "I'd love to help you find a place to stay! Which city or area are you headed to?"
	}
	if q.Guests == nil {
		return fmt.Sprintf("Great, %s it is! How many people are traveling?", *q.Location)
	}
	if !q.HasDates() {
		return "Got it. Do you already know your check-in and check-out dates?"
	}
	if !q.HasPrice() {
		return "Almost there! What's your budget per night?"
	}
	return "Anything else that matters to you, like the type of place or must-have amenities? Or just say \"search\" and I'll get going."
}

// searchFallbackMessage presents results without the language model.
func searchFallbackMessage(listings []model.Listing, searchURL string) string {
	if len(listings) == 0 {
		return fmt.Sprintf("I couldn't pull individual listings right now, but your full results are ready here: %s", searchURL)
	}
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for i, l := range listings {
		b.WriteString(fmt.Sprintf("%d. %s — %s", i+1, l.Title, l.Price))
		if l.Rating != "" {
			b.WriteString(" (rated " + l.Rating + ")")
		}
		if l.Link != "" {
			b.WriteString("\n   " + l.Link)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nAll results: " + searchURL)
	return b.String()
}
