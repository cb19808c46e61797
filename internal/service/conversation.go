package service

import (
	"strings"

	"stayfind/internal/model"
)

// The evaluator decides what the assistant does with a turn: ask for more
// detail, read the query back for confirmation, or search. It is a pure
// function of the message, the extracted query, and recent history.

var affirmatives = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {}, "ok": {},
	"okay": {}, "correct": {}, "right": {}, "exactly": {}, "perfect": {},
	"go": {}, "go ahead": {}, "do it": {}, "sounds good": {}, "looks good": {},
	"that's right": {}, "thats right": {}, "please": {}, "yes please": {},
	"confirm": {}, "confirmed": {},
}

var imperativePhrases = []string{
	"search", "find me", "show me", "look for", "what's available", "whats available",
	"show options", "start searching",
}

var imperativeLastTokens = map[string]struct{}{
	"go": {}, "search": {}, "now": {},
}

// Short follow-ups like "downtown" or "cheap apartment" refine an earlier
// request rather than start a new one.
var refinementQualifiers = map[string]struct{}{
	"downtown": {}, "cheap": {}, "cheaper": {}, "budget": {}, "luxury": {},
	"center": {}, "central": {}, "apartment": {}, "house": {}, "villa": {},
	"cabin": {}, "loft": {}, "cottage": {}, "pool": {}, "wifi": {},
	"parking": {}, "kitchen": {}, "nice": {}, "quiet": {},
}

// Phrases that mark an assistant turn as a confirmation prompt. Used to
// avoid asking for confirmation twice in a row.
var confirmationFingerprints = []string{
	"sound good", "sounds right", "is this correct", "is that correct",
	"should i start searching", "should i search", "would you like me to search",
	"does this look good", "shall i look", "searching for:",
}

const (
	// How far back to look for a previous confirmation prompt.
	confirmLookback = 5
	// A location-only query this early in the conversation is worth
	// confirming instead of interrogating further.
	earlyTurnLimit = 2
	// Messages longer than this are full requests, not quick answers.
	longMessageWords = 5
	// Anything at or under this length can be a refinement qualifier.
	shortMessageWords = 3
)

// EvaluateTurn maps a user message and the accumulated query to the next
// assistant action.
func EvaluateTurn(message string, q *model.SearchQuery, history []model.ConversationTurn) model.Action {
	if q.Location == nil {
		return model.ActionMoreInfo
	}

	normalized := normalizeMessage(message)

	if _, ok := affirmatives[normalized]; ok {
		return model.ActionSearch
	}
	for _, phrase := range imperativePhrases {
		if strings.Contains(normalized, phrase) {
			return model.ActionSearch
		}
	}
	words := strings.Fields(normalized)
	if len(words) > 0 {
		if _, ok := imperativeLastTokens[words[len(words)-1]]; ok {
			return model.ActionSearch
		}
	}

	comprehensive := q.Guests != nil && q.HasPrice() && q.HasDates()
	if comprehensive && len(words) > longMessageWords {
		return confirmOr(q, history)
	}

	if q.HasDetailBeyondLocation() && len(words) <= shortMessageWords && anyQualifier(words) {
		return model.ActionSearch
	}

	if !q.HasDetailBeyondLocation() && userTurnCount(history) <= earlyTurnLimit {
		return confirmOr(q, history)
	}

	return model.ActionMoreInfo
}

// confirmOr downgrades a confirmation when one was already asked recently:
// repeating the question reads as a loop, so the assistant either commits
// to the search or asks something new.
func confirmOr(q *model.SearchQuery, history []model.ConversationTurn) model.Action {
	if !recentlyAskedConfirmation(history) {
		return model.ActionConfirm
	}
	if q.HasDetailBeyondLocation() {
		return model.ActionSearch
	}
	return model.ActionMoreInfo
}

func recentlyAskedConfirmation(history []model.ConversationTurn) bool {
	seen := 0
	for i := len(history) - 1; i >= 0 && seen < confirmLookback; i-- {
		if history[i].Speaker != model.SpeakerAssistant {
			continue
		}
		seen++
		lower := strings.ToLower(history[i].Text)
		for _, fp := range confirmationFingerprints {
			if strings.Contains(lower, fp) {
				return true
			}
		}
	}
	return false
}

func userTurnCount(history []model.ConversationTurn) int {
	n := 0
	for _, t := range history {
		if t.Speaker == model.SpeakerUser {
			n++
		}
	}
	return n
}

func anyQualifier(words []string) bool {
	for _, w := range words {
		if _, ok := refinementQualifiers[w]; ok {
			return true
		}
	}
	return false
}

func normalizeMessage(message string) string {
	s := strings.ToLower(strings.TrimSpace(message))
	return strings.Trim(s, ".!? ")
}
