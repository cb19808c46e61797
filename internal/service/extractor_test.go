package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayfind/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

// fakeCompletions is a canned CompletionClient for tests.
type fakeCompletions struct {
	enabled      bool
	extracted    *model.SearchQuery
	extractErr   error
	extractCalls int
	reply        string
	replyErr     error
}

func (f *fakeCompletions) ExtractQuery(ctx context.Context, text string) (*model.SearchQuery, error) {
	f.extractCalls++
	return f.extracted, f.extractErr
}

func (f *fakeCompletions) GenerateReply(ctx context.Context, system string, history []model.ConversationTurn, message string) (string, error) {
	return f.reply, f.replyErr
}

func (f *fakeCompletions) Enabled() bool { return f.enabled }

func TestExtractDeterministic(t *testing.T) {
	text := "We're going to Tokyo, 2 people, June 15-20, around $100 per night, an apartment with wifi"
	q := extractDeterministic(text, fixedNow())

	require.NotNil(t, q.Location)
	assert.Equal(t, "Tokyo", *q.Location)
	require.NotNil(t, q.Checkin)
	assert.Equal(t, "2026-06-15", *q.Checkin)
	require.NotNil(t, q.Checkout)
	assert.Equal(t, "2026-06-20", *q.Checkout)
	require.NotNil(t, q.Guests)
	assert.Equal(t, 2, *q.Guests)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, 50, *q.MinPrice)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, 150, *q.MaxPrice)
	require.NotNil(t, q.PropertyType)
	assert.Equal(t, "apartment", *q.PropertyType)
	assert.Contains(t, q.Amenities, "wifi")
}

func TestExtractorFallbackGate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		enabled  bool
		wantCall bool
	}{
		{
			name:     "no location long travel text triggers fallback",
			text:     "my partner and i are planning a little vacation somewhere warm and need accommodation soon",
			enabled:  true,
			wantCall: true,
		},
		{
			name:     "location found skips fallback",
			text:     "we are going to Tokyo, planning a long vacation trip with the whole family there",
			enabled:  true,
			wantCall: false,
		},
		{
			name:     "short message skips fallback",
			text:     "a trip somewhere",
			enabled:  true,
			wantCall: false,
		},
		{
			name:     "no travel vocabulary skips fallback",
			text:     "the weather has been really strange this year, do you not think so as well",
			enabled:  true,
			wantCall: false,
		},
		{
			name:     "disabled client never called",
			text:     "my partner and i are planning a little vacation somewhere warm and need accommodation soon",
			enabled:  false,
			wantCall: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompletions{enabled: tt.enabled, extracted: &model.SearchQuery{}}
			e := NewExtractor(fake, zap.NewNop())
			e.Extract(context.Background(), tt.text)
			assert.Equal(t, tt.wantCall, fake.extractCalls > 0)
		})
	}
}

func TestExtractorMergePrefersMatchers(t *testing.T) {
	fake := &fakeCompletions{
		enabled: true,
		extracted: &model.SearchQuery{
			Location: strPtr("Bali"),
			Guests:   intPtr(5),
			MaxPrice: intPtr(999),
		},
	}
	e := NewExtractor(fake, zap.NewNop())

	// Guests and price come from the matchers; only the location is missing
	// and should be filled from the model.
	text := "me and my friend need accommodation for our vacation, 2 people, under $80 per night somewhere sunny"
	q := e.Extract(context.Background(), text)

	require.NotNil(t, q.Location)
	assert.Equal(t, "Bali", *q.Location)
	require.NotNil(t, q.Guests)
	assert.Equal(t, 2, *q.Guests)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, 80, *q.MaxPrice)
	assert.Nil(t, q.MinPrice)
}

func TestExtractorFallbackErrorKeepsMatcherResult(t *testing.T) {
	fake := &fakeCompletions{enabled: true, extractErr: assert.AnError}
	e := NewExtractor(fake, zap.NewNop())

	text := "looking for any accommodation for our sunny vacation, 3 people, nothing fancy at all"
	q := e.Extract(context.Background(), text)

	require.NotNil(t, q.Guests)
	assert.Equal(t, 3, *q.Guests)
	assert.Nil(t, q.Location)
}

func TestMergeQueriesPure(t *testing.T) {
	base := &model.SearchQuery{Location: strPtr("Rome"), Guests: intPtr(2)}
	fallback := &model.SearchQuery{Location: strPtr("Paris"), MaxPrice: intPtr(100)}

	merged := mergeQueries(base, fallback)

	assert.Equal(t, "Rome", *merged.Location)
	assert.Equal(t, 2, *merged.Guests)
	assert.Equal(t, 100, *merged.MaxPrice)
	// Inputs untouched.
	assert.Nil(t, base.MaxPrice)
	assert.Equal(t, "Paris", *fallback.Location)
}
