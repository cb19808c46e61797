package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayfind/internal/config"
	"stayfind/internal/model"
)

func completionServer(t *testing.T, content string, capture *ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testGroqClient(apiBase string) *GroqClient {
	return NewGroqClient(&config.GroqConfig{
		APIKey:      "test-key",
		APIBase:     apiBase,
		ChatModel:   "llama-3.1-8b-instant",
		Temperature: 0.7,
		MaxTokens:   400,
		Timeout:     5,
		Enabled:     true,
	}, zap.NewNop())
}

func TestGroqExtractQuery(t *testing.T) {
	content := `{"location": "Tokyo", "checkin": "2026-06-15", "checkout": "2026-06-20",
		"guests": 2, "min_price": null, "max_price": 150, "property_type": "apartment",
		"amenities": ["wifi", "helipad"]}`
	var captured ChatCompletionRequest
	srv := completionServer(t, content, &captured)
	defer srv.Close()

	q, err := testGroqClient(srv.URL).ExtractQuery(context.Background(), "some conversation")
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-8b-instant", captured.Model)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)

	require.NotNil(t, q.Location)
	assert.Equal(t, "Tokyo", *q.Location)
	require.NotNil(t, q.Checkin)
	assert.Equal(t, "2026-06-15", *q.Checkin)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, 150, *q.MaxPrice)
	assert.Nil(t, q.MinPrice)
	// Unknown amenities are dropped.
	assert.Equal(t, []string{"wifi"}, q.Amenities)
}

func TestGroqExtractQueryToleratesCodeFence(t *testing.T) {
	content := "```json\n{\"location\": \"Rome\", \"amenities\": []}\n```"
	srv := completionServer(t, content, nil)
	defer srv.Close()

	q, err := testGroqClient(srv.URL).ExtractQuery(context.Background(), "text")
	require.NoError(t, err)
	require.NotNil(t, q.Location)
	assert.Equal(t, "Rome", *q.Location)
}

func TestGroqExtractQueryDropsJunkFields(t *testing.T) {
	content := `{"location": "null", "checkin": "June 15th", "checkout": "", "amenities": []}`
	srv := completionServer(t, content, nil)
	defer srv.Close()

	q, err := testGroqClient(srv.URL).ExtractQuery(context.Background(), "text")
	require.NoError(t, err)
	assert.Nil(t, q.Location)
	assert.Nil(t, q.Checkin)
	assert.Nil(t, q.Checkout)
}

func TestGroqGenerateReplyMapsHistoryRoles(t *testing.T) {
	var captured ChatCompletionRequest
	srv := completionServer(t, "Sure, on it!", &captured)
	defer srv.Close()

	history := []model.ConversationTurn{
		{Speaker: model.SpeakerUser, Text: "hi"},
		{Speaker: model.SpeakerAssistant, Text: "hello"},
	}
	reply, err := testGroqClient(srv.URL).GenerateReply(context.Background(), "be nice", history, "find me a place")
	require.NoError(t, err)
	assert.Equal(t, "Sure, on it!", reply)

	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "user", captured.Messages[3].Role)
	assert.Equal(t, "find me a place", captured.Messages[3].Content)
}

func TestGroqDisabledReturnsError(t *testing.T) {
	client := NewGroqClient(&config.GroqConfig{Enabled: false, Timeout: 1}, zap.NewNop())
	_, err := client.ExtractQuery(context.Background(), "text")
	assert.Error(t, err)
}

func TestGroqAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testGroqClient(srv.URL).ExtractQuery(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
