package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stayfind/internal/config"
	"stayfind/internal/model"
	"stayfind/internal/utils"
)

// GroqClient talks to the Groq chat completions API. The wire format is
// OpenAI-compatible, so any endpoint speaking that dialect works via
// GROQ_API_BASE.
type GroqClient struct {
	config     *config.GroqConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewGroqClient(cfg *config.GroqConfig, logger *zap.Logger) *GroqClient {
	return &GroqClient{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Enabled returns whether the client is configured with an API key.
func (c *GroqClient) Enabled() bool {
	return c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a chat completion request
func (c *GroqClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("completion API is not enabled (missing API key)")
	}

	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.Temperature > 0 {
		req.Temperature = c.config.Temperature
	}
	if req.MaxTokens == 0 && c.config.MaxTokens > 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// llmQuery mirrors the JSON shape the extraction prompt requests.
type llmQuery struct {
	Location     *string  `json:"location"`
	Checkin      *string  `json:"checkin"`
	Checkout     *string  `json:"checkout"`
	Guests       *int     `json:"guests"`
	MinPrice     *int     `json:"min_price"`
	MaxPrice     *int     `json:"max_price"`
	PropertyType *string  `json:"property_type"`
	Amenities    []string `json:"amenities"`
}

// ExtractQuery asks the model to extract search parameters as JSON and
// parses the (possibly messy) output into a SearchQuery.
func (c *GroqClient) ExtractQuery(ctx context.Context, conversationText string) (*model.SearchQuery, error) {
	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "user", Content: buildExtractionPrompt(conversationText, time.Now().UTC())},
		},
		Temperature:    0.1,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	var parsed llmQuery
	if err := utils.ParseModelJSON(resp.Choices[0].Message.Content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction output: %w", err)
	}
	return sanitizeLLMQuery(&parsed), nil
}

// sanitizeLLMQuery drops fields the model answered with junk: literal
// "null" strings, empty strings, malformed dates.
func sanitizeLLMQuery(in *llmQuery) *model.SearchQuery {
	q := &model.SearchQuery{Guests: in.Guests, MinPrice: in.MinPrice, MaxPrice: in.MaxPrice}
	if s := cleanString(in.Location); s != nil {
		q.Location = s
	}
	if s := cleanDate(in.Checkin); s != nil {
		q.Checkin = s
	}
	if s := cleanDate(in.Checkout); s != nil {
		q.Checkout = s
	}
	if s := cleanString(in.PropertyType); s != nil {
		q.PropertyType = s
	}
	for _, a := range in.Amenities {
		if _, known := model.AirbnbAmenities[a]; known {
			q.Amenities = append(q.Amenities, a)
		}
	}
	return q
}

func cleanString(s *string) *string {
	if s == nil || *s == "" || *s == "null" || *s == "None" {
		return nil
	}
	return s
}

func cleanDate(s *string) *string {
	if s = cleanString(s); s == nil {
		return nil
	}
	if _, err := time.Parse(dateLayout, *s); err != nil {
		return nil
	}
	return s
}

// GenerateReply produces a persona reply given the conversation so far.
func (c *GroqClient) GenerateReply(ctx context.Context, systemPrompt string, history []model.ConversationTurn, message string) (string, error) {
	messages := []ChatMessage{{Role: "system", Content: systemPrompt}}
	for _, turn := range history {
		role := "user"
		if turn.Speaker == model.SpeakerAssistant {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ CompletionClient = (*GroqClient)(nil)
