package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stayfind/internal/config"
	"stayfind/internal/model"
	"stayfind/internal/scraper"
)

// ErrEmptyMessage is returned when a turn arrives with no user text.
var ErrEmptyMessage = fmt.Errorf("message must not be empty")

// ListingRetriever fetches listings for a prepared results-page URL.
type ListingRetriever interface {
	Retrieve(ctx context.Context, searchURL string, maxResults int) []model.Listing
}

// SearchStore persists search activity. Implementations must tolerate
// best-effort use: a storage failure never affects the user response.
type SearchStore interface {
	SaveSearch(ctx context.Context, rec model.SearchRecord) error
}

// ChatService drives one conversational turn end to end: extract, repair,
// decide, and when the decision is to search, retrieve listings and shape
// the reply around them.
type ChatService struct {
	extractor   *Extractor
	completions CompletionClient
	retriever   ListingRetriever
	store       SearchStore
	cfg         *config.Config
	logger      *zap.Logger
}

func NewChatService(extractor *Extractor, completions CompletionClient, retriever ListingRetriever, store SearchStore, cfg *config.Config, logger *zap.Logger) *ChatService {
	return &ChatService{
		extractor:   extractor,
		completions: completions,
		retriever:   retriever,
		store:       store,
		cfg:         cfg,
		logger:      logger,
	}
}

// ProcessTurn handles one user message. It always produces a usable
// response for well-formed input; internal failures degrade the reply
// rather than erroring the turn.
func (s *ChatService) ProcessTurn(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conversationText := joinConversation(req.History, message)
	started := time.Now()

	query := s.extractor.Extract(ctx, conversationText)
	query = ValidateQuery(query, conversationText)
	action := EvaluateTurn(message, query, req.History)

	resp := &model.ChatResponse{Action: action, Query: query}
	switch action {
	case model.ActionSearch:
		s.executeSearch(ctx, req, message, query, resp, started)
	case model.ActionConfirm:
		resp.Response = FormatConfirmation(query)
	default:
		resp.Response = s.moreInfoReply(ctx, req.History, message, query)
	}

	s.logger.Info("turn processed",
		zap.String("action", string(resp.Action)),
		zap.Int("listings", len(resp.Listings)),
		zap.Duration("took", time.Since(started)))
	return resp, nil
}

func (s *ChatService) executeSearch(ctx context.Context, req model.ChatRequest, message string, query *model.SearchQuery, resp *model.ChatResponse, started time.Time) {
	searchURL := scraper.BuildSearchURL(query, s.cfg.Search.BaseURL, s.cfg.Search.Currency, time.Now().UTC())
	listings := s.retriever.Retrieve(ctx, searchURL, s.cfg.Scraper.MaxListings)

	resp.SearchURL = searchURL
	resp.Listings = listings
	resp.SearchID = uuid.NewString()
	resp.Response = s.searchReply(ctx, req.History, message, query, listings, searchURL)

	s.saveSearchAsync(model.SearchRecord{
		SearchID:     resp.SearchID,
		Message:      message,
		Query:        query,
		Action:       string(model.ActionSearch),
		ListingCount: len(listings),
		TookMs:       int(time.Since(started).Milliseconds()),
	})
}

func (s *ChatService) searchReply(ctx context.Context, history []model.ConversationTurn, message string, query *model.SearchQuery, listings []model.Listing, searchURL string) string {
	if s.completions != nil && s.completions.Enabled() {
		system := personaPrompt + "\n\n" + buildSearchContext(query, listings, searchURL)
		reply, err := s.completions.GenerateReply(ctx, system, history, message)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		if err != nil {
			s.logger.Warn("reply generation failed, using canned reply", zap.Error(err))
		}
	}
	return searchFallbackMessage(listings, searchURL)
}

func (s *ChatService) moreInfoReply(ctx context.Context, history []model.ConversationTurn, message string, query *model.SearchQuery) string {
	if s.completions != nil && s.completions.Enabled() {
		system := personaPrompt + "\n\nKnown search parameters so far:\n" + describeQuery(query)
		reply, err := s.completions.GenerateReply(ctx, system, history, message)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		if err != nil {
			s.logger.Warn("reply generation failed, using canned reply", zap.Error(err))
		}
	}
	return missingParamsMessage(query)
}

// saveSearchAsync persists off the request path: the user response must
// not wait on, or fail with, the database.
func (s *ChatService) saveSearchAsync(rec model.SearchRecord) {
	if s.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.SaveSearch(ctx, rec); err != nil {
			s.logger.Warn("failed to persist search record",
				zap.String("search_id", rec.SearchID), zap.Error(err))
		}
	}()
}

// joinConversation flattens history plus the current message into the
// single text the extractors run over.
func joinConversation(history []model.ConversationTurn, message string) string {
	var b strings.Builder
	for _, turn := range history {
		if turn.Speaker != model.SpeakerUser {
			continue
		}
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	b.WriteString(message)
	return b.String()
}
