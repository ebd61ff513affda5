package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/pkg/gemini"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxChatHistory    = 20
	maxMessageLength  = 4000
	catalogContextMax = 20

	defaultSystemPrompt = "You are a friendly shopping assistant for an online store. " +
		"Answer questions about products, orders, vouchers and subscriptions briefly and accurately. " +
		"If you do not know something, say so."
)

// SessionStore keeps chat sessions between requests.
type SessionStore interface {
	SetChatSession(ctx context.Context, session *redis.ChatSession, ttl time.Duration) error
	GetChatSession(ctx context.Context, sessionID string) (*redis.ChatSession, error)
	DeleteChatSession(ctx context.Context, sessionID string) error
}

// Generator produces the assistant's next turn.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []gemini.Content) (string, error)
}

type ChatInput struct {
	SessionID        string `json:"session_id"`
	PromptCategoryID uint   `json:"prompt_category_id"`
	Message          string `json:"message" binding:"required"`
}

type ChatReply struct {
	SessionID string              `json:"session_id"`
	Reply     string              `json:"reply"`
	Messages  []redis.ChatMessage `json:"messages"`
}

type ChatService interface {
	Chat(ctx context.Context, userID uint, input ChatInput) (*ChatReply, error)
	GetSession(ctx context.Context, userID uint, sessionID string) (*redis.ChatSession, error)
	DeleteSession(ctx context.Context, userID uint, sessionID string) error
}

type chatService struct {
	sessions    SessionStore
	generator   Generator
	promptRepo  repository.PromptCategoryRepository
	productRepo repository.ProductRepository
	ttl         time.Duration
}

func NewChatService(sessions SessionStore, generator Generator, promptRepo repository.PromptCategoryRepository, productRepo repository.ProductRepository, ttl time.Duration) ChatService {
	return &chatService{
		sessions:    sessions,
		generator:   generator,
		promptRepo:  promptRepo,
		productRepo: productRepo,
		ttl:         ttl,
	}
}

func (s *chatService) Chat(ctx context.Context, userID uint, input ChatInput) (*ChatReply, error) {
	if s.generator == nil {
		return nil, errors.New("AI assistant is not configured")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrBadRequest("message is required")
	}
	if len(message) > maxMessageLength {
		return nil, ErrBadRequest(fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}

	now := time.Now()
	var session *redis.ChatSession
	if input.SessionID != "" {
		existing, err := s.GetSession(ctx, userID, input.SessionID)
		if err != nil {
			return nil, err
		}
		session = existing
	} else {
		session = &redis.ChatSession{
			ID:               uuid.NewString(),
			UserID:           userID,
			PromptCategoryID: input.PromptCategoryID,
			CreatedAt:        now,
		}
	}

	systemPrompt, err := s.systemPrompt(ctx, session.PromptCategoryID)
	if err != nil {
		return nil, err
	}

	history := session.Messages
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	contents := make([]gemini.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, gemini.Content{Role: m.Role, Parts: []gemini.Part{{Text: m.Text}}})
	}
	contents = append(contents, gemini.Content{Role: "user", Parts: []gemini.Part{{Text: message}}})

	reply, err := s.generator.Generate(ctx, systemPrompt, contents)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	session.Messages = append(session.Messages,
		redis.ChatMessage{Role: "user", Text: message, CreatedAt: now},
		redis.ChatMessage{Role: "model", Text: reply, CreatedAt: time.Now()},
	)
	if len(session.Messages) > maxChatHistory {
		session.Messages = session.Messages[len(session.Messages)-maxChatHistory:]
	}
	session.UpdatedAt = time.Now()
	if err := s.sessions.SetChatSession(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save chat session: %w", err)
	}

	return &ChatReply{SessionID: session.ID, Reply: reply, Messages: session.Messages}, nil
}

func (s *chatService) GetSession(ctx context.Context, userID uint, sessionID string) (*redis.ChatSession, error) {
	session, err := s.sessions.GetChatSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrNotFound("chat session")
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden("chat session belongs to another user")
	}
	return session, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.sessions.DeleteChatSession(ctx, sessionID)
}

// systemPrompt resolves the prompt category and appends a short list of
// products currently in stock.
func (s *chatService) systemPrompt(ctx context.Context, categoryID uint) (string, error) {
	prompt := defaultSystemPrompt
	if categoryID != 0 {
		category, err := s.promptRepo.GetByID(ctx, categoryID)
		if err != nil {
			return "", notFound(err, "prompt category")
		}
		prompt = category.SystemPrompt
	}

	if s.productRepo == nil {
		return prompt, nil
	}
	products, _, err := s.productRepo.List(ctx, repository.ProductFilter{InStock: true, Limit: catalogContextMax})
	if err != nil {
		log.Printf("Warning: failed to load catalog for chat context: %v", err)
		return prompt, nil
	}
	if len(products) == 0 {
		return prompt, nil
	}
	return prompt + "\n\n" + catalogContext(products), nil
}

func catalogContext(products []models.Product) string {
	var b strings.Builder
	b.WriteString("Products currently in stock:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %s", p.Name, p.Price.StringFixed(0))
		if p.SubscriberPrice.Valid {
			fmt.Fprintf(&b, " (subscribers %s)", p.SubscriberPrice.Decimal.StringFixed(0))
		}
		b.WriteString("\n")
	}
	return b.String()
}
