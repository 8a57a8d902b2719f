package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"medigenius/internal/domain"
	"medigenius/internal/llm"
)

const (
	SourceKnowledge = "Medical DB"
	SourceLLM       = "LLM"

	defaultMaxTurns = 6
)

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrEmptyQuestion            = errors.New("empty question")
)

// KnowledgeSearcher recupera pasajes por similitud de embedding.
type KnowledgeSearcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]domain.Passage, error)
}

// Answer es la respuesta generada para una pregunta.
type Answer struct {
	Text   string
	Source string
}

// ChatServiceOptions agrupa dependencias opcionales de recuperación.
type ChatServiceOptions struct {
	Embedder    llm.Embedder
	Knowledge   KnowledgeSearcher
	TopK        int
	MaxDistance float64
	MaxTurns    int
}

// ChatService genera respuestas usando el estado de conversación y la base de conocimiento.
type ChatService struct {
	logger      *zap.Logger
	llm         llm.LLMClient
	states      StateStore
	embedder    llm.Embedder
	knowledge   KnowledgeSearcher
	topK        int
	maxDistance float64
	maxTurns    int
}

func NewChatService(logger *zap.Logger, client llm.LLMClient, states StateStore, opts ChatServiceOptions) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if states == nil {
		states = NewMemoryStateStore()
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = defaultMaxTurns
	}
	return &ChatService{
		logger:      logger,
		llm:         client,
		states:      states,
		embedder:    opts.Embedder,
		knowledge:   opts.Knowledge,
		topK:        opts.TopK,
		maxDistance: opts.MaxDistance,
		maxTurns:    opts.MaxTurns,
	}
}

// Reply genera la respuesta y actualiza el estado de la sesión.
func (s *ChatService) Reply(ctx context.Context, sessionID, question string) (Answer, error) {
	if s == nil || s.llm == nil {
		return Answer{}, ErrChatServiceNotConfigured
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	state, err := s.states.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("load conversation state failed", zap.String("session_id", sessionID), zap.Error(err))
		state = ConversationState{}
	}

	passages := s.retrieve(ctx, question)
	source := SourceLLM
	if len(passages) > 0 {
		source = SourceKnowledge
	}

	text, err := s.llm.Generate(ctx, BuildPrompt(question, state.Turns, passages))
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, llm.ErrEmptyResponse
	}

	next := state.Push(domain.Turn{Question: question, Answer: text, Source: source}, s.maxTurns)
	if err := s.states.Save(ctx, sessionID, next); err != nil {
		s.logger.Warn("save conversation state failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	return Answer{Text: text, Source: source}, nil
}

// ResetState olvida el estado de conversación sin tocar el historial guardado.
func (s *ChatService) ResetState(ctx context.Context, sessionID string) error {
	if s == nil || s.states == nil {
		return ErrChatServiceNotConfigured
	}
	return s.states.Reset(ctx, sessionID)
}

func (s *ChatService) retrieve(ctx context.Context, question string) []domain.Passage {
	if s.embedder == nil || s.knowledge == nil {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		s.logger.Warn("embed question failed", zap.Error(err))
		return nil
	}
	found, err := s.knowledge.Search(ctx, vec, s.topK)
	if err != nil {
		s.logger.Warn("knowledge search failed", zap.Error(err))
		return nil
	}
	passages := make([]domain.Passage, 0, len(found))
	for _, p := range found {
		if s.maxDistance > 0 && p.Distance > s.maxDistance {
			continue
		}
		passages = append(passages, p)
	}
	return passages
}

// BuildPrompt arma el prompt con instrucciones, pasajes recuperados y turnos recientes.
func BuildPrompt(question string, turns []domain.Turn, passages []domain.Passage) string {
	var b strings.Builder
	b.WriteString("You are MediGenius, a careful medical information assistant. ")
	b.WriteString("Answer clearly, mention when a doctor should be consulted, and never invent facts.\n")

	if len(passages) > 0 {
		b.WriteString("\nReference material:\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "[%d] %s\n%s\n", i+1, p.Title, p.Content)
		}
		b.WriteString("Prefer the reference material when it answers the question.\n")
	}

	if len(turns) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", t.Question, t.Answer)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\nAssistant:", question)
	return b.String()
}
