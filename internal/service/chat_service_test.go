package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medigenius/internal/domain"
	"medigenius/internal/llm"
)

type mockKnowledge struct {
	passages []domain.Passage
	err      error
	lastK    int
}

func (m *mockKnowledge) Search(_ context.Context, _ []float32, k int) ([]domain.Passage, error) {
	m.lastK = k
	return m.passages, m.err
}

func TestChatServiceReplyWithoutKnowledge(t *testing.T) {
	client := &llm.MockClient{Response: "  Rest and hydrate.  "}
	states := NewMemoryStateStore()
	svc := NewChatService(nil, client, states, ChatServiceOptions{})

	ans, err := svc.Reply(context.Background(), "s1", "I have a headache")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ans.Text != "Rest and hydrate." || ans.Source != SourceLLM {
		t.Fatalf("unexpected answer %+v", ans)
	}
	state, _ := states.Get(context.Background(), "s1")
	if len(state.Turns) != 1 || state.Turns[0].Question != "I have a headache" {
		t.Fatalf("expected turn stored, got %+v", state)
	}

	if _, err := svc.Reply(context.Background(), "s1", "and now?"); err != nil {
		t.Fatalf("second reply: %v", err)
	}
	if !strings.Contains(client.LastPrompt, "User: I have a headache\nAssistant: Rest and hydrate.") {
		t.Fatalf("expected previous turn in prompt, got %q", client.LastPrompt)
	}
}

func TestChatServiceReplyWithKnowledge(t *testing.T) {
	client := &llm.MockClient{Response: "A headache is pain in the head.", Embedding: []float32{0.1, 0.2}}
	kb := &mockKnowledge{passages: []domain.Passage{
		{Title: "Headache", Content: "Pain in any region of the head.", Distance: 0.1},
		{Title: "Unrelated", Content: "Knee anatomy.", Distance: 0.9},
	}}
	svc := NewChatService(nil, client, nil, ChatServiceOptions{Embedder: client, Knowledge: kb, TopK: 4, MaxDistance: 0.5})

	ans, err := svc.Reply(context.Background(), "s1", "What is a headache?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ans.Source != SourceKnowledge {
		t.Fatalf("expected knowledge source, got %q", ans.Source)
	}
	if kb.lastK != 4 {
		t.Fatalf("expected top k 4, got %d", kb.lastK)
	}
	if !strings.Contains(client.LastPrompt, "Pain in any region of the head.") {
		t.Fatalf("expected passage in prompt")
	}
	if strings.Contains(client.LastPrompt, "Knee anatomy.") {
		t.Fatalf("expected distant passage filtered out")
	}
}

func TestChatServiceRetrievalFailureFallsBack(t *testing.T) {
	client := &llm.MockClient{Response: "ok", EmbedErr: errors.New("embed down")}
	kb := &mockKnowledge{passages: []domain.Passage{{Title: "x", Content: "y"}}}
	svc := NewChatService(nil, client, nil, ChatServiceOptions{Embedder: client, Knowledge: kb})

	ans, err := svc.Reply(context.Background(), "s1", "hola")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ans.Source != SourceLLM {
		t.Fatalf("expected LLM source on retrieval failure, got %q", ans.Source)
	}
}

func TestChatServiceErrors(t *testing.T) {
	var nilSvc *ChatService
	if _, err := nilSvc.Reply(context.Background(), "s1", "q"); !errors.Is(err, ErrChatServiceNotConfigured) {
		t.Fatalf("expected ErrChatServiceNotConfigured, got %v", err)
	}

	svc := NewChatService(nil, &llm.MockClient{Response: "x"}, nil, ChatServiceOptions{})
	if _, err := svc.Reply(context.Background(), "s1", "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}

	failing := NewChatService(nil, &llm.MockClient{Err: errors.New("quota")}, nil, ChatServiceOptions{})
	if _, err := failing.Reply(context.Background(), "s1", "q"); err == nil {
		t.Fatalf("expected generate error")
	}

	blank := NewChatService(nil, &llm.MockClient{Response: "  "}, nil, ChatServiceOptions{})
	if _, err := blank.Reply(context.Background(), "s1", "q"); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChatServiceResetState(t *testing.T) {
	states := NewMemoryStateStore()
	svc := NewChatService(nil, &llm.MockClient{Response: "a"}, states, ChatServiceOptions{})
	_, _ = svc.Reply(context.Background(), "s1", "q")

	if err := svc.ResetState(context.Background(), "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	state, _ := states.Get(context.Background(), "s1")
	if len(state.Turns) != 0 {
		t.Fatalf("expected empty state after reset")
	}
}

func TestBuildPromptMaxTurns(t *testing.T) {
	svc := NewChatService(nil, &llm.MockClient{Response: "a"}, nil, ChatServiceOptions{MaxTurns: 2})
	for _, q := range []string{"q1", "q2", "q3"} {
		_, _ = svc.Reply(context.Background(), "s1", q)
	}
	state, _ := svc.states.Get(context.Background(), "s1")
	if len(state.Turns) != 2 || state.Turns[0].Question != "q2" {
		t.Fatalf("expected last 2 turns, got %+v", state.Turns)
	}
}
