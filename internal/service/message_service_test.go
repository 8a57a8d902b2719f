package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"medigenius/internal/domain"
)

type mockMessageServiceRepo struct {
	lastCreated domain.Message
	createErr   error
	listData    []domain.Message
	listErr     error
	lastSession string
}

func (m *mockMessageServiceRepo) Create(_ context.Context, message domain.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCreated = message
	return nil
}

func (m *mockMessageServiceRepo) ListBySessionID(_ context.Context, sessionID string) ([]domain.Message, error) {
	m.lastSession = sessionID
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listData, nil
}

func TestMessageServiceSave_NormalizesAndDefaults(t *testing.T) {
	repo := &mockMessageServiceRepo{}
	svc := NewMessageService(repo)

	err := svc.Save(context.Background(), domain.Message{
		SessionID: " s1 ",
		Role:      " assistant ",
		Content:   " hola ",
		Source:    " Medical DB ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastCreated.CreatedAt.IsZero() {
		t.Fatalf("expected created_at default")
	}
	if repo.lastCreated.SessionID != "s1" || repo.lastCreated.Source != "Medical DB" {
		t.Fatalf("expected trimmed fields, got session=%q source=%q", repo.lastCreated.SessionID, repo.lastCreated.Source)
	}
	if repo.lastCreated.Role != "assistant" || repo.lastCreated.Content != "hola" {
		t.Fatalf("expected trimmed role/content, got role=%q content=%q", repo.lastCreated.Role, repo.lastCreated.Content)
	}
}

func TestMessageServiceSave_Validation(t *testing.T) {
	repo := &mockMessageServiceRepo{}
	svc := NewMessageService(repo)

	cases := []domain.Message{
		{Role: "user", Content: "hola"},
		{SessionID: "s1", Role: "user"},
		{SessionID: "s1", Role: "doctor", Content: "hola"},
	}
	for i, c := range cases {
		if err := svc.Save(context.Background(), c); !errors.Is(err, ErrMessageInvalidInput) {
			t.Fatalf("case %d expected ErrMessageInvalidInput, got %v", i, err)
		}
	}
}

func TestMessageServiceSave_PreservesExplicitTimestamp(t *testing.T) {
	repo := &mockMessageServiceRepo{}
	svc := NewMessageService(repo)
	now := time.Now().UTC().Add(-time.Minute)

	if err := svc.Save(context.Background(), domain.Message{SessionID: "s1", Role: "user", Content: "hola", CreatedAt: now}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !repo.lastCreated.CreatedAt.Equal(now) {
		t.Fatalf("expected explicit created_at preserved")
	}
}

func TestMessageServiceListBySession(t *testing.T) {
	repo := &mockMessageServiceRepo{
		listData: []domain.Message{{ID: 1}, {ID: 2}},
	}
	svc := NewMessageService(repo)

	out, err := svc.ListBySession(context.Background(), " s1 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastSession != "s1" {
		t.Fatalf("expected trimmed session, got %q", repo.lastSession)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}
}

func TestMessageServiceListBySession_EmptySession(t *testing.T) {
	svc := NewMessageService(&mockMessageServiceRepo{})
	out, err := svc.ListBySession(context.Background(), "  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty list, got %+v", out)
	}
}

func TestMessageService_NotConfigured(t *testing.T) {
	var svc *MessageService
	if err := svc.Save(context.Background(), domain.Message{}); !errors.Is(err, ErrMessageServiceNotConfigured) {
		t.Fatalf("expected ErrMessageServiceNotConfigured, got %v", err)
	}

	svc = NewMessageService(nil)
	if _, err := svc.ListBySession(context.Background(), "s1"); !errors.Is(err, ErrMessageServiceNotConfigured) {
		t.Fatalf("expected ErrMessageServiceNotConfigured, got %v", err)
	}
}
