package transcript

import (
	"errors"
	"strings"
	"testing"
	"time"

	"medigenius/internal/domain"
)

func TestStoreAppendPreservesOrder(t *testing.T) {
	s := NewStore()
	s.Append(Message{Content: "a", Role: domain.RoleUser})
	s.Append(Message{Content: "b", Role: domain.RoleAssistant})
	s.Append(Message{Content: "c", Role: domain.RoleUser})

	all := s.All()
	if len(all) != 3 || s.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Content != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, all[i].Content)
		}
	}
}

func TestStoreAllIsNonDestructiveCopy(t *testing.T) {
	s := NewStore()
	s.Append(Message{Content: "hola", Role: domain.RoleUser})

	first := s.All()
	first[0].Content = "mutated"
	second := s.All()
	if second[0].Content != "hola" {
		t.Fatalf("expected stored message to stay immutable, got %q", second[0].Content)
	}
	if len(s.All()) != 1 {
		t.Fatalf("expected repeated All calls to keep length")
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Append(Message{Content: "x", Role: domain.RoleUser})
	s.Clear()
	if got := s.All(); len(got) != 0 {
		t.Fatalf("expected empty store after clear, got %d", len(got))
	}
}

func TestStoreLast(t *testing.T) {
	s := NewStore()
	if _, ok := s.Last(domain.RoleAssistant); ok {
		t.Fatalf("expected no assistant message in empty store")
	}
	s.Append(Message{Content: "q1", Role: domain.RoleUser})
	s.Append(Message{Content: "a1", Role: domain.RoleAssistant})
	s.Append(Message{Content: "q2", Role: domain.RoleUser})
	m, ok := s.Last(domain.RoleAssistant)
	if !ok || m.Content != "a1" {
		t.Fatalf("expected last assistant a1, got %+v ok=%v", m, ok)
	}
}

func TestExportEmpty(t *testing.T) {
	doc, err := Export(nil, "MediGenius", time.Now())
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
	if doc.Filename != "" || len(doc.Body) != 0 {
		t.Fatalf("expected no document, got %+v", doc)
	}
}

func TestExportFormat(t *testing.T) {
	msgs := []Message{
		{Content: "What is a headache?", Role: domain.RoleUser, Timestamp: "10:30 AM"},
		{Content: "A headache is pain in the head.", Role: domain.RoleAssistant, Timestamp: "10:31 AM", Source: "Medical DB"},
		{Content: "Unable to connect.", Role: domain.RoleSystemError, Timestamp: "10:32 AM", Source: "Connection Error"},
	}
	now := time.Date(2026, 10, 14, 9, 5, 7, 0, time.UTC)

	doc, err := Export(msgs, "MediGenius", now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Filename != "medigenius-chat-20261014-090507.txt" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}

	want := strings.Join([]string{
		"[10:30 AM] You:",
		"What is a headache?",
		"",
		"[10:31 AM] MediGenius:",
		"A headache is pain in the head.",
		"Source: Medical DB",
		"",
		"[10:32 AM] MediGenius:",
		"Unable to connect.",
		"Source: Connection Error",
		"",
		"",
	}, "\n")
	if string(doc.Body) != want {
		t.Fatalf("unexpected body:\n%s\nwant:\n%s", doc.Body, want)
	}
}
